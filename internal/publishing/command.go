package publishing

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/postsync/internal/execshell"
	"github.com/temirov/postsync/internal/githubauth"
	"github.com/temirov/postsync/internal/platform/devto"
	"github.com/temirov/postsync/internal/repository"
)

const (
	syncCommandUseConstant                  = "sync"
	syncCommandShortDescriptionConstant     = "Publish changed markdown folders to blog platforms"
	syncCommandLongDescriptionConstant      = "sync walks the repository for folders marked with a sidecar directory, creates or updates their posts on every enabled platform when the document changed, and records the result in the sidecar file."
	unexpectedArgumentsErrorMessageConstant = "sync does not accept positional arguments"
	synchronizationErrorTemplateConstant    = "sync failed: %w"
	reportErrorTemplateConstant             = "unable to write sync report: %w"
	repositoryFlagNameConstant              = "repository"
	repositoryFlagDescriptionConstant       = "Repository to synchronize (owner/name, GitHub URL, or local path for the local backend)"
	branchFlagNameConstant                  = "branch"
	branchFlagDescriptionConstant           = "Branch to read and commit to (defaults to the repository default branch)"
	backendFlagNameConstant                 = "backend"
	backendFlagDescriptionConstant          = "Source-control backend: github or local"
	dryRunFlagNameConstant                  = "dry-run"
	dryRunFlagDescriptionConstant           = "Report planned actions without calling platforms or writing sidecars"
	reportFormatFlagNameConstant            = "report-format"
	reportFormatFlagDescriptionConstant     = "Report format: text or yaml"
	logMessageTokenResolvedConstant         = "Resolved GitHub token"
	logMessageTokenMissingConstant          = "GitHub token not found"
	logFieldTokenSourceConstant             = "token_source"
)

// LoggerProvider supplies a zap logger instance.
type LoggerProvider func() *zap.Logger

// ConfigurationProvider returns the current sync configuration.
type ConfigurationProvider func() Configuration

// CommandBuilder assembles the sync command.
type CommandBuilder struct {
	LoggerProvider        LoggerProvider
	ConfigurationProvider ConfigurationProvider
	ServiceResolver       ServiceResolver
	EnvironmentLookup     githubauth.EnvironmentLookup
	CommandRunner         execshell.CommandRunner
	HTTPClient            devto.HTTPClient
}

// Build constructs the sync command.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	syncCommand := &cobra.Command{
		Use:   syncCommandUseConstant,
		Short: syncCommandShortDescriptionConstant,
		Long:  syncCommandLongDescriptionConstant,
		RunE:  builder.runSync,
	}

	syncCommand.Flags().String(repositoryFlagNameConstant, "", repositoryFlagDescriptionConstant)
	syncCommand.Flags().String(branchFlagNameConstant, "", branchFlagDescriptionConstant)
	syncCommand.Flags().String(backendFlagNameConstant, "", backendFlagDescriptionConstant)
	syncCommand.Flags().Bool(dryRunFlagNameConstant, false, dryRunFlagDescriptionConstant)
	syncCommand.Flags().String(reportFormatFlagNameConstant, "", reportFormatFlagDescriptionConstant)

	return syncCommand, nil
}

func (builder *CommandBuilder) runSync(command *cobra.Command, arguments []string) error {
	if len(arguments) > 0 {
		return errors.New(unexpectedArgumentsErrorMessageConstant)
	}

	logger := builder.resolveLogger()

	configuration, configurationError := builder.parseConfiguration(command, logger)
	if configurationError != nil {
		return configurationError
	}

	service, serviceError := builder.resolveService(logger, configuration)
	if serviceError != nil {
		return serviceError
	}

	result, synchronizationError := service.Synchronize(command.Context(), repository.Reference{
		Repository: configuration.Repository,
		Branch:     configuration.Branch,
	})

	var treeListingError TreeListingError
	if synchronizationError != nil && errors.As(synchronizationError, &treeListingError) {
		return fmt.Errorf(synchronizationErrorTemplateConstant, synchronizationError)
	}

	reportWriter := ReportWriter{Format: configuration.ReportFormat}
	if reportError := reportWriter.Write(command.OutOrStdout(), result); reportError != nil {
		return fmt.Errorf(reportErrorTemplateConstant, reportError)
	}

	if synchronizationError != nil {
		return fmt.Errorf(synchronizationErrorTemplateConstant, synchronizationError)
	}

	if failedCount := result.FailedCount(); failedCount > 0 {
		return FolderFailuresError{Failed: failedCount, Total: len(result.Folders)}
	}

	return nil
}

func (builder *CommandBuilder) parseConfiguration(command *cobra.Command, logger *zap.Logger) (Configuration, error) {
	configuration := builder.resolveConfiguration()

	repositoryFlagValue, repositoryFlagError := command.Flags().GetString(repositoryFlagNameConstant)
	if repositoryFlagError != nil {
		return Configuration{}, repositoryFlagError
	}
	configuration.Repository = selectStringValue(repositoryFlagValue, configuration.Repository)

	branchFlagValue, branchFlagError := command.Flags().GetString(branchFlagNameConstant)
	if branchFlagError != nil {
		return Configuration{}, branchFlagError
	}
	configuration.Branch = selectStringValue(branchFlagValue, configuration.Branch)

	backendFlagValue, backendFlagError := command.Flags().GetString(backendFlagNameConstant)
	if backendFlagError != nil {
		return Configuration{}, backendFlagError
	}
	configuration.Backend = selectStringValue(backendFlagValue, configuration.Backend)

	reportFormatFlagValue, reportFormatFlagError := command.Flags().GetString(reportFormatFlagNameConstant)
	if reportFormatFlagError != nil {
		return Configuration{}, reportFormatFlagError
	}
	configuration.ReportFormat = selectStringValue(reportFormatFlagValue, configuration.ReportFormat)

	if command.Flags().Changed(dryRunFlagNameConstant) {
		dryRunFlagValue, dryRunFlagError := command.Flags().GetBool(dryRunFlagNameConstant)
		if dryRunFlagError != nil {
			return Configuration{}, dryRunFlagError
		}
		configuration.DryRun = dryRunFlagValue
	}

	configuration = configuration.Sanitize()

	if configuration.Backend == BackendGitHub {
		token, tokenError := githubauth.NewTokenResolver(builder.EnvironmentLookup).Resolve(configuration.GitHubToken)
		if tokenError != nil {
			logger.Debug(logMessageTokenMissingConstant, zap.Error(tokenError))
		} else {
			configuration.GitHubToken = token.Value
			logger.Debug(logMessageTokenResolvedConstant, zap.String(logFieldTokenSourceConstant, token.Source))
		}
	}

	if validationError := configuration.Validate(); validationError != nil {
		return Configuration{}, validationError
	}

	return configuration, nil
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}

	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}

	return logger
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	if builder.ConfigurationProvider == nil {
		return DefaultConfiguration()
	}
	return builder.ConfigurationProvider()
}

func (builder *CommandBuilder) resolveService(logger *zap.Logger, configuration Configuration) (SynchronizationExecutor, error) {
	if builder.ServiceResolver != nil {
		return builder.ServiceResolver.Resolve(logger, configuration)
	}

	defaultResolver := &DefaultServiceResolver{
		CommandRunner: builder.CommandRunner,
		HTTPClient:    builder.HTTPClient,
	}

	return defaultResolver.Resolve(logger, configuration)
}

func selectStringValue(flagValue string, configurationValue string) string {
	trimmedFlagValue := strings.TrimSpace(flagValue)
	if len(trimmedFlagValue) > 0 {
		return trimmedFlagValue
	}

	return strings.TrimSpace(configurationValue)
}
