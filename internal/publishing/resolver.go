package publishing

import (
	"context"

	"go.uber.org/zap"

	"github.com/temirov/postsync/internal/execshell"
	"github.com/temirov/postsync/internal/githubcli"
	"github.com/temirov/postsync/internal/localrepo"
	"github.com/temirov/postsync/internal/platform"
	"github.com/temirov/postsync/internal/platform/devto"
	"github.com/temirov/postsync/internal/repository"
)

const (
	logMessageLocalRemoteConstant = "Local repository tracks hosted remote"
	logFieldRemoteConstant        = "remote"
	logFieldHostConstant          = "host"
)

// SynchronizationExecutor runs a synchronization against a repository.
type SynchronizationExecutor interface {
	Synchronize(executionContext context.Context, reference repository.Reference) (SynchronizationResult, error)
}

// ServiceResolver builds the executor used by the sync command.
type ServiceResolver interface {
	Resolve(logger *zap.Logger, configuration Configuration) (SynchronizationExecutor, error)
}

// DefaultServiceResolver wires the configured source-control backend and platform clients.
type DefaultServiceResolver struct {
	CommandRunner execshell.CommandRunner
	HTTPClient    devto.HTTPClient
}

// Resolve creates a Service for the validated configuration.
func (resolver *DefaultServiceResolver) Resolve(logger *zap.Logger, configuration Configuration) (SynchronizationExecutor, error) {
	contents, contentsError := resolver.resolveContents(logger, configuration)
	if contentsError != nil {
		return nil, contentsError
	}

	registry, registryError := resolver.resolveRegistry(logger, configuration)
	if registryError != nil {
		return nil, registryError
	}

	return NewService(logger, contents, registry, ServiceOptions{
		Layout: Layout{
			DocumentFile:    configuration.DocumentFile,
			MarkerDirectory: configuration.MarkerDirectory,
			MetadataFile:    configuration.MetadataFile,
		},
		CommitMessage: configuration.CommitMessage,
		DryRun:        configuration.DryRun,
	})
}

func (resolver *DefaultServiceResolver) resolveContents(logger *zap.Logger, configuration Configuration) (RepositoryContents, error) {
	if configuration.Backend == BackendLocal {
		localRepository, openError := localrepo.Open(configuration.Repository, localrepo.Author{
			Name:  configuration.CommitAuthorName,
			Email: configuration.CommitAuthorEmail,
		})
		if openError != nil {
			return nil, openError
		}
		if remote, found := localRepository.Remote(); found {
			logger.Debug(logMessageLocalRemoteConstant, zap.String(logFieldRemoteConstant, remote.FullName()), zap.String(logFieldHostConstant, remote.Host))
		}
		return localRepository, nil
	}

	commandRunner := resolver.CommandRunner
	if commandRunner == nil {
		commandRunner = execshell.NewOSCommandRunner()
	}
	shellExecutor, executorError := execshell.NewShellExecutor(logger, commandRunner)
	if executorError != nil {
		return nil, executorError
	}
	githubClient, clientError := githubcli.NewClient(shellExecutor, configuration.GitHubToken)
	if clientError != nil {
		return nil, clientError
	}
	return githubClient, nil
}

func (resolver *DefaultServiceResolver) resolveRegistry(logger *zap.Logger, configuration Configuration) (*platform.Registry, error) {
	registry := &platform.Registry{}

	devToConfiguration := configuration.Platforms.DevTo
	if devToConfiguration.Enabled {
		devToClient, clientError := devto.NewClient(devto.Options{
			APIKey:         devToConfiguration.APIKey,
			OrganizationID: devToConfiguration.OrganizationID,
			BaseURL:        devToConfiguration.BaseURL,
			Published:      devToConfiguration.Published,
			DefaultTags:    devToConfiguration.Tags,
			HTTPClient:     resolver.HTTPClient,
			Logger:         logger,
		})
		if clientError != nil {
			return nil, clientError
		}
		if registrationError := registry.Register(devToClient); registrationError != nil {
			return nil, registrationError
		}
	}

	return registry, nil
}
