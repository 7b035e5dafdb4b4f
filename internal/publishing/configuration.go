package publishing

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Backend names accepted by the configuration.
const (
	BackendGitHub = "github"
	BackendLocal  = "local"
)

// Report formats accepted by the configuration.
const (
	ReportFormatText = "text"
	ReportFormatYAML = "yaml"
)

const (
	defaultBackendConstant           = BackendGitHub
	defaultDocumentFileConstant      = "README.md"
	defaultMarkerDirectoryConstant   = ".blogpost"
	defaultMetadataFileConstant      = "post.json"
	defaultCommitMessageConstant     = "Updating post page JSON after writing blog posts"
	defaultCommitAuthorNameConstant  = "postsync"
	defaultCommitAuthorEmailConstant = "postsync@users.noreply.github.com"
	defaultDevToBaseURLConstant      = "https://dev.to/api"
	defaultDevToTagConstant          = "autogenerated"
	configurationErrorTemplate       = "invalid sync configuration: %v"
	noPlatformEnabledMessageConstant = "at least one platform must be enabled"
	plainFileNameMessageConstant     = "must be a file name without path separators"
	digitsOnlyMessageConstant        = "must contain only digits"
	plainFileNameErrorCodeConstant   = "postsync.sync.plain_file_name"
)

var (
	digitsPattern = regexp.MustCompile(`^[0-9]+$`)
	// ErrNoPlatformEnabled indicates every platform is disabled.
	ErrNoPlatformEnabled = errors.New(noPlatformEnabledMessageConstant)
)

// ConfigurationError reports an unusable configuration. It is fatal: no folder is processed.
type ConfigurationError struct {
	Cause error
}

// Error describes the invalid configuration.
func (configurationError ConfigurationError) Error() string {
	return fmt.Sprintf(configurationErrorTemplate, configurationError.Cause)
}

// Unwrap exposes the validation errors.
func (configurationError ConfigurationError) Unwrap() error {
	return configurationError.Cause
}

// Configuration holds the settings of the sync command.
type Configuration struct {
	Repository        string                 `mapstructure:"repository" json:"repository"`
	GitHubToken       string                 `mapstructure:"github_token" json:"github_token"`
	Backend           string                 `mapstructure:"backend" json:"backend"`
	Branch            string                 `mapstructure:"branch" json:"branch"`
	DocumentFile      string                 `mapstructure:"document_file" json:"document_file"`
	MarkerDirectory   string                 `mapstructure:"marker_directory" json:"marker_directory"`
	MetadataFile      string                 `mapstructure:"metadata_file" json:"metadata_file"`
	CommitMessage     string                 `mapstructure:"commit_message" json:"commit_message"`
	CommitAuthorName  string                 `mapstructure:"commit_author_name" json:"commit_author_name"`
	CommitAuthorEmail string                 `mapstructure:"commit_author_email" json:"commit_author_email"`
	DryRun            bool                   `mapstructure:"dry_run" json:"dry_run"`
	ReportFormat      string                 `mapstructure:"report_format" json:"report_format"`
	Platforms         PlatformsConfiguration `mapstructure:"platforms" json:"platforms"`
}

// PlatformsConfiguration groups per-platform settings.
type PlatformsConfiguration struct {
	DevTo DevToConfiguration `mapstructure:"dev_to" json:"dev_to"`
}

// DevToConfiguration configures the dev.to client.
type DevToConfiguration struct {
	Enabled        bool     `mapstructure:"enabled" json:"enabled"`
	APIKey         string   `mapstructure:"api_key" json:"api_key"`
	OrganizationID string   `mapstructure:"organization_id" json:"organization_id"`
	BaseURL        string   `mapstructure:"base_url" json:"base_url"`
	Published      bool     `mapstructure:"published" json:"published"`
	Tags           []string `mapstructure:"tags" json:"tags"`
}

// DefaultConfiguration supplies baseline values for the sync command.
func DefaultConfiguration() Configuration {
	return Configuration{
		Backend:           defaultBackendConstant,
		DocumentFile:      defaultDocumentFileConstant,
		MarkerDirectory:   defaultMarkerDirectoryConstant,
		MetadataFile:      defaultMetadataFileConstant,
		CommitMessage:     defaultCommitMessageConstant,
		CommitAuthorName:  defaultCommitAuthorNameConstant,
		CommitAuthorEmail: defaultCommitAuthorEmailConstant,
		ReportFormat:      ReportFormatText,
		Platforms: PlatformsConfiguration{
			DevTo: DevToConfiguration{
				Enabled: true,
				BaseURL: defaultDevToBaseURLConstant,
				Tags:    []string{defaultDevToTagConstant},
			},
		},
	}
}

// Sanitize trims values and fills blanks with defaults.
func (configuration Configuration) Sanitize() Configuration {
	defaults := DefaultConfiguration()
	sanitized := configuration

	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	sanitized.GitHubToken = strings.TrimSpace(configuration.GitHubToken)
	sanitized.Backend = strings.ToLower(selectValue(configuration.Backend, defaults.Backend))
	sanitized.Branch = strings.TrimSpace(configuration.Branch)
	sanitized.DocumentFile = selectValue(configuration.DocumentFile, defaults.DocumentFile)
	sanitized.MarkerDirectory = selectValue(configuration.MarkerDirectory, defaults.MarkerDirectory)
	sanitized.MetadataFile = selectValue(configuration.MetadataFile, defaults.MetadataFile)
	sanitized.CommitMessage = selectValue(configuration.CommitMessage, defaults.CommitMessage)
	sanitized.CommitAuthorName = selectValue(configuration.CommitAuthorName, defaults.CommitAuthorName)
	sanitized.CommitAuthorEmail = selectValue(configuration.CommitAuthorEmail, defaults.CommitAuthorEmail)
	sanitized.ReportFormat = strings.ToLower(selectValue(configuration.ReportFormat, defaults.ReportFormat))
	sanitized.Platforms.DevTo = configuration.Platforms.DevTo.sanitize(defaults.Platforms.DevTo)
	return sanitized
}

func (configuration DevToConfiguration) sanitize(defaults DevToConfiguration) DevToConfiguration {
	sanitized := configuration
	sanitized.APIKey = strings.TrimSpace(configuration.APIKey)
	sanitized.OrganizationID = strings.TrimSpace(configuration.OrganizationID)
	sanitized.BaseURL = selectValue(configuration.BaseURL, defaults.BaseURL)

	tags := make([]string, 0, len(configuration.Tags))
	for _, tag := range configuration.Tags {
		if trimmed := strings.TrimSpace(tag); len(trimmed) > 0 {
			tags = append(tags, trimmed)
		}
	}
	if len(tags) == 0 {
		tags = append([]string(nil), defaults.Tags...)
	}
	sanitized.Tags = tags
	return sanitized
}

// Validate checks the configuration and wraps every problem in a ConfigurationError.
func (configuration Configuration) Validate() error {
	validationError := validation.ValidateStruct(&configuration,
		validation.Field(&configuration.Repository, validation.Required),
		validation.Field(&configuration.Backend, validation.Required, validation.In(BackendGitHub, BackendLocal)),
		validation.Field(&configuration.GitHubToken, validation.When(configuration.Backend == BackendGitHub && !configuration.DryRun, validation.Required)),
		validation.Field(&configuration.DocumentFile, validation.Required, validation.By(plainFileName)),
		validation.Field(&configuration.MarkerDirectory, validation.Required, validation.By(plainFileName)),
		validation.Field(&configuration.MetadataFile, validation.Required, validation.By(plainFileName)),
		validation.Field(&configuration.CommitMessage, validation.Required),
		validation.Field(&configuration.CommitAuthorName, validation.When(configuration.Backend == BackendLocal, validation.Required)),
		validation.Field(&configuration.CommitAuthorEmail, validation.When(configuration.Backend == BackendLocal, validation.Required)),
		validation.Field(&configuration.ReportFormat, validation.Required, validation.In(ReportFormatText, ReportFormatYAML)),
		validation.Field(&configuration.Platforms),
	)
	if validationError != nil {
		return ConfigurationError{Cause: validationError}
	}
	if !configuration.Platforms.DevTo.Enabled {
		return ConfigurationError{Cause: ErrNoPlatformEnabled}
	}
	return nil
}

// Validate checks the platform settings.
func (configuration PlatformsConfiguration) Validate() error {
	return validation.ValidateStruct(&configuration,
		validation.Field(&configuration.DevTo),
	)
}

// Validate checks the dev.to settings. Credentials are only required when the platform is enabled.
func (configuration DevToConfiguration) Validate() error {
	return validation.ValidateStruct(&configuration,
		validation.Field(&configuration.APIKey, validation.When(configuration.Enabled, validation.Required)),
		validation.Field(&configuration.OrganizationID, validation.Match(digitsPattern).Error(digitsOnlyMessageConstant)),
		validation.Field(&configuration.BaseURL, validation.When(configuration.Enabled, validation.Required)),
	)
}

func plainFileName(value any) error {
	name, _ := value.(string)
	if strings.ContainsAny(name, `/\`) {
		return validation.NewError(plainFileNameErrorCodeConstant, plainFileNameMessageConstant)
	}
	return nil
}

func selectValue(candidate string, fallback string) string {
	trimmed := strings.TrimSpace(candidate)
	if len(trimmed) > 0 {
		return trimmed
	}
	return fallback
}
