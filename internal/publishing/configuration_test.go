package publishing_test

import (
	"errors"
	"testing"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/stretchr/testify/require"

	"github.com/temirov/postsync/internal/publishing"
)

func validConfiguration() publishing.Configuration {
	configuration := publishing.DefaultConfiguration()
	configuration.Repository = testRepositoryConstant
	configuration.GitHubToken = "ghp-test"
	configuration.Platforms.DevTo.APIKey = "devto-key"
	return configuration
}

func TestDefaultConfiguration(testInstance *testing.T) {
	configuration := publishing.DefaultConfiguration()

	require.Equal(testInstance, publishing.BackendGitHub, configuration.Backend)
	require.Equal(testInstance, "README.md", configuration.DocumentFile)
	require.Equal(testInstance, ".blogpost", configuration.MarkerDirectory)
	require.Equal(testInstance, "post.json", configuration.MetadataFile)
	require.Equal(testInstance, testCommitMessageConstant, configuration.CommitMessage)
	require.Equal(testInstance, publishing.ReportFormatText, configuration.ReportFormat)
	require.True(testInstance, configuration.Platforms.DevTo.Enabled)
	require.Equal(testInstance, "https://dev.to/api", configuration.Platforms.DevTo.BaseURL)
	require.Equal(testInstance, []string{"autogenerated"}, configuration.Platforms.DevTo.Tags)
}

func TestSanitizeTrimsAndFillsDefaults(testInstance *testing.T) {
	configuration := publishing.Configuration{
		Repository:   "  octo/blog \n",
		Backend:      " LOCAL ",
		ReportFormat: "YAML",
		Platforms: publishing.PlatformsConfiguration{DevTo: publishing.DevToConfiguration{
			Enabled:        true,
			APIKey:         " key ",
			OrganizationID: " 12 ",
			Tags:           []string{" ", ""},
		}},
	}

	sanitized := configuration.Sanitize()

	require.Equal(testInstance, testRepositoryConstant, sanitized.Repository)
	require.Equal(testInstance, publishing.BackendLocal, sanitized.Backend)
	require.Equal(testInstance, publishing.ReportFormatYAML, sanitized.ReportFormat)
	require.Equal(testInstance, "README.md", sanitized.DocumentFile)
	require.Equal(testInstance, "postsync", sanitized.CommitAuthorName)
	require.Equal(testInstance, "key", sanitized.Platforms.DevTo.APIKey)
	require.Equal(testInstance, "12", sanitized.Platforms.DevTo.OrganizationID)
	require.Equal(testInstance, "https://dev.to/api", sanitized.Platforms.DevTo.BaseURL)
	require.Equal(testInstance, []string{"autogenerated"}, sanitized.Platforms.DevTo.Tags)
	require.Equal(testInstance, "  octo/blog \n", configuration.Repository)
}

func TestValidate(testInstance *testing.T) {
	testCases := []struct {
		name          string
		mutate        func(configuration *publishing.Configuration)
		expectedField string
		expectedError error
	}{
		{
			name:   "valid_github_configuration",
			mutate: func(configuration *publishing.Configuration) {},
		},
		{
			name:          "missing_repository",
			mutate:        func(configuration *publishing.Configuration) { configuration.Repository = "" },
			expectedField: "repository",
		},
		{
			name:          "missing_github_token",
			mutate:        func(configuration *publishing.Configuration) { configuration.GitHubToken = "" },
			expectedField: "github_token",
		},
		{
			name: "dry_run_does_not_need_github_token",
			mutate: func(configuration *publishing.Configuration) {
				configuration.GitHubToken = ""
				configuration.DryRun = true
			},
		},
		{
			name: "local_backend_does_not_need_github_token",
			mutate: func(configuration *publishing.Configuration) {
				configuration.GitHubToken = ""
				configuration.Backend = publishing.BackendLocal
			},
		},
		{
			name: "local_backend_needs_author",
			mutate: func(configuration *publishing.Configuration) {
				configuration.Backend = publishing.BackendLocal
				configuration.CommitAuthorEmail = ""
			},
			expectedField: "commit_author_email",
		},
		{
			name:          "unknown_backend",
			mutate:        func(configuration *publishing.Configuration) { configuration.Backend = "svn" },
			expectedField: "backend",
		},
		{
			name:          "metadata_file_with_separator",
			mutate:        func(configuration *publishing.Configuration) { configuration.MetadataFile = "meta/post.json" },
			expectedField: "metadata_file",
		},
		{
			name:          "unknown_report_format",
			mutate:        func(configuration *publishing.Configuration) { configuration.ReportFormat = "xml" },
			expectedField: "report_format",
		},
		{
			name:          "missing_devto_api_key",
			mutate:        func(configuration *publishing.Configuration) { configuration.Platforms.DevTo.APIKey = "" },
			expectedField: "platforms",
		},
		{
			name:          "non_numeric_organization",
			mutate:        func(configuration *publishing.Configuration) { configuration.Platforms.DevTo.OrganizationID = "acme" },
			expectedField: "platforms",
		},
		{
			name: "all_platforms_disabled",
			mutate: func(configuration *publishing.Configuration) {
				configuration.Platforms.DevTo.Enabled = false
				configuration.Platforms.DevTo.APIKey = ""
			},
			expectedError: publishing.ErrNoPlatformEnabled,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			configuration := validConfiguration()
			testCase.mutate(&configuration)

			validationError := configuration.Validate()
			if len(testCase.expectedField) == 0 && testCase.expectedError == nil {
				require.NoError(testInstance, validationError)
				return
			}

			require.Error(testInstance, validationError)
			var configurationError publishing.ConfigurationError
			require.True(testInstance, errors.As(validationError, &configurationError))

			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, validationError, testCase.expectedError)
				return
			}

			var fieldErrors validation.Errors
			require.True(testInstance, errors.As(validationError, &fieldErrors))
			require.Contains(testInstance, fieldErrors, testCase.expectedField)
		})
	}
}
