package execshell

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	githubAPISubcommandConstant         = "api"
	githubMethodFlagConstant            = "-X"
	githubMethodLongFlagConstant        = "--method"
	githubDefaultMethodConstant         = "GET"
	repositoryPathPrefixConstant        = "repos/"
	repositoryTreeSegmentConstant       = "/git/trees/"
	repositoryContentsSegmentConstant   = "/contents/"
	startedMessageTemplateConstant      = "Running %s"
	completedMessageTemplateConstant    = "Completed %s"
	exitFailureMessageTemplateConstant  = "%s failed with exit code %d%s"
	executionFailureTemplateConstant    = "%s failed: %s"
	standardErrorSuffixTemplateConstant = ": %s"
	treeListingDescriptionTemplate      = "listing tree %s of %s"
	contentsFetchDescriptionTemplate    = "fetching %s from %s"
	contentsUpdateDescriptionTemplate   = "writing %s to %s"
	repositoryLookupDescriptionTemplate = "resolving repository %s"
	genericAPIDescriptionTemplate       = "%s %s"
	commandLabelSeparatorConstant       = " "
	unknownFailureDescriptionConstant   = "unknown error"
	contentsReferenceQueryKeyConstant   = "ref"
	queryDelimiterConstant              = "?"
	httpPutMethodConstant               = "PUT"
)

// CommandMessageFormatter renders human-readable lifecycle messages for shell commands.
type CommandMessageFormatter struct{}

// BuildStartedMessage describes a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return fmt.Sprintf(startedMessageTemplateConstant, describeCommand(command))
}

// BuildSuccessMessage describes a command that completed successfully.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand) string {
	return fmt.Sprintf(completedMessageTemplateConstant, describeCommand(command))
}

// BuildFailureMessage describes a command that exited with a non-zero code or could not run.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult, executionError error) string {
	if executionError != nil {
		return fmt.Sprintf(executionFailureTemplateConstant, describeCommand(command), describeFailure(executionError))
	}
	return fmt.Sprintf(exitFailureMessageTemplateConstant, describeCommand(command), result.ExitCode, formatStandardErrorSuffix(result.StandardError))
}

func describeCommand(command ShellCommand) string {
	if command.Name == CommandGitHub {
		if description, recognized := describeGitHubAPICommand(command.Details.Arguments); recognized {
			return description
		}
	}
	return formatCommandLabel(command)
}

// describeGitHubAPICommand recognizes the repository, tree and contents endpoints.
func describeGitHubAPICommand(arguments []string) (string, bool) {
	if len(arguments) < 2 || arguments[0] != githubAPISubcommandConstant {
		return "", false
	}

	endpoint := arguments[1]
	method := githubDefaultMethodConstant
	for argumentIndex := 2; argumentIndex < len(arguments)-1; argumentIndex++ {
		if arguments[argumentIndex] == githubMethodFlagConstant || arguments[argumentIndex] == githubMethodLongFlagConstant {
			method = strings.ToUpper(arguments[argumentIndex+1])
		}
	}

	endpointPath, rawQuery, _ := strings.Cut(endpoint, queryDelimiterConstant)
	if !strings.HasPrefix(endpointPath, repositoryPathPrefixConstant) {
		return fmt.Sprintf(genericAPIDescriptionTemplate, method, endpointPath), true
	}
	repositoryAndRest := strings.TrimPrefix(endpointPath, repositoryPathPrefixConstant)

	if repository, reference, found := strings.Cut(repositoryAndRest, repositoryTreeSegmentConstant); found {
		return fmt.Sprintf(treeListingDescriptionTemplate, reference, repository), true
	}

	if repository, filePath, found := strings.Cut(repositoryAndRest, repositoryContentsSegmentConstant); found {
		if method == httpPutMethodConstant {
			return fmt.Sprintf(contentsUpdateDescriptionTemplate, filePath, repository), true
		}
		location := repository
		if queryValues, parseError := url.ParseQuery(rawQuery); parseError == nil {
			if reference := queryValues.Get(contentsReferenceQueryKeyConstant); len(reference) > 0 {
				location = repository + "@" + reference
			}
		}
		return fmt.Sprintf(contentsFetchDescriptionTemplate, filePath, location), true
	}

	if strings.Count(repositoryAndRest, "/") == 1 {
		return fmt.Sprintf(repositoryLookupDescriptionTemplate, repositoryAndRest), true
	}

	return fmt.Sprintf(genericAPIDescriptionTemplate, method, endpointPath), true
}

func formatCommandLabel(command ShellCommand) string {
	parts := append([]string{string(command.Name)}, command.Details.Arguments...)
	return strings.Join(parts, commandLabelSeparatorConstant)
}

func formatStandardErrorSuffix(standardError string) string {
	trimmed := strings.TrimSpace(standardError)
	if len(trimmed) == 0 {
		return ""
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmed)
}

func describeFailure(executionError error) string {
	if executionError == nil {
		return unknownFailureDescriptionConstant
	}
	message := strings.TrimSpace(executionError.Error())
	if len(message) == 0 {
		return unknownFailureDescriptionConstant
	}
	return message
}
