package githubcli

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/temirov/postsync/internal/execshell"
	"github.com/temirov/postsync/internal/repository"
)

const (
	apiSubcommandConstant              = "api"
	methodFlagConstant                 = "-X"
	inputFlagConstant                  = "--input"
	stdinReferenceConstant             = "-"
	acceptHeaderFlagConstant           = "-H"
	acceptHeaderValueConstant          = "Accept: application/vnd.github+json"
	httpMethodPutConstant              = "PUT"
	tokenEnvironmentVariableConstant   = "GH_TOKEN"
	promptEnvironmentVariableConstant  = "GH_PROMPT_DISABLED"
	promptDisabledValueConstant        = "1"
	repositoryEndpointTemplateConstant = "repos/%s"
	treeEndpointTemplateConstant       = "repos/%s/git/trees/%s?recursive=1"
	contentsEndpointTemplateConstant   = "repos/%s/contents/%s"
	contentsQueryTemplateConstant      = "%s?ref=%s"
	blobEndpointTemplateConstant       = "repos/%s/git/blobs/%s"
	repositoryFieldNameConstant        = "repository"
	pathFieldNameConstant              = "path"
	branchFieldNameConstant            = "branch"
	messageFieldNameConstant           = "message"
	requiredValueMessageConstant       = "value required"
	base64EncodingConstant             = "base64"
	notFoundMarkerConstant             = "HTTP 404"
	fileNotFoundTemplateConstant       = "%w: %s"
	unsupportedEncodingTemplate        = "unsupported content encoding %q"
	pathSeparatorConstant              = "/"
	githubHostConstant                 = "github.com"
	unsupportedHostTemplateConstant    = "unsupported host %s"
)

// RepositoryMetadata contains key details resolved from GitHub.
type RepositoryMetadata struct {
	NameWithOwner string
	Description   string
	DefaultBranch string
}

// GitHubCommandExecutor is the minimal interface required from execshell.ShellExecutor.
type GitHubCommandExecutor interface {
	ExecuteGitHubCLI(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// Client coordinates GitHub CLI invocations through execshell.
type Client struct {
	executor    GitHubCommandExecutor
	accessToken string
}

// NewClient constructs a GitHub CLI client. An empty access token leaves gh to its own credential store.
func NewClient(executor GitHubCommandExecutor, accessToken string) (*Client, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &Client{executor: executor, accessToken: strings.TrimSpace(accessToken)}, nil
}

// NormalizeRepository converts owner/name, GitHub URLs and GitHub ssh remotes into owner/name.
func NormalizeRepository(repositoryReference string) (string, error) {
	if len(strings.TrimSpace(repositoryReference)) == 0 {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: requiredValueMessageConstant}
	}
	remote, parseError := repository.ParseRemote(repositoryReference)
	if parseError != nil {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: parseError.Error()}
	}
	if len(remote.Host) > 0 && !strings.EqualFold(remote.Host, githubHostConstant) {
		return "", InvalidInputError{FieldName: repositoryFieldNameConstant, Message: fmt.Sprintf(unsupportedHostTemplateConstant, remote.Host)}
	}
	return remote.FullName(), nil
}

// ResolveRepoMetadata retrieves canonical metadata for a repository using gh api.
func (client *Client) ResolveRepoMetadata(executionContext context.Context, repositoryReference string) (RepositoryMetadata, error) {
	repositoryIdentifier, normalizationError := NormalizeRepository(repositoryReference)
	if normalizationError != nil {
		return RepositoryMetadata{}, normalizationError
	}

	executionResult, executionError := client.executeAPI(executionContext, fmt.Sprintf(repositoryEndpointTemplateConstant, repositoryIdentifier), nil)
	if executionError != nil {
		return RepositoryMetadata{}, OperationError{Operation: OperationResolveRepoMetadata, Cause: executionError}
	}

	var response struct {
		FullName      string `json:"full_name"`
		Description   string `json:"description"`
		DefaultBranch string `json:"default_branch"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return RepositoryMetadata{}, ResponseDecodingError{Operation: OperationResolveRepoMetadata, Cause: decodingError}
	}

	return RepositoryMetadata{
		NameWithOwner: response.FullName,
		Description:   response.Description,
		DefaultBranch: response.DefaultBranch,
	}, nil
}

// ListTree lists every path of the branch recursively. An empty branch resolves to the default branch.
func (client *Client) ListTree(executionContext context.Context, reference repository.Reference) (repository.Tree, error) {
	repositoryIdentifier, normalizationError := NormalizeRepository(reference.Repository)
	if normalizationError != nil {
		return repository.Tree{}, normalizationError
	}

	branch := strings.TrimSpace(reference.Branch)
	if len(branch) == 0 {
		metadata, metadataError := client.ResolveRepoMetadata(executionContext, repositoryIdentifier)
		if metadataError != nil {
			return repository.Tree{}, metadataError
		}
		branch = metadata.DefaultBranch
	}
	if len(branch) == 0 {
		return repository.Tree{}, InvalidInputError{FieldName: branchFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := fmt.Sprintf(treeEndpointTemplateConstant, repositoryIdentifier, url.PathEscape(branch))
	executionResult, executionError := client.executeAPI(executionContext, endpoint, nil)
	if executionError != nil {
		return repository.Tree{}, OperationError{Operation: OperationListTree, Cause: executionError}
	}

	var response struct {
		Tree []struct {
			Path string `json:"path"`
			Type string `json:"type"`
			SHA  string `json:"sha"`
		} `json:"tree"`
		Truncated bool `json:"truncated"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return repository.Tree{}, ResponseDecodingError{Operation: OperationListTree, Cause: decodingError}
	}

	entries := make([]repository.TreeEntry, 0, len(response.Tree))
	for _, treeEntry := range response.Tree {
		entryType := repository.EntryType(treeEntry.Type)
		if entryType != repository.EntryTypeBlob && entryType != repository.EntryTypeTree {
			continue
		}
		entries = append(entries, repository.TreeEntry{Path: treeEntry.Path, Type: entryType, Revision: treeEntry.SHA})
	}

	return repository.Tree{Branch: branch, Entries: entries, Truncated: response.Truncated}, nil
}

// GetFile fetches a file through the contents API, falling back to the blob API for large files.
func (client *Client) GetFile(executionContext context.Context, reference repository.Reference, filePath string) (repository.File, error) {
	repositoryIdentifier, normalizationError := NormalizeRepository(reference.Repository)
	if normalizationError != nil {
		return repository.File{}, normalizationError
	}
	cleanedPath := repository.CleanPath(filePath)
	if len(cleanedPath) == 0 {
		return repository.File{}, InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, escapePath(cleanedPath))
	if branch := strings.TrimSpace(reference.Branch); len(branch) > 0 {
		endpoint = fmt.Sprintf(contentsQueryTemplateConstant, endpoint, url.QueryEscape(branch))
	}

	executionResult, executionError := client.executeAPI(executionContext, endpoint, nil)
	if executionError != nil {
		if isNotFound(executionError) {
			return repository.File{}, OperationError{Operation: OperationGetFile, Cause: fmt.Errorf(fileNotFoundTemplateConstant, repository.ErrFileNotFound, cleanedPath)}
		}
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: executionError}
	}

	var response struct {
		Path     string `json:"path"`
		SHA      string `json:"sha"`
		Size     int    `json:"size"`
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return repository.File{}, ResponseDecodingError{Operation: OperationGetFile, Cause: decodingError}
	}

	if response.Size > 0 && len(response.Content) == 0 {
		return client.getBlob(executionContext, repositoryIdentifier, cleanedPath, response.SHA)
	}

	content, decodingError := decodeContent(response.Encoding, response.Content)
	if decodingError != nil {
		return repository.File{}, ResponseDecodingError{Operation: OperationGetFile, Cause: decodingError}
	}

	return repository.File{Path: cleanedPath, Content: content, Revision: response.SHA}, nil
}

// PutFile creates or replaces a file on the branch with a single commit.
func (client *Client) PutFile(executionContext context.Context, reference repository.Reference, update repository.FileUpdate) error {
	repositoryIdentifier, normalizationError := NormalizeRepository(reference.Repository)
	if normalizationError != nil {
		return normalizationError
	}
	cleanedPath := repository.CleanPath(update.Path)
	if len(cleanedPath) == 0 {
		return InvalidInputError{FieldName: pathFieldNameConstant, Message: requiredValueMessageConstant}
	}
	if len(strings.TrimSpace(update.Message)) == 0 {
		return InvalidInputError{FieldName: messageFieldNameConstant, Message: requiredValueMessageConstant}
	}

	payload := struct {
		Message string `json:"message"`
		Content string `json:"content"`
		SHA     string `json:"sha,omitempty"`
		Branch  string `json:"branch,omitempty"`
	}{
		Message: update.Message,
		Content: base64.StdEncoding.EncodeToString(update.Content),
		SHA:     update.Revision,
		Branch:  strings.TrimSpace(reference.Branch),
	}

	payloadBytes, encodingError := json.Marshal(payload)
	if encodingError != nil {
		return PayloadEncodingError{Operation: OperationPutFile, Cause: encodingError}
	}

	endpoint := fmt.Sprintf(contentsEndpointTemplateConstant, repositoryIdentifier, escapePath(cleanedPath))
	if _, executionError := client.executeAPI(executionContext, endpoint, payloadBytes, methodFlagConstant, httpMethodPutConstant); executionError != nil {
		return OperationError{Operation: OperationPutFile, Cause: executionError}
	}
	return nil
}

func (client *Client) getBlob(executionContext context.Context, repositoryIdentifier string, filePath string, blobRevision string) (repository.File, error) {
	endpoint := fmt.Sprintf(blobEndpointTemplateConstant, repositoryIdentifier, blobRevision)
	executionResult, executionError := client.executeAPI(executionContext, endpoint, nil)
	if executionError != nil {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: executionError}
	}

	var response struct {
		SHA      string `json:"sha"`
		Encoding string `json:"encoding"`
		Content  string `json:"content"`
	}
	if decodingError := json.Unmarshal([]byte(executionResult.StandardOutput), &response); decodingError != nil {
		return repository.File{}, ResponseDecodingError{Operation: OperationGetFile, Cause: decodingError}
	}

	content, decodingError := decodeContent(response.Encoding, response.Content)
	if decodingError != nil {
		return repository.File{}, ResponseDecodingError{Operation: OperationGetFile, Cause: decodingError}
	}
	return repository.File{Path: filePath, Content: content, Revision: blobRevision}, nil
}

func (client *Client) executeAPI(executionContext context.Context, endpoint string, standardInput []byte, extraArguments ...string) (execshell.ExecutionResult, error) {
	arguments := []string{apiSubcommandConstant, endpoint}
	arguments = append(arguments, extraArguments...)
	if standardInput != nil {
		arguments = append(arguments, inputFlagConstant, stdinReferenceConstant)
	}
	arguments = append(arguments, acceptHeaderFlagConstant, acceptHeaderValueConstant)

	environment := map[string]string{promptEnvironmentVariableConstant: promptDisabledValueConstant}
	if len(client.accessToken) > 0 {
		environment[tokenEnvironmentVariableConstant] = client.accessToken
	}

	return client.executor.ExecuteGitHubCLI(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		EnvironmentVariables: environment,
		StandardInput:        standardInput,
	})
}

func decodeContent(encoding string, content string) ([]byte, error) {
	switch encoding {
	case base64EncodingConstant:
		compacted := strings.NewReplacer("\n", "", "\r", "").Replace(content)
		return base64.StdEncoding.DecodeString(compacted)
	case "":
		return []byte(content), nil
	default:
		return nil, fmt.Errorf(unsupportedEncodingTemplate, encoding)
	}
}

func escapePath(filePath string) string {
	segments := strings.Split(filePath, pathSeparatorConstant)
	for segmentIndex, segment := range segments {
		segments[segmentIndex] = url.PathEscape(segment)
	}
	return strings.Join(segments, pathSeparatorConstant)
}

func isNotFound(executionError error) bool {
	var failedError execshell.CommandFailedError
	if !errors.As(executionError, &failedError) {
		return false
	}
	return strings.Contains(failedError.Result.StandardError, notFoundMarkerConstant)
}
