package localrepo

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/temirov/postsync/internal/repository"
)

const (
	originRemoteNameConstant  = "origin"
	fileModeConstant          = 0o644
	directoryModeConstant     = 0o755
	detachedHeadLabelConstant = "HEAD"
)

// Author identifies the signature used for commits written by the repository.
type Author struct {
	Name  string
	Email string
}

// Repository is a local checkout opened through go-git.
type Repository struct {
	gitRepository *git.Repository
	author        Author
	clock         func() time.Time
}

// Open opens the git repository containing repositoryPath.
func Open(repositoryPath string, author Author) (*Repository, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return nil, ErrRepositoryPathRequired
	}
	if len(strings.TrimSpace(author.Name)) == 0 || len(strings.TrimSpace(author.Email)) == 0 {
		return nil, ErrAuthorNotConfigured
	}

	gitRepository, openError := git.PlainOpenWithOptions(trimmedPath, &git.PlainOpenOptions{DetectDotGit: true})
	if openError != nil {
		return nil, OperationError{Operation: OperationOpen, Cause: openError}
	}
	return &Repository{gitRepository: gitRepository, author: author, clock: time.Now}, nil
}

// Remote reports the hosted repository behind the origin remote, when one is configured.
func (localRepository *Repository) Remote() (repository.Remote, bool) {
	remote, remoteError := localRepository.gitRepository.Remote(originRemoteNameConstant)
	if remoteError != nil {
		return repository.Remote{}, false
	}
	for _, remoteURL := range remote.Config().URLs {
		if parsed, parseError := repository.ParseRemote(remoteURL); parseError == nil {
			return parsed, true
		}
	}
	return repository.Remote{}, false
}

// ListTree lists every blob and directory of the commit at HEAD.
func (localRepository *Repository) ListTree(executionContext context.Context, reference repository.Reference) (repository.Tree, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return repository.Tree{}, contextError
	}

	branch, headCommit, resolveError := localRepository.resolveHead(reference)
	if resolveError != nil {
		return repository.Tree{}, OperationError{Operation: OperationListTree, Cause: resolveError}
	}

	tree, treeError := headCommit.Tree()
	if treeError != nil {
		return repository.Tree{}, OperationError{Operation: OperationListTree, Cause: treeError}
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	entries := make([]repository.TreeEntry, 0)
	for {
		entryPath, entry, walkError := walker.Next()
		if errors.Is(walkError, io.EOF) {
			break
		}
		if walkError != nil {
			return repository.Tree{}, OperationError{Operation: OperationListTree, Cause: walkError}
		}

		var entryType repository.EntryType
		switch {
		case entry.Mode == filemode.Dir:
			entryType = repository.EntryTypeTree
		case entry.Mode.IsFile():
			entryType = repository.EntryTypeBlob
		default:
			continue
		}
		entries = append(entries, repository.TreeEntry{Path: entryPath, Type: entryType, Revision: entry.Hash.String()})
	}

	return repository.Tree{Branch: branch, Entries: entries}, nil
}

// GetFile reads a file from the commit at HEAD.
func (localRepository *Repository) GetFile(executionContext context.Context, reference repository.Reference, filePath string) (repository.File, error) {
	if contextError := executionContext.Err(); contextError != nil {
		return repository.File{}, contextError
	}

	_, headCommit, resolveError := localRepository.resolveHead(reference)
	if resolveError != nil {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: resolveError}
	}

	cleanedPath := repository.CleanPath(filePath)
	file, fileError := headCommit.File(cleanedPath)
	if errors.Is(fileError, object.ErrFileNotFound) {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: repository.ErrFileNotFound}
	}
	if fileError != nil {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: fileError}
	}

	reader, readerError := file.Reader()
	if readerError != nil {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: readerError}
	}
	defer reader.Close()

	content, readError := io.ReadAll(reader)
	if readError != nil {
		return repository.File{}, OperationError{Operation: OperationGetFile, Cause: readError}
	}

	return repository.File{Path: cleanedPath, Content: content, Revision: file.Hash.String()}, nil
}

// PutFile writes the file into the worktree and commits it on the checked out branch.
// The update revision must match the blob at HEAD, and an empty revision requires the file to be absent.
func (localRepository *Repository) PutFile(executionContext context.Context, reference repository.Reference, update repository.FileUpdate) error {
	if contextError := executionContext.Err(); contextError != nil {
		return contextError
	}

	branch, headCommit, resolveError := localRepository.resolveHead(reference)
	if resolveError != nil {
		return OperationError{Operation: OperationPutFile, Cause: resolveError}
	}
	if branch == detachedHeadLabelConstant {
		return OperationError{Operation: OperationPutFile, Cause: ErrDetachedHead}
	}

	cleanedPath := repository.CleanPath(update.Path)
	currentRevision := ""
	if currentFile, fileError := headCommit.File(cleanedPath); fileError == nil {
		currentRevision = currentFile.Hash.String()
	} else if !errors.Is(fileError, object.ErrFileNotFound) {
		return OperationError{Operation: OperationPutFile, Cause: fileError}
	}
	if currentRevision != update.Revision {
		return ConflictError{Path: cleanedPath, ExpectedRevision: update.Revision, ActualRevision: currentRevision}
	}

	worktree, worktreeError := localRepository.gitRepository.Worktree()
	if worktreeError != nil {
		return OperationError{Operation: OperationPutFile, Cause: worktreeError}
	}

	worktreeStatus, statusError := worktree.Status()
	if statusError != nil {
		return OperationError{Operation: OperationPutFile, Cause: statusError}
	}
	if stagedPaths := stagedPathsExcept(worktreeStatus, cleanedPath); len(stagedPaths) > 0 {
		return StagedChangesError{Paths: stagedPaths}
	}

	absolutePath := filepath.Join(worktree.Filesystem.Root(), filepath.FromSlash(cleanedPath))
	if mkdirError := os.MkdirAll(filepath.Dir(absolutePath), directoryModeConstant); mkdirError != nil {
		return OperationError{Operation: OperationPutFile, Cause: mkdirError}
	}
	if writeError := os.WriteFile(absolutePath, update.Content, fileModeConstant); writeError != nil {
		return OperationError{Operation: OperationPutFile, Cause: writeError}
	}

	if _, addError := worktree.Add(cleanedPath); addError != nil {
		return OperationError{Operation: OperationPutFile, Cause: addError}
	}

	_, commitError := worktree.Commit(update.Message, &git.CommitOptions{
		Author: &object.Signature{
			Name:  localRepository.author.Name,
			Email: localRepository.author.Email,
			When:  localRepository.clock(),
		},
	})
	if commitError != nil {
		return OperationError{Operation: OperationPutFile, Cause: commitError}
	}
	return nil
}

// stagedPathsExcept lists index entries that differ from HEAD, other than excludedPath.
func stagedPathsExcept(worktreeStatus git.Status, excludedPath string) []string {
	var stagedPaths []string
	for filePath, fileStatus := range worktreeStatus {
		if filePath == excludedPath {
			continue
		}
		if fileStatus.Staging == git.Unmodified || fileStatus.Staging == git.Untracked {
			continue
		}
		stagedPaths = append(stagedPaths, filePath)
	}
	sort.Strings(stagedPaths)
	return stagedPaths
}

func (localRepository *Repository) resolveHead(reference repository.Reference) (string, *object.Commit, error) {
	headReference, headError := localRepository.gitRepository.Head()
	if headError != nil {
		return "", nil, headError
	}

	checkedOutBranch := detachedHeadLabelConstant
	if headReference.Name().IsBranch() {
		checkedOutBranch = headReference.Name().Short()
	}

	requestedBranch := strings.TrimSpace(reference.Branch)
	if len(requestedBranch) > 0 && requestedBranch != checkedOutBranch {
		return "", nil, BranchMismatchError{Requested: requestedBranch, CheckedOut: checkedOutBranch}
	}

	headCommit, commitError := localRepository.gitRepository.CommitObject(headReference.Hash())
	if commitError != nil {
		return "", nil, commitError
	}
	return checkedOutBranch, headCommit, nil
}
