package publishing

import (
	"context"
	"errors"
	"fmt"

	"github.com/temirov/postsync/internal/repository"
)

const (
	folderFailuresTemplateConstant        = "%d of %d folders failed to synchronize"
	treeListingErrorTemplateConstant      = "listing repository %s failed: %v"
	contentsNotConfiguredMessageConstant  = "repository contents client not configured"
	platformsNotConfiguredMessageConstant = "no platform clients registered"
)

// Action is the outcome of a folder or of one platform call.
type Action string

// Actions recorded in outcomes.
const (
	ActionCreated Action = Action("created")
	ActionUpdated Action = Action("updated")
	ActionSkipped Action = Action("skipped")
	ActionFailed  Action = Action("failed")
)

var (
	// ErrRepositoryContentsNotConfigured indicates the service was built without a source-control client.
	ErrRepositoryContentsNotConfigured = errors.New(contentsNotConfiguredMessageConstant)
	// ErrPlatformsNotConfigured indicates the service was built without platform clients.
	ErrPlatformsNotConfigured = errors.New(platformsNotConfiguredMessageConstant)
)

// RepositoryContents is the source-control collaborator of the service.
type RepositoryContents interface {
	ListTree(executionContext context.Context, reference repository.Reference) (repository.Tree, error)
	GetFile(executionContext context.Context, reference repository.Reference, filePath string) (repository.File, error)
	PutFile(executionContext context.Context, reference repository.Reference, update repository.FileUpdate) error
}

// Folder is a publishable folder discovered in the repository tree.
type Folder struct {
	// Path is the folder path relative to the repository root.
	Path string
	// DocumentPath is the path of the markdown document.
	DocumentPath string
	// MetadataPath is the path of the sidecar file, whether or not it exists yet.
	MetadataPath string
	// MetadataExists reports whether the sidecar file is present in the tree.
	MetadataExists bool
}

// PlatformOutcome records what happened on one platform for one folder.
type PlatformOutcome struct {
	Platform    string
	Action      Action
	Identifiers map[string]string
	Error       error
}

// FolderOutcome records what happened to one folder.
type FolderOutcome struct {
	FolderPath string
	Action     Action
	// DryRun marks outcomes that were decided but not carried out.
	DryRun    bool
	Platforms []PlatformOutcome
	Error     error
}

// SynchronizationResult lists the outcome of every publishable folder in discovery order.
type SynchronizationResult struct {
	Repository string
	Branch     string
	Truncated  bool
	Folders    []FolderOutcome
}

// FailedCount returns the number of folders whose outcome is failed.
func (result SynchronizationResult) FailedCount() int {
	failed := 0
	for _, folder := range result.Folders {
		if folder.Action == ActionFailed {
			failed++
		}
	}
	return failed
}

// CountByAction tallies folder outcomes.
func (result SynchronizationResult) CountByAction() map[Action]int {
	counts := make(map[Action]int, 4)
	for _, folder := range result.Folders {
		counts[folder.Action]++
	}
	return counts
}

// TreeListingError reports a repository that could not be listed; nothing was processed.
type TreeListingError struct {
	Repository string
	Cause      error
}

// Error describes the listing failure.
func (listingError TreeListingError) Error() string {
	return fmt.Sprintf(treeListingErrorTemplateConstant, listingError.Repository, listingError.Cause)
}

// Unwrap exposes the underlying cause.
func (listingError TreeListingError) Unwrap() error {
	return listingError.Cause
}

// FolderFailuresError reports a run in which at least one folder failed.
type FolderFailuresError struct {
	Failed int
	Total  int
}

// Error describes the failures.
func (failuresError FolderFailuresError) Error() string {
	return fmt.Sprintf(folderFailuresTemplateConstant, failuresError.Failed, failuresError.Total)
}
