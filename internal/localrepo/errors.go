package localrepo

import (
	"errors"
	"fmt"
	"strings"
)

const (
	operationErrorTemplateConstant = "%s operation failed: %v"
	conflictErrorTemplateConstant  = "%s changed since it was read: expected revision %q, found %q"
	branchMismatchTemplateConstant = "branch %s is not checked out (HEAD is %s)"
	detachedHeadMessageConstant    = "HEAD is detached; check out a branch before writing"
	authorRequiredMessageConstant  = "commit author name and email are required"
	repositoryPathMessageConstant  = "repository path required"
	stagedChangesTemplateConstant  = "index has staged changes that would be committed with the publish record: %s"
)

// OperationName names a repository operation for error reporting.
type OperationName string

// Operations supported by Repository.
const (
	OperationOpen     = OperationName("Open")
	OperationListTree = OperationName("ListTree")
	OperationGetFile  = OperationName("GetFile")
	OperationPutFile  = OperationName("PutFile")
)

var (
	// ErrDetachedHead indicates a write was requested while HEAD does not point at a branch.
	ErrDetachedHead = errors.New(detachedHeadMessageConstant)
	// ErrAuthorNotConfigured indicates the repository was opened without a commit author.
	ErrAuthorNotConfigured = errors.New(authorRequiredMessageConstant)
	// ErrRepositoryPathRequired indicates an empty repository path.
	ErrRepositoryPathRequired = errors.New(repositoryPathMessageConstant)
)

// OperationError wraps go-git failures with the operation that produced them.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying cause.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// ConflictError reports a write whose expected revision does not match HEAD.
type ConflictError struct {
	Path             string
	ExpectedRevision string
	ActualRevision   string
}

// Error describes the conflict.
func (conflictError ConflictError) Error() string {
	return fmt.Sprintf(conflictErrorTemplateConstant, conflictError.Path, conflictError.ExpectedRevision, conflictError.ActualRevision)
}

// BranchMismatchError reports a reference naming a branch other than the checked out one.
type BranchMismatchError struct {
	Requested  string
	CheckedOut string
}

// Error describes the mismatch.
func (mismatchError BranchMismatchError) Error() string {
	return fmt.Sprintf(branchMismatchTemplateConstant, mismatchError.Requested, mismatchError.CheckedOut)
}

// StagedChangesError reports index entries staged outside the file being written.
type StagedChangesError struct {
	Paths []string
}

// Error lists the staged paths.
func (stagedError StagedChangesError) Error() string {
	return fmt.Sprintf(stagedChangesTemplateConstant, strings.Join(stagedError.Paths, ", "))
}
