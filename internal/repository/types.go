package repository

import (
	"errors"
	"path"
	"strings"
)

const (
	fileNotFoundMessageConstant = "file not found"
	pathSeparatorConstant       = "/"
)

// ErrFileNotFound indicates the requested path does not exist at the reference.
var ErrFileNotFound = errors.New(fileNotFoundMessageConstant)

// EntryType classifies tree entries.
type EntryType string

// Tree entry types reported by the backends.
const (
	EntryTypeBlob EntryType = EntryType("blob")
	EntryTypeTree EntryType = EntryType("tree")
)

// Reference identifies a repository and, optionally, a branch. An empty branch means the default branch.
type Reference struct {
	Repository string
	Branch     string
}

// WithBranch returns a copy of the reference pointing at the provided branch.
func (reference Reference) WithBranch(branch string) Reference {
	reference.Branch = branch
	return reference
}

// TreeEntry is a single path in a recursive listing.
type TreeEntry struct {
	Path     string
	Type     EntryType
	Revision string
}

// Tree is a recursive listing of a repository at a branch.
type Tree struct {
	// Branch is the branch the listing was taken from, resolved when the reference left it empty.
	Branch    string
	Entries   []TreeEntry
	Truncated bool
}

// File is the content of a single path together with the revision needed to replace it.
type File struct {
	Path     string
	Content  []byte
	Revision string
}

// FileUpdate describes a write of a single file. An empty Revision creates the file.
type FileUpdate struct {
	Path     string
	Content  []byte
	Message  string
	Revision string
}

// CleanPath normalizes a slash-separated repository path without a leading separator.
func CleanPath(candidate string) string {
	trimmed := strings.Trim(strings.TrimSpace(candidate), pathSeparatorConstant)
	if len(trimmed) == 0 {
		return ""
	}
	cleaned := path.Clean(trimmed)
	if cleaned == "." {
		return ""
	}
	return cleaned
}

// JoinPath joins repository path segments, treating an empty directory as the repository root.
func JoinPath(segments ...string) string {
	nonEmpty := make([]string, 0, len(segments))
	for _, segment := range segments {
		if cleaned := CleanPath(segment); len(cleaned) > 0 {
			nonEmpty = append(nonEmpty, cleaned)
		}
	}
	return strings.Join(nonEmpty, pathSeparatorConstant)
}
