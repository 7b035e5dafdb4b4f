package publishing

import (
	"path"
	"sort"
	"strings"

	"github.com/temirov/postsync/internal/repository"
)

const rootDirectoryConstant = "."

// Layout names the files that make a folder publishable.
type Layout struct {
	DocumentFile    string
	MarkerDirectory string
	MetadataFile    string
}

// DiscoverFolders returns the publishable folders of the tree ordered by path. A folder is publishable
// when it holds the document file and the marker directory, both matched case-insensitively. The
// repository root is never publishable, and folders beneath a publishable folder are not considered.
func DiscoverFolders(tree repository.Tree, layout Layout) []Folder {
	entries := append([]repository.TreeEntry(nil), tree.Entries...)
	sort.Slice(entries, func(leftIndex int, rightIndex int) bool {
		return entries[leftIndex].Path < entries[rightIndex].Path
	})

	documentsByFolder := make(map[string]string)
	markersByFolder := make(map[string]string)
	metadataByMarker := make(map[string]string)

	registerMarker := func(markerPath string) {
		parent := parentDirectory(markerPath)
		if _, exists := markersByFolder[parent]; !exists {
			markersByFolder[parent] = markerPath
		}
	}

	for _, entry := range entries {
		entryPath := repository.CleanPath(entry.Path)
		if len(entryPath) == 0 {
			continue
		}
		baseName := path.Base(entryPath)
		parent := parentDirectory(entryPath)

		switch entry.Type {
		case repository.EntryTypeTree:
			if strings.EqualFold(baseName, layout.MarkerDirectory) {
				registerMarker(entryPath)
			}
		case repository.EntryTypeBlob:
			if strings.EqualFold(baseName, layout.DocumentFile) {
				if _, exists := documentsByFolder[parent]; !exists {
					documentsByFolder[parent] = entryPath
				}
			}
			if len(parent) > 0 && strings.EqualFold(path.Base(parent), layout.MarkerDirectory) {
				registerMarker(parent)
				if strings.EqualFold(baseName, layout.MetadataFile) {
					if _, exists := metadataByMarker[parent]; !exists {
						metadataByMarker[parent] = entryPath
					}
				}
			}
		}
	}

	candidatePaths := make([]string, 0, len(markersByFolder))
	for folderPath := range markersByFolder {
		if len(folderPath) == 0 {
			continue
		}
		if _, hasDocument := documentsByFolder[folderPath]; hasDocument {
			candidatePaths = append(candidatePaths, folderPath)
		}
	}
	sort.Strings(candidatePaths)

	folders := make([]Folder, 0, len(candidatePaths))
	publishable := make(map[string]struct{}, len(candidatePaths))
	for _, folderPath := range candidatePaths {
		if hasPublishableAncestor(folderPath, publishable) {
			continue
		}
		publishable[folderPath] = struct{}{}

		markerPath := markersByFolder[folderPath]
		metadataPath, metadataExists := metadataByMarker[markerPath]
		if !metadataExists {
			metadataPath = repository.JoinPath(markerPath, layout.MetadataFile)
		}

		folders = append(folders, Folder{
			Path:           folderPath,
			DocumentPath:   documentsByFolder[folderPath],
			MetadataPath:   metadataPath,
			MetadataExists: metadataExists,
		})
	}
	return folders
}

func parentDirectory(entryPath string) string {
	parent := path.Dir(entryPath)
	if parent == rootDirectoryConstant {
		return ""
	}
	return parent
}

func hasPublishableAncestor(folderPath string, publishable map[string]struct{}) bool {
	for ancestor := parentDirectory(folderPath); len(ancestor) > 0; ancestor = parentDirectory(ancestor) {
		if _, exists := publishable[ancestor]; exists {
			return true
		}
	}
	return false
}
