package publishing_test

import (
	"context"
	"errors"
	"sort"
	"strconv"

	"github.com/temirov/postsync/internal/checksum"
	"github.com/temirov/postsync/internal/document"
	"github.com/temirov/postsync/internal/publishrecord"
	"github.com/temirov/postsync/internal/repository"
)

const (
	testRepositoryConstant    = "octo/blog"
	testBranchConstant        = "main"
	testDevToPlatformConstant = "dev_to"
	testMediumPlatformConst   = "medium"
)

var errStubPlatformUnavailable = errors.New("platform unavailable")

type recordedPut struct {
	Reference repository.Reference
	Update    repository.FileUpdate
}

// memoryContents is an in-memory repository recording every write.
type memoryContents struct {
	branch     string
	files      map[string][]byte
	trees      []string
	truncated  bool
	listError  error
	getErrors  map[string]error
	putError   error
	puts       []recordedPut
	getCalls   []string
	revisionOf map[string]int
}

func newMemoryContents() *memoryContents {
	return &memoryContents{
		branch:     testBranchConstant,
		files:      make(map[string][]byte),
		getErrors:  make(map[string]error),
		revisionOf: make(map[string]int),
	}
}

func (contents *memoryContents) withFile(filePath string, content string) *memoryContents {
	contents.files[filePath] = []byte(content)
	contents.revisionOf[filePath]++
	return contents
}

func (contents *memoryContents) withDirectory(directoryPath string) *memoryContents {
	contents.trees = append(contents.trees, directoryPath)
	return contents
}

func (contents *memoryContents) revision(filePath string) string {
	if _, exists := contents.files[filePath]; !exists {
		return ""
	}
	return filePath + "@" + strconv.Itoa(contents.revisionOf[filePath])
}

func (contents *memoryContents) ListTree(_ context.Context, reference repository.Reference) (repository.Tree, error) {
	if contents.listError != nil {
		return repository.Tree{}, contents.listError
	}

	seen := make(map[string]struct{})
	entries := make([]repository.TreeEntry, 0, len(contents.files))
	addTree := func(directoryPath string) {
		for current := directoryPath; len(current) > 0 && current != "."; current = parentOf(current) {
			if _, exists := seen[current]; exists {
				return
			}
			seen[current] = struct{}{}
			entries = append(entries, repository.TreeEntry{Path: current, Type: repository.EntryTypeTree})
		}
	}
	for _, directoryPath := range contents.trees {
		addTree(directoryPath)
	}
	for filePath := range contents.files {
		entries = append(entries, repository.TreeEntry{Path: filePath, Type: repository.EntryTypeBlob, Revision: contents.revision(filePath)})
		addTree(parentOf(filePath))
	}
	sort.Slice(entries, func(leftIndex int, rightIndex int) bool {
		return entries[leftIndex].Path < entries[rightIndex].Path
	})

	branch := reference.Branch
	if len(branch) == 0 {
		branch = contents.branch
	}
	return repository.Tree{Branch: branch, Entries: entries, Truncated: contents.truncated}, nil
}

func (contents *memoryContents) GetFile(_ context.Context, _ repository.Reference, filePath string) (repository.File, error) {
	contents.getCalls = append(contents.getCalls, filePath)
	if getError, exists := contents.getErrors[filePath]; exists {
		return repository.File{}, getError
	}
	content, exists := contents.files[filePath]
	if !exists {
		return repository.File{}, repository.ErrFileNotFound
	}
	return repository.File{Path: filePath, Content: append([]byte(nil), content...), Revision: contents.revision(filePath)}, nil
}

func (contents *memoryContents) PutFile(_ context.Context, reference repository.Reference, update repository.FileUpdate) error {
	contents.puts = append(contents.puts, recordedPut{Reference: reference, Update: update})
	if contents.putError != nil {
		return contents.putError
	}
	if update.Revision != contents.revision(update.Path) {
		return errors.New("revision conflict for " + update.Path)
	}
	contents.withFile(update.Path, string(update.Content))
	return nil
}

func (contents *memoryContents) record(filePath string) publishrecord.Record {
	record, _ := publishrecord.Parse(contents.files[filePath], testDevToPlatformConstant, testMediumPlatformConst)
	return record
}

func parentOf(filePath string) string {
	for index := len(filePath) - 1; index >= 0; index-- {
		if filePath[index] == '/' {
			return filePath[:index]
		}
	}
	return ""
}

type recordedPlatformCall struct {
	Operation   string
	Identifiers publishrecord.Identifiers
	Article     document.Article
}

// stubPlatform records calls and answers with canned identifiers.
type stubPlatform struct {
	name        string
	createError error
	updateError error
	// createErrors are returned by successive CreatePost calls before createError applies.
	createErrors []error
	nextID       int
	calls        []recordedPlatformCall
}

func newStubPlatform(name string) *stubPlatform {
	return &stubPlatform{name: name, nextID: 100}
}

func (client *stubPlatform) Name() string {
	return client.name
}

func (client *stubPlatform) CreatePost(_ context.Context, article document.Article) (publishrecord.Identifiers, error) {
	client.calls = append(client.calls, recordedPlatformCall{Operation: "create", Article: article})
	if len(client.createErrors) > 0 {
		queuedError := client.createErrors[0]
		client.createErrors = client.createErrors[1:]
		if queuedError != nil {
			return nil, queuedError
		}
	} else if client.createError != nil {
		return nil, client.createError
	}
	client.nextID++
	return publishrecord.Identifiers{"article_id": strconv.Itoa(client.nextID), "slug": client.name + "-" + strconv.Itoa(client.nextID)}, nil
}

func (client *stubPlatform) UpdatePost(_ context.Context, identifiers publishrecord.Identifiers, article document.Article) (publishrecord.Identifiers, error) {
	client.calls = append(client.calls, recordedPlatformCall{Operation: "update", Identifiers: identifiers, Article: article})
	if client.updateError != nil {
		return nil, client.updateError
	}
	return identifiers.Clone(), nil
}

func (client *stubPlatform) operations() []string {
	operations := make([]string, 0, len(client.calls))
	for _, call := range client.calls {
		operations = append(operations, call.Operation)
	}
	return operations
}

func publishedSidecar(content string, platforms map[string]publishrecord.Identifiers) string {
	record := publishrecord.Record{ReadmeChecksum: checksum.Compute([]byte(content)), Platforms: platforms}
	serialized, _ := publishrecord.Serialize(record)
	return string(serialized)
}
