package publishing

import (
	"context"
	"path"

	"go.uber.org/zap"

	"github.com/temirov/postsync/internal/checksum"
	"github.com/temirov/postsync/internal/document"
	"github.com/temirov/postsync/internal/platform"
	"github.com/temirov/postsync/internal/publishrecord"
	"github.com/temirov/postsync/internal/repository"
)

const (
	logMessageTreeTruncatedConstant     = "Repository tree listing was truncated; some folders may be missing"
	logMessageFoldersDiscoveredConstant = "Discovered publishable folders"
	logMessageMetadataMalformedConstant = "Sidecar is malformed; treating folder as never published"
	logMessageDecisionConstant          = "Platform decision"
	logMessagePlatformFailedConstant    = "Platform call failed"
	logMessageFolderFailedConstant      = "Folder failed"
	logMessageFolderCompletedConstant   = "Folder synchronized"
	logMessageMetadataWriteFailed       = "Sidecar write failed after platform calls succeeded"
	logMessagePartialPublishConstant    = "Some platforms failed; keeping previous checksum so the next run retries"
	logFieldRepositoryConstant          = "repository"
	logFieldBranchConstant              = "branch"
	logFieldFolderConstant              = "folder"
	logFieldPlatformConstant            = "platform"
	logFieldActionConstant              = "action"
	logFieldChecksumConstant            = "checksum"
	logFieldCountConstant               = "count"
	logFieldDryRunConstant              = "dry_run"
	logFieldIdentifiersConstant         = "identifiers"
)

// Service synchronizes publishable folders with the registered platforms.
type Service struct {
	logger        *zap.Logger
	contents      RepositoryContents
	registry      *platform.Registry
	layout        Layout
	commitMessage string
	dryRun        bool
}

// ServiceOptions carries the per-run settings of a Service.
type ServiceOptions struct {
	Layout        Layout
	CommitMessage string
	DryRun        bool
}

// NewService validates collaborators and constructs a Service.
func NewService(logger *zap.Logger, contents RepositoryContents, registry *platform.Registry, options ServiceOptions) (*Service, error) {
	if contents == nil {
		return nil, ErrRepositoryContentsNotConfigured
	}
	if registry == nil || registry.Len() == 0 {
		return nil, ErrPlatformsNotConfigured
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	defaults := DefaultConfiguration()
	layout := Layout{
		DocumentFile:    selectValue(options.Layout.DocumentFile, defaults.DocumentFile),
		MarkerDirectory: selectValue(options.Layout.MarkerDirectory, defaults.MarkerDirectory),
		MetadataFile:    selectValue(options.Layout.MetadataFile, defaults.MetadataFile),
	}

	return &Service{
		logger:        logger,
		contents:      contents,
		registry:      registry,
		layout:        layout,
		commitMessage: selectValue(options.CommitMessage, defaults.CommitMessage),
		dryRun:        options.DryRun,
	}, nil
}

// Synchronize processes every publishable folder of the repository. Folder failures are recorded in
// their outcomes and do not stop the run; the returned error is set only when the tree cannot be
// listed or the context is canceled.
func (service *Service) Synchronize(executionContext context.Context, reference repository.Reference) (SynchronizationResult, error) {
	tree, listError := service.contents.ListTree(executionContext, reference)
	if listError != nil {
		return SynchronizationResult{}, TreeListingError{Repository: reference.Repository, Cause: listError}
	}
	if len(tree.Branch) > 0 {
		reference = reference.WithBranch(tree.Branch)
	}

	result := SynchronizationResult{Repository: reference.Repository, Branch: reference.Branch, Truncated: tree.Truncated}
	if tree.Truncated {
		service.logger.Warn(logMessageTreeTruncatedConstant, zap.String(logFieldRepositoryConstant, reference.Repository))
	}

	folders := DiscoverFolders(tree, service.layout)
	service.logger.Info(
		logMessageFoldersDiscoveredConstant,
		zap.String(logFieldRepositoryConstant, reference.Repository),
		zap.String(logFieldBranchConstant, reference.Branch),
		zap.Int(logFieldCountConstant, len(folders)),
		zap.Bool(logFieldDryRunConstant, service.dryRun),
	)

	for _, folder := range folders {
		if contextError := executionContext.Err(); contextError != nil {
			return result, contextError
		}
		result.Folders = append(result.Folders, service.synchronizeFolder(executionContext, reference, folder))
	}
	return result, nil
}

type platformDecision struct {
	client      platform.Client
	action      Action
	identifiers publishrecord.Identifiers
}

func (service *Service) synchronizeFolder(executionContext context.Context, reference repository.Reference, folder Folder) FolderOutcome {
	outcome := FolderOutcome{FolderPath: folder.Path, DryRun: service.dryRun}
	folderLogger := service.logger.With(zap.String(logFieldFolderConstant, folder.Path))

	documentFile, documentError := service.contents.GetFile(executionContext, reference, folder.DocumentPath)
	if documentError != nil {
		return service.failFolder(folderLogger, outcome, documentError)
	}

	record, metadataRevision, metadataError := service.loadRecord(executionContext, reference, folder, folderLogger)
	if metadataError != nil {
		return service.failFolder(folderLogger, outcome, metadataError)
	}

	currentChecksum := checksum.Compute(documentFile.Content)
	article, articleError := document.Parse(documentFile.Content, path.Base(folder.Path))
	if articleError != nil {
		return service.failFolder(folderLogger, outcome, articleError)
	}

	decisions := service.decide(record, documentFile.Content)
	pending := false
	for _, decision := range decisions {
		folderLogger.Debug(
			logMessageDecisionConstant,
			zap.String(logFieldPlatformConstant, decision.client.Name()),
			zap.String(logFieldActionConstant, string(decision.action)),
			zap.String(logFieldChecksumConstant, currentChecksum),
		)
		if decision.action != ActionSkipped {
			pending = true
		}
	}

	if !pending || service.dryRun {
		for _, decision := range decisions {
			outcome.Platforms = append(outcome.Platforms, PlatformOutcome{
				Platform:    decision.client.Name(),
				Action:      decision.action,
				Identifiers: decision.identifiers,
			})
		}
		outcome.Action = summarizeAction(outcome.Platforms)
		folderLogger.Info(logMessageFolderCompletedConstant, zap.String(logFieldActionConstant, string(outcome.Action)), zap.Bool(logFieldDryRunConstant, service.dryRun))
		return outcome
	}

	updatedRecord := record
	succeeded := 0
	failed := 0
	for _, decision := range decisions {
		platformOutcome := service.applyDecision(executionContext, decision, article)
		outcome.Platforms = append(outcome.Platforms, platformOutcome)
		switch platformOutcome.Action {
		case ActionFailed:
			failed++
			folderLogger.Warn(logMessagePlatformFailedConstant, zap.String(logFieldPlatformConstant, platformOutcome.Platform), zap.Error(platformOutcome.Error))
		case ActionCreated, ActionUpdated:
			succeeded++
			updatedRecord = updatedRecord.WithPlatform(platformOutcome.Platform, platformOutcome.Identifiers)
		}
	}

	if succeeded == 0 {
		outcome.Action = ActionFailed
		outcome.Error = firstPlatformError(outcome.Platforms)
		folderLogger.Warn(logMessageFolderFailedConstant, zap.Error(outcome.Error))
		return outcome
	}

	if failed == 0 {
		updatedRecord = updatedRecord.WithChecksum(currentChecksum)
	} else {
		folderLogger.Warn(logMessagePartialPublishConstant)
	}

	if writeError := service.writeRecord(executionContext, reference, folder, updatedRecord, metadataRevision); writeError != nil {
		folderLogger.Error(logMessageMetadataWriteFailed, zap.Any(logFieldIdentifiersConstant, updatedRecord.Platforms), zap.Error(writeError))
		outcome.Action = ActionFailed
		outcome.Error = writeError
		return outcome
	}

	outcome.Action = summarizeAction(outcome.Platforms)
	if failed > 0 {
		outcome.Error = firstPlatformError(outcome.Platforms)
	}
	folderLogger.Info(
		logMessageFolderCompletedConstant,
		zap.String(logFieldActionConstant, string(outcome.Action)),
		zap.String(logFieldChecksumConstant, updatedRecord.ReadmeChecksum),
	)
	return outcome
}

func (service *Service) loadRecord(executionContext context.Context, reference repository.Reference, folder Folder, folderLogger *zap.Logger) (publishrecord.Record, string, error) {
	if !folder.MetadataExists {
		return publishrecord.Record{}, "", nil
	}

	metadataFile, metadataError := service.contents.GetFile(executionContext, reference, folder.MetadataPath)
	if metadataError != nil {
		return publishrecord.Record{}, "", metadataError
	}

	record, parseError := publishrecord.Parse(metadataFile.Content, service.registry.Names()...)
	if parseError != nil {
		folderLogger.Warn(logMessageMetadataMalformedConstant, zap.Error(parseError))
	}
	return record, metadataFile.Revision, nil
}

// decide applies the decision table to every registered platform in name order.
func (service *Service) decide(record publishrecord.Record, documentContent []byte) []platformDecision {
	checksumMatches := checksum.Matches(record.ReadmeChecksum, documentContent)
	clients := service.registry.Clients()
	decisions := make([]platformDecision, 0, len(clients))
	for _, client := range clients {
		identifiers, linked := record.PlatformIdentifiers(client.Name())
		decision := platformDecision{client: client, identifiers: identifiers}
		switch {
		case !linked:
			decision.action = ActionCreated
		case checksumMatches:
			decision.action = ActionSkipped
		default:
			decision.action = ActionUpdated
		}
		decisions = append(decisions, decision)
	}
	return decisions
}

func (service *Service) applyDecision(executionContext context.Context, decision platformDecision, article document.Article) PlatformOutcome {
	platformOutcome := PlatformOutcome{Platform: decision.client.Name(), Action: decision.action, Identifiers: decision.identifiers}

	var returnedIdentifiers publishrecord.Identifiers
	var callError error
	switch decision.action {
	case ActionCreated:
		returnedIdentifiers, callError = decision.client.CreatePost(executionContext, article)
	case ActionUpdated:
		returnedIdentifiers, callError = decision.client.UpdatePost(executionContext, decision.identifiers.Clone(), article)
	default:
		return platformOutcome
	}

	if callError != nil {
		platformOutcome.Action = ActionFailed
		platformOutcome.Error = callError
		return platformOutcome
	}
	platformOutcome.Identifiers = returnedIdentifiers
	return platformOutcome
}

func (service *Service) writeRecord(executionContext context.Context, reference repository.Reference, folder Folder, record publishrecord.Record, metadataRevision string) error {
	serialized, serializationError := publishrecord.Serialize(record)
	if serializationError != nil {
		return serializationError
	}
	return service.contents.PutFile(executionContext, reference, repository.FileUpdate{
		Path:     folder.MetadataPath,
		Content:  serialized,
		Message:  service.commitMessage,
		Revision: metadataRevision,
	})
}

func (service *Service) failFolder(folderLogger *zap.Logger, outcome FolderOutcome, failure error) FolderOutcome {
	folderLogger.Warn(logMessageFolderFailedConstant, zap.Error(failure))
	outcome.Action = ActionFailed
	outcome.Error = failure
	return outcome
}

// summarizeAction folds platform outcomes into a folder action: failed beats created beats updated beats skipped.
func summarizeAction(platformOutcomes []PlatformOutcome) Action {
	summary := ActionSkipped
	for _, platformOutcome := range platformOutcomes {
		switch platformOutcome.Action {
		case ActionFailed:
			return ActionFailed
		case ActionCreated:
			summary = ActionCreated
		case ActionUpdated:
			if summary != ActionCreated {
				summary = ActionUpdated
			}
		}
	}
	return summary
}

func firstPlatformError(platformOutcomes []PlatformOutcome) error {
	for _, platformOutcome := range platformOutcomes {
		if platformOutcome.Error != nil {
			return platformOutcome.Error
		}
	}
	return nil
}
