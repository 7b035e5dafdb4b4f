package publishing

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	reportHeaderTemplateConstant       = "Repository %s (branch %s)\n"
	reportTruncatedLineConstant        = "warning: tree listing was truncated; some folders may be missing\n"
	reportNoFoldersLineConstant        = "No publishable folders found\n"
	reportFolderLineTemplateConstant   = "%-14s %s\n"
	reportPlatformLineTemplateConstant = "  %-12s %s%s\n"
	reportErrorLineTemplateConstant    = "  error: %v\n"
	reportSummaryTemplateConstant      = "Summary: %d created, %d updated, %d skipped, %d failed\n"
	reportIdentifierPairTemplate       = "%s=%s"
	reportIdentifierSeparatorConstant  = ", "
	reportIdentifierWrapperTemplate    = " (%s)"
	reportDryRunPrefixConstant         = "would "
	unsupportedReportFormatTemplate    = "unsupported report format %q"
	reportCreateVerbConstant           = "create"
	reportUpdateVerbConstant           = "update"
	yamlIndentConstant                 = 2
)

// ReportWriter renders synchronization results.
type ReportWriter struct {
	Format string
}

type yamlReport struct {
	Repository string             `yaml:"repository"`
	Branch     string             `yaml:"branch,omitempty"`
	Truncated  bool               `yaml:"truncated,omitempty"`
	DryRun     bool               `yaml:"dry_run,omitempty"`
	Summary    map[string]int     `yaml:"summary"`
	Folders    []yamlFolderReport `yaml:"folders"`
}

type yamlFolderReport struct {
	Path      string               `yaml:"path"`
	Action    string               `yaml:"action"`
	Error     string               `yaml:"error,omitempty"`
	Platforms []yamlPlatformReport `yaml:"platforms,omitempty"`
}

type yamlPlatformReport struct {
	Name        string            `yaml:"name"`
	Action      string            `yaml:"action"`
	Identifiers map[string]string `yaml:"identifiers,omitempty"`
	Error       string            `yaml:"error,omitempty"`
}

// Write renders the result in the configured format.
func (reportWriter ReportWriter) Write(output io.Writer, result SynchronizationResult) error {
	switch strings.ToLower(strings.TrimSpace(reportWriter.Format)) {
	case "", ReportFormatText:
		return writeTextReport(output, result)
	case ReportFormatYAML:
		return writeYAMLReport(output, result)
	default:
		return fmt.Errorf(unsupportedReportFormatTemplate, reportWriter.Format)
	}
}

func writeTextReport(output io.Writer, result SynchronizationResult) error {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(reportHeaderTemplateConstant, result.Repository, result.Branch))
	if result.Truncated {
		builder.WriteString(reportTruncatedLineConstant)
	}
	if len(result.Folders) == 0 {
		builder.WriteString(reportNoFoldersLineConstant)
	}

	for _, folder := range result.Folders {
		builder.WriteString(fmt.Sprintf(reportFolderLineTemplateConstant, describeAction(folder.Action, folder.DryRun), folder.FolderPath))
		for _, platformOutcome := range folder.Platforms {
			builder.WriteString(fmt.Sprintf(
				reportPlatformLineTemplateConstant,
				platformOutcome.Platform,
				describeAction(platformOutcome.Action, folder.DryRun),
				describeIdentifiers(platformOutcome.Identifiers),
			))
		}
		if folder.Error != nil {
			builder.WriteString(fmt.Sprintf(reportErrorLineTemplateConstant, folder.Error))
		}
	}

	counts := result.CountByAction()
	builder.WriteString(fmt.Sprintf(reportSummaryTemplateConstant, counts[ActionCreated], counts[ActionUpdated], counts[ActionSkipped], counts[ActionFailed]))

	_, writeError := io.WriteString(output, builder.String())
	return writeError
}

func writeYAMLReport(output io.Writer, result SynchronizationResult) error {
	report := yamlReport{
		Repository: result.Repository,
		Branch:     result.Branch,
		Truncated:  result.Truncated,
		Summary:    make(map[string]int, 4),
		Folders:    make([]yamlFolderReport, 0, len(result.Folders)),
	}
	for action, count := range result.CountByAction() {
		report.Summary[string(action)] = count
	}

	for _, folder := range result.Folders {
		report.DryRun = report.DryRun || folder.DryRun
		folderReport := yamlFolderReport{Path: folder.FolderPath, Action: describeAction(folder.Action, folder.DryRun)}
		if folder.Error != nil {
			folderReport.Error = folder.Error.Error()
		}
		for _, platformOutcome := range folder.Platforms {
			platformReport := yamlPlatformReport{
				Name:        platformOutcome.Platform,
				Action:      describeAction(platformOutcome.Action, folder.DryRun),
				Identifiers: platformOutcome.Identifiers,
			}
			if platformOutcome.Error != nil {
				platformReport.Error = platformOutcome.Error.Error()
			}
			folderReport.Platforms = append(folderReport.Platforms, platformReport)
		}
		report.Folders = append(report.Folders, folderReport)
	}

	encoder := yaml.NewEncoder(output)
	encoder.SetIndent(yamlIndentConstant)
	if encodingError := encoder.Encode(report); encodingError != nil {
		return encodingError
	}
	return encoder.Close()
}

func describeAction(action Action, dryRun bool) string {
	if !dryRun {
		return string(action)
	}
	switch action {
	case ActionCreated:
		return reportDryRunPrefixConstant + reportCreateVerbConstant
	case ActionUpdated:
		return reportDryRunPrefixConstant + reportUpdateVerbConstant
	default:
		return string(action)
	}
}

func describeIdentifiers(identifiers map[string]string) string {
	if len(identifiers) == 0 {
		return ""
	}
	keys := make([]string, 0, len(identifiers))
	for key := range identifiers {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(keys))
	for _, key := range keys {
		pairs = append(pairs, fmt.Sprintf(reportIdentifierPairTemplate, key, identifiers[key]))
	}
	return fmt.Sprintf(reportIdentifierWrapperTemplate, strings.Join(pairs, reportIdentifierSeparatorConstant))
}
