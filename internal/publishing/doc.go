// Package publishing synchronizes markdown folders of a repository with blog platforms.
//
// Service walks the repository tree for folders that carry a document and a marker
// directory, compares the document checksum with the one recorded in the folder's
// sidecar file, creates or updates posts through the registered platform clients,
// and writes the refreshed sidecar back. CommandBuilder exposes the workflow as the
// sync cobra command.
package publishing
