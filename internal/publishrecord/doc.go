// Package publishrecord reads and writes the sidecar JSON that records a folder's publish state.
//
// The sidecar stores the document checksum under "readme_sha" and one object per
// platform holding the identifiers of the post on that platform. Parsing fails
// soft so an empty or hand-edited sidecar requests a first-time publish instead
// of halting a run.
package publishrecord
