// Package localrepo reads and writes files of a local git checkout through go-git.
//
// Listings and reads come from the commit at HEAD. Writes land in the worktree and
// are committed immediately with the configured author, so the checkout can be
// pushed by whatever tooling owns it.
package localrepo
