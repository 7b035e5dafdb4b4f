// Package execshell provides structured helpers for invoking external tools.
//
// ShellExecutor wraps a CommandRunner with zap lifecycle logging and typed
// failures, OSCommandRunner executes processes through os/exec, and
// CommandMessageFormatter renders human-readable descriptions of the gh api
// calls postsync issues against the GitHub REST API.
package execshell
