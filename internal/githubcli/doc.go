// Package githubcli reads and writes repository files through the GitHub CLI.
//
// The client issues gh api calls against the repository, git trees and contents
// endpoints of the GitHub REST API, passing the access token through the GH_TOKEN
// environment variable of the gh process. Commands run through execshell so they
// can be stubbed in tests.
package githubcli
