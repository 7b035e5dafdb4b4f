// Package githubauth locates the GitHub credential used for repository access.
package githubauth
