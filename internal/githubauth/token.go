package githubauth

import (
	"errors"
	"os"
	"strings"
)

// Environment variable names consulted for GitHub credentials, in preference order.
const (
	EnvGitHubAccessToken = "GITHUB_ACCESS_TOKEN"
	EnvGitHubCLIToken    = "GH_TOKEN"
	EnvGitHubToken       = "GITHUB_TOKEN"
	EnvGitHubAPIToken    = "GITHUB_API_TOKEN"
)

const (
	// SourceConfiguration marks a token supplied through configuration or flags.
	SourceConfiguration          = "configuration"
	tokenNotFoundMessageConstant = "github token not found: set tools.sync.github_token or one of GITHUB_ACCESS_TOKEN, GH_TOKEN, GITHUB_TOKEN, GITHUB_API_TOKEN"
)

// ErrTokenNotFound indicates no configured value and no environment variable supplied a token.
var ErrTokenNotFound = errors.New(tokenNotFoundMessageConstant)

var tokenPreference = []string{
	EnvGitHubAccessToken,
	EnvGitHubCLIToken,
	EnvGitHubToken,
	EnvGitHubAPIToken,
}

// EnvironmentLookup mirrors os.LookupEnv.
type EnvironmentLookup func(key string) (string, bool)

// Token is a resolved credential together with the place it came from. Source is safe to log; Value is not.
type Token struct {
	Value  string
	Source string
}

// TokenResolver picks a GitHub token from configuration or the environment.
type TokenResolver struct {
	lookup EnvironmentLookup
}

// NewTokenResolver constructs a resolver. A nil lookup falls back to the process environment.
func NewTokenResolver(lookup EnvironmentLookup) TokenResolver {
	if lookup == nil {
		lookup = os.LookupEnv
	}
	return TokenResolver{lookup: lookup}
}

// Resolve returns the configured token when present, otherwise the first non-empty environment variable.
func (resolver TokenResolver) Resolve(configuredToken string) (Token, error) {
	if trimmed := strings.TrimSpace(configuredToken); len(trimmed) > 0 {
		return Token{Value: trimmed, Source: SourceConfiguration}, nil
	}

	lookup := resolver.lookup
	if lookup == nil {
		lookup = os.LookupEnv
	}
	for _, key := range tokenPreference {
		value, exists := lookup(key)
		if !exists {
			continue
		}
		value = strings.TrimSpace(value)
		if len(value) == 0 {
			continue
		}
		return Token{Value: value, Source: key}, nil
	}
	return Token{}, ErrTokenNotFound
}
