package repository

import (
	"fmt"
	"strings"
)

const (
	sshProtocolPrefixConstant      = "ssh://"
	httpsProtocolPrefixConstant    = "https://"
	httpProtocolPrefixConstant     = "http://"
	sshUserDelimiterConstant       = "@"
	scpPathDelimiterConstant       = ":"
	gitSuffixConstant              = ".git"
	remoteParseErrorTemplate       = "%s: %s"
	invalidRemoteMessageConstant   = "expected owner/name, an https URL or an ssh remote"
	requiredRemoteMessageConstant  = "repository required"
	ownerNameSegmentCountConstant  = 2
	hostOwnerNameSegmentCountConst = 3
)

// RemoteParseError indicates a repository string could not be reduced to owner/name.
type RemoteParseError struct {
	Input   string
	Message string
}

// Error describes the parse failure.
func (parseError RemoteParseError) Error() string {
	return fmt.Sprintf(remoteParseErrorTemplate, parseError.Input, parseError.Message)
}

// Remote is a hosted repository split into host, owner and name. Host is empty for bare owner/name input.
type Remote struct {
	Host  string
	Owner string
	Name  string
}

// FullName returns owner/name.
func (remote Remote) FullName() string {
	return remote.Owner + pathSeparatorConstant + remote.Name
}

// ParseRemote accepts owner/name, host/owner/name, https URLs, ssh:// URLs and scp-like git@host:owner/name remotes.
func ParseRemote(input string) (Remote, error) {
	trimmed := strings.TrimSpace(input)
	if len(trimmed) == 0 {
		return Remote{}, RemoteParseError{Input: input, Message: requiredRemoteMessageConstant}
	}

	switch {
	case strings.HasPrefix(trimmed, httpsProtocolPrefixConstant):
		return parseHostPath(input, strings.TrimPrefix(trimmed, httpsProtocolPrefixConstant))
	case strings.HasPrefix(trimmed, httpProtocolPrefixConstant):
		return parseHostPath(input, strings.TrimPrefix(trimmed, httpProtocolPrefixConstant))
	case strings.HasPrefix(trimmed, sshProtocolPrefixConstant):
		return parseHostPath(input, stripUser(strings.TrimPrefix(trimmed, sshProtocolPrefixConstant)))
	case strings.Contains(trimmed, sshUserDelimiterConstant) && strings.Contains(trimmed, scpPathDelimiterConstant):
		hostAndPath := stripUser(trimmed)
		host, path, _ := strings.Cut(hostAndPath, scpPathDelimiterConstant)
		remote, parseError := parseOwnerName(input, path)
		if parseError != nil {
			return Remote{}, parseError
		}
		remote.Host = host
		return remote, nil
	}

	segments := strings.Split(strings.Trim(trimmed, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) == hostOwnerNameSegmentCountConst {
		return parseHostPath(input, trimmed)
	}
	return parseOwnerName(input, trimmed)
}

func stripUser(remote string) string {
	if _, afterUser, found := strings.Cut(remote, sshUserDelimiterConstant); found {
		return afterUser
	}
	return remote
}

func parseHostPath(input string, hostAndPath string) (Remote, error) {
	host, path, found := strings.Cut(strings.Trim(hostAndPath, pathSeparatorConstant), pathSeparatorConstant)
	if !found || len(host) == 0 {
		return Remote{}, RemoteParseError{Input: input, Message: invalidRemoteMessageConstant}
	}
	remote, parseError := parseOwnerName(input, path)
	if parseError != nil {
		return Remote{}, parseError
	}
	remote.Host = host
	return remote, nil
}

func parseOwnerName(input string, path string) (Remote, error) {
	segments := strings.Split(strings.Trim(path, pathSeparatorConstant), pathSeparatorConstant)
	if len(segments) != ownerNameSegmentCountConstant {
		return Remote{}, RemoteParseError{Input: input, Message: invalidRemoteMessageConstant}
	}
	owner := segments[0]
	name := strings.TrimSuffix(segments[1], gitSuffixConstant)
	if len(owner) == 0 || len(name) == 0 {
		return Remote{}, RemoteParseError{Input: input, Message: invalidRemoteMessageConstant}
	}
	return Remote{Owner: owner, Name: name}, nil
}
