package domain

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultGitHubHost is used when a reference does not name a host.
const DefaultGitHubHost = "github.com"

// RepositoryRef names a remote GitHub repository.
// It is immutable for the duration of one sync operation.
type RepositoryRef struct {
	Host  string
	Owner string
	Name  string
}

// ParseRepositoryRef parses "owner/name", "https://github.com/owner/name(.git)"
// or "git@github.com:owner/name.git".
func ParseRepositoryRef(s string) (RepositoryRef, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return RepositoryRef{}, fmt.Errorf("%w: empty", ErrInvalidRepositoryRef)
	}

	host := DefaultGitHubHost
	path := raw

	switch {
	case strings.HasPrefix(raw, "git@"):
		rest := strings.TrimPrefix(raw, "git@")
		idx := strings.Index(rest, ":")
		if idx <= 0 {
			return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryRef, s)
		}
		host = rest[:idx]
		path = rest[idx+1:]
	case strings.Contains(raw, "://"):
		u, err := url.Parse(raw)
		if err != nil {
			return RepositoryRef{}, fmt.Errorf("%w: %q: %v", ErrInvalidRepositoryRef, s, err)
		}
		if u.Host == "" {
			return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryRef, s)
		}
		host = u.Host
		path = u.Path
	case strings.HasPrefix(raw, DefaultGitHubHost+"/"):
		path = strings.TrimPrefix(raw, DefaultGitHubHost+"/")
	}

	path = strings.Trim(path, "/")
	path = strings.TrimSuffix(path, ".git")
	parts := strings.Split(path, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return RepositoryRef{}, fmt.Errorf("%w: %q", ErrInvalidRepositoryRef, s)
	}

	return RepositoryRef{Host: host, Owner: parts[0], Name: parts[1]}, nil
}

// FullName returns "owner/name".
func (r RepositoryRef) FullName() string {
	return r.Owner + "/" + r.Name
}

// CloneURL returns the HTTPS clone URL. Credentials are never embedded.
func (r RepositoryRef) CloneURL() string {
	host := r.Host
	if host == "" {
		host = DefaultGitHubHost
	}
	return fmt.Sprintf("https://%s/%s/%s.git", host, r.Owner, r.Name)
}

// IsZero reports whether the reference is unset.
func (r RepositoryRef) IsZero() bool {
	return r.Owner == "" && r.Name == ""
}

func (r RepositoryRef) String() string {
	return r.FullName()
}

// RepositoryInfo is the subset of repository metadata the sync needs.
type RepositoryInfo struct {
	Ref           RepositoryRef
	DefaultBranch string
	Private       bool
	CanPush       bool
	HTMLURL       string
}
