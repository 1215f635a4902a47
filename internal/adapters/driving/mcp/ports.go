package mcp

import (
	"github.com/custodia-labs/socrates/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server exposes.
type Ports struct {
	// Handler runs the GitHub sync checks.
	Handler driving.GitHubSyncHandler

	// Projects lists stored projects. Optional.
	Projects driving.ProjectService

	// Sync reports project sync state. Optional.
	Sync driving.ProjectSyncService

	// Token is used when a tool call omits one. It is held in memory only.
	Token string
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Handler == nil {
		return ErrMissingHandler
	}
	return nil
}

func (p *Ports) token(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	if p.Token != "" {
		return p.Token, nil
	}
	return "", ErrTokenRequired
}
