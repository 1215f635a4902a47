// Package mcp provides an MCP (Model Context Protocol) server adapter for Socrates.
// It lets AI assistants run the GitHub sync checks and inspect project sync state.
package mcp

import "errors"

var (
	// ErrMissingHandler is returned when the GitHub sync handler is not provided.
	ErrMissingHandler = errors.New("mcp: github sync handler is required")

	// ErrTokenRequired is returned by tools that need a token when neither the
	// call nor the server supplies one.
	ErrTokenRequired = errors.New("mcp: github token required (pass token or set GITHUB_TOKEN)")

	// ErrProjectsUnavailable is returned by project tools when the server runs
	// without project storage.
	ErrProjectsUnavailable = errors.New("mcp: project storage is not configured")
)
