// Package driving defines the ports the CLI, the HTTP API and the MCP server
// call into: the GitHub sync handler facade, the project workflows, project
// management and settings.
//
// Implementations live in internal/core/services.
package driving
