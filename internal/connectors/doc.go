// Package connectors holds clients for the remote services projects are
// synchronised with. Each connector implements a driven port and is wired
// in cmd/socrates; the GitHub REST client lives in connectors/github.
package connectors
