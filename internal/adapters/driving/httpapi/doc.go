// Package httpapi is the gin HTTP adapter for the GitHub sync workflows.
//
// Routes:
//
//	GET  /healthz
//	GET  /github/projects
//	POST /github/import
//	POST /github/projects/:id/pull
//	POST /github/projects/:id/push
//	POST /github/projects/:id/sync
//	GET  /github/projects/:id/status
//
// Every /github route except status and listing requires the caller's
// GitHub token as "Authorization: Bearer <token>". The token is used for
// the request only and never stored.
//
// Classified sync errors map to status codes: 401 for token and permission
// problems, 404 for a missing repository or project, 409 for unresolved
// conflicts, 413 for oversized files under the fail strategy, 504 for an
// attempt deadline and 502 for other network failures. A partial result
// (repository created but push failed, files excluded for size, conflicts
// left for manual resolution) is returned as 207 with the full report.
package httpapi
