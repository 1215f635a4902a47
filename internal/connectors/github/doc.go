// Package github is the GitHub REST API client used by the sync subsystem.
//
// The client implements [driven.GitHubAPI] with go-github. It exposes the
// three calls the sync workflows need: the authenticated user (token
// validation), repository metadata (access checks) and repository creation.
//
// # Authentication
//
// Every call carries the caller's token through an oauth2 static token
// source. Personal access tokens (classic or fine-grained) and OAuth access
// tokens both work; private repositories need the 'repo' scope. The client
// keeps no token between calls.
//
// # Rate Limiting
//
// Requests are throttled proactively with a token bucket and reactively
// from the X-RateLimit-* response headers. A rate-limited response is
// returned as a retryable network sync error so the retry coordinator can
// back off.
//
// # Errors
//
// Non-2xx responses become *APIError, which reports its status through
// HTTPStatus. Transport failures become domain.KindNetworkSyncFailed.
package github
