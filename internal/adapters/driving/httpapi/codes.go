package httpapi

const (
	CodeInvalidRequest = "E_INVALID_REQUEST" // bad or invalid request
	CodeInternalError  = "E_INTERNAL_ERROR"  // internal server error

	// Token and access errors
	CodeTokenRequired      = "E_TOKEN_REQUIRED"       // no bearer token supplied
	CodeTokenExpired       = "E_TOKEN_EXPIRED"        // token rejected by GitHub
	CodePermissionDenied   = "E_PERMISSION_DENIED"    // token lacks access to the repository
	CodeRepositoryNotFound = "E_REPOSITORY_NOT_FOUND" // repository missing or hidden from the token

	// Project errors
	CodeProjectNotFound  = "E_PROJECT_NOT_FOUND"  // unknown project ID
	CodeProjectNotLinked = "E_PROJECT_NOT_LINKED" // project has no repository and create was not requested

	// Sync errors
	CodeConflicts     = "E_CONFLICTS"       // merge conflicts need manual resolution
	CodeFilesTooLarge = "E_FILES_TOO_LARGE" // fail strategy rejected oversized files
	CodeSyncTimeout   = "E_SYNC_TIMEOUT"    // attempts ran past their deadline
	CodeNetworkFailed = "E_NETWORK_FAILED"  // transient network failure, retries exhausted
)
