// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// The GitHub sync leaf components (TokenValidator, RepoAccessChecker,
// FileSizeValidator, ConflictResolver, RetryCoordinator) are stateless
// between calls; GitHubSyncHandler only delegates to them, and
// ProjectSyncService composes them into the import, pull, push and sync
// workflows.
package services
