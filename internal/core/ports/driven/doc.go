// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Interfaces
//
//   - GitHubAPI: token, repository metadata and repository creation calls
//   - GitRunner: git subprocess execution
//   - ProjectStore: project and linkage persistence
//   - ProjectFileStore: project file persistence
//   - ConfigStore: Application configuration
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or driving package
package driven
