// Package domain defines the core business entities for Socrates' GitHub sync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Project / ProjectFile: tutoring projects and their stored files
//   - RepositoryRef: a parsed GitHub repository identifier
//   - FileSizeReport / LargeFileResult: size validation outcomes
//   - ConflictResolution: merge conflict outcomes
//   - SyncReport / RetryOutcome: workflow results
//   - SyncError: the classified error taxonomy
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
