package domain

import "time"

// Project is a tutoring project whose files are kept in the application
// database and optionally linked to a GitHub repository.
type Project struct {
	// ID is the unique identifier for the project.
	ID string

	// Name is the human-readable project name.
	Name string

	// Repository is the linked "owner/name", empty when unlinked.
	Repository string

	// Branch is the remote branch the project tracks.
	Branch string

	// LastCommitSHA is the remote commit the stored files were last synced with.
	LastCommitSHA string

	// LastSyncAt is when the last sync attempt finished.
	LastSyncAt time.Time

	// LastSyncStatus is the status of the last sync attempt.
	LastSyncStatus SyncStatus

	// LastSyncError holds the classified error message of the last failed attempt.
	LastSyncError string

	// ExcludedPaths are remote files kept out of storage because they were
	// over the size limit. Pushes leave them untouched on the remote.
	ExcludedPaths []string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsLinked reports whether the project has a GitHub repository.
func (p *Project) IsLinked() bool {
	return p.Repository != ""
}

// RepositoryRef parses the linked repository.
func (p *Project) RepositoryRef() (RepositoryRef, error) {
	if !p.IsLinked() {
		return RepositoryRef{}, ErrProjectNotLinked
	}
	return ParseRepositoryRef(p.Repository)
}

// ProjectFile is one stored project file.
type ProjectFile struct {
	// Path is slash-separated and relative to the project root.
	Path      string
	Content   []byte
	UpdatedAt time.Time
}

// ProjectSyncStatus summarises a project's GitHub linkage.
type ProjectSyncStatus struct {
	ProjectID      string     `json:"project_id"`
	Name           string     `json:"name"`
	Linked         bool       `json:"linked"`
	Repository     string     `json:"repository,omitempty"`
	Branch         string     `json:"branch,omitempty"`
	LastCommitSHA  string     `json:"last_commit_sha,omitempty"`
	LastSyncAt     *time.Time `json:"last_sync_at,omitempty"`
	LastSyncStatus SyncStatus `json:"last_sync_status,omitempty"`
	LastSyncError  string     `json:"last_sync_error,omitempty"`
	ExcludedPaths  []string   `json:"excluded_paths,omitempty"`
	FileCount      int        `json:"file_count"`
}
