package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/socrates/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/socrates/internal/core/domain"
	"github.com/custodia-labs/socrates/internal/core/ports/driven"
)

// Store is a SQLite-based storage that provides access to the project
// store interfaces through wrapper types.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new SQLite store at the specified data directory.
// If dataDir is empty, defaults to ~/.socrates/data/socrates.db.
func NewStore(dataDir string) (*Store, error) {
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".socrates", "data")
	}

	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "socrates.db")

	db, err := sql.Open("sqlite",
		dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// ProjectStore returns a ProjectStore interface backed by this store.
func (s *Store) ProjectStore() driven.ProjectStore {
	return &projectStore{store: s}
}

// ProjectFileStore returns a ProjectFileStore interface backed by this store.
func (s *Store) ProjectFileStore() driven.ProjectFileStore {
	return &projectFileStore{store: s}
}

// migrate applies every NNN_*.up.sql newer than the recorded version,
// each in its own transaction.
func (s *Store) migrate(fsys fs.FS) error {
	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		if name := entry.Name(); strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}
		if err := s.apply(version, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}
	}

	return nil
}

func (s *Store) apply(version int, script string) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.Exec(script); err != nil {
		return err
	}
	if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
		return err
	}
	return tx.Commit()
}

// ==================== Project Store ====================

// projectStore implements driven.ProjectStore.
type projectStore struct {
	store *Store
}

var _ driven.ProjectStore = (*projectStore)(nil)

const projectColumns = `id, name, repository, branch, last_commit_sha, last_sync_at,
	last_sync_status, last_sync_error, excluded_paths, created_at, updated_at`

// Save stores or updates a project.
func (s *projectStore) Save(ctx context.Context, project domain.Project) error {
	now := time.Now().UTC()
	if project.CreatedAt.IsZero() {
		project.CreatedAt = now
	}
	if project.UpdatedAt.IsZero() {
		project.UpdatedAt = now
	}

	excludedJSON, err := json.Marshal(nonNilPaths(project.ExcludedPaths))
	if err != nil {
		return fmt.Errorf("marshaling excluded paths: %w", err)
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO projects (`+projectColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			repository = excluded.repository,
			branch = excluded.branch,
			last_commit_sha = excluded.last_commit_sha,
			last_sync_at = excluded.last_sync_at,
			last_sync_status = excluded.last_sync_status,
			last_sync_error = excluded.last_sync_error,
			excluded_paths = excluded.excluded_paths,
			updated_at = excluded.updated_at
	`, project.ID, project.Name, project.Repository, project.Branch, project.LastCommitSHA,
		nullTime(project.LastSyncAt), string(project.LastSyncStatus), project.LastSyncError,
		string(excludedJSON), project.CreatedAt.UTC(), project.UpdatedAt.UTC())
	if err != nil {
		return fmt.Errorf("saving project: %w", err)
	}
	return nil
}

// Get retrieves a project by ID.
func (s *projectStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	row := s.store.db.QueryRowContext(ctx, `SELECT `+projectColumns+` FROM projects WHERE id = ?`, id)
	project, err := scanProject(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("scanning project: %w", err)
	}
	return project, nil
}

// List returns all projects ordered by name.
func (s *projectStore) List(ctx context.Context) ([]domain.Project, error) {
	rows, err := s.store.db.QueryContext(ctx, `SELECT `+projectColumns+` FROM projects ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("querying projects: %w", err)
	}
	defer rows.Close()

	var projects []domain.Project //nolint:prealloc // size unknown from query
	for rows.Next() {
		project, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning project: %w", err)
		}
		projects = append(projects, *project)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating projects: %w", err)
	}
	return projects, nil
}

// Delete removes a project. Its files are removed by the foreign key cascade.
func (s *projectStore) Delete(ctx context.Context, id string) error {
	_, err := s.store.db.ExecContext(ctx, "DELETE FROM projects WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting project: %w", err)
	}
	return nil
}

// ==================== Project File Store ====================

// projectFileStore implements driven.ProjectFileStore.
type projectFileStore struct {
	store *Store
}

var _ driven.ProjectFileStore = (*projectFileStore)(nil)

// List returns all files of a project ordered by path.
func (s *projectFileStore) List(ctx context.Context, projectID string) ([]domain.ProjectFile, error) {
	rows, err := s.store.db.QueryContext(ctx, `
		SELECT path, content, updated_at FROM project_files
		WHERE project_id = ? ORDER BY path
	`, projectID)
	if err != nil {
		return nil, fmt.Errorf("querying project files: %w", err)
	}
	defer rows.Close()

	files := []domain.ProjectFile{}
	for rows.Next() {
		var f domain.ProjectFile
		if err := rows.Scan(&f.Path, &f.Content, &f.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning project file: %w", err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating project files: %w", err)
	}
	return files, nil
}

// Replace atomically replaces the project's file set.
func (s *projectFileStore) Replace(ctx context.Context, projectID string, files []domain.ProjectFile) error {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	var exists int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(1) FROM projects WHERE id = ?", projectID).Scan(&exists); err != nil {
		return fmt.Errorf("checking project: %w", err)
	}
	if exists == 0 {
		return domain.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, "DELETE FROM project_files WHERE project_id = ?", projectID); err != nil {
		return fmt.Errorf("clearing project files: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO project_files (project_id, path, content, size, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	now := time.Now().UTC()
	for _, f := range files {
		updated := f.UpdatedAt
		if updated.IsZero() {
			updated = now
		}
		content := f.Content
		if content == nil {
			content = []byte{}
		}
		if _, err := stmt.ExecContext(ctx, projectID, f.Path, content, len(content), updated.UTC()); err != nil {
			return fmt.Errorf("inserting %s: %w", f.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing project files: %w", err)
	}
	return nil
}

// Count returns the number of stored files.
func (s *projectFileStore) Count(ctx context.Context, projectID string) (int, error) {
	var n int
	err := s.store.db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM project_files WHERE project_id = ?", projectID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting project files: %w", err)
	}
	return n, nil
}

// ==================== Helpers ====================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProject(row rowScanner) (*domain.Project, error) {
	var p domain.Project
	var status, excludedJSON string
	var lastSyncAt sql.NullTime
	var createdAt, updatedAt sql.NullTime
	if err := row.Scan(&p.ID, &p.Name, &p.Repository, &p.Branch, &p.LastCommitSHA, &lastSyncAt,
		&status, &p.LastSyncError, &excludedJSON, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	if excludedJSON != "" {
		if err := json.Unmarshal([]byte(excludedJSON), &p.ExcludedPaths); err != nil {
			return nil, fmt.Errorf("unmarshaling excluded paths: %w", err)
		}
	}
	if len(p.ExcludedPaths) == 0 {
		p.ExcludedPaths = nil
	}

	p.LastSyncStatus = domain.SyncStatus(status)
	if lastSyncAt.Valid {
		p.LastSyncAt = lastSyncAt.Time
	}
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	if updatedAt.Valid {
		p.UpdatedAt = updatedAt.Time
	}
	return &p, nil
}

func nonNilPaths(paths []string) []string {
	if paths == nil {
		return []string{}
	}
	return paths
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
