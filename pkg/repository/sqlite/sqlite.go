package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/repository/sqlite/migrations"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"

	_ "modernc.org/sqlite" // SQLite driver
)

const (
	DefaultMaxRows      = 200
	DefaultQueryTimeout = 5 * time.Second
)

// Repository is a SQLite backed interfaces.Repository. Writes go through a
// read-write handle; model generated statements go through a separate
// read-only handle.
type Repository struct {
	db   *sql.DB
	ro   *sql.DB
	path string

	maxRows      int
	queryTimeout time.Duration

	content      *contentRepository
	contentChunk *contentChunkRepository
	queryLog     *queryLogRepository
	rawQuery     *rawQueryExecutor
}

var _ interfaces.Repository = &Repository{}

type Option func(*Repository)

// WithMaxRows caps the number of rows returned by raw queries
func WithMaxRows(n int) Option {
	return func(r *Repository) {
		if n > 0 {
			r.maxRows = n
		}
	}
}

// WithQueryTimeout bounds the execution time of raw queries
func WithQueryTimeout(d time.Duration) Option {
	return func(r *Repository) {
		if d > 0 {
			r.queryTimeout = d
		}
	}
}

// New opens (and creates if needed) the SQLite database at path and applies
// pending migrations.
func New(ctx context.Context, path string, opts ...Option) (*Repository, error) {
	if path == "" {
		return nil, goerr.New("sqlite database path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, goerr.Wrap(err, "failed to create database directory", goerr.V("path", path))
	}

	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open database", goerr.V("path", path))
	}

	r := &Repository{
		db:           db,
		path:         path,
		maxRows:      DefaultMaxRows,
		queryTimeout: DefaultQueryTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}

	if err := r.migrate(ctx, migrations.FS); err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to run migrations", goerr.V("path", path))
	}

	// The read-only handle is opened after migrations so the file exists
	ro, err := sql.Open("sqlite", "file:"+path+"?mode=ro&_pragma=query_only(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		_ = db.Close()
		return nil, goerr.Wrap(err, "failed to open read-only database", goerr.V("path", path))
	}
	r.ro = ro

	r.content = &contentRepository{db: db}
	r.contentChunk = &contentChunkRepository{db: db}
	r.queryLog = &queryLogRepository{db: db}
	r.rawQuery = &rawQueryExecutor{db: ro, maxRows: r.maxRows, timeout: r.queryTimeout}

	logging.From(ctx).Debug("SQLite repository opened", "path", path, "max_rows", r.maxRows, "query_timeout", r.queryTimeout)
	return r, nil
}

func (r *Repository) Content() interfaces.ContentRepository {
	return r.content
}

func (r *Repository) ContentChunk() interfaces.ContentChunkRepository {
	return r.contentChunk
}

func (r *Repository) QueryLog() interfaces.QueryLogRepository {
	return r.queryLog
}

func (r *Repository) RawQuery() interfaces.RawQueryExecutor {
	return r.rawQuery
}

// Path returns the database file path
func (r *Repository) Path() string {
	return r.path
}

// Close closes both database handles
func (r *Repository) Close() error {
	var roErr error
	if r.ro != nil {
		roErr = r.ro.Close()
	}
	if err := r.db.Close(); err != nil {
		return goerr.Wrap(err, "failed to close database")
	}
	if roErr != nil {
		return goerr.Wrap(roErr, "failed to close read-only database")
	}
	return nil
}

// Migrate applies pending migrations. New already does this; the method is
// exposed for the migrate command.
func (r *Repository) Migrate(ctx context.Context) error {
	return r.migrate(ctx, migrations.FS)
}

func (r *Repository) migrate(ctx context.Context, fsys fs.FS) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`); err != nil {
		return goerr.Wrap(err, "failed to create schema_migrations table")
	}

	var currentVersion int
	row := r.db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return goerr.Wrap(err, "failed to get current schema version")
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return goerr.Wrap(err, "failed to read migrations directory")
	}

	var upFiles []string
	for _, entry := range entries {
		if strings.HasSuffix(entry.Name(), ".up.sql") {
			upFiles = append(upFiles, entry.Name())
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		// "001_initial.up.sql" -> 1
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue
		}
		if version <= currentVersion {
			continue
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return goerr.Wrap(err, "failed to read migration", goerr.V("name", name))
		}
		if _, err := r.db.ExecContext(ctx, string(content)); err != nil {
			return goerr.Wrap(err, "failed to execute migration", goerr.V("name", name))
		}
		if _, err := r.db.ExecContext(ctx, "INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return goerr.Wrap(err, "failed to record migration", goerr.V("name", name))
		}
		logging.From(ctx).Info("Applied migration", "name", name, "version", version)
	}

	return nil
}
