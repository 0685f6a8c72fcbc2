package config

import (
	"context"
	"log/slog"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/repository/memory"
	"github.com/learnloop/lumen/pkg/repository/sqlite"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Repository holds CLI flags for repository backend configuration
type Repository struct {
	backend string
	path    string
}

// Flags returns CLI flags for repository configuration
func (r *Repository) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "repository-backend",
			Category:    "Repository",
			Usage:       "Repository backend type (sqlite or memory)",
			Value:       "sqlite",
			Sources:     cli.EnvVars("LUMEN_REPOSITORY_BACKEND"),
			Destination: &r.backend,
		},
		&cli.StringFlag{
			Name:        "sqlite-path",
			Category:    "Repository",
			Usage:       "SQLite database file path",
			Value:       "data/lumen.db",
			Sources:     cli.EnvVars("LUMEN_SQLITE_PATH"),
			Destination: &r.path,
		},
	}
}

// Backend returns the configured backend type
func (r *Repository) Backend() string {
	return r.backend
}

func (r *Repository) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("backend", r.backend),
		slog.String("path", r.path),
	)
}

// Configure initializes and returns a repository based on the configured backend.
// The caller is responsible for calling Close() on the returned repository.
func (r *Repository) Configure(ctx context.Context, app *AppConfig) (interfaces.Repository, error) {
	switch r.backend {
	case "sqlite":
		if r.path == "" {
			return nil, goerr.Wrap(ErrMissingFlag, "sqlite-path is required when using sqlite backend", goerr.V(FlagKey, "sqlite-path"))
		}
		if app == nil {
			app = DefaultAppConfig()
		}
		repo, err := sqlite.New(ctx, r.path,
			sqlite.WithMaxRows(app.SQL.MaxRows),
			sqlite.WithQueryTimeout(app.QueryTimeoutDuration()),
		)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize sqlite repository")
		}
		logging.Default().Info("Using SQLite repository", "path", r.path)
		return repo, nil

	case "memory":
		logging.Default().Info("Using in-memory repository (development mode)")
		return memory.New(), nil

	default:
		return nil, goerr.Wrap(ErrUnknownBackend, "invalid repository backend", goerr.V(FlagKey, "repository-backend"), goerr.V("backend", r.backend))
	}
}
