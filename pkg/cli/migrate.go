package cli

import (
	"context"

	"github.com/learnloop/lumen/pkg/repository/sqlite"
	"github.com/learnloop/lumen/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func cmdMigrate() *cli.Command {
	var path string

	return &cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Apply SQLite schema migrations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "sqlite-path",
				Usage:       "SQLite database file path",
				Value:       "data/lumen.db",
				Sources:     cli.EnvVars("LUMEN_SQLITE_PATH"),
				Destination: &path,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			logger := logging.Default()
			logger.Info("Migrate configuration", "path", path)

			// sqlite.New applies pending migrations
			repo, err := sqlite.New(ctx, path)
			if err != nil {
				return goerr.Wrap(err, "failed to migrate database", goerr.V("path", path))
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logger.Error("failed to close database", "error", err.Error())
				}
			}()

			logger.Info("Migration completed", "path", repo.Path())
			return nil
		},
	}
}
