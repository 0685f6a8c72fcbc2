package config

import (
	"context"
	"log/slog"

	"github.com/learnloop/lumen/pkg/service/snapshot"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
	"google.golang.org/api/option"
)

// Storage holds CLI flags for the Cloud Storage bucket used by index snapshots
type Storage struct {
	bucket   string
	prefix   string
	endpoint string
}

// Flags returns CLI flags for snapshot storage configuration
func (s *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-bucket",
			Category:    "Storage",
			Usage:       "Cloud Storage bucket for index snapshots",
			Sources:     cli.EnvVars("LUMEN_STORAGE_BUCKET"),
			Destination: &s.bucket,
		},
		&cli.StringFlag{
			Name:        "storage-prefix",
			Category:    "Storage",
			Usage:       "Object name prefix for index snapshots",
			Value:       snapshot.DefaultPrefix,
			Sources:     cli.EnvVars("LUMEN_STORAGE_PREFIX"),
			Destination: &s.prefix,
		},
		&cli.StringFlag{
			Name:        "storage-endpoint",
			Category:    "Storage",
			Usage:       "Custom Cloud Storage endpoint (emulator); disables authentication",
			Sources:     cli.EnvVars("LUMEN_STORAGE_ENDPOINT"),
			Destination: &s.endpoint,
		},
	}
}

func (s *Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", s.bucket),
		slog.String("prefix", s.prefix),
		slog.String("endpoint", s.endpoint),
	)
}

// Configure returns a snapshot service on the configured bucket. The returned
// function closes the storage client.
func (s *Storage) Configure(ctx context.Context) (*snapshot.Service, func(), error) {
	if s.bucket == "" {
		return nil, nil, goerr.Wrap(ErrMissingFlag, "storage-bucket is required", goerr.V(FlagKey, "storage-bucket"))
	}

	var opts []option.ClientOption
	if s.endpoint != "" {
		opts = append(opts, option.WithEndpoint(s.endpoint), option.WithoutAuthentication())
	}

	store, err := snapshot.NewGCSStore(ctx, s.bucket, opts...)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", s.bucket))
	}
	closer := func() { _ = store.Close() }

	svc, err := snapshot.New(store, snapshot.WithPrefix(s.prefix))
	if err != nil {
		closer()
		return nil, nil, goerr.Wrap(err, "failed to create snapshot service")
	}
	return svc, closer, nil
}
