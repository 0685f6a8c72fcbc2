package config

import (
	"context"
	"log/slog"

	"github.com/learnloop/lumen/pkg/domain/interfaces"
	"github.com/learnloop/lumen/pkg/service/vectorindex"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Index holds CLI flags for the on-disk vector index
type Index struct {
	dir string
}

// Flags returns CLI flags for index configuration
func (x *Index) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "index-dir",
			Category:    "Index",
			Usage:       "Directory holding index.bin and id_map.json",
			Value:       "data/index",
			Sources:     cli.EnvVars("LUMEN_INDEX_DIR"),
			Destination: &x.dir,
		},
	}
}

// Dir returns the index directory
func (x *Index) Dir() string {
	return x.dir
}

func (x *Index) LogValue() slog.Value {
	return slog.GroupValue(slog.String("dir", x.dir))
}

// Configure opens the index in Dir. A corrupt artifact pair is an error.
func (x *Index) Configure(ctx context.Context, app *AppConfig, embedder interfaces.Embedder) (*vectorindex.Index, error) {
	if x.dir == "" {
		return nil, goerr.Wrap(ErrMissingFlag, "index-dir is required", goerr.V(FlagKey, "index-dir"))
	}
	if app == nil {
		app = DefaultAppConfig()
	}

	idx, err := vectorindex.Open(ctx, x.dir, app.Index.Dimension, embedder)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open vector index", goerr.V("dir", x.dir))
	}
	return idx, nil
}
