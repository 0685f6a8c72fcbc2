package config

import (
	"log/slog"
	"os"
	"time"

	"github.com/learnloop/lumen/pkg/domain/model"
	"github.com/learnloop/lumen/pkg/repository/sqlite"
	"github.com/learnloop/lumen/pkg/service/retrieval"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// AppConfig is the optional TOML tuning file. Missing sections keep their
// defaults.
type AppConfig struct {
	Retrieval RetrievalConfig `toml:"retrieval"`
	SQL       SQLConfig       `toml:"sql"`
	Index     IndexConfig     `toml:"index"`

	path string
}

type RetrievalConfig struct {
	TopK int `toml:"top_k"`
}

type SQLConfig struct {
	MaxRows      int    `toml:"max_rows"`
	QueryTimeout string `toml:"query_timeout"`
}

type IndexConfig struct {
	Dimension int `toml:"dimension"`
}

// DefaultAppConfig returns the configuration used when no file is given
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Retrieval: RetrievalConfig{TopK: retrieval.DefaultTopK},
		SQL: SQLConfig{
			MaxRows:      sqlite.DefaultMaxRows,
			QueryTimeout: sqlite.DefaultQueryTimeout.String(),
		},
		Index: IndexConfig{Dimension: model.DefaultEmbeddingDimension},
	}
}

// Flags returns CLI flags for the config file
func (a *AppConfig) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("LUMEN_CONFIG"),
			Destination: &a.path,
		},
	}
}

// Configure loads the file given by --config, or the defaults when unset
func (a *AppConfig) Configure() error {
	loaded := DefaultAppConfig()
	if a.path != "" {
		cfg, err := LoadAppConfiguration(a.path)
		if err != nil {
			return err
		}
		loaded = cfg
	}

	path := a.path
	*a = *loaded
	a.path = path
	return nil
}

// Validate checks that every value is usable
func (a *AppConfig) Validate() error {
	if a.Retrieval.TopK < 1 {
		return goerr.Wrap(ErrInvalidConfig, "retrieval.top_k must be positive", goerr.V(FieldKey, "retrieval.top_k"), goerr.V("value", a.Retrieval.TopK))
	}
	if a.SQL.MaxRows < 1 {
		return goerr.Wrap(ErrInvalidConfig, "sql.max_rows must be positive", goerr.V(FieldKey, "sql.max_rows"), goerr.V("value", a.SQL.MaxRows))
	}
	d, err := time.ParseDuration(a.SQL.QueryTimeout)
	if err != nil {
		return goerr.Wrap(ErrInvalidConfig, "sql.query_timeout is not a duration", goerr.V(FieldKey, "sql.query_timeout"), goerr.V("value", a.SQL.QueryTimeout))
	}
	if d <= 0 {
		return goerr.Wrap(ErrInvalidConfig, "sql.query_timeout must be positive", goerr.V(FieldKey, "sql.query_timeout"), goerr.V("value", a.SQL.QueryTimeout))
	}
	if a.Index.Dimension < 1 {
		return goerr.Wrap(ErrInvalidConfig, "index.dimension must be positive", goerr.V(FieldKey, "index.dimension"), goerr.V("value", a.Index.Dimension))
	}
	return nil
}

// QueryTimeoutDuration returns sql.query_timeout. Call after Validate.
func (a *AppConfig) QueryTimeoutDuration() time.Duration {
	d, err := time.ParseDuration(a.SQL.QueryTimeout)
	if err != nil {
		return sqlite.DefaultQueryTimeout
	}
	return d
}

func (a *AppConfig) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("path", a.path),
		slog.Int("top_k", a.Retrieval.TopK),
		slog.Int("max_rows", a.SQL.MaxRows),
		slog.String("query_timeout", a.SQL.QueryTimeout),
		slog.Int("dimension", a.Index.Dimension),
	)
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	config := DefaultAppConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return config, nil
}
