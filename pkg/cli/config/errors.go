package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrUnknownBackend  = goerr.New("unknown repository backend")
	ErrUnknownProvider = goerr.New("unknown LLM provider")
	ErrMissingFlag     = goerr.New("required flag is missing")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	FlagKey       = "flag"
	FieldKey      = "field"
)
