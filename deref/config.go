package deref

import (
	"os"

	"github.com/pelletier/go-toml/v2"

	"github.com/erraggy/oasderef/loader"
	"github.com/erraggy/oasderef/oaserrors"
)

// Config is the file form of the dereference options, as read from TOML:
//
//	mode = "strict"
//	allow_meta_patches = true
//	resolve_external = false
//
//	[loader]
//	rate_limit = 5.0
//	burst = 2
type Config struct {
	Mode             string `toml:"mode"`
	AllowMetaPatches bool   `toml:"allow_meta_patches"`
	// ResolveInternal and ResolveExternal default to true when unset.
	ResolveInternal *bool        `toml:"resolve_internal"`
	ResolveExternal *bool        `toml:"resolve_external"`
	BaseURI         string       `toml:"base_uri"`
	MaxRefDepth     int          `toml:"max_ref_depth"`
	Loader          LoaderConfig `toml:"loader"`
}

// LoaderConfig tunes the default document loader.
type LoaderConfig struct {
	// RateLimit caps remote fetches per second. Zero disables throttling.
	RateLimit float64 `toml:"rate_limit"`
	Burst     int     `toml:"burst"`
	// MaxDocumentSize caps a single document in bytes. Zero keeps the loader default.
	MaxDocumentSize int64 `toml:"max_document_size"`
}

// LoadConfig reads a TOML configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &oaserrors.ConfigError{Option: "config", Value: path, Message: "cannot read file", Cause: err}
	}
	return ParseConfig(data)
}

// ParseConfig decodes and validates a TOML configuration.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, &oaserrors.ConfigError{Option: "config", Message: "invalid TOML", Cause: err}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the values that options would reject.
func (c *Config) Validate() error {
	switch Mode(c.Mode) {
	case "", ModeDefault, ModeStrict:
	default:
		return &oaserrors.ConfigError{Option: "mode", Value: c.Mode, Message: `must be "default" or "strict"`}
	}
	if c.MaxRefDepth < 0 {
		return &oaserrors.ConfigError{Option: "max_ref_depth", Value: c.MaxRefDepth, Message: "must not be negative"}
	}
	if c.Loader.RateLimit < 0 {
		return &oaserrors.ConfigError{Option: "loader.rate_limit", Value: c.Loader.RateLimit, Message: "must not be negative"}
	}
	if c.Loader.MaxDocumentSize < 0 {
		return &oaserrors.ConfigError{Option: "loader.max_document_size", Value: c.Loader.MaxDocumentSize, Message: "must not be negative"}
	}
	return nil
}

// Options converts the configuration into options. logger is handed to the
// loader built from the [loader] table and may be nil.
func (c *Config) Options(logger loader.Logger) []Option {
	opts := []Option{
		WithMode(Mode(c.Mode)),
		WithAllowMetaPatches(c.AllowMetaPatches),
	}
	if c.ResolveInternal != nil {
		opts = append(opts, WithResolveInternal(*c.ResolveInternal))
	}
	if c.ResolveExternal != nil {
		opts = append(opts, WithResolveExternal(*c.ResolveExternal))
	}
	if c.BaseURI != "" {
		opts = append(opts, WithBaseURI(c.BaseURI))
	}
	if c.MaxRefDepth > 0 {
		opts = append(opts, WithMaxRefDepth(c.MaxRefDepth))
	}

	loaderOpts := []loader.Option{loader.WithLogger(logger)}
	if c.Loader.RateLimit > 0 {
		loaderOpts = append(loaderOpts, loader.WithRateLimit(c.Loader.RateLimit, c.Loader.Burst))
	}
	if c.Loader.MaxDocumentSize > 0 {
		loaderOpts = append(loaderOpts, loader.WithMaxDocumentSize(c.Loader.MaxDocumentSize))
	}
	opts = append(opts, WithLoader(loader.New(loaderOpts...)))
	if logger != nil {
		opts = append(opts, WithLogger(logger))
	}
	return opts
}
