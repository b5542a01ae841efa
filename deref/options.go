package deref

import (
	"net/url"

	"github.com/erraggy/oasderef/loader"
	"github.com/erraggy/oasderef/oaserrors"
)

// Mode selects how schemas are post-processed.
type Mode string

const (
	// ModeDefault flattens allOf compositions after dereferencing.
	ModeDefault Mode = "default"
	// ModeStrict dereferences only and leaves allOf untouched.
	ModeStrict Mode = "strict"
)

// DefaultMaxRefDepth is the default limit on nested reference expansions.
const DefaultMaxRefDepth = 100

// Option is a function that configures a dereference operation.
type Option func(*config) error

// config holds the resolved configuration for one call.
type config struct {
	mode             Mode
	allowMetaPatches bool
	resolveInternal  bool
	resolveExternal  bool
	propertyMacro    ModelPropertyMacro
	parameterMacro   ParameterMacro
	loader           loader.Loader
	baseURI          string
	logger           loader.Logger
	maxRefDepth      int
}

// applyOptions applies option functions over the defaults.
func applyOptions(opts ...Option) (*config, error) {
	cfg := &config{
		mode:            ModeDefault,
		resolveInternal: true,
		resolveExternal: true,
		logger:          loader.NopLogger{},
		maxRefDepth:     DefaultMaxRefDepth,
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(cfg); err != nil {
			return nil, err
		}
	}
	if cfg.loader == nil {
		cfg.loader = loader.New(loader.WithLogger(cfg.logger))
	}
	return cfg, nil
}

// WithMode selects ModeDefault or ModeStrict. The empty string means ModeDefault.
func WithMode(mode Mode) Option {
	return func(cfg *config) error {
		switch mode {
		case "":
			cfg.mode = ModeDefault
		case ModeDefault, ModeStrict:
			cfg.mode = mode
		default:
			return &oaserrors.ConfigError{Option: "mode", Value: string(mode), Message: `must be "default" or "strict"`}
		}
		return nil
	}
}

// WithAllowMetaPatches controls whether dereferenced elements record the
// absolute URI they were copied from (metadata key "$$ref").
func WithAllowMetaPatches(enabled bool) Option {
	return func(cfg *config) error {
		cfg.allowMetaPatches = enabled
		return nil
	}
}

// WithResolveInternal toggles resolution of references into the same document.
func WithResolveInternal(enabled bool) Option {
	return func(cfg *config) error {
		cfg.resolveInternal = enabled
		return nil
	}
}

// WithResolveExternal toggles resolution of references into other documents,
// including Example externalValue fetches.
func WithResolveExternal(enabled bool) Option {
	return func(cfg *config) error {
		cfg.resolveExternal = enabled
		return nil
	}
}

// WithModelPropertyMacro sets the hook that computes a default for every
// object-shaped schema property.
func WithModelPropertyMacro(fn ModelPropertyMacro) Option {
	return func(cfg *config) error {
		cfg.propertyMacro = fn
		return nil
	}
}

// WithParameterMacro sets the hook that computes a default for every parameter.
func WithParameterMacro(fn ParameterMacro) Option {
	return func(cfg *config) error {
		cfg.parameterMacro = fn
		return nil
	}
}

// WithLoader sets the loader used for external documents. Defaults to a
// fresh loader.Service.
func WithLoader(l loader.Loader) Option {
	return func(cfg *config) error {
		if l == nil {
			return &oaserrors.ConfigError{Option: "loader", Message: "must not be nil"}
		}
		cfg.loader = l
		return nil
	}
}

// WithBaseURI sets the location of the root document. Relative references
// resolve against it. A fragment marks the root element as a part of that
// document rather than the whole of it.
func WithBaseURI(uri string) Option {
	return func(cfg *config) error {
		if _, err := url.Parse(uri); err != nil {
			return &oaserrors.ConfigError{Option: "baseURI", Value: uri, Cause: err}
		}
		cfg.baseURI = uri
		return nil
	}
}

// WithLogger sets the structured logger.
func WithLogger(l loader.Logger) Option {
	return func(cfg *config) error {
		if l == nil {
			l = loader.NopLogger{}
		}
		cfg.logger = l
		return nil
	}
}

// WithMaxRefDepth limits how many references may be expanded inside one another.
func WithMaxRefDepth(n int) Option {
	return func(cfg *config) error {
		if n < 1 {
			return &oaserrors.ConfigError{Option: "maxRefDepth", Value: n, Message: "must be at least 1"}
		}
		cfg.maxRefDepth = n
		return nil
	}
}
