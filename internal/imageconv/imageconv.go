package imageconv

import (
	"context"
	"errors"
	"fmt"

	"bookminify/internal/cmdexec"
	"bookminify/internal/config"
)

// Profile is a named set of re-encoding parameters.
type Profile struct {
	Name               string
	Quality            int
	ResizeMaxDimension int // 0 keeps the original dimensions
	DestExtension      string
}

// Converter re-encodes src into dst according to a profile.
type Converter interface {
	Name() string
	Convert(ctx context.Context, src, dst string, p Profile) error
}

// Option configures converters built by New.
type Option func(*options)

type options struct {
	exec cmdexec.Executor
}

// WithExecutor injects a custom executor for the magick engine.
func WithExecutor(exec cmdexec.Executor) Option {
	return func(o *options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// New returns the Converter selected by the conversion section of cfg.
func New(cfg *config.Config, opts ...Option) (Converter, error) {
	if cfg == nil {
		return nil, errors.New("imageconv: config required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	switch cfg.Conversion.Engine {
	case config.EngineMagick:
		var magickOpts []MagickOption
		if o.exec != nil {
			magickOpts = append(magickOpts, WithMagickExecutor(o.exec))
		}
		return NewMagick(cfg.MagickBinary(), magickOpts...)
	case config.EngineImaging:
		return NewImaging(), nil
	default:
		return nil, fmt.Errorf("imageconv: unknown engine %q", cfg.Conversion.Engine)
	}
}
