package imageconv

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"bookminify/internal/cmdexec"
)

// MagickOption configures the ImageMagick engine.
type MagickOption func(*Magick)

// WithMagickExecutor injects a custom executor (primarily for tests).
func WithMagickExecutor(exec cmdexec.Executor) MagickOption {
	return func(m *Magick) {
		if exec != nil {
			m.exec = exec
		}
	}
}

// Magick converts images through the ImageMagick CLI.
type Magick struct {
	binary string
	exec   cmdexec.Executor
}

// NewMagick constructs the ImageMagick engine.
func NewMagick(binary string, opts ...MagickOption) (*Magick, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("magick binary required")
	}
	m := &Magick{binary: binary, exec: cmdexec.Command{}}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Name identifies the engine.
func (m *Magick) Name() string { return "magick" }

// Convert runs "magick <src> -strip -quality Q [-resize D>] <dst>". Output on
// stderr is treated as a failure even when the exit status is zero.
func (m *Magick) Convert(ctx context.Context, src, dst string, p Profile) error {
	out, err := cmdexec.Capture(ctx, m.exec, m.binary, MagickArgs(src, dst, p))
	if err != nil {
		if msg := out.StderrText(); msg != "" {
			return fmt.Errorf("magick %s: %w: %s", p.Name, err, msg)
		}
		return fmt.Errorf("magick %s: %w", p.Name, err)
	}
	if msg := out.StderrText(); msg != "" {
		return fmt.Errorf("magick %s: %s", p.Name, msg)
	}
	return nil
}

// MagickArgs builds the ImageMagick argument list for a profile.
func MagickArgs(src, dst string, p Profile) []string {
	args := []string{src, "-strip", "-quality", strconv.Itoa(p.Quality)}
	if p.ResizeMaxDimension > 0 {
		args = append(args, "-resize", strconv.Itoa(p.ResizeMaxDimension)+">")
	}
	return append(args, dst)
}
