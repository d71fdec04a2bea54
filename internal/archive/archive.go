package archive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"bookminify/internal/cmdexec"
	"bookminify/internal/config"
)

// ErrUnsupportedFormat is returned when a backend cannot read an archive type.
var ErrUnsupportedFormat = errors.New("unsupported archive format")

// Listing is the set of file entries inside an archive, directories excluded.
type Listing struct {
	Files []string
}

// PackResult describes the archive produced by PackFolder. ArchivePath is set
// whenever a file was written, even if packing then reported a failure, so
// callers can discard it.
type PackResult struct {
	ArchivePath string
	Stdout      string
	Stderr      string
}

// Service is the archive capability the minify pipeline consumes.
type Service interface {
	List(ctx context.Context, path string) (Listing, error)
	ExtractAll(ctx context.Context, path, dest string) ([]string, error)
	PackFolder(ctx context.Context, dir string) (PackResult, error)
}

// Option configures backends built by New.
type Option func(*options)

type options struct {
	exec cmdexec.Executor
}

// WithExecutor injects a custom executor (primarily for tests).
func WithExecutor(exec cmdexec.Executor) Option {
	return func(o *options) {
		if exec != nil {
			o.exec = exec
		}
	}
}

// New returns the Service selected by the archive section of cfg.
func New(cfg *config.Config, opts ...Option) (Service, error) {
	if cfg == nil {
		return nil, errors.New("archive: config required")
	}
	switch cfg.Archive.Engine {
	case config.EngineSevenZip:
		o := options{}
		for _, opt := range opts {
			opt(&o)
		}
		var sevenOpts []SevenZipOption
		if o.exec != nil {
			sevenOpts = append(sevenOpts, WithSevenZipExecutor(o.exec))
		}
		return NewSevenZip(cfg.SevenZipBinary(), sevenOpts...)
	case config.EngineZip:
		return NewZip(), nil
	default:
		return nil, fmt.Errorf("archive: unknown engine %q", cfg.Archive.Engine)
	}
}

// PackedPath returns where PackFolder writes the archive for dir.
func PackedPath(dir string) string {
	return filepath.Clean(dir) + ".zip"
}

// listTree returns every regular file below root as a slash-separated
// relative path, in lexical order.
func listTree(ctx context.Context, root string) ([]string, error) {
	files := []string{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

func trimLines(lines []string) string {
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
