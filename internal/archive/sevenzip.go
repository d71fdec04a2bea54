package archive

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bookminify/internal/cmdexec"
)

// SevenZipOption configures the 7z backend.
type SevenZipOption func(*SevenZip)

// WithSevenZipExecutor injects a custom executor (primarily for tests).
func WithSevenZipExecutor(exec cmdexec.Executor) SevenZipOption {
	return func(s *SevenZip) {
		if exec != nil {
			s.exec = exec
		}
	}
}

// SevenZip wraps 7z CLI interactions.
type SevenZip struct {
	binary string
	exec   cmdexec.Executor
}

// NewSevenZip constructs the 7z backend.
func NewSevenZip(binary string, opts ...SevenZipOption) (*SevenZip, error) {
	binary = strings.TrimSpace(binary)
	if binary == "" {
		return nil, errors.New("7z binary required")
	}
	s := &SevenZip{binary: binary, exec: cmdexec.Command{}}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// List runs "7z l -ba -slt" and returns the file entries in archive order.
func (s *SevenZip) List(ctx context.Context, path string) (Listing, error) {
	out, err := cmdexec.Capture(ctx, s.exec, s.binary, []string{"l", "-ba", "-slt", path})
	if err != nil {
		return Listing{}, fmt.Errorf("7z list: %w", withStderr(err, out))
	}
	return Listing{Files: parseTechnicalListing(out.Stdout)}, nil
}

// ExtractAll extracts path into dest and returns the files now present there.
func (s *SevenZip) ExtractAll(ctx context.Context, path, dest string) ([]string, error) {
	if dest == "" {
		return nil, errors.New("destination directory required")
	}
	out, err := cmdexec.Capture(ctx, s.exec, s.binary, []string{"x", "-y", "-o" + dest, path})
	if err != nil {
		return nil, fmt.Errorf("7z extract: %w", withStderr(err, out))
	}
	files, err := listTree(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("scan extracted files: %w", err)
	}
	return files, nil
}

// PackFolder zips the contents of dir into a sibling "<dir>.zip". Entry names
// are relative to dir. Any stderr output counts as a failure.
func (s *SevenZip) PackFolder(ctx context.Context, dir string) (PackResult, error) {
	dest := PackedPath(dir)
	if err := os.Remove(dest); err != nil && !errors.Is(err, os.ErrNotExist) {
		return PackResult{}, fmt.Errorf("remove previous pack: %w", err)
	}

	out, err := cmdexec.Capture(ctx, s.exec, s.binary, []string{"a", "-tzip", "-y", dest, filepath.Join(dir, "*")})
	result := PackResult{Stdout: trimLines(out.Stdout), Stderr: out.StderrText()}
	if _, statErr := os.Stat(dest); statErr == nil {
		result.ArchivePath = dest
	}
	if err != nil {
		return result, fmt.Errorf("7z pack: %w", withStderr(err, out))
	}
	if result.Stderr != "" {
		return result, fmt.Errorf("7z pack: %s", result.Stderr)
	}
	if result.ArchivePath == "" {
		return result, errors.New("7z pack: no archive produced")
	}
	return result, nil
}

// parseTechnicalListing reads the "-slt" key/value blocks and keeps the
// paths of non-directory entries.
func parseTechnicalListing(lines []string) []string {
	files := []string{}
	var (
		path    string
		isDir   bool
		inBlock bool
	)
	flush := func() {
		if inBlock && path != "" && !isDir {
			files = append(files, filepath.ToSlash(path))
		}
		path, isDir, inBlock = "", false, false
	}
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			flush()
			continue
		}
		key, value, ok := strings.Cut(line, " = ")
		if !ok {
			continue
		}
		switch key {
		case "Path":
			if inBlock {
				flush()
			}
			inBlock = true
			path = value
		case "Folder":
			if value == "+" {
				isDir = true
			}
		case "Attributes":
			if strings.HasPrefix(value, "D") {
				isDir = true
			}
		}
	}
	flush()
	return files
}

func withStderr(err error, out cmdexec.Output) error {
	if msg := out.StderrText(); msg != "" {
		return fmt.Errorf("%w: %s", err, msg)
	}
	return err
}
