package archive

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"bookminify/internal/imagefile"
)

var zipExtensions = map[string]struct{}{
	".zip": {},
	".cbz": {},
}

// Zip is the native backend for zip containers.
type Zip struct{}

// NewZip constructs the native zip backend.
func NewZip() *Zip {
	return &Zip{}
}

// List returns the file entries of a zip archive in archive order.
func (z *Zip) List(_ context.Context, path string) (Listing, error) {
	if err := checkZipExtension(path); err != nil {
		return Listing{}, err
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return Listing{}, fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	files := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		if f.FileInfo().IsDir() {
			continue
		}
		files = append(files, f.Name)
	}
	return Listing{Files: files}, nil
}

// ExtractAll writes every entry of path below dest. Entries that would
// escape dest are rejected.
func (z *Zip) ExtractAll(ctx context.Context, path, dest string) ([]string, error) {
	if dest == "" {
		return nil, errors.New("destination directory required")
	}
	if err := checkZipExtension(path); err != nil {
		return nil, err
	}
	reader, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open zip: %w", err)
	}
	defer reader.Close()

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return nil, fmt.Errorf("create destination: %w", err)
	}
	for _, f := range reader.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		target, err := safeJoin(dest, f.Name)
		if err != nil {
			return nil, err
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return nil, fmt.Errorf("create %s: %w", f.Name, err)
			}
			continue
		}
		if err := extractZipFile(f, target); err != nil {
			return nil, fmt.Errorf("extract %s: %w", f.Name, err)
		}
	}

	files, err := listTree(ctx, dest)
	if err != nil {
		return nil, fmt.Errorf("scan extracted files: %w", err)
	}
	return files, nil
}

// PackFolder zips the contents of dir into "<dir>.zip". Images are stored
// without recompression.
func (z *Zip) PackFolder(ctx context.Context, dir string) (result PackResult, err error) {
	files, err := listTree(ctx, dir)
	if err != nil {
		return PackResult{}, fmt.Errorf("scan folder: %w", err)
	}

	dest := PackedPath(dir)
	out, err := os.Create(dest)
	if err != nil {
		return PackResult{}, fmt.Errorf("create zip: %w", err)
	}
	result.ArchivePath = dest
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close zip: %w", cerr)
		}
	}()

	writer := zip.NewWriter(out)
	for _, name := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := addZipFile(writer, dir, name); err != nil {
			return result, fmt.Errorf("add %s: %w", name, err)
		}
	}
	if err := writer.Close(); err != nil {
		return result, fmt.Errorf("finish zip: %w", err)
	}
	result.Stdout = fmt.Sprintf("%d files packed", len(files))
	return result, nil
}

func addZipFile(writer *zip.Writer, root, name string) error {
	src := filepath.Join(root, filepath.FromSlash(name))
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return err
	}
	header.Name = name
	header.Method = zip.Deflate
	if imagefile.IsImage(name) {
		header.Method = zip.Store
	}
	w, err := writer.CreateHeader(header)
	if err != nil {
		return err
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	_, err = io.Copy(w, in)
	return err
}

func extractZipFile(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, rc); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	if mod := f.Modified; !mod.IsZero() {
		_ = os.Chtimes(target, mod, mod)
	}
	return nil
}

func safeJoin(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.ReplaceAll(name, "\\", "/")))
	if filepath.IsAbs(cleaned) || cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("entry %q escapes destination", name)
	}
	return filepath.Join(root, cleaned), nil
}

func checkZipExtension(path string) error {
	if _, ok := zipExtensions[strings.ToLower(filepath.Ext(path))]; !ok {
		return fmt.Errorf("%w: %s (native engine reads zip and cbz only)", ErrUnsupportedFormat, filepath.Base(path))
	}
	return nil
}
