package archive_test

import (
	"archive/zip"
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"bookminify/internal/archive"
	"bookminify/internal/config"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	w := zip.NewWriter(f)
	for name, body := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		if _, err := fw.Write([]byte(body)); err != nil {
			t.Fatalf("write entry: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("close file: %v", err)
	}
}

func TestZipRoundTrip(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "book.cbz")
	writeZip(t, src, map[string]string{
		"01.jpg":        "page one",
		"ch2/02.png":    "page two",
		"ComicInfo.xml": "<ComicInfo/>",
		"ch2/":          "",
	})

	z := archive.NewZip()
	ctx := context.Background()

	listing, err := z.List(ctx, src)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(listing.Files) != 3 {
		t.Fatalf("expected 3 files, got %q", listing.Files)
	}

	dest := filepath.Join(tmp, "extract")
	files, err := z.ExtractAll(ctx, src, dest)
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if want := []string{"01.jpg", "ComicInfo.xml", "ch2/02.png"}; !reflect.DeepEqual(files, want) {
		t.Fatalf("files = %q, want %q", files, want)
	}
	body, err := os.ReadFile(filepath.Join(dest, "ch2", "02.png"))
	if err != nil || string(body) != "page two" {
		t.Fatalf("unexpected extracted content %q (%v)", body, err)
	}

	result, err := z.PackFolder(ctx, dest)
	if err != nil {
		t.Fatalf("PackFolder: %v", err)
	}
	if result.ArchivePath != dest+".zip" {
		t.Fatalf("ArchivePath = %q", result.ArchivePath)
	}

	repacked, err := z.List(ctx, result.ArchivePath)
	if err != nil {
		t.Fatalf("List repacked: %v", err)
	}
	if !reflect.DeepEqual(repacked.Files, files) {
		t.Fatalf("repacked files = %q, want %q", repacked.Files, files)
	}

	reader, err := zip.OpenReader(result.ArchivePath)
	if err != nil {
		t.Fatal(err)
	}
	defer reader.Close()
	for _, f := range reader.File {
		wantMethod := zip.Deflate
		if f.Name != "ComicInfo.xml" {
			wantMethod = zip.Store
		}
		if f.Method != wantMethod {
			t.Errorf("%s stored with method %d, want %d", f.Name, f.Method, wantMethod)
		}
	}
}

func TestZipRejectsEscapingEntries(t *testing.T) {
	tmp := t.TempDir()
	src := filepath.Join(tmp, "evil.zip")
	writeZip(t, src, map[string]string{"../escape.jpg": "x"})

	if _, err := archive.NewZip().ExtractAll(context.Background(), src, filepath.Join(tmp, "out")); err == nil {
		t.Fatal("expected error for entry escaping destination")
	}
	if _, err := os.Stat(filepath.Join(tmp, "escape.jpg")); !os.IsNotExist(err) {
		t.Fatal("escaping entry must not be written")
	}
}

func TestZipRejectsOtherFormats(t *testing.T) {
	_, err := archive.NewZip().List(context.Background(), "/books/a.cbr")
	if !errors.Is(err, archive.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestNewSelectsEngine(t *testing.T) {
	cfg := config.Default()

	cfg.Archive.Engine = config.EngineZip
	svc, err := archive.New(&cfg)
	if err != nil {
		t.Fatalf("New zip: %v", err)
	}
	if _, ok := svc.(*archive.Zip); !ok {
		t.Fatalf("expected *archive.Zip, got %T", svc)
	}

	cfg.Archive.Engine = config.EngineSevenZip
	svc, err = archive.New(&cfg, archive.WithExecutor(&stubExecutor{}))
	if err != nil {
		t.Fatalf("New 7z: %v", err)
	}
	if _, ok := svc.(*archive.SevenZip); !ok {
		t.Fatalf("expected *archive.SevenZip, got %T", svc)
	}

	cfg.Archive.Engine = "rar"
	if _, err := archive.New(&cfg); err == nil {
		t.Fatal("expected error for unknown engine")
	}
	if _, err := archive.New(nil); err == nil {
		t.Fatal("expected error for nil config")
	}
}

func TestZipEmptyArchiveListsNonNil(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.cbz")
	writeZip(t, path, map[string]string{})

	z := archive.NewZip()
	listing, err := z.List(context.Background(), path)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if listing.Files == nil || len(listing.Files) != 0 {
		t.Fatalf("expected empty non-nil listing, got %#v", listing.Files)
	}

	extracted, err := z.ExtractAll(context.Background(), path, filepath.Join(t.TempDir(), "out"))
	if err != nil {
		t.Fatalf("ExtractAll: %v", err)
	}
	if extracted == nil || len(extracted) != 0 {
		t.Fatalf("expected empty non-nil extraction, got %#v", extracted)
	}
}
