package staging

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"bookminify/internal/logging"
	"bookminify/internal/testsupport"
)

func makeWorkspace(t *testing.T, cacheDir, group, name string, age time.Duration) string {
	t.Helper()
	dir := filepath.Join(cacheDir, group, name)
	testsupport.WritePage(t, filepath.Join(dir, "page.jpg"), 4)
	if age > 0 {
		stamp := time.Now().Add(-age)
		if err := os.Chtimes(dir, stamp, stamp); err != nil {
			t.Fatalf("set time: %v", err)
		}
	}
	return dir
}

func TestCleanStaleInvalidPaths(t *testing.T) {
	for _, dir := range []string{"", "   ", "/nonexistent/path/12345"} {
		result := CleanStale(context.Background(), dir, time.Hour, logging.NewNop())
		if len(result.Removed) != 0 || len(result.Errors) != 0 {
			t.Errorf("expected empty result for path %q", dir)
		}
	}
}

func TestCleanStaleRemovesOldWorkspaces(t *testing.T) {
	cacheDir := t.TempDir()

	oldDir := makeWorkspace(t, cacheDir, "from Comics", "book-0a1b2c3d-original", 2*time.Hour)
	recentDir := makeWorkspace(t, cacheDir, "from Comics", "other-11223344", 0)
	loneOld := makeWorkspace(t, cacheDir, "from Manga", "vol1-deadbeef", 3*time.Hour)

	result := CleanStale(context.Background(), cacheDir, time.Hour, nil)

	if len(result.Removed) != 2 {
		t.Fatalf("expected 2 removed, got %d: %v", len(result.Removed), result.Removed)
	}
	if _, err := os.Stat(oldDir); !os.IsNotExist(err) {
		t.Error("old workspace should have been removed")
	}
	if _, err := os.Stat(recentDir); err != nil {
		t.Error("recent workspace should still exist")
	}
	if _, err := os.Stat(loneOld); !os.IsNotExist(err) {
		t.Error("old workspace in second group should have been removed")
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "from Manga")); !os.IsNotExist(err) {
		t.Error("empty group should have been removed")
	}
	if _, err := os.Stat(filepath.Join(cacheDir, "from Comics")); err != nil {
		t.Error("non-empty group should still exist")
	}
}

func TestCleanStaleIgnoresForeignEntries(t *testing.T) {
	cacheDir := t.TempDir()

	foreign := makeWorkspace(t, cacheDir, "unrelated", "something", 5*time.Hour)
	oldFile := filepath.Join(cacheDir, "from Comics", "note.txt")
	if err := os.MkdirAll(filepath.Dir(oldFile), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(oldFile, []byte("test"), 0o644); err != nil {
		t.Fatalf("create file: %v", err)
	}
	oldTime := time.Now().Add(-2 * time.Hour)
	if err := os.Chtimes(oldFile, oldTime, oldTime); err != nil {
		t.Fatalf("set old time: %v", err)
	}

	result := CleanStale(context.Background(), cacheDir, time.Hour, logging.NewNop())

	if len(result.Removed) != 0 {
		t.Errorf("expected no removals, got %v", result.Removed)
	}
	if _, err := os.Stat(oldFile); err != nil {
		t.Error("file should not have been removed")
	}
	if _, err := os.Stat(foreign); err != nil {
		t.Error("directory outside a group should not have been removed")
	}
}

func TestCleanOrphanedKeepsActiveRuns(t *testing.T) {
	cacheDir := t.TempDir()

	active := makeWorkspace(t, cacheDir, "from Comics", "book-0a1b2c3d", 2*time.Hour)
	activeOriginal := makeWorkspace(t, cacheDir, "from Comics", "book-0a1b2c3d-original", 2*time.Hour)
	orphan := makeWorkspace(t, cacheDir, "from Comics", "book-99887766", 2*time.Hour)
	unparsable := makeWorkspace(t, cacheDir, "from Comics", "handmade", 2*time.Hour)
	unrecorded := makeWorkspace(t, cacheDir, "from Comics", "fresh-a1b2c3d4", 0)

	result := CleanOrphaned(context.Background(), cacheDir, map[string]struct{}{"0a1b2c3d": {}}, time.Hour, logging.NewNop())

	if len(result.Removed) != 1 || result.Removed[0] != orphan {
		t.Fatalf("expected only %s removed, got %v", orphan, result.Removed)
	}
	for _, dir := range []string{active, activeOriginal, unparsable, unrecorded} {
		if _, err := os.Stat(dir); err != nil {
			t.Errorf("%s should still exist", dir)
		}
	}
}

func TestListDirectories(t *testing.T) {
	cacheDir := t.TempDir()
	makeWorkspace(t, cacheDir, "from Comics", "book-0a1b2c3d", 0)
	makeWorkspace(t, cacheDir, "from Manga", "vol-deadbeef-original", 0)

	dirs, err := ListDirectories(cacheDir)
	if err != nil {
		t.Fatalf("ListDirectories: %v", err)
	}
	if len(dirs) != 2 {
		t.Fatalf("expected 2 workspaces, got %d", len(dirs))
	}
	for _, d := range dirs {
		if d.Size != 4 {
			t.Errorf("expected size 4 for %s, got %d", d.Name, d.Size)
		}
		if d.RunID == "" {
			t.Errorf("expected run id for %s", d.Name)
		}
	}

	missing, err := ListDirectories(filepath.Join(cacheDir, "absent"))
	if err != nil || missing != nil {
		t.Fatalf("expected nil result for missing cache dir, got %v, %v", missing, err)
	}
}
