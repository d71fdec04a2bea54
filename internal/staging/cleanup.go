package staging

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"bookminify/internal/logging"
)

// CleanStaleResult contains the outcome of a stale workspace cleanup operation.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a directory path with its cleanup error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes workspaces older than maxAge from every group under
// cacheDir, then drops groups left empty.
func CleanStale(ctx context.Context, cacheDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	cutoff := time.Now().Add(-maxAge)
	return sweep(ctx, cacheDir, logger, "stale", func(dir DirInfo) bool {
		return dir.ModTime.Before(cutoff)
	})
}

// CleanOrphaned removes workspaces whose run ID is not in activeRunIDs.
// Keys are compared against the short run ID embedded in the directory name.
// Workspaces modified within minAge are kept: a run that could not record
// itself in the ledger is still absent from activeRunIDs.
func CleanOrphaned(ctx context.Context, cacheDir string, activeRunIDs map[string]struct{}, minAge time.Duration, logger *slog.Logger) CleanStaleResult {
	cutoff := time.Now().Add(-minAge)
	return sweep(ctx, cacheDir, logger, "orphaned", func(dir DirInfo) bool {
		if dir.RunID == "" || !dir.ModTime.Before(cutoff) {
			return false
		}
		_, active := activeRunIDs[dir.RunID]
		return !active
	})
}

func sweep(ctx context.Context, cacheDir string, logger *slog.Logger, reason string, remove func(DirInfo) bool) CleanStaleResult {
	result := CleanStaleResult{}
	if logger == nil {
		logger = logging.NewNop()
	}

	cacheDir = strings.TrimSpace(cacheDir)
	if cacheDir == "" {
		return result
	}

	groups, err := os.ReadDir(cacheDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: cacheDir, Error: err})
		}
		return result
	}

	for _, group := range groups {
		if !group.IsDir() || !strings.HasPrefix(group.Name(), GroupPrefix) {
			continue
		}
		if ctx.Err() != nil {
			return result
		}
		groupPath := filepath.Join(cacheDir, group.Name())
		dirs, err := listGroup(groupPath, false)
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: groupPath, Error: err})
			continue
		}
		for _, dir := range dirs {
			if !remove(dir) {
				continue
			}
			if err := os.RemoveAll(dir.Path); err != nil {
				result.Errors = append(result.Errors, CleanupError{Path: dir.Path, Error: err})
				logger.Warn("failed to remove "+reason+" workspace",
					logging.String("path", dir.Path),
					logging.Error(err),
					logging.String(logging.FieldEventType, "workspace_cleanup_failed"),
					logging.String(logging.FieldErrorHint, "check cache_dir permissions"),
					logging.String(logging.FieldImpact, "disk space not reclaimed"),
				)
				continue
			}
			result.Removed = append(result.Removed, dir.Path)
			logger.Info("removed "+reason+" workspace",
				logging.String("path", dir.Path),
				logging.Duration("age", time.Since(dir.ModTime)),
				logging.String(logging.FieldEventType, "workspace_cleanup"),
			)
		}
		// Remove fails on non-empty groups, which is what we want.
		_ = os.Remove(groupPath)
	}

	return result
}

// ListDirectories returns every workspace under cacheDir with its metadata.
func ListDirectories(cacheDir string) ([]DirInfo, error) {
	cacheDir = strings.TrimSpace(cacheDir)
	if cacheDir == "" {
		return nil, nil
	}

	groups, err := os.ReadDir(cacheDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var dirs []DirInfo
	for _, group := range groups {
		if !group.IsDir() || !strings.HasPrefix(group.Name(), GroupPrefix) {
			continue
		}
		found, err := listGroup(filepath.Join(cacheDir, group.Name()), true)
		if err != nil {
			continue
		}
		dirs = append(dirs, found...)
	}
	return dirs, nil
}

// DirInfo contains metadata about a workspace directory.
type DirInfo struct {
	Group   string
	Name    string
	Path    string
	RunID   string
	ModTime time.Time
	Size    int64
}

func listGroup(groupPath string, withSize bool) ([]DirInfo, error) {
	entries, err := os.ReadDir(groupPath)
	if err != nil {
		return nil, err
	}
	var dirs []DirInfo
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		dirPath := filepath.Join(groupPath, entry.Name())
		dir := DirInfo{
			Group:   filepath.Base(groupPath),
			Name:    entry.Name(),
			Path:    dirPath,
			RunID:   RunIDFromName(entry.Name()),
			ModTime: info.ModTime(),
		}
		if withSize {
			dir.Size, _ = dirSize(dirPath)
		}
		dirs = append(dirs, dir)
	}
	return dirs, nil
}

// dirSize sums regular file sizes below path. Unreadable entries are skipped.
func dirSize(path string) (int64, error) {
	var size int64
	err := filepath.WalkDir(path, func(_ string, d fs.DirEntry, err error) error {
		if err != nil || !d.Type().IsRegular() {
			return nil
		}
		if info, infoErr := d.Info(); infoErr == nil {
			size += info.Size()
		}
		return nil
	})
	return size, err
}
