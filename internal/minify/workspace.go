package minify

import (
	"log/slog"
	"os"
	"sync"

	"bookminify/internal/logging"
	"bookminify/internal/staging"
)

// Workspace is the pair of directories a single run owns.
type Workspace struct {
	Root       string
	ExtractDir string
	OutputDir  string
}

// NewWorkspace derives run-scoped directories for archivePath under cacheRoot.
func NewWorkspace(cacheRoot, archivePath, runID string) Workspace {
	layout := staging.NewLayout(cacheRoot, archivePath, runID)
	return Workspace{
		Root:       layout.Group,
		ExtractDir: layout.ExtractDir,
		OutputDir:  layout.OutputDir,
	}
}

// Janitor removes paths in the background. Failures are logged and never
// returned.
type Janitor struct {
	logger *slog.Logger
	wg     sync.WaitGroup
	remove func(string) error
}

// NewJanitor returns a janitor that logs through logger.
func NewJanitor(logger *slog.Logger) *Janitor {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Janitor{logger: logger, remove: os.RemoveAll}
}

// Remove schedules a recursive delete of path. Empty paths are ignored.
func (j *Janitor) Remove(path string) {
	if path == "" {
		return
	}
	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		if err := j.remove(path); err != nil {
			logging.WarnWithContext(j.logger, "cleanup failed", "cleanup_failed",
				logging.String("path", path),
				logging.Error(err),
				logging.String(logging.FieldErrorHint, "run 'bookminify cache clean' to reclaim space"),
				logging.String(logging.FieldImpact, "temporary files left in cache"),
			)
			return
		}
		j.logger.Debug("removed", logging.String("path", path))
	}()
}

// Wait blocks until every scheduled removal has finished.
func (j *Janitor) Wait() {
	j.wg.Wait()
}
