// Package staging owns the on-disk layout of per-run workspaces under the
// cache directory and the sweeping of workspaces left behind by crashed runs.
//
// Every run gets two sibling directories grouped by the archive's parent
// folder:
//
//	<cache>/from <parent>/<stem>-<run>-original   extracted originals
//	<cache>/from <parent>/<stem>-<run>            copied and converted output
//
// <run> is the first eight hex digits of the run UUID, so concurrent runs on
// same-named archives never share a directory.
package staging

import (
	"path/filepath"
	"strings"
)

const (
	// GroupPrefix starts the name of every per-parent group directory.
	GroupPrefix = "from "
	// OriginalSuffix marks the extraction directory of a run.
	OriginalSuffix = "-original"
	shortRunIDLen  = 8
)

// Layout names the directories a single run owns.
type Layout struct {
	Group      string
	ExtractDir string
	OutputDir  string
}

// NewLayout derives the workspace paths for archivePath under cacheRoot.
func NewLayout(cacheRoot, archivePath, runID string) Layout {
	parent := filepath.Base(filepath.Dir(archivePath))
	if parent == "." || parent == string(filepath.Separator) || parent == "" {
		parent = "root"
	}
	base := filepath.Base(archivePath)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	if stem == "" {
		stem = base
	}

	group := filepath.Join(cacheRoot, GroupPrefix+parent)
	name := stem + "-" + ShortRunID(runID)
	return Layout{
		Group:      group,
		ExtractDir: filepath.Join(group, name+OriginalSuffix),
		OutputDir:  filepath.Join(group, name),
	}
}

// ShortRunID returns the leading hex digits of a run UUID.
func ShortRunID(runID string) string {
	compact := strings.ReplaceAll(strings.TrimSpace(runID), "-", "")
	if len(compact) > shortRunIDLen {
		compact = compact[:shortRunIDLen]
	}
	return strings.ToLower(compact)
}

// RunIDFromName recovers the short run ID from a workspace directory name.
func RunIDFromName(name string) string {
	name = strings.TrimSuffix(name, OriginalSuffix)
	idx := strings.LastIndex(name, "-")
	if idx < 0 || len(name)-idx-1 != shortRunIDLen {
		return ""
	}
	candidate := name[idx+1:]
	for _, r := range candidate {
		if !strings.ContainsRune("0123456789abcdef", r) {
			return ""
		}
	}
	return candidate
}
