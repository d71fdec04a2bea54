package preflight

import (
	"context"
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"bookminify/internal/config"
	"bookminify/internal/deps"
)

const converterDependencyName = "ImageMagick"

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	if strings.TrimSpace(path) == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckSystemDeps evaluates the external binaries required by the configured
// engines. The native engines need nothing on PATH.
func CheckSystemDeps(_ context.Context, cfg *config.Config) []deps.Status {
	var requirements []deps.Requirement
	if cfg.Conversion.Engine == config.EngineMagick {
		requirements = append(requirements, deps.Requirement{
			Name:    converterDependencyName,
			Command: cfg.MagickBinary(),
			Purpose: "re-encodes pages",
			Package: "imagemagick",
		})
	}
	if cfg.Archive.Engine == config.EngineSevenZip {
		requirements = append(requirements, deps.Requirement{
			Name:    "7-Zip",
			Command: cfg.SevenZipBinary(),
			Purpose: "lists, extracts, and packs archives",
			Package: "7zip",
		})
	}
	return deps.Check(requirements...)
}
