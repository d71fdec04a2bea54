package preflight

import (
	"context"

	"bookminify/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("Cache directory", cfg.Paths.CacheDir))
	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))

	capability := ProbeConverter(cfg)
	results = append(results, Result{
		Name:   "Converter (" + capability.Engine + ")",
		Passed: capability.Available,
		Detail: capability.Detail,
	})

	for _, status := range CheckSystemDeps(ctx, cfg) {
		if status.Name == converterDependencyName {
			continue
		}
		detail := status.Detail
		if status.Available {
			detail = status.Path
		}
		results = append(results, Result{Name: status.Name, Passed: status.Available, Detail: detail})
	}

	return results
}

// Failed returns the checks that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
