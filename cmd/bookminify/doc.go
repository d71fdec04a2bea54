// Package main hosts the bookminify CLI entrypoint and command graph.
//
// Each invocation handles one archive: minify runs the re-encoding pipeline
// under a per-archive lock and records the result in the history ledger;
// check reports whether the configured engines are usable; history and cache
// inspect and tidy what earlier runs left behind.
//
// Keep this package lean. The pipeline, engines, and stores live under
// internal/; commands only resolve configuration, wire collaborators, and
// render results.
package main
