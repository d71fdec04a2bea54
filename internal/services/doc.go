// Package services defines shared utilities consumed by the minify pipeline
// and the external tool integrations.
//
// Key responsibilities:
//   - Context helpers that stamp run IDs, stage names, and archive paths for
//     logging.
//   - Structured error markers plus the Wrap helper that tag failures with the
//     pipeline stage that produced them, and Kind to turn them into stable
//     labels for the run history.
//
// Use these helpers when wiring new stage logic so failure reporting stays
// uniform across the pipeline.
package services
