// Package preflight provides readiness checks for the external tools and
// filesystem paths bookminify depends on.
//
// These checks run in two contexts:
//   - The minify command calls ProbeConverter once at startup and hands the
//     resulting Capability to the pipeline, which refuses to run when the
//     configured conversion engine is unavailable.
//   - The CLI "bookminify check" command uses RunAll to display tool and
//     directory health.
package preflight
