// Package history persists one row per minify run in a SQLite ledger under
// the state directory. The CLI writes a "running" row when a run starts and
// completes it with the final report; "bookminify history" reads it back.
package history
