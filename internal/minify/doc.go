// Package minify re-encodes the pages of one archive and keeps the result only
// when it is provably equivalent and meaningfully smaller.
//
// A run extracts the archive into a private workspace, checks the extracted
// page set against the archive listing, copies or converts every entry in
// listing order, packs the output, checks the packed page set again (this
// time ignoring extensions, since conversion changes them) and finally
// applies the useful-work gate. Workspace directories are removed on every
// exit path. The original archive is only ever read.
//
// Minify never returns an error; the Report says whether the run was
// accepted, rejected by the gate, or failed, and why.
package minify
