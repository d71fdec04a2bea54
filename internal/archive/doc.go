// Package archive lists, extracts, and packs page archives.
//
// Two backends implement Service. SevenZip drives the 7z command-line tool
// and understands every format 7-Zip does (zip, cbz, 7z, cb7, rar, cbr ...).
// Zip is a pure Go fallback limited to zip containers. Both pack into zip.
package archive
