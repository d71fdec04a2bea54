// Package imagefile classifies archive entries by file extension.
package imagefile

import (
	"path"
	"strings"
)

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".jfif": {},
	".png":  {},
	".gif":  {},
	".bmp":  {},
	".webp": {},
	".avif": {},
	".tif":  {},
	".tiff": {},
}

var animatedExtensions = map[string]struct{}{
	".gif": {},
}

// Ext returns the lower-cased extension of name, including the dot. Both
// slash styles are accepted since archive tools report either.
func Ext(name string) string {
	return strings.ToLower(path.Ext(slashed(name)))
}

// IsImage reports whether name carries a known raster image extension.
func IsImage(name string) bool {
	_, ok := imageExtensions[Ext(name)]
	return ok
}

// IsAnimated reports whether name is an image format that may carry animation.
func IsAnimated(name string) bool {
	_, ok := animatedExtensions[Ext(name)]
	return ok
}

// Base returns the final element of an entry path.
func Base(name string) string {
	return path.Base(slashed(name))
}

// Stem returns the final element of an entry path without its extension.
func Stem(name string) string {
	base := Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

func slashed(name string) string {
	return strings.ReplaceAll(name, "\\", "/")
}
