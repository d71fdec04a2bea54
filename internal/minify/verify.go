package minify

import (
	"slices"

	"bookminify/internal/imagefile"
)

// NameMode selects how entry names are compared by SameImageSet.
type NameMode int

const (
	// KeepExtension compares full basenames.
	KeepExtension NameMode = iota
	// StripExtension compares basenames without their extension.
	StripExtension
)

// SameImageSet reports whether got and want contain the same multiset of
// image names. Non-image entries are ignored and order does not matter. A nil
// listing never matches.
func SameImageSet(got, want []string, mode NameMode) bool {
	if got == nil || want == nil {
		return false
	}
	return slices.Equal(imageNames(got, mode), imageNames(want, mode))
}

func imageNames(entries []string, mode NameMode) []string {
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if !imagefile.IsImage(entry) {
			continue
		}
		if mode == StripExtension {
			names = append(names, imagefile.Stem(entry))
		} else {
			names = append(names, imagefile.Base(entry))
		}
	}
	slices.Sort(names)
	return names
}
