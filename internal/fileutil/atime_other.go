//go:build !linux

package fileutil

import (
	"os"
	"time"
)

// AccessTime returns the modification time on platforms where bookminify
// does not read the access time.
func AccessTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
