package fileutil

import (
	"os"
	"syscall"
	"time"
)

// AccessTime extracts the last access time from file info, falling back to
// the modification time when the platform does not expose it.
func AccessTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(int64(st.Atim.Sec), int64(st.Atim.Nsec))
	}
	return info.ModTime()
}
