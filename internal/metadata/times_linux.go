//go:build linux

package metadata

import (
	"os"
	"syscall"
	"time"
)

// changeTime returns the inode change time, the closest stand-in for when a
// downloaded file landed on disk.
func changeTime(info os.FileInfo) time.Time {
	if st, ok := info.Sys().(*syscall.Stat_t); ok {
		return time.Unix(st.Ctim.Sec, st.Ctim.Nsec)
	}
	return info.ModTime()
}
