//go:build linux

package scanner

import (
	"os"
	"time"
)

// getCreateTime returns the creation time of a file.
// Linux doesn't reliably expose birth time through syscall.Stat_t, so the
// ctime sort mode degrades to modification time there. statx() could
// recover it on modern kernels and filesystems but needs raw syscall
// handling that isn't worth it for folder labels.
func getCreateTime(info os.FileInfo) time.Time {
	return info.ModTime()
}
