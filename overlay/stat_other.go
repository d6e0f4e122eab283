//go:build !linux && !windows

package overlay

import "os"

// statFromFileInfo on non-Linux Unix platforms (the syscall.Stat_t layout
// for ino/dev/nlink/atim/mtim/ctim is Linux-specific and does not bridge
// cleanly to Darwin/BSD's field names) fills only Mode/Size, same as the
// Windows variant. Linux is this package's primary target.
func statFromFileInfo(fi os.FileInfo) Stat {
	return Stat{
		Mode: fi.Mode(),
		Size: fi.Size(),
	}
}
