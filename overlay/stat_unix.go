//go:build linux

package overlay

import (
	"os"
	"syscall"
	"time"
)

// statFromFileInfo bridges a real os.FileInfo into the Stat projection,
// pulling ino/dev/nlink/uid/gid and the three timestamps out of the
// platform Stat_t the same way os.FileInfo.Sys() is type-asserted
// throughout the standard library.
func statFromFileInfo(fi os.FileInfo) Stat {
	st := Stat{
		Mode: fi.Mode(),
		Size: fi.Size(),
	}
	sys, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return st
	}
	st.Ino = sys.Ino
	st.Dev = uint64(sys.Dev)
	st.Nlink = uint64(sys.Nlink)
	st.Uid = sys.Uid
	st.Gid = sys.Gid
	st.Atime = time.Unix(sys.Atim.Sec, sys.Atim.Nsec)
	st.Mtime = time.Unix(sys.Mtim.Sec, sys.Mtim.Nsec)
	st.Ctime = time.Unix(sys.Ctim.Sec, sys.Ctim.Nsec)
	return st
}
