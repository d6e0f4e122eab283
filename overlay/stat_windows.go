//go:build windows

package overlay

import "os"

// statFromFileInfo on Windows fills only Mode/Size; Windows path semantics
// and ownership/inode identity are an explicit non-goal, so the remaining
// fields stay zeroed rather than faked from GetFileInformationByHandle.
func statFromFileInfo(fi os.FileInfo) Stat {
	return Stat{
		Mode: fi.Mode(),
		Size: fi.Size(),
	}
}
