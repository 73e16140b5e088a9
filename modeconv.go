package vfs

import (
	"io/fs"

	"golang.org/x/sys/unix"
)

// Mode bit layout, matching spec.md's IFREG/IFDIR type-bit groups.
// This VFS only ever produces FILE or DIR inodes (no symlinks, devices,
// or sockets, per the module's non-goals), so the conversion only
// needs to round-trip those two type bits plus the low 9 permission
// bits.
const (
	IFMT  = unix.S_IFMT
	IFREG = unix.S_IFREG
	IFDIR = unix.S_IFDIR

	IRUSR = 0o400
	IWUSR = 0o200
	IXUSR = 0o100
	IRGRP = 0o040
	IWGRP = 0o020
	IXGRP = 0o010
	IROTH = 0o004
	IWOTH = 0o002
	IXOTH = 0o001
)

// UnixToMode translates a 16-bit VFS mode word into an io/fs.FileMode.
func UnixToMode(mode uint32) fs.FileMode {
	res := fs.FileMode(mode & 0o777)
	if mode&IFMT == IFDIR {
		res |= fs.ModeDir
	}
	return res
}

// ModeToUnix translates an io/fs.FileMode back into a VFS mode word,
// preserving only the FILE/DIR type bit and the permission bits.
func ModeToUnix(mode fs.FileMode) uint32 {
	res := uint32(mode.Perm())
	if mode&fs.ModeDir == fs.ModeDir {
		res |= IFDIR
	} else {
		res |= IFREG
	}
	return res
}

// modeString renders the classic 10-character ls -l mode string, e.g.
// "drwxr-xr-x", matching spec.md's ls_long format.
func modeString(mode uint32) string {
	out := []byte("----------")
	if mode&IFMT == IFDIR {
		out[0] = 'd'
	}
	bits := []struct {
		mask uint32
		ch   byte
		pos  int
	}{
		{IRUSR, 'r', 1}, {IWUSR, 'w', 2}, {IXUSR, 'x', 3},
		{IRGRP, 'r', 4}, {IWGRP, 'w', 5}, {IXGRP, 'x', 6},
		{IROTH, 'r', 7}, {IWOTH, 'w', 8}, {IXOTH, 'x', 9},
	}
	for _, b := range bits {
		if mode&b.mask != 0 {
			out[b.pos] = b.ch
		}
	}
	return string(out)
}
