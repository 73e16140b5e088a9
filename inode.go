package vfs

import "time"

// InodeType distinguishes a regular file from a directory. This VFS
// has no third type (no symlinks, devices, or sockets; non-goals).
type InodeType uint8

const (
	TypeFile InodeType = 1
	TypeDir  InodeType = 2
)

// Inode is the metadata record for a file or directory. Grounded on
// original_source/src/fs/inode.h and spec.md §3.
type Inode struct {
	Ino   uint64
	Type  InodeType
	Mode  uint32 // IFREG|IFDIR plus 9 permission bits
	Uid   uint32
	Gid   uint32
	NLink uint32
	Size  uint64
	Mtime int64 // seconds since Unix epoch

	Blocks []int32 // direct block indices, -1 sentinel for unused
}

// newInode allocates an inode with all Blocks slots set to the -1
// sentinel, per spec.md §3's invariant I3/I4 setup.
func newInode(typ InodeType, mode uint32, uid, gid uint32, directBlocks int) *Inode {
	blocks := make([]int32, directBlocks)
	for i := range blocks {
		blocks[i] = -1
	}
	return &Inode{
		Type:   typ,
		Mode:   mode,
		Uid:    uid,
		Gid:    gid,
		NLink:  1,
		Mtime:  time.Now().Unix(),
		Blocks: blocks,
	}
}

// blocksInUse returns the count of non -1 entries in Blocks.
func (ino *Inode) blocksInUse() int {
	n := 0
	for _, b := range ino.Blocks {
		if b >= 0 {
			n++
		}
	}
	return n
}

func (ino *Inode) IsDir() bool  { return ino.Type == TypeDir }
func (ino *Inode) IsFile() bool { return ino.Type == TypeFile }
