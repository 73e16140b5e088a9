package vfs

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// CreateFile creates an empty regular file at path, using the same
// parent-resolution rule as Mkdir. Grounded on
// original_source/src/fs/vfs_file.c's vfs_create_file.
func CreateFile(fc *FsContext, path string) *VFSError {
	norm := Normalize(path)
	if norm == "" || norm == "/" {
		return newErr(Invalid, "create", path, ErrEmptyPath)
	}

	parent, leaf, verr := resolveParent(fc, norm)
	if verr != nil {
		return verr
	}
	if leaf == "" {
		return newErr(Invalid, "create", path, nil)
	}
	if parent.Inode == nil || !parent.Inode.IsDir() {
		return newErr(NotADir, "create", path, nil)
	}
	if !PermCheck(fc, parent.Inode, W_OK|X_OK) {
		return newErr(PermDenied, "create", path, nil)
	}
	if findChild(parent, leaf) != nil {
		return newErr(Exists, "create", path, nil)
	}

	ino := newInode(TypeFile, IFREG|0o644, fc.Uid, fc.Gid, fc.FS.directBlocks)
	ino.Ino = fc.FS.allocIno()
	d := &Dentry{Name: leaf, Inode: ino}
	return addChild(parent, d)
}

// WriteAll replaces path's entire content with data. A write that needs
// more blocks than the inode's direct slots, or than the free blocks
// plus the file's own, is rejected before anything is freed, leaving
// size/mtime/blocks untouched. Past those checks the current blocks are
// freed first; an allocation or write failure after that frees the
// blocks allocated in this call, and the file's previous blocks are not
// restored. Grounded on original_source/src/fs/vfs_file.c's
// vfs_write_all.
func WriteAll(fc *FsContext, path string, data []byte) *VFSError {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return verr
	}
	ino := dent.Inode
	if !ino.IsFile() {
		return newErr(NotAFile, "write", path, nil)
	}
	if !PermCheck(fc, ino, W_OK) {
		return newErr(PermDenied, "write", path, nil)
	}

	if verr := writeInodeData(fc.FS, ino, data); verr != nil {
		return &VFSError{Kind: verr.Kind, Op: "write", Path: path, Err: verr.Err}
	}
	return nil
}

// writeInodeData is the path-independent core of WriteAll, reused by
// the FUSE bridge which already holds the target *Inode and has no
// need to re-resolve a path.
func writeInodeData(fsys *FS, ino *Inode, data []byte) *VFSError {
	blockSize := fsys.blockSize
	need := (len(data) + blockSize - 1) / blockSize
	if need > len(ino.Blocks) {
		return newErr(NoSpace, "write", "", nil)
	}
	if need > fsys.dev.freeBlocks()+ino.blocksInUse() {
		return newErr(NoSpace, "write", "", nil)
	}

	// Free all current blocks first, as the original does.
	for i := range ino.Blocks {
		if ino.Blocks[i] >= 0 {
			fsys.dev.free(int(ino.Blocks[i]))
			ino.Blocks[i] = -1
		}
	}

	buf := make([]byte, blockSize)
	for i := 0; i < need; i++ {
		blk, aerr := fsys.dev.alloc()
		if aerr != nil {
			rollbackBlocks(fsys.dev, ino, i)
			return newErr(NoSpace, "write", "", aerr)
		}
		ino.Blocks[i] = int32(blk)

		zeroBlock(buf)
		offset := i * blockSize
		end := offset + blockSize
		if end > len(data) {
			end = len(data)
		}
		copy(buf, data[offset:end])

		if werr := fsys.dev.write(blk, buf); werr != nil {
			rollbackBlocks(fsys.dev, ino, i+1)
			return newErr(IOError, "write", "", werr)
		}
	}

	ino.Size = uint64(len(data))
	ino.Mtime = time.Now().Unix()
	return nil
}

func rollbackBlocks(dev *blockDevice, ino *Inode, upTo int) {
	for j := 0; j < upTo; j++ {
		if ino.Blocks[j] >= 0 {
			dev.free(int(ino.Blocks[j]))
			ino.Blocks[j] = -1
		}
	}
}

// Cat streams the full content of the file at path to w. Requires R.
func Cat(fc *FsContext, path string, w io.Writer) *VFSError {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return verr
	}
	ino := dent.Inode
	if !ino.IsFile() {
		return newErr(NotAFile, "cat", path, nil)
	}
	if !PermCheck(fc, ino, R_OK) {
		return newErr(PermDenied, "cat", path, nil)
	}

	data, verr := readInodeData(fc.FS, ino)
	if verr != nil {
		return &VFSError{Kind: verr.Kind, Op: "cat", Path: path, Err: verr.Err}
	}
	if _, err := w.Write(data); err != nil {
		return newErr(IOError, "cat", path, err)
	}
	return nil
}

// readInodeData is the path-independent core of Cat, reused by the
// FUSE bridge.
func readInodeData(fsys *FS, ino *Inode) ([]byte, *VFSError) {
	blockSize := fsys.blockSize
	out := make([]byte, 0, ino.Size)
	remain := ino.Size
	buf := make([]byte, blockSize)
	for i := 0; i < len(ino.Blocks) && remain > 0; i++ {
		blk := ino.Blocks[i]
		if blk < 0 {
			break
		}
		if rerr := fsys.dev.read(int(blk), buf); rerr != nil {
			return nil, newErr(IOError, "cat", "", rerr)
		}
		n := uint64(blockSize)
		if remain < n {
			n = remain
		}
		out = append(out, buf[:n]...)
		remain -= n
	}
	return out, nil
}

// ReadAll reads the full content of the file at path into memory,
// used internally by Cp/Export.
func ReadAll(fc *FsContext, path string) ([]byte, *VFSError) {
	var buf strings.Builder
	if verr := Cat(fc, path, &buf); verr != nil {
		return nil, verr
	}
	return []byte(buf.String()), nil
}

// Rm removes a regular file at path. Permission is checked only on
// the parent (W|X), not the target itself; preserved from
// original_source/src/fs/vfs.c's vfs_rm, which never checks the
// target's own mode.
func Rm(fc *FsContext, path string) *VFSError {
	norm := Normalize(path)
	if norm == "" || norm == "/" {
		return newErr(Invalid, "rm", path, ErrEmptyPath)
	}

	dent, verr := Resolve(fc, norm)
	if verr != nil {
		return verr
	}
	parent := dent.Parent
	if !PermCheck(fc, parent.Inode, W_OK|X_OK) {
		return newErr(PermDenied, "rm", path, nil)
	}
	if dent == fc.FS.Root() || parent == dent {
		return newErr(Invalid, "rm", path, nil)
	}
	if !dent.Inode.IsFile() {
		return newErr(NotAFile, "rm", path, nil)
	}

	if err := removeChild(parent, dent); err != nil {
		return err
	}
	for i, b := range dent.Inode.Blocks {
		if b >= 0 {
			fc.FS.dev.free(int(b))
			dent.Inode.Blocks[i] = -1
		}
	}
	return nil
}

// Cp copies src's content to dst, creating dst if it doesn't exist.
// A zero-length source still performs a write, truncating dst to 0.
func Cp(fc *FsContext, src, dst string) *VFSError {
	data, verr := ReadAll(fc, src)
	if verr != nil {
		return verr
	}

	if _, lerr := Resolve(fc, dst); lerr != nil {
		if lerr.Kind != NotFound {
			return lerr
		}
		if cerr := CreateFile(fc, dst); cerr != nil {
			return cerr
		}
	}

	dent, rerr := Resolve(fc, dst)
	if rerr != nil {
		return rerr
	}
	if !dent.Inode.IsFile() {
		return newErr(NotAFile, "cp", dst, nil)
	}
	if !PermCheck(fc, dent.Inode, W_OK) {
		return newErr(PermDenied, "cp", dst, nil)
	}

	return WriteAll(fc, dst, data)
}

// Import reads host into the VFS at vpath. If vpath names an existing
// directory, the target becomes vpath/basename(host) (basename
// handles both '/' and '\' separators, per spec.md §4.7).
func Import(fc *FsContext, host, vpath string) *VFSError {
	data, err := os.ReadFile(host)
	if err != nil {
		return newErr(IOError, "import", host, err)
	}
	if len(data) > len(fc.FS.Root().Inode.Blocks)*fc.FS.blockSize {
		return newErr(NoSpace, "import", host, nil)
	}

	target := vpath
	if dent, lerr := Resolve(fc, vpath); lerr == nil && dent.Inode.IsDir() {
		target = joinVPath(vpath, hostBasename(host))
	}

	if _, lerr := Resolve(fc, target); lerr != nil {
		if lerr.Kind != NotFound {
			return lerr
		}
		if cerr := CreateFile(fc, target); cerr != nil {
			return cerr
		}
	}

	return WriteAll(fc, target, data)
}

// Export writes vpath's content to a host-side file.
func Export(fc *FsContext, vpath, host string) *VFSError {
	data, verr := ReadAll(fc, vpath)
	if verr != nil {
		return verr
	}
	if err := os.WriteFile(host, data, 0o644); err != nil {
		return newErr(IOError, "export", host, err)
	}
	return nil
}

func hostBasename(host string) string {
	host = strings.ReplaceAll(host, "\\", "/")
	return filepath.Base(host)
}

func joinVPath(dir, name string) string {
	if strings.HasSuffix(dir, "/") {
		return dir + name
	}
	return dir + "/" + name
}
