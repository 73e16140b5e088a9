package vfs

import (
	"fmt"
	"strings"
	"time"
)

// Mkdir creates a directory at path. Grounded on
// original_source/src/fs/vfs_cores.c's vfs_mkdir_path_internal.
func Mkdir(fc *FsContext, path string) *VFSError {
	norm := Normalize(path)
	if norm == "" {
		return newErr(Invalid, "mkdir", path, ErrEmptyPath)
	}
	if norm == "/" {
		return newErr(Exists, "mkdir", path, nil)
	}

	parent, leaf, verr := resolveParent(fc, norm)
	if verr != nil {
		return verr
	}
	if leaf == "" {
		return newErr(Invalid, "mkdir", path, nil)
	}
	if parent.Inode == nil || !parent.Inode.IsDir() {
		return newErr(NotADir, "mkdir", path, nil)
	}
	if !PermCheck(fc, parent.Inode, W_OK|X_OK) {
		return newErr(PermDenied, "mkdir", path, nil)
	}
	if findChild(parent, leaf) != nil {
		return newErr(Exists, "mkdir", path, nil)
	}

	ino := newInode(TypeDir, IFDIR|0o755, fc.Uid, fc.Gid, fc.FS.directBlocks)
	ino.Ino = fc.FS.allocIno()
	d := &Dentry{Name: leaf, Inode: ino}
	return addChild(parent, d)
}

// Rmdir removes an empty directory at path. Grounded on
// original_source/src/fs/vfs_cores.c's vfs_rmdir.
func Rmdir(fc *FsContext, path string) *VFSError {
	norm := Normalize(path)
	if norm == "" || norm == "/" {
		return newErr(Invalid, "rmdir", path, ErrEmptyPath)
	}

	dent, verr := Resolve(fc, norm)
	if verr != nil {
		return verr
	}
	if dent == fc.FS.Root() || dent.Parent == dent {
		return newErr(Invalid, "rmdir", path, nil)
	}
	parent := dent.Parent
	if !PermCheck(fc, parent.Inode, W_OK|X_OK) {
		return newErr(PermDenied, "rmdir", path, nil)
	}
	if !dent.Inode.IsDir() {
		return newErr(NotADir, "rmdir", path, nil)
	}
	if dent.Child != nil {
		return newErr(Invalid, "rmdir", path, nil) // NOT_EMPTY, mapped to INVALID per spec.md S6
	}
	if err := removeChild(parent, dent); err != nil {
		return err
	}
	return nil
}

// Ls lists the names of cwd's children, in LIFO (reverse-creation)
// order, per spec.md §4.4.
func Ls(fc *FsContext) []string {
	return lsNames(fc.Cwd)
}

// LsPath lists the names of the children of the directory at path.
func LsPath(fc *FsContext, path string) ([]string, *VFSError) {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return nil, verr
	}
	if !dent.Inode.IsDir() {
		return nil, newErr(NotADir, "ls", path, nil)
	}
	return lsNames(dent), nil
}

func lsNames(dir *Dentry) []string {
	var out []string
	for _, c := range children(dir) {
		out = append(out, c.Name)
	}
	return out
}

// LsLong renders cwd's children in the classic `ls -l` format.
// Requires R on the directory, per spec.md §4.6.
func LsLong(fc *FsContext) ([]string, *VFSError) {
	if !PermCheck(fc, fc.Cwd.Inode, R_OK) {
		return nil, newErr(PermDenied, "ls", "", nil)
	}
	return lsLongLines(fc.Cwd), nil
}

// LsLongPath is LsLong for an arbitrary resolved directory.
func LsLongPath(fc *FsContext, path string) ([]string, *VFSError) {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return nil, verr
	}
	if !dent.Inode.IsDir() {
		return nil, newErr(NotADir, "ls", path, nil)
	}
	if !PermCheck(fc, dent.Inode, R_OK) {
		return nil, newErr(PermDenied, "ls", path, nil)
	}
	return lsLongLines(dent), nil
}

func lsLongLines(dir *Dentry) []string {
	var out []string
	for _, c := range children(dir) {
		ino := c.Inode
		t := time.Unix(ino.Mtime, 0).Format("Jan 02 15:04")
		out = append(out, fmt.Sprintf("%s %2d %-7s %-7s %8d %s %s",
			modeString(ino.Mode), ino.NLink, UidName(ino.Uid), GidName(ino.Gid),
			ino.Size, t, c.Name))
	}
	return out
}

// Cd changes fc.Cwd to path, requiring the target be a directory with
// X permission.
func Cd(fc *FsContext, path string) *VFSError {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return verr
	}
	if !PermCheck(fc, dent.Inode, X_OK) {
		return newErr(PermDenied, "cd", path, nil)
	}
	if !dent.Inode.IsDir() {
		return newErr(NotADir, "cd", path, nil)
	}
	fc.Cwd = dent
	return nil
}

// Chmod overwrites the low 9 mode bits of the inode at path with
// mode777&0o777, preserving the IFMT type-bit group. Only uid 0 may
// call this. Widened from the original's IFDIR-only preservation mask
// per spec.md §9 (flagged there as likely a bug when applied to
// files).
func Chmod(fc *FsContext, path string, mode777 uint32) *VFSError {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return verr
	}
	if fc.Uid != 0 {
		return newErr(PermDenied, "chmod", path, nil)
	}
	dent.Inode.Mode = (dent.Inode.Mode & IFMT) | (mode777 & 0o777)
	dent.Inode.Mtime = time.Now().Unix()
	return nil
}

// Tree renders an indented recursive listing starting at path (or
// cwd if path is empty), skipping "." and "..".
func Tree(fc *FsContext, path string) ([]string, *VFSError) {
	var start *Dentry
	if path == "" {
		start = fc.Cwd
	} else {
		d, verr := Resolve(fc, path)
		if verr != nil {
			return nil, verr
		}
		start = d
	}
	if !start.Inode.IsDir() {
		return nil, newErr(NotADir, "tree", path, nil)
	}

	var out []string
	var rec func(dir *Dentry, level int)
	rec = func(dir *Dentry, level int) {
		for _, c := range children(dir) {
			if c.Name == "." || c.Name == ".." {
				continue
			}
			prefix := strings.Repeat("|   ", level)
			if c.Inode.IsDir() {
				out = append(out, prefix+"|-- "+c.Name)
				rec(c, level+1)
			} else {
				out = append(out, prefix+"|-- "+c.Name)
			}
		}
	}
	rec(start, 0)
	return out, nil
}

// Stat renders a human-readable field dump for the inode at path.
func Stat(fc *FsContext, path string) (string, *VFSError) {
	dent, verr := Resolve(fc, path)
	if verr != nil {
		return "", verr
	}
	ino := dent.Inode

	typ := "regular file"
	if ino.IsDir() {
		typ = "directory"
	}

	t := time.Unix(ino.Mtime, 0).Format("2006-01-02 15:04:05")
	return fmt.Sprintf(
		"  File: %s\n  Size: %d \tBlocks: %d \tType: %s\n  Inode: %d \tLinks: %d\n  Access: (0%o) \tUid: %d \tGid: %d\n  Modify: %s\n",
		path, ino.Size, ino.blocksInUse(), typ, ino.Ino, ino.NLink, ino.Mode, ino.Uid, ino.Gid, t,
	), nil
}

// GetCwd walks from fc.Cwd up to root, collecting names, and renders
// "/a/b/c".
func GetCwd(fc *FsContext) string {
	if fc.Cwd == fc.FS.Root() {
		return "/"
	}

	var names []string
	cur := fc.Cwd
	for cur != fc.FS.Root() {
		names = append(names, cur.Name)
		cur = cur.Parent
	}

	// reverse
	for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
		names[i], names[j] = names[j], names[i]
	}
	return "/" + strings.Join(names, "/")
}
