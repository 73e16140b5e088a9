package vfs

// FsContext carries the per-"process" mutable state spec.md §5 calls
// out: current identity and current working directory. Passed
// explicitly into every operation rather than held in package
// globals, per spec.md §9's "Global identity and cwd" redesign note.
type FsContext struct {
	FS  *FS
	Uid uint32
	Gid uint32
	Cwd *Dentry
}

// NewContext returns a context rooted at fs's root directory, with
// the given identity.
func NewContext(fs *FS, uid, gid uint32) *FsContext {
	return &FsContext{FS: fs, Uid: uid, Gid: gid, Cwd: fs.Root()}
}

// Sudo scopes a privilege elevation to (0,0) and returns a restore
// function; callers must defer the returned func so the elevated
// identity never outlives the call even on an early return or panic,
// matching spec.md §5's scoped-restore discipline for the shell's sudo
// pattern.
func (fc *FsContext) Sudo() func() {
	oldUid, oldGid := fc.Uid, fc.Gid
	fc.Uid, fc.Gid = 0, 0
	return func() {
		fc.Uid, fc.Gid = oldUid, oldGid
	}
}

// SwitchUser updates the context's identity to match u, e.g. for the
// shell's `su` command.
func (fc *FsContext) SwitchUser(u *User) {
	fc.Uid, fc.Gid = u.Uid, u.Gid
}
