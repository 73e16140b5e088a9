package vfs

// Resolve walks raw from root (if absolute) or fc.Cwd (if relative),
// enforcing per-segment execute permission. Grounded on
// original_source/src/fs/vfs.pathwalk.c's vfs_lookup, with spec.md
// §4.5's stricter branch: X is required on ".." moves too, checked
// against the target directory being entered, not the one being left.
func Resolve(fc *FsContext, raw string) (*Dentry, *VFSError) {
	norm := Normalize(raw)
	if norm == "" {
		return nil, newErr(NotFound, "resolve", raw, ErrEmptyPath)
	}

	var cur *Dentry
	var rest string

	if norm[0] == '/' {
		if norm == "/" {
			return fc.FS.Root(), nil
		}
		cur = fc.FS.Root()
		rest = norm[1:]
	} else {
		cur = fc.Cwd
		rest = norm
	}

	for _, seg := range Tokenize(rest) {
		switch seg {
		case ".":
			continue
		case "..":
			target := cur.Parent
			if !target.Inode.IsDir() {
				return nil, newErr(NotADir, "resolve", raw, nil)
			}
			if !PermCheck(fc, target.Inode, X_OK) {
				return nil, newErr(PermDenied, "resolve", raw, nil)
			}
			cur = target
		default:
			if !cur.Inode.IsDir() {
				return nil, newErr(NotADir, "resolve", raw, nil)
			}
			if !PermCheck(fc, cur.Inode, X_OK) {
				return nil, newErr(PermDenied, "resolve", raw, nil)
			}
			next := findChild(cur, seg)
			if next == nil {
				return nil, newErr(NotFound, "resolve", raw, nil)
			}
			cur = next
		}
	}

	return cur, nil
}

// resolveParent resolves the parent directory for a create-style
// operation (mkdir/create_file) given the already-normalized path,
// following the last-slash split used throughout
// original_source/src/fs/vfs.c and vfs_file.c.
func resolveParent(fc *FsContext, normalized string) (parent *Dentry, leaf string, verr *VFSError) {
	parentPath, leaf, hadSlash := splitParent(normalized)
	if leaf == "" {
		return nil, "", newErr(Invalid, "resolve", normalized, ErrEmptyPath)
	}
	if !hadSlash {
		return fc.Cwd, leaf, nil
	}
	if parentPath == "/" {
		return fc.FS.Root(), leaf, nil
	}
	p, err := Resolve(fc, parentPath)
	if err != nil {
		return nil, "", err
	}
	return p, leaf, nil
}
