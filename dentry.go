package vfs

// Dentry is a name node in the filesystem tree: a name plus a
// reference to its inode, linked into its parent's intrusive sibling
// list. Grounded on original_source/inc/fs/dentry.h and
// src/fs/vfs_cores.c's dentry_add_child/remove_child/find_child.
type Dentry struct {
	Name   string
	Parent *Dentry
	Inode  *Inode

	Child   *Dentry // first child
	Sibling *Dentry // next sibling
}

// addChild inserts child at the head of parent's sibling list (LIFO
// insertion; spec.md §4.4 requires this observable ordering for test
// determinism) and sets child's parent pointer. Name-uniqueness must
// already be checked by the caller.
func addChild(parent, child *Dentry) *VFSError {
	if parent == nil || child == nil {
		return newErr(Invalid, "addChild", "", nil)
	}
	child.Parent = parent
	child.Sibling = parent.Child
	parent.Child = child
	return nil
}

// removeChild unlinks child from parent's sibling list by scanning
// it. Fails with NotFound if child is not a direct child of parent.
func removeChild(parent, child *Dentry) *VFSError {
	if parent == nil || child == nil {
		return newErr(Invalid, "removeChild", "", nil)
	}

	var prev *Dentry
	cur := parent.Child
	for cur != nil && cur != child {
		prev = cur
		cur = cur.Sibling
	}
	if cur == nil {
		return newErr(NotFound, "removeChild", child.Name, nil)
	}

	if prev == nil {
		parent.Child = cur.Sibling
	} else {
		prev.Sibling = cur.Sibling
	}
	child.Parent = nil
	child.Sibling = nil
	return nil
}

// findChild does a linear scan of parent's sibling list for an exact
// name match, returning the first hit.
func findChild(parent *Dentry, name string) *Dentry {
	if parent == nil {
		return nil
	}
	for cur := parent.Child; cur != nil; cur = cur.Sibling {
		if cur.Name == name {
			return cur
		}
	}
	return nil
}

// children returns parent's direct children in sibling-list (LIFO)
// order, as a plain slice, for the directory listing operations.
func children(parent *Dentry) []*Dentry {
	var out []*Dentry
	for cur := parent.Child; cur != nil; cur = cur.Sibling {
		out = append(out, cur)
	}
	return out
}
