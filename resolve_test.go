package vfs_test

import (
	"testing"

	vfs "github.com/emelab406/vfs-permission-system"
)

func TestResolveDotDot(t *testing.T) {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)

	mustMkdir(t, fc, "/a")
	mustMkdir(t, fc, "/a/b")

	if verr := vfs.Cd(fc, "/a/b"); verr != nil {
		t.Fatalf("cd: %v", verr)
	}
	if got := vfs.GetCwd(fc); got != "/a/b" {
		t.Fatalf("cwd = %q, want /a/b", got)
	}

	if verr := vfs.Cd(fc, ".."); verr != nil {
		t.Fatalf("cd ..: %v", verr)
	}
	if got := vfs.GetCwd(fc); got != "/a" {
		t.Fatalf("cwd after .. = %q, want /a", got)
	}
}

// P6: X permission is required on every directory the resolver walks
// through, including a ".." hop.
func TestResolveRequiresExecuteOnDotDot(t *testing.T) {
	fsys := vfs.New()
	root := vfs.NewContext(fsys, 0, 0)
	mustMkdir(t, root, "/top")
	if verr := vfs.Chmod(root, "/top", 0o777); verr != nil {
		t.Fatalf("chmod /top: %v", verr)
	}

	owner := vfs.NewContext(fsys, 1000, 100)
	mustMkdir(t, owner, "/top/p")
	mustMkdir(t, owner, "/top/p/q")
	if verr := vfs.Chmod(root, "/top/p", 0o750); verr != nil {
		t.Fatalf("chmod /top/p: %v", verr)
	}

	if verr := vfs.Cd(owner, "/top/p/q"); verr != nil {
		t.Fatalf("owner cd /top/p/q: %v", verr)
	}
	// owner has rwx on /top/p (0750, owner bits 7), so ".." must succeed.
	if verr := vfs.Cd(owner, ".."); verr != nil {
		t.Fatalf("owner cd ..: %v", verr)
	}

	// Back in q, drop the owner's X on /top/p: the ".." hop into p must
	// now be refused.
	if verr := vfs.Cd(owner, "q"); verr != nil {
		t.Fatalf("owner cd q: %v", verr)
	}
	if verr := vfs.Chmod(root, "/top/p", 0o650); verr != nil {
		t.Fatalf("chmod /top/p: %v", verr)
	}
	if _, verr := vfs.Resolve(owner, ".."); verr == nil {
		t.Fatal("expected PERM_DENIED resolving .. into /top/p without X")
	} else if !vfs.IsKind(verr, vfs.PermDenied) {
		t.Errorf("expected PermDenied, got %v", verr.Kind)
	}

	other := vfs.NewContext(fsys, 9999, 9999)
	if _, verr := vfs.Resolve(other, "/top/p/q"); verr == nil {
		t.Fatal("expected PERM_DENIED resolving /top/p/q as a stranger")
	} else if !vfs.IsKind(verr, vfs.PermDenied) {
		t.Errorf("expected PermDenied, got %v", verr.Kind)
	}
}

func TestResolveNotFound(t *testing.T) {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)
	if _, verr := vfs.Resolve(fc, "/nope"); verr == nil {
		t.Fatal("expected NOT_FOUND")
	} else if !vfs.IsKind(verr, vfs.NotFound) {
		t.Errorf("expected NotFound, got %v", verr.Kind)
	}
}

func mustMkdir(t *testing.T, fc *vfs.FsContext, path string) {
	t.Helper()
	if verr := vfs.Mkdir(fc, path); verr != nil {
		t.Fatalf("mkdir %s: %v", path, verr)
	}
}
