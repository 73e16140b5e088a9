package vfs_test

import (
	"testing"

	vfs "github.com/emelab406/vfs-permission-system"
)

func TestPermCheckRootBypassesEverything(t *testing.T) {
	fsys := vfs.New()
	root := vfs.NewContext(fsys, 0, 0)
	fc := vfs.NewContext(fsys, 0, 0)

	mustMkdir(t, root, "/d")
	if verr := vfs.Chmod(root, "/d", 0o000); verr != nil {
		t.Fatalf("chmod: %v", verr)
	}
	if verr := vfs.Cd(fc, "/d"); verr != nil {
		t.Errorf("root should bypass a 0-mode directory, got %v", verr)
	}
}

func TestPermCheckOwnerGroupOtherShifts(t *testing.T) {
	fsys := vfs.New()
	root := vfs.NewContext(fsys, 0, 0)

	owner := vfs.NewContext(fsys, 1000, 100)
	mustMkdir(t, owner, "/d")
	if verr := vfs.Chmod(root, "/d", 0o750); verr != nil {
		t.Fatalf("chmod: %v", verr)
	}

	// Owner: rwx (7) includes X, so cd succeeds.
	if verr := vfs.Cd(owner, "/d"); verr != nil {
		t.Errorf("owner cd with mode 0750 should succeed: %v", verr)
	}

	// Same group, different uid: r-x (5) includes X, so cd succeeds.
	groupMate := vfs.NewContext(fsys, 2000, 100)
	if verr := vfs.Cd(groupMate, "/d"); verr != nil {
		t.Errorf("group-mate cd with mode 0750 should succeed: %v", verr)
	}

	// Neither uid nor gid matches: other bits are 0, so cd fails.
	stranger := vfs.NewContext(fsys, 3000, 300)
	if verr := vfs.Cd(stranger, "/d"); verr == nil {
		t.Fatal("expected stranger cd to fail under mode 0750")
	} else if !vfs.IsKind(verr, vfs.PermDenied) {
		t.Errorf("expected PermDenied, got %v", verr.Kind)
	}
}

func TestPermCheckNeedsAllRequestedBits(t *testing.T) {
	fsys := vfs.New()
	root := vfs.NewContext(fsys, 0, 0)
	owner := vfs.NewContext(fsys, 1000, 100)

	mustMkdir(t, owner, "/ro")
	if verr := vfs.Chmod(root, "/ro", 0o555); verr != nil { // r-x, no write
		t.Fatalf("chmod: %v", verr)
	}
	if verr := vfs.CreateFile(owner, "/ro/f"); verr == nil {
		t.Fatal("expected create_file to fail without W on parent")
	} else if !vfs.IsKind(verr, vfs.PermDenied) {
		t.Errorf("expected PermDenied, got %v", verr.Kind)
	}
}
