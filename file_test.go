package vfs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	vfs "github.com/emelab406/vfs-permission-system"
)

// S3: write_all truncate-rewrite block accounting.
func TestWriteAllTruncateRewrite(t *testing.T) {
	fsys := vfs.New(vfs.WithBlockSize(512), vfs.WithBlockCount(64), vfs.WithDirectBlocks(12), vfs.WithMetaMaxEntries(8))
	fc := vfs.NewContext(fsys, 0, 0)

	if verr := vfs.CreateFile(fc, "/f"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}

	if verr := vfs.WriteAll(fc, "/f", bytes.Repeat([]byte{'a'}, 512)); verr != nil {
		t.Fatalf("write 512: %v", verr)
	}
	freeAfterFirst := fsys.FreeBlocks()

	if verr := vfs.WriteAll(fc, "/f", []byte("bb")); verr != nil {
		t.Fatalf("write 2: %v", verr)
	}
	if fsys.FreeBlocks() != freeAfterFirst {
		t.Errorf("shrinking to 1 block should not change free_blocks, got delta %d", fsys.FreeBlocks()-freeAfterFirst)
	}

	if verr := vfs.WriteAll(fc, "/f", bytes.Repeat([]byte{'c'}, 1200)); verr != nil {
		t.Fatalf("write 1200: %v", verr)
	}
	if got := freeAfterFirst - fsys.FreeBlocks(); got != 2 {
		t.Errorf("1200 bytes should now occupy 3 blocks total (2 more than the first 512-byte write), delta=%d", got)
	}
}

// S4: a write that would exceed DIRECT_BLOCKS*blockSize fails with
// NO_SPACE and leaves the inode untouched.
func TestWriteAllExceedsCapacity(t *testing.T) {
	fsys := vfs.New(vfs.WithBlockSize(512), vfs.WithBlockCount(64), vfs.WithDirectBlocks(12))
	fc := vfs.NewContext(fsys, 0, 0)

	if verr := vfs.CreateFile(fc, "/big"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	verr := vfs.WriteAll(fc, "/big", make([]byte, 6145)) // needs 13 blocks, only 12 direct
	if verr == nil {
		t.Fatal("expected NO_SPACE for a write exceeding DIRECT_BLOCKS*B")
	}
	if !vfs.IsKind(verr, vfs.NoSpace) {
		t.Errorf("expected NoSpace, got %v", verr.Kind)
	}

	out, serr := vfs.Stat(fc, "/big")
	if serr != nil {
		t.Fatalf("stat: %v", serr)
	}
	if !containsAll(out, "Size: 0") {
		t.Errorf("size should remain 0 after failed write, got %q", out)
	}
}

// P4: write_all is idempotent on identical input.
func TestWriteAllIdempotent(t *testing.T) {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)

	if verr := vfs.CreateFile(fc, "/f"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	data := []byte("the quick brown fox")

	if verr := vfs.WriteAll(fc, "/f", data); verr != nil {
		t.Fatalf("write 1: %v", verr)
	}
	usedAfterFirst := fsys.UsedBlocks()

	if verr := vfs.WriteAll(fc, "/f", data); verr != nil {
		t.Fatalf("write 2: %v", verr)
	}
	if fsys.UsedBlocks() != usedAfterFirst {
		t.Errorf("second identical write changed allocation count: %d -> %d", usedAfterFirst, fsys.UsedBlocks())
	}

	var buf bytes.Buffer
	if verr := vfs.Cat(fc, "/f", &buf); verr != nil {
		t.Fatalf("cat: %v", verr)
	}
	if buf.String() != string(data) {
		t.Errorf("content mismatch after idempotent write: %q", buf.String())
	}
}

// P7: a failed write leaves content and allocation untouched. We force
// the failure by attempting to grow past the direct-block ceiling after
// an initial successful write; that check rejects the write before any
// block is freed or allocated.
func TestWriteAllRollbackLeavesStateUntouched(t *testing.T) {
	fsys := vfs.New(vfs.WithBlockSize(512), vfs.WithBlockCount(64), vfs.WithDirectBlocks(4), vfs.WithMetaMaxEntries(8))
	fc := vfs.NewContext(fsys, 0, 0)

	if verr := vfs.CreateFile(fc, "/f"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	if verr := vfs.WriteAll(fc, "/f", []byte("abc")); verr != nil {
		t.Fatalf("initial write: %v", verr)
	}
	usedBefore := fsys.UsedBlocks()

	verr := vfs.WriteAll(fc, "/f", make([]byte, 4*512+1)) // needs 5 blocks, only 4 direct
	if verr == nil {
		t.Fatal("expected NO_SPACE")
	}

	var buf bytes.Buffer
	if cerr := vfs.Cat(fc, "/f", &buf); cerr != nil {
		t.Fatalf("cat after failed write: %v", cerr)
	}
	if buf.String() != "abc" {
		t.Errorf("content changed after rollback: %q", buf.String())
	}
	if fsys.UsedBlocks() != usedBefore {
		t.Errorf("allocation leaked after rollback: before=%d after=%d", usedBefore, fsys.UsedBlocks())
	}
}

// rm only checks the parent's W|X, never the target's own mode.
func TestRmIgnoresTargetMode(t *testing.T) {
	fsys := vfs.New()
	root := vfs.NewContext(fsys, 0, 0)
	owner := vfs.NewContext(fsys, 1000, 100)

	mustMkdir(t, root, "/d")
	if verr := vfs.Chmod(root, "/d", 0o777); verr != nil {
		t.Fatalf("chmod /d: %v", verr)
	}
	if verr := vfs.CreateFile(owner, "/d/f"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	if verr := vfs.Chmod(root, "/d/f", 0o000); verr != nil {
		t.Fatalf("chmod: %v", verr)
	}
	if verr := vfs.Rm(owner, "/d/f"); verr != nil {
		t.Fatalf("rm of a 0-mode file should still succeed: %v", verr)
	}
}

func TestImportExport(t *testing.T) {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)

	dir := t.TempDir()
	hostPath := filepath.Join(dir, "payload.txt")
	if err := os.WriteFile(hostPath, []byte("payload-data"), 0o644); err != nil {
		t.Fatalf("host write: %v", err)
	}

	mustMkdir(t, fc, "/imported")
	if verr := vfs.Import(fc, hostPath, "/imported"); verr != nil {
		t.Fatalf("import into dir: %v", verr)
	}
	var buf bytes.Buffer
	if verr := vfs.Cat(fc, "/imported/payload.txt", &buf); verr != nil {
		t.Fatalf("cat imported: %v", verr)
	}
	if buf.String() != "payload-data" {
		t.Errorf("imported content = %q", buf.String())
	}

	exportPath := filepath.Join(dir, "out.txt")
	if verr := vfs.Export(fc, "/imported/payload.txt", exportPath); verr != nil {
		t.Fatalf("export: %v", verr)
	}
	got, err := os.ReadFile(exportPath)
	if err != nil {
		t.Fatalf("read exported file: %v", err)
	}
	if string(got) != "payload-data" {
		t.Errorf("exported content = %q", got)
	}
}

func TestCp(t *testing.T) {
	fsys := vfs.New()
	fc := vfs.NewContext(fsys, 0, 0)

	if verr := vfs.CreateFile(fc, "/src"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	if verr := vfs.WriteAll(fc, "/src", []byte("copy me")); verr != nil {
		t.Fatalf("write: %v", verr)
	}
	if verr := vfs.Cp(fc, "/src", "/dst"); verr != nil {
		t.Fatalf("cp: %v", verr)
	}

	var buf bytes.Buffer
	if verr := vfs.Cat(fc, "/dst", &buf); verr != nil {
		t.Fatalf("cat dst: %v", verr)
	}
	if buf.String() != "copy me" {
		t.Errorf("dst content = %q", buf.String())
	}
}

func containsAll(s string, subs ...string) bool {
	for _, sub := range subs {
		if !bytes.Contains([]byte(s), []byte(sub)) {
			return false
		}
	}
	return true
}
