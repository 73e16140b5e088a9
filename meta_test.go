package vfs_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	vfs "github.com/emelab406/vfs-permission-system"
)

// S5 / P2: a fresh FS loaded from a saved image reconstructs an
// identical tree (path, type, size, content).
func TestMetaAndImageRoundTrip(t *testing.T) {
	opts := []vfs.Option{vfs.WithBlockSize(512), vfs.WithBlockCount(64), vfs.WithDirectBlocks(12), vfs.WithMetaMaxEntries(8)}

	fsys := vfs.New(opts...)
	fc := vfs.NewContext(fsys, 0, 0)
	mustMkdir(t, fc, "/a")
	if verr := vfs.CreateFile(fc, "/a/x"); verr != nil {
		t.Fatalf("touch: %v", verr)
	}
	if verr := vfs.WriteAll(fc, "/a/x", []byte("hi")); verr != nil {
		t.Fatalf("write: %v", verr)
	}

	if verr := vfs.MetaSave(fsys); verr != nil {
		t.Fatalf("meta_save: %v", verr)
	}
	imgPath := filepath.Join(t.TempDir(), "d.img")
	if verr := vfs.SaveImage(fsys, imgPath); verr != nil {
		t.Fatalf("save_image: %v", verr)
	}

	// Fresh process: new FS with the same geometry, load image + meta.
	fresh := vfs.New(opts...)
	freshFc := vfs.NewContext(fresh, 0, 0)
	if verr := vfs.LoadImage(fresh, imgPath); verr != nil {
		t.Fatalf("load_image: %v", verr)
	}
	if verr := vfs.MetaLoad(fresh); verr != nil {
		t.Fatalf("meta_load: %v", verr)
	}

	var buf bytes.Buffer
	if verr := vfs.Cat(freshFc, "/a/x", &buf); verr != nil {
		t.Fatalf("cat after reload: %v", verr)
	}
	if buf.String() != "hi" {
		t.Errorf("content after reload = %q, want %q", buf.String(), "hi")
	}

	names, verr := vfs.LsPath(freshFc, "/a")
	if verr != nil {
		t.Fatalf("ls after reload: %v", verr)
	}
	if len(names) != 1 || names[0] != "x" {
		t.Errorf("ls /a after reload = %v, want [x]", names)
	}
}

// A bad image magic/size/count is rejected with BAD_IMAGE.
func TestLoadImageRejectsMismatch(t *testing.T) {
	fsys := vfs.New(vfs.WithBlockSize(512), vfs.WithBlockCount(16))
	path := filepath.Join(t.TempDir(), "bad.img")
	if err := os.WriteFile(path, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	verr := vfs.LoadImage(fsys, path)
	if verr == nil {
		t.Fatal("expected BAD_IMAGE")
	}
	if !vfs.IsKind(verr, vfs.BadImage) {
		t.Errorf("expected BadImage, got %v", verr.Kind)
	}
}

// Meta-load is best-effort: a header with no valid magic treats the FS
// as empty rather than failing.
func TestMetaLoadBadHeaderIsEmpty(t *testing.T) {
	fsys := vfs.New()
	// No MetaSave was ever called; block 0 is all zeros, so the magic
	// check fails and MetaLoad must return nil rather than an error.
	if verr := vfs.MetaLoad(fsys); verr != nil {
		t.Fatalf("meta_load on empty block 0 should be best-effort, got %v", verr)
	}
	fc := vfs.NewContext(fsys, 0, 0)
	names, verr := vfs.LsPath(fc, "/")
	if verr != nil {
		t.Fatalf("ls /: %v", verr)
	}
	if len(names) != 0 {
		t.Errorf("expected empty root after best-effort load, got %v", names)
	}
}
