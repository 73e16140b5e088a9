package vfs

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Persistence layout (spec.md §4.8/§6.2):
//
//	block 0:        meta_header
//	blocks 1..N:    meta_entry records, packed without straddling a
//	                block boundary (an entry that doesn't fit in the
//	                remainder of the current block starts the next one)
//
// Grounded on original_source/src/fs/meta.c.

const (
	metaMagic   = 0x4D455441 // "META"
	metaVersion = 1
	metaNameLen = 60
)

func metaEntrySize(directBlocks int) int {
	// Used(1) + Type(1) + Reserved(2) + Size(4) + Blocks(4*n) +
	// ParentIndex(4) + Name(60)
	return 1 + 1 + 2 + 4 + 4*directBlocks + 4 + metaNameLen
}

// MetaSave flattens the tree via DFS into meta_entry records, reserves
// the blocks it needs (never alloc, so it never competes with live
// file data), and writes the header+entries. The root directory itself
// is never written as an entry; only its descendants are, each
// carrying the array index of its parent (-1 for a direct child of
// root), matching original_source/src/fs/meta.c's save_dentry_recursive
// which only ever walks root's children. Silently truncates to
// MetaMaxEntries entries if the tree holds more nodes than that.
func MetaSave(f *FS) *VFSError {
	type flat struct {
		dent        *Dentry
		parentIndex int32
	}

	var order []flat
	var walk func(d *Dentry, parentIdx int32)
	walk = func(d *Dentry, parentIdx int32) {
		idx := int32(len(order))
		order = append(order, flat{dent: d, parentIndex: parentIdx})
		if d.Inode.IsDir() {
			for _, c := range children(d) {
				walk(c, idx)
			}
		}
	}
	for _, c := range children(f.root) {
		walk(c, -1)
	}

	if len(order) > f.metaMaxEntries {
		order = order[:f.metaMaxEntries]
	}

	entrySize := metaEntrySize(f.directBlocks)
	entriesPerBlock := f.blockSize / entrySize
	if entriesPerBlock == 0 {
		return newErr(Invalid, "meta_save", "", fmt.Errorf("block size %d too small for entry size %d", f.blockSize, entrySize))
	}

	blocksNeeded := 1 // header
	if len(order) > 0 {
		blocksNeeded += (len(order) + entriesPerBlock - 1) / entriesPerBlock
	}
	if blocksNeeded > f.blockCount {
		return newErr(NoSpace, "meta_save", "", nil)
	}

	for i := 0; i < blocksNeeded; i++ {
		if err := f.dev.reserve(i); err != nil {
			return err
		}
	}

	hdrBuf := make([]byte, f.blockSize)
	binary.LittleEndian.PutUint32(hdrBuf[0:4], metaMagic)
	binary.LittleEndian.PutUint32(hdrBuf[4:8], metaVersion)
	binary.LittleEndian.PutUint32(hdrBuf[8:12], uint32(len(order)))
	binary.LittleEndian.PutUint32(hdrBuf[12:16], 0)
	if err := f.dev.write(0, hdrBuf); err != nil {
		return err
	}

	block := 1
	buf := make([]byte, f.blockSize)
	offset := 0
	flush := func() *VFSError {
		if offset == 0 {
			return nil
		}
		if err := f.dev.write(block, buf); err != nil {
			return err
		}
		block++
		offset = 0
		zeroBlock(buf)
		return nil
	}

	for _, item := range order {
		if offset+entrySize > f.blockSize {
			if err := flush(); err != nil {
				return err
			}
		}
		enc := encodeMetaEntry(item.dent, item.parentIndex, f.directBlocks)
		copy(buf[offset:offset+entrySize], enc)
		offset += entrySize
	}
	if err := flush(); err != nil {
		return err
	}

	return nil
}

func encodeMetaEntry(d *Dentry, parentIndex int32, directBlocks int) []byte {
	ino := d.Inode
	var out bytes.Buffer
	out.WriteByte(1) // used
	if ino.IsDir() {
		out.WriteByte(byte(TypeDir))
	} else {
		out.WriteByte(byte(TypeFile))
	}
	out.Write([]byte{0, 0}) // reserved

	var sizeBuf [4]byte
	binary.LittleEndian.PutUint32(sizeBuf[:], uint32(ino.Size))
	out.Write(sizeBuf[:])

	for i := 0; i < directBlocks; i++ {
		var b int32 = -1
		if i < len(ino.Blocks) {
			b = ino.Blocks[i]
		}
		var bb [4]byte
		binary.LittleEndian.PutUint32(bb[:], uint32(b))
		out.Write(bb[:])
	}

	var pb [4]byte
	binary.LittleEndian.PutUint32(pb[:], uint32(parentIndex))
	out.Write(pb[:])

	var name [metaNameLen]byte
	copy(name[:], d.Name)
	out.Write(name[:])

	return out.Bytes()
}

// MetaLoad rebuilds the dentry/inode tree from the on-disk meta
// region, reserving the blocks it consumes and whatever blocks each
// entry's Blocks[] references so the allocator never reissues them.
// Two-pass: first create all inodes/dentries, then link siblings; an
// out-of-range parent index reparents the node to root rather than
// aborting the load, per original_source/src/fs/meta.c's recovery
// behavior.
func MetaLoad(f *FS) *VFSError {
	hdrBuf := make([]byte, f.blockSize)
	if err := f.dev.read(0, hdrBuf); err != nil {
		return err
	}
	magic := binary.LittleEndian.Uint32(hdrBuf[0:4])
	ver := binary.LittleEndian.Uint32(hdrBuf[4:8])
	if magic != metaMagic || ver != metaVersion {
		// A bad header treats the FS as empty (best-effort load),
		// per spec.md §7, not a hard failure.
		return nil
	}
	entryCount := int(binary.LittleEndian.Uint32(hdrBuf[8:12]))
	if err := f.dev.reserve(0); err != nil {
		return err
	}

	entrySize := metaEntrySize(f.directBlocks)
	entriesPerBlock := f.blockSize / entrySize
	if entriesPerBlock == 0 {
		return newErr(Invalid, "meta_load", "", fmt.Errorf("block size %d too small for entry size %d", f.blockSize, entrySize))
	}

	type loaded struct {
		dent        *Dentry
		parentIndex int32
	}
	entries := make([]loaded, 0, entryCount)

	block := 1
	buf := make([]byte, f.blockSize)
	offset := f.blockSize // force first read
	readNext := func() ([]byte, *VFSError) {
		if offset+entrySize > f.blockSize {
			if err := f.dev.read(block, buf); err != nil {
				return nil, err
			}
			if err := f.dev.reserve(block); err != nil {
				return nil, err
			}
			block++
			offset = 0
		}
		rec := buf[offset : offset+entrySize]
		offset += entrySize
		return rec, nil
	}

	for i := 0; i < entryCount; i++ {
		rec, err := readNext()
		if err != nil {
			return err
		}
		if rec[0] == 0 {
			continue // unused slot
		}

		typ := InodeType(rec[1])
		size := uint64(binary.LittleEndian.Uint32(rec[4:8]))

		off := 8
		blocks := make([]int32, f.directBlocks)
		for b := 0; b < f.directBlocks; b++ {
			v := int32(binary.LittleEndian.Uint32(rec[off : off+4]))
			blocks[b] = v
			if v >= 0 {
				if rerr := f.dev.reserve(int(v)); rerr != nil {
					return rerr
				}
			}
			off += 4
		}
		parentIndex := int32(binary.LittleEndian.Uint32(rec[off : off+4]))
		off += 4
		nameBytes := rec[off : off+metaNameLen]
		name := string(bytes.TrimRight(nameBytes, "\x00"))

		ino := &Inode{
			Type:   typ,
			Mode:   defaultModeFor(typ),
			NLink:  1,
			Size:   size,
			Blocks: blocks,
			Mtime:  time.Now().Unix(),
		}
		ino.Ino = f.allocIno()

		d := &Dentry{Name: name, Inode: ino}
		entries = append(entries, loaded{dent: d, parentIndex: parentIndex})
	}

	// Every loaded entry is a descendant of root; root itself is never
	// stored as an entry (MetaSave only walks root's children). A
	// parent index of -1, one that falls outside the loaded set, or one
	// that names a non-directory all fall back to attaching the entry
	// directly under root, matching original_source/src/fs/meta.c's
	// recovery behavior.
	for i := range entries {
		p := entries[i].parentIndex
		var parent *Dentry
		if p >= 0 && int(p) < len(entries) {
			parent = entries[p].dent
		} else {
			parent = f.root
		}
		if !parent.Inode.IsDir() {
			parent = f.root
		}
		addChild(parent, entries[i].dent)
	}

	return nil
}

func defaultModeFor(typ InodeType) uint32 {
	if typ == TypeDir {
		return IFDIR | 0o755
	}
	return IFREG | 0o644
}
