package vfs

// FS is the superblock: the global anchor holding the magic constant,
// the block device, the root dentry, and the sizing constants the
// rest of the core reads from. Grounded on
// original_source/src/fs/super.h / vfs_cores.c's fs_init.
type FS struct {
	magic uint32

	blockSize      int
	blockCount     int
	directBlocks   int
	metaMaxEntries int

	dev  *blockDevice
	root *Dentry

	nextIno uint64
}

const (
	defaultBlockSize      = 512
	defaultBlockCount     = 1024
	defaultDirectBlocks   = 12
	defaultMetaMaxEntries = 1024

	imgMagic = 0x56465331 // "VFS1"
)

// New creates an empty filesystem: a block device and a root
// directory inode, ready for mkdir/create_file calls or a meta-load
// restore from an image.
func New(opts ...Option) *FS {
	f := &FS{
		magic:          0x12345678,
		blockSize:      defaultBlockSize,
		blockCount:     defaultBlockCount,
		directBlocks:   defaultDirectBlocks,
		metaMaxEntries: defaultMetaMaxEntries,
	}
	for _, opt := range opts {
		opt(f)
	}

	f.dev = newBlockDevice(f.blockSize, f.blockCount)
	f.nextIno = 1

	rootInode := newInode(TypeDir, IFDIR|0o777, 0, 0, f.directBlocks)
	rootInode.Ino = f.allocIno()
	root := &Dentry{Name: "/", Inode: rootInode}
	root.Parent = root // root's parent is root itself, per spec.md I8.
	f.root = root

	reserveMetaRegion(f)

	return f
}

// reserveMetaRegion permanently marks the blocks MetaSave/MetaLoad will
// ever touch (the header plus room for MetaMaxEntries entries) as used,
// before any file write can run. original_source/src/fs/block.c never
// pre-reserves this region; it's only ever claimed lazily inside
// meta_save/meta_load, which leaves a window on a freshly created FS
// where an ordinary write can land on block 0 and get clobbered by the
// next meta_save. Reserving it up front at construction closes that
// window and is what makes the save/reload round trip (spec.md's P2)
// hold unconditionally rather than by allocation-order luck.
func reserveMetaRegion(f *FS) {
	entrySize := metaEntrySize(f.directBlocks)
	entriesPerBlock := f.blockSize / entrySize
	if entriesPerBlock == 0 {
		return
	}
	blocksNeeded := 1 + (f.metaMaxEntries+entriesPerBlock-1)/entriesPerBlock
	if blocksNeeded > f.blockCount {
		blocksNeeded = f.blockCount
	}
	for i := 0; i < blocksNeeded; i++ {
		f.dev.reserve(i)
	}
}

func (f *FS) allocIno() uint64 {
	ino := f.nextIno
	f.nextIno++
	return ino
}

// Root returns the root dentry.
func (f *FS) Root() *Dentry { return f.root }

// TotalBlocks, UsedBlocks, FreeBlocks, TotalSize, UsedSize, FreeSize
// report allocator accounting for `df`-style reporting (spec.md §4.1).
func (f *FS) TotalBlocks() int { return f.dev.totalBlocks() }
func (f *FS) UsedBlocks() int  { return f.dev.usedBlocks() }
func (f *FS) FreeBlocks() int  { return f.dev.freeBlocks() }
func (f *FS) TotalSize() int   { return f.dev.totalSize() }
func (f *FS) UsedSize() int    { return f.dev.usedSize() }
func (f *FS) FreeSize() int    { return f.dev.freeSize() }
