package vfs

import "sync"

// blockDevice is a fixed-capacity RAM block device: an array of
// blockCount blocks of blockSize bytes each, with a parallel
// allocation bitmap. Grounded on original_source/src/fs/block.c.
type blockDevice struct {
	mu sync.Mutex

	blockSize  int
	blockCount int

	data   [][]byte
	bitmap []bool
}

func newBlockDevice(blockSize, blockCount int) *blockDevice {
	d := &blockDevice{
		blockSize:  blockSize,
		blockCount: blockCount,
		data:       make([][]byte, blockCount),
		bitmap:     make([]bool, blockCount),
	}
	for i := range d.data {
		d.data[i] = make([]byte, blockSize)
	}
	return d
}

// alloc finds the lowest-numbered free block, marks it used, zeroes
// it, and returns its index. First-fit, per spec.md §4.1.
func (d *blockDevice) alloc() (int, *VFSError) {
	d.mu.Lock()
	defer d.mu.Unlock()

	for i := 0; i < d.blockCount; i++ {
		if !d.bitmap[i] {
			d.bitmap[i] = true
			zeroBlock(d.data[i])
			return i, nil
		}
	}
	return -1, newErr(NoSpace, "alloc", "", nil)
}

// free clears the bitmap bit and zeroes the block's data. Out-of-range
// or already-free indices are silently ignored, per spec.md §4.1.
func (d *blockDevice) free(i int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= d.blockCount {
		return
	}
	d.bitmap[i] = false
	zeroBlock(d.data[i])
}

// reserve forces the bitmap bit on without touching the block's data.
// Used by the persistence layer to pre-mark meta and reloaded data
// blocks so the allocator never re-hands them out.
func (d *blockDevice) reserve(i int) *VFSError {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= d.blockCount {
		return newErr(Invalid, "reserve", "", nil)
	}
	d.bitmap[i] = true
	return nil
}

func (d *blockDevice) read(i int, buf []byte) *VFSError {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= d.blockCount {
		return newErr(Invalid, "read", "", nil)
	}
	copy(buf, d.data[i])
	return nil
}

func (d *blockDevice) write(i int, buf []byte) *VFSError {
	d.mu.Lock()
	defer d.mu.Unlock()

	if i < 0 || i >= d.blockCount {
		return newErr(Invalid, "write", "", nil)
	}
	copy(d.data[i], buf)
	return nil
}

func (d *blockDevice) totalBlocks() int { return d.blockCount }

func (d *blockDevice) usedBlocks() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	n := 0
	for _, used := range d.bitmap {
		if used {
			n++
		}
	}
	return n
}

func (d *blockDevice) freeBlocks() int { return d.totalBlocks() - d.usedBlocks() }

func (d *blockDevice) totalSize() int { return d.blockCount * d.blockSize }
func (d *blockDevice) usedSize() int  { return d.usedBlocks() * d.blockSize }
func (d *blockDevice) freeSize() int  { return d.freeBlocks() * d.blockSize }

func zeroBlock(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
