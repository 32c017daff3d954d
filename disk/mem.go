package disk

import (
	"fmt"
	"sync"

	"github.com/blockwal/fswal/common"
)

// memDisk is an in-memory Disk. Used by tests and the demo CLI; Write is
// synchronous by construction since there is no write-back cache to flush.
type memDisk struct {
	mu     sync.RWMutex
	blocks []Block
}

var _ Disk = (*memDisk)(nil)

// NewMemDisk creates an in-memory disk of numBlocks blocks, all zeroed.
func NewMemDisk(numBlocks common.Bnum) *memDisk {
	blocks := make([]Block, numBlocks)
	for i := range blocks {
		blocks[i] = NewBlock()
	}
	return &memDisk{blocks: blocks}
}

func (d *memDisk) Read(a common.Bnum) (Block, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if a >= common.Bnum(len(d.blocks)) {
		return nil, fmt.Errorf("disk: out-of-bounds read at %d", a)
	}
	out := make(Block, common.BSIZE)
	copy(out, d.blocks[a])
	return out, nil
}

func (d *memDisk) Write(a common.Bnum, v Block) error {
	if len(v) != common.BSIZE {
		return fmt.Errorf("disk: write to %d is not block-sized (%d bytes)", a, len(v))
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if a >= common.Bnum(len(d.blocks)) {
		return fmt.Errorf("disk: out-of-bounds write at %d", a)
	}
	copy(d.blocks[a], v)
	return nil
}

func (d *memDisk) Size() (common.Bnum, error) {
	return common.Bnum(len(d.blocks)), nil
}

func (d *memDisk) Close() error { return nil }
