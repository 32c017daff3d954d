// Package disk provides the block-addressable device abstraction the log
// treats as an external collaborator. Every Write is synchronous: it must
// not return until the block is durable, since the commit protocol's
// correctness depends on that ordering guarantee.
package disk

import "github.com/blockwal/fswal/common"

// Block is one BSIZE-byte buffer.
type Block = []byte

// Disk is a logical block device. Implementations must make Write durable
// before returning; callers never issue a separate flush/barrier call.
type Disk interface {
	// Read returns a fresh copy of the block at a. Expects a < Size().
	Read(a common.Bnum) (Block, error)

	// Write durably stores v at block a. Expects a < Size() and
	// len(v) == common.BSIZE.
	Write(a common.Bnum, v Block) error

	// Size reports the device size in blocks.
	Size() (common.Bnum, error)

	// Close releases any resources held by the device.
	Close() error
}

// NewBlock allocates a zeroed, block-sized buffer.
func NewBlock() Block {
	return make(Block, common.BSIZE)
}
