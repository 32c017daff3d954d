// Package super provides the minimal superblock view the log needs at
// mount time: the first block and length of the log region. Parsing the
// rest of a filesystem's superblock (inode table geometry, data region,
// free bitmap) lives above this module, not here.
package super

import (
	"encoding/binary"

	"github.com/blockwal/fswal/common"
)

// View is the narrow interface the log consumes from a superblock.
type View interface {
	// LogStart is the first block of the log region (block 0 of the
	// region is the header; blocks 1..NLog()-1 are log slots).
	LogStart() common.Bnum
	// NLog is the length of the log region in blocks.
	NLog() common.Bnum
}

// Block is a concrete superblock layout carrying just the fields the log
// needs, plus a size field so a real filesystem's format tool has
// somewhere to record the overall device geometry. Sized well short of
// common.BSIZE; the remaining bytes are reserved for the filesystem layers
// above to define their own layout without colliding with this prefix.
type Block struct {
	Size     common.Bnum
	LogStart_ common.Bnum
	NLog_     common.Bnum
}

var _ View = Block{}

func (s Block) LogStart() common.Bnum { return s.LogStart_ }
func (s Block) NLog() common.Bnum     { return s.NLog_ }

const encodedLen = 8 * 3

// Encode serializes s into the first bytes of a block-sized buffer,
// zero-filling the remainder, mirroring the log header codec's
// write-the-whole-block-verbatim convention.
func Encode(s Block) []byte {
	buf := make([]byte, common.BSIZE)
	binary.LittleEndian.PutUint64(buf[0:8], s.Size)
	binary.LittleEndian.PutUint64(buf[8:16], s.LogStart_)
	binary.LittleEndian.PutUint64(buf[16:24], s.NLog_)
	return buf
}

// Decode parses a superblock previously written by Encode.
func Decode(buf []byte) Block {
	return Block{
		Size:      binary.LittleEndian.Uint64(buf[0:8]),
		LogStart_: binary.LittleEndian.Uint64(buf[8:16]),
		NLog_:     binary.LittleEndian.Uint64(buf[16:24]),
	}
}
