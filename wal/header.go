package wal

import (
	"encoding/binary"

	"github.com/blockwal/fswal/common"
)

// header is the fixed-layout record written to block 0 of the log region:
// a count followed by that many home block numbers. It doubles as the
// in-memory copy of what has been, or will be, written to disk.
//
// Wire layout, little-endian:
//
//	offset 0: n, int32
//	offset 4: block[0..LOGSIZE), each int32
//	remainder of the block: zero-preserved, ignored on read
//
// Grounded directly on xv6 kernel/log.c's struct logheader and
// read_head/write_head.
type header struct {
	n     int32
	block [common.LOGSIZE]int32
}

func init() {
	const encoded = 4 + common.LOGSIZE*4
	if encoded >= common.BSIZE {
		panic("wal: header does not fit in one block")
	}
}

// encodeTo serializes h into blk, which must be exactly common.BSIZE bytes.
// Bytes beyond the header prefix are left untouched by design: callers
// writing a freshly-read block back out preserve whatever padding was
// already there.
func (h *header) encodeTo(blk []byte) {
	if len(blk) != common.BSIZE {
		panic("wal: header block is not block-sized")
	}
	binary.LittleEndian.PutUint32(blk[0:4], uint32(h.n))
	for i := 0; i < common.LOGSIZE; i++ {
		off := 4 + i*4
		binary.LittleEndian.PutUint32(blk[off:off+4], uint32(h.block[i]))
	}
}

// decodeFrom parses h out of blk, which must be exactly common.BSIZE bytes.
func (h *header) decodeFrom(blk []byte) {
	if len(blk) != common.BSIZE {
		panic("wal: header block is not block-sized")
	}
	h.n = int32(binary.LittleEndian.Uint32(blk[0:4]))
	for i := 0; i < common.LOGSIZE; i++ {
		off := 4 + i*4
		h.block[i] = int32(binary.LittleEndian.Uint32(blk[off : off+4]))
	}
}

// clone returns a deep copy of h; the copy shares no storage with h.
func (h *header) clone() *header {
	c := *h
	return &c
}
