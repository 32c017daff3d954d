package wal

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/blockwal/fswal/common"
)

func TestHeaderRoundTrip(t *testing.T) {
	assert := assert.New(t)

	h := &header{n: 3}
	h.block[0] = 5
	h.block[1] = 6
	h.block[2] = 7

	blk := make([]byte, common.BSIZE)
	h.encodeTo(blk)

	got := &header{}
	got.decodeFrom(blk)

	assert.Equal(h.n, got.n)
	assert.Equal(h.block, got.block)
}

func TestHeaderEncodePreservesTrailingBytes(t *testing.T) {
	assert := assert.New(t)

	blk := make([]byte, common.BSIZE)
	blk[common.BSIZE-1] = 0xAB

	h := &header{n: 1}
	h.block[0] = 2
	h.encodeTo(blk)

	assert.Equal(byte(0xAB), blk[common.BSIZE-1],
		"encodeTo must not touch bytes beyond the header prefix")
}

func TestHeaderClone(t *testing.T) {
	assert := assert.New(t)

	h := &header{n: 2}
	h.block[0] = 1
	c := h.clone()
	c.n = 9
	c.block[0] = 42

	assert.Equal(int32(2), h.n, "mutating the clone must not affect the original")
	assert.Equal(int32(1), h.block[0])
}

func TestHeaderEncodeRejectsWrongSize(t *testing.T) {
	assert := assert.New(t)
	h := &header{}
	assert.Panics(func() { h.encodeTo(make([]byte, common.BSIZE-1)) })
	assert.Panics(func() { h.decodeFrom(make([]byte, common.BSIZE+1)) })
}
