package bcache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/disk"
)

func newTestCache(nslots int) *Cache {
	dev := disk.NewMemDisk(100)
	return NewCache(dev, nslots)
}

func TestGetLoadsFromDisk(t *testing.T) {
	assert := assert.New(t)
	c := newTestCache(4)

	buf := c.Get(5)
	assert.Equal(common.Bnum(5), buf.Blockno)
	assert.Equal(common.BSIZE, len(buf.Data))
	c.Release(buf)
}

func TestWriteThroughPersists(t *testing.T) {
	assert := assert.New(t)
	dev := disk.NewMemDisk(100)
	c := NewCache(dev, 4)

	buf := c.Get(1)
	buf.Data[0] = 0x42
	assert.NoError(c.WriteThrough(buf))
	c.Release(buf)

	// A fresh cache over the same device should see the write, proving it
	// reached the device rather than just the in-memory buffer.
	c2 := NewCache(dev, 4)
	buf2 := c2.Get(1)
	assert.Equal(byte(0x42), buf2.Data[0])
	c2.Release(buf2)
}

func TestPinPreventsEviction(t *testing.T) {
	c := newTestCache(1)

	buf := c.Get(1)
	c.Pin(buf)
	c.Release(buf)

	done := make(chan struct{})
	go func() {
		// Only slot is pinned on block 1; a different block cannot be
		// assigned a slot until block 1 is unpinned.
		other := c.Get(2)
		c.Release(other)
		close(done)
	}()

	select {
	case <-done:
		t.Fatal("expected Get(2) to block while the only slot is pinned")
	case <-time.After(50 * time.Millisecond):
	}

	buf = c.Get(1)
	c.Unpin(buf)
	c.Release(buf)

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Get(2) should have proceeded once the slot was unpinned")
	}
}

func TestUnpinOfZeroPinCountPanics(t *testing.T) {
	assert := assert.New(t)
	c := newTestCache(1)
	buf := c.Get(1)
	c.Release(buf)

	assert.Panics(func() { c.Unpin(buf) })
}

func TestNewCacheRejectsNonPositiveSlots(t *testing.T) {
	assert := assert.New(t)
	assert.Panics(func() { NewCache(disk.NewMemDisk(10), 0) })
}
