// Package bcache is a reference buffer cache satisfying the narrow
// interface the log requires of its buffer cache collaborator: bread,
// bwrite, brelse, bpin, bunpin. It exists so the log can be compiled,
// tested, and demoed without a full filesystem above it.
//
// Pinning suppresses eviction without suppressing read/write access: a
// pinned slot can still be looked up and its data read or written, it just
// cannot be repurposed for a different block number until unpinned. This
// mirrors the cranedb buffer manager's Pin/Unpin-with-cond-wait shape and
// the general refcount-gates-eviction idea behind any pinned buffer pool.
package bcache

import (
	"fmt"
	"sync"

	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/disk"
	"github.com/blockwal/fswal/internal/xlog"
)

// Buf is one cached, possibly-dirty copy of a disk block.
type Buf struct {
	Blockno common.Bnum
	Data    []byte

	lock     *slotLock
	valid    bool // has Data actually been loaded from disk?
	pinCount int
	refCount int // callers between Get and Release; guarded by Cache.mu
}

// Cache is a fixed-size pool of Bufs, keyed by block number.
type Cache struct {
	dev disk.Disk

	mu    sync.Mutex
	cond  *sync.Cond
	slots []*Buf
	index map[common.Bnum]*Buf
}

// NewCache creates a cache of nslots buffers backed by dev. nslots must be
// large enough to hold every block a single commit group can pin
// concurrently (common.LOGSIZE) plus whatever the caller's own working set
// needs; the cache does not grow.
func NewCache(dev disk.Disk, nslots int) *Cache {
	if nslots <= 0 {
		panic("bcache: nslots must be positive")
	}
	c := &Cache{
		dev:   dev,
		slots: make([]*Buf, nslots),
		index: make(map[common.Bnum]*Buf, nslots),
	}
	c.cond = sync.NewCond(&c.mu)
	for i := range c.slots {
		c.slots[i] = &Buf{lock: newSlotLock()}
	}
	return c
}

// Get implements bread: returns the buffer for blockno, locked and with a
// cache-held reference, loading it from disk on first touch. Blocks if
// every slot is pinned or referenced and blockno is not already cached.
func (c *Cache) Get(blockno common.Bnum) *Buf {
	c.mu.Lock()
	buf := c.findOrEvict(blockno)
	c.mu.Unlock()

	buf.lock.acquire()
	if !buf.valid {
		blk, err := c.dev.Read(blockno)
		if err != nil {
			buf.lock.release()
			panic(fmt.Sprintf("bcache: read block %d: %v", blockno, err))
		}
		buf.Data = blk
		buf.valid = true
	}
	return buf
}

// findOrEvict returns the slot for blockno, taking a reference on it and
// assigning it a slot that is neither pinned nor referenced if not already
// cached. Caller holds c.mu.
func (c *Cache) findOrEvict(blockno common.Bnum) *Buf {
	for {
		if buf, ok := c.index[blockno]; ok {
			buf.refCount++
			return buf
		}
		for _, slot := range c.slots {
			if slot.pinCount == 0 && slot.refCount == 0 {
				if slot.valid {
					delete(c.index, slot.Blockno)
				}
				slot.Blockno = blockno
				slot.valid = false
				slot.refCount = 1
				c.index[blockno] = slot
				return slot
			}
		}
		logger.Debugf("bcache: no free slot for %d, waiting on unpin", blockno)
		c.cond.Wait()
	}
}

// Release implements brelse: unlocks buf and drops the reference taken by
// Get, waking anyone waiting for a free slot once no caller holds it. It
// does not affect the pin count or evict anything.
func (c *Cache) Release(buf *Buf) {
	buf.lock.release()
	c.mu.Lock()
	buf.refCount--
	if buf.refCount == 0 {
		c.cond.Broadcast()
	}
	c.mu.Unlock()
}

// WriteThrough implements bwrite: synchronously writes buf.Data to its
// block number. Caller must hold buf's lock (i.e. have it from Get).
func (c *Cache) WriteThrough(buf *Buf) error {
	return c.dev.Write(buf.Blockno, buf.Data)
}

// Pin implements bpin: increments the eviction-suppression count for buf.
func (c *Cache) Pin(buf *Buf) {
	c.mu.Lock()
	buf.pinCount++
	c.mu.Unlock()
}

// Unpin implements bunpin: decrements the eviction-suppression count,
// waking anyone waiting for a free slot once it reaches zero.
func (c *Cache) Unpin(buf *Buf) {
	c.mu.Lock()
	if buf.pinCount == 0 {
		c.mu.Unlock()
		panic("bcache: unpin of a buffer with zero pin count")
	}
	buf.pinCount--
	if buf.pinCount == 0 {
		c.cond.Broadcast()
	}
	c.mu.Unlock()
}

// logger is the shared debug logger for the package.
var logger = xlog.WithFields(map[string]interface{}{"component": "bcache"})
