package wal

import (
	"github.com/blockwal/fswal/bcache"
	"github.com/blockwal/fswal/common"
)

// LogWrite records that buf must be installed to its home location at the
// next commit, absorbing repeat writes to the same block within the
// current transaction group into a single log slot. Grounded on xv6's
// log_write.
//
// The caller must already hold admission (a completed Begin with no
// matching End yet) and must hold buf's lock (as returned by the buffer
// cache's Get). LogWrite does not write through to disk itself; the block
// becomes durable only when the group commits.
func (l *Log) LogWrite(buf *bcache.Buf) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.lh.n >= common.LOGSIZE || common.Bnum(l.lh.n) >= l.size-1 {
		fatal("transaction is too big for the log", nil)
	}
	if l.outstanding < 1 {
		fatal("log_write called with no outstanding transaction", nil)
	}

	for i := 0; i < int(l.lh.n); i++ {
		if common.Bnum(l.lh.block[i]) == buf.Blockno {
			// Absorption: this block is already enlisted for the
			// current group, so the in-cache copy (already mutated
			// by the caller) will be picked up verbatim at commit.
			l.debugf("log_write: absorbing block %d at slot %d", buf.Blockno, i)
			return
		}
	}

	slot := int(l.lh.n)
	l.lh.block[slot] = int32(buf.Blockno)
	l.lh.n++
	l.cache.Pin(buf)
	l.Metrics.AddBlocksLogged(1)
	l.debugf("log_write: enlisting block %d at slot %d (n=%d)", buf.Blockno, slot, l.lh.n)
}
