package wal

import "github.com/blockwal/fswal/common"

// readHead loads the on-disk header into lh, via the buffer cache so it
// goes through the same bread/brelse contract as any other block. Caller
// holds mu or is running before concurrent access is possible (recovery,
// at Init time).
func (l *Log) readHead() {
	buf := l.cache.Get(l.headerBlock())
	l.lh.decodeFrom(buf.Data)
	l.cache.Release(buf)
}

// writeHead durably writes lh to the header block. This is the commit
// point when lh.n > 0, and the point at which the log becomes logically
// empty when lh.n == 0.
func (l *Log) writeHead() {
	buf := l.cache.Get(l.headerBlock())
	l.lh.encodeTo(buf.Data)
	if err := l.cache.WriteThrough(buf); err != nil {
		l.cache.Release(buf)
		fatal("write_head failed", err)
	}
	l.cache.Release(buf)
}

// recover runs unconditionally at Init, before the log accepts any
// operation. If the previous boot crashed after writing a committed
// header (n > 0), this completes that commit by installing every listed
// block to its home location; if the header was already clear (n == 0),
// this is a no-op beyond the final header write. Buffers touched
// here were not pinned by the previous boot, so pin counts are never
// adjusted during recovery (unlike the symmetric step in commit's Phase 3).
func (l *Log) recover() {
	l.readHead()
	n := int(l.lh.n)
	l.debugf("recovery: header has %d pending blocks", n)

	for tail := 0; tail < n; tail++ {
		l.installOne(tail, false)
	}

	l.lh.n = 0
	l.writeHead()
}

// installOne copies log slot `tail` to its recorded home block and writes
// it durably. When unpin is true (the commit-time call, not recovery) it
// also drops the pin taken when the block was first enlisted via LogWrite.
func (l *Log) installOne(tail int, unpin bool) {
	homeBlk := common.Bnum(l.lh.block[tail])

	logBuf := l.cache.Get(l.logSlot(tail))
	homeBuf := l.cache.Get(homeBlk)
	copy(homeBuf.Data, logBuf.Data)
	l.cache.Release(logBuf)

	if err := l.cache.WriteThrough(homeBuf); err != nil {
		l.cache.Release(homeBuf)
		fatal("install_trans failed", err)
	}
	if unpin {
		l.cache.Unpin(homeBuf)
	}
	l.cache.Release(homeBuf)
}
