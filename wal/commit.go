package wal

import (
	"time"

	"github.com/blockwal/fswal/common"
)

// commit runs the four-phase write-ahead commit protocol over every block
// enlisted since the last commit. It is called by End, exactly once per
// group, with no other transaction able to start (committing is already
// true) and no other commit able to run concurrently. Grounded on xv6's
// commit/write_log/install_trans, called from end_op.
//
// Phase ordering is the correctness-critical part and must not be
// reordered or interleaved with other disk activity:
//
//  1. write_log:    copy every enlisted block's current cached contents
//                    into its assigned log slot.
//  2. write_head:   durably write the header recording which home blocks
//                    are pending. This is the commit point: once it
//                    returns, the transaction group is committed even if
//                    the process crashes immediately after.
//  3. install_trans: copy each log slot to its home block and write it
//                    durably, then drop the pin taken when the block was
//                    first enlisted.
//  4. clear header:  zero the in-memory header and write it back, marking
//                    the log empty again.
//
// A crash between 1 and 2 loses the group entirely (as if it never ran);
// a crash between 2 and 4 is recovered by re-running phases 3 and 4 from
// the header read back at the next Init.
func (l *Log) commit() {
	l.mu.Lock()
	n := int(l.lh.n)
	l.mu.Unlock()

	if n == 0 {
		return
	}

	start := time.Now()

	l.writeLog(n)
	l.writeHead()
	l.installTrans(n)
	l.clearHeader()

	l.Metrics.IncCommits()
	l.Metrics.ObserveCommitSeconds(time.Since(start).Seconds())
	l.debugf("commit: installed %d blocks", n)
}

// writeLog copies the first n enlisted blocks from the cache into their
// assigned log slots.
func (l *Log) writeLog(n int) {
	for tail := 0; tail < n; tail++ {
		homeBlk := l.lh.block[tail]

		homeBuf := l.cache.Get(common.Bnum(homeBlk))
		logBuf := l.cache.Get(l.logSlot(tail))
		copy(logBuf.Data, homeBuf.Data)
		l.cache.Release(homeBuf)

		if err := l.cache.WriteThrough(logBuf); err != nil {
			l.cache.Release(logBuf)
			fatal("write_log failed", err)
		}
		l.cache.Release(logBuf)
	}
}

// installTrans copies each of the first n log slots to its home block,
// unpinning the home buffer once installed.
func (l *Log) installTrans(n int) {
	for tail := 0; tail < n; tail++ {
		l.installOne(tail, true)
	}
}

// clearHeader marks the log empty in memory and durably records that on
// disk, completing the group.
func (l *Log) clearHeader() {
	l.mu.Lock()
	l.lh.n = 0
	l.mu.Unlock()
	l.writeHead()
}
