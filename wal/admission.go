package wal

import "github.com/blockwal/fswal/common"

// Begin admits a transaction, blocking until log capacity is reserved for
// it. Callers must pair each Begin with exactly one End, and may log at
// most common.MAXOPBLOCKS distinct blocks in between.
//
// The admission condition charges (outstanding+1)*MAXOPBLOCKS pessimistically
// against the log's remaining space, so that once admitted, LogWrite never
// needs to block or fail for capacity. The comparison is strictly '>', not
// '>=', matching xv6's begin_op exactly.
func (l *Log) Begin() {
	l.mu.Lock()
	defer l.mu.Unlock()
	for {
		if l.committing {
			l.Metrics.IncBeginBlocked()
			l.cond.Wait()
			continue
		}
		if uint64(l.lh.n)+(l.outstanding+1)*common.MAXOPBLOCKS > common.LOGSIZE {
			l.Metrics.IncBeginBlocked()
			l.cond.Wait()
			continue
		}
		l.outstanding++
		return
	}
}

// End releases this caller's admission. If this was the last outstanding
// transaction, End drives the commit itself — without holding mu, since
// commit performs disk I/O and may suspend — then clears committing and
// wakes every sleeper.
//
// Deferring commit to the last End to run means a commit's logged block set
// is always exactly the union of completed transactions' writes; it never
// observes a transaction mid-flight.
func (l *Log) End() {
	l.mu.Lock()
	if l.committing {
		l.mu.Unlock()
		fatal("end called while a commit is already in progress", nil)
	}
	if l.outstanding == 0 {
		l.mu.Unlock()
		fatal("end called with no outstanding transaction", nil)
	}
	l.outstanding--

	doCommit := false
	if l.outstanding == 0 {
		doCommit = true
		l.committing = true
	} else {
		// Releasing this transaction's reservation may have freed
		// enough space for a sleeping Begin to proceed.
		l.cond.Broadcast()
	}
	l.mu.Unlock()

	if !doCommit {
		return
	}

	l.commit()

	l.mu.Lock()
	l.committing = false
	l.cond.Broadcast()
	l.mu.Unlock()
}
