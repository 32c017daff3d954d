// Package wal implements a block-level write-ahead log: admission control
// for concurrent transactions, the commit protocol with its precise
// disk-write ordering, and crash recovery.
//
// The algorithm follows xv6's kernel/log.c line for line. The shape is
// Go idiom: a struct with an explicit mutex and condition variable
// standing in for the C source's spinlock-plus-sleep-channel, constructed
// once via an Init-style constructor and passed around rather than
// referenced as a package global.
package wal

import (
	"github.com/blockwal/fswal/bcache"
	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/disk"
	"github.com/blockwal/fswal/internal/metrics"
	"github.com/blockwal/fswal/internal/xlog"
	"github.com/blockwal/fswal/super"
	"github.com/blockwal/fswal/util"

	"sync"
)

// Log is the process-wide write-ahead log state. dev, start, and size are
// immutable after Init; lh, outstanding, and committing are guarded by mu.
// cond is the log's single wait channel, shared by admission-waiters and
// the commit-done wakeup: both must be woken by a broadcast, not a single
// signal, since they're distinct waiter populations sharing one condition
// variable.
type Log struct {
	dev   disk.Disk
	start common.Bnum
	size  common.Bnum

	mu          sync.Mutex
	cond        *sync.Cond
	lh          *header
	outstanding uint64
	committing  bool

	cache *bcache.Cache

	// Metrics is optional observability wiring (internal/metrics.Set); a
	// nil value is always safe and turns every metrics call into a no-op.
	Metrics *metrics.Set
}

// Init loads the log region's geometry from sb, initializes the lock, and
// runs recovery exactly once before returning a Log ready to accept
// Begin/End/LogWrite calls. cache is the buffer cache the log will pin
// logged blocks in and read home/log-slot data through.
//
// Any I/O error during recovery is fatal: the filesystem cannot safely
// mount on top of a log that cannot be read.
func Init(dev disk.Disk, sb super.View, cache *bcache.Cache) *Log {
	l := &Log{
		dev:   dev,
		start: sb.LogStart(),
		size:  sb.NLog(),
		lh:    &header{},
		cache: cache,
	}
	l.cond = sync.NewCond(&l.mu)

	if err := checkGeometry(dev, l.start, l.size); err != nil {
		fatal("init: bad log geometry", err)
	}

	xlog.L.WithFields(map[string]interface{}{
		"start": l.start,
		"size":  l.size,
	}).Info("wal: initializing")

	l.recover()
	return l
}

// checkGeometry verifies the log region actually fits on dev and that the
// header has somewhere to live (block 0 of the region) plus at least one
// log slot (blocks 1..size-1).
func checkGeometry(dev disk.Disk, start, size common.Bnum) error {
	devSize, err := dev.Size()
	if err != nil {
		return err
	}
	if size < 2 {
		fatal("log region must have a header block and at least one slot", nil)
	}
	if start+size > devSize {
		fatal("log region does not fit on device", nil)
	}
	return nil
}

// headerBlock returns the absolute block number of the region's header.
func (l *Log) headerBlock() common.Bnum {
	return l.start
}

// logSlot returns the absolute block number of slot index i (0-based among
// the lh.block entries, landing at start+i+1: the header occupies start).
func (l *Log) logSlot(i int) common.Bnum {
	return l.start + common.Bnum(i) + 1
}

func (l *Log) debugf(format string, args ...interface{}) {
	util.DPrintf("wal: "+format, args...)
}
