package wal

import (
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/blockwal/fswal/bcache"
	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/disk"
	"github.com/blockwal/fswal/super"
)

const (
	testNumBlocks = 100
	testLogStart  = 0
	testLogSize   = 20
	testHomeStart = testLogStart + testLogSize
)

type WalSuite struct {
	suite.Suite

	dev   *disk.Faulty
	cache *bcache.Cache
	l     *Log
}

func (s *WalSuite) SetupTest() {
	mem := disk.NewMemDisk(testNumBlocks)
	s.dev = disk.NewFaultyUnlimited(mem)
	s.cache = bcache.NewCache(s.dev, testLogSize+4)
	s.l = Init(s.dev, testSuper(), s.cache)
}

func testSuper() super.Block {
	return super.Block{Size: testNumBlocks, LogStart_: testLogStart, NLog_: testLogSize}
}

// restart re-opens the log over the same underlying disk, as if the
// process had crashed and a new one just booted and called Init.
func (s *WalSuite) restart() {
	s.cache = bcache.NewCache(s.dev, testLogSize+4)
	s.l = Init(s.dev, testSuper(), s.cache)
}

func mkBlock(b byte) []byte {
	block := make([]byte, common.BSIZE)
	for i := range block {
		block[i] = b
	}
	return block
}

func (s *WalSuite) write(blockno common.Bnum, val byte) {
	buf := s.cache.Get(blockno)
	copy(buf.Data, mkBlock(val))
	s.l.LogWrite(buf)
	s.cache.Release(buf)
}

func (s *WalSuite) read(blockno common.Bnum) []byte {
	buf := s.cache.Get(blockno)
	out := make([]byte, len(buf.Data))
	copy(out, buf.Data)
	s.cache.Release(buf)
	return out
}

func TestWal(t *testing.T) {
	suite.Run(t, new(WalSuite))
}

func (s *WalSuite) TestSingleTxnVisible() {
	s.l.Begin()
	s.write(testHomeStart, 7)
	s.l.End()

	s.Equal(mkBlock(7), s.read(testHomeStart))
}

func (s *WalSuite) TestAbsorption() {
	s.l.Begin()
	s.write(testHomeStart, 1)
	s.write(testHomeStart, 2)
	s.write(testHomeStart, 3)

	s.l.mu.Lock()
	enlisted := s.l.lh.n
	s.l.mu.Unlock()
	s.Equal(int32(1), enlisted, "three writes to one block occupy a single log slot")
	s.l.End()

	s.Equal(mkBlock(3), s.read(testHomeStart),
		"repeated writes to the same block in one transaction collapse to the last")

	s.l.mu.Lock()
	n := s.l.lh.n
	s.l.mu.Unlock()
	s.Equal(int32(0), n, "log should be empty again after commit")
}

func (s *WalSuite) TestGroupCommitAcrossConcurrentTxns() {
	s.l.Begin()
	s.l.Begin()

	s.write(testHomeStart, 9)
	s.l.End() // outstanding still 1, must not commit yet

	s.l.mu.Lock()
	committingMidway := s.l.lh.n
	s.l.mu.Unlock()
	s.Equal(int32(1), committingMidway, "commit deferred until the last End")

	s.write(testHomeStart+1, 10)
	s.l.End() // last writer: drives the commit

	s.Equal(mkBlock(9), s.read(testHomeStart))
	s.Equal(mkBlock(10), s.read(testHomeStart+1))
}

func (s *WalSuite) TestCommittedTxnSurvivesRestart() {
	s.l.Begin()
	s.write(testHomeStart, 5)
	s.write(testHomeStart+1, 6)
	s.l.End()

	s.restart()

	s.Equal(mkBlock(5), s.read(testHomeStart))
	s.Equal(mkBlock(6), s.read(testHomeStart+1))
}

func (s *WalSuite) TestRecoveryIsIdempotent() {
	s.l.Begin()
	s.write(testHomeStart, 5)
	s.l.End()

	s.restart()
	s.restart()
	s.restart()

	s.Equal(mkBlock(5), s.read(testHomeStart))
}

// TestCrashBeforeCommitPointLosesTxn simulates a disk failure during
// write_log, before write_head (the commit point) ever runs: on restart,
// the header is still as it was before the transaction began, so the
// transaction is entirely absent.
func (s *WalSuite) TestCrashBeforeCommitPointLosesTxn() {
	mem := disk.NewMemDisk(testNumBlocks)
	faulty := disk.NewFaultyUnlimited(mem)
	cache := bcache.NewCache(faulty, testLogSize+4)
	l := Init(faulty, testSuper(), cache)
	faulty.SetBudget(0) // fail every write from here on

	l.Begin()
	buf := cache.Get(testHomeStart)
	copy(buf.Data, mkBlock(42))
	l.LogWrite(buf)
	cache.Release(buf)

	s.Panics(func() { l.End() }, "a write failure during commit must be fatal, not silently swallowed")

	// Recovery over the same (still mostly-zero) disk should converge to
	// "transaction never happened": reads come back zeroed.
	cache2 := bcache.NewCache(mem, testLogSize+4)
	l2 := Init(mem, testSuper(), cache2)
	readBuf := cache2.Get(testHomeStart)
	s.Equal(mkBlock(0), readBuf.Data)
	cache2.Release(readBuf)
	_ = l2
}

// TestCrashAfterCommitPointCompletesTxn lets write_head succeed and fails
// only the subsequent install step, then checks that recovery finishes the
// job the first boot started.
func (s *WalSuite) TestCrashAfterCommitPointCompletesTxn() {
	mem := disk.NewMemDisk(testNumBlocks)
	faulty := disk.NewFaultyUnlimited(mem)
	cache := bcache.NewCache(faulty, testLogSize+4)
	l := Init(faulty, testSuper(), cache)

	l.Begin()
	buf := cache.Get(testHomeStart)
	copy(buf.Data, mkBlock(99))
	l.LogWrite(buf)
	cache.Release(buf)

	// write_log (1 write) + write_head (1 write) succeed; everything after
	// that (install_trans's write, clear header's write) fails.
	faulty.SetBudget(2)
	s.Panics(func() { l.End() })

	cache2 := bcache.NewCache(mem, testLogSize+4)
	l2 := Init(mem, testSuper(), cache2)
	readBuf := cache2.Get(testHomeStart)
	s.Equal(mkBlock(99), readBuf.Data,
		"recovery must finish installing a committed but uninstalled transaction")
	cache2.Release(readBuf)
	_ = l2
}
