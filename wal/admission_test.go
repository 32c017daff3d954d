package wal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/blockwal/fswal/bcache"
	"github.com/blockwal/fswal/disk"
)

type AdmissionSuite struct {
	suite.Suite

	dev   disk.Disk
	cache *bcache.Cache
	l     *Log
}

func (s *AdmissionSuite) SetupTest() {
	s.dev = disk.NewMemDisk(testNumBlocks)
	s.cache = bcache.NewCache(s.dev, testLogSize+4)
	s.l = Init(s.dev, testSuper(), s.cache)
}

func TestAdmission(t *testing.T) {
	suite.Run(t, new(AdmissionSuite))
}

func (s *AdmissionSuite) TestEndWithoutBeginIsFatal() {
	s.Panics(func() { s.l.End() })
}

func (s *AdmissionSuite) TestDoubleEndIsFatal() {
	s.l.Begin()
	s.l.End()
	s.Panics(func() { s.l.End() })
}

// TestBeginBlocksWhenLogIsFull admits transactions until the capacity
// reservation formula refuses a further one, then checks that ending an
// outstanding transaction (which frees its reservation) unblocks it.
func (s *AdmissionSuite) TestBeginBlocksWhenLogIsFull() {
	// With MAXOPBLOCKS charged per outstanding transaction, only a few
	// can be admitted before (n + (outstanding+1)*MAXOPBLOCKS) exceeds
	// LOGSIZE.
	admitted := 0
	var waiting chan struct{}
	for {
		done := make(chan struct{})
		go func() {
			s.l.Begin()
			close(done)
		}()
		select {
		case <-done:
			admitted++
		case <-time.After(50 * time.Millisecond):
			waiting = done
			goto blocked
		}
	}
blocked:
	s.Greater(admitted, 0, "at least one transaction should be admitted")

	s.l.End()
	select {
	case <-waiting:
	case <-time.After(time.Second):
		s.Fail("the refused Begin should proceed once a reservation is freed")
	}

	// admitted-1 of the first batch remain, plus the late admission.
	for i := 0; i < admitted; i++ {
		s.l.End()
	}
}
