package disk

import (
	"errors"
	"sync"

	"github.com/blockwal/fswal/common"
)

// ErrInjected is returned by Faulty once its write budget is exhausted,
// standing in for a crash mid-commit.
var ErrInjected = errors.New("disk: injected fault")

// Faulty wraps a Disk and can be told to start failing writes after a fixed
// number have succeeded, letting tests simulate a crash at any point in the
// commit protocol's sequence of synchronous writes. The pattern is the
// general fake-the-dependency-at-an-interface-boundary approach: callers
// reach storage only through the Disk interface, so tests can substitute
// a deliberately flaky implementation.
type Faulty struct {
	Disk

	mu          sync.Mutex
	writesLeft  int
	unlimited   bool
	writeLog    []common.Bnum
	recordWrite bool
}

// NewFaulty wraps d so that, after allowedWrites successful writes, every
// subsequent Write returns ErrInjected instead of reaching d.
func NewFaulty(d Disk, allowedWrites int) *Faulty {
	return &Faulty{Disk: d, writesLeft: allowedWrites}
}

// NewFaultyUnlimited wraps d with fault injection disabled (every write
// passes through); used to record a write trace without truncating it.
func NewFaultyUnlimited(d Disk) *Faulty {
	return &Faulty{Disk: d, unlimited: true}
}

// Writes returns the block numbers of every Write call made while trace
// recording was enabled via RecordWrites, in order, including writes that
// failed with ErrInjected and never reached the wrapped disk.
func (f *Faulty) Writes() []common.Bnum {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]common.Bnum, len(f.writeLog))
	copy(out, f.writeLog)
	return out
}

// RecordWrites turns on write-trace recording, used by tests that want to
// crash after the Nth write rather than after a fixed count.
func (f *Faulty) RecordWrites(on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.recordWrite = on
}

// SetBudget re-arms fault injection: the next allowedWrites writes succeed,
// and every write after that fails, regardless of how many writes already
// passed through f.
func (f *Faulty) SetBudget(allowedWrites int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.unlimited = false
	f.writesLeft = allowedWrites
}

func (f *Faulty) Write(a common.Bnum, v Block) error {
	f.mu.Lock()
	if f.recordWrite {
		f.writeLog = append(f.writeLog, a)
	}
	if !f.unlimited {
		if f.writesLeft <= 0 {
			f.mu.Unlock()
			return ErrInjected
		}
		f.writesLeft--
	}
	f.mu.Unlock()
	return f.Disk.Write(a, v)
}
