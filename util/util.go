// Package util holds small helpers shared by the log, the buffer cache, and
// the block device. Debug output is gated by level and routed through the
// structured logger in internal/xlog instead of stdlib log.
package util

import (
	"math"

	"github.com/blockwal/fswal/internal/xlog"
)

// DPrintf logs a debug-level, printf-style trace message. It exists as a
// thin wrapper (rather than calling xlog.L.Debugf directly at every call
// site) so call sites read the same whether the underlying logger changes.
func DPrintf(format string, args ...interface{}) {
	xlog.L.Debugf(format, args...)
}

// CloneByteSlice returns a fresh copy of b, used whenever a caller must not
// be able to mutate a buffer still owned by the cache or the log.
func CloneByteSlice(b []byte) []byte {
	c := make([]byte, len(b))
	copy(c, b)
	return c
}

// SumOverflows reports whether a+b overflows a uint64.
func SumOverflows(a, b uint64) bool {
	return a > math.MaxUint64-b
}

// RoundUp returns n divided by sz, rounded up: the number of sz-sized units
// needed to hold n.
func RoundUp(n, sz uint64) uint64 {
	return (n + sz - 1) / sz
}

// Min returns the smaller of n and m.
func Min(n, m uint64) uint64 {
	if n < m {
		return n
	}
	return m
}
