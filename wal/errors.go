package wal

import (
	"github.com/pkg/errors"

	"github.com/blockwal/fswal/internal/xlog"
)

// fatal logs msg (wrapping err, if any, with a stack trace via
// github.com/pkg/errors for diagnosability) and then panics. Invariant
// violations and durability failures both terminate the process; callers
// never observe an error return from the log's public API.
func fatal(msg string, err error) {
	if err != nil {
		wrapped := errors.Wrap(err, msg)
		xlog.L.WithError(wrapped).Error("wal: fatal")
		panic(wrapped)
	}
	xlog.L.Error("wal: fatal: " + msg)
	panic("wal: " + msg)
}
