package main

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/blockwal/fswal/bcache"
	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/disk"
	"github.com/blockwal/fswal/internal/config"
	"github.com/blockwal/fswal/internal/metrics"
	"github.com/blockwal/fswal/super"
	"github.com/blockwal/fswal/wal"

	"github.com/prometheus/client_golang/prometheus"
)

func logrusLevel(s string) (logrus.Level, error) {
	if s == "" {
		return logrus.InfoLevel, nil
	}
	return logrus.ParseLevel(s)
}

// superblockAt is the fixed block holding the encoded super.Block; the log
// region itself starts at cfg.LogStart, conventionally block 1.
const superblockAt common.Bnum = 0

// loadOrFormatSuper reads the superblock from block 0, formatting it from
// cfg on first use (an all-zero block decodes to Size 0, which is never a
// valid geometry).
func loadOrFormatSuper(dev disk.Disk, cfg *config.Config) (super.Block, error) {
	raw, err := dev.Read(superblockAt)
	if err != nil {
		return super.Block{}, fmt.Errorf("walctl: read superblock: %w", err)
	}
	sb := super.Decode(raw)
	if sb.Size != 0 {
		return sb, nil
	}

	sb = super.Block{
		Size:      common.Bnum(cfg.NumBlocks),
		LogStart_: common.Bnum(cfg.LogStart),
		NLog_:     common.Bnum(cfg.LogSize),
	}
	if err := dev.Write(superblockAt, super.Encode(sb)); err != nil {
		return super.Block{}, fmt.Errorf("walctl: write superblock: %w", err)
	}
	return sb, nil
}

// openLog opens (creating if necessary) the disk image named by cfg, reads
// or formats its superblock, wraps the device in a buffer cache, and runs
// log recovery, returning everything a subcommand needs to drive
// transactions.
func openLog(cfg *config.Config) (disk.Disk, *bcache.Cache, *wal.Log, error) {
	dev, err := disk.NewFileDisk(cfg.DiskPath, common.Bnum(cfg.NumBlocks))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("walctl: open disk: %w", err)
	}

	sb, err := loadOrFormatSuper(dev, cfg)
	if err != nil {
		dev.Close()
		return nil, nil, nil, err
	}

	cache := bcache.NewCache(dev, cfg.CacheSlots)
	l := wal.Init(dev, sb, cache)
	// Subcommands that care about metrics (bench) overwrite l.Metrics
	// with a registry they control; a private one here just keeps every
	// call site nil-safety-free without forcing every subcommand to set
	// one up.
	l.Metrics = metrics.NewSet(prometheus.NewRegistry())

	return dev, cache, l, nil
}
