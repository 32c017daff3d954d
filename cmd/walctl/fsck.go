package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockwal/fswal/internal/config"
)

func newFsckCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fsck [path]",
		Short: "Open a disk image, forcing log recovery, and report whether it converged",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New(v)
			if len(args) == 1 {
				cfg.DiskPath = args[0]
			}

			dev, _, _, err := openLog(cfg)
			if err != nil {
				return fmt.Errorf("fsck: recovery failed: %w", err)
			}
			defer dev.Close()

			fmt.Printf("walctl fsck: %s: recovered cleanly, log region [%d, %d)\n",
				cfg.DiskPath, cfg.LogStart, cfg.LogStart+cfg.LogSize)
			return nil
		},
	}
	return cmd
}
