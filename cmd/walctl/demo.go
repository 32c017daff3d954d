package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/internal/config"
)

func newDemoCmd(v *viper.Viper) *cobra.Command {
	var txns int
	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a handful of synthetic transactions against a disk image and print the result",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New(v)

			dev, cache, l, err := openLog(cfg)
			if err != nil {
				return err
			}
			defer dev.Close()

			for i := 0; i < txns; i++ {
				l.Begin()
				blockno := cfg.LogStart + cfg.LogSize + uint64(i%4)
				buf := cache.Get(common.Bnum(blockno))
				buf.Data[0] = byte(i)
				l.LogWrite(buf)
				cache.Release(buf)
				l.End()
			}

			fmt.Printf("walctl demo: committed %d transactions against %s\n", txns, cfg.DiskPath)
			return nil
		},
	}
	cmd.Flags().IntVar(&txns, "txns", 8, "number of transactions to run")
	return cmd
}
