// Command walctl drives a block-level write-ahead log against a disk
// image: formatting one, replaying its recovery path, or hammering it
// with synthetic transactions to measure commit throughput.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockwal/fswal/internal/config"
	"github.com/blockwal/fswal/internal/xlog"
)

func main() {
	v := viper.New()

	root := &cobra.Command{
		Use:   "walctl",
		Short: "Exercise a block-level write-ahead log against a disk image",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New(v)
			level, err := logrusLevel(cfg.LogLevel)
			if err != nil {
				return err
			}
			xlog.SetLevel(level)
			return nil
		},
	}
	config.BindFlags(v, root.PersistentFlags())

	root.AddCommand(newDemoCmd(v))
	root.AddCommand(newFsckCmd(v))
	root.AddCommand(newBenchCmd(v))

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
