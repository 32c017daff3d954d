package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/blockwal/fswal/common"
	"github.com/blockwal/fswal/internal/config"
	"github.com/blockwal/fswal/internal/metrics"
	"github.com/blockwal/fswal/internal/xlog"
)

func newBenchCmd(v *viper.Viper) *cobra.Command {
	var txns int
	var writers int

	cmd := &cobra.Command{
		Use:   "bench [path]",
		Short: "Drive concurrent transactions against a disk image and report commit throughput",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.New(v)
			if len(args) == 1 {
				cfg.DiskPath = args[0]
			}

			runID := uuid.NewString()
			log := xlog.WithFields(map[string]interface{}{"run_id": runID})

			dev, cache, l, err := openLog(cfg)
			if err != nil {
				return err
			}
			defer dev.Close()

			reg := prometheus.NewRegistry()
			l.Metrics = metrics.NewSet(reg)

			var stopServer func()
			if cfg.MetricsAddr != "" {
				stopServer = serveMetrics(cfg.MetricsAddr, reg, log)
				defer stopServer()
			}

			log.Infof("bench: starting %d transactions across %d writers", txns, writers)
			start := time.Now()

			work := make(chan int, txns)
			for i := 0; i < txns; i++ {
				work <- i
			}
			close(work)

			done := make(chan struct{}, writers)
			for w := 0; w < writers; w++ {
				go func() {
					for i := range work {
						l.Begin()
						blockno := cfg.LogStart + cfg.LogSize + uint64(i%int(cfg.LogSize-1))
						buf := cache.Get(common.Bnum(blockno))
						buf.Data[0]++
						l.LogWrite(buf)
						cache.Release(buf)
						l.End()
					}
					done <- struct{}{}
				}()
			}
			for w := 0; w < writers; w++ {
				<-done
			}

			elapsed := time.Since(start)
			fmt.Printf("walctl bench [%s]: %d transactions in %s (%.1f txn/s)\n",
				runID, txns, elapsed, float64(txns)/elapsed.Seconds())
			return nil
		},
	}
	cmd.Flags().IntVar(&txns, "txns", 1000, "number of transactions to run")
	cmd.Flags().IntVar(&writers, "writers", 4, "number of concurrent writer goroutines")
	return cmd
}

// serveMetrics starts a best-effort Prometheus endpoint for the duration of
// the benchmark and returns a function that shuts it down.
func serveMetrics(addr string, reg *prometheus.Registry, log *logrus.Entry) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.WithError(err).Error("bench: metrics server exited")
		}
	}()

	return func() { _ = srv.Close() }
}
