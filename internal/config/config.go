// Package config centralizes the settings walctl's subcommands share,
// bound through viper so every value can come from a flag or an environment
// variable (FSWAL_-prefixed), in that precedence order, falling back to the
// flag's default. No config file is read.
package config

import (
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Config holds the device geometry and runtime knobs walctl needs to open
// or format a logged device.
type Config struct {
	DiskPath    string
	NumBlocks   uint64
	LogStart    uint64
	LogSize     uint64
	CacheSlots  int
	LogLevel    string
	MetricsAddr string
}

// New reads bound flags and the environment into a Config. Call
// BindFlags on a command's flag set before calling New so viper has
// something to read.
func New(v *viper.Viper) *Config {
	return &Config{
		DiskPath:    v.GetString("disk"),
		NumBlocks:   v.GetUint64("blocks"),
		LogStart:    v.GetUint64("log-start"),
		LogSize:     v.GetUint64("log-size"),
		CacheSlots:  v.GetInt("cache-slots"),
		LogLevel:    v.GetString("log-level"),
		MetricsAddr: v.GetString("metrics-addr"),
	}
}

// BindFlags registers the shared flag set on fs and binds each flag into
// v, so New can read the effective value regardless of whether it came
// from the command line, the environment, or a default.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) {
	fs.String("disk", "fswal.img", "path to the backing disk image")
	fs.Uint64("blocks", 1024, "total blocks in the backing disk image")
	fs.Uint64("log-start", 1, "first block of the log region")
	fs.Uint64("log-size", 31, "length of the log region in blocks (header + slots)")
	fs.Int("cache-slots", 64, "number of buffer cache slots")
	fs.String("log-level", "info", "log level: debug, info, warn, error")
	fs.String("metrics-addr", "", "address to serve Prometheus metrics on (empty disables)")

	v.SetEnvPrefix("fswal")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	_ = v.BindPFlags(fs)
}
