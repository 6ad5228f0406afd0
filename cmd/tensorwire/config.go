package main

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the CLI configuration, loadable from a TOML file.
// Flags override file values.
type Config struct {
	Addr        string `toml:"addr"`         // peer address (send) or listen address (recv)
	MetricsAddr string `toml:"metrics_addr"` // if set, recv serves /metrics here
	Compression string `toml:"compression"`  // "", "noop", "gzip", "zstd", "snappy"
	DType       string `toml:"dtype"`        // element type for generated tensors
	Shape       []int  `toml:"shape"`        // shape of generated tensors
	Count       int    `toml:"count"`        // tensors per message
	Workers     int    `toml:"workers"`      // server worker pool size
	Verbose     bool   `toml:"verbose"`
}

func defaultConfig() Config {
	return Config{
		Addr:  "127.0.0.1:7077",
		DType: "float32",
		Shape: []int{64, 64},
		Count: 1,
	}
}

func loadConfig(path string) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // config path comes from the operator
	if err != nil {
		return cfg, fmt.Errorf("reading config: %w", err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}
