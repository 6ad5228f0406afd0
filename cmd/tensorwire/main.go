// Package main provides the tensorwire CLI: a small sender/receiver pair for
// exercising the tensor wire codec over TCP.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/born-ml/tensorwire/compress"
	"github.com/born-ml/tensorwire/internal/ipc"
	"github.com/born-ml/tensorwire/tensor"
)

const version = "v0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "version":
		fmt.Printf("tensorwire %s\n", version)
	case "recv":
		run(os.Args[2:], runRecv)
	case "send":
		run(os.Args[2:], runSend)
	case "bench":
		run(os.Args[2:], runBench)
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("tensorwire - tensor wire codec over TCP")
	fmt.Printf("Version: %s\n\n", version)
	fmt.Println("Commands:")
	fmt.Println("  version    Show version")
	fmt.Println("  recv       Listen and log incoming tensors")
	fmt.Println("  send       Send generated tensors to a peer")
	fmt.Println("  bench      Send tensors in a loop and report throughput")
	fmt.Println("\nAll commands accept -config <file.toml> plus flag overrides.")
}

func run(args []string, cmd func(cfg Config, log *zap.Logger) error) {
	fs := flag.NewFlagSet("tensorwire", flag.ExitOnError)
	configPath := fs.String("config", "", "path to TOML config")
	addr := fs.String("addr", "", "override address")
	compression := fs.String("compression", "", "override compression algorithm")
	count := fs.Int("count", 0, "override tensors per message")
	verbose := fs.Bool("v", false, "debug logging")
	_ = fs.Parse(args)

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if *addr != "" {
		cfg.Addr = *addr
	}
	if *compression != "" {
		cfg.Compression = *compression
	}
	if *count > 0 {
		cfg.Count = *count
	}
	if *verbose {
		cfg.Verbose = true
	}

	logCfg := zap.NewProductionConfig()
	if cfg.Verbose {
		logCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	log, err := logCfg.Build()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	if err := cmd(cfg, log); err != nil {
		log.Fatal("command failed", zap.Error(err))
	}
}

func runRecv(cfg Config, log *zap.Logger) error {
	if cfg.MetricsAddr != "" {
		go func() {
			http.Handle("/metrics", promhttp.Handler())
			if err := http.ListenAndServe(cfg.MetricsAddr, nil); err != nil { //nolint:gosec // operator-facing endpoint
				log.Warn("metrics endpoint failed", zap.Error(err))
			}
		}()
	}

	srv, err := ipc.NewServer(cfg.Addr, cfg.Workers, func(m ipc.Message) {
		for i, t := range m.Tensors {
			log.Info("tensor received",
				zap.Stringer("message", m.ID),
				zap.Int("index", i),
				zap.String("dtype", t.DType().String()),
				zap.String("shape", t.Shape().String()),
				zap.Int("bytes", t.ByteSize()))
		}
	}, log)
	if err != nil {
		return err
	}
	defer srv.Close()
	return srv.Serve()
}

func runSend(cfg Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := ipc.Dial(ctx, cfg.Addr, log)
	if err != nil {
		return err
	}
	defer client.Close()

	msg, err := buildMessage(cfg)
	if err != nil {
		return err
	}
	return client.Send(msg)
}

func runBench(cfg Config, log *zap.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	client, err := ipc.Dial(ctx, cfg.Addr, log)
	if err != nil {
		return err
	}
	defer client.Close()

	const rounds = 100
	var bytes int
	start := time.Now()
	for i := 0; i < rounds; i++ {
		msg, err := buildMessage(cfg)
		if err != nil {
			return err
		}
		if err := client.Send(msg); err != nil {
			return err
		}
		for _, t := range msg.Tensors {
			bytes += t.ByteSize()
		}
	}
	elapsed := time.Since(start)
	log.Info("bench complete",
		zap.Int("rounds", rounds),
		zap.Duration("elapsed", elapsed),
		zap.Float64("mb_per_sec", float64(bytes)/1e6/elapsed.Seconds()))
	return nil
}

// buildMessage generates cfg.Count random tensors, compressing each one when
// a compression algorithm is configured.
func buildMessage(cfg Config) (ipc.Message, error) {
	tensors := make([]*tensor.RawTensor, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		t, err := randomTensor(cfg.DType, tensor.Shape(cfg.Shape))
		if err != nil {
			return ipc.Message{}, err
		}
		if cfg.Compression != "" {
			c, ok := compress.ByName(cfg.Compression)
			if !ok {
				return ipc.Message{}, fmt.Errorf("unknown compression algorithm %q", cfg.Compression)
			}
			if t, err = c.Compress(t); err != nil {
				return ipc.Message{}, err
			}
		}
		tensors = append(tensors, t)
	}
	return ipc.NewMessage(tensors...), nil
}

func randomTensor(dtype string, shape tensor.Shape) (*tensor.RawTensor, error) {
	n := shape.NumElements()
	switch dtype {
	case "float32":
		data := make([]float32, n)
		for i := range data {
			data[i] = rand.Float32() //nolint:gosec // synthetic benchmark data
		}
		return tensor.FromSlice(data, shape)
	case "float64":
		data := make([]float64, n)
		for i := range data {
			data[i] = rand.Float64() //nolint:gosec // synthetic benchmark data
		}
		return tensor.FromSlice(data, shape)
	case "int32":
		data := make([]int32, n)
		for i := range data {
			data[i] = rand.Int31() //nolint:gosec // synthetic benchmark data
		}
		return tensor.FromSlice(data, shape)
	case "int64":
		data := make([]int64, n)
		for i := range data {
			data[i] = rand.Int63() //nolint:gosec // synthetic benchmark data
		}
		return tensor.FromSlice(data, shape)
	default:
		return nil, fmt.Errorf("unsupported dtype %q", dtype)
	}
}
