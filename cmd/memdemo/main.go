// memdemo compares chained memory resources on a deterministic workload and
// shows where an allocator-aware object keeps its data.
package main

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlab/internal/config"
	"github.com/Faultbox/meshlab/internal/logger"
	"github.com/Faultbox/meshlab/internal/workload"
	"github.com/Faultbox/meshlab/pkg/memres"
)

func main() {
	config.ParseFlags()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	switch args[0] {
	case "chain":
		err = cmdChain(cfg)
	case "aware":
		err = cmdAware(cfg)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`memdemo - memory resource demos

Usage:
  memdemo [flags] <command>

Commands:
  chain    Run the same insert/erase workload over heap, pool and monotonic resources
  aware    Store a product in a 128-byte buffer with and without an allocator-aware name

Examples:
  memdemo chain
  memdemo -config demo.yaml aware`)
}

func cmdChain(cfg *config.Config) error {
	churn := workload.ChurnConfig{
		Seed:   cfg.MemDemo.Seed,
		MinOps: cfg.MemDemo.MinOps,
		MaxOps: cfg.MemDemo.MaxOps,
	}

	fmt.Println("performing allocations with the heap resource upstream")
	direct := memres.NewTracking(memres.Heap())
	if err := churnOn(direct, churn); err != nil {
		return err
	}
	fmt.Printf("%s\n\n", direct.Stats())

	fmt.Println("performing allocations with a downstream pool resource")
	poolUp := memres.NewTracking(memres.Heap())
	pool := memres.NewPool(poolUp)
	if err := churnOn(pool, churn); err != nil {
		return err
	}
	fmt.Println(poolUp.Stats())
	pool.Release()
	fmt.Println("releasing the pool resource")
	fmt.Printf("%s\n\n", poolUp.Stats())

	fmt.Println("performing allocations with a downstream monotonic resource")
	monoUp := memres.NewTracking(memres.Heap())
	mono := memres.NewMonotonic(nil, monoUp)
	if err := churnOn(mono, churn); err != nil {
		return err
	}
	fmt.Println(monoUp.Stats())
	chunks := mono.Chunks()
	mono.Release()
	fmt.Println("releasing the monotonic resource")
	fmt.Println(monoUp.Stats())

	logger.Info("chain finished",
		logger.Stats("heap", direct.Stats()),
		logger.Stats("pool", poolUp.Stats()),
		logger.Stats("monotonic", monoUp.Stats()),
		zap.Int("monotonic_chunks", chunks))
	return nil
}

func churnOn(r memres.Resource, cfg workload.ChurnConfig) error {
	done := logger.Timed("workload finished")
	res, err := workload.Churn(r, cfg)
	if err != nil {
		return err
	}
	done(zap.Int("ops", res.Ops), zap.Int("live", res.Live))
	fmt.Println(res)
	return nil
}

func cmdAware(cfg *config.Config) error {
	for _, aware := range []bool{false, true} {
		before, after, inBuffer, err := workload.BufferDemo(cfg.MemDemo.BufferSize, aware)
		if err != nil {
			return fmt.Errorf("aware=%t: %w", aware, err)
		}
		fmt.Printf("#0%s\n", before)
		fmt.Printf("#1%s\n", after)
		if inBuffer {
			fmt.Println("the storage of the name is contained in the buffer")
		} else {
			fmt.Println("the storage of the name is not contained in the buffer")
		}
		logger.Debug("buffer demo", zap.Bool("aware", aware), zap.Bool("in_buffer", inBuffer))
	}
	return nil
}
