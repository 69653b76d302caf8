// meshsmooth generates noisy unit spheres and smooths triangle meshes with
// the available neighbor-buffer allocation strategies.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/meshlab/internal/config"
	"github.com/Faultbox/meshlab/internal/logger"
	"github.com/Faultbox/meshlab/pkg/memres"
	"github.com/Faultbox/meshlab/pkg/mesh"
	"github.com/Faultbox/meshlab/pkg/smooth"
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
	logger.Sugar.Debugf("Config: %+v", cfg)

	args := config.Args()
	command := "run"
	if len(args) > 0 {
		command, args = args[0], args[1:]
	}

	switch command {
	case "run":
		err = cmdRun(cfg)
	case "info":
		err = cmdInfo(args)
	case "smooth":
		err = cmdSmooth(cfg, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		logger.Error("command failed", zap.String("command", command), zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshsmooth - Laplacian smoothing of triangle meshes

Usage:
  meshsmooth [flags] [command]

Commands:
  run                      Generate a noisy sphere and smooth it with every strategy (default)
  info <file.obj>          Show mesh information
  smooth <in.obj> <out.obj> Smooth a mesh read from disk

Flags:
  -config <file>           Config file (default ./meshlab.yaml)
  -subdivisions <n>        Sphere subdivision level
  -stddev <s>              Standard deviation of the radial noise
  -iterations <n>          Smoothing iterations
  -strategies <list>       Comma-separated strategies: heap, arena
  -upstream <name>         Arena fallback resource: heap, mcache, pool
  -out <dir>               Output directory
  -no-write                Skip writing OBJ files
  -debug                   Debug logging

Examples:
  meshsmooth
  meshsmooth -subdivisions 6 -strategies arena run
  meshsmooth info noisy_sphere.obj
  meshsmooth -iterations 3 smooth in.obj out.obj`)
}

// upstream builds the arena fallback resource named in the config.
func upstream(name string) memres.Resource {
	switch name {
	case config.UpstreamMCache:
		return memres.MCache()
	case config.UpstreamPool:
		return memres.NewPool(memres.Heap())
	default:
		return memres.Heap()
	}
}

func cmdRun(cfg *config.Config) error {
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}

	done := logger.Timed("sphere generated")
	sphere, err := mesh.GenerateSphereWithSeed(cfg.Sphere.Subdivisions, cfg.Sphere.StdDev, cfg.Sphere.Seed)
	if err != nil {
		return err
	}
	done(logger.Mesh(sphere),
		zap.Int("subdivisions", cfg.Sphere.Subdivisions),
		zap.Float64("radius_stddev", mesh.Radius(sphere).StdDev))

	printSummary(sphere)

	if cfg.Output.Write {
		if err := save(cfg.Output.Dir, "noisy_sphere.obj", sphere); err != nil {
			return err
		}
	}

	results := make([]mesh.Mesh, 0, len(kinds))
	for _, kind := range kinds {
		smoothed, err := runStrategy(cfg, sphere, kind)
		if err != nil {
			return err
		}
		results = append(results, smoothed)
	}

	for i := 1; i < len(results); i++ {
		if err := sameVertices(results[0], results[i]); err != nil {
			return fmt.Errorf("%s and %s disagree: %w", kinds[0], kinds[i], err)
		}
	}
	if len(results) > 1 {
		fmt.Println("all strategies produced identical vertex positions")
	}
	return nil
}

func runStrategy(cfg *config.Config, src mesh.Mesh, kind smooth.Kind) (mesh.Mesh, error) {
	log := logger.Named("smooth").With(zap.Stringer("strategy", kind))

	fallback := memres.NewTracking(upstream(cfg.Smoothing.Upstream))
	s, err := smooth.NewStrategy(kind, fallback)
	if err != nil {
		return nil, err
	}

	m := src.Clone()
	start := time.Now()
	if err := smooth.Laplacian(m, cfg.Smoothing.Iterations, s); err != nil {
		return nil, fmt.Errorf("%s: %w", kind, err)
	}
	elapsed := time.Since(start)

	fmt.Printf("impl with %s buffers took %dms\n", kind, elapsed.Milliseconds())
	log.Info("smoothing finished",
		zap.Int("iterations", cfg.Smoothing.Iterations),
		zap.Duration("elapsed", elapsed),
		zap.Float64("radius_stddev", mesh.Radius(m).StdDev),
		logger.Stats("fallback", fallback.Stats()))

	if cfg.Output.Write {
		if err := save(cfg.Output.Dir, fmt.Sprintf("smoothed_sphere_%s.obj", kind), m); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshsmooth info <file.obj>")
		os.Exit(1)
	}
	m, err := mesh.LoadOBJ(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("File: %s\n", args[0])
	printSummary(m)

	b := mesh.BoundsOf(m)
	rs := mesh.Radius(m)
	out, err := mesh.OutwardFaces(m)
	if err != nil {
		return err
	}
	fmt.Printf("bounds: min %v max %v\n", b.Min.Array(), b.Max.Array())
	fmt.Printf("radius: mean %.4f stddev %.4f range [%.4f, %.4f]\n", rs.Mean, rs.StdDev, rs.Min, rs.Max)
	fmt.Printf("outward faces: %d of %d\n", out, m.FaceCount())
	return nil
}

func cmdSmooth(cfg *config.Config, args []string) error {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshsmooth smooth <in.obj> <out.obj>")
		os.Exit(1)
	}
	kinds, err := cfg.Kinds()
	if err != nil {
		return err
	}

	m, err := mesh.LoadOBJ(args[0])
	if err != nil {
		return err
	}
	logger.Info("mesh loaded", zap.String("path", args[0]), logger.Mesh(m))

	// the first configured strategy does the work; they all agree
	s, err := smooth.NewStrategy(kinds[0], upstream(cfg.Smoothing.Upstream))
	if err != nil {
		return err
	}
	done := logger.Timed("mesh smoothed")
	if err := smooth.Laplacian(m, cfg.Smoothing.Iterations, s); err != nil {
		return err
	}
	done(zap.Stringer("strategy", kinds[0]), zap.Int("iterations", cfg.Smoothing.Iterations))

	if err := mesh.SaveOBJ(args[1], m); err != nil {
		return err
	}
	fmt.Printf("Wrote %s\n", args[1])
	return nil
}

func printSummary(m mesh.Mesh) {
	fmt.Printf("mesh is built up of %d vertices and %d faces\n", m.VertexCount(), m.FaceCount())
	fmt.Printf("average vertex valence: %.1f\n", mesh.AverageValence(m))
}

func save(dir, name string, m mesh.Mesh) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	path := filepath.Join(dir, name)
	if err := mesh.SaveOBJ(path, m); err != nil {
		return err
	}
	logger.Info("mesh written", zap.String("path", path))
	return nil
}

var errVertexMismatch = errors.New("vertex positions differ")

func sameVertices(a, b mesh.Mesh) error {
	if a.VertexCount() != b.VertexCount() {
		return fmt.Errorf("%w: %d vs %d vertices", errVertexMismatch, a.VertexCount(), b.VertexCount())
	}
	for i, va := range mesh.Vertices(a) {
		vb, err := b.Vertex(i)
		if err != nil {
			return err
		}
		if va != vb {
			return fmt.Errorf("%w: vertex %d is %v vs %v", errVertexMismatch, i, va, vb)
		}
	}
	return nil
}
