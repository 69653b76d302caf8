package config

import (
	"flag"
	"strings"
)

var (
	flagConfig       = flag.String("config", "", "Path to config file")
	flagDebug        = flag.Bool("debug", false, "Enable debug logging")
	flagSubdivisions = flag.Int("subdivisions", -1, "Sphere subdivision level")
	flagStdDev       = flag.Float64("stddev", -1, "Standard deviation of the sphere noise")
	flagIterations   = flag.Int("iterations", -1, "Smoothing iterations")
	flagStrategies   = flag.String("strategies", "", "Comma-separated allocation strategies (heap, arena)")
	flagUpstream     = flag.String("upstream", "", "Arena fallback resource (heap, mcache, pool)")
	flagOut          = flag.String("out", "", "Output directory for OBJ files")
	flagNoWrite      = flag.Bool("no-write", false, "Do not write OBJ files")
)

// ParseFlags parses command-line flags. Call this early in main().
func ParseFlags() {
	flag.Parse()
}

// Args returns the non-flag arguments.
func Args() []string {
	return flag.Args()
}

// ConfigPath returns the explicit config path if provided via --config flag.
func ConfigPath() string {
	return *flagConfig
}

// applyFlags applies CLI flag overrides to the config.
func applyFlags(cfg *Config) {
	if *flagDebug {
		cfg.Logging.Level = "debug"
	}
	if *flagSubdivisions >= 0 {
		cfg.Sphere.Subdivisions = *flagSubdivisions
	}
	if *flagStdDev >= 0 {
		cfg.Sphere.StdDev = float32(*flagStdDev)
	}
	if *flagIterations >= 0 {
		cfg.Smoothing.Iterations = *flagIterations
	}
	if *flagStrategies != "" {
		cfg.Smoothing.Strategies = strings.Split(*flagStrategies, ",")
	}
	if *flagUpstream != "" {
		cfg.Smoothing.Upstream = *flagUpstream
	}
	if *flagOut != "" {
		cfg.Output.Dir = *flagOut
	}
	if *flagNoWrite {
		cfg.Output.Write = false
	}
}
