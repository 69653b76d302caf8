// Package config handles loading and validating the demo drivers' settings.
package config

import (
	"errors"
	"fmt"

	"github.com/Faultbox/meshlab/pkg/smooth"
)

// Config holds all driver settings.
type Config struct {
	Sphere    SphereConfig    `yaml:"sphere"`
	Smoothing SmoothingConfig `yaml:"smoothing"`
	Output    OutputConfig    `yaml:"output"`
	MemDemo   MemDemoConfig   `yaml:"memdemo"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// SphereConfig holds the generator parameters.
type SphereConfig struct {
	Subdivisions int     `yaml:"subdivisions"`
	StdDev       float32 `yaml:"stddev"` // Standard deviation of the radial noise
	Seed         uint64  `yaml:"seed"`
}

// SmoothingConfig holds the smoothing run parameters.
type SmoothingConfig struct {
	Iterations int      `yaml:"iterations"`
	Strategies []string `yaml:"strategies"` // Run in order, each on its own clone
	Upstream   string   `yaml:"upstream"`   // Arena fallback: heap, mcache or pool
}

// OutputConfig holds where meshes are written.
type OutputConfig struct {
	Dir   string `yaml:"dir"`
	Write bool   `yaml:"write"`
}

// MemDemoConfig holds the allocator demo workload settings.
type MemDemoConfig struct {
	Seed       uint64 `yaml:"seed"`
	MinOps     int    `yaml:"min_ops"`
	MaxOps     int    `yaml:"max_ops"`
	BufferSize int    `yaml:"buffer_size"` // Initial buffer of the allocator-aware demo
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Upstream resource names.
const (
	UpstreamHeap   = "heap"
	UpstreamMCache = "mcache"
	UpstreamPool   = "pool"
)

// MaxSubdivisions bounds the generator; level 12 already has 134M faces.
const MaxSubdivisions = 12

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Sphere: SphereConfig{
			Subdivisions: 9,
			StdDev:       0.01,
			Seed:         42,
		},
		Smoothing: SmoothingConfig{
			Iterations: 10,
			Strategies: []string{"heap", "arena"},
			Upstream:   UpstreamHeap,
		},
		Output: OutputConfig{
			Dir:   ".",
			Write: true,
		},
		MemDemo: MemDemoConfig{
			Seed:       42,
			MinOps:     1000,
			MaxOps:     1000000,
			BufferSize: 128,
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}

// Kinds parses the configured strategy names.
func (c *Config) Kinds() ([]smooth.Kind, error) {
	kinds := make([]smooth.Kind, 0, len(c.Smoothing.Strategies))
	for _, s := range c.Smoothing.Strategies {
		k, err := smooth.ParseKind(s)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

// Validate reports every invalid setting.
func (c *Config) Validate() error {
	var errs []error
	if c.Sphere.Subdivisions < 0 || c.Sphere.Subdivisions > MaxSubdivisions {
		errs = append(errs, fmt.Errorf("sphere.subdivisions must be in [0, %d], got %d", MaxSubdivisions, c.Sphere.Subdivisions))
	}
	if c.Sphere.StdDev < 0 {
		errs = append(errs, fmt.Errorf("sphere.stddev must not be negative, got %v", c.Sphere.StdDev))
	}
	if c.Smoothing.Iterations < 0 {
		errs = append(errs, fmt.Errorf("smoothing.iterations must not be negative, got %d", c.Smoothing.Iterations))
	}
	if len(c.Smoothing.Strategies) == 0 {
		errs = append(errs, errors.New("smoothing.strategies must not be empty"))
	}
	if _, err := c.Kinds(); err != nil {
		errs = append(errs, fmt.Errorf("smoothing.strategies: %w", err))
	}
	switch c.Smoothing.Upstream {
	case UpstreamHeap, UpstreamMCache, UpstreamPool:
	default:
		errs = append(errs, fmt.Errorf("smoothing.upstream must be heap, mcache or pool, got %q", c.Smoothing.Upstream))
	}
	if c.MemDemo.MinOps < 0 || c.MemDemo.MinOps > c.MemDemo.MaxOps {
		errs = append(errs, fmt.Errorf("memdemo ops range [%d, %d] is invalid", c.MemDemo.MinOps, c.MemDemo.MaxOps))
	}
	if c.MemDemo.BufferSize <= 0 {
		errs = append(errs, fmt.Errorf("memdemo.buffer_size must be positive, got %d", c.MemDemo.BufferSize))
	}
	return errors.Join(errs...)
}
