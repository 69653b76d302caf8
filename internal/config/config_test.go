package config

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/meshlab/pkg/smooth"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Test sphere defaults
	if cfg.Sphere.Subdivisions != 9 {
		t.Errorf("expected subdivisions 9, got %d", cfg.Sphere.Subdivisions)
	}
	if cfg.Sphere.StdDev != 0.01 {
		t.Errorf("expected stddev 0.01, got %f", cfg.Sphere.StdDev)
	}
	if cfg.Sphere.Seed != 42 {
		t.Errorf("expected seed 42, got %d", cfg.Sphere.Seed)
	}

	// Test smoothing defaults
	if cfg.Smoothing.Iterations != 10 {
		t.Errorf("expected 10 iterations, got %d", cfg.Smoothing.Iterations)
	}
	if !reflect.DeepEqual(cfg.Smoothing.Strategies, []string{"heap", "arena"}) {
		t.Errorf("expected strategies [heap arena], got %v", cfg.Smoothing.Strategies)
	}
	if cfg.Smoothing.Upstream != UpstreamHeap {
		t.Errorf("expected upstream heap, got %s", cfg.Smoothing.Upstream)
	}

	// Test output defaults
	if !cfg.Output.Write {
		t.Error("expected output to be written by default")
	}

	// Test logging defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("expected log level 'info', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "" {
		t.Errorf("expected empty log file, got %s", cfg.Logging.LogFile)
	}

	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
}

func TestKinds(t *testing.T) {
	cfg := Default()
	kinds, err := cfg.Kinds()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(kinds, []smooth.Kind{smooth.KindHeap, smooth.KindArena}) {
		t.Errorf("unexpected kinds %v", kinds)
	}

	cfg.Smoothing.Strategies = []string{"arena", "bogus"}
	if _, err := cfg.Kinds(); err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"negative subdivisions", func(c *Config) { c.Sphere.Subdivisions = -1 }, "sphere.subdivisions"},
		{"too many subdivisions", func(c *Config) { c.Sphere.Subdivisions = MaxSubdivisions + 1 }, "sphere.subdivisions"},
		{"negative stddev", func(c *Config) { c.Sphere.StdDev = -0.5 }, "sphere.stddev"},
		{"negative iterations", func(c *Config) { c.Smoothing.Iterations = -2 }, "smoothing.iterations"},
		{"no strategies", func(c *Config) { c.Smoothing.Strategies = nil }, "must not be empty"},
		{"unknown strategy", func(c *Config) { c.Smoothing.Strategies = []string{"stack"} }, "smoothing.strategies"},
		{"unknown upstream", func(c *Config) { c.Smoothing.Upstream = "disk" }, "smoothing.upstream"},
		{"inverted ops range", func(c *Config) { c.MemDemo.MinOps = 10; c.MemDemo.MaxOps = 5 }, "memdemo ops"},
		{"zero buffer", func(c *Config) { c.MemDemo.BufferSize = 0 }, "memdemo.buffer_size"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error mentioning %q, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	// Create temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
sphere:
  subdivisions: 5
  stddev: 0.05
  seed: 7

smoothing:
  iterations: 3
  strategies: [arena]
  upstream: pool

output:
  dir: "/tmp/meshes"
  write: false

memdemo:
  min_ops: 10
  max_ops: 20
  buffer_size: 256

logging:
  level: "debug"
  log_file: "meshlab.log"
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Sphere.Subdivisions != 5 {
		t.Errorf("expected subdivisions 5, got %d", cfg.Sphere.Subdivisions)
	}
	if cfg.Sphere.StdDev != 0.05 {
		t.Errorf("expected stddev 0.05, got %f", cfg.Sphere.StdDev)
	}
	if cfg.Sphere.Seed != 7 {
		t.Errorf("expected seed 7, got %d", cfg.Sphere.Seed)
	}
	if cfg.Smoothing.Iterations != 3 {
		t.Errorf("expected 3 iterations, got %d", cfg.Smoothing.Iterations)
	}
	if !reflect.DeepEqual(cfg.Smoothing.Strategies, []string{"arena"}) {
		t.Errorf("expected strategies [arena], got %v", cfg.Smoothing.Strategies)
	}
	if cfg.Smoothing.Upstream != UpstreamPool {
		t.Errorf("expected upstream pool, got %s", cfg.Smoothing.Upstream)
	}
	if cfg.Output.Dir != "/tmp/meshes" || cfg.Output.Write {
		t.Errorf("unexpected output config %+v", cfg.Output)
	}
	if cfg.MemDemo.MinOps != 10 || cfg.MemDemo.MaxOps != 20 || cfg.MemDemo.BufferSize != 256 {
		t.Errorf("unexpected memdemo config %+v", cfg.MemDemo)
	}
	// unset keys keep their defaults
	if cfg.MemDemo.Seed != 42 {
		t.Errorf("expected memdemo seed to keep default 42, got %d", cfg.MemDemo.Seed)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
	}
	if cfg.Logging.LogFile != "meshlab.log" {
		t.Errorf("expected log file 'meshlab.log', got %s", cfg.Logging.LogFile)
	}
}

func TestLoadFromFileInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid.yaml")

	invalidYAML := `
sphere:
  subdivisions: not a number
  invalid syntax here
`

	if err := os.WriteFile(configPath, []byte(invalidYAML), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg := Default()
	if err := loadFromFile(cfg, configPath); err == nil {
		t.Error("expected error loading invalid YAML, got nil")
	}
}

func TestLoadFromFileMissing(t *testing.T) {
	cfg := Default()
	if err := loadFromFile(cfg, "/nonexistent/path/meshlab.yaml"); err == nil {
		t.Error("expected error loading missing file, got nil")
	}
}

func TestConfigDir(t *testing.T) {
	dir := ConfigDir()
	if dir == "" {
		t.Error("ConfigDir returned empty string")
	}
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir should return absolute path, got %s", dir)
	}
}

func TestFindConfigFile(t *testing.T) {
	origDir, _ := os.Getwd()
	defer os.Chdir(origDir)

	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(tmpDir, "xdg"))
	os.Chdir(tmpDir)

	// No config file exists - should return empty
	if path := findConfigFile(); path != "" {
		t.Errorf("expected empty path when no config exists, got %s", path)
	}

	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("sphere:\n  subdivisions: 2\n"), 0644); err != nil {
		t.Fatalf("failed to create test config: %v", err)
	}

	if path := findConfigFile(); path == "" {
		t.Errorf("expected to find %s in current directory", FileName)
	}
}

func TestApplyFlags(t *testing.T) {
	tests := []struct {
		name     string
		setup    func()
		verify   func(*Config)
		teardown func()
	}{
		{
			name:  "debug flag",
			setup: func() { *flagDebug = true },
			verify: func(cfg *Config) {
				if cfg.Logging.Level != "debug" {
					t.Errorf("expected log level 'debug', got %s", cfg.Logging.Level)
				}
			},
			teardown: func() { *flagDebug = false },
		},
		{
			name: "sphere flags",
			setup: func() {
				*flagSubdivisions = 3
				*flagStdDev = 0
			},
			verify: func(cfg *Config) {
				if cfg.Sphere.Subdivisions != 3 {
					t.Errorf("expected subdivisions 3, got %d", cfg.Sphere.Subdivisions)
				}
				if cfg.Sphere.StdDev != 0 {
					t.Errorf("expected stddev 0, got %f", cfg.Sphere.StdDev)
				}
			},
			teardown: func() {
				*flagSubdivisions = -1
				*flagStdDev = -1
			},
		},
		{
			name: "smoothing flags",
			setup: func() {
				*flagIterations = 0
				*flagStrategies = "arena,heap"
				*flagUpstream = "mcache"
			},
			verify: func(cfg *Config) {
				if cfg.Smoothing.Iterations != 0 {
					t.Errorf("expected 0 iterations, got %d", cfg.Smoothing.Iterations)
				}
				if !reflect.DeepEqual(cfg.Smoothing.Strategies, []string{"arena", "heap"}) {
					t.Errorf("expected strategies [arena heap], got %v", cfg.Smoothing.Strategies)
				}
				if cfg.Smoothing.Upstream != UpstreamMCache {
					t.Errorf("expected upstream mcache, got %s", cfg.Smoothing.Upstream)
				}
			},
			teardown: func() {
				*flagIterations = -1
				*flagStrategies = ""
				*flagUpstream = ""
			},
		},
		{
			name: "output flags",
			setup: func() {
				*flagOut = "out"
				*flagNoWrite = true
			},
			verify: func(cfg *Config) {
				if cfg.Output.Dir != "out" {
					t.Errorf("expected output dir 'out', got %s", cfg.Output.Dir)
				}
				if cfg.Output.Write {
					t.Error("expected output writing to be disabled")
				}
			},
			teardown: func() {
				*flagOut = ""
				*flagNoWrite = false
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			defer tt.teardown()

			cfg := Default()
			applyFlags(cfg)

			tt.verify(cfg)
		})
	}
}

func TestLoadPriority(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)

	yamlContent := `
sphere:
  subdivisions: 4
smoothing:
  iterations: 2
`

	if err := os.WriteFile(configPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	// Set flag to override config file
	*flagConfig = configPath
	*flagSubdivisions = 6
	defer func() {
		*flagConfig = ""
		*flagSubdivisions = -1
	}()

	cfg, err := Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	// Subdivisions should be from flag (6), not file (4)
	if cfg.Sphere.Subdivisions != 6 {
		t.Errorf("expected subdivisions 6 from flag, got %d", cfg.Sphere.Subdivisions)
	}

	// Iterations should be from file (2) since no flag override
	if cfg.Smoothing.Iterations != 2 {
		t.Errorf("expected 2 iterations from file, got %d", cfg.Smoothing.Iterations)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, FileName)
	if err := os.WriteFile(configPath, []byte("smoothing:\n  iterations: -4\n"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	*flagConfig = configPath
	defer func() { *flagConfig = "" }()

	if _, err := Load(); err == nil {
		t.Error("expected Load to reject a negative iteration count")
	}
}

func TestSaveTo(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", FileName)

	cfg := Default()
	cfg.Sphere.Subdivisions = 3
	cfg.Smoothing.Strategies = []string{"arena"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	loaded := Default()
	if err := loadFromFile(loaded, path); err != nil {
		t.Fatalf("failed to load saved config: %v", err)
	}
	if !reflect.DeepEqual(cfg, loaded) {
		t.Errorf("saved config %+v does not match loaded %+v", cfg, loaded)
	}
}
