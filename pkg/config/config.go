package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cuemby/burrow/pkg/types"
)

// WorkerConfig describes one worker: its primary priority and the
// ordered fallback list it consults when the primary FIFO is empty.
type WorkerConfig struct {
	Name      string   `yaml:"name"`
	Primary   string   `yaml:"primary"`
	Fallbacks []string `yaml:"fallbacks"`
}

// SpillConfig controls moving oversized payloads to disk.
type SpillConfig struct {
	Enabled           bool   `yaml:"enabled"`
	Dir               string `yaml:"dir"`
	ThresholdBytes    int    `yaml:"threshold_bytes"`
	Compress          bool   `yaml:"compress"`
	CompressBlockSize int    `yaml:"compress_block_size"`
	EncryptPassword   string `yaml:"encrypt_password"`
}

// LogConfig controls the global logger.
type LogConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Config is the engine configuration loaded from YAML.
type Config struct {
	QueueStrategy     string `yaml:"queue_strategy"`
	BoundedCapacity   int    `yaml:"bounded_capacity"`
	WorkerDrainOnStop *bool  `yaml:"worker_drain_on_stop"`

	Workers []WorkerConfig `yaml:"workers"`
	Spill   SpillConfig    `yaml:"spill"`

	SpoolDir    string    `yaml:"spool_dir"`
	MetricsAddr string    `yaml:"metrics_addr"`
	Log         LogConfig `yaml:"log"`
}

// Default returns the configuration used when no file is given: an
// adaptive unbounded queue, one worker per built-in priority with
// full fallback coverage, drain on stop, spill disabled.
func Default() *Config {
	drain := true
	return &Config{
		QueueStrategy:     string(types.StrategyAdaptive),
		WorkerDrainOnStop: &drain,
		Workers: []WorkerConfig{
			{Name: "realtime", Primary: "realtime"},
			{Name: "batch", Primary: "batch", Fallbacks: []string{"realtime"}},
			{Name: "background", Primary: "background", Fallbacks: []string{"realtime", "batch"}},
		},
		MetricsAddr: ":9464",
		Log:         LogConfig{Level: "info"},
	}
}

// Load reads and validates a YAML configuration file. Unset fields
// fall back to defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot honor.
func (c *Config) Validate() error {
	switch types.QueueStrategy(c.QueueStrategy) {
	case types.StrategyMutex, types.StrategyLockFree, types.StrategyAdaptive:
	default:
		return fmt.Errorf("unknown queue_strategy %q", c.QueueStrategy)
	}

	if c.BoundedCapacity < 0 {
		return fmt.Errorf("bounded_capacity must be >= 0, got %d", c.BoundedCapacity)
	}

	for i, w := range c.Workers {
		if _, err := types.ParsePriority(w.Primary); err != nil {
			return fmt.Errorf("worker %d: %w", i, err)
		}
		seen := map[string]bool{w.Primary: true}
		for _, f := range w.Fallbacks {
			if _, err := types.ParsePriority(f); err != nil {
				return fmt.Errorf("worker %d: %w", i, err)
			}
			if seen[f] {
				return fmt.Errorf("worker %d: duplicate priority %q", i, f)
			}
			seen[f] = true
		}
	}

	if c.Spill.Enabled && c.Spill.Dir == "" {
		return fmt.Errorf("spill.dir is required when spill is enabled")
	}
	return nil
}

// Strategy returns the parsed queue strategy.
func (c *Config) Strategy() types.QueueStrategy {
	return types.QueueStrategy(c.QueueStrategy)
}

// DrainOnStop returns the drain flag, defaulting to true.
func (c *Config) DrainOnStop() bool {
	if c.WorkerDrainOnStop == nil {
		return true
	}
	return *c.WorkerDrainOnStop
}

// Priorities resolves a worker's primary and fallback priorities.
func (w WorkerConfig) Priorities() (types.Priority, []types.Priority, error) {
	primary, err := types.ParsePriority(w.Primary)
	if err != nil {
		return 0, nil, err
	}
	fallbacks := make([]types.Priority, 0, len(w.Fallbacks))
	for _, f := range w.Fallbacks {
		p, err := types.ParsePriority(f)
		if err != nil {
			return 0, nil, err
		}
		fallbacks = append(fallbacks, p)
	}
	return primary, fallbacks, nil
}
