package sched

import (
	"os"

	yaml "github.com/goccy/go-yaml"
)

const (
	defaultFrameIntervalMS           = 5
	defaultContinuousInputIntervalMS = 50
	defaultMaxIntervalMS             = 300
	defaultHeapInitialCapacity       = 64
)

// Config mirrors config.yaml. It tunes the yield policy and a couple of
// bookkeeping hints; the priority timeout table itself defaults to the
// fixed values in the spec and can be overridden per level.
type Config struct {
	FrameIntervalMS           int64           `yaml:"frame_interval_ms"`
	ContinuousInputIntervalMS int64           `yaml:"continuous_input_interval_ms"`
	MaxIntervalMS             int64           `yaml:"max_interval_ms"`
	HeapInitialCapacity       int             `yaml:"heap_initial_capacity"`
	Priorities                map[string]int64 `yaml:"priorities"` // e.g. "Normal": 4000
}

// defaultConfig returns the values used when no config file is supplied.
func defaultConfig() Config {
	return Config{
		FrameIntervalMS:           defaultFrameIntervalMS,
		ContinuousInputIntervalMS: defaultContinuousInputIntervalMS,
		MaxIntervalMS:             defaultMaxIntervalMS,
		HeapInitialCapacity:       defaultHeapInitialCapacity,
	}
}

// Load reads YAML and overrides defaults; empty path = defaults only. A
// missing or unparsable file is not an error: it silently falls back to
// defaults, matching the teacher's tolerant loader.
func Load(path string) Config {
	cfg := defaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.FrameIntervalMS <= 0 {
		cfg.FrameIntervalMS = defaultFrameIntervalMS
	}
	if cfg.ContinuousInputIntervalMS <= cfg.FrameIntervalMS {
		cfg.ContinuousInputIntervalMS = defaultContinuousInputIntervalMS
	}
	if cfg.MaxIntervalMS <= cfg.ContinuousInputIntervalMS {
		cfg.MaxIntervalMS = defaultMaxIntervalMS
	}
	if cfg.HeapInitialCapacity <= 0 {
		cfg.HeapInitialCapacity = defaultHeapInitialCapacity
	}

	return cfg
}

// priorityNameTable maps the YAML-facing priority names to the internal
// Priority constants, for resolving Config.Priorities overrides.
var priorityNameTable = map[string]Priority{
	"Immediate":    Immediate,
	"UserBlocking": UserBlocking,
	"Normal":       Normal,
	"Low":          Low,
	"Idle":         Idle,
}

// timeoutFor resolves a priority's timeout, honoring any override from
// Config.Priorities before falling back to the built-in table.
func (c Config) timeoutFor(p Priority) int64 {
	p = normalizePriority(p)
	for name, level := range priorityNameTable {
		if level == p {
			if ms, ok := c.Priorities[name]; ok {
				return ms
			}
			break
		}
	}
	return defaultTimeoutFor(p)
}
