package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPipelineConfig names the environment variable consulted by Load when no
// path is given.
const EnvPipelineConfig = "CHUNKMESH_CONFIG"

// Pipeline holds the tuning constants of the mesh-build pipeline.
type Pipeline struct {
	// Share of available memory the scratch buffer pool may occupy.
	MemoryBudgetFraction float64 `yaml:"memory_budget_fraction"`
	// CPU count cap applied on 32-bit builds.
	CPUCap32 int `yaml:"cpu_cap_32bit"`
	// Memory budget used when the host cannot be probed.
	FallbackMemoryBytes uint64 `yaml:"fallback_memory_bytes"`
	// Sections farther than this many blocks need all horizontal neighbours loaded.
	NeighborCheckDistance float64 `yaml:"neighbor_check_distance"`
	// Squared block distance under which PriorityNearby rebuilds synchronously.
	SyncRebuildDistanceSq float64 `yaml:"sync_rebuild_distance"`
	MaxResortsPerFrame    int     `yaml:"max_resorts_per_frame"`
	// Camera movement in blocks that triggers a translucency resort.
	ResortMoveThreshold float64 `yaml:"resort_move_threshold"`
	LogLevel            string  `yaml:"log_level"`
	MetricsAddr         string  `yaml:"metrics_addr"`
}

// DefaultPipeline returns the built-in tuning.
func DefaultPipeline() Pipeline {
	return Pipeline{
		MemoryBudgetFraction:  0.3,
		CPUCap32:              4,
		FallbackMemoryBytes:   1 << 30,
		NeighborCheckDistance: 24,
		SyncRebuildDistanceSq: 768,
		MaxResortsPerFrame:    15,
		ResortMoveThreshold:   1,
		LogLevel:              "info",
		MetricsAddr:           ":9102",
	}
}

// Load reads a YAML pipeline document on top of DefaultPipeline. An empty
// path falls back to $CHUNKMESH_CONFIG, and to the defaults when that is unset too.
func Load(path string) (Pipeline, error) {
	cfg := DefaultPipeline()
	if path == "" {
		path = os.Getenv(EnvPipelineConfig)
	}
	if path == "" {
		return cfg, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return cfg, errors.Wrap(err, "open pipeline config")
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, errors.Wrapf(err, "decode pipeline config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, errors.Wrapf(err, "pipeline config %s", path)
	}
	return cfg, nil
}

// Validate reports the first out-of-range value.
func (p Pipeline) Validate() error {
	switch {
	case p.MemoryBudgetFraction <= 0 || p.MemoryBudgetFraction > 1:
		return errors.Errorf("memory_budget_fraction %v not in (0, 1]", p.MemoryBudgetFraction)
	case p.CPUCap32 < 1:
		return errors.Errorf("cpu_cap_32bit %d must be positive", p.CPUCap32)
	case p.NeighborCheckDistance < 0:
		return errors.Errorf("neighbor_check_distance %v is negative", p.NeighborCheckDistance)
	case p.SyncRebuildDistanceSq < 0:
		return errors.Errorf("sync_rebuild_distance %v is negative", p.SyncRebuildDistanceSq)
	case p.MaxResortsPerFrame < 0:
		return errors.Errorf("max_resorts_per_frame %d is negative", p.MaxResortsPerFrame)
	case p.ResortMoveThreshold < 0:
		return errors.Errorf("resort_move_threshold %v is negative", p.ResortMoveThreshold)
	}
	return nil
}
