// Package config loads the planner's YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dd0wney/cluso-gridplan/pkg/algorithms"
	"github.com/dd0wney/cluso-gridplan/pkg/optimizer"
	"github.com/dd0wney/cluso-gridplan/pkg/solver"
	"github.com/dd0wney/cluso-gridplan/pkg/validation"
)

// Input sources
const (
	SourceCSV      = "csv"
	SourcePostgres = "postgres"
)

// Assignment solvers
const (
	SolverPseudoBoolean  = "pseudo_boolean"
	SolverBranchAndBound = "branch_and_bound"
)

// Config is the full planner configuration.
type Config struct {
	Search    SearchConfig    `yaml:"search"`
	Optimizer OptimizerConfig `yaml:"optimizer"`
	Input     InputConfig     `yaml:"input"`
	Output    OutputConfig    `yaml:"output"`
	Database  DatabaseConfig  `yaml:"database"`

	// LogLevel is debug, info, warn or error (default: info)
	LogLevel string `yaml:"log_level"`

	// MetricsFile receives a Prometheus text-format dump after the run
	MetricsFile string `yaml:"metrics_file"`
}

// SearchConfig tunes the multi-path search.
type SearchConfig struct {
	MaxPaths           int     `yaml:"max_paths"`
	MaxConnectDistance float64 `yaml:"max_connect_distance"`
	BaseWeight         float64 `yaml:"base_weight"`
	WeightMultiplier   float64 `yaml:"weight_multiplier"`
	EscalateDuplicates bool    `yaml:"escalate_duplicates"`
	LegacyOpenList     bool    `yaml:"legacy_open_list"`

	// Workers is the number of customers searched at once (default: 1)
	Workers int `yaml:"workers"`
}

// OptimizerConfig weighs the assignment model.
type OptimizerConfig struct {
	PathReward          float64 `yaml:"path_reward"`
	LinkCost            float64 `yaml:"link_cost"`
	RequireFullCoverage bool    `yaml:"require_full_coverage"`

	// MaxFeederDistance bounds the nearest-transformer fallback (0 = unlimited)
	MaxFeederDistance float64 `yaml:"max_feeder_distance"`

	// Solver is pseudo_boolean (default) or branch_and_bound
	Solver string `yaml:"solver"`

	// MaxNodes bounds the branch-and-bound search (0 = unlimited)
	MaxNodes int `yaml:"max_nodes"`
}

// InputConfig names the element source.
type InputConfig struct {
	Source       string `yaml:"source"`
	ElementsFile string `yaml:"elements_file"`
}

// OutputConfig controls result files.
type OutputConfig struct {
	Dir     string `yaml:"dir"`
	Archive bool   `yaml:"archive"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int    `yaml:"max_conns"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	search := algorithms.DefaultOptions()
	opt := optimizer.DefaultOptions()
	return Config{
		Search: SearchConfig{
			MaxPaths:           search.MaxPaths,
			MaxConnectDistance: search.MaxConnectDistance,
			BaseWeight:         search.BaseWeight,
			WeightMultiplier:   search.WeightMultiplier,
			Workers:            1,
		},
		Optimizer: OptimizerConfig{
			PathReward: opt.PathReward,
			LinkCost:   opt.LinkCost,
			Solver:     SolverPseudoBoolean,
			MaxNodes:   solver.DefaultMaxNodes,
		},
		Input: InputConfig{
			Source:       SourceCSV,
			ElementsFile: "elements.csv",
		},
		Output: OutputConfig{
			Dir: "out",
		},
		Database: DatabaseConfig{
			MaxConns: 4,
		},
		LogLevel: "info",
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses the defaults alone.
func Load(path string) (Config, error) {
	if path == "" {
		cfg := Default()
		cfg.applyEnv()
		return cfg, cfg.Validate()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults, applies environment overrides and
// validates the result.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overrides settings from GRIDPLAN_* variables and LOG_LEVEL.
func (c *Config) applyEnv() {
	c.Database.URL = getEnvOrDefault("GRIDPLAN_DATABASE_URL", c.Database.URL)
	c.Input.ElementsFile = getEnvOrDefault("GRIDPLAN_ELEMENTS_FILE", c.Input.ElementsFile)
	c.Output.Dir = getEnvOrDefault("GRIDPLAN_OUTPUT_DIR", c.Output.Dir)
	c.LogLevel = getEnvOrDefault("LOG_LEVEL", c.LogLevel)
	if v := os.Getenv("GRIDPLAN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Search.Workers = n
		}
	}
}

func getEnvOrDefault(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// Validate checks every section and reports all problems at once.
func (c Config) Validate() error {
	return validation.NewConfigValidator("config").
		Custom("search", c.SearchOptions().Validate).
		Positive("search.workers", c.Search.Workers).
		Custom("optimizer", c.OptimizerOptions().Validate).
		NonNegativeFloat("optimizer.max_feeder_distance", c.Optimizer.MaxFeederDistance).
		OneOf("optimizer.solver", c.Optimizer.Solver, []string{SolverPseudoBoolean, SolverBranchAndBound}).
		NonNegative("optimizer.max_nodes", c.Optimizer.MaxNodes).
		OneOf("input.source", c.Input.Source, []string{SourceCSV, SourcePostgres}).
		When(c.Input.Source == SourceCSV, func(v *validation.ConfigValidator) {
			v.Required("input.elements_file", c.Input.ElementsFile)
		}).
		When(c.Input.Source == SourcePostgres, func(v *validation.ConfigValidator) {
			v.Required("database.url", c.Database.URL).
				Positive("database.max_conns", c.Database.MaxConns)
		}).
		Required("output.dir", c.Output.Dir).
		OneOf("log_level", strings.ToLower(c.LogLevel), []string{"debug", "info", "warn", "warning", "error"}).
		Validate()
}

// SearchOptions converts the search section.
func (c Config) SearchOptions() algorithms.Options {
	return algorithms.Options{
		MaxPaths:           c.Search.MaxPaths,
		MaxConnectDistance: c.Search.MaxConnectDistance,
		BaseWeight:         c.Search.BaseWeight,
		WeightMultiplier:   c.Search.WeightMultiplier,
		EscalateDuplicates: c.Search.EscalateDuplicates,
		LegacyOpenList:     c.Search.LegacyOpenList,
	}
}

// NewSolver builds the configured assignment solver.
func (c Config) NewSolver() solver.Solver {
	if c.Optimizer.Solver == SolverBranchAndBound {
		return solver.NewBranchAndBound(c.Optimizer.MaxNodes)
	}
	return solver.NewPseudoBoolean()
}

// OptimizerOptions converts the optimizer section.
func (c Config) OptimizerOptions() optimizer.Options {
	return optimizer.Options{
		PathReward:          c.Optimizer.PathReward,
		LinkCost:            c.Optimizer.LinkCost,
		RequireFullCoverage: c.Optimizer.RequireFullCoverage,
	}
}
