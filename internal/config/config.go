// Package config loads the TOML file that parameterizes one planning run:
// solver selection, time limits, horizon dates, and feature-gate
// overrides.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/planengine/planengine/internal/domain"
)

// SolverConfig selects and tunes the MIP backend.
type SolverConfig struct {
	Name         string  `toml:"name"`
	TimeLimit    string  `toml:"time_limit"` // human-readable, e.g. "10m"
	MIPGap       float64 `toml:"mip_gap"`
	UseWarmstart bool    `toml:"use_warmstart"`
}

// HorizonConfig bounds the planning window.
type HorizonConfig struct {
	StartDate string `toml:"start_date"` // "2006-01-02"
	EndDate   string `toml:"end_date"`
}

// GatesConfig holds the run's engine switches. ToDomainConfig copies each
// field as-is into domain.Config, so a field left false is off. The
// data-driven feature gates (model.DetectGates) are computed from the
// instance data alone and are not overridden by these fields.
type GatesConfig struct {
	UseBatchTracking  bool `toml:"use_batch_tracking"`
	AllowShortages    bool `toml:"allow_shortages"`
	EnforceShelfLife  bool `toml:"enforce_shelf_life"`
	ForceAllSKUsDaily bool `toml:"force_all_skus_daily"`
	StrictValidation  bool `toml:"strict_validation"`
}

// RoutingConfig bounds route enumeration.
type RoutingConfig struct {
	MaxRoutesPerDestination int `toml:"max_routes_per_destination"`
}

// OutputConfig controls where solved plans are written and persisted.
type OutputConfig struct {
	SolutionPath string `toml:"solution_path"`
	DatabaseDir  string `toml:"database_dir"`
}

// Config is the full parsed shape of a planengine TOML config file.
type Config struct {
	Solver  SolverConfig  `toml:"solver"`
	Horizon HorizonConfig `toml:"horizon"`
	Gates   GatesConfig   `toml:"gates"`
	Routing RoutingConfig `toml:"routing"`
	Output  OutputConfig  `toml:"output"`
}

// DefaultConfig returns the engine's conservative defaults: a 30 day
// horizon from today, 600s time limit, 1% gap, batch tracking and shelf
// life enforcement on, shortages disallowed.
func DefaultConfig() Config {
	today := time.Now().Truncate(24 * time.Hour)
	return Config{
		Solver: SolverConfig{
			Name:         "reference",
			TimeLimit:    "10m",
			MIPGap:       0.01,
			UseWarmstart: true,
		},
		Horizon: HorizonConfig{
			StartDate: today.Format("2006-01-02"),
			EndDate:   today.AddDate(0, 0, 30).Format("2006-01-02"),
		},
		Gates: GatesConfig{
			UseBatchTracking: true,
			EnforceShelfLife: true,
		},
		Routing: RoutingConfig{
			MaxRoutesPerDestination: 5,
		},
		Output: OutputConfig{
			SolutionPath: "solution.json",
			DatabaseDir:  ".",
		},
	}
}

// Load parses a TOML config file at path, filling any field the file
// leaves zero-valued from DefaultConfig.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode config %s: %w", path, err)
	}
	_ = meta // undecoded-key reporting not needed for this config surface
	applyDefaults(&cfg)
	return cfg, nil
}

func applyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Solver.Name == "" {
		cfg.Solver.Name = def.Solver.Name
	}
	if cfg.Solver.TimeLimit == "" {
		cfg.Solver.TimeLimit = def.Solver.TimeLimit
	}
	if cfg.Solver.MIPGap == 0 {
		cfg.Solver.MIPGap = def.Solver.MIPGap
	}
	if cfg.Routing.MaxRoutesPerDestination == 0 {
		cfg.Routing.MaxRoutesPerDestination = def.Routing.MaxRoutesPerDestination
	}
	if cfg.Output.SolutionPath == "" {
		cfg.Output.SolutionPath = def.Output.SolutionPath
	}
	if cfg.Output.DatabaseDir == "" {
		cfg.Output.DatabaseDir = def.Output.DatabaseDir
	}
}

// parseDuration parses a human-readable duration ("10m", "2h", "600s")
// falling back to seconds-as-plain-integer for bare numeric strings.
func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}
	if d, err := time.ParseDuration(s); err == nil {
		return d, nil
	}
	if secs, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return 0, fmt.Errorf("invalid duration %q", s)
}

// TimeLimitSeconds converts SolverConfig's human-readable TimeLimit to the
// float64 seconds domain.Config expects.
func (c Config) TimeLimitSeconds() float64 {
	d, err := parseDuration(c.Solver.TimeLimit)
	if err != nil {
		d = 10 * time.Minute
	}
	return d.Seconds()
}

// ToDomainConfig flattens the TOML file's nested sections into the single
// domain.Config the planning packages consume.
func (c Config) ToDomainConfig() domain.Config {
	return domain.Config{
		UseBatchTracking:        c.Gates.UseBatchTracking,
		AllowShortages:          c.Gates.AllowShortages,
		EnforceShelfLife:        c.Gates.EnforceShelfLife,
		ForceAllSKUsDaily:       c.Gates.ForceAllSKUsDaily,
		MaxRoutesPerDestination: c.Routing.MaxRoutesPerDestination,
		UseWarmstart:            c.Solver.UseWarmstart,
		StrictValidation:        c.Gates.StrictValidation,
		TimeLimitSeconds:        c.TimeLimitSeconds(),
		MIPGap:                  c.Solver.MIPGap,
		SolverName:              c.Solver.Name,
	}
}

// ParseHorizon parses Horizon's string dates into a domain.PlanningWindow.
func (c Config) ParseHorizon() (domain.PlanningWindow, error) {
	start, err := time.Parse("2006-01-02", c.Horizon.StartDate)
	if err != nil {
		return domain.PlanningWindow{}, fmt.Errorf("parse horizon start_date: %w", err)
	}
	end, err := time.Parse("2006-01-02", c.Horizon.EndDate)
	if err != nil {
		return domain.PlanningWindow{}, fmt.Errorf("parse horizon end_date: %w", err)
	}
	return domain.PlanningWindow{StartDate: start, EndDate: end}, nil
}
