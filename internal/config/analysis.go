package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"github.com/banshee-data/habitat.report/internal/occupancy"
	"github.com/banshee-data/habitat.report/internal/units"
)

// DefaultConfigPath is where the command line tools look for a config when
// none is given.
const DefaultConfigPath = "config/analysis.json"

// PhaseConfig is one experiment phase as written in the experiment file:
// dates as "dd.mm.yyyy", times as "hh:mm" or "hh:mm:ss".
type PhaseConfig struct {
	Name      string `json:"name"`
	StartDate string `json:"start_date"`
	StartTime string `json:"start_time"`
	EndDate   string `json:"end_date"`
	EndTime   string `json:"end_time"`
}

// AnalysisConfig is the root configuration of an analysis run. Omitted
// fields fall back to the defaults returned by the Get* methods.
type AnalysisConfig struct {
	DBPath           *string       `json:"db_path,omitempty"`
	Timezone         *string       `json:"timezone,omitempty"`
	Phases           []PhaseConfig `json:"phases,omitempty"`
	TransitionPolicy *string       `json:"transition_policy,omitempty"`
	Workers          *int          `json:"workers,omitempty"`
	Delimiter        *string       `json:"delimiter,omitempty"`
	OutputDir        *string       `json:"output_dir,omitempty"`
	ClipToPhase      *bool         `json:"clip_to_phase,omitempty"`
}

// Defaults.
const (
	DefaultDBPath    = "habitat.db"
	DefaultDelimiter = ','
	DefaultOutputDir = "."
)

// EmptyAnalysisConfig returns an AnalysisConfig with every field unset.
func EmptyAnalysisConfig() *AnalysisConfig {
	return &AnalysisConfig{}
}

// LoadAnalysisConfig loads an AnalysisConfig from a JSON file.
// The file must have a .json extension and be at most 1MB.
func LoadAnalysisConfig(path string) (*AnalysisConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyAnalysisConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that the configuration values are valid.
func (c *AnalysisConfig) Validate() error {
	if c.Timezone != nil && !units.IsTimezoneValid(*c.Timezone) {
		return fmt.Errorf("invalid timezone %q", *c.Timezone)
	}

	if c.TransitionPolicy != nil {
		if _, err := occupancy.ParseTransitionPolicy(*c.TransitionPolicy); err != nil {
			return err
		}
	}

	if c.Workers != nil && *c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", *c.Workers)
	}

	if c.Delimiter != nil {
		r, size := utf8.DecodeRuneInString(*c.Delimiter)
		if size == 0 || size != len(*c.Delimiter) {
			return fmt.Errorf("delimiter must be a single character, got %q", *c.Delimiter)
		}
		if r == '"' || r == '\r' || r == '\n' || r == utf8.RuneError {
			return fmt.Errorf("invalid delimiter %q", *c.Delimiter)
		}
	}

	if _, err := c.ResolvePhases(); err != nil {
		return err
	}

	return nil
}

// GetDBPath returns the SQLite database path.
func (c *AnalysisConfig) GetDBPath() string {
	if c.DBPath == nil || *c.DBPath == "" {
		return DefaultDBPath
	}
	return *c.DBPath
}

// GetTimezone returns the timezone phase boundaries and raw timecodes are read in.
func (c *AnalysisConfig) GetTimezone() string {
	if c.Timezone == nil || *c.Timezone == "" {
		return units.DefaultTimezone
	}
	return *c.Timezone
}

// GetTransitionPolicy returns the gap correction used when merging timelines.
func (c *AnalysisConfig) GetTransitionPolicy() occupancy.TransitionPolicy {
	if c.TransitionPolicy == nil {
		return occupancy.CorrectWholeGap
	}
	p, err := occupancy.ParseTransitionPolicy(*c.TransitionPolicy)
	if err != nil {
		return occupancy.CorrectWholeGap // default on parse error
	}
	return p
}

// GetWorkers returns the number of concurrent analysis tasks.
func (c *AnalysisConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers < 1 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

// GetDelimiter returns the field separator of the output tables.
func (c *AnalysisConfig) GetDelimiter() rune {
	if c.Delimiter == nil || *c.Delimiter == "" {
		return DefaultDelimiter
	}
	r, _ := utf8.DecodeRuneInString(*c.Delimiter)
	return r
}

// GetOutputDir returns the directory tables are written to.
func (c *AnalysisConfig) GetOutputDir() string {
	if c.OutputDir == nil || *c.OutputDir == "" {
		return DefaultOutputDir
	}
	return *c.OutputDir
}

// GetClipToPhase reports whether visits are cut at the end of their phase.
func (c *AnalysisConfig) GetClipToPhase() bool {
	if c.ClipToPhase == nil {
		return true
	}
	return *c.ClipToPhase
}

// ResolvePhases parses the configured phases in the configured timezone.
func (c *AnalysisConfig) ResolvePhases() ([]occupancy.Phase, error) {
	loc, err := units.Location(c.GetTimezone())
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(c.Phases))
	phases := make([]occupancy.Phase, 0, len(c.Phases))
	for i, pc := range c.Phases {
		if pc.Name == "" {
			return nil, fmt.Errorf("phase %d has no name", i)
		}
		if seen[pc.Name] {
			return nil, fmt.Errorf("duplicate phase %q", pc.Name)
		}
		seen[pc.Name] = true

		start, err := units.ParsePhaseTime(pc.StartDate, pc.StartTime, loc)
		if err != nil {
			return nil, fmt.Errorf("phase %q start: %w", pc.Name, err)
		}
		end, err := units.ParsePhaseTime(pc.EndDate, pc.EndTime, loc)
		if err != nil {
			return nil, fmt.Errorf("phase %q end: %w", pc.Name, err)
		}
		if !start.Before(end) {
			return nil, fmt.Errorf("phase %q ends before it starts", pc.Name)
		}
		phases = append(phases, occupancy.Phase{Name: pc.Name, Start: start.UTC(), End: end.UTC()})
	}
	return phases, nil
}
