package qc

import (
	"fmt"

	"github.com/BurntSushi/toml"
)

// CheckSpec is one check declaration from the QC configuration.
// Threshold fields are pointers so an absent value is distinguishable
// from zero; Build rejects specs with missing or inconsistent
// thresholds rather than guessing defaults.
type CheckSpec struct {
	Kind string `toml:"kind"`

	FailMin    *float64 `toml:"fail_min"`
	FailMax    *float64 `toml:"fail_max"`
	SuspectMin *float64 `toml:"suspect_min"`
	SuspectMax *float64 `toml:"suspect_max"`

	SuspectThreshold *float64 `toml:"suspect_threshold"`
	FailThreshold    *float64 `toml:"fail_threshold"`

	Threshold *float64 `toml:"threshold"`

	SuspectWindow *int     `toml:"suspect_window"`
	FailWindow    *int     `toml:"fail_window"`
	Tolerance     *float64 `toml:"tolerance"`
}

// VariableConfig lists the checks to run against one dataset variable.
type VariableConfig struct {
	Name   string      `toml:"name"`
	Checks []CheckSpec `toml:"check"`
}

// Config is the full QC configuration: one entry per variable.
type Config struct {
	Variables []VariableConfig `toml:"variable"`
}

// LoadConfig reads a TOML QC configuration from path.
func LoadConfig(path string) (*Config, error) {
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load qc config %s: %w", path, err)
	}
	if len(cfg.Variables) == 0 {
		return nil, fmt.Errorf("load qc config %s: no variables configured", path)
	}
	return &cfg, nil
}

// Build materializes the declaration into a runnable check.
func (s CheckSpec) Build() (Check, error) {
	switch s.Kind {
	case "gross_range":
		if s.FailMin == nil || s.FailMax == nil || s.SuspectMin == nil || s.SuspectMax == nil {
			return nil, fmt.Errorf("gross_range: all of fail_min, fail_max, suspect_min, suspect_max are required")
		}
		if *s.FailMin > *s.SuspectMin || *s.SuspectMax > *s.FailMax {
			return nil, fmt.Errorf("gross_range: suspect span [%g, %g] must sit inside fail span [%g, %g]",
				*s.SuspectMin, *s.SuspectMax, *s.FailMin, *s.FailMax)
		}
		return GrossRangeCheck{
			FailMin:    *s.FailMin,
			FailMax:    *s.FailMax,
			SuspectMin: *s.SuspectMin,
			SuspectMax: *s.SuspectMax,
		}, nil

	case "spike":
		if s.SuspectThreshold == nil || s.FailThreshold == nil {
			return nil, fmt.Errorf("spike: suspect_threshold and fail_threshold are required")
		}
		if *s.SuspectThreshold > *s.FailThreshold {
			return nil, fmt.Errorf("spike: suspect_threshold %g exceeds fail_threshold %g",
				*s.SuspectThreshold, *s.FailThreshold)
		}
		return SpikeCheck{SuspectThreshold: *s.SuspectThreshold, FailThreshold: *s.FailThreshold}, nil

	case "rate_of_change":
		if s.Threshold == nil || *s.Threshold <= 0 {
			return nil, fmt.Errorf("rate_of_change: a positive threshold is required")
		}
		return RateOfChangeCheck{Threshold: *s.Threshold}, nil

	case "flat_line":
		if s.SuspectWindow == nil || s.FailWindow == nil || s.Tolerance == nil {
			return nil, fmt.Errorf("flat_line: suspect_window, fail_window and tolerance are required")
		}
		if *s.SuspectWindow < 2 || *s.FailWindow < *s.SuspectWindow {
			return nil, fmt.Errorf("flat_line: windows %d/%d must satisfy 2 <= suspect <= fail",
				*s.SuspectWindow, *s.FailWindow)
		}
		return FlatLineCheck{
			SuspectWindow: *s.SuspectWindow,
			FailWindow:    *s.FailWindow,
			Tolerance:     *s.Tolerance,
		}, nil

	case "missing":
		return MissingValueCheck{}, nil
	}
	return nil, fmt.Errorf("unknown check kind %q", s.Kind)
}

func f(v float64) *float64 { return &v }
func n(v int) *int         { return &v }

// DefaultConfig covers the sensors a standard CTD cast carries, with
// thresholds drawn from regional QARTOD practice for shelf waters.
func DefaultConfig() *Config {
	return &Config{
		Variables: []VariableConfig{
			{
				Name: "t090c",
				Checks: []CheckSpec{
					{Kind: "gross_range", FailMin: f(-5), FailMax: f(45), SuspectMin: f(-2), SuspectMax: f(35)},
					{Kind: "spike", SuspectThreshold: f(0.5), FailThreshold: f(1.0)},
					{Kind: "flat_line", SuspectWindow: n(15), FailWindow: n(30), Tolerance: f(0.005)},
					{Kind: "rate_of_change", Threshold: f(2.0)},
				},
			},
			{
				Name: "tv290c",
				Checks: []CheckSpec{
					{Kind: "gross_range", FailMin: f(-5), FailMax: f(45), SuspectMin: f(-2), SuspectMax: f(35)},
					{Kind: "spike", SuspectThreshold: f(0.5), FailThreshold: f(1.0)},
					{Kind: "flat_line", SuspectWindow: n(15), FailWindow: n(30), Tolerance: f(0.005)},
					{Kind: "rate_of_change", Threshold: f(2.0)},
				},
			},
			{
				Name: "sal00",
				Checks: []CheckSpec{
					{Kind: "gross_range", FailMin: f(0), FailMax: f(50), SuspectMin: f(0.1), SuspectMax: f(42)},
					{Kind: "spike", SuspectThreshold: f(1.0), FailThreshold: f(2.0)},
					{Kind: "flat_line", SuspectWindow: n(15), FailWindow: n(30), Tolerance: f(0.001)},
				},
			},
			{
				Name: "wetstar",
				Checks: []CheckSpec{
					{Kind: "gross_range", FailMin: f(-0.1), FailMax: f(100), SuspectMin: f(0), SuspectMax: f(75)},
					{Kind: "spike", SuspectThreshold: f(5.0), FailThreshold: f(10.0)},
					{Kind: "missing"},
				},
			},
			{
				Name: "fleco-afl",
				Checks: []CheckSpec{
					{Kind: "gross_range", FailMin: f(-0.1), FailMax: f(100), SuspectMin: f(0), SuspectMax: f(75)},
					{Kind: "spike", SuspectThreshold: f(5.0), FailThreshold: f(10.0)},
					{Kind: "missing"},
				},
			},
		},
	}
}
