package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all tool settings, populated from environment variables.
// Paths for individual runs come from command-line flags; the
// environment carries the settings that are stable across runs.
type Config struct {
	LogLevel  string
	LogFormat string

	// QCConfigPath points at a TOML check configuration. Empty means
	// the built-in defaults.
	QCConfigPath string

	// FillValues are the sentinel values the instrument writes for
	// missing samples.
	FillValues []float64
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	cfg := &Config{
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		LogFormat:    envOrDefault("LOG_FORMAT", "json"),
		QCConfigPath: os.Getenv("QC_CONFIG"),
	}

	fills, err := parseFillValues(envOrDefault("CNV_FILL_VALUES", "-9.990e-29"))
	if err != nil {
		return nil, err
	}
	cfg.FillValues = fills

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid LOG_LEVEL %q", cfg.LogLevel)
	}
	switch cfg.LogFormat {
	case "json", "text":
	default:
		return nil, fmt.Errorf("invalid LOG_FORMAT %q", cfg.LogFormat)
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func parseFillValues(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	values := make([]float64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		v, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid CNV_FILL_VALUES entry %q", p)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return nil, errors.New("CNV_FILL_VALUES must name at least one value")
	}
	return values, nil
}
