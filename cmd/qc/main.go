// Command qc applies quality control checks to a converted cast file
// and writes a copy with one aggregate flag variable per checked
// variable.
//
// Usage:
//
//	qc -input cast.nc -output cast_qc.nc [-config qc.toml]
//
// Without -config (or QC_CONFIG) the built-in check set is used.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/couchcryptid/ctd-cast-etl/internal/config"
	"github.com/couchcryptid/ctd-cast-etl/internal/observability"
	"github.com/couchcryptid/ctd-cast-etl/internal/pipeline"
	"github.com/couchcryptid/ctd-cast-etl/internal/qc"
)

func main() {
	input := flag.String("input", "", "path to a converted NetCDF cast file")
	output := flag.String("output", "", "path for the flagged output file")
	configPath := flag.String("config", "", "TOML check configuration (overrides QC_CONFIG)")
	flag.Parse()

	if *input == "" || *output == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	path := *configPath
	if path == "" {
		path = cfg.QCConfigPath
	}

	checks := qc.DefaultConfig()
	if path != "" {
		checks, err = qc.LoadConfig(path)
		if err != nil {
			logger.Error("failed to load check configuration", "path", path, "error", err)
			os.Exit(1)
		}
	}

	runner := pipeline.NewQCRunner(logger, metrics)
	summary, err := runner.Run(*input, *output, checks)
	if err != nil {
		logger.Error("qc failed", "input", *input, "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d variables checked, %d checks\n", *output, summary.Variables, summary.Checks)
	for outcome, count := range summary.FlagCounts {
		fmt.Printf("  %s: %d\n", outcome, count)
	}
	for _, d := range summary.Diagnostics {
		fmt.Printf("  %s\n", d)
	}
}
