// Command convert transforms a Sea-Bird CNV cast file into a
// CF-compliant NetCDF trajectory file.
//
// Usage:
//
//	convert -input cast.cnv -output cast.nc
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/couchcryptid/ctd-cast-etl/internal/config"
	"github.com/couchcryptid/ctd-cast-etl/internal/observability"
	"github.com/couchcryptid/ctd-cast-etl/internal/pipeline"
)

func main() {
	input := flag.String("input", "", "path to the CNV cast file")
	output := flag.String("output", "", "path for the NetCDF output file")
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

	converter := pipeline.NewConverter(cfg.FillValues, logger, metrics)
	summary, err := converter.Convert(*input, *output)
	if err != nil {
		logger.Error("conversion failed", "input", *input, "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %d rows, %d variables\n", *output, summary.Rows, summary.Variables)
	for _, d := range summary.Diagnostics {
		fmt.Printf("  %s: %s\n", strings.ReplaceAll(d.Kind, "_", " "), d.Message)
	}
}
