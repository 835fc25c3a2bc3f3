// Package pipeline orchestrates the two batch flows: cast file to
// NetCDF conversion, and quality control over converted files.
package pipeline

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
	"github.com/couchcryptid/ctd-cast-etl/internal/cnv"
	"github.com/couchcryptid/ctd-cast-etl/internal/netcdf"
	"github.com/couchcryptid/ctd-cast-etl/internal/observability"
)

// Converter runs the parse-map-assemble-write flow for one cast file
// per call.
type Converter struct {
	mapping canonical.Mapping
	isFill  cnv.FillPredicate
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewConverter creates a Converter. fillValues are the sentinel values
// treated as missing samples.
func NewConverter(fillValues []float64, logger *slog.Logger, metrics *observability.Metrics) *Converter {
	return &Converter{
		mapping: canonical.DefaultMapping(),
		isFill:  cnv.FillValuePredicate(fillValues),
		logger:  logger,
		metrics: metrics,
	}
}

// ConvertSummary reports what one conversion produced.
type ConvertSummary struct {
	Rows        int
	Variables   int
	Diagnostics []canonical.Diagnostic
}

// Convert reads the cast at inputPath and writes a NetCDF trajectory
// file to outputPath. Fatal errors (unreadable input, malformed
// header, short or long rows, empty cast) leave no output file behind;
// everything recoverable is returned as diagnostics in the summary.
func (c *Converter) Convert(inputPath, outputPath string) (*ConvertSummary, error) {
	start := time.Now()

	data, err := os.ReadFile(inputPath)
	if err != nil {
		c.metrics.ConvertErrors.Inc()
		return nil, fmt.Errorf("read %s: %w", inputPath, err)
	}

	columns, meta, rows, err := cnv.ParseCast(data, c.isFill)
	if err != nil {
		c.metrics.ConvertErrors.Inc()
		return nil, fmt.Errorf("parse %s: %w", inputPath, err)
	}

	records, err := rows.DecodeAll()
	if err != nil {
		c.metrics.ConvertErrors.Inc()
		return nil, fmt.Errorf("decode %s: %w", inputPath, err)
	}
	c.metrics.RowsDecoded.Add(float64(len(records)))

	mapped, diags := c.mapping.Apply(columns)
	for _, d := range diags {
		if d.Kind == canonical.KindUnmappedVariable {
			c.metrics.UnmappedColumns.Inc()
		}
	}

	ds, assembleDiags, err := canonical.Assemble(canonical.AssembleInput{
		SourceName: filepath.Base(inputPath),
		Records:    records,
		Columns:    mapped,
		Metadata:   meta,
	})
	if err != nil {
		c.metrics.ConvertErrors.Inc()
		return nil, fmt.Errorf("assemble %s: %w", inputPath, err)
	}
	diags = append(diags, assembleDiags...)

	if err := netcdf.Write(outputPath, ds); err != nil {
		c.metrics.ConvertErrors.Inc()
		return nil, err
	}

	c.metrics.CastsConverted.Inc()
	c.metrics.ConvertDuration.Observe(time.Since(start).Seconds())
	c.reportDiagnostics(inputPath, diags)

	summary := &ConvertSummary{
		Rows:        len(records),
		Variables:   len(ds.Names()),
		Diagnostics: diags,
	}
	c.logger.Info("cast converted",
		"input", inputPath,
		"output", outputPath,
		"rows", summary.Rows,
		"variables", summary.Variables,
		"diagnostics", len(diags),
	)
	return summary, nil
}

// reportDiagnostics logs one summary line per diagnostic kind rather
// than one line per finding, so a cast with hundreds of unmapped rows
// does not flood the log.
func (c *Converter) reportDiagnostics(inputPath string, diags []canonical.Diagnostic) {
	byKind := map[string][]string{}
	for _, d := range diags {
		c.metrics.Diagnostics.WithLabelValues(d.Kind).Inc()
		byKind[d.Kind] = append(byKind[d.Kind], d.Message)
	}
	for kind, msgs := range byKind {
		c.logger.Warn("conversion diagnostics",
			"input", inputPath,
			"kind", kind,
			"count", len(msgs),
			"first", msgs[0],
		)
	}
}
