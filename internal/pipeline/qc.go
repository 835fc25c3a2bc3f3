package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
	"github.com/couchcryptid/ctd-cast-etl/internal/netcdf"
	"github.com/couchcryptid/ctd-cast-etl/internal/observability"
	"github.com/couchcryptid/ctd-cast-etl/internal/qc"
)

// QCRunner applies a check configuration to a converted file and
// writes the flagged copy.
type QCRunner struct {
	engine  *qc.Engine
	logger  *slog.Logger
	metrics *observability.Metrics
}

func NewQCRunner(logger *slog.Logger, metrics *observability.Metrics) *QCRunner {
	return &QCRunner{
		engine:  qc.NewEngine(logger),
		logger:  logger,
		metrics: metrics,
	}
}

// QCSummary reports what one QC run evaluated.
type QCSummary struct {
	Variables   int
	Checks      int
	FlagCounts  map[string]int
	Diagnostics []canonical.Diagnostic
}

// Run reads the converted file at inputPath, evaluates every
// configured check, attaches one aggregate flag variable per checked
// variable, and writes the result to outputPath. A configured variable
// absent from the file is a diagnostic, not an error; the run
// continues with the remaining variables.
func (r *QCRunner) Run(inputPath, outputPath string, cfg *qc.Config) (*QCSummary, error) {
	start := time.Now()

	ds, err := netcdf.Read(inputPath)
	if err != nil {
		return nil, err
	}

	summary := &QCSummary{FlagCounts: map[string]int{}}

	for _, vc := range cfg.Variables {
		v, ok := ds.Variable(vc.Name)
		switch {
		case !ok:
			summary.Diagnostics = append(summary.Diagnostics, canonical.Diagnostic{
				Kind:    canonical.KindCheckConfig,
				Message: fmt.Sprintf("configured variable %q not present in %s", vc.Name, inputPath),
			})
			r.logger.Warn("configured variable not in file, skipping",
				"input", inputPath,
				"variable", vc.Name,
			)
			continue
		case v.Floats == nil:
			// Configuration problems stay scoped to the one variable;
			// the rest of the run proceeds.
			summary.Diagnostics = append(summary.Diagnostics, canonical.Diagnostic{
				Kind:    canonical.KindCheckConfig,
				Message: fmt.Sprintf("configured variable %q in %s is not a numeric series", vc.Name, inputPath),
			})
			r.logger.Warn("configured variable is not a numeric series, skipping",
				"input", inputPath,
				"variable", vc.Name,
			)
			continue
		}

		results, diags, err := r.engine.Run(ds, vc.Name, vc.Checks)
		if err != nil {
			return nil, fmt.Errorf("qc %s: %w", inputPath, err)
		}
		summary.Diagnostics = append(summary.Diagnostics, diags...)
		summary.Checks += len(results)
		r.metrics.ChecksEvaluated.Add(float64(len(results)))

		if err := r.engine.AttachAggregate(ds, vc.Name, results); err != nil {
			return nil, fmt.Errorf("qc %s: %w", inputPath, err)
		}
		summary.Variables++

		r.countFlags(ds, vc.Name, summary)
	}

	for _, d := range summary.Diagnostics {
		r.metrics.Diagnostics.WithLabelValues(d.Kind).Inc()
	}

	stampHistory(ds)

	if err := netcdf.Write(outputPath, ds); err != nil {
		return nil, err
	}

	r.metrics.QCDuration.Observe(time.Since(start).Seconds())
	r.logger.Info("qc complete",
		"input", inputPath,
		"output", outputPath,
		"variables", summary.Variables,
		"checks", summary.Checks,
		"flag_counts", summary.FlagCounts,
	)
	return summary, nil
}

// stampHistory appends a QC line to the global history attribute,
// preserving the conversion line already there.
func stampHistory(ds *canonical.Dataset) {
	line := clock.Now().UTC().Format(time.RFC3339) + ": quality control applied"
	if prev, ok := ds.Global["history"].(string); ok && prev != "" {
		ds.Global["history"] = prev + "\n" + line
		return
	}
	ds.Global["history"] = line
}

func (r *QCRunner) countFlags(ds *canonical.Dataset, varName string, summary *QCSummary) {
	v, ok := ds.Variable(varName + "_qc")
	if !ok {
		return
	}
	for _, b := range v.Bytes {
		outcome := qc.Flag(b).String()
		summary.FlagCounts[outcome]++
		r.metrics.FlagsAssigned.WithLabelValues(outcome).Inc()
	}
}
