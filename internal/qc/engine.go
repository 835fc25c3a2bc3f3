package qc

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/couchcryptid/ctd-cast-etl/internal/canonical"
)

// Engine runs configured checks against dataset variables and attaches
// the aggregated flags back onto the dataset.
type Engine struct {
	logger *slog.Logger
}

func NewEngine(logger *slog.Logger) *Engine {
	return &Engine{logger: logger}
}

// Run evaluates every spec against the named variable. A spec that
// fails to build still yields a Result, with every point flagged
// NOT_EVALUATED and a diagnostic recorded, so one bad check never
// silences its siblings or shrinks the flag series.
func (e *Engine) Run(ds *canonical.Dataset, varName string, specs []CheckSpec) ([]Result, []canonical.Diagnostic, error) {
	v, ok := ds.Variable(varName)
	if !ok {
		return nil, nil, fmt.Errorf("variable %q not present in dataset", varName)
	}
	if v.Floats == nil {
		return nil, nil, fmt.Errorf("variable %q is not a numeric series", varName)
	}

	series := Series{Values: v.Floats}
	if tv, ok := ds.Variable("time"); ok {
		series.Times = tv.Floats
	}

	results := make([]Result, 0, len(specs))
	var diags []canonical.Diagnostic

	for _, spec := range specs {
		check, err := spec.Build()
		if err != nil {
			diags = append(diags, canonical.Diagnostic{
				Kind:    canonical.KindCheckConfig,
				Message: fmt.Sprintf("check %q on %s: %v", spec.Kind, varName, err),
			})
			e.logger.Warn("skipping misconfigured check",
				"variable", varName,
				"check", spec.Kind,
				"error", err,
			)
			results = append(results, Result{
				VariableName: varName,
				CheckName:    spec.Kind,
				Flags:        notEvaluated(len(series.Values)),
			})
			continue
		}

		flags, bounds := check.Evaluate(series)
		results = append(results, Result{
			VariableName: varName,
			CheckName:    check.Name(),
			Flags:        flags,
			Bounds:       bounds,
		})
		e.logger.Debug("check evaluated",
			"variable", varName,
			"check", check.Name(),
			"points", len(flags),
		)
	}

	return results, diags, nil
}

// AttachAggregate aggregates the results into a single flag variable
// named <var>_qc and adds it to the dataset in one step. The variable
// records which checks contributed, in evaluation order.
func (e *Engine) AttachAggregate(ds *canonical.Dataset, varName string, results []Result) error {
	v, ok := ds.Variable(varName)
	if !ok {
		return fmt.Errorf("variable %q not present in dataset", varName)
	}

	flags := Aggregate(v.Floats, results)
	bytes := make([]uint8, len(flags))
	checkNames := make([]string, 0, len(results))
	for i, f := range flags {
		bytes[i] = uint8(f)
	}
	for _, r := range results {
		checkNames = append(checkNames, r.CheckName)
	}

	qcVar := &canonical.Variable{
		Dimensions: []string{canonical.DimObservation},
		Bytes:      bytes,
		Attributes: map[string]any{
			"standard_name": "aggregate_quality_flag",
			"long_name":     fmt.Sprintf("aggregate quality flag for %s", varName),
			"flag_values":   FlagValues(),
			"flag_meanings": FlagMeanings,
			"comment":       "checks applied: " + strings.Join(checkNames, " "),
		},
	}

	name := varName + "_qc"
	if err := ds.AddVariable(name, qcVar); err != nil {
		return fmt.Errorf("attach %s: %w", name, err)
	}

	counts := map[string]int{}
	for _, f := range flags {
		counts[f.String()]++
	}
	e.logger.Info("flags attached",
		"variable", varName,
		"flag_variable", name,
		"counts", counts,
	)
	return nil
}
