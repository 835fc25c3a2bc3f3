// Package qc implements QARTOD-style quality control over converted
// cast datasets.
//
// Each check is an independent value implementing Check: it reads the
// raw variable series only, never another check's flags, so checks
// compose in any order. Flags follow the IOOS QARTOD encoding: 1 good,
// 2 not evaluated, 3 suspect, 4 fail, 9 missing. Because the encoding
// is ordered by severity (with missing above everything), per-point
// aggregation is a numeric max with a missing override from the
// underlying value.
//
// A check fails closed: absent configuration or an undefined statistic
// (boundary points without neighbours, unusable timestamps) yields
// NOT_EVALUATED for the affected points rather than an error, and a
// misconfigured check never aborts its siblings.
package qc
