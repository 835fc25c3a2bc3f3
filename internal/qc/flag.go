package qc

import "math"

// Flag is a per-observation quality indicator, encoded per the IOOS
// QARTOD flag convention.
type Flag uint8

const (
	FlagGood         Flag = 1
	FlagNotEvaluated Flag = 2
	FlagSuspect      Flag = 3
	FlagFail         Flag = 4
	FlagMissing      Flag = 9
)

// FlagMeanings enumerates the flag values in ascending order, for the
// flag_meanings attribute.
const FlagMeanings = "good_data not_evaluated suspect_data bad_data missing_data"

// FlagValues lists the defined flag values parallel to FlagMeanings.
func FlagValues() []uint8 { return []uint8{1, 2, 3, 4, 9} }

func (f Flag) String() string {
	switch f {
	case FlagGood:
		return "good"
	case FlagNotEvaluated:
		return "not_evaluated"
	case FlagSuspect:
		return "suspect"
	case FlagFail:
		return "fail"
	case FlagMissing:
		return "missing"
	}
	return "unknown"
}

// Aggregate combines the flags of every check into one flag per
// observation using the severity order FAIL > SUSPECT > NOT_EVALUATED
// > GOOD. A missing underlying value forces MISSING regardless of
// check outcomes. With the QARTOD encoding both rules reduce to a
// numeric max plus the value override.
func Aggregate(values []float64, results []Result) []Flag {
	flags := make([]Flag, len(values))

	for _, res := range results {
		for i, f := range res.Flags {
			if i >= len(flags) {
				break
			}
			if f > flags[i] {
				flags[i] = f
			}
		}
	}

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			flags[i] = FlagMissing
		case flags[i] == 0:
			// No check contributed a flag for this point.
			flags[i] = FlagNotEvaluated
		}
	}
	return flags
}
