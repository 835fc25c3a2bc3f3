package canonical

import "fmt"

// EmptyCastError reports a cast with zero usable observations. Fatal:
// no output container is produced.
type EmptyCastError struct {
	File string
}

func (e *EmptyCastError) Error() string {
	return fmt.Sprintf("%s: cast contains no observations", e.File)
}

// Diagnostic is a non-fatal data-quality or mapping finding. They are
// collected per run and reported as a summary rather than interleaved
// into the log stream.
type Diagnostic struct {
	Kind    string // e.g. KindUnmappedVariable
	Message string
}

// Diagnostic kinds.
const (
	KindUnmappedVariable = "unmapped_variable"
	KindNonMonotonicTime = "non_monotonic_time"
	KindMissingStartTime = "missing_start_time"
	KindCheckConfig      = "check_configuration"
)

func (d Diagnostic) String() string {
	return fmt.Sprintf("[%s] %s", d.Kind, d.Message)
}
