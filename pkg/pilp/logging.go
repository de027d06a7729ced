package pilp

import "fmt"

// Field is a single structured trace attribute, kept deliberately small
// rather than importing a logging library into the solve path (see
// DESIGN.md: no third-party logger is wired into the single-threaded
// algorithmic core; structured logging belongs at the batch/service
// boundary in cmd/pilpbatch instead).
type Field struct {
	Key string
	Val any
}

// F builds a Field inline, e.g. pilp.F("row", r).
func F(key string, val any) Field { return Field{Key: key, Val: val} }

// Tracer receives step-by-step events from the driver: pivots, splits,
// cuts, and emissions. It follows the teacher's small-interface-plus-
// zero-value-default shape (compare LabelingStrategy in labeling.go,
// Solver in strategy.go): callers that don't care about tracing never pay
// for it.
type Tracer interface {
	Trace(event string, fields ...Field)
}

// NopTracer discards every event. It stands in when Options.Trace is nil.
type NopTracer struct{}

func (NopTracer) Trace(string, ...Field) {}

// PrintTracer writes events to an fmt.Stringer-friendly sink (typically
// os.Stdout wrapped by the caller), useful for the pilpsolve CLI's -trace
// flag and debugging.
type PrintTracer struct {
	Write func(string)
}

func (t PrintTracer) Trace(event string, fields ...Field) {
	if t.Write == nil {
		return
	}
	s := event
	for _, f := range fields {
		s += fmt.Sprintf(" %s=%v", f.Key, f.Val)
	}
	t.Write(s)
}
