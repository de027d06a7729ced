package pilp

import (
	"errors"
	"fmt"
)

// Sentinel errors surfaced at the boundary (spec section 7). Callers should
// use errors.Is against these; ambient detail travels in a *SolverError
// wrapping one of them.
var (
	// ErrInvalidInput covers caller misuse: incompatible domain/map shapes,
	// malformed divisors, an unbounded output detected via the big-M
	// cancellation assertion (spec section 9, "Open question -- unbounded
	// outputs": this implementation resolves that question by returning
	// ErrInvalidInput rather than emitting a sentinel piece).
	ErrInvalidInput = errors.New("pilp: invalid input")

	// ErrArithmeticOverflow covers failed big-integer allocation or matrix
	// extension. math/big never actually fails to allocate in practice, but
	// the sentinel is kept so the failure path described in spec section 7
	// is representable without a bespoke error type per call site.
	ErrArithmeticOverflow = errors.New("pilp: arithmetic overflow")

	// ErrInternalInvariant marks a state the design forbids -- a solver
	// bug. Fatal to the solve; the caller tears down and propagates it.
	ErrInternalInvariant = errors.New("pilp: internal invariant violated")
)

// SolverError wraps one of the sentinels above with the phase that detected
// it and a message, a struct-error-plus-Unwrap pattern rather than
// a bare sentinel, so diagnostics survive error-wrapping call chains.
type SolverError struct {
	Kind  error  // one of ErrInvalidInput, ErrArithmeticOverflow, ErrInternalInvariant
	Phase string // e.g. "pivot", "restore_lexmin", "add_row"
	Msg   string
}

func (e *SolverError) Error() string {
	return fmt.Sprintf("pilp[%s]: %s: %v", e.Phase, e.Msg, e.Kind)
}

func (e *SolverError) Unwrap() error { return e.Kind }

func invalidInput(phase, msg string) error {
	return &SolverError{Kind: ErrInvalidInput, Phase: phase, Msg: msg}
}

func internalInvariant(phase, msg string) error {
	return &SolverError{Kind: ErrInternalInvariant, Phase: phase, Msg: msg}
}
