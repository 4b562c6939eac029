// Package theoryerr defines the small set of error types the sequence
// theory core can surface to its caller. Modelled on the teacher's
// pkg/util/source.SyntaxError: a plain struct implementing error, built at
// the point of failure rather than thrown as a control-flow exception.
package theoryerr

import "fmt"

// UnsupportedRegexError is returned when a regular-expression term cannot be
// compiled to a finite automaton (e.g. an operator the automaton engine does
// not implement).
type UnsupportedRegexError struct {
	// Expr is a human-readable rendering of the offending regex term.
	Expr string
	// Reason names the specific construct that could not be handled.
	Reason string
}

// Error implements the error interface.
func (e *UnsupportedRegexError) Error() string {
	return fmt.Sprintf("unsupported regex %q: %s", e.Expr, e.Reason)
}

// IncompatibleArithTheoryError is returned at search initialization when
// neither a recognized arithmetic engine is configured.
type IncompatibleArithTheoryError struct {
	// Configured names whatever (possibly empty) engine name was supplied.
	Configured string
}

// Error implements the error interface.
func (e *IncompatibleArithTheoryError) Error() string {
	if e.Configured == "" {
		return "incompatible arithmetic theory: no arithmetic engine configured"
	}

	return fmt.Sprintf("incompatible arithmetic theory: %q is neither the old nor the new arithmetic engine", e.Configured)
}

// OccursCheckError is returned when a would-be solution-map entry x ↦ t
// fails the occurs check (x occurs in t), which would close a cycle.
type OccursCheckError struct {
	Var string
}

// Error implements the error interface.
func (e *OccursCheckError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs on the right-hand side of its own solution", e.Var)
}
