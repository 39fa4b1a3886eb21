package goeiscore

import (
	"fmt"
	"strings"
)

// GrammarError reports malformed circuit text, such as an unknown element
// tag or an empty element token.
type GrammarError struct {
	Token  string
	Reason string
}

func (e *GrammarError) Error() string {
	if e.Token == "" {
		return "circuit grammar: " + e.Reason
	}
	return fmt.Sprintf("circuit grammar: %s in %q", e.Reason, e.Token)
}

// DomainError reports an element parameter outside its valid range, detected
// while evaluating an impedance.
type DomainError struct {
	Key    string
	Reason string
}

func (e *DomainError) Error() string {
	return fmt.Sprintf("element %s: %s", e.Key, e.Reason)
}

// BoundsError reports an initial guess that lies outside the bounds the
// parameter codec derives for it.
type BoundsError struct {
	Key   string
	Value float64
	Lower float64
	Upper float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("parameter %s: initial value %g outside bounds [%g, %g]", e.Key, e.Value, e.Lower, e.Upper)
}

// ConvergenceError reports a least-squares run that did not reach a usable
// optimum.
type ConvergenceError struct {
	Status string
	Err    error
}

func (e *ConvergenceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("fit did not converge (%s): %v", e.Status, e.Err)
	}
	return "fit did not converge: " + e.Status
}

func (e *ConvergenceError) Unwrap() error { return e.Err }

// ModelFailure records one candidate circuit that could not be fitted.
type ModelFailure struct {
	Circuit string
	Err     error
}

// AllModelsFailedError is returned by BestModel when not a single candidate
// produced a fit. It carries every candidate's failure.
type AllModelsFailedError struct {
	Failures []ModelFailure
}

func (e *AllModelsFailedError) Error() string {
	var b strings.Builder
	b.WriteString("all models failed to fit:")
	for _, f := range e.Failures {
		fmt.Fprintf(&b, "\n  - %s: %v", f.Circuit, f.Err)
	}
	return b.String()
}
