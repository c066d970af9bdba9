// Package errors provides error handling for graphfit.
//
// This package re-exports github.com/cockroachdb/errors, providing:
//   - Stack traces for debugging
//   - Error wrapping and context
//   - Structured error inspection via Is/As
//
// Usage:
//
//	// Create new error
//	err := errors.New("something went wrong")
//
//	// Wrap with context
//	if err := doSomething(); err != nil {
//	    return errors.Wrap(err, "failed to do something")
//	}
//
//	// Check errors
//	if errors.Is(err, errors.ErrSingular) {
//	    // degrade to NaN at the display boundary
//	}
//
// For full documentation see: https://pkg.go.dev/github.com/cockroachdb/errors
package errors

import (
	crdb "github.com/cockroachdb/errors"
)

// Core error creation and wrapping
var (
	New          = crdb.New
	Newf         = crdb.Newf
	Wrap         = crdb.Wrap
	Wrapf        = crdb.Wrapf
	WithStack    = crdb.WithStack
	WithMessage  = crdb.WithMessage
	WithMessagef = crdb.WithMessagef
)

// User-facing messages and details
var (
	WithHint    = crdb.WithHint
	WithHintf   = crdb.WithHintf
	WithDetail  = crdb.WithDetail
	WithDetailf = crdb.WithDetailf
)

// Error inspection
var (
	Is        = crdb.Is
	IsAny     = crdb.IsAny
	As        = crdb.As
	Unwrap    = crdb.Unwrap
	UnwrapAll = crdb.UnwrapAll
)

// Assertions
var (
	AssertionFailedf = crdb.AssertionFailedf
)

// Sentinel errors for use across graphfit.
// Use these with errors.Is() for type-safe error checking.
// Wrap these with errors.Wrap() to add context while preserving the type.
var (
	// ErrMissingMessage indicates a variable touched by a factor has no
	// message in the supplied distribution mapping. Structural precondition
	// violation: the graph is malformed, fail hard.
	ErrMissingMessage = New("no message for variable")

	// ErrUnknownFactor indicates a factor was requested that is not part of
	// the approximation's factor graph.
	ErrUnknownFactor = New("factor not in graph")

	// ErrShapeMismatch indicates vector or array dimensions disagree.
	ErrShapeMismatch = New("shape mismatch")

	// ErrFamilyMismatch indicates two messages of different distribution
	// families were combined.
	ErrFamilyMismatch = New("message family mismatch")

	// ErrSingular indicates a numerically degenerate computation: an
	// improper (zero-precision) product, a non-positive-definite matrix, or
	// a singular operator. Callers needing robustness should catch this and
	// substitute a sentinel value rather than abort the run.
	ErrSingular = New("singular or improper distribution")

	// ErrNoSuccesses indicates a factor history was queried for its latest
	// successful approximation before any success was recorded.
	ErrNoSuccesses = New("no successful optimisations recorded")

	// ErrInsufficientHistory indicates a divergence metric was requested
	// with fewer than two successful approximations recorded.
	ErrInsufficientHistory = New("fewer than two successful optimisations recorded")
)

// IsSingular checks if an error is or wraps ErrSingular
func IsSingular(err error) bool {
	return err != nil && Is(err, ErrSingular)
}

// IsPrecondition checks if an error is one of the hard structural failures:
// a missing message, an unknown factor or a shape mismatch. These indicate a
// malformed graph and should never be silently substituted.
func IsPrecondition(err error) bool {
	return err != nil && IsAny(err, ErrMissingMessage, ErrUnknownFactor, ErrShapeMismatch)
}
