//
// Copyright (c) 2026 Markku Rossi
//
// All rights reserved.
//

// Package mpcerr defines the error taxonomy of the MPC engine. Errors
// are classified with marks so that the classification survives
// wrapping with additional context.
package mpcerr

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"
)

// Error classes.
var (
	// ErrArithmetic is raised when a value cannot be represented in
	// the selected field or when shares are inconsistent.
	ErrArithmetic = errors.New("arithmetic error")

	// ErrAddressing is raised when a step or record is misused:
	// invalid narrowing, duplicate message, or a record outside the
	// channel bounds. It always aborts the owning query.
	ErrAddressing = errors.New("addressing error")

	// ErrConnectivity is raised when a peer link is lost, times out,
	// or the peer aborts the query.
	ErrConnectivity = errors.New("connectivity error")

	// ErrCancelled is raised when the query is cancelled by its
	// caller.
	ErrCancelled = errors.New("query cancelled")
)

// Kind identifies an error class.
type Kind byte

// Error kinds.
const (
	KindInternal Kind = iota
	KindArithmetic
	KindAddressing
	KindConnectivity
	KindCancelled
)

var kindNames = map[Kind]string{
	KindInternal:     "internal",
	KindArithmetic:   "arithmetic",
	KindAddressing:   "addressing",
	KindConnectivity: "connectivity",
	KindCancelled:    "cancelled",
}

func (k Kind) String() string {
	name, ok := kindNames[k]
	if ok {
		return name
	}
	return fmt.Sprintf("{Kind 0x%x}", byte(k))
}

// Arithmeticf creates a new arithmetic error.
func Arithmeticf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrArithmetic)
}

// Addressingf creates a new addressing error.
func Addressingf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrAddressing)
}

// Connectivityf creates a new connectivity error.
func Connectivityf(format string, args ...interface{}) error {
	return errors.Mark(errors.Newf(format, args...), ErrConnectivity)
}

// Connectivity marks the cause as a connectivity error.
func Connectivity(cause error, format string, args ...interface{}) error {
	return errors.Mark(errors.Wrapf(cause, format, args...), ErrConnectivity)
}

// Cancelled marks the cause as a cancellation.
func Cancelled(cause error) error {
	if cause == nil {
		cause = context.Canceled
	}
	return errors.Mark(cause, ErrCancelled)
}

// KindOf classifies the error. Context cancellation and deadline
// expiry classify as cancellation unless the error already carries a
// more specific class.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return KindInternal
	case errors.Is(err, ErrArithmetic):
		return KindArithmetic
	case errors.Is(err, ErrAddressing):
		return KindAddressing
	case errors.Is(err, ErrConnectivity):
		return KindConnectivity
	case errors.Is(err, ErrCancelled),
		errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded):
		return KindCancelled
	default:
		return KindInternal
	}
}

// FromKind creates an error of the argument kind. It is used to
// rebuild errors that crossed a process boundary.
func FromKind(kind Kind, msg string) error {
	err := errors.Newf("%s", msg)
	switch kind {
	case KindArithmetic:
		return errors.Mark(err, ErrArithmetic)
	case KindAddressing:
		return errors.Mark(err, ErrAddressing)
	case KindConnectivity:
		return errors.Mark(err, ErrConnectivity)
	case KindCancelled:
		return errors.Mark(err, ErrCancelled)
	default:
		return err
	}
}

// Retryable reports whether a caller may retry the query on a fresh
// set of helpers.
func Retryable(err error) bool {
	return KindOf(err) == KindConnectivity
}
