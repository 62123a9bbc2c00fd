package parser

import (
	"errors"
	"fmt"

	"cppbind/pkg/token"
)

// ErrorType classifies parser failures
type ErrorType string

const (
	ErrorTypeBacktrack ErrorType = "backtrack"
	ErrorTypeFatal     ErrorType = "fatal"
)

// ErrEndOfInput signals that the token stream ran out inside a production.
// It propagates to the translation unit loop, which ends the parse.
var ErrEndOfInput = token.ErrEndOfInput

var errUnbalancedNesting = errors.New("unbalanced template argument brackets")

// BacktrackError reports that a production does not match the input. The
// caller that saved a mark restores it and either tries an alternative or
// returns the error to its own caller.
type BacktrackError struct {
	Type       ErrorType
	Production string
	Message    string
	Offset     int
	EndOffset  int
	Line       int
	Column     int
	File       string
}

func newBacktrack(production string, at token.Token, message string) *BacktrackError {
	return &BacktrackError{
		Type:       ErrorTypeBacktrack,
		Production: production,
		Message:    message,
		Offset:     at.Offset,
		EndOffset:  at.EndOffset,
		Line:       at.Line,
		Column:     at.Column,
		File:       at.File,
	}
}

// WithMessage replaces the problem description
func (e *BacktrackError) WithMessage(message string) *BacktrackError {
	e.Message = message
	return e
}

// Error implements the error interface
func (e *BacktrackError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "syntax error"
	}
	if e.File != "" {
		return fmt.Sprintf("%s:%d:%d: %s (in %s)", e.File, e.Line, e.Column, msg, e.Production)
	}
	return fmt.Sprintf("%d:%d: %s (in %s)", e.Line, e.Column, msg, e.Production)
}

// HasProblem reports whether the failure carries a description. Failures
// without one come from a structural precondition and rank last when
// several alternatives fail.
func (e *BacktrackError) HasProblem() bool {
	return e.Message != ""
}

// FatalError aborts the parse of the whole unit
type FatalError struct {
	Type       ErrorType
	Production string
	Underlying error
}

// NewFatalError creates a fatal error raised inside production
func NewFatalError(production string, err error) *FatalError {
	return &FatalError{
		Type:       ErrorTypeFatal,
		Production: production,
		Underlying: err,
	}
}

// Error implements the error interface
func (e *FatalError) Error() string {
	return fmt.Sprintf("fatal parse error in %s: %v", e.Production, e.Underlying)
}

// Unwrap returns the underlying error for errors.Is/As
func (e *FatalError) Unwrap() error {
	return e.Underlying
}

// IsBacktrack reports whether err is a recoverable production mismatch
func IsBacktrack(err error) bool {
	var bt *BacktrackError
	return errors.As(err, &bt)
}

// IsEndOfInput reports whether err signals an exhausted token stream
func IsEndOfInput(err error) bool {
	return errors.Is(err, ErrEndOfInput)
}

// IsFatal reports whether err must abort the parse
func IsFatal(err error) bool {
	var fe *FatalError
	return errors.As(err, &fe)
}

// pickFailure returns the failure to surface after every alternative of a
// union failed: the earliest one that carries a problem, else the first.
func pickFailure(failures []error) error {
	for _, err := range failures {
		var bt *BacktrackError
		if errors.As(err, &bt) && bt.HasProblem() {
			return err
		}
	}
	for _, err := range failures {
		if err != nil {
			return err
		}
	}
	return nil
}
