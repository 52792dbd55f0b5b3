package qurro

import (
	"errors"
	"fmt"

	"github.com/cameronmartino/qurro/engine"
	"github.com/cameronmartino/qurro/metadata"
	"github.com/cameronmartino/qurro/model"
)

var (
	// ErrNilTable is returned when New is given a nil abundance table.
	ErrNilTable = errors.New("abundance table must not be nil")
	// ErrNilIndex is returned when New is given a nil metadata index.
	ErrNilIndex = errors.New("metadata index must not be nil")
	// ErrClosed is returned when an event is submitted after Close.
	ErrClosed = errors.New("session closed")
	// ErrUnknownFeature is returned when a click names a feature id absent
	// from the metadata index.
	ErrUnknownFeature = errors.New("unknown feature")
)

// QuerySyntaxError indicates a malformed query expression.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type QuerySyntaxError struct {
	Pos   int
	Token string
	cause error
}

func (e *QuerySyntaxError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("query syntax error at offset %d", e.Pos)
	}
	return fmt.Sprintf("query syntax error at offset %d near %q", e.Pos, e.Token)
}

func (e *QuerySyntaxError) Unwrap() error { return e.cause }

// QueryFieldError indicates an unrecognized field name, or an operator the
// field's type does not support.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type QueryFieldError struct {
	Field string
	cause error
}

func (e *QueryFieldError) Error() string {
	return fmt.Sprintf("query references unusable field %q", e.Field)
}

func (e *QueryFieldError) Unwrap() error { return e.cause }

// GroupEmptyError indicates a selection that resolved to zero features; no
// computation is attempted and the prior Ready state is preserved.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type GroupEmptyError struct {
	Slot  model.Slot
	cause error
}

func (e *GroupEmptyError) Error() string {
	return fmt.Sprintf("%s selection is empty", e.Slot)
}

func (e *GroupEmptyError) Unwrap() error { return e.cause }

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var se *metadata.SyntaxError
	if errors.As(err, &se) {
		return &QuerySyntaxError{Pos: se.Pos, Token: se.Token, cause: err}
	}
	var fe *metadata.FieldError
	if errors.As(err, &fe) {
		return &QueryFieldError{Field: fe.Field, cause: err}
	}
	var ge *engine.GroupEmptyError
	if errors.As(err, &ge) {
		return &GroupEmptyError{Slot: ge.Slot, cause: err}
	}
	if errors.Is(err, engine.ErrUnknownFeature) {
		return fmt.Errorf("%w: %w", ErrUnknownFeature, err)
	}

	return err
}
