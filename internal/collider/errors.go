package collider

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedInput means the collider file as a whole could not be read.
	ErrMalformedInput = errors.New("malformed collider input")
	// ErrMalformedRecord means one element is not an object or has mistyped fields.
	ErrMalformedRecord = errors.New("malformed collider record")
	// ErrNilDescriptor is a typed nil such as (*Box)(nil).
	ErrNilDescriptor = errors.New("nil collider descriptor")
)

type UnknownShapeError struct {
	Shape string
}

func (e *UnknownShapeError) Error() string {
	return fmt.Sprintf("unknown collider shape %q", e.Shape)
}

// MissingFieldError reports a field a shape requires but the record lacks.
type MissingFieldError struct {
	Shape string
	Field string
}

func (e *MissingFieldError) Error() string {
	if e.Shape == "" {
		return fmt.Sprintf("missing field %s", e.Field)
	}
	return fmt.Sprintf("missing field %s for %s", e.Field, e.Shape)
}

type InvalidGeometryError struct {
	Field  string
	Reason string
}

func (e *InvalidGeometryError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Warning is a per-record failure that did not stop the batch.
type Warning struct {
	Index int
	Name  string
	Err   error
}

func (w Warning) Error() string {
	if w.Name == "" {
		return fmt.Sprintf("collider %d: %v", w.Index, w.Err)
	}
	return fmt.Sprintf("collider %d (%s): %v", w.Index, w.Name, w.Err)
}

func (w Warning) Unwrap() error { return w.Err }
