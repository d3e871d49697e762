package docx

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPackage is returned when the input is not a readable ZIP/OPC
	// container.
	ErrInvalidPackage = errors.New("invalid package")

	// ErrUnreadableDocument is returned when the package has no main document
	// part or its body cannot be parsed.
	ErrUnreadableDocument = errors.New("unreadable document")

	// ErrEmptyInput is returned by encode when the input is empty or exceeds
	// the configured size ceiling.
	ErrEmptyInput = errors.New("empty or oversized input")

	// ErrPartNotFound is returned when a requested part does not exist.
	ErrPartNotFound = errors.New("part not found")
)

// PartError records a failure to read or parse a single package part.
type PartError struct {
	Op   string
	Part string
	Err  error
}

func (e *PartError) Error() string {
	return fmt.Sprintf("docx: %s %s: %v", e.Op, e.Part, e.Err)
}

func (e *PartError) Unwrap() error {
	return e.Err
}
