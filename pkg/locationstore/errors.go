package locationstore

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidData   = errors.New("invalid location data")
	ErrDuplicateName = errors.New("duplicate location name")
	ErrNotFound      = errors.New("location not found")
)

// InvalidDataError describes a record that cannot be loaded. Index is the
// position of the record in its source sequence.
type InvalidDataError struct {
	Index  int
	Name   string
	Reason string
}

func (e *InvalidDataError) Error() string {
	if e.Name == "" {
		return fmt.Sprintf("record %d: %s", e.Index, e.Reason)
	}
	return fmt.Sprintf("record %d (%q): %s", e.Index, e.Name, e.Reason)
}

func (e *InvalidDataError) Unwrap() error { return ErrInvalidData }

type DuplicateNameError struct {
	Name  string
	First int
	Again int
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("location %q appears at records %d and %d", e.Name, e.First, e.Again)
}

func (e *DuplicateNameError) Unwrap() error { return ErrDuplicateName }

type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("location %q not found", e.Name)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
