package datasource

import "fmt"

// NetworkError is returned when the dataset could not be fetched.
type NetworkError struct {
	Source string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ParseError is returned when the fetched document is not a dataset.
type ParseError struct {
	Format string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s dataset: %v", e.Format, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
