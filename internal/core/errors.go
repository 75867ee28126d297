package core

import "fmt"

// LoadError reports that a record source could not be read or parsed.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("load records from %s: %v", e.Source, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// InvalidFilterError reports a filter value that cannot be parsed.
type InvalidFilterError struct {
	Field string
	Value string
	Err   error
}

func (e *InvalidFilterError) Error() string {
	return fmt.Sprintf("invalid %s filter %q: %v", e.Field, e.Value, e.Err)
}

func (e *InvalidFilterError) Unwrap() error { return e.Err }
