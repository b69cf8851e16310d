package config

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupportedFormat is returned when no parser is available for a Format.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrLoaderFinished is returned by every Loader method after Finish.
	ErrLoaderFinished = errors.New("loader already finished")
	// ErrInvalidSchema is returned when a schema type or schema option is malformed.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrUnknownField is returned for paths and document keys that match no schema field.
	ErrUnknownField = errors.New("unknown field")
	// ErrNumberRange is returned when a document number does not fit the field type.
	ErrNumberRange = errors.New("number does not fit field type")
	// ErrMissingFields is matched by every *MissingFieldsError.
	ErrMissingFields = errors.New("missing required properties")
)

// SourceError reports a failure to produce a partial from a source: an I/O or
// network failure, or content that does not decode into the schema.
type SourceError struct {
	Location Location
	// Format is zero for sources that are not documents.
	Format Format
	Err    error
}

func (e *SourceError) Error() string {
	if e.Format == 0 {
		return fmt.Sprintf("error loading config from %s: %v", e.Location, e.Err)
	}

	return fmt.Sprintf("%s error loading config from %s: %v", strings.ToUpper(e.Format.String()), e.Location, e.Err)
}

func (e *SourceError) Unwrap() error {
	return e.Err
}

// ParseError reports a string that could not be parsed into a field's type.
type ParseError struct {
	// Field is the dotted path of the field, e.g. "database.port".
	Field string
	// Key is the environment variable or flag the value came from, if any.
	Key string
	// Value is the raw string. Error() does not print it.
	Value string
	Err   error
}

func (e *ParseError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("error parsing value for field %s: %v", e.Field, e.Err)
	}

	return fmt.Sprintf("error parsing %s for field %s: %v", e.Key, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MergeError reports a failing custom merge function.
type MergeError struct {
	// Field is the dotted path of the merged field.
	Field string
	Err   error
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("error merging config field %s: %v", e.Field, e.Err)
}

func (e *MergeError) Unwrap() error {
	return e.Err
}

// MissingFieldsError lists every required field that has no value after all
// sources were merged. Paths are in schema declaration order, depth first.
type MissingFieldsError struct {
	Paths []string
}

func (e *MissingFieldsError) Error() string {
	var builder strings.Builder

	builder.WriteString("missing required properties in finished config:")

	for _, path := range e.Paths {
		builder.WriteString("\n  - ")
		builder.WriteString(path)
	}

	return builder.String()
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrMissingFields
}
