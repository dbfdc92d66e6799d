// Package mzerror provides the typed error catalog and the bounded error
// list used while reading and checking mzTab files.
package mzerror

import (
	"fmt"
	"strings"
)

// Level is the severity of an error type.
type Level int

const (
	LevelInfo Level = iota
	LevelWarn
	LevelError
)

// String returns the display name of the level
func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "Info"
	case LevelWarn:
		return "Warn"
	case LevelError:
		return "Error"
	default:
		return "Unknown"
	}
}

// ParseLevel converts a case-insensitive level name to a Level.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	default:
		return LevelError, fmt.Errorf("unknown error level %q, expected Info, Warn or Error", s)
	}
}

// Category classifies what kind of check produced an error.
type Category int

const (
	// CategoryFormat covers single fields with invalid syntax
	CategoryFormat Category = iota
	// CategoryLogical covers syntactically valid fields that contradict
	// the metadata or other fields
	CategoryLogical
	// CategoryCrossCheck is reserved for checks against external reference data
	CategoryCrossCheck
)

// String returns the display name of the category
func (c Category) String() string {
	switch c {
	case CategoryFormat:
		return "Format"
	case CategoryLogical:
		return "Logical"
	case CategoryCrossCheck:
		return "CrossCheck"
	default:
		return "Unknown"
	}
}

// Type is one catalog entry. Level is fixed per type, never per occurrence.
type Type struct {
	Code     int
	Name     string
	Category Category
	Level    Level
	Template string
}

// Error is a single reported problem.
type Error struct {
	Type    *Type
	Line    int // -1 when not tied to a line
	Message string
}

// New formats a catalog entry into an Error. Use line -1 for file-level errors.
func New(t *Type, line int, args ...any) *Error {
	return &Error{
		Type:    t,
		Line:    line,
		Message: fmt.Sprintf(t.Template, args...),
	}
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("[%s-%d] %s", e.Type.Level, e.Type.Code, e.Message)
	}
	return fmt.Sprintf("[%s-%d] line %d: %s", e.Type.Level, e.Type.Code, e.Line, e.Message)
}

// Level returns the severity of the error's type
func (e *Error) Level() Level {
	return e.Type.Level
}

// FatalError signals a structural precondition failure that stops the parse.
type FatalError struct {
	Err *Error
}

// Fatal builds a FatalError from a catalog entry.
func Fatal(t *Type, line int, args ...any) *FatalError {
	return &FatalError{Err: New(t, line, args...)}
}

// Error implements the error interface
func (f *FatalError) Error() string {
	return "fatal: " + f.Err.Error()
}

// Unwrap returns the underlying catalog error
func (f *FatalError) Unwrap() error {
	return f.Err
}
