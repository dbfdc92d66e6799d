package mzerror

import (
	"errors"
	"fmt"
	"io"
)

// DefaultMaxCount is the default capacity of a List
const DefaultMaxCount = 300

// ErrOverflow is returned by List.Add when an error would exceed the capacity.
var ErrOverflow = errors.New("mzerror: too many errors")

// List collects errors at or above a minimum level, up to a maximum count.
// A List belongs to a single parse and is not safe for concurrent use.
type List struct {
	maxCount int
	level    Level
	items    []*Error
}

// NewList creates a list. Errors below level are dropped on insertion.
func NewList(maxCount int, level Level) *List {
	if maxCount <= 0 {
		maxCount = DefaultMaxCount
	}
	return &List{
		maxCount: maxCount,
		level:    level,
	}
}

// Add appends e if its level qualifies. It returns ErrOverflow, without
// storing e, when the list already holds maxCount errors.
func (l *List) Add(e *Error) error {
	if e == nil || e.Level() < l.level {
		return nil
	}
	if len(l.items) >= l.maxCount {
		return ErrOverflow
	}
	l.items = append(l.items, e)
	return nil
}

// Len returns the number of stored errors
func (l *List) Len() int {
	return len(l.items)
}

// IsEmpty reports whether no qualifying error was stored
func (l *List) IsEmpty() bool {
	return len(l.items) == 0
}

// Items returns the stored errors in insertion order
func (l *List) Items() []*Error {
	return l.items
}

// Level returns the minimum level accepted by the list
func (l *List) Level() Level {
	return l.level
}

// MaxCount returns the capacity of the list
func (l *List) MaxCount() int {
	return l.maxCount
}

// CountByType returns how many stored errors have type t.
func (l *List) CountByType(t *Type) int {
	n := 0
	for _, e := range l.items {
		if e.Type == t {
			n++
		}
	}
	return n
}

// Print writes one error per line.
func (l *List) Print(w io.Writer) error {
	for _, e := range l.items {
		if _, err := fmt.Fprintln(w, e.Error()); err != nil {
			return err
		}
	}
	return nil
}
