package mztab

import "github.com/ChrisMcGann/mztab/pkg/mzerror"

// reporter feeds one parse's error list. Once the list overflows, err holds
// mzerror.ErrOverflow and later reports are ignored.
type reporter struct {
	list *mzerror.List
	err  error
}

func (r *reporter) add(t *mzerror.Type, line int, args ...any) {
	if r.err != nil {
		return
	}
	if err := r.list.Add(mzerror.New(t, line, args...)); err != nil {
		r.err = err
	}
}

// fatal appends a structural error and returns it as a *mzerror.FatalError,
// or returns the overflow signal if the list is already full.
func (r *reporter) fatal(t *mzerror.Type, line int, args ...any) error {
	f := mzerror.Fatal(t, line, args...)
	if err := r.list.Add(f.Err); err != nil {
		r.err = err
		return err
	}
	return f
}
