package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var ErrInvalidSpectraRef = errors.New("invalid spectra_ref")

var spectraRefPattern = regexp.MustCompile(`^ms_run\[(\d+)\]:(.+)$`)

// SpectraRef points at one spectrum of an ms_run by its native id.
type SpectraRef struct {
	MsRun     int
	Reference string
}

// String renders ms_run[n]:{reference}
func (r SpectraRef) String() string {
	return fmt.Sprintf("ms_run[%d]:%s", r.MsRun, r.Reference)
}

// SpectraRefList is a '|' separated list of spectra references.
type SpectraRefList []SpectraRef

// String renders the list joined by '|'
func (l SpectraRefList) String() string {
	parts := make([]string, len(l))
	for i, r := range l {
		parts[i] = r.String()
	}
	return strings.Join(parts, "|")
}

// ParseSpectraRefList parses ms_run[n]:{id} entries joined by '|'. Whether
// each ms_run exists is a metadata question left to the caller.
func ParseSpectraRefList(s string) (SpectraRefList, error) {
	var list SpectraRefList
	for _, item := range strings.Split(strings.TrimSpace(s), "|") {
		m := spectraRefPattern.FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSpectraRef, item)
		}
		id, err := strconv.Atoi(m[1])
		if err != nil || id < 1 {
			return nil, fmt.Errorf("%w: ms_run id in %q", ErrInvalidSpectraRef, item)
		}
		list = append(list, SpectraRef{MsRun: id, Reference: m[2]})
	}
	return list, nil
}
