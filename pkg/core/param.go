package core

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidParam     = errors.New("invalid parameter")
	ErrInvalidParamList = errors.New("invalid parameter list")
)

// Param is a controlled vocabulary parameter or, when Label and Accession
// are both empty, a user parameter.
type Param struct {
	Label     string
	Accession string
	Name      string
	Value     string
}

// NewCVParam builds a controlled vocabulary parameter.
func NewCVParam(label, accession, name, value string) Param {
	return Param{
		Label:     strings.TrimSpace(label),
		Accession: strings.TrimSpace(accession),
		Name:      cleanName(name),
		Value:     cleanValue(value),
	}
}

// NewUserParam builds a user parameter.
func NewUserParam(name, value string) Param {
	return Param{
		Name:  cleanName(name),
		Value: cleanValue(value),
	}
}

func cleanName(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, `"`, ""))
}

// cleanValue strips the characters reserved by the parameter syntax.
func cleanValue(s string) string {
	s = strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', ',', '[', ']':
			return -1
		}
		return r
	}, s)
	return strings.TrimSpace(s)
}

// IsCV reports whether p carries an ontology reference. A label without an
// accession is tolerated as a CV parameter.
func (p Param) IsCV() bool {
	return p.Label != "" || p.Accession != ""
}

// IsZero reports whether p is the zero parameter
func (p Param) IsZero() bool {
	return p == Param{}
}

// Equal compares CV parameters by accession only and user parameters by
// name and value.
func (p Param) Equal(o Param) bool {
	if p.IsCV() != o.IsCV() {
		return false
	}
	if p.IsCV() {
		return p.Accession == o.Accession
	}
	return p.Name == o.Name && p.Value == o.Value
}

// String renders the parameter as [label, accession, name, value].
func (p Param) String() string {
	return fmt.Sprintf("[%s, %s, %s, %s]", p.Label, p.Accession, quoteParamText(p.Name), quoteParamText(p.Value))
}

func quoteParamText(s string) string {
	if strings.ContainsAny(s, `,"[]`) {
		return `"` + strings.ReplaceAll(s, `"`, "") + `"`
	}
	return s
}

// ParseParam parses [label, accession, name, value].
func ParseParam(s string) (Param, error) {
	s = strings.TrimSpace(s)
	if len(s) < 2 || s[0] != '[' || s[len(s)-1] != ']' {
		return Param{}, fmt.Errorf("%w: %q is not enclosed in brackets", ErrInvalidParam, s)
	}
	items := splitOutsideQuotes(s[1:len(s)-1], ',')
	if len(items) != 4 {
		return Param{}, fmt.Errorf("%w: %q has %d items, expected 4", ErrInvalidParam, s, len(items))
	}
	for i := range items {
		items[i] = unquote(strings.TrimSpace(items[i]))
	}
	if items[2] == "" {
		return Param{}, fmt.Errorf("%w: %q has no name", ErrInvalidParam, s)
	}
	if items[0] == "" && items[1] == "" {
		return NewUserParam(items[2], items[3]), nil
	}
	return NewCVParam(items[0], items[1], items[2], items[3]), nil
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}

// splitOutsideQuotes splits s on sep, ignoring separators inside double quotes.
func splitOutsideQuotes(s string, sep byte) []string {
	var parts []string
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			inQuote = !inQuote
		case sep:
			if !inQuote {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	return append(parts, s[start:])
}

// splitOutsideBrackets splits s on sep, ignoring separators inside [...]
// and inside double quotes.
func splitOutsideBrackets(s string, sep byte) []string {
	var parts []string
	depth := 0
	inQuote := false
	start := 0
	for i := 0; i < len(s); i++ {
		switch c := s[i]; {
		case c == '"':
			inQuote = !inQuote
		case inQuote:
		case c == '[':
			depth++
		case c == ']':
			if depth > 0 {
				depth--
			}
		case c == sep && depth == 0:
			parts = append(parts, s[start:i])
			start = i + 1
		}
	}
	return append(parts, s[start:])
}

// ParamList is a '|' separated list of parameters.
type ParamList []Param

// String renders the list joined by '|'
func (l ParamList) String() string {
	parts := make([]string, len(l))
	for i, p := range l {
		parts[i] = p.String()
	}
	return strings.Join(parts, "|")
}

// Contains reports whether the list holds a parameter equal to p
func (l ParamList) Contains(p Param) bool {
	for _, q := range l {
		if q.Equal(p) {
			return true
		}
	}
	return false
}

// ParseParamList parses a '|' separated list. One malformed element
// invalidates the whole list.
func ParseParamList(s string) (ParamList, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidParamList)
	}
	var list ParamList
	for _, item := range splitOutsideBrackets(s, '|') {
		p, err := ParseParam(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidParamList, err)
		}
		list = append(list, p)
	}
	return list, nil
}
