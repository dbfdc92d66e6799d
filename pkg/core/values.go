package core

import (
	"errors"
	"fmt"
	"math"
	"net/mail"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

// Null is the token written for an empty cell.
const Null = "null"

var (
	ErrInvalidInteger     = errors.New("invalid integer")
	ErrInvalidDouble      = errors.New("invalid number")
	ErrInvalidList        = errors.New("invalid list")
	ErrInvalidBoolean     = errors.New("invalid boolean")
	ErrInvalidURI         = errors.New("invalid URI")
	ErrInvalidEmail       = errors.New("invalid email")
	ErrInvalidGOTerm      = errors.New("invalid GO term")
	ErrInvalidPublication = errors.New("invalid publication")
	ErrInvalidReliability = errors.New("invalid reliability")
)

var goTermPattern = regexp.MustCompile(`^GO:\d+$`)

// IsNull reports whether a cell holds the null token or nothing at all.
func IsNull(s string) bool {
	s = strings.TrimSpace(s)
	return s == "" || strings.EqualFold(s, Null)
}

// ParseInteger parses a base 10 integer.
func ParseInteger(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidInteger, s)
	}
	return n, nil
}

// ParseDouble parses a number independent of locale. NaN and INF are accepted.
func ParseDouble(s string) (float64, error) {
	s = strings.TrimSpace(s)
	switch strings.ToUpper(s) {
	case "NAN":
		return math.NaN(), nil
	case "INF", "+INF":
		return math.Inf(1), nil
	case "-INF":
		return math.Inf(-1), nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDouble, s)
	}
	return v, nil
}

// FormatDouble renders a number the way ParseDouble reads it back.
func FormatDouble(v float64) string {
	switch {
	case math.IsNaN(v):
		return "NaN"
	case math.IsInf(v, 1):
		return "INF"
	case math.IsInf(v, -1):
		return "-INF"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// DoubleList is a '|' separated list of numbers.
type DoubleList []float64

// String renders the list joined by '|'
func (l DoubleList) String() string {
	parts := make([]string, len(l))
	for i, v := range l {
		parts[i] = FormatDouble(v)
	}
	return strings.Join(parts, "|")
}

// ParseDoubleList parses a '|' separated list of numbers; one bad element
// invalidates the list.
func ParseDoubleList(s string) (DoubleList, error) {
	var list DoubleList
	for _, item := range strings.Split(s, "|") {
		v, err := ParseDouble(item)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidList, err)
		}
		list = append(list, v)
	}
	return list, nil
}

// StringList is a list of strings with its separator.
type StringList struct {
	Sep   byte
	Items []string
}

// String renders the list joined by its separator
func (l StringList) String() string {
	return strings.Join(l.Items, string(l.Sep))
}

// ParseStringList splits s on sep. Empty elements invalidate the list.
func ParseStringList(s string, sep byte) (StringList, error) {
	list := StringList{Sep: sep}
	for _, item := range strings.Split(s, string(sep)) {
		item = strings.TrimSpace(item)
		if item == "" {
			return StringList{Sep: sep}, fmt.Errorf("%w: %q has an empty element", ErrInvalidList, s)
		}
		list.Items = append(list.Items, item)
	}
	return list, nil
}

// ParseGOTermList parses a '|' separated list of GO:nnnnnnn accessions.
func ParseGOTermList(s string) (StringList, error) {
	list, err := ParseStringList(s, '|')
	if err != nil {
		return list, err
	}
	for _, item := range list.Items {
		if !goTermPattern.MatchString(item) {
			return StringList{Sep: '|'}, fmt.Errorf("%w: %q", ErrInvalidGOTerm, item)
		}
	}
	return list, nil
}

// ParseMZBoolean accepts 0, 1, true and false in any case.
func ParseMZBoolean(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true":
		return true, nil
	case "0", "false":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q", ErrInvalidBoolean, s)
}

// FormatMZBoolean renders a boolean as 1 or 0.
func FormatMZBoolean(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// ParseURI checks s with permissive URI syntax. Callers report a failure as
// a warning rather than rejecting the value.
func ParseURI(s string) (*url.URL, error) {
	s = strings.TrimSpace(s)
	u, err := url.Parse(s)
	if err != nil || s == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURI, s)
	}
	if u.Scheme == "" && u.Opaque == "" && u.Path == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidURI, s)
	}
	return u, nil
}

// ParseEmail checks a single address.
func ParseEmail(s string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, s)
	}
	return addr.Address, nil
}

// Reliability is the 1 (high) to 3 (poor) identification reliability.
type Reliability int

const (
	ReliabilityHigh   Reliability = 1
	ReliabilityMedium Reliability = 2
	ReliabilityPoor   Reliability = 3
)

// ParseReliability accepts 1, 2 or 3.
func ParseReliability(s string) (Reliability, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 || n > 3 {
		return 0, fmt.Errorf("%w: %q", ErrInvalidReliability, s)
	}
	return Reliability(n), nil
}

// PublicationType is the kind of a publication identifier.
type PublicationType string

const (
	PublicationPubmed PublicationType = "pubmed"
	PublicationDOI    PublicationType = "doi"
)

// PublicationItem is one pubmed or doi reference.
type PublicationItem struct {
	Type      PublicationType
	Accession string
}

// String renders the item as type:accession
func (p PublicationItem) String() string {
	return string(p.Type) + ":" + p.Accession
}

// ParsePublication parses pubmed:{id}|doi:{id} items.
func ParsePublication(s string) ([]PublicationItem, error) {
	var items []PublicationItem
	for _, part := range strings.Split(s, "|") {
		part = strings.TrimSpace(part)
		kind, acc, ok := strings.Cut(part, ":")
		acc = strings.TrimSpace(acc)
		if !ok || acc == "" {
			return nil, fmt.Errorf("%w: %q", ErrInvalidPublication, part)
		}
		switch PublicationType(strings.ToLower(strings.TrimSpace(kind))) {
		case PublicationPubmed:
			items = append(items, PublicationItem{Type: PublicationPubmed, Accession: acc})
		case PublicationDOI:
			items = append(items, PublicationItem{Type: PublicationDOI, Accession: acc})
		default:
			return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidPublication, kind)
		}
	}
	return items, nil
}

// FormatPublication joins items with '|'.
func FormatPublication(items []PublicationItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = item.String()
	}
	return strings.Join(parts, "|")
}
