package core

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	ErrInvalidModification = errors.New("invalid modification")
	ErrChemModAccession    = errors.New("CHEMMOD accession is neither a signed mass delta nor a chemical formula")
)

// ModificationType is the accession namespace of a modification.
type ModificationType int

const (
	// ModNone is the "0" entry: no modification
	ModNone ModificationType = iota
	ModMOD
	ModUNIMOD
	ModCHEMMOD
	ModSUBST
	// ModNeutralLoss is a neutral loss reported without a modification
	ModNeutralLoss
)

// Prefix returns the accession prefix written before the colon
func (t ModificationType) Prefix() string {
	switch t {
	case ModMOD:
		return "MOD"
	case ModUNIMOD:
		return "UNIMOD"
	case ModCHEMMOD:
		return "CHEMMOD"
	case ModSUBST:
		return "SUBST"
	}
	return ""
}

// String returns the type name
func (t ModificationType) String() string {
	switch t {
	case ModNone:
		return "UNKNOWN"
	case ModNeutralLoss:
		return "NEUTRAL_LOSS"
	}
	return t.Prefix()
}

var (
	modPattern       = regexp.MustCompile(`^(?:(.*?)-)?(MOD|UNIMOD|CHEMMOD|SUBST):(.+)$`)
	positionPattern  = regexp.MustCompile(`^(\d+)(\[.*\])?$`)
	digitsPattern    = regexp.MustCompile(`^\d+$`)
	residuesPattern  = regexp.MustCompile(`^[A-Z]+$`)
	massDeltaPattern = regexp.MustCompile(`^[+-]\d+(?:\.\d+)?$`)
)

// ModificationPosition is one candidate site with an optional score.
type ModificationPosition struct {
	Position int
	Score    *Param
}

// Modification is {positions}-{TYPE}:{accession}{neutral loss}.
type Modification struct {
	Type        ModificationType
	Accession   string
	Positions   []ModificationPosition
	NeutralLoss *Param
}

// IsAmbiguous reports whether more than one position is given
func (m Modification) IsAmbiguous() bool {
	return len(m.Positions) > 1
}

// PositionString renders the positions part, e.g. 3|4[...]
func (m Modification) PositionString() string {
	parts := make([]string, len(m.Positions))
	for i, p := range m.Positions {
		parts[i] = strconv.Itoa(p.Position)
		if p.Score != nil {
			parts[i] += p.Score.String()
		}
	}
	return strings.Join(parts, "|")
}

// String renders the modification in its canonical form.
func (m Modification) String() string {
	switch m.Type {
	case ModNone:
		return "0"
	case ModNeutralLoss:
		if m.NeutralLoss == nil {
			return "0"
		}
		return m.NeutralLoss.String()
	}
	var sb strings.Builder
	if len(m.Positions) > 0 {
		sb.WriteString(m.PositionString())
		sb.WriteByte('-')
	}
	sb.WriteString(m.Type.Prefix())
	sb.WriteByte(':')
	sb.WriteString(m.Accession)
	if m.NeutralLoss != nil {
		sb.WriteString(m.NeutralLoss.String())
	}
	return sb.String()
}

// IsChemModAccession reports whether s is a signed mass delta or a chemical
// formula token.
func IsChemModAccession(s string) bool {
	if massDeltaPattern.MatchString(s) {
		return true
	}
	_, err := ParseFormula(s)
	return err == nil
}

// ParseModification parses one modification entry.
func ParseModification(s string) (Modification, error) {
	s = strings.TrimSpace(s)
	if s == "0" {
		return Modification{Type: ModNone}, nil
	}
	if strings.HasPrefix(s, "[") {
		nl, err := ParseParam(s)
		if err != nil {
			return Modification{}, fmt.Errorf("%w: neutral loss: %v", ErrInvalidModification, err)
		}
		return Modification{Type: ModNeutralLoss, NeutralLoss: &nl}, nil
	}

	match := modPattern.FindStringSubmatch(s)
	if match == nil {
		return Modification{}, fmt.Errorf("%w: %q", ErrInvalidModification, s)
	}
	mod := Modification{}
	switch match[2] {
	case "MOD":
		mod.Type = ModMOD
	case "UNIMOD":
		mod.Type = ModUNIMOD
	case "CHEMMOD":
		mod.Type = ModCHEMMOD
	case "SUBST":
		mod.Type = ModSUBST
	}

	acc := match[3]
	if strings.HasSuffix(acc, "]") {
		i := strings.LastIndex(acc, "[")
		if i <= 0 {
			return Modification{}, fmt.Errorf("%w: %q", ErrInvalidModification, s)
		}
		nl, err := ParseParam(acc[i:])
		if err != nil {
			return Modification{}, fmt.Errorf("%w: neutral loss: %v", ErrInvalidModification, err)
		}
		mod.NeutralLoss = &nl
		acc = acc[:i]
	}
	acc = strings.TrimSpace(acc)
	if err := checkModAccession(mod.Type, acc); err != nil {
		return Modification{}, err
	}
	mod.Accession = acc

	if match[1] != "" {
		positions, err := parseModPositions(match[1])
		if err != nil {
			return Modification{}, err
		}
		mod.Positions = positions
	}
	return mod, nil
}

func checkModAccession(t ModificationType, acc string) error {
	var ok bool
	switch t {
	case ModMOD, ModUNIMOD:
		ok = digitsPattern.MatchString(acc)
	case ModSUBST:
		ok = residuesPattern.MatchString(acc)
	case ModCHEMMOD:
		if !IsChemModAccession(acc) {
			return fmt.Errorf("%w: %w: %q", ErrInvalidModification, ErrChemModAccession, acc)
		}
		ok = true
	}
	if !ok {
		return fmt.Errorf("%w: accession %q is not valid for %s", ErrInvalidModification, acc, t.Prefix())
	}
	return nil
}

// checkModification applies the accession rules of ParseModification to a
// modification built in memory.
func checkModification(m Modification) error {
	switch m.Type {
	case ModNone:
		return nil
	case ModNeutralLoss:
		if m.NeutralLoss == nil {
			return fmt.Errorf("%w: neutral loss without a param", ErrInvalidModification)
		}
		return nil
	}
	return checkModAccession(m.Type, m.Accession)
}

func parseModPositions(s string) ([]ModificationPosition, error) {
	var positions []ModificationPosition
	for _, item := range splitOutsideBrackets(s, '|') {
		m := positionPattern.FindStringSubmatch(strings.TrimSpace(item))
		if m == nil {
			return nil, fmt.Errorf("%w: position %q", ErrInvalidModification, item)
		}
		pos, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("%w: position %q", ErrInvalidModification, item)
		}
		mp := ModificationPosition{Position: pos}
		if m[2] != "" {
			score, err := ParseParam(m[2])
			if err != nil {
				return nil, fmt.Errorf("%w: position score: %v", ErrInvalidModification, err)
			}
			mp.Score = &score
		}
		positions = append(positions, mp)
	}
	return positions, nil
}

// ModificationList is a ',' separated list of modifications.
type ModificationList []Modification

// String renders the list joined by ','
func (l ModificationList) String() string {
	parts := make([]string, len(l))
	for i, m := range l {
		parts[i] = m.String()
	}
	return strings.Join(parts, ",")
}

// Has reports whether any entry has type t
func (l ModificationList) Has(t ModificationType) bool {
	for _, m := range l {
		if m.Type == t {
			return true
		}
	}
	return false
}

// ParseModificationList parses a ',' separated list. One malformed entry
// invalidates the list.
func ParseModificationList(s string) (ModificationList, error) {
	var list ModificationList
	for _, item := range splitOutsideBrackets(strings.TrimSpace(s), ',') {
		m, err := ParseModification(item)
		if err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, nil
}
