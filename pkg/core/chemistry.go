package core

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
)

// Monoisotopic element masses
const (
	MassH  = 1.0078250321
	MassC  = 12.0000000000
	MassN  = 14.0030740052
	MassO  = 15.9949146221
	MassS  = 31.9720706900
	MassP  = 30.9737615100
	MassNa = 22.9897692809
	MassK  = 38.9637064864
	MassCl = 34.9688527100
	MassSe = 79.9165218000

	// Proton mass for charge calculations
	ProtonMass = 1.00727646688
)

var elementMasses = map[string]float64{
	"H":  MassH,
	"C":  MassC,
	"N":  MassN,
	"O":  MassO,
	"S":  MassS,
	"P":  MassP,
	"Na": MassNa,
	"K":  MassK,
	"Cl": MassCl,
	"Se": MassSe,
}

// ErrInvalidFormula is returned for a token that is not element counts.
var ErrInvalidFormula = errors.New("invalid chemical formula")

var (
	formulaPattern = regexp.MustCompile(`^(?:[A-Z][a-z]?-?\d*)+$`)
	elementPattern = regexp.MustCompile(`([A-Z][a-z]?)(-?\d*)`)
)

// Formula maps element symbols to (possibly negative) atom counts.
type Formula map[string]int

// ParseFormula parses element-count tokens such as "C2H3NO" or "H-2O-1".
func ParseFormula(s string) (Formula, error) {
	if !formulaPattern.MatchString(s) {
		return nil, fmt.Errorf("%w: %q", ErrInvalidFormula, s)
	}
	f := make(Formula)
	for _, m := range elementPattern.FindAllStringSubmatch(s, -1) {
		n := 1
		if m[2] != "" {
			v, err := strconv.Atoi(m[2])
			if err != nil {
				return nil, fmt.Errorf("%w: %q", ErrInvalidFormula, s)
			}
			n = v
		}
		f[m[1]] += n
	}
	return f, nil
}

// Mass returns the monoisotopic mass of the formula. ok is false when an
// element has no tabulated mass.
func (f Formula) Mass() (mass float64, ok bool) {
	for el, n := range f {
		m, known := elementMasses[el]
		if !known {
			return 0, false
		}
		mass += float64(n) * m
	}
	return mass, true
}

// AminoAcidComposition stores elemental composition
type AminoAcidComposition struct {
	C, H, N, O, S int
}

// AminoAcidMasses maps amino acid one-letter codes to elemental composition
var AminoAcidMasses = map[rune]AminoAcidComposition{
	'A': {C: 3, H: 5, N: 1, O: 1},
	'R': {C: 6, H: 12, N: 4, O: 1},
	'N': {C: 4, H: 6, N: 2, O: 2},
	'D': {C: 4, H: 5, N: 1, O: 3},
	'C': {C: 3, H: 5, N: 1, O: 1, S: 1},
	'E': {C: 5, H: 7, N: 1, O: 3},
	'Q': {C: 5, H: 8, N: 2, O: 2},
	'G': {C: 2, H: 3, N: 1, O: 1},
	'H': {C: 6, H: 7, N: 3, O: 1},
	'I': {C: 6, H: 11, N: 1, O: 1},
	'L': {C: 6, H: 11, N: 1, O: 1},
	'K': {C: 6, H: 12, N: 2, O: 1},
	'M': {C: 5, H: 9, N: 1, O: 1, S: 1},
	'F': {C: 9, H: 9, N: 1, O: 1},
	'P': {C: 5, H: 7, N: 1, O: 1},
	'S': {C: 3, H: 5, N: 1, O: 2},
	'T': {C: 4, H: 7, N: 1, O: 2},
	'W': {C: 11, H: 10, N: 2, O: 1},
	'Y': {C: 9, H: 9, N: 1, O: 2},
	'V': {C: 5, H: 9, N: 1, O: 1},
}

// NeutralPeptideMass computes the monoisotopic mass of a peptide sequence
// plus the summed modification mass deltas. Unknown residues are skipped.
func NeutralPeptideMass(sequence string, modMass float64) float64 {
	comp := AminoAcidComposition{H: 2, O: 1} // water

	for _, aa := range sequence {
		if aaComp, ok := AminoAcidMasses[aa]; ok {
			comp.C += aaComp.C
			comp.H += aaComp.H
			comp.N += aaComp.N
			comp.O += aaComp.O
			comp.S += aaComp.S
		}
	}

	mass := float64(comp.C)*MassC +
		float64(comp.H)*MassH +
		float64(comp.N)*MassN +
		float64(comp.O)*MassO +
		float64(comp.S)*MassS

	return mass + modMass
}

// PeptideMZ returns the m/z of a peptide at the given charge.
func PeptideMZ(sequence string, charge int, modMass float64) float64 {
	if charge == 0 {
		return math.NaN()
	}
	mass := NeutralPeptideMass(sequence, modMass)
	return (mass + float64(charge)*ProtonMass) / float64(charge)
}

// PPMError returns the relative difference of observed from theoretical in ppm.
func PPMError(observed, theoretical float64) float64 {
	return (observed - theoretical) / theoretical * 1e6
}

// RoundFloat rounds a float to n decimal places
func RoundFloat(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
