package core

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ModDefinition is one modification known to a ModDatabase.
type ModDefinition struct {
	Accession string // e.g. UNIMOD:4 or MOD:00397
	Name      string
	Mass      float64 // monoisotopic mass shift
}

// ModDatabase resolves modification accessions and names to mass shifts.
type ModDatabase struct {
	byAccession map[string]ModDefinition
	byName      map[string]string // lower case name -> accession
}

// NewModDatabase creates an empty modification database
func NewModDatabase() *ModDatabase {
	return &ModDatabase{
		byAccession: make(map[string]ModDefinition),
		byName:      make(map[string]string),
	}
}

// Add adds or updates a modification
func (db *ModDatabase) Add(accession, name string, mass float64) {
	db.byAccession[accession] = ModDefinition{Accession: accession, Name: name, Mass: mass}
	db.byName[strings.ToLower(name)] = accession
}

// Lookup returns the definition for an accession such as UNIMOD:35.
func (db *ModDatabase) Lookup(accession string) (ModDefinition, bool) {
	def, ok := db.byAccession[accession]
	return def, ok
}

// LookupName returns the definition for a modification name, ignoring case.
func (db *ModDatabase) LookupName(name string) (ModDefinition, bool) {
	acc, ok := db.byName[strings.ToLower(name)]
	if !ok {
		return ModDefinition{}, false
	}
	return db.byAccession[acc], true
}

// Len returns the number of known modifications
func (db *ModDatabase) Len() int {
	return len(db.byAccession)
}

// LoadFromCSV loads modifications from CSV (format: accession,name,massshift)
// with a header line. Names containing commas must be quoted.
func (db *ModDatabase) LoadFromCSV(r io.Reader) error {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	// Skip header line
	if _, err := cr.Read(); err != nil {
		if err == io.EOF {
			return nil
		}
		return fmt.Errorf("error reading CSV: %w", err)
	}

	for {
		parts, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("error reading CSV: %w", err)
		}
		lineNum, _ := cr.FieldPos(0)
		if len(parts) == 1 && strings.TrimSpace(parts[0]) == "" {
			continue
		}
		if len(parts) < 3 {
			return fmt.Errorf("line %d: invalid format, expected accession,name,massshift", lineNum)
		}

		massStr := strings.TrimSpace(parts[2])
		mass, err := strconv.ParseFloat(massStr, 64)
		if err != nil {
			return fmt.Errorf("line %d: invalid mass value '%s': %w", lineNum, massStr, err)
		}

		db.Add(strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), mass)
	}
}

// MassShift returns the mass delta of a parsed modification: table lookup
// for MOD and UNIMOD, the numeric delta or formula mass for CHEMMOD.
func (db *ModDatabase) MassShift(m Modification) (float64, bool) {
	switch m.Type {
	case ModMOD, ModUNIMOD:
		def, ok := db.Lookup(m.Type.Prefix() + ":" + m.Accession)
		return def.Mass, ok
	case ModCHEMMOD:
		if v, err := strconv.ParseFloat(m.Accession, 64); err == nil {
			return v, true
		}
		f, err := ParseFormula(m.Accession)
		if err != nil {
			return 0, false
		}
		return f.Mass()
	case ModNone:
		return 0, true
	}
	return 0, false
}

// DefaultModDatabase returns a ModDatabase pre-loaded with common modifications
func DefaultModDatabase() *ModDatabase {
	db := NewModDatabase()

	db.Add("UNIMOD:1", "Acetyl", 42.010565)
	db.Add("UNIMOD:2", "Amidated", -0.984016)
	db.Add("UNIMOD:3", "Biotin", 226.077598)
	db.Add("UNIMOD:4", "Carbamidomethyl", 57.021464)
	db.Add("UNIMOD:5", "Carbamyl", 43.005814)
	db.Add("UNIMOD:6", "Carboxymethyl", 58.005479)
	db.Add("UNIMOD:7", "Deamidated", 0.984016)
	db.Add("UNIMOD:21", "Phospho", 79.966331)
	db.Add("UNIMOD:23", "Dehydrated", -18.010565)
	db.Add("UNIMOD:24", "Propionamide", 71.037114)
	db.Add("UNIMOD:27", "Glu->pyro-Glu", -18.010565)
	db.Add("UNIMOD:28", "Gln->pyro-Glu", -17.026549)
	db.Add("UNIMOD:30", "Cation:Na", 21.981943)
	db.Add("UNIMOD:34", "Methyl", 14.01565)
	db.Add("UNIMOD:35", "Oxidation", 15.994915)
	db.Add("UNIMOD:36", "Dimethyl", 28.0313)
	db.Add("UNIMOD:37", "Trimethyl", 42.04695)
	db.Add("UNIMOD:39", "Methylthio", 45.987721)
	db.Add("UNIMOD:40", "Sulfo", 79.956815)
	db.Add("UNIMOD:41", "Hex", 162.052824)
	db.Add("UNIMOD:42", "Lipoyl", 188.032956)
	db.Add("UNIMOD:43", "HexNAc", 203.079373)
	db.Add("UNIMOD:44", "Farnesyl", 204.187801)
	db.Add("UNIMOD:45", "Myristoyl", 210.198366)
	db.Add("UNIMOD:47", "Palmitoyl", 238.229666)
	db.Add("UNIMOD:52", "Guanidinyl", 42.021798)
	db.Add("UNIMOD:53", "HNE", 156.11503)
	db.Add("UNIMOD:55", "Glutathione", 305.068156)
	db.Add("UNIMOD:58", "Propionyl", 56.026215)
	db.Add("UNIMOD:121", "GG", 114.042927)
	db.Add("UNIMOD:214", "iTRAQ4plex", 144.102063)
	db.Add("UNIMOD:259", "Label:13C(6)15N(2)", 8.014199)
	db.Add("UNIMOD:267", "Label:13C(6)15N(4)", 10.008269)
	db.Add("UNIMOD:354", "Nitro", 44.985078)
	db.Add("UNIMOD:730", "iTRAQ8plex", 304.205360)
	db.Add("UNIMOD:737", "TMT6plex", 229.162932)
	db.Add("UNIMOD:2016", "TMTpro", 304.207146)

	// PSI-MOD equivalents seen in older files
	db.Add("MOD:00394", "acetylated residue", 42.010565)
	db.Add("MOD:00397", "iodoacetamide derivatized residue", 57.021464)
	db.Add("MOD:00696", "phosphorylated residue", 79.966331)
	db.Add("MOD:00719", "L-methionine sulfoxide", 15.994915)

	return db
}
