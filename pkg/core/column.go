package core

import (
	"fmt"
	"strings"
)

// ValueType is the declared type of a column's cells.
type ValueType int

const (
	TypeString ValueType = iota
	TypeInteger
	TypeDouble
	TypeParamList
	TypeStringList
	TypeDoubleList
	TypeModificationList
	TypeSpectraRefList
	TypeGOTermList
	TypeBoolean
	TypeReliability
	TypeURI
)

// String returns the type name
func (t ValueType) String() string {
	switch t {
	case TypeString:
		return "String"
	case TypeInteger:
		return "Integer"
	case TypeDouble:
		return "Double"
	case TypeParamList:
		return "ParamList"
	case TypeStringList:
		return "StringList"
	case TypeDoubleList:
		return "DoubleList"
	case TypeModificationList:
		return "ModificationList"
	case TypeSpectraRefList:
		return "SpectraRefList"
	case TypeGOTermList:
		return "GOTermList"
	case TypeBoolean:
		return "MZBoolean"
	case TypeReliability:
		return "Reliability"
	case TypeURI:
		return "URI"
	}
	return "Unknown"
}

// ColumnKind identifies what a column holds, independent of section.
type ColumnKind int

const (
	ColAccession ColumnKind = iota
	ColDescription
	ColTaxid
	ColSpecies
	ColDatabase
	ColDatabaseVersion
	ColSearchEngine
	ColAmbiguityMembers
	ColModifications
	ColProteinCoverage
	ColSequence
	ColUnique
	ColRetentionTime
	ColRetentionTimeWindow
	ColCharge
	ColMassToCharge
	ColSpectraRef
	ColPSMID
	ColExpMassToCharge
	ColCalcMassToCharge
	ColPre
	ColPost
	ColStart
	ColEnd
	ColIdentifier
	ColChemicalFormula
	ColSmiles
	ColInchiKey

	ColReliability
	ColURI
	ColGOTerms
	ColBestSearchEngineScore
	ColSearchEngineScore
	ColNumPSMs
	ColNumPeptidesDistinct
	ColNumPeptidesUnique
	ColAbundance
	ColAbundanceStdev
	ColAbundanceStdError
	ColOpt
)

var kindNames = map[ColumnKind]string{
	ColAccession:             "accession",
	ColDescription:           "description",
	ColTaxid:                 "taxid",
	ColSpecies:               "species",
	ColDatabase:              "database",
	ColDatabaseVersion:       "database_version",
	ColSearchEngine:          "search_engine",
	ColAmbiguityMembers:      "ambiguity_members",
	ColModifications:         "modifications",
	ColProteinCoverage:       "protein_coverage",
	ColSequence:              "sequence",
	ColUnique:                "unique",
	ColRetentionTime:         "retention_time",
	ColRetentionTimeWindow:   "retention_time_window",
	ColCharge:                "charge",
	ColMassToCharge:          "mass_to_charge",
	ColSpectraRef:            "spectra_ref",
	ColPSMID:                 "PSM_ID",
	ColExpMassToCharge:       "exp_mass_to_charge",
	ColCalcMassToCharge:      "calc_mass_to_charge",
	ColPre:                   "pre",
	ColPost:                  "post",
	ColStart:                 "start",
	ColEnd:                   "end",
	ColIdentifier:            "identifier",
	ColChemicalFormula:       "chemical_formula",
	ColSmiles:                "smiles",
	ColInchiKey:              "inchi_key",
	ColReliability:           "reliability",
	ColURI:                   "uri",
	ColGOTerms:               "go_terms",
	ColBestSearchEngineScore: "best_search_engine_score",
	ColSearchEngineScore:     "search_engine_score",
	ColNumPSMs:               "num_psms",
	ColNumPeptidesDistinct:   "num_peptides_distinct",
	ColNumPeptidesUnique:     "num_peptides_unique",
	ColAbundance:             "abundance",
	ColAbundanceStdev:        "abundance_stdev",
	ColAbundanceStdError:     "abundance_std_error",
	ColOpt:                   "opt",
}

// String returns the base column name of the kind
func (k ColumnKind) String() string {
	return kindNames[k]
}

// IsAbundance reports whether k is one of the three abundance kinds
func (k ColumnKind) IsAbundance() bool {
	return k == ColAbundance || k == ColAbundanceStdev || k == ColAbundanceStdError
}

// rank orders optional columns by category in a header.
func (k ColumnKind) rank() int {
	switch k {
	case ColReliability:
		return 0
	case ColURI:
		return 1
	case ColGOTerms:
		return 2
	case ColBestSearchEngineScore:
		return 3
	case ColSearchEngineScore:
		return 4
	case ColNumPSMs:
		return 5
	case ColNumPeptidesDistinct:
		return 6
	case ColNumPeptidesUnique:
		return 7
	case ColOpt:
		return 8
	case ColAbundance, ColAbundanceStdev, ColAbundanceStdError:
		return 9
	}
	return -1
}

// EntityKind is the kind of metadata entity a column refers to.
type EntityKind int

const (
	EntityNone EntityKind = iota
	EntityGlobal
	EntityMsRun
	EntityAssay
	EntityStudyVariable
)

// EntityRef refers to ms_run[n], assay[n], study_variable[n] or, for opt_
// columns, to the whole file.
type EntityRef struct {
	Kind EntityKind
	ID   int
}

// MsRunRef refers to ms_run[id]
func MsRunRef(id int) EntityRef { return EntityRef{Kind: EntityMsRun, ID: id} }

// AssayRef refers to assay[id]
func AssayRef(id int) EntityRef { return EntityRef{Kind: EntityAssay, ID: id} }

// StudyVariableRef refers to study_variable[id]
func StudyVariableRef(id int) EntityRef { return EntityRef{Kind: EntityStudyVariable, ID: id} }

// GlobalRef refers to the whole file
func GlobalRef() EntityRef { return EntityRef{Kind: EntityGlobal} }

// String renders ms_run[n], assay[n], study_variable[n] or global
func (r EntityRef) String() string {
	switch r.Kind {
	case EntityGlobal:
		return "global"
	case EntityMsRun:
		return fmt.Sprintf("ms_run[%d]", r.ID)
	case EntityAssay:
		return fmt.Sprintf("assay[%d]", r.ID)
	case EntityStudyVariable:
		return fmt.Sprintf("study_variable[%d]", r.ID)
	}
	return ""
}

// LogicalKey is the content-addressed identity of a column.
type LogicalKey struct {
	Kind   ColumnKind
	ID     int // search engine score id
	Entity EntityRef
	Name   string // opt_ column name after the entity
}

// String renders the canonical logical position, e.g.
// search_engine_score[2]_ms_run[1]. Abundance keys omit the section prefix.
func (k LogicalKey) String() string {
	switch k.Kind {
	case ColBestSearchEngineScore:
		return fmt.Sprintf("%s[%d]", k.Kind, k.ID)
	case ColSearchEngineScore:
		if k.Entity.Kind == EntityNone {
			return fmt.Sprintf("%s[%d]", k.Kind, k.ID)
		}
		return fmt.Sprintf("%s[%d]_%s", k.Kind, k.ID, k.Entity)
	case ColNumPSMs, ColNumPeptidesDistinct, ColNumPeptidesUnique,
		ColAbundance, ColAbundanceStdev, ColAbundanceStdError:
		return k.Kind.String() + "_" + k.Entity.String()
	case ColOpt:
		return "opt_" + k.Entity.String() + "_" + k.Name
	}
	return k.Kind.String()
}

// Column describes one column of a section.
type Column struct {
	Key    LogicalKey
	Header string
	Type   ValueType
	Sep    byte   // separator for TypeStringList
	Stable bool   // fixed by the section
	Param  *Param // CV parameter of an opt_{entity}_cv_ column
	seq    int
}

// Entity returns the entity the column refers to, if any
func (c *Column) Entity() EntityRef {
	return c.Key.Entity
}

// String returns the header name
func (c *Column) String() string {
	return c.Header
}

// SanitizeOptName makes a name usable inside an opt_ header.
func SanitizeOptName(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '\t':
			return '_'
		}
		return r
	}, s)
}
