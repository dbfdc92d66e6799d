package core

// Section is the kind of a line, ordered by the level at which it may appear.
type Section int

const (
	SectionComment Section = iota
	SectionMetadata
	SectionProteinHeader
	SectionProtein
	SectionPeptideHeader
	SectionPeptide
	SectionPSMHeader
	SectionPSM
	SectionSmallMoleculeHeader
	SectionSmallMolecule
)

var sectionPrefixes = [...]string{"COM", "MTD", "PRH", "PRT", "PEH", "PEP", "PSH", "PSM", "SMH", "SML"}

// DataSections lists the four tabular sections in file order.
var DataSections = []Section{SectionProtein, SectionPeptide, SectionPSM, SectionSmallMolecule}

// ParseSection maps a three letter line prefix to its section.
func ParseSection(prefix string) (Section, bool) {
	for i, p := range sectionPrefixes {
		if p == prefix {
			return Section(i), true
		}
	}
	return 0, false
}

// Prefix returns the three letter line prefix
func (s Section) Prefix() string {
	if s < SectionComment || s > SectionSmallMolecule {
		return ""
	}
	return sectionPrefixes[s]
}

// Level returns the position of the section in the mandatory order
func (s Section) Level() int {
	return int(s)
}

// IsHeader reports whether s is one of the four header sections
func (s Section) IsHeader() bool {
	switch s {
	case SectionProteinHeader, SectionPeptideHeader, SectionPSMHeader, SectionSmallMoleculeHeader:
		return true
	}
	return false
}

// IsData reports whether s is one of the four tabular data sections
func (s Section) IsData() bool {
	switch s {
	case SectionProtein, SectionPeptide, SectionPSM, SectionSmallMolecule:
		return true
	}
	return false
}

// Data returns the data section for a header section, or s itself.
func (s Section) Data() Section {
	if s.IsHeader() {
		return s + 1
	}
	return s
}

// Header returns the header section for a data section, or s itself.
func (s Section) Header() Section {
	if s.IsData() {
		return s - 1
	}
	return s
}

// Name returns the lower case section name used by colunit-{name} keys.
func (s Section) Name() string {
	switch s.Data() {
	case SectionProtein:
		return "protein"
	case SectionPeptide:
		return "peptide"
	case SectionPSM:
		return "psm"
	case SectionSmallMolecule:
		return "small_molecule"
	case SectionMetadata:
		return "metadata"
	default:
		return "comment"
	}
}

// ScorePrefix returns the prefix of {prefix}_search_engine_score[n] and
// {prefix}_abundance_* names.
func (s Section) ScorePrefix() string {
	if s.Data() == SectionSmallMolecule {
		return "smallmolecule"
	}
	return s.Name()
}

// String returns the line prefix
func (s Section) String() string {
	return s.Prefix()
}
