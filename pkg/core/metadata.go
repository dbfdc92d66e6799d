package core

import (
	"fmt"
	"slices"
	"strings"
)

// Mode is the mzTab-mode of a file.
type Mode int

const (
	ModeUnset Mode = iota
	ModeComplete
	ModeSummary
)

// ParseMode accepts Complete or Summary, ignoring case.
func ParseMode(s string) (Mode, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "complete":
		return ModeComplete, true
	case "summary":
		return ModeSummary, true
	}
	return ModeUnset, false
}

// String returns the canonical spelling
func (m Mode) String() string {
	switch m {
	case ModeComplete:
		return "Complete"
	case ModeSummary:
		return "Summary"
	}
	return ""
}

// Type is the mzTab-type of a file.
type Type int

const (
	TypeUnset Type = iota
	TypeIdentification
	TypeQuantification
)

// ParseType accepts Identification or Quantification, ignoring case.
func ParseType(s string) (Type, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "identification":
		return TypeIdentification, true
	case "quantification":
		return TypeQuantification, true
	}
	return TypeUnset, false
}

// String returns the canonical spelling
func (t Type) String() string {
	switch t {
	case TypeIdentification:
		return "Identification"
	case TypeQuantification:
		return "Quantification"
	}
	return ""
}

// DefaultVersion is written when a file does not declare mzTab-version.
const DefaultVersion = "1.0.0"

// Instrument is instrument[n].
type Instrument struct {
	ID        int
	Name      *Param
	Source    *Param
	Analyzers map[int]Param
	Detector  *Param
}

// Software is software[n] with its ordered settings.
type Software struct {
	ID       int
	Param    *Param
	Settings map[int]string
}

// Publication is publication[n].
type Publication struct {
	ID    int
	Items []PublicationItem
}

// Contact is contact[n].
type Contact struct {
	ID          int
	Name        string
	Affiliation string
	Email       string
}

// ModDeclaration is fixed_mod[n] or variable_mod[n].
type ModDeclaration struct {
	ID       int
	Param    *Param
	Site     string
	Position string
}

// MsRun is ms_run[n].
type MsRun struct {
	ID                  int
	Format              *Param
	Location            string
	IDFormat            *Param
	FragmentationMethod ParamList
	Hash                string
	HashMethod          *Param
}

// Sample is sample[n].
type Sample struct {
	ID          int
	Species     map[int]Param
	Tissue      map[int]Param
	CellType    map[int]Param
	Disease     map[int]Param
	Description string
	Custom      map[int]Param
}

// AssayQuantificationMod is assay[n]-quantification_mod[m].
type AssayQuantificationMod struct {
	ID       int
	Param    *Param
	Site     string
	Position string
}

// Assay is assay[n].
type Assay struct {
	ID                    int
	QuantificationReagent *Param
	SampleRef             int // 0 when unset
	MsRunRef              int // 0 when unset
	QuantificationMods    map[int]*AssayQuantificationMod
}

// StudyVariable is study_variable[n].
type StudyVariable struct {
	ID          int
	AssayRefs   []int
	SampleRefs  []int
	Description string
}

// CV is cv[n].
type CV struct {
	ID       int
	Label    string
	FullName string
	Version  string
	URL      string
}

// ColUnit assigns a unit to a column of one section.
type ColUnit struct {
	Column string
	Unit   Param
}

// String renders {column}={unit}
func (c ColUnit) String() string {
	return c.Column + "=" + c.Unit.String()
}

// Metadata holds everything declared on MTD lines.
type Metadata struct {
	Version     string
	Mode        Mode
	Type        Type
	ID          string
	Title       string
	Description string

	SampleProcessing     map[int]ParamList
	Instruments          map[int]*Instrument
	Software             map[int]*Software
	SearchEngineScores   map[Section]map[int]Param
	FalseDiscoveryRate   ParamList
	Publications         map[int]*Publication
	Contacts             map[int]*Contact
	URIs                 map[int]string
	FixedMods            map[int]*ModDeclaration
	VariableMods         map[int]*ModDeclaration
	QuantificationMethod *Param
	QuantificationUnits  map[Section]Param
	MsRuns               map[int]*MsRun
	Custom               map[int]Param
	Samples              map[int]*Sample
	Assays               map[int]*Assay
	StudyVariables       map[int]*StudyVariable
	CVs                  map[int]*CV
	ColUnits             map[Section][]ColUnit
}

// NewMetadata creates empty metadata.
func NewMetadata() *Metadata {
	return &Metadata{
		SampleProcessing:    make(map[int]ParamList),
		Instruments:         make(map[int]*Instrument),
		Software:            make(map[int]*Software),
		SearchEngineScores:  make(map[Section]map[int]Param),
		Publications:        make(map[int]*Publication),
		Contacts:            make(map[int]*Contact),
		URIs:                make(map[int]string),
		FixedMods:           make(map[int]*ModDeclaration),
		VariableMods:        make(map[int]*ModDeclaration),
		QuantificationUnits: make(map[Section]Param),
		MsRuns:              make(map[int]*MsRun),
		Custom:              make(map[int]Param),
		Samples:             make(map[int]*Sample),
		Assays:              make(map[int]*Assay),
		StudyVariables:      make(map[int]*StudyVariable),
		CVs:                 make(map[int]*CV),
		ColUnits:            make(map[Section][]ColUnit),
	}
}

// SortedIDs returns the keys of an id-indexed map in ascending order.
func SortedIDs[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// Instrument returns instrument[id], creating it when absent.
func (m *Metadata) Instrument(id int) *Instrument {
	if in, ok := m.Instruments[id]; ok {
		return in
	}
	in := &Instrument{ID: id, Analyzers: make(map[int]Param)}
	m.Instruments[id] = in
	return in
}

// SoftwareEntry returns software[id], creating it when absent.
func (m *Metadata) SoftwareEntry(id int) *Software {
	if sw, ok := m.Software[id]; ok {
		return sw
	}
	sw := &Software{ID: id, Settings: make(map[int]string)}
	m.Software[id] = sw
	return sw
}

// Contact returns contact[id], creating it when absent.
func (m *Metadata) Contact(id int) *Contact {
	if c, ok := m.Contacts[id]; ok {
		return c
	}
	c := &Contact{ID: id}
	m.Contacts[id] = c
	return c
}

// FixedMod returns fixed_mod[id], creating it when absent.
func (m *Metadata) FixedMod(id int) *ModDeclaration {
	return modDeclaration(m.FixedMods, id)
}

// VariableMod returns variable_mod[id], creating it when absent.
func (m *Metadata) VariableMod(id int) *ModDeclaration {
	return modDeclaration(m.VariableMods, id)
}

func modDeclaration(mods map[int]*ModDeclaration, id int) *ModDeclaration {
	if d, ok := mods[id]; ok {
		return d
	}
	d := &ModDeclaration{ID: id}
	mods[id] = d
	return d
}

// MsRun returns ms_run[id], creating it when absent.
func (m *Metadata) MsRun(id int) *MsRun {
	if r, ok := m.MsRuns[id]; ok {
		return r
	}
	r := &MsRun{ID: id}
	m.MsRuns[id] = r
	return r
}

// Sample returns sample[id], creating it when absent.
func (m *Metadata) Sample(id int) *Sample {
	if s, ok := m.Samples[id]; ok {
		return s
	}
	s := &Sample{
		ID:       id,
		Species:  make(map[int]Param),
		Tissue:   make(map[int]Param),
		CellType: make(map[int]Param),
		Disease:  make(map[int]Param),
		Custom:   make(map[int]Param),
	}
	m.Samples[id] = s
	return s
}

// Assay returns assay[id], creating it when absent.
func (m *Metadata) Assay(id int) *Assay {
	if a, ok := m.Assays[id]; ok {
		return a
	}
	a := &Assay{ID: id, QuantificationMods: make(map[int]*AssayQuantificationMod)}
	m.Assays[id] = a
	return a
}

// StudyVariable returns study_variable[id], creating it when absent.
func (m *Metadata) StudyVariable(id int) *StudyVariable {
	if sv, ok := m.StudyVariables[id]; ok {
		return sv
	}
	sv := &StudyVariable{ID: id}
	m.StudyVariables[id] = sv
	return sv
}

// CV returns cv[id], creating it when absent.
func (m *Metadata) CV(id int) *CV {
	if cv, ok := m.CVs[id]; ok {
		return cv
	}
	cv := &CV{ID: id}
	m.CVs[id] = cv
	return cv
}

// AddSearchEngineScore declares {section}_search_engine_score[id].
func (m *Metadata) AddSearchEngineScore(section Section, id int, p Param) {
	section = section.Data()
	if m.SearchEngineScores[section] == nil {
		m.SearchEngineScores[section] = make(map[int]Param)
	}
	m.SearchEngineScores[section][id] = p
}

// HasEntity reports whether the referenced ms_run, assay or study_variable
// is declared. Global references always exist.
func (m *Metadata) HasEntity(ref EntityRef) bool {
	var ok bool
	switch ref.Kind {
	case EntityGlobal:
		return true
	case EntityMsRun:
		_, ok = m.MsRuns[ref.ID]
	case EntityAssay:
		_, ok = m.Assays[ref.ID]
	case EntityStudyVariable:
		_, ok = m.StudyVariables[ref.ID]
	}
	return ok
}

// AddColUnit records a unit for a column of a data section.
func (m *Metadata) AddColUnit(section Section, cu ColUnit) {
	section = section.Data()
	m.ColUnits[section] = append(m.ColUnits[section], cu)
}

// Validate checks the minimum a writer needs: a mode and a type.
func (m *Metadata) Validate() error {
	if m.Mode == ModeUnset {
		return fmt.Errorf("metadata: mzTab-mode is not set")
	}
	if m.Type == TypeUnset {
		return fmt.Errorf("metadata: mzTab-type is not set")
	}
	return nil
}
