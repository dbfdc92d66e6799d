package core

import (
	"errors"
	"fmt"
	"maps"
	"regexp"
	"strconv"
)

var (
	ErrUnknownColumn        = errors.New("column is not defined for this record")
	ErrValueType            = errors.New("value does not match the column type")
	ErrWrongSection         = errors.New("factory belongs to another section")
	ErrModificationPosition = errors.New("modification position outside the sequence")
	ErrUndefinedMsRun       = errors.New("ms_run is not defined in metadata")
	ErrInvalidResidue       = errors.New("invalid flanking residue")
	ErrProteinCoverage      = errors.New("protein_coverage outside [0, 1]")
)

var residuePattern = regexp.MustCompile(`^(?:[A-Z]|-)$`)

// PositionError is a modification site outside 0..len(sequence)+1.
type PositionError struct {
	Mod      Modification
	Position int
	Sequence string
}

func (e *PositionError) Error() string {
	return fmt.Sprintf("%v: %d in %s, %s allows 0..%d", ErrModificationPosition, e.Position, e.Mod, e.Sequence, len(e.Sequence)+1)
}

func (e *PositionError) Unwrap() error { return ErrModificationPosition }

// MsRunError is a spectra_ref naming an ms_run the metadata does not declare.
type MsRunError struct {
	MsRun int
}

func (e *MsRunError) Error() string {
	return fmt.Sprintf("%v: ms_run[%d]", ErrUndefinedMsRun, e.MsRun)
}

func (e *MsRunError) Unwrap() error { return ErrUndefinedMsRun }

// Record is one data line: a sparse map from logical column to typed value,
// bound to the column factory and metadata it was built against.
type Record struct {
	Line int // source line, 0 for records built in memory

	factory  *Factory
	metadata *Metadata
	values   map[LogicalKey]any
}

// NewRecord returns an empty record for the factory's section.
func NewRecord(f *Factory, md *Metadata) *Record {
	return &Record{factory: f, metadata: md, values: make(map[LogicalKey]any)}
}

// Section returns the data section of the record
func (r *Record) Section() Section { return r.factory.Section() }

// Factory returns the column schema the record was built against
func (r *Record) Factory() *Factory { return r.factory }

// Metadata returns the metadata the record was built against
func (r *Record) Metadata() *Metadata { return r.metadata }

// Set stores v under key after checking that v has the Go type of the
// column's value type and passes the column's rules. A nil v clears the
// cell. A rejected value leaves the cell unchanged.
//
// Position and ms_run failures come back joined, one *PositionError or
// *MsRunError per offending entry.
func (r *Record) Set(key LogicalKey, v any) error {
	c := r.factory.Column(key)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if v == nil {
		delete(r.values, key)
		return nil
	}
	if !typeMatches(c, v) {
		return fmt.Errorf("%w: %s wants %s, got %T", ErrValueType, c.Header, c.Type, v)
	}
	if err := r.checkValue(c, v); err != nil {
		return err
	}
	r.values[key] = v
	return nil
}

func (r *Record) checkValue(c *Column, v any) error {
	switch c.Key.Kind {
	case ColProteinCoverage:
		if f := v.(float64); f < 0 || f > 1 {
			return fmt.Errorf("%w: %s", ErrProteinCoverage, FormatDouble(f))
		}
	case ColPre, ColPost:
		if s := v.(string); !residuePattern.MatchString(s) {
			return fmt.Errorf("%w: %s %q", ErrInvalidResidue, c.Header, s)
		}
	case ColReliability:
		if rel := v.(Reliability); rel < ReliabilityHigh || rel > ReliabilityPoor {
			return fmt.Errorf("%w: %d", ErrInvalidReliability, rel)
		}
	case ColModifications:
		mods := v.(ModificationList)
		for _, m := range mods {
			if err := checkModification(m); err != nil {
				return err
			}
		}
		return checkPositions(mods, r.Text(ColSequence))
	case ColSequence:
		return checkPositions(r.Modifications(), v.(string))
	case ColSpectraRef:
		return r.checkSpectraRefs(v.(SpectraRefList))
	}
	return nil
}

// checkPositions bounds every site by 0 (N-term) and len+1 (C-term). Rows
// without a sequence are not checked.
func checkPositions(mods ModificationList, seq string) error {
	if seq == "" {
		return nil
	}
	var errs []error
	for _, m := range mods {
		for _, p := range m.Positions {
			if p.Position < 0 || p.Position > len(seq)+1 {
				errs = append(errs, &PositionError{Mod: m, Position: p.Position, Sequence: seq})
			}
		}
	}
	return errors.Join(errs...)
}

func (r *Record) checkSpectraRefs(refs SpectraRefList) error {
	if r.metadata == nil {
		return nil
	}
	var errs []error
	for _, ref := range refs {
		if _, ok := r.metadata.MsRuns[ref.MsRun]; !ok {
			errs = append(errs, &MsRunError{MsRun: ref.MsRun})
		}
	}
	return errors.Join(errs...)
}

func typeMatches(c *Column, v any) bool {
	switch c.Type {
	case TypeString, TypeURI:
		_, ok := v.(string)
		return ok
	case TypeInteger:
		_, ok := v.(int)
		return ok
	case TypeDouble:
		_, ok := v.(float64)
		return ok
	case TypeParamList:
		_, ok := v.(ParamList)
		return ok
	case TypeStringList, TypeGOTermList:
		_, ok := v.(StringList)
		return ok
	case TypeDoubleList:
		_, ok := v.(DoubleList)
		return ok
	case TypeModificationList:
		_, ok := v.(ModificationList)
		return ok
	case TypeSpectraRefList:
		_, ok := v.(SpectraRefList)
		return ok
	case TypeBoolean:
		_, ok := v.(bool)
		return ok
	case TypeReliability:
		_, ok := v.(Reliability)
		return ok
	}
	return false
}

// SetText parses text with the value grammar of the column and stores the
// result. The null token clears the cell.
func (r *Record) SetText(key LogicalKey, text string) error {
	c := r.factory.Column(key)
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownColumn, key)
	}
	if IsNull(text) {
		delete(r.values, key)
		return nil
	}
	v, err := ParseValue(c, text)
	if err != nil {
		return fmt.Errorf("%s: %w", c.Header, err)
	}
	return r.Set(key, v)
}

// ParseValue parses a non-null cell for column c.
func ParseValue(c *Column, text string) (any, error) {
	switch c.Type {
	case TypeString:
		return text, nil
	case TypeInteger:
		return ParseInteger(text)
	case TypeDouble:
		return ParseDouble(text)
	case TypeParamList:
		return ParseParamList(text)
	case TypeStringList:
		sep := c.Sep
		if sep == 0 {
			sep = '|'
		}
		return ParseStringList(text, sep)
	case TypeGOTermList:
		return ParseGOTermList(text)
	case TypeDoubleList:
		return ParseDoubleList(text)
	case TypeModificationList:
		return ParseModificationList(text)
	case TypeSpectraRefList:
		return ParseSpectraRefList(text)
	case TypeBoolean:
		return ParseMZBoolean(text)
	case TypeReliability:
		return ParseReliability(text)
	case TypeURI:
		if _, err := ParseURI(text); err != nil {
			return nil, err
		}
		return text, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrValueType, c.Type)
}

// Get returns the value under key, or nil
func (r *Record) Get(key LogicalKey) any {
	return r.values[key]
}

// Has reports whether the cell under key is set
func (r *Record) Has(key LogicalKey) bool {
	_, ok := r.values[key]
	return ok
}

// Values returns a copy of all set cells.
func (r *Record) Values() map[LogicalKey]any {
	return maps.Clone(r.values)
}

// Text returns a string cell, or "" when unset
func (r *Record) Text(kind ColumnKind) string {
	s, _ := r.values[LogicalKey{Kind: kind}].(string)
	return s
}

// Integer returns an integer cell
func (r *Record) Integer(key LogicalKey) (int, bool) {
	n, ok := r.values[key].(int)
	return n, ok
}

// Double returns a numeric cell
func (r *Record) Double(key LogicalKey) (float64, bool) {
	v, ok := r.values[key].(float64)
	return v, ok
}

// Modifications returns the modifications cell
func (r *Record) Modifications() ModificationList {
	l, _ := r.values[LogicalKey{Kind: ColModifications}].(ModificationList)
	return l
}

// SpectraRefs returns the spectra_ref cell
func (r *Record) SpectraRefs() SpectraRefList {
	l, _ := r.values[LogicalKey{Kind: ColSpectraRef}].(SpectraRefList)
	return l
}

// Cell renders the value of column c, or the null token when unset.
func (r *Record) Cell(c *Column) string {
	v, ok := r.values[c.Key]
	if !ok {
		return Null
	}
	switch x := v.(type) {
	case string:
		if x == "" {
			return Null
		}
		return x
	case int:
		return strconv.Itoa(x)
	case float64:
		return FormatDouble(x)
	case bool:
		return FormatMZBoolean(x)
	case Reliability:
		return strconv.Itoa(int(x))
	case fmt.Stringer:
		if s := x.String(); s != "" {
			return s
		}
	}
	return Null
}

// Cells renders the record in the column order of its factory.
func (r *Record) Cells() []string {
	cols := r.factory.Columns()
	cells := make([]string, len(cols))
	for i, c := range cols {
		cells[i] = r.Cell(c)
	}
	return cells
}

func (r *Record) setKind(kind ColumnKind, v any) error {
	return r.Set(LogicalKey{Kind: kind}, v)
}

// SetBestSearchEngineScore sets best_search_engine_score[id].
func (r *Record) SetBestSearchEngineScore(id int, v float64) error {
	return r.Set(LogicalKey{Kind: ColBestSearchEngineScore, ID: id}, v)
}

// BestSearchEngineScore returns best_search_engine_score[id]
func (r *Record) BestSearchEngineScore(id int) (float64, bool) {
	return r.Double(LogicalKey{Kind: ColBestSearchEngineScore, ID: id})
}

// SetSearchEngineScore sets search_engine_score[id], per ms_run when run is
// non-nil.
func (r *Record) SetSearchEngineScore(id int, run *EntityRef, v float64) error {
	key := LogicalKey{Kind: ColSearchEngineScore, ID: id}
	if run != nil {
		key.Entity = *run
	}
	return r.Set(key, v)
}

// SearchEngineScore returns search_engine_score[id], per ms_run when run is
// non-nil.
func (r *Record) SearchEngineScore(id int, run *EntityRef) (float64, bool) {
	key := LogicalKey{Kind: ColSearchEngineScore, ID: id}
	if run != nil {
		key.Entity = *run
	}
	return r.Double(key)
}

// SetAbundance sets {section}_abundance_{entity}.
func (r *Record) SetAbundance(entity EntityRef, v float64) error {
	return r.Set(LogicalKey{Kind: ColAbundance, Entity: entity}, v)
}

// SetOpt sets a global or entity-scoped opt_ cell.
func (r *Record) SetOpt(entity EntityRef, name string, v any) error {
	return r.Set(LogicalKey{Kind: ColOpt, Entity: entity, Name: SanitizeOptName(name)}, v)
}

func newSectionRecord(section Section, f *Factory, md *Metadata) (*Record, error) {
	if f.Section() != section {
		return nil, fmt.Errorf("%w: want %s, got %s", ErrWrongSection, section.Name(), f.Section().Name())
	}
	return NewRecord(f, md), nil
}

// Protein is a PRT line.
type Protein struct{ *Record }

// NewProtein returns an empty protein built against a protein factory.
func NewProtein(f *Factory, md *Metadata) (*Protein, error) {
	r, err := newSectionRecord(SectionProtein, f, md)
	if err != nil {
		return nil, err
	}
	return &Protein{r}, nil
}

func (p *Protein) Accession() string             { return p.Text(ColAccession) }
func (p *Protein) SetAccession(s string) error   { return p.setKind(ColAccession, s) }
func (p *Protein) Description() string           { return p.Text(ColDescription) }
func (p *Protein) SetDescription(s string) error { return p.setKind(ColDescription, s) }
func (p *Protein) SetDatabase(s string) error    { return p.setKind(ColDatabase, s) }

// SetSearchEngine sets the search_engine param list
func (p *Protein) SetSearchEngine(l ParamList) error { return p.setKind(ColSearchEngine, l) }

// Peptide is a PEP line.
type Peptide struct{ *Record }

// NewPeptide returns an empty peptide built against a peptide factory.
func NewPeptide(f *Factory, md *Metadata) (*Peptide, error) {
	r, err := newSectionRecord(SectionPeptide, f, md)
	if err != nil {
		return nil, err
	}
	return &Peptide{r}, nil
}

func (p *Peptide) Sequence() string            { return p.Text(ColSequence) }
func (p *Peptide) SetSequence(s string) error  { return p.setKind(ColSequence, s) }
func (p *Peptide) Accession() string           { return p.Text(ColAccession) }
func (p *Peptide) SetAccession(s string) error { return p.setKind(ColAccession, s) }
func (p *Peptide) SetCharge(z int) error       { return p.setKind(ColCharge, z) }

// Charge returns the precursor charge
func (p *Peptide) Charge() (int, bool) { return p.Integer(LogicalKey{Kind: ColCharge}) }

// MassToCharge returns the precursor m/z
func (p *Peptide) MassToCharge() (float64, bool) {
	return p.Double(LogicalKey{Kind: ColMassToCharge})
}

// PSM is a peptide-spectrum match line.
type PSM struct{ *Record }

// NewPSM returns an empty PSM built against a PSM factory.
func NewPSM(f *Factory, md *Metadata) (*PSM, error) {
	r, err := newSectionRecord(SectionPSM, f, md)
	if err != nil {
		return nil, err
	}
	return &PSM{r}, nil
}

func (p *PSM) Sequence() string            { return p.Text(ColSequence) }
func (p *PSM) SetSequence(s string) error  { return p.setKind(ColSequence, s) }
func (p *PSM) PSMID() string               { return p.Text(ColPSMID) }
func (p *PSM) SetPSMID(s string) error     { return p.setKind(ColPSMID, s) }
func (p *PSM) Accession() string           { return p.Text(ColAccession) }
func (p *PSM) SetAccession(s string) error { return p.setKind(ColAccession, s) }
func (p *PSM) SetDatabase(s string) error  { return p.setKind(ColDatabase, s) }
func (p *PSM) SetCharge(z int) error       { return p.setKind(ColCharge, z) }
func (p *PSM) SetPre(s string) error       { return p.setKind(ColPre, s) }
func (p *PSM) SetPost(s string) error      { return p.setKind(ColPost, s) }
func (p *PSM) SetStart(n int) error        { return p.setKind(ColStart, n) }
func (p *PSM) SetEnd(n int) error          { return p.setKind(ColEnd, n) }

// SetSearchEngine sets the search_engine param list
func (p *PSM) SetSearchEngine(l ParamList) error { return p.setKind(ColSearchEngine, l) }

// SetModifications sets the modifications cell
func (p *PSM) SetModifications(l ModificationList) error { return p.setKind(ColModifications, l) }

// SetSpectraRef sets the spectra_ref cell
func (p *PSM) SetSpectraRef(l SpectraRefList) error { return p.setKind(ColSpectraRef, l) }

// SetRetentionTime sets the retention_time cell
func (p *PSM) SetRetentionTime(l DoubleList) error { return p.setKind(ColRetentionTime, l) }

// SetExpMassToCharge sets exp_mass_to_charge
func (p *PSM) SetExpMassToCharge(v float64) error { return p.setKind(ColExpMassToCharge, v) }

// SetCalcMassToCharge sets calc_mass_to_charge
func (p *PSM) SetCalcMassToCharge(v float64) error { return p.setKind(ColCalcMassToCharge, v) }

// Charge returns the precursor charge
func (p *PSM) Charge() (int, bool) { return p.Integer(LogicalKey{Kind: ColCharge}) }

// ExpMassToCharge returns the observed precursor m/z
func (p *PSM) ExpMassToCharge() (float64, bool) {
	return p.Double(LogicalKey{Kind: ColExpMassToCharge})
}

// CalcMassToCharge returns the theoretical precursor m/z
func (p *PSM) CalcMassToCharge() (float64, bool) {
	return p.Double(LogicalKey{Kind: ColCalcMassToCharge})
}

// SmallMolecule is an SML line.
type SmallMolecule struct{ *Record }

// NewSmallMolecule returns an empty small molecule built against a small
// molecule factory.
func NewSmallMolecule(f *Factory, md *Metadata) (*SmallMolecule, error) {
	r, err := newSectionRecord(SectionSmallMolecule, f, md)
	if err != nil {
		return nil, err
	}
	return &SmallMolecule{r}, nil
}

// Identifier returns the identifier list
func (s *SmallMolecule) Identifier() StringList {
	l, _ := s.Get(LogicalKey{Kind: ColIdentifier}).(StringList)
	return l
}

func (s *SmallMolecule) ChemicalFormula() string { return s.Text(ColChemicalFormula) }
func (s *SmallMolecule) SetChemicalFormula(f string) error {
	return s.setKind(ColChemicalFormula, f)
}
