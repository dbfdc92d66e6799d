package core

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNotTableSection  = errors.New("section has no columns")
	ErrColumnNotAllowed = errors.New("column is not allowed in this section")
	ErrEntityKind       = errors.New("column refers to the wrong kind of entity")
	ErrInvalidColumnID  = errors.New("column id must be a positive integer")
)

type stableDef struct {
	kind ColumnKind
	typ  ValueType
	sep  byte
}

var stableColumns = map[Section][]stableDef{
	SectionProtein: {
		{kind: ColAccession, typ: TypeString},
		{kind: ColDescription, typ: TypeString},
		{kind: ColTaxid, typ: TypeInteger},
		{kind: ColSpecies, typ: TypeString},
		{kind: ColDatabase, typ: TypeString},
		{kind: ColDatabaseVersion, typ: TypeString},
		{kind: ColSearchEngine, typ: TypeParamList},
		{kind: ColAmbiguityMembers, typ: TypeStringList, sep: ','},
		{kind: ColModifications, typ: TypeModificationList},
		{kind: ColProteinCoverage, typ: TypeDouble},
	},
	SectionPeptide: {
		{kind: ColSequence, typ: TypeString},
		{kind: ColAccession, typ: TypeString},
		{kind: ColUnique, typ: TypeBoolean},
		{kind: ColDatabase, typ: TypeString},
		{kind: ColDatabaseVersion, typ: TypeString},
		{kind: ColSearchEngine, typ: TypeParamList},
		{kind: ColModifications, typ: TypeModificationList},
		{kind: ColRetentionTime, typ: TypeDoubleList},
		{kind: ColRetentionTimeWindow, typ: TypeDoubleList},
		{kind: ColCharge, typ: TypeInteger},
		{kind: ColMassToCharge, typ: TypeDouble},
		{kind: ColSpectraRef, typ: TypeSpectraRefList},
	},
	SectionPSM: {
		{kind: ColSequence, typ: TypeString},
		{kind: ColPSMID, typ: TypeString},
		{kind: ColAccession, typ: TypeString},
		{kind: ColUnique, typ: TypeBoolean},
		{kind: ColDatabase, typ: TypeString},
		{kind: ColDatabaseVersion, typ: TypeString},
		{kind: ColSearchEngine, typ: TypeParamList},
		{kind: ColModifications, typ: TypeModificationList},
		{kind: ColRetentionTime, typ: TypeDoubleList},
		{kind: ColCharge, typ: TypeInteger},
		{kind: ColExpMassToCharge, typ: TypeDouble},
		{kind: ColCalcMassToCharge, typ: TypeDouble},
		{kind: ColSpectraRef, typ: TypeSpectraRefList},
		{kind: ColPre, typ: TypeString},
		{kind: ColPost, typ: TypeString},
		{kind: ColStart, typ: TypeInteger},
		{kind: ColEnd, typ: TypeInteger},
	},
	SectionSmallMolecule: {
		{kind: ColIdentifier, typ: TypeStringList, sep: '|'},
		{kind: ColChemicalFormula, typ: TypeString},
		{kind: ColSmiles, typ: TypeStringList, sep: '|'},
		{kind: ColInchiKey, typ: TypeStringList, sep: '|'},
		{kind: ColDescription, typ: TypeString},
		{kind: ColExpMassToCharge, typ: TypeDouble},
		{kind: ColCalcMassToCharge, typ: TypeDouble},
		{kind: ColCharge, typ: TypeInteger},
		{kind: ColRetentionTime, typ: TypeDoubleList},
		{kind: ColTaxid, typ: TypeInteger},
		{kind: ColSpecies, typ: TypeString},
		{kind: ColDatabase, typ: TypeString},
		{kind: ColDatabaseVersion, typ: TypeString},
		{kind: ColSpectraRef, typ: TypeSpectraRefList},
		{kind: ColSearchEngine, typ: TypeParamList},
		{kind: ColModifications, typ: TypeModificationList},
	},
}

// Factory is the ordered column schema of one section: the stable columns
// plus optional columns added while a header is read or a file is built.
type Factory struct {
	section  Section
	stable   []*Column
	optional []*Column
	byKey    map[LogicalKey]*Column
	byHeader map[string]*Column
	seq      int
}

// NewFactory returns the schema for a section preloaded with its stable
// columns. Header sections are mapped to their data section.
func NewFactory(section Section) (*Factory, error) {
	section = section.Data()
	defs, ok := stableColumns[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotTableSection, section.Name())
	}
	f := &Factory{
		section:  section,
		byKey:    make(map[LogicalKey]*Column),
		byHeader: make(map[string]*Column),
	}
	for _, d := range defs {
		c := &Column{
			Key:    LogicalKey{Kind: d.kind},
			Header: d.kind.String(),
			Type:   d.typ,
			Sep:    d.sep,
			Stable: true,
		}
		f.stable = append(f.stable, c)
		f.index(c)
	}
	return f, nil
}

// MustFactory is NewFactory for sections known to be tabular.
func MustFactory(section Section) *Factory {
	f, err := NewFactory(section)
	if err != nil {
		panic(err)
	}
	return f
}

func (f *Factory) index(c *Column) {
	f.byKey[c.Key] = c
	f.byHeader[c.Header] = c
}

// Section returns the data section of the schema
func (f *Factory) Section() Section {
	return f.section
}

// Len returns the total number of columns
func (f *Factory) Len() int {
	return len(f.stable) + len(f.optional)
}

// StableColumns returns the fixed columns in canonical order
func (f *Factory) StableColumns() []*Column {
	return f.stable
}

// OptionalColumns returns optional columns by category, then insertion order.
func (f *Factory) OptionalColumns() []*Column {
	cols := make([]*Column, len(f.optional))
	copy(cols, f.optional)
	sort.SliceStable(cols, func(i, j int) bool {
		ri, rj := cols[i].Key.Kind.rank(), cols[j].Key.Kind.rank()
		if ri != rj {
			return ri < rj
		}
		return cols[i].seq < cols[j].seq
	})
	return cols
}

// Columns returns every column in header order
func (f *Factory) Columns() []*Column {
	return append(append([]*Column{}, f.stable...), f.OptionalColumns()...)
}

// AbundanceColumns returns the abundance columns in insertion order
func (f *Factory) AbundanceColumns() []*Column {
	var cols []*Column
	for _, c := range f.OptionalColumns() {
		if c.Key.Kind.IsAbundance() {
			cols = append(cols, c)
		}
	}
	return cols
}

// Column returns the column with the given logical key, or nil
func (f *Factory) Column(key LogicalKey) *Column {
	return f.byKey[key]
}

// FindByHeader returns the column with exactly this header text, or nil.
func (f *Factory) FindByHeader(header string) *Column {
	return f.byHeader[header]
}

// HasKind reports whether any column of kind k exists
func (f *Factory) HasKind(k ColumnKind) bool {
	for _, c := range f.optional {
		if c.Key.Kind == k {
			return true
		}
	}
	for _, c := range f.stable {
		if c.Key.Kind == k {
			return true
		}
	}
	return false
}

func (f *Factory) add(c *Column) *Column {
	if existing, ok := f.byKey[c.Key]; ok {
		return existing
	}
	f.seq++
	c.seq = f.seq
	f.optional = append(f.optional, c)
	f.index(c)
	return c
}

// AddOptionalColumn adds reliability, uri, go_terms, search engine score and
// count columns. Adding an existing column returns the existing one.
func (f *Factory) AddOptionalColumn(kind ColumnKind, id int, entity *EntityRef) (*Column, error) {
	key := LogicalKey{Kind: kind}
	typ := TypeDouble
	var sep byte

	switch kind {
	case ColReliability:
		typ = TypeReliability
	case ColURI:
		typ = TypeURI
	case ColGOTerms:
		if f.section != SectionProtein {
			return nil, fmt.Errorf("%w: %s in %s", ErrColumnNotAllowed, kind, f.section.Name())
		}
		typ, sep = TypeGOTermList, '|'
	case ColBestSearchEngineScore:
		if f.section == SectionPSM {
			return nil, fmt.Errorf("%w: %s in %s", ErrColumnNotAllowed, kind, f.section.Name())
		}
		if id < 1 {
			return nil, fmt.Errorf("%w: %s[%d]", ErrInvalidColumnID, kind, id)
		}
		key.ID = id
	case ColSearchEngineScore:
		if id < 1 {
			return nil, fmt.Errorf("%w: %s[%d]", ErrInvalidColumnID, kind, id)
		}
		key.ID = id
		if f.section == SectionPSM {
			if entity != nil {
				return nil, fmt.Errorf("%w: psm %s takes no ms_run", ErrEntityKind, kind)
			}
		} else {
			if entity == nil || entity.Kind != EntityMsRun {
				return nil, fmt.Errorf("%w: %s needs an ms_run", ErrEntityKind, kind)
			}
			key.Entity = *entity
		}
	case ColNumPSMs, ColNumPeptidesDistinct, ColNumPeptidesUnique:
		if f.section != SectionProtein && f.section != SectionPeptide {
			return nil, fmt.Errorf("%w: %s in %s", ErrColumnNotAllowed, kind, f.section.Name())
		}
		if entity == nil || entity.Kind != EntityMsRun {
			return nil, fmt.Errorf("%w: %s needs an ms_run", ErrEntityKind, kind)
		}
		typ = TypeInteger
		key.Entity = *entity
	default:
		return nil, fmt.Errorf("%w: %s is not a plain optional column", ErrColumnNotAllowed, kind)
	}

	if key.Entity.Kind != EntityNone && key.Entity.ID < 1 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColumnID, key.Entity)
	}
	return f.add(&Column{Key: key, Header: key.String(), Type: typ, Sep: sep}), nil
}

// AddAbundanceColumn adds protein_abundance_assay[n] for an assay or the
// value, stdev and std_error triplet for a study variable.
func (f *Factory) AddAbundanceColumn(entity EntityRef) ([]*Column, error) {
	if f.section == SectionPSM {
		return nil, fmt.Errorf("%w: abundance in psm", ErrColumnNotAllowed)
	}
	if entity.ID < 1 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidColumnID, entity)
	}
	var kinds []ColumnKind
	switch entity.Kind {
	case EntityAssay:
		kinds = []ColumnKind{ColAbundance}
	case EntityStudyVariable:
		kinds = []ColumnKind{ColAbundance, ColAbundanceStdev, ColAbundanceStdError}
	default:
		return nil, fmt.Errorf("%w: abundance needs an assay or study_variable", ErrEntityKind)
	}

	cols := make([]*Column, 0, len(kinds))
	for _, k := range kinds {
		key := LogicalKey{Kind: k, Entity: entity}
		cols = append(cols, f.add(&Column{
			Key:    key,
			Header: f.section.ScorePrefix() + "_" + key.String(),
			Type:   TypeDouble,
		}))
	}
	return cols, nil
}

// AddUserColumn adds opt_{entity}_{name}. A nil entity means global.
func (f *Factory) AddUserColumn(entity *EntityRef, name string, typ ValueType) (*Column, error) {
	name = SanitizeOptName(name)
	if name == "" {
		return nil, fmt.Errorf("%w: opt_ column without a name", ErrColumnNotAllowed)
	}
	ref, err := userEntity(entity)
	if err != nil {
		return nil, err
	}
	key := LogicalKey{Kind: ColOpt, Entity: ref, Name: name}
	return f.add(&Column{Key: key, Header: key.String(), Type: typ}), nil
}

// AddCVUserColumn adds opt_{entity}_cv_{accession}_{name} for a CV parameter.
func (f *Factory) AddCVUserColumn(entity *EntityRef, p Param, typ ValueType) (*Column, error) {
	if p.Accession == "" {
		return nil, fmt.Errorf("%w: cv opt_ column needs an accession", ErrColumnNotAllowed)
	}
	ref, err := userEntity(entity)
	if err != nil {
		return nil, err
	}
	key := LogicalKey{Kind: ColOpt, Entity: ref, Name: "cv_" + p.Accession + "_" + SanitizeOptName(p.Name)}
	param := p
	return f.add(&Column{Key: key, Header: key.String(), Type: typ, Param: &param}), nil
}

func userEntity(entity *EntityRef) (EntityRef, error) {
	if entity == nil {
		return GlobalRef(), nil
	}
	switch entity.Kind {
	case EntityGlobal:
		return GlobalRef(), nil
	case EntityMsRun, EntityAssay, EntityStudyVariable:
		if entity.ID < 1 {
			return EntityRef{}, fmt.Errorf("%w: %s", ErrInvalidColumnID, entity)
		}
		return *entity, nil
	}
	return EntityRef{}, fmt.Errorf("%w: opt_ column entity", ErrEntityKind)
}
