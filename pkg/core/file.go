package core

import (
	"fmt"
	"sort"
)

// Comment is a COM line.
type Comment struct {
	Line int
	Text string
}

// File is a fully parsed or in-memory built mzTab document.
type File struct {
	Metadata *Metadata
	Comments []Comment

	factories map[Section]*Factory

	Proteins       []*Protein
	Peptides       []*Peptide
	PSMs           []*PSM
	SmallMolecules []*SmallMolecule
}

// NewFile returns a file with the given metadata and no sections.
func NewFile(md *Metadata) *File {
	if md == nil {
		md = NewMetadata()
	}
	return &File{Metadata: md, factories: make(map[Section]*Factory)}
}

// SetFactory installs the column schema of a section.
func (f *File) SetFactory(factory *Factory) {
	f.factories[factory.Section()] = factory
}

// Factory returns the column schema of a section, or nil if the section is
// absent.
func (f *File) Factory(section Section) *Factory {
	return f.factories[section.Data()]
}

// EnsureFactory returns the schema of a section, creating it when absent.
func (f *File) EnsureFactory(section Section) (*Factory, error) {
	if fac := f.Factory(section); fac != nil {
		return fac, nil
	}
	fac, err := NewFactory(section)
	if err != nil {
		return nil, err
	}
	f.SetFactory(fac)
	return fac, nil
}

// AddComment appends a COM line
func (f *File) AddComment(line int, text string) {
	f.Comments = append(f.Comments, Comment{Line: line, Text: text})
}

// AddRecord appends a record to the collection of its section. The record
// must have been built against the file's factory for that section.
func (f *File) AddRecord(r *Record) error {
	if f.Factory(r.Section()) != r.Factory() {
		return fmt.Errorf("%w: %s record built against a foreign factory", ErrWrongSection, r.Section().Name())
	}
	switch r.Section() {
	case SectionProtein:
		f.Proteins = append(f.Proteins, &Protein{r})
	case SectionPeptide:
		f.Peptides = append(f.Peptides, &Peptide{r})
	case SectionPSM:
		f.PSMs = append(f.PSMs, &PSM{r})
	case SectionSmallMolecule:
		f.SmallMolecules = append(f.SmallMolecules, &SmallMolecule{r})
	default:
		return fmt.Errorf("%w: %s", ErrNotTableSection, r.Section().Name())
	}
	return nil
}

// Records returns the records of a section ordered by source line.
func (f *File) Records(section Section) []*Record {
	var recs []*Record
	switch section.Data() {
	case SectionProtein:
		for _, p := range f.Proteins {
			recs = append(recs, p.Record)
		}
	case SectionPeptide:
		for _, p := range f.Peptides {
			recs = append(recs, p.Record)
		}
	case SectionPSM:
		for _, p := range f.PSMs {
			recs = append(recs, p.Record)
		}
	case SectionSmallMolecule:
		for _, s := range f.SmallMolecules {
			recs = append(recs, s.Record)
		}
	}
	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Line < recs[j].Line })
	return recs
}

// Sections returns the data sections present, in file order.
func (f *File) Sections() []Section {
	var out []Section
	for _, s := range DataSections {
		if f.factories[s] != nil {
			out = append(out, s)
		}
	}
	return out
}
