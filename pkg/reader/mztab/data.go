package mztab

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

// dataParser validates the data lines of one section against the factory
// and position mapping built from its header.
type dataParser struct {
	*reporter
	section core.Section
	factory *core.Factory
	mapping *PositionMapping
	md      *core.Metadata
}

func newDataParser(f *core.Factory, m *PositionMapping, md *core.Metadata, rep *reporter) *dataParser {
	return &dataParser{
		reporter: rep,
		section:  f.Section(),
		factory:  f,
		mapping:  m,
		md:       md,
	}
}

// parse checks one line and returns its record, or nil when the field
// count does not match the header. The sequence cell goes first so that
// modification sites are bounded whatever the column order.
func (p *dataParser) parse(line int, fields []string) *core.Record {
	if len(fields) != p.mapping.Len() {
		p.add(mzerror.CountMatch, line, p.section.Prefix(), len(fields), p.mapping.Len())
		return nil
	}
	rec := core.NewRecord(p.factory, p.md)
	rec.Line = line
	seqPos, hasSeq := p.mapping.Position(core.LogicalKey{Kind: core.ColSequence})
	if hasSeq {
		p.cell(rec, p.mapping.Column(seqPos), strings.TrimSpace(fields[seqPos]), line)
	}
	for pos := 1; pos < len(fields); pos++ {
		c := p.mapping.Column(pos)
		if c == nil || (hasSeq && pos == seqPos) {
			continue
		}
		p.cell(rec, c, strings.TrimSpace(fields[pos]), line)
	}
	p.crossCheck(rec, line)
	return rec
}

func (p *dataParser) notNull(c *core.Column) bool {
	switch p.section {
	case core.SectionProtein:
		return c.Key.Kind == core.ColAccession
	case core.SectionPeptide:
		return c.Key.Kind == core.ColSequence
	case core.SectionPSM:
		return c.Key.Kind == core.ColSequence || c.Key.Kind == core.ColPSMID
	}
	return false
}

func (p *dataParser) cell(rec *core.Record, c *core.Column, text string, line int) {
	if core.IsNull(text) {
		if p.notNull(c) {
			p.add(mzerror.NotNULL, line, c.Header, p.section.Name())
		}
		return
	}

	v, err := core.ParseValue(c, text)
	if err != nil {
		if c.Type == core.TypeURI {
			// flagged, not rejected
			p.add(mzerror.URI, line, c.Header, text)
			v = text
		} else {
			p.formatError(c, text, err, line)
			return
		}
	}
	if err := rec.Set(c.Key, v); err != nil {
		p.rejected(c, text, err, line)
		return
	}
	p.advise(c, v, text, line)
}

// rejected reports a value that parsed but failed the record's rules.
func (p *dataParser) rejected(c *core.Column, text string, err error, line int) {
	var pe *core.PositionError
	var me *core.MsRunError
	switch {
	case errors.As(err, &pe), errors.As(err, &me):
		for _, e := range joined(err) {
			switch {
			case errors.As(e, &pe):
				p.add(mzerror.ModificationPosition, line, pe.Position, pe.Mod.String(), len(pe.Sequence)+1, pe.Sequence)
			case errors.As(e, &me):
				p.add(mzerror.SpectraRef, line, text, fmt.Sprintf("ms_run[%d]", me.MsRun))
			}
		}
	case errors.Is(err, core.ErrProteinCoverage):
		p.add(mzerror.ProteinCoverage, line, text)
	case errors.Is(err, core.ErrInvalidResidue):
		p.add(mzerror.Residue, line, c.Header, text)
	default:
		p.formatError(c, text, err, line)
	}
}

func joined(err error) []error {
	if j, ok := err.(interface{ Unwrap() []error }); ok {
		return j.Unwrap()
	}
	return []error{err}
}

func (p *dataParser) formatError(c *core.Column, text string, err error, line int) {
	switch c.Type {
	case core.TypeInteger:
		p.add(mzerror.Integer, line, c.Header, text)
	case core.TypeDouble:
		p.add(mzerror.Double, line, c.Header, text)
	case core.TypeParamList:
		p.add(mzerror.ParamList, line, c.Header, text)
	case core.TypeStringList:
		p.add(mzerror.StringList, line, c.Header, text, string(c.Sep))
	case core.TypeDoubleList:
		p.add(mzerror.DoubleList, line, c.Header, text)
	case core.TypeModificationList:
		if p.section == core.SectionSmallMolecule && errors.Is(err, core.ErrChemModAccession) {
			p.add(mzerror.CHEMMODSAccession, line, text)
			return
		}
		p.add(mzerror.ModificationList, line, c.Header, text, err)
	case core.TypeSpectraRefList:
		p.add(mzerror.SpectraRefFormat, line, c.Header, text)
	case core.TypeGOTermList:
		p.add(mzerror.GOTermList, line, c.Header, text)
	case core.TypeBoolean:
		p.add(mzerror.MZBoolean, line, c.Header, text)
	case core.TypeReliability:
		p.add(mzerror.Reliability, line, c.Header, text)
	default:
		p.add(mzerror.ColumnNotValid, line, c.Header, p.section.Name())
	}
}

// advise adds the warnings a stored value can still carry.
func (p *dataParser) advise(c *core.Column, v any, text string, line int) {
	switch c.Key.Kind {
	case core.ColSpectraRef:
		for _, ref := range v.(core.SpectraRefList) {
			if run := p.md.MsRuns[ref.MsRun]; run != nil && run.Location == "" {
				p.add(mzerror.MsRunLocation, line, text, fmt.Sprintf("ms_run[%d]", ref.MsRun))
			}
		}
	case core.ColModifications:
		p.checkChemMods(v.(core.ModificationList), line)
	}
}

func (p *dataParser) checkChemMods(mods core.ModificationList, line int) {
	if !mods.Has(core.ModCHEMMOD) {
		return
	}
	if p.section == core.SectionSmallMolecule && !mods.Has(core.ModMOD) && !mods.Has(core.ModUNIMOD) {
		return
	}
	for _, m := range mods {
		if m.Type == core.ModCHEMMOD {
			p.add(mzerror.CHEMMODS, line, m.String())
		}
	}
}

// crossCheck runs the rules that need more than one cell of the line.
func (p *dataParser) crossCheck(rec *core.Record, line int) {
	if p.section != core.SectionPeptide && p.section != core.SectionPSM {
		return
	}
	seq := rec.Text(core.ColSequence)
	if seq == "" {
		return
	}
	for _, m := range rec.Modifications() {
		if m.IsAmbiguous() {
			p.add(mzerror.AmbiguityMod, line, m.String(), seq, len(m.Positions))
		}
	}
}
