package mztab

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

var (
	elementPattern  = regexp.MustCompile(`^([A-Za-z_]+)(?:\[([^\]]*)\])?$`)
	refPattern      = regexp.MustCompile(`^(sample|ms_run|assay)\[(\d+)\]$`)
	scoreKeyPattern = regexp.MustCompile(`^(protein|peptide|psm|smallmolecule)_search_engine_score\[([^\]]*)\]$`)
)

// element is one {name}[id] token of a metadata key.
type element struct {
	name  string
	id    int
	hasID bool
}

type pendingColUnit struct {
	section core.Section
	column  string
	line    int
}

// metadataParser applies MTD lines to a Metadata value.
type metadataParser struct {
	*reporter
	md      *core.Metadata
	defined map[string]bool
	pending []pendingColUnit
}

func newMetadataParser(md *core.Metadata, rep *reporter) *metadataParser {
	return &metadataParser{
		reporter: rep,
		md:       md,
		defined:  make(map[string]bool),
	}
}

// parse handles one MTD line. The returned error is non-nil only for a
// fatal mzTab-mode or mzTab-type value, or on overflow.
func (p *metadataParser) parse(line int, fields []string) error {
	if len(fields) != 3 {
		p.add(mzerror.MTDLine, line, len(fields))
		return p.err
	}
	key, value := strings.TrimSpace(fields[1]), strings.TrimSpace(fields[2])
	if value == "" && key != "mzTab-mode" && key != "mzTab-type" {
		// nothing to store, and nothing the writer could give back
		p.add(mzerror.MTDValue, line, key)
		return p.err
	}

	if section, ok := colUnitSection(key); ok {
		p.colUnit(line, section, value)
		return p.err
	}
	if p.defined[key] {
		p.add(mzerror.DuplicationDefine, line, key)
		return p.err
	}
	p.defined[key] = true

	switch key {
	case "mzTab-version":
		p.md.Version = value
	case "mzTab-mode":
		mode, ok := core.ParseMode(value)
		if !ok {
			return p.fatal(mzerror.MZTabMode, line, value)
		}
		p.md.Mode = mode
	case "mzTab-type":
		typ, ok := core.ParseType(value)
		if !ok {
			return p.fatal(mzerror.MZTabType, line, value)
		}
		p.md.Type = typ
	case "mzTab-ID":
		p.md.ID = value
	case "title":
		p.md.Title = value
	case "description":
		p.md.Description = value
	case "false_discovery_rate":
		if l, ok := p.paramList(line, key, value); ok {
			p.md.FalseDiscoveryRate = l
		}
	case "quantification_method":
		if pr, ok := p.param(line, key, value); ok {
			p.md.QuantificationMethod = &pr
		}
	case "protein-quantification_unit":
		p.quantUnit(line, core.SectionProtein, key, value)
	case "peptide-quantification_unit":
		p.quantUnit(line, core.SectionPeptide, key, value)
	case "small_molecule-quantification_unit":
		p.quantUnit(line, core.SectionSmallMolecule, key, value)
	default:
		if m := scoreKeyPattern.FindStringSubmatch(key); m != nil {
			p.searchEngineScore(line, key, value, m[1], m[2])
		} else {
			p.indexed(line, key, value)
		}
	}
	return p.err
}

func colUnitSection(key string) (core.Section, bool) {
	name, ok := strings.CutPrefix(key, "colunit-")
	if !ok {
		return 0, false
	}
	return sectionByName(name)
}

func sectionByName(name string) (core.Section, bool) {
	switch name {
	case "protein":
		return core.SectionProtein, true
	case "peptide":
		return core.SectionPeptide, true
	case "psm":
		return core.SectionPSM, true
	case "small_molecule", "smallmolecule":
		return core.SectionSmallMolecule, true
	}
	return 0, false
}

func (p *metadataParser) param(line int, key, value string) (core.Param, bool) {
	pr, err := core.ParseParam(value)
	if err != nil {
		p.add(mzerror.Param, line, key, value)
		return core.Param{}, false
	}
	return pr, true
}

func (p *metadataParser) paramList(line int, key, value string) (core.ParamList, bool) {
	l, err := core.ParseParamList(value)
	if err != nil {
		p.add(mzerror.ParamList, line, key, value)
		return nil, false
	}
	return l, true
}

func (p *metadataParser) uri(line int, key, value string) {
	if _, err := core.ParseURI(value); err != nil {
		p.add(mzerror.URI, line, key, value)
	}
}

func (p *metadataParser) quantUnit(line int, section core.Section, key, value string) {
	if pr, ok := p.param(line, key, value); ok {
		p.md.QuantificationUnits[section] = pr
	}
}

func (p *metadataParser) searchEngineScore(line int, key, value, prefix, rawID string) {
	id, err := strconv.Atoi(rawID)
	if err != nil || id < 1 {
		p.add(mzerror.IDNumber, line, rawID, key)
		return
	}
	section, _ := sectionByName(prefix)
	if pr, ok := p.param(line, key, value); ok {
		p.md.AddSearchEngineScore(section, id, pr)
	}
}

// colUnit records {column}={unit} and defers the column check until the
// section's header has been read.
func (p *metadataParser) colUnit(line int, section core.Section, value string) {
	column, unit, ok := strings.Cut(value, "=")
	column = strings.TrimSpace(column)
	if !ok || column == "" {
		p.add(mzerror.ColUnitFormat, line, value)
		return
	}
	pr, err := core.ParseParam(unit)
	if err != nil {
		p.add(mzerror.ColUnitFormat, line, value)
		return
	}
	p.md.AddColUnit(section, core.ColUnit{Column: column, Unit: pr})
	p.pending = append(p.pending, pendingColUnit{section: section, column: column, line: line})
}

// resolveColUnits drains the pending colunit checks of one section against
// its freshly built column factory.
func (p *metadataParser) resolveColUnits(f *core.Factory) {
	kept := p.pending[:0]
	for _, pu := range p.pending {
		if pu.section != f.Section() {
			kept = append(kept, pu)
			continue
		}
		if f.FindByHeader(pu.column) == nil {
			p.add(mzerror.ColUnit, pu.line, pu.section.Name(), pu.column, pu.section.Name())
		}
	}
	p.pending = kept
}

// finish reports colunits whose section never got a header.
func (p *metadataParser) finish() {
	for _, pu := range p.pending {
		p.add(mzerror.ColUnit, pu.line, pu.section.Name(), pu.column, pu.section.Name())
	}
	p.pending = nil
}

// checkRequired runs once the metadata block is complete.
func (p *metadataParser) checkRequired() {
	if p.md.Version == "" {
		p.md.Version = core.DefaultVersion
	}
	if p.md.Mode == core.ModeUnset {
		p.add(mzerror.NotDefineInMetadata, -1, "mzTab-mode")
	}
	if p.md.Type == core.TypeUnset {
		p.add(mzerror.NotDefineInMetadata, -1, "mzTab-type")
	}
}

func (p *metadataParser) elements(line int, key string) ([]element, bool) {
	parts := strings.Split(key, "-")
	elems := make([]element, len(parts))
	for i, part := range parts {
		m := elementPattern.FindStringSubmatch(part)
		if m == nil {
			p.add(mzerror.MTDDefineLabel, line, key)
			return nil, false
		}
		elems[i].name = m[1]
		if strings.Contains(part, "[") {
			id, err := strconv.Atoi(m[2])
			if err != nil || id < 1 {
				p.add(mzerror.IDNumber, line, m[2], key)
				return nil, false
			}
			elems[i].id = id
			elems[i].hasID = true
		}
	}
	return elems, true
}

// indexed handles {element}[n](-{property}[m]?)* keys.
func (p *metadataParser) indexed(line int, key, value string) {
	elems, ok := p.elements(line, key)
	if !ok {
		return
	}
	head, sub := elems[0], elems[1:]
	if !head.hasID {
		p.add(mzerror.MTDDefineLabel, line, key)
		return
	}

	var handled bool
	switch head.name {
	case "sample_processing":
		if len(sub) == 0 {
			if l, ok := p.paramList(line, key, value); ok {
				p.md.SampleProcessing[head.id] = l
			}
			handled = true
		}
	case "instrument":
		handled = p.instrument(line, key, value, head.id, sub)
	case "software":
		handled = p.software(line, key, value, head.id, sub)
	case "publication":
		if len(sub) == 0 {
			items, err := core.ParsePublication(value)
			if err != nil {
				p.add(mzerror.Publication, line, value)
			} else {
				p.md.Publications[head.id] = &core.Publication{ID: head.id, Items: items}
			}
			handled = true
		}
	case "contact":
		handled = p.contact(line, key, value, head.id, sub)
	case "uri":
		if len(sub) == 0 {
			p.uri(line, key, value)
			p.md.URIs[head.id] = value
			handled = true
		}
	case "fixed_mod":
		handled = p.modDeclaration(line, key, value, func() *core.ModDeclaration { return p.md.FixedMod(head.id) }, sub)
	case "variable_mod":
		handled = p.modDeclaration(line, key, value, func() *core.ModDeclaration { return p.md.VariableMod(head.id) }, sub)
	case "ms_run":
		handled = p.msRun(line, key, value, head.id, sub)
	case "custom":
		if len(sub) == 0 {
			if pr, ok := p.param(line, key, value); ok {
				p.md.Custom[head.id] = pr
			}
			handled = true
		}
	case "sample":
		handled = p.sample(line, key, value, head.id, sub)
	case "assay":
		handled = p.assay(line, key, value, head.id, sub)
	case "study_variable":
		handled = p.studyVariable(line, key, value, head.id, sub)
	case "cv":
		handled = p.cv(value, head.id, sub)
	}
	if !handled {
		p.add(mzerror.MTDDefineLabel, line, key)
	}
}

// property returns the single sub-property of a key, if there is exactly one.
func property(sub []element) (element, bool) {
	if len(sub) != 1 {
		return element{}, false
	}
	return sub[0], true
}

// The entity handlers below check the value before they look up (and so
// create) the entity, so a rejected line leaves no empty entity behind.

func (p *metadataParser) instrument(line int, key, value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok {
		return false
	}
	switch {
	case prop.hasID && prop.name != "analyzer", !prop.hasID && prop.name == "analyzer":
		return false
	case prop.name != "name" && prop.name != "source" && prop.name != "detector" && prop.name != "analyzer":
		return false
	}
	pr, ok := p.param(line, key, value)
	if !ok {
		return true
	}
	in := p.md.Instrument(id)
	switch prop.name {
	case "name":
		in.Name = &pr
	case "source":
		in.Source = &pr
	case "detector":
		in.Detector = &pr
	case "analyzer":
		in.Analyzers[prop.id] = pr
	}
	return true
}

func (p *metadataParser) software(line int, key, value string, id int, sub []element) bool {
	if len(sub) == 0 {
		if pr, ok := p.param(line, key, value); ok {
			p.md.SoftwareEntry(id).Param = &pr
		}
		return true
	}
	prop, ok := property(sub)
	if !ok || prop.name != "setting" || !prop.hasID {
		return false
	}
	p.md.SoftwareEntry(id).Settings[prop.id] = value
	return true
}

func (p *metadataParser) contact(line int, key, value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok || prop.hasID {
		return false
	}
	switch prop.name {
	case "name":
		p.md.Contact(id).Name = value
	case "affiliation":
		p.md.Contact(id).Affiliation = value
	case "email":
		if _, err := core.ParseEmail(value); err != nil {
			p.add(mzerror.Email, line, key, value)
			return true
		}
		p.md.Contact(id).Email = value
	default:
		return false
	}
	return true
}

func (p *metadataParser) modDeclaration(line int, key, value string, decl func() *core.ModDeclaration, sub []element) bool {
	if len(sub) == 0 {
		if pr, ok := p.param(line, key, value); ok {
			decl().Param = &pr
		}
		return true
	}
	prop, ok := property(sub)
	if !ok || prop.hasID {
		return false
	}
	switch prop.name {
	case "site":
		decl().Site = value
	case "position":
		decl().Position = value
	default:
		return false
	}
	return true
}

func (p *metadataParser) msRun(line int, key, value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok || prop.hasID {
		return false
	}
	switch prop.name {
	case "format", "id_format", "hash_method":
		pr, ok := p.param(line, key, value)
		if !ok {
			return true
		}
		run := p.md.MsRun(id)
		switch prop.name {
		case "format":
			run.Format = &pr
		case "id_format":
			run.IDFormat = &pr
		default:
			run.HashMethod = &pr
		}
	case "location":
		p.uri(line, key, value)
		p.md.MsRun(id).Location = value
	case "fragmentation_method":
		if l, ok := p.paramList(line, key, value); ok {
			p.md.MsRun(id).FragmentationMethod = l
		}
	case "hash":
		p.md.MsRun(id).Hash = value
	default:
		return false
	}
	return true
}

func (p *metadataParser) sample(line int, key, value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok {
		return false
	}
	if prop.name == "description" && !prop.hasID {
		p.md.Sample(id).Description = value
		return true
	}
	if !prop.hasID {
		return false
	}
	switch prop.name {
	case "species", "tissue", "cell_type", "disease", "custom":
	default:
		return false
	}
	pr, ok := p.param(line, key, value)
	if !ok {
		return true
	}
	s := p.md.Sample(id)
	switch prop.name {
	case "species":
		s.Species[prop.id] = pr
	case "tissue":
		s.Tissue[prop.id] = pr
	case "cell_type":
		s.CellType[prop.id] = pr
	case "disease":
		s.Disease[prop.id] = pr
	case "custom":
		s.Custom[prop.id] = pr
	}
	return true
}

func (p *metadataParser) assay(line int, key, value string, id int, sub []element) bool {
	if len(sub) == 0 {
		return false
	}
	prop := sub[0]

	if prop.name == "quantification_mod" && prop.hasID {
		qmod := func() *core.AssayQuantificationMod {
			a := p.md.Assay(id)
			qm, ok := a.QuantificationMods[prop.id]
			if !ok {
				qm = &core.AssayQuantificationMod{ID: prop.id}
				a.QuantificationMods[prop.id] = qm
			}
			return qm
		}
		switch {
		case len(sub) == 1:
			if pr, ok := p.param(line, key, value); ok {
				qmod().Param = &pr
			}
		case len(sub) == 2 && sub[1].name == "site" && !sub[1].hasID:
			qmod().Site = value
		case len(sub) == 2 && sub[1].name == "position" && !sub[1].hasID:
			qmod().Position = value
		default:
			return false
		}
		return true
	}

	if len(sub) != 1 || prop.hasID {
		return false
	}
	switch prop.name {
	case "quantification_reagent":
		if pr, ok := p.param(line, key, value); ok {
			p.md.Assay(id).QuantificationReagent = &pr
		}
	case "sample_ref":
		if ref, ok := p.reference(line, value, "sample"); ok {
			p.md.Assay(id).SampleRef = ref
		}
	case "ms_run_ref":
		if ref, ok := p.reference(line, value, "ms_run"); ok {
			p.md.Assay(id).MsRunRef = ref
		}
	default:
		return false
	}
	return true
}

func (p *metadataParser) studyVariable(line int, key, value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok || prop.hasID {
		return false
	}
	switch prop.name {
	case "assay_refs":
		if refs := p.references(line, key, value, "assay"); len(refs) > 0 {
			p.md.StudyVariable(id).AssayRefs = refs
		}
	case "sample_refs":
		if refs := p.references(line, key, value, "sample"); len(refs) > 0 {
			p.md.StudyVariable(id).SampleRefs = refs
		}
	case "description":
		p.md.StudyVariable(id).Description = value
	default:
		return false
	}
	return true
}

func (p *metadataParser) cv(value string, id int, sub []element) bool {
	prop, ok := property(sub)
	if !ok || prop.hasID {
		return false
	}
	switch prop.name {
	case "label":
		p.md.CV(id).Label = value
	case "full_name":
		p.md.CV(id).FullName = value
	case "version":
		p.md.CV(id).Version = value
	case "url":
		p.md.CV(id).URL = value
	default:
		return false
	}
	return true
}

// reference resolves {kind}[n] against entities already defined.
func (p *metadataParser) reference(line int, value, kind string) (int, bool) {
	m := refPattern.FindStringSubmatch(strings.TrimSpace(value))
	if m == nil || m[1] != kind {
		p.add(mzerror.MTDDefineLabel, line, value)
		return 0, false
	}
	id, _ := strconv.Atoi(m[2])
	var defined bool
	switch kind {
	case "sample":
		_, defined = p.md.Samples[id]
	case "ms_run":
		_, defined = p.md.MsRuns[id]
	case "assay":
		_, defined = p.md.Assays[id]
	}
	if !defined {
		p.add(mzerror.NotDefineInMetadata, line, fmt.Sprintf("%s[%d]", kind, id))
		return 0, false
	}
	return id, true
}

// references resolves a ',' separated id set; duplicates are reported and
// dropped.
func (p *metadataParser) references(line int, key, value, kind string) []int {
	var ids []int
	seen := make(map[int]bool)
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		id, ok := p.reference(line, item, kind)
		if !ok {
			continue
		}
		if seen[id] {
			p.add(mzerror.DuplicationID, line, item, key)
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	return ids
}
