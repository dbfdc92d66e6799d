package mztab

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

var (
	bestScorePattern = regexp.MustCompile(`^best_search_engine_score\[(\d+)\]$`)
	scorePattern     = regexp.MustCompile(`^search_engine_score\[(\d+)\](?:_ms_run\[(\d+)\])?$`)
	countPattern     = regexp.MustCompile(`^(num_psms|num_peptides_distinct|num_peptides_unique)_ms_run\[(\d+)\]$`)
	abundancePattern = regexp.MustCompile(`^([a-z]+)_(abundance|abundance_stdev|abundance_std_error)_(assay|study_variable)\[(\d+)\]$`)
	optPattern       = regexp.MustCompile(`^opt_(global|(ms_run|assay|study_variable)\[(\d+)\])_(.+)$`)
	cvOptPattern     = regexp.MustCompile(`^cv_([^_]+)_(.*)$`)
)

// decoyAccession is the CV term whose opt_ column holds a boolean.
const decoyAccession = "MS:1002217"

// PositionMapping maps the physical columns of one header line onto the
// logical columns of the section's factory. Position 0 is the line prefix.
type PositionMapping struct {
	columns []*core.Column
	byKey   map[core.LogicalKey]int
}

// Len returns the number of fields of the header line, prefix included
func (m *PositionMapping) Len() int {
	return len(m.columns)
}

// Column returns the logical column at a 1-based physical position, or nil
// when the header cell there was rejected.
func (m *PositionMapping) Column(pos int) *core.Column {
	if pos < 1 || pos >= len(m.columns) {
		return nil
	}
	return m.columns[pos]
}

// Position returns the physical position of a logical column.
func (m *PositionMapping) Position(key core.LogicalKey) (int, bool) {
	pos, ok := m.byKey[key]
	return pos, ok
}

type headerParser struct {
	*reporter
	factory *core.Factory
	md      *core.Metadata
	line    int
	name    string
	svParts map[int]map[core.ColumnKind]bool
}

// parseHeader builds the column factory and position mapping of a section
// from its header line.
func parseHeader(section core.Section, fields []string, line int, md *core.Metadata, rep *reporter) (*core.Factory, *PositionMapping) {
	p := &headerParser{
		reporter: rep,
		factory:  core.MustFactory(section),
		md:       md,
		line:     line,
		name:     section.Data().Name(),
		svParts:  make(map[int]map[core.ColumnKind]bool),
	}
	mapping := &PositionMapping{
		columns: make([]*core.Column, len(fields)),
		byKey:   make(map[core.LogicalKey]int),
	}

	seen := make(map[string]bool)
	for pos := 1; pos < len(fields); pos++ {
		h := strings.TrimSpace(fields[pos])
		if seen[h] {
			p.add(mzerror.DuplicateColumn, line, h, p.name)
			continue
		}
		seen[h] = true

		c := p.column(h)
		if c == nil {
			continue
		}
		if _, dup := mapping.byKey[c.Key]; dup {
			p.add(mzerror.DuplicateColumn, line, h, p.name)
			continue
		}
		mapping.columns[pos] = c
		mapping.byKey[c.Key] = pos
	}

	for _, c := range p.factory.StableColumns() {
		if _, ok := mapping.byKey[c.Key]; !ok {
			p.add(mzerror.StableColumn, line, c.Header, p.name)
		}
	}
	ids := make([]int, 0, len(p.svParts))
	for id := range p.svParts {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	for _, id := range ids {
		if len(p.svParts[id]) != 3 {
			p.add(mzerror.AbundanceColumn, line, core.StudyVariableRef(id).String())
		}
	}
	return p.factory, mapping
}

func (p *headerParser) column(h string) *core.Column {
	if c := p.factory.FindByHeader(h); c != nil && c.Stable {
		return c
	}

	switch h {
	case "reliability":
		return p.optional(h, core.ColReliability, 0, nil)
	case "uri":
		return p.optional(h, core.ColURI, 0, nil)
	case "go_terms":
		return p.optional(h, core.ColGOTerms, 0, nil)
	}

	if m := bestScorePattern.FindStringSubmatch(h); m != nil {
		return p.optional(h, core.ColBestSearchEngineScore, atoi(m[1]), nil)
	}
	if m := scorePattern.FindStringSubmatch(h); m != nil {
		if m[2] == "" {
			return p.optional(h, core.ColSearchEngineScore, atoi(m[1]), nil)
		}
		run := core.MsRunRef(atoi(m[2]))
		p.checkEntity(run)
		return p.optional(h, core.ColSearchEngineScore, atoi(m[1]), &run)
	}
	if m := countPattern.FindStringSubmatch(h); m != nil {
		kind := map[string]core.ColumnKind{
			"num_psms":              core.ColNumPSMs,
			"num_peptides_distinct": core.ColNumPeptidesDistinct,
			"num_peptides_unique":   core.ColNumPeptidesUnique,
		}[m[1]]
		run := core.MsRunRef(atoi(m[2]))
		p.checkEntity(run)
		return p.optional(h, kind, 0, &run)
	}
	if m := abundancePattern.FindStringSubmatch(h); m != nil {
		return p.abundance(h, m)
	}
	if m := optPattern.FindStringSubmatch(h); m != nil {
		return p.opt(h, m)
	}

	p.add(mzerror.ColumnNotValid, p.line, h, p.name)
	return nil
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

func (p *headerParser) checkEntity(ref core.EntityRef) {
	if !p.md.HasEntity(ref) {
		p.add(mzerror.NotDefineInMetadata, p.line, ref.String())
	}
}

func (p *headerParser) optional(h string, kind core.ColumnKind, id int, entity *core.EntityRef) *core.Column {
	c, err := p.factory.AddOptionalColumn(kind, id, entity)
	if err != nil {
		p.add(mzerror.ColumnNotValid, p.line, h, p.name)
		return nil
	}
	return c
}

func (p *headerParser) abundance(h string, m []string) *core.Column {
	if m[1] != p.factory.Section().ScorePrefix() {
		p.add(mzerror.ColumnNotValid, p.line, h, p.name)
		return nil
	}
	kind := map[string]core.ColumnKind{
		"abundance":           core.ColAbundance,
		"abundance_stdev":     core.ColAbundanceStdev,
		"abundance_std_error": core.ColAbundanceStdError,
	}[m[2]]
	id := atoi(m[4])

	var ref core.EntityRef
	if m[3] == "assay" {
		if kind != core.ColAbundance {
			p.add(mzerror.ColumnNotValid, p.line, h, p.name)
			return nil
		}
		ref = core.AssayRef(id)
	} else {
		ref = core.StudyVariableRef(id)
		if p.svParts[id] == nil {
			p.svParts[id] = make(map[core.ColumnKind]bool)
		}
		p.svParts[id][kind] = true
	}
	p.checkEntity(ref)

	cols, err := p.factory.AddAbundanceColumn(ref)
	if err != nil {
		p.add(mzerror.ColumnNotValid, p.line, h, p.name)
		return nil
	}
	for _, c := range cols {
		if c.Key.Kind == kind {
			return c
		}
	}
	return nil
}

func (p *headerParser) opt(h string, m []string) *core.Column {
	ref := core.GlobalRef()
	if m[1] != "global" {
		id := atoi(m[3])
		switch m[2] {
		case "ms_run":
			ref = core.MsRunRef(id)
		case "assay":
			ref = core.AssayRef(id)
		case "study_variable":
			ref = core.StudyVariableRef(id)
		}
		p.checkEntity(ref)
	}

	var (
		c   *core.Column
		err error
	)
	if cv := cvOptPattern.FindStringSubmatch(m[4]); cv != nil {
		typ := core.TypeString
		if cv[1] == decoyAccession {
			typ = core.TypeBoolean
		}
		label, _, _ := strings.Cut(cv[1], ":")
		c, err = p.factory.AddCVUserColumn(&ref, core.NewCVParam(label, cv[1], cv[2], ""), typ)
	} else {
		c, err = p.factory.AddUserColumn(&ref, m[4], core.TypeString)
	}
	if err != nil {
		p.add(mzerror.ColumnNotValid, p.line, h, p.name)
		return nil
	}
	return c
}
