// Package validate cross-checks a structurally valid mzTab file: declared
// metadata against the columns the file actually carries.
package validate

import (
	"fmt"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

var scoreNotDefined = map[core.Section]*mzerror.Type{
	core.SectionProtein:       mzerror.ProteinSearchEngineScoreNotDefined,
	core.SectionPeptide:       mzerror.PeptideSearchEngineScoreNotDefined,
	core.SectionPSM:           mzerror.PSMSearchEngineScoreNotDefined,
	core.SectionSmallMolecule: mzerror.SmallMoleculeSearchEngineScoreNotDefined,
}

type checker struct {
	file *core.File
	md   *core.Metadata
	list *mzerror.List
	err  error
}

// Check runs every integrity check against f and appends the findings to
// list. It returns mzerror.ErrOverflow if the list fills up.
func Check(f *core.File, list *mzerror.List) error {
	c := &checker{file: f, md: f.Metadata, list: list}
	c.abundance()
	c.hashMethods()
	for _, section := range f.Sections() {
		c.scores(section)
	}
	if c.md.Mode == core.ModeComplete {
		c.complete()
	}
	c.assayRefs()
	return c.err
}

func (c *checker) add(t *mzerror.Type, args ...any) {
	if c.err != nil {
		return
	}
	if err := c.list.Add(mzerror.New(t, -1, args...)); err != nil {
		c.err = err
	}
}

// hasAbundance reports whether any protein, peptide or small molecule
// factory carries abundance columns.
func (c *checker) hasAbundance() bool {
	for _, s := range []core.Section{core.SectionProtein, core.SectionPeptide, core.SectionSmallMolecule} {
		if f := c.file.Factory(s); f != nil && len(f.AbundanceColumns()) > 0 {
			return true
		}
	}
	return false
}

func (c *checker) abundance() {
	if c.md.Type == core.TypeQuantification && !c.hasAbundance() {
		c.add(mzerror.QuantificationAbundance)
	}
}

func (c *checker) hashMethods() {
	for _, id := range core.SortedIDs(c.md.MsRuns) {
		run := c.md.MsRuns[id]
		if run.Hash != "" && run.HashMethod == nil {
			c.add(mzerror.MsRunHashMethodNotDefined, id, id)
		}
	}
}

// scores matches declared {section}_search_engine_score[n] params against
// the score columns of the section.
func (c *checker) scores(section core.Section) {
	f := c.file.Factory(section)
	declared := c.md.SearchEngineScores[section]

	for _, id := range core.SortedIDs(declared) {
		key := core.LogicalKey{Kind: core.ColBestSearchEngineScore, ID: id}
		if section == core.SectionPSM {
			key.Kind = core.ColSearchEngineScore
		}
		if f.Column(key) == nil {
			c.add(mzerror.NotDefineInHeader, key.String(), section.Name())
		}
		if c.md.Mode != core.ModeComplete || section == core.SectionPSM {
			continue
		}
		for _, run := range core.SortedIDs(c.md.MsRuns) {
			ref := core.MsRunRef(run)
			key := core.LogicalKey{Kind: core.ColSearchEngineScore, ID: id, Entity: ref}
			if f.Column(key) == nil {
				c.add(mzerror.NotDefineInHeader, key.String(), section.Name())
			}
		}
	}

	for _, col := range f.OptionalColumns() {
		k := col.Key.Kind
		if k != core.ColBestSearchEngineScore && k != core.ColSearchEngineScore {
			continue
		}
		if _, ok := declared[col.Key.ID]; !ok {
			c.add(scoreNotDefined[section], col.Header, col.Key.ID)
		}
	}
}

// complete runs the checks that only apply to Complete mode files.
func (c *checker) complete() {
	if c.md.Description == "" {
		c.add(mzerror.NotDefineInMetadata, "description")
	}
	for _, id := range core.SortedIDs(c.md.MsRuns) {
		if c.md.MsRuns[id].Location == "" {
			c.add(mzerror.NotDefineInMetadata, fmt.Sprintf("ms_run[%d]-location", id))
		}
	}

	if f := c.file.Factory(core.SectionProtein); f != nil {
		for _, id := range core.SortedIDs(c.md.MsRuns) {
			ref := core.MsRunRef(id)
			for _, k := range []core.ColumnKind{core.ColNumPSMs, core.ColNumPeptidesDistinct, core.ColNumPeptidesUnique} {
				key := core.LogicalKey{Kind: k, Entity: ref}
				if f.Column(key) == nil {
					c.add(mzerror.NotDefineInHeader, key.String(), core.SectionProtein.Name())
				}
			}
		}
	}

	if c.md.Type != core.TypeQuantification {
		return
	}
	if c.md.QuantificationMethod == nil {
		c.add(mzerror.NotDefineInMetadata, "quantification_method")
	}
	for _, id := range core.SortedIDs(c.md.StudyVariables) {
		if c.md.StudyVariables[id].Description == "" {
			c.add(mzerror.NotDefineInMetadata, fmt.Sprintf("study_variable[%d]-description", id))
		}
	}
	if !c.hasAbundance() {
		// already reported as QuantificationAbundance
		return
	}
	for _, s := range []core.Section{core.SectionProtein, core.SectionPeptide, core.SectionSmallMolecule} {
		f := c.file.Factory(s)
		if f == nil {
			continue
		}
		var refs []core.EntityRef
		for _, id := range core.SortedIDs(c.md.Assays) {
			refs = append(refs, core.AssayRef(id))
		}
		for _, id := range core.SortedIDs(c.md.StudyVariables) {
			refs = append(refs, core.StudyVariableRef(id))
		}
		for _, ref := range refs {
			key := core.LogicalKey{Kind: core.ColAbundance, Entity: ref}
			if f.Column(key) == nil {
				c.add(mzerror.NotDefineInHeader, s.ScorePrefix()+"_"+key.String(), s.Name())
			}
		}
	}
}

func (c *checker) assayRefs() {
	if len(c.md.Assays) == 0 || len(c.md.StudyVariables) == 0 {
		return
	}
	for _, id := range core.SortedIDs(c.md.StudyVariables) {
		if len(c.md.StudyVariables[id].AssayRefs) == 0 {
			c.add(mzerror.AssayRefs, id)
		}
	}
}
