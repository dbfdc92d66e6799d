// Package summary computes descriptive statistics over a parsed mzTab file:
// record counts per section, score distributions and PSM precursor mass
// errors.
package summary

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// Distribution describes a sample of values. Zero when N is 0.
type Distribution struct {
	N      int
	Mean   float64
	StdDev float64
	Min    float64
	Max    float64
	Median float64
}

// Score is the distribution of one score column of a section
type Score struct {
	Header string
	Param  *core.Param // declared {section}_search_engine_score[n], if any
	Values Distribution
}

// Section summarizes one data section
type Section struct {
	Section core.Section
	Records int
	Scores  []Score
}

// MassError is the precursor error of PSMs against their theoretical m/z.
// Skipped counts PSMs without charge, experimental m/z or a known mass for
// every modification.
type MassError struct {
	PPM     Distribution
	Skipped int
}

// Summary is the result of Summarize
type Summary struct {
	Mode      core.Mode
	Type      core.Type
	MsRuns    int
	Comments  int
	Sections  []Section
	MassError MassError
}

// Summarize walks f once per section. A nil db uses core.DefaultModDatabase.
func Summarize(f *core.File, db *core.ModDatabase) *Summary {
	if db == nil {
		db = core.DefaultModDatabase()
	}
	md := f.Metadata
	s := &Summary{
		Mode:     md.Mode,
		Type:     md.Type,
		MsRuns:   len(md.MsRuns),
		Comments: len(f.Comments),
	}
	for _, section := range f.Sections() {
		s.Sections = append(s.Sections, summarizeSection(f, section))
	}
	s.MassError = massError(f.PSMs, db)
	return s
}

// scoreKind is best_search_engine_score for summary sections and
// search_engine_score for PSMs, which have no best score.
func scoreKind(section core.Section) core.ColumnKind {
	if section == core.SectionPSM {
		return core.ColSearchEngineScore
	}
	return core.ColBestSearchEngineScore
}

func summarizeSection(f *core.File, section core.Section) Section {
	records := f.Records(section)
	out := Section{Section: section, Records: len(records)}
	factory := f.Factory(section)
	declared := f.Metadata.SearchEngineScores[section]

	kind := scoreKind(section)
	for _, c := range factory.OptionalColumns() {
		if c.Key.Kind != kind {
			continue
		}
		var values []float64
		for _, r := range records {
			if v, ok := r.Double(c.Key); ok && !math.IsNaN(v) && !math.IsInf(v, 0) {
				values = append(values, v)
			}
		}
		score := Score{Header: c.Header, Values: Describe(values)}
		if p, ok := declared[c.Key.ID]; ok {
			score.Param = &p
		}
		out.Scores = append(out.Scores, score)
	}
	return out
}

func massError(psms []*core.PSM, db *core.ModDatabase) MassError {
	var me MassError
	var ppm []float64
	for _, psm := range psms {
		z, ok := psm.Charge()
		exp, okExp := psm.ExpMassToCharge()
		if !ok || !okExp || z == 0 || psm.Sequence() == "" {
			me.Skipped++
			continue
		}
		modMass, ok := modificationMass(psm.Modifications(), db)
		if !ok {
			me.Skipped++
			continue
		}
		theoretical := core.PeptideMZ(psm.Sequence(), z, modMass)
		ppm = append(ppm, core.PPMError(exp, theoretical))
	}
	me.PPM = Describe(ppm)
	return me
}

func modificationMass(mods core.ModificationList, db *core.ModDatabase) (float64, bool) {
	var total float64
	for _, m := range mods {
		if m.Type == core.ModNeutralLoss {
			continue
		}
		shift, ok := db.MassShift(m)
		if !ok {
			return 0, false
		}
		total += shift
	}
	return total, true
}

// Describe returns the distribution of values. values is not modified.
func Describe(values []float64) Distribution {
	if len(values) == 0 {
		return Distribution{}
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	d := Distribution{
		N:      len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(sorted) > 1 {
		d.Mean, d.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		d.Mean = sorted[0]
	}
	return d
}
