package summary

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

func TestDescribe(t *testing.T) {
	assert.Equal(t, Distribution{}, Describe(nil))

	one := Describe([]float64{4})
	assert.Equal(t, Distribution{N: 1, Mean: 4, Min: 4, Max: 4, Median: 4}, one)

	values := []float64{9, 1, 5, 3}
	d := Describe(values)
	assert.Equal(t, 4, d.N)
	assert.Equal(t, 4.5, d.Mean)
	assert.Equal(t, 1.0, d.Min)
	assert.Equal(t, 9.0, d.Max)
	assert.Equal(t, 3.0, d.Median)
	// sample standard deviation
	assert.InDelta(t, math.Sqrt(35.0/3), d.StdDev, 1e-12)
	assert.Equal(t, []float64{9, 1, 5, 3}, values, "input must not be reordered")
}

func buildFile(t *testing.T) *core.File {
	t.Helper()
	md := core.NewMetadata()
	md.Mode = core.ModeSummary
	md.Type = core.TypeIdentification
	md.MsRun(1).Location = "file:///data/run1.mzML"
	md.AddSearchEngineScore(core.SectionProtein, 1, core.NewCVParam("MS", "MS:1001171", "Mascot:score", ""))
	f := core.NewFile(md)
	f.AddComment(1, "generated")

	prt, err := f.EnsureFactory(core.SectionProtein)
	require.NoError(t, err)
	_, err = prt.AddOptionalColumn(core.ColBestSearchEngineScore, 1, nil)
	require.NoError(t, err)
	for i, acc := range []string{"P02769", "P02768"} {
		p, err := core.NewProtein(prt, md)
		require.NoError(t, err)
		require.NoError(t, p.SetAccession(acc))
		require.NoError(t, p.SetBestSearchEngineScore(1, float64(50+20*i)))
		p.Line = 10 + i
		require.NoError(t, f.AddRecord(p.Record))
	}

	psmF, err := f.EnsureFactory(core.SectionPSM)
	require.NoError(t, err)
	addPSM := func(seq string, z int, mods core.ModificationList, ppm float64) {
		psm, err := core.NewPSM(psmF, md)
		require.NoError(t, err)
		require.NoError(t, psm.SetSequence(seq))
		if z > 0 {
			require.NoError(t, psm.SetCharge(z))
			modMass := 0.0
			for _, m := range mods {
				shift, _ := core.DefaultModDatabase().MassShift(m)
				modMass += shift
			}
			theo := core.PeptideMZ(seq, z, modMass)
			require.NoError(t, psm.SetExpMassToCharge(theo*(1+ppm*1e-6)))
		}
		if len(mods) > 0 {
			require.NoError(t, psm.SetModifications(mods))
		}
		require.NoError(t, f.AddRecord(psm.Record))
	}
	oxidation := core.ModificationList{{Type: core.ModUNIMOD, Accession: "35", Positions: []core.ModificationPosition{{Position: 4}}}}
	unknown := core.ModificationList{{Type: core.ModUNIMOD, Accession: "999999", Positions: []core.ModificationPosition{{Position: 1}}}}
	addPSM("AAAMLDTVVFK", 2, oxidation, 2)
	addPSM("PEPTIDEK", 3, nil, -4)
	addPSM("PEPTIDEK", 0, nil, 0)
	addPSM("PEPTIDEK", 2, unknown, 0)
	return f
}

func TestSummarize(t *testing.T) {
	s := Summarize(buildFile(t), nil)

	assert.Equal(t, core.ModeSummary, s.Mode)
	assert.Equal(t, 1, s.MsRuns)
	assert.Equal(t, 1, s.Comments)
	require.Len(t, s.Sections, 2)

	prt := s.Sections[0]
	assert.Equal(t, core.SectionProtein, prt.Section)
	assert.Equal(t, 2, prt.Records)
	require.Len(t, prt.Scores, 1)
	assert.Equal(t, "best_search_engine_score[1]", prt.Scores[0].Header)
	require.NotNil(t, prt.Scores[0].Param)
	assert.Equal(t, "MS:1001171", prt.Scores[0].Param.Accession)
	assert.Equal(t, 60.0, prt.Scores[0].Values.Mean)

	psm := s.Sections[1]
	assert.Equal(t, 4, psm.Records)
	assert.Empty(t, psm.Scores)

	assert.Equal(t, 2, s.MassError.Skipped)
	assert.Equal(t, 2, s.MassError.PPM.N)
	assert.InDelta(t, -1.0, s.MassError.PPM.Mean, 1e-6)
	assert.InDelta(t, -4.0, s.MassError.PPM.Min, 1e-6)
	assert.InDelta(t, 2.0, s.MassError.PPM.Max, 1e-6)
}
