package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

func newFile(t *testing.T, mode core.Mode, typ core.Type, sections ...core.Section) *core.File {
	t.Helper()
	md := core.NewMetadata()
	md.Mode = mode
	md.Type = typ
	md.Description = "test"
	md.MsRun(1).Location = "file:///data/run1.mzML"
	f := core.NewFile(md)
	for _, s := range sections {
		_, err := f.EnsureFactory(s)
		require.NoError(t, err)
	}
	return f
}

func names(list *mzerror.List) []string {
	var out []string
	for _, e := range list.Items() {
		out = append(out, e.Type.Name)
	}
	return out
}

func TestQuantificationWithoutAbundance(t *testing.T) {
	f := newFile(t, core.ModeSummary, core.TypeQuantification,
		core.SectionProtein, core.SectionPeptide, core.SectionSmallMolecule)
	list := mzerror.NewList(0, mzerror.LevelInfo)

	require.NoError(t, Check(f, list))
	assert.Equal(t, []string{"QuantificationAbundance"}, names(list))
	assert.Equal(t, mzerror.LevelError, list.Items()[0].Level())
}

func TestQuantificationWithAbundance(t *testing.T) {
	f := newFile(t, core.ModeSummary, core.TypeQuantification, core.SectionPeptide)
	f.Metadata.Assay(1)
	_, err := f.Factory(core.SectionPeptide).AddAbundanceColumn(core.AssayRef(1))
	require.NoError(t, err)

	list := mzerror.NewList(0, mzerror.LevelInfo)
	require.NoError(t, Check(f, list))
	assert.True(t, list.IsEmpty(), "unexpected errors: %v", names(list))
}

func TestHashMethod(t *testing.T) {
	f := newFile(t, core.ModeSummary, core.TypeIdentification)
	f.Metadata.MsRun(1).Hash = "de9f2c7fd25e1b3afad3e85a0bd17d9b100db4b3"

	list := mzerror.NewList(0, mzerror.LevelError)
	require.NoError(t, Check(f, list))
	require.Equal(t, 1, list.CountByType(mzerror.MsRunHashMethodNotDefined))
	assert.Contains(t, list.Items()[0].Message, "ms_run[1]-hash")
}

func TestSearchEngineScores(t *testing.T) {
	f := newFile(t, core.ModeSummary, core.TypeIdentification, core.SectionProtein, core.SectionPSM)
	f.Metadata.AddSearchEngineScore(core.SectionProtein, 1, core.NewCVParam("MS", "MS:1001171", "Mascot:score", ""))
	f.Metadata.AddSearchEngineScore(core.SectionPSM, 1, core.NewCVParam("MS", "MS:1001171", "Mascot:score", ""))
	_, err := f.Factory(core.SectionPSM).AddOptionalColumn(core.ColSearchEngineScore, 1, nil)
	require.NoError(t, err)
	_, err = f.Factory(core.SectionPSM).AddOptionalColumn(core.ColSearchEngineScore, 2, nil)
	require.NoError(t, err)

	list := mzerror.NewList(0, mzerror.LevelWarn)
	require.NoError(t, Check(f, list))

	assert.Equal(t, 1, list.CountByType(mzerror.NotDefineInHeader))
	assert.Contains(t, list.Items()[0].Message, "best_search_engine_score[1]")
	assert.Equal(t, 1, list.CountByType(mzerror.PSMSearchEngineScoreNotDefined))
	assert.Equal(t, 2, list.Len())
}

func TestCompleteMode(t *testing.T) {
	f := newFile(t, core.ModeComplete, core.TypeIdentification, core.SectionProtein)
	f.Metadata.Description = ""
	f.Metadata.MsRun(2)
	f.Metadata.AddSearchEngineScore(core.SectionProtein, 1, core.NewCVParam("MS", "MS:1001171", "Mascot:score", ""))
	fac := f.Factory(core.SectionProtein)
	_, err := fac.AddOptionalColumn(core.ColBestSearchEngineScore, 1, nil)
	require.NoError(t, err)
	for _, id := range []int{1, 2} {
		run := core.MsRunRef(id)
		for _, k := range []core.ColumnKind{core.ColNumPSMs, core.ColNumPeptidesDistinct, core.ColNumPeptidesUnique} {
			_, err := fac.AddOptionalColumn(k, 0, &run)
			require.NoError(t, err)
		}
	}
	run1 := core.MsRunRef(1)
	_, err = fac.AddOptionalColumn(core.ColSearchEngineScore, 1, &run1)
	require.NoError(t, err)

	list := mzerror.NewList(0, mzerror.LevelError)
	require.NoError(t, Check(f, list))

	var messages []string
	for _, e := range list.Items() {
		messages = append(messages, e.Message)
	}
	assert.ElementsMatch(t, []string{
		"description is not defined in the metadata",
		"ms_run[2]-location is not defined in the metadata",
		`Column "search_engine_score[1]_ms_run[2]" is not defined in the protein header`,
	}, messages)
}

func TestAssayRefs(t *testing.T) {
	f := newFile(t, core.ModeSummary, core.TypeQuantification, core.SectionProtein)
	f.Metadata.Assay(1)
	f.Metadata.StudyVariable(1).AssayRefs = []int{1}
	f.Metadata.StudyVariable(2)
	_, err := f.Factory(core.SectionProtein).AddAbundanceColumn(core.AssayRef(1))
	require.NoError(t, err)

	list := mzerror.NewList(0, mzerror.LevelError)
	require.NoError(t, Check(f, list))
	require.Equal(t, []string{"AssayRefs"}, names(list))
	assert.Contains(t, list.Items()[0].Message, "study_variable[2]")
}

func TestCheckOverflow(t *testing.T) {
	f := newFile(t, core.ModeComplete, core.TypeQuantification, core.SectionProtein)
	f.Metadata.Description = ""
	f.Metadata.MsRun(1).Location = ""
	list := mzerror.NewList(1, mzerror.LevelError)
	assert.ErrorIs(t, Check(f, list), mzerror.ErrOverflow)
	assert.Equal(t, 1, list.Len())
}
