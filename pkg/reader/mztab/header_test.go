package mztab

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

var proteinStable = []string{"accession", "description", "taxid", "species", "database",
	"database_version", "search_engine", "ambiguity_members", "modifications", "protein_coverage"}

func proteinHeader(optional ...string) string {
	return tsv(append(append([]string{"PRH"}, proteinStable...), optional...)...)
}

func quantMetadata() *core.Metadata {
	md := core.NewMetadata()
	md.MsRun(1)
	md.Assay(1)
	md.StudyVariable(1)
	return md
}

func TestParseHeaderMapping(t *testing.T) {
	rep := &reporter{list: mzerror.NewList(0, mzerror.LevelInfo)}
	header := proteinHeader(
		"opt_global_cv_MS:1002217_decoy_peptide",
		"best_search_engine_score[1]",
		"protein_abundance_assay[1]",
		"search_engine_score[1]_ms_run[1]",
		"num_psms_ms_run[1]",
		"go_terms",
		"opt_assay[1]_note",
	)
	fields := splitTSV(header)
	factory, mapping := parseHeader(core.SectionProteinHeader, fields, 1, quantMetadata(), rep)
	require.True(t, rep.list.IsEmpty(), "unexpected errors: %v", rep.list.Items())

	assert.Equal(t, len(fields), mapping.Len())
	assert.Equal(t, core.SectionProtein, factory.Section())
	for pos := 1; pos < len(fields); pos++ {
		c := mapping.Column(pos)
		require.NotNil(t, c, "position %d", pos)
		assert.Equal(t, fields[pos], c.Header)
		got, ok := mapping.Position(c.Key)
		assert.True(t, ok)
		assert.Equal(t, pos, got)
	}

	decoy := factory.FindByHeader("opt_global_cv_MS:1002217_decoy_peptide")
	require.NotNil(t, decoy)
	assert.Equal(t, core.TypeBoolean, decoy.Type)
	assert.Equal(t, "MS:1002217", decoy.Param.Accession)

	var ordered []string
	for _, c := range factory.OptionalColumns() {
		ordered = append(ordered, c.Header)
	}
	assert.Equal(t, []string{
		"go_terms",
		"best_search_engine_score[1]",
		"search_engine_score[1]_ms_run[1]",
		"num_psms_ms_run[1]",
		"opt_global_cv_MS:1002217_decoy_peptide",
		"opt_assay[1]_note",
		"protein_abundance_assay[1]",
	}, ordered)
}

func TestParseHeaderErrors(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{"missing stable", tsv("PRH", "accession"), repeat("StableColumn", len(proteinStable)-1)},
		{"unknown column", proteinHeader("colour"), []string{"ColumnNotValid"}},
		{"duplicate column", proteinHeader("go_terms", "go_terms"), []string{"DuplicateColumn"}},
		{"duplicate stable column", proteinHeader("accession"), []string{"DuplicateColumn"}},
		{"wrong abundance prefix", proteinHeader("peptide_abundance_assay[1]"), []string{"ColumnNotValid"}},
		{"stdev for assay", proteinHeader("protein_abundance_stdev_assay[1]"), []string{"ColumnNotValid"}},
		{
			"incomplete triplet",
			proteinHeader("protein_abundance_study_variable[1]", "protein_abundance_stdev_study_variable[1]"),
			[]string{"AbundanceColumn"},
		},
		{"undeclared ms_run", proteinHeader("num_psms_ms_run[4]"), []string{"NotDefineInMetadata"}},
		{"undeclared assay", proteinHeader("opt_assay[7]_x"), []string{"NotDefineInMetadata"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rep := &reporter{list: mzerror.NewList(0, mzerror.LevelError)}
			parseHeader(core.SectionProteinHeader, splitTSV(tt.header), 3, quantMetadata(), rep)
			assert.Equal(t, tt.want, errorNames(rep.list))
		})
	}
}

func TestPSMHeaderRejectsProteinOnlyColumns(t *testing.T) {
	rep := &reporter{list: mzerror.NewList(0, mzerror.LevelError)}
	header := psmHeader + "\tbest_search_engine_score[1]\tgo_terms\tnum_psms_ms_run[1]"
	_, mapping := parseHeader(core.SectionPSMHeader, splitTSV(header), 1, quantMetadata(), rep)
	assert.Equal(t, repeat("ColumnNotValid", 3), errorNames(rep.list))
	assert.Nil(t, mapping.Column(mapping.Len()-1))
}

func TestDecoyCellIsBoolean(t *testing.T) {
	text := withMetadata(
		psmHeader+"\topt_global_cv_MS:1002217_decoy_peptide",
		psmLine("PEPTIDE", "null", "ms_run[1]:scan=1")+"\tmaybe",
	)
	res, err := read(t, text, mzerror.LevelError)
	require.NoError(t, err)
	assert.Equal(t, []string{"MZBoolean"}, errorNames(res.Errors))
}

func repeat(s string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = s
	}
	return out
}

func splitTSV(line string) []string {
	return strings.Split(line, "\t")
}
