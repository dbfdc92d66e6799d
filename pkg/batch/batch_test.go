package batch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mztab/pkg/metric"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	"github.com/ChrisMcGann/mztab/pkg/writer/sqlite"
)

func tsv(fields ...string) string {
	return strings.Join(fields, "\t")
}

var metadata = []string{
	tsv("MTD", "mzTab-version", "1.0.0"),
	tsv("MTD", "mzTab-mode", "Summary"),
	tsv("MTD", "mzTab-type", "Identification"),
	tsv("MTD", "description", "batch test"),
	tsv("MTD", "ms_run[1]-location", "file:///data/a.mzML"),
}

var psmHeader = tsv("PSH", "sequence", "PSM_ID", "accession", "unique", "database",
	"database_version", "search_engine", "modifications", "retention_time", "charge",
	"exp_mass_to_charge", "calc_mass_to_charge", "spectra_ref", "pre", "post", "start", "end")

func psm(id, charge string) string {
	return tsv("PSM", "PEPTIDE", id, "P12345", "null", "null", "null", "null", "null",
		"null", charge, "400.2", "400.1", "ms_run[1]:scan=5", "K", "R", "10", "16")
}

func writeFile(t *testing.T, dir, name string, lines ...string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	text := strings.Join(append(append([]string{}, metadata...), lines...), "\n") + "\n"
	require.NoError(t, os.WriteFile(path, []byte(text), 0o644))
	return path
}

func TestRun(t *testing.T) {
	dir := t.TempDir()
	valid := writeFile(t, dir, "valid.mztab", psmHeader, psm("1", "2"), psm("2", "3"))
	invalid := writeFile(t, dir, "invalid.mztab", psmHeader, psm("1", "two"))
	fatal := writeFile(t, dir, "fatal.mztab", psm("1", "2"))
	missing := filepath.Join(dir, "missing.mztab")

	m := metric.New()
	paths := []string{valid, invalid, fatal, missing}
	reports, err := Run(context.Background(), paths, Options{
		Reader:  reader.DefaultOptions(),
		Workers: 3,
		Metrics: m,
	})
	require.NoError(t, err)
	require.Len(t, reports, len(paths))

	for i, r := range reports {
		assert.Equal(t, paths[i], r.Path, "reports keep input order")
	}

	assert.Equal(t, sqlite.StatusValid, reports[0].Status())
	require.NotNil(t, reports[0].File)
	assert.Len(t, reports[0].File.PSMs, 2)

	assert.Equal(t, sqlite.StatusInvalid, reports[1].Status())
	assert.Equal(t, 1, reports[1].Errors.CountByType(mzerror.Integer))

	var fe *mzerror.FatalError
	assert.True(t, errors.As(reports[2].Err, &fe))
	assert.Equal(t, sqlite.StatusInvalid, reports[2].Status())

	assert.Equal(t, sqlite.StatusFailed, reports[3].Status())
	assert.True(t, errors.Is(reports[3].Err, os.ErrNotExist))

	families, err := m.Registry().Gather()
	require.NoError(t, err)
	var files float64
	for _, mf := range families {
		if mf.GetName() == "mztab_validation_files_total" {
			for _, c := range mf.GetMetric() {
				files += c.GetCounter().GetValue()
			}
		}
	}
	assert.Equal(t, 4.0, files)
}

func TestRunCancelled(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "valid.mztab", psmHeader, psm("1", "2"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, []string{path, path}, Options{Reader: reader.DefaultOptions(), Workers: 1})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRunElapsed(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "valid.mztab", psmHeader, psm("1", "2"))
	reports, err := Run(context.Background(), []string{path}, Options{Reader: reader.DefaultOptions()})
	require.NoError(t, err)
	assert.Greater(t, reports[0].Elapsed, time.Duration(0))
}
