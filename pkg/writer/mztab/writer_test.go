package mztab

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/ChrisMcGann/mztab/pkg/core"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
)

func tsv(fields ...string) string {
	return strings.Join(fields, "\t")
}

var richDocument = strings.Join([]string{
	tsv("COM", "exported for round-trip testing"),
	tsv("MTD", "mzTab-version", "1.0.0"),
	tsv("MTD", "mzTab-mode", "Summary"),
	tsv("MTD", "mzTab-type", "Quantification"),
	tsv("MTD", "mzTab-ID", "PRIDE_1234"),
	tsv("MTD", "title", "Round trip"),
	tsv("MTD", "description", "Two runs, one assay"),
	tsv("MTD", "sample_processing[1]", "[SEP, SEP:00173, SDS PAGE, ]|[SEP, SEP:00142, enzyme digestion, ]"),
	tsv("MTD", "instrument[1]-name", "[MS, MS:1000449, LTQ Orbitrap, ]"),
	tsv("MTD", "instrument[1]-analyzer[1]", "[MS, MS:1000484, orbitrap, ]"),
	tsv("MTD", "software[1]", "[MS, MS:1001207, Mascot, 2.3]"),
	tsv("MTD", "software[1]-setting[1]", "Fragment tolerance = 0.1 Da"),
	tsv("MTD", "protein_search_engine_score[1]", "[MS, MS:1001171, Mascot:score, ]"),
	tsv("MTD", "psm_search_engine_score[1]", "[MS, MS:1001171, Mascot:score, ]"),
	tsv("MTD", "false_discovery_rate", "[MS, MS:1002350, PSM-level global FDR, 0.01]"),
	tsv("MTD", "publication[1]", "pubmed:21063943|doi:10.1007/978-1-60761-987-1_6"),
	tsv("MTD", "contact[1]-name", "James D. Watson"),
	tsv("MTD", "contact[1]-email", "watson@cam.ac.uk"),
	tsv("MTD", "uri[1]", "http://www.ebi.ac.uk/pride/url/to/experiment"),
	tsv("MTD", "fixed_mod[1]", "[UNIMOD, UNIMOD:4, Carbamidomethyl, ]"),
	tsv("MTD", "fixed_mod[1]-site", "C"),
	tsv("MTD", "quantification_method", "[MS, MS:1001837, iTRAQ quantitation analysis, ]"),
	tsv("MTD", "protein-quantification_unit", "[PRIDE, PRIDE:0000395, Ratio, ]"),
	tsv("MTD", "ms_run[1]-format", "[MS, MS:1000584, mzML file, ]"),
	tsv("MTD", "ms_run[1]-location", "file:///data/run1.mzML"),
	tsv("MTD", "ms_run[1]-hash", "de9f2c7fd25e1b3afad3e85a0bd17d9b100db4b3"),
	tsv("MTD", "ms_run[1]-hash_method", "[MS, MS:1000569, SHA-1, ]"),
	tsv("MTD", "ms_run[2]-location", "file:///data/run2.mzML"),
	tsv("MTD", "sample[1]-species[1]", "[NEWT, 9606, Homo sapiens (Human), ]"),
	tsv("MTD", "sample[1]-description", "Hepatocellular carcinoma samples."),
	tsv("MTD", "assay[1]-quantification_reagent", "[PRIDE, PRIDE:0000114, iTRAQ reagent, 114]"),
	tsv("MTD", "assay[1]-quantification_mod[1]", "[UNIMOD, UNIMOD:214, iTRAQ4plex, ]"),
	tsv("MTD", "assay[1]-quantification_mod[1]-site", "N-term"),
	tsv("MTD", "assay[1]-sample_ref", "sample[1]"),
	tsv("MTD", "assay[1]-ms_run_ref", "ms_run[1]"),
	tsv("MTD", "study_variable[1]-assay_refs", "assay[1]"),
	tsv("MTD", "study_variable[1]-description", "Group B"),
	tsv("MTD", "cv[1]-label", "MS"),
	tsv("MTD", "cv[1]-full_name", "MS"),
	tsv("MTD", "cv[1]-version", "3.54.0"),
	tsv("MTD", "cv[1]-url", "http://psidev.cvs.sourceforge.net/*checkout*/psidev/psi/psi-ms/mzML/controlledVocabulary/psi-ms.obo"),
	tsv("MTD", "colunit-protein", "protein_coverage=[UO, UO:0000187, percent, ]"),
	tsv("PRH", "accession", "description", "taxid", "species", "database", "database_version",
		"search_engine", "best_search_engine_score[1]", "ambiguity_members", "modifications",
		"protein_coverage", "protein_abundance_assay[1]", "protein_abundance_study_variable[1]",
		"protein_abundance_stdev_study_variable[1]", "protein_abundance_std_error_study_variable[1]",
		"opt_global_note"),
	tsv("PRT", "P12345", "Aspartate aminotransferase", "9606", "Homo sapiens", "UniProtKB", "2011_11",
		"[MS, MS:1001207, Mascot, ]", "50", "P12347,P12348", "3-UNIMOD:35", "0.4", "1.2",
		"1.2", "NaN", "null", "kept"),
	tsv("COM", "comments may sit between sections"),
	tsv("PSH", "sequence", "PSM_ID", "accession", "unique", "database", "database_version",
		"search_engine", "search_engine_score[1]", "modifications", "retention_time", "charge",
		"exp_mass_to_charge", "calc_mass_to_charge", "spectra_ref", "pre", "post", "start", "end"),
	tsv("PSM", "QDVQSLR", "1", "P12345", "1", "UniProtKB", "2011_11", "[MS, MS:1001207, Mascot, ]",
		"50", "3[MS, MS:1001876, modification probability, 0.8]|4-UNIMOD:35,0", "10.2|11.5", "2",
		"415.7", "415.7", "ms_run[1]:scan=1296|ms_run[2]:scan=1300", "K", "-", "45", "51"),
	tsv("PSM", "EIEILACEIR", "2", "P12345", "0", "UniProtKB", "2011_11", "[MS, MS:1001207, Mascot, ]",
		"46", "7-UNIMOD:4", "1234.5", "2", "610.3", "610.3", "ms_run[1]:scan=1400", "R", "L", "100", "109"),
}, "\n") + "\n"

func parse(t *testing.T, text string) *core.File {
	t.Helper()
	res, err := reader.NewReader(strings.NewReader(text), reader.DefaultOptions()).Read(context.Background())
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if !res.Errors.IsEmpty() {
		var sb strings.Builder
		res.Errors.Print(&sb)
		t.Fatalf("Read() reported errors:\n%s", sb.String())
	}
	if res.File == nil {
		t.Fatal("Read() returned no file")
	}
	return res.File
}

func serialize(t *testing.T, f *core.File) string {
	t.Helper()
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(f); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return buf.String()
}

func headers(f *core.Factory) []string {
	var out []string
	for _, c := range f.Columns() {
		out = append(out, c.Header)
	}
	return out
}

// diffModels compares two parsed files, ignoring source line numbers.
func diffModels(a, b *core.File) string {
	if d := cmp.Diff(a.Metadata, b.Metadata); d != "" {
		return "metadata: " + d
	}
	text := func(cs []core.Comment) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Text)
		}
		return out
	}
	if d := cmp.Diff(text(a.Comments), text(b.Comments)); d != "" {
		return "comments: " + d
	}
	if d := cmp.Diff(a.Sections(), b.Sections()); d != "" {
		return "sections: " + d
	}
	for _, s := range a.Sections() {
		if d := cmp.Diff(headers(a.Factory(s)), headers(b.Factory(s))); d != "" {
			return s.Name() + " header: " + d
		}
		ra, rb := a.Records(s), b.Records(s)
		if len(ra) != len(rb) {
			return s.Name() + ": record count differs"
		}
		for i := range ra {
			if d := cmp.Diff(ra[i].Values(), rb[i].Values(), cmpopts.EquateNaNs()); d != "" {
				return s.Name() + " record: " + d
			}
		}
	}
	return ""
}

func TestRoundTrip(t *testing.T) {
	first := parse(t, richDocument)
	out := serialize(t, first)
	second := parse(t, out)

	if d := diffModels(first, second); d != "" {
		t.Errorf("re-parsed model differs (-first +second):\n%s", d)
	}
	// a second pass must be byte-stable
	if again := serialize(t, second); again != out {
		t.Errorf("serialization is not stable:\n%s\n---\n%s", out, again)
	}
}

func TestRoundTripSparseEntities(t *testing.T) {
	text := strings.Join([]string{
		tsv("MTD", "mzTab-mode", "Summary"),
		tsv("MTD", "mzTab-type", "Identification"),
		tsv("MTD", "psm_search_engine_score[1]", "[MS, MS:1001171, Mascot:score, ]"),
		tsv("MTD", "ms_run[1]-location", "file:///data/run1.mzML"),
		tsv("MTD", "ms_run[2]-id_format", "[MS, MS:1000768, Thermo nativeID format, ]"),
		tsv("MTD", "contact[1]-affiliation", "EMBL-EBI"),
		tsv("PSH", "sequence", "PSM_ID", "accession", "unique", "database", "database_version",
			"search_engine", "search_engine_score[1]", "modifications", "retention_time", "charge",
			"exp_mass_to_charge", "calc_mass_to_charge", "spectra_ref", "pre", "post", "start", "end"),
		tsv("PSM", "PEPTIDE", "1", "P12345", "1", "UniProtKB", "2011_11", "[MS, MS:1001207, Mascot, ]",
			"50", "null", "10.2", "2", "400.2", "400.2", "ms_run[2]:scan=1", "K", "-", "1", "7"),
	}, "\n") + "\n"

	first := parse(t, text)
	second := parse(t, serialize(t, first))
	if d := diffModels(first, second); d != "" {
		t.Errorf("re-parsed model differs (-first +second):\n%s", d)
	}
	if _, ok := second.Metadata.MsRuns[2]; !ok {
		t.Error("ms_run[2] was lost")
	}
}

func TestEmptyMetadataValueRejected(t *testing.T) {
	text := strings.Join([]string{
		tsv("MTD", "mzTab-mode", "Summary"),
		tsv("MTD", "mzTab-type", "Identification"),
		tsv("MTD", "ms_run[1]-location", "file:///data/run1.mzML"),
		tsv("MTD", "ms_run[2]-hash", ""),
	}, "\n") + "\n"
	res, err := reader.NewReader(strings.NewReader(text), reader.DefaultOptions()).Read(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if res.File != nil {
		t.Fatal("a file with an empty metadata value must not be built")
	}
	if items := res.Errors.Items(); len(items) != 1 || items[0].Type.Name != "MTDValue" {
		t.Errorf("errors = %v, want one MTDValue", items)
	}
}

func TestCanonicalColumnOrder(t *testing.T) {
	out := serialize(t, parse(t, richDocument))
	var header string
	for _, line := range strings.Split(out, "\n") {
		if strings.HasPrefix(line, "PRH\t") {
			header = line
		}
	}
	fields := strings.Split(header, "\t")
	want := []string{
		"best_search_engine_score[1]",
		"opt_global_note",
		"protein_abundance_assay[1]",
		"protein_abundance_study_variable[1]",
		"protein_abundance_stdev_study_variable[1]",
		"protein_abundance_std_error_study_variable[1]",
	}
	if len(fields) != 17 {
		t.Fatalf("header has %d fields, want 17: %q", len(fields), header)
	}
	if diff := cmp.Diff(want, fields[11:]); diff != "" {
		t.Errorf("optional column order mismatch (-want +got):\n%s", diff)
	}
}

func TestCommentsComeFirst(t *testing.T) {
	out := serialize(t, parse(t, richDocument))
	lines := strings.Split(out, "\n")
	if lines[0] != "COM\texported for round-trip testing" || lines[1] != "COM\tcomments may sit between sections" {
		t.Errorf("comments not written first: %q", lines[:2])
	}
	if lines[2] != "MTD\tmzTab-version\t1.0.0" {
		t.Errorf("first metadata line = %q", lines[2])
	}
}

func TestWriteBuiltFile(t *testing.T) {
	md := core.NewMetadata()
	md.Mode = core.ModeSummary
	md.Type = core.TypeIdentification
	md.MsRun(1).Location = "file:///data/a.mzML"

	f := core.NewFile(md)
	factory, err := f.EnsureFactory(core.SectionPSM)
	if err != nil {
		t.Fatal(err)
	}
	psm, err := core.NewPSM(factory, md)
	if err != nil {
		t.Fatal(err)
	}
	if err := psm.SetSequence("PEPTIDE"); err != nil {
		t.Fatal(err)
	}
	if err := psm.SetPSMID("7"); err != nil {
		t.Fatal(err)
	}
	if err := psm.SetText(core.LogicalKey{Kind: core.ColModifications}, "3-MOD:00412"); err != nil {
		t.Fatal(err)
	}
	if err := psm.SetCharge(2); err != nil {
		t.Fatal(err)
	}
	if err := f.AddRecord(psm.Record); err != nil {
		t.Fatal(err)
	}

	want := strings.Join([]string{
		tsv("MTD", "mzTab-version", "1.0.0"),
		tsv("MTD", "mzTab-mode", "Summary"),
		tsv("MTD", "mzTab-type", "Identification"),
		tsv("MTD", "ms_run[1]-location", "file:///data/a.mzML"),
		tsv("PSH", "sequence", "PSM_ID", "accession", "unique", "database", "database_version",
			"search_engine", "modifications", "retention_time", "charge", "exp_mass_to_charge",
			"calc_mass_to_charge", "spectra_ref", "pre", "post", "start", "end"),
		tsv("PSM", "PEPTIDE", "7", "null", "null", "null", "null", "null", "3-MOD:00412", "null",
			"2", "null", "null", "null", "null", "null", "null", "null"),
	}, "\n") + "\n"
	if diff := cmp.Diff(want, serialize(t, f)); diff != "" {
		t.Errorf("Write() mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteRequiresModeAndType(t *testing.T) {
	var buf bytes.Buffer
	if err := NewWriter(&buf).Write(core.NewFile(nil)); err == nil {
		t.Error("Write() without mode and type should fail")
	}
	if buf.Len() != 0 {
		t.Errorf("nothing should be written, got %q", buf.String())
	}
}

func TestWriteFileGzip(t *testing.T) {
	first := parse(t, richDocument)
	path := filepath.Join(t.TempDir(), "out.mztab.gz")
	if err := WriteFile(path, first); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	res, err := reader.ReadFile(context.Background(), path, reader.DefaultOptions())
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if res.File == nil {
		t.Fatal("ReadFile() returned no file")
	}
	if d := diffModels(first, res.File); d != "" {
		t.Errorf("gzip round trip differs:\n%s", d)
	}
}
