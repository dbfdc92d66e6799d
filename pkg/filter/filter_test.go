package filter

import (
	"testing"

	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

func sample() []*mzerror.Error {
	return []*mzerror.Error{
		mzerror.New(mzerror.Integer, 10, "taxid", "human"),
		mzerror.New(mzerror.URI, 4, "ms_run[1]-location", "::"),
		mzerror.New(mzerror.Integer, 11, "taxid", "mouse"),
		mzerror.New(mzerror.SpectraRef, 12, "ms_run[9]:scan=1", "ms_run[9]"),
		mzerror.New(mzerror.Integer, 13, "taxid", "rat"),
		mzerror.New(mzerror.AmbiguityMod, 14, "3|4-UNIMOD:21", "PEPTIDE", 2),
	}
}

func lines(errs []*mzerror.Error) []int {
	var out []int
	for _, e := range errs {
		out = append(out, e.Line)
	}
	return out
}

func equalInts(a, b []int) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestApply(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want []int
	}{
		{"everything", Config{Level: mzerror.LevelInfo}, []int{10, 4, 11, 12, 13, 14}},
		{"errors only", Config{Level: mzerror.LevelError}, []int{10, 11, 12, 13}},
		{"logical", Config{Categories: []mzerror.Category{mzerror.CategoryLogical}}, []int{12, 14}},
		{"by name", Config{Names: []string{"uri", "SpectraRef"}}, []int{4, 12}},
		{"per type", Config{MaxPerType: 1}, []int{10, 4, 12, 14}},
		{"limit", Config{Level: mzerror.LevelError, Limit: 2}, []int{10, 11}},
		{"combined", Config{Level: mzerror.LevelWarn, MaxPerType: 2, Limit: 4}, []int{10, 4, 11, 12}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lines(tt.cfg.Apply(sample()))
			if !equalInts(got, tt.want) {
				t.Errorf("Apply() lines = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseCategories(t *testing.T) {
	cats, err := ParseCategories([]string{"Format", " logical ", "crosscheck"})
	if err != nil {
		t.Fatalf("ParseCategories() error = %v", err)
	}
	want := []mzerror.Category{mzerror.CategoryFormat, mzerror.CategoryLogical, mzerror.CategoryCrossCheck}
	if len(cats) != len(want) {
		t.Fatalf("got %v, want %v", cats, want)
	}
	for i := range want {
		if cats[i] != want[i] {
			t.Errorf("cats[%d] = %v, want %v", i, cats[i], want[i])
		}
	}

	if _, err := ParseCategories([]string{"syntax"}); err == nil {
		t.Error("expected error for unknown category")
	}
}

func TestCountByType(t *testing.T) {
	counts := CountByType(sample())
	if len(counts) != 4 {
		t.Fatalf("got %d groups, want 4", len(counts))
	}
	if counts[0].Type != mzerror.Integer || counts[0].Count != 3 {
		t.Errorf("first group = %s x%d, want Integer x3", counts[0].Type.Name, counts[0].Count)
	}
	// ties are ordered by code
	for i := 2; i < len(counts); i++ {
		if counts[i-1].Count == counts[i].Count && counts[i-1].Type.Code > counts[i].Type.Code {
			t.Errorf("groups %d and %d out of code order", i-1, i)
		}
	}
}
