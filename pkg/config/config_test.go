package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Validation.Level != "Error" {
		t.Errorf("Validation.Level = %q, want %q", cfg.Validation.Level, "Error")
	}
	if cfg.Validation.MaxErrors != 300 {
		t.Errorf("Validation.MaxErrors = %d, want %d", cfg.Validation.MaxErrors, 300)
	}
	if cfg.Batch.Workers != 4 {
		t.Errorf("Batch.Workers = %d, want %d", cfg.Batch.Workers, 4)
	}
	if cfg.Report.Path != "" {
		t.Errorf("Report.Path = %q, want empty", cfg.Report.Path)
	}
	level, err := cfg.ErrLevel()
	if err != nil || level != mzerror.LevelError {
		t.Errorf("ErrLevel() = %v, %v, want Error", level, err)
	}
}

func TestLoad_FileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mztab.yaml")
	yamlText := `validation:
  level: warn
  max_errors: 50
logging:
  format: json
batch:
  workers: 2
report:
  path: runs.db
`
	if err := os.WriteFile(path, []byte(yamlText), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("MZTAB_WORKERS", "8")
	t.Setenv("MZTAB_METRICS_TEXTFILE", "/tmp/mztab.prom")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Validation.Level != "warn" {
		t.Errorf("Validation.Level = %q, want %q", cfg.Validation.Level, "warn")
	}
	if cfg.Validation.MaxErrors != 50 {
		t.Errorf("Validation.MaxErrors = %d, want %d", cfg.Validation.MaxErrors, 50)
	}
	// untouched keys keep their defaults
	if cfg.Logging.Level != "info" {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, "info")
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("Logging.Format = %q, want %q", cfg.Logging.Format, "json")
	}
	if cfg.Batch.Workers != 8 {
		t.Errorf("Batch.Workers = %d, want %d", cfg.Batch.Workers, 8)
	}
	if cfg.Report.Path != "runs.db" {
		t.Errorf("Report.Path = %q, want %q", cfg.Report.Path, "runs.db")
	}
	if cfg.Metrics.TextfilePath != "/tmp/mztab.prom" {
		t.Errorf("Metrics.TextfilePath = %q, want %q", cfg.Metrics.TextfilePath, "/tmp/mztab.prom")
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		want string
	}{
		{"bad level", map[string]string{"MZTAB_LEVEL": "fatal"}, "validation.level"},
		{"zero max errors", map[string]string{"MZTAB_MAX_ERRORS": "0"}, "max_errors"},
		{"non-numeric workers", map[string]string{"MZTAB_WORKERS": "many"}, "MZTAB_WORKERS"},
		{"bad log format", map[string]string{"MZTAB_LOG_FORMAT": "xml"}, "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load("")
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Load() error = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("Load() error = nil, want error for missing file")
	}
}
