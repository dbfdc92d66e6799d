package cmd

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztab/pkg/batch"
	"github.com/ChrisMcGann/mztab/pkg/filter"
	"github.com/ChrisMcGann/mztab/pkg/metric"
	"github.com/ChrisMcGann/mztab/pkg/writer/sqlite"
)

var (
	// Flags for validate command
	workers     int
	reportPath  string
	metricsPath string
	categories  []string
	errorNames  []string
	maxPerType  int
	limit       int
	countTypes  bool
)

func init() {
	validateCmd.Flags().IntVarP(&workers, "workers", "j", 0, "Files validated in parallel")
	validateCmd.Flags().StringVar(&reportPath, "report", "", "Append results to this SQLite database")
	validateCmd.Flags().StringVar(&metricsPath, "metrics", "", "Write Prometheus metrics to this textfile")
	validateCmd.Flags().StringSliceVar(&categories, "category", nil, "Show only these categories: format, logical, crosscheck")
	validateCmd.Flags().StringSliceVar(&errorNames, "name", nil, "Show only these error types, e.g. NotNULL")
	validateCmd.Flags().IntVar(&maxPerType, "max-per-type", 0, "Show at most N errors of each type (0 = all)")
	validateCmd.Flags().IntVar(&limit, "limit", 0, "Show at most N errors per file (0 = all)")
	validateCmd.Flags().BoolVar(&countTypes, "count", false, "Print error counts per type instead of the errors")
}

var validateCmd = &cobra.Command{
	Use:   "validate [file...]",
	Short: "Validate mzTab files",
	Long: `Parse and check mzTab files, plain or gzip compressed, and print the errors
found at or above the chosen level.

Examples:
  # Validate one file, reporting warnings too
  mztab validate --level Warn results.mztab

  # Validate a directory of files four at a time and keep a report
  mztab validate -j 4 --report runs.db data/*.mztab.gz

  # Show only the first two errors of each logical type
  mztab validate --category logical --max-per-type 2 results.mztab`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func runValidate(cmd *cobra.Command, args []string) error {
	ropts, err := readerOptions()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("workers") {
		cfg.Batch.Workers = workers
	}
	if cmd.Flags().Changed("report") {
		cfg.Report.Path = reportPath
	}
	if cmd.Flags().Changed("metrics") {
		cfg.Metrics.TextfilePath = metricsPath
	}

	cats, err := filter.ParseCategories(categories)
	if err != nil {
		return err
	}
	display := &filter.Config{
		Level:      ropts.Level,
		Categories: cats,
		Names:      errorNames,
		MaxPerType: maxPerType,
		Limit:      limit,
	}

	var m *metric.Metrics
	if cfg.Metrics.TextfilePath != "" {
		m = metric.New()
	}

	reports, err := batch.Run(cmd.Context(), args, batch.Options{
		Reader:  ropts,
		Workers: cfg.Batch.Workers,
		Metrics: m,
		Logger:  slog.Default(),
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, r := range reports {
		status := r.Status()
		if status != sqlite.StatusValid {
			failed++
		}
		fmt.Fprintf(out, "%s: %s (%s)\n", r.Path, status, r.Elapsed.Round(time.Millisecond))
		if r.Err != nil {
			fmt.Fprintf(out, "  %v\n", r.Err)
		}
		if r.Errors == nil {
			continue
		}
		shown := display.Apply(r.Errors.Items())
		if countTypes {
			for _, tc := range filter.CountByType(shown) {
				fmt.Fprintf(out, "  %6d  %s (%s, %s)\n", tc.Count, tc.Type.Name, tc.Type.Level, tc.Type.Category)
			}
			continue
		}
		printErrors(cmd, shown)
	}

	if cfg.Report.Path != "" {
		if err := writeReports(cfg.Report.Path, reports); err != nil {
			return err
		}
	}
	if m != nil {
		if err := m.WriteTextfile(cfg.Metrics.TextfilePath); err != nil {
			return err
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(reports))
	}
	return nil
}

func writeReports(path string, reports []sqlite.FileReport) error {
	level, err := cfg.ErrLevel()
	if err != nil {
		return err
	}
	w, err := sqlite.NewWriter(path, level)
	if err != nil {
		return fmt.Errorf("failed to open report database: %w", err)
	}
	for _, r := range reports {
		if err := w.WriteReport(r); err != nil {
			w.Close()
			return fmt.Errorf("failed to write report for %s: %w", r.Path, err)
		}
	}
	if err := w.Finalize(); err != nil {
		return fmt.Errorf("failed to finalize report database: %w", err)
	}
	slog.Info("report written", "path", path, "run", w.RunID(), "files", len(reports))
	return nil
}
