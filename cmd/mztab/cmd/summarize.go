package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	"github.com/ChrisMcGann/mztab/pkg/summary"
)

var summarizeCmd = &cobra.Command{
	Use:   "summarize [file]",
	Short: "Summarize mzTab file contents",
	Long: `Print summary statistics about a valid mzTab file: record counts per section,
search engine score distributions and the precursor mass error of PSMs.`,
	Args: cobra.ExactArgs(1),
	RunE: runSummarize,
}

func init() {
	summarizeCmd.Flags().StringVar(&modsCSV, "mods", "", "Extra modifications CSV (accession,name,massshift)")
}

func runSummarize(cmd *cobra.Command, args []string) error {
	ropts, err := readerOptions()
	if err != nil {
		return err
	}
	path := args[0]
	res, err := reader.ReadFile(cmd.Context(), path, ropts)
	f, err := requireFile(path, res, err)
	if err != nil {
		return err
	}
	modDB, err := loadModDatabase(modsCSV)
	if err != nil {
		return err
	}

	s := summary.Summarize(f, modDB)
	printSummary(cmd.OutOrStdout(), path, s)
	return nil
}

func printSummary(w io.Writer, path string, s *summary.Summary) {
	fmt.Fprintf(w, "File: %s\n", path)
	fmt.Fprintf(w, "Mode: %s\n", s.Mode)
	fmt.Fprintf(w, "Type: %s\n", s.Type)
	fmt.Fprintf(w, "MS runs: %d\n", s.MsRuns)
	if s.Comments > 0 {
		fmt.Fprintf(w, "Comments: %d\n", s.Comments)
	}
	for _, sec := range s.Sections {
		fmt.Fprintf(w, "\n%s: %d records\n", sec.Section.Name(), sec.Records)
		for _, sc := range sec.Scores {
			name := ""
			if sc.Param != nil {
				name = " " + sc.Param.Name
			}
			fmt.Fprintf(w, "  %s%s: %s\n", sc.Header, name, formatDistribution(sc.Values, "%.4g"))
		}
	}
	if s.MassError.PPM.N > 0 || s.MassError.Skipped > 0 {
		fmt.Fprintf(w, "\nPSM precursor error (ppm): %s\n", formatDistribution(s.MassError.PPM, "%.2f"))
		if s.MassError.Skipped > 0 {
			fmt.Fprintf(w, "  skipped: %d PSMs without charge, m/z or known modification mass\n", s.MassError.Skipped)
		}
	}
}

func formatDistribution(d summary.Distribution, verb string) string {
	if d.N == 0 {
		return "no values"
	}
	f := func(v float64) string { return fmt.Sprintf(verb, v) }
	return fmt.Sprintf("n=%d mean=%s sd=%s median=%s min=%s max=%s",
		d.N, f(d.Mean), f(d.StdDev), f(d.Median), f(d.Min), f(d.Max))
}
