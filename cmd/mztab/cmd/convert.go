package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztab/pkg/convert/msp"
	"github.com/ChrisMcGann/mztab/pkg/convert/mzidentml"
	"github.com/ChrisMcGann/mztab/pkg/core"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	writer "github.com/ChrisMcGann/mztab/pkg/writer/mztab"
)

var (
	// Flags for convert command
	inputFile     string
	inputFormat   string
	outputFile    string
	modsCSV       string
	allRanks      bool
	passThreshold bool
)

func init() {
	convertCmd.Flags().StringVarP(&inputFile, "in", "i", "", "Input file path (required)")
	convertCmd.Flags().StringVarP(&inputFormat, "from", "f", "", "Input format: msp, sptxt, mzid (auto-detect if not specified)")
	convertCmd.Flags().StringVarP(&outputFile, "out", "o", "", "Output mzTab file, gzip compressed when it ends in .gz (required)")
	convertCmd.Flags().StringVar(&modsCSV, "mods", "", "Extra modifications CSV (accession,name,massshift) for MSP names")
	convertCmd.Flags().BoolVar(&allRanks, "all-ranks", false, "mzIdentML: keep every rank, not just rank 1")
	convertCmd.Flags().BoolVar(&passThreshold, "pass-threshold", false, "mzIdentML: keep only identifications passing threshold")

	convertCmd.MarkFlagRequired("in")
	convertCmd.MarkFlagRequired("out")
}

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert identification results to mzTab",
	Long: `Convert MSP or SPTXT spectral libraries or mzIdentML search results into a
Summary/Identification mzTab file with one PSM row per entry.

Examples:
  # Convert an MSP library
  mztab convert --in library.msp --out library.mztab

  # Convert mzIdentML keeping only identifications that pass threshold
  mztab convert --in search.mzid --out search.mztab.gz --pass-threshold`,
	RunE: runConvert,
}

func detectFormat(path string) (string, error) {
	name := strings.ToLower(path)
	name = strings.TrimSuffix(name, ".gz")
	switch ext := filepath.Ext(name); ext {
	case ".msp":
		return "msp", nil
	case ".sptxt":
		return "sptxt", nil
	case ".mzid", ".mzidentml":
		return "mzid", nil
	default:
		return "", fmt.Errorf("cannot auto-detect format from extension '%s', please specify --from", ext)
	}
}

func runConvert(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		return fmt.Errorf("input file does not exist: %s", inputFile)
	}

	format := strings.ToLower(inputFormat)
	if format == "" {
		var err error
		if format, err = detectFormat(inputFile); err != nil {
			return err
		}
	}

	in, err := reader.Open(inputFile)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	var f *core.File
	out := cmd.OutOrStdout()
	switch format {
	case "msp", "sptxt":
		modDB, err := loadModDatabase(modsCSV)
		if err != nil {
			return err
		}
		var stats msp.Stats
		f, stats, err = msp.Convert(in, msp.Options{
			Source: inputFile,
			Format: strings.ToUpper(format),
			ModDB:  modDB,
			Logger: slog.Default(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Entries: %d\n", stats.Entries)
		if stats.Skipped > 0 {
			fmt.Fprintf(out, "Skipped: %d entries (unknown modifications)\n", stats.Skipped)
		}
	case "mzid", "mzidentml":
		var stats mzidentml.Stats
		f, stats, err = mzidentml.Convert(in, mzidentml.Options{
			AllRanks:      allRanks,
			PassThreshold: passThreshold,
			Logger:        slog.Default(),
		})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Identifications: %d\n", stats.Identifications)
		if stats.Skipped > 0 {
			fmt.Fprintf(out, "Skipped: %d identifications\n", stats.Skipped)
		}
	default:
		return fmt.Errorf("invalid input format '%s', must be msp, sptxt or mzid", format)
	}

	if err := writer.WriteFile(outputFile, f); err != nil {
		return fmt.Errorf("failed to write %s: %w", outputFile, err)
	}
	fmt.Fprintf(out, "PSMs: %d\n", len(f.PSMs))
	fmt.Fprintf(out, "Output: %s\n", outputFile)
	return nil
}

// loadModDatabase extends the built-in table with a CSV file, if given.
func loadModDatabase(path string) (*core.ModDatabase, error) {
	db := core.DefaultModDatabase()
	if path == "" {
		return db, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open modifications CSV: %w", err)
	}
	defer file.Close()
	if err := db.LoadFromCSV(file); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	return db, nil
}
