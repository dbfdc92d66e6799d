// Package cmd provides CLI command implementations
package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztab/pkg/config"
	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/logging"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFormat  string

	// Shared by commands that parse mzTab
	errLevel  string
	maxErrors int

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "mztab",
	Short: "mztab - mzTab validation and conversion tool",
	Long: `mztab parses, validates and writes mzTab 1.0 files, the tab-delimited
exchange format for proteomics and metabolomics results.

- validate one or many files, with optional SQLite reports and Prometheus metrics
- convert MSP and SPTXT spectral libraries and mzIdentML results into mzTab
- summarize record counts, scores and precursor mass errors
- roundtrip a file through the parser and writer and show the differences`,
	Version:           "1.0.0",
	SilenceUsage:      true,
	PersistentPreRunE: loadConfig,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(summarizeCmd)
	rootCmd.AddCommand(roundtripCmd)

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	for _, c := range []*cobra.Command{validateCmd, summarizeCmd, roundtripCmd} {
		c.Flags().StringVarP(&errLevel, "level", "l", "", "Lowest error level reported: Info, Warn or Error")
		c.Flags().IntVar(&maxErrors, "max-errors", 0, "Stop a file after this many errors")
	}
}

// loadConfig merges file, environment and flags, then configures logging.
func loadConfig(cmd *cobra.Command, args []string) error {
	c, err := config.Load(configFile)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("log-level") {
		c.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		c.Logging.Format = logFormat
	}
	if flags.Changed("level") {
		c.Validation.Level = errLevel
	}
	if flags.Changed("max-errors") {
		c.Validation.MaxErrors = maxErrors
	}
	if err := c.Validate(); err != nil {
		return err
	}
	cfg = c
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	return nil
}

func readerOptions() (reader.Options, error) {
	level, err := cfg.ErrLevel()
	if err != nil {
		return reader.Options{}, err
	}
	return reader.Options{Level: level, MaxErrors: cfg.Validation.MaxErrors, Logger: slog.Default()}, nil
}

// printErrors writes one error per line, as mzerror.List.Print does.
func printErrors(cmd *cobra.Command, errs []*mzerror.Error) {
	for _, e := range errs {
		fmt.Fprintln(cmd.OutOrStdout(), e.Error())
	}
}

// requireFile explains why a parse produced no model.
func requireFile(path string, res *reader.Result, err error) (*core.File, error) {
	if err != nil {
		return nil, err
	}
	if res.File == nil {
		return nil, fmt.Errorf("%s is not valid mzTab (%d errors), run validate for details", path, res.Errors.Len())
	}
	return res.File, nil
}
