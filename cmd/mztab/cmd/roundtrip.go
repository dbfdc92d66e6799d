package cmd

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ChrisMcGann/mztab/pkg/diff"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	writer "github.com/ChrisMcGann/mztab/pkg/writer/mztab"
)

var diffContext int

func init() {
	roundtripCmd.Flags().IntVarP(&diffContext, "context", "U", diff.DefaultContext, "Lines of context in the diff")
}

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [file]",
	Short: "Parse and re-serialize a file and show what changed",
	Long: `Parse an mzTab file, write it back out in canonical form and print a unified
diff against the original. The canonical text is parsed and written a second
time to check that serialization is stable.`,
	Args: cobra.ExactArgs(1),
	RunE: runRoundtrip,
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	ropts, err := readerOptions()
	if err != nil {
		return err
	}
	path := args[0]

	rc, err := reader.Open(path)
	if err != nil {
		return err
	}
	original, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	ctx := cmd.Context()
	first, err := parseAndWrite(ctx, path, original, ropts)
	if err != nil {
		return err
	}
	second, err := parseAndWrite(ctx, path+" (canonical)", first, ropts)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	patch, err := diff.Unified(path, path+" (canonical)", string(original), string(first), diffContext)
	if err != nil {
		return err
	}
	if patch == "" {
		fmt.Fprintln(out, "No differences")
	} else {
		fmt.Fprint(out, patch)
		added, removed := diff.Stats(patch)
		fmt.Fprintf(out, "%d lines added, %d removed\n", added, removed)
	}

	if !bytes.Equal(first, second) {
		return fmt.Errorf("serialization of %s is not stable", path)
	}
	fmt.Fprintln(out, "Serialization is stable")
	return nil
}

func parseAndWrite(ctx context.Context, name string, text []byte, opts reader.Options) ([]byte, error) {
	res, err := reader.NewReader(bytes.NewReader(text), opts).Read(ctx)
	f, err := requireFile(name, res, err)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := writer.NewWriter(&buf).Write(f); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
