// Package diff produces unified diffs between an mzTab file and its
// re-serialization.
package diff

import (
	"fmt"
	"strings"

	difflib "github.com/pmezard/go-difflib/difflib"
)

// DefaultContext is the number of context lines around each hunk
const DefaultContext = 3

// Unified returns a unified patch turning a into b, or "" when the two are
// equal after line-ending normalization.
func Unified(aName, bName, a, b string, context int) (string, error) {
	if context <= 0 {
		context = DefaultContext
	}
	a, b = normalize(a), normalize(b)
	if a == b {
		return "", nil
	}
	u := difflib.UnifiedDiff{
		A:        difflib.SplitLines(a),
		B:        difflib.SplitLines(b),
		FromFile: aName,
		ToFile:   bName,
		Context:  context,
	}
	s, err := difflib.GetUnifiedDiffString(u)
	if err != nil {
		return "", fmt.Errorf("failed to diff %s and %s: %w", aName, bName, err)
	}
	return s, nil
}

// Stats counts the lines a patch adds and removes, headers excluded.
func Stats(patch string) (added, removed int) {
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			removed++
		}
	}
	return added, removed
}

// normalize drops carriage returns and ensures a final newline.
func normalize(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	if s != "" && !strings.HasSuffix(s, "\n") {
		s += "\n"
	}
	return s
}
