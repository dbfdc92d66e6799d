// Package filter provides error filtering and grouping for display
package filter

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/mzerror"
)

// Config holds filtering configuration
type Config struct {
	Level      mzerror.Level      // Keep only errors at or above this level
	Categories []mzerror.Category // Keep only these categories (nil = all)
	Names      []string           // Keep only these error type names (nil = all)
	MaxPerType int                // Keep at most N errors of each type (0 = no limit)
	Limit      int                // Keep at most N errors overall (0 = no limit)
}

// Apply applies all configured filters, preserving input order
func (c *Config) Apply(errs []*mzerror.Error) []*mzerror.Error {
	perType := make(map[*mzerror.Type]int)
	var filtered []*mzerror.Error
	for _, e := range errs {
		if e.Level() < c.Level {
			continue
		}
		if len(c.Categories) > 0 && !matchesCategory(e.Type.Category, c.Categories) {
			continue
		}
		if len(c.Names) > 0 && !matchesName(e.Type.Name, c.Names) {
			continue
		}
		if c.MaxPerType > 0 && perType[e.Type] >= c.MaxPerType {
			continue
		}
		perType[e.Type]++
		filtered = append(filtered, e)
		if c.Limit > 0 && len(filtered) == c.Limit {
			break
		}
	}
	return filtered
}

func matchesCategory(cat mzerror.Category, cats []mzerror.Category) bool {
	for _, c := range cats {
		if c == cat {
			return true
		}
	}
	return false
}

// matchesName checks if a type name matches any allowed name, ignoring case
func matchesName(name string, names []string) bool {
	for _, n := range names {
		if strings.EqualFold(name, n) {
			return true
		}
	}
	return false
}

// ParseCategories parses names such as "format" or "Logical"
func ParseCategories(names []string) ([]mzerror.Category, error) {
	var cats []mzerror.Category
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "format":
			cats = append(cats, mzerror.CategoryFormat)
		case "logical":
			cats = append(cats, mzerror.CategoryLogical)
		case "crosscheck", "cross_check":
			cats = append(cats, mzerror.CategoryCrossCheck)
		default:
			return nil, fmt.Errorf("unknown error category %q, expected Format, Logical or CrossCheck", name)
		}
	}
	return cats, nil
}

// TypeCount is the number of errors of one type
type TypeCount struct {
	Type  *mzerror.Type
	Count int
}

// CountByType groups errors by type, most frequent first and then by code
func CountByType(errs []*mzerror.Error) []TypeCount {
	index := make(map[*mzerror.Type]int)
	var counts []TypeCount
	for _, e := range errs {
		i, ok := index[e.Type]
		if !ok {
			i = len(counts)
			index[e.Type] = i
			counts = append(counts, TypeCount{Type: e.Type})
		}
		counts[i].Count++
	}

	sort.Slice(counts, func(i, j int) bool {
		if counts[i].Count != counts[j].Count {
			return counts[i].Count > counts[j].Count
		}
		return counts[i].Type.Code < counts[j].Type.Code
	})
	return counts
}
