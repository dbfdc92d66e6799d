// Package msp imports MSP (NIST/Prosit) and SPTXT (SpectraST) spectral
// library entries as mzTab PSM records. The two text formats differ only in
// a few field names, so one reader serves both.
package msp

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ModSite is one modification of an entry. Position is 0-based on the
// sequence, -1 for the N-terminus.
type ModSite struct {
	Position int
	Residue  string
	Name     string
}

// Entry is one library spectrum. Peaks are counted, not kept.
type Entry struct {
	Line          int // line of the Name field
	Sequence      string
	Charge        int
	PrecursorMZ   float64
	RetentionTime *float64
	Mods          []ModSite
	NumPeaks      int
}

// Reader provides streaming access to MSP format files
type Reader struct {
	scanner *bufio.Scanner
	lineNum int
	current *Entry
	err     error
}

// NewReader creates a new MSP reader
func NewReader(r io.Reader) *Reader {
	return &Reader{scanner: bufio.NewScanner(r)}
}

// Next advances to the next entry. Returns false when no more entries or error.
func (r *Reader) Next() bool {
	r.current = nil

	entry, err := r.readEntry()
	if err != nil {
		if err != io.EOF {
			r.err = err
		}
		return false
	}

	r.current = entry
	return true
}

// Entry returns the current entry
func (r *Reader) Entry() *Entry {
	return r.current
}

// Err returns any error encountered during reading
func (r *Reader) Err() error {
	return r.err
}

// readEntry reads a single entry from the MSP file
func (r *Reader) readEntry() (*Entry, error) {
	entry := &Entry{}

	var numPeaks int
	inPeaks := false
	peaksRead := 0
	var modString string
	hasMods := false

	finish := func() *Entry {
		if !hasMods && modString != "" {
			entry.Mods = parseModString(modString)
		}
		return entry
	}

	for r.scanner.Scan() {
		r.lineNum++
		line := strings.TrimSpace(r.scanner.Text())

		// SPTXT file headers
		if strings.HasPrefix(line, "###") {
			continue
		}

		// Skip empty lines between entries
		if line == "" {
			if entry.Sequence == "" {
				continue
			}
			if inPeaks {
				return finish(), nil
			}
			continue
		}

		if inPeaks {
			if _, err := parsePeak(line); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			peaksRead++
			entry.NumPeaks = peaksRead
			if peaksRead >= numPeaks {
				return finish(), nil
			}
			continue
		}

		switch {
		case strings.HasPrefix(line, "Name: "):
			entry.Line = r.lineNum
			if err := parseName(entry, strings.TrimPrefix(line, "Name: ")); err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
		case strings.HasPrefix(line, "MW: "):
			// recomputed from the sequence
		case strings.HasPrefix(line, "PrecursorMZ: "):
			if mz, err := strconv.ParseFloat(strings.TrimPrefix(line, "PrecursorMZ: "), 64); err == nil {
				entry.PrecursorMZ = mz
			}
		case strings.HasPrefix(line, "Comment: "):
			mods, ms, err := parseComment(entry, strings.TrimPrefix(line, "Comment: "))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", r.lineNum, err)
			}
			if mods != nil {
				entry.Mods = mods
				hasMods = true
			}
			modString = ms
		case strings.HasPrefix(line, "Num peaks: "), strings.HasPrefix(line, "NumPeaks: "):
			_, count, _ := strings.Cut(line, ": ")
			n, err := strconv.Atoi(count)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid num peaks: %w", r.lineNum, err)
			}
			numPeaks = n
			inPeaks = n > 0
			if !inPeaks {
				return finish(), nil
			}
		}
	}

	if err := r.scanner.Err(); err != nil {
		return nil, err
	}

	// If we have a partially read entry, return it
	if entry.Sequence != "" {
		return finish(), nil
	}

	return nil, io.EOF
}

// parseName extracts sequence and charge from Name field (format: "SEQUENCE/CHARGE")
func parseName(entry *Entry, name string) error {
	seq, z, ok := strings.Cut(name, "/")
	if !ok {
		return fmt.Errorf("invalid name format '%s', expected 'SEQUENCE/CHARGE'", name)
	}
	// Prosit names may carry a suffix after the charge, e.g. "2_0"
	z, _, _ = strings.Cut(z, "_")

	charge, err := strconv.Atoi(z)
	if err != nil {
		return fmt.Errorf("invalid charge in name '%s': %w", name, err)
	}
	entry.Sequence = stripMassTags(seq)
	entry.Charge = charge
	return nil
}

// stripMassTags removes SpectraST inline modifications such as
// n[230]AAAC[160]K, leaving the bare residues. Mods come from the comment.
func stripMassTags(seq string) string {
	if !strings.ContainsAny(seq, "[") {
		return seq
	}
	var sb strings.Builder
	depth := 0
	for _, r := range seq {
		switch {
		case r == '[':
			depth++
		case r == ']':
			depth--
		case depth == 0 && r >= 'A' && r <= 'Z':
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// parseComment extracts metadata from the Comment field
// Example: Parent=414.71 Collision_energy=35 Mods=1/-1,R,TMT_Pro iRT=61.01
func parseComment(entry *Entry, comment string) ([]ModSite, string, error) {
	var mods []ModSite
	var modString string

	for _, field := range strings.Fields(comment) {
		key, value, ok := strings.Cut(field, "=")
		if !ok {
			continue
		}

		switch key {
		case "Parent":
			if mz, err := strconv.ParseFloat(value, 64); err == nil && entry.PrecursorMZ == 0 {
				entry.PrecursorMZ = mz
			}
		case "iRT", "RetentionTime", "RT":
			// SpectraST lists the median first, then min and max
			first, _, _ := strings.Cut(value, ",")
			if rt, err := strconv.ParseFloat(first, 64); err == nil {
				entry.RetentionTime = &rt
			}
		case "Mods":
			m, err := parseMods(value)
			if err != nil {
				return nil, "", err
			}
			mods = m
		case "ModString":
			modString = value
		}
	}

	return mods, modString, nil
}

// parseMods parses count/pos,AA,name/pos,AA,name...
func parseMods(s string) ([]ModSite, error) {
	parts := strings.Split(s, "/")
	count, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, fmt.Errorf("invalid Mods count in '%s': %w", s, err)
	}
	if count == 0 {
		return []ModSite{}, nil
	}
	if len(parts)-1 != count {
		return nil, fmt.Errorf("mods '%s' declares %d modifications but lists %d", s, count, len(parts)-1)
	}

	mods := make([]ModSite, 0, count)
	for _, part := range parts[1:] {
		fields := strings.Split(part, ",")
		if len(fields) != 3 {
			return nil, fmt.Errorf("invalid modification '%s', expected pos,AA,name", part)
		}
		pos, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("invalid modification position in '%s': %w", part, err)
		}
		mods = append(mods, ModSite{Position: pos, Residue: fields[1], Name: fields[2]})
	}
	return mods, nil
}

// parseModString parses SEQUENCE//Mod@Pos;Mod@Pos/Charge. Positions are
// 1-based with an optional residue letter, which is converted to 0-based.
func parseModString(modString string) []ModSite {
	_, modPart, ok := strings.Cut(modString, "//")
	if !ok {
		return nil
	}
	// Remove trailing charge info if present
	modPart, _, _ = strings.Cut(modPart, "/")

	var mods []ModSite
	for _, item := range strings.Split(modPart, ";") {
		item = strings.TrimSpace(item)
		name, posStr, ok := strings.Cut(item, "@")
		if !ok {
			continue
		}

		residue := strings.TrimRight(posStr, "-0123456789")
		pos, err := strconv.Atoi(strings.TrimLeft(posStr, "ACDEFGHIKLMNPQRSTVWY"))
		if err != nil {
			continue
		}
		if pos > 0 {
			pos--
		}
		mods = append(mods, ModSite{Position: pos, Residue: residue, Name: name})
	}
	return mods
}

// parsePeak validates a single peak line (format: "mz\tintensity\t\"annotation\"")
// and returns its m/z.
func parsePeak(line string) (float64, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, fmt.Errorf("invalid peak format, expected at least 2 fields")
	}
	mz, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid m/z value: %w", err)
	}
	if _, err := strconv.ParseFloat(fields[1], 64); err != nil {
		return 0, fmt.Errorf("invalid intensity value: %w", err)
	}
	return mz, nil
}
