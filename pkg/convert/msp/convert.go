package msp

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// Options controls an import
type Options struct {
	Source string // library path, written as ms_run[1]-location when set
	Format string // "MSP" (default) or "SPTXT", used in the description
	ModDB  *core.ModDatabase
	Logger *slog.Logger
}

// Stats counts what an import did
type Stats struct {
	Entries int
	Skipped int
}

// Convert reads every entry of an MSP library into a Summary/Identification
// file with one PSM per entry. Entries whose modifications cannot be
// resolved to an accession are skipped and logged.
func Convert(r io.Reader, opts Options) (*core.File, Stats, error) {
	var stats Stats
	modDB := opts.ModDB
	if modDB == nil {
		modDB = core.DefaultModDatabase()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	md := core.NewMetadata()
	md.Mode = core.ModeSummary
	md.Type = core.TypeIdentification
	format := opts.Format
	if format == "" {
		format = "MSP"
	}
	md.Description = "Imported from " + format + " spectral library"
	run := md.MsRun(1)
	if opts.Source != "" {
		md.Description += " " + filepath.Base(opts.Source)
		location, err := fileURI(opts.Source)
		if err != nil {
			return nil, stats, err
		}
		run.Location = location
	}

	f := core.NewFile(md)
	factory, err := f.EnsureFactory(core.SectionPSM)
	if err != nil {
		return nil, stats, err
	}

	declared := make(map[string]int)
	reader := NewReader(r)
	for index := 0; reader.Next(); index++ {
		entry := reader.Entry()
		stats.Entries++

		mods, modMass, err := resolveMods(entry, modDB)
		if err != nil {
			stats.Skipped++
			logger.Warn("skipping MSP entry", "line", entry.Line, "sequence", entry.Sequence, "error", err)
			continue
		}
		for _, m := range mods {
			declareMod(md, modDB, declared, m)
		}

		psm, err := core.NewPSM(factory, md)
		if err != nil {
			return nil, stats, err
		}
		if err := fillPSM(psm, entry, index, mods, modMass); err != nil {
			return nil, stats, fmt.Errorf("line %d: %w", entry.Line, err)
		}
		psm.Line = entry.Line
		if err := f.AddRecord(psm.Record); err != nil {
			return nil, stats, err
		}
	}
	if err := reader.Err(); err != nil {
		return nil, stats, fmt.Errorf("failed to read MSP: %w", err)
	}

	logger.Info("imported MSP library", "entries", stats.Entries, "skipped", stats.Skipped)
	return f, stats, nil
}

func fillPSM(psm *core.PSM, entry *Entry, index int, mods core.ModificationList, modMass float64) error {
	if err := psm.SetSequence(entry.Sequence); err != nil {
		return err
	}
	if err := psm.SetPSMID(strconv.Itoa(index + 1)); err != nil {
		return err
	}
	if err := psm.SetCharge(entry.Charge); err != nil {
		return err
	}
	if len(mods) > 0 {
		if err := psm.SetModifications(mods); err != nil {
			return err
		}
	}
	if entry.PrecursorMZ > 0 {
		if err := psm.SetExpMassToCharge(entry.PrecursorMZ); err != nil {
			return err
		}
	}
	if entry.Charge > 0 {
		calc := core.RoundFloat(core.PeptideMZ(entry.Sequence, entry.Charge, modMass), 6)
		if err := psm.SetCalcMassToCharge(calc); err != nil {
			return err
		}
	}
	if entry.RetentionTime != nil {
		if err := psm.SetRetentionTime(core.DoubleList{*entry.RetentionTime}); err != nil {
			return err
		}
	}
	return psm.SetSpectraRef(core.SpectraRefList{{MsRun: 1, Reference: "index=" + strconv.Itoa(index)}})
}

// resolveMods maps MSP modification names onto MOD/UNIMOD accessions and
// sums their mass shifts. MSP positions are 0-based with -1 for the
// N-terminus; mzTab positions are 1-based with 0 for the N-terminus.
func resolveMods(entry *Entry, db *core.ModDatabase) (core.ModificationList, float64, error) {
	var list core.ModificationList
	var total float64
	for _, site := range entry.Mods {
		def, ok := lookupMod(db, site.Name)
		if !ok {
			return nil, 0, fmt.Errorf("unknown modification %q", site.Name)
		}
		prefix, acc, _ := strings.Cut(def.Accession, ":")
		m := core.Modification{Accession: acc}
		switch prefix {
		case "UNIMOD":
			m.Type = core.ModUNIMOD
		case "MOD":
			m.Type = core.ModMOD
		default:
			return nil, 0, fmt.Errorf("modification %q has unsupported accession %q", site.Name, def.Accession)
		}
		pos := site.Position + 1
		if site.Position < 0 {
			pos = 0
		}
		if pos > len(entry.Sequence)+1 {
			return nil, 0, fmt.Errorf("modification %q at %d is outside %s", site.Name, site.Position, entry.Sequence)
		}
		m.Positions = []core.ModificationPosition{{Position: pos}}
		list = append(list, m)
		total += def.Mass
	}
	return list, total, nil
}

// lookupMod tries the name as written, then without underscores
// (TMT_Pro is TMTpro in UNIMOD).
func lookupMod(db *core.ModDatabase, name string) (core.ModDefinition, bool) {
	if def, ok := db.LookupName(name); ok {
		return def, true
	}
	return db.LookupName(strings.ReplaceAll(name, "_", ""))
}

// declareMod adds a variable_mod[n] line the first time an accession is seen.
func declareMod(md *core.Metadata, db *core.ModDatabase, declared map[string]int, m core.Modification) {
	acc := m.Type.Prefix() + ":" + m.Accession
	if _, ok := declared[acc]; ok {
		return
	}
	id := len(declared) + 1
	declared[acc] = id
	def, _ := db.Lookup(acc)
	p := core.NewCVParam(m.Type.Prefix(), acc, def.Name, "")
	md.VariableMod(id).Param = &p
}

func fileURI(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", path, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
