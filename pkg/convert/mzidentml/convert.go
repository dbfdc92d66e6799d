package mzidentml

import (
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// scoreTerms are the PSM scores copied into search_engine_score columns.
var scoreTerms = map[string]bool{
	"MS:1001171": true, // Mascot:score
	"MS:1001172": true, // Mascot:expectation value
	"MS:1001328": true, // OMSSA:evalue
	"MS:1001330": true, // X!Tandem:expect
	"MS:1001331": true, // X!Tandem:hyperscore
	"MS:1002049": true, // MS-GF:RawScore
	"MS:1002052": true, // MS-GF:SpecEValue
	"MS:1002053": true, // MS-GF:EValue
	"MS:1002054": true, // MS-GF:QValue
	"MS:1002252": true, // Comet:xcorr
	"MS:1002257": true, // Comet:expectation value
	"MS:1001491": true, // percolator:Q value
	"MS:1001493": true, // percolator:score
}

var decoyParam = core.NewCVParam("MS", "MS:1002217", "decoy peptide", "")

// Options controls an import
type Options struct {
	AllRanks      bool // keep every rank, not just rank 1
	PassThreshold bool // drop identifications that do not pass threshold
	Logger        *slog.Logger
}

// Stats counts what an import did
type Stats struct {
	Identifications int
	Skipped         int
}

// Convert reads an mzIdentML document into a Summary/Identification file
// with one PSM per kept SpectrumIdentificationItem.
func Convert(r io.Reader, opts Options) (*core.File, Stats, error) {
	var stats Stats
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	doc, err := Read(r)
	if err != nil {
		return nil, stats, err
	}
	if doc.NumIdents() == 0 {
		return nil, stats, ErrNoIdentifications
	}

	md, engines, err := buildMetadata(doc)
	if err != nil {
		return nil, stats, err
	}
	f := core.NewFile(md)
	factory, err := f.EnsureFactory(core.SectionPSM)
	if err != nil {
		return nil, stats, err
	}
	decoyCol, err := factory.AddCVUserColumn(nil, decoyParam, core.TypeBoolean)
	if err != nil {
		return nil, stats, err
	}

	scores := make(map[string]int)
	psmID := 0
	for i := 0; i < doc.NumIdents(); i++ {
		ident, err := doc.Ident(i)
		if err != nil {
			return nil, stats, err
		}
		stats.Identifications++
		if (!opts.AllRanks && ident.Rank != 1) || (opts.PassThreshold && !ident.PassThreshold) {
			stats.Skipped++
			continue
		}
		if ident.MsRun == 0 {
			stats.Skipped++
			logger.Warn("skipping identification without spectra data", "id", ident.ID)
			continue
		}

		for _, p := range ident.Params {
			if !scoreTerms[p.Accession] {
				continue
			}
			if _, ok := scores[p.Accession]; ok {
				continue
			}
			id := len(scores) + 1
			scores[p.Accession] = id
			md.AddSearchEngineScore(core.SectionPSM, id, core.NewCVParam(p.Label, p.Accession, p.Name, ""))
			if _, err := factory.AddOptionalColumn(core.ColSearchEngineScore, id, nil); err != nil {
				return nil, stats, err
			}
		}

		psm, err := core.NewPSM(factory, md)
		if err != nil {
			return nil, stats, err
		}
		psmID++
		if err := fillPSM(psm, ident, psmID, engines, scores); err != nil {
			return nil, stats, fmt.Errorf("%s: %w", ident.ID, err)
		}
		if err := psm.Set(decoyCol.Key, ident.Decoy); err != nil {
			return nil, stats, err
		}
		if err := f.AddRecord(psm.Record); err != nil {
			return nil, stats, err
		}
	}

	logger.Info("imported mzIdentML", "id", doc.ID(), "identifications", stats.Identifications, "skipped", stats.Skipped)
	return f, stats, nil
}

// buildMetadata declares one ms_run per SpectraData and one software entry
// per AnalysisSoftware. The software params double as the search_engine
// cell of every PSM.
func buildMetadata(doc *Document) (*core.Metadata, core.ParamList, error) {
	md := core.NewMetadata()
	md.Mode = core.ModeSummary
	md.Type = core.TypeIdentification
	md.ID = doc.ID()
	md.Description = "Imported from mzIdentML"

	for i, sd := range doc.content.SpectraData {
		run := md.MsRun(i + 1)
		location, err := locationURI(sd.Location)
		if err != nil {
			return nil, nil, err
		}
		run.Location = location
		if len(sd.Format) > 0 {
			p := toParam(sd.Format[0])
			run.Format = &p
		}
		if len(sd.IDFormat) > 0 {
			p := toParam(sd.IDFormat[0])
			run.IDFormat = &p
		}
	}

	var engines core.ParamList
	for _, sw := range doc.content.Software {
		var p core.Param
		if len(sw.SoftwareName) > 0 {
			p = toParam(sw.SoftwareName[0])
			p.Value = sw.Version
		} else {
			p = core.NewUserParam(sw.Name, sw.Version)
		}
		if p.Name == "" {
			continue
		}
		engines = append(engines, p)
	}
	for i := range engines {
		p := engines[i]
		md.SoftwareEntry(i + 1).Param = &p
	}
	return md, engines, nil
}

func fillPSM(psm *core.PSM, ident Identification, id int, engines core.ParamList, scores map[string]int) error {
	if err := psm.SetSequence(ident.Sequence); err != nil {
		return err
	}
	if err := psm.SetPSMID(strconv.Itoa(id)); err != nil {
		return err
	}
	if len(ident.Accessions) > 0 {
		if err := psm.SetAccession(ident.Accessions[0]); err != nil {
			return err
		}
	}
	if len(engines) > 0 {
		if err := psm.SetSearchEngine(engines); err != nil {
			return err
		}
	}
	if mods := convertMods(ident.Mods); len(mods) > 0 {
		if err := psm.SetModifications(mods); err != nil {
			return err
		}
	}
	if ident.RetentionTime != nil {
		if err := psm.SetRetentionTime(core.DoubleList{*ident.RetentionTime}); err != nil {
			return err
		}
	}
	if err := psm.SetCharge(ident.Charge); err != nil {
		return err
	}
	if err := psm.SetExpMassToCharge(ident.ExpMZ); err != nil {
		return err
	}
	if ident.CalcMZ != nil {
		if err := psm.SetCalcMassToCharge(*ident.CalcMZ); err != nil {
			return err
		}
	}
	if err := psm.SetSpectraRef(core.SpectraRefList{{MsRun: ident.MsRun, Reference: ident.SpectrumID}}); err != nil {
		return err
	}
	if ident.Pre != "" {
		if err := psm.SetPre(ident.Pre); err != nil {
			return err
		}
	}
	if ident.Post != "" {
		if err := psm.SetPost(ident.Post); err != nil {
			return err
		}
	}
	if ident.Start > 0 && ident.End >= ident.Start {
		if err := psm.SetStart(ident.Start); err != nil {
			return err
		}
		if err := psm.SetEnd(ident.End); err != nil {
			return err
		}
	}
	for _, p := range ident.Params {
		n, ok := scores[p.Accession]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(p.Value, 64)
		if err != nil {
			return fmt.Errorf("score %s %q: %w", p.Accession, p.Value, err)
		}
		if err := psm.SetSearchEngineScore(n, nil, v); err != nil {
			return err
		}
	}
	return nil
}

// convertMods keeps UNIMOD and PSI-MOD accessions and falls back to
// CHEMMOD mass deltas. Both formats use 0 for the N-terminus.
func convertMods(mods []Mod) core.ModificationList {
	var list core.ModificationList
	for _, m := range mods {
		mod := core.Modification{Positions: []core.ModificationPosition{{Position: m.Location}}}
		prefix, acc, _ := strings.Cut(m.Accession, ":")
		switch prefix {
		case "UNIMOD":
			mod.Type, mod.Accession = core.ModUNIMOD, acc
		case "MOD":
			mod.Type, mod.Accession = core.ModMOD, acc
		default:
			mod.Type = core.ModCHEMMOD
			mod.Accession = strconv.FormatFloat(m.MassDelta, 'f', -1, 64)
			if m.MassDelta >= 0 {
				mod.Accession = "+" + mod.Accession
			}
		}
		list = append(list, mod)
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Positions[0].Position < list[j].Positions[0].Position
	})
	return list
}

func toParam(cv cvParam) core.Param {
	return core.NewCVParam(cv.CvRef, cv.Accession, cv.Name, cv.Value)
}

// locationURI leaves URIs alone and turns bare paths into file URIs.
func locationURI(location string) (string, error) {
	if location == "" {
		return "", nil
	}
	if u, err := url.Parse(location); err == nil && len(u.Scheme) > 1 {
		return location, nil
	}
	abs, err := filepath.Abs(location)
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", location, err)
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String(), nil
}
