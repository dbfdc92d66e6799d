// Package mzidentml imports peptide-spectrum matches from mzIdentML files
// as mzTab PSM records.
package mzidentml

import (
	"encoding/xml"
	"fmt"
	"io"
	"math"
	"strconv"

	"golang.org/x/net/html/charset"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// Document holds the parts of an mzIdentML file needed for conversion
type Document struct {
	content   mzIdentMLContent
	peptides  map[string]int
	evidence  map[string]int
	dbSeqs    map[string]int
	runs      map[string]int // SpectraData id to 1-based ms_run index
	identList []identRef
}

type identRef struct {
	list   int // index into SpectrumIdentificationList
	result int // index into SpectrumIdentificationResult
	item   int // index into SpectrumIdentificationItem
}

// Mod is one modification of an identified peptide. Location is 0 for the
// N-terminus and len+1 for the C-terminus, as in both formats.
type Mod struct {
	Location  int
	Residues  string
	MassDelta float64
	Accession string // UNIMOD:n or MOD:n when a cvParam names one
	Name      string
}

// Identification is one SpectrumIdentificationItem with its references
// resolved.
type Identification struct {
	ID            string
	Sequence      string
	Charge        int
	ExpMZ         float64
	CalcMZ        *float64
	Rank          int
	PassThreshold bool
	SpectrumID    string
	MsRun         int      // 0 when the spectraData_ref is unknown
	RetentionTime *float64 // seconds
	Mods          []Mod
	Accessions    []string
	Pre, Post     string
	Start, End    int
	Decoy         bool
	Params        []core.Param // cvParams of the item, scores among them
}

// Read reads mzIdentML content from io.reader
func Read(reader io.Reader) (*Document, error) {
	doc := &Document{}
	d := xml.NewDecoder(reader)
	d.CharsetReader = charset.NewReaderLabel
	if err := d.Decode(&doc.content); err != nil {
		return nil, fmt.Errorf("mzIdentML: %w", err)
	}
	doc.buildIndexes()
	doc.buildIdentList()
	return doc, nil
}

func (doc *Document) buildIndexes() {
	c := &doc.content
	doc.peptides = make(map[string]int, len(c.Peptide))
	for i, p := range c.Peptide {
		doc.peptides[p.ID] = i
	}
	doc.evidence = make(map[string]int, len(c.PeptideEvidence))
	for i, e := range c.PeptideEvidence {
		doc.evidence[e.ID] = i
	}
	doc.dbSeqs = make(map[string]int, len(c.DBSequence))
	for i, s := range c.DBSequence {
		doc.dbSeqs[s.ID] = i
	}
	doc.runs = make(map[string]int, len(c.SpectraData))
	for i, s := range c.SpectraData {
		doc.runs[s.ID] = i + 1
	}
}

func (doc *Document) buildIdentList() {
	for l := range doc.content.IdentLists {
		for r, res := range doc.content.IdentLists[l].Result {
			for i := range res.SpectrumIdentificationItem {
				doc.identList = append(doc.identList, identRef{list: l, result: r, item: i})
			}
		}
	}
}

// ID returns the id attribute of the MzIdentML element
func (doc *Document) ID() string {
	return doc.content.ID
}

// NumIdents returns the total number of identifications. Some spectra carry
// more than one ranked identification.
func (doc *Document) NumIdents() int {
	return len(doc.identList)
}

// Ident returns identification i, 0 <= i < NumIdents().
func (doc *Document) Ident(i int) (Identification, error) {
	var ident Identification
	if i < 0 || i >= len(doc.identList) {
		return ident, fmt.Errorf("mzIdentML: invalid identification index %d", i)
	}
	ref := doc.identList[i]
	res := &doc.content.IdentLists[ref.list].Result[ref.result]
	item := &res.SpectrumIdentificationItem[ref.item]

	pepIdx, ok := doc.peptides[item.PeptideRef]
	if !ok {
		return ident, fmt.Errorf("%w: %q", ErrUnknownPeptide, item.PeptideRef)
	}
	pep := &doc.content.Peptide[pepIdx]

	ident.ID = item.ID
	ident.Sequence = pep.PeptideSequence
	ident.Charge = item.ChargeState
	ident.ExpMZ = item.ExperimentalMassToCharge
	ident.CalcMZ = item.CalculatedMassToCharge
	ident.Rank = item.Rank
	ident.PassThreshold = item.PassThreshold
	ident.SpectrumID = res.SpectrumID
	ident.MsRun = doc.runs[res.SpectraDataRef]

	for _, m := range pep.Modification {
		mod := Mod{Residues: m.Residues, MassDelta: m.MonoisotopicMassDelta}
		if m.Location != nil {
			mod.Location = *m.Location
		}
		for _, cv := range m.CvPar {
			if cv.CvRef == "UNIMOD" || cv.CvRef == "PSI-MOD" || cv.CvRef == "MOD" {
				mod.Accession = cv.Accession
				mod.Name = cv.Name
				break
			}
		}
		ident.Mods = append(ident.Mods, mod)
	}

	for j, evRef := range item.PeptideEvidenceRef {
		evIdx, ok := doc.evidence[evRef.Ref]
		if !ok {
			continue
		}
		ev := &doc.content.PeptideEvidence[evIdx]
		if dbIdx, ok := doc.dbSeqs[ev.DBSequenceRef]; ok {
			ident.Accessions = append(ident.Accessions, doc.content.DBSequence[dbIdx].Accession)
		}
		if j == 0 {
			ident.Pre, ident.Post = ev.Pre, ev.Post
			ident.Start, ident.End = ev.Start, ev.End
		}
		ident.Decoy = ident.Decoy || ev.IsDecoy
	}

	rt, err := retentionTime(res.CvPar)
	if err != nil {
		return ident, err
	}
	ident.RetentionTime = rt

	for _, cv := range item.CvPar {
		ident.Params = append(ident.Params, core.NewCVParam(cv.CvRef, cv.Accession, cv.Name, cv.Value))
	}
	return ident, nil
}

// retentionTime picks the most preferred retention time term of a result:
// scan start time, retention time, elution time, then the deprecated
// retention time term. Minutes are converted to seconds.
func retentionTime(params []cvParam) (*float64, error) {
	prio := math.MaxInt32
	var rt *float64
	for _, cv := range params {
		p := 0
		switch cv.Accession {
		case "MS:1000016":
			p = 1
		case "MS:1000894":
			p = 2
		case "MS:1000826":
			p = 3
		case "MS:1001114":
			p = 4
		default:
			continue
		}
		if p >= prio {
			continue
		}
		v, err := strconv.ParseFloat(cv.Value, 64)
		if err != nil {
			return nil, fmt.Errorf("mzIdentML: retention time %q: %w", cv.Value, err)
		}
		if cv.UnitAccession == "UO:0000031" || cv.UnitAccession == "MS:1000038" {
			v *= 60
		}
		prio = p
		rt = &v
	}
	return rt, nil
}
