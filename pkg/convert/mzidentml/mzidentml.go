package mzidentml

import (
	"encoding/xml"
	"errors"
)

// Types for parsing mzIdentML. Only the parts needed to build PSM rows are
// modelled.

var (
	ErrNoIdentifications = errors.New("mzIdentML: no spectrum identifications")
	ErrUnknownPeptide    = errors.New("mzIdentML: unknown peptide reference")
)

type mzIdentMLContent struct {
	XMLName         xml.Name           `xml:"MzIdentML"`
	ID              string             `xml:"id,attr"`
	Software        []analysisSoftware `xml:"AnalysisSoftwareList>AnalysisSoftware"`
	DBSequence      []dbSequence       `xml:"SequenceCollection>DBSequence"`
	Peptide         []peptide          `xml:"SequenceCollection>Peptide"`
	PeptideEvidence []peptideEvidence  `xml:"SequenceCollection>PeptideEvidence"`
	SpectraData     []spectraData      `xml:"DataCollection>Inputs>SpectraData"`
	SearchDatabase  []searchDatabase   `xml:"DataCollection>Inputs>SearchDatabase"`
	IdentLists      []identList        `xml:"DataCollection>AnalysisData>SpectrumIdentificationList"`
}

type analysisSoftware struct {
	ID           string    `xml:"id,attr"`
	Name         string    `xml:"name,attr"`
	Version      string    `xml:"version,attr"`
	SoftwareName []cvParam `xml:"SoftwareName>cvParam"`
}

type dbSequence struct {
	ID          string `xml:"id,attr"`
	Accession   string `xml:"accession,attr"`
	SearchDBRef string `xml:"searchDatabase_ref,attr"`
}

type searchDatabase struct {
	ID       string `xml:"id,attr"`
	Name     string `xml:"name,attr"`
	Version  string `xml:"version,attr"`
	Location string `xml:"location,attr"`
}

type peptide struct {
	ID              string `xml:"id,attr"`
	PeptideSequence string
	Modification    []modification
}

type modification struct {
	Location              *int      `xml:"location,attr"`
	Residues              string    `xml:"residues,attr"`
	MonoisotopicMassDelta float64   `xml:"monoisotopicMassDelta,attr"`
	CvPar                 []cvParam `xml:"cvParam"`
}

type peptideEvidence struct {
	ID            string `xml:"id,attr"`
	DBSequenceRef string `xml:"dBSequence_ref,attr"`
	PeptideRef    string `xml:"peptide_ref,attr"`
	Start         int    `xml:"start,attr"`
	End           int    `xml:"end,attr"`
	Pre           string `xml:"pre,attr"`
	Post          string `xml:"post,attr"`
	IsDecoy       bool   `xml:"isDecoy,attr"`
}

type spectraData struct {
	ID       string    `xml:"id,attr"`
	Location string    `xml:"location,attr"`
	Format   []cvParam `xml:"FileFormat>cvParam"`
	IDFormat []cvParam `xml:"SpectrumIDFormat>cvParam"`
}

type identList struct {
	ID     string                         `xml:"id,attr"`
	Result []spectrumIdentificationResult `xml:"SpectrumIdentificationResult"`
}

type spectrumIdentificationResult struct {
	ID                         string `xml:"id,attr"`
	SpectrumID                 string `xml:"spectrumID,attr"`
	SpectraDataRef             string `xml:"spectraData_ref,attr"`
	SpectrumIdentificationItem []spectrumIdentificationItem
	CvPar                      []cvParam `xml:"cvParam"`
}

type spectrumIdentificationItem struct {
	ID                       string               `xml:"id,attr"`
	ChargeState              int                  `xml:"chargeState,attr"`
	ExperimentalMassToCharge float64              `xml:"experimentalMassToCharge,attr"`
	CalculatedMassToCharge   *float64             `xml:"calculatedMassToCharge,attr"`
	PeptideRef               string               `xml:"peptide_ref,attr"`
	Rank                     int                  `xml:"rank,attr"`
	PassThreshold            bool                 `xml:"passThreshold,attr"`
	PeptideEvidenceRef       []peptideEvidenceRef `xml:"PeptideEvidenceRef"`
	CvPar                    []cvParam            `xml:"cvParam"`
}

type peptideEvidenceRef struct {
	Ref string `xml:"peptideEvidence_ref,attr"`
}

type cvParam struct {
	CvRef         string `xml:"cvRef,attr"`
	Accession     string `xml:"accession,attr"`
	Name          string `xml:"name,attr"`
	Value         string `xml:"value,attr"`
	UnitAccession string `xml:"unitAccession,attr"`
}
