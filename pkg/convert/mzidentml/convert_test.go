package mzidentml

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/mztab/pkg/core"
	"github.com/ChrisMcGann/mztab/pkg/mzerror"
	reader "github.com/ChrisMcGann/mztab/pkg/reader/mztab"
	writer "github.com/ChrisMcGann/mztab/pkg/writer/mztab"
)

const document = `<?xml version="1.0" encoding="UTF-8"?>
<MzIdentML id="search_1" version="1.1.0">
  <AnalysisSoftwareList>
    <AnalysisSoftware id="msgf" name="MS-GF+" version="v2021.03.22">
      <SoftwareName><cvParam cvRef="PSI-MS" accession="MS:1002048" name="MS-GF+"/></SoftwareName>
    </AnalysisSoftware>
  </AnalysisSoftwareList>
  <SequenceCollection>
    <DBSequence id="DBSeq1" accession="sp|P02769|ALBU_BOVIN" searchDatabase_ref="db"/>
    <DBSequence id="DBSeq2" accession="XXX_sp|P02769|ALBU_BOVIN" searchDatabase_ref="db"/>
    <Peptide id="Pep1">
      <PeptideSequence>LVNELTEFAK</PeptideSequence>
    </Peptide>
    <Peptide id="Pep2">
      <PeptideSequence>HLVDEPQNLIK</PeptideSequence>
      <Modification location="0" monoisotopicMassDelta="42.010565">
        <cvParam cvRef="UNIMOD" accession="UNIMOD:1" name="Acetyl"/>
      </Modification>
    </Peptide>
    <Peptide id="Pep3">
      <PeptideSequence>MCTVASLR</PeptideSequence>
      <Modification location="2" residues="C" monoisotopicMassDelta="57.021464"/>
    </Peptide>
    <PeptideEvidence id="PE1" dBSequence_ref="DBSeq1" peptide_ref="Pep1" start="66" end="75" pre="K" post="D" isDecoy="false"/>
    <PeptideEvidence id="PE2" dBSequence_ref="DBSeq1" peptide_ref="Pep2" start="402" end="412" pre="K" post="N" isDecoy="false"/>
    <PeptideEvidence id="PE3" dBSequence_ref="DBSeq2" peptide_ref="Pep3" start="10" end="17" pre="R" post="-" isDecoy="true"/>
  </SequenceCollection>
  <DataCollection>
    <Inputs>
      <SpectraData id="SD1" location="file:///data/run1.mzML">
        <FileFormat><cvParam cvRef="PSI-MS" accession="MS:1000584" name="mzML format"/></FileFormat>
        <SpectrumIDFormat><cvParam cvRef="PSI-MS" accession="MS:1000768" name="Thermo nativeID format"/></SpectrumIDFormat>
      </SpectraData>
    </Inputs>
    <AnalysisData>
      <SpectrumIdentificationList id="SIL_1">
        <SpectrumIdentificationResult id="SIR_1" spectrumID="controllerType=0 controllerNumber=1 scan=12" spectraData_ref="SD1">
          <SpectrumIdentificationItem id="SII_1_1" chargeState="2" experimentalMassToCharge="582.3190" calculatedMassToCharge="582.3189" peptide_ref="Pep1" rank="1" passThreshold="true">
            <PeptideEvidenceRef peptideEvidence_ref="PE1"/>
            <cvParam cvRef="PSI-MS" accession="MS:1002049" name="MS-GF:RawScore" value="120"/>
            <cvParam cvRef="PSI-MS" accession="MS:1002052" name="MS-GF:SpecEValue" value="1.5E-12"/>
          </SpectrumIdentificationItem>
          <SpectrumIdentificationItem id="SII_1_2" chargeState="2" experimentalMassToCharge="582.3190" peptide_ref="Pep3" rank="2" passThreshold="false">
            <PeptideEvidenceRef peptideEvidence_ref="PE3"/>
            <cvParam cvRef="PSI-MS" accession="MS:1002049" name="MS-GF:RawScore" value="12"/>
          </SpectrumIdentificationItem>
          <cvParam cvRef="PSI-MS" accession="MS:1000894" name="retention time" value="30.0" unitAccession="UO:0000010"/>
          <cvParam cvRef="PSI-MS" accession="MS:1000016" name="scan start time" value="0.5" unitAccession="UO:0000031"/>
        </SpectrumIdentificationResult>
        <SpectrumIdentificationResult id="SIR_2" spectrumID="controllerType=0 controllerNumber=1 scan=40" spectraData_ref="SD1">
          <SpectrumIdentificationItem id="SII_2_1" chargeState="3" experimentalMassToCharge="454.9" calculatedMassToCharge="454.9" peptide_ref="Pep2" rank="1" passThreshold="true">
            <PeptideEvidenceRef peptideEvidence_ref="PE2"/>
            <cvParam cvRef="PSI-MS" accession="MS:1002049" name="MS-GF:RawScore" value="98"/>
          </SpectrumIdentificationItem>
        </SpectrumIdentificationResult>
        <SpectrumIdentificationResult id="SIR_3" spectrumID="controllerType=0 controllerNumber=1 scan=77" spectraData_ref="SD1">
          <SpectrumIdentificationItem id="SII_3_1" chargeState="2" experimentalMassToCharge="470.7" peptide_ref="Pep3" rank="1" passThreshold="false">
            <PeptideEvidenceRef peptideEvidence_ref="PE3"/>
          </SpectrumIdentificationItem>
        </SpectrumIdentificationResult>
      </SpectrumIdentificationList>
    </AnalysisData>
  </DataCollection>
</MzIdentML>
`

func TestRead(t *testing.T) {
	doc, err := Read(strings.NewReader(document))
	require.NoError(t, err)
	assert.Equal(t, "search_1", doc.ID())
	require.Equal(t, 4, doc.NumIdents())

	first, err := doc.Ident(0)
	require.NoError(t, err)
	assert.Equal(t, "LVNELTEFAK", first.Sequence)
	assert.Equal(t, 1, first.MsRun)
	assert.Equal(t, []string{"sp|P02769|ALBU_BOVIN"}, first.Accessions)
	assert.Equal(t, 66, first.Start)
	assert.Equal(t, "D", first.Post)
	require.NotNil(t, first.RetentionTime)
	// scan start time wins over retention time and is in minutes
	assert.InDelta(t, 30.0, *first.RetentionTime, 1e-9)
	require.NotNil(t, first.CalcMZ)

	second, err := doc.Ident(1)
	require.NoError(t, err)
	assert.Equal(t, 2, second.Rank)
	assert.True(t, second.Decoy)
	assert.Nil(t, second.CalcMZ)
	assert.Equal(t, []Mod{{Location: 2, Residues: "C", MassDelta: 57.021464}}, second.Mods)

	_, err = doc.Ident(4)
	assert.Error(t, err)
}

func TestReadUnknownPeptide(t *testing.T) {
	text := strings.Replace(document, `peptide_ref="Pep2" rank`, `peptide_ref="Pep9" rank`, 1)
	doc, err := Read(strings.NewReader(text))
	require.NoError(t, err)
	_, err = doc.Ident(2)
	assert.True(t, errors.Is(err, ErrUnknownPeptide))
}

func TestConvert(t *testing.T) {
	f, stats, err := Convert(strings.NewReader(document), Options{})
	require.NoError(t, err)
	assert.Equal(t, Stats{Identifications: 4, Skipped: 1}, stats)
	require.Len(t, f.PSMs, 3)

	md := f.Metadata
	assert.Equal(t, "search_1", md.ID)
	assert.Equal(t, "file:///data/run1.mzML", md.MsRuns[1].Location)
	require.NotNil(t, md.MsRuns[1].IDFormat)
	assert.Equal(t, "MS:1000768", md.MsRuns[1].IDFormat.Accession)
	require.NotNil(t, md.Software[1].Param)
	assert.Equal(t, "v2021.03.22", md.Software[1].Param.Value)

	scores := md.SearchEngineScores[core.SectionPSM]
	require.Len(t, scores, 2)
	assert.Equal(t, "MS:1002049", scores[1].Accession)
	assert.Equal(t, "MS:1002052", scores[2].Accession)

	first := f.PSMs[0]
	assert.Equal(t, "1", first.PSMID())
	assert.Equal(t, "sp|P02769|ALBU_BOVIN", first.Accession())
	v, ok := first.SearchEngineScore(2, nil)
	require.True(t, ok)
	assert.Equal(t, 1.5e-12, v)
	assert.Equal(t, "ms_run[1]:controllerType=0 controllerNumber=1 scan=12", first.SpectraRefs().String())

	assert.Equal(t, "0-UNIMOD:1", f.PSMs[1].Modifications().String())
	assert.Equal(t, "2-CHEMMOD:+57.021464", f.PSMs[2].Modifications().String())
	_, ok = f.PSMs[1].SearchEngineScore(2, nil)
	assert.False(t, ok)

	decoy := core.LogicalKey{Kind: core.ColOpt, Entity: core.GlobalRef(), Name: "cv_MS:1002217_decoy_peptide"}
	assert.Equal(t, false, first.Get(decoy))
	assert.Equal(t, true, f.PSMs[2].Get(decoy))
}

func TestConvertOptions(t *testing.T) {
	_, stats, err := Convert(strings.NewReader(document), Options{AllRanks: true, PassThreshold: true})
	require.NoError(t, err)
	assert.Equal(t, Stats{Identifications: 4, Skipped: 2}, stats)

	empty := `<MzIdentML id="x"><DataCollection><AnalysisData/></DataCollection></MzIdentML>`
	_, _, err = Convert(strings.NewReader(empty), Options{})
	assert.True(t, errors.Is(err, ErrNoIdentifications))
}

func TestConvertedFileValidates(t *testing.T) {
	f, _, err := Convert(strings.NewReader(document), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, writer.NewWriter(&buf).Write(f))

	opts := reader.DefaultOptions()
	opts.Level = mzerror.LevelError
	res, err := reader.NewReader(&buf, opts).Read(context.Background())
	require.NoError(t, err)
	assert.True(t, res.Errors.IsEmpty(), "errors: %v", res.Errors.Items())
	require.NotNil(t, res.File)
	assert.Len(t, res.File.PSMs, 3)
}
