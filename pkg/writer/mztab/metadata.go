package mztab

import (
	"strings"

	"github.com/ChrisMcGann/mztab/pkg/core"
)

// metadata writes MTD lines in definition order. Entities are written before
// anything that references them.
func (w *Writer) metadata(md *core.Metadata) {
	version := md.Version
	if version == "" {
		version = core.DefaultVersion
	}
	w.mtd("mzTab-version", version)
	w.mtd("mzTab-mode", md.Mode.String())
	w.mtd("mzTab-type", md.Type.String())
	w.mtd("mzTab-ID", md.ID)
	w.mtd("title", md.Title)
	w.mtd("description", md.Description)

	for _, id := range core.SortedIDs(md.SampleProcessing) {
		w.mtdParamList(indexed("sample_processing", id), md.SampleProcessing[id])
	}
	for _, id := range core.SortedIDs(md.Instruments) {
		w.instrument(md.Instruments[id])
	}
	for _, id := range core.SortedIDs(md.Software) {
		w.software(md.Software[id])
	}
	for _, section := range core.DataSections {
		scores := md.SearchEngineScores[section]
		for _, id := range core.SortedIDs(scores) {
			p := scores[id]
			w.mtdParam(indexed(section.ScorePrefix()+"_search_engine_score", id), &p)
		}
	}
	w.mtdParamList("false_discovery_rate", md.FalseDiscoveryRate)
	for _, id := range core.SortedIDs(md.Publications) {
		w.mtd(indexed("publication", id), core.FormatPublication(md.Publications[id].Items))
	}
	for _, id := range core.SortedIDs(md.Contacts) {
		c := md.Contacts[id]
		key := indexed("contact", id)
		w.mtd(key+"-name", c.Name)
		w.mtd(key+"-affiliation", c.Affiliation)
		w.mtd(key+"-email", c.Email)
	}
	for _, id := range core.SortedIDs(md.URIs) {
		w.mtd(indexed("uri", id), md.URIs[id])
	}
	for _, id := range core.SortedIDs(md.FixedMods) {
		w.modDeclaration(indexed("fixed_mod", id), md.FixedMods[id])
	}
	for _, id := range core.SortedIDs(md.VariableMods) {
		w.modDeclaration(indexed("variable_mod", id), md.VariableMods[id])
	}
	w.mtdParam("quantification_method", md.QuantificationMethod)
	for _, section := range []core.Section{core.SectionProtein, core.SectionPeptide, core.SectionSmallMolecule} {
		if unit, ok := md.QuantificationUnits[section]; ok {
			w.mtdParam(section.Name()+"-quantification_unit", &unit)
		}
	}
	for _, id := range core.SortedIDs(md.MsRuns) {
		w.msRun(md.MsRuns[id])
	}
	for _, id := range core.SortedIDs(md.Custom) {
		p := md.Custom[id]
		w.mtdParam(indexed("custom", id), &p)
	}
	for _, id := range core.SortedIDs(md.Samples) {
		w.sample(md.Samples[id])
	}
	for _, id := range core.SortedIDs(md.Assays) {
		w.assay(md.Assays[id])
	}
	for _, id := range core.SortedIDs(md.StudyVariables) {
		w.studyVariable(md.StudyVariables[id])
	}
	for _, id := range core.SortedIDs(md.CVs) {
		cv := md.CVs[id]
		key := indexed("cv", id)
		w.mtd(key+"-label", cv.Label)
		w.mtd(key+"-full_name", cv.FullName)
		w.mtd(key+"-version", cv.Version)
		w.mtd(key+"-url", cv.URL)
	}
	for _, section := range core.DataSections {
		for _, cu := range md.ColUnits[section] {
			w.mtd("colunit-"+section.Name(), cu.String())
		}
	}
}

func (w *Writer) instrument(in *core.Instrument) {
	key := indexed("instrument", in.ID)
	w.mtdParam(key+"-name", in.Name)
	w.mtdParam(key+"-source", in.Source)
	for _, id := range core.SortedIDs(in.Analyzers) {
		p := in.Analyzers[id]
		w.mtdParam(key+"-"+indexed("analyzer", id), &p)
	}
	w.mtdParam(key+"-detector", in.Detector)
}

func (w *Writer) software(sw *core.Software) {
	key := indexed("software", sw.ID)
	w.mtdParam(key, sw.Param)
	for _, id := range core.SortedIDs(sw.Settings) {
		w.mtd(key+"-"+indexed("setting", id), sw.Settings[id])
	}
}

func (w *Writer) modDeclaration(key string, d *core.ModDeclaration) {
	w.mtdParam(key, d.Param)
	w.mtd(key+"-site", d.Site)
	w.mtd(key+"-position", d.Position)
}

func (w *Writer) msRun(run *core.MsRun) {
	key := indexed("ms_run", run.ID)
	w.mtdParam(key+"-format", run.Format)
	w.mtd(key+"-location", run.Location)
	w.mtdParam(key+"-id_format", run.IDFormat)
	w.mtdParamList(key+"-fragmentation_method", run.FragmentationMethod)
	w.mtd(key+"-hash", run.Hash)
	w.mtdParam(key+"-hash_method", run.HashMethod)
}

func (w *Writer) sample(s *core.Sample) {
	key := indexed("sample", s.ID)
	params := []struct {
		name   string
		values map[int]core.Param
	}{
		{"species", s.Species},
		{"tissue", s.Tissue},
		{"cell_type", s.CellType},
		{"disease", s.Disease},
	}
	for _, group := range params {
		for _, id := range core.SortedIDs(group.values) {
			p := group.values[id]
			w.mtdParam(key+"-"+indexed(group.name, id), &p)
		}
	}
	w.mtd(key+"-description", s.Description)
	for _, id := range core.SortedIDs(s.Custom) {
		p := s.Custom[id]
		w.mtdParam(key+"-"+indexed("custom", id), &p)
	}
}

func (w *Writer) assay(a *core.Assay) {
	key := indexed("assay", a.ID)
	w.mtdParam(key+"-quantification_reagent", a.QuantificationReagent)
	for _, id := range core.SortedIDs(a.QuantificationMods) {
		qm := a.QuantificationMods[id]
		modKey := key + "-" + indexed("quantification_mod", id)
		w.mtdParam(modKey, qm.Param)
		w.mtd(modKey+"-site", qm.Site)
		w.mtd(modKey+"-position", qm.Position)
	}
	if a.SampleRef > 0 {
		w.mtd(key+"-sample_ref", indexed("sample", a.SampleRef))
	}
	if a.MsRunRef > 0 {
		w.mtd(key+"-ms_run_ref", indexed("ms_run", a.MsRunRef))
	}
}

func (w *Writer) studyVariable(sv *core.StudyVariable) {
	key := indexed("study_variable", sv.ID)
	w.mtd(key+"-assay_refs", refs("assay", sv.AssayRefs))
	w.mtd(key+"-sample_refs", refs("sample", sv.SampleRefs))
	w.mtd(key+"-description", sv.Description)
}

func refs(kind string, ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = indexed(kind, id)
	}
	return strings.Join(parts, ",")
}
