package mzerror

func format(code int, name string, level Level, template string) *Type {
	return &Type{Code: code, Name: name, Category: CategoryFormat, Level: level, Template: template}
}

func logical(code int, name string, level Level, template string) *Type {
	return &Type{Code: code, Name: name, Category: CategoryLogical, Level: level, Template: template}
}

// Format errors
var (
	LinePrefix        = format(1001, "LinePrefix", LevelError, "Unrecognized line prefix %q, expected one of MTD, PRH, PRT, PEH, PEP, PSH, PSM, SMH, SML, COM")
	CountMatch        = format(1002, "CountMatch", LevelError, "%s line has %d fields but its header has %d columns")
	StableColumn      = format(1003, "StableColumn", LevelError, "Stable column %q is missing from the %s header")
	ColumnNotValid    = format(1004, "ColumnNotValid", LevelError, "Column %q is not valid in the %s section")
	DuplicateColumn   = format(1005, "DuplicateColumn", LevelError, "Column %q appears more than once in the %s header")
	AbundanceColumn   = format(1006, "AbundanceColumn", LevelError, "Abundance columns of %s must appear as a value, stdev and std_error triplet")
	MTDLine           = format(1007, "MTDLine", LevelError, "Metadata line must have 3 tab separated fields, found %d")
	MTDDefineLabel    = format(1008, "MTDDefineLabel", LevelError, "Metadata label %q is not defined")
	IDNumber          = format(1009, "IdNumber", LevelError, "Id %q in %q must be a positive integer")
	MZTabMode         = format(1010, "MZTabMode", LevelError, "mzTab-mode %q is not valid, expected Complete or Summary")
	MZTabType         = format(1011, "MZTabType", LevelError, "mzTab-type %q is not valid, expected Identification or Quantification")
	Param             = format(1012, "Param", LevelError, "%s value %q is not a parameter of the form [label, accession, name, value]")
	ParamList         = format(1013, "ParamList", LevelError, "%s value %q is not a '|' separated list of parameters")
	Publication       = format(1014, "Publication", LevelError, "Publication %q is not valid, items must be pubmed:{id} or doi:{id}")
	URI               = format(1015, "URI", LevelWarn, "%s value %q is not a valid URI")
	Email             = format(1016, "Email", LevelError, "%s value %q is not a valid email address")
	Integer           = format(1017, "Integer", LevelError, "%s value %q is not an integer")
	Double            = format(1018, "Double", LevelError, "%s value %q is not a number")
	MZBoolean         = format(1019, "MZBoolean", LevelError, "%s value %q is not a boolean, expected 0, 1, true or false")
	StringList        = format(1020, "StringList", LevelError, "%s value %q is not a %q separated list")
	DoubleList        = format(1021, "DoubleList", LevelError, "%s value %q is not a '|' separated list of numbers")
	ModificationList  = format(1022, "ModificationList", LevelError, "%s value %q is not a valid modification list: %v")
	GOTermList        = format(1023, "GOTermList", LevelError, "%s value %q is not a '|' separated list of GO accessions")
	SpectraRefFormat  = format(1024, "SpectraRefFormat", LevelError, "%s value %q is not of the form ms_run[n]:{spectrum id}")
	CHEMMODSAccession = format(1025, "CHEMMODSAccession", LevelError, "CHEMMOD accession %q must be a signed mass delta or a chemical formula")
	Reliability       = format(1026, "Reliability", LevelError, "%s value %q is not a reliability of 1, 2 or 3")
	Residue           = format(1027, "Residue", LevelWarn, "%s value %q is not a single residue or '-'")
	ColUnitFormat     = format(1028, "ColUnitFormat", LevelError, "colunit value %q must be {column name}={parameter}")
	MTDValue          = format(1029, "MTDValue", LevelError, "Metadata property %q has an empty value")
)

// Logical errors
var (
	LineOrder                 = logical(2001, "LineOrder", LevelError, "%s line can not follow a %s line")
	HeaderLine                = logical(2002, "HeaderLine", LevelError, "Only one %s header line is allowed")
	NoHeaderLine              = logical(2003, "NoHeaderLine", LevelError, "%s line found before its %s header line")
	DuplicationDefine         = logical(2004, "DuplicationDefine", LevelError, "Metadata property %q is defined more than once")
	DuplicationID             = logical(2005, "DuplicationID", LevelError, "%q is referenced more than once in %q")
	NotNULL                   = logical(2006, "NotNULL", LevelError, "Column %q of the %s section can not be null")
	ModificationPosition      = logical(2007, "ModificationPosition", LevelError, "Modification position %d of %q is outside [0, %d] for sequence %q")
	CHEMMODS                  = logical(2008, "CHEMMODS", LevelWarn, "CHEMMOD %q should only be reported when no MOD or UNIMOD accession describes the modification")
	ProteinCoverage           = logical(2009, "ProteinCoverage", LevelError, "protein_coverage %q must be between 0 and 1")
	NotDefineInMetadata       = logical(2010, "NotDefineInMetadata", LevelError, "%s is not defined in the metadata")
	NotDefineInHeader         = logical(2011, "NotDefineInHeader", LevelError, "Column %q is not defined in the %s header")
	SpectraRef                = logical(2012, "SpectraRef", LevelError, "spectra_ref %q references %s which is not defined in the metadata")
	MsRunLocation             = logical(2013, "MsRunLocation", LevelWarn, "spectra_ref %q references %s which has no location")
	QuantificationAbundance   = logical(2014, "QuantificationAbundance", LevelError, "mzTab-type is Quantification but no protein, peptide or small molecule abundance columns are defined")
	MsRunHashMethodNotDefined = logical(2015, "MsRunHashMethodNotDefined", LevelError, "ms_run[%d]-hash is defined without ms_run[%d]-hash_method")
	AssayRefs                 = logical(2016, "AssayRefs", LevelError, "study_variable[%d] must reference at least one assay")
	ColUnit                   = logical(2017, "ColUnit", LevelError, "colunit-%s refers to column %q which is not in the %s header")
	AmbiguityMod              = logical(2018, "AmbiguityMod", LevelInfo, "Modification %q of %q is ambiguous between %d positions")

	ProteinSearchEngineScoreNotDefined       = logical(2101, "ProteinSearchEngineScoreNotDefined", LevelWarn, "Protein column %q is present but protein_search_engine_score[%d] is not defined")
	PeptideSearchEngineScoreNotDefined       = logical(2102, "PeptideSearchEngineScoreNotDefined", LevelWarn, "Peptide column %q is present but peptide_search_engine_score[%d] is not defined")
	PSMSearchEngineScoreNotDefined           = logical(2103, "PSMSearchEngineScoreNotDefined", LevelWarn, "PSM column %q is present but psm_search_engine_score[%d] is not defined")
	SmallMoleculeSearchEngineScoreNotDefined = logical(2104, "SmallMoleculeSearchEngineScoreNotDefined", LevelWarn, "Small molecule column %q is present but smallmolecule_search_engine_score[%d] is not defined")
)
