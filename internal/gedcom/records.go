package gedcom

import "fmt"

// Record types recognized at level 0.
const (
	RecordHead = "HEAD"
	RecordIndi = "INDI"
	RecordFam  = "FAM"
	RecordSubm = "SUBM"
	RecordTrlr = "TRLR"
)

// IndiEventTags are the individual life-event tags. BIRT and DEAT open the
// dedicated birth/death slots; the rest are appended to the events list.
var IndiEventTags = tagSet(
	"BIRT", "DEAT", "BURI", "CREM",
	"BAPM", "BARM", "BASM", "BLES",
	"CHR", "CHRA", "CONF", "FCOM",
	"ORDN", "NATU", "EMIG", "IMMI",
	"CENS", "PROB", "WILL",
	"GRAD", "RETI", "EVEN",
	"OCCU", "EDUC", "RESI",
)

// FamEventTags are the family event tags. MARR and DIV open the dedicated
// marriage/divorce slots.
var FamEventTags = tagSet(
	"MARR", "MARB", "MARC", "MARL", "MARS",
	"DIV", "DIVF", "ANUL", "ENGA",
	"CENS", "EVEN",
)

var (
	supportedIndiTags = union(IndiEventTags, tagSet("NAME", "SEX", "NOTE", "FAMC", "FAMS", "TYPE", "OBJE"))
	supportedFamTags  = union(FamEventTags, tagSet("HUSB", "WIFE", "CHIL", "NOTE", "OBJE"))
	supportedL2Tags   = tagSet("DATE", "PLAC", "TYPE", "FILE", "FORM", "TITL")
)

func tagSet(tags ...string) map[string]bool {
	set := make(map[string]bool, len(tags))
	for _, t := range tags {
		set[t] = true
	}
	return set
}

func union(a, b map[string]bool) map[string]bool {
	out := make(map[string]bool, len(a)+len(b))
	for k := range a {
		out[k] = true
	}
	for k := range b {
		out[k] = true
	}
	return out
}

// Fact is a date/place pair. At most one of Date (ISO) and DateApprox is set.
type Fact struct {
	Date       string
	DateApprox string
	Place      string
}

// IsZero reports whether no field of the fact is set.
func (f Fact) IsZero() bool {
	return f.Date == "" && f.DateApprox == "" && f.Place == ""
}

// SetDate routes a raw GEDCOM date into the exact or approximate field,
// clearing the other.
func (f *Fact) SetDate(raw string) {
	f.Date, f.DateApprox = SplitDate(raw)
}

// Name is one parsed NAME structure.
type Name struct {
	Given  string
	Family string
	Type   string
}

// Event is a parsed event other than the dedicated birth/death/marriage/divorce slots.
type Event struct {
	Type        string
	Description string
	Fact
}

// Media is a parsed OBJE structure.
type Media struct {
	File  string
	Form  string
	Title string
}

// Individual is an INDI record in progress.
type Individual struct {
	ID     string
	Names  []Name
	Sex    string
	Birth  Fact
	Death  Fact
	Events []*Event
	Media  []*Media
	Notes  string
	// FAMC and FAMS are kept as raw forward references. They are derived
	// from family records on export, so the importer does not store them.
	FAMC []string
	FAMS []string
}

// Family is a FAM record in progress.
type Family struct {
	ID       string
	Husband  string
	Wife     string
	Children []string
	Marriage Fact
	Divorce  Fact
	Events   []*Event
	Media    []*Media
	Notes    string
}

// Header holds the HEAD record and the submitter record it references.
type Header struct {
	SourceSystemID    string
	SourceSystemName  string
	SourceVersion     string
	SourceCorporation string
	Destination       string
	FileName          string
	CreationDate      string
	CreationTime      string
	GedcomVersion     string
	GedcomForm        string
	Charset           string
	Language          string
	Copyright         string
	Note              string

	SubmitterID      string
	SubmitterName    string
	SubmitterAddress string
	SubmitterCity    string
	SubmitterState   string
	SubmitterPostal  string
	SubmitterCountry string
	SubmitterPhone   string
	SubmitterEmail   string
	SubmitterFax     string
	SubmitterWWW     string
}

// Default header values used when a file omits them.
const (
	DefaultGedcomVersion = "5.5.1"
	DefaultGedcomForm    = "LINEAGE-LINKED"
	DefaultCharset       = "UTF-8"
)

func newHeader() *Header {
	return &Header{
		GedcomVersion: DefaultGedcomVersion,
		GedcomForm:    DefaultGedcomForm,
		Charset:       DefaultCharset,
	}
}

// Diagnostic reports an unsupported tag. It never stops parsing.
type Diagnostic struct {
	Line int
	Text string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (line %d)", d.Text, d.Line)
}

// Result is the outcome of parsing a GEDCOM stream. Individuals and Families
// are in file order; the maps index the same records by GEDCOM ID.
type Result struct {
	Header       *Header
	Individuals  []*Individual
	Families     []*Family
	IndividualBy map[string]*Individual
	FamilyBy     map[string]*Family
	Unsupported  []Diagnostic
}

func newResult() *Result {
	return &Result{
		Header:       newHeader(),
		IndividualBy: make(map[string]*Individual),
		FamilyBy:     make(map[string]*Family),
	}
}

// addIndividual registers a record, replacing an earlier one with the same ID
// in place so file order is kept.
func (r *Result) addIndividual(ind *Individual) {
	if prev, ok := r.IndividualBy[ind.ID]; ok {
		for i, p := range r.Individuals {
			if p == prev {
				r.Individuals[i] = ind
			}
		}
	} else {
		r.Individuals = append(r.Individuals, ind)
	}
	r.IndividualBy[ind.ID] = ind
}

func (r *Result) addFamily(fam *Family) {
	if prev, ok := r.FamilyBy[fam.ID]; ok {
		for i, p := range r.Families {
			if p == prev {
				r.Families[i] = fam
			}
		}
	} else {
		r.Families = append(r.Families, fam)
	}
	r.FamilyBy[fam.ID] = fam
}
