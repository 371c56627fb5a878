package gedcom

import (
	"errors"
	"slices"
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string) *Result {
	t.Helper()
	res, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return res
}

const sampleFile = `0 HEAD
1 SOUR FamilyApp
2 NAME Family App Deluxe
2 VERS 2.1
2 CORP Acme
1 DEST ANSTFILE
1 DATE 3 JAN 2024
2 TIME 10:11:12
1 FILE family.ged
1 GEDC
2 VERS 5.5.1
2 FORM LINEAGE-LINKED
1 CHAR UTF-8
1 LANG English
1 SUBM @U1@
0 @U1@ SUBM
1 NAME Jane Researcher
1 ADDR 1 Main St
2 CITY Springfield
2 STAE IL
2 POST 62701
2 CTRY USA
1 PHON 555-1234
1 EMAIL jane@example.com
0 @I1@ INDI
1 NAME John /Doe/
2 TYPE birth
1 NAME Johnny /Doe/
1 SEX M
1 BIRT
2 DATE ABT 1950
2 PLAC Boston
1 FAMS @F1@
1 OCCU Carpenter
2 DATE 1 JAN 1975
1 DEAT
2 DATE 25 DEC 1990
1 OBJE
2 FILE photos/john.jpg
2 FORM photo
2 TITL Portrait
1 NOTE First line
2 CONT Second line
0 @I2@ INDI
1 NAME Jane /Smith/
1 SEX F
1 _CUSTOM something
2 DATE 1 JAN 1900
0 @I3@ INDI
1 NAME Baby /Doe/
1 FAMC @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 MARR
2 DATE 12 JUN 1970
2 PLAC Chicago
1 CHIL @I3@
1 DIV
2 DATE BEF 1985
1 ENGA
2 DATE 1969
2 TYPE Formal
0 @N1@ NOTE ignored
1 CONT still ignored
0 TRLR
`

func TestParseHeader(t *testing.T) {
	h := mustParse(t, sampleFile).Header

	checks := map[string][2]string{
		"SourceSystemID":    {h.SourceSystemID, "FamilyApp"},
		"SourceSystemName":  {h.SourceSystemName, "Family App Deluxe"},
		"SourceVersion":     {h.SourceVersion, "2.1"},
		"SourceCorporation": {h.SourceCorporation, "Acme"},
		"Destination":       {h.Destination, "ANSTFILE"},
		"CreationDate":      {h.CreationDate, "3 JAN 2024"},
		"CreationTime":      {h.CreationTime, "10:11:12"},
		"FileName":          {h.FileName, "family.ged"},
		"GedcomVersion":     {h.GedcomVersion, "5.5.1"},
		"GedcomForm":        {h.GedcomForm, "LINEAGE-LINKED"},
		"Charset":           {h.Charset, "UTF-8"},
		"Language":          {h.Language, "English"},
		"SubmitterID":       {h.SubmitterID, "U1"},
		"SubmitterName":     {h.SubmitterName, "Jane Researcher"},
		"SubmitterAddress":  {h.SubmitterAddress, "1 Main St"},
		"SubmitterCity":     {h.SubmitterCity, "Springfield"},
		"SubmitterState":    {h.SubmitterState, "IL"},
		"SubmitterPostal":   {h.SubmitterPostal, "62701"},
		"SubmitterCountry":  {h.SubmitterCountry, "USA"},
		"SubmitterPhone":    {h.SubmitterPhone, "555-1234"},
		"SubmitterEmail":    {h.SubmitterEmail, "jane@example.com"},
	}
	for field, c := range checks {
		if c[0] != c[1] {
			t.Errorf("%s = %q, want %q", field, c[0], c[1])
		}
	}
}

func TestParseHeaderDefaults(t *testing.T) {
	h := mustParse(t, "0 HEAD\n0 TRLR\n").Header
	if h.GedcomVersion != DefaultGedcomVersion || h.GedcomForm != DefaultGedcomForm || h.Charset != DefaultCharset {
		t.Errorf("defaults = (%q, %q, %q)", h.GedcomVersion, h.GedcomForm, h.Charset)
	}
}

func TestParseIndividual(t *testing.T) {
	res := mustParse(t, sampleFile)

	if len(res.Individuals) != 3 {
		t.Fatalf("got %d individuals, want 3", len(res.Individuals))
	}
	ind := res.IndividualBy["I1"]
	if ind == nil {
		t.Fatal("I1 not found")
	}

	if len(ind.Names) != 2 {
		t.Fatalf("got %d names, want 2", len(ind.Names))
	}
	if ind.Names[0] != (Name{Given: "John", Family: "Doe", Type: "birth"}) {
		t.Errorf("name[0] = %+v", ind.Names[0])
	}
	if ind.Names[1] != (Name{Given: "Johnny", Family: "Doe"}) {
		t.Errorf("name[1] = %+v", ind.Names[1])
	}
	if ind.Sex != "M" {
		t.Errorf("Sex = %q, want M", ind.Sex)
	}

	if ind.Birth != (Fact{DateApprox: "ABT 1950", Place: "Boston"}) {
		t.Errorf("Birth = %+v", ind.Birth)
	}
	if ind.Death != (Fact{Date: "1990-12-25"}) {
		t.Errorf("Death = %+v", ind.Death)
	}

	if len(ind.Events) != 1 {
		t.Fatalf("got %d events, want 1", len(ind.Events))
	}
	ev := ind.Events[0]
	if ev.Type != "OCCU" || ev.Description != "Carpenter" || ev.Date != "1975-01-01" {
		t.Errorf("event = %+v", ev)
	}

	if len(ind.Media) != 1 || *ind.Media[0] != (Media{File: "photos/john.jpg", Form: "photo", Title: "Portrait"}) {
		t.Errorf("media = %+v", ind.Media)
	}
	if ind.Notes != "First line\nSecond line" {
		t.Errorf("Notes = %q", ind.Notes)
	}
	if !slices.Equal(ind.FAMS, []string{"@F1@"}) {
		t.Errorf("FAMS = %q, want raw reference @F1@", ind.FAMS)
	}
	if got := res.IndividualBy["I3"].FAMC; !slices.Equal(got, []string{"@F1@"}) {
		t.Errorf("I3 FAMC = %q", got)
	}
}

func TestParseFamily(t *testing.T) {
	res := mustParse(t, sampleFile)

	if len(res.Families) != 1 {
		t.Fatalf("got %d families, want 1", len(res.Families))
	}
	fam := res.Families[0]
	if fam.ID != "F1" || fam.Husband != "I1" || fam.Wife != "I2" {
		t.Errorf("family = %+v", fam)
	}
	if len(fam.Children) != 1 || fam.Children[0] != "I3" {
		t.Errorf("children = %v", fam.Children)
	}
	if fam.Marriage != (Fact{Date: "1970-06-12", Place: "Chicago"}) {
		t.Errorf("Marriage = %+v", fam.Marriage)
	}
	if fam.Divorce != (Fact{DateApprox: "BEF 1985"}) {
		t.Errorf("Divorce = %+v", fam.Divorce)
	}
	if len(fam.Events) != 1 {
		t.Fatalf("got %d family events, want 1", len(fam.Events))
	}
	if ev := fam.Events[0]; ev.Type != "ENGA" || ev.DateApprox != "1969" || ev.Description != "Formal" {
		t.Errorf("family event = %+v", ev)
	}
}

func TestParseUnsupportedTags(t *testing.T) {
	res := mustParse(t, sampleFile)

	if len(res.Unsupported) != 1 {
		t.Fatalf("got %d diagnostics, want 1: %v", len(res.Unsupported), res.Unsupported)
	}
	d := res.Unsupported[0]
	if d.Text != "1 _CUSTOM something" {
		t.Errorf("diagnostic text = %q", d.Text)
	}
	if d.Line != 47 {
		t.Errorf("diagnostic line = %d, want 47", d.Line)
	}
	if d.String() != "1 _CUSTOM something (line 47)" {
		t.Errorf("String() = %q", d.String())
	}
}

func TestParseUnsupportedLevelTwo(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 NAME A /B/\n2 GIVN A\n1 RESI\n2 ADDR Somewhere\n")
	if len(res.Unsupported) != 2 {
		t.Fatalf("got %d diagnostics, want 2: %v", len(res.Unsupported), res.Unsupported)
	}
	if res.Unsupported[0].Text != "2 GIVN A" || res.Unsupported[1].Text != "2 ADDR Somewhere" {
		t.Errorf("diagnostics = %v", res.Unsupported)
	}
}

func TestParseSkipsUnknownRecords(t *testing.T) {
	res := mustParse(t, "0 @S1@ SOUR\n1 TITL Census\n1 NAME Not a person\n0 @I1@ INDI\n1 NAME A /B/\n")
	if len(res.Individuals) != 1 {
		t.Fatalf("got %d individuals, want 1", len(res.Individuals))
	}
	if len(res.Unsupported) != 0 {
		t.Errorf("unknown records should not produce diagnostics: %v", res.Unsupported)
	}
}

func TestParseLevelZeroResetsContext(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 BIRT\n0 @I2@ INDI\n2 DATE 1 JAN 1900\n")
	if !res.IndividualBy["I1"].Birth.IsZero() {
		t.Errorf("I1 birth = %+v, want empty", res.IndividualBy["I1"].Birth)
	}
	if !res.IndividualBy["I2"].Birth.IsZero() {
		t.Errorf("I2 birth = %+v, want empty", res.IndividualBy["I2"].Birth)
	}
}

func TestParseLevelOneClosesEvent(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 NAME A /B/\n1 BIRT\n1 SEX M\n2 DATE 1 JAN 1900\n")
	ind := res.IndividualBy["I1"]
	if !ind.Birth.IsZero() {
		t.Errorf("DATE after SEX must not reach the closed BIRT: %+v", ind.Birth)
	}
}

func TestParseTypeAnnotatesLatestName(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 NAME A /B/\n1 NAME C /D/\n2 TYPE aka\n")
	names := res.IndividualBy["I1"].Names
	if names[0].Type != "" || names[1].Type != "aka" {
		t.Errorf("names = %+v", names)
	}
}

func TestParseRepeatedBirthResetsSlot(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 BIRT\n2 PLAC Here\n1 BIRT\n2 DATE 2 FEB 1902\n")
	if got := res.IndividualBy["I1"].Birth; got != (Fact{Date: "1902-02-02"}) {
		t.Errorf("Birth = %+v", got)
	}
}

func TestParseFamilyUnresolvableReferences(t *testing.T) {
	res := mustParse(t, "0 @F1@ FAM\n1 HUSB not-a-pointer\n1 CHIL @I9@\n")
	fam := res.FamilyBy["F1"]
	if fam.Husband != "" {
		t.Errorf("Husband = %q, want empty", fam.Husband)
	}
	if len(fam.Children) != 1 || fam.Children[0] != "I9" {
		t.Errorf("Children = %v", fam.Children)
	}
}

func TestParseDuplicateIDKeepsPosition(t *testing.T) {
	res := mustParse(t, "0 @I1@ INDI\n1 SEX M\n0 @I2@ INDI\n0 @I1@ INDI\n1 SEX F\n")
	if len(res.Individuals) != 2 {
		t.Fatalf("got %d individuals, want 2", len(res.Individuals))
	}
	if res.Individuals[0].ID != "I1" || res.Individuals[0].Sex != "F" {
		t.Errorf("first individual = %+v", res.Individuals[0])
	}
}

func TestParseInvalidLevel(t *testing.T) {
	_, err := Parse(strings.NewReader("0 HEAD\nX SOUR bad\n"))
	if err == nil {
		t.Fatal("expected error for non-numeric level")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error %q should name the line", err)
	}
	if !errors.Is(err, ErrSyntax) {
		t.Errorf("error %v should wrap ErrSyntax", err)
	}
}

func TestParseSkipsBlankLinesAndBOM(t *testing.T) {
	res := mustParse(t, "\ufeff0 HEAD\r\n\r\n0 @I1@ INDI\r\n1 NAME A /B/\r\n")
	if len(res.Individuals) != 1 {
		t.Fatalf("got %d individuals, want 1", len(res.Individuals))
	}
	if got := res.Individuals[0].Names[0]; got.Given != "A" || got.Family != "B" {
		t.Errorf("name = %+v", got)
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		value, given, family string
	}{
		{"John /Doe/", "John", "Doe"},
		{"John Paul /Doe Smith/", "John Paul", "Doe Smith"},
		{"John /Doe", "John", "Doe"},
		{"John //", "John", ""},
		{"Madonna", "Madonna", ""},
		{"/Doe/", "", "Doe"},
		{"John /Doe/ Jr.", "John /Doe", "Jr."},
	}
	for _, tt := range tests {
		given, family := ParseName(tt.value)
		if given != tt.given || family != tt.family {
			t.Errorf("ParseName(%q) = (%q, %q), want (%q, %q)", tt.value, given, family, tt.given, tt.family)
		}
	}
}

func TestSplitLine(t *testing.T) {
	ln, ok, err := splitLine("1  NAME   John  /Doe/ ", 7)
	if err != nil || !ok {
		t.Fatalf("splitLine: ok=%v err=%v", ok, err)
	}
	if ln.Level != 1 || ln.Tag != "NAME" || ln.Value != "John  /Doe/ " || ln.Number != 7 {
		t.Errorf("line = %+v", ln)
	}

	if _, ok, _ := splitLine("   ", 1); ok {
		t.Error("blank line should not be ok")
	}
}

func TestParseKeepsEveryFamilyReference(t *testing.T) {
	res := mustParse(t, `0 HEAD
0 @I1@ INDI
1 NAME Ann /Lee/
1 FAMC @F1@
1 FAMC @F4@
1 FAMS @F2@
1 FAMS @F3@
0 TRLR
`)
	ind := res.IndividualBy["I1"]
	if ind == nil {
		t.Fatal("I1 not parsed")
	}
	if want := []string{"@F1@", "@F4@"}; !slices.Equal(ind.FAMC, want) {
		t.Errorf("FAMC = %q, want %q", ind.FAMC, want)
	}
	if want := []string{"@F2@", "@F3@"}; !slices.Equal(ind.FAMS, want) {
		t.Errorf("FAMS = %q, want %q", ind.FAMS, want)
	}
}
