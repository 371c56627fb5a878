package gedcomio

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

func exportFile(t *testing.T, dbPath string) string {
	t.Helper()
	out := filepath.Join(t.TempDir(), "export.ged")
	if _, err := Export(context.Background(), dbPath, out, ExportOptions{Now: fixedClock}); err != nil {
		t.Fatalf("Export: %v", err)
	}
	return out
}

func TestExportMatchesCanonicalSource(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/roundtrip.ged")
	out := exportFile(t, dbPath)

	diffs, err := gedcom.CompareFiles("testdata/roundtrip.ged", out)
	if err != nil {
		t.Fatalf("CompareFiles: %v", err)
	}
	if len(diffs) > 0 {
		t.Errorf("export differs from source:\n%s", gedcom.FormatDiffs(diffs))
	}
}

func TestExportIsIdempotent(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")

	first, err := os.ReadFile(exportFile(t, dbPath))
	if err != nil {
		t.Fatal(err)
	}
	second, err := os.ReadFile(exportFile(t, dbPath))
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(first, second) {
		t.Error("two exports of the same database differ")
	}
}

func TestExportReimportIsStable(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	first := exportFile(t, dbPath)

	secondDB, _ := importFile(t, first)
	second := exportFile(t, secondDB)

	diffs, err := gedcom.CompareFiles(first, second)
	if err != nil {
		t.Fatalf("CompareFiles: %v", err)
	}
	if len(diffs) > 0 {
		t.Errorf("round trip changed output:\n%s", gedcom.FormatDiffs(diffs))
	}
}

func TestExportDefaultsOnEmptyDatabase(t *testing.T) {
	conn := openDB(t, ":memory:")

	var buf bytes.Buffer
	res, err := ExportTo(context.Background(), conn, &buf, ExportOptions{Now: fixedClock, FileName: "out.ged"})
	if err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	if res.Individuals != 0 || res.Families != 0 {
		t.Errorf("result = %+v, want zero counts", res)
	}

	want := strings.Join([]string{
		"0 HEAD",
		"1 SOUR GEDCOM-Export-System",
		"2 NAME Genealogy Database GEDCOM Export",
		"2 VERS 5.5.1",
		"1 DATE 02 MAR 2024",
		"2 TIME 04:05:06",
		"1 FILE out.ged",
		"1 GEDC",
		"2 VERS 5.5.1",
		"2 FORM LINEAGE-LINKED",
		"1 CHAR UTF-8",
		"1 SUBM @U00001@",
		"0 @U00001@ SUBM",
		"1 NAME Genealogy Database",
		"0 TRLR",
	}, "\n") + "\n"
	if buf.String() != want {
		t.Errorf("ExportTo output:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestExportRecordOrder(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	var buf bytes.Buffer
	if _, err := ExportTo(context.Background(), conn, &buf, ExportOptions{Now: fixedClock}); err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	text := buf.String()

	for _, want := range []string{
		"0 @I1@ INDI\n1 NAME John /Smith/\n1 SEX M\n1 BIRT\n2 DATE 15 JAN 1980\n2 PLAC Springfield\n1 FAMS @F1@\n1 DEAT\n2 DATE ABT 2050\n",
		"0 @I3@ INDI\n1 NAME Amy /Smith/\n1 FAMC @F1@\n1 FAMC @F3@\n",
		"0 @F2@ FAM\n1 HUSB @I8@\n1 WIFE @I9@\n1 MARR\n2 DATE BET 1990 AND 1995\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing block:\n%s", want)
		}
	}

	if strings.Index(text, "0 @I9@ INDI") > strings.Index(text, "0 @F1@ FAM") {
		t.Error("families written before individuals")
	}
	if !strings.HasSuffix(text, "0 TRLR\n") {
		t.Error("export does not end with TRLR")
	}
}

func TestExportMissingDatabase(t *testing.T) {
	dir := t.TempDir()
	_, err := Export(context.Background(), filepath.Join(dir, "none.sqlite"), filepath.Join(dir, "out.ged"), ExportOptions{})
	if !errors.Is(err, ErrNoDatabase) {
		t.Fatalf("Export error = %v, want ErrNoDatabase", err)
	}
}

func TestExportWritesSpouseRoles(t *testing.T) {
	conn := openDB(t, ":memory:")
	a := mustIndividual(t, conn, "I1", "Ann")
	b := mustIndividual(t, conn, "I2", "Bea")

	if _, err := conn.Exec(`INSERT INTO main_families (gedcom_id, family_type) VALUES ('F1', 'partnership')`); err != nil {
		t.Fatal(err)
	}
	if _, err := conn.Exec(
		`INSERT INTO main_family_members (family_id, individual_id, role) VALUES (1, ?, 'wife'), (1, ?, 'partner')`,
		a, b,
	); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if _, err := ExportTo(context.Background(), conn, &buf, ExportOptions{Now: fixedClock}); err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	text := buf.String()
	if !strings.Contains(text, "0 @F1@ FAM\n1 WIFE @I1@\n0 TRLR\n") {
		t.Errorf("partner emitted as spouse:\n%s", text)
	}
	// Both members still point back to the family.
	if strings.Count(text, "1 FAMS @F1@") != 2 {
		t.Errorf("want FAMS for both members:\n%s", text)
	}
}

func mustIndividual(t *testing.T, conn *sql.DB, gedcomID, given string) int {
	t.Helper()
	id, err := db.CreateIndividual(conn, &model.Individual{
		GedcomID: gedcomID,
		Names:    []model.Name{{Given: given}},
	})
	if err != nil {
		t.Fatalf("CreateIndividual(%s): %v", gedcomID, err)
	}
	return id
}

func TestFileLabel(t *testing.T) {
	base := filepath.Join(string(filepath.Separator), "srv", "pedigree")
	tests := []struct {
		path, base, want string
	}{
		{filepath.Join(base, "users", "ann", "data.ged"), base, "users/ann/data.ged"},
		{filepath.Join(string(filepath.Separator), "tmp", "out.ged"), base, "out.ged"},
		{filepath.Join(base, "..", "pedigree-other", "x.ged"), base, "x.ged"},
		{"relative/out.ged", "", "out.ged"},
		{"", base, ""},
	}
	for _, tt := range tests {
		if got := fileLabel(tt.path, tt.base); got != tt.want {
			t.Errorf("fileLabel(%q, %q) = %q, want %q", tt.path, tt.base, got, tt.want)
		}
	}
}

const undatedCouple = `0 HEAD
1 GEDC
2 VERS 5.5.1
1 CHAR UTF-8
0 @I1@ INDI
1 NAME Pat /Doe/
1 BIRT
2 DATE ABT 1950
1 FAMS @F1@
0 @I2@ INDI
1 NAME Sam /Doe/
1 FAMS @F1@
0 @F1@ FAM
1 HUSB @I1@
1 WIFE @I2@
1 MARR
2 DATE 25 DEC 1990
0 TRLR
`

func writeSource(t *testing.T, text string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "source.ged")
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExportOmitsMissingSex(t *testing.T) {
	dbPath, _ := importFile(t, writeSource(t, undatedCouple))
	conn := openDB(t, dbPath)

	fam, err := db.GetFamilyByGedcomID(conn, "F1")
	if err != nil {
		t.Fatalf("GetFamilyByGedcomID: %v", err)
	}
	if want := "Family of Pat Doe and Sam Doe"; fam.Notes != want {
		t.Errorf("notes = %q, want %q", fam.Notes, want)
	}

	var buf bytes.Buffer
	if _, err := ExportTo(context.Background(), conn, &buf, ExportOptions{Now: fixedClock}); err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	if strings.Contains(buf.String(), "1 SEX") {
		t.Errorf("export invented a SEX line:\n%s", buf.String())
	}
	if !strings.Contains(buf.String(), "0 @I2@ INDI\n1 NAME Sam /Doe/\n1 FAMS @F1@\n") {
		t.Errorf("unexpected I2 record:\n%s", buf.String())
	}
}

func TestExportAfterExactDateEdit(t *testing.T) {
	dbPath, _ := importFile(t, writeSource(t, undatedCouple))
	conn := openDB(t, dbPath)

	pat, err := db.GetIndividualByGedcomID(conn, "I1")
	if err != nil {
		t.Fatalf("GetIndividualByGedcomID: %v", err)
	}
	if pat.BirthDate != "" || pat.BirthDateApprox != "ABT 1950" {
		t.Fatalf("imported birth = (%q, %q), want approx ABT 1950", pat.BirthDate, pat.BirthDateApprox)
	}
	fam, err := db.GetFamilyByGedcomID(conn, "F1")
	if err != nil {
		t.Fatalf("GetFamilyByGedcomID: %v", err)
	}
	if fam.MarriageDate != "1990-12-25" || fam.MarriageDateApprox != "" {
		t.Fatalf("imported marriage = (%q, %q), want exact 1990-12-25", fam.MarriageDate, fam.MarriageDateApprox)
	}

	if err := db.UpdateIndividual(conn, pat.ID, map[string]any{"birth_date": "1952-03-19"}, nil); err != nil {
		t.Fatalf("UpdateIndividual: %v", err)
	}
	pat, err = db.GetIndividual(conn, pat.ID)
	if err != nil {
		t.Fatalf("GetIndividual: %v", err)
	}
	if pat.BirthDate != "1952-03-19" || pat.BirthDateApprox != "" {
		t.Errorf("updated birth = (%q, %q), want exact 1952-03-19 only", pat.BirthDate, pat.BirthDateApprox)
	}

	var buf bytes.Buffer
	if _, err := ExportTo(context.Background(), conn, &buf, ExportOptions{Now: fixedClock}); err != nil {
		t.Fatalf("ExportTo: %v", err)
	}
	text := buf.String()
	for _, want := range []string{
		"0 @I1@ INDI\n1 NAME Pat /Doe/\n1 BIRT\n2 DATE 19 MAR 1952\n1 FAMS @F1@\n",
		"1 MARR\n2 DATE 25 DEC 1990\n",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("export missing block:\n%s\ngot:\n%s", want, text)
		}
	}
	if strings.Contains(text, "ABT 1950") {
		t.Error("export still carries the replaced approximate date")
	}
}
