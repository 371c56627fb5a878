package gedcomio

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
)

var fixedNow = time.Date(2024, 3, 2, 4, 5, 6, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func importFile(t *testing.T, src string) (string, *ImportResult) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "data.sqlite")
	res, err := Import(context.Background(), src, dbPath, ImportOptions{Now: fixedClock})
	if err != nil {
		t.Fatalf("Import(%s): %v", src, err)
	}
	return dbPath, res
}

func openDB(t *testing.T, path string) *sql.DB {
	t.Helper()
	conn, err := db.OpenReady(path)
	if err != nil {
		t.Fatalf("OpenReady(%s): %v", path, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestImportCounts(t *testing.T) {
	_, res := importFile(t, "testdata/sample.ged")

	if res.Individuals != 9 {
		t.Errorf("Individuals = %d, want 9", res.Individuals)
	}
	if res.Families != 3 {
		t.Errorf("Families = %d, want 3", res.Families)
	}
	if res.Events != 0 {
		t.Errorf("Events = %d, want 0", res.Events)
	}
	// The OBJE without FILE is dropped.
	if res.Media != 0 {
		t.Errorf("Media = %d, want 0", res.Media)
	}
	if res.BackupPath != "" {
		t.Errorf("BackupPath = %q, want empty for a new database", res.BackupPath)
	}
	if len(res.Unsupported) != 1 || res.Unsupported[0].Line != 12 {
		t.Errorf("Unsupported = %v, want the _CUSTOM line 12", res.Unsupported)
	}
}

func TestImportSplitsDates(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	john, err := db.GetIndividualByGedcomID(conn, "I1")
	if err != nil {
		t.Fatalf("GetIndividualByGedcomID: %v", err)
	}
	if john.BirthDate != "1980-01-15" || john.BirthDateApprox != "" {
		t.Errorf("birth = (%q, %q), want exact 1980-01-15", john.BirthDate, john.BirthDateApprox)
	}
	if john.BirthPlace != "Springfield" {
		t.Errorf("BirthPlace = %q, want Springfield", john.BirthPlace)
	}
	if john.DeathDate != "" || john.DeathDateApprox != "ABT 2050" {
		t.Errorf("death = (%q, %q), want approx ABT 2050", john.DeathDate, john.DeathDateApprox)
	}

	fam, err := db.GetFamilyByGedcomID(conn, "F2")
	if err != nil {
		t.Fatalf("GetFamilyByGedcomID: %v", err)
	}
	if fam.MarriageDate != "" || fam.MarriageDateApprox != "BET 1990 AND 1995" {
		t.Errorf("marriage = (%q, %q), want approx range", fam.MarriageDate, fam.MarriageDateApprox)
	}
}

func TestImportLeavesMissingSexEmpty(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	amy, err := db.GetIndividualByGedcomID(conn, "I3")
	if err != nil {
		t.Fatalf("GetIndividualByGedcomID: %v", err)
	}
	if amy.Sex != "" {
		t.Errorf("Sex = %q, want empty", amy.Sex)
	}
	if len(amy.Names) != 1 || amy.Names[0].Order == nil || *amy.Names[0].Order != 0 {
		t.Errorf("Names = %+v, want one name with order 0", amy.Names)
	}
}

func TestImportGeneratesNotes(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	tests := []struct {
		gedcomID string
		want     string
	}{
		{"F1", "Family of John Smith and Jane Doe, parents of Amy Smith, Ben Smith, Cal Smith and 2 others"},
		{"F2", "Same-sex marriage of Anna Lee and Beth Kim"},
		{"F3", "Family with children Amy Smith"},
	}
	for _, tt := range tests {
		fam, err := db.GetFamilyByGedcomID(conn, tt.gedcomID)
		if err != nil {
			t.Fatalf("GetFamilyByGedcomID(%s): %v", tt.gedcomID, err)
		}
		if fam.Notes != tt.want {
			t.Errorf("%s notes = %q, want %q", tt.gedcomID, fam.Notes, tt.want)
		}
	}
}

func TestImportDropsUnresolvedReferences(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	fam, err := db.GetFamilyByGedcomID(conn, "F3")
	if err != nil {
		t.Fatalf("GetFamilyByGedcomID: %v", err)
	}
	if len(fam.Members) != 0 {
		t.Errorf("Members = %+v, want none", fam.Members)
	}
	if len(fam.Children) != 1 {
		t.Errorf("Children = %+v, want one", fam.Children)
	}
}

func TestImportStoresHeader(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/roundtrip.ged")
	conn := openDB(t, dbPath)

	h, err := db.GetHeader(conn)
	if err != nil {
		t.Fatalf("GetHeader: %v", err)
	}
	if h.SourceSystemID != "TestSystem" || h.SourceCorporation != "Example Corp" {
		t.Errorf("source = (%q, %q)", h.SourceSystemID, h.SourceCorporation)
	}
	if h.CreationDate != "01 JAN 2024" || h.CreationTime != "10:00:00" {
		t.Errorf("creation = (%q, %q)", h.CreationDate, h.CreationTime)
	}
	if h.SubmitterID != "U00001" || h.SubmitterCity != "Springfield" {
		t.Errorf("submitter = (%q, %q)", h.SubmitterID, h.SubmitterCity)
	}
	if h.ImportedAt != "2024-03-02T04:05:06" {
		t.Errorf("ImportedAt = %q, want 2024-03-02T04:05:06", h.ImportedAt)
	}
}

func TestImportReplacesExistingData(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")

	res, err := Import(context.Background(), "testdata/roundtrip.ged", dbPath, ImportOptions{Now: fixedClock})
	if err != nil {
		t.Fatalf("second Import: %v", err)
	}

	wantBackup := filepath.Join(filepath.Dir(dbPath), "data.sqlite.20240302040506")
	if res.BackupPath != wantBackup {
		t.Errorf("BackupPath = %q, want %q", res.BackupPath, wantBackup)
	}
	if _, err := os.Stat(wantBackup); err != nil {
		t.Errorf("backup missing: %v", err)
	}

	conn := openDB(t, dbPath)
	counts, err := db.CountAll(conn)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if counts.Individuals != 4 || counts.Families != 1 {
		t.Errorf("counts = %+v, want only the second file's records", counts)
	}
}

func TestImportRejectsBadSources(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.ged")
	headerOnly := filepath.Join(dir, "header.ged")
	if err := os.WriteFile(empty, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(headerOnly, []byte("0 HEAD\n1 CHAR UTF-8\n0 TRLR\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		src  string
		want error
	}{
		{"missing", filepath.Join(dir, "nope.ged"), ErrEmptySource},
		{"empty", empty, ErrEmptySource},
		{"no records", headerOnly, ErrNoRecords},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dbPath := filepath.Join(dir, tt.name+".sqlite")
			_, err := Import(context.Background(), tt.src, dbPath, ImportOptions{Now: fixedClock})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Import error = %v, want %v", err, tt.want)
			}
			if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
				t.Errorf("database created for rejected source")
			}
		})
	}
}

func TestImportIntoCancelledLeavesDataIntact(t *testing.T) {
	dbPath, _ := importFile(t, "testdata/sample.ged")
	conn := openDB(t, dbPath)

	parsed, err := gedcom.ParseFile("testdata/roundtrip.ged")
	if err != nil {
		t.Fatalf("ParseFile: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ImportInto(ctx, conn, parsed, fixedNow); err == nil {
		t.Fatal("ImportInto with cancelled context succeeded")
	}

	counts, err := db.CountAll(conn)
	if err != nil {
		t.Fatalf("CountAll: %v", err)
	}
	if counts.Individuals != 9 || counts.Families != 3 {
		t.Errorf("counts = %+v, want original 9 individuals and 3 families", counts)
	}
}

func TestBackupDatabaseWithoutFile(t *testing.T) {
	got, err := BackupDatabase(filepath.Join(t.TempDir(), "missing.sqlite"), fixedNow)
	if err != nil {
		t.Fatalf("BackupDatabase: %v", err)
	}
	if got != "" {
		t.Errorf("BackupDatabase = %q, want empty", got)
	}
}
