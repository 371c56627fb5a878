package db

import (
	"errors"
	"testing"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

func TestGetOrCreateHeaderDefaults(t *testing.T) {
	db := mustInit(t)

	if _, err := GetHeader(db); !errors.Is(err, ErrNotFound) {
		t.Fatalf("GetHeader on empty db: got %v, want ErrNotFound", err)
	}

	h, err := GetOrCreateHeader(db)
	if err != nil {
		t.Fatalf("GetOrCreateHeader: %v", err)
	}
	if h.GedcomVersion != "5.5.1" || h.SubmitterID != "U00001" {
		t.Errorf("default header = %+v", h)
	}

	again, err := GetHeader(db)
	if err != nil {
		t.Fatal(err)
	}
	if again.SourceSystemID != "GEDCOM-Genealogy-App" {
		t.Errorf("persisted header = %+v", again)
	}
}

func TestSaveHeaderReplaces(t *testing.T) {
	db := mustInit(t)
	if err := SaveHeader(db, &model.Header{SourceSystemID: "A", Note: "first"}); err != nil {
		t.Fatal(err)
	}
	if err := SaveHeader(db, &model.Header{SourceSystemID: "B"}); err != nil {
		t.Fatal(err)
	}

	var n int
	if err := db.QueryRow("SELECT COUNT(*) FROM meta_header").Scan(&n); err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("meta_header rows = %d, want 1", n)
	}
	h, err := GetHeader(db)
	if err != nil {
		t.Fatal(err)
	}
	if h.SourceSystemID != "B" || h.Note != "" {
		t.Errorf("header = %+v", h)
	}
}

func TestUpdateHeaderSkipsProtectedFields(t *testing.T) {
	db := mustInit(t)
	if err := SaveHeader(db, &model.Header{FileName: "orig.ged", CreationDate: "1 JAN 2000", ImportedAt: "2000-01-01T00:00:00"}); err != nil {
		t.Fatal(err)
	}

	h, err := UpdateHeader(db, map[string]any{
		"file_name":     "hacked.ged",
		"creation_date": "2 FEB 2002",
		"imported_at":   "never",
		"copyright":     "(c) Family",
	})
	if err != nil {
		t.Fatalf("UpdateHeader: %v", err)
	}
	if h.FileName != "orig.ged" || h.CreationDate != "1 JAN 2000" || h.ImportedAt != "2000-01-01T00:00:00" {
		t.Errorf("protected fields changed: %+v", h)
	}
	if h.Copyright != "(c) Family" {
		t.Errorf("Copyright = %q", h.Copyright)
	}
	if h.LastModified == "" {
		t.Error("last_modified not stamped")
	}

	if _, err := UpdateHeader(db, map[string]any{"bogus": "x"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("unknown field: got %v, want ErrInvalid", err)
	}
}

func TestUpdateSubmitter(t *testing.T) {
	db := mustInit(t)

	h, err := UpdateSubmitter(db, map[string]any{"submitter_name": "John Doe", "submitter_email": "john@example.com"})
	if err != nil {
		t.Fatalf("UpdateSubmitter: %v", err)
	}
	if h.SubmitterName != "John Doe" || h.SubmitterEmail != "john@example.com" {
		t.Errorf("header = %+v", h)
	}
	if h.SubmitterID != "U00001" {
		t.Errorf("SubmitterID = %q, want default U00001", h.SubmitterID)
	}

	if _, err := UpdateSubmitter(db, map[string]any{"source_system_id": "x"}); !errors.Is(err, ErrInvalid) {
		t.Errorf("non-submitter field: got %v, want ErrInvalid", err)
	}

	changes, err := GetChanges(db, model.EntityHeader, 1, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(changes) != 2 {
		t.Errorf("header changes = %d, want 2", len(changes))
	}
}
