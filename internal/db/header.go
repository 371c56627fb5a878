package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// headerColumns lists meta_header columns in model.Header field order.
var headerColumns = []string{
	"source_system_id", "source_system_name", "source_version", "source_corporation",
	"destination", "file_name", "creation_date", "creation_time",
	"gedcom_version", "gedcom_form", "charset", "language", "copyright", "note",
	"submitter_id", "submitter_name", "submitter_address", "submitter_city",
	"submitter_state", "submitter_postal", "submitter_country", "submitter_phone",
	"submitter_email", "submitter_fax", "submitter_www",
	"imported_at", "last_modified",
}

// protectedHeaderFields are maintained by import and export and are skipped
// by UpdateHeader.
var protectedHeaderFields = map[string]bool{
	"id":            true,
	"file_name":     true,
	"creation_date": true,
	"creation_time": true,
	"imported_at":   true,
}

// submitterFields are the keys UpdateSubmitter accepts.
var submitterFields = map[string]bool{
	"submitter_name":    true,
	"submitter_address": true,
	"submitter_city":    true,
	"submitter_state":   true,
	"submitter_postal":  true,
	"submitter_country": true,
	"submitter_phone":   true,
	"submitter_email":   true,
	"submitter_fax":     true,
	"submitter_www":     true,
	"language":          true,
	"copyright":         true,
	"note":              true,
}

// headerFieldPtrs returns pointers to h's fields in headerColumns order.
func headerFieldPtrs(h *model.Header) []*string {
	return []*string{
		&h.SourceSystemID, &h.SourceSystemName, &h.SourceVersion, &h.SourceCorporation,
		&h.Destination, &h.FileName, &h.CreationDate, &h.CreationTime,
		&h.GedcomVersion, &h.GedcomForm, &h.Charset, &h.Language, &h.Copyright, &h.Note,
		&h.SubmitterID, &h.SubmitterName, &h.SubmitterAddress, &h.SubmitterCity,
		&h.SubmitterState, &h.SubmitterPostal, &h.SubmitterCountry, &h.SubmitterPhone,
		&h.SubmitterEmail, &h.SubmitterFax, &h.SubmitterWWW,
		&h.ImportedAt, &h.LastModified,
	}
}

// DefaultHeader is written when a header is first requested on a database
// that was never imported into.
func DefaultHeader() *model.Header {
	return &model.Header{
		SourceSystemID:   "GEDCOM-Genealogy-App",
		SourceSystemName: "Genealogy Database Application",
		SourceVersion:    "1.0.0",
		GedcomVersion:    "5.5.1",
		GedcomForm:       "LINEAGE-LINKED",
		Charset:          "UTF-8",
		SubmitterID:      "U00001",
		SubmitterName:    "Database User",
	}
}

// GetHeader returns the singleton header or ErrNotFound.
func GetHeader(db querier) (*model.Header, error) {
	var h model.Header
	fields := headerFieldPtrs(&h)
	dest := make([]sql.NullString, len(fields))
	ptrs := make([]any, len(fields))
	for i := range dest {
		ptrs[i] = &dest[i]
	}

	query := fmt.Sprintf("SELECT %s FROM meta_header WHERE id = 1", strings.Join(headerColumns, ", "))
	if err := db.QueryRow(query).Scan(ptrs...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning header: %w", err)
	}
	for i, f := range fields {
		*f = dest[i].String
	}
	return &h, nil
}

// SaveHeader writes h as the singleton header row, replacing any existing one.
func SaveHeader(q querier, h *model.Header) error {
	fields := headerFieldPtrs(h)
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		args = append(args, nullIfEmpty(*f))
	}

	query := fmt.Sprintf(
		"INSERT OR REPLACE INTO meta_header (id, %s) VALUES (1, %s)",
		strings.Join(headerColumns, ", "), makePlaceholders(len(headerColumns)),
	)
	if _, err := q.Exec(query, args...); err != nil {
		return fmt.Errorf("saving header: %w", err)
	}
	return nil
}

// GetOrCreateHeader returns the header, writing DefaultHeader first if none exists.
func GetOrCreateHeader(db *sql.DB) (*model.Header, error) {
	h, err := GetHeader(db)
	if err == nil {
		return h, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	h = DefaultHeader()
	if err := SaveHeader(db, h); err != nil {
		return nil, err
	}
	return h, nil
}

// UpdateHeader sets editable header fields. Protected fields in updates are
// skipped silently; unknown keys are rejected. last_modified is always stamped.
func UpdateHeader(db *sql.DB, updates map[string]any) (*model.Header, error) {
	allowed := make(map[string]bool, len(headerColumns))
	for _, c := range headerColumns {
		if !protectedHeaderFields[c] && c != "last_modified" {
			allowed[c] = true
		}
	}

	filtered := make(map[string]any, len(updates))
	for k, v := range updates {
		if protectedHeaderFields[k] {
			continue
		}
		filtered[k] = v
	}
	return updateHeaderFields(db, allowed, filtered)
}

// UpdateSubmitter sets submitter contact fields plus language, copyright and note.
func UpdateSubmitter(db *sql.DB, updates map[string]any) (*model.Header, error) {
	return updateHeaderFields(db, submitterFields, updates)
}

func updateHeaderFields(db *sql.DB, allowed map[string]bool, updates map[string]any) (*model.Header, error) {
	if _, err := GetOrCreateHeader(db); err != nil {
		return nil, err
	}

	tx, err := db.Begin()
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	spec := updateSpec{table: "meta_header", entity: model.EntityHeader, fields: allowed}
	if err := applyUpdate(tx, spec, 1, updates); err != nil {
		return nil, err
	}

	now := time.Now().Format("2006-01-02T15:04:05")
	if _, err := tx.Exec(`UPDATE meta_header SET last_modified = ? WHERE id = 1`, now); err != nil {
		return nil, fmt.Errorf("stamping last_modified: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing transaction: %w", err)
	}
	return GetHeader(db)
}
