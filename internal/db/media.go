package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const mediaColumns = `id, individual_id, family_id, file_path, media_type_code, media_date, description`

var mediaUpdates = updateSpec{
	table: "main_media",
	fields: map[string]bool{
		"individual_id":   true,
		"family_id":       true,
		"file_path":       true,
		"media_type_code": true,
		"media_date":      true,
		"description":     true,
	},
}

// CreateMedia inserts a media reference owned by one individual or family.
func CreateMedia(db *sql.DB, m *model.Media) (int, error) {
	if err := model.ValidateOwner(m.IndividualID, m.FamilyID); err != nil {
		return 0, fmt.Errorf("%w: media %v", ErrInvalid, err)
	}
	if err := validateISODate("media_date", m.Date); err != nil {
		return 0, err
	}
	if err := requireOwner(db, m.IndividualID, m.FamilyID); err != nil {
		return 0, err
	}
	return InsertMedia(db, m)
}

// InsertMedia writes a media row without validation.
func InsertMedia(q querier, m *model.Media) (int, error) {
	res, err := q.Exec(
		`INSERT INTO main_media (individual_id, family_id, file_path, media_type_code, media_date, description)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		nilIfZeroPtr(m.IndividualID),
		nilIfZeroPtr(m.FamilyID),
		nullIfEmpty(m.FilePath),
		nullIfEmpty(m.TypeCode),
		nullIfEmpty(m.Date),
		nullIfEmpty(m.Description),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting media: %w", err)
	}
	id, err := lastID(res)
	if err != nil {
		return 0, err
	}
	m.ID = id
	return id, nil
}

// GetMedia retrieves a media reference by ID.
func GetMedia(db querier, id int) (*model.Media, error) {
	m, err := scanMediaFrom(db.QueryRow(`SELECT `+mediaColumns+` FROM main_media WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning media: %w", err)
	}
	return m, nil
}

// ListMedia returns media in insertion order, optionally filtered by owner.
func ListMedia(db querier, f OwnerFilter) ([]*model.Media, error) {
	where, args := f.where()
	rows, err := db.Query(`SELECT `+mediaColumns+` FROM main_media`+where+` ORDER BY id`+f.clause(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var out []*model.Media
	for rows.Next() {
		m, err := scanMediaFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// UpdateMedia applies a partial update to a media reference.
func UpdateMedia(db *sql.DB, id int, updates map[string]any) error {
	if v, ok := updates["media_date"].(string); ok {
		if err := validateISODate("media_date", v); err != nil {
			return err
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyUpdate(tx, mediaUpdates, id, updates); err != nil {
		return err
	}

	m, err := GetMedia(tx, id)
	if err != nil {
		return err
	}
	if err := model.ValidateOwner(m.IndividualID, m.FamilyID); err != nil {
		return fmt.Errorf("%w: media %v", ErrInvalid, err)
	}
	if err := requireOwner(tx, m.IndividualID, m.FamilyID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteMedia removes a media reference by ID.
func DeleteMedia(db *sql.DB, id int) error {
	res, err := db.Exec("DELETE FROM main_media WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting media: %w", err)
	}
	return checkAffected(res)
}

func scanMediaFrom(s scanner) (*model.Media, error) {
	var m model.Media
	var individualID, familyID sql.NullInt64
	var path, typeCode, date, desc sql.NullString

	if err := s.Scan(&m.ID, &individualID, &familyID, &path, &typeCode, &date, &desc); err != nil {
		return nil, err
	}
	m.IndividualID = intPtr(individualID)
	m.FamilyID = intPtr(familyID)
	m.FilePath = path.String
	m.TypeCode = typeCode.String
	m.Date = date.String
	m.Description = desc.String
	return &m, nil
}
