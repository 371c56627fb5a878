package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const eventColumns = `id, individual_id, family_id, event_type_code, event_date, event_date_approx, event_place, description`

var eventUpdates = updateSpec{
	table: "main_events",
	fields: map[string]bool{
		"individual_id":     true,
		"family_id":         true,
		"event_type_code":   true,
		"event_date":        true,
		"event_date_approx": true,
		"event_place":       true,
		"description":       true,
	},
	datePairs: map[string]string{"event_date": "event_date_approx"},
}

// OwnerFilter restricts event and media listings to one owner.
type OwnerFilter struct {
	IndividualID *int
	FamilyID     *int
	ListOptions
}

func (f OwnerFilter) where() (string, []any) {
	var conds []string
	var args []any
	if f.IndividualID != nil {
		conds = append(conds, "individual_id = ?")
		args = append(args, *f.IndividualID)
	}
	if f.FamilyID != nil {
		conds = append(conds, "family_id = ?")
		args = append(args, *f.FamilyID)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// CreateEvent inserts an event owned by exactly one individual or family.
func CreateEvent(db *sql.DB, e *model.Event) (int, error) {
	if err := model.ValidateOwner(e.IndividualID, e.FamilyID); err != nil {
		return 0, fmt.Errorf("%w: event %v", ErrInvalid, err)
	}
	if e.TypeCode == "" {
		return 0, fmt.Errorf("%w: event_type_code is required", ErrInvalid)
	}
	if err := validateDatePair("event_date", e.Date, e.DateApprox); err != nil {
		return 0, err
	}
	if err := requireOwner(db, e.IndividualID, e.FamilyID); err != nil {
		return 0, err
	}
	return InsertEvent(db, e)
}

// InsertEvent writes an event row without validation.
func InsertEvent(q querier, e *model.Event) (int, error) {
	res, err := q.Exec(
		`INSERT INTO main_events (individual_id, family_id, event_type_code, event_date, event_date_approx, event_place, description)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		nilIfZeroPtr(e.IndividualID),
		nilIfZeroPtr(e.FamilyID),
		e.TypeCode,
		nullIfEmpty(e.Date),
		nullIfEmpty(e.DateApprox),
		nullIfEmpty(e.Place),
		nullIfEmpty(e.Description),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting event: %w", err)
	}
	id, err := lastID(res)
	if err != nil {
		return 0, err
	}
	e.ID = id
	return id, nil
}

// GetEvent retrieves an event by ID.
func GetEvent(db querier, id int) (*model.Event, error) {
	e, err := scanEventFrom(db.QueryRow(`SELECT `+eventColumns+` FROM main_events WHERE id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning event: %w", err)
	}
	return e, nil
}

// ListEvents returns events in insertion order, optionally filtered by owner.
func ListEvents(db querier, f OwnerFilter) ([]*model.Event, error) {
	where, args := f.where()
	rows, err := db.Query(`SELECT `+eventColumns+` FROM main_events`+where+` ORDER BY id`+f.clause(), args...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEventFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// UpdateEvent applies a partial update to an event. The owner invariant is
// checked against the row as it stands after the update.
func UpdateEvent(db *sql.DB, id int, updates map[string]any) error {
	if v, ok := updates["event_type_code"]; ok && (v == nil || v == "") {
		return fmt.Errorf("%w: event_type_code cannot be empty", ErrInvalid)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := applyUpdate(tx, eventUpdates, id, updates); err != nil {
		return err
	}

	e, err := GetEvent(tx, id)
	if err != nil {
		return err
	}
	if err := model.ValidateOwner(e.IndividualID, e.FamilyID); err != nil {
		return fmt.Errorf("%w: event %v", ErrInvalid, err)
	}
	if err := requireOwner(tx, e.IndividualID, e.FamilyID); err != nil {
		return err
	}

	return tx.Commit()
}

// DeleteEvent removes an event by ID.
func DeleteEvent(db *sql.DB, id int) error {
	res, err := db.Exec("DELETE FROM main_events WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting event: %w", err)
	}
	return checkAffected(res)
}

func requireOwner(q querier, individualID, familyID *int) error {
	if individualID != nil {
		if err := requireRow(q, "main_individuals", *individualID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: individual %d does not exist", ErrInvalid, *individualID)
			}
			return err
		}
	}
	if familyID != nil {
		if err := requireRow(q, "main_families", *familyID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: family %d does not exist", ErrInvalid, *familyID)
			}
			return err
		}
	}
	return nil
}

func scanEventFrom(s scanner) (*model.Event, error) {
	var e model.Event
	var individualID, familyID sql.NullInt64
	var date, approx, place, desc sql.NullString

	if err := s.Scan(&e.ID, &individualID, &familyID, &e.TypeCode, &date, &approx, &place, &desc); err != nil {
		return nil, err
	}
	e.IndividualID = intPtr(individualID)
	e.FamilyID = intPtr(familyID)
	e.Date = date.String
	e.DateApprox = approx.String
	e.Place = place.String
	e.Description = desc.String
	return &e, nil
}
