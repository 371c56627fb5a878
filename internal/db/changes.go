package db

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// RecordChange logs a field edit on an individual, family or the header.
func RecordChange(ex execer, entity string, entityID int, field, oldVal, newVal string) error {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := ex.Exec(
		`INSERT INTO meta_change_log (entity, entity_id, field, old_value, new_value, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		entity, entityID, field, oldVal, newVal, now,
	)
	if err != nil {
		return fmt.Errorf("recording change: %w", err)
	}
	return nil
}

// GetChanges retrieves change log entries for one entity, most recent first.
func GetChanges(db *sql.DB, entity string, entityID int, limit int) ([]model.Change, error) {
	query := `SELECT id, entity, entity_id, field, old_value, new_value, created_at
	          FROM meta_change_log
	          WHERE entity = ? AND entity_id = ?
	          ORDER BY created_at DESC, id DESC`
	args := []any{entity, entityID}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying changes: %w", err)
	}
	defer rows.Close()

	var changes []model.Change
	for rows.Next() {
		var c model.Change
		var oldVal, newVal sql.NullString
		var createdAt string
		if err := rows.Scan(&c.ID, &c.Entity, &c.EntityID, &c.Field, &oldVal, &newVal, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning change row: %w", err)
		}
		c.OldValue = oldVal.String
		c.NewValue = newVal.String

		t, err := time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing change created_at: %w", err)
		}
		c.CreatedAt = t

		changes = append(changes, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating change rows: %w", err)
	}

	return changes, nil
}
