package model

import (
	"encoding/json"
	"time"
)

// Entity names recorded in the change log.
const (
	EntityIndividual = "individual"
	EntityFamily     = "family"
	EntityHeader     = "header"
)

// Change is one field edit recorded against an individual, family or header.
type Change struct {
	ID        int
	Entity    string
	EntityID  int
	Field     string
	OldValue  string
	NewValue  string
	CreatedAt time.Time
}

type changeJSON struct {
	ID        int    `json:"id"`
	Entity    string `json:"entity"`
	EntityID  int    `json:"entity_id"`
	Field     string `json:"field"`
	OldValue  string `json:"old_value"`
	NewValue  string `json:"new_value"`
	CreatedAt string `json:"created_at"`
}

// MarshalJSON implements custom JSON serialization for Change.
func (c Change) MarshalJSON() ([]byte, error) {
	return json.Marshal(changeJSON{
		ID:        c.ID,
		Entity:    c.Entity,
		EntityID:  c.EntityID,
		Field:     c.Field,
		OldValue:  c.OldValue,
		NewValue:  c.NewValue,
		CreatedAt: c.CreatedAt.UTC().Format(time.RFC3339),
	})
}
