package model

import (
	"errors"
	"fmt"
)

// Event is a dated fact attached to exactly one individual or one family.
type Event struct {
	ID           int    `json:"id"`
	IndividualID *int   `json:"individual_id,omitempty"`
	FamilyID     *int   `json:"family_id,omitempty"`
	TypeCode     string `json:"event_type_code"`
	Date         string `json:"event_date,omitempty"`
	DateApprox   string `json:"event_date_approx,omitempty"`
	Place        string `json:"event_place,omitempty"`
	Description  string `json:"description,omitempty"`
}

// Media is a file reference attached to an individual or a family.
type Media struct {
	ID           int    `json:"id"`
	IndividualID *int   `json:"individual_id,omitempty"`
	FamilyID     *int   `json:"family_id,omitempty"`
	FilePath     string `json:"file_path,omitempty"`
	TypeCode     string `json:"media_type_code,omitempty"`
	Date         string `json:"media_date,omitempty"`
	Description  string `json:"description,omitempty"`
}

// ErrNoOwner is returned when an event or media item is attached to neither
// an individual nor a family.
var ErrNoOwner = errors.New("must belong to an individual or a family")

// ValidateOwner checks that exactly one of the owner references is set.
func ValidateOwner(individualID, familyID *int) error {
	if individualID == nil && familyID == nil {
		return ErrNoOwner
	}
	if individualID != nil && familyID != nil {
		return fmt.Errorf("cannot belong to both individual %d and family %d", *individualID, *familyID)
	}
	return nil
}
