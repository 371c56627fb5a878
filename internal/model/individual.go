package model

import (
	"fmt"
	"strings"
)

// Sex is a GEDCOM sex code.
type Sex string

const (
	SexMale    Sex = "M"
	SexFemale  Sex = "F"
	SexUnknown Sex = "U"
)

var validSexes = []Sex{SexMale, SexFemale, SexUnknown}

// ValidateSex returns an error if s is not a recognized sex code. The empty
// code is accepted and means "not recorded".
func ValidateSex(s Sex) error {
	if s == "" {
		return nil
	}
	for _, v := range validSexes {
		if s == v {
			return nil
		}
	}
	return fmt.Errorf("invalid sex code %q: must be one of %v", s, validSexes)
}

// Icon returns a display glyph for the sex code.
func (s Sex) Icon() string {
	switch s {
	case SexMale:
		return "\u2642" // ♂
	case SexFemale:
		return "\u2640" // ♀
	default:
		return "\u25cb" // ○
	}
}

// Color returns the display color name for the sex code.
func (s Sex) Color() string {
	switch s {
	case SexMale:
		return "blue"
	case SexFemale:
		return "magenta"
	default:
		return "gray"
	}
}

// Name is one name record of an individual. Order is nil when no explicit
// position was stored; such names sort after ordered ones.
type Name struct {
	ID     int    `json:"id,omitempty"`
	Type   string `json:"name_type,omitempty"`
	Given  string `json:"given_name,omitempty"`
	Family string `json:"family_name,omitempty"`
	Prefix string `json:"prefix,omitempty"`
	Suffix string `json:"suffix,omitempty"`
	Order  *int   `json:"name_order,omitempty"`
}

// Display returns "Given Family" with empty parts dropped.
func (n Name) Display() string {
	return strings.TrimSpace(strings.TrimSpace(n.Given) + " " + strings.TrimSpace(n.Family))
}

// SortKey is the name_order value used for ordering; unset orders sort last.
func (n Name) SortKey() int {
	if n.Order == nil {
		return 999
	}
	return *n.Order
}

// Individual is a persisted person. Each date pair holds either an exact ISO
// date or an approximate GEDCOM date, never both.
type Individual struct {
	ID              int    `json:"id"`
	GedcomID        string `json:"gedcom_id"`
	Sex             Sex    `json:"sex_code,omitempty"`
	BirthDate       string `json:"birth_date,omitempty"`
	BirthDateApprox string `json:"birth_date_approx,omitempty"`
	BirthPlace      string `json:"birth_place,omitempty"`
	DeathDate       string `json:"death_date,omitempty"`
	DeathDateApprox string `json:"death_date_approx,omitempty"`
	DeathPlace      string `json:"death_place,omitempty"`
	Notes           string `json:"notes,omitempty"`
	Names           []Name `json:"names"`

	// Populated only by the eager loaders used for export and detail views.
	Events []*Event `json:"events,omitempty"`
	Media  []*Media `json:"media,omitempty"`
}

// DisplayName returns the first stored name, or "Individual {gedcom_id}"
// when the individual has no usable name.
func (i *Individual) DisplayName() string {
	if len(i.Names) > 0 {
		if s := i.Names[0].Display(); s != "" {
			return s
		}
	}
	return "Individual " + i.GedcomID
}
