package model

import "fmt"

// Role labels a family member link. The empty role is an unlabeled member.
type Role string

const (
	RoleHusband Role = "husband"
	RoleWife    Role = "wife"
	RolePartner Role = "partner"
)

var validRoles = []Role{RoleHusband, RoleWife, RolePartner}

// ValidateRole returns an error if r is not a recognized member role.
func ValidateRole(r Role) error {
	if r == "" {
		return nil
	}
	for _, v := range validRoles {
		if r == v {
			return nil
		}
	}
	return fmt.Errorf("invalid role %q: must be one of %v", r, validRoles)
}

// Family types. Any string is accepted; these are the ones the note
// generator and the tree views know about.
const (
	FamilyTypeMarriage    = "marriage"
	FamilyTypeSameSex     = "same-sex"
	FamilyTypePartnership = "partnership"
)

// Member links an individual to a family with a role.
type Member struct {
	FamilyID     int  `json:"family_id,omitempty"`
	IndividualID int  `json:"individual_id"`
	Role         Role `json:"role,omitempty"`
}

// Child links an individual to a family as a child.
type Child struct {
	FamilyID int `json:"family_id,omitempty"`
	ChildID  int `json:"child_id"`
}

// Family is a persisted family unit. Members and Children keep insertion order.
type Family struct {
	ID                 int      `json:"id"`
	GedcomID           string   `json:"gedcom_id"`
	MarriageDate       string   `json:"marriage_date,omitempty"`
	MarriageDateApprox string   `json:"marriage_date_approx,omitempty"`
	MarriagePlace      string   `json:"marriage_place,omitempty"`
	DivorceDate        string   `json:"divorce_date,omitempty"`
	DivorceDateApprox  string   `json:"divorce_date_approx,omitempty"`
	FamilyType         string   `json:"family_type"`
	Notes              string   `json:"notes,omitempty"`
	Members            []Member `json:"members"`
	Children           []Child  `json:"children"`

	Events []*Event `json:"events,omitempty"`
	Media  []*Media `json:"media,omitempty"`
}

// MemberWithRole returns the individual ID of the first member holding role.
func (f *Family) MemberWithRole(r Role) (int, bool) {
	for _, m := range f.Members {
		if m.Role == r {
			return m.IndividualID, true
		}
	}
	return 0, false
}
