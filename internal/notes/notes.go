// Package notes builds the descriptive note stored on families that were
// created without one.
package notes

import (
	"fmt"
	"strings"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// maxListedChildren is the largest child count written out in full.
const maxListedChildren = 4

// Member is a family member as seen by the generator.
type Member struct {
	Name string
	Role model.Role
	Sex  model.Sex
}

// Generate returns a one-sentence description of a family, or "" when it has
// neither members nor children. Names should already be display names.
func Generate(members []Member, children []string, familyType string) string {
	if len(members) == 0 && len(children) == 0 {
		return ""
	}

	var relation string
	switch len(members) {
	case 0:
		return "Family with children " + joinNames(children)
	case 1:
		relation = "Family of " + members[0].Name
	default:
		names := make([]string, len(members))
		for i, m := range members {
			names[i] = m.Name
		}
		prefix := "Family of "
		if isSameSex(members, familyType) {
			prefix = "Same-sex marriage of "
		}
		relation = prefix + joinNames(names)
	}

	if len(children) == 0 {
		return relation
	}

	parents := "parents of "
	if len(members) == 1 {
		parents = "parent of "
	}
	return relation + ", " + parents + joinNames(children)
}

func isSameSex(members []Member, familyType string) bool {
	if familyType == model.FamilyTypeSameSex {
		return true
	}
	var husband, wife *Member
	for i := range members {
		switch members[i].Role {
		case model.RoleHusband:
			if husband == nil {
				husband = &members[i]
			}
		case model.RoleWife:
			if wife == nil {
				wife = &members[i]
			}
		}
	}
	return husband != nil && wife != nil && husband.Sex != "" && husband.Sex == wife.Sex
}

// joinNames renders "A", "A and B", "A, B and C", and past four names
// "A, B, C and N others".
func joinNames(names []string) string {
	switch n := len(names); {
	case n == 0:
		return ""
	case n == 1:
		return names[0]
	case n <= maxListedChildren:
		return strings.Join(names[:n-1], ", ") + " and " + names[n-1]
	default:
		return fmt.Sprintf("%s and %d others", strings.Join(names[:3], ", "), n-3)
	}
}

// ForFamily resolves display names and sexes for fam's links from people,
// keyed by internal ID, and generates the note. Links to unknown IDs fall
// back to "Individual #ID".
func ForFamily(fam *model.Family, people map[int]*model.Individual) string {
	members := make([]Member, 0, len(fam.Members))
	for _, m := range fam.Members {
		mem := Member{Role: m.Role, Name: fmt.Sprintf("Individual #%d", m.IndividualID)}
		if p, ok := people[m.IndividualID]; ok {
			mem.Name = p.DisplayName()
			mem.Sex = p.Sex
		}
		members = append(members, mem)
	}

	children := make([]string, 0, len(fam.Children))
	for _, c := range fam.Children {
		name := fmt.Sprintf("Individual #%d", c.ChildID)
		if p, ok := people[c.ChildID]; ok {
			name = p.DisplayName()
		}
		children = append(children, name)
	}

	return Generate(members, children, fam.FamilyType)
}
