package filter

import (
	"strconv"
	"strings"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// ToStringSet converts a slice of strings to a set for O(1) membership checks.
// Values are upper-cased so sex and type codes match case-insensitively.
func ToStringSet(ss []string) map[string]struct{} {
	if len(ss) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(ss))
	for _, s := range ss {
		set[strings.ToUpper(strings.TrimSpace(s))] = struct{}{}
	}
	return set
}

// Individuals narrows a list of individuals. Zero fields match everything.
type Individuals struct {
	Name      string              // case-insensitive substring of any stored name
	Sexes     map[string]struct{} // from ToStringSet
	BornAfter int                 // birth year lower bound, inclusive
	BornUntil int                 // birth year upper bound, inclusive
}

// Empty reports whether f matches every individual.
func (f Individuals) Empty() bool {
	return f.Name == "" && len(f.Sexes) == 0 && f.BornAfter == 0 && f.BornUntil == 0
}

// Apply returns the individuals that pass every criterion, in input order.
func (f Individuals) Apply(people []*model.Individual) []*model.Individual {
	if f.Empty() {
		return people
	}
	out := make([]*model.Individual, 0, len(people))
	for _, p := range people {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Match reports whether p passes every criterion. Individuals without a
// known birth year never pass a year bound.
func (f Individuals) Match(p *model.Individual) bool {
	if len(f.Sexes) > 0 {
		if _, ok := f.Sexes[string(p.Sex)]; !ok {
			return false
		}
	}
	if f.Name != "" && !HasName(p, f.Name) {
		return false
	}
	if f.BornAfter != 0 || f.BornUntil != 0 {
		year, ok := BirthYear(p)
		if !ok {
			return false
		}
		if f.BornAfter != 0 && year < f.BornAfter {
			return false
		}
		if f.BornUntil != 0 && year > f.BornUntil {
			return false
		}
	}
	return true
}

// HasName reports whether any of p's names contains needle, ignoring case.
func HasName(p *model.Individual, needle string) bool {
	needle = strings.ToLower(strings.TrimSpace(needle))
	for _, n := range p.Names {
		if strings.Contains(strings.ToLower(n.Display()), needle) {
			return true
		}
	}
	return false
}

// BirthYear extracts the year of birth. Exact dates carry it in the ISO
// prefix; approximate ones use the first four-digit token, so "BET 1990 AND
// 1995" yields 1990.
func BirthYear(p *model.Individual) (int, bool) {
	if len(p.BirthDate) >= 4 {
		if y, err := strconv.Atoi(p.BirthDate[:4]); err == nil {
			return y, true
		}
	}
	for _, tok := range strings.Fields(p.BirthDateApprox) {
		if len(tok) != 4 {
			continue
		}
		if y, err := strconv.Atoi(tok); err == nil {
			return y, true
		}
	}
	return 0, false
}
