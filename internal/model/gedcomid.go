package model

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ID prefixes used when generating new GEDCOM identifiers.
const (
	IndividualPrefix = "I"
	FamilyPrefix     = "F"
	SubmitterPrefix  = "U"
)

// gedcomIDPattern matches a letter followed by digits, e.g. "I00001".
var gedcomIDPattern = regexp.MustCompile(`^[A-Za-z]\d+$`)

// ValidateGedcomID returns an error if id is not a letter followed by digits.
func ValidateGedcomID(id string) error {
	if !gedcomIDPattern.MatchString(id) {
		return fmt.Errorf("invalid gedcom_id %q: must be a letter followed by digits", id)
	}
	return nil
}

// GedcomIDNumber returns the numeric suffix of a generated-style ID. IDs that
// do not match the letter+digits form report false.
func GedcomIDNumber(id string) (int, bool) {
	if !gedcomIDPattern.MatchString(id) {
		return 0, false
	}
	n, err := strconv.Atoi(id[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// FormatGedcomID returns prefix followed by n zero-padded to five digits.
func FormatGedcomID(prefix string, n int) string {
	return fmt.Sprintf("%s%05d", prefix, n)
}

// NormalizeGedcomID strips surrounding whitespace and "@" delimiters so both
// "@I1@" and "I1" can be passed on the command line.
func NormalizeGedcomID(input string) string {
	return strings.Trim(strings.TrimSpace(input), "@")
}
