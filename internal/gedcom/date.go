package gedcom

import (
	"fmt"
	"strconv"
	"strings"
)

// monthCodes maps GEDCOM month abbreviations to month numbers.
var monthCodes = map[string]int{
	"JAN": 1, "FEB": 2, "MAR": 3, "APR": 4, "MAY": 5, "JUN": 6,
	"JUL": 7, "AUG": 8, "SEP": 9, "OCT": 10, "NOV": 11, "DEC": 12,
}

// monthNames is indexed by month number; index 0 is unused.
var monthNames = [13]string{"", "JAN", "FEB", "MAR", "APR", "MAY", "JUN", "JUL", "AUG", "SEP", "OCT", "NOV", "DEC"}

// dateModifiers are the leading tokens that make a GEDCOM date approximate,
// ranged, or interpreted.
var dateModifiers = map[string]bool{
	"ABT": true, "BEF": true, "AFT": true, "EST": true, "CAL": true,
	"FROM": true, "TO": true, "BET": true, "AND": true, "INT": true,
}

// IsExact reports whether raw is an exact GEDCOM date of the form
// "DD MON YYYY" with no modifier. Only exact dates convert losslessly to ISO.
func IsExact(raw string) bool {
	parts := strings.Fields(strings.ToUpper(raw))
	if len(parts) > 0 && dateModifiers[parts[0]] {
		return false
	}
	if len(parts) != 3 {
		return false
	}

	day, err := strconv.Atoi(parts[0])
	if err != nil || day < 1 || day > 31 {
		return false
	}
	if _, ok := monthCodes[parts[1]]; !ok {
		return false
	}
	if _, err := strconv.Atoi(parts[2]); err != nil {
		return false
	}
	return true
}

// ParseToISO converts an exact GEDCOM date to "YYYY-MM-DD". The second return
// value is false for anything IsExact rejects; such values belong verbatim in
// the approximate date field.
func ParseToISO(raw string) (string, bool) {
	if !IsExact(raw) {
		return "", false
	}
	parts := strings.Fields(strings.ToUpper(raw))
	day, _ := strconv.Atoi(parts[0])
	year, _ := strconv.Atoi(parts[2])
	return fmt.Sprintf("%04d-%02d-%02d", year, monthCodes[parts[1]], day), true
}

// FormatFromISO converts "YYYY-MM-DD" back to "DD MON YYYY". It returns ""
// when iso is empty or malformed.
func FormatFromISO(iso string) string {
	parts := strings.Split(strings.TrimSpace(iso), "-")
	if len(parts) != 3 {
		return ""
	}
	year, err := strconv.Atoi(parts[0])
	if err != nil {
		return ""
	}
	month, err := strconv.Atoi(parts[1])
	if err != nil || month < 1 || month > 12 {
		return ""
	}
	day, err := strconv.Atoi(parts[2])
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%02d %s %d", day, monthNames[month], year)
}

// Resolve picks the GEDCOM text for a date pair. The approximate value wins
// when both are set.
func Resolve(exact, approx string) string {
	if approx != "" {
		return approx
	}
	if exact != "" {
		return FormatFromISO(exact)
	}
	return ""
}

// SplitDate routes a raw GEDCOM date into its exact (ISO) or approximate
// field. Exactly one of the results is non-empty for a non-empty input.
func SplitDate(raw string) (exact, approx string) {
	if iso, ok := ParseToISO(raw); ok {
		return iso, ""
	}
	return "", raw
}
