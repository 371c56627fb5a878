package gedcom

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrSyntax marks a line that is not GEDCOM at all.
var ErrSyntax = errors.New("malformed gedcom line")

var (
	xrefPattern = regexp.MustCompile(`@([^@]+)@`)
	namePattern = regexp.MustCompile(`^(.*?)\s*/([^/]*)/?\s*$`)
)

// Line is one tokenized GEDCOM line.
type Line struct {
	Number int
	Level  int
	Tag    string
	Value  string
	Raw    string
}

// splitLine tokenizes "LEVEL [TAG] [VALUE]". Fields are whitespace separated
// and the value runs to end of line. ok is false for blank lines.
func splitLine(raw string, number int) (Line, bool, error) {
	text := strings.TrimRight(raw, "\r\n")
	if strings.TrimSpace(text) == "" {
		return Line{}, false, nil
	}

	levelText, rest := nextField(text)
	level, err := strconv.Atoi(levelText)
	if err != nil {
		return Line{}, false, fmt.Errorf("%w: line %d: invalid level %q", ErrSyntax, number, levelText)
	}

	line := Line{Number: number, Level: level, Raw: text}
	line.Tag, line.Value = nextField(rest)
	return line, true, nil
}

// nextField returns the first whitespace-delimited field of s and the
// remainder with leading whitespace removed.
func nextField(s string) (field, rest string) {
	s = strings.TrimLeft(s, " \t")
	i := strings.IndexAny(s, " \t")
	if i < 0 {
		return s, ""
	}
	return s[:i], strings.TrimLeft(s[i:], " \t")
}

// parseXref extracts the ID from an "@ID@" token. ok is false if s holds no
// cross-reference.
func parseXref(s string) (string, bool) {
	m := xrefPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// ParseName splits a NAME value of the form "Given /Family/". Everything
// before the slash pair is the given name; the slash-delimited segment (or
// the trailing segment when the closing slash is missing) is the family name.
// A value without slashes is all given name.
func ParseName(value string) (given, family string) {
	m := namePattern.FindStringSubmatch(value)
	if m == nil {
		return value, ""
	}
	return strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
}

// FormatName is the inverse of ParseName.
func FormatName(given, family string) string {
	if given == "" {
		return "/" + family + "/"
	}
	return given + " /" + family + "/"
}
