package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// SkipMarker in an expected file marks a line that is not compared.
const SkipMarker = "@SKIP@"

const maxReportedDiffs = 10

// dynamicPrefixes are header lines that change on every export.
var dynamicPrefixes = []string{"1 DATE ", "2 TIME ", "1 FILE "}

// IsDynamicLine reports whether a line carries export-time data (the header
// timestamp or file name) that round-trip comparisons ignore.
func IsDynamicLine(line string) bool {
	for _, p := range dynamicPrefixes {
		if strings.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

// NormalizeLines reads GEDCOM text, trims trailing whitespace, and drops
// dynamic header lines. When expected is true, lines containing SkipMarker
// are dropped as well.
func NormalizeLines(r io.Reader, expected bool) ([]string, error) {
	var lines []string
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), " \t\r")
		if IsDynamicLine(line) {
			continue
		}
		if expected && strings.Contains(line, SkipMarker) {
			continue
		}
		lines = append(lines, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// Diff is one mismatched line between an expected and an actual file.
type Diff struct {
	Line     int    `json:"line"`
	Expected string `json:"expected"`
	Actual   string `json:"actual"`
}

func (d Diff) String() string {
	return fmt.Sprintf("line %d: expected %q, got %q", d.Line, d.Expected, d.Actual)
}

// Compare normalizes both inputs and returns up to ten differing lines. An
// empty result means the files are equivalent. Missing lines are reported
// as "<missing>".
func Compare(expected, actual io.Reader) ([]Diff, error) {
	exp, err := NormalizeLines(expected, true)
	if err != nil {
		return nil, fmt.Errorf("reading expected: %w", err)
	}
	act, err := NormalizeLines(actual, false)
	if err != nil {
		return nil, fmt.Errorf("reading actual: %w", err)
	}

	var diffs []Diff
	n := max(len(exp), len(act))
	for i := 0; i < n && len(diffs) < maxReportedDiffs; i++ {
		e, a := "<missing>", "<missing>"
		if i < len(exp) {
			e = exp[i]
		}
		if i < len(act) {
			a = act[i]
		}
		if e != a {
			diffs = append(diffs, Diff{Line: i + 1, Expected: e, Actual: a})
		}
	}
	return diffs, nil
}

// CompareFiles is Compare over two paths.
func CompareFiles(expectedPath, actualPath string) ([]Diff, error) {
	ef, err := os.Open(expectedPath)
	if err != nil {
		return nil, err
	}
	defer ef.Close()

	af, err := os.Open(actualPath)
	if err != nil {
		return nil, err
	}
	defer af.Close()

	return Compare(ef, af)
}

// FormatDiffs renders diffs the way test failures and the compare command
// print them.
func FormatDiffs(diffs []Diff) string {
	var b strings.Builder
	for _, d := range diffs {
		fmt.Fprintf(&b, "Line %d:\n  Expected: %s\n  Actual:   %s\n", d.Line, d.Expected, d.Actual)
	}
	if len(diffs) >= maxReportedDiffs {
		b.WriteString("... (more differences)\n")
	}
	return b.String()
}
