package gedcom

import (
	"bufio"
	"io"
	"strconv"
	"strings"
)

// Encoder writes level-tagged GEDCOM lines. Write errors are sticky: after
// the first failure every call is a no-op and Flush reports the error.
type Encoder struct {
	w   *bufio.Writer
	err error
}

// NewEncoder returns an Encoder writing to w.
func NewEncoder(w io.Writer) *Encoder {
	return &Encoder{w: bufio.NewWriter(w)}
}

// Line writes "LEVEL TAG VALUE", omitting the value when it is empty.
func (e *Encoder) Line(level int, tag, value string) {
	if e.err != nil {
		return
	}
	var b strings.Builder
	b.WriteString(strconv.Itoa(level))
	b.WriteByte(' ')
	b.WriteString(tag)
	if value != "" {
		b.WriteByte(' ')
		b.WriteString(value)
	}
	b.WriteByte('\n')
	_, e.err = e.w.WriteString(b.String())
}

// Optional writes the line only when value is non-empty.
func (e *Encoder) Optional(level int, tag, value string) {
	if value != "" {
		e.Line(level, tag, value)
	}
}

// Record writes a level-0 record line "0 @ID@ TYPE".
func (e *Encoder) Record(id, recordType string) {
	e.Line(0, Xref(id), recordType)
}

// Pointer writes "LEVEL TAG @ID@".
func (e *Encoder) Pointer(level int, tag, id string) {
	e.Line(level, tag, Xref(id))
}

// Note writes a possibly multi-line text under tag, continuing each embedded
// newline with a CONT line one level deeper.
func (e *Encoder) Note(level int, tag, text string) {
	if text == "" {
		return
	}
	lines := strings.Split(text, "\n")
	e.Line(level, tag, lines[0])
	for _, l := range lines[1:] {
		e.Line(level+1, "CONT", l)
	}
}

// Fact writes a date/place block under tag when any of its fields is set.
func (e *Encoder) Fact(tag string, f Fact) {
	if f.IsZero() {
		return
	}
	e.Line(1, tag, "")
	e.Optional(2, "DATE", Resolve(f.Date, f.DateApprox))
	e.Optional(2, "PLAC", f.Place)
}

// Flush writes buffered data and returns the first error encountered.
func (e *Encoder) Flush() error {
	if e.err != nil {
		return e.err
	}
	return e.w.Flush()
}

// Xref wraps an ID as "@ID@".
func Xref(id string) string {
	return "@" + id + "@"
}
