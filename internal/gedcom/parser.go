package gedcom

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

const maxLineBytes = 1 << 20

// frame is an open structure on the parser stack. A frame stays open until a
// line arrives at a level less than or equal to the level it was opened at.
type frame interface {
	// handle processes a line nested under the frame and may return a child
	// frame opened by that line.
	handle(p *parser, ln Line) frame
}

type stackEntry struct {
	level int
	frame frame
}

type parser struct {
	result *Result
	stack  []stackEntry
}

// ParseFile parses the GEDCOM file at path.
func ParseFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening gedcom file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse reads a GEDCOM stream into a Result. Unsupported tags inside INDI and
// FAM records are collected as diagnostics; unknown level-0 records are
// skipped along with everything nested under them. The only error is
// malformed input (a line whose level is not a number) or a read failure.
func Parse(r io.Reader) (*Result, error) {
	p := &parser{result: newResult()}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	number := 0
	for sc.Scan() {
		number++
		raw := sc.Text()
		if number == 1 {
			raw = strings.TrimPrefix(raw, "\ufeff")
		}

		ln, ok, err := splitLine(raw, number)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		p.feed(ln)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading gedcom: %w", err)
	}

	return p.result, nil
}

func (p *parser) feed(ln Line) {
	if ln.Level == 0 {
		p.stack = p.stack[:0]
		if f := p.openRecord(ln); f != nil {
			p.stack = append(p.stack, stackEntry{level: 0, frame: f})
		}
		return
	}

	for len(p.stack) > 0 && p.stack[len(p.stack)-1].level >= ln.Level {
		p.stack = p.stack[:len(p.stack)-1]
	}
	if len(p.stack) == 0 {
		// Inside a skipped record.
		return
	}

	top := p.stack[len(p.stack)-1].frame
	if child := top.handle(p, ln); child != nil {
		p.stack = append(p.stack, stackEntry{level: ln.Level, frame: child})
	}
}

// openRecord starts a level-0 record and returns its frame, or nil for
// records that are not imported.
func (p *parser) openRecord(ln Line) frame {
	id, hasID := parseXref(ln.Tag)
	if !hasID {
		if ln.Tag == RecordHead {
			return &headFrame{h: p.result.Header}
		}
		return nil
	}

	switch ln.Value {
	case RecordIndi:
		ind := &Individual{ID: id}
		p.result.addIndividual(ind)
		return &indiFrame{ind: ind}
	case RecordFam:
		fam := &Family{ID: id}
		p.result.addFamily(fam)
		return &famFrame{fam: fam}
	case RecordSubm:
		p.result.Header.SubmitterID = id
		return &submFrame{h: p.result.Header}
	}
	return nil
}

func (p *parser) unsupported(ln Line) {
	p.result.Unsupported = append(p.result.Unsupported, Diagnostic{Line: ln.Number, Text: ln.Raw})
}

// checkL2 reports a level-2 tag inside an INDI or FAM record that is outside
// the supported set.
func (p *parser) checkL2(ln Line) {
	if ln.Level == 2 && !supportedL2Tags[ln.Tag] {
		p.unsupported(ln)
	}
}

// skipFrame swallows everything nested under it.
type skipFrame struct{}

func (skipFrame) handle(*parser, Line) frame { return nil }

// --- HEAD and SUBM ---

type headFrame struct{ h *Header }

func (f *headFrame) handle(p *parser, ln Line) frame {
	switch ln.Level {
	case 1:
		switch ln.Tag {
		case "SOUR":
			f.h.SourceSystemID = ln.Value
			return &headSourFrame{h: f.h}
		case "GEDC":
			return &headGedcFrame{h: f.h}
		case "DATE":
			f.h.CreationDate = ln.Value
		case "FILE":
			f.h.FileName = ln.Value
		case "CHAR":
			f.h.Charset = ln.Value
		case "LANG":
			f.h.Language = ln.Value
		case "COPR":
			f.h.Copyright = ln.Value
		case "DEST":
			f.h.Destination = ln.Value
		case "NOTE":
			f.h.Note = ln.Value
			return &noteFrame{text: &f.h.Note, quiet: true}
		case "SUBM":
			if id, ok := parseXref(ln.Value); ok {
				f.h.SubmitterID = id
			}
		}
	case 2:
		if ln.Tag == "TIME" {
			f.h.CreationTime = ln.Value
		}
	}
	return nil
}

type headSourFrame struct{ h *Header }

func (f *headSourFrame) handle(_ *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "NAME":
		f.h.SourceSystemName = ln.Value
	case "VERS":
		f.h.SourceVersion = ln.Value
	case "CORP":
		f.h.SourceCorporation = ln.Value
	}
	return nil
}

type headGedcFrame struct{ h *Header }

func (f *headGedcFrame) handle(_ *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "VERS":
		f.h.GedcomVersion = ln.Value
	case "FORM":
		f.h.GedcomForm = ln.Value
	}
	return nil
}

type submFrame struct{ h *Header }

func (f *submFrame) handle(_ *parser, ln Line) frame {
	if ln.Level != 1 {
		return nil
	}
	switch ln.Tag {
	case "NAME":
		f.h.SubmitterName = ln.Value
	case "ADDR":
		f.h.SubmitterAddress = ln.Value
		return &submAddrFrame{h: f.h}
	case "PHON":
		f.h.SubmitterPhone = ln.Value
	case "EMAIL":
		f.h.SubmitterEmail = ln.Value
	case "FAX":
		f.h.SubmitterFax = ln.Value
	case "WWW":
		f.h.SubmitterWWW = ln.Value
	}
	return nil
}

type submAddrFrame struct{ h *Header }

func (f *submAddrFrame) handle(_ *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "CITY":
		f.h.SubmitterCity = ln.Value
	case "STAE":
		f.h.SubmitterState = ln.Value
	case "POST":
		f.h.SubmitterPostal = ln.Value
	case "CTRY":
		f.h.SubmitterCountry = ln.Value
	}
	return nil
}

// --- INDI ---

type indiFrame struct{ ind *Individual }

func (f *indiFrame) handle(p *parser, ln Line) frame {
	if ln.Level != 1 {
		// A TYPE with no open sub-structure annotates the latest name.
		if ln.Level == 2 && ln.Tag == "TYPE" && len(f.ind.Names) > 0 {
			f.ind.Names[len(f.ind.Names)-1].Type = ln.Value
			return nil
		}
		p.checkL2(ln)
		return nil
	}

	switch {
	case ln.Tag == "NAME":
		given, family := ParseName(ln.Value)
		f.ind.Names = append(f.ind.Names, Name{Given: given, Family: family})
		return &nameFrame{name: &f.ind.Names[len(f.ind.Names)-1]}
	case ln.Tag == "SEX":
		f.ind.Sex = ln.Value
	case ln.Tag == "BIRT":
		f.ind.Birth = Fact{}
		return &factFrame{fact: &f.ind.Birth}
	case ln.Tag == "DEAT":
		f.ind.Death = Fact{}
		return &factFrame{fact: &f.ind.Death}
	case IndiEventTags[ln.Tag]:
		ev := &Event{Type: ln.Tag, Description: ln.Value}
		f.ind.Events = append(f.ind.Events, ev)
		return &eventFrame{ev: ev}
	case ln.Tag == "OBJE":
		m := &Media{Title: ln.Value}
		f.ind.Media = append(f.ind.Media, m)
		return &mediaFrame{m: m}
	case ln.Tag == "NOTE":
		f.ind.Notes = ln.Value
		return &noteFrame{text: &f.ind.Notes}
	case ln.Tag == "FAMC":
		f.ind.FAMC = append(f.ind.FAMC, ln.Value)
	case ln.Tag == "FAMS":
		f.ind.FAMS = append(f.ind.FAMS, ln.Value)
	case !supportedIndiTags[ln.Tag]:
		p.unsupported(ln)
		return skipFrame{}
	}
	return nil
}

// nameFrame handles the sub-structure of one NAME. The name pointer stays
// valid because nothing is appended to Names while the frame is open.
type nameFrame struct{ name *Name }

func (f *nameFrame) handle(p *parser, ln Line) frame {
	if ln.Level == 2 && ln.Tag == "TYPE" {
		f.name.Type = ln.Value
		return nil
	}
	p.checkL2(ln)
	return nil
}

// --- FAM ---

type famFrame struct{ fam *Family }

func (f *famFrame) handle(p *parser, ln Line) frame {
	if ln.Level != 1 {
		p.checkL2(ln)
		return nil
	}

	switch {
	case ln.Tag == "HUSB":
		if id, ok := parseXref(ln.Value); ok {
			f.fam.Husband = id
		}
	case ln.Tag == "WIFE":
		if id, ok := parseXref(ln.Value); ok {
			f.fam.Wife = id
		}
	case ln.Tag == "CHIL":
		if id, ok := parseXref(ln.Value); ok {
			f.fam.Children = append(f.fam.Children, id)
		}
	case ln.Tag == "MARR":
		f.fam.Marriage = Fact{}
		return &factFrame{fact: &f.fam.Marriage}
	case ln.Tag == "DIV":
		f.fam.Divorce = Fact{}
		return &factFrame{fact: &f.fam.Divorce}
	case FamEventTags[ln.Tag]:
		ev := &Event{Type: ln.Tag, Description: ln.Value}
		f.fam.Events = append(f.fam.Events, ev)
		return &eventFrame{ev: ev}
	case ln.Tag == "OBJE":
		m := &Media{Title: ln.Value}
		f.fam.Media = append(f.fam.Media, m)
		return &mediaFrame{m: m}
	case ln.Tag == "NOTE":
		f.fam.Notes = ln.Value
		return &noteFrame{text: &f.fam.Notes}
	case !supportedFamTags[ln.Tag]:
		p.unsupported(ln)
		return skipFrame{}
	}
	return nil
}

// --- shared sub-structures ---

// factFrame fills one of the dedicated birth/death/marriage/divorce slots.
type factFrame struct{ fact *Fact }

func (f *factFrame) handle(p *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "DATE":
		f.fact.SetDate(ln.Value)
	case "PLAC":
		f.fact.Place = ln.Value
	case "TYPE":
	default:
		p.checkL2(ln)
	}
	return nil
}

type eventFrame struct{ ev *Event }

func (f *eventFrame) handle(p *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "DATE":
		f.ev.SetDate(ln.Value)
	case "PLAC":
		f.ev.Place = ln.Value
	case "TYPE":
		f.ev.Description = ln.Value
	default:
		p.checkL2(ln)
	}
	return nil
}

type mediaFrame struct{ m *Media }

func (f *mediaFrame) handle(p *parser, ln Line) frame {
	if ln.Level != 2 {
		return nil
	}
	switch ln.Tag {
	case "FILE":
		f.m.File = ln.Value
	case "FORM":
		f.m.Form = ln.Value
	case "TITL":
		f.m.Title = ln.Value
	default:
		p.checkL2(ln)
	}
	return nil
}

// noteFrame joins CONT (new line) and CONC (same line) continuations.
// quiet suppresses diagnostics for notes outside INDI and FAM records.
type noteFrame struct {
	text  *string
	quiet bool
}

func (f *noteFrame) handle(p *parser, ln Line) frame {
	switch ln.Tag {
	case "CONT":
		*f.text += "\n" + ln.Value
	case "CONC":
		*f.text += ln.Value
	default:
		if !f.quiet {
			p.checkL2(ln)
		}
	}
	return nil
}
