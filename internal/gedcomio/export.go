package gedcomio

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcom"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// ErrNoDatabase means the database file to export does not exist.
var ErrNoDatabase = errors.New("database not found")

// Header values written when the stored header leaves them empty.
const (
	DefaultSourceID      = "GEDCOM-Export-System"
	DefaultSourceName    = "Genealogy Database GEDCOM Export"
	DefaultSubmitterID   = "U00001"
	DefaultSubmitterName = "Genealogy Database"
)

// ExportOptions tunes an export.
type ExportOptions struct {
	// Now supplies the HEAD DATE/TIME. Defaults to the wall clock.
	Now func() time.Time
	// BaseDir is the directory FILE is written relative to. Paths outside it
	// are written as their base name.
	BaseDir string
	// FileName is the output path recorded in HEAD FILE. Export sets it.
	FileName string
}

func (o ExportOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ExportResult summarizes a completed export.
type ExportResult struct {
	Path        string `json:"path,omitempty"`
	Individuals int    `json:"individuals"`
	Families    int    `json:"families"`
}

// Export writes the database at dbPath to outputPath as GEDCOM 5.5.1. The
// database is opened for the duration of the call. A failed export may leave
// a partial output file behind.
func Export(ctx context.Context, dbPath, outputPath string, opts ExportOptions) (*ExportResult, error) {
	if _, err := os.Stat(dbPath); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabase, dbPath)
	}

	conn, err := db.OpenReady(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		return nil, fmt.Errorf("creating output file: %w", err)
	}

	opts.FileName = outputPath
	res, err := ExportTo(ctx, conn, out, opts)
	if cerr := out.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("closing output file: %w", cerr)
	}
	if err != nil {
		return nil, err
	}
	res.Path = outputPath
	return res, nil
}

// ExportTo writes the full contents of conn to w. Records are ordered by
// gedcom_id so the same database state always yields the same text, apart
// from the HEAD DATE, TIME and FILE lines.
func ExportTo(ctx context.Context, conn *sql.DB, w io.Writer, opts ExportOptions) (*ExportResult, error) {
	header, err := db.GetHeader(conn)
	if errors.Is(err, db.ErrNotFound) {
		header = &model.Header{}
	} else if err != nil {
		return nil, err
	}

	families, err := db.ListFamilies(conn, db.ListOptions{})
	if err != nil {
		return nil, err
	}
	if err := db.HydrateFamilyDetails(conn, families); err != nil {
		return nil, err
	}

	people, err := db.ListIndividuals(conn, db.ListOptions{})
	if err != nil {
		return nil, err
	}
	if err := db.HydrateIndividualDetails(conn, people); err != nil {
		return nil, err
	}

	gedcomIDs := make(map[int]string, len(people))
	for _, p := range people {
		gedcomIDs[p.ID] = p.GedcomID
	}

	// Reverse links, in family order then link order.
	famc := make(map[int][]string)
	fams := make(map[int][]string)
	for _, f := range families {
		for _, c := range f.Children {
			famc[c.ChildID] = append(famc[c.ChildID], f.GedcomID)
		}
		for _, m := range f.Members {
			fams[m.IndividualID] = append(fams[m.IndividualID], f.GedcomID)
		}
	}

	enc := gedcom.NewEncoder(w)
	writeHeader(enc, header, opts)

	for _, p := range people {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeIndividual(enc, p, famc[p.ID], fams[p.ID])
	}
	for _, f := range families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		writeFamily(enc, f, gedcomIDs)
	}
	enc.Line(0, gedcom.RecordTrlr, "")

	if err := enc.Flush(); err != nil {
		return nil, fmt.Errorf("writing gedcom: %w", err)
	}
	return &ExportResult{Individuals: len(people), Families: len(families)}, nil
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func writeHeader(enc *gedcom.Encoder, h *model.Header, opts ExportOptions) {
	now := opts.now()

	enc.Line(0, gedcom.RecordHead, "")
	enc.Line(1, "SOUR", orDefault(h.SourceSystemID, DefaultSourceID))
	enc.Line(2, "NAME", orDefault(h.SourceSystemName, DefaultSourceName))
	enc.Line(2, "VERS", orDefault(h.SourceVersion, gedcom.DefaultGedcomVersion))
	enc.Optional(2, "CORP", h.SourceCorporation)
	enc.Optional(1, "DEST", h.Destination)
	enc.Line(1, "DATE", strings.ToUpper(now.Format("02 Jan 2006")))
	enc.Line(2, "TIME", now.Format("15:04:05"))
	enc.Line(1, "FILE", fileLabel(opts.FileName, opts.BaseDir))
	enc.Line(1, "GEDC", "")
	enc.Line(2, "VERS", orDefault(h.GedcomVersion, gedcom.DefaultGedcomVersion))
	enc.Line(2, "FORM", orDefault(h.GedcomForm, gedcom.DefaultGedcomForm))
	enc.Line(1, "CHAR", orDefault(h.Charset, gedcom.DefaultCharset))
	enc.Optional(1, "LANG", h.Language)
	enc.Optional(1, "COPR", h.Copyright)
	enc.Note(1, "NOTE", h.Note)

	subm := orDefault(h.SubmitterID, DefaultSubmitterID)
	enc.Pointer(1, "SUBM", subm)

	enc.Record(subm, gedcom.RecordSubm)
	enc.Line(1, "NAME", orDefault(h.SubmitterName, DefaultSubmitterName))
	if h.SubmitterAddress != "" {
		enc.Line(1, "ADDR", h.SubmitterAddress)
		enc.Optional(2, "CITY", h.SubmitterCity)
		enc.Optional(2, "STAE", h.SubmitterState)
		enc.Optional(2, "POST", h.SubmitterPostal)
		enc.Optional(2, "CTRY", h.SubmitterCountry)
	}
	enc.Optional(1, "PHON", h.SubmitterPhone)
	enc.Optional(1, "EMAIL", h.SubmitterEmail)
	enc.Optional(1, "FAX", h.SubmitterFax)
	enc.Optional(1, "WWW", h.SubmitterWWW)
}

// fileLabel returns path relative to base when path lies inside base, else
// its base name.
func fileLabel(path, base string) string {
	if path == "" {
		return ""
	}
	if base != "" {
		absPath, err1 := filepath.Abs(path)
		absBase, err2 := filepath.Abs(base)
		if err1 == nil && err2 == nil {
			rel, err := filepath.Rel(absBase, absPath)
			if err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
				return filepath.ToSlash(rel)
			}
		}
	}
	return filepath.Base(path)
}

func writeIndividual(enc *gedcom.Encoder, p *model.Individual, famc, fams []string) {
	enc.Record(p.GedcomID, gedcom.RecordIndi)

	// Names are already sorted by name_order with unset orders last.
	for _, n := range p.Names {
		enc.Line(1, "NAME", gedcom.FormatName(n.Given, n.Family))
		enc.Optional(2, "TYPE", n.Type)
	}
	enc.Optional(1, "SEX", string(p.Sex))
	enc.Fact("BIRT", gedcom.Fact{Date: p.BirthDate, DateApprox: p.BirthDateApprox, Place: p.BirthPlace})

	for _, id := range famc {
		enc.Pointer(1, "FAMC", id)
	}
	for _, id := range fams {
		enc.Pointer(1, "FAMS", id)
	}

	for _, e := range p.Events {
		enc.Line(1, e.TypeCode, e.Description)
		enc.Optional(2, "DATE", gedcom.Resolve(e.Date, e.DateApprox))
		enc.Optional(2, "PLAC", e.Place)
	}

	enc.Fact("DEAT", gedcom.Fact{Date: p.DeathDate, DateApprox: p.DeathDateApprox, Place: p.DeathPlace})
	writeMedia(enc, p.Media)
	enc.Note(1, "NOTE", p.Notes)
}

func writeFamily(enc *gedcom.Encoder, f *model.Family, gedcomIDs map[int]string) {
	enc.Record(f.GedcomID, gedcom.RecordFam)

	for _, spouse := range []struct {
		role model.Role
		tag  string
	}{{model.RoleHusband, "HUSB"}, {model.RoleWife, "WIFE"}} {
		if id, ok := f.MemberWithRole(spouse.role); ok {
			if gid, ok := gedcomIDs[id]; ok {
				enc.Pointer(1, spouse.tag, gid)
			}
		}
	}

	enc.Fact("MARR", gedcom.Fact{Date: f.MarriageDate, DateApprox: f.MarriageDateApprox, Place: f.MarriagePlace})

	for _, c := range f.Children {
		if gid, ok := gedcomIDs[c.ChildID]; ok {
			enc.Pointer(1, "CHIL", gid)
		}
	}

	// The schema has no divorce place.
	if f.DivorceDate != "" || f.DivorceDateApprox != "" {
		enc.Line(1, "DIV", "")
		enc.Optional(2, "DATE", gedcom.Resolve(f.DivorceDate, f.DivorceDateApprox))
	}

	for _, e := range f.Events {
		enc.Line(1, e.TypeCode, "")
		enc.Optional(2, "DATE", gedcom.Resolve(e.Date, e.DateApprox))
		enc.Optional(2, "PLAC", e.Place)
		enc.Optional(2, "TYPE", e.Description)
	}

	writeMedia(enc, f.Media)
	enc.Note(1, "NOTE", f.Notes)
}

func writeMedia(enc *gedcom.Encoder, media []*model.Media) {
	for _, m := range media {
		enc.Line(1, "OBJE", "")
		enc.Optional(2, "FILE", m.FilePath)
		enc.Optional(2, "FORM", m.TypeCode)
		enc.Optional(2, "TITL", m.Description)
	}
}
