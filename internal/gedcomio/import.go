// Package gedcomio moves genealogy data between GEDCOM files and the SQLite
// store.
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
	"github.com/ALT-F4-LLC/pedigree/internal/notes"
)

var (
	// ErrEmptySource means the GEDCOM file is missing or has no content.
	ErrEmptySource = errors.New("gedcom source is missing or empty")
	// ErrNoRecords means parsing found neither individuals nor families.
	ErrNoRecords = errors.New("no individuals or families found")
)

const (
	backupStamp    = "20060102150405"
	timestampStamp = "2006-01-02T15:04:05"
)

// ImportOptions tunes an import. The zero value backs up an existing database
// and uses the wall clock.
type ImportOptions struct {
	NoBackup bool
	Now      func() time.Time
}

func (o ImportOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// ImportResult summarizes a completed import.
type ImportResult struct {
	db.Counts
	BackupPath  string              `json:"backup_path,omitempty"`
	Unsupported []gedcom.Diagnostic `json:"-"`
}

// Import replaces the contents of the database at dbPath with the records of
// the GEDCOM file at gedcomPath. An existing database file is copied to a
// timestamped sibling first. The database is opened for the duration of the
// call and closed before returning.
func Import(ctx context.Context, gedcomPath, dbPath string, opts ImportOptions) (*ImportResult, error) {
	info, err := os.Stat(gedcomPath)
	if err != nil || info.IsDir() || info.Size() == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySource, gedcomPath)
	}

	now := opts.now()

	var backup string
	if !opts.NoBackup {
		if backup, err = BackupDatabase(dbPath, now); err != nil {
			return nil, err
		}
	}

	parsed, err := gedcom.ParseFile(gedcomPath)
	if err != nil {
		return nil, err
	}
	if len(parsed.Individuals) == 0 && len(parsed.Families) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoRecords, gedcomPath)
	}

	if dir := filepath.Dir(dbPath); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	conn, err := db.OpenReady(dbPath)
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	res, err := ImportInto(ctx, conn, parsed, now)
	if err != nil {
		return nil, err
	}
	res.BackupPath = backup
	return res, nil
}

// ImportInto replaces every genealogy row in conn with the parsed records in
// a single transaction. Nothing is committed if any record fails or ctx is
// cancelled.
func ImportInto(ctx context.Context, conn *sql.DB, parsed *gedcom.Result, now time.Time) (*ImportResult, error) {
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := db.ClearAllData(tx); err != nil {
		return nil, err
	}

	header := headerFromParse(parsed.Header)
	header.ImportedAt = now.Format(timestampStamp)
	if err := db.SaveHeader(tx, header); err != nil {
		return nil, err
	}

	res := &ImportResult{Unsupported: parsed.Unsupported}

	byGedcomID := make(map[string]*model.Individual, len(parsed.Individuals))
	byID := make(map[int]*model.Individual, len(parsed.Individuals))
	for _, p := range parsed.Individuals {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		ind := individualFromParse(p)
		id, err := db.InsertIndividual(tx, ind)
		if err != nil {
			return nil, err
		}
		byGedcomID[p.ID] = ind
		byID[id] = ind
		res.Individuals++

		ev, md, err := insertDetails(tx, &id, nil, p.Events, p.Media)
		if err != nil {
			return nil, fmt.Errorf("individual %s: %w", p.ID, err)
		}
		res.Events += ev
		res.Media += md
	}

	for _, p := range parsed.Families {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		fam := familyFromParse(p, byGedcomID)
		if fam.Notes == "" {
			fam.Notes = notes.ForFamily(fam, byID)
		}
		id, err := db.InsertFamily(tx, fam)
		if err != nil {
			return nil, err
		}
		res.Families++

		ev, md, err := insertDetails(tx, nil, &id, p.Events, p.Media)
		if err != nil {
			return nil, fmt.Errorf("family %s: %w", p.ID, err)
		}
		res.Events += ev
		res.Media += md
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("committing import: %w", err)
	}
	return res, nil
}

// BackupDatabase copies an existing database file to
// "<path minus extension>.sqlite.<YYYYMMDDHHMMSS>" and returns the copy's
// path. It returns "" without error when there is nothing to back up.
func BackupDatabase(dbPath string, now time.Time) (string, error) {
	src, err := os.Open(dbPath)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("opening database for backup: %w", err)
	}
	defer src.Close()

	base := strings.TrimSuffix(dbPath, filepath.Ext(dbPath))
	dest := base + ".sqlite." + now.Format(backupStamp)

	dst, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("copying backup: %w", err)
	}
	if err := dst.Close(); err != nil {
		return "", fmt.Errorf("closing backup: %w", err)
	}
	return dest, nil
}

func headerFromParse(h *gedcom.Header) *model.Header {
	return &model.Header{
		SourceSystemID:    h.SourceSystemID,
		SourceSystemName:  h.SourceSystemName,
		SourceVersion:     h.SourceVersion,
		SourceCorporation: h.SourceCorporation,
		Destination:       h.Destination,
		FileName:          h.FileName,
		CreationDate:      h.CreationDate,
		CreationTime:      h.CreationTime,
		GedcomVersion:     h.GedcomVersion,
		GedcomForm:        h.GedcomForm,
		Charset:           h.Charset,
		Language:          h.Language,
		Copyright:         h.Copyright,
		Note:              h.Note,
		SubmitterID:       h.SubmitterID,
		SubmitterName:     h.SubmitterName,
		SubmitterAddress:  h.SubmitterAddress,
		SubmitterCity:     h.SubmitterCity,
		SubmitterState:    h.SubmitterState,
		SubmitterPostal:   h.SubmitterPostal,
		SubmitterCountry:  h.SubmitterCountry,
		SubmitterPhone:    h.SubmitterPhone,
		SubmitterEmail:    h.SubmitterEmail,
		SubmitterFax:      h.SubmitterFax,
		SubmitterWWW:      h.SubmitterWWW,
	}
}

func individualFromParse(p *gedcom.Individual) *model.Individual {
	// A record without SEX stays NULL so export writes no SEX line.
	ind := &model.Individual{
		GedcomID:        p.ID,
		Sex:             model.Sex(p.Sex),
		BirthDate:       p.Birth.Date,
		BirthDateApprox: p.Birth.DateApprox,
		BirthPlace:      p.Birth.Place,
		DeathDate:       p.Death.Date,
		DeathDateApprox: p.Death.DateApprox,
		DeathPlace:      p.Death.Place,
		Notes:           p.Notes,
	}
	for i, n := range p.Names {
		order := i
		ind.Names = append(ind.Names, model.Name{
			Type:   n.Type,
			Given:  n.Given,
			Family: n.Family,
			Order:  &order,
		})
	}
	return ind
}

// familyFromParse resolves HUSB, WIFE and CHIL references. References to
// individuals that were not imported are dropped.
func familyFromParse(p *gedcom.Family, people map[string]*model.Individual) *model.Family {
	fam := &model.Family{
		GedcomID:           p.ID,
		MarriageDate:       p.Marriage.Date,
		MarriageDateApprox: p.Marriage.DateApprox,
		MarriagePlace:      p.Marriage.Place,
		DivorceDate:        p.Divorce.Date,
		DivorceDateApprox:  p.Divorce.DateApprox,
		FamilyType:         model.FamilyTypeMarriage,
		Notes:              p.Notes,
	}
	if ind, ok := people[p.Husband]; ok {
		fam.Members = append(fam.Members, model.Member{IndividualID: ind.ID, Role: model.RoleHusband})
	}
	if ind, ok := people[p.Wife]; ok {
		fam.Members = append(fam.Members, model.Member{IndividualID: ind.ID, Role: model.RoleWife})
	}
	for _, c := range p.Children {
		if ind, ok := people[c]; ok {
			fam.Children = append(fam.Children, model.Child{ChildID: ind.ID})
		}
	}
	return fam
}

// insertDetails writes events and media for one owner. Media without a file
// path is skipped.
func insertDetails(tx *sql.Tx, individualID, familyID *int, events []*gedcom.Event, media []*gedcom.Media) (int, int, error) {
	var ne, nm int
	for _, e := range events {
		_, err := db.InsertEvent(tx, &model.Event{
			IndividualID: individualID,
			FamilyID:     familyID,
			TypeCode:     e.Type,
			Date:         e.Date,
			DateApprox:   e.DateApprox,
			Place:        e.Place,
			Description:  e.Description,
		})
		if err != nil {
			return 0, 0, err
		}
		ne++
	}
	for _, m := range media {
		if m.File == "" {
			continue
		}
		_, err := db.InsertMedia(tx, &model.Media{
			IndividualID: individualID,
			FamilyID:     familyID,
			FilePath:     m.File,
			TypeCode:     m.Form,
			Description:  m.Title,
		})
		if err != nil {
			return 0, 0, err
		}
		nm++
	}
	return ne, nm, nil
}
