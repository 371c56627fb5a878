package db

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const familyColumns = `id, gedcom_id, marriage_date, marriage_date_approx, marriage_place,
	divorce_date, divorce_date_approx, family_type, notes`

var familyUpdates = updateSpec{
	table:  "main_families",
	entity: model.EntityFamily,
	fields: map[string]bool{
		"gedcom_id":            true,
		"marriage_date":        true,
		"marriage_date_approx": true,
		"marriage_place":       true,
		"divorce_date":         true,
		"divorce_date_approx":  true,
		"family_type":          true,
		"notes":                true,
	},
	datePairs: map[string]string{
		"marriage_date": "marriage_date_approx",
		"divorce_date":  "divorce_date_approx",
	},
}

func validateFamily(fam *model.Family) error {
	if err := validateDatePair("marriage_date", fam.MarriageDate, fam.MarriageDateApprox); err != nil {
		return err
	}
	if err := validateDatePair("divorce_date", fam.DivorceDate, fam.DivorceDateApprox); err != nil {
		return err
	}
	for _, m := range fam.Members {
		if err := model.ValidateRole(m.Role); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}
	return nil
}

// CreateFamily inserts a family with its members and children in one
// transaction. ID assignment follows CreateIndividual. Member and child
// references must point at existing individuals.
func CreateFamily(db *sql.DB, fam *model.Family) (int, error) {
	if err := validateFamily(fam); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	gid, err := assignGedcomID(tx, "main_families", model.FamilyPrefix, fam.GedcomID)
	if err != nil {
		return 0, err
	}
	fam.GedcomID = gid

	if err := requireIndividuals(tx, fam.Members, fam.Children); err != nil {
		return 0, err
	}

	id, err := InsertFamily(tx, fam)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// InsertFamily writes a family row with its member and child links, in
// slice order, without ID generation or duplicate checks. An empty
// FamilyType is stored as "marriage".
func InsertFamily(q querier, fam *model.Family) (int, error) {
	if fam.FamilyType == "" {
		fam.FamilyType = model.FamilyTypeMarriage
	}

	res, err := q.Exec(
		`INSERT INTO main_families (gedcom_id, marriage_date, marriage_date_approx, marriage_place,
			divorce_date, divorce_date_approx, family_type, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		fam.GedcomID,
		nullIfEmpty(fam.MarriageDate),
		nullIfEmpty(fam.MarriageDateApprox),
		nullIfEmpty(fam.MarriagePlace),
		nullIfEmpty(fam.DivorceDate),
		nullIfEmpty(fam.DivorceDateApprox),
		fam.FamilyType,
		nullIfEmpty(fam.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting family %s: %w", fam.GedcomID, err)
	}
	id, err := lastID(res)
	if err != nil {
		return 0, err
	}
	fam.ID = id

	if err := insertLinks(q, id, fam.Members, fam.Children); err != nil {
		return 0, err
	}
	return id, nil
}

func insertLinks(q querier, familyID int, members []model.Member, children []model.Child) error {
	for i := range members {
		members[i].FamilyID = familyID
		if _, err := q.Exec(
			`INSERT INTO main_family_members (family_id, individual_id, role) VALUES (?, ?, ?)`,
			familyID, members[i].IndividualID, nullIfEmpty(string(members[i].Role)),
		); err != nil {
			return fmt.Errorf("inserting family member: %w", err)
		}
	}
	for i := range children {
		children[i].FamilyID = familyID
		if _, err := q.Exec(
			`INSERT INTO main_family_children (family_id, child_id) VALUES (?, ?)`,
			familyID, children[i].ChildID,
		); err != nil {
			return fmt.Errorf("inserting family child: %w", err)
		}
	}
	return nil
}

func requireIndividuals(q querier, members []model.Member, children []model.Child) error {
	for _, m := range members {
		if err := requireRow(q, "main_individuals", m.IndividualID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: member individual %d does not exist", ErrInvalid, m.IndividualID)
			}
			return err
		}
	}
	for _, c := range children {
		if err := requireRow(q, "main_individuals", c.ChildID); err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("%w: child individual %d does not exist", ErrInvalid, c.ChildID)
			}
			return err
		}
	}
	return nil
}

// GetFamily retrieves a family with members and children by internal ID.
func GetFamily(db querier, id int) (*model.Family, error) {
	row := db.QueryRow(`SELECT `+familyColumns+` FROM main_families WHERE id = ?`, id)
	return loadFamily(db, row)
}

// GetFamilyByGedcomID retrieves a family with members and children by gedcom_id.
func GetFamilyByGedcomID(db querier, gedcomID string) (*model.Family, error) {
	row := db.QueryRow(`SELECT `+familyColumns+` FROM main_families WHERE gedcom_id = ?`, gedcomID)
	return loadFamily(db, row)
}

func loadFamily(db querier, row *sql.Row) (*model.Family, error) {
	fam, err := scanFamilyFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning family: %w", err)
	}
	if err := HydrateFamilyLinks(db, []*model.Family{fam}); err != nil {
		return nil, err
	}
	return fam, nil
}

// ListFamilies returns families with members and children, sorted by gedcom_id.
func ListFamilies(db querier, opts ListOptions) ([]*model.Family, error) {
	return queryFamilies(db, `SELECT `+familyColumns+` FROM main_families ORDER BY gedcom_id`+opts.clause())
}

// FamiliesOf returns every family the individual belongs to as a member or
// a child, sorted by gedcom_id.
func FamiliesOf(db querier, individualID int) ([]*model.Family, error) {
	return queryFamilies(db,
		`SELECT `+familyColumns+` FROM main_families
		 WHERE id IN (SELECT family_id FROM main_family_members WHERE individual_id = ?)
		    OR id IN (SELECT family_id FROM main_family_children WHERE child_id = ?)
		 ORDER BY gedcom_id`,
		individualID, individualID,
	)
}

func queryFamilies(db querier, query string, args ...any) ([]*model.Family, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying families: %w", err)
	}
	defer rows.Close()

	var out []*model.Family
	for rows.Next() {
		fam, err := scanFamilyFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning family row: %w", err)
		}
		out = append(out, fam)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating families: %w", err)
	}

	if err := HydrateFamilyLinks(db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// HydrateFamilyLinks bulk-loads members and children for a set of families,
// each in insertion order.
func HydrateFamilyLinks(db querier, fams []*model.Family) error {
	if len(fams) == 0 {
		return nil
	}

	byID := make(map[int]*model.Family, len(fams))
	ids := make([]any, len(fams))
	for i, f := range fams {
		ids[i] = f.ID
		byID[f.ID] = f
		f.Members = []model.Member{}
		f.Children = []model.Child{}
	}
	for _, chunk := range chunkIDs(ids) {
		if err := loadMembers(db, chunk, byID); err != nil {
			return err
		}
		if err := loadChildren(db, chunk, byID); err != nil {
			return err
		}
	}
	return nil
}

func loadMembers(db querier, ids []any, byID map[int]*model.Family) error {
	rows, err := db.Query(fmt.Sprintf(
		`SELECT family_id, individual_id, role FROM main_family_members
		 WHERE family_id IN (%s) ORDER BY id`, makePlaceholders(len(ids))), ids...)
	if err != nil {
		return fmt.Errorf("querying family members: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m model.Member
		var role sql.NullString
		if err := rows.Scan(&m.FamilyID, &m.IndividualID, &role); err != nil {
			return fmt.Errorf("scanning family member: %w", err)
		}
		m.Role = model.Role(role.String)
		if f, ok := byID[m.FamilyID]; ok {
			f.Members = append(f.Members, m)
		}
	}
	return rows.Err()
}

func loadChildren(db querier, ids []any, byID map[int]*model.Family) error {
	rows, err := db.Query(fmt.Sprintf(
		`SELECT family_id, child_id FROM main_family_children
		 WHERE family_id IN (%s) ORDER BY id`, makePlaceholders(len(ids))), ids...)
	if err != nil {
		return fmt.Errorf("querying family children: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var c model.Child
		if err := rows.Scan(&c.FamilyID, &c.ChildID); err != nil {
			return fmt.Errorf("scanning family child: %w", err)
		}
		if f, ok := byID[c.FamilyID]; ok {
			f.Children = append(f.Children, c)
		}
	}
	return rows.Err()
}

// UpdateFamily applies a partial update like UpdateIndividual. A non-nil
// members or children slice replaces the stored links.
func UpdateFamily(db *sql.DB, id int, updates map[string]any, members []model.Member, children []model.Child) error {
	for _, m := range members {
		if err := model.ValidateRole(m.Role); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireRow(tx, "main_families", id); err != nil {
		return err
	}

	if gid, ok := updates["gedcom_id"].(string); ok {
		if err := checkGedcomIDChange(tx, "main_families", gid, id); err != nil {
			return err
		}
	}
	if ft, ok := updates["family_type"]; ok && (ft == nil || ft == "") {
		updates["family_type"] = model.FamilyTypeMarriage
	}

	if err := applyUpdate(tx, familyUpdates, id, updates); err != nil {
		return err
	}

	if err := requireIndividuals(tx, members, children); err != nil {
		return err
	}
	if members != nil {
		if _, err := tx.Exec(`DELETE FROM main_family_members WHERE family_id = ?`, id); err != nil {
			return fmt.Errorf("clearing members: %w", err)
		}
		if err := insertLinks(tx, id, members, nil); err != nil {
			return err
		}
		if err := RecordChange(tx, model.EntityFamily, id, "members", "", fmt.Sprintf("%d members", len(members))); err != nil {
			return err
		}
	}
	if children != nil {
		if _, err := tx.Exec(`DELETE FROM main_family_children WHERE family_id = ?`, id); err != nil {
			return fmt.Errorf("clearing children: %w", err)
		}
		if err := insertLinks(tx, id, nil, children); err != nil {
			return err
		}
		if err := RecordChange(tx, model.EntityFamily, id, "children", "", fmt.Sprintf("%d children", len(children))); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteFamily removes a family; links, events and media cascade.
func DeleteFamily(db *sql.DB, id int) error {
	res, err := db.Exec("DELETE FROM main_families WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting family: %w", err)
	}
	return checkAffected(res)
}

// scanFamilyFrom scans a single family from any scanner (*sql.Row or *sql.Rows).
func scanFamilyFrom(s scanner) (*model.Family, error) {
	var f model.Family
	var marrDate, marrApprox, marrPlace, divDate, divApprox, famType, notes sql.NullString

	err := s.Scan(
		&f.ID, &f.GedcomID,
		&marrDate, &marrApprox, &marrPlace,
		&divDate, &divApprox,
		&famType, &notes,
	)
	if err != nil {
		return nil, err
	}

	f.MarriageDate = marrDate.String
	f.MarriageDateApprox = marrApprox.String
	f.MarriagePlace = marrPlace.String
	f.DivorceDate = divDate.String
	f.DivorceDateApprox = divApprox.String
	f.FamilyType = famType.String
	f.Notes = notes.String
	return &f, nil
}
