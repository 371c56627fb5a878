package db

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

const individualColumns = `id, gedcom_id, sex_code, birth_date, birth_date_approx, birth_place,
	death_date, death_date_approx, death_place, notes`

var individualUpdates = updateSpec{
	table:  "main_individuals",
	entity: model.EntityIndividual,
	fields: map[string]bool{
		"gedcom_id":         true,
		"sex_code":          true,
		"birth_date":        true,
		"birth_date_approx": true,
		"birth_place":       true,
		"death_date":        true,
		"death_date_approx": true,
		"death_place":       true,
		"notes":             true,
	},
	datePairs: map[string]string{
		"birth_date": "birth_date_approx",
		"death_date": "death_date_approx",
	},
}

func validateIndividual(ind *model.Individual) error {
	if err := model.ValidateSex(ind.Sex); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := validateDatePair("birth_date", ind.BirthDate, ind.BirthDateApprox); err != nil {
		return err
	}
	return validateDatePair("death_date", ind.DeathDate, ind.DeathDateApprox)
}

// CreateIndividual inserts an individual and its names in one transaction.
// An empty GedcomID is replaced by the next generated ID; an explicit one
// that is already taken fails with ErrDuplicateID and writes nothing. On
// success ind.ID and ind.GedcomID are set.
func CreateIndividual(db *sql.DB, ind *model.Individual) (int, error) {
	if err := validateIndividual(ind); err != nil {
		return 0, err
	}

	tx, err := db.Begin()
	if err != nil {
		return 0, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	gid, err := assignGedcomID(tx, "main_individuals", model.IndividualPrefix, ind.GedcomID)
	if err != nil {
		return 0, err
	}
	ind.GedcomID = gid

	id, err := InsertIndividual(tx, ind)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing transaction: %w", err)
	}
	return id, nil
}

// InsertIndividual writes an individual row and its names without ID
// generation or duplicate checks. Names without an explicit order get their
// slice index. Used by bulk import inside an existing transaction.
func InsertIndividual(q querier, ind *model.Individual) (int, error) {
	res, err := q.Exec(
		`INSERT INTO main_individuals (gedcom_id, sex_code, birth_date, birth_date_approx, birth_place,
			death_date, death_date_approx, death_place, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ind.GedcomID,
		nullIfEmpty(string(ind.Sex)),
		nullIfEmpty(ind.BirthDate),
		nullIfEmpty(ind.BirthDateApprox),
		nullIfEmpty(ind.BirthPlace),
		nullIfEmpty(ind.DeathDate),
		nullIfEmpty(ind.DeathDateApprox),
		nullIfEmpty(ind.DeathPlace),
		nullIfEmpty(ind.Notes),
	)
	if err != nil {
		return 0, fmt.Errorf("inserting individual %s: %w", ind.GedcomID, err)
	}
	id, err := lastID(res)
	if err != nil {
		return 0, err
	}
	ind.ID = id

	if err := insertNames(q, id, ind.Names); err != nil {
		return 0, err
	}
	return id, nil
}

func insertNames(q querier, individualID int, names []model.Name) error {
	for i := range names {
		n := &names[i]
		if n.Order == nil {
			idx := i
			n.Order = &idx
		}
		res, err := q.Exec(
			`INSERT INTO main_individual_names (individual_id, name_type, given_name, family_name, prefix, suffix, name_order)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			individualID,
			nullIfEmpty(n.Type),
			nullIfEmpty(n.Given),
			nullIfEmpty(n.Family),
			nullIfEmpty(n.Prefix),
			nullIfEmpty(n.Suffix),
			nilIfZeroPtr(n.Order),
		)
		if err != nil {
			return fmt.Errorf("inserting name: %w", err)
		}
		if n.ID, err = lastID(res); err != nil {
			return err
		}
	}
	return nil
}

// GetIndividual retrieves an individual with its names by internal ID.
func GetIndividual(db querier, id int) (*model.Individual, error) {
	row := db.QueryRow(`SELECT `+individualColumns+` FROM main_individuals WHERE id = ?`, id)
	return loadIndividual(db, row)
}

// GetIndividualByGedcomID retrieves an individual with its names by gedcom_id.
func GetIndividualByGedcomID(db querier, gedcomID string) (*model.Individual, error) {
	row := db.QueryRow(`SELECT `+individualColumns+` FROM main_individuals WHERE gedcom_id = ?`, gedcomID)
	return loadIndividual(db, row)
}

func loadIndividual(db querier, row *sql.Row) (*model.Individual, error) {
	ind, err := scanIndividualFrom(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning individual: %w", err)
	}
	if err := HydrateNames(db, []*model.Individual{ind}); err != nil {
		return nil, err
	}
	return ind, nil
}

// ListIndividuals returns individuals with their names, sorted by gedcom_id.
func ListIndividuals(db querier, opts ListOptions) ([]*model.Individual, error) {
	rows, err := db.Query(`SELECT ` + individualColumns + ` FROM main_individuals ORDER BY gedcom_id` + opts.clause())
	if err != nil {
		return nil, fmt.Errorf("querying individuals: %w", err)
	}
	defer rows.Close()

	var out []*model.Individual
	for rows.Next() {
		ind, err := scanIndividualFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning individual row: %w", err)
		}
		out = append(out, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating individuals: %w", err)
	}

	if err := HydrateNames(db, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetIndividualsByIDs bulk-loads individuals with names, keyed by internal ID.
// Missing IDs are absent from the map.
func GetIndividualsByIDs(db querier, ids []int) (map[int]*model.Individual, error) {
	out := make(map[int]*model.Individual, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query := fmt.Sprintf(`SELECT `+individualColumns+` FROM main_individuals WHERE id IN (%s)`, makePlaceholders(len(ids)))
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying individuals: %w", err)
	}
	defer rows.Close()

	var list []*model.Individual
	for rows.Next() {
		ind, err := scanIndividualFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning individual row: %w", err)
		}
		out[ind.ID] = ind
		list = append(list, ind)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := HydrateNames(db, list); err != nil {
		return nil, err
	}
	return out, nil
}

// HydrateNames bulk-loads names for a set of individuals, sorted by
// name_order with unordered names last.
func HydrateNames(db querier, inds []*model.Individual) error {
	if len(inds) == 0 {
		return nil
	}

	byID := make(map[int]*model.Individual, len(inds))
	ids := make([]any, len(inds))
	for i, ind := range inds {
		ids[i] = ind.ID
		byID[ind.ID] = ind
		ind.Names = nil
	}

	for _, chunk := range chunkIDs(ids) {
		if err := loadNames(db, chunk, byID); err != nil {
			return err
		}
	}

	for _, ind := range inds {
		sort.SliceStable(ind.Names, func(a, b int) bool {
			return ind.Names[a].SortKey() < ind.Names[b].SortKey()
		})
	}
	return nil
}

func loadNames(db querier, ids []any, byID map[int]*model.Individual) error {
	query := fmt.Sprintf(
		`SELECT id, individual_id, name_type, given_name, family_name, prefix, suffix, name_order
		 FROM main_individual_names
		 WHERE individual_id IN (%s)
		 ORDER BY id`, makePlaceholders(len(ids)),
	)
	rows, err := db.Query(query, ids...)
	if err != nil {
		return fmt.Errorf("querying names: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n model.Name
		var individualID int
		var nameType, given, family, prefix, suffix sql.NullString
		var order sql.NullInt64
		if err := rows.Scan(&n.ID, &individualID, &nameType, &given, &family, &prefix, &suffix, &order); err != nil {
			return fmt.Errorf("scanning name: %w", err)
		}
		n.Type = nameType.String
		n.Given = given.String
		n.Family = family.String
		n.Prefix = prefix.String
		n.Suffix = suffix.String
		n.Order = intPtr(order)
		if ind, ok := byID[individualID]; ok {
			ind.Names = append(ind.Names, n)
		}
	}
	return rows.Err()
}

// UpdateIndividual applies a partial update. Keys of updates are column
// names; setting one side of a date pair clears the other. When names is
// non-nil it replaces every stored name. Each changed column is recorded in
// the change log.
func UpdateIndividual(db *sql.DB, id int, updates map[string]any, names []model.Name) error {
	if v, ok := updates["sex_code"].(string); ok {
		if err := model.ValidateSex(model.Sex(v)); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalid, err)
		}
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := requireRow(tx, "main_individuals", id); err != nil {
		return err
	}

	if gid, ok := updates["gedcom_id"].(string); ok {
		if err := checkGedcomIDChange(tx, "main_individuals", gid, id); err != nil {
			return err
		}
	}

	if err := applyUpdate(tx, individualUpdates, id, updates); err != nil {
		return err
	}

	if names != nil {
		if _, err := tx.Exec(`DELETE FROM main_individual_names WHERE individual_id = ?`, id); err != nil {
			return fmt.Errorf("clearing names: %w", err)
		}
		if err := insertNames(tx, id, names); err != nil {
			return err
		}
		if err := RecordChange(tx, model.EntityIndividual, id, "names", "", fmt.Sprintf("%d names", len(names))); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// DeleteIndividual removes an individual. Names, events, media and family
// links are removed by foreign key cascades.
func DeleteIndividual(db *sql.DB, id int) error {
	res, err := db.Exec("DELETE FROM main_individuals WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("deleting individual: %w", err)
	}
	return checkAffected(res)
}

func requireRow(q querier, table string, id int) error {
	var one int
	err := q.QueryRow("SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("checking %s: %w", table, err)
	}
	return nil
}

func checkGedcomIDChange(q querier, table, gid string, id int) error {
	if err := model.ValidateGedcomID(gid); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	taken, err := gedcomIDTaken(q, table, gid, id)
	if err != nil {
		return err
	}
	if taken {
		return fmt.Errorf("%w: %s", ErrDuplicateID, gid)
	}
	return nil
}

// scanIndividualFrom scans a single individual from any scanner (*sql.Row or *sql.Rows).
func scanIndividualFrom(s scanner) (*model.Individual, error) {
	var ind model.Individual
	var sex, birthDate, birthApprox, birthPlace, deathDate, deathApprox, deathPlace, notes sql.NullString

	err := s.Scan(
		&ind.ID, &ind.GedcomID, &sex,
		&birthDate, &birthApprox, &birthPlace,
		&deathDate, &deathApprox, &deathPlace,
		&notes,
	)
	if err != nil {
		return nil, err
	}

	ind.Sex = model.Sex(sex.String)
	ind.BirthDate = birthDate.String
	ind.BirthDateApprox = birthApprox.String
	ind.BirthPlace = birthPlace.String
	ind.DeathDate = deathDate.String
	ind.DeathDateApprox = deathApprox.String
	ind.DeathPlace = deathPlace.String
	ind.Notes = notes.String
	return &ind, nil
}
