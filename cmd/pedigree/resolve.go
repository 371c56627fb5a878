package main

import (
	"database/sql"
	"fmt"
	"strconv"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/output"
)

// resolveIndividual accepts a gedcom_id ("I00042", "@I42@") or an internal
// numeric ID.
func resolveIndividual(conn *sql.DB, arg string) (*model.Individual, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		ind, err := db.GetIndividual(conn, id)
		if err != nil {
			return nil, wrapErr(err, "individual %d", id)
		}
		return ind, nil
	}
	gid := model.NormalizeGedcomID(arg)
	if err := model.ValidateGedcomID(gid); err != nil {
		return nil, cmdErr(err, output.ErrValidation)
	}
	ind, err := db.GetIndividualByGedcomID(conn, gid)
	if err != nil {
		return nil, wrapErr(err, "individual %s", gid)
	}
	return ind, nil
}

func resolveFamily(conn *sql.DB, arg string) (*model.Family, error) {
	if id, err := strconv.Atoi(arg); err == nil {
		fam, err := db.GetFamily(conn, id)
		if err != nil {
			return nil, wrapErr(err, "family %d", id)
		}
		return fam, nil
	}
	gid := model.NormalizeGedcomID(arg)
	if err := model.ValidateGedcomID(gid); err != nil {
		return nil, cmdErr(err, output.ErrValidation)
	}
	fam, err := db.GetFamilyByGedcomID(conn, gid)
	if err != nil {
		return nil, wrapErr(err, "family %s", gid)
	}
	return fam, nil
}

// peopleIn loads every individual linked to fams, keyed by internal ID.
func peopleIn(conn *sql.DB, fams ...*model.Family) (map[int]*model.Individual, error) {
	var ids []int
	for _, f := range fams {
		for _, m := range f.Members {
			ids = append(ids, m.IndividualID)
		}
		for _, c := range f.Children {
			ids = append(ids, c.ChildID)
		}
	}
	people, err := db.GetIndividualsByIDs(conn, ids)
	if err != nil {
		return nil, fmt.Errorf("loading family members: %w", err)
	}
	return people, nil
}
