package db

import (
	"fmt"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// HydrateIndividualDetails bulk-loads events and media for individuals, each
// in insertion order. This avoids N+1 queries during export.
func HydrateIndividualDetails(db querier, inds []*model.Individual) error {
	if len(inds) == 0 {
		return nil
	}
	byID := make(map[int]*model.Individual, len(inds))
	ids := make([]any, len(inds))
	for i, ind := range inds {
		ids[i] = ind.ID
		byID[ind.ID] = ind
		ind.Events, ind.Media = nil, nil
	}

	events, err := eventsWhereIn(db, "individual_id", ids)
	if err != nil {
		return err
	}
	for _, e := range events {
		if ind, ok := byID[*e.IndividualID]; ok {
			ind.Events = append(ind.Events, e)
		}
	}

	media, err := mediaWhereIn(db, "individual_id", ids)
	if err != nil {
		return err
	}
	for _, m := range media {
		if ind, ok := byID[*m.IndividualID]; ok {
			ind.Media = append(ind.Media, m)
		}
	}
	return nil
}

// HydrateFamilyDetails bulk-loads events and media for families.
func HydrateFamilyDetails(db querier, fams []*model.Family) error {
	if len(fams) == 0 {
		return nil
	}
	byID := make(map[int]*model.Family, len(fams))
	ids := make([]any, len(fams))
	for i, f := range fams {
		ids[i] = f.ID
		byID[f.ID] = f
		f.Events, f.Media = nil, nil
	}

	events, err := eventsWhereIn(db, "family_id", ids)
	if err != nil {
		return err
	}
	for _, e := range events {
		if f, ok := byID[*e.FamilyID]; ok {
			f.Events = append(f.Events, e)
		}
	}

	media, err := mediaWhereIn(db, "family_id", ids)
	if err != nil {
		return err
	}
	for _, m := range media {
		if f, ok := byID[*m.FamilyID]; ok {
			f.Media = append(f.Media, m)
		}
	}
	return nil
}

func eventsWhereIn(db querier, column string, ids []any) ([]*model.Event, error) {
	var out []*model.Event
	for _, chunk := range chunkIDs(ids) {
		part, err := eventsWhereInChunk(db, column, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func eventsWhereInChunk(db querier, column string, ids []any) ([]*model.Event, error) {
	query := fmt.Sprintf(`SELECT %s FROM main_events WHERE %s IN (%s) ORDER BY id`,
		eventColumns, column, makePlaceholders(len(ids)))
	rows, err := db.Query(query, ids...)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		e, err := scanEventFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning event row: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func mediaWhereIn(db querier, column string, ids []any) ([]*model.Media, error) {
	var out []*model.Media
	for _, chunk := range chunkIDs(ids) {
		part, err := mediaWhereInChunk(db, column, chunk)
		if err != nil {
			return nil, err
		}
		out = append(out, part...)
	}
	return out, nil
}

func mediaWhereInChunk(db querier, column string, ids []any) ([]*model.Media, error) {
	query := fmt.Sprintf(`SELECT %s FROM main_media WHERE %s IN (%s) ORDER BY id`,
		mediaColumns, column, makePlaceholders(len(ids)))
	rows, err := db.Query(query, ids...)
	if err != nil {
		return nil, fmt.Errorf("querying media: %w", err)
	}
	defer rows.Close()

	var out []*model.Media
	for rows.Next() {
		m, err := scanMediaFrom(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning media row: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
