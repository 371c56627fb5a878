package db

import (
	"errors"
	"testing"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

func TestCreateIndividualGeneratesID(t *testing.T) {
	db := mustInit(t)

	a := mustCreateIndividual(t, db, "", "Ann", "Lee", model.SexFemale)
	b := mustCreateIndividual(t, db, "", "Bob", "Lee", model.SexMale)
	if a.GedcomID != "I00001" || b.GedcomID != "I00002" {
		t.Errorf("generated IDs = %q, %q; want I00001, I00002", a.GedcomID, b.GedcomID)
	}

	got, err := GetIndividual(db, b.ID)
	if err != nil {
		t.Fatalf("GetIndividual: %v", err)
	}
	if got.GedcomID != "I00002" || got.Sex != model.SexMale {
		t.Errorf("GetIndividual = %+v", got)
	}
	if len(got.Names) != 1 || got.Names[0].Given != "Bob" || got.Names[0].Order == nil || *got.Names[0].Order != 0 {
		t.Errorf("names = %+v", got.Names)
	}
}

func TestCreateIndividualDuplicateID(t *testing.T) {
	db := mustInit(t)
	mustCreateIndividual(t, db, "I00001", "Ann", "Lee", model.SexFemale)

	dup := &model.Individual{GedcomID: "I00001", Names: []model.Name{{Given: "Other"}}}
	_, err := CreateIndividual(db, dup)
	if !errors.Is(err, ErrDuplicateID) {
		t.Fatalf("CreateIndividual duplicate: got %v, want ErrDuplicateID", err)
	}

	c, err := CountAll(db)
	if err != nil {
		t.Fatal(err)
	}
	if c.Individuals != 1 {
		t.Errorf("individuals = %d, want exactly 1", c.Individuals)
	}
	var names int
	if err := db.QueryRow("SELECT COUNT(*) FROM main_individual_names").Scan(&names); err != nil {
		t.Fatal(err)
	}
	if names != 1 {
		t.Errorf("names = %d, want 1 (no partial write)", names)
	}
}

func TestCreateIndividualValidation(t *testing.T) {
	db := mustInit(t)

	tests := []struct {
		name string
		ind  model.Individual
	}{
		{"bad gedcom id", model.Individual{GedcomID: "12"}},
		{"bad sex", model.Individual{Sex: "Q"}},
		{"both birth dates", model.Individual{BirthDate: "1990-12-25", BirthDateApprox: "ABT 1990"}},
		{"malformed exact date", model.Individual{DeathDate: "25 DEC 1990"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ind := tt.ind
			if _, err := CreateIndividual(db, &ind); !errors.Is(err, ErrInvalid) {
				t.Errorf("got %v, want ErrInvalid", err)
			}
		})
	}
}

func TestGetIndividualByGedcomIDNotFound(t *testing.T) {
	db := mustInit(t)
	if _, err := GetIndividualByGedcomID(db, "I404"); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
	if _, err := GetIndividual(db, 404); !errors.Is(err, ErrNotFound) {
		t.Errorf("got %v, want ErrNotFound", err)
	}
}

func TestNamesSortedByOrderNullsLast(t *testing.T) {
	db := mustInit(t)

	two, zero := 2, 0
	ind := &model.Individual{Names: []model.Name{
		{Given: "Second", Order: &two},
		{Given: "First", Order: &zero},
	}}
	if _, err := CreateIndividual(db, ind); err != nil {
		t.Fatal(err)
	}
	if _, err := db.Exec(
		"INSERT INTO main_individual_names (individual_id, given_name, name_order) VALUES (?, 'Unordered', NULL)", ind.ID,
	); err != nil {
		t.Fatal(err)
	}

	got, err := GetIndividual(db, ind.ID)
	if err != nil {
		t.Fatal(err)
	}
	var order []string
	for _, n := range got.Names {
		order = append(order, n.Given)
	}
	want := []string{"First", "Second", "Unordered"}
	if len(order) != 3 || order[0] != want[0] || order[1] != want[1] || order[2] != want[2] {
		t.Errorf("name order = %v, want %v", order, want)
	}
}

func TestListIndividualsPagination(t *testing.T) {
	db := mustInit(t)
	for _, id := range []string{"I3", "I1", "I2"} {
		mustCreateIndividual(t, db, id, "X", "Y", "")
	}

	all, err := ListIndividuals(db, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 3 || all[0].GedcomID != "I1" || all[2].GedcomID != "I3" {
		t.Errorf("ListIndividuals order wrong: %v", all)
	}

	page, err := ListIndividuals(db, ListOptions{Offset: 1, Limit: 1})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 || page[0].GedcomID != "I2" {
		t.Errorf("page = %v, want [I2]", page)
	}
	if len(page[0].Names) != 1 {
		t.Errorf("names not hydrated on page")
	}
}

func TestUpdateIndividualDateExclusivity(t *testing.T) {
	db := mustInit(t)
	ind := &model.Individual{BirthDateApprox: "ABT 1950", DeathDate: "1990-12-25"}
	if _, err := CreateIndividual(db, ind); err != nil {
		t.Fatal(err)
	}

	if err := UpdateIndividual(db, ind.ID, map[string]any{"birth_date": "1952-03-19"}, nil); err != nil {
		t.Fatalf("UpdateIndividual: %v", err)
	}
	got, err := GetIndividual(db, ind.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.BirthDate != "1952-03-19" || got.BirthDateApprox != "" {
		t.Errorf("birth = (%q, %q), want exact only", got.BirthDate, got.BirthDateApprox)
	}

	if err := UpdateIndividual(db, ind.ID, map[string]any{"death_date_approx": "BEF 1991"}, nil); err != nil {
		t.Fatalf("UpdateIndividual: %v", err)
	}
	got, err = GetIndividual(db, ind.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.DeathDate != "" || got.DeathDateApprox != "BEF 1991" {
		t.Errorf("death = (%q, %q), want approx only", got.DeathDate, got.DeathDateApprox)
	}

	err = UpdateIndividual(db, ind.ID, map[string]any{"birth_date": "1952-03-19", "birth_date_approx": "ABT 1952"}, nil)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("setting both sides: got %v, want ErrInvalid", err)
	}
}

func TestUpdateIndividualRejectsUnknownField(t *testing.T) {
	db := mustInit(t)
	ind := mustCreateIndividual(t, db, "", "A", "B", "")

	if err := UpdateIndividual(db, ind.ID, map[string]any{"id": 7}, nil); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
	if err := UpdateIndividual(db, 999, map[string]any{"notes": "x"}, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing row: got %v, want ErrNotFound", err)
	}
}

func TestUpdateIndividualGedcomIDConflict(t *testing.T) {
	db := mustInit(t)
	mustCreateIndividual(t, db, "I1", "A", "B", "")
	b := mustCreateIndividual(t, db, "I2", "C", "D", "")

	if err := UpdateIndividual(db, b.ID, map[string]any{"gedcom_id": "I1"}, nil); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got %v, want ErrDuplicateID", err)
	}
	// Re-saving its own ID is not a conflict.
	if err := UpdateIndividual(db, b.ID, map[string]any{"gedcom_id": "I2"}, nil); err != nil {
		t.Errorf("re-saving own ID: %v", err)
	}
}

func TestUpdateIndividualReplacesNamesAndLogsChanges(t *testing.T) {
	db := mustInit(t)
	ind := mustCreateIndividual(t, db, "", "Old", "Name", "")

	names := []model.Name{{Given: "New", Family: "Name"}, {Given: "Alias", Type: "aka"}}
	if err := UpdateIndividual(db, ind.ID, map[string]any{"birth_place": "Boston"}, names); err != nil {
		t.Fatal(err)
	}

	got, err := GetIndividual(db, ind.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Names) != 2 || got.Names[0].Given != "New" || got.Names[1].Type != "aka" {
		t.Errorf("names = %+v", got.Names)
	}

	changes, err := GetChanges(db, model.EntityIndividual, ind.ID, 0)
	if err != nil {
		t.Fatal(err)
	}
	fields := map[string]bool{}
	for _, c := range changes {
		fields[c.Field] = true
	}
	if !fields["birth_place"] || !fields["names"] {
		t.Errorf("change log fields = %v, want birth_place and names", fields)
	}
}

func TestDeleteIndividualCascades(t *testing.T) {
	db := mustInit(t)
	ind := mustCreateIndividual(t, db, "", "A", "B", "")
	if _, err := CreateEvent(db, &model.Event{IndividualID: &ind.ID, TypeCode: "OCCU"}); err != nil {
		t.Fatal(err)
	}

	if err := DeleteIndividual(db, ind.ID); err != nil {
		t.Fatalf("DeleteIndividual: %v", err)
	}
	c, err := CountAll(db)
	if err != nil {
		t.Fatal(err)
	}
	if c.Individuals != 0 || c.Events != 0 {
		t.Errorf("counts after delete = %+v", c)
	}
	if err := DeleteIndividual(db, ind.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("second delete: got %v, want ErrNotFound", err)
	}
}

func TestGetIndividualsByIDs(t *testing.T) {
	db := mustInit(t)
	a := mustCreateIndividual(t, db, "", "A", "X", "")
	b := mustCreateIndividual(t, db, "", "B", "X", "")

	got, err := GetIndividualsByIDs(db, []int{a.ID, b.ID, 999})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 || got[b.ID].DisplayName() != "B X" {
		t.Errorf("GetIndividualsByIDs = %v", got)
	}
}
