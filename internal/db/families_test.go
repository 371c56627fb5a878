package db

import (
	"errors"
	"testing"

	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

func TestCreateFamilyWithLinks(t *testing.T) {
	db := mustInit(t)
	h := mustCreateIndividual(t, db, "", "John", "Smith", model.SexMale)
	w := mustCreateIndividual(t, db, "", "Jane", "Doe", model.SexFemale)
	c1 := mustCreateIndividual(t, db, "", "Kid", "Smith", "")
	c2 := mustCreateIndividual(t, db, "", "Other", "Smith", "")

	fam := &model.Family{
		MarriageDateApprox: "ABT 1950",
		Members: []model.Member{
			{IndividualID: h.ID, Role: model.RoleHusband},
			{IndividualID: w.ID, Role: model.RoleWife},
		},
		Children: []model.Child{{ChildID: c2.ID}, {ChildID: c1.ID}},
	}
	id, err := CreateFamily(db, fam)
	if err != nil {
		t.Fatalf("CreateFamily: %v", err)
	}
	if fam.GedcomID != "F00001" {
		t.Errorf("GedcomID = %q, want F00001", fam.GedcomID)
	}

	got, err := GetFamily(db, id)
	if err != nil {
		t.Fatal(err)
	}
	if got.FamilyType != model.FamilyTypeMarriage {
		t.Errorf("FamilyType = %q, want marriage", got.FamilyType)
	}
	if len(got.Members) != 2 || got.Members[0].Role != model.RoleHusband {
		t.Errorf("members = %+v", got.Members)
	}
	if len(got.Children) != 2 || got.Children[0].ChildID != c2.ID || got.Children[1].ChildID != c1.ID {
		t.Errorf("children not in insertion order: %+v", got.Children)
	}

	of, err := FamiliesOf(db, c1.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(of) != 1 || of[0].ID != id {
		t.Errorf("FamiliesOf(child) = %v", of)
	}
}

func TestCreateFamilyRejectsUnknownIndividual(t *testing.T) {
	db := mustInit(t)
	fam := &model.Family{Children: []model.Child{{ChildID: 42}}}
	if _, err := CreateFamily(db, fam); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
	c, _ := CountAll(db)
	if c.Families != 0 {
		t.Errorf("families = %d, want 0", c.Families)
	}
}

func TestCreateFamilyRejectsBadRole(t *testing.T) {
	db := mustInit(t)
	a := mustCreateIndividual(t, db, "", "A", "B", "")
	fam := &model.Family{Members: []model.Member{{IndividualID: a.ID, Role: "uncle"}}}
	if _, err := CreateFamily(db, fam); !errors.Is(err, ErrInvalid) {
		t.Errorf("got %v, want ErrInvalid", err)
	}
}

func TestCreateFamilyDuplicateID(t *testing.T) {
	db := mustInit(t)
	if _, err := CreateFamily(db, &model.Family{GedcomID: "F1"}); err != nil {
		t.Fatal(err)
	}
	if _, err := CreateFamily(db, &model.Family{GedcomID: "F1"}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("got %v, want ErrDuplicateID", err)
	}
}

func TestUpdateFamily(t *testing.T) {
	db := mustInit(t)
	a := mustCreateIndividual(t, db, "", "A", "B", "")
	b := mustCreateIndividual(t, db, "", "C", "D", "")
	fam := &model.Family{MarriageDate: "1970-06-01", Members: []model.Member{{IndividualID: a.ID, Role: model.RoleHusband}}}
	if _, err := CreateFamily(db, fam); err != nil {
		t.Fatal(err)
	}

	updates := map[string]any{"marriage_date_approx": "ABT 1970", "family_type": ""}
	members := []model.Member{{IndividualID: b.ID}}
	if err := UpdateFamily(db, fam.ID, updates, members, []model.Child{{ChildID: a.ID}}); err != nil {
		t.Fatalf("UpdateFamily: %v", err)
	}

	got, err := GetFamily(db, fam.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.MarriageDate != "" || got.MarriageDateApprox != "ABT 1970" {
		t.Errorf("marriage = (%q, %q)", got.MarriageDate, got.MarriageDateApprox)
	}
	if got.FamilyType != model.FamilyTypeMarriage {
		t.Errorf("FamilyType = %q, want default marriage", got.FamilyType)
	}
	if len(got.Members) != 1 || got.Members[0].IndividualID != b.ID || got.Members[0].Role != "" {
		t.Errorf("members = %+v", got.Members)
	}
	if len(got.Children) != 1 || got.Children[0].ChildID != a.ID {
		t.Errorf("children = %+v", got.Children)
	}

	if err := UpdateFamily(db, 999, map[string]any{"notes": "x"}, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing family: got %v, want ErrNotFound", err)
	}
}

func TestDeleteFamilyKeepsIndividuals(t *testing.T) {
	db := mustInit(t)
	a := mustCreateIndividual(t, db, "", "A", "B", "")
	fam := &model.Family{Members: []model.Member{{IndividualID: a.ID}}}
	if _, err := CreateFamily(db, fam); err != nil {
		t.Fatal(err)
	}
	if err := DeleteFamily(db, fam.ID); err != nil {
		t.Fatal(err)
	}

	c, _ := CountAll(db)
	if c.Families != 0 || c.Individuals != 1 {
		t.Errorf("counts = %+v", c)
	}
	var links int
	if err := db.QueryRow("SELECT COUNT(*) FROM main_family_members").Scan(&links); err != nil {
		t.Fatal(err)
	}
	if links != 0 {
		t.Errorf("member links = %d after delete, want 0", links)
	}
}

func TestHydrateFamilyDetails(t *testing.T) {
	db := mustInit(t)
	fam := &model.Family{}
	if _, err := CreateFamily(db, fam); err != nil {
		t.Fatal(err)
	}
	for _, code := range []string{"ENGA", "MARB"} {
		if _, err := CreateEvent(db, &model.Event{FamilyID: &fam.ID, TypeCode: code}); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := CreateMedia(db, &model.Media{FamilyID: &fam.ID, FilePath: "wedding.jpg"}); err != nil {
		t.Fatal(err)
	}

	fams, err := ListFamilies(db, ListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if err := HydrateFamilyDetails(db, fams); err != nil {
		t.Fatal(err)
	}
	if len(fams[0].Events) != 2 || fams[0].Events[0].TypeCode != "ENGA" {
		t.Errorf("events = %+v", fams[0].Events)
	}
	if len(fams[0].Media) != 1 || fams[0].Media[0].FilePath != "wedding.jpg" {
		t.Errorf("media = %+v", fams[0].Media)
	}
}
