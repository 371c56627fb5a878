package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/filter"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// listIndividuals supports skip/limit plus the name, sex, born_after and
// born_until filters. Filters are applied before pagination.
func (s *Server) listIndividuals(c *gin.Context) {
	opts, err := pagination(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	f, err := individualFilter(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var people []*model.Individual
	if f.Empty() {
		people, err = db.ListIndividuals(s.db, opts)
	} else {
		people, err = db.ListIndividuals(s.db, db.ListOptions{})
		people = page(f.Apply(people), opts)
	}
	if err != nil {
		s.fail(c, err)
		return
	}
	if people == nil {
		people = []*model.Individual{}
	}
	c.JSON(http.StatusOK, people)
}

func individualFilter(c *gin.Context) (filter.Individuals, error) {
	f := filter.Individuals{Name: c.Query("name")}
	if sex := c.Query("sex"); sex != "" {
		f.Sexes = filter.ToStringSet(strings.Split(sex, ","))
	}
	var err error
	if f.BornAfter, err = intQuery(c, "born_after", 0); err != nil {
		return f, err
	}
	if f.BornUntil, err = intQuery(c, "born_until", 0); err != nil {
		return f, err
	}
	return f, nil
}

func page[T any](items []T, opts db.ListOptions) []T {
	if opts.Offset >= len(items) {
		return nil
	}
	items = items[opts.Offset:]
	if opts.Limit > 0 && opts.Limit < len(items) {
		items = items[:opts.Limit]
	}
	return items
}

// lookupIndividual accepts an internal ID or a gedcom_id such as "I00042".
func (s *Server) lookupIndividual(c *gin.Context) (*model.Individual, error) {
	if id, err := idParam(c); err == nil {
		return db.GetIndividual(s.db, id)
	}
	if gid := model.NormalizeGedcomID(c.Param("id")); model.ValidateGedcomID(gid) == nil {
		return db.GetIndividualByGedcomID(s.db, gid)
	}
	return nil, fmt.Errorf("%w: invalid id %q", errBadRequest, c.Param("id"))
}

func (s *Server) getIndividual(c *gin.Context) {
	ind, err := s.lookupIndividual(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.HydrateIndividualDetails(s.db, []*model.Individual{ind}); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ind)
}

func (s *Server) createIndividual(c *gin.Context) {
	var ind model.Individual
	if err := c.ShouldBindJSON(&ind); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	ind.ID = 0
	ind.Sex = model.Sex(strings.ToUpper(string(ind.Sex)))

	id, err := db.CreateIndividual(s.db, &ind)
	if err != nil {
		s.fail(c, err)
		return
	}
	created, err := db.GetIndividual(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateIndividual(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	p, err := bindPatch(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	var names []model.Name
	hasNames, err := p.take("names", &names)
	if err != nil {
		s.fail(c, err)
		return
	}
	if hasNames && names == nil {
		names = []model.Name{}
	}
	updates, err := p.updates()
	if err != nil {
		s.fail(c, err)
		return
	}
	if v, ok := updates["gedcom_id"]; ok && v == nil {
		s.fail(c, fmt.Errorf("%w: gedcom_id cannot be cleared", errBadRequest))
		return
	}
	if v, ok := updates["sex_code"].(string); ok {
		updates["sex_code"] = strings.ToUpper(v)
	}

	if err := db.UpdateIndividual(s.db, id, updates, names); err != nil {
		s.fail(c, err)
		return
	}
	ind, err := db.GetIndividual(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, ind)
}

func (s *Server) deleteIndividual(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.DeleteIndividual(s.db, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
