package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
	"github.com/ALT-F4-LLC/pedigree/internal/notes"
)

func (s *Server) listFamilies(c *gin.Context) {
	opts, err := pagination(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	fams, err := db.ListFamilies(s.db, opts)
	if err != nil {
		s.fail(c, err)
		return
	}
	if fams == nil {
		fams = []*model.Family{}
	}
	c.JSON(http.StatusOK, fams)
}

func (s *Server) lookupFamily(c *gin.Context) (*model.Family, error) {
	if id, err := idParam(c); err == nil {
		return db.GetFamily(s.db, id)
	}
	if gid := model.NormalizeGedcomID(c.Param("id")); model.ValidateGedcomID(gid) == nil {
		return db.GetFamilyByGedcomID(s.db, gid)
	}
	return nil, fmt.Errorf("%w: invalid id %q", errBadRequest, c.Param("id"))
}

func (s *Server) getFamily(c *gin.Context) {
	fam, err := s.lookupFamily(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.HydrateFamilyDetails(s.db, []*model.Family{fam}); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fam)
}

// createFamily generates a descriptive note when the body carries none.
func (s *Server) createFamily(c *gin.Context) {
	var fam model.Family
	if err := c.ShouldBindJSON(&fam); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	fam.ID = 0
	if fam.FamilyType == "" {
		fam.FamilyType = model.FamilyTypeMarriage
	}

	if fam.Notes == "" {
		people, err := db.GetIndividualsByIDs(s.db, linkedIDs(&fam))
		if err != nil {
			s.fail(c, err)
			return
		}
		fam.Notes = notes.ForFamily(&fam, people)
	}

	id, err := db.CreateFamily(s.db, &fam)
	if err != nil {
		s.fail(c, err)
		return
	}
	created, err := db.GetFamily(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func linkedIDs(fam *model.Family) []int {
	ids := make([]int, 0, len(fam.Members)+len(fam.Children))
	for _, m := range fam.Members {
		ids = append(ids, m.IndividualID)
	}
	for _, ch := range fam.Children {
		ids = append(ids, ch.ChildID)
	}
	return ids
}

func (s *Server) updateFamily(c *gin.Context) {
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

	var members []model.Member
	hasMembers, err := p.take("members", &members)
	if err != nil {
		s.fail(c, err)
		return
	}
	if hasMembers && members == nil {
		members = []model.Member{}
	}
	var children []model.Child
	hasChildren, err := p.take("children", &children)
	if err != nil {
		s.fail(c, err)
		return
	}
	if hasChildren && children == nil {
		children = []model.Child{}
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

	if err := db.UpdateFamily(s.db, id, updates, members, children); err != nil {
		s.fail(c, err)
		return
	}
	fam, err := db.GetFamily(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, fam)
}

func (s *Server) deleteFamily(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.DeleteFamily(s.db, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
