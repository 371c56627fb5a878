package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

// ownerFilter reads individual_id, family_id, skip and limit.
func ownerFilter(c *gin.Context) (db.OwnerFilter, error) {
	var f db.OwnerFilter
	var err error
	if f.ListOptions, err = pagination(c); err != nil {
		return f, err
	}
	if f.IndividualID, err = optionalIntQuery(c, "individual_id"); err != nil {
		return f, err
	}
	if f.FamilyID, err = optionalIntQuery(c, "family_id"); err != nil {
		return f, err
	}
	return f, nil
}

func (s *Server) listEvents(c *gin.Context) {
	f, err := ownerFilter(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	events, err := db.ListEvents(s.db, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if events == nil {
		events = []*model.Event{}
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) getEvent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	e, err := db.GetEvent(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) createEvent(c *gin.Context) {
	var e model.Event
	if err := c.ShouldBindJSON(&e); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	e.ID = 0
	e.TypeCode = strings.ToUpper(e.TypeCode)

	id, err := db.CreateEvent(s.db, &e)
	if err != nil {
		s.fail(c, err)
		return
	}
	created, err := db.GetEvent(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateEvent(c *gin.Context) {
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
	updates, err := p.updates("individual_id", "family_id")
	if err != nil {
		s.fail(c, err)
		return
	}
	if v, ok := updates["event_type_code"].(string); ok {
		updates["event_type_code"] = strings.ToUpper(v)
	}

	if err := db.UpdateEvent(s.db, id, updates); err != nil {
		s.fail(c, err)
		return
	}
	e, err := db.GetEvent(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

func (s *Server) deleteEvent(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.DeleteEvent(s.db, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
