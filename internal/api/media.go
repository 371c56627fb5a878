package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/model"
)

func (s *Server) listMedia(c *gin.Context) {
	f, err := ownerFilter(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	media, err := db.ListMedia(s.db, f)
	if err != nil {
		s.fail(c, err)
		return
	}
	if media == nil {
		media = []*model.Media{}
	}
	c.JSON(http.StatusOK, media)
}

func (s *Server) getMedia(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	m, err := db.GetMedia(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) createMedia(c *gin.Context) {
	var m model.Media
	if err := c.ShouldBindJSON(&m); err != nil {
		s.fail(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	m.ID = 0

	id, err := db.CreateMedia(s.db, &m)
	if err != nil {
		s.fail(c, err)
		return
	}
	created, err := db.GetMedia(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateMedia(c *gin.Context) {
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
	if err := db.UpdateMedia(s.db, id, updates); err != nil {
		s.fail(c, err)
		return
	}
	m, err := db.GetMedia(s.db, id)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (s *Server) deleteMedia(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	if err := db.DeleteMedia(s.db, id); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
