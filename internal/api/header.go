package api

import (
	"bytes"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ALT-F4-LLC/pedigree/internal/db"
	"github.com/ALT-F4-LLC/pedigree/internal/gedcomio"
)

func (s *Server) getHeader(c *gin.Context) {
	h, err := db.GetOrCreateHeader(s.db)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

// updateHeader ignores protected fields such as imported_at.
func (s *Server) updateHeader(c *gin.Context) {
	p, err := bindPatch(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	updates, err := p.updates()
	if err != nil {
		s.fail(c, err)
		return
	}
	h, err := db.UpdateHeader(s.db, updates)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h)
}

func (s *Server) getSubmitter(c *gin.Context) {
	h, err := db.GetOrCreateHeader(s.db)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Submitter())
}

func (s *Server) updateSubmitter(c *gin.Context) {
	p, err := bindPatch(c)
	if err != nil {
		s.fail(c, err)
		return
	}
	updates, err := p.updates()
	if err != nil {
		s.fail(c, err)
		return
	}
	h, err := db.UpdateSubmitter(s.db, updates)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, h.Submitter())
}

var lookupByRoute = map[string]string{
	"sex":          db.LookupSexes,
	"events":       db.LookupEventTypes,
	"media":        db.LookupMediaTypes,
	"family-roles": db.LookupFamilyRoles,
}

func (s *Server) listLookup(c *gin.Context) {
	table := lookupByRoute[path.Base(c.FullPath())]
	types, err := db.ListLookup(s.db, table)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, types)
}

func (s *Server) stats(c *gin.Context) {
	counts, err := db.CountAll(s.db)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, counts)
}

// exportGedcom renders the whole database before writing so a failure can
// still be reported with a proper status.
func (s *Server) exportGedcom(c *gin.Context) {
	name := strings.TrimSpace(c.Query("filename"))
	if name == "" {
		name = "export.ged"
	}
	name = path.Base(name)

	var buf bytes.Buffer
	if _, err := gedcomio.ExportTo(c.Request.Context(), s.db, &buf, gedcomio.ExportOptions{FileName: name}); err != nil {
		s.fail(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", buf.Bytes())
}
