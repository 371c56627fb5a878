// Package api serves the genealogy store over HTTP.
package api

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

// Options configures a Server.
type Options struct {
	// Logger receives access and lifecycle logs. Defaults to slog.Default().
	Logger *slog.Logger
}

// Server exposes one open database as a REST API. The caller owns the
// database handle and closes it after Run returns.
type Server struct {
	db     *sql.DB
	log    *slog.Logger
	engine *gin.Engine
}

// New builds the router for conn.
func New(conn *sql.DB, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{db: conn, log: logger}

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(logger))
	s.routes(r)
	s.engine = r
	return s
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) routes(r *gin.Engine) {
	r.GET("/", s.index)
	r.GET("/stats", s.stats)

	ind := r.Group("/individuals")
	{
		ind.GET("", s.listIndividuals)
		ind.POST("", s.createIndividual)
		ind.GET("/:id", s.getIndividual)
		ind.PUT("/:id", s.updateIndividual)
		ind.DELETE("/:id", s.deleteIndividual)
	}

	fam := r.Group("/families")
	{
		fam.GET("", s.listFamilies)
		fam.POST("", s.createFamily)
		fam.GET("/:id", s.getFamily)
		fam.PUT("/:id", s.updateFamily)
		fam.DELETE("/:id", s.deleteFamily)
	}

	ev := r.Group("/events")
	{
		ev.GET("", s.listEvents)
		ev.POST("", s.createEvent)
		ev.GET("/:id", s.getEvent)
		ev.PUT("/:id", s.updateEvent)
		ev.DELETE("/:id", s.deleteEvent)
	}

	media := r.Group("/media")
	{
		media.GET("", s.listMedia)
		media.POST("", s.createMedia)
		media.GET("/:id", s.getMedia)
		media.PUT("/:id", s.updateMedia)
		media.DELETE("/:id", s.deleteMedia)
	}

	r.GET("/header", s.getHeader)
	r.PUT("/header", s.updateHeader)
	r.GET("/header/submitter", s.getSubmitter)
	r.PUT("/header/submitter", s.updateSubmitter)

	types := r.Group("/types")
	{
		types.GET("/sex", s.listLookup)
		types.GET("/events", s.listLookup)
		types.GET("/media", s.listLookup)
		types.GET("/family-roles", s.listLookup)
	}

	r.GET("/export/gedcom", s.exportGedcom)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.log.Info("server listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.log.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.log.Info("server stopped")
	return nil
}

func (s *Server) index(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pedigree API"})
}
