// Package adapthttp is the driving HTTP adapter: it exposes the application
// services as a JSON API on echo.
package adapthttp

import (
	"net/http"

	"labdiet/internal/app"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
)

// Options tunes the HTTP surface.
type Options struct {
	CORSOrigins    []string
	MaxUploadBytes int64
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	recs    *app.RecommendationService
	dataset *app.DatasetService
	admin   *app.AdminAuth
	log     zerolog.Logger
	opts    Options
}

// New creates a Server wired to the given application services.
func New(recs *app.RecommendationService, dataset *app.DatasetService, admin *app.AdminAuth, log zerolog.Logger, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 20 << 20
	}
	return &Server{recs: recs, dataset: dataset, admin: admin, log: log, opts: opts}
}

// Echo builds the router with middleware and routes.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(RequestID())
	e.Use(Logger(s.log))
	e.Use(Recovery(s.log))
	e.Use(NoCache())
	if len(s.opts.CORSOrigins) > 0 {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins: s.opts.CORSOrigins,
			AllowMethods: []string{http.MethodGet, http.MethodPost},
			AllowHeaders: []string{"Content-Type", RequestIDHeader, AdminKeyHeader},
		}))
	}

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.POST("/recommend", s.handleRecommend)
	api.POST("/analyzereport", s.handleAnalyzeReport, echomw.BodyLimit(bodyLimit(s.opts.MaxUploadBytes)))
	api.GET("/analyses", s.handleAnalysesRecent)
	api.GET("/analyses/:id", s.handleAnalysisGet)
	api.GET("/population", s.handlePopulationStats)

	admin := api.Group("/admin", s.requireAdmin)
	admin.POST("/population/reload", s.handlePopulationReload)
	admin.POST("/population/regenerate", s.handlePopulationRegenerate)

	return e
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	return s.Echo()
}

func (s *Server) handleHealth(c echo.Context) error {
	_, err := s.dataset.Current()
	return c.JSON(http.StatusOK, map[string]any{"ok": true, "dataset": err == nil})
}
