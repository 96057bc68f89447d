package adapthttp

import (
	"errors"
	"net/http"

	"labdiet/internal/app"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func (s *Server) handleAnalysesRecent(c echo.Context) error {
	limit := intQuery(c, "limit", app.DefaultListLimit)
	items, err := s.recs.ListRecent(c.Request().Context(), limit)
	if err != nil {
		return writeError(c, http.StatusInternalServerError, err)
	}
	return c.JSON(http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleAnalysisGet(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return writeError(c, http.StatusBadRequest, errors.New("invalid analysis id"))
	}
	a, err := s.recs.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, a)
}
