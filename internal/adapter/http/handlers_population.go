package adapthttp

import (
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
)

func (s *Server) handlePopulationStats(c echo.Context) error {
	stats, err := s.dataset.Stats()
	if err != nil {
		return writeError(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, stats)
}

func (s *Server) handlePopulationReload(c echo.Context) error {
	if err := s.dataset.Reload(c.Request().Context()); err != nil {
		return writeError(c, statusFor(err), err)
	}
	return s.handlePopulationStats(c)
}

func (s *Server) handlePopulationRegenerate(c echo.Context) error {
	var body struct {
		Samples int `json:"samples"`
	}
	if err := c.Bind(&body); err != nil && !errors.Is(err, io.EOF) {
		return writeError(c, http.StatusBadRequest, errors.New("invalid json"))
	}
	if body.Samples == 0 {
		body.Samples = s.dataset.DefaultSamples()
	}
	stats, err := s.dataset.Regenerate(c.Request().Context(), body.Samples)
	if err != nil {
		return writeError(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, stats)
}
