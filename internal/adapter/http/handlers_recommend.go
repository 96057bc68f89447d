package adapthttp

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"labdiet/internal/app"
	"labdiet/internal/domain"
	"labdiet/internal/extract"

	"github.com/labstack/echo/v4"
)

// resultsBody mirrors the response layout clients of the upload form expect.
type resultsBody struct {
	ExtractedData       map[string]float64 `json:"extracted_data"`
	DietRecommendations domain.DietPlan    `json:"diet_recommendations"`
}

func resultsResponse(a *domain.Analysis) map[string]any {
	return map[string]any{
		"Results": resultsBody{
			ExtractedData:       a.Profile.Labeled(),
			DietRecommendations: a.Plan,
		},
		"analysis": a,
	}
}

func (s *Server) handleRecommend(c echo.Context) error {
	fields, err := decodeFields(c.Request())
	if err != nil {
		return writeError(c, http.StatusBadRequest, err)
	}
	a, err := s.recs.Recommend(c.Request().Context(), fields, app.SourceAPI)
	if err != nil {
		return writeError(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, resultsResponse(a))
}

// decodeFields reads a JSON object of field name to value. Numbers and
// strings are kept as text; anything else is dropped and so defaulted.
func decodeFields(r *http.Request) (map[string]string, error) {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var body map[string]any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}
	fields := make(map[string]string, len(body))
	for k, v := range body {
		switch x := v.(type) {
		case json.Number:
			fields[k] = x.String()
		case string:
			fields[k] = x
		case float64:
			fields[k] = strconv.FormatFloat(x, 'g', -1, 64)
		}
	}
	return fields, nil
}

func (s *Server) handleAnalyzeReport(c echo.Context) error {
	form, err := c.MultipartForm()
	if err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			return missingReports(c)
		}
		return writeError(c, http.StatusBadRequest, err)
	}

	reports := make(map[extract.ReportKind]string, len(extract.ReportKinds))
	for _, kind := range extract.ReportKinds {
		files := form.File[string(kind)]
		if len(files) == 0 {
			// a part sent with an empty filename arrives as a plain value
			if _, ok := form.Value[string(kind)]; ok {
				continue
			}
			return missingReports(c)
		}
		fh := files[0]
		if fh.Filename == "" {
			continue
		}
		f, err := fh.Open()
		if err != nil {
			return err
		}
		text, err := extract.DocumentText(f)
		_ = f.Close()
		if err != nil {
			err = fmt.Errorf("%w: %s: %w", app.ErrInvalidReport, kind, err)
			return writeError(c, statusFor(err), err)
		}
		reports[kind] = text
	}

	res, err := s.recs.AnalyzeReports(c.Request().Context(), reports)
	if err != nil {
		return writeError(c, statusFor(err), err)
	}
	return c.JSON(http.StatusOK, resultsResponse(res.Analysis))
}

func missingReports(c echo.Context) error {
	return c.JSON(http.StatusBadRequest, map[string]any{"error": "Missing required reports"})
}
