package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricelens/skumatch/internal/domain"
	"github.com/pricelens/skumatch/internal/normalize"
	"github.com/pricelens/skumatch/internal/similarity"
	"github.com/pricelens/skumatch/internal/usecase"
)

const (
	serviceName    = "skumatch"
	serviceVersion = "1.0.0"

	maxNamesPerRequest = 1000
	dateLayout         = "2006-01-02"
)

// Dependencies are the services the HTTP layer delegates to. Matches may be
// nil when no match store is configured.
type Dependencies struct {
	Normalizer *normalize.Normalizer
	Text       normalize.TextNormalizer
	Scorer     *similarity.Scorer
	Catalogs   *usecase.CatalogService
	Pipeline   *usecase.PipelineService
	Matches    domain.MatchRepository
	Logger     zerolog.Logger
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	normalizer *normalize.Normalizer
	text       normalize.TextNormalizer
	scorer     *similarity.Scorer
	catalogs   *usecase.CatalogService
	pipeline   *usecase.PipelineService
	matches    domain.MatchRepository
	logger     zerolog.Logger
}

// NewHandler creates a new HTTP handler
func NewHandler(deps Dependencies) *Handler {
	text := deps.Text
	if text == nil {
		text = deps.Normalizer
	}
	return &Handler{
		normalizer: deps.Normalizer,
		text:       text,
		scorer:     deps.Scorer,
		catalogs:   deps.Catalogs,
		pipeline:   deps.Pipeline,
		matches:    deps.Matches,
		logger:     deps.Logger,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": serviceName,
		"version": serviceVersion,
	})
}

// NormalizeRequest asks for the normalized form of one or more names.
type NormalizeRequest struct {
	Names []string `json:"names" binding:"required"`
	Trace bool     `json:"trace"`
}

// NormalizedName is one entry of a NormalizeResponse.
type NormalizedName struct {
	Raw        string             `json:"raw"`
	Normalized string             `json:"normalized"`
	Units      []domain.UnitToken `json:"units"`
	Steps      []normalize.Step   `json:"steps,omitempty"`
}

// NormalizeResponse is returned by POST /api/v1/normalize.
type NormalizeResponse struct {
	Results []NormalizedName `json:"results"`
}

// Normalize handles POST /api/v1/normalize
func (h *Handler) Normalize(c *gin.Context) {
	var req NormalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	if len(req.Names) == 0 || len(req.Names) > maxNamesPerRequest {
		h.respondError(c, fmt.Errorf("%w: names must hold 1 to %d entries", domain.ErrInvalidRequest, maxNamesPerRequest))
		return
	}

	resp := NormalizeResponse{Results: make([]NormalizedName, len(req.Names))}
	for i, raw := range req.Names {
		out := NormalizedName{Raw: raw}
		if req.Trace {
			out.Steps = h.normalizer.Trace(raw)
			out.Normalized = out.Steps[len(out.Steps)-1].Output
		} else {
			out.Normalized = h.text.Normalize(raw)
		}
		out.Units = normalize.ExtractUnits(out.Normalized)
		resp.Results[i] = out
	}
	c.JSON(http.StatusOK, resp)
}

// ConfidenceRequest compares two names.
type ConfidenceRequest struct {
	Left  string `json:"left"`
	Right string `json:"right"`
	// Normalized marks both names as already normalized.
	Normalized bool `json:"normalized"`
}

// Confidence handles POST /api/v1/confidence
func (h *Handler) Confidence(c *gin.Context) {
	var req ConfidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	left, right := req.Left, req.Right
	if !req.Normalized {
		left, right = h.text.Normalize(left), h.text.Normalize(right)
	}
	c.JSON(http.StatusOK, h.scorer.Explain(left, right))
}

// CatalogRequest carries catalog entries to snapshot.
type CatalogRequest struct {
	Entries []domain.CatalogEntry `json:"entries" binding:"required"`
}

// CatalogResponse describes a stored snapshot.
type CatalogResponse struct {
	CatalogID string                `json:"catalog_id"`
	Size      int                   `json:"size"`
	Entries   []domain.CatalogEntry `json:"entries,omitempty"`
}

// CreateCatalog handles POST /api/v1/catalogs
func (h *Handler) CreateCatalog(c *gin.Context) {
	var req CatalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	id, catalog, err := h.catalogs.Snapshot(c.Request.Context(), req.Entries)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CatalogResponse{CatalogID: id, Size: len(catalog)})
}

// GetCatalog handles GET /api/v1/catalogs/:id
func (h *Handler) GetCatalog(c *gin.Context) {
	id := c.Param("id")
	catalog, err := h.catalogs.Get(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, CatalogResponse{CatalogID: id, Size: len(catalog), Entries: catalog})
}

// DeleteCatalog handles DELETE /api/v1/catalogs/:id
func (h *Handler) DeleteCatalog(c *gin.Context) {
	if err := h.catalogs.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// MatchRequest matches listings against an inline catalog or a stored
// snapshot. Exactly one of CatalogID and Catalog must be set.
type MatchRequest struct {
	CatalogID string                `json:"catalog_id"`
	Catalog   []domain.CatalogEntry `json:"catalog"`
	Listings  []domain.ListingEntry `json:"listings" binding:"required"`
	Country   string                `json:"country"`
	// Date (YYYY-MM-DD) identifies the batch when Persist is set.
	Date    string `json:"date"`
	Persist bool   `json:"persist"`
}

// MatchResponse is returned by POST /api/v1/match.
type MatchResponse struct {
	RunID       string               `json:"run_id"`
	Catalog     int                  `json:"catalog"`
	Listings    int                  `json:"listings"`
	Evaluations int                  `json:"evaluations"`
	Skipped     []string             `json:"skipped,omitempty"`
	Matches     []domain.MatchRecord `json:"matches"`
}

// Match handles POST /api/v1/match
func (h *Handler) Match(c *gin.Context) {
	var req MatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", domain.ErrInvalidRequest, err))
		return
	}
	if (req.CatalogID == "") == (len(req.Catalog) == 0) {
		h.respondError(c, fmt.Errorf("%w: provide either catalog_id or catalog", domain.ErrInvalidRequest))
		return
	}
	if req.Persist && h.matches == nil {
		h.respondError(c, fmt.Errorf("%w: persistence is not configured", domain.ErrInvalidRequest))
		return
	}
	date, err := parseDate(req.Date)
	if err != nil {
		h.respondError(c, err)
		return
	}

	ctx := c.Request.Context()
	catalog, err := h.loadCatalog(ctx, req)
	if err != nil {
		h.respondError(c, err)
		return
	}

	res, err := h.pipeline.Run(ctx, usecase.RunRequest{
		Country:  req.Country,
		Date:     date,
		Catalog:  catalog,
		Listings: req.Listings,
		DryRun:   !req.Persist,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, MatchResponse{
		RunID:       res.RunID,
		Catalog:     res.Catalog,
		Listings:    res.Listings,
		Evaluations: res.Evaluations,
		Skipped:     res.Skipped,
		Matches:     res.Records,
	})
}

func (h *Handler) loadCatalog(ctx context.Context, req MatchRequest) ([]domain.CatalogEntry, error) {
	if req.CatalogID != "" {
		return h.catalogs.Get(ctx, req.CatalogID)
	}
	return h.catalogs.Prepare(req.Catalog)
}

// ListMatches handles GET /api/v1/matches?country=MX&date=2024-03-05
func (h *Handler) ListMatches(c *gin.Context) {
	if h.matches == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "match store is not configured"})
		return
	}
	country := c.Query("country")
	if country == "" {
		h.respondError(c, fmt.Errorf("%w: country is required", domain.ErrInvalidRequest))
		return
	}
	date, err := parseDate(c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if date.IsZero() {
		h.respondError(c, fmt.Errorf("%w: date is required", domain.ErrInvalidRequest))
		return
	}

	records, err := h.matches.ListMatches(c.Request.Context(), country, date)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"country": country, "date": date.Format(dateLayout), "matches": records})
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: date must be YYYY-MM-DD", domain.ErrInvalidRequest)
	}
	return d, nil
}

// respondError maps domain errors to HTTP status codes.
func (h *Handler) respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidRequest):
		status = http.StatusBadRequest
	case errors.Is(err, domain.ErrCatalogNotFound):
		status = http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		status = 499
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(status, gin.H{"error": "internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
