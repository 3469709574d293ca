package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
	"news-atlas/internal/repo"
	"news-atlas/internal/services/forecast"
	"news-atlas/internal/services/news"
	"news-atlas/internal/services/refresh"
)

const maxBodyBytes = 1 << 20

// NewsService is the part of news.NewsService the handlers use.
type NewsService interface {
	List(ctx context.Context, category string, limit int) ([]models.LocatedArticle, error)
	Popular(ctx context.Context, limit int) ([]models.LocatedArticle, error)
	Nearby(ctx context.Context, req news.NearbyRequest) ([]repo.NearbyArticle, error)
	Get(ctx context.Context, id string) (models.LocatedArticle, error)
	Locate(ctx context.Context, article models.Article) models.LocationResult
}

// Refresher triggers and reports refresh runs.
type Refresher interface {
	RunOnce(ctx context.Context) (*news.RefreshResult, error)
	Status() refresh.Status
}

type PortfolioPredictor interface {
	Predict(ctx context.Context, tickers []string) (*forecast.PortfolioReport, error)
}

// NewsHandler handles news, location and prediction requests
type NewsHandler struct {
	news       NewsService
	refresher  Refresher
	forecaster forecast.Forecaster
	portfolio  PortfolioPredictor
}

// NewNewsHandler creates a new NewsHandler
func NewNewsHandler(svc NewsService, refresher Refresher, forecaster forecast.Forecaster, portfolio PortfolioPredictor) *NewsHandler {
	return &NewsHandler{
		news:       svc,
		refresher:  refresher,
		forecaster: forecaster,
		portfolio:  portfolio,
	}
}

// RegisterRoutes registers all API routes
func (h *NewsHandler) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/news", func(r chi.Router) {
			r.Get("/", h.List)
			r.Get("/popular", h.Popular)
			r.Get("/nearby", h.Nearby)
			r.Post("/refresh", h.Refresh)
			r.Get("/refresh/status", h.RefreshStatus)
			r.Get("/{id}", h.Get)
		})
		r.Post("/locate", h.Locate)
		r.Route("/predict", func(r chi.Router) {
			r.Post("/article-impact", h.ArticleImpact)
			r.Post("/portfolio", h.Portfolio)
		})
	})
}

// List handles GET /api/v1/news?category=&limit=
func (h *NewsHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	category := r.URL.Query().Get("category")

	articles, err := h.news.List(r.Context(), category, limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, news.ListResponse{
		Articles: nonNil(articles),
		Meta:     news.MetaInfo{Total: len(articles), Limit: repo.ClampLimit(limit), Category: category},
	})
}

// Popular handles GET /api/v1/news/popular?limit=
func (h *NewsHandler) Popular(w http.ResponseWriter, r *http.Request) {
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}

	articles, err := h.news.Popular(r.Context(), limit)
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, news.ListResponse{
		Articles: nonNil(articles),
		Meta:     news.MetaInfo{Total: len(articles), Limit: repo.ClampLimit(limit)},
	})
}

// Nearby handles GET /api/v1/news/nearby?lat=&lng=&radius_km=&limit=
func (h *NewsHandler) Nearby(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	var req news.NearbyRequest
	var err error

	if q.Get("lat") == "" || q.Get("lng") == "" {
		validationError(w, "lat and lng are required")
		return
	}
	if req.Lat, err = strconv.ParseFloat(q.Get("lat"), 64); err != nil {
		validationError(w, "invalid lat")
		return
	}
	if req.Lng, err = strconv.ParseFloat(q.Get("lng"), 64); err != nil {
		validationError(w, "invalid lng")
		return
	}
	if v := q.Get("radius_km"); v != "" {
		if req.RadiusKm, err = strconv.ParseFloat(v, 64); err != nil {
			validationError(w, "invalid radius_km")
			return
		}
	}
	limit, ok := parseLimit(w, r)
	if !ok {
		return
	}
	req.Limit = limit

	if err := req.Validate(); err != nil {
		validationError(w, err.Error())
		return
	}

	articles, err := h.news.Nearby(r.Context(), req)
	if err != nil {
		internalError(w, r, err)
		return
	}
	if articles == nil {
		articles = []repo.NearbyArticle{}
	}
	writeJSON(w, http.StatusOK, news.NearbyResponse{
		Articles: articles,
		Meta:     news.MetaInfo{Total: len(articles), Limit: repo.ClampLimit(limit)},
	})
}

// Get handles GET /api/v1/news/{id}
func (h *NewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	article, err := h.news.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, repo.ErrNotFound) {
		writeError(w, http.StatusNotFound, news.ErrCodeNotFound, "article not found")
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, article)
}

// Refresh handles POST /api/v1/news/refresh
func (h *NewsHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	result, err := h.refresher.RunOnce(r.Context())
	switch {
	case errors.Is(err, news.ErrRefreshInProgress), errors.Is(err, refresh.ErrLocked):
		writeError(w, http.StatusConflict, news.ErrCodeConflict, err.Error())
		return
	case err != nil:
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *NewsHandler) RefreshStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.refresher.Status())
}

// Locate handles POST /api/v1/locate
func (h *NewsHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var req news.LocateRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationError(w, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, h.news.Locate(r.Context(), req.Article))
}

// ArticleImpact handles POST /api/v1/predict/article-impact
func (h *NewsHandler) ArticleImpact(w http.ResponseWriter, r *http.Request) {
	var req news.ArticleImpactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationError(w, err.Error())
		return
	}

	report, err := h.forecaster.Forecast(r.Context(), req.Assets, req.Article)
	if errors.Is(err, forecast.ErrNoSymbols) {
		validationError(w, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Portfolio handles POST /api/v1/predict/portfolio
func (h *NewsHandler) Portfolio(w http.ResponseWriter, r *http.Request) {
	var req news.PortfolioRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		validationError(w, err.Error())
		return
	}

	report, err := h.portfolio.Predict(r.Context(), req.Tickers)
	if errors.Is(err, forecast.ErrNoSymbols) {
		validationError(w, err.Error())
		return
	}
	if err != nil {
		internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func parseLimit(w http.ResponseWriter, r *http.Request) (int, bool) {
	v := r.URL.Query().Get("limit")
	if v == "" {
		return 0, true
	}
	limit, err := strconv.Atoi(v)
	if err != nil || limit < 1 || limit > repo.MaxLimit {
		validationError(w, "invalid limit value (must be 1-"+strconv.Itoa(repo.MaxLimit)+")")
		return 0, false
	}
	return limit, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, news.ErrCodeBadRequest, "invalid request body")
		return false
	}
	return true
}

func nonNil(articles []models.LocatedArticle) []models.LocatedArticle {
	if articles == nil {
		return []models.LocatedArticle{}
	}
	return articles
}

func validationError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusBadRequest, news.ErrCodeValidation, message)
}

func internalError(w http.ResponseWriter, r *http.Request, err error) {
	zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
	writeError(w, http.StatusInternalServerError, news.ErrCodeInternal, "internal server error")
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, news.NewErrorResponse(code, message))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn().Err(err).Msg("Failed to encode response")
	}
}
