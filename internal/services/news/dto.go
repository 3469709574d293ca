package news

import (
	"errors"
	"fmt"
	"strings"

	"news-atlas/internal/models"
	"news-atlas/internal/repo"
)

const (
	DefaultNearbyRadiusKm = 50.0
	MaxNearbyRadiusKm     = 500.0
	MaxAssets             = 20
	MaxTickers            = 25
)

// ListResponse wraps a page of located articles.
type ListResponse struct {
	Articles []models.LocatedArticle `json:"articles"`
	Meta     MetaInfo                `json:"meta"`
}

// MetaInfo represents metadata about the response
type MetaInfo struct {
	Total    int    `json:"total"`
	Limit    int    `json:"limit"`
	Category string `json:"category,omitempty"`
}

type NearbyResponse struct {
	Articles []repo.NearbyArticle `json:"articles"`
	Meta     MetaInfo             `json:"meta"`
}

// NearbyRequest represents a nearby search request
type NearbyRequest struct {
	Lat      float64 `json:"lat"`
	Lng      float64 `json:"lng"`
	RadiusKm float64 `json:"radius_km"`
	Limit    int     `json:"limit"`
}

func (r *NearbyRequest) Validate() error {
	if r.Lat < -90 || r.Lat > 90 {
		return errors.New("lat must be between -90 and 90")
	}
	if r.Lng < -180 || r.Lng > 180 {
		return errors.New("lng must be between -180 and 180")
	}
	if r.RadiusKm == 0 {
		r.RadiusKm = DefaultNearbyRadiusKm
	}
	if r.RadiusKm < 0 || r.RadiusKm > MaxNearbyRadiusKm {
		return fmt.Errorf("radius_km must be between 0 and %.0f", MaxNearbyRadiusKm)
	}
	return nil
}

// LocateRequest is an article submitted for on-demand location.
type LocateRequest struct {
	models.Article
}

func (r LocateRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return errors.New("title is required")
	}
	return nil
}

// ArticleImpactRequest asks for forecasts of assets given one article.
type ArticleImpactRequest struct {
	Assets  []string       `json:"assets"`
	Article models.Article `json:"article"`
}

func (r ArticleImpactRequest) Validate() error {
	if len(r.Assets) == 0 {
		return errors.New("assets must be a non-empty list of symbols")
	}
	if len(r.Assets) > MaxAssets {
		return fmt.Errorf("at most %d assets are allowed", MaxAssets)
	}
	for _, a := range r.Assets {
		if strings.TrimSpace(a) == "" {
			return errors.New("assets must not contain empty symbols")
		}
	}
	if strings.TrimSpace(r.Article.Title) == "" && strings.TrimSpace(r.Article.Body()) == "" {
		return errors.New("article must have a title or content")
	}
	return nil
}

// PortfolioRequest asks for news-driven forecasts of several tickers.
type PortfolioRequest struct {
	Tickers []string `json:"tickers"`
}

func (r PortfolioRequest) Validate() error {
	if len(r.Tickers) == 0 {
		return errors.New("tickers must be a non-empty list")
	}
	if len(r.Tickers) > MaxTickers {
		return fmt.Errorf("at most %d tickers are allowed", MaxTickers)
	}
	return nil
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorInfo `json:"error"`
}

// ErrorInfo represents error details
type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeInternal   = "INTERNAL_ERROR"
	ErrCodeRateLimit  = "RATE_LIMIT"
	ErrCodeBadRequest = "BAD_REQUEST"
	ErrCodeConflict   = "CONFLICT"
)

// NewErrorResponse creates a new error response
func NewErrorResponse(code, message string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorInfo{
			Code:    code,
			Message: message,
		},
	}
}
