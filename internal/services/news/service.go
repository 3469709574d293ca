package news

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/events"
	"news-atlas/internal/ingest"
	"news-atlas/internal/models"
	"news-atlas/internal/repo"
)

var ErrRefreshInProgress = errors.New("refresh already in progress")

// Locator resolves and categorizes a single article.
type Locator interface {
	ResolveLocation(ctx context.Context, article models.Article) models.LocationResult
	Categorize(ctx context.Context, article models.Article) string
}

// NewsService ingests articles, runs them through the location pipeline and
// serves the stored results.
type NewsService struct {
	repo      repo.Repository
	locator   Locator
	sources   []ingest.Source
	publisher events.Publisher
	now       func() time.Time

	refreshMu sync.Mutex
}

type Option func(*NewsService)

// WithPublisher emits an event for every processed article.
func WithPublisher(p events.Publisher) Option {
	return func(s *NewsService) { s.publisher = p }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *NewsService) { s.now = now }
}

// NewNewsService creates a new NewsService
func NewNewsService(r repo.Repository, locator Locator, sources []ingest.Source, opts ...Option) *NewsService {
	s := &NewsService{
		repo:      r,
		locator:   locator,
		sources:   sources,
		publisher: events.NopPublisher{},
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RefreshResult summarizes one ingest-and-locate run.
type RefreshResult struct {
	RunID      string   `json:"run_id"`
	Sources    int      `json:"sources"`
	Fetched    int      `json:"fetched"`
	Processed  int      `json:"processed"`
	Skipped    int      `json:"skipped"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	DurationMs int64    `json:"duration_ms"`
}

// Refresh pulls every source and processes articles not yet stored. Only one
// refresh runs at a time; a concurrent call gets ErrRefreshInProgress.
func (s *NewsService) Refresh(ctx context.Context) (*RefreshResult, error) {
	if !s.refreshMu.TryLock() {
		return nil, ErrRefreshInProgress
	}
	defer s.refreshMu.Unlock()

	start := s.now()
	result := &RefreshResult{RunID: uuid.NewString(), Sources: len(s.sources)}
	logger := log.With().Str("run_id", result.RunID).Logger()

	var batch []models.Article
	for _, src := range s.sources {
		articles, err := src.Fetch(ctx)
		if err != nil {
			logger.Warn().Err(err).Str("source", src.Name()).Msg("Source fetch failed")
			result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", src.Name(), err))
			continue
		}
		batch = append(batch, articles...)
	}
	result.Fetched = len(batch)

	seen := make(map[string]bool, len(batch))
	for i := range batch {
		if err := ctx.Err(); err != nil {
			result.DurationMs = s.now().Sub(start).Milliseconds()
			return result, err
		}

		id := batch[i].EnsureID()
		if seen[id] || s.stored(ctx, id) {
			result.Skipped++
			continue
		}
		seen[id] = true

		if _, err := s.process(ctx, result.RunID, batch[i]); err != nil {
			logger.Error().Err(err).Str("article_id", id).Msg("Failed to process article")
			result.Failed++
			continue
		}
		result.Processed++
	}

	result.DurationMs = s.now().Sub(start).Milliseconds()
	logger.Info().
		Int("fetched", result.Fetched).
		Int("processed", result.Processed).
		Int("skipped", result.Skipped).
		Int("failed", result.Failed).
		Int64("duration_ms", result.DurationMs).
		Msg("Refresh completed")
	return result, nil
}

// Process locates, categorizes and stores one article.
func (s *NewsService) Process(ctx context.Context, article models.Article) (models.LocatedArticle, error) {
	article.EnsureID()
	return s.process(ctx, "", article)
}

func (s *NewsService) process(ctx context.Context, runID string, article models.Article) (models.LocatedArticle, error) {
	located := models.LocatedArticle{
		Article:         article,
		Location:        s.locator.ResolveLocation(ctx, article),
		Category:        s.locator.Categorize(ctx, article),
		PopularityScore: Popularity(article),
		ProcessedAt:     s.now().UTC(),
	}
	if located.PublishedAt.IsZero() {
		located.PublishedAt = located.ProcessedAt
	}

	if err := s.repo.Save(ctx, located); err != nil {
		return models.LocatedArticle{}, fmt.Errorf("failed to save article: %w", err)
	}
	if err := s.publisher.PublishLocated(ctx, runID, located); err != nil {
		log.Warn().Err(err).Str("article_id", located.ID).Msg("Failed to publish article event")
	}
	return located, nil
}

func (s *NewsService) stored(ctx context.Context, id string) bool {
	_, err := s.repo.Get(ctx, id)
	if err != nil && !errors.Is(err, repo.ErrNotFound) {
		log.Warn().Err(err).Str("article_id", id).Msg("Lookup failed, reprocessing")
	}
	return err == nil
}

// Locate runs the location pipeline without storing anything.
func (s *NewsService) Locate(ctx context.Context, article models.Article) models.LocationResult {
	return s.locator.ResolveLocation(ctx, article)
}

func (s *NewsService) Get(ctx context.Context, id string) (models.LocatedArticle, error) {
	return s.repo.Get(ctx, id)
}

// List returns stored articles newest first, optionally for one category.
func (s *NewsService) List(ctx context.Context, category string, limit int) ([]models.LocatedArticle, error) {
	articles, err := s.repo.List(ctx, repo.ListParams{
		Category: strings.ToLower(strings.TrimSpace(category)),
		Limit:    repo.ClampLimit(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return articles, nil
}

func (s *NewsService) Popular(ctx context.Context, limit int) ([]models.LocatedArticle, error) {
	articles, err := s.repo.Popular(ctx, repo.ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list popular articles: %w", err)
	}
	return articles, nil
}

func (s *NewsService) Nearby(ctx context.Context, req NearbyRequest) ([]repo.NearbyArticle, error) {
	articles, err := s.repo.Nearby(ctx, repo.NearbyParams{
		Lat:      req.Lat,
		Lng:      req.Lng,
		RadiusKm: req.RadiusKm,
		Limit:    repo.ClampLimit(req.Limit),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find nearby articles: %w", err)
	}
	return articles, nil
}

var majorSources = []string{"reuters", "bbc", "cnn", "bloomberg", "financial times"}

// Popularity scores an article from its source and summary length.
func Popularity(article models.Article) float64 {
	score := 0.5
	source := strings.ToLower(article.Source)
	for _, major := range majorSources {
		if strings.Contains(source, major) {
			score += 0.3
			break
		}
	}
	if len([]rune(article.Summary)) > 200 {
		score += 0.2
	}
	return min(score, 1.0)
}
