package ingest

import (
	"context"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"news-atlas/internal/models"
)

const (
	defaultWorkers    = 5
	extractorTimeout  = 30 * time.Second
	minSummaryForSkip = 400
)

// Extractor fills in article content by fetching the page and running
// readability over it.
type Extractor struct {
	workers int
	timeout time.Duration
}

func NewExtractor(workers int, timeout time.Duration) *Extractor {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if timeout <= 0 {
		timeout = extractorTimeout
	}
	return &Extractor{workers: workers, timeout: timeout}
}

// Enrich extracts content for articles that have a URL but little text.
// Extraction failures leave the article unchanged.
func (e *Extractor) Enrich(ctx context.Context, articles []models.Article) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range articles {
		a := &articles[i]
		if a.URL == "" || strings.TrimSpace(a.Content) != "" || len(a.Summary) >= minSummaryForSkip {
			continue
		}
		g.Go(func() error {
			if gctx.Err() != nil {
				return nil
			}
			page, err := readability.FromURL(a.URL, e.timeout)
			if err != nil {
				log.Debug().Err(err).Str("url", a.URL).Msg("Content extraction failed")
				return nil
			}
			a.Content = strings.Join(strings.Fields(page.TextContent), " ")
			if a.Summary == "" {
				a.Summary = page.Excerpt
			}
			return nil
		})
	}
	_ = g.Wait()
}

// Enriching wraps a Source so fetched articles pass through an Extractor.
type Enriching struct {
	Source
	extractor *Extractor
}

func WithExtractor(src Source, e *Extractor) *Enriching {
	return &Enriching{Source: src, extractor: e}
}

func (s *Enriching) Fetch(ctx context.Context) ([]models.Article, error) {
	articles, err := s.Source.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	s.extractor.Enrich(ctx, articles)
	return articles, nil
}
