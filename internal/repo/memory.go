package repo

import (
	"context"
	"sync"

	"news-atlas/internal/models"
)

// MemoryRepository keeps articles in process. It is used when neither
// Postgres nor Redis is configured, and in tests.
type MemoryRepository struct {
	mu       sync.RWMutex
	articles map[string]models.LocatedArticle
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{articles: make(map[string]models.LocatedArticle)}
}

func (r *MemoryRepository) Save(_ context.Context, article models.LocatedArticle) error {
	article.EnsureID()
	r.mu.Lock()
	r.articles[article.ID] = article
	r.mu.Unlock()
	return nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (models.LocatedArticle, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.articles[id]
	if !ok {
		return models.LocatedArticle{}, ErrNotFound
	}
	return a, nil
}

func (r *MemoryRepository) List(_ context.Context, arg ListParams) ([]models.LocatedArticle, error) {
	out := r.filter(func(a models.LocatedArticle) bool { return matchesCategory(a, arg.Category) })
	sortNewest(out)
	return truncate(out, ClampLimit(arg.Limit)), nil
}

func (r *MemoryRepository) Popular(_ context.Context, limit int) ([]models.LocatedArticle, error) {
	out := r.filter(func(models.LocatedArticle) bool { return true })
	sortPopular(out)
	return truncate(out, ClampLimit(limit)), nil
}

func (r *MemoryRepository) Nearby(_ context.Context, arg NearbyParams) ([]NearbyArticle, error) {
	all := r.filter(func(models.LocatedArticle) bool { return true })
	return withinRadius(all, arg), nil
}

func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.articles)
}

func (r *MemoryRepository) filter(keep func(models.LocatedArticle) bool) []models.LocatedArticle {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]models.LocatedArticle, 0, len(r.articles))
	for _, a := range r.articles {
		if keep(a) {
			out = append(out, a)
		}
	}
	return out
}

func truncate(articles []models.LocatedArticle, limit int) []models.LocatedArticle {
	if len(articles) > limit {
		return articles[:limit]
	}
	return articles
}
