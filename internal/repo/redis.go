package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
	"news-atlas/internal/models"
)

// RedisRepository stores each article as JSON and indexes it by publish time,
// popularity, category and location.
type RedisRepository struct {
	cache *cache.RedisCache
}

func NewRedisRepository(c *cache.RedisCache) *RedisRepository {
	return &RedisRepository{cache: c}
}

func (r *RedisRepository) Save(ctx context.Context, article models.LocatedArticle) error {
	id := article.EnsureID()
	data, err := json.Marshal(article)
	if err != nil {
		return fmt.Errorf("failed to encode article %s: %w", id, err)
	}

	if err := r.cache.Set(ctx, cache.ArticleKey(id), data, 0); err != nil {
		return fmt.Errorf("failed to store article %s: %w", id, err)
	}

	published := float64(article.PublishedAt.Unix())
	if err := r.cache.ZAdd(ctx, cache.ArticlesByTimeKey, published, id); err != nil {
		return fmt.Errorf("failed to index article %s: %w", id, err)
	}
	if err := r.cache.ZAdd(ctx, cache.ArticlesByPopularityKey, article.PopularityScore, id); err != nil {
		return fmt.Errorf("failed to index article %s: %w", id, err)
	}
	if article.Category != "" {
		if err := r.cache.ZAdd(ctx, cache.ArticlesByCategoryKey(article.Category), published, id); err != nil {
			return fmt.Errorf("failed to index article %s: %w", id, err)
		}
	}
	if c := article.Location.Coordinates; !c.IsZero() {
		if err := r.cache.GeoAdd(ctx, cache.ArticlesGeoKey, c.Lng, c.Lat, id); err != nil {
			return fmt.Errorf("failed to index article location %s: %w", id, err)
		}
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (models.LocatedArticle, error) {
	var a models.LocatedArticle
	if err := r.cache.GetJSON(ctx, cache.ArticleKey(id), &a); err != nil {
		if errors.Is(err, cache.ErrKeyNotFound) {
			return a, ErrNotFound
		}
		return a, err
	}
	return a, nil
}

func (r *RedisRepository) List(ctx context.Context, arg ListParams) ([]models.LocatedArticle, error) {
	key := cache.ArticlesByTimeKey
	if arg.Category != "" {
		key = cache.ArticlesByCategoryKey(arg.Category)
	}
	return r.fromIndex(ctx, key, ClampLimit(arg.Limit))
}

func (r *RedisRepository) Popular(ctx context.Context, limit int) ([]models.LocatedArticle, error) {
	return r.fromIndex(ctx, cache.ArticlesByPopularityKey, ClampLimit(limit))
}

func (r *RedisRepository) Nearby(ctx context.Context, arg NearbyParams) ([]NearbyArticle, error) {
	locations, err := r.cache.GeoRadius(ctx, cache.ArticlesGeoKey, arg.Lng, arg.Lat, arg.RadiusKm, ClampLimit(arg.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby articles: %w", err)
	}

	results := make([]NearbyArticle, 0, len(locations))
	for _, loc := range locations {
		a, err := r.Get(ctx, loc.Name)
		if err != nil {
			log.Debug().Err(err).Str("id", loc.Name).Msg("Skipping indexed article")
			continue
		}
		results = append(results, NearbyArticle{LocatedArticle: a, DistanceKm: loc.Dist})
	}
	return results, nil
}

func (r *RedisRepository) fromIndex(ctx context.Context, key string, limit int) ([]models.LocatedArticle, error) {
	ids, err := r.cache.ZRevRange(ctx, key, 0, int64(limit-1))
	if err != nil {
		return nil, fmt.Errorf("failed to read index %s: %w", key, err)
	}

	articles := make([]models.LocatedArticle, 0, len(ids))
	for _, id := range ids {
		a, err := r.Get(ctx, id)
		if err != nil {
			log.Debug().Err(err).Str("id", id).Msg("Skipping indexed article")
			continue
		}
		articles = append(articles, a)
	}
	return articles, nil
}
