package repo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
)

const schema = `
CREATE TABLE IF NOT EXISTS located_articles (
	id               TEXT PRIMARY KEY,
	title            TEXT NOT NULL,
	summary          TEXT NOT NULL DEFAULT '',
	content          TEXT NOT NULL DEFAULT '',
	url              TEXT NOT NULL DEFAULT '',
	source           TEXT NOT NULL DEFAULT '',
	published_at     TIMESTAMPTZ NOT NULL,
	category         TEXT NOT NULL DEFAULT '',
	popularity_score DOUBLE PRECISION NOT NULL DEFAULT 0,
	latitude         DOUBLE PRECISION NOT NULL DEFAULT 0,
	longitude        DOUBLE PRECISION NOT NULL DEFAULT 0,
	location         JSONB NOT NULL,
	processed_at     TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS located_articles_category_idx ON located_articles (category, published_at DESC);
CREATE INDEX IF NOT EXISTS located_articles_popularity_idx ON located_articles (popularity_score DESC);
`

const selectColumns = `id, title, summary, content, url, source, published_at, category, popularity_score, location, processed_at`

// PostgresRepository stores located articles in Postgres.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects, pings and applies the schema.
func NewPostgresRepository(ctx context.Context, databaseURL string) (*PostgresRepository, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	log.Info().Msg("Postgres connection established")
	return &PostgresRepository{pool: pool}, nil
}

func (r *PostgresRepository) Close() {
	r.pool.Close()
}

func (r *PostgresRepository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}

func (r *PostgresRepository) Save(ctx context.Context, a models.LocatedArticle) error {
	id := a.EnsureID()
	location, err := json.Marshal(a.Location)
	if err != nil {
		return fmt.Errorf("failed to encode location for %s: %w", id, err)
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO located_articles (id, title, summary, content, url, source, published_at, category,
			popularity_score, latitude, longitude, location, processed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (id) DO UPDATE SET
			title = EXCLUDED.title,
			summary = EXCLUDED.summary,
			content = EXCLUDED.content,
			category = EXCLUDED.category,
			popularity_score = EXCLUDED.popularity_score,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			location = EXCLUDED.location,
			processed_at = EXCLUDED.processed_at`,
		id, a.Title, a.Summary, a.Content, a.URL, a.Source, a.PublishedAt, a.Category,
		a.PopularityScore, a.Location.Coordinates.Lat, a.Location.Coordinates.Lng, location, a.ProcessedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save article %s: %w", id, err)
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (models.LocatedArticle, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+selectColumns+` FROM located_articles WHERE id = $1`, id)
	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return a, ErrNotFound
	}
	return a, err
}

func (r *PostgresRepository) List(ctx context.Context, arg ListParams) ([]models.LocatedArticle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+` FROM located_articles
		WHERE $1 = '' OR lower(category) = lower($1)
		ORDER BY published_at DESC
		LIMIT $2`, arg.Category, ClampLimit(arg.Limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}
	return collect(rows)
}

func (r *PostgresRepository) Popular(ctx context.Context, limit int) ([]models.LocatedArticle, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+` FROM located_articles
		ORDER BY popularity_score DESC, published_at DESC
		LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to list popular articles: %w", err)
	}
	return collect(rows)
}

// Nearby filters on a bounding box in SQL and refines with the haversine
// distance.
func (r *PostgresRepository) Nearby(ctx context.Context, arg NearbyParams) ([]NearbyArticle, error) {
	const kmPerDegree = 111.0
	dLat := arg.RadiusKm / kmPerDegree
	rows, err := r.pool.Query(ctx, `
		SELECT `+selectColumns+` FROM located_articles
		WHERE NOT (latitude = 0 AND longitude = 0)
			AND latitude BETWEEN $1 AND $2`, arg.Lat-dLat, arg.Lat+dLat)
	if err != nil {
		return nil, fmt.Errorf("failed to query nearby articles: %w", err)
	}
	articles, err := collect(rows)
	if err != nil {
		return nil, err
	}

	return withinRadius(articles, arg), nil
}

func scanArticle(row pgx.Row) (models.LocatedArticle, error) {
	var a models.LocatedArticle
	var location []byte
	err := row.Scan(&a.ID, &a.Title, &a.Summary, &a.Content, &a.URL, &a.Source, &a.PublishedAt,
		&a.Category, &a.PopularityScore, &location, &a.ProcessedAt)
	if err != nil {
		return a, err
	}
	if err := json.Unmarshal(location, &a.Location); err != nil {
		return a, fmt.Errorf("failed to decode location for %s: %w", a.ID, err)
	}
	return a, nil
}

func collect(rows pgx.Rows) ([]models.LocatedArticle, error) {
	defer rows.Close()
	var out []models.LocatedArticle
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan article: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read articles: %w", err)
	}
	return out, nil
}
