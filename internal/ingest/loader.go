package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
)

// Source yields raw articles for the locate pipeline.
type Source interface {
	Name() string
	Fetch(ctx context.Context) ([]models.Article, error)
}

// Loader reads articles from JSON files. A file holds either an array of
// articles or a single article object.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

func (l *Loader) Name() string { return "files:" + l.dir }

func (l *Loader) Fetch(ctx context.Context) ([]models.Article, error) {
	return l.LoadFromDirectory(ctx, l.dir)
}

// LoadFromDirectory loads every .json file under dirPath. Files that fail to
// parse are logged and skipped.
func (l *Loader) LoadFromDirectory(ctx context.Context, dirPath string) ([]models.Article, error) {
	var articles []models.Article
	err := filepath.WalkDir(dirPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(path), ".json") {
			return nil
		}

		loaded, err := l.LoadFromFile(path)
		if err != nil {
			log.Warn().Err(err).Str("file", path).Msg("Skipping article file")
			return nil
		}
		log.Debug().Str("file", path).Int("articles", len(loaded)).Msg("Loaded article file")
		articles = append(articles, loaded...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %s: %w", dirPath, err)
	}
	return articles, nil
}

// LoadFromFile loads the articles in a single JSON file.
func (l *Loader) LoadFromFile(filePath string) ([]models.Article, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open file %s: %w", filePath, err)
	}

	var articles []models.Article
	trimmed := strings.TrimSpace(string(data))
	if strings.HasPrefix(trimmed, "{") {
		var one models.Article
		if err := json.Unmarshal(data, &one); err != nil {
			return nil, fmt.Errorf("failed to decode JSON from %s: %w", filePath, err)
		}
		articles = []models.Article{one}
	} else if err := json.Unmarshal(data, &articles); err != nil {
		return nil, fmt.Errorf("failed to decode JSON from %s: %w", filePath, err)
	}

	out := articles[:0]
	for _, a := range articles {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		a.EnsureID()
		out = append(out, a)
	}
	return out, nil
}
