package location

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"news-atlas/internal/models"
	"news-atlas/internal/services/geocode"
	"news-atlas/internal/services/landmark"
	"news-atlas/internal/services/llm"
)

const defaultConfidence = 0.5

// Geocoder resolves a location string, returning the zero value on failure.
type Geocoder interface {
	Resolve(ctx context.Context, location string) geocode.Coordinates
}

// LandmarkFinder finds a specific landmark for a vague area.
type LandmarkFinder interface {
	Resolve(ctx context.Context, area, topic, category string) (*landmark.Landmark, bool)
}

// Pipeline resolves articles to specific, geocoded locations.
type Pipeline struct {
	gen       llm.TextGenerator
	geocoder  Geocoder
	landmarks LandmarkFinder
	reverse   geocode.ReverseProvider
	intn      func(int) int
}

type Option func(*Pipeline)

// WithReverseGeocoder enables country lookup by coordinates for the
// default-landmark fallback.
func WithReverseGeocoder(r geocode.ReverseProvider) Option {
	return func(p *Pipeline) { p.reverse = r }
}

// WithRandom replaces the random source used by the keyword fallback.
func WithRandom(intn func(int) int) Option {
	return func(p *Pipeline) { p.intn = intn }
}

// NewPipeline wires the pipeline. gen and landmarks may be nil; the pipeline
// then degrades to keyword detection and plain geocoding.
func NewPipeline(gen llm.TextGenerator, geocoder Geocoder, landmarks LandmarkFinder, opts ...Option) *Pipeline {
	p := &Pipeline{
		gen:       gen,
		geocoder:  geocoder,
		landmarks: landmarks,
		intn:      rand.Intn,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type extraction struct {
	Location   string
	Topic      string
	Category   string
	Confidence float64
	Reasoning  string
}

// ResolveLocation runs extraction, vagueness detection, landmark refinement
// and geocoding for one article. It never fails; degraded results carry a
// lower confidence.
func (p *Pipeline) ResolveLocation(ctx context.Context, article models.Article) models.LocationResult {
	ext, ok := p.extract(ctx, article)
	if !ok {
		res := FallbackDetect(article, p.intn)
		log.Debug().Str("title", article.Title).Str("location", res.LocationName).Msg("Using fallback location detection")
		return res
	}

	res := models.LocationResult{
		LocationName: strings.TrimSpace(ext.Location),
		Topic:        ext.Topic,
		Category:     landmark.NormalizeCategory(ext.Category),
		Confidence:   ext.Confidence,
		Reasoning:    ext.Reasoning,
	}
	if res.LocationName == "" || strings.EqualFold(res.LocationName, models.UnknownLocation) {
		res.LocationName = models.UnknownLocation
		return res
	}

	area := res.LocationName
	var mark *landmark.Landmark
	if IsVague(area) {
		mark = p.findLandmark(ctx, area, res.Topic, res.Category)
		if mark != nil {
			applyLandmark(&res, mark, area)
		}
	}

	res.Coordinates = p.locate(ctx, res.LocationName, mark)

	if mark == nil && IsVague(res.LocationName) {
		p.safetyNet(ctx, &res, area)
	}

	if res.Coordinates.IsZero() {
		log.Debug().Str("location", res.LocationName).Msg("Location left unresolved")
	}
	return res
}

func (p *Pipeline) extract(ctx context.Context, article models.Article) (extraction, bool) {
	if p.gen == nil {
		return extraction{}, false
	}

	out, err := p.gen.Generate(ctx, llm.GenerateRequest{
		System:      locationSystemPrompt,
		User:        buildLocationPrompt(article),
		Temperature: 0.3,
		MaxTokens:   300,
	})
	if err != nil {
		log.Warn().Err(err).Str("title", article.Title).Msg("Location extraction failed")
		return extraction{}, false
	}

	obj := llm.ExtractJSON(out.Text).Object()
	if obj == nil {
		log.Warn().Str("title", article.Title).Msg("Location extraction returned no JSON")
		return extraction{}, false
	}

	ext := extraction{
		Location:   stringField(obj, "location", "location_name"),
		Topic:      stringField(obj, "topic"),
		Category:   stringField(obj, "category", "location_category"),
		Confidence: clampConfidence(obj["confidence"]),
		Reasoning:  stringField(obj, "reasoning"),
	}
	if ext.Location == "" {
		return extraction{}, false
	}
	return ext, true
}

func (p *Pipeline) findLandmark(ctx context.Context, area, topic, category string) *landmark.Landmark {
	if p.landmarks == nil {
		return nil
	}
	mark, ok := p.landmarks.Resolve(ctx, area, topic, category)
	if !ok {
		return nil
	}
	return mark
}

// locate prefers the landmark's own coordinates, then geocodes the full string
// and progressively shorter prefixes of it.
func (p *Pipeline) locate(ctx context.Context, location string, mark *landmark.Landmark) geocode.Coordinates {
	if mark != nil && !mark.Location.IsZero() {
		return mark.Location
	}
	if p.geocoder == nil {
		return geocode.Coordinates{}
	}

	if c := p.geocoder.Resolve(ctx, location); !c.IsZero() {
		return c
	}

	parts := strings.Split(location, ",")
	for n := len(parts) - 1; n >= 1; n-- {
		candidate := strings.TrimSpace(strings.Join(parts[:n], ","))
		if candidate == "" {
			continue
		}
		if c := p.geocoder.Resolve(ctx, candidate); !c.IsZero() {
			return c
		}
	}
	return geocode.Coordinates{}
}

// safetyNet handles results that are still vague after the first pass: one
// more landmark search, then the per-country default landmark.
func (p *Pipeline) safetyNet(ctx context.Context, res *models.LocationResult, area string) {
	city, _, _ := strings.Cut(area, ",")
	city = strings.TrimSpace(city)
	repeat := strings.EqualFold(city, area) && res.Category == landmark.CategoryGeneral
	if !repeat {
		if mark := p.findLandmark(ctx, city, res.Topic, landmark.CategoryGeneral); mark != nil {
			applyLandmark(res, mark, area)
			res.Coordinates = p.locate(ctx, res.LocationName, mark)
			return
		}
	}

	code, ok := landmark.CountryOf(area)
	if !ok && p.reverse != nil && !res.Coordinates.IsZero() {
		if place, err := p.reverse.Reverse(ctx, res.Coordinates); err == nil {
			code, ok = place.CountryCode, true
		} else {
			log.Debug().Err(err).Str("location", area).Msg("Reverse geocode failed")
		}
	}
	if !ok {
		return
	}

	if def, found := landmark.CountryDefault(code, res.Category); found {
		res.LocationName = def.Name
		res.Landmark = landmarkName(def.Name)
		res.Coordinates = def.Location
		res.Reasoning = withLandmarkReasoning(res.Reasoning, res.Landmark, res.Category)
	}
}

func applyLandmark(res *models.LocationResult, mark *landmark.Landmark, area string) {
	res.Landmark = mark.Name
	if !strings.Contains(strings.ToLower(area), strings.ToLower(mark.Name)) {
		res.LocationName = mark.Name + ", " + area
	}
	res.Reasoning = withLandmarkReasoning(res.Reasoning, mark.Name, res.Category)
}

func withLandmarkReasoning(reasoning, name, category string) string {
	reasoning = strings.TrimSpace(reasoning)
	note := fmt.Sprintf("The story is anchored at %s, the most prominent %s landmark for this location.", name, category)
	if reasoning == "" {
		return note
	}
	return reasoning + " " + note
}

func landmarkName(label string) string {
	name, _, _ := strings.Cut(label, ",")
	return strings.TrimSpace(name)
}

func stringField(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := obj[k].(string); ok && strings.TrimSpace(s) != "" {
			return strings.TrimSpace(s)
		}
	}
	return ""
}

func clampConfidence(v any) float64 {
	c := defaultConfidence
	switch t := v.(type) {
	case float64:
		c = t
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(t), 64); err == nil {
			c = f
		}
	}
	switch {
	case c < 0:
		return 0
	case c > 1:
		return 1
	}
	return c
}

var financialKeywords = []string{
	"stock", "stocks", "market", "markets", "shares", "earnings", "revenue", "profit", "bank",
	"interest rate", "inflation", "fed", "investor", "investors", "trading", "economy", "ipo",
	"merger", "acquisition", "bond", "bonds", "currency", "crypto", "bitcoin", "nasdaq", "dow",
}

// Categorize labels an article financial or political. The generator is asked
// first; keyword matching decides when it is absent or unusable.
func (p *Pipeline) Categorize(ctx context.Context, article models.Article) string {
	if p.gen != nil {
		out, err := p.gen.Generate(ctx, llm.GenerateRequest{
			User:        buildCategorizePrompt(article),
			Temperature: 0.1,
			MaxTokens:   10,
		})
		if err == nil {
			answer := strings.ToLower(out.Text)
			switch {
			case strings.Contains(answer, models.CategoryFinancial):
				return models.CategoryFinancial
			case strings.Contains(answer, models.CategoryPolitical):
				return models.CategoryPolitical
			}
		} else {
			log.Warn().Err(err).Str("title", article.Title).Msg("Categorization failed")
		}
	}
	return keywordCategory(article)
}

func keywordCategory(article models.Article) string {
	text := " " + strings.ToLower(article.Title+" "+article.Summary) + " "
	for _, kw := range financialKeywords {
		if strings.Contains(text, " "+kw+" ") {
			return models.CategoryFinancial
		}
	}
	return models.CategoryPolitical
}
