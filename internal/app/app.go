package app

import (
	"context"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/rs/zerolog/log"

	"news-atlas/internal/cache"
	"news-atlas/internal/config"
	"news-atlas/internal/events"
	httphandler "news-atlas/internal/http"
	"news-atlas/internal/ingest"
	"news-atlas/internal/middleware"
	"news-atlas/internal/repo"
	"news-atlas/internal/retry"
	"news-atlas/internal/services/forecast"
	"news-atlas/internal/services/geocode"
	"news-atlas/internal/services/landmark"
	"news-atlas/internal/services/llm"
	"news-atlas/internal/services/location"
	"news-atlas/internal/services/market"
	"news-atlas/internal/services/news"
	"news-atlas/internal/services/refresh"
)

// App holds every wired component. Build it once per process.
type App struct {
	Config     *config.Config
	Cache      *cache.RedisCache
	Repository repo.Repository
	Generator  llm.TextGenerator
	Pipeline   *location.Pipeline
	Reconciler *forecast.Reconciler
	Portfolio  *forecast.Portfolio
	News       *news.NewsService
	Scheduler  *refresh.Scheduler
	Publisher  events.Publisher
	Limiter    middleware.Limiter
	Checks     map[string]httphandler.ReadinessCheck

	closers []func()
}

// Build wires the application from cfg. Optional dependencies that are not
// configured are replaced by in-process or degraded implementations.
func Build(ctx context.Context, cfg *config.Config) (*App, error) {
	a := &App{Config: cfg, Checks: map[string]httphandler.ReadinessCheck{}}

	for _, w := range cfg.Validate() {
		log.Warn().Msg(w)
	}

	if cfg.Redis.Addr != "" {
		c, err := cache.NewRedisCache(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			return nil, err
		}
		a.Cache = c
		a.Checks["redis"] = c.Ping
		a.onClose(func() { _ = c.Close() })
	}

	if err := a.buildRepository(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.Generator = buildGenerator(cfg)
	a.Pipeline = a.buildPipeline()

	var finnhubClient *finnhub.DefaultApiService
	if cfg.Finnhub.APIKey != "" {
		finnhubClient = market.NewFinnhubClient(cfg.Finnhub.APIKey)
	}
	a.Reconciler = forecast.NewReconciler(a.Generator, a.buildMarket(finnhubClient), forecast.Config{
		Horizon:       cfg.Forecast.HorizonWeeks,
		HistoryMonths: cfg.Forecast.HistoryMonths,
		Concurrency:   cfg.Forecast.Concurrency,
	})
	var newsSource forecast.NewsSource
	if finnhubClient != nil {
		newsSource = forecast.NewFinnhubNews(finnhubClient, 0)
	}
	a.Portfolio = forecast.NewPortfolio(a.Reconciler, newsSource, cfg.Forecast.Concurrency)

	if err := a.buildPublisher(); err != nil {
		a.Close()
		return nil, err
	}

	a.News = news.NewNewsService(a.Repository, a.Pipeline, buildSources(cfg), news.WithPublisher(a.Publisher))
	a.Scheduler = refresh.NewScheduler(a.News, a.Cache, cfg.Refresh.Timeout)

	limits := middleware.RateLimitConfig{
		RequestsPerMinute: cfg.RateLimit.RequestsPerMinute,
		BurstSize:         cfg.RateLimit.Burst,
	}
	if a.Cache != nil {
		a.Limiter = middleware.NewRedisLimiter(a.Cache, limits)
	} else {
		a.Limiter = middleware.NewMemoryLimiter(limits)
	}

	return a, nil
}

func (a *App) onClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close releases connections in reverse order of creation.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *App) buildRepository(ctx context.Context) error {
	switch {
	case a.Config.Database.URL != "":
		pg, err := repo.NewPostgresRepository(ctx, a.Config.Database.URL)
		if err != nil {
			return err
		}
		a.Repository = pg
		a.Checks["postgres"] = pg.Ping
		a.onClose(pg.Close)
		log.Info().Msg("Storing articles in Postgres")
	case a.Cache != nil:
		a.Repository = repo.NewRedisRepository(a.Cache)
		log.Info().Msg("Storing articles in Redis")
	default:
		a.Repository = repo.NewMemoryRepository()
		log.Info().Msg("Storing articles in memory")
	}
	return nil
}

func buildGenerator(cfg *config.Config) llm.TextGenerator {
	policy := retry.DefaultPolicy()
	var gens []llm.TextGenerator

	if cfg.OpenAI.APIKey != "" {
		g, err := llm.NewOpenAIGenerator(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL)
		if err != nil {
			log.Warn().Err(err).Msg("OpenAI generator disabled")
		} else {
			gens = append(gens, llm.WithRetry(g, policy))
		}
	}
	if cfg.Anthropic.APIKey != "" {
		g, err := llm.NewAnthropicGenerator(cfg.Anthropic.APIKey, cfg.Anthropic.Model)
		if err != nil {
			log.Warn().Err(err).Msg("Anthropic generator disabled")
		} else {
			gens = append(gens, llm.WithRetry(g, policy))
		}
	}

	if len(gens) == 0 {
		return nil
	}
	return llm.NewChain(gens...)
}

func (a *App) buildPipeline() *location.Pipeline {
	cfg := a.Config

	var geoCache geocode.Cache
	if a.Cache != nil {
		geoCache = geocode.NewRedisCache(a.Cache, cache.GeocodeTTL)
	}

	nominatim := geocode.NewNominatim(cfg.Nominatim.URL, cfg.Nominatim.UserAgent)
	var primary geocode.Provider = nominatim
	var secondary geocode.Provider
	var reverse geocode.ReverseProvider = nominatim
	var places landmark.PlacesSearch

	if cfg.Google.MapsAPIKey != "" {
		google, err := geocode.NewGoogle(cfg.Google.MapsAPIKey)
		if err != nil {
			log.Warn().Err(err).Msg("Google Maps disabled")
		} else {
			primary, secondary = google, nominatim
			reverse = google
			places = landmark.NewGooglePlaces(google.Client())
		}
	}

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = cfg.Geocode.MaxAttempts
	policy.BaseDelay = cfg.Geocode.BaseDelay
	resolver := geocode.NewResolver(primary, secondary, geoCache, policy)

	var landmarks location.LandmarkFinder
	if places != nil {
		landmarks = landmark.NewResolver(places, resolver, landmark.Config{
			Thresholds:   landmark.Thresholds{MinProminence: cfg.Landmark.MinProminence},
			MaxQueries:   cfg.Landmark.MaxQueries,
			NearbyRadius: cfg.Landmark.NearbyRadius,
		})
	}

	return location.NewPipeline(a.Generator, resolver, landmarks, location.WithReverseGeocoder(reverse))
}

func (a *App) buildMarket(finnhubClient *finnhub.DefaultApiService) market.Provider {
	var provider market.Provider = market.NewYahoo(a.Config.Market.YahooURL)
	name := "yahoo"
	if a.Config.Market.Provider == "finnhub" && finnhubClient != nil {
		provider, name = market.NewFinnhub(finnhubClient), "finnhub"
	}
	if a.Cache != nil {
		return market.NewCached(provider, name, a.Cache, a.Config.Market.CacheTTL)
	}
	return provider
}

func (a *App) buildPublisher() error {
	if len(a.Config.Kafka.Brokers) == 0 {
		a.Publisher = events.NopPublisher{}
		return nil
	}
	p, err := events.NewKafkaPublisher(a.Config.Kafka.Brokers, a.Config.Kafka.Topic)
	if err != nil {
		return err
	}
	a.Publisher = p
	a.onClose(func() {
		if err := p.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close Kafka producer")
		}
	})
	log.Info().Strs("brokers", a.Config.Kafka.Brokers).Str("topic", a.Config.Kafka.Topic).Msg("Publishing located articles to Kafka")
	return nil
}

func buildSources(cfg *config.Config) []ingest.Source {
	var sources []ingest.Source
	if len(cfg.Refresh.FeedURLs) > 0 {
		var feeds ingest.Source = ingest.NewFeedSource(cfg.Refresh.FeedURLs, cfg.Refresh.MaxItems)
		if cfg.Refresh.ExtractContent {
			feeds = ingest.WithExtractor(feeds, ingest.NewExtractor(4, 15*time.Second))
		}
		sources = append(sources, feeds)
	}
	if cfg.Refresh.ArticleDir != "" {
		sources = append(sources, ingest.NewLoader(cfg.Refresh.ArticleDir))
	}
	if len(sources) == 0 {
		sources = append(sources, ingest.SampleSource{})
	}
	return sources
}

// NewHandler wires the HTTP routes for a.
func (a *App) NewHandler() *httphandler.Router {
	router := httphandler.NewRouter(httphandler.RouterConfig{
		Limiter:        a.Limiter,
		RequestTimeout: a.Config.Server.WriteTimeout,
	})
	router.RegisterHealthRoutes(a.Checks)
	router.RegisterNewsRoutes(httphandler.NewNewsHandler(a.News, a.Scheduler, a.Reconciler, a.Portfolio))
	return router
}
