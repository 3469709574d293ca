package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	OpenAI    OpenAIConfig
	Anthropic AnthropicConfig
	Google    GoogleConfig
	Nominatim NominatimConfig
	Finnhub   FinnhubConfig
	Geocode   GeocodeConfig
	Landmark  LandmarkConfig
	Forecast  ForecastConfig
	Market    MarketConfig
	Refresh   RefreshConfig
	Kafka     KafkaConfig
	RateLimit RateLimitConfig
	Log       LogConfig
}

type ServerConfig struct {
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig selects the article store. An empty URL keeps articles in
// Redis when it is configured, otherwise in memory.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables the shared caches. An empty Addr keeps caches in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
}

type AnthropicConfig struct {
	APIKey string
	Model  string
}

type GoogleConfig struct {
	MapsAPIKey string
}

type NominatimConfig struct {
	URL       string
	UserAgent string
}

type FinnhubConfig struct {
	APIKey string
}

type GeocodeConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

type LandmarkConfig struct {
	MinProminence float64
	MaxQueries    int
	NearbyRadius  int
}

type ForecastConfig struct {
	HorizonWeeks  int
	HistoryMonths int
	Concurrency   int
}

type MarketConfig struct {
	Provider string
	YahooURL string
	CacheTTL time.Duration
}

type RefreshConfig struct {
	Schedule   string
	Timeout    time.Duration
	FeedURLs   []string
	ArticleDir string
	MaxItems   int
	// ExtractContent fetches full article text for feed items.
	ExtractContent bool
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	Burst             int
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads .env (if present) and then the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			ReadTimeout:     getEnvAsDuration("READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("WRITE_TIMEOUT", 120*time.Second),
			IdleTimeout:     getEnvAsDuration("IDLE_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			URL: getEnv("POSTGRES_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		OpenAI: OpenAIConfig{
			APIKey:  getEnv("OPENAI_API_KEY", ""),
			Model:   getEnv("LLM_MODEL", "gpt-4o-mini"),
			BaseURL: getEnv("OPENAI_BASE_URL", ""),
		},
		Anthropic: AnthropicConfig{
			APIKey: getEnv("ANTHROPIC_API_KEY", ""),
			Model:  getEnv("ANTHROPIC_MODEL", ""),
		},
		Google: GoogleConfig{
			MapsAPIKey: getEnv("GOOGLE_MAPS_API_KEY", ""),
		},
		Nominatim: NominatimConfig{
			URL:       getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
			UserAgent: getEnv("NOMINATIM_USER_AGENT", "news_atlas_app"),
		},
		Finnhub: FinnhubConfig{
			APIKey: getEnv("FINNHUB_API_KEY", ""),
		},
		Geocode: GeocodeConfig{
			MaxAttempts: getEnvAsInt("GEOCODE_MAX_ATTEMPTS", 3),
			BaseDelay:   getEnvAsDuration("GEOCODE_BASE_DELAY", time.Second),
		},
		Landmark: LandmarkConfig{
			MinProminence: getEnvAsFloat("LANDMARK_MIN_PROMINENCE", 1000),
			MaxQueries:    getEnvAsInt("LANDMARK_MAX_QUERIES", 4),
			NearbyRadius:  getEnvAsInt("LANDMARK_NEARBY_RADIUS", 5000),
		},
		Forecast: ForecastConfig{
			HorizonWeeks:  getEnvAsInt("FORECAST_HORIZON_WEEKS", 8),
			HistoryMonths: getEnvAsInt("FORECAST_HISTORY_MONTHS", 12),
			Concurrency:   getEnvAsInt("FORECAST_CONCURRENCY", 4),
		},
		Market: MarketConfig{
			Provider: strings.ToLower(getEnv("MARKET_PROVIDER", "yahoo")),
			YahooURL: getEnv("YAHOO_URL", "https://query1.finance.yahoo.com"),
			CacheTTL: getEnvAsDuration("MARKET_CACHE_TTL", 6*time.Hour),
		},
		Refresh: RefreshConfig{
			Schedule:       getEnv("REFRESH_SCHEDULE", "@every 15m"),
			Timeout:        getEnvAsDuration("REFRESH_TIMEOUT", 10*time.Minute),
			FeedURLs:       getEnvAsList("FEED_URLS"),
			ArticleDir:     getEnv("ARTICLE_DIR", ""),
			MaxItems:       getEnvAsInt("FEED_MAX_ITEMS", 25),
			ExtractContent: getEnvAsBool("EXTRACT_CONTENT", false),
		},
		Kafka: KafkaConfig{
			Brokers: getEnvAsList("KAFKA_BROKERS"),
			Topic:   getEnv("KAFKA_TOPIC", "atlas.articles.located"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_RPM", 60),
			Burst:             getEnvAsInt("RATE_LIMIT_BURST", 10),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Pretty: getEnvAsBool("LOG_PRETTY", false),
		},
	}

	if err := cfg.check(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) check() error {
	switch c.Market.Provider {
	case "yahoo", "finnhub":
	default:
		return fmt.Errorf("MARKET_PROVIDER must be yahoo or finnhub, got %q", c.Market.Provider)
	}
	if c.Forecast.HorizonWeeks < 1 {
		return fmt.Errorf("FORECAST_HORIZON_WEEKS must be positive")
	}
	if c.Forecast.HistoryMonths < 1 {
		return fmt.Errorf("FORECAST_HISTORY_MONTHS must be positive")
	}
	return nil
}

// Validate reports missing optional settings. The service still starts; the
// affected features run degraded.
func (c *Config) Validate() []string {
	var warnings []string
	if c.OpenAI.APIKey == "" && c.Anthropic.APIKey == "" {
		warnings = append(warnings, "no OPENAI_API_KEY or ANTHROPIC_API_KEY: location uses keyword fallback and forecasts are disabled")
	}
	if c.Google.MapsAPIKey == "" {
		warnings = append(warnings, "no GOOGLE_MAPS_API_KEY: landmark search disabled, geocoding uses Nominatim only")
	}
	if c.Market.Provider == "finnhub" && c.Finnhub.APIKey == "" {
		warnings = append(warnings, "MARKET_PROVIDER=finnhub without FINNHUB_API_KEY: falling back to yahoo")
	}
	if c.Finnhub.APIKey == "" {
		warnings = append(warnings, "no FINNHUB_API_KEY: portfolio forecasts use synthetic market summaries")
	}
	if c.Redis.Addr == "" {
		warnings = append(warnings, "no REDIS_ADDR: caches are per process")
	}
	if len(c.Refresh.FeedURLs) == 0 && c.Refresh.ArticleDir == "" {
		warnings = append(warnings, "no FEED_URLS or ARTICLE_DIR: refresh uses built-in sample articles")
	}
	return warnings
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blanks.
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
