package cache

import (
	"crypto/sha1"
	"fmt"
	"strings"
	"time"
)

const (
	GeocodeTTL      = 30 * 24 * time.Hour
	WeeklyClosesTTL = 6 * time.Hour
	RateLimitWindow = time.Minute
)

// GeocodeKey generates Redis key for a normalized geocode query
func GeocodeKey(normalized string) string {
	hash := sha1.Sum([]byte(normalized))
	return fmt.Sprintf("atlas:v1:geocode:%x", hash)
}

// WeeklyClosesKey generates Redis key for a symbol's weekly close history
func WeeklyClosesKey(provider, symbol string, months int) string {
	return fmt.Sprintf("atlas:v1:closes:%s:%s:%d", provider, strings.ToUpper(symbol), months)
}

// RateLimitKey generates Redis key for the client's current rate window
func RateLimitKey(clientIP string, window time.Time) string {
	return fmt.Sprintf("ratelimit:ip:%s:%d", clientIP, window.Unix())
}

// ArticleKey generates Redis key for a stored located article
func ArticleKey(id string) string {
	return fmt.Sprintf("atlas:v1:article:%s", id)
}

const (
	ArticlesByTimeKey       = "atlas:v1:articles:by_time"
	ArticlesByPopularityKey = "atlas:v1:articles:by_popularity"
	ArticlesGeoKey          = "atlas:v1:articles:geo"
)

// ArticlesByCategoryKey generates Redis key for a category's time index
func ArticlesByCategoryKey(category string) string {
	return fmt.Sprintf("atlas:v1:articles:category:%s", strings.ToLower(category))
}

func LockKey(key string) string {
	return "lock:" + key
}
