package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Auth    AuthConfig
	Log     LogConfig
	Render  RenderConfig
	Fetch   FetchConfig
	Store   StoreConfig
	Webhook WebhookConfig
	Proxy   ProxyConfig
	Cache   CacheConfig
	CSS     CSSConfig
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Host string // default: "0.0.0.0"
	Port int    // default: 8080
	Mode string // "debug", "release", "test"; default: "release"

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout time.Duration // default: 5s
}

// AuthConfig controls API key authentication.
type AuthConfig struct {
	// Enabled toggles API key authentication.
	Enabled bool // default: false

	// APIKeys is the list of valid API keys.
	APIKeys []string
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level  string // default: "info"
	Format string // "json" or "text"; default: "json"
}

// Render modes for the primary fetch path.
const (
	RenderBrowserless = "browserless"
	RenderCDP         = "cdp"
	RenderOff         = "off"
)

// RenderConfig controls the rendering-capable primary fetch path.
type RenderConfig struct {
	// Mode selects the primary engine: browserless, cdp or off.
	Mode string // default: "browserless"

	// BrowserlessURL is the base URL of the rendering service.
	BrowserlessURL string // default: "https://chrome.browserless.io"
	Token          string

	// CDPURL is the DevTools websocket used when Mode is cdp.
	CDPURL string

	// Stealth applies go-rod/stealth evasions in cdp mode.
	Stealth bool // default: true

	// Settle is how long scripts get to settle before HTML is captured.
	Settle time.Duration // default: 3s

	// Timeout bounds one primary fetch.
	Timeout time.Duration // default: 60s
}

// FetchConfig controls the plain-HTTP fallback.
type FetchConfig struct {
	HTTPTimeout time.Duration // default: 30s
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreMongo  = "mongo"
	StoreRedis  = "redis"
)

// StoreConfig selects and configures the session store.
type StoreConfig struct {
	Backend string // memory, mongo or redis; default: "memory"

	MongoURI        string // default: "mongodb://localhost:27017"
	MongoDatabase   string // default: "harvest"
	MongoCollection string // default: "sessions"
	MongoScrapes    string // default: "scrapes"

	RedisAddr     string // default: "localhost:6379"
	RedisPassword string
	RedisDB       int
	RedisPrefix   string // default: "harvest"

	ConnectTimeout time.Duration // default: 10s
}

// WebhookConfig controls session delivery.
type WebhookConfig struct {
	Timeout time.Duration // default: 30s

	// Secret signs payloads with HMAC-SHA256 when set.
	Secret string
}

// ProxyConfig controls the proxy rewriter.
type ProxyConfig struct {
	Timeout time.Duration // default: 30s
}

// CacheConfig controls the extraction result cache.
type CacheConfig struct {
	// MaxEntries is the maximum number of cached results. 0 disables caching.
	MaxEntries int // default: 1000

	TTL time.Duration // default: 1h
}

// CSSConfig bounds external stylesheet inlining.
type CSSConfig struct {
	Timeout     time.Duration // default: 10s per stylesheet
	Concurrency int           // default: 4
	MaxSheets   int           // default: 20
}

// Load reads configuration from environment variables with sane defaults.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            envOr("HARVEST_HOST", "0.0.0.0"),
			Port:            envIntOr("HARVEST_PORT", 8080),
			Mode:            envOr("HARVEST_MODE", "release"),
			ShutdownTimeout: envDurationOr("HARVEST_SHUTDOWN_TIMEOUT", 5*time.Second),
		},
		Auth: AuthConfig{
			Enabled: envBoolOr("HARVEST_AUTH_ENABLED", false),
			APIKeys: envSliceOr("HARVEST_API_KEYS", nil),
		},
		Log: LogConfig{
			Level:  envOr("HARVEST_LOG_LEVEL", "info"),
			Format: envOr("HARVEST_LOG_FORMAT", "json"),
		},
		Render: RenderConfig{
			Mode:           strings.ToLower(envOr("HARVEST_RENDER_MODE", RenderBrowserless)),
			BrowserlessURL: envOr("HARVEST_BROWSERLESS_URL", "https://chrome.browserless.io"),
			Token:          os.Getenv("HARVEST_BROWSERLESS_TOKEN"),
			CDPURL:         os.Getenv("HARVEST_CDP_URL"),
			Stealth:        envBoolOr("HARVEST_STEALTH", true),
			Settle:         envDurationOr("HARVEST_RENDER_SETTLE", 3*time.Second),
			Timeout:        envDurationOr("HARVEST_RENDER_TIMEOUT", 60*time.Second),
		},
		Fetch: FetchConfig{
			HTTPTimeout: envDurationOr("HARVEST_HTTP_TIMEOUT", 30*time.Second),
		},
		Store: StoreConfig{
			Backend:         strings.ToLower(envOr("HARVEST_STORE", StoreMemory)),
			MongoURI:        envOr("HARVEST_MONGO_URI", "mongodb://localhost:27017"),
			MongoDatabase:   envOr("HARVEST_MONGO_DB", "harvest"),
			MongoCollection: envOr("HARVEST_MONGO_COLLECTION", "sessions"),
			MongoScrapes:    envOr("HARVEST_MONGO_SCRAPES_COLLECTION", "scrapes"),
			RedisAddr:       envOr("HARVEST_REDIS_ADDR", "localhost:6379"),
			RedisPassword:   os.Getenv("HARVEST_REDIS_PASSWORD"),
			RedisDB:         envIntOr("HARVEST_REDIS_DB", 0),
			RedisPrefix:     envOr("HARVEST_REDIS_PREFIX", "harvest"),
			ConnectTimeout:  envDurationOr("HARVEST_STORE_CONNECT_TIMEOUT", 10*time.Second),
		},
		Webhook: WebhookConfig{
			Timeout: envDurationOr("HARVEST_WEBHOOK_TIMEOUT", 30*time.Second),
			Secret:  os.Getenv("HARVEST_WEBHOOK_SECRET"),
		},
		Proxy: ProxyConfig{
			Timeout: envDurationOr("HARVEST_PROXY_TIMEOUT", 30*time.Second),
		},
		Cache: CacheConfig{
			MaxEntries: envIntOr("HARVEST_CACHE_MAX_ENTRIES", 1000),
			TTL:        envDurationOr("HARVEST_CACHE_TTL", time.Hour),
		},
		CSS: CSSConfig{
			Timeout:     envDurationOr("HARVEST_CSS_TIMEOUT", 10*time.Second),
			Concurrency: envIntOr("HARVEST_CSS_CONCURRENCY", 4),
			MaxSheets:   envIntOr("HARVEST_CSS_MAX_SHEETS", 20),
		},
	}
}

// Validate rejects combinations the server cannot start with.
func (c *Config) Validate() error {
	switch c.Render.Mode {
	case RenderBrowserless, RenderOff:
	case RenderCDP:
		if c.Render.CDPURL == "" {
			return fmt.Errorf("config: HARVEST_CDP_URL is required when HARVEST_RENDER_MODE=cdp")
		}
	default:
		return fmt.Errorf("config: unknown HARVEST_RENDER_MODE %q", c.Render.Mode)
	}
	switch c.Store.Backend {
	case StoreMemory, StoreMongo, StoreRedis:
	default:
		return fmt.Errorf("config: unknown HARVEST_STORE %q", c.Store.Backend)
	}
	if c.Auth.Enabled && len(c.Auth.APIKeys) == 0 {
		return fmt.Errorf("config: HARVEST_AUTH_ENABLED requires HARVEST_API_KEYS")
	}
	return nil
}

// --- helper functions ---

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envIntOr(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func envBoolOr(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDurationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envSliceOr(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		return result
	}
	return fallback
}
