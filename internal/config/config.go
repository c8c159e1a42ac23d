// Package config provides centralized configuration management for sheetsite.
// It loads configuration from environment variables with sensible defaults,
// optionally overlays a site config file, and validates everything on startup
// to fail fast on misconfiguration.
package config

import (
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Sheet    SheetConfig
	Cache    CacheConfig
	Fetch    FetchConfig
	Site     SiteConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig

	// fromEnv keeps the values the site file may override, as the
	// environment set them.
	fromEnv *envValues
}

type envValues struct {
	siteSheetURL string
	site         SiteConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 15s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"15s"`

	// RequestTimeout is the middleware timeout for requests (default: 30s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"30s"`
}

// SheetConfig locates the Site sheet.
type SheetConfig struct {
	// SiteSheetURL is the Site sheet URL or bare ID. The Site sheet row names
	// the Pages sheet through its webpages_csv_url column.
	SiteSheetURL string `env:"SITE_SHEET_URL" envAlt:"SITE_SHEET_CSV"`

	// ConfigFile is an optional JSON or YAML file with a siteSheetCsv key
	ConfigFile string `env:"SITE_CONFIG_FILE"`

	// WatchConfigFile reloads ConfigFile when it changes (default: true)
	WatchConfigFile bool `env:"SITE_CONFIG_WATCH" default:"true"`
}

// CacheConfig selects the storage behind the versioned cache.
type CacheConfig struct {
	// Backend is one of: memory, file, postgres, sqlite (default: memory)
	Backend string `env:"CACHE_BACKEND" default:"memory"`

	// Prefix namespaces cache keys in the shared store (default: s2w:)
	Prefix string `env:"CACHE_PREFIX" default:"s2w:"`

	// PagesKey is the cache key for the Pages sheet (default: pagesSheet)
	PagesKey string `env:"CACHE_PAGES_KEY" default:"pagesSheet"`

	// Dir is the directory for the file backend
	Dir string `env:"CACHE_DIR" default:".sheetsite-cache"`

	// SQLitePath is the database file for the sqlite backend
	SQLitePath string `env:"CACHE_SQLITE_PATH" default:".sheetsite-cache/cache.db"`

	// DatabaseURL is the PostgreSQL connection string for the postgres backend
	DatabaseURL string `env:"CACHE_DATABASE_URL" envAlt:"DATABASE_URL"`
}

// FetchConfig controls remote sheet downloads.
type FetchConfig struct {
	// Timeout bounds a single sheet download (default: 15s)
	Timeout time.Duration `env:"FETCH_TIMEOUT" default:"15s"`

	// MaxBodySize is the largest accepted response in bytes (default: 10MB)
	MaxBodySize int64 `env:"FETCH_MAX_BODY_SIZE" default:"10485760"`

	// UserAgent is sent with every request
	UserAgent string `env:"FETCH_USER_AGENT" default:"sheetsite/1.0"`
}

// SiteConfig holds rendering defaults used when the Site sheet is silent.
type SiteConfig struct {
	// DefaultTitle is shown when the Site sheet has no title (default: Sito)
	DefaultTitle string `env:"SITE_DEFAULT_TITLE" default:"Sito"`

	// DefaultPageID is the home page when the Site sheet names none (default: home)
	DefaultPageID string `env:"SITE_DEFAULT_PAGE_ID" default:"home"`

	// DefaultTheme is used when neither visitor nor Site sheet picks one (default: default)
	DefaultTheme string `env:"SITE_DEFAULT_THEME" default:"default"`

	// DefaultCacheVersion applies when the Site sheet has no webpages_cache_version (default: v1)
	DefaultCacheVersion string `env:"SITE_DEFAULT_CACHE_VERSION" default:"v1"`

	// RefreshInterval reloads the sheets periodically; 0 disables (default: 5m)
	RefreshInterval time.Duration `env:"SITE_REFRESH_INTERVAL" default:"5m"`
}

// RateLimitConfig holds rate limiting settings.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the limit per client IP (default: 120)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"120"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: false,
	// since sheet content commonly embeds third-party scripts and media)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"false"`

	// EnableAPIMutations registers POST /api/refresh and /api/cache/clear.
	// They are unauthenticated, so they stay off unless asked for.
	EnableAPIMutations bool `env:"SECURITY_ENABLE_API_MUTATIONS" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// String returns a safe string representation of the config for logging.
// The database URL is masked.
func (c *Config) String() string {
	dbURL := ""
	if c.Cache.DatabaseURL != "" {
		dbURL = "[MASKED]"
	}

	var b strings.Builder
	b.WriteString("Config{")
	fmt.Fprintf(&b, "Server: {Host: %q, Port: %d}, ", c.Server.Host, c.Server.Port)
	fmt.Fprintf(&b, "Sheet: {SiteSheetURL: %q, ConfigFile: %q}, ", c.Sheet.SiteSheetURL, c.Sheet.ConfigFile)
	fmt.Fprintf(&b, "Cache: {Backend: %q, Prefix: %q, DatabaseURL: %q}, ", c.Cache.Backend, c.Cache.Prefix, dbURL)
	fmt.Fprintf(&b, "Fetch: {Timeout: %s, MaxBodySize: %d}, ", c.Fetch.Timeout, c.Fetch.MaxBodySize)
	fmt.Fprintf(&b, "Site: {DefaultPageID: %q, DefaultTheme: %q, RefreshInterval: %s}, ",
		c.Site.DefaultPageID, c.Site.DefaultTheme, c.Site.RefreshInterval)
	fmt.Fprintf(&b, "Rate: {Enabled: %v, RequestsPerMinute: %d}, ", c.Rate.Enabled, c.Rate.RequestsPerMinute)
	fmt.Fprintf(&b, "Logging: {Level: %q, Format: %q}", c.Logging.Level, c.Logging.Format)
	b.WriteString("}")
	return b.String()
}
