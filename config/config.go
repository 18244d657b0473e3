package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds application configuration loaded from environment variables
// Required values have no default; call Validate before using the config.
type Config struct {
	AppName string
	Env     string // development, staging, production
	Port    string
	GinMode string

	// Database
	DatabaseURL   string
	DBMaxConns    int32
	DBMinConns    int32
	DBMaxConnLife time.Duration
	MigrationsDir string

	// JWT
	JWTSecret    string
	JWTExpiresIn time.Duration
	BcryptCost   int

	// HTTP limits
	BodyLimitBytes   int64
	UploadLimitBytes int64
	RateLimitMax     int
	RateLimitWindow  time.Duration
	ShutdownOnPanic  bool
	TrustProxy       bool // honor CF-Connecting-IP / X-Forwarded-For

	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	BookCacheTTL  time.Duration

	// Google Cloud Storage
	GCSBucket              string
	GCSCredentialsJSONPath string // optional; if empty, Application Default Credentials are used

	// CORS
	CORSAllowedOrigins string // comma-separated

	// Mailgun
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunSender  string
	MailgunAPIBase string

	// RabbitMQ
	RabbitMQURL        string
	RabbitMQEmailQueue string

	// Elasticsearch
	ElasticsearchAddrs string // comma-separated
	ElasticsearchUser  string
	ElasticsearchPass  string
	ESBooksIndex       string

	// Link returned by GET /
	DocsURL string

	MailSendEnabled     bool
	DebugMetricsEnabled bool
}

// ErrMissingConfig is wrapped by Validate for every absent required variable.
var ErrMissingConfig = errors.New("missing required configuration")

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getbool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			log.Printf("invalid boolean for %s: %v, using default %v", key, err, def)
			return def
		}
		return b
	}
	return def
}

func getint(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			log.Printf("invalid int for %s: %v, using default %d", key, err, def)
			return def
		}
		return i
	}
	return def
}

func getdur(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := ParseDuration(v)
		if err != nil {
			log.Printf("invalid duration for %s: %v, using default %v", key, err, def)
			return def
		}
		return d
	}
	return def
}

// ParseDuration extends time.ParseDuration with a "d" (day) suffix, so
// JWT_EXPIRES_IN=90d works alongside 2160h.
func ParseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, err
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(s)
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		AppName: getenv("APP_NAME", "go-books-api"),
		Env:     getenv("APP_ENV", "development"),
		Port:    getenv("PORT", ""),
		GinMode: getenv("GIN_MODE", "release"),

		DatabaseURL:   getenv("DATABASE_URL", ""),
		DBMaxConns:    int32(getint("DB_MAX_CONNS", 10)),
		DBMinConns:    int32(getint("DB_MIN_CONNS", 2)),
		DBMaxConnLife: getdur("DB_MAX_CONN_LIFETIME", time.Hour),
		MigrationsDir: getenv("MIGRATIONS_DIR", "db/migrations"),

		JWTSecret:    getenv("JWT_SECRET", ""),
		JWTExpiresIn: getdur("JWT_EXPIRES_IN", 0),
		BcryptCost:   getint("BCRYPT_COST", 12),

		BodyLimitBytes:   int64(getint("BODY_LIMIT_BYTES", 10<<10)),
		UploadLimitBytes: int64(getint("UPLOAD_LIMIT_BYTES", 2<<20)),
		RateLimitMax:     getint("RATE_LIMIT_MAX", 100),
		RateLimitWindow:  getdur("RATE_LIMIT_WINDOW", time.Hour),
		ShutdownOnPanic:  getbool("SHUTDOWN_ON_PANIC", false),
		TrustProxy:       getbool("TRUST_PROXY", false),

		RedisAddr:     getenv("REDIS_ADDR", ""),
		RedisPassword: getenv("REDIS_PASSWORD", ""),
		RedisDB:       getint("REDIS_DB", 0),
		BookCacheTTL:  getdur("BOOK_CACHE_TTL", 5*time.Minute),

		GCSBucket:              getenv("GCS_BUCKET", ""),
		GCSCredentialsJSONPath: getenv("GCS_CREDENTIALS_JSON", ""),

		CORSAllowedOrigins: getenv("CORS_ALLOWED_ORIGINS", ""),

		MailgunDomain:  getenv("MAILGUN_DOMAIN", ""),
		MailgunAPIKey:  getenv("MAILGUN_API_KEY", ""),
		MailgunSender:  getenv("MAILGUN_SENDER", ""),
		MailgunAPIBase: getenv("MAILGUN_API_BASE", ""),

		RabbitMQURL:        getenv("RABBITMQ_URL", ""),
		RabbitMQEmailQueue: getenv("RABBITMQ_EMAIL_QUEUE", "emails"),

		ElasticsearchAddrs: getenv("ELASTICSEARCH_ADDRS", ""),
		ElasticsearchUser:  getenv("ELASTICSEARCH_USERNAME", ""),
		ElasticsearchPass:  getenv("ELASTICSEARCH_PASSWORD", ""),
		ESBooksIndex:       getenv("ES_BOOKS_INDEX", "books"),

		DocsURL: getenv("DOCS_URL", "https://documenter.getpostman.com/view/17965363/UVXjKbtn"),

		// Email sending toggle (default false; the worker and publisher need RabbitMQ)
		MailSendEnabled: getbool("MAIL_SEND_ENABLED", false),

		DebugMetricsEnabled: getbool("DEBUG_METRICS_ENABLED", false),
	}
}

// Validate reports every required variable that is absent. The server must
// not start when it returns an error.
func (c *Config) Validate() error {
	var errs []error
	if c.DatabaseURL == "" {
		errs = append(errs, missing("DATABASE_URL"))
	}
	if c.JWTSecret == "" {
		errs = append(errs, missing("JWT_SECRET"))
	}
	if c.JWTExpiresIn <= 0 {
		errs = append(errs, missing("JWT_EXPIRES_IN"))
	}
	if c.Port == "" {
		errs = append(errs, missing("PORT"))
	}
	return errors.Join(errs...)
}

func missing(key string) error {
	return &missingError{key: key}
}

type missingError struct{ key string }

func (e *missingError) Error() string { return ErrMissingConfig.Error() + ": " + e.key }
func (e *missingError) Unwrap() error { return ErrMissingConfig }

// IsDevelopment reports whether detailed errors may be sent to clients.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// CORSOrigins returns the allowed origins as slice
func (c *Config) CORSOrigins() []string {
	return splitList(c.CORSAllowedOrigins)
}

// ESAddrs returns Elasticsearch addresses as a slice
func (c *Config) ESAddrs() []string {
	return splitList(c.ElasticsearchAddrs)
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	res := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			res = append(res, p)
		}
	}
	return res
}
