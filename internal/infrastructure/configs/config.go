package configs

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hilthontt/encore/internal/infrastructure/env"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App         AppConfig         `koanf:"app"`
	HTTP        HTTPConfig        `koanf:"http"`
	Logger      LoggerConfig      `koanf:"logger"`
	Postgres    PostgresConfig    `koanf:"postgres"`
	Redis       RedisConfig       `koanf:"redis"`
	RabbitMQ    RabbitMQConfig    `koanf:"rabbitmq"`
	Mongo       MongoConfig       `koanf:"mongo"`
	Audit       AuditConfig       `koanf:"audit"`
	Session     SessionConfig     `koanf:"session"`
	RateLimiter RateLimiterConfig `koanf:"rateLimiter"`
	LiveQuery   LiveQueryConfig   `koanf:"live_query"`
	Mail        MailConfig        `koanf:"mail"`
	Tracing     TracingConfig     `koanf:"tracing"`
	Sentry      SentryConfig      `koanf:"sentry"`
}

type AppConfig struct {
	Name    string `koanf:"name"`
	Env     string `koanf:"env"`
	Version string `koanf:"version"`
}

func (c AppConfig) IsProduction() bool {
	return c.Env == "production" || c.Env == "release"
}

type HTTPConfig struct {
	Host           string        `koanf:"host"`
	Port           uint16        `koanf:"port"`
	AllowedOrigins []string      `koanf:"allowed_origins"`
	AllowedHeaders []string      `koanf:"allowed_headers"`
	ReadTimeout    time.Duration `koanf:"read_timeout"`
	WriteTimeout   time.Duration `koanf:"write_timeout"`
	IdleTimeout    time.Duration `koanf:"idle_timeout"`
}

func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type LoggerConfig struct {
	Level      string `koanf:"level"`
	Encoding   string `koanf:"encoding"`
	FilePath   string `koanf:"file_path"`
	MaxSizeMB  int    `koanf:"max_size_mb"`
	MaxBackups int    `koanf:"max_backups"`
	MaxAgeDays int    `koanf:"max_age_days"`
}

type PostgresConfig struct {
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	SlowThreshold   time.Duration `koanf:"slow_threshold"`
}

type RedisConfig struct {
	Addr     string `koanf:"addr"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type RabbitMQConfig struct {
	URL      string `koanf:"url"`
	Exchange string `koanf:"exchange"`
	Queue    string `koanf:"queue"`
}

func (c RabbitMQConfig) Enabled() bool {
	return c.URL != ""
}

type MongoConfig struct {
	URI      string        `koanf:"uri"`
	Database string        `koanf:"database"`
	Timeout  time.Duration `koanf:"timeout"`
}

type AuditConfig struct {
	// Driver is postgres or mongo.
	Driver string `koanf:"driver"`
}

type SessionConfig struct {
	Secret     string        `koanf:"secret"`
	TTL        time.Duration `koanf:"ttl"`
	CookieName string        `koanf:"cookie_name"`
	Secure     bool          `koanf:"secure"`
	Issuer     string        `koanf:"issuer"`
}

type RateLimiterConfig struct {
	MaxRatePerSecond int           `koanf:"maxRatePerSecond"`
	MaxBurst         int           `koanf:"maxBurst"`
	CacheTTL         time.Duration `koanf:"cacheTTL"`
	SourceHeaderKey  string        `koanf:"sourceHeaderKey"`
}

type LiveQueryConfig struct {
	Channel string `koanf:"channel"`
}

type MailConfig struct {
	APIKey         string        `koanf:"api_key"`
	BaseURL        string        `koanf:"base_url"`
	From           string        `koanf:"from"`
	Timeout        time.Duration `koanf:"timeout"`
	DigestTo       string        `koanf:"digest_to"`
	DigestSchedule string        `koanf:"digest_schedule"`
}

func (c MailConfig) Enabled() bool {
	return c.APIKey != ""
}

type TracingConfig struct {
	// Exporter is otlp, jaeger or none.
	Exporter    string  `koanf:"exporter"`
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	SampleRatio float64 `koanf:"sample_ratio"`
}

type SentryConfig struct {
	DSN string `koanf:"dsn"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Load from YAML file if it exists
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file: %w", err)
		}
	}

	applyDefaults(k)
	applyEnvOverrides(k)

	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error

	if c.Postgres.DSN == "" {
		errs = append(errs, errors.New("postgres.dsn is required"))
	}
	if len(c.Session.Secret) < 32 {
		errs = append(errs, errors.New("session.secret must be at least 32 characters"))
	}
	switch c.Audit.Driver {
	case "postgres":
	case "mongo":
		if c.Mongo.URI == "" {
			errs = append(errs, errors.New("mongo.uri is required when audit.driver is mongo"))
		}
	default:
		errs = append(errs, fmt.Errorf("audit.driver must be postgres or mongo, got %q", c.Audit.Driver))
	}
	switch c.Tracing.Exporter {
	case "none", "otlp", "jaeger":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter must be otlp, jaeger or none, got %q", c.Tracing.Exporter))
	}
	if c.Mail.DigestTo != "" && !c.Mail.Enabled() {
		errs = append(errs, errors.New("mail.api_key is required when mail.digest_to is set"))
	}

	return errors.Join(errs...)
}

func applyDefaults(k *koanf.Koanf) {
	setDefault(k, "app.name", "encore")
	setDefault(k, "app.env", "development")
	setDefault(k, "app.version", "dev")

	// HTTP defaults
	setDefault(k, "http.host", "0.0.0.0")
	setDefault(k, "http.port", 8080)
	setDefault(k, "http.read_timeout", 10*time.Second)
	setDefault(k, "http.write_timeout", 30*time.Second)
	setDefault(k, "http.idle_timeout", 60*time.Second)
	setDefault(k, "http.allowed_origins", []string{"*"})
	setDefault(k, "http.allowed_headers", []string{"Content-Type", "Authorization"})

	setDefault(k, "logger.level", "info")
	setDefault(k, "logger.encoding", "console")
	setDefault(k, "logger.max_size_mb", 100)
	setDefault(k, "logger.max_backups", 5)
	setDefault(k, "logger.max_age_days", 14)

	setDefault(k, "postgres.max_open_conns", 20)
	setDefault(k, "postgres.max_idle_conns", 5)
	setDefault(k, "postgres.conn_max_lifetime", 30*time.Minute)
	setDefault(k, "postgres.slow_threshold", 200*time.Millisecond)

	setDefault(k, "rabbitmq.exchange", "encore.events")
	setDefault(k, "rabbitmq.queue", "encore.notifications")

	setDefault(k, "mongo.database", "encore")
	setDefault(k, "mongo.timeout", 10*time.Second)

	setDefault(k, "audit.driver", "postgres")

	setDefault(k, "session.ttl", 12*time.Hour)
	setDefault(k, "session.cookie_name", "encore_session")
	setDefault(k, "session.issuer", "encore")

	// Login limiter defaults
	setDefault(k, "rateLimiter.maxRatePerSecond", 1)
	setDefault(k, "rateLimiter.maxBurst", 5)
	setDefault(k, "rateLimiter.cacheTTL", 5*time.Minute)
	setDefault(k, "rateLimiter.sourceHeaderKey", "X-Forwarded-For")

	setDefault(k, "live_query.channel", "encore:changes")

	setDefault(k, "mail.base_url", "https://api.resend.com")
	setDefault(k, "mail.timeout", 10*time.Second)
	setDefault(k, "mail.digest_schedule", "@every 1h")

	setDefault(k, "tracing.exporter", "none")
	setDefault(k, "tracing.service_name", "encore")
	setDefault(k, "tracing.sample_ratio", 1.0)
}

func applyEnvOverrides(k *koanf.Koanf) {
	if appEnv := env.GetString("ENCORE_ENV", ""); appEnv != "" {
		k.Set("app.env", appEnv)
	}

	// HTTP config from env
	if host := env.GetString("ENCORE_HTTP_HOST", ""); host != "" {
		k.Set("http.host", host)
	}
	if port := env.GetInt("ENCORE_HTTP_PORT", 0); port > 0 {
		k.Set("http.port", port)
	}
	if origins := env.GetString("ENCORE_ALLOWED_ORIGINS", ""); origins != "" {
		k.Set("http.allowed_origins", strings.Split(origins, ","))
	}

	if level := env.GetString("LOGGER_LEVEL", ""); level != "" {
		k.Set("logger.level", level)
	}
	if path := env.GetString("LOGGER_FILE_PATH", ""); path != "" {
		k.Set("logger.file_path", path)
	}

	if dsn := env.GetString("POSTGRES_DSN", ""); dsn != "" {
		k.Set("postgres.dsn", dsn)
	}
	if addr := env.GetString("REDIS_ADDR", ""); addr != "" {
		k.Set("redis.addr", addr)
	}
	if password := env.GetString("REDIS_PASSWORD", ""); password != "" {
		k.Set("redis.password", password)
	}
	if url := env.GetString("RABBITMQ_URL", ""); url != "" {
		k.Set("rabbitmq.url", url)
	}
	if uri := env.GetString("MONGO_URI", ""); uri != "" {
		k.Set("mongo.uri", uri)
	}
	if driver := env.GetString("AUDIT_DRIVER", ""); driver != "" {
		k.Set("audit.driver", driver)
	}

	if secret := env.GetString("SESSION_SECRET", ""); secret != "" {
		k.Set("session.secret", secret)
	}
	if ttl := env.GetDuration("SESSION_TTL", 0); ttl > 0 {
		k.Set("session.ttl", ttl)
	}

	// Rate limiter config from env
	if maxRate := env.GetInt("RATE_LIMIT_MAX_RATE_PER_SECOND", 0); maxRate > 0 {
		k.Set("rateLimiter.maxRatePerSecond", maxRate)
	}
	if maxBurst := env.GetInt("RATE_LIMIT_MAX_BURST", 0); maxBurst > 0 {
		k.Set("rateLimiter.maxBurst", maxBurst)
	}

	if key := env.GetString("MAIL_API_KEY", ""); key != "" {
		k.Set("mail.api_key", key)
	}
	if from := env.GetString("MAIL_FROM", ""); from != "" {
		k.Set("mail.from", from)
	}
	if to := env.GetString("MAIL_DIGEST_TO", ""); to != "" {
		k.Set("mail.digest_to", to)
	}

	if exporter := env.GetString("TRACING_EXPORTER", ""); exporter != "" {
		k.Set("tracing.exporter", exporter)
	}
	if endpoint := env.GetString("TRACING_ENDPOINT", ""); endpoint != "" {
		k.Set("tracing.endpoint", endpoint)
	}

	if dsn := env.GetString("SENTRY_DSN", ""); dsn != "" {
		k.Set("sentry.dsn", dsn)
	}
}

// setDefault only sets the value if the key doesn't already exist
func setDefault(k *koanf.Koanf, key string, value any) {
	if !k.Exists(key) {
		k.Set(key, value)
	}
}
