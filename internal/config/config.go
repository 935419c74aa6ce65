// AngelaMos | 2026
// config.go

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	App       AppConfig       `koanf:"app"`
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Redis     RedisConfig     `koanf:"redis"`
	RabbitMQ  RabbitMQConfig  `koanf:"rabbitmq"`
	Events    EventsConfig    `koanf:"events"`
	JWT       JWTConfig       `koanf:"jwt"`
	Auth      AuthConfig      `koanf:"auth"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	CORS      CORSConfig      `koanf:"cors"`
	Log       LogConfig       `koanf:"log"`
	Otel      OtelConfig      `koanf:"otel"`
}

type AppConfig struct {
	Name        string `koanf:"name"`
	Version     string `koanf:"version"`
	Environment string `koanf:"environment"`
}

type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// DatabaseConfig accepts either a full URL or the discrete DB_* parts;
// URL wins when both are present.
type DatabaseConfig struct {
	URL             string        `koanf:"url"`
	Name            string        `koanf:"name"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
	AutoMigrate     bool          `koanf:"auto_migrate"`
}

type RedisConfig struct {
	URL          string `koanf:"url"`
	PoolSize     int    `koanf:"pool_size"`
	MinIdleConns int    `koanf:"min_idle_conns"`
}

type RabbitMQConfig struct {
	URL          string        `koanf:"url"`
	Host         string        `koanf:"host"`
	Port         int           `koanf:"port"`
	User         string        `koanf:"user"`
	Password     string        `koanf:"password"`
	VHost        string        `koanf:"vhost"`
	DialTimeout  time.Duration `koanf:"dial_timeout"`
	DeclareQueue bool          `koanf:"declare_queue"`
}

type EventsConfig struct {
	BufferSize     int           `koanf:"buffer_size"`
	PublishTimeout time.Duration `koanf:"publish_timeout"`
	MaxAttempts    int           `koanf:"max_attempts"`
	RetryBackoff   time.Duration `koanf:"retry_backoff"`
}

type JWTConfig struct {
	SecretKey                string `koanf:"secret_key"`
	Algorithm                string `koanf:"algorithm"`
	AccessTokenExpireMinutes int    `koanf:"access_token_expire_minutes"`
}

func (j JWTConfig) AccessTokenTTL() time.Duration {
	return time.Duration(j.AccessTokenExpireMinutes) * time.Minute
}

type AuthConfig struct {
	AdminEmails []string `koanf:"admin_emails"`
}

type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
	Burst    int           `koanf:"burst"`
}

type CORSConfig struct {
	AllowedOrigins   []string `koanf:"allowed_origins"`
	AllowedMethods   []string `koanf:"allowed_methods"`
	AllowedHeaders   []string `koanf:"allowed_headers"`
	AllowCredentials bool     `koanf:"allow_credentials"`
	MaxAge           int      `koanf:"max_age"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type OtelConfig struct {
	Endpoint    string  `koanf:"endpoint"`
	ServiceName string  `koanf:"service_name"`
	Enabled     bool    `koanf:"enabled"`
	Insecure    bool    `koanf:"insecure"`
	SampleRate  float64 `koanf:"sample_rate"`
}

var (
	cfg  *Config
	once sync.Once
)

func Load(configPath string) (*Config, error) {
	var loadErr error

	once.Do(func() {
		k := koanf.New(".")

		if err := loadDefaults(k); err != nil {
			loadErr = fmt.Errorf("load defaults: %w", err)
			return
		}

		if configPath != "" && fileExists(configPath) {
			if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
				loadErr = fmt.Errorf("load config file: %w", err)
				return
			}
		}

		if err := k.Load(env.ProviderWithValue("", ".", envKeyValue), nil); err != nil {
			loadErr = fmt.Errorf("load env vars: %w", err)
			return
		}

		c := &Config{}
		if err := k.Unmarshal("", c); err != nil {
			loadErr = fmt.Errorf("unmarshal config: %w", err)
			return
		}

		c.resolve()

		if err := validate(c); err != nil {
			loadErr = fmt.Errorf("validate config: %w", err)
			return
		}

		cfg = c
	})

	if loadErr != nil {
		return nil, loadErr
	}

	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !errors.Is(err, fs.ErrNotExist)
}

func Get() *Config {
	if cfg == nil {
		panic("config not loaded: call Load() first")
	}
	return cfg
}

func defaults() map[string]any {
	return map[string]any{
		"app.name":        "Ticket System",
		"app.version":     "1.0.0",
		"app.environment": "development",

		"server.host":             "0.0.0.0",
		"server.port":             8000,
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "15s",

		"database.host":               "localhost",
		"database.port":               5432,
		"database.ssl_mode":           "disable",
		"database.max_open_conns":     25,
		"database.max_idle_conns":     5,
		"database.conn_max_lifetime":  "1h",
		"database.conn_max_idle_time": "30m",
		"database.auto_migrate":       true,

		"redis.pool_size":      10,
		"redis.min_idle_conns": 5,

		"rabbitmq.host":          "localhost",
		"rabbitmq.port":          5672,
		"rabbitmq.user":          "guest",
		"rabbitmq.password":      "guest",
		"rabbitmq.vhost":         "/",
		"rabbitmq.dial_timeout":  "5s",
		"rabbitmq.declare_queue": true,

		"events.buffer_size":     256,
		"events.publish_timeout": "5s",
		"events.max_attempts":    3,
		"events.retry_backoff":   "500ms",

		"jwt.algorithm":                   "HS256",
		"jwt.access_token_expire_minutes": 30,

		"rate_limit.requests": 100,
		"rate_limit.window":   "1m",
		"rate_limit.burst":    20,

		"cors.allowed_origins": []string{"http://localhost:3000"},
		"cors.allowed_methods": []string{
			"GET",
			"POST",
			"PUT",
			"PATCH",
			"DELETE",
			"OPTIONS",
		},
		"cors.allowed_headers": []string{
			"Accept",
			"Authorization",
			"Content-Type",
			"X-Request-ID",
		},
		"cors.allow_credentials": true,
		"cors.max_age":           300,

		"log.level":  "info",
		"log.format": "json",

		"otel.enabled":      false,
		"otel.insecure":     true,
		"otel.sample_rate":  0.1,
		"otel.service_name": "ticket-system",
	}
}

func loadDefaults(k *koanf.Koanf) error {
	for key, value := range defaults() {
		if err := k.Set(key, value); err != nil {
			return fmt.Errorf("set default %s: %w", key, err)
		}
	}

	return nil
}

var envKeyMap = map[string]string{
	"DATABASE_URL":                "database.url",
	"DB_NAME":                     "database.name",
	"DB_USER":                     "database.user",
	"DB_PASSWORD":                 "database.password",
	"DB_HOST":                     "database.host",
	"DB_PORT":                     "database.port",
	"DB_SSL_MODE":                 "database.ssl_mode",
	"AUTO_MIGRATE":                "database.auto_migrate",
	"REDIS_URL":                   "redis.url",
	"RABBITMQ_URL":                "rabbitmq.url",
	"RABBITMQ_HOST":               "rabbitmq.host",
	"RABBITMQ_PORT":               "rabbitmq.port",
	"RABBITMQ_USER":               "rabbitmq.user",
	"RABBITMQ_PASSWORD":           "rabbitmq.password",
	"RABBITMQ_VHOST":              "rabbitmq.vhost",
	"EVENTS_BUFFER_SIZE":          "events.buffer_size",
	"EVENTS_PUBLISH_TIMEOUT":      "events.publish_timeout",
	"EVENTS_MAX_ATTEMPTS":         "events.max_attempts",
	"ENVIRONMENT":                 "app.environment",
	"HOST":                        "server.host",
	"PORT":                        "server.port",
	"UNSEPARATED_CORS_ORIGINS":    "cors.allowed_origins",
	"LOG_LEVEL":                   "log.level",
	"LOG_FORMAT":                  "log.format",
	"SECRET_KEY":                  "jwt.secret_key",
	"ALGORITHM":                   "jwt.algorithm",
	"ACCESS_TOKEN_EXPIRE_MINUTES": "jwt.access_token_expire_minutes",
	"ADMIN_EMAILS":                "auth.admin_emails",
	"RATE_LIMIT_REQUESTS":         "rate_limit.requests",
	"RATE_LIMIT_WINDOW":           "rate_limit.window",
	"RATE_LIMIT_BURST":            "rate_limit.burst",
	"OTEL_ENDPOINT":               "otel.endpoint",
	"OTEL_EXPORTER_OTLP_ENDPOINT": "otel.endpoint",
	"OTEL_SERVICE_NAME":           "otel.service_name",
	"OTEL_ENABLED":                "otel.enabled",
	"OTEL_INSECURE":               "otel.insecure",
	"OTEL_SAMPLE_RATE":            "otel.sample_rate",
}

var listKeys = map[string]bool{
	"cors.allowed_origins": true,
	"auth.admin_emails":   true,
}

func envKeyValue(key, value string) (string, any) {
	mapped, ok := envKeyMap[key]
	if !ok {
		return "", nil
	}

	if listKeys[mapped] {
		return mapped, splitList(value)
	}

	return mapped, value
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// resolve derives connection URLs from their parts when no URL was given.
func (c *Config) resolve() {
	if c.Database.URL == "" && c.Database.Name != "" {
		c.Database.URL = c.Database.DSN()
	}

	if c.RabbitMQ.URL == "" && c.RabbitMQ.Host != "" {
		c.RabbitMQ.URL = c.RabbitMQ.AMQPURL()
	}

	c.JWT.Algorithm = strings.ToUpper(c.JWT.Algorithm)

	for i, email := range c.Auth.AdminEmails {
		c.Auth.AdminEmails[i] = strings.ToLower(email)
	}
}

func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   "/" + d.Name,
	}
	if d.SSLMode != "" {
		u.RawQuery = "sslmode=" + url.QueryEscape(d.SSLMode)
	}
	return u.String()
}

func (r RabbitMQConfig) AMQPURL() string {
	vhost := strings.TrimPrefix(r.VHost, "/")
	if r.VHost == "/" {
		vhost = url.PathEscape("/")
	}
	return fmt.Sprintf("amqp://%s@%s:%d/%s",
		url.UserPassword(r.User, r.Password).String(),
		r.Host,
		r.Port,
		vhost,
	)
}

var supportedAlgorithms = map[string]bool{
	"HS256": true,
	"HS384": true,
	"HS512": true,
}

func validate(c *Config) error {
	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL or DB_NAME is required")
	}

	if c.Redis.URL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.RabbitMQ.URL == "" {
		return fmt.Errorf("RABBITMQ_URL or RABBITMQ_HOST is required")
	}

	if c.JWT.SecretKey == "" {
		return fmt.Errorf("SECRET_KEY is required")
	}

	if !supportedAlgorithms[c.JWT.Algorithm] {
		return fmt.Errorf("unsupported ALGORITHM %q", c.JWT.Algorithm)
	}

	if c.JWT.AccessTokenExpireMinutes <= 0 {
		return fmt.Errorf("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}

	if c.CORS.AllowCredentials {
		for _, origin := range c.CORS.AllowedOrigins {
			if origin == "*" {
				return fmt.Errorf(
					"CORS wildcard '*' cannot be used with AllowCredentials",
				)
			}
		}
	}

	if c.App.Environment == "production" {
		if c.Otel.Enabled && c.Otel.Insecure {
			return fmt.Errorf("OTEL_INSECURE must be false in production")
		}
		if len(c.JWT.SecretKey) < 32 {
			return fmt.Errorf("SECRET_KEY must be at least 32 bytes in production")
		}
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server.read_timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server.write_timeout must be positive")
	}

	if c.Events.BufferSize <= 0 {
		return fmt.Errorf("events.buffer_size must be positive")
	}

	if c.Events.MaxAttempts <= 0 {
		return fmt.Errorf("events.max_attempts must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

func (s *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}
