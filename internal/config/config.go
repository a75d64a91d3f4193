package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"

	"taskapi/internal/utils"
)

// durationSeconds parses env as time.Duration: "10s", "5m" or a bare
// number of seconds (e.g. "10" -> 10s).
type durationSeconds time.Duration

// SetValue implements cleanenv.Setter.
func (d *durationSeconds) SetValue(data string) error {
	v, err := utils.ParseDurationEnv(data)
	if err != nil {
		return err
	}
	*d = durationSeconds(v)
	return nil
}

// Duration returns the parsed value as time.Duration.
func (d durationSeconds) Duration() time.Duration { return time.Duration(d) }

type Config struct {
	App   AppConfig
	HTTP  HTTPConfig
	PG    PGConfig
	Redis RedisConfig
	JWT   JWTConfig
	API   APIConfig
}

type AppConfig struct {
	Env     string `env:"APP_ENV" env-default:"dev"`
	Debug   bool   `env:"DEBUG" env-default:"false"`
	Version int    `env:"VERSION" env-default:"1"`
}

type HTTPConfig struct {
	Port string `env:"HTTP_PORT" env-default:"8080"`

	// Value: "10s", "5m" or a number of seconds without suffix.
	ReadTimeout  durationSeconds `env:"HTTP_READ_TIMEOUT" env-default:"10s"`
	WriteTimeout durationSeconds `env:"HTTP_WRITE_TIMEOUT" env-default:"10s"`
	IdleTimeout  durationSeconds `env:"HTTP_IDLE_TIMEOUT" env-default:"60s"`
}

type PGConfig struct {
	DSN string `env:"PG_DSN" env-required:"true"`
}

type RedisConfig struct {
	// Addr is "host:port". When neither Addr nor URL is set, the task
	// list cache is disabled.
	Addr     string `env:"REDIS_ADDR" env-default:""`
	Password string `env:"REDIS_PASSWORD" env-default:""`
	DB       int    `env:"REDIS_DB" env-default:"0"`
	// URL overrides Addr/Password/DB if set, e.g. redis://default:pw@host:6379
	URL string `env:"REDIS_URL" env-default:""`

	DefaultTTL durationSeconds `env:"REDIS_DEFAULT_TTL" env-default:"60"`
}

type JWTConfig struct {
	Secret     string          `env:"JWT_SECRET" env-required:"true"`
	AccessTTL  durationSeconds `env:"JWT_ACCESS_TTL" env-default:"5m"`
	RefreshTTL durationSeconds `env:"JWT_REFRESH_TTL" env-default:"24h"`
}

type APIConfig struct {
	Prefix      string   `env:"API_PREFIX" env-default:"/api/v1"`
	CORSOrigins []string `env:"CORS_ORIGINS" env-default:"*"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.Redis.URL != "" {
		addr, password, db, err := utils.ParseRedisURL(cfg.Redis.URL)
		if err != nil {
			return Config{}, fmt.Errorf("REDIS_URL: %w", err)
		}
		cfg.Redis.Addr = addr
		cfg.Redis.Password = password
		cfg.Redis.DB = db
	}
	if !strings.HasPrefix(cfg.API.Prefix, "/") {
		cfg.API.Prefix = "/" + cfg.API.Prefix
	}
	return cfg, nil
}

// CacheEnabled reports whether a Redis endpoint was configured.
func (c RedisConfig) CacheEnabled() bool { return c.Addr != "" }

// PortNumber validates and returns the HTTP port as an int.
func (c HTTPConfig) PortNumber() (int, error) {
	n, err := strconv.Atoi(c.Port)
	if err != nil || n <= 0 || n > 65535 {
		return 0, fmt.Errorf("invalid HTTP_PORT %q", c.Port)
	}
	return n, nil
}
