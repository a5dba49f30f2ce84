package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	_ "github.com/joho/godotenv/autoload"
)

const (
	CacheBackendRedis = "redis"
	CacheBackendMongo = "mongo"
)

// Config holds all application configuration
type Config struct {
	Env      string `env:"ENV" envDefault:"dev"`
	Server   ServerConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	Auth     AuthConfig
	Cache    CacheConfig
	Sessions SessionConfig
	NewsAPI  NewsAPIConfig
}

type ServerConfig struct {
	Port        string   `env:"SERVER_PORT" envDefault:":8080"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"http://localhost:3000"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI" envDefault:"mongodb://localhost:27017"`
	Database string `env:"MONGO_DB" envDefault:"citizens_connect"`
}

// RedisConfig covers both the cache client and the realtime pub/sub channels.
type RedisConfig struct {
	URL               string `env:"REDIS_URL" envDefault:"redis://localhost:6379/0"`
	ServerChannel     string `env:"SERVER_CHANNEL" envDefault:"citizens:server"`
	BroadcastChannel  string `env:"BROADCAST_CHANNEL" envDefault:"citizens:clients"`
	UserChannelPrefix string `env:"USER_CHANNEL_PREFIX" envDefault:"citizens:user:"`
	KeyPrefix         string `env:"REDIS_KEY_PREFIX" envDefault:""`
}

// AuthConfig: a non-empty JWTSecret verifies tokens locally, otherwise the auth service is asked.
type AuthConfig struct {
	ServiceURL string `env:"AUTH_SERVICE_URL" envDefault:"http://auth-service:8081"`
	JWTSecret  string `env:"JWT_SECRET"`
}

type CacheConfig struct {
	Backend         string        `env:"CACHE_BACKEND" envDefault:"redis"`
	FreshnessWindow time.Duration `env:"FRESHNESS_WINDOW" envDefault:"24h"`
	CheckInterval   time.Duration `env:"REFRESH_CHECK_INTERVAL" envDefault:"1h"`
	OnlineLimit     int           `env:"ONLINE_ISSUE_LIMIT" envDefault:"50"`
}

type SessionConfig struct {
	IdleTTL       time.Duration `env:"SESSION_IDLE_TTL" envDefault:"2h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"10m"`
}

type NewsAPIConfig struct {
	URL     string        `env:"NEWS_API_URL" envDefault:"https://newsapi.org/v2/everything"`
	Key     string        `env:"NEWS_API_KEY"`
	Query   string        `env:"NEWS_API_QUERY" envDefault:"civic issues OR infrastructure OR public services"`
	Timeout time.Duration `env:"NEWS_API_TIMEOUT" envDefault:"10s"`
}

// NewConfig creates a new Config
func NewConfig() (*Config, error) {
	cfg := new(Config)
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Cache.Backend {
	case CacheBackendRedis, CacheBackendMongo:
	default:
		return fmt.Errorf("CACHE_BACKEND must be %q or %q, got %q", CacheBackendRedis, CacheBackendMongo, c.Cache.Backend)
	}
	if c.Cache.FreshnessWindow <= 0 {
		return fmt.Errorf("FRESHNESS_WINDOW must be positive")
	}
	if c.Cache.CheckInterval <= 0 {
		return fmt.Errorf("REFRESH_CHECK_INTERVAL must be positive")
	}
	return nil
}
