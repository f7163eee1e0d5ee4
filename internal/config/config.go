package config

import (
	"time"

	"github.com/caarlos0/env/v10"
)

// Config centraliza la configuración del servicio.
type Config struct {
	HTTPPort           string        `env:"HTTP_PORT" envDefault:"8080"`
	AppEnv             string        `env:"APP_ENV" envDefault:"production"`
	DatabaseURL        string        `env:"DATABASE_URL,required,notEmpty"`
	DBMaxConns         int32         `env:"DB_MAX_CONNS" envDefault:"10"`
	RedisAddr          string        `env:"REDIS_ADDR"`
	RedisPassword      string        `env:"REDIS_PASSWORD"`
	RedisDB            int           `env:"REDIS_DB" envDefault:"0"`
	ResultCacheTTL     time.Duration `env:"RESULT_CACHE_TTL" envDefault:"5m"`
	ResultCacheSize    int           `env:"RESULT_CACHE_SIZE" envDefault:"1024"`
	JWTSecret          string        `env:"JWT_SECRET"`
	JWTIssuer          string        `env:"JWT_ISSUER" envDefault:"recruit-admin"`
	ScoringMaxScale    float64       `env:"SCORING_MAX_SCALE" envDefault:"5"`
	TrustUpstreamScore bool          `env:"SCORING_TRUST_UPSTREAM_SCORE" envDefault:"false"`
	RankingConcurrency int           `env:"RANKING_CONCURRENCY" envDefault:"4"`
	RankingRateLimit   int           `env:"RANKING_RATE_LIMIT" envDefault:"10"`
}

// LoadConfig carga la configuración desde variables de entorno.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment indica si el servicio corre en modo desarrollo.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
