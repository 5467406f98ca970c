package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v6"
)

// ServerCfg is http server configuration
type ServerCfg struct {
	Port            int           `env:"PORT" envDefault:"3000"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ConnectTimeout  time.Duration `env:"DATASOURCE_CONNECT_TIMEOUT" envDefault:"5s"`
}

// PostgresCfg is postgres connection configuration
type PostgresCfg struct {
	User        string `env:"POSTGRES_USER"`
	Password    string `env:"POSTGRES_PASSWORD"`
	Host        string `env:"POSTGRES_HOST" envDefault:"pg-customers"`
	Port        int    `env:"POSTGRES_PORT" envDefault:"5432"`
	Database    string `env:"POSTGRES_DB"`
	SslMode     string `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	PoolMaxConn int    `env:"POSTGRES_POOL_MAX_CONN" envDefault:"100"`
}

// MongoCfg is mongodb connection configuration
type MongoCfg struct {
	User        string `env:"MONGO_USER"`
	Password    string `env:"MONGO_PASSWORD"`
	Host        string `env:"MONGO_HOST" envDefault:"mongo-customers"`
	Port        int    `env:"MONGO_PORT" envDefault:"27017"`
	MaxPoolSize int    `env:"MONGO_MAX_POOL_SIZE" envDefault:"100"`
}

// RedisCfg is redis connection configuration
type RedisCfg struct {
	Host     string `env:"REDIS_HOST" envDefault:"redis-customers"`
	Port     int    `env:"REDIS_PORT" envDefault:"6379"`
	Password string `env:"REDIS_PASSWORD"`
	Db       int    `env:"REDIS_DB" envDefault:"0"`
}

// Config is application configuration
type Config struct {
	ServerCfg   ServerCfg
	PostgresCfg PostgresCfg
	MongoCfg    MongoCfg
	RedisCfg    RedisCfg
}

// Build parses application configuration from environment variables
func Build() (Config, error) {
	var cfg Config
	opts := env.Options{RequiredIfNoDef: true}

	if err := env.Parse(&cfg, opts); err != nil {
		return cfg, fmt.Errorf("failed to parse environment variables - %w", err)
	}
	return cfg, nil
}
