// Package config loads application settings from configs/config.yml, an optional
// .env file and APP_-prefixed environment variables.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StoreMemory = "memory"
	StoreRedis  = "redis"

	releaseMode = "release"
	envPrefix   = "APP"
)

type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Log     LogConfig     `mapstructure:"log"`
	DB      DBConfig      `mapstructure:"db"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Session SessionConfig `mapstructure:"session"`
	Redis   RedisConfig   `mapstructure:"redis"`
}

type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	Mode        string   `mapstructure:"mode"` // gin mode: debug | release | test
	CORSOrigins []string `mapstructure:"cors_origins"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DBConfig struct {
	Driver string `mapstructure:"driver"`
	Path   string `mapstructure:"path"`
	DSN    string `mapstructure:"dsn"`
}

type AuthConfig struct {
	BcryptCost        int `mapstructure:"bcrypt_cost"`
	MinPasswordLength int `mapstructure:"min_password_length"`
}

type SessionConfig struct {
	Store         string        `mapstructure:"store"`
	TTL           time.Duration `mapstructure:"ttl"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	Secret        string        `mapstructure:"secret"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// IsRelease reports whether the server runs in gin release mode.
func (c *Config) IsRelease() bool { return c.Server.Mode == releaseMode }

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.mode", releaseMode)
	v.SetDefault("server.cors_origins", []string{})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("db.dsn", "")

	v.SetDefault("auth.bcrypt_cost", 12)
	v.SetDefault("auth.min_password_length", 4)

	v.SetDefault("session.store", StoreMemory)
	v.SetDefault("session.ttl", time.Hour)
	v.SetDefault("session.cookie_name", "sid")
	v.SetDefault("session.cookie_secure", false)
	v.SetDefault("session.secret", "")
	v.SetDefault("session.sweep_interval", time.Minute)

	v.SetDefault("redis.addr", "127.0.0.1:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
}

// Load reads config.yml from dir (a missing file is fine), then applies
// environment overrides such as APP_SERVER_PORT or APP_SESSION_SECRET.
func Load(dir string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case DriverSQLite:
	case DriverPostgres:
		if c.DB.DSN == "" {
			return errors.New("db.dsn is required for the postgres driver")
		}
	default:
		return fmt.Errorf("unknown db.driver %q", c.DB.Driver)
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown session.store %q", c.Session.Store)
	}

	if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
		return fmt.Errorf("auth.bcrypt_cost must be within [%d, %d], got %d", bcrypt.MinCost, bcrypt.MaxCost, c.Auth.BcryptCost)
	}
	if c.Auth.MinPasswordLength < 1 {
		return fmt.Errorf("auth.min_password_length must be positive, got %d", c.Auth.MinPasswordLength)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session.ttl must be positive, got %s", c.Session.TTL)
	}
	if c.Session.Store == StoreMemory && c.Session.SweepInterval <= 0 {
		return fmt.Errorf("session.sweep_interval must be positive, got %s", c.Session.SweepInterval)
	}
	if c.Session.CookieName == "" {
		return errors.New("session.cookie_name is required")
	}
	if c.IsRelease() && c.Session.Secret == "" {
		return errors.New("session.secret is required in release mode")
	}
	return nil
}
