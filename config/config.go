package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// DefaultConfigFile is read when present; environment variables always win.
const DefaultConfigFile = ".env"

type Config struct {
	App      AppConfig
	Upstream UpstreamConfig
	Export   ExportConfig
	Session  SessionConfig
	DB       DBConfig
	Redis    RedisConfig
	JWT      JWTConfig
}

type AppConfig struct {
	Port     string
	Env      string
	LogLevel string
	Timezone string
	Location *time.Location
}

type UpstreamConfig struct {
	BaseURL     string
	FileBaseURL string
	Token       string
	Timeout     time.Duration
}

type ExportConfig struct {
	FetchConcurrency int
}

type SessionConfig struct {
	TTL time.Duration
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

// Enabled reports whether an audit database is configured.
func (c DBConfig) Enabled() bool {
	return c.Host != ""
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// Enabled reports whether sessions should live in Redis instead of process memory.
func (c RedisConfig) Enabled() bool {
	return c.Host != ""
}

type JWTConfig struct {
	Secret string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("UPSTREAM_TIMEOUT", "30s")
	v.SetDefault("EXPORT_FETCH_CONCURRENCY", 4)
	v.SetDefault("SESSION_TTL", "2h")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
}

// LoadConfig reads configuration from the given env file (optional) and the environment.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("env")
			if err := v.ReadInConfig(); err != nil {
				return nil, err
			}
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	upstreamTimeout, err := time.ParseDuration(v.GetString("UPSTREAM_TIMEOUT"))
	if err != nil {
		upstreamTimeout = 30 * time.Second
	}

	sessionTTL, err := time.ParseDuration(v.GetString("SESSION_TTL"))
	if err != nil {
		sessionTTL = 2 * time.Hour
	}

	timezone := v.GetString("APP_TIMEZONE")
	location, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid APP_TIMEZONE %q: %w", timezone, err)
	}

	baseURL := v.GetString("UPSTREAM_BASE_URL")
	if baseURL == "" {
		return nil, errors.New("UPSTREAM_BASE_URL is required")
	}
	fileBaseURL := v.GetString("UPSTREAM_FILE_BASE_URL")
	if fileBaseURL == "" {
		fileBaseURL = baseURL
	}

	concurrency := v.GetInt("EXPORT_FETCH_CONCURRENCY")
	if concurrency < 1 {
		concurrency = 1
	}

	config := &Config{
		App: AppConfig{
			Port:     v.GetString("APP_PORT"),
			Env:      v.GetString("APP_ENV"),
			LogLevel: v.GetString("LOG_LEVEL"),
			Timezone: timezone,
			Location: location,
		},
		Upstream: UpstreamConfig{
			BaseURL:     baseURL,
			FileBaseURL: fileBaseURL,
			Token:       v.GetString("UPSTREAM_TOKEN"),
			Timeout:     upstreamTimeout,
		},
		Export: ExportConfig{
			FetchConcurrency: concurrency,
		},
		Session: SessionConfig{
			TTL: sessionTTL,
		},
		DB: DBConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Name:     v.GetString("DB_NAME"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
		},
	}

	return config, nil
}

// Watch re-reads the env file whenever it changes on disk and hands the fresh
// config to onChange. Invalid reloads are reported through onError and dropped.
func Watch(path string, onChange func(*Config), onError func(error)) {
	if path == "" {
		return
	}
	if _, err := os.Stat(path); err != nil {
		return
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	if err := v.ReadInConfig(); err != nil {
		onError(err)
		return
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := fromViper(v)
		if err != nil {
			onError(err)
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
