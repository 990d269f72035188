package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	AppHost                string `toml:"app_host"`
	AppPort                string `toml:"app_port"`
	APIPrefix              string `toml:"api_prefix"`
	DatabaseDSN            string `toml:"database_dsn"`
	DatabaseMaxOpenConns   int    `toml:"database_max_open_conns"`
	DatabaseMaxIdleConns   int    `toml:"database_max_idle_conns"`
	RateLimit              int    `toml:"rate_limit_per_minute"`
	RedisEnabled           bool   `toml:"redis_enabled"`
	RedisHost              string `toml:"redis_host"`
	RedisPort              string `toml:"redis_port"`
	RedisKeyPrefix         string `toml:"redis_key_prefix"`
	RedisCacheTTLSeconds   int    `toml:"redis_cache_ttl_seconds"`
	ShutdownTimeoutSeconds int    `toml:"shutdown_timeout_seconds"`
}

func (c Config) AppURL() string {
	return fmt.Sprintf("%s:%s", c.AppHost, c.AppPort)
}

func (c Config) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisHost, c.RedisPort)
}

func Defaults() Config {
	return Config{
		AppHost:                "127.0.0.1",
		AppPort:                "8080",
		APIPrefix:              "/api",
		DatabaseDSN:            "todos.db",
		DatabaseMaxOpenConns:   5,
		DatabaseMaxIdleConns:   5,
		RateLimit:              120,
		RedisEnabled:           false,
		RedisHost:              "127.0.0.1",
		RedisPort:              "6379",
		RedisKeyPrefix:         "todo-api:",
		RedisCacheTTLSeconds:   60,
		ShutdownTimeoutSeconds: 20,
	}
}

// Load layers defaults, the optional TOML file at path, a .env file in
// the working directory and the process environment, in that order.
func Load(path string) (Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf(".env: %w", err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	cfg.AppHost = getEnv("APP_HOST", cfg.AppHost)
	cfg.AppPort = getEnv("APP_PORT", cfg.AppPort)
	cfg.APIPrefix = getEnv("API_PREFIX", cfg.APIPrefix)
	cfg.DatabaseDSN = getEnv("DATABASE_DSN", cfg.DatabaseDSN)
	cfg.RedisHost = getEnv("REDIS_HOST", cfg.RedisHost)
	cfg.RedisPort = getEnv("REDIS_PORT", cfg.RedisPort)
	cfg.RedisKeyPrefix = getEnv("REDIS_KEY_PREFIX", cfg.RedisKeyPrefix)

	var err error
	if cfg.DatabaseMaxOpenConns, err = getEnvAsInt("DATABASE_MAX_OPEN_CONNS", cfg.DatabaseMaxOpenConns); err != nil {
		return err
	}
	if cfg.DatabaseMaxIdleConns, err = getEnvAsInt("DATABASE_MAX_IDLE_CONNS", cfg.DatabaseMaxIdleConns); err != nil {
		return err
	}
	if cfg.RateLimit, err = getEnvAsInt("RATE_LIMIT_PER_MINUTE", cfg.RateLimit); err != nil {
		return err
	}
	if cfg.RedisCacheTTLSeconds, err = getEnvAsInt("REDIS_CACHE_TTL_SECONDS", cfg.RedisCacheTTLSeconds); err != nil {
		return err
	}
	if cfg.ShutdownTimeoutSeconds, err = getEnvAsInt("SHUTDOWN_TIMEOUT_SECONDS", cfg.ShutdownTimeoutSeconds); err != nil {
		return err
	}
	if cfg.RedisEnabled, err = getEnvAsBool("REDIS_ENABLED", cfg.RedisEnabled); err != nil {
		return err
	}
	return nil
}

func validate(cfg Config) error {
	if cfg.AppHost == "" || cfg.AppPort == "" {
		return errors.New("APP_HOST and APP_PORT must not be empty (e.g. 127.0.0.1 and 8080)")
	}
	if cfg.DatabaseDSN == "" {
		return errors.New("DATABASE_DSN must not be empty")
	}
	if cfg.DatabaseMaxOpenConns <= 0 {
		return errors.New("DATABASE_MAX_OPEN_CONNS must be greater than 0")
	}
	if cfg.DatabaseMaxIdleConns < 0 {
		return errors.New("DATABASE_MAX_IDLE_CONNS must not be negative")
	}
	if cfg.RateLimit <= 0 {
		return errors.New("RATE_LIMIT_PER_MINUTE must be greater than 0")
	}
	if cfg.RedisEnabled && cfg.RedisCacheTTLSeconds <= 0 {
		return errors.New("REDIS_CACHE_TTL_SECONDS must be greater than 0")
	}
	if cfg.ShutdownTimeoutSeconds <= 0 {
		return errors.New("SHUTDOWN_TIMEOUT_SECONDS must be greater than 0")
	}
	if cfg.APIPrefix != "" && cfg.APIPrefix[0] != '/' {
		return errors.New("API_PREFIX must start with /")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) (int, error) {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s", key)
		}
		return i, nil
	}
	return defaultVal, nil
}

func getEnvAsBool(key string, defaultVal bool) (bool, error) {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return false, fmt.Errorf("invalid boolean value for %s", key)
		}
		return b, nil
	}
	return defaultVal, nil
}
