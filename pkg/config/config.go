package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// MaxGenerationDaysAhead keeps the daily window inside the one-year range
// accepted by lesson generation.
const MaxGenerationDaysAhead = 365

// Supported database drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string

	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	CORS       CORSConfig
	Log        LogConfig
	Cache      CacheConfig
	Generation GenerationConfig
}

type DatabaseConfig struct {
	Driver       string
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	Path         string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     int
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// CacheConfig governs caching of holiday calendars.
type CacheConfig struct {
	Enabled    bool
	HolidayTTL time.Duration
}

// GenerationConfig tunes lesson generation and the daily background run.
type GenerationConfig struct {
	Enabled      bool
	RunAt        string
	DaysAhead    int
	Workers      int
	SkipHolidays bool
	PollInterval time.Duration
	JobRetries   int
	QueueBuffer  int
	StateKey     string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !isMissingFile(err) {
			return nil, err
		}
	}

	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")

	cfg.Database = DatabaseConfig{
		Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		Path:         v.GetString("DB_PATH"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("REDIS_ENABLED"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.JWT = JWTConfig{
		Secret: v.GetString("JWT_SECRET"),
		Issuer: v.GetString("JWT_ISSUER"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Cache = CacheConfig{
		Enabled:    v.GetBool("ENABLE_HOLIDAY_CACHE"),
		HolidayTTL: parseDuration(v.GetString("HOLIDAY_CACHE_TTL"), 15*time.Minute),
	}

	cfg.Generation = GenerationConfig{
		Enabled:      v.GetBool("ENABLE_DAILY_GENERATION"),
		RunAt:        v.GetString("GENERATION_RUN_AT"),
		DaysAhead:    positiveOr(v.GetInt("GENERATION_DAYS_AHEAD"), 30),
		Workers:      positiveOr(v.GetInt("GENERATION_WORKERS"), 4),
		SkipHolidays: v.GetBool("GENERATION_SKIP_HOLIDAYS"),
		PollInterval: parseDuration(v.GetString("GENERATION_POLL_INTERVAL"), time.Minute),
		JobRetries:   v.GetInt("GENERATION_JOB_RETRIES"),
		QueueBuffer:  positiveOr(v.GetInt("GENERATION_QUEUE_BUFFER"), 8),
		StateKey:     v.GetString("GENERATION_STATE_KEY"),
	}
	if cfg.Generation.DaysAhead > MaxGenerationDaysAhead {
		return nil, fmt.Errorf("GENERATION_DAYS_AHEAD must be at most %d, got %d", MaxGenerationDaysAhead, cfg.Generation.DaysAhead)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")

	v.SetDefault("DB_DRIVER", DriverPostgres)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "music_school")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_PATH", "music_school.db")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("REDIS_ENABLED", false)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("JWT_SECRET", "dev_secret")
	v.SetDefault("JWT_ISSUER", "")

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("ENABLE_HOLIDAY_CACHE", false)
	v.SetDefault("HOLIDAY_CACHE_TTL", "15m")

	v.SetDefault("ENABLE_DAILY_GENERATION", true)
	v.SetDefault("GENERATION_RUN_AT", "02:00")
	v.SetDefault("GENERATION_DAYS_AHEAD", 30)
	v.SetDefault("GENERATION_WORKERS", 4)
	v.SetDefault("GENERATION_SKIP_HOLIDAYS", true)
	v.SetDefault("GENERATION_POLL_INTERVAL", "1m")
	v.SetDefault("GENERATION_JOB_RETRIES", 0)
	v.SetDefault("GENERATION_QUEUE_BUFFER", 8)
	v.SetDefault("GENERATION_STATE_KEY", "lessons:generation:state")
}

func isMissingFile(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func positiveOr(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
