package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"beautybook/internal/cache"
	"beautybook/internal/database"
	"beautybook/internal/messaging"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration

	Booking BookingPolicy

	Database database.Config
	NATS     messaging.Config
	Cache    cache.Config
}

// BookingPolicy holds the scheduling knobs
type BookingPolicy struct {
	HorizonDays       int
	CancelWindow      time.Duration
	MaxReferenceTries int
}

// Load загружает конфигурацию из переменных окружения
func Load() *Config {
	// .env is optional; real deployments set the environment directly
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "8081"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,

		Booking: BookingPolicy{
			HorizonDays:       getEnvInt("BOOKING_HORIZON_DAYS", 90),
			CancelWindow:      time.Duration(getEnvInt("CANCEL_WINDOW_HOURS", 24)) * time.Hour,
			MaxReferenceTries: getEnvInt("BOOKING_REFERENCE_RETRIES", 5),
		},

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 5432),
			User:               getEnv("DB_USER", "beautybook"),
			Password:           getEnv("DB_PASSWORD", "beautybook"),
			DBName:             getEnv("DB_NAME", "beautybook"),
			SSLMode:            getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 50),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", true),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "beautybook"),
			ClientID:  getEnv("NATS_CLIENT_ID", "beautybook-api"),
		},

		Cache: cache.Config{
			Enabled:  getEnvBool("CACHE_ENABLED", true),
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			DB:       getEnvInt("VALKEY_DB", 0),
			TTL:      time.Duration(getEnvInt("AVAILABILITY_CACHE_TTL_SEC", 30)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
