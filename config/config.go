package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
type Config struct {
	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresSSLMode  string

	MaxConcurrency   int
	RateLimitMs      int
	MaxRetries       int
	PagesPerCategory int

	DataDir       string
	SnapshotPath  string
	LedgerPath    string
	RetentionDays int

	TopRecommendations int
	PredictionDays     int
	AnomalyThreshold   float64

	ChromeBin string
}

// Load reads the .env file and returns a populated Config struct.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("[config] No .env file found, falling back to system env vars")
	}

	dataDir := getEnv("DATA_DIR", "./data")

	return &Config{
		PostgresHost:     getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresUser:     getEnv("POSTGRES_USER", "analytics"),
		PostgresPassword: getEnv("POSTGRES_PASSWORD", "analytics123"),
		PostgresDB:       getEnv("POSTGRES_DB", "market_db"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),

		MaxConcurrency:   getEnvInt("MAX_CONCURRENCY", 3),
		RateLimitMs:      getEnvInt("RATE_LIMIT_MS", 2000),
		MaxRetries:       getEnvInt("MAX_RETRIES", 3),
		PagesPerCategory: getEnvInt("PAGES_PER_CATEGORY", 3),

		DataDir:       dataDir,
		SnapshotPath:  getEnv("SNAPSHOT_PATH", filepath.Join(dataDir, "processed_products.csv")),
		LedgerPath:    getEnv("LEDGER_PATH", filepath.Join(dataDir, "historical_products.csv")),
		RetentionDays: getEnvInt("RETENTION_DAYS", 90),

		TopRecommendations: getEnvInt("TOP_RECOMMENDATIONS", 5),
		PredictionDays:     getEnvInt("PREDICTION_DAYS", 30),
		AnomalyThreshold:   getEnvFloat("ANOMALY_THRESHOLD", 0.3),

		ChromeBin: getEnv("CHROME_BIN", ""),
	}
}

// DSN returns the PostgreSQL connection string.
func (c *Config) DSN() string {
	return "host=" + c.PostgresHost +
		" port=" + c.PostgresPort +
		" user=" + c.PostgresUser +
		" password=" + c.PostgresPassword +
		" dbname=" + c.PostgresDB +
		" sslmode=" + c.PostgresSSLMode
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		n, err := strconv.Atoi(val)
		if err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		f, err := strconv.ParseFloat(val, 64)
		if err == nil {
			return f
		}
	}
	return fallback
}
