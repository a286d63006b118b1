package config

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// DefaultMinPasswordLength is the password policy used when SEVA_MIN_PASSWORD_LENGTH is unset.
const DefaultMinPasswordLength = 8

type Server struct {
	Port              string
	MongoURI          string // empty => in-memory repositories
	DBName            string
	JWTSecret         string
	SessionTTL        time.Duration
	ResendAPIKey      string
	FromEmail         string
	BaseURL           string
	MinPasswordLength int
	LogLevel          string
	LogFormat         string
}

type Client struct {
	APIURL            string
	DataDir           string
	RxNavBaseURL      string
	CardioAPIURL      string
	DiabetesAPIURL    string
	SymptomsAPIURL    string
	PhotoBaseURL      string
	MinPasswordLength int
	NotifyEmail       string
	ResendAPIKey      string
	FromEmail         string
	LogLevel          string
	LogFormat         string
}

// Warnings collects values that were present but unusable; callers log them once a logger exists.
type Warnings []string

func LoadServer() (Server, Warnings, error) {
	// Load .env (ignore error in production, env vars set directly)
	_ = godotenv.Load()

	var warns Warnings
	cfg := Server{
		Port:              getEnv("PORT", "8080"),
		MongoURI:          getEnv("MONGODB_URI", ""),
		DBName:            getEnv("DB_NAME", "seva"),
		JWTSecret:         getEnv("JWT_SECRET", ""),
		SessionTTL:        getDuration("SESSION_TTL", 30*24*time.Hour, &warns),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", ""),
		BaseURL:           getEnv("BASE_URL", ""),
		MinPasswordLength: getInt("SEVA_MIN_PASSWORD_LENGTH", DefaultMinPasswordLength, &warns),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		LogFormat:         getEnv("LOG_FORMAT", "json"),
	}

	if cfg.JWTSecret == "" {
		return Server{}, warns, errors.New("JWT_SECRET is required")
	}
	return cfg, warns, nil
}

func LoadClient() (Client, Warnings) {
	_ = godotenv.Load()

	var warns Warnings
	dataDir := getEnv("SEVA_DATA_DIR", "")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			home = "."
		}
		dataDir = filepath.Join(home, ".seva")
	}

	return Client{
		APIURL:            getEnv("SEVA_API_URL", "http://localhost:8080"),
		DataDir:           dataDir,
		RxNavBaseURL:      getEnv("RXNAV_BASE_URL", "https://rxnav.nlm.nih.gov/REST"),
		CardioAPIURL:      getEnv("CARDIO_API_URL", ""),
		DiabetesAPIURL:    getEnv("DIABETES_API_URL", ""),
		SymptomsAPIURL:    getEnv("SYMPTOMS_API_URL", ""),
		PhotoBaseURL:      getEnv("SEVA_PHOTO_BASE_URL", "https://assets.seva.health/avatars"),
		MinPasswordLength: getInt("SEVA_MIN_PASSWORD_LENGTH", DefaultMinPasswordLength, &warns),
		NotifyEmail:       getEnv("SEVA_NOTIFY_EMAIL", ""),
		ResendAPIKey:      getEnv("RESEND_API_KEY", ""),
		FromEmail:         getEnv("FROM_EMAIL", ""),
		LogLevel:          getEnv("LOG_LEVEL", "warn"),
		LogFormat:         getEnv("LOG_FORMAT", "console"),
	}, warns
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getInt(key string, fallback int, warns *Warnings) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n <= 0 {
		*warns = append(*warns, key+" is not a positive integer, using default")
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration, warns *Warnings) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		*warns = append(*warns, key+" is not a valid duration, using default")
		return fallback
	}
	return d
}
