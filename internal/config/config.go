// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort   string
	DatabasePath string
	JWTSecretKey string
	Environment  string

	SMTPHost        string
	SMTPPort        int
	SMTPUsername    string
	SMTPPassword    string
	SMTPFromAddress string
	SMTPFromName    string

	// Attempt thresholds for secret locks.
	LockMaxFailures     int
	LockFailureCooldown int

	// Protected action request tuning.
	RequestCodeLength   int
	RequestTTL          time.Duration
	PasswordResetTTL    time.Duration
	RetentionDays       int
	RetentionSweepEvery time.Duration
}

// Load reads configuration from environment variables or .env file.
func Load() *Config {
	env := os.Getenv("ENV")
	if strings.ToLower(env) != "production" {
		if err := godotenv.Load(); err != nil {
			log.Println("No .env file found; continuing with environment variables")
		}
	}

	cfg := &Config{
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DatabasePath: getEnv("DATABASE_PATH", "accountsvc.db"),
		JWTSecretKey: getEnv("JWT_SECRET_KEY", ""),
		Environment:  env,

		SMTPHost:        getEnv("SMTP_HOST", ""),
		SMTPPort:        getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername:    getEnv("SMTP_USERNAME", ""),
		SMTPPassword:    getEnv("SMTP_PASSWORD", ""),
		SMTPFromAddress: getEnv("SMTP_FROM_ADDRESS", ""),
		SMTPFromName:    getEnv("SMTP_FROM_NAME", "Account Service"),

		LockMaxFailures:     getEnvAsInt("PAR_MAX_FAILURES", 9),
		LockFailureCooldown: getEnvAsInt("PAR_FAILURE_COOLDOWN", 3),

		RequestCodeLength:   getEnvAsInt("PAR_CODE_LENGTH", 7),
		RequestTTL:          getEnvAsDuration("PAR_REQUEST_TTL", 24*time.Hour),
		PasswordResetTTL:    getEnvAsDuration("PAR_RESET_TTL", time.Hour),
		RetentionDays:       getEnvAsInt("PAR_RETENTION_DAYS", 30),
		RetentionSweepEvery: getEnvAsDuration("PAR_RETENTION_SWEEP_EVERY", 12*time.Hour),
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.SMTPHost == "" {
			missing = append(missing, "SMTP_HOST")
		}
		if cfg.SMTPFromAddress == "" {
			missing = append(missing, "SMTP_FROM_ADDRESS")
		}
		if len(missing) > 0 {
			log.Fatalf("Missing required production environment variables: %v", missing)
		}
	}

	return cfg
}

// getEnv returns the value of an environment variable or a default.
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an env var as an integer, with a fallback.
func getEnvAsInt(key string, defaultValue int) int {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as integer. Using default value.", key)
		return defaultValue
	}
	return intValue
}

// getEnvAsDuration gets an env var as a Go duration string, with a fallback.
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	strValue := getEnv(key, "")
	if strValue == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(strValue)
	if err != nil {
		log.Printf("Warning: could not parse env var %s as duration. Using default value.", key)
		return defaultValue
	}
	return d
}
