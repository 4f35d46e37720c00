// File: internal/config/config.go
package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort     string
	DatabasePath   string
	JWTSecretKey   string
	AccessTokenTTL int // minutes
	RefreshTokenTTL int // days
	LLMBaseURL     string
	LLMModel       string
	LLMTimeout     int // seconds
	UploadDir      string
	Environment    string
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
		ServerPort:      getEnv("SERVER_PORT", "8080"),
		DatabasePath:    getEnv("DATABASE_PATH", "chat.db"),
		JWTSecretKey:    getEnv("JWT_SECRET_KEY", ""),
		AccessTokenTTL:  getEnvAsInt("ACCESS_TOKEN_EXPIRE_MINUTES", 30),
		RefreshTokenTTL: getEnvAsInt("REFRESH_TOKEN_EXPIRE_DAYS", 7),
		LLMBaseURL:      getEnv("LLM_BASE_URL", "http://localhost:11434/v1"),
		LLMModel:        getEnv("LLM_MODEL", "llama3:8b"),
		LLMTimeout:      getEnvAsInt("LLM_TIMEOUT_SECONDS", 120),
		UploadDir:       getEnv("UPLOAD_DIR", "uploads"),
		Environment:     env,
	}

	// Validation for production environments
	if strings.ToLower(env) == "production" {
		missing := []string{}
		if cfg.JWTSecretKey == "" {
			missing = append(missing, "JWT_SECRET_KEY")
		}
		if cfg.LLMBaseURL == "" {
			missing = append(missing, "LLM_BASE_URL")
		}
		if cfg.LLMModel == "" {
			missing = append(missing, "LLM_MODEL")
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
