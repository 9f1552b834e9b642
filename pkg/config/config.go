package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	OpenAI    OpenAIConfig
	RateLimit RateLimitConfig
	Storage   StorageConfig
	Limits    LimitsConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type AuthConfig struct {
	// AdminPassword and DemoPassword may be plain strings or bcrypt hashes
	// (recognized by the "$2" prefix).
	AdminPassword string
	DemoPassword  string
	JWTSecret     string
	TokenTTL      time.Duration
	TrustProxy    bool
}

type OpenAIConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	VisionModel    string
	MaxAttempts    int
	AttemptTimeout time.Duration
}

type RateLimitConfig struct {
	LoginPerMinute    int
	GeneratePerMinute int
}

type StorageConfig struct {
	DataDir string
}

type LimitsConfig struct {
	MaxRequestBytes int
	MaxUploadPages  int
}

type LoggerConfig struct {
	Level string
}

func Load() (*Config, error) {
	// Try to load .env from the current directory or project root.
	// Missing .env is fine; plain environment variables still apply.
	envFiles := []string{".env", "../.env", "../../.env"}
	for _, envFile := range envFiles {
		if err := godotenv.Load(envFile); err == nil {
			break
		}
	}

	readTimeout, _ := strconv.Atoi(getEnv("SERVER_READ_TIMEOUT", "30"))
	writeTimeout, _ := strconv.Atoi(getEnv("SERVER_WRITE_TIMEOUT", "60"))
	tokenTTL, _ := strconv.Atoi(getEnv("TOKEN_TTL_SECONDS", "3600"))
	maxAttempts, _ := strconv.Atoi(getEnv("OPENAI_MAX_ATTEMPTS", "3"))
	attemptTimeout, _ := strconv.Atoi(getEnv("OPENAI_ATTEMPT_TIMEOUT", "20"))
	loginLimit, _ := strconv.Atoi(getEnv("LOGIN_RATE_LIMIT", "5"))
	generateLimit, _ := strconv.Atoi(getEnv("GENERATE_RATE_LIMIT", "3"))
	maxRequestBytes, _ := strconv.Atoi(getEnv("MAX_REQUEST_BYTES", "25000000"))
	maxUploadPages, _ := strconv.Atoi(getEnv("MAX_UPLOAD_PAGES", "25"))

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  time.Duration(readTimeout) * time.Second,
			WriteTimeout: time.Duration(writeTimeout) * time.Second,
		},
		Auth: AuthConfig{
			AdminPassword: getEnv("ADMIN_PASSWORD", ""),
			DemoPassword:  getEnv("DEMO_PASSWORD", ""),
			JWTSecret:     getEnv("JWT_SECRET_KEY", ""),
			TokenTTL:      time.Duration(tokenTTL) * time.Second,
			TrustProxy:    getEnv("TRUST_PROXY_HEADERS", "true") == "true",
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			BaseURL:        getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:          getEnv("OPENAI_MODEL", "gpt-4o"),
			VisionModel:    getEnv("OPENAI_VISION_MODEL", "gpt-4o"),
			MaxAttempts:    maxAttempts,
			AttemptTimeout: time.Duration(attemptTimeout) * time.Second,
		},
		RateLimit: RateLimitConfig{
			LoginPerMinute:    loginLimit,
			GeneratePerMinute: generateLimit,
		},
		Storage: StorageConfig{
			DataDir: getEnv("DATA_DIR", "./data"),
		},
		Limits: LimitsConfig{
			MaxRequestBytes: maxRequestBytes,
			MaxUploadPages:  maxUploadPages,
		},
		Logger: LoggerConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if cfg.OpenAI.APIKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable must be set")
	}
	if cfg.Auth.AdminPassword == "" {
		return nil, fmt.Errorf("ADMIN_PASSWORD environment variable must be set")
	}
	if cfg.Auth.JWTSecret == "" {
		// Tokens signed with the admin password keep single-variable deploys
		// working; a dedicated JWT_SECRET_KEY takes precedence.
		cfg.Auth.JWTSecret = cfg.Auth.AdminPassword
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
