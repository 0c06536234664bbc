package config

import (
	"errors"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`

	// AI configuration
	GeminiAPIKey string        `json:"-"`
	GeminiModel  string        `json:"gemini_model"`
	AITimeout    time.Duration `json:"ai_timeout"`

	// Telegram configuration
	TelegramBotToken string `json:"-"`
	TelegramChatID   string `json:"telegram_chat_id"`

	// Daily job configuration
	DailyRunAt   string        `json:"daily_run_at"`   // HH:MM, local clock
	TickInterval time.Duration `json:"tick_interval"`
	TopicCount   int           `json:"topic_count"`
	SiteBaseURL  string        `json:"site_base_url"`

	// Redis configuration (optional, topic recency cache)
	RedisURL    string        `json:"redis_url"`
	RedisPrefix string        `json:"redis_prefix"`
	TopicTTL    time.Duration `json:"topic_ttl"`

	// CloudFlare R2 configuration (optional, batch archive)
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"-"`
	R2SecretKey string `json:"-"`
	R2Bucket    string `json:"r2_bucket"`

	// Storage
	DataDir   string `json:"data_dir"`
	BlogFile  string `json:"blog_file"`
	StatsFile string `json:"stats_file"`

	// Logging
	LogLevel string `json:"log_level"`
	LogFile  string `json:"log_file"`

	// Security
	AdminAPIKey string `json:"-"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: Error loading .env file: %v", err)
	}

	dataDir := getEnv("DATA_DIR", "./data")

	cfg := &Config{
		// Server configuration
		Port:            getEnv("PORT", "8080"),
		Env:             getEnv("APP_ENV", "development"),
		ShutdownTimeout: getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		HTTPTimeout:     getEnvAsDuration("HTTP_TIMEOUT", 30*time.Second),

		// AI configuration
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),
		GeminiModel:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		AITimeout:    getEnvAsDuration("AI_TIMEOUT", 60*time.Second),

		// Telegram configuration
		TelegramBotToken: getEnv("TELEGRAM_BOT_TOKEN", ""),
		TelegramChatID:   getEnv("TELEGRAM_CHAT_ID", getEnv("TELEGRAM_CHANNEL_ID", "")),

		// Daily job configuration
		DailyRunAt:   getEnv("DAILY_RUN_AT", "09:00"),
		TickInterval: getEnvAsDuration("TICK_INTERVAL", time.Minute),
		TopicCount:   getEnvAsInt("TOPIC_COUNT", 5),
		SiteBaseURL:  getEnv("SITE_BASE_URL", "https://smartbot.uz"),

		// Redis configuration
		RedisURL:    getEnv("REDIS_URL", ""),
		RedisPrefix: getEnv("REDIS_PREFIX", "avtomat:"),
		TopicTTL:    getEnvAsDuration("TOPIC_TTL", 72*time.Hour),

		// CloudFlare R2 configuration
		R2Endpoint:  getEnv("R2_ENDPOINT", ""),
		R2AccessKey: getEnv("R2_ACCESS_KEY", ""),
		R2SecretKey: getEnv("R2_SECRET_ACCESS_KEY", ""),
		R2Bucket:    getEnv("R2_BUCKET", "smartbot-blog"),

		// Storage
		DataDir:   dataDir,
		BlogFile:  getEnv("BLOG_FILE", filepath.Join(dataDir, "blog.json")),
		StatsFile: getEnv("STATS_FILE", filepath.Join(dataDir, "marketing_stats.json")),

		// Logging
		LogLevel: getEnv("LOG_LEVEL", "info"),
		LogFile:  getEnv("LOG_FILE", ""),

		// Security
		AdminAPIKey: getEnv("ADMIN_API_KEY", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every credential the daily job depends on is present.
// A missing credential keeps the job from entering its scheduling loop at all.
func (c *Config) Validate() error {
	if c.GeminiAPIKey == "" {
		return errors.New("GEMINI_API_KEY is required")
	}
	if c.TelegramBotToken == "" {
		return errors.New("TELEGRAM_BOT_TOKEN is required")
	}
	if c.TelegramChatID == "" {
		return errors.New("TELEGRAM_CHAT_ID is required")
	}
	if _, err := time.Parse("15:04", c.DailyRunAt); err != nil {
		return errors.New("DAILY_RUN_AT must be in HH:MM format")
	}
	return nil
}

// ArchiveEnabled reports whether the optional R2 batch archive is configured.
func (c *Config) ArchiveEnabled() bool {
	return c.R2Endpoint != "" && c.R2AccessKey != "" && c.R2SecretKey != ""
}

// Helper functions for environment variable handling
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(name string, defaultVal int) int {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %d", name, err, defaultVal)
		return defaultVal
	}
	return value
}

func getEnvAsDuration(name string, defaultVal time.Duration) time.Duration {
	valueStr := getEnv(name, "")
	if valueStr == "" {
		return defaultVal
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		log.Printf("Invalid %s value: %v, using default: %v", name, err, defaultVal)
		return defaultVal
	}
	return value
}
