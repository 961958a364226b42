package config

import (
	"os"
	"time"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Perplexity
	PerplexityAPIKey        string
	PerplexityAPIURL        string
	PerplexityTranscribeURL string
	PerplexityModel         string

	// Knowledge base fed to the model as reference content
	ContentFile string

	AITimeout time.Duration
	DBTimeout time.Duration

	// Server
	Port        string
	CORSOrigins string
}

func Load() *Config {
	return &Config{
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: getEnv("DB_PASSWORD", "postgres"),
		DBName:     getEnv("DB_NAME", "inforens_chat"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		PerplexityAPIKey:        getEnv("PERPLEXITY_API_KEY", ""),
		PerplexityAPIURL:        getEnv("PERPLEXITY_API_URL", "https://api.perplexity.ai/chat/completions"),
		PerplexityTranscribeURL: getEnv("PERPLEXITY_TRANSCRIBE_URL", "https://api.perplexity.ai/audio/transcriptions"),
		PerplexityModel:         getEnv("PERPLEXITY_MODEL", "sonar"),

		ContentFile: getEnv("CONTENT_FILE", "inforens_scraped_data.txt"),

		AITimeout: parseDuration(getEnv("AI_TIMEOUT", "60s"), 60*time.Second),
		DBTimeout: parseDuration(getEnv("DB_TIMEOUT", "5s"), 5*time.Second),

		Port:        getEnv("PORT", "5000"),
		CORSOrigins: getEnv("CORS_ORIGINS", "*"),
	}
}

func (c *Config) DSN() string {
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
