package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig
	Log        LogConfig
	Storage    StorageConfig
	LLM        LLMConfig
	Generation GenerationConfig
	Sweeper    SweeperConfig
}

type ServerConfig struct {
	Port         string
	Mode         string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  []string
}

type LogConfig struct {
	Level string
}

type StorageConfig struct {
	Driver        string
	DataDir       string
	DBPath        string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type LLMConfig struct {
	APIKey           string
	BaseURL          string
	Model            string
	Temperature      float64
	MaxTokens        int
	SectionMaxTokens int
	Timeout          time.Duration
	RateLimit        float64
	Burst            int
}

type GenerationConfig struct {
	Workers   int
	QueueSize int
}

type SweeperConfig struct {
	Schedule   string
	StaleAfter time.Duration
}

var AppConfig *Config

// Load loads configuration from .env file and environment variables
func Load() error {
	// A missing .env file is fine; the environment is used as is
	_ = godotenv.Load()

	AppConfig = FromEnv()
	return AppConfig.Validate()
}

// FromEnv builds a Config from the current environment without reading .env
func FromEnv() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Mode:         getEnv("GIN_MODE", "release"),
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 120),
			CORSOrigins:  getEnvAsList("CORS_ORIGINS"),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
		Storage: StorageConfig{
			Driver:        getEnv("STORAGE_DRIVER", "file"),
			DataDir:       getEnv("DATA_DIR", "./data"),
			DBPath:        getEnv("DB_PATH", "./bizscope.db"),
			RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
			RedisPassword: getEnv("REDIS_PASSWORD", ""),
			RedisDB:       getEnvAsInt("REDIS_DB", 0),
		},
		LLM: LLMConfig{
			APIKey:           getEnv("OPENAI_API_KEY", ""),
			BaseURL:          getEnv("OPENAI_BASE_URL", "https://api.openai.com"),
			Model:            getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			Temperature:      getEnvAsFloat("LLM_TEMPERATURE", 0.7),
			MaxTokens:        getEnvAsInt("LLM_MAX_TOKENS", 2000),
			SectionMaxTokens: getEnvAsInt("LLM_SECTION_MAX_TOKENS", 1500),
			Timeout:          getEnvAsDuration("LLM_TIMEOUT", 90*time.Second),
			RateLimit:        getEnvAsFloat("LLM_RATE_LIMIT", 2),
			Burst:            getEnvAsInt("LLM_BURST", 4),
		},
		Generation: GenerationConfig{
			Workers:   getEnvAsInt("GENERATION_WORKERS", 2),
			QueueSize: getEnvAsInt("GENERATION_QUEUE_SIZE", 64),
		},
		Sweeper: SweeperConfig{
			Schedule:   getEnv("SWEEP_SCHEDULE", "0 */5 * * * *"),
			StaleAfter: getEnvAsDuration("SWEEP_STALE_AFTER", 15*time.Minute),
		},
	}
}

// Validate rejects settings the service cannot start with. A missing API key
// is allowed; generation then fails per project with a configuration error.
func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case "file", "sqlite", "redis":
	default:
		return fmt.Errorf("STORAGE_DRIVER must be one of file, sqlite, redis (got %q)", c.Storage.Driver)
	}
	if c.Generation.Workers <= 0 {
		return fmt.Errorf("GENERATION_WORKERS must be positive (got %d)", c.Generation.Workers)
	}
	if c.Generation.QueueSize <= 0 {
		return fmt.Errorf("GENERATION_QUEUE_SIZE must be positive (got %d)", c.Generation.QueueSize)
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2 (got %v)", c.LLM.Temperature)
	}
	if c.Sweeper.StaleAfter <= c.LLM.Timeout {
		return fmt.Errorf("SWEEP_STALE_AFTER (%s) must exceed LLM_TIMEOUT (%s)", c.Sweeper.StaleAfter, c.LLM.Timeout)
	}
	return nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

// getEnvAsDuration accepts Go duration strings ("90s") or a bare number of seconds
func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	if d, err := time.ParseDuration(value); err == nil {
		return d
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}
	return defaultValue
}

// getEnvAsList splits a comma separated variable, dropping empty entries
func getEnvAsList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
