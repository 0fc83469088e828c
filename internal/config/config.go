package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

type Config struct {
	App      AppConfig      `toml:"app"`
	Log      LogConfig      `toml:"log"`
	Database DatabaseConfig `toml:"database"`
	Storage  StorageConfig  `toml:"storage"`
	LLM      LLMConfig      `toml:"llm"`
	Redis    RedisConfig    `toml:"redis"`
	RabbitMQ RabbitMQConfig `toml:"rabbitmq"`
}

type AppConfig struct {
	Name    string `toml:"name"`
	Env     string `toml:"env"`
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	GinMode string `toml:"gin_mode"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// DatabaseConfig selects the gorm dialector. An empty DSN falls back to a
// per-driver default, see DatabaseDSN.
type DatabaseConfig struct {
	Driver       string `toml:"driver"`
	DSN          string `toml:"dsn"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

type StorageConfig struct {
	Dir         string `toml:"dir"`
	MaxUploadMB int    `toml:"max_upload_mb"`
}

type LLMConfig struct {
	BaseURL             string `toml:"base_url"`
	Model               string `toml:"model"`
	VisionModel         string `toml:"vision_model"`
	EnableVideoAnalysis bool   `toml:"enable_video_analysis"`
	TimeoutSeconds      int    `toml:"timeout_seconds"`
}

// RedisConfig is optional: an empty Addr disables the quiz store.
type RedisConfig struct {
	Addr           string `toml:"addr"`
	Password       string `toml:"password"`
	DB             int    `toml:"db"`
	QuizTTLSeconds int    `toml:"quiz_ttl_seconds"`
}

// RabbitMQConfig is optional: an empty URL makes text extraction run inline.
type RabbitMQConfig struct {
	URL          string `toml:"url"`
	ExtractQueue string `toml:"extract_queue"`
}

func Load() (*Config, error) {
	// .env never overrides variables already present in the environment.
	_ = godotenv.Load()

	cfg := defaultConfig()

	configPath := getEnv("CONFIG_FILE", "configs/config.toml")
	if _, err := os.Stat(configPath); err == nil {
		if _, err := toml.DecodeFile(configPath, cfg); err != nil {
			return nil, fmt.Errorf("decode config file failed: %w", err)
		}
	}

	overrideByEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if c.App.Port <= 0 || c.App.Port > 65535 {
		return fmt.Errorf("invalid app port %d", c.App.Port)
	}
	if strings.TrimSpace(c.Storage.Dir) == "" {
		return fmt.Errorf("storage dir is required")
	}
	if strings.TrimSpace(c.LLM.Model) == "" {
		return fmt.Errorf("llm model is required")
	}
	return nil
}

func (c *Config) HTTPAddr() string {
	return fmt.Sprintf("%s:%d", c.App.Host, c.App.Port)
}

func (c *Config) DatabaseDSN() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	switch c.Database.Driver {
	case "postgres":
		return "host=127.0.0.1 user=postgres dbname=studyai port=5432 sslmode=disable"
	case "sqlite":
		return "data/studyai.db?_pragma=foreign_keys(1)"
	default:
		return "root:@tcp(127.0.0.1:3306)/studyai?parseTime=true&loc=Local&charset=utf8mb4"
	}
}

func (c *Config) MaxUploadBytes() int64 {
	return int64(c.Storage.MaxUploadMB) << 20
}

func defaultConfig() *Config {
	return &Config{
		App: AppConfig{
			Name:    "studyai",
			Env:     "dev",
			Host:    "0.0.0.0",
			Port:    8080,
			GinMode: "debug",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Database: DatabaseConfig{
			Driver:       "mysql",
			MaxOpenConns: 50,
			MaxIdleConns: 10,
		},
		Storage: StorageConfig{
			Dir:         "data/materials",
			MaxUploadMB: 50,
		},
		LLM: LLMConfig{
			BaseURL:             "http://127.0.0.1:11434",
			Model:               "llama3.1:8b",
			VisionModel:         "llava",
			EnableVideoAnalysis: false,
		},
		Redis: RedisConfig{
			QuizTTLSeconds: 3600,
		},
		RabbitMQ: RabbitMQConfig{
			ExtractQueue: "material.extract",
		},
	}
}

func overrideByEnv(cfg *Config) {
	cfg.App.Name = getEnv("APP_NAME", cfg.App.Name)
	cfg.App.Env = getEnv("APP_ENV", cfg.App.Env)
	cfg.App.Host = getEnv("APP_HOST", cfg.App.Host)
	cfg.App.Port = getEnvAsInt("PORT", cfg.App.Port)
	cfg.App.Port = getEnvAsInt("APP_PORT", cfg.App.Port)
	cfg.App.GinMode = getEnv("GIN_MODE", cfg.App.GinMode)

	cfg.Log.Level = getEnv("LOG_LEVEL", cfg.Log.Level)
	cfg.Log.Format = getEnv("LOG_FORMAT", cfg.Log.Format)

	cfg.Database.Driver = getEnv("DATABASE_DRIVER", cfg.Database.Driver)
	cfg.Database.DSN = getEnv("DATABASE_URL", cfg.Database.DSN)
	cfg.Database.DSN = getEnv("DATABASE_DSN", cfg.Database.DSN)

	cfg.Storage.Dir = getEnv("STORAGE_DIR", cfg.Storage.Dir)
	cfg.Storage.MaxUploadMB = getEnvAsInt("MAX_UPLOAD_MB", cfg.Storage.MaxUploadMB)

	cfg.LLM.BaseURL = getEnv("OLLAMA_HOST", cfg.LLM.BaseURL)
	cfg.LLM.Model = getEnv("OLLAMA_MODEL", cfg.LLM.Model)
	cfg.LLM.VisionModel = getEnv("OLLAMA_VISION_MODEL", cfg.LLM.VisionModel)
	cfg.LLM.EnableVideoAnalysis = getEnvAsBool("ENABLE_VIDEO_ANALYSIS", cfg.LLM.EnableVideoAnalysis)
	cfg.LLM.TimeoutSeconds = getEnvAsInt("LLM_TIMEOUT_SECONDS", cfg.LLM.TimeoutSeconds)

	cfg.Redis.Addr = getEnv("REDIS_ADDR", cfg.Redis.Addr)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Redis.DB = getEnvAsInt("REDIS_DB", cfg.Redis.DB)
	cfg.Redis.QuizTTLSeconds = getEnvAsInt("REDIS_QUIZ_TTL_SECONDS", cfg.Redis.QuizTTLSeconds)

	cfg.RabbitMQ.URL = getEnv("RABBITMQ_URL", cfg.RabbitMQ.URL)
	cfg.RabbitMQ.ExtractQueue = getEnv("RABBITMQ_EXTRACT_QUEUE", cfg.RabbitMQ.ExtractQueue)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvAsBool(key string, fallback bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return parsed
}
