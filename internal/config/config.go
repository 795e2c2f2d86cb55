package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server         ServerConfig         `yaml:"server"`
	Database       DatabaseConfig       `yaml:"database"`
	JWT            JWTConfig            `yaml:"jwt"`
	OpenAI         OpenAIConfig         `yaml:"openai"`
	Redis          RedisConfig          `yaml:"redis"`
	ExternalSource ExternalSourceConfig `yaml:"external_source"`
	Log            LogConfig            `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

// OpenAIConfig is the fallback LLM endpoint used when no LLMConfig rows exist.
type OpenAIConfig struct {
	BaseURL string `yaml:"base_url"`
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	// TimeoutSeconds bounds every enrichment call; a timed-out call degrades
	// to a null analysis instead of blocking the submission.
	TimeoutSeconds int `yaml:"timeout_seconds"`
}

// RedisConfig for optional async task queue
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// ExternalSourceConfig describes the third-party review platform the importer
// pulls comments from.
type ExternalSourceConfig struct {
	BaseURL string `yaml:"base_url"`
	// PageDelaySeconds is the enforced pause between page fetches. The source
	// is a shared third party; do not lower this in production.
	PageDelaySeconds int    `yaml:"page_delay_seconds"`
	SortType         string `yaml:"sort_type"`
	// SyncCron, when set, runs a periodic import for all configured vendors
	// (standard 5-field cron expression).
	SyncCron string `yaml:"sync_cron"`
	// Vendors lists the source accounts to pull during a scheduled sync.
	Vendors []VendorSource `yaml:"vendors"`
}

// VendorSource binds one external vendor account to a feedback form.
type VendorSource struct {
	VendorCode  string `yaml:"vendor_code"`
	FormID      string `yaml:"form_id"`
	ServiceName string `yaml:"service_name"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

var GlobalConfig *Config

func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	var cfg *Config

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		cfg = DefaultConfig()
	} else {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, err
		}

		var fileCfg Config
		if err := yaml.Unmarshal(data, &fileCfg); err != nil {
			return nil, err
		}
		cfg = &fileCfg
	}

	cfg.overrideFromEnv()
	cfg.applyDefaults()
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "formpulse.db",
		},
		JWT: JWTConfig{
			Secret:     "formpulse-secret-key-change-in-production",
			ExpireHour: 24,
		},
		OpenAI: OpenAIConfig{
			BaseURL:        "https://api.openai.com/v1",
			Model:          "gpt-4o-mini",
			TimeoutSeconds: 60,
		},
		Redis: RedisConfig{
			Enabled: false,
			Addr:    "localhost:6379",
			DB:      0,
		},
		ExternalSource: ExternalSourceConfig{
			BaseURL:          "https://snappfood.ir/mobile/v1/restaurant/vendor-comment",
			PageDelaySeconds: 5,
			SortType:         "score",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// applyDefaults fills zero values that a partial config file may leave unset.
func (c *Config) applyDefaults() {
	if c.OpenAI.TimeoutSeconds <= 0 {
		c.OpenAI.TimeoutSeconds = 60
	}
	if c.ExternalSource.PageDelaySeconds <= 0 {
		c.ExternalSource.PageDelaySeconds = 5
	}
	if c.ExternalSource.SortType == "" {
		c.ExternalSource.SortType = "score"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}

func (c *Config) overrideFromEnv() {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		c.OpenAI.BaseURL = baseURL
	}
	if apiKey := os.Getenv("OPENAI_API_KEY"); apiKey != "" {
		c.OpenAI.APIKey = apiKey
	}
	if model := os.Getenv("OPENAI_MODEL"); model != "" {
		c.OpenAI.Model = model
	}
	if baseURL := os.Getenv("EXTERNAL_SOURCE_BASE_URL"); baseURL != "" {
		c.ExternalSource.BaseURL = baseURL
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	// Redis URL override (format: redis://:password@host:port/db)
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		c.Redis.Enabled = true
		c.parseRedisURL(redisURL)
	}
}

// parseRedisURL parses a Redis URL and sets config values
// Format: redis://:password@host:port/db
func (c *Config) parseRedisURL(redisURL string) {
	url := strings.TrimPrefix(redisURL, "redis://")

	if atIdx := strings.Index(url, "@"); atIdx != -1 {
		authPart := url[:atIdx]
		url = url[atIdx+1:]
		if colonIdx := strings.Index(authPart, ":"); colonIdx != -1 {
			c.Redis.Password = authPart[colonIdx+1:]
		}
	}

	if slashIdx := strings.LastIndex(url, "/"); slashIdx != -1 {
		dbStr := url[slashIdx+1:]
		url = url[:slashIdx]
		if db, err := strconv.Atoi(dbStr); err == nil {
			c.Redis.DB = db
		}
	}

	c.Redis.Addr = url
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
