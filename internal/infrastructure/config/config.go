package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig       `mapstructure:"app"`
	Server      ServerConfig    `mapstructure:"server"`
	AI          AIConfig        `mapstructure:"ai"`
	Cache       CacheConfig     `mapstructure:"cache"`
	Fetch       FetchConfig     `mapstructure:"fetch"`
	Store       StoreConfig     `mapstructure:"store"`
	Queue       QueueConfig     `mapstructure:"queue"`
	RateLimit   RateLimitConfig `mapstructure:"rate_limit"`
	Image       ImageConfig     `mapstructure:"image"`
	DedupWindow time.Duration   `mapstructure:"dedup_window"`
	LogLevel    string          `mapstructure:"log_level"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
}

// AIConfig 模型擷取設定（OpenAI Responses 相容端點）
type AIConfig struct {
	Enabled        bool          `mapstructure:"enabled"`
	BaseURL        string        `mapstructure:"base_url"`
	APIKey         string        `mapstructure:"api_key"`
	Model          string        `mapstructure:"model"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
	MaxPromptRunes int           `mapstructure:"max_prompt_runes"`
}

// CacheConfig 模型回應快取配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// FetchConfig 抓取頁面設定
type FetchConfig struct {
	Timeout      time.Duration `mapstructure:"timeout"`
	UserAgent    string        `mapstructure:"user_agent"`
	RetryCount   int           `mapstructure:"retry_count"`
	RetryWait    time.Duration `mapstructure:"retry_wait"`
	RetryMaxWait time.Duration `mapstructure:"retry_max_wait"`
	MaxBodyBytes int64         `mapstructure:"max_body_bytes"`
}

// StoreConfig 食譜儲存設定
type StoreConfig struct {
	Type      string        `mapstructure:"type"` // redis 或 memory
	RedisAddr string        `mapstructure:"redis_addr"`
	Password  string        `mapstructure:"password"`
	DB        int           `mapstructure:"db"`
	KeyPrefix string        `mapstructure:"key_prefix"`
	TTL       time.Duration `mapstructure:"ttl"`
}

// QueueConfig 批次擷取設定
type QueueConfig struct {
	Workers  int `mapstructure:"workers"`
	MaxBatch int `mapstructure:"max_batch"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
	Burst    int           `mapstructure:"burst"`
}

// ImageConfig 圖片檢查配置
type ImageConfig struct {
	Verify       bool          `mapstructure:"verify"`
	MaxSizeBytes int64         `mapstructure:"max_size_bytes"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

// LoadConfig 載入設定
func LoadConfig() (*Config, error) {
	// 加載 .env 文件，不存在時只使用環境變數
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// 設定預設值
	setDefaults()

	// 設定環境變數前綴
	viper.SetEnvPrefix("APP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 綁定環境變量
	viper.BindEnv("ai.api_key", "OPENROUTER_API_KEY")
	viper.BindEnv("ai.model", "OPENROUTER_MODEL")
	viper.BindEnv("ai.base_url", "AI_BASE_URL")
	viper.BindEnv("ai.enabled", "AI_ENABLED")
	viper.BindEnv("ai.max_tokens", "MODEL_MAX_TOKENS")
	viper.BindEnv("cache.enabled", "CACHE_ENABLED")
	viper.BindEnv("store.type", "STORE_TYPE")
	viper.BindEnv("store.redis_addr", "REDIS_ADDR")
	viper.BindEnv("store.password", "REDIS_PASSWORD")
	viper.BindEnv("rate_limit.enabled", "RATE_LIMIT_ENABLED")
	viper.BindEnv("rate_limit.requests", "RATE_LIMIT_REQUESTS")
	viper.BindEnv("rate_limit.window", "RATE_LIMIT_WINDOW")
	viper.BindEnv("image.verify", "IMAGE_VERIFY")
	viper.BindEnv("dedup_window", "DEDUP_WINDOW")
	viper.BindEnv("log_level", "LOG_LEVEL")

	// 設定設定檔名稱和路徑
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")

	// 讀取設定檔
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// logger 尚未初始化，改用 fmt.Println
	fmt.Println("Loading configuration", "ai_api_key:", maskAPIKey(viper.GetString("ai.api_key")), "ai_model:", viper.GetString("ai.model"), "store:", viper.GetString("store.type"))

	// 解析設定
	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 驗證必要設定
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// maskAPIKey 遮罩 API Key，只顯示前後各 4 個字符
func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

// setDefaults 設定預設值
func setDefaults() {
	// 應用程式設定
	viper.SetDefault("app.env", "development")
	viper.SetDefault("app.debug", true)
	viper.SetDefault("app.version", "1.0.0")
	viper.SetDefault("app.name", "recipe-clipper")

	// 伺服器設定
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "90s")
	viper.SetDefault("server.idle_timeout", "120s")
	viper.SetDefault("server.max_body_bytes", 5*1024*1024) // 5MB
	viper.SetDefault("server.allowed_origins", []string{"*"})

	// 模型設定
	viper.SetDefault("ai.enabled", false)
	viper.SetDefault("ai.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("ai.model", "openai/gpt-4o-mini")
	viper.SetDefault("ai.max_tokens", 2000)
	viper.SetDefault("ai.timeout", "60s")
	viper.SetDefault("ai.max_prompt_runes", 12000)

	// 快取設定
	viper.SetDefault("cache.enabled", true)
	viper.SetDefault("cache.max_size", 1000)
	viper.SetDefault("cache.ttl", "24h")
	viper.SetDefault("cache.cleanup_interval", "10m")

	// 抓取設定
	viper.SetDefault("fetch.timeout", "20s")
	viper.SetDefault("fetch.user_agent", "Mozilla/5.0 (compatible; RecipeClipper/1.0)")
	viper.SetDefault("fetch.retry_count", 2)
	viper.SetDefault("fetch.retry_wait", "500ms")
	viper.SetDefault("fetch.retry_max_wait", "5s")
	viper.SetDefault("fetch.max_body_bytes", 8*1024*1024) // 8MB

	// 儲存設定
	viper.SetDefault("store.type", "memory")
	viper.SetDefault("store.redis_addr", "localhost:6379")
	viper.SetDefault("store.db", 0)
	viper.SetDefault("store.key_prefix", "clipper:")
	viper.SetDefault("store.ttl", "0s")

	// 批次設定
	viper.SetDefault("queue.workers", 5)
	viper.SetDefault("queue.max_batch", 50)

	// 限流設定
	viper.SetDefault("rate_limit.enabled", true)
	viper.SetDefault("rate_limit.requests", 100)
	viper.SetDefault("rate_limit.window", "1m")
	viper.SetDefault("rate_limit.burst", 20)

	// 圖片設定
	viper.SetDefault("image.verify", false)
	viper.SetDefault("image.max_size_bytes", 10*1024*1024) // 10MB
	viper.SetDefault("image.timeout", "10s")

	viper.SetDefault("dedup_window", "1s")
	viper.SetDefault("log_level", "info")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	// 驗證伺服器設定
	if config.Server.Port <= 0 {
		return fmt.Errorf("server port is required")
	}

	// 啟用模型時必須有 API key
	if config.AI.Enabled {
		if config.AI.APIKey == "" {
			return fmt.Errorf("ai api key is required when ai is enabled")
		}
		if config.AI.BaseURL == "" {
			return fmt.Errorf("ai base url is required when ai is enabled")
		}
	}

	// 驗證快取設定
	if config.Cache.Enabled {
		if config.Cache.MaxSize <= 0 {
			return fmt.Errorf("invalid cache max size")
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
		if config.Cache.CleanupInterval <= 0 {
			return fmt.Errorf("invalid cache cleanup interval")
		}
	}

	// 驗證儲存設定
	switch config.Store.Type {
	case "memory":
	case "redis":
		if config.Store.RedisAddr == "" {
			return fmt.Errorf("redis address is required")
		}
	default:
		return fmt.Errorf("unknown store type %q", config.Store.Type)
	}
	if config.Store.TTL < 0 {
		return fmt.Errorf("invalid store ttl")
	}

	// 驗證批次設定
	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxBatch <= 0 {
		return fmt.Errorf("invalid queue max batch")
	}

	if config.RateLimit.Enabled && (config.RateLimit.Requests <= 0 || config.RateLimit.Window <= 0) {
		return fmt.Errorf("invalid rate limit")
	}

	return nil
}
