// File: internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type RuntimeConfig struct {
	Dev bool
}

type ServerConfig struct {
	Port int `yaml:"port"`
}

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL string `yaml:"url"` // optional; empty means flat-file storage only
}

type RedisConfig struct {
	URL      string `yaml:"url"` // optional; empty disables the posting budget
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type StorageConfig struct {
	File     string        `yaml:"file"`     // flat-file snapshot path
	Capacity int           `yaml:"capacity"` // max live sessions before eviction
	Debounce time.Duration `yaml:"debounce"` // deferred-save coalescing window
}

type AIConfig struct {
	AnthropicKey   string `yaml:"anthropic_key"`
	OpenAIKey      string `yaml:"openai_key"`
	OpenAIBaseURL  string `yaml:"openai_base_url"`
	GeminiKey      string `yaml:"gemini_key"`
	Model          string `yaml:"model"` // provider default applies when empty
	MaxReplyTokens int    `yaml:"max_reply_tokens"`
}

type XConfig struct {
	AccessToken string `yaml:"access_token"` // OAuth2 user-context token
}

type TelegramConfig struct {
	Token     string `yaml:"token"`
	ChannelID int64  `yaml:"channel_id"`
}

type PostingConfig struct {
	Interval      time.Duration  `yaml:"interval"`
	MaxPostTokens int            `yaml:"max_post_tokens"`
	DailyLimit    int            `yaml:"daily_limit"` // redis-backed budget per 24h
	X             XConfig        `yaml:"x"`
	Telegram      TelegramConfig `yaml:"telegram"`
}

type AdminConfig struct {
	Secret     string        `yaml:"secret"`      // login secret for destructive routes
	SigningKey string        `yaml:"signing_key"` // HMAC key for session tokens
	TTL        time.Duration `yaml:"ttl"`
}

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Storage  StorageConfig  `yaml:"storage"`
	AI       AIConfig       `yaml:"ai"`
	Posting  PostingConfig  `yaml:"posting"`
	Admin    AdminConfig    `yaml:"admin"`

	Runtime RuntimeConfig `yaml:"-"`
}

func LoadConfig(path string, dev bool) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	// defaults
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 3000
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Storage.File == "" {
		cfg.Storage.File = "data/conversations.json"
	}
	if cfg.Storage.Capacity <= 0 {
		cfg.Storage.Capacity = 100
	}
	if cfg.Storage.Debounce <= 0 {
		cfg.Storage.Debounce = time.Second
	}
	if cfg.AI.MaxReplyTokens <= 0 {
		cfg.AI.MaxReplyTokens = 200
	}
	if cfg.Posting.Interval <= 0 {
		// ~17 posts per 24h, tuned to the X free-tier write cap.
		cfg.Posting.Interval = 85 * time.Minute
	}
	if cfg.Posting.MaxPostTokens <= 0 {
		cfg.Posting.MaxPostTokens = 100
	}
	if cfg.Posting.DailyLimit <= 0 {
		cfg.Posting.DailyLimit = 17
	}
	if cfg.Admin.TTL <= 0 {
		cfg.Admin.TTL = 30 * time.Minute
	}

	// Minimal validation
	if !dev && cfg.AI.AnthropicKey == "" && cfg.AI.OpenAIKey == "" && cfg.AI.GeminiKey == "" {
		return nil, errors.New("ai: set ai.anthropic_key, ai.openai_key or ai.gemini_key (or run with -dev)")
	}
	if cfg.Admin.Secret != "" && cfg.Admin.SigningKey == "" {
		return nil, errors.New("admin.signing_key is required when admin.secret is set")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
