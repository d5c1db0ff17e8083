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

type LogConfig struct {
	Level    string `yaml:"level"`    // trace|debug|info|warn|error
	Format   string `yaml:"format"`   // json|console
	Sampling bool   `yaml:"sampling"` // enable sampling in prod
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
}

type RedisConfig struct {
	URL      string        `yaml:"url"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"` // registration state TTL
}

type WebConfig struct {
	Port        int           `yaml:"port"`
	JWTSecret   string        `yaml:"jwt_secret"`
	TokenTTL    time.Duration `yaml:"token_ttl"`
	BaseURL     string        `yaml:"base_url"`     // public origin for gateway return/notify URLs
	FrontendURL string        `yaml:"frontend_url"` // redirect target for return/cancel pages
}

type PayHereConfig struct {
	MerchantID     string `yaml:"merchant_id"`
	MerchantSecret string `yaml:"merchant_secret"`
	Currency       string `yaml:"currency"`
	Sandbox        bool   `yaml:"sandbox"`
}

type WhatsAppConfig struct {
	APIURL      string        `yaml:"api_url"`
	Email       string        `yaml:"email"`
	APIKey      string        `yaml:"api_key"`
	SlotID      string        `yaml:"slot_id"`
	SendTimeout time.Duration `yaml:"send_timeout"`
}

type PaymentConfig struct {
	PayHere PayHereConfig `yaml:"payhere"`
	// InquiryGated requires an approved inquiry before a checkout session may
	// be built for a course.
	InquiryGated bool `yaml:"inquiry_gated"`
}

type Config struct {
	Log      LogConfig      `yaml:"log"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Web      WebConfig      `yaml:"web"`
	Payment  PaymentConfig  `yaml:"payment"`
	WhatsApp WhatsAppConfig `yaml:"whatsapp"`

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
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}
	if cfg.Database.MaxConns <= 0 {
		cfg.Database.MaxConns = 10
	}
	if cfg.Redis.TTL <= 0 {
		cfg.Redis.TTL = 15 * time.Minute
	}
	if cfg.Web.Port == 0 {
		cfg.Web.Port = 5000
	}
	if cfg.Web.TokenTTL <= 0 {
		cfg.Web.TokenTTL = 24 * time.Hour
	}
	if cfg.Web.BaseURL == "" {
		cfg.Web.BaseURL = fmt.Sprintf("http://localhost:%d", cfg.Web.Port)
	}
	if cfg.Payment.PayHere.Currency == "" {
		cfg.Payment.PayHere.Currency = "LKR"
	}
	if cfg.WhatsApp.APIURL == "" {
		cfg.WhatsApp.APIURL = "https://quicksend.lk/Client/wtsp-api.php"
	}
	if cfg.WhatsApp.SendTimeout <= 0 {
		cfg.WhatsApp.SendTimeout = 10 * time.Second
	}

	// Minimal validation
	if cfg.Database.URL == "" {
		return nil, errors.New("database.url is required")
	}
	if cfg.Web.JWTSecret == "" {
		return nil, errors.New("web.jwt_secret is required")
	}
	if cfg.Payment.PayHere.MerchantID == "" || cfg.Payment.PayHere.MerchantSecret == "" {
		return nil, errors.New("payment.payhere merchant_id and merchant_secret are required")
	}

	cfg.Runtime.Dev = dev
	return &cfg, nil
}
