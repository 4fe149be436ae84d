package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
	"gopkg.in/yaml.v2"

	"simbi_backend/internal/logger"
)

// EnvPrefix namespaces overrides: SIMBI_SERVER__PORT -> server.port.
const EnvPrefix = "SIMBI_"

type Config struct {
	Server struct {
		Host            string        `yaml:"host" koanf:"host"`
		Port            int           `yaml:"port" koanf:"port" validate:"required,min=1,max=65535"`
		Env             string        `yaml:"env" koanf:"env" validate:"required,oneof=development production test"`
		ReadTimeout     time.Duration `yaml:"read_timeout" koanf:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout" koanf:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" koanf:"shutdown_timeout"`
	} `yaml:"server" koanf:"server"`

	Database struct {
		Driver          string        `yaml:"driver" koanf:"driver" validate:"oneof=postgres mysql sqlite"`
		DSN             string        `yaml:"url" koanf:"url" validate:"required"`
		MaxOpenConns    int           `yaml:"max_open_conns" koanf:"max_open_conns"`
		MaxIdleConns    int           `yaml:"max_idle_conns" koanf:"max_idle_conns"`
		ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" koanf:"conn_max_lifetime"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" koanf:"slow_threshold"`
		AutoMigrate     bool          `yaml:"auto_migrate" koanf:"auto_migrate"`
	} `yaml:"database" koanf:"database"`

	JWT struct {
		Secret     string        `yaml:"secret" koanf:"secret" validate:"required,min=16"`
		TTL        int           `yaml:"ttl" koanf:"ttl"` // minutes
		RefreshTTL time.Duration `yaml:"refresh_ttl" koanf:"refresh_ttl"`
		Issuer     string        `yaml:"issuer" koanf:"issuer"`
	} `yaml:"jwt" koanf:"jwt"`

	Logging struct {
		Level string `yaml:"level" koanf:"level"`
	} `yaml:"logging" koanf:"logging"`

	Redis struct {
		Addr     string `yaml:"addr" koanf:"addr"`
		Password string `yaml:"password" koanf:"password"`
		DB       int    `yaml:"db" koanf:"db"`
	} `yaml:"redis" koanf:"redis"`

	Jobs struct {
		Enabled     bool `yaml:"enabled" koanf:"enabled"`
		Concurrency int  `yaml:"concurrency" koanf:"concurrency"`
	} `yaml:"jobs" koanf:"jobs"`

	Email struct {
		Provider     string `yaml:"provider" koanf:"provider" validate:"omitempty,oneof=smtp resend mock"`
		SMTPHost     string `yaml:"smtp_host" koanf:"smtp_host"`
		SMTPPort     int    `yaml:"smtp_port" koanf:"smtp_port"`
		SMTPUsername string `yaml:"smtp_user" koanf:"smtp_user"`
		SMTPPassword string `yaml:"smtp_password" koanf:"smtp_password"`
		ResendAPIKey string `yaml:"resend_api_key" koanf:"resend_api_key"`
		FromEmail    string `yaml:"from_email" koanf:"from_email"`
		FromName     string `yaml:"from_name" koanf:"from_name"`
		UseTLS       bool   `yaml:"use_tls" koanf:"use_tls"`
		FrontendURL  string `yaml:"frontend_url" koanf:"frontend_url"`
	} `yaml:"email" koanf:"email"`

	Storage struct {
		Type      string `yaml:"type" koanf:"type" validate:"omitempty,oneof=local r2 s3"`
		BasePath  string `yaml:"base_path" koanf:"base_path"`
		BaseURL   string `yaml:"base_url" koanf:"base_url"`
		Bucket    string `yaml:"bucket" koanf:"bucket"`
		Region    string `yaml:"region" koanf:"region"`
		AccessKey string `yaml:"access_key" koanf:"access_key"`
		SecretKey string `yaml:"secret_key" koanf:"secret_key"`
		Endpoint  string `yaml:"endpoint" koanf:"endpoint"`
	} `yaml:"storage" koanf:"storage"`

	Upload struct {
		MaxSize      int64    `yaml:"max_size" koanf:"max_size"`
		AllowedTypes []string `yaml:"allowed_types" koanf:"allowed_types"`
		ImageQuality int      `yaml:"image_quality" koanf:"image_quality"`
	} `yaml:"upload" koanf:"upload"`

	Stripe struct {
		SecretKey     string `yaml:"secret_key" koanf:"secret_key"`
		WebhookSecret string `yaml:"webhook_secret" koanf:"webhook_secret"`
		Currency      string `yaml:"currency" koanf:"currency"`
	} `yaml:"stripe" koanf:"stripe"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowed_origins" koanf:"allowed_origins"`
	} `yaml:"cors" koanf:"cors"`

	RateLimit struct {
		Enabled  bool          `yaml:"enabled" koanf:"enabled"`
		Requests int           `yaml:"requests" koanf:"requests"`
		Window   time.Duration `yaml:"window" koanf:"window"`
	} `yaml:"rate_limit" koanf:"rate_limit"`

	Admin struct {
		Email    string `yaml:"email" koanf:"email" validate:"omitempty,email"`
		Password string `yaml:"password" koanf:"password" validate:"omitempty,min=8"`
	} `yaml:"admin" koanf:"admin"`

	Workers struct {
		TokenCleanupSpec        string `yaml:"token_cleanup_spec" koanf:"token_cleanup_spec"`
		NotificationCleanupSpec string `yaml:"notification_cleanup_spec" koanf:"notification_cleanup_spec"`
		NotificationRetention   int    `yaml:"notification_retention_days" koanf:"notification_retention_days"`
	} `yaml:"workers" koanf:"workers"`
}

var AppConfig *Config

// Defaults returns a config usable for local development without any file.
func Defaults() *Config {
	var cfg Config

	cfg.Server.Host = "0.0.0.0"
	cfg.Server.Port = 8080
	cfg.Server.Env = "development"
	cfg.Server.ReadTimeout = 15 * time.Second
	cfg.Server.WriteTimeout = 15 * time.Second
	cfg.Server.ShutdownTimeout = 10 * time.Second

	cfg.Database.Driver = "postgres"
	cfg.Database.MaxOpenConns = 25
	cfg.Database.MaxIdleConns = 5
	cfg.Database.ConnMaxLifetime = 30 * time.Minute
	cfg.Database.SlowThreshold = 200 * time.Millisecond
	cfg.Database.AutoMigrate = true

	cfg.JWT.TTL = 60
	cfg.JWT.RefreshTTL = 30 * 24 * time.Hour
	cfg.JWT.Issuer = "simbi"

	cfg.Jobs.Concurrency = 10

	cfg.Email.Provider = "mock"
	cfg.Email.SMTPPort = 587
	cfg.Email.FromEmail = "no-reply@simbi.app"
	cfg.Email.FromName = "Simbi"
	cfg.Email.FrontendURL = "http://localhost:5173"

	cfg.Storage.Type = "local"
	cfg.Storage.BasePath = "./uploads"
	cfg.Storage.BaseURL = "/uploads"

	cfg.Upload.MaxSize = 10 * 1024 * 1024
	cfg.Upload.AllowedTypes = []string{"image/jpeg", "image/png", "image/webp"}
	cfg.Upload.ImageQuality = 85

	cfg.Stripe.Currency = "usd"

	cfg.CORS.AllowedOrigins = []string{"http://localhost:5173", "http://localhost:3000"}

	cfg.RateLimit.Requests = 20
	cfg.RateLimit.Window = time.Minute

	cfg.Workers.TokenCleanupSpec = "@hourly"
	cfg.Workers.NotificationCleanupSpec = "0 3 * * *"
	cfg.Workers.NotificationRetention = 90

	return &cfg
}

// Load builds the configuration: defaults, then the yaml file at CONFIG_PATH
// (config/config.yaml), then SIMBI_* variables, then the plain legacy
// variables. The result is validated.
func Load() (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	cfg := Defaults()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	if err := loadFile(configPath, cfg); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.ReplaceAll(key, "__", ".")
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("load env overrides: %w", err)
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal env overrides: %w", err)
	}

	applyLegacyEnv(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// applyLegacyEnv keeps the deployment variables used by CI and docker-compose.
func applyLegacyEnv(cfg *Config) {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("DATABASE_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("SERVER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.JWT.Secret = v
	}
	if v := os.Getenv("STRIPE_SECRET_KEY"); v != "" {
		cfg.Stripe.SecretKey = v
	}
	if v := os.Getenv("STRIPE_WEBHOOK_SECRET"); v != "" {
		cfg.Stripe.WebhookSecret = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
	}
	if v := os.Getenv("FIRST_ADMIN_EMAIL"); v != "" {
		cfg.Admin.Email = v
	}
	if v := os.Getenv("FIRST_ADMIN_PASSWORD"); v != "" {
		cfg.Admin.Password = v
	}
}

// LoadConfig loads AppConfig and exits on failure.
func LoadConfig() {
	cfg, err := Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", "error", err)
	}
	AppConfig = cfg
}

func GetConfig() *Config {
	if AppConfig == nil {
		LoadConfig()
	}
	return AppConfig
}

// Addr is host:port for http.Server.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}
