package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Auth     AuthConfig     `yaml:"auth"`
	Cashfree CashfreeConfig `yaml:"cashfree"`
	Amadeus  AmadeusConfig  `yaml:"amadeus"`
	Booking  BookingConfig  `yaml:"booking"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// MigrationURL is the URL form golang-migrate expects for its pgx/v5 driver.
func (d DatabaseConfig) MigrationURL() string {
	return fmt.Sprintf("pgx5://%s:%s@%s:%d/%s?sslmode=%s", d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

type CashfreeConfig struct {
	APIURL         string `yaml:"api_url"`
	AppID          string `yaml:"app_id"`
	SecretKey      string `yaml:"secret_key"`
	WebhookSecret  string `yaml:"webhook_secret"`
	NotifyURL      string `yaml:"notify_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c CashfreeConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type AmadeusConfig struct {
	APIURL         string `yaml:"api_url"`
	APIKey         string `yaml:"api_key"`
	APISecret      string `yaml:"api_secret"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (c AmadeusConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type BookingConfig struct {
	DefaultCurrency       string `yaml:"default_currency"`
	PaymentLockSeconds    int    `yaml:"payment_lock_seconds"`
	SearchCacheTTLSeconds int    `yaml:"search_cache_ttl_seconds"`
	WebhookMaxSkewSeconds int    `yaml:"webhook_max_skew_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyEnv()
	return &cfg, nil
}

// applyEnv overlays secrets from the environment so credentials never have to
// live in the checked-in yaml file.
func (c *Config) applyEnv() {
	overlay(&c.Database.Password, "DATABASE_PASSWORD")
	overlay(&c.Redis.Password, "REDIS_PASSWORD")
	overlay(&c.Auth.JWTSecret, "JWT_SECRET")
	overlay(&c.Cashfree.AppID, "CASHFREE_APP_ID")
	overlay(&c.Cashfree.SecretKey, "CASHFREE_SECRET_KEY")
	overlay(&c.Cashfree.WebhookSecret, "CASHFREE_WEBHOOK_SECRET")
	overlay(&c.Cashfree.APIURL, "CASHFREE_API_URL")
	overlay(&c.Amadeus.APIKey, "AMADEUS_API_KEY")
	overlay(&c.Amadeus.APISecret, "AMADEUS_API_SECRET")
}

func overlay(dst *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*dst = v
	}
}
