package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Notifications NotificationsConfig `yaml:"notifications"`
	SMTP          SMTPConfig          `yaml:"smtp"`
	Stripe        StripeConfig        `yaml:"stripe"`
	Cache         CacheConfig         `yaml:"cache"`
	Log           LogConfig           `yaml:"log"`
}

type HTTPConfig struct {
	Address         string   `yaml:"address"`
	CORSOrigins     []string `yaml:"cors_origins"`
	RateLimitRPS    float64  `yaml:"rate_limit_rps"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	ShutdownSeconds int      `yaml:"shutdown_seconds"`
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

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	EventsTopic        string   `yaml:"events_topic"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

const (
	TransportSMTP  = "smtp"
	TransportKafka = "kafka"
)

type NotificationsConfig struct {
	// Transport is smtp (send in-process) or kafka (hand off to the worker).
	Transport          string `yaml:"transport"`
	Workers            int    `yaml:"workers"`
	QueueSize          int    `yaml:"queue_size"`
	SendTimeoutSeconds int    `yaml:"send_timeout_seconds"`
	Timezone           string `yaml:"timezone"`
}

func (n NotificationsConfig) SendTimeout() time.Duration {
	return time.Duration(n.SendTimeoutSeconds) * time.Second
}

// Location falls back to UTC when the zone is empty.
func (n NotificationsConfig) Location() (*time.Location, error) {
	if n.Timezone == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(n.Timezone)
}

type SMTPConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Username       string `yaml:"username"`
	Password       string `yaml:"password"`
	From           string `yaml:"from"`
	FromName       string `yaml:"from_name"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type StripeConfig struct {
	SecretKey     string `yaml:"secret_key"`
	WebhookSecret string `yaml:"webhook_secret"`
	Currency      string `yaml:"currency"`
	SuccessURL    string `yaml:"success_url"`
	CancelURL     string `yaml:"cancel_url"`
}

type CacheConfig struct {
	AreasTTLSeconds    int `yaml:"areas_ttl_seconds"`
	CalendarTTLSeconds int `yaml:"calendar_ttl_seconds"`
}

func (c CacheConfig) AreasTTL() time.Duration {
	return time.Duration(c.AreasTTLSeconds) * time.Second
}

func (c CacheConfig) CalendarTTL() time.Duration {
	return time.Duration(c.CalendarTTLSeconds) * time.Second
}

type LogConfig struct {
	Env   string `yaml:"env"`
	Level string `yaml:"level"`
}

// LoadConfig reads the YAML file, then a .env file next to the working
// directory if present, then the secret overrides from the environment.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		HTTP: HTTPConfig{Address: ":8080", RateLimitRPS: 20, RateLimitBurst: 40, ShutdownSeconds: 5},
		Notifications: NotificationsConfig{
			Transport:          TransportSMTP,
			Workers:            2,
			QueueSize:          128,
			SendTimeoutSeconds: 15,
		},
		SMTP:   SMTPConfig{Port: 587, TimeoutSeconds: 10},
		Stripe: StripeConfig{Currency: "usd"},
		Cache:  CacheConfig{AreasTTLSeconds: 300, CalendarTTLSeconds: 60},
		Log:    LogConfig{Env: "development", Level: "info"},
	}
}

func (c *Config) applyEnv() error {
	overrides := map[string]*string{
		"DATABASE_PASSWORD":     &c.Database.Password,
		"REDIS_PASSWORD":        &c.Redis.Password,
		"SMTP_PASSWORD":         &c.SMTP.Password,
		"STRIPE_SECRET_KEY":     &c.Stripe.SecretKey,
		"STRIPE_WEBHOOK_SECRET": &c.Stripe.WebhookSecret,
		"LOG_LEVEL":             &c.Log.Level,
		"HTTP_ADDRESS":          &c.HTTP.Address,
	}
	for key, dst := range overrides {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	if v, ok := os.LookupEnv("DATABASE_PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("DATABASE_PORT: %w", err)
		}
		c.Database.Port = port
	}
	return nil
}

func (c *Config) Validate() error {
	switch c.Notifications.Transport {
	case TransportSMTP, TransportKafka:
	default:
		return fmt.Errorf("notifications.transport must be %q or %q, got %q", TransportSMTP, TransportKafka, c.Notifications.Transport)
	}
	if c.Notifications.Transport == TransportKafka && (len(c.Kafka.Brokers) == 0 || c.Kafka.NotificationsTopic == "") {
		return errors.New("kafka transport needs kafka.brokers and kafka.notifications_topic")
	}
	if _, err := c.Notifications.Location(); err != nil {
		return fmt.Errorf("notifications.timezone: %w", err)
	}
	return nil
}
