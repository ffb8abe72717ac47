// Package config loads delivery credentials and infrastructure endpoints from
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is read from environment variables. Command-line flags cover the
// per-process options (port, database URL, event bus).
type Config struct {
	SMTP     SMTPConfig     `envPrefix:"SMTP_"`
	VAPID    VAPIDConfig    `envPrefix:"VAPID_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Redis    RedisConfig    `envPrefix:"REDIS_"`
	Tracing  TracingConfig
	WorkerID string `env:"WORKER_ID"`
}

type SMTPConfig struct {
	Host     string `env:"HOST"`
	Port     int    `env:"PORT"     envDefault:"587" validate:"min=1,max=65535"`
	Username string `env:"USERNAME"`
	Password string `env:"PASSWORD"`
	From     string `env:"FROM"                      validate:"omitempty,email"`
}

type VAPIDConfig struct {
	PublicKey  string `env:"PUBLIC_KEY"`
	PrivateKey string `env:"PRIVATE_KEY"`
	Subscriber string `env:"SUBSCRIBER" envDefault:"admin@localhost"`
}

// Enabled reports whether both halves of the key pair are set.
func (v VAPIDConfig) Enabled() bool {
	return v.PublicKey != "" && v.PrivateKey != ""
}

type KafkaConfig struct {
	// Brokers is a comma separated host:port list.
	Brokers string `env:"BROKERS" envDefault:"localhost:9092"`
	// TriggerTopic enables the Kafka trigger source when set.
	TriggerTopic string `env:"TRIGGER_TOPIC"`
	TriggerGroup string `env:"TRIGGER_GROUP" envDefault:"notimaster-triggers"`
}

type RedisConfig struct {
	URL         string `env:"URL"          envDefault:"redis://localhost:6379/0"`
	Queue       string `env:"QUEUE"        envDefault:"notimaster:dispatch"`
	MaxAttempts int    `env:"MAX_ATTEMPTS" envDefault:"3"                        validate:"min=1"`
}

type TracingConfig struct {
	Endpoint string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Enabled reports whether an OTLP endpoint was configured.
func (t TracingConfig) Enabled() bool {
	return t.Endpoint != ""
}

// Load reads an optional .env file, then the environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		var pathErr *os.PathError
		if !errors.As(err, &pathErr) {
			return Config{}, fmt.Errorf("load .env file: %w", err)
		}
	}

	return Parse()
}

// Parse reads the environment and validates the result.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	cfg.Sanitize()

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Sanitize trims values that commonly pick up stray whitespace.
func (c *Config) Sanitize() {
	c.SMTP.Host = strings.TrimSpace(c.SMTP.Host)
	c.VAPID.PublicKey = strings.TrimSpace(c.VAPID.PublicKey)
	c.VAPID.PrivateKey = strings.TrimSpace(c.VAPID.PrivateKey)
	c.Redis.URL = strings.TrimSpace(c.Redis.URL)
}
