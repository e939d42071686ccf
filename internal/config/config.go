// Package config loads the admin console settings from the environment and
// an optional .env file.
package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"

	AuditLog      = "log"
	AuditKafka    = "kafka"
	AuditRabbitMQ = "rabbitmq"
)

type Config struct {
	StoreDriver string `mapstructure:"STORE_DRIVER"`
	DataFile    string `mapstructure:"DATA_FILE"`
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	AuditSink        string   `mapstructure:"AUDIT_SINK"`
	KafkaBrokers     []string `mapstructure:"KAFKA_BROKERS"`
	KafkaAuditTopic  string   `mapstructure:"KAFKA_AUDIT_TOPIC"`
	RabbitMQURL      string   `mapstructure:"RABBITMQ_URL"`
	RabbitMQExchange string   `mapstructure:"RABBITMQ_EXCHANGE"`

	SessionSecret           string        `mapstructure:"SESSION_SECRET"`
	SessionTTL              time.Duration `mapstructure:"SESSION_TTL"`
	AllowConcurrentSessions bool          `mapstructure:"ALLOW_CONCURRENT_SESSIONS"`
	BcryptCost              int           `mapstructure:"BCRYPT_COST"`

	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`

	TransactionListLimit int `mapstructure:"TRANSACTION_LIST_LIMIT"`
}

var defaults = map[string]any{
	"STORE_DRIVER":              StoreMemory,
	"DATA_FILE":                 "data.json",
	"DATABASE_URL":              "",
	"AUDIT_SINK":                AuditLog,
	"KAFKA_BROKERS":             "localhost:9092",
	"KAFKA_AUDIT_TOPIC":         "admin_audit",
	"RABBITMQ_URL":              "",
	"RABBITMQ_EXCHANGE":         "admin_events",
	"SESSION_SECRET":            "",
	"SESSION_TTL":               "30m",
	"ALLOW_CONCURRENT_SESSIONS": false,
	"BCRYPT_COST":               10,
	"ADMIN_EMAIL":               "admin@kingstonbank.com",
	"ADMIN_PASSWORD":            "admin123",
	"TRANSACTION_LIST_LIMIT":    100,
}

// LoadConfig reads settings from environment variables, falling back to a
// .env file in path and then to defaults.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Printf("level=warn component=config msg=\"failed to read config file; using environment values\" err=%v", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	cfg.StoreDriver = strings.ToLower(strings.TrimSpace(cfg.StoreDriver))
	cfg.AuditSink = strings.ToLower(strings.TrimSpace(cfg.AuditSink))
	cfg.KafkaBrokers = splitList(cfg.KafkaBrokers)
	cfg.DatabaseURL = strings.TrimSpace(cfg.DatabaseURL)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the settings that the selected drivers depend on.
func (c Config) Validate() error {
	switch c.StoreDriver {
	case StoreMemory:
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when STORE_DRIVER=%s", StorePostgres)
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}

	switch c.AuditSink {
	case AuditLog:
	case AuditKafka:
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("KAFKA_BROKERS is required when AUDIT_SINK=%s", AuditKafka)
		}
	case AuditRabbitMQ:
		if strings.TrimSpace(c.RabbitMQURL) == "" {
			return fmt.Errorf("RABBITMQ_URL is required when AUDIT_SINK=%s", AuditRabbitMQ)
		}
	default:
		return fmt.Errorf("unsupported AUDIT_SINK %q", c.AuditSink)
	}

	if c.SessionTTL <= 0 {
		return fmt.Errorf("SESSION_TTL must be positive, got %s", c.SessionTTL)
	}
	return nil
}

// splitList flattens comma-separated entries and drops blanks.
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
