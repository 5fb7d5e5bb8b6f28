package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	BackendPostgres = "postgres"
	BackendMemory   = "memory"
)

type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	Backend      string
	DatabaseURL  string
	RedisURL     string
	KafkaBrokers []string
	BlobBaseURL  string

	MaxDBConns       int32
	RunMigrations    bool
	KafkaTopic       string
	KafkaTopicChats  string
	ChangeFeedPrefix string

	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxMaxRetries   int

	WriteTimeout    time.Duration
	TokenTTL        time.Duration
	JWTSecret       string
	BcryptCost      int
	CredentialsPath string
}

type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
		Backend  string `yaml:"backend"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL      string   `yaml:"postgres_url"`
		RedisURL         string   `yaml:"redis_url"`
		KafkaBrokers     []string `yaml:"kafka_brokers"`
		KafkaTopic       string   `yaml:"kafka_topic"`
		KafkaTopicChats  string   `yaml:"kafka_topic_chats"`
		ChangeFeedPrefix string   `yaml:"change_feed_prefix"`
		BlobBaseURL      string   `yaml:"blob_base_url"`
	} `yaml:"dependencies"`
	Session struct {
		CredentialsPath string `yaml:"credentials_path"`
		TokenTTL        string `yaml:"token_ttl"`
		WriteTimeout    string `yaml:"write_timeout"`
	} `yaml:"session"`
}

func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:          "chatlive",
		HTTPPort:           8080,
		GRPCPort:           9090,
		Backend:            BackendPostgres,
		BlobBaseURL:        "http://localhost:8080/v1/blobs",
		MaxDBConns:         20,
		RunMigrations:      true,
		KafkaTopic:         "chatlive.sync.v1",
		ChangeFeedPrefix:   "chatlive:changes:",
		OutboxPollInterval: 2 * time.Second,
		OutboxBatchSize:    100,
		OutboxMaxRetries:   10,
		WriteTimeout:       10 * time.Second,
		TokenTTL:           30 * 24 * time.Hour,
		BcryptCost:         12,
		CredentialsPath:    ".chatlive/session.yaml",
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Service.Backend != "" {
			cfg.Backend = f.Service.Backend
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if len(f.Dependencies.KafkaBrokers) > 0 {
			cfg.KafkaBrokers = trimNonEmpty(f.Dependencies.KafkaBrokers)
		}
		if f.Dependencies.KafkaTopic != "" {
			cfg.KafkaTopic = f.Dependencies.KafkaTopic
		}
		if f.Dependencies.KafkaTopicChats != "" {
			cfg.KafkaTopicChats = f.Dependencies.KafkaTopicChats
		}
		if f.Dependencies.ChangeFeedPrefix != "" {
			cfg.ChangeFeedPrefix = f.Dependencies.ChangeFeedPrefix
		}
		if f.Dependencies.BlobBaseURL != "" {
			cfg.BlobBaseURL = f.Dependencies.BlobBaseURL
		}
		if f.Session.CredentialsPath != "" {
			cfg.CredentialsPath = f.Session.CredentialsPath
		}
		if cfg.TokenTTL, err = parseDurationOr(f.Session.TokenTTL, cfg.TokenTTL); err != nil {
			return Config{}, fmt.Errorf("parse session.token_ttl: %w", err)
		}
		if cfg.WriteTimeout, err = parseDurationOr(f.Session.WriteTimeout, cfg.WriteTimeout); err != nil {
			return Config{}, fmt.Errorf("parse session.write_timeout: %w", err)
		}
	}

	cfg.ServiceID = envOrDefault("SERVICE_ID", cfg.ServiceID)
	cfg.Backend = strings.ToLower(envOrDefault("STORE_BACKEND", cfg.Backend))
	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.KafkaBrokers = envCSV("KAFKA_BROKERS", cfg.KafkaBrokers)
	cfg.KafkaTopic = envOrDefault("KAFKA_TOPIC", cfg.KafkaTopic)
	cfg.KafkaTopicChats = envOrDefault("KAFKA_TOPIC_CHATS", cfg.KafkaTopicChats)
	cfg.ChangeFeedPrefix = envOrDefault("CHANGE_FEED_PREFIX", cfg.ChangeFeedPrefix)
	cfg.BlobBaseURL = envOrDefault("BLOB_BASE_URL", cfg.BlobBaseURL)
	cfg.JWTSecret = envOrDefault("JWT_SECRET", cfg.JWTSecret)
	cfg.CredentialsPath = envOrDefault("CREDENTIALS_PATH", cfg.CredentialsPath)
	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.BcryptCost = envInt("BCRYPT_COST", cfg.BcryptCost)
	cfg.RunMigrations = envBool("RUN_MIGRATIONS", cfg.RunMigrations)
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.WriteTimeout = envDuration("WRITE_TIMEOUT", cfg.WriteTimeout)
	cfg.TokenTTL = envDuration("TOKEN_TTL", cfg.TokenTTL)

	switch cfg.Backend {
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
		}
	case BackendMemory:
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.Backend)
	}
	return cfg, nil
}

func parseDurationOr(raw string, fallback time.Duration) (time.Duration, error) {
	if strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	return time.ParseDuration(strings.TrimSpace(raw))
}

func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(name string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	switch strings.ToLower(raw) {
	case "1", "true", "yes":
		return true
	case "0", "false", "no":
		return false
	default:
		return fallback
	}
}

func envDuration(name string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func envCSV(name string, fallback []string) []string {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return fallback
	}
	return trimNonEmpty(strings.Split(raw, ","))
}

func trimNonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		trimmed := strings.TrimSpace(v)
		if trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
