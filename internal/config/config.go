package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	// MinPort is the minimum valid port number
	MinPort = 1
	// MaxPort is the maximum valid port number
	MaxPort = 65535
)

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Extractor  ExtractorConfig  `yaml:"extractor"`
	Summarizer SummarizerConfig `yaml:"summarizer"`
	Pipeline   PipelineConfig   `yaml:"pipeline"`
	Events     EventsConfig     `yaml:"events"`
	Logging    LoggingConfig    `yaml:"logging"`
	App        AppConfig        `yaml:"app"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds PostgreSQL connection configuration
type DatabaseConfig struct {
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Database        string        `yaml:"database"`
	SSLMode         string        `yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
}

// ExtractorConfig holds text-extraction service configuration
type ExtractorConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// SummarizerConfig holds summary generation configuration.
// Instruction is the fixed system prompt shared by both providers; the
// shape of the summary is a deployment constant, not a per-call parameter.
type SummarizerConfig struct {
	Instruction string         `yaml:"instruction"`
	Primary     ProviderConfig `yaml:"primary"`
	Secondary   ProviderConfig `yaml:"secondary"`
}

// ProviderConfig holds configuration for a single summary provider
type ProviderConfig struct {
	Name      string        `yaml:"name"`    // openai, gemini
	BaseURL   string        `yaml:"base_url"`
	Model     string        `yaml:"model"`
	APIKeyEnv string        `yaml:"api_key_env"` // env var holding the API key
	Timeout   time.Duration `yaml:"timeout"`
}

// PipelineConfig holds background pipeline configuration
type PipelineConfig struct {
	Concurrency     int           `yaml:"concurrency"`
	QueueSize       int           `yaml:"queue_size"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// EventsConfig holds the completion-event publisher configuration
type EventsConfig struct {
	Enabled    bool           `yaml:"enabled"`
	RabbitMQ   RabbitMQConfig `yaml:"rabbitmq"`
	RoutingKey string         `yaml:"routing_key"`
}

// RabbitMQConfig holds RabbitMQ connection and exchange configuration
type RabbitMQConfig struct {
	Host       string           `yaml:"host"`
	Port       int              `yaml:"port"`
	User       string           `yaml:"user"`
	Password   string           `yaml:"password"`
	VHost      string           `yaml:"vhost"`
	Exchange   ExchangeConfig   `yaml:"exchange"`
	Connection ConnectionConfig `yaml:"connection"`
	Publish    PublishConfig    `yaml:"publish"`
}

// ExchangeConfig holds RabbitMQ exchange configuration
type ExchangeConfig struct {
	Name       string `yaml:"name"`
	Type       string `yaml:"type"`
	Durable    bool   `yaml:"durable"`
	AutoDelete bool   `yaml:"auto_delete"`
}

// ConnectionConfig holds RabbitMQ connection settings
type ConnectionConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
	Heartbeat     time.Duration `yaml:"heartbeat"`
}

// PublishConfig holds RabbitMQ publish retry settings
type PublishConfig struct {
	RetryAttempts int           `yaml:"retry_attempts"`
	RetryInterval time.Duration `yaml:"retry_interval"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level        string `yaml:"level"`
	Format       string `yaml:"format"`
	Output       string `yaml:"output"`
	EnableCaller bool   `yaml:"enable_caller"`
}

// AppConfig holds application metadata
type AppConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// Load reads and parses the configuration file
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port < MinPort || c.Server.Port > MaxPort {
		return fmt.Errorf("invalid server port: %d (must be between %d and %d)", c.Server.Port, MinPort, MaxPort)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < MinPort || c.Database.Port > MaxPort {
		return fmt.Errorf("invalid database port: %d (must be between %d and %d)", c.Database.Port, MinPort, MaxPort)
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Extractor.BaseURL == "" {
		return fmt.Errorf("extractor base_url is required")
	}

	if err := c.Summarizer.Primary.validate("primary"); err != nil {
		return err
	}

	if err := c.Summarizer.Secondary.validate("secondary"); err != nil {
		return err
	}

	if c.Pipeline.Concurrency <= 0 {
		return fmt.Errorf("pipeline concurrency must be greater than 0")
	}

	if c.Pipeline.QueueSize <= 0 {
		return fmt.Errorf("pipeline queue_size must be greater than 0")
	}

	if c.Events.Enabled {
		if c.Events.RabbitMQ.Host == "" {
			return fmt.Errorf("rabbitmq host is required when events are enabled")
		}

		if c.Events.RabbitMQ.Port < MinPort || c.Events.RabbitMQ.Port > MaxPort {
			return fmt.Errorf("invalid rabbitmq port: %d (must be between %d and %d)", c.Events.RabbitMQ.Port, MinPort, MaxPort)
		}

		if c.Events.RabbitMQ.Exchange.Name == "" {
			return fmt.Errorf("rabbitmq exchange name is required when events are enabled")
		}
	}

	return nil
}

func (p *ProviderConfig) validate(role string) error {
	if p.Name == "" {
		return fmt.Errorf("summarizer %s provider name is required", role)
	}

	if p.Model == "" {
		return fmt.Errorf("summarizer %s provider model is required", role)
	}

	if p.APIKeyEnv == "" {
		return fmt.Errorf("summarizer %s provider api_key_env is required", role)
	}

	return nil
}
