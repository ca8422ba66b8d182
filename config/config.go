package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/erain9/tickbook/pkg/db/queue"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Book struct {
		// GFDCutoff is the local wall-clock time ("15:04:05") at which
		// good-for-day orders expire.
		GFDCutoff string `yaml:"gfd_cutoff"`
		// TickSize is the decimal size of one price tick, e.g. "0.01".
		TickSize string `yaml:"tick_size"`
	} `yaml:"book"`

	Kafka struct {
		Enabled    bool   `yaml:"enabled"`
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
	} `yaml:"kafka"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Channel  string `yaml:"channel"`
	} `yaml:"redis"`

	Otel struct {
		Enabled  bool   `yaml:"enabled"`
		Endpoint string `yaml:"endpoint"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile = flag.String("config", "", "Path to config file (YAML)")
	logLevel   = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat  = flag.String("log_format", "pretty", "Log format: json, pretty")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	// Create default configuration
	config := &Config{}
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Book.GFDCutoff = "16:00:00"
	config.Book.TickSize = "0.01"
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "tickbook-done-messages"
	config.Redis.Addr = "localhost:6379"
	config.Redis.Channel = "tickbook:levels"
	config.Otel.Endpoint = "localhost:4317"

	// Load configuration from file if specified
	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}

		log.Printf("Loaded configuration from %s", *configFile)
	}

	// Override Kafka configuration in package variables
	queue.SetBrokerList(config.Kafka.BrokerAddr)
	queue.SetTopic(config.Kafka.Topic)

	if _, err := config.CutoffOffset(); err != nil {
		return nil, err
	}

	return config, nil
}

// CutoffOffset returns the good-for-day cutoff as an offset from local
// midnight.
func (c *Config) CutoffOffset() (time.Duration, error) {
	parsed, err := time.Parse("15:04:05", c.Book.GFDCutoff)
	if err != nil {
		return 0, fmt.Errorf("invalid gfd_cutoff %q: %w", c.Book.GFDCutoff, err)
	}
	return time.Duration(parsed.Hour())*time.Hour +
		time.Duration(parsed.Minute())*time.Minute +
		time.Duration(parsed.Second())*time.Second, nil
}
