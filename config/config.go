package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		HTTPAddr  string `yaml:"http_addr"`
		LogLevel  string `yaml:"log_level"`
		LogFormat string `yaml:"log_format"`
	} `yaml:"server"`

	Kafka struct {
		BrokerAddr string `yaml:"broker_addr"`
		Topic      string `yaml:"topic"`
		// Driver selects the producer implementation: kafka-go or sarama
		Driver string `yaml:"driver"`
	} `yaml:"kafka"`

	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Engine struct {
		WorkerID         int64    `yaml:"worker_id"`
		Symbols          []string `yaml:"symbols"`
		SnapshotInterval string   `yaml:"snapshot_interval"`
	} `yaml:"engine"`

	Otel struct {
		Endpoint string `yaml:"endpoint"`
		Enabled  bool   `yaml:"enabled"`
	} `yaml:"otel"`
}

// Default configuration values
var (
	configFile  = flag.String("config", "", "Path to config file (YAML)")
	httpPort    = flag.Int("http_port", 8080, "The HTTP server port")
	logLevel    = flag.String("log_level", "info", "Log level: debug, info, warn, error")
	logFormat   = flag.String("log_format", "pretty", "Log format: json, pretty")
	workerID    = flag.Int64("worker_id", 0, "ID generator worker id (0-1023)")
	kafkaDriver = flag.String("kafka_driver", "kafka-go", "Kafka producer driver: kafka-go, sarama")
	symbols     = flag.String("symbols", "", "Comma-separated symbols to create order books for at startup")
)

// LoadConfig loads the configuration from command line flags and optionally from a config file
func LoadConfig() (*Config, error) {
	flag.Parse()

	config := &Config{}
	config.Server.HTTPAddr = fmt.Sprintf(":%d", *httpPort)
	config.Server.LogLevel = *logLevel
	config.Server.LogFormat = *logFormat
	config.Kafka.BrokerAddr = "localhost:9092"
	config.Kafka.Topic = "venue-events"
	config.Kafka.Driver = *kafkaDriver
	config.Redis.Addr = "localhost:6379"
	config.Engine.WorkerID = *workerID
	config.Engine.SnapshotInterval = "30s"
	config.Otel.Endpoint = "localhost:4317"

	if *symbols != "" {
		for _, s := range strings.Split(*symbols, ",") {
			if s = strings.TrimSpace(s); s != "" {
				config.Engine.Symbols = append(config.Engine.Symbols, s)
			}
		}
	}

	if *configFile != "" {
		yamlFile, err := os.ReadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(yamlFile, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	return config, nil
}

// SnapshotInterval parses the configured snapshot interval, falling
// back to 30 seconds on an empty or malformed value
func (c *Config) SnapshotInterval() time.Duration {
	d, err := time.ParseDuration(c.Engine.SnapshotInterval)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}
