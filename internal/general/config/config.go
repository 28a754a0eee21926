package config

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string // YAML key: "database"
}

type RabbitMQConfig struct {
	Host     string
	Port     int
	User     string
	Password string
}

type WebSocketConfig struct {
	Port int
}

type DirectionsConfig struct {
	Endpoint string
	APIKey   string
	APIHost  string
}

type JWTConfig struct {
	SecretKey string
}

type SimulatorConfig struct {
	TickIntervalSeconds float64 // wall-clock sleep between ticks
	TickMultiplier      float64 // simulated seconds of travel per tick
	MockOffsetMeters    float64 // max randomized pickup-leg start offset
}

type MetricsConfig struct {
	Addr string
}

type Config struct {
	Database   DatabaseConfig
	RabbitMQ   RabbitMQConfig
	WebSocket  WebSocketConfig
	Directions DirectionsConfig
	JWT        JWTConfig
	Simulator  SimulatorConfig
	Metrics    MetricsConfig
}

// LoadFromFile loads config from a YAML file, overlays environment variables
// (a .env file is honored when present), applies defaults, and validates.
func LoadFromFile(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := parseYAML(file, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	overlayEnv(&cfg)
	applyDefaults(&cfg)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

// overlayEnv lets secrets come from the environment instead of the file.
func overlayEnv(cfg *Config) {
	_ = godotenv.Load() // ignore if missing

	if v := os.Getenv("EONCAB_DB_PASSWORD"); v != "" {
		cfg.Database.Password = v
	}
	if v := os.Getenv("EONCAB_JWT_SECRET"); v != "" {
		cfg.JWT.SecretKey = v
	}
	if v := os.Getenv("DIRECTION_API_ENDPOINT"); v != "" {
		cfg.Directions.Endpoint = v
	}
	if v := os.Getenv("DIRECTION_API_KEY_HEADER"); v != "" {
		cfg.Directions.APIKey = v
	}
	if v := os.Getenv("DIRECTION_API_HOST_HEADER"); v != "" {
		cfg.Directions.APIHost = v
	}
}

// applyDefaults sets safe defaults for some fields.
func applyDefaults(cfg *Config) {
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}

	if cfg.RabbitMQ.Host == "" {
		cfg.RabbitMQ.Host = "localhost"
	}
	if cfg.RabbitMQ.Port == 0 {
		cfg.RabbitMQ.Port = 5672
	}

	if cfg.WebSocket.Port == 0 {
		cfg.WebSocket.Port = 8080
	}

	if cfg.Directions.Endpoint == "" {
		cfg.Directions.Endpoint = "http://localhost:3000/"
	}

	if cfg.Simulator.TickIntervalSeconds == 0 {
		cfg.Simulator.TickIntervalSeconds = 0.5
	}
	if cfg.Simulator.TickMultiplier == 0 {
		cfg.Simulator.TickMultiplier = 3
	}
	if cfg.Simulator.MockOffsetMeters == 0 {
		cfg.Simulator.MockOffsetMeters = 500
	}

	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = ":9100"
	}

	if cfg.JWT.SecretKey == "" {
		key := make([]byte, 32)
		if _, err := rand.Read(key); err == nil {
			cfg.JWT.SecretKey = base64.StdEncoding.EncodeToString(key)
		}
	}
}

// validate checks required fields and basic ranges.
func (c *Config) validate() error {
	var problems []string

	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		problems = append(problems, "database.port must be in 1..65535")
	}
	if c.Database.User == "" {
		problems = append(problems, "database.user is required")
	}
	if c.Database.Name == "" {
		problems = append(problems, "database.database is required")
	}

	if c.RabbitMQ.Port <= 0 || c.RabbitMQ.Port > 65535 {
		problems = append(problems, "rabbitmq.port must be in 1..65535")
	}
	if c.RabbitMQ.User == "" {
		problems = append(problems, "rabbitmq.user is required")
	}

	if c.WebSocket.Port <= 0 || c.WebSocket.Port > 65535 {
		problems = append(problems, "websocket.port must be in 1..65535")
	}

	if c.Simulator.TickIntervalSeconds <= 0 {
		problems = append(problems, "simulator.tick_interval_seconds must be > 0")
	}
	if c.Simulator.TickMultiplier <= 0 {
		problems = append(problems, "simulator.tick_multiplier must be > 0")
	}

	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}
