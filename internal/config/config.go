package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server    ServerConfig
	Worker    WorkerConfig
	Dispatch  DispatchConfig
	Directory DirectoryConfig
	DB        DatabaseConfig
	API       APIConfig
	Logging   LoggingConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type WorkerConfig struct {
	Count      int
	BufferSize int
}

type DispatchConfig struct {
	SendTimeout time.Duration
	SendLatency time.Duration // simulated transport latency
}

type DirectoryConfig struct {
	Path string
}

type DatabaseConfig struct {
	// Path is the sqlite DSN. The default ":memory:" keeps notification
	// history scoped to the session.
	Path         string
	HistoryLimit int
}

type APIConfig struct {
	RateLimitRPS int
}

type LoggingConfig struct {
	Level  string
	Format string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Worker: WorkerConfig{
			Count:      getEnvInt("WORKER_COUNT", 2),
			BufferSize: getEnvInt("WORKER_BUFFER_SIZE", 32),
		},
		Dispatch: DispatchConfig{
			SendTimeout: getEnvDuration("SEND_TIMEOUT", 5*time.Second),
			SendLatency: getEnvDuration("SEND_LATENCY", 300*time.Millisecond),
		},
		Directory: DirectoryConfig{
			Path: getEnv("DIRECTORY_PATH", "./configs/directory.json"),
		},
		DB: DatabaseConfig{
			Path:         getEnv("DB_PATH", ":memory:"),
			HistoryLimit: getEnvInt("HISTORY_LIMIT", 100),
		},
		API: APIConfig{
			RateLimitRPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Worker.Count < 1 {
		return fmt.Errorf("worker count must be at least 1")
	}
	if c.Dispatch.SendTimeout <= 0 {
		return fmt.Errorf("send timeout must be positive")
	}
	if c.Dispatch.SendLatency < 0 {
		return fmt.Errorf("send latency must not be negative")
	}
	if c.DB.HistoryLimit < 1 {
		return fmt.Errorf("history limit must be at least 1")
	}
	if c.Directory.Path == "" {
		return fmt.Errorf("directory path is required")
	}
	if c.API.RateLimitRPS < 1 {
		return fmt.Errorf("rate limit must be at least 1 req/s")
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
