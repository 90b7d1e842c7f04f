// Package config loads the small set of knobs the coordination core and its
// demo server need to start, following the yaml-tagged struct convention
// used for scenario fixtures in integration_tests/framework/runner.go, with
// environment overrides layered on top the way the teacher's cmd/assistant
// flags let operators override compiled-in defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// StoreBackend selects which session.Store implementation the server wires
// up.
type StoreBackend string

const (
	StoreBackendInMemory StoreBackend = "inmem"
	StoreBackendRedis    StoreBackend = "redis"
	StoreBackendMongo    StoreBackend = "mongo"
)

// Config holds every externally tunable setting for the server.
type Config struct {
	// HTTPAddr is the address the demo HTTP server listens on.
	HTTPAddr string `yaml:"httpAddr"`

	// DrainDeadline bounds how long AwaitDrain waits for in-flight
	// executions before force-checkpointing them (spec.md §4.1).
	DrainDeadline time.Duration `yaml:"drainDeadline"`

	// StoreBackend selects the session.Store implementation.
	StoreBackend StoreBackend `yaml:"storeBackend"`

	// RedisAddr is used when StoreBackend is "redis".
	RedisAddr string `yaml:"redisAddr"`

	// MongoURI and MongoDatabase are used when StoreBackend is "mongo".
	MongoURI      string `yaml:"mongoURI"`
	MongoDatabase string `yaml:"mongoDatabase"`

	// OpenAIAPIKey, if non-empty, switches the demo order-processing agent
	// from its deterministic offline fallback to a real reasoning call.
	OpenAIAPIKey string `yaml:"openAIAPIKey"`
}

// Default returns the configuration the server starts with when no file or
// environment overrides are present.
func Default() Config {
	return Config{
		HTTPAddr:      ":8080",
		DrainDeadline: 30 * time.Second,
		StoreBackend:  StoreBackendInMemory,
		RedisAddr:     "localhost:6379",
		MongoURI:      "mongodb://localhost:27017",
		MongoDatabase: "agent_sessions",
	}
}

// Load reads path (if non-empty and present) over Default, then applies
// environment overrides, in that precedence order.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
			}
		} else if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SHUTDOWN_HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("SHUTDOWN_DRAIN_DEADLINE"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.DrainDeadline = d
		}
	}
	if v := os.Getenv("SHUTDOWN_STORE_BACKEND"); v != "" {
		cfg.StoreBackend = StoreBackend(v)
	}
	if v := os.Getenv("SHUTDOWN_REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("SHUTDOWN_MONGO_URI"); v != "" {
		cfg.MongoURI = v
	}
	if v := os.Getenv("SHUTDOWN_MONGO_DATABASE"); v != "" {
		cfg.MongoDatabase = v
	}
	if v := os.Getenv("OPENAI_API_KEY"); v != "" {
		cfg.OpenAIAPIKey = v
	}
}
