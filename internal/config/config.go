package config

import (
	"errors"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
)

// Config holds converter settings, populated from environment variables and
// an optional .env file in the working directory.
type Config struct {
	OutputDir         string
	Workers           int
	TimestampKeywords []string
	FailFast          bool

	LogLevel        string
	LogFormat       string
	MetricsAddr     string
	ShutdownTimeout time.Duration

	// Job events are published only when brokers are configured.
	KafkaBrokers []string
	KafkaTopic   string
}

// Load reads configuration from the environment, applying defaults where unset.
// Variables already set in the environment take precedence over .env.
func Load() (*Config, error) {
	_ = godotenv.Load() // ignore missing file

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	workers, err := parseWorkers()
	if err != nil {
		return nil, err
	}

	failFast, err := strconv.ParseBool(sharedcfg.EnvOrDefault("FDV_FAIL_FAST", "true"))
	if err != nil {
		return nil, fmt.Errorf("invalid FDV_FAIL_FAST: %w", err)
	}

	cfg := &Config{
		OutputDir:         sharedcfg.EnvOrDefault("FDV_OUTPUT_DIR", "output"),
		Workers:           workers,
		TimestampKeywords: ParseList(os.Getenv("FDV_TIMESTAMP_KEYWORDS")),
		FailFast:          failFast,
		LogLevel:          sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:         sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		MetricsAddr:       os.Getenv("METRICS_ADDR"),
		ShutdownTimeout:   shutdownTimeout,
		KafkaTopic:        sharedcfg.EnvOrDefault("KAFKA_TOPIC", "fdv-job-events"),
	}
	if brokers := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); brokers != "" {
		cfg.KafkaBrokers = sharedcfg.ParseBrokers(brokers)
	}

	if cfg.OutputDir == "" {
		return nil, errors.New("FDV_OUTPUT_DIR is required")
	}
	if len(cfg.KafkaBrokers) > 0 && cfg.KafkaTopic == "" {
		return nil, errors.New("KAFKA_TOPIC is required when KAFKA_BROKERS is set")
	}

	return cfg, nil
}

// PublishEvents reports whether job events should go to Kafka.
func (c *Config) PublishEvents() bool {
	return len(c.KafkaBrokers) > 0
}

func parseWorkers() (int, error) {
	s := os.Getenv("FDV_WORKERS")
	if s == "" {
		return runtime.GOMAXPROCS(0), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid FDV_WORKERS %q: must be a positive integer", s)
	}
	return n, nil
}

// ParseList splits a comma separated setting, dropping blanks.
func ParseList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
