package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/go-order-console/internal/orders"
)

type Config struct {
	HTTPAddr      string
	APIBaseURL    string
	APITimeout    time.Duration
	LogLimit      int
	RedisAddr     string
	KafkaBrokers  []string
	ActivityTopic string
	ServiceName   string
	LogLevel      string
	DraftTTL      time.Duration
}

// Load reads the environment. An empty REDIS_ADDR keeps the submit lock in
// process; empty KAFKA_BROKERS disables activity events.
func Load() (Config, error) {
	cfg := Config{
		HTTPAddr:      getenv("HTTP_ADDR", ":8090"),
		APIBaseURL:    getenv("API_BASE_URL", "http://localhost:8000"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		KafkaBrokers:  splitCSV(os.Getenv("KAFKA_BROKERS")),
		ActivityTopic: getenv("ACTIVITY_TOPIC", orders.TopicOrderActivity),
		ServiceName:   getenv("SERVICE_NAME", "order-console"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
	}

	var err error
	if cfg.APITimeout, err = time.ParseDuration(getenv("API_TIMEOUT", "10s")); err != nil {
		return cfg, fmt.Errorf("API_TIMEOUT: %w", err)
	}
	if cfg.DraftTTL, err = time.ParseDuration(getenv("DRAFT_TTL", "30m")); err != nil {
		return cfg, fmt.Errorf("DRAFT_TTL: %w", err)
	}
	if cfg.LogLimit, err = strconv.Atoi(getenv("LOG_LIMIT", "100")); err != nil {
		return cfg, fmt.Errorf("LOG_LIMIT: %w", err)
	}
	if cfg.LogLimit <= 0 {
		return cfg, fmt.Errorf("LOG_LIMIT: must be positive, got %d", cfg.LogLimit)
	}
	return cfg, nil
}

func getenv(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func splitCSV(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			out = append(out, t)
		}
	}
	return out
}
