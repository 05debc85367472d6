package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	APIRateLimit    float64 // requests per second per client

	// Gazetteer and geocoding configuration.
	GazetteerPath    string
	GeocoderURL      string
	GeocoderTimeout  time.Duration
	GeocodeDelay     time.Duration
	GeocodeCacheSize int

	// Spatial defaults.
	BufferRadiusKm float64

	// Optional Kafka ingestion and publishing.
	KafkaEnabled       bool
	KafkaBrokers       []string
	KafkaBriefTopic    string
	KafkaIncidentTopic string
	KafkaGroupID       string
}

// Load reads configuration from environment variables, applying defaults
// where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := envDuration("SHUTDOWN_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	geocoderTimeout, err := envDuration("GEOCODER_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	geocodeDelay, err := envDuration("GEOCODE_DELAY", 250*time.Millisecond)
	if err != nil {
		return nil, err
	}
	cacheSize, err := envInt("GEOCODE_CACHE_LIMIT", 500)
	if err != nil {
		return nil, err
	}
	rateLimit, err := envFloat("API_RATE_LIMIT", 20)
	if err != nil {
		return nil, err
	}
	bufferRadius, err := envFloat("BUFFER_RADIUS_KM", 10)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		HTTPAddr:        envOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		LogFormat:       envOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		APIRateLimit:    rateLimit,

		GazetteerPath:    envOrDefault("GAZETTEER_PATH", "data/gazetteer.json"),
		GeocoderURL:      envOrDefault("GEOCODER_URL", "https://nominatim.openstreetmap.org"),
		GeocoderTimeout:  geocoderTimeout,
		GeocodeDelay:     geocodeDelay,
		GeocodeCacheSize: cacheSize,

		BufferRadiusKm: bufferRadius,

		KafkaEnabled:       os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:       splitBrokers(envOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaBriefTopic:    envOrDefault("KAFKA_BRIEF_TOPIC", "corridor.briefs"),
		KafkaIncidentTopic: envOrDefault("KAFKA_INCIDENT_TOPIC", "corridor.incidents"),
		KafkaGroupID:       envOrDefault("KAFKA_GROUP_ID", "corridor-planner"),
	}

	if cfg.GeocoderURL == "" {
		return nil, errors.New("GEOCODER_URL is required")
	}
	if cfg.GazetteerPath == "" {
		return nil, errors.New("GAZETTEER_PATH is required")
	}
	if cfg.BufferRadiusKm <= 0 {
		return nil, errors.New("BUFFER_RADIUS_KM must be positive")
	}
	if cfg.GeocodeCacheSize <= 0 {
		return nil, errors.New("GEOCODE_CACHE_LIMIT must be positive")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
		}
		if cfg.KafkaBriefTopic == "" {
			return nil, errors.New("KAFKA_BRIEF_TOPIC is required")
		}
	}

	return cfg, nil
}

func envOrDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return d, nil
}

func envInt(key string, def int) (int, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return n, nil
}

func envFloat(key string, def float64) (float64, error) {
	s := os.Getenv(key)
	if s == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %q", key, s)
	}
	return f, nil
}

func splitBrokers(s string) []string {
	var out []string
	for _, b := range strings.Split(s, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}
