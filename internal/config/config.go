package config

import (
	"flag"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Server
	Port string
	Env  string // development, production

	// Endpoint that receives registrations
	EndpointURL    string
	RequestTimeout time.Duration

	// Limits
	MaxUploadSizeMB    int
	RateLimitPerMinute int

	// Attachments
	StripImageMetadata bool
}

// FromEnv builds a Config from the environment and an optional .env file.
// It does not parse command line flags.
func FromEnv() *Config {
	// Load .env file if it exists (don't error if missing)
	_ = godotenv.Load()

	return &Config{
		Port:               getEnv("PORT", "8080"),
		Env:                getEnv("ENV", "development"),
		EndpointURL:        getEnv("ENDPOINT_URL", ""),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		MaxUploadSizeMB:    getEnvInt("MAX_UPLOAD_SIZE_MB", 10),
		RateLimitPerMinute: getEnvInt("RATE_LIMIT_PER_MINUTE", 10),
		StripImageMetadata: getEnv("STRIP_IMAGE_METADATA", "false") == "true",
	}
}

// Load reads the environment, then lets command line flags override it.
func Load() (*Config, error) {
	cfg := FromEnv()

	flag.StringVar(&cfg.Port, "port", cfg.Port, "Server port")
	flag.StringVar(&cfg.Env, "env", cfg.Env, "Environment (development, production)")
	flag.StringVar(&cfg.EndpointURL, "endpoint", cfg.EndpointURL, "URL that receives registrations")
	flag.DurationVar(&cfg.RequestTimeout, "timeout", cfg.RequestTimeout, "Timeout for the outbound request")

	flag.Parse()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.EndpointURL == "" {
		return fmt.Errorf("ENDPOINT_URL is required")
	}
	u, err := url.Parse(c.EndpointURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("ENDPOINT_URL must be an absolute http(s) URL")
	}
	if c.MaxUploadSizeMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE_MB must be positive")
	}
	if c.RateLimitPerMinute <= 0 {
		return fmt.Errorf("RATE_LIMIT_PER_MINUTE must be positive")
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
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
