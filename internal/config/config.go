package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	APIBaseURL      string        `yaml:"api_base_url"`
	APIServerURL    string        `yaml:"api_server_url"`
	APITimeout      time.Duration `yaml:"api_timeout"`
	APIRateLimit    int           `yaml:"api_rate_limit"`
	APIRetry        bool          `yaml:"api_retry"`
	Port            string        `yaml:"port"`
	BindIP          string        `yaml:"ip"`
	DatabaseType    string        `yaml:"database_type"`
	DatabaseURL     string        `yaml:"database_url"`
	SessionSecret   string        `yaml:"session_secret"`
	SessionMaxAge   int           `yaml:"session_max_age"`
	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	AssistantModel  string        `yaml:"assistant_model"`
	SearchDebounce  time.Duration `yaml:"search_debounce"`
	ExplorePageSize int           `yaml:"explore_page_size"`
	AllowedOrigins  []string      `yaml:"allowed_origins"`
	Debug           bool          `yaml:"debug"`
}

func defaults() *Config {
	return &Config{
		APIBaseURL:      "http://localhost:5000/api",
		APITimeout:      30 * time.Second,
		Port:            "8080",
		BindIP:          "0.0.0.0",
		DatabaseType:    "sqlite",
		SessionMaxAge:   7 * 24 * 60 * 60,
		AssistantModel:  "gemini-2.5-flash",
		SearchDebounce:  500 * time.Millisecond,
		ExplorePageSize: 12,
		AllowedOrigins:  []string{"*"},
	}
}

// Load builds the configuration from defaults, the optional YAML file named
// by CONFIG_FILE and then the environment.
func Load() *Config {
	cfg := defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			fmt.Fprintf(os.Stderr, "config: ignoring %s: %v\n", path, err)
		}
	}
	cfg.applyEnv()
	cfg.finalize()
	return cfg
}

// LoadFile reads a YAML configuration file on top of the defaults. The
// environment still takes precedence.
func LoadFile(path string) (*Config, error) {
	cfg := defaults()
	if err := cfg.overlayFile(path); err != nil {
		return nil, err
	}
	cfg.applyEnv()
	cfg.finalize()
	return cfg, nil
}

func (c *Config) overlayFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.APIBaseURL = getEnv("API_BASE_URL", c.APIBaseURL)
	c.APIServerURL = getEnv("API_SERVER_URL", c.APIServerURL)
	c.APITimeout = getEnvDuration("API_TIMEOUT", c.APITimeout)
	c.APIRateLimit = getEnvInt("API_RATE_LIMIT", c.APIRateLimit)
	c.APIRetry = getEnvBool("API_RETRY", c.APIRetry)
	c.Port = getEnv("PORT", c.Port)
	c.BindIP = getEnv("IP", c.BindIP)
	c.DatabaseType = getEnv("DATABASE_TYPE", c.DatabaseType)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.SessionMaxAge = getEnvInt("SESSION_MAX_AGE", c.SessionMaxAge)
	c.GeminiAPIKey = getEnv("GEMINI_API_KEY", c.GeminiAPIKey)
	c.AssistantModel = getEnv("ASSISTANT_MODEL", c.AssistantModel)
	c.SearchDebounce = getEnvDuration("SEARCH_DEBOUNCE", c.SearchDebounce)
	c.ExplorePageSize = getEnvInt("EXPLORE_PAGE_SIZE", c.ExplorePageSize)
	if origins := getEnv("ALLOWED_ORIGINS", ""); origins != "" {
		c.AllowedOrigins = strings.Split(origins, ",")
	}
	c.Debug = getEnvBool("DEBUG", c.Debug)
}

func (c *Config) finalize() {
	c.APIBaseURL = strings.TrimRight(c.APIBaseURL, "/")
	if c.APIServerURL == "" {
		c.APIServerURL = ServerOrigin(c.APIBaseURL)
	}
	if c.DatabaseURL == "" && c.DatabaseType == "sqlite" {
		c.DatabaseURL = "donationhub.db"
	}
	if c.ExplorePageSize <= 0 {
		c.ExplorePageSize = 12
	}
}

// ServerOrigin strips the path from an API base URL, leaving the origin that
// serves uploaded assets.
func ServerOrigin(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return strings.TrimSuffix(baseURL, "/api")
	}
	return u.Scheme + "://" + u.Host
}

// Addr returns the listen address.
func (c *Config) Addr() string {
	return c.BindIP + ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
