package client

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the client.yaml file that points a client at a service.
type Config struct {
	// Endpoint is the base URL of the service, e.g. "https://queue.us-east-1.example.com".
	Endpoint string `yaml:"endpoint"`

	// Model is the path of the service model. Relative paths are resolved
	// against the directory of the config file.
	Model string `yaml:"model,omitempty"`

	// Timeout bounds a single round trip.
	// Format: Go duration string (e.g., "30s", "1m")
	// Default: 30s
	Timeout string `yaml:"timeout,omitempty"`

	// UserAgent is sent with every request.
	// Default: "zero-day-ai-protocol"
	UserAgent string `yaml:"user_agent,omitempty"`

	// MaxResponseBytes caps the size of a buffered response body.
	// Default: 10 MiB
	MaxResponseBytes int64 `yaml:"max_response_bytes,omitempty"`

	// Headers are added to every request.
	Headers map[string]string `yaml:"headers,omitempty"`
}

const (
	defaultTimeout          = 30 * time.Second
	defaultUserAgent        = "zero-day-ai-protocol"
	defaultMaxResponseBytes = 10 << 20
)

// GetTimeout parses the timeout string and returns a duration.
// Returns the default value if not set or invalid.
func (c *Config) GetTimeout() time.Duration {
	if c == nil || c.Timeout == "" {
		return defaultTimeout
	}
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return defaultTimeout
	}
	return d
}

// GetUserAgent returns the configured user agent or the default value.
func (c *Config) GetUserAgent() string {
	if c == nil || c.UserAgent == "" {
		return defaultUserAgent
	}
	return c.UserAgent
}

// GetMaxResponseBytes returns the response size cap or the default value.
func (c *Config) GetMaxResponseBytes() int64 {
	if c == nil || c.MaxResponseBytes <= 0 {
		return defaultMaxResponseBytes
	}
	return c.MaxResponseBytes
}

// EndpointURL parses Endpoint. Only absolute http and https URLs are
// accepted.
func (c *Config) EndpointURL() (*url.URL, error) {
	if c == nil || c.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}
	u, err := url.Parse(c.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("invalid endpoint: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("invalid endpoint %q: need an absolute http(s) URL", c.Endpoint)
	}
	return u, nil
}

// LoadConfig reads and parses a client config file.
// If the path is a directory, it looks for client.yaml or client.yml in that directory.
func LoadConfig(path string) (*Config, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to stat path: %w", err)
	}

	configPath := path
	if info.IsDir() {
		configPath = ""
		for _, name := range []string{"client.yaml", "client.yml"} {
			candidate := filepath.Join(path, name)
			if _, err := os.Stat(candidate); err == nil {
				configPath = candidate
				break
			}
		}
		if configPath == "" {
			return nil, fmt.Errorf("no client.yaml or client.yml found in %s", path)
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if config.Model != "" && !filepath.IsAbs(config.Model) {
		config.Model = filepath.Join(filepath.Dir(configPath), config.Model)
	}
	return &config, nil
}
