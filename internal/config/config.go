// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/cv-builder/internal/rendering"
)

// Defaults applied by MergeWithDefaults and Default.
const (
	DefaultAPIBaseURL  = "http://localhost:8000"
	DefaultTemplate    = "modern"
	DefaultOutputDir   = "."
	DefaultHTTPTimeout = "10s"
	DefaultLogLevel    = "info"
	DefaultLogFormat   = "text"
	DefaultPort        = 8080
)

// Config represents settings loaded from a JSON file and the environment.
// All fields are optional; CLI flags override them.
type Config struct {
	// Rendering
	Template  string `json:"template,omitempty"`   // Default template id
	OutputDir string `json:"output_dir,omitempty"` // Where rendered PDFs are saved

	// Collaborators
	APIBaseURL     string `json:"api_base_url,omitempty"`    // Auth API base URL
	SuggestionsURL string `json:"suggestions_url,omitempty"` // Suggestion API base URL, defaults to APIBaseURL
	HTTPTimeout    string `json:"http_timeout,omitempty"`    // Go duration, e.g. "10s"
	APIKey         string `json:"api_key,omitempty"`         // Gemini API key for the server's suggestion backend

	// Logging
	LogLevel  string `json:"log_level,omitempty"`
	LogFormat string `json:"log_format,omitempty"` // text or json
	LogFile   string `json:"log_file,omitempty"`

	// Server
	Port int `json:"port,omitempty"`

	// Limits
	MaxContentBytes int `json:"max_content_bytes,omitempty"`
}

// Default returns a Config with every default filled in.
func Default() Config {
	var c Config
	return c.MergeWithDefaults(Config{})
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// FromEnv reads configuration from environment variables. Unset variables leave fields empty.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Template:       os.Getenv("CV_DEFAULT_TEMPLATE"),
		OutputDir:      os.Getenv("CV_OUTPUT_DIR"),
		APIBaseURL:     os.Getenv("CV_API_BASE_URL"),
		SuggestionsURL: os.Getenv("CV_SUGGESTIONS_URL"),
		HTTPTimeout:    os.Getenv("CV_HTTP_TIMEOUT"),
		APIKey:         os.Getenv("GEMINI_API_KEY"),
		LogLevel:       os.Getenv("CV_LOG_LEVEL"),
		LogFormat:      os.Getenv("CV_LOG_FORMAT"),
		LogFile:        os.Getenv("CV_LOG_FILE"),
	}
	if port := os.Getenv("PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT: %v", err)
		}
		cfg.Port = p
	}
	return cfg, nil
}

// Validate checks that the configuration has valid values.
// Required values are not checked here since CLI flags may still supply them.
func (c *Config) Validate() error {
	if c.Template != "" {
		if _, err := rendering.Lookup(rendering.TemplateID(strings.ToLower(c.Template))); err != nil {
			return fmt.Errorf("config error: 'template' %w", err)
		}
	}

	if c.HTTPTimeout != "" {
		d, err := time.ParseDuration(c.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("config error: 'http_timeout' is not a duration: %v", err)
		}
		if d <= 0 {
			return fmt.Errorf("config error: 'http_timeout' must be positive")
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config error: 'log_level' must be one of debug, info, warn, error")
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config error: 'log_format' must be text or json")
	}

	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 0 and 65535")
	}
	if c.MaxContentBytes < 0 {
		return fmt.Errorf("config error: 'max_content_bytes' must be non-negative")
	}

	if c.OutputDir != "" {
		if info, err := os.Stat(c.OutputDir); err == nil && !info.IsDir() {
			return fmt.Errorf("config error: output_dir is not a directory: %s", c.OutputDir)
		}
	}

	return nil
}

// Timeout returns HTTPTimeout parsed, or the default when empty or invalid.
func (c *Config) Timeout() time.Duration {
	if d, err := time.ParseDuration(c.HTTPTimeout); err == nil && d > 0 {
		return d
	}
	d, _ := time.ParseDuration(DefaultHTTPTimeout)
	return d
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults,
// then from the built-in defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	result.Template = firstNonEmpty(result.Template, defaults.Template, DefaultTemplate)
	result.OutputDir = firstNonEmpty(result.OutputDir, defaults.OutputDir, DefaultOutputDir)
	result.APIBaseURL = firstNonEmpty(result.APIBaseURL, defaults.APIBaseURL, DefaultAPIBaseURL)
	result.SuggestionsURL = firstNonEmpty(result.SuggestionsURL, defaults.SuggestionsURL, result.APIBaseURL)
	result.HTTPTimeout = firstNonEmpty(result.HTTPTimeout, defaults.HTTPTimeout, DefaultHTTPTimeout)
	result.APIKey = firstNonEmpty(result.APIKey, defaults.APIKey)
	result.LogLevel = firstNonEmpty(result.LogLevel, defaults.LogLevel, DefaultLogLevel)
	result.LogFormat = firstNonEmpty(result.LogFormat, defaults.LogFormat, DefaultLogFormat)
	result.LogFile = firstNonEmpty(result.LogFile, defaults.LogFile)

	if result.Port == 0 {
		result.Port = defaults.Port
	}
	if result.Port == 0 {
		result.Port = DefaultPort
	}
	if result.MaxContentBytes == 0 {
		result.MaxContentBytes = defaults.MaxContentBytes
	}

	return result
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
