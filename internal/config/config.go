// Package config handles configuration and the API key for the support widget.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	apierrors "github.com/bobee/supportbot/internal/errors"
	"github.com/bobee/supportbot/internal/models"
)

const (
	// DefaultAPIKeyEnv is the environment variable holding the API key
	DefaultAPIKeyEnv = "OPENAI_API_KEY"
	// LegacyAPIKeyEnv is consulted when DefaultAPIKeyEnv is unset
	LegacyAPIKeyEnv = "REACT_APP_OPENAI_API_KEY"

	configDirName  = ".bobee"
	configFileName = "config.json"
	logFileName    = "bobee.log"
)

// MarkdownConfig configures markdown rendering options
type MarkdownConfig struct {
	Style            string `json:"style"`              // "dark", "light", or path to JSON theme
	EnableEmoji      bool   `json:"enable_emoji"`       // Convert :emoji: to unicode
	PreserveNewLines bool   `json:"preserve_newlines"`  // Preserve original line breaks
	TableWrap        bool   `json:"table_wrap"`         // Enable word wrap in table cells
	InlineTableLinks bool   `json:"inline_table_links"` // Render links inline in tables
}

// Config represents the user configuration
type Config struct {
	Model    string `json:"model"`
	Endpoint string `json:"endpoint"`
	// Backend selects the completion client: "http" (TLS client) or "sdk".
	Backend string `json:"backend"`
	// Brand is the company named in the system and redirect messages.
	Brand string `json:"brand"`
	// Keywords overrides the relevance allow-list when non-empty.
	Keywords              []string       `json:"keywords,omitempty"`
	RequestTimeoutSeconds int            `json:"request_timeout_seconds"`
	TUITheme              string         `json:"tui_theme,omitempty"`
	Markdown              MarkdownConfig `json:"markdown,omitempty"`
	LogFile               string         `json:"log_file,omitempty"`
	Debug                 bool           `json:"debug"`
	// APIKeyEnv names the environment variable holding the key. The key
	// itself is never stored in this file.
	APIKeyEnv string `json:"api_key_env"`
}

// DefaultMarkdownConfig returns the default markdown configuration
func DefaultMarkdownConfig() MarkdownConfig {
	return MarkdownConfig{
		Style:            "dark",
		EnableEmoji:      true,
		PreserveNewLines: true,
		TableWrap:        true,
		InlineTableLinks: false,
	}
}

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	homeDir, _ := os.UserHomeDir()
	return Config{
		Model:                 models.DefaultModel,
		Endpoint:              models.EndpointChatCompletions,
		Backend:               "http",
		Brand:                 models.DefaultBrand,
		RequestTimeoutSeconds: 300,
		TUITheme:              "tokyonight",
		Markdown:              DefaultMarkdownConfig(),
		LogFile:               filepath.Join(homeDir, configDirName, logFileName),
		Debug:                 false,
		APIKeyEnv:             DefaultAPIKeyEnv,
	}
}

// AvailableBackends returns the accepted backend names
func AvailableBackends() []string {
	return []string{"http", "sdk"}
}

// Validate reports the first invalid setting
func (c Config) Validate() error {
	if strings.TrimSpace(c.Model) == "" {
		return fmt.Errorf("model must not be empty")
	}
	if strings.TrimSpace(c.Endpoint) == "" {
		return fmt.Errorf("endpoint must not be empty")
	}
	valid := false
	for _, b := range AvailableBackends() {
		if c.Backend == b {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("unknown backend %q (available: %s)", c.Backend, strings.Join(AvailableBackends(), ", "))
	}
	if c.RequestTimeoutSeconds <= 0 {
		return fmt.Errorf("request_timeout_seconds must be positive, got %d", c.RequestTimeoutSeconds)
	}
	return nil
}

// GetConfigDir returns the configuration directory path
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, configDirName), nil
}

// EnsureConfigDir creates the configuration directory if it doesn't exist
func EnsureConfigDir() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(configDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	return configDir, nil
}

// GetConfigPath returns the path to the config file
func GetConfigPath() (string, error) {
	configDir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, configFileName), nil
}

// LoadConfig loads the configuration from disk
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()

	configPath, err := GetConfigPath()
	if err != nil {
		return cfg, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, &cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig writes the configuration to disk atomically
func SaveConfig(cfg Config) error {
	configDir, err := EnsureConfigDir()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmp, err := os.CreateTemp(configDir, configFileName+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp config file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write config file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	if err := os.Rename(tmpName, filepath.Join(configDir, configFileName)); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SetValue updates a single setting by its JSON key
func SetValue(cfg *Config, key, value string) error {
	switch key {
	case "model":
		cfg.Model = value
	case "endpoint":
		cfg.Endpoint = value
	case "backend":
		cfg.Backend = value
	case "brand":
		cfg.Brand = value
	case "keywords":
		cfg.Keywords = nil
		for _, k := range strings.Split(value, ",") {
			if k = strings.TrimSpace(k); k != "" {
				cfg.Keywords = append(cfg.Keywords, k)
			}
		}
	case "request_timeout_seconds":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.RequestTimeoutSeconds = n
	case "tui_theme":
		cfg.TUITheme = value
	case "markdown.style":
		cfg.Markdown.Style = value
	case "log_file":
		cfg.LogFile = value
	case "debug":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid value for %s: %w", key, err)
		}
		cfg.Debug = b
	case "api_key_env":
		cfg.APIKeyEnv = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return cfg.Validate()
}

// LoadAPIKey reads the API key from the environment variable named by the
// config, falling back to LegacyAPIKeyEnv.
func LoadAPIKey(cfg Config) (string, error) {
	envName := cfg.APIKeyEnv
	if envName == "" {
		envName = DefaultAPIKeyEnv
	}

	if key := strings.TrimSpace(os.Getenv(envName)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(os.Getenv(LegacyAPIKeyEnv)); key != "" {
		return key, nil
	}
	return "", fmt.Errorf("%w: set %s", apierrors.ErrMissingAPIKey, envName)
}

// MaskSecret reports whether a secret is present without revealing any of it
func MaskSecret(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	return "******** (set)"
}
