package config

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config represents the espkit configuration
type Config struct {
	// DataDir is the game's Data directory holding the plugin files.
	DataDir string `yaml:"data_dir"`
	// LoadOrder lists plugins in load order. When empty, PluginsFile is read.
	LoadOrder   []string `yaml:"load_order,omitempty"`
	PluginsFile string   `yaml:"plugins_file,omitempty"`
	IndexDir    string   `yaml:"index_dir"`

	Workers         int  `yaml:"workers"`
	ContinueOnError bool `yaml:"continue_on_error"`

	Port int    `yaml:"port"`
	Bind string `yaml:"bind"`
	// CORSOrigins lists browser origins allowed to call the API.
	CORSOrigins []string `yaml:"cors_origins,omitempty"`
	Logging     Logging  `yaml:"logging"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		DataDir:  "./Data",
		IndexDir: "./index",
		Workers:  4,
		Port:     8080,
		Bind:     "127.0.0.1",
		Logging: Logging{
			Level:  "info",
			Format: "text",
		},
	}
}

// LoadConfig loads configuration from the specified path. Settings missing
// from the file keep their defaults.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration pointing at dataDir
func BootstrapConfig(configPath string, dataDir string) (*Config, error) {
	config := DefaultConfig()
	if dataDir != "" {
		config.DataDir = dataDir
		config.PluginsFile = filepath.Join(dataDir, "plugins.txt")
	}

	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// Validate checks the configuration for values the tools cannot run with
func (c *Config) Validate() error {
	if c.DataDir == "" {
		return fmt.Errorf("data_dir is required")
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch c.Logging.Format {
	case "", "text", "json":
	default:
		return fmt.Errorf("unknown logging format %q", c.Logging.Format)
	}
	return nil
}

// Plugins returns the load order, reading PluginsFile when LoadOrder is
// empty.
func (c *Config) Plugins() ([]string, error) {
	if len(c.LoadOrder) > 0 {
		return c.LoadOrder, nil
	}
	if c.PluginsFile == "" {
		return nil, fmt.Errorf("no load_order or plugins_file configured")
	}
	f, err := os.Open(c.PluginsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open plugins file: %w", err)
	}
	defer f.Close()
	return ReadPlugins(f)
}

// ReadPlugins parses a plugins.txt load order. Blank lines and '#' comments
// are skipped. A leading '*' marks an active plugin; when any line carries
// one, only active plugins are returned.
func ReadPlugins(r io.Reader) ([]string, error) {
	var all, active []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if name, ok := strings.CutPrefix(line, "*"); ok {
			active = append(active, name)
			all = append(all, name)
			continue
		}
		all = append(all, line)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("failed to read plugins: %w", err)
	}
	if len(active) > 0 {
		return active, nil
	}
	return all, nil
}

// NewLogger builds the logger described by the logging settings
func (l Logging) NewLogger(w io.Writer) (*slog.Logger, error) {
	level, err := parseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

func parseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelInfo, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return level, fmt.Errorf("invalid logging level %q", s)
	}
	return level, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./espkit.yaml"
	}

	configDir := filepath.Join(homeDir, ".config", "espkit")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
