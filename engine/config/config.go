package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const configFile = "config.json"

// LoadConfig reads the configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveConfig writes a configuration to a JSON file
func SaveConfig(filename string, config *Config) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Sink: SinkConfig{
			Env:         EnvProduction,
			OutputPaths: []string{filepath.Join("external", "logs", "sink.log")},
		},
		UI: UIConfig{
			ExportDir:     filepath.Join("external", "logs"),
			RefreshMillis: 250,
		},
		Simulator: SimulatorConfig{
			Enabled:        true,
			IntervalMillis: 1500,
			Sources:        []string{"dashboard", "orders", "utils", "device"},
		},
	}
}

// CreateDefaultConfig creates a template configuration file
func CreateDefaultConfig(filename string) error {
	if dir := filepath.Dir(filename); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create config dir: %w", err)
		}
	}
	return SaveConfig(filename, Default())
}

// Validate checks the values that cannot be defaulted
func (c *Config) Validate() error {
	switch c.Sink.Env {
	case EnvDevelopment, EnvProduction:
	default:
		return fmt.Errorf("unsupported sink env %q", c.Sink.Env)
	}
	if c.UI.RefreshMillis <= 0 {
		return fmt.Errorf("ui.refreshMillis must be positive, got %d", c.UI.RefreshMillis)
	}
	if c.Simulator.Enabled && c.Simulator.IntervalMillis <= 0 {
		return fmt.Errorf("simulator.intervalMillis must be positive, got %d", c.Simulator.IntervalMillis)
	}
	return nil
}

// ApplyEnv loads an optional .env file and overlays DIAG_* variables
func ApplyEnv(c *Config) {
	_ = godotenv.Load()

	c.Sink.Env = strings.ToLower(getenv("DIAG_ENV", c.Sink.Env))
	if out := splitAndTrim(getenv("DIAG_SINK_OUTPUT", "")); len(out) > 0 {
		c.Sink.OutputPaths = out
	}
	c.UI.ExportDir = getenv("DIAG_EXPORT_DIR", c.UI.ExportDir)
	c.UI.RefreshMillis = getInt("DIAG_REFRESH_MS", c.UI.RefreshMillis)
	c.Simulator.Enabled = getBool("DIAG_SIM_ENABLED", c.Simulator.Enabled)
	c.Simulator.IntervalMillis = getInt("DIAG_SIM_INTERVAL_MS", c.Simulator.IntervalMillis)
}

// Resolve makes relative file paths absolute against root. The stdout and
// stderr sink outputs are left alone.
func (c *Config) Resolve(root string) {
	for i, p := range c.Sink.OutputPaths {
		if p == "stdout" || p == "stderr" || filepath.IsAbs(p) {
			continue
		}
		c.Sink.OutputPaths[i] = filepath.Join(root, p)
	}
	if c.UI.ExportDir != "" && !filepath.IsAbs(c.UI.ExportDir) {
		c.UI.ExportDir = filepath.Join(root, c.UI.ExportDir)
	}
}

// GetProjectRoot returns the nearest ancestor of the working directory
// containing go.mod, or the working directory itself.
func GetProjectRoot() string {
	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	for dir := wd; ; {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return wd
		}
		dir = parent
	}
}

// GetConfigPath returns the default config file location
func GetConfigPath() string {
	return filepath.Join(GetProjectRoot(), configFile)
}

func getenv(key, def string) string {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	return val
}

func getInt(key string, def int) int {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return def
	}
	return i
}

func getBool(key string, def bool) bool {
	val := strings.TrimSpace(os.Getenv(key))
	if val == "" {
		return def
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		return def
	}
	return parsed
}

func splitAndTrim(val string) []string {
	if val == "" {
		return nil
	}
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		trim := strings.TrimSpace(p)
		if trim != "" {
			out = append(out, trim)
		}
	}
	return out
}
