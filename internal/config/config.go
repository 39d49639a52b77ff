// Package config loads the server configuration.
//
// Values come from defaults, then an optional YAML file, then PHOTOEDIT_*
// environment variables, and are validated as a whole.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds the full server configuration.
type Config struct {
	LogLevel string        `yaml:"log_level" validate:"oneof=debug info warn error"`
	DataDir  string        `yaml:"data_dir" validate:"required"`
	Export   ExportConfig  `yaml:"export"`
	Database DBConfig      `yaml:"database"`
	Upload   UploadConfig  `yaml:"upload"`
	Metrics  MetricsConfig `yaml:"metrics"`
}

// ExportConfig controls how versions are rendered and written.
type ExportConfig struct {
	Dir         string `yaml:"dir"`
	Width       int    `yaml:"width" validate:"gte=1,lte=10000"`
	Height      int    `yaml:"height" validate:"gte=1,lte=10000"`
	JPEGQuality int    `yaml:"jpeg_quality" validate:"gte=1,lte=100"`
}

// DBConfig locates the project database.
type DBConfig struct {
	Path string `yaml:"path" validate:"required"`
}

// UploadConfig configures the remote image host.
type UploadConfig struct {
	Endpoint string `yaml:"endpoint" validate:"required,url"`
	APIKey   string `yaml:"api_key"`
}

// MetricsConfig enables the Prometheus endpoint. An empty Listen disables
// it.
type MetricsConfig struct {
	Listen string `yaml:"listen" validate:"omitempty,hostname_port"`
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		DataDir:  defaultDataDir(),
		Export: ExportConfig{
			Width:       1000,
			Height:      1000,
			JPEGQuality: 80,
		},
		Upload: UploadConfig{Endpoint: "https://api.imgbb.com/1/upload"},
	}
}

func defaultDataDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "photoedit-mcp")
	}
	return filepath.Join(os.TempDir(), "photoedit-mcp")
}

// Load builds the configuration. An empty path skips the file.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	cfg.fillDerived()
	return cfg, cfg.Validate()
}

// applyEnv overrides fields from PHOTOEDIT_* variables.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(key)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = n
		return nil
	}

	str("PHOTOEDIT_LOG_LEVEL", &c.LogLevel)
	str("PHOTOEDIT_DATA_DIR", &c.DataDir)
	str("PHOTOEDIT_EXPORT_DIR", &c.Export.Dir)
	str("PHOTOEDIT_DB_PATH", &c.Database.Path)
	str("PHOTOEDIT_UPLOAD_ENDPOINT", &c.Upload.Endpoint)
	str("PHOTOEDIT_UPLOAD_API_KEY", &c.Upload.APIKey)
	str("PHOTOEDIT_METRICS_LISTEN", &c.Metrics.Listen)
	return errors.Join(
		num("PHOTOEDIT_EXPORT_WIDTH", &c.Export.Width),
		num("PHOTOEDIT_EXPORT_HEIGHT", &c.Export.Height),
		num("PHOTOEDIT_JPEG_QUALITY", &c.Export.JPEGQuality),
	)
}

func (c *Config) fillDerived() {
	c.LogLevel = strings.ToLower(c.LogLevel)
	if c.Export.Dir == "" {
		c.Export.Dir = filepath.Join(c.DataDir, "exports")
	}
	if c.Database.Path == "" {
		c.Database.Path = filepath.Join(c.DataDir, "projects.db")
	}
}

// VersionsDir is where committed versions are written.
func (c *Config) VersionsDir() string { return filepath.Join(c.DataDir, "versions") }

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks every field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel converts LogLevel for log/slog.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
