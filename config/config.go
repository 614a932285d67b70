package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// DefaultPath is read when no config file is given on the command line.
// A missing file at this path is not an error.
const DefaultPath = "config.toml"

type Config struct {
	Host      string `toml:"host" mapstructure:"host"`
	Port      string `toml:"port" mapstructure:"port"`
	Libonnx   string `toml:"libonnx" mapstructure:"libonnx"`
	LogLevel  string `toml:"log_level" mapstructure:"log_level"`
	LogFormat string `toml:"log_format" mapstructure:"log_format"`

	ModelDir           string `toml:"model_dir" mapstructure:"model_dir"`
	ModelFileName      string `toml:"model_file_name" mapstructure:"model_file_name"`
	LoadTimeoutSeconds int    `toml:"load_timeout_seconds" mapstructure:"load_timeout_seconds"`
	PoolSize           int    `toml:"pool_size" mapstructure:"pool_size"`

	MaxUploadBytes     int64    `toml:"max_upload_bytes" mapstructure:"max_upload_bytes"`
	MaxPixels          int64    `toml:"max_pixels" mapstructure:"max_pixels"`
	AllowedFormats     []string `toml:"allowed_formats" mapstructure:"allowed_formats"`
	AutoOrient         bool     `toml:"auto_orient" mapstructure:"auto_orient"`
	RateLimitPerMinute int      `toml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
}

// Default returns the built-in configuration. The model artifact lives at
// models/model.onnx relative to the working directory.
func Default() Config {
	return Config{
		Host:               "0.0.0.0",
		Port:               "8000",
		LogLevel:           "info",
		LogFormat:          "text",
		ModelDir:           "models",
		ModelFileName:      "model.onnx",
		LoadTimeoutSeconds: 60,
		PoolSize:           2,
		MaxUploadBytes:     10 << 20,
		MaxPixels:          50_000_000,
		AllowedFormats:     []string{"jpeg", "png"},
		RateLimitPerMinute: 0,
	}
}

var (
	processCfg Config
	processErr error
	loadOnce   sync.Once
)

// C returns the process configuration read from DefaultPath. The file and
// environment are read on the first call only; later calls return the same
// result, including a load error.
func C() (Config, error) {
	loadOnce.Do(func() {
		processCfg, processErr = Load(DefaultPath)
	})
	return processCfg, processErr
}

// Load builds a Config from the defaults, the TOML file at path and the
// LESIONSCAN_* environment variables, in that order of precedence.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file '%s': %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && path == DefaultPath:
	default:
		return Config{}, fmt.Errorf("failed to read config file '%s': %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("LESIONSCAN_HOST"); v != "" {
		cfg.Host = v
	}
	if v := os.Getenv("LESIONSCAN_PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("LESIONSCAN_MODEL_DIR"); v != "" {
		cfg.ModelDir = v
	}
	if v := os.Getenv("LESIONSCAN_MODEL_FILE"); v != "" {
		cfg.ModelFileName = v
	}
	if v := os.Getenv("LESIONSCAN_LIBONNX"); v != "" {
		cfg.Libonnx = v
	}
	if v := os.Getenv("LESIONSCAN_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("LESIONSCAN_POOL_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid LESIONSCAN_POOL_SIZE %q: %w", v, err)
		}
		cfg.PoolSize = n
	}
	return nil
}

// Validate reports the first configuration problem found.
func (c Config) Validate() error {
	if c.Port == "" {
		return ErrNoPort
	}
	if c.ModelDir == "" && c.ModelFileName == "" {
		return ErrNoModelPath
	}
	if c.LoadTimeoutSeconds <= 0 {
		return ErrInvalidLoadTimeout
	}
	if c.PoolSize <= 0 {
		return ErrInvalidPoolSize
	}
	if c.MaxUploadBytes <= 0 {
		return ErrInvalidUploadLimit
	}
	if c.MaxPixels <= 0 {
		return ErrInvalidMaxPixels
	}
	if len(c.AllowedFormats) == 0 {
		return ErrNoAllowedFormats
	}
	if c.RateLimitPerMinute < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

func (c Config) ModelPath() string {
	return filepath.Join(c.ModelDir, c.ModelFileName)
}

func (c Config) LoadTimeout() time.Duration {
	return time.Duration(c.LoadTimeoutSeconds) * time.Second
}

func (c Config) Addr() string {
	return c.Host + ":" + c.Port
}

// Formats returns the allowed image formats lower-cased, with "jpg"
// folded into "jpeg" to match the names reported by image.Decode.
func (c Config) Formats() []string {
	out := make([]string, 0, len(c.AllowedFormats))
	for _, f := range c.AllowedFormats {
		f = strings.ToLower(strings.TrimSpace(f))
		if f == "jpg" {
			f = "jpeg"
		}
		out = append(out, f)
	}
	return out
}
