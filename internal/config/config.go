// Package config loads gocalc settings from a YAML file and the environment.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	gocalc "github.com/njchilds90/gocalc"
)

// Environment variables
const (
	ENV_CONFIG_FILE_PATH = "GOCALC_CONFIG_FILE_PATH"

	ENV_VARIABLE  = "GOCALC_VARIABLE"
	ENV_MAX_DEPTH = "GOCALC_MAX_DEPTH"
	ENV_FORMAT    = "GOCALC_FORMAT"

	ENV_LOG_LEVEL       = "GOCALC_LOG_LEVEL"
	ENV_LOG_FORMAT      = "GOCALC_LOG_FORMAT"
	ENV_LOG_FILE        = "GOCALC_LOG_FILE"
	ENV_LOG_INCLUDE_SRC = "GOCALC_LOG_INCLUDE_SRC"

	ENV_SERVER_ADDR          = "GOCALC_SERVER_ADDR"
	ENV_SERVER_ALLOW_ORIGINS = "GOCALC_SERVER_ALLOW_ORIGINS"
)

// ValidFormats are the output formats the CLI can render.
var ValidFormats = []string{"text", "json", "yaml"}

type LogConfig struct {
	Level      string `json:"level" yaml:"level"`
	Format     string `json:"format" yaml:"format"` // json, text
	File       string `json:"file" yaml:"file"`
	MaxSize    int    `json:"max_size" yaml:"max_size"`
	MaxAge     int    `json:"max_age" yaml:"max_age"`
	MaxBackups int    `json:"max_backups" yaml:"max_backups"`
	Compress   bool   `json:"compress" yaml:"compress"`
	IncludeSrc bool   `json:"include_src" yaml:"include_src"`
}

type ServerConfig struct {
	Addr         string        `json:"addr" yaml:"addr"`
	DebugMode    bool          `json:"debug_mode" yaml:"debug_mode"`
	AllowOrigins []string      `json:"allow_origins" yaml:"allow_origins"`
	ReadTimeout  time.Duration `json:"read_timeout" yaml:"read_timeout"`
	WriteTimeout time.Duration `json:"write_timeout" yaml:"write_timeout"`
	MaxBodyBytes int64         `json:"max_body_bytes" yaml:"max_body_bytes"`
}

type Config struct {
	// Integration variable used when a command does not name one.
	Variable string `json:"variable" yaml:"variable"`
	MaxDepth int    `json:"max_depth" yaml:"max_depth"`
	Format   string `json:"format" yaml:"format"`

	Log    LogConfig    `json:"log" yaml:"log"`
	Server ServerConfig `json:"server" yaml:"server"`
}

// Default returns the settings used when no file or environment overrides
// are present.
func Default() *Config {
	return &Config{
		Variable: "x",
		MaxDepth: 5,
		Format:   "text",
		Log: LogConfig{
			Level:      "info",
			Format:     "text",
			MaxSize:    100,
			MaxAge:     28,
			MaxBackups: 3,
		},
		Server: ServerConfig{
			Addr:         ":8080",
			AllowOrigins: []string{"*"},
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			MaxBodyBytes: 1 << 20,
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path falls back to ENV_CONFIG_FILE_PATH,
// and when that is unset only defaults and environment are used.
func Load(path string) (*Config, error) {
	conf := Default()
	if path == "" {
		path = os.Getenv(ENV_CONFIG_FILE_PATH)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := conf.decode(data); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := conf.ApplyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := conf.Validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

// decode rejects unknown keys.
func (c *Config) decode(data []byte) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// ApplyEnv overrides fields from non-empty environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(ENV_VARIABLE); v != "" {
		c.Variable = v
	}
	if v := getenv(ENV_MAX_DEPTH); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s: %w", ENV_MAX_DEPTH, err)
		}
		c.MaxDepth = n
	}
	if v := getenv(ENV_FORMAT); v != "" {
		c.Format = v
	}
	if v := getenv(ENV_LOG_LEVEL); v != "" {
		c.Log.Level = v
	}
	if v := getenv(ENV_LOG_FORMAT); v != "" {
		c.Log.Format = v
	}
	if v := getenv(ENV_LOG_FILE); v != "" {
		c.Log.File = v
	}
	if v := getenv(ENV_LOG_INCLUDE_SRC); v != "" {
		c.Log.IncludeSrc = v == "true"
	}
	if v := getenv(ENV_SERVER_ADDR); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(ENV_SERVER_ALLOW_ORIGINS); v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.Server.AllowOrigins = origins
	}
	return nil
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if !gocalc.IsIdentifier(c.Variable) {
		errs = append(errs, fmt.Errorf("variable %q is not an identifier", c.Variable))
	}
	if c.MaxDepth < 1 || c.MaxDepth > gocalc.MaxAllowedDepth {
		errs = append(errs, fmt.Errorf("max_depth must be between 1 and %d, got %d", gocalc.MaxAllowedDepth, c.MaxDepth))
	}
	if !IsValidFormat(c.Format) {
		errs = append(errs, fmt.Errorf("invalid format %q: must be one of %v", c.Format, ValidFormats))
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		errs = append(errs, fmt.Errorf("invalid log format %q: must be json or text", c.Log.Format))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_body_bytes must be positive"))
	}
	for _, o := range c.Server.AllowOrigins {
		if o != "*" && !strings.HasPrefix(o, "http://") && !strings.HasPrefix(o, "https://") {
			errs = append(errs, fmt.Errorf("bad origin %q: must be * or start with http:// or https://", o))
		}
	}
	return errors.Join(errs...)
}

// IsValidFormat checks if the format is one of the allowed values.
func IsValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
