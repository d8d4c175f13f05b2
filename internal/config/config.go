// Package config loads runtime settings from an optional YAML file, an
// optional .env file and ECHO_ARENA_* environment variables, in that order of
// increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by ApplyEnv.
const (
	EnvDB       = "ECHO_ARENA_DB"
	EnvProfile  = "ECHO_ARENA_PROFILE"
	EnvPassword = "ECHO_ARENA_PASSWORD"
	EnvSeed     = "ECHO_ARENA_SEED"
	EnvAudio    = "ECHO_ARENA_AUDIO"
	EnvVolume   = "ECHO_ARENA_VOLUME"
	EnvLogLevel = "ECHO_ARENA_LOG_LEVEL"
)

type Window struct {
	Title string  `yaml:"title"`
	Scale float64 `yaml:"scale"`
}

type Arena struct {
	Width  float64 `yaml:"width"`
	Height float64 `yaml:"height"`
}

type Audio struct {
	Enabled bool    `yaml:"enabled"`
	Volume  float64 `yaml:"volume"`
}

// MutatorOverride retunes one built-in preset by name.
type MutatorOverride struct {
	Name  string  `yaml:"name"`
	Speed float64 `yaml:"speed"`
	Time  float64 `yaml:"time"`
	Enemy float64 `yaml:"enemy"`
}

type Config struct {
	Window   Window            `yaml:"window"`
	Arena    Arena             `yaml:"arena"`
	Seed     int64             `yaml:"seed"`
	DBPath   string            `yaml:"db_path"`
	Profile  string            `yaml:"profile"`
	Password string            `yaml:"-"` // environment only
	Audio    Audio             `yaml:"audio"`
	LogLevel string            `yaml:"log_level"`
	Mutators []MutatorOverride `yaml:"mutators"`
}

// Default returns the built-in settings. Seed 0 means "pick from the clock".
func Default() Config {
	return Config{
		Window:   Window{Title: "Echo Arena", Scale: 1},
		Arena:    Arena{Width: 960, Height: 600},
		DBPath:   "echo_arena.db",
		Audio:    Audio{Enabled: true, Volume: 0.7},
		LogLevel: "info",
	}
}

// Load reads path over the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDotEnv loads files (default ".env") into the process environment
// without overriding variables that are already set. Missing files are
// ignored.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("load env files: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from ECHO_ARENA_* variables. Unparseable values
// are reported and leave the field unchanged.
func (c *Config) ApplyEnv() error {
	var errs []error
	if v := os.Getenv(EnvDB); v != "" {
		c.DBPath = v
	}
	if v, ok := os.LookupEnv(EnvProfile); ok {
		c.Profile = strings.TrimSpace(v)
	}
	if v, ok := os.LookupEnv(EnvPassword); ok {
		c.Password = v
	}
	if v := os.Getenv(EnvSeed); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			c.Seed = n
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvSeed, err))
		}
	}
	if v := os.Getenv(EnvAudio); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			c.Audio.Enabled = b
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvAudio, err))
		}
	}
	if v := os.Getenv(EnvVolume); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			c.Audio.Volume = f
		} else {
			errs = append(errs, fmt.Errorf("%s: %w", EnvVolume, err))
		}
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = strings.ToLower(v)
	}
	return errors.Join(errs...)
}

// Validate checks ranges. It does not touch the filesystem.
func (c Config) Validate() error {
	var errs []error
	if c.Arena.Width < 100 || c.Arena.Height < 100 {
		errs = append(errs, fmt.Errorf("arena %vx%v is smaller than 100x100", c.Arena.Width, c.Arena.Height))
	}
	if c.Window.Scale <= 0 {
		errs = append(errs, fmt.Errorf("window scale must be positive, got %v", c.Window.Scale))
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		errs = append(errs, fmt.Errorf("audio volume %v outside [0,1]", c.Audio.Volume))
	}
	if c.DBPath == "" {
		errs = append(errs, errors.New("db_path is empty"))
	}
	switch c.LogLevel {
	case "trace", "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("unknown log level %q", c.LogLevel))
	}
	for _, m := range c.Mutators {
		if m.Speed <= 0 || m.Time <= 0 || m.Enemy <= 0 {
			errs = append(errs, fmt.Errorf("mutator %q: scalars must be positive", m.Name))
		}
	}
	return errors.Join(errs...)
}
