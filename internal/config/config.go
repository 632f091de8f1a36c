// Package config loads the optional turing.yaml configuration file.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultPath is looked up in the working directory when no --config flag is given.
const DefaultPath = "turing.yaml"

// Config is the full set of tunables shared by the CLI, server and analysis.
type Config struct {
	Log      LogConfig      `mapstructure:"log"`
	Engine   EngineConfig   `mapstructure:"engine"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// File, when set, receives JSON log lines in addition to stderr.
	File string `mapstructure:"file"`
}

type EngineConfig struct {
	// MaxSteps bounds every run; 0 keeps runs unbounded.
	MaxSteps int    `mapstructure:"max_steps"`
	TraceDir string `mapstructure:"trace_dir"`
	// ProgramsDir holds extra .tm programs, consulted before the shipped ones.
	ProgramsDir string `mapstructure:"programs_dir"`
}

type AnalysisConfig struct {
	Program   string `mapstructure:"program"`
	Samples   int    `mapstructure:"samples"`
	Blanks    int    `mapstructure:"blanks"`
	Workers   int    `mapstructure:"workers"`
	Seed      uint64 `mapstructure:"seed"`
	MinLength int    `mapstructure:"min_length"`
	MaxLength int    `mapstructure:"max_length"`
	MaxDim    int    `mapstructure:"max_dim"`
}

type ServerConfig struct {
	Port string `mapstructure:"port"`
}

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
)

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Dir     string `mapstructure:"dir"`
	// TTL applies to the redis backend; "0s" keeps records forever.
	TTL string `mapstructure:"ttl"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Prefix   string `mapstructure:"prefix"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Log:    LogConfig{Level: "info"},
		Engine: EngineConfig{MaxSteps: 0, TraceDir: "."},
		Analysis: AnalysisConfig{
			Program:   "multiply",
			Samples:   10,
			Blanks:    5,
			Workers:   0,
			Seed:      1,
			MinLength: 2,
			MaxLength: 12,
			MaxDim:    10,
		},
		Server: ServerConfig{Port: "8080"},
		Store:  StoreConfig{Backend: StoreFile, Dir: filepath.Join(".turing", "runs"), TTL: "0s"},
		Redis:  RedisConfig{Addr: "", Prefix: "turing:run:"},
	}
}

// Load reads a configuration file (YAML or JSON) and overlays it on Default.
// A missing file is not an error: defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}

	raw := map[string]any{}
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".json" {
		if err := json.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	} else {
		// Default to YAML
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
		}
	}

	if err := decode(raw, &cfg); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func decode(raw map[string]any, cfg *Config) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(raw); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Validate rejects values the engine or analysis cannot work with.
func (c Config) Validate() error {
	if c.Engine.MaxSteps < 0 {
		return fmt.Errorf("engine.max_steps must be >= 0")
	}
	a := c.Analysis
	if a.Samples < 1 {
		return fmt.Errorf("analysis.samples must be >= 1")
	}
	if a.Blanks < 0 {
		return fmt.Errorf("analysis.blanks must be >= 0")
	}
	if a.Workers < 0 {
		return fmt.Errorf("analysis.workers must be >= 0")
	}
	if a.MinLength > a.MaxLength {
		return fmt.Errorf("analysis.min_length (%d) exceeds max_length (%d)", a.MinLength, a.MaxLength)
	}
	if a.MaxDim < 2 {
		return fmt.Errorf("analysis.max_dim must be >= 2")
	}

	switch c.Store.Backend {
	case StoreMemory, StoreFile:
	case StoreRedis:
		if c.Redis.Addr == "" {
			return fmt.Errorf("store.backend redis requires redis.addr")
		}
	default:
		return fmt.Errorf("unknown store.backend %q", c.Store.Backend)
	}
	if _, err := c.StoreTTL(); err != nil {
		return err
	}
	return nil
}

// StoreTTL parses Store.TTL.
func (c Config) StoreTTL() (time.Duration, error) {
	if c.Store.TTL == "" {
		return 0, nil
	}
	ttl, err := time.ParseDuration(c.Store.TTL)
	if err != nil {
		return 0, fmt.Errorf("invalid store.ttl: %w", err)
	}
	return ttl, nil
}
