package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/RowanDark/cipherlab/internal/env"
)

const (
	// MaxKeyLengthLimit is the longest Vigenère key the cracker will try.
	MaxKeyLengthLimit = 15
	// CombinationCapLimit bounds the keys tried per key length.
	CombinationCapLimit = 30
)

// Config captures the cipherlab configuration resolved from defaults, optional
// files, and environment overrides.
type Config struct {
	HTTPAddr     string      `yaml:"http_addr"`
	GRPCAddr     string      `yaml:"grpc_addr"`
	AuthToken    string      `yaml:"auth_token"`
	LogFormat    string      `yaml:"log_format"`
	LogLevel     string      `yaml:"log_level"`
	AuditLogPath string      `yaml:"audit_log_path"`
	Crack        CrackConfig `yaml:"crack"`
}

// CrackConfig holds the search defaults used when a request leaves them out.
type CrackConfig struct {
	MaxKeyLength      int           `yaml:"max_key_length"`
	ShiftsPerPosition int           `yaml:"shifts_per_position"`
	CombinationCap    int           `yaml:"combination_cap"`
	Timeout           time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		HTTPAddr:     "127.0.0.1:8080",
		GRPCAddr:     "127.0.0.1:50051",
		AuthToken:    "",
		LogFormat:    "text",
		LogLevel:     "info",
		AuditLogPath: "",
		Crack: CrackConfig{
			MaxKeyLength:      10,
			ShiftsPerPosition: 2,
			CombinationCap:    CombinationCapLimit,
			Timeout:           30 * time.Second,
		},
	}
}

// Load resolves the configuration using defaults, configuration files, and
// environment overrides. Files are applied in this order, later ones winning:
//  1. ~/.cipherlab/config.yml
//  2. ./cipherlab.yml
//
// Environment variables prefixed with CIPHERLAB_ have the highest precedence.
func Load() (Config, error) {
	cfg := Default()

	if home, err := os.UserHomeDir(); err == nil {
		if err := applyFileIfExists(&cfg, filepath.Join(home, ".cipherlab", "config.yml")); err != nil {
			return Config{}, err
		}
	}

	wd, err := os.Getwd()
	if err != nil {
		return Config{}, fmt.Errorf("determine working directory: %w", err)
	}
	if err := applyFileIfExists(&cfg, filepath.Join(wd, "cipherlab.yml")); err != nil {
		return Config{}, err
	}

	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadFile resolves defaults, then the file at path, then the environment.
// Unlike Load the file must exist.
func LoadFile(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(&cfg, data); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := applyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the services cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.HTTPAddr) == "" && strings.TrimSpace(c.GRPCAddr) == "" {
		errs = append(errs, errors.New("at least one of http_addr and grpc_addr must be set"))
	}
	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("log_format must be text or json, got %q", c.LogFormat))
	}
	if c.Crack.MaxKeyLength < 1 || c.Crack.MaxKeyLength > MaxKeyLengthLimit {
		errs = append(errs, fmt.Errorf("crack.max_key_length must be between 1 and %d", MaxKeyLengthLimit))
	}
	if c.Crack.ShiftsPerPosition < 1 || c.Crack.ShiftsPerPosition > 26 {
		errs = append(errs, errors.New("crack.shifts_per_position must be between 1 and 26"))
	}
	if c.Crack.CombinationCap < 1 || c.Crack.CombinationCap > CombinationCapLimit {
		errs = append(errs, fmt.Errorf("crack.combination_cap must be between 1 and %d", CombinationCapLimit))
	}
	if c.Crack.Timeout <= 0 {
		errs = append(errs, errors.New("crack.timeout must be positive"))
	}
	return errors.Join(errs...)
}

func applyFileIfExists(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := applyFileConfig(cfg, data); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// fileConfig mirrors Config with pointers so that only keys present in a file
// override what is already resolved.
type fileConfig struct {
	HTTPAddr     *string          `yaml:"http_addr"`
	GRPCAddr     *string          `yaml:"grpc_addr"`
	AuthToken    *string          `yaml:"auth_token"`
	LogFormat    *string          `yaml:"log_format"`
	LogLevel     *string          `yaml:"log_level"`
	AuditLogPath *string          `yaml:"audit_log_path"`
	Crack        *fileCrackConfig `yaml:"crack"`
}

type fileCrackConfig struct {
	MaxKeyLength      *int    `yaml:"max_key_length"`
	ShiftsPerPosition *int    `yaml:"shifts_per_position"`
	CombinationCap    *int    `yaml:"combination_cap"`
	Timeout           *string `yaml:"timeout"`
}

func applyFileConfig(cfg *Config, data []byte) error {
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	setString(&cfg.HTTPAddr, fc.HTTPAddr)
	setString(&cfg.GRPCAddr, fc.GRPCAddr)
	setString(&cfg.AuthToken, fc.AuthToken)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.AuditLogPath, fc.AuditLogPath)

	if fc.Crack != nil {
		if fc.Crack.MaxKeyLength != nil {
			cfg.Crack.MaxKeyLength = *fc.Crack.MaxKeyLength
		}
		if fc.Crack.ShiftsPerPosition != nil {
			cfg.Crack.ShiftsPerPosition = *fc.Crack.ShiftsPerPosition
		}
		if fc.Crack.CombinationCap != nil {
			cfg.Crack.CombinationCap = *fc.Crack.CombinationCap
		}
		if fc.Crack.Timeout != nil {
			d, err := time.ParseDuration(strings.TrimSpace(*fc.Crack.Timeout))
			if err != nil {
				return fmt.Errorf("crack.timeout: %w", err)
			}
			cfg.Crack.Timeout = d
		}
	}
	return nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = strings.TrimSpace(*src)
	}
}

func applyEnvOverrides(cfg *Config) error {
	if val, ok := env.Lookup("CIPHERLAB_HTTP_ADDR", "CIPHERLAB_ADDR"); ok {
		cfg.HTTPAddr = val
	}
	if val, ok := env.Lookup("CIPHERLAB_GRPC_ADDR", "CIPHERLAB_SERVER"); ok {
		cfg.GRPCAddr = val
	}
	if val, ok := env.Lookup("CIPHERLAB_AUTH_TOKEN"); ok {
		cfg.AuthToken = val
	}
	if val, ok := env.Lookup("CIPHERLAB_LOG_FORMAT"); ok {
		cfg.LogFormat = val
	}
	if val, ok := env.Lookup("CIPHERLAB_LOG_LEVEL"); ok {
		cfg.LogLevel = val
	}
	if val, ok := env.Lookup("CIPHERLAB_AUDIT_LOG"); ok {
		cfg.AuditLogPath = val
	}
	if val, ok := env.Lookup("CIPHERLAB_MAX_KEY_LENGTH"); ok {
		n, err := strconv.Atoi(val)
		if err != nil {
			return fmt.Errorf("CIPHERLAB_MAX_KEY_LENGTH: %w", err)
		}
		cfg.Crack.MaxKeyLength = n
	}
	if val, ok := env.Lookup("CIPHERLAB_CRACK_TIMEOUT"); ok {
		d, err := time.ParseDuration(val)
		if err != nil {
			return fmt.Errorf("CIPHERLAB_CRACK_TIMEOUT: %w", err)
		}
		cfg.Crack.Timeout = d
	}
	return nil
}

// Marshal renders cfg as YAML with the auth token masked, for display.
func Marshal(cfg Config) ([]byte, error) {
	if cfg.AuthToken != "" {
		cfg.AuthToken = "********"
	}
	return yaml.Marshal(cfg)
}
