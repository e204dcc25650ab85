// Package config loads verifier settings from YAML files.
package config

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"verichain/blockchain"
)

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	DifficultyPrefix string `yaml:"difficulty_prefix"`
	SignatureScheme  string `yaml:"signature_scheme"`
	LogLevel         string `yaml:"log_level"`
	Development      bool   `yaml:"development"`
	// Concurrency bounds parallel proof checks, 0 means GOMAXPROCS
	Concurrency int `yaml:"concurrency"`
}

func Default() Config {
	return Config{
		DifficultyPrefix: blockchain.DefaultDifficultyPrefix,
		SignatureScheme:  blockchain.SchemeEd25519,
		LogLevel:         "info",
	}
}

// Load reads path on top of the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if err := blockchain.ValidateDifficultyPrefix(c.DifficultyPrefix); err != nil {
		return fmt.Errorf("difficulty_prefix: %w: %w", err, ErrInvalidConfig)
	}
	if _, err := blockchain.SchemeVerifier(c.SignatureScheme); err != nil {
		return fmt.Errorf("signature_scheme: %w: %w", err, ErrInvalidConfig)
	}
	if _, err := zapcore.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w: %w", err, ErrInvalidConfig)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency %d is negative: %w", c.Concurrency, ErrInvalidConfig)
	}
	return nil
}

// Logger builds the process logger
func (c Config) Logger() (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("log_level: %w", err)
	}

	zc := zap.NewProductionConfig()
	if c.Development {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// Options converts the config into verifier options
func (c Config) Options(logger *zap.Logger) ([]blockchain.Option, error) {
	sv, err := blockchain.SchemeVerifier(c.SignatureScheme)
	if err != nil {
		return nil, err
	}
	return []blockchain.Option{
		blockchain.WithDifficultyPrefix(c.DifficultyPrefix),
		blockchain.WithSignatureVerifier(sv),
		blockchain.WithLogger(logger),
		blockchain.WithConcurrency(c.Concurrency),
	}, nil
}
