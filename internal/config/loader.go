package config

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/amshq/pulse/internal/domain/benchmark"
)

// minTrendPeriods matches the synthesizer's floor; shorter horizons cannot
// carry a growth rate.
const minTrendPeriods = 2

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):.
//  1. defaults (New(ctx))
//  2. file (YAML) if PULSE_CONFIG is set
//  3. env (prefix PULSE_)
func Load(ctx context.Context) (*Config, error) {
	// Start with defaults
	base := New(ctx)

	k := koanf.New(".")

	// Load from file if provided
	if path := os.Getenv("PULSE_CONFIG"); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
		}
	}

	// Environment variables: PULSE_ADDR, PULSE_TREND_PERIODS, ...
	// Map env keys like PULSE_TREND_PERIODS -> trend_periods (flat keys)
	// Preserve underscores to match koanf tags on the struct.
	envProvider := env.Provider("PULSE_", ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, "pulse_")
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	// Unmarshal into a copy
	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoadConfig, err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.Addr == "" {
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	}
	if c.TrendPeriods < minTrendPeriods {
		return fmt.Errorf("%w: trend_periods must be at least %d, got %d", ErrInvalidConfig, minTrendPeriods, c.TrendPeriods)
	}
	if m := time.Month(c.AnchorMonth); m < time.January || m > time.December {
		return fmt.Errorf("%w: anchor_month must be 1..12, got %d", ErrInvalidConfig, c.AnchorMonth)
	}
	if !(c.RetentionFloor <= c.RetentionNeutral && c.RetentionNeutral <= c.RetentionCeiling) {
		return fmt.Errorf("%w: retention bounds must satisfy floor <= neutral <= ceiling", ErrInvalidConfig)
	}
	if c.MaxRankingsLimit <= 0 {
		return fmt.Errorf("%w: max_rankings_limit must be positive", ErrInvalidConfig)
	}
	for name := range c.DimensionWeights {
		if _, err := benchmark.ParseDimension(name); err != nil {
			return fmt.Errorf("%w: dimension_weights: %w", ErrInvalidConfig, err)
		}
	}
	for name := range c.RecommendThresholds {
		if _, err := benchmark.ParseDimension(name); err != nil {
			return fmt.Errorf("%w: recommend_thresholds: %w", ErrInvalidConfig, err)
		}
	}
	return nil
}
