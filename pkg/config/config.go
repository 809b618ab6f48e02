// pkg/config/config.go
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/opd-ai/go-zenith/pkg/validation"
)

// PhysicsConfig contains the tunables of the collision engine
type PhysicsConfig struct {
	// MaxCollisionsPerFrame bounds the contacts and the overlaps a body
	// records in one tick.
	MaxCollisionsPerFrame int `json:"maxCollisionsPerFrame"`
	// MaxStepLength is the longest distance a body moves between two
	// static resolutions.
	MaxStepLength float64 `json:"maxStepLength"`
	// StaticPruneFactor and TriggerPruneFactor scale radius^2 into the
	// broad-phase margin.
	StaticPruneFactor  float64 `json:"staticPruneFactor"`
	TriggerPruneFactor float64 `json:"triggerPruneFactor"`
	// TriggerThreshold is the smallest intensity worth recording.
	TriggerThreshold float64 `json:"triggerThreshold"`
	// RestThreshold is the speed below which a body is snapped to rest.
	RestThreshold float64 `json:"restThreshold"`
	TickRate      int     `json:"tickRate"`
	// Workers > 1 resolves bodies in parallel.
	Workers       int `json:"workers"`
	IndexCapacity int `json:"indexCapacity"`
}

// Environment variables read by ApplyEnvironmentOverrides
const (
	EnvMaxCollisions    = "ZENITH_MAX_COLLISIONS"
	EnvMaxStepLength    = "ZENITH_MAX_STEP_LENGTH"
	EnvTriggerThreshold = "ZENITH_TRIGGER_THRESHOLD"
	EnvTickRate         = "ZENITH_TICK_RATE"
	EnvWorkers          = "ZENITH_WORKERS"
)

// DefaultConfig returns the default physics configuration
func DefaultConfig() *PhysicsConfig {
	return &PhysicsConfig{
		MaxCollisionsPerFrame: 8,
		MaxStepLength:         1.0,
		StaticPruneFactor:     16,
		TriggerPruneFactor:    1,
		TriggerThreshold:      0.001,
		RestThreshold:         0.000001,
		TickRate:              60,
		Workers:               1,
		IndexCapacity:         8,
	}
}

// Validate checks every field
func (c *PhysicsConfig) Validate() error {
	if c.MaxCollisionsPerFrame < 1 {
		return fmt.Errorf("maxCollisionsPerFrame %d must be at least 1: %w", c.MaxCollisionsPerFrame, validation.ErrOutOfRange)
	}
	positives := []struct {
		name  string
		value float64
	}{
		{"maxStepLength", c.MaxStepLength},
		{"staticPruneFactor", c.StaticPruneFactor},
		{"triggerPruneFactor", c.TriggerPruneFactor},
		{"restThreshold", c.RestThreshold},
	}
	for _, p := range positives {
		if err := validation.ValidatePositive(p.name, p.value); err != nil {
			return err
		}
	}
	if err := validation.ValidateUnit("triggerThreshold", c.TriggerThreshold); err != nil {
		return err
	}
	if c.TickRate < 1 {
		return fmt.Errorf("tickRate %d must be at least 1: %w", c.TickRate, validation.ErrOutOfRange)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers %d must be at least 1: %w", c.Workers, validation.ErrOutOfRange)
	}
	if c.IndexCapacity < 1 {
		return fmt.Errorf("indexCapacity %d must be at least 1: %w", c.IndexCapacity, validation.ErrOutOfRange)
	}
	return nil
}

// LoadConfig loads a configuration from a JSON file. Fields missing from
// the file keep their defaults.
func LoadConfig(path string) (*PhysicsConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return config, nil
}

// SaveConfig saves a configuration to a file
func SaveConfig(config *PhysicsConfig, path string) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ApplyEnvironmentOverrides replaces fields with ZENITH_* environment
// variables that are set, then validates the result.
func ApplyEnvironmentOverrides(config *PhysicsConfig) error {
	if err := overrideInt(EnvMaxCollisions, &config.MaxCollisionsPerFrame); err != nil {
		return err
	}
	if err := overrideFloat(EnvMaxStepLength, &config.MaxStepLength); err != nil {
		return err
	}
	if err := overrideFloat(EnvTriggerThreshold, &config.TriggerThreshold); err != nil {
		return err
	}
	if err := overrideInt(EnvTickRate, &config.TickRate); err != nil {
		return err
	}
	if err := overrideInt(EnvWorkers, &config.Workers); err != nil {
		return err
	}
	return config.Validate()
}

func overrideInt(key string, dst *int) error {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}

func overrideFloat(key string, dst *float64) error {
	raw, ok := os.LookupEnv(key)
	if !ok || raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid %s: %w", key, err)
	}
	*dst = v
	return nil
}
