package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	DefaultTargetKB    = 45
	DefaultMinTargetKB = 10
	DefaultMaxTargetKB = 500
)

type CompressionConfig struct {
	DefaultTargetKB int    `yaml:"default_target_kb"`
	MinTargetKB     int    `yaml:"min_target_kb"`
	MaxTargetKB     int    `yaml:"max_target_kb"`
	ProgressDelay   string `yaml:"progress_delay"`
}

func (compConf CompressionConfig) fillDefaults() CompressionConfig {
	if compConf.DefaultTargetKB == 0 {
		compConf.DefaultTargetKB = DefaultTargetKB
	}

	if compConf.MinTargetKB == 0 {
		compConf.MinTargetKB = DefaultMinTargetKB
	}

	if compConf.MaxTargetKB == 0 {
		compConf.MaxTargetKB = DefaultMaxTargetKB
	}

	if compConf.ProgressDelay == "" {
		compConf.ProgressDelay = "0s"
	}
	return compConf
}

func (compConf CompressionConfig) validate() error {
	if compConf.MinTargetKB <= 0 {
		return errors.New("compression.min_target_kb must be positive")
	}

	if compConf.MaxTargetKB < compConf.MinTargetKB {
		return errors.New("compression.max_target_kb must not be smaller than compression.min_target_kb")
	}

	if compConf.DefaultTargetKB < compConf.MinTargetKB || compConf.DefaultTargetKB > compConf.MaxTargetKB {
		return fmt.Errorf("compression.default_target_kb must be in the interval [%d,%d]",
			compConf.MinTargetKB, compConf.MaxTargetKB)
	}

	delay, err := time.ParseDuration(compConf.ProgressDelay)
	if err != nil {
		return fmt.Errorf("invalid compression.progress_delay: %w", err)
	}

	if delay < 0 {
		return errors.New("compression.progress_delay cannot be negative")
	}

	return nil
}

// ProgressDelayAsDuration is only safe to call on a validated config.
func (compConf CompressionConfig) ProgressDelayAsDuration() time.Duration {
	delay, _ := time.ParseDuration(compConf.ProgressDelay)
	return delay
}

func (compConf CompressionConfig) TargetAllowed(targetKB int) bool {
	return targetKB >= compConf.MinTargetKB && targetKB <= compConf.MaxTargetKB
}
