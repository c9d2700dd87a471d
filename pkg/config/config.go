package config

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

var allowedVals map[string][]string

func init() {
	allowedVals = map[string][]string{
		"log.level":  {"debug", "info", "warn", "error"},
		"log.format": {"json", "console"},
	}
}

type Config struct {
	Log         LogConfig         `yaml:"log"`
	Version     string            `yaml:"version"`
	API         APIConfig         `yaml:"api"`
	Compression CompressionConfig `yaml:"compression"`
	Extraction  ExtractionConfig  `yaml:"extraction"`
	Bundle      BundleConfig      `yaml:"bundle"`
	Delivery    DeliveryConfig    `yaml:"delivery"`
	Tracing     TracingConfig     `yaml:"tracing"`
}

func New(confData []byte) (*Config, error) {
	c := &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
	}

	err := yaml.Unmarshal(confData, &c)
	if err != nil {
		return nil, err
	}

	c.fillDefaultValues()

	err = c.validate()
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Default returns the configuration used when no config file is given.
func Default() *Config {
	c, err := New([]byte{})
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return c
}

func (c *Config) validate() error {
	err := c.Log.validate()
	if err != nil {
		return err
	}

	err = c.API.validate()
	if err != nil {
		return err
	}

	err = c.Compression.validate()
	if err != nil {
		return err
	}

	err = c.Extraction.validate()
	if err != nil {
		return err
	}

	err = c.Bundle.validate()
	if err != nil {
		return err
	}

	err = c.Tracing.validate()
	if err != nil {
		return err
	}

	return c.Delivery.validate()
}

func allowed(group []string, elem string) bool {
	for _, a := range group {
		if a == elem {
			return true
		}
	}
	return false
}

func allowedValues(key string) []string {
	return allowedVals[key]
}

func (c *Config) fillDefaultValues() {
	c.Log = c.Log.fillDefaults()
	c.API = c.API.fillDefaults()
	c.Compression = c.Compression.fillDefaults()
	c.Extraction = c.Extraction.fillDefaults()
	c.Bundle = c.Bundle.fillDefaults()
	c.Delivery = c.Delivery.fillDefaults()
	c.Tracing = c.Tracing.fillDefaults()
}
