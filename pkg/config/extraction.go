package config

import (
	"errors"
	"fmt"
)

const (
	DefaultMaxExtractedSize = "1gb"
	DefaultMaxEntries       = 10000
)

type ExtractionConfig struct {
	Workdir          string `yaml:"workdir"`
	MaxExtractedSize string `yaml:"max_extracted_size"`
	MaxEntries       int    `yaml:"max_entries"`
}

func (extConf ExtractionConfig) fillDefaults() ExtractionConfig {
	if extConf.MaxExtractedSize == "" {
		extConf.MaxExtractedSize = DefaultMaxExtractedSize
	}

	if extConf.MaxEntries == 0 {
		extConf.MaxEntries = DefaultMaxEntries
	}
	return extConf
}

func (extConf ExtractionConfig) validate() error {
	size, err := ToBytes(extConf.MaxExtractedSize)
	if err != nil {
		return fmt.Errorf("invalid extraction.max_extracted_size: %w", err)
	}

	if size <= 0 {
		return errors.New("extraction.max_extracted_size must be positive")
	}

	if extConf.MaxEntries < 0 {
		return errors.New("extraction.max_entries cannot be negative")
	}
	return nil
}

func (extConf ExtractionConfig) MaxExtractedSizeInBytes() (int64, error) {
	return ToBytes(extConf.MaxExtractedSize)
}
