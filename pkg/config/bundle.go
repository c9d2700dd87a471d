package config

import "fmt"

const DefaultBundleCompressionLevel = 6

type BundleConfig struct {
	CompressionLevel int `yaml:"compression_level"`
}

func (bundleConf BundleConfig) fillDefaults() BundleConfig {
	if bundleConf.CompressionLevel == 0 {
		bundleConf.CompressionLevel = DefaultBundleCompressionLevel
	}
	return bundleConf
}

func (bundleConf BundleConfig) validate() error {
	if bundleConf.CompressionLevel < 1 || bundleConf.CompressionLevel > 9 {
		return fmt.Errorf("bundle.compression_level should be in the interval [1,9]")
	}
	return nil
}
