package config

import "errors"

const DefaultServiceNameOnO11y = "sucuri"

type TracingConfig struct {
	Enabled     bool   `yaml:"enabled"`
	ServiceName string `yaml:"service_name"`
	// SampleRatio applies to traces started here. Zero means unset and samples everything.
	SampleRatio float64 `yaml:"sample_ratio"`
}

func (tracingConf TracingConfig) fillDefaults() TracingConfig {
	if tracingConf.ServiceName == "" {
		tracingConf.ServiceName = DefaultServiceNameOnO11y
	}

	if tracingConf.SampleRatio == 0 {
		tracingConf.SampleRatio = 1.0
	}
	return tracingConf
}

func (tracingConf TracingConfig) validate() error {
	if tracingConf.SampleRatio < 0 || tracingConf.SampleRatio > 1 {
		return errors.New("tracing.sample_ratio must be in the interval (0,1]")
	}
	return nil
}
