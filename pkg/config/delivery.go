package config

import (
	"errors"
	"fmt"
	"slices"
	"time"
)

var (
	allowedObjectStorages = []string{"localstorage", "s3"}
	allowedExternalQueues = []string{"noop", "sqs"}
)

const DefaultOpenIntervalInMs = 100

// DeliveryConfig is optional. When ObjectStorage.Type is empty, finished bundles are only handed
// back to the caller.
type DeliveryConfig struct {
	ObjectStorage  ObjectStorageConfig  `yaml:"object_storage"`
	ExternalQueue  ExternalQueueConfig  `yaml:"external_queue"`
	CircuitBreaker CircuitBreakerConfig `yaml:"circuit_breaker"`
}

type ObjectStorageConfig struct {
	Type   string      `yaml:"type"`
	Config interface{} `yaml:"config"`
}

type ExternalQueueConfig struct {
	Type   string      `yaml:"type"`
	Config interface{} `yaml:"config"`
}

type CircuitBreakerConfig struct {
	TurnOn       bool  `yaml:"turn_on"`
	OpenInterval int64 `yaml:"open_interval_in_ms"`
}

func (deliveryConf DeliveryConfig) Enabled() bool {
	return deliveryConf.ObjectStorage.Type != ""
}

func (deliveryConf DeliveryConfig) fillDefaults() DeliveryConfig {
	if deliveryConf.Enabled() && deliveryConf.ExternalQueue.Type == "" {
		deliveryConf.ExternalQueue.Type = "noop"
	}

	if deliveryConf.CircuitBreaker.OpenInterval == 0 {
		deliveryConf.CircuitBreaker.OpenInterval = DefaultOpenIntervalInMs
	}
	return deliveryConf
}

func (deliveryConf DeliveryConfig) validate() error {
	if !deliveryConf.Enabled() {
		if deliveryConf.ExternalQueue.Type != "" {
			return errors.New("delivery.external_queue needs delivery.object_storage to be declared")
		}
		return nil
	}

	if !slices.Contains(allowedObjectStorages, deliveryConf.ObjectStorage.Type) {
		return fmt.Errorf("delivery.object_storage.type must be one of %v", allowedObjectStorages)
	}

	if !slices.Contains(allowedExternalQueues, deliveryConf.ExternalQueue.Type) {
		return fmt.Errorf("delivery.external_queue.type must be one of %v", allowedExternalQueues)
	}

	if deliveryConf.CircuitBreaker.OpenInterval < 0 {
		return errors.New("delivery.circuit_breaker.open_interval_in_ms cannot be negative")
	}
	return nil
}

func (cbConf CircuitBreakerConfig) OpenIntervalAsDuration() time.Duration {
	return time.Duration(cbConf.OpenInterval) * time.Millisecond
}
