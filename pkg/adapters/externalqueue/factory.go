package externalqueue

import (
	"context"
	"fmt"

	"github.com/jademcosta/sucuri/pkg/adapters/externalqueue/noopqueue"
	"github.com/jademcosta/sucuri/pkg/adapters/externalqueue/sqs"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"gopkg.in/yaml.v2"
)

type ExternalQueue interface {
	Enqueue(ctx context.Context, msg *domain.Message) error
}

type ExtQueueWithMetadata interface {
	ExternalQueue
	Type() string
	Name() string
}

func New(
	l *zap.SugaredLogger, metricRegistry *prometheus.Registry, conf config.ExternalQueueConfig,
) (ExtQueueWithMetadata, error) {

	var externalQueue ExtQueueWithMetadata
	specificConf, err := yaml.Marshal(conf.Config)
	if err != nil {
		return nil, fmt.Errorf("error parsing external queue config: %w", err)
	}

	l = l.With(logger.EXT_QUEUE_TYPE_KEY, conf.Type)

	switch conf.Type {
	case noopqueue.TYPE:
		externalQueue = noopqueue.New(l)
	case sqs.TYPE:
		c, err := sqs.ParseConfig(specificConf)
		if err != nil {
			return nil, fmt.Errorf("error parsing SQS-specific config: %w", err)
		}

		externalQueue, err = sqs.New(l, c)
		if err != nil {
			return nil, fmt.Errorf("error creating SQS: %w", err)
		}
	default:
		return nil, fmt.Errorf("invalid external queue type %s", conf.Type)
	}

	return NewExternalQueueWithMetrics(externalQueue, metricRegistry), nil
}
