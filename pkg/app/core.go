package app

import (
	"context"
	"time"

	"github.com/jademcosta/sucuri/pkg/bundle"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/delivery"
	"github.com/jademcosta/sucuri/pkg/encoder"
	"github.com/jademcosta/sucuri/pkg/extractor"
	"github.com/jademcosta/sucuri/pkg/o11y/tracing"
	"github.com/jademcosta/sucuri/pkg/pipeline"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Core holds the components shared by the server and the one-shot batch command.
type Core struct {
	Pipeline *pipeline.Pipeline
	Packager *bundle.Packager
	// Deliverer is nil unless it was asked for and delivery is configured.
	Deliverer *delivery.Deliverer
	Tracer    trace.Tracer

	shutdownTracer func(context.Context) error
}

const coreShutdownTimeout = 5 * time.Second

// NewCore builds the shared components. The deliverer, with its storage and queue clients, is only
// built when withDelivery is set.
func NewCore(
	l *zap.SugaredLogger, conf *config.Config, metricRegistry *prometheus.Registry, withDelivery bool,
) (*Core, error) {

	ext, err := extractor.New(l, conf.Extraction)
	if err != nil {
		return nil, err
	}

	packager, err := bundle.New(conf.Bundle.CompressionLevel)
	if err != nil {
		return nil, err
	}

	var deliverer *delivery.Deliverer
	if withDelivery && conf.Delivery.Enabled() {
		deliverer, err = delivery.NewFromConfig(l, metricRegistry, conf.Delivery)
		if err != nil {
			return nil, err
		}
	}

	tracer, shutdownTracer := tracing.NewTracer(conf.Tracing)
	enc := encoder.New(l, metricRegistry, encoder.NewWebPCodec())

	return &Core{
		Pipeline:       pipeline.New(l, metricRegistry, tracer, conf.Compression, enc, ext),
		Packager:       packager,
		Deliverer:      deliverer,
		Tracer:         tracer,
		shutdownTracer: shutdownTracer,
	}, nil
}

func (core *Core) Shutdown(ctx context.Context) error {
	return core.shutdownTracer(ctx)
}

func shutdownCore(l *zap.SugaredLogger, core *Core) {
	ctx, cancel := context.WithTimeout(context.Background(), coreShutdownTimeout)
	defer cancel()

	if err := core.Shutdown(ctx); err != nil {
		l.Warnw("tracer shutdown failed", "error", err)
	}
}
