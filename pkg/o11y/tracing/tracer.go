package tracing

import (
	"context"

	"github.com/jademcosta/sucuri/pkg/config"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

const instrumentationName = "github.com/jademcosta/sucuri"

func NewNoopTracer() trace.Tracer {
	return noop.NewTracerProvider().Tracer(instrumentationName)
}

func NewTracer(conf config.TracingConfig) (trace.Tracer, func(context.Context) error) {
	if !conf.Enabled {
		return NewNoopTracer(), func(_ context.Context) error {
			return nil
		}
	}

	bsp := sdktrace.NewBatchSpanProcessor(newExporter())
	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(newSampler(conf)),
		sdktrace.WithResource(buildResource(conf)),
		sdktrace.WithSpanProcessor(bsp),
	)

	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))
	tracer := tracerProvider.Tracer(instrumentationName)

	return tracer, tracerProvider.Shutdown
}

// Requests arriving with a sampled parent keep the caller's decision, the ratio only applies to new
// traces.
func newSampler(conf config.TracingConfig) sdktrace.Sampler {
	return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(conf.SampleRatio))
}

// The exporter endpoint and headers come from the standard OTEL_EXPORTER_OTLP_* variables.
func newExporter() sdktrace.SpanExporter {
	exporter, err := otlptracehttp.New(context.Background())
	if err != nil {
		panic(err)
	}

	return exporter
}

func buildResource(conf config.TracingConfig) *resource.Resource {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(conf.ServiceName),
		),
	)

	if err != nil {
		panic(err)
	}

	return res
}
