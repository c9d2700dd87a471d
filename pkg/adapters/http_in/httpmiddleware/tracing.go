package httpmiddleware

import (
	"net/http"
	"slices"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/semconv/v1.20.0/httpconv"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Operational routes are polled constantly and carry no batch work.
var SkippedRoutes = []string{"/metrics", "/healthy", "/ready"}

type tracingMiddleware struct {
	tracer     trace.Tracer
	next       http.Handler
	propagator propagation.TextMapPropagator
}

func NewTracingMiddleware(tracer trace.Tracer) func(next http.Handler) http.Handler {
	tMidd := &tracingMiddleware{
		tracer:     tracer,
		propagator: otel.GetTextMapPropagator(),
	}

	return func(next http.Handler) http.Handler {
		tMidd.next = next
		return tMidd
	}
}

func (tMidd *tracingMiddleware) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writerWrapper := &responseWriterWrapper{wrapped: w}

	route := chi.RouteContext(r.Context()).RoutePattern()
	if skipRoute(route, r) {
		tMidd.next.ServeHTTP(writerWrapper, r)
		return
	}

	ctx := tMidd.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))

	attribs := httpconv.ServerRequest("sucuri", r)
	if r.ContentLength > 0 {
		attribs = append(attribs, semconv.HTTPRequestBodySize(int(r.ContentLength)))
	}
	ctx, span := tMidd.tracer.Start(ctx, r.Method+" "+r.URL.Path, trace.WithAttributes(attribs...))
	defer span.End()

	r = r.WithContext(ctx)
	tMidd.next.ServeHTTP(writerWrapper, r)

	// The route pattern is only known once chi has routed the request.
	route = routePattern(r)
	span.SetName(r.Method + " " + route)
	span.SetAttributes(semconv.HTTPRoute(route))
	span.SetAttributes(semconv.HTTPResponseStatusCode(writerWrapper.status()))
	span.SetStatus(httpconv.ServerStatus(writerWrapper.status()))
}

func skipRoute(chiRoute string, r *http.Request) bool {
	if chiRoute != "" {
		return slices.Contains(SkippedRoutes, chiRoute)
	}

	return slices.Contains(SkippedRoutes, r.URL.Path)
}
