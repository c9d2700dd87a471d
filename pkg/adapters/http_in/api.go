package http_in

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jademcosta/sucuri/pkg/adapters/http_in/httpmiddleware"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const API_COMPONENT_TYPE = "api"

type BatchRunner interface {
	Run(ctx context.Context, sources []domain.ImageSource, targetKB float64,
		progress domain.ProgressReporter) domain.BatchOutcome
	RunArchive(ctx context.Context, archive []byte, targetKB float64,
		progress domain.ProgressReporter) (domain.BatchOutcome, error)
}

type BundlePacker interface {
	Pack(results []domain.CompressionResult) ([]byte, error)
}

type Api struct {
	mux  *chi.Mux
	log  *zap.SugaredLogger
	srv  *http.Server
	port int
}

func New(
	l *zap.SugaredLogger, conf *config.Config, metricRegistry *prometheus.Registry, tracer trace.Tracer,
	appVersion string, runner BatchRunner, packer BundlePacker,
) *Api {

	router := chi.NewRouter()
	logg := l.With(logger.COMPONENT_KEY, API_COMPONENT_TYPE)

	sizeLimit, err := conf.API.PayloadSizeLimitInBytes()
	if err != nil {
		panic("payload size limit could not be extracted")
	}

	api := &Api{
		mux:  router,
		log:  logg,
		srv:  &http.Server{Addr: fmt.Sprintf(":%d", conf.API.Port), Handler: router},
		port: conf.API.Port,
	}

	initializeMetrics(metricRegistry)
	registerDefaultMiddlewares(api, conf, sizeLimit, logg, metricRegistry, tracer)

	RegisterCompressRoutes(api, conf.Compression, runner, packer)
	RegisterOperatinalRoutes(api, appVersion, metricRegistry)
	api.mux.Mount("/debug", middleware.Profiler())

	return api
}

func (api *Api) ListenAndServe() error {
	api.log.Infow("starting HTTP server", "port", api.port)
	err := api.srv.ListenAndServe()
	if err != nil {
		return fmt.Errorf("when serving HTTP: %w", err)
	}

	return nil
}

func (api *Api) Shutdown() error {
	shutdownCtx, shutdownCtxRelease := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCtxRelease()

	return api.srv.Shutdown(shutdownCtx)
}

func (api *Api) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	api.mux.ServeHTTP(w, r)
}

func registerDefaultMiddlewares(
	api *Api,
	conf *config.Config,
	sizeLimit int64,
	l *zap.SugaredLogger,
	metricRegistry *prometheus.Registry,
	tracer trace.Tracer,
) {

	//Middlewares on the top wrap the ones in the bottom
	api.mux.Use(httpmiddleware.NewLoggingMiddleware(l))
	if conf.Tracing.Enabled {
		api.mux.Use(httpmiddleware.NewTracingMiddleware(tracer))
	}
	api.mux.Use(httpmiddleware.NewMetricsMiddleware(metricRegistry))
	api.mux.Use(httpmiddleware.NewRecoverer(l))

	if sizeLimit > 0 {
		api.mux.Use(middleware.RequestSize(sizeLimit))
	}
}
