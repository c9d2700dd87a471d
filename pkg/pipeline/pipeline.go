package pipeline

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"time"

	"github.com/jademcosta/sucuri/pkg/colormode"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/encoder"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"
)

type Compressor interface {
	Compress(img image.Image, targetKB float64) (encoder.Encoding, error)
}

type ArchiveExtractor interface {
	Extract(archive []byte, process func(members []domain.ImageSource) error) error
}

type Pipeline struct {
	l             *zap.SugaredLogger
	compressor    Compressor
	extractor     ArchiveExtractor
	tracer        trace.Tracer
	progressDelay time.Duration
}

func New(
	l *zap.SugaredLogger, metricRegistry *prometheus.Registry, tracer trace.Tracer,
	conf config.CompressionConfig, compressor Compressor, extractor ArchiveExtractor,
) *Pipeline {

	initializeMetrics(metricRegistry)

	return &Pipeline{
		l:             l.With(logger.COMPONENT_KEY, "pipeline"),
		compressor:    compressor,
		extractor:     extractor,
		tracer:        tracer,
		progressDelay: conf.ProgressDelayAsDuration(),
	}
}

// Run processes sources one at a time, in order. A failing item is reported and counted but never
// stops the batch. The context only carries tracing and is not checked for cancellation.
func (p *Pipeline) Run(
	ctx context.Context, sources []domain.ImageSource, targetKB float64, progress domain.ProgressReporter,
) domain.BatchOutcome {

	if progress == nil {
		progress = domain.NoopProgress{}
	}

	ctx, span := p.tracer.Start(ctx, "pipeline.batch", trace.WithAttributes(
		attribute.Int("items", len(sources)),
		attribute.Float64("target_kb", targetKB),
	))
	defer span.End()

	outcome := domain.BatchOutcome{Results: make([]domain.CompressionResult, 0, len(sources))}
	total := len(sources)

	for i, src := range sources {
		if i > 0 && p.progressDelay > 0 {
			time.Sleep(p.progressDelay)
		}

		name := src.Name()
		progress.Processing(i, total, name)

		result, err := p.processOne(ctx, src, targetKB)
		if err != nil {
			outcome.Failed++
			reportItem(outcomeFailed)
			p.l.Warnw("failed to compress image", logger.ITEM_NAME_KEY, name, "error", err)
			progress.Failed(i, name, err)
			continue
		}

		reportItem(outcomeSuccess)
		outcome.Results = append(outcome.Results, result)
	}

	span.SetAttributes(attribute.Int("failed", outcome.Failed))
	p.l.Infow("batch finished", "compressed", len(outcome.Results), "failed", outcome.Failed,
		"target_kb", targetKB)
	progress.Done(outcome)
	return outcome
}

// RunArchive extracts the archive and runs the batch over its images. Extraction errors are fatal
// and are returned without any partial outcome.
func (p *Pipeline) RunArchive(
	ctx context.Context, archive []byte, targetKB float64, progress domain.ProgressReporter,
) (domain.BatchOutcome, error) {

	var outcome domain.BatchOutcome
	err := p.extractor.Extract(archive, func(members []domain.ImageSource) error {
		outcome = p.Run(ctx, members, targetKB, progress)
		return nil
	})
	if err != nil {
		p.l.Warnw("failed to extract archive", "size_in_bytes", len(archive), "error", err)
		return domain.BatchOutcome{}, err
	}
	return outcome, nil
}

func (p *Pipeline) processOne(
	ctx context.Context, src domain.ImageSource, targetKB float64,
) (domain.CompressionResult, error) {

	name := src.Name()
	_, span := p.tracer.Start(ctx, "pipeline.item", trace.WithAttributes(attribute.String("name", name)))
	defer span.End()

	result, err := p.compress(src, targetKB)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "compression failed")
		return result, err
	}

	span.SetAttributes(
		attribute.Int("quality", result.Quality),
		attribute.Bool("target_met", result.TargetMet),
	)
	return result, nil
}

func (p *Pipeline) compress(src domain.ImageSource, targetKB float64) (domain.CompressionResult, error) {
	name := src.Name()

	originalSize, err := src.Size()
	if err != nil {
		return domain.CompressionResult{}, domain.DecodeError(name, err)
	}

	reader, err := src.Open()
	if err != nil {
		return domain.CompressionResult{}, domain.DecodeError(name, err)
	}
	defer reader.Close()

	img, _, err := image.Decode(reader)
	if err != nil {
		return domain.CompressionResult{}, domain.DecodeError(name, err)
	}

	encoding, err := p.compressor.Compress(colormode.Flatten(img), targetKB)
	if err != nil {
		return domain.CompressionResult{}, domain.EncodeError(name, err)
	}

	result := domain.CompressionResult{
		Name:           name,
		Data:           encoding.Data,
		OriginalSizeKB: encoder.SizeInKB(int(originalSize)),
		FinalSizeKB:    encoding.SizeKB,
		Quality:        encoding.Quality,
		TargetMet:      encoding.TargetMet,
	}

	if originalSize > 0 {
		reportCompressionRatio(result.TargetMet, float64(len(encoding.Data))/float64(originalSize))
	}
	return result, nil
}
