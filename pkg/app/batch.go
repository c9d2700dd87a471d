package app

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/pipeline"
	"github.com/jademcosta/sucuri/pkg/sources"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

var ErrNothingCompressed = errors.New("no image could be compressed")

// BatchJob describes a one-shot run. Exactly one of Files and Archive must be set. A zero TargetKB
// means the configured default.
type BatchJob struct {
	Files    []string
	Archive  string
	TargetKB int
	Output   string
	Deliver  bool
}

type BatchReport struct {
	Summary domain.Summary
	Output  string
	Receipt *domain.DeliveryReceipt
}

// RunBatch compresses the job input, writes the bundle to the output path and, if asked, hands it
// to the configured delivery. A delivery failure still returns the report, as the bundle is on disk.
func RunBatch(
	ctx context.Context, l *zap.SugaredLogger, conf *config.Config, metricRegistry *prometheus.Registry,
	job BatchJob,
) (*BatchReport, error) {

	targetKB, err := resolveTarget(conf.Compression, job)
	if err != nil {
		return nil, err
	}

	core, err := NewCore(l, conf, metricRegistry, job.Deliver)
	if err != nil {
		return nil, err
	}
	defer shutdownCore(l, core)

	if job.Deliver && core.Deliverer == nil {
		return nil, domain.ConfigError("deliver", errors.New("delivery.object_storage is not configured"))
	}

	outcome, err := runJob(ctx, core, l, job, targetKB)
	if err != nil {
		return nil, err
	}

	report := &BatchReport{Summary: domain.Summarize(outcome), Output: job.Output}
	if len(outcome.Results) == 0 {
		return report, ErrNothingCompressed
	}

	packed, err := core.Packager.Pack(outcome.Results)
	if err != nil {
		return report, fmt.Errorf("packing bundle: %w", err)
	}

	err = os.WriteFile(job.Output, packed, 0o644)
	if err != nil {
		return report, fmt.Errorf("writing bundle: %w", err)
	}

	if job.Deliver {
		report.Receipt, err = core.Deliverer.Deliver(ctx, packed)
		if err != nil {
			return report, err
		}
	}
	return report, nil
}

func resolveTarget(conf config.CompressionConfig, job BatchJob) (float64, error) {
	if len(job.Files) > 0 && job.Archive != "" {
		return 0, errors.New("files and archive cannot be used together")
	}

	if len(job.Files) == 0 && job.Archive == "" {
		return 0, errors.New("either files or an archive must be provided")
	}

	if job.Output == "" {
		return 0, errors.New("an output path must be provided")
	}

	if job.TargetKB == 0 {
		return float64(conf.DefaultTargetKB), nil
	}

	if !conf.TargetAllowed(job.TargetKB) {
		return 0, fmt.Errorf("target must be in the interval [%d,%d] KB, got %d",
			conf.MinTargetKB, conf.MaxTargetKB, job.TargetKB)
	}
	return float64(job.TargetKB), nil
}

func runJob(
	ctx context.Context, core *Core, l *zap.SugaredLogger, job BatchJob, targetKB float64,
) (domain.BatchOutcome, error) {

	progress := pipeline.NewLogProgress(l)

	if job.Archive != "" {
		archive, err := os.ReadFile(job.Archive)
		if err != nil {
			return domain.BatchOutcome{}, fmt.Errorf("reading archive: %w", err)
		}
		return core.Pipeline.RunArchive(ctx, archive, targetKB, progress)
	}

	items := make([]domain.ImageSource, 0, len(job.Files))
	for _, path := range job.Files {
		items = append(items, sources.NewLocalFile(path))
	}
	return core.Pipeline.Run(ctx, items, targetKB, progress), nil
}
