package encoder

import (
	"fmt"
	"image"
	"time"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

const (
	StartQuality = 90
	QualityStep  = 5
	// The scan stops once quality reaches this value, so the lowest quality tried is 15.
	QualityFloor = 10
)

type Encoding struct {
	Data      []byte
	SizeKB    float64
	Quality   int
	TargetMet bool
}

type SizeTargetingEncoder struct {
	l     *zap.SugaredLogger
	codec Codec
}

func New(l *zap.SugaredLogger, metricRegistry *prometheus.Registry, codec Codec) *SizeTargetingEncoder {
	initializeMetrics(metricRegistry)

	return &SizeTargetingEncoder{
		l:     l.With(logger.COMPONENT_KEY, "encoder"),
		codec: codec,
	}
}

// Compress walks quality down from StartQuality and returns the first encoding whose size is at or
// under targetKB. When none fits, the encoding at the lowest quality tried is returned with
// TargetMet set to false.
func (enc *SizeTargetingEncoder) Compress(img image.Image, targetKB float64) (Encoding, error) {
	if targetKB <= 0 {
		return Encoding{}, domain.ErrInvalidTarget
	}

	startTime := time.Now()
	defer func() { reportDuration(enc.codec.Name(), time.Since(startTime)) }()

	var last Encoding
	attempts := 0
	for quality := StartQuality; quality > QualityFloor; quality -= QualityStep {
		attempts++
		data, err := enc.codec.Encode(img, quality)
		if err != nil {
			return Encoding{}, fmt.Errorf("encoding at quality %d: %w", quality, err)
		}

		last = Encoding{
			Data:    data,
			SizeKB:  SizeInKB(len(data)),
			Quality: quality,
		}

		if last.SizeKB <= targetKB {
			last.TargetMet = true
			reportAttempts(enc.codec.Name(), attempts)
			return last, nil
		}
	}

	reportAttempts(enc.codec.Name(), attempts)
	reportTargetMissed(enc.codec.Name())
	enc.l.Debugw("target size not reachable, keeping lowest quality", "target_kb", targetKB,
		"size_kb", last.SizeKB, "quality", last.Quality)
	return last, nil
}

// SizeInKB uses binary kilobytes.
func SizeInKB(sizeInBytes int) float64 {
	return float64(sizeInBytes) / 1024
}
