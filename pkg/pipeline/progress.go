package pipeline

import (
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"go.uber.org/zap"
)

// LogProgress reports batch progress through the logger, one line per event.
type LogProgress struct {
	l *zap.SugaredLogger
}

func NewLogProgress(l *zap.SugaredLogger) *LogProgress {
	return &LogProgress{l: l.With(logger.COMPONENT_KEY, "progress")}
}

func (lp *LogProgress) Processing(index int, total int, name string) {
	lp.l.Infow("processing image", "position", index+1, "total", total, logger.ITEM_NAME_KEY, name)
}

func (lp *LogProgress) Failed(index int, name string, err error) {
	lp.l.Warnw("image skipped", "position", index+1, logger.ITEM_NAME_KEY, name, "error", err)
}

func (lp *LogProgress) Done(outcome domain.BatchOutcome) {
	lp.l.Infow("batch done", "compressed", len(outcome.Results), "failed", outcome.Failed)
}
