package noopqueue

import (
	"context"

	"github.com/jademcosta/sucuri/pkg/domain"
	"go.uber.org/zap"
)

const TYPE = "noop"
const NAME = "noop"

type NoopExternalQueue struct {
	log *zap.SugaredLogger
}

func New(l *zap.SugaredLogger) *NoopExternalQueue {
	return &NoopExternalQueue{
		log: l,
	}
}

func (noop *NoopExternalQueue) Enqueue(_ context.Context, msg *domain.Message) error {
	noop.log.Debugw("enqueue called on No-op ext queue", "url", msg.Object.FullURL)
	return nil
}

func (noop *NoopExternalQueue) Type() string {
	return TYPE
}

func (noop *NoopExternalQueue) Name() string {
	return NAME
}
