package delivery

import (
	"context"
	"fmt"

	"github.com/jademcosta/sucuri/pkg/adapters/externalqueue"
	"github.com/jademcosta/sucuri/pkg/adapters/objstorage"
	"github.com/jademcosta/sucuri/pkg/bundle"
	"github.com/jademcosta/sucuri/pkg/circuitbreaker"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/datetimeprovider"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/filepather"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// Deliverer hands a finished bundle to an object storage and announces it on an external queue.
// It keeps nothing after Deliver returns.
type Deliverer struct {
	l       *zap.SugaredLogger
	storage objstorage.ObjStorage
	queue   externalqueue.ExternalQueue
	pather  domain.FilePathProvider
	cb      circuitbreaker.CircuitBreaker
}

func New(
	l *zap.SugaredLogger, storage objstorage.ObjStorage, queue externalqueue.ExternalQueue,
	pather domain.FilePathProvider, cb circuitbreaker.CircuitBreaker,
) *Deliverer {
	return &Deliverer{
		l:       l.With(logger.COMPONENT_KEY, "delivery"),
		storage: storage,
		queue:   queue,
		pather:  pather,
		cb:      cb,
	}
}

func NewFromConfig(
	l *zap.SugaredLogger, metricRegistry *prometheus.Registry, conf config.DeliveryConfig,
) (*Deliverer, error) {

	storage, err := objstorage.New(l, metricRegistry, conf.ObjectStorage)
	if err != nil {
		return nil, domain.ConfigError("delivery", err)
	}

	queue, err := externalqueue.New(l, metricRegistry, conf.ExternalQueue)
	if err != nil {
		return nil, domain.ConfigError("delivery", err)
	}

	cb := circuitbreaker.FromConfig(l, metricRegistry, conf.CircuitBreaker, "object_storage")
	pather := filepather.New(datetimeprovider.New(), bundle.BundleFileName)

	return New(l, storage, queue, pather, cb), nil
}

// Deliver uploads the bundle and publishes a notification about it. When the upload succeeds but
// the notification fails, the receipt is still returned along with the error.
func (d *Deliverer) Deliver(ctx context.Context, bundleData []byte) (*domain.DeliveryReceipt, error) {
	workU := &domain.WorkUnit{
		Filename: *d.pather.Filename(),
		Prefix:   *d.pather.Prefix(),
		Data:     bundleData,
	}

	result, err := d.cb.Execute(func() (interface{}, error) {
		return d.storage.Upload(ctx, workU)
	})
	if err != nil {
		d.l.Errorw("failed to upload bundle", "prefix", workU.Prefix, "filename", workU.Filename, "error", err)
		return nil, domain.DeliveryError("upload", err)
	}

	uploadResult, ok := result.(*domain.UploadResult)
	if !ok || uploadResult == nil {
		return nil, domain.DeliveryError("upload", fmt.Errorf("storage returned no upload result"))
	}
	d.l.Debugw("finished uploading bundle", "prefix", workU.Prefix, "filename", workU.Filename)

	receipt := &domain.DeliveryReceipt{Upload: *uploadResult}

	err = d.queue.Enqueue(ctx, newMessage(uploadResult))
	if err != nil {
		d.l.Errorw("failed to enqueue bundle notification", "object_path", uploadResult.Path, "error", err)
		return receipt, domain.DeliveryError("notify", err)
	}

	receipt.Notified = true
	d.l.Infow("bundle delivered", "object_path", uploadResult.Path, "size_in_bytes", uploadResult.SizeInBytes)
	return receipt, nil
}

func newMessage(uploadResult *domain.UploadResult) *domain.Message {
	return &domain.Message{
		SchemaVersion: domain.MESSAGE_SCHEMA_VERSION,
		Bucket: domain.Bucket{
			Name:   uploadResult.Bucket,
			Region: uploadResult.Region,
		},
		Object: domain.Object{
			Path:        uploadResult.Path,
			FullURL:     uploadResult.URL,
			SizeInBytes: uploadResult.SizeInBytes,
		},
	}
}
