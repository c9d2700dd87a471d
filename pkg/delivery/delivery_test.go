package delivery_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jademcosta/sucuri/pkg/circuitbreaker"
	"github.com/jademcosta/sucuri/pkg/config"
	"github.com/jademcosta/sucuri/pkg/delivery"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	uploads []*domain.WorkUnit
	err     error
}

func (storage *fakeStorage) Upload(_ context.Context, workU *domain.WorkUnit) (*domain.UploadResult, error) {
	storage.uploads = append(storage.uploads, workU)
	if storage.err != nil {
		return nil, storage.err
	}
	return &domain.UploadResult{
		Bucket:      "some-bucket",
		Region:      "some-region",
		Path:        workU.Prefix + workU.Filename,
		URL:         "https://example.com/" + workU.Prefix + workU.Filename,
		SizeInBytes: len(workU.Data),
	}, nil
}

type fakeQueue struct {
	msgs []*domain.Message
	err  error
}

func (queue *fakeQueue) Enqueue(_ context.Context, msg *domain.Message) error {
	queue.msgs = append(queue.msgs, msg)
	return queue.err
}

type fixedPather struct{}

func (fixedPather) Filename() *string {
	name := "compressed_images.zip"
	return &name
}

func (fixedPather) Prefix() *string {
	prefix := "2024-05-06/7/fixed-uuid/"
	return &prefix
}

func TestDeliverUploadsAndNotifies(t *testing.T) {
	storage := &fakeStorage{}
	queue := &fakeQueue{}
	sut := delivery.New(logger.NewDummy(), storage, queue, fixedPather{}, circuitbreaker.NewPassThrough())

	receipt, err := sut.Deliver(t.Context(), []byte("bundle bytes"))
	require.NoError(t, err, "delivery should succeed")

	require.Len(t, storage.uploads, 1, "bundle should be uploaded once")
	assert.Equal(t, "2024-05-06/7/fixed-uuid/", storage.uploads[0].Prefix, "prefix should come from the pather")
	assert.Equal(t, "compressed_images.zip", storage.uploads[0].Filename, "filename should come from the pather")
	assert.Equal(t, []byte("bundle bytes"), storage.uploads[0].Data, "data should be the bundle")

	require.Len(t, queue.msgs, 1, "one notification should be sent")
	assert.Equal(t, &domain.Message{
		SchemaVersion: "0.0.1",
		Bucket:        domain.Bucket{Name: "some-bucket", Region: "some-region"},
		Object: domain.Object{
			Path:        "2024-05-06/7/fixed-uuid/compressed_images.zip",
			FullURL:     "https://example.com/2024-05-06/7/fixed-uuid/compressed_images.zip",
			SizeInBytes: 12,
		},
	}, queue.msgs[0], "notification should describe the uploaded object")

	assert.True(t, receipt.Notified, "receipt should flag the notification")
	assert.Equal(t, 12, receipt.Upload.SizeInBytes, "receipt should carry the upload result")
}

func TestUploadFailureSkipsNotification(t *testing.T) {
	storage := &fakeStorage{err: errors.New("bucket is gone")}
	queue := &fakeQueue{}
	sut := delivery.New(logger.NewDummy(), storage, queue, fixedPather{}, circuitbreaker.NewPassThrough())

	receipt, err := sut.Deliver(t.Context(), []byte("bundle"))

	assert.Nil(t, receipt, "no receipt without an upload")
	assert.True(t, domain.IsKind(err, domain.KindDelivery), "should be a delivery error")
	assert.Empty(t, queue.msgs, "nothing should be announced")
}

func TestNotificationFailureKeepsReceipt(t *testing.T) {
	storage := &fakeStorage{}
	queue := &fakeQueue{err: errors.New("queue is gone")}
	sut := delivery.New(logger.NewDummy(), storage, queue, fixedPather{}, circuitbreaker.NewPassThrough())

	receipt, err := sut.Deliver(t.Context(), []byte("bundle"))

	assert.True(t, domain.IsKind(err, domain.KindDelivery), "should be a delivery error")
	require.NotNil(t, receipt, "the upload happened, so a receipt should be returned")
	assert.False(t, receipt.Notified, "receipt should flag the missing notification")
}

func TestOpenCircuitSkipsStorage(t *testing.T) {
	storage := &fakeStorage{err: errors.New("bucket is gone")}
	cb := circuitbreaker.FromConfig(logger.NewDummy(), prometheus.NewRegistry(),
		config.CircuitBreakerConfig{TurnOn: true, OpenInterval: time.Hour.Milliseconds()}, "delivery-test")
	sut := delivery.New(logger.NewDummy(), storage, &fakeQueue{}, fixedPather{}, cb)

	_, err := sut.Deliver(t.Context(), []byte("bundle"))
	assert.Error(t, err, "first delivery should fail on the storage")
	_, err = sut.Deliver(t.Context(), []byte("bundle"))
	assert.Error(t, err, "second delivery should fail on the open circuit")

	assert.Len(t, storage.uploads, 1, "the storage should not be called while the circuit is open")
}

func TestNewFromConfigWithLocalStorage(t *testing.T) {
	dir := t.TempDir()
	conf, err := config.New([]byte("delivery:\n  object_storage:\n    type: localstorage\n    config:\n      path: " + dir + "\n"))
	require.NoError(t, err, "config should be valid")

	sut, err := delivery.NewFromConfig(logger.NewDummy(), prometheus.NewRegistry(), conf.Delivery)
	require.NoError(t, err, "deliverer should be created")

	receipt, err := sut.Deliver(t.Context(), []byte("zip content"))
	require.NoError(t, err, "delivery should succeed")
	assert.True(t, receipt.Notified, "noop queue should accept the notification")

	assert.Equal(t, "compressed_images.zip", filepath.Base(receipt.Upload.Path), "bundle should keep its file name")
	rel, err := filepath.Rel(dir, receipt.Upload.Path)
	require.NoError(t, err, "bundle should be written under the storage path")
	assert.Regexp(t, `^[0-9]{4}-[0-9]{2}-[0-9]{2}/[0-9]{1,2}/[a-f0-9-]{36}/compressed_images\.zip$`, rel,
		"object key should be date, hour and uuid")

	content, err := os.ReadFile(receipt.Upload.Path)
	require.NoError(t, err, "bundle file should exist")
	assert.Equal(t, "zip content", string(content), "bundle content should be written")
}

func TestNewFromConfigWithInvalidStorage(t *testing.T) {
	conf := config.DeliveryConfig{
		ObjectStorage: config.ObjectStorageConfig{
			Type:   "localstorage",
			Config: map[interface{}]interface{}{"path": filepath.Join(t.TempDir(), "missing")},
		},
		ExternalQueue: config.ExternalQueueConfig{Type: "noop"},
	}

	_, err := delivery.NewFromConfig(logger.NewDummy(), prometheus.NewRegistry(), conf)
	assert.True(t, domain.IsKind(err, domain.KindConfig), "should be a config error")
}
