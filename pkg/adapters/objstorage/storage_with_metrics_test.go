package objstorage

import (
	"context"
	"errors"
	"testing"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStorage struct {
	name   string
	result *domain.UploadResult
	err    error
}

func (f *fakeStorage) Upload(_ context.Context, _ *domain.WorkUnit) (*domain.UploadResult, error) {
	return f.result, f.err
}

func (f *fakeStorage) Type() string { return "fake" }
func (f *fakeStorage) Name() string { return f.name }

func TestUploadedBundleSizesAreRecorded(t *testing.T) {
	fake := &fakeStorage{name: "sizes", result: &domain.UploadResult{SizeInBytes: 2048}}
	sut := NewStorageWithMetrics(fake, prometheus.NewRegistry())

	for i := 0; i < 3; i++ {
		_, err := sut.Upload(t.Context(), &domain.WorkUnit{Filename: "bundle.zip", Data: make([]byte, 10)})
		require.NoError(t, err, "upload should succeed")
	}

	assert.InDelta(t, 3.0,
		testutil.ToFloat64(uploads.WithLabelValues("fake", "sizes", outcomeSuccess)), 0.001,
		"every successful upload should be counted")
	assert.InDelta(t, 3*2048.0, testutil.ToFloat64(uploadedBytes.WithLabelValues("fake", "sizes")), 0.001,
		"the stored size reported by the storage should be summed")
	assert.GreaterOrEqual(t, testutil.CollectAndCount(uploadedBundleSize), 1,
		"the bundle size histogram should have a series for the storage")
	assert.InDelta(t, 0.0,
		testutil.ToFloat64(uploads.WithLabelValues("fake", "sizes", outcomeError)), 0.001,
		"no failure should be counted")
}

func TestUploadSizeFallsBackToBundleLength(t *testing.T) {
	fake := &fakeStorage{name: "fallback", result: &domain.UploadResult{}}
	sut := NewStorageWithMetrics(fake, prometheus.NewRegistry())

	_, err := sut.Upload(t.Context(), &domain.WorkUnit{Filename: "bundle.zip", Data: make([]byte, 700)})
	require.NoError(t, err, "upload should succeed")

	assert.InDelta(t, 700.0, testutil.ToFloat64(uploadedBytes.WithLabelValues("fake", "fallback")), 0.001,
		"the bundle length should be used when the storage reports no size")
}

func TestFailedUploadsAreNotSized(t *testing.T) {
	uploadErr := errors.New("bucket unreachable")
	fake := &fakeStorage{name: "failing", err: uploadErr}
	sut := NewStorageWithMetrics(fake, prometheus.NewRegistry())

	_, err := sut.Upload(t.Context(), &domain.WorkUnit{Filename: "bundle.zip", Data: make([]byte, 10)})
	assert.ErrorIs(t, err, uploadErr, "the storage error should be returned untouched")

	assert.InDelta(t, 1.0,
		testutil.ToFloat64(uploads.WithLabelValues("fake", "failing", outcomeError)), 0.001,
		"the failure should be counted")
	assert.InDelta(t, 0.0, testutil.ToFloat64(uploadedBytes.WithLabelValues("fake", "failing")), 0.001,
		"failed uploads should not add to the stored bytes")
	assert.Equal(t, "failing", sut.Name(), "name should be forwarded from the wrapped storage")
}
