package encoder_test

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"testing"

	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/jademcosta/sucuri/pkg/encoder"
	"github.com/jademcosta/sucuri/pkg/logger"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xwebp "golang.org/x/image/webp"
)

// sizeByQualityCodec returns quality*bytesPerQuality bytes, so size decreases strictly with quality.
type sizeByQualityCodec struct {
	bytesPerQuality int
	failAt          int
	calls           []int
}

func (codec *sizeByQualityCodec) Encode(_ image.Image, quality int) ([]byte, error) {
	codec.calls = append(codec.calls, quality)
	if codec.failAt != 0 && quality == codec.failAt {
		return nil, errors.New("codec rejected buffer")
	}
	return bytes.Repeat([]byte{byte(quality)}, quality*codec.bytesPerQuality), nil
}

func (codec *sizeByQualityCodec) Name() string {
	return "fake"
}

func newEncoder(codec encoder.Codec) *encoder.SizeTargetingEncoder {
	return encoder.New(logger.NewDummy(), prometheus.NewRegistry(), codec)
}

func TestQualityScanStopsAtFirstFit(t *testing.T) {
	codec := &sizeByQualityCodec{bytesPerQuality: 100}
	sut := newEncoder(codec)

	result, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), 5)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, 50, result.Quality, "quality 50 is the first one producing at most 5KB")
	assert.True(t, result.TargetMet, "target should be met")
	assert.InDelta(t, 5000.0/1024.0, result.SizeKB, 0.000001, "size should be measured in binary KB")
	assert.Len(t, result.Data, 5000, "should return the bytes of the accepted attempt")
	assert.Equal(t, []int{90, 85, 80, 75, 70, 65, 60, 55, 50}, codec.calls,
		"should try qualities in decreasing steps of 5 starting at 90")
}

func TestSizeEqualToTargetIsAccepted(t *testing.T) {
	codec := &sizeByQualityCodec{bytesPerQuality: 1024}
	sut := newEncoder(codec)

	result, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), 20)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, 20, result.Quality, "an encoding exactly at the target should be accepted")
	assert.Equal(t, 20.0, result.SizeKB, "size should be exactly the target")
	assert.True(t, result.TargetMet, "target should be met")
}

func TestFirstAttemptFits(t *testing.T) {
	codec := &sizeByQualityCodec{bytesPerQuality: 1}
	sut := newEncoder(codec)

	result, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), 45)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, encoder.StartQuality, result.Quality, "should keep the highest quality when it already fits")
	assert.Equal(t, []int{90}, codec.calls, "should not try other qualities")
}

func TestUnreachableTargetReturnsLowestQuality(t *testing.T) {
	codec := &sizeByQualityCodec{bytesPerQuality: 1000}
	sut := newEncoder(codec)

	result, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), 1)
	require.NoError(t, err, "missing the target is not an error")

	assert.Equal(t, 15, result.Quality, "should return the encoding at quality 15")
	assert.False(t, result.TargetMet, "target should be flagged as not met")
	assert.Len(t, result.Data, 15000, "should return the bytes of the quality 15 attempt")
	assert.Len(t, codec.calls, 16, "should try 16 quality levels")
	assert.Equal(t, 15, codec.calls[len(codec.calls)-1], "last quality tried should be 15")
}

func TestInvalidTarget(t *testing.T) {
	sut := newEncoder(&sizeByQualityCodec{bytesPerQuality: 1})

	for _, target := range []float64{0, -1, -45.5} {
		_, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), target)
		assert.ErrorIsf(t, err, domain.ErrInvalidTarget, "target %v should be rejected", target)
	}
}

func TestCodecFailureAbortsScan(t *testing.T) {
	codec := &sizeByQualityCodec{bytesPerQuality: 1000, failAt: 80}
	sut := newEncoder(codec)

	_, err := sut.Compress(image.NewRGBA(image.Rect(0, 0, 1, 1)), 1)
	assert.Error(t, err, "codec failure should be returned")
	assert.Equal(t, []int{90, 85, 80}, codec.calls, "should stop trying after the codec fails")
}

func noise(size int, seed int64) *image.RGBA {
	rnd := rand.New(rand.NewSource(seed))
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rnd.Intn(256)),
				G: uint8(rnd.Intn(256)),
				B: uint8(rnd.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestWebPEncodingIsDeterministic(t *testing.T) {
	sut := newEncoder(encoder.NewWebPCodec())
	img := noise(64, 42)

	first, err := sut.Compress(img, 4)
	require.NoError(t, err, "compress should not fail")
	second, err := sut.Compress(img, 4)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, first.Quality, second.Quality, "same input should settle on the same quality")
	assert.Equal(t, first.Data, second.Data, "same input should produce the same bytes")
}

func TestWebPFloorOnNoise(t *testing.T) {
	sut := newEncoder(encoder.NewWebPCodec())

	result, err := sut.Compress(noise(256, 7), 1)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, 15, result.Quality, "noise cannot fit in 1KB, should fall back to quality 15")
	assert.False(t, result.TargetMet, "target should not be met")
	assert.Greater(t, result.SizeKB, 1.0, "result should be bigger than the target")

	decoded, err := xwebp.Decode(bytes.NewReader(result.Data))
	require.NoError(t, err, "result should be a valid WebP")
	assert.Equal(t, image.Rect(0, 0, 256, 256), decoded.Bounds(), "dimensions should be preserved")
}

func TestWebPGenerousTarget(t *testing.T) {
	sut := newEncoder(encoder.NewWebPCodec())
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for i := range img.Pix {
		img.Pix[i] = 200
	}

	result, err := sut.Compress(img, 500)
	require.NoError(t, err, "compress should not fail")

	assert.Equal(t, 90, result.Quality, "a flat image should fit at the first quality")
	assert.True(t, result.TargetMet, "target should be met")
	assert.Equal(t, "RIFF", string(result.Data[0:4]), "output should be a RIFF container")
	assert.Equal(t, "WEBP", string(result.Data[8:12]), "output should be WebP")
}
