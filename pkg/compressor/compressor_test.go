package compressor_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/jademcosta/sucuri/pkg/compressor"
	"github.com/klauspost/compress/zip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecompressionAfterCompressionKeepsDataUnchanged(t *testing.T) {
	data := strings.Repeat("a", 20480) // 20KB
	dataSize := len(data)

	for level := compressor.MinLevel; level <= compressor.MaxLevel; level++ {
		buf := &bytes.Buffer{}

		compressorWriter, err := compressor.NewWriter(level, buf)
		require.NoError(t, err, "compression writer creation should return no error")

		_, err = compressorWriter.Write([]byte(data))
		assert.NoError(t, err, "compression writer Write call should return no error")
		err = compressorWriter.Close()
		assert.NoError(t, err, "compression writer Close call should return no error")

		assert.Less(t, buf.Len(), dataSize, "the compressed data should be smaller than the original")

		result, err := io.ReadAll(compressor.NewReader(buf))
		assert.NoError(t, err, "compression reader Read should return no error")
		assert.Equal(t, data, string(result), "the decompression result be the same as the original")
	}
}

func TestInvalidLevels(t *testing.T) {
	for _, level := range []int{-3, 0, 10} {
		_, err := compressor.NewWriter(level, &bytes.Buffer{})
		assert.Errorf(t, err, "level %d should be rejected", level)

		_, err = compressor.ZipCompressor(level)
		assert.Errorf(t, err, "level %d should be rejected for zip", level)
	}
}

func TestZipRoundTripWithRegisteredCodecs(t *testing.T) {
	buf := &bytes.Buffer{}
	zipWriter := zip.NewWriter(buf)
	comp, err := compressor.ZipCompressor(9)
	require.NoError(t, err, "zip compressor creation should return no error")
	zipWriter.RegisterCompressor(zip.Deflate, comp)

	entry, err := zipWriter.CreateHeader(&zip.FileHeader{Name: "a.txt", Method: zip.Deflate})
	require.NoError(t, err, "entry creation should return no error")
	_, err = entry.Write([]byte(strings.Repeat("b", 4096)))
	require.NoError(t, err, "entry write should return no error")
	require.NoError(t, zipWriter.Close(), "zip close should return no error")

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err, "zip should be readable")
	reader.RegisterDecompressor(zip.Deflate, compressor.ZipDecompressor)

	require.Len(t, reader.File, 1, "should have one entry")
	rc, err := reader.File[0].Open()
	require.NoError(t, err, "entry should open")
	defer rc.Close()
	content, err := io.ReadAll(rc)
	require.NoError(t, err, "entry should be readable")
	assert.Equal(t, strings.Repeat("b", 4096), string(content), "content should survive the round trip")
}
