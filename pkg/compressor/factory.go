package compressor

import (
	"fmt"
	"io"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/zip"
)

const (
	MinLevel = flate.BestSpeed
	MaxLevel = flate.BestCompression
)

type CompressorReader interface {
	io.ReadCloser
}

type CompressorWriter interface {
	io.WriteCloser
}

func NewWriter(level int, writer io.Writer) (CompressorWriter, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("invalid deflate level %d, should be in [%d,%d]", level, MinLevel, MaxLevel)
	}

	compressor, err := flate.NewWriter(writer, level)
	if err != nil {
		return nil, fmt.Errorf("error creating deflate writer: %w", err)
	}
	return compressor, nil
}

func NewReader(reader io.Reader) CompressorReader {
	return flate.NewReader(reader)
}

// ZipCompressor plugs a fixed level deflate writer into zip.Writer.RegisterCompressor.
func ZipCompressor(level int) (zip.Compressor, error) {
	if level < MinLevel || level > MaxLevel {
		return nil, fmt.Errorf("invalid deflate level %d, should be in [%d,%d]", level, MinLevel, MaxLevel)
	}

	return func(w io.Writer) (io.WriteCloser, error) {
		return NewWriter(level, w)
	}, nil
}

// ZipDecompressor plugs the deflate reader into zip.Reader.RegisterDecompressor.
func ZipDecompressor(r io.Reader) io.ReadCloser {
	return NewReader(r)
}
