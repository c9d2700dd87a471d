package bundle

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/jademcosta/sucuri/pkg/compressor"
	"github.com/jademcosta/sucuri/pkg/domain"
	"github.com/klauspost/compress/zip"
)

const (
	BundleFileName    = "compressed_images.zip"
	BundleContentType = "application/zip"
	ItemContentType   = "image/webp"

	itemPrefix    = "compressed_"
	itemExtension = ".webp"
)

type Packager struct {
	level int
}

func New(level int) (*Packager, error) {
	// Fail on construction instead of on the first Pack.
	_, err := compressor.ZipCompressor(level)
	if err != nil {
		return nil, err
	}
	return &Packager{level: level}, nil
}

// Pack writes one deflated entry per result, in order, into an in-memory zip. Results sharing a
// base name produce duplicate entries and the later one wins on extraction.
func (packager *Packager) Pack(results []domain.CompressionResult) ([]byte, error) {
	buf := &bytes.Buffer{}
	writer := zip.NewWriter(buf)

	comp, err := compressor.ZipCompressor(packager.level)
	if err != nil {
		return nil, err
	}
	writer.RegisterCompressor(zip.Deflate, comp)

	for _, res := range results {
		entry, err := writer.CreateHeader(&zip.FileHeader{
			Name:   ItemFileName(res.Name),
			Method: zip.Deflate,
		})
		if err != nil {
			return nil, fmt.Errorf("creating bundle entry for %s: %w", res.Name, err)
		}

		_, err = entry.Write(res.Data)
		if err != nil {
			return nil, fmt.Errorf("writing bundle entry for %s: %w", res.Name, err)
		}
	}

	err = writer.Close()
	if err != nil {
		return nil, fmt.Errorf("closing bundle: %w", err)
	}
	return buf.Bytes(), nil
}

// ItemFileName is the name an encoded item gets, both inside the bundle and when downloaded alone.
func ItemFileName(name string) string {
	return itemPrefix + BaseName(name) + itemExtension
}

// BaseName keeps everything up to the first dot, so "photo.v2.png" becomes "photo". Path separators
// are replaced by underscores.
func BaseName(name string) string {
	base, _, _ := strings.Cut(name, ".")
	return strings.NewReplacer("/", "_", "\\", "_").Replace(base)
}
