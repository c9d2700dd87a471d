package encoder

import (
	"bytes"
	"image"

	"github.com/gen2brain/webp"
)

// Codec encodes a decoded image at a given lossy quality (0-100).
type Codec interface {
	Encode(img image.Image, quality int) ([]byte, error)
	Name() string
}

const defaultWebPMethod = 4

// WebPCodec produces lossy WebP through libwebp compiled to WASM, so it needs no cgo.
type WebPCodec struct {
	method int
}

func NewWebPCodec() *WebPCodec {
	return &WebPCodec{method: defaultWebPMethod}
}

func (codec *WebPCodec) Encode(img image.Image, quality int) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := webp.Encode(buf, img, webp.Options{
		Quality: quality,
		Method:  codec.method,
	})
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (codec *WebPCodec) Name() string {
	return "webp"
}
