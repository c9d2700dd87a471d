package colormode

import (
	"image"
	"image/color"
)

// HasAlpha reports whether the image model carries an alpha channel. Paletted images only count
// when some palette entry is not fully opaque.
func HasAlpha(img image.Image) bool {
	switch typed := img.(type) {
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return false
	case *image.Paletted:
		for _, c := range typed.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return true
			}
		}
		return false
	default:
		return true
	}
}

// Flatten returns an opaque copy of img. Color channels are kept as straight (non-premultiplied)
// values and alpha is discarded, so fully transparent pixels end up black. Images without an alpha
// channel are returned as they are.
func Flatten(img image.Image) image.Image {
	if !HasAlpha(img) {
		return img
	}

	bounds := img.Bounds()
	dst := image.NewRGBA(bounds)

	if src, ok := img.(*image.NRGBA); ok {
		for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
			srcRow := src.Pix[src.PixOffset(bounds.Min.X, y):src.PixOffset(bounds.Max.X, y)]
			dstRow := dst.Pix[dst.PixOffset(bounds.Min.X, y):dst.PixOffset(bounds.Max.X, y)]
			copy(dstRow, srcRow)
			for i := 3; i < len(dstRow); i += 4 {
				dstRow[i] = 0xff
			}
		}
		return dst
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			straight := color.NRGBAModel.Convert(img.At(x, y)).(color.NRGBA)
			dst.SetRGBA(x, y, color.RGBA{R: straight.R, G: straight.G, B: straight.B, A: 0xff})
		}
	}
	return dst
}
