// Package images converts captured frames for display.
package images

import (
	"image"

	"github.com/soocke/barcode-tracker-go/domain/detect"
)

// FrameToRGBA converts a packed frame to RGBA, reusing dst when it has the
// right size. Gray8 frames, and NV21 frames whose chroma plane is short, are
// rendered as greyscale. With mirror set the image is flipped horizontally,
// matching how front-facing previews are shown.
func FrameToRGBA(dst *image.RGBA, data []byte, w, h int, format detect.PixelFormat, mirror bool) *image.RGBA {
	if w <= 0 || h <= 0 || len(data) < w*h {
		return dst
	}
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
	}
	uv := data[w*h:]
	color := format == detect.FormatNV21 && len(uv) >= ((h+1)/2)*((w+1)/2)*2
	cw := (w + 1) / 2
	for y := 0; y < h; y++ {
		row := dst.Pix[y*dst.Stride : y*dst.Stride+w*4]
		for x := 0; x < w; x++ {
			yy := int32(data[y*w+x])
			var r, g, b int32
			if color {
				i := (y/2)*cw*2 + (x/2)*2
				v, u := int32(uv[i])-128, int32(uv[i+1])-128
				c := (yy - 16) * 298
				r = (c + 409*v + 128) >> 8
				g = (c - 100*u - 208*v + 128) >> 8
				b = (c + 516*u + 128) >> 8
			} else {
				r, g, b = yy, yy, yy
			}
			ox := x
			if mirror {
				ox = w - 1 - x
			}
			p := row[ox*4 : ox*4+4]
			p[0], p[1], p[2], p[3] = clamp8(r), clamp8(g), clamp8(b), 255
		}
	}
	return dst
}

func clamp8(v int32) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v)
}
