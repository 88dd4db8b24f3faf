package screen

import "image"

// PackNV21 resamples src (nearest neighbour) to w x h and writes the BT.601
// luma plane into dst. With chroma set it also writes the interleaved V/U
// plane, one pair per 2x2 block, sampled at the block's top-left pixel.
func PackNV21(dst []byte, src *image.RGBA, w, h int, chroma bool) {
	b := src.Bounds()
	sw, sh := b.Dx(), b.Dy()
	if sw == 0 || sh == 0 {
		return
	}
	at := func(x, y int) (r, g, bb int32) {
		sx := b.Min.X + x*sw/w
		sy := b.Min.Y + y*sh/h
		i := src.PixOffset(sx, sy)
		return int32(src.Pix[i]), int32(src.Pix[i+1]), int32(src.Pix[i+2])
	}
	for y := 0; y < h; y++ {
		row := dst[y*w : (y+1)*w]
		for x := range row {
			r, g, bb := at(x, y)
			row[x] = clamp8((66*r+129*g+25*bb+128)>>8 + 16)
		}
	}
	if !chroma {
		return
	}
	uv := dst[w*h:]
	cw := (w + 1) / 2
	for y := 0; y < h; y += 2 {
		for x := 0; x < w; x += 2 {
			r, g, bb := at(x, y)
			i := (y/2)*cw*2 + (x/2)*2
			if i+1 >= len(uv) {
				continue
			}
			uv[i] = clamp8((112*r-94*g-18*bb+128)>>8 + 128)  // V
			uv[i+1] = clamp8((-38*r-74*g+112*bb+128)>>8 + 128) // U
		}
	}
}

func clamp8(v int32) byte {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return byte(v)
}
