package template

import (
	"image"
	"math"
)

// lumaPrecomp holds one frame's luma plane and its summed-area tables so the
// window sum and variance come out in O(1). Buffers are reused across frames
// of the same size.
type lumaPrecomp struct {
	luma       []float64
	integral   []float64
	integralSq []float64
	W, H       int
}

func (p *lumaPrecomp) build(plane []byte, w, h int) {
	n := w * h
	if cap(p.luma) < n {
		p.luma = make([]float64, n)
		p.integral = make([]float64, n)
		p.integralSq = make([]float64, n)
	}
	p.luma, p.integral, p.integralSq = p.luma[:n], p.integral[:n], p.integralSq[:n]
	p.W, p.H = w, h
	for y := 0; y < h; y++ {
		var rowSum, rowSum2 float64
		for x := 0; x < w; x++ {
			off := y*w + x
			v := float64(plane[off])
			p.luma[off] = v
			rowSum += v
			rowSum2 += v * v
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[off-w] + rowSum
				p.integralSq[off] = p.integralSq[off-w] + rowSum2
			}
		}
	}
}

// windowSum returns the inclusive sum over [x0..x1] x [y0..y1].
func windowSum(I []float64, W, x0, y0, x1, y1 int) float64 {
	at := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return at(x1, y1) - at(x0-1, y1) - at(x1, y0-1) + at(x0-1, y0-1)
}

// patch is a template's luma samples and statistics at one scale.
type patch struct {
	luma  []float32
	W, H  int
	meanT float64
	stdT  float64
}

func newPatch(luma []float32, w, h int) *patch {
	var sum, sum2 float64
	for _, v := range luma {
		f := float64(v)
		sum += f
		sum2 += f * f
	}
	n := float64(w * h)
	p := &patch{luma: luma, W: w, H: h, meanT: sum / n}
	if v := (sum2 - sum*sum/n) / n; v > 0 {
		p.stdT = math.Sqrt(v)
	}
	return p
}

// patchFromImage converts img to 8-bit luma (BT.601, as stored in NV21).
// Transparent pixels are zero.
func patchFromImage(img image.Image) *patch {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	luma := make([]float32, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bb, a := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			if a == 0 {
				continue
			}
			luma[y*w+x] = float32((0.299*float64(r) + 0.587*float64(g) + 0.114*float64(bb)) / 257)
		}
	}
	return newPatch(luma, w, h)
}

// scaled resamples the patch bilinearly by factor. It returns nil when the
// result would be smaller than 2x2.
func (p *patch) scaled(factor float64) *patch {
	if factor == 1 {
		return p
	}
	w, h := int(float64(p.W)*factor), int(float64(p.H)*factor)
	if factor <= 0 || w < 2 || h < 2 {
		return nil
	}
	out := make([]float32, w*h)
	fx, fy := float64(p.W)/float64(w), float64(p.H)/float64(h)
	for y := 0; y < h; y++ {
		ys := clampF((float64(y)+0.5)*fy-0.5, 0, float64(p.H-1))
		y0 := int(ys)
		y1 := min(y0+1, p.H-1)
		dy := ys - float64(y0)
		for x := 0; x < w; x++ {
			xs := clampF((float64(x)+0.5)*fx-0.5, 0, float64(p.W-1))
			x0 := int(xs)
			x1 := min(x0+1, p.W-1)
			dx := xs - float64(x0)
			top := float64(p.luma[y0*p.W+x0])*(1-dx) + float64(p.luma[y0*p.W+x1])*dx
			bottom := float64(p.luma[y1*p.W+x0])*(1-dx) + float64(p.luma[y1*p.W+x1])*dx
			out[y*w+x] = float32(top*(1-dy) + bottom*dy)
		}
	}
	return newPatch(out, w, h)
}

func clampF(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

// match is the best window found for one patch.
type match struct {
	X, Y  int
	Score float64
}

// score returns the normalized cross-correlation of the patch against the
// window at (x, y), or false for a flat window.
func (pt *patch) score(pre *lumaPrecomp, x, y int) (float64, bool) {
	w, h := pt.W, pt.H
	n := float64(w * h)
	sumF := windowSum(pre.integral, pre.W, x, y, x+w-1, y+h-1)
	sumF2 := windowSum(pre.integralSq, pre.W, x, y, x+w-1, y+h-1)
	meanF := sumF / n
	varF := (sumF2 - sumF*sumF/n) / n
	if varF <= 1e-9 {
		return 0, false
	}
	var sumFT float64
	for ty := 0; ty < h; ty++ {
		row := pre.luma[(y+ty)*pre.W+x:]
		trow := pt.luma[ty*w : (ty+1)*w]
		for tx, tv := range trow {
			sumFT += row[tx] * float64(tv)
		}
	}
	denom := n * math.Sqrt(varF) * pt.stdT
	if denom <= 0 {
		return 0, false
	}
	return (sumFT - n*meanF*pt.meanT) / denom, true
}

// best scans the frame at stride and, when refine is set, rescans the
// neighbourhood of the coarse winner at full resolution. Flat patches cannot
// be normalised and never match.
func (pt *patch) best(pre *lumaPrecomp, stride int, refine bool) match {
	res := match{Score: -1}
	if pt.stdT <= 1e-9 || pre.W < pt.W || pre.H < pt.H {
		return res
	}
	stride = max(stride, 1)
	scan := func(x0, y0, x1, y1, step int) {
		for y := y0; y <= y1; y += step {
			for x := x0; x <= x1; x += step {
				if s, ok := pt.score(pre, x, y); ok && s > res.Score {
					res = match{X: x, Y: y, Score: s}
				}
			}
		}
	}
	scan(0, 0, pre.W-pt.W, pre.H-pt.H, stride)
	if refine && stride > 1 && res.Score > -1 {
		scan(max(0, res.X-stride), max(0, res.Y-stride),
			min(pre.W-pt.W, res.X+stride), min(pre.H-pt.H, res.Y+stride), 1)
	}
	return res
}
