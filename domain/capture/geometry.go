package capture

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// DefaultAspectTolerance is the maximum aspect ratio difference for a
// preview and picture size to be considered the same shape.
const DefaultAspectTolerance = 0.01

// sizePair is a preview size with the picture size sharing its aspect ratio.
// picture is nil when no picture size matched.
type sizePair struct {
	preview Size
	picture *Size
}

// validSizePairs pairs every preview size with the first picture size of the
// same aspect. When no preview size has a partner, every preview size is
// returned alone so the picture size setting can be skipped.
func validSizePairs(caps Capabilities, tolerance float64) []sizePair {
	var pairs []sizePair
	for _, p := range caps.PreviewSizes {
		for i := range caps.PictureSizes {
			pic := caps.PictureSizes[i]
			if math.Abs(p.Aspect()-pic.Aspect()) < tolerance {
				pairs = append(pairs, sizePair{preview: p, picture: &pic})
				break
			}
		}
	}
	if len(pairs) == 0 {
		for _, p := range caps.PreviewSizes {
			pairs = append(pairs, sizePair{preview: p})
		}
	}
	return pairs
}

// selectSizePair picks the pair whose preview is closest to the requested
// size. Pairs sharing the requested aspect are preferred; the remaining pairs
// are only considered when none does.
func selectSizePair(pairs []sizePair, want Size, tolerance float64) (sizePair, bool) {
	shaped := make([]sizePair, 0, len(pairs))
	for _, p := range pairs {
		if math.Abs(p.preview.Aspect()-want.Aspect()) < tolerance {
			shaped = append(shaped, p)
		}
	}
	if len(shaped) == 0 {
		shaped = pairs
	}
	var (
		best     sizePair
		found    bool
		bestDiff = math.MaxInt
	)
	for _, p := range shaped {
		diff := absInt(p.preview.W-want.W) + absInt(p.preview.H-want.H)
		if diff < bestDiff {
			best, bestDiff, found = p, diff, true
		}
	}
	return best, found
}

// selectFPSRange picks the supported range closest to fps, compared in the
// device's x1000 fixed-point scale.
func selectFPSRange(ranges []FPSRange, fps float64) (FPSRange, bool) {
	want := int(fps * 1000)
	var (
		best     FPSRange
		found    bool
		bestDiff = math.MaxInt
	)
	for _, r := range ranges {
		diff := absInt(want-r.Min) + absInt(want-r.Max)
		if diff < bestDiff {
			best, bestDiff, found = r, diff, true
		}
	}
	return best, found
}

// rotation computes the frame rotation (quarter turns) and the display
// compensation angle for a sensor mounted at orientation degrees, given the
// display rotation in quarter turns.
func rotation(facing Facing, orientation, displayQuarterTurns int) (quarterTurns, displayDegrees int, err error) {
	if displayQuarterTurns < 0 || displayQuarterTurns > 3 {
		return 0, 0, fmt.Errorf("bad display rotation %d", displayQuarterTurns)
	}
	degrees := displayQuarterTurns * 90
	var angle int
	if facing == FacingFront {
		angle = (orientation + degrees) % 360
		displayDegrees = (360 - angle) % 360
	} else {
		angle = (orientation - degrees + 360) % 360
		displayDegrees = angle
	}
	return angle / 90, displayDegrees, nil
}

// ResolveGeometry chooses preview/picture sizes, a frame-rate range and the
// rotation for a session.
func ResolveGeometry(cfg CaptureConfig, caps Capabilities, displayQuarterTurns int, tolerance float64) (ResolvedGeometry, error) {
	if tolerance <= 0 {
		tolerance = DefaultAspectTolerance
	}
	want := Size{W: cfg.Width, H: cfg.Height}
	pair, ok := selectSizePair(validSizePairs(caps, tolerance), want, tolerance)
	if !ok {
		return ResolvedGeometry{}, newError(ErrConfiguration, "resolve geometry", errors.New("no suitable preview size"))
	}
	fps, ok := selectFPSRange(caps.FPSRanges, cfg.FPS)
	if !ok {
		return ResolvedGeometry{}, newError(ErrConfiguration, "resolve geometry", errors.New("no suitable frame rate range"))
	}
	orientation := ((caps.SensorOrientation % 360) + 360) % 360
	quarter, display, err := rotation(caps.Facing, orientation, displayQuarterTurns)
	if err != nil {
		return ResolvedGeometry{}, newError(ErrDevice, "resolve geometry", err)
	}
	return ResolvedGeometry{
		Preview:        pair.preview,
		Picture:        pair.picture,
		FPS:            fps,
		Rotation:       quarter,
		DisplayDegrees: display,
	}, nil
}

// selectMode returns want when the device supports it, otherwise "".
func selectMode(want string, supported []string) string {
	if want == "" || !slices.Contains(supported, want) {
		return ""
	}
	return want
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
