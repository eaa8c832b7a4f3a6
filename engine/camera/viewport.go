package camera

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/framebox/common"
)

// ratioEpsilon is the relative tolerance used when comparing the screen ratio
// against the forced ratio. Ratios within this tolerance are treated as equal
// and no bars are produced.
const ratioEpsilon = 1e-5

var (
	// ErrInvalidScreenSize is returned when a screen dimension is zero or negative.
	ErrInvalidScreenSize = errors.New("screen dimensions must be positive")

	// ErrInvalidAspectRatio is returned when an aspect ratio component is zero or negative.
	ErrInvalidAspectRatio = errors.New("aspect ratio components must be positive")
)

// ComputeViewport computes the normalized viewport rectangle that frames the
// forced aspect ratio within a surface of the given pixel size.
//
// When the surface is wider than the forced ratio the result is pillarboxed
// (bars on the sides); when taller, letterboxed (bars on top and bottom).
// The blend factor interpolates per-component between the full-surface
// rectangle (blend 0) and the fully constrained rectangle (blend 1) and is
// silently clamped to [0, 1]. If the surface ratio already matches the forced
// ratio within a relative tolerance, the full-surface rectangle is returned
// regardless of blend.
//
// ComputeViewport is a pure function: identical inputs always yield identical
// output and no state is touched.
//
// Parameters:
//   - screenWidth: surface width in pixels (must be > 0)
//   - screenHeight: surface height in pixels (must be > 0)
//   - force: the forced aspect ratio (both components must be > 0)
//   - blend: interpolation factor between full-surface and constrained framing
//
// Returns:
//   - common.Viewport: the normalized viewport rectangle, every component in [0, 1]
//   - error: ErrInvalidScreenSize or ErrInvalidAspectRatio on non-positive input
func ComputeViewport(screenWidth, screenHeight int, force common.AspectRatio, blend float32) (common.Viewport, error) {
	if screenWidth <= 0 || screenHeight <= 0 {
		return common.Viewport{}, fmt.Errorf("%w: %dx%d", ErrInvalidScreenSize, screenWidth, screenHeight)
	}
	if force.Width <= 0 || force.Height <= 0 {
		return common.Viewport{}, fmt.Errorf("%w: %g:%g", ErrInvalidAspectRatio, force.Width, force.Height)
	}

	blend = common.Clamp01(blend)
	screenRatio := float32(screenWidth) / float32(screenHeight)
	forcedRatio := force.Ratio()

	if common.NearlyEqual(screenRatio, forcedRatio, ratioEpsilon) {
		return common.FullViewport(), nil
	}

	var target common.Viewport
	if screenRatio > forcedRatio {
		// Surface wider than the target: pillarbox, bars on the sides.
		w := common.Clamp01(forcedRatio / screenRatio)
		target = common.Viewport{X: (1 - w) / 2, Y: 0, W: w, H: 1}
	} else {
		// Surface taller than the target: letterbox, bars on top and bottom.
		h := common.Clamp01(screenRatio / forcedRatio)
		target = common.Viewport{X: 0, Y: (1 - h) / 2, W: 1, H: h}
	}

	full := common.FullViewport()
	return common.Viewport{
		X: common.Lerp(full.X, target.X, blend),
		Y: common.Lerp(full.Y, target.Y, blend),
		W: common.Lerp(full.W, target.W, blend),
		H: common.Lerp(full.H, target.H, blend),
	}, nil
}
