// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

// AspectRatio expresses a target display proportion as a width/height pair.
// Both components must be positive; a zero or negative component makes the
// ratio invalid for viewport computation.
type AspectRatio struct {
	// Width is the horizontal component of the ratio (e.g. 21 in 21:9).
	Width float32
	// Height is the vertical component of the ratio (e.g. 9 in 21:9).
	Height float32
}

// Ratio returns the scalar width/height ratio.
// Returns 0 if the height component is 0 to avoid a division panic; callers
// validating inputs should reject non-positive components before use.
//
// Returns:
//   - float32: the scalar aspect ratio, or 0 if Height is 0
func (a AspectRatio) Ratio() float32 {
	if a.Height == 0 {
		return 0
	}
	return a.Width / a.Height
}

// Viewport is a normalized sub-rectangle of a render target. Each component
// lies in [0, 1]: X/Y are the offset of the drawable region and W/H its
// extent, all expressed as fractions of the full surface size.
// The complement of the viewport is the letterbox/pillarbox bar area.
type Viewport struct {
	// X is the normalized left offset of the drawable region.
	X float32
	// Y is the normalized top offset of the drawable region.
	Y float32
	// W is the normalized width of the drawable region.
	W float32
	// H is the normalized height of the drawable region.
	H float32
}

// FullViewport returns the viewport covering the entire render target.
//
// Returns:
//   - Viewport: the full-surface rectangle (0, 0, 1, 1)
func FullViewport() Viewport {
	return Viewport{X: 0, Y: 0, W: 1, H: 1}
}

// Color is an RGBA color with components in [0, 1], used for buffer clears.
type Color struct {
	R float32
	G float32
	B float32
	A float32
}

// Black is opaque black, the default letterbox/pillarbox bar color.
var Black = Color{R: 0, G: 0, B: 0, A: 1}

// DefaultAspectRatio is the default forced aspect ratio (21:9 ultrawide).
var DefaultAspectRatio = AspectRatio{Width: 21, Height: 9}
