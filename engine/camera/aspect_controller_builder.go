package camera

import (
	"github.com/Carmen-Shannon/framebox/common"
)

// AspectControllerOption is a functional option for configuring an AspectController.
type AspectControllerOption func(*aspectControllerImpl)

// WithForceAspectRatio sets the forced aspect ratio.
//
// Parameters:
//   - ratio: the aspect ratio to force (components must be positive)
//
// Returns:
//   - AspectControllerOption: functional option to set the forced ratio
func WithForceAspectRatio(ratio common.AspectRatio) AspectControllerOption {
	return func(ac *aspectControllerImpl) {
		ac.force = ratio
	}
}

// WithBlend sets the interpolation factor between full-surface framing (0)
// and fully constrained framing (1). Values outside [0, 1] are clamped.
//
// Parameters:
//   - blend: the blend factor
//
// Returns:
//   - AspectControllerOption: functional option to set the blend factor
func WithBlend(blend float32) AspectControllerOption {
	return func(ac *aspectControllerImpl) {
		ac.blend = common.Clamp01(blend)
	}
}

// WithBarColor sets the color the letterbox/pillarbox bars are cleared to.
//
// Parameters:
//   - color: the bar color
//
// Returns:
//   - AspectControllerOption: functional option to set the bar color
func WithBarColor(color common.Color) AspectControllerOption {
	return func(ac *aspectControllerImpl) {
		ac.barColor = color
	}
}
