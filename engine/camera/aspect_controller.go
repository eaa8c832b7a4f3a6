package camera

import (
	"errors"

	"github.com/Carmen-Shannon/framebox/common"
)

// ErrMissingCamera is returned when an AspectController is attached without a
// camera. The condition is non-fatal: the controller stays inert and reports
// the problem once, and becomes operational as soon as SetCamera supplies one.
var ErrMissingCamera = errors.New("aspect controller has no camera attached")

// Subscription is a handle to a registered frame-begin callback.
// Cancel deregisters the callback; it is safe to call more than once.
type Subscription interface {
	// Cancel removes the callback from the host's frame-begin list.
	// Subsequent calls are no-ops.
	Cancel()
}

// RenderHost provides the services an AspectController needs from its hosting
// render loop. The engine implements this interface; tests supply fakes.
type RenderHost interface {
	// ScreenSize returns the current render surface size in pixels.
	//
	// Returns:
	//   - width, height: surface dimensions in pixels
	ScreenSize() (width, height int)

	// ActivelySimulating reports whether the host is advancing simulation
	// time. When false (paused/preview), controllers re-clear their bars on
	// every frame so the presented image stays correct without ticks.
	//
	// Returns:
	//   - bool: true while the tick loop is running
	ActivelySimulating() bool

	// ClearBuffer stages a clear of the current render target's color and
	// depth buffers, performed before the next frame's content is drawn.
	//
	// Parameters:
	//   - color: the color to clear to
	//   - depth: the depth value to clear to (typically 1.0)
	ClearBuffer(color common.Color, depth float32)

	// SubscribeFrameBegin registers a callback invoked once per rendered
	// frame, before the frame's content passes begin.
	//
	// Parameters:
	//   - fn: the callback to invoke at frame begin
	//
	// Returns:
	//   - Subscription: a cancelable handle for deregistration
	SubscribeFrameBegin(fn func()) Subscription
}

// AspectController forces a camera's framing to a fixed aspect ratio.
//
// Each tick it polls the host's surface size, compares the full input set
// (forced ratio, blend, bar color, surface size) against the last applied
// snapshot, and on any difference recomputes the viewport rectangle, applies
// it to the camera, and arms a one-shot clear. The clear fires on the next
// frame-begin event, painting the exposed bar regions with the configured
// color before content renders. While the host is not actively simulating the
// controller clears on every frame instead, keeping paused previews correct.
type AspectController interface {
	// ForceAspectRatio returns the forced aspect ratio.
	//
	// Returns:
	//   - common.AspectRatio: the forced ratio
	ForceAspectRatio() common.AspectRatio

	// Blend returns the interpolation factor between full-surface framing (0)
	// and fully constrained framing (1).
	//
	// Returns:
	//   - float32: the blend factor in [0, 1]
	Blend() float32

	// BarColor returns the color the letterbox/pillarbox bars are cleared to.
	//
	// Returns:
	//   - common.Color: the bar color
	BarColor() common.Color

	// Viewport returns the most recently computed viewport rectangle.
	//
	// Returns:
	//   - common.Viewport: the last applied rectangle
	Viewport() common.Viewport

	// SetForceAspectRatio sets the forced aspect ratio. The change is picked
	// up by the next Tick.
	//
	// Parameters:
	//   - ratio: the new forced ratio
	SetForceAspectRatio(ratio common.AspectRatio)

	// SetBlend sets the interpolation factor, clamped to [0, 1].
	//
	// Parameters:
	//   - blend: the new blend factor
	SetBlend(blend float32)

	// SetBarColor sets the bar clear color.
	//
	// Parameters:
	//   - color: the new bar color
	SetBarColor(color common.Color)

	// SetCamera attaches or replaces the controller's camera. Supplying a
	// camera after an Attach that reported ErrMissingCamera enables the
	// controller.
	//
	// Parameters:
	//   - cam: the camera to control (may be nil to disable)
	SetCamera(cam Camera)

	// Attach binds the controller to a host render loop: subscribes the
	// frame-begin hook and performs the initial viewport computation.
	// If cam is nil the controller stays inert, the condition is logged once,
	// and ErrMissingCamera is returned; Attach is otherwise non-failing.
	//
	// Parameters:
	//   - cam: the camera to control (may be nil)
	//   - host: the hosting render loop
	//
	// Returns:
	//   - error: ErrMissingCamera if no camera was supplied
	Attach(cam Camera, host RenderHost) error

	// Detach unbinds the controller from its host, canceling the frame-begin
	// subscription. Safe to call when not attached.
	Detach()

	// Tick runs one change-detection pass: polls the surface size, compares
	// all tracked inputs against the last applied snapshot, and on any change
	// recomputes and applies the viewport and arms the next-frame clear.
	// No-op while detached or camera-less.
	Tick()
}
