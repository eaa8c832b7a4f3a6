package renderer

import (
	"github.com/Carmen-Shannon/framebox/common"
	"github.com/Carmen-Shannon/framebox/engine/window"
)

// renderer is the implementation of the Renderer interface.
// All synchronization lives in the backend, which guards every operation
// with its own mutex; the facade itself holds no mutable frame state.
type renderer struct {
	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	pendingMSAA          *MSAASampleCount
}

// Renderer defines the interface for the rendering system.
//
// This renderer manages the surface lifecycle and the per-frame framing
// state for forced-aspect-ratio rendering: a normalized viewport rectangle
// restricting where content draws, and a stageable one-shot clear that paints
// the whole surface (the letterbox/pillarbox bars included) before the next
// frame's content. Content drawing itself happens between BeginFrame and
// EndFrame through the caller's own passes and is outside this package's
// scope.
type Renderer interface {
	// Resize configures the underlying backend to handle a new surface size.
	// This should be called when re-sizing the window or when the surface size should change.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode which controls how frames are delivered to the display.
	// A call to Resize is required after changing this for the new mode to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use (VSync or Uncapped)
	SetPresentMode(mode PresentMode)

	// SetViewport sets the normalized viewport rectangle content is restricted
	// to. Applied as both a GPU viewport and a scissor rect at the start of
	// each frame, so draws cannot bleed into the bar regions.
	//
	// Parameters:
	//   - v: the normalized viewport rectangle
	SetViewport(v common.Viewport)

	// Viewport returns the currently applied normalized viewport rectangle.
	//
	// Returns:
	//   - common.Viewport: the current viewport rectangle
	Viewport() common.Viewport

	// ClearBuffer stages a full-surface color and depth clear for the next
	// BeginFrame. The clear covers the entire render target including the bar
	// regions outside the viewport; without a staged clear the next frame
	// loads the previous surface contents, leaving the bars untouched.
	// Staging is idempotent within a frame: the last staged color wins and
	// the clear fires once.
	//
	// Parameters:
	//   - color: the color to clear to
	//   - depth: the depth value to clear to (typically 1.0)
	ClearBuffer(color common.Color, depth float32)

	// BeginFrame acquires the swapchain texture and begins the main render pass,
	// consuming any staged clear and applying the current viewport and scissor.
	// Must be paired with EndFrame within a single frame.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface; call Present() after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	// Must be called once per frame after EndFrame.
	Present()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer instance with the specified backend type,
// bound to the given window's surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window providing the platform surface descriptor and initial size
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		backendType: backendType,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	msaa := MSAA4x // default
	if r.pendingMSAA != nil {
		msaa = *r.pendingMSAA
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter, msaa)
	}

	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}

	r.backend.ConfigureSurface(window.Width(), window.Height())
	return r
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetViewport(v common.Viewport) {
	r.backend.SetViewport(v)
}

func (r *renderer) Viewport() common.Viewport {
	return r.backend.Viewport()
}

func (r *renderer) ClearBuffer(color common.Color, depth float32) {
	r.backend.StageClear(color, depth)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}
