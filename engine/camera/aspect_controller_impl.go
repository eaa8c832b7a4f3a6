package camera

import (
	"sync"

	"github.com/Carmen-Shannon/framebox/common"
)

// depthClearValue is the depth the bar clear resets to; matches the render
// pass depth clear so bar regions never occlude later content.
const depthClearValue = 1.0

// appliedState is the snapshot of all inputs the controller compares against
// each tick. The fields only change in discrete steps (setters and window
// resizes), so exact equality is the right comparison here; the continuous
// ratio tolerance lives inside ComputeViewport.
type appliedState struct {
	force        common.AspectRatio
	blend        float32
	barColor     common.Color
	screenWidth  int
	screenHeight int
}

// aspectControllerImpl is the single implementation of AspectController.
// All state, including the applied snapshot and the computed viewport, is
// guarded by one mutex so the pair can never be observed half-updated.
type aspectControllerImpl struct {
	mu *sync.Mutex

	force    common.AspectRatio
	blend    float32
	barColor common.Color

	cam  Camera
	host RenderHost
	sub  Subscription

	viewport common.Viewport
	applied  *appliedState

	pendingClear        bool
	missingCamReported  bool
	invalidSizeReported bool
}

var _ AspectController = &aspectControllerImpl{}

// NewAspectController creates a new AspectController with the default 21:9
// forced ratio, a blend of 1, and opaque black bars.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - AspectController: the newly created controller (not yet attached)
func NewAspectController(options ...AspectControllerOption) AspectController {
	ac := &aspectControllerImpl{
		mu:       &sync.Mutex{},
		force:    common.DefaultAspectRatio,
		blend:    1.0,
		barColor: common.Black,
		viewport: common.FullViewport(),
	}
	for _, option := range options {
		option(ac)
	}
	return ac
}

func (ac *aspectControllerImpl) ForceAspectRatio() common.AspectRatio {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.force
}

func (ac *aspectControllerImpl) Blend() float32 {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.blend
}

func (ac *aspectControllerImpl) BarColor() common.Color {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.barColor
}

func (ac *aspectControllerImpl) Viewport() common.Viewport {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	return ac.viewport
}

func (ac *aspectControllerImpl) SetForceAspectRatio(ratio common.AspectRatio) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.force = ratio
}

func (ac *aspectControllerImpl) SetBlend(blend float32) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.blend = common.Clamp01(blend)
}

func (ac *aspectControllerImpl) SetBarColor(color common.Color) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.barColor = color
}

func (ac *aspectControllerImpl) SetCamera(cam Camera) {
	ac.mu.Lock()
	defer ac.mu.Unlock()
	ac.cam = cam
	if cam != nil {
		ac.missingCamReported = false
		if ac.host != nil {
			if ac.sub == nil {
				ac.sub = ac.host.SubscribeFrameBegin(ac.onFrameBegin)
			}
			ac.refreshLocked()
		}
	}
}

func (ac *aspectControllerImpl) Attach(cam Camera, host RenderHost) error {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	// Re-attach replaces any live subscription so the hook never stacks.
	if ac.sub != nil {
		ac.sub.Cancel()
		ac.sub = nil
	}

	ac.host = host
	ac.cam = cam

	if cam == nil {
		ac.reportMissingCameraLocked()
		return ErrMissingCamera
	}

	ac.sub = host.SubscribeFrameBegin(ac.onFrameBegin)
	ac.refreshLocked()
	return nil
}

func (ac *aspectControllerImpl) Detach() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.sub != nil {
		ac.sub.Cancel()
		ac.sub = nil
	}
	ac.host = nil
	ac.applied = nil
	ac.pendingClear = false
}

func (ac *aspectControllerImpl) Tick() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.host == nil {
		return
	}
	if ac.cam == nil {
		ac.reportMissingCameraLocked()
		return
	}
	ac.refreshLocked()
}

// refreshLocked runs one change-detection pass against the applied snapshot.
// On any difference it recomputes the viewport, applies it to the camera,
// stores the new snapshot, and arms the next-frame clear. The snapshot and
// viewport are updated together under the mutex, never partially.
// Caller must hold the mutex.
func (ac *aspectControllerImpl) refreshLocked() {
	w, h := ac.host.ScreenSize()
	current := appliedState{
		force:        ac.force,
		blend:        ac.blend,
		barColor:     ac.barColor,
		screenWidth:  w,
		screenHeight: h,
	}
	if ac.applied != nil && current == *ac.applied {
		return
	}

	v, err := ComputeViewport(w, h, ac.force, ac.blend)
	if err != nil {
		// Hosts report zero sizes while minimized. Log once per episode,
		// not every tick.
		if !ac.invalidSizeReported {
			common.Logger().Warn("aspect controller: viewport computation failed", "error", err)
			ac.invalidSizeReported = true
		}
		return
	}
	ac.invalidSizeReported = false

	ac.viewport = v
	ac.cam.SetViewport(v)
	snapshot := current
	ac.applied = &snapshot
	ac.pendingClear = true
}

// reportMissingCameraLocked logs the missing-camera condition exactly once.
// Caller must hold the mutex.
func (ac *aspectControllerImpl) reportMissingCameraLocked() {
	if ac.missingCamReported {
		return
	}
	ac.missingCamReported = true
	common.Logger().Error("aspect controller: no camera attached, framing disabled", "error", ErrMissingCamera)
}

// onFrameBegin is the frame-begin hook registered with the host. It consumes
// a pending clear exactly once per armed transition, so repeated invocations
// within one logical frame (multiple passes or cameras) clear only once.
// While the host is not actively simulating it clears on every invocation to
// keep paused previews visually correct. If the controller was detached after
// the hook was captured by the host, the hook deregisters itself.
func (ac *aspectControllerImpl) onFrameBegin() {
	ac.mu.Lock()
	defer ac.mu.Unlock()

	if ac.host == nil {
		if ac.sub != nil {
			ac.sub.Cancel()
			ac.sub = nil
		}
		return
	}
	if ac.cam == nil {
		return
	}

	if ac.pendingClear || !ac.host.ActivelySimulating() {
		ac.host.ClearBuffer(ac.barColor, depthClearValue)
		ac.pendingClear = false
	}
}
