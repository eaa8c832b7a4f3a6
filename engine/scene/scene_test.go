package scene

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/framebox/common"
	"github.com/Carmen-Shannon/framebox/engine/camera"
	"github.com/Carmen-Shannon/framebox/engine/renderer"
)

type nopRenderer struct{}

var _ renderer.Renderer = nopRenderer{}

func (nopRenderer) Resize(width, height int)                       {}
func (nopRenderer) SetPresentMode(mode renderer.PresentMode)       {}
func (nopRenderer) SetViewport(v common.Viewport)                  {}
func (nopRenderer) Viewport() common.Viewport                      { return common.FullViewport() }
func (nopRenderer) ClearBuffer(color common.Color, depth float32)  {}
func (nopRenderer) BeginFrame() error                              { return nil }
func (nopRenderer) EndFrame()                                      {}
func (nopRenderer) Present()                                       {}

// spyController counts lifecycle calls so tests can assert the scene's
// update phase drives the framing pass.
type spyController struct {
	mu      sync.Mutex
	ticks   int
	cameras []camera.Camera
}

var _ camera.AspectController = &spyController{}

func (c *spyController) ForceAspectRatio() common.AspectRatio      { return common.DefaultAspectRatio }
func (c *spyController) Blend() float32                            { return 1 }
func (c *spyController) BarColor() common.Color                    { return common.Black }
func (c *spyController) Viewport() common.Viewport                 { return common.FullViewport() }
func (c *spyController) SetForceAspectRatio(r common.AspectRatio)  {}
func (c *spyController) SetBlend(blend float32)                    {}
func (c *spyController) SetBarColor(color common.Color)            {}

func (c *spyController) SetCamera(cam camera.Camera) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cameras = append(c.cameras, cam)
}

func (c *spyController) Attach(cam camera.Camera, host camera.RenderHost) error { return nil }
func (c *spyController) Detach()                                                {}

func (c *spyController) Tick() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ticks++
}

func (c *spyController) tickCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ticks
}

func TestNewSceneRequiresCameraAndRenderer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Errorf("NewScene with nil camera must panic")
		}
	}()
	NewScene("broken", nil, nopRenderer{})
}

func TestSceneDefaults(t *testing.T) {
	s := NewScene("main", camera.NewCamera(), nopRenderer{})

	if s.Name() != "main" {
		t.Errorf("name = %q, want %q", s.Name(), "main")
	}
	if s.Active() {
		t.Errorf("scenes must start inactive")
	}
	if s.AspectController() != nil {
		t.Errorf("scenes must start without an aspect controller")
	}
}

func TestSceneUpdateRunsAllHooks(t *testing.T) {
	s := NewScene("main", camera.NewCamera(), nopRenderer{}, WithActive(true))

	var ran atomic.Int32
	for i := 0; i < 8; i++ {
		s.AddUpdateHook(func(deltaTime float32) { ran.Add(1) })
	}

	s.Update(1.0 / 60.0)
	if got := ran.Load(); got != 8 {
		t.Errorf("expected all 8 hooks to run, got %d", got)
	}

	s.Update(1.0 / 60.0)
	if got := ran.Load(); got != 16 {
		t.Errorf("expected hooks to run every update, got %d", got)
	}
}

func TestSceneRemoveUpdateHook(t *testing.T) {
	s := NewScene("main", camera.NewCamera(), nopRenderer{})

	var kept, removed atomic.Int32
	s.AddUpdateHook(func(deltaTime float32) { kept.Add(1) })
	id := s.AddUpdateHook(func(deltaTime float32) { removed.Add(1) })

	s.RemoveUpdateHook(id)
	s.Update(1.0 / 60.0)

	if kept.Load() != 1 {
		t.Errorf("remaining hook ran %d times, want 1", kept.Load())
	}
	if removed.Load() != 0 {
		t.Errorf("removed hook still ran %d times", removed.Load())
	}
}

func TestSceneUpdateReceivesDeltaTime(t *testing.T) {
	s := NewScene("main", camera.NewCamera(), nopRenderer{})

	var got atomic.Value
	s.AddUpdateHook(func(deltaTime float32) { got.Store(deltaTime) })

	s.Update(0.25)
	if dt, _ := got.Load().(float32); dt != 0.25 {
		t.Errorf("hook received dt %v, want 0.25", dt)
	}
}

func TestSceneUpdateTicksAspectController(t *testing.T) {
	spy := &spyController{}
	s := NewScene("main", camera.NewCamera(), nopRenderer{},
		WithActive(true),
		WithAspectController(spy),
	)

	s.Update(1.0 / 60.0)
	s.Update(1.0 / 60.0)
	if got := spy.tickCount(); got != 2 {
		t.Errorf("controller ticked %d times, want 2", got)
	}
}

func TestSceneSetCameraNotifiesController(t *testing.T) {
	spy := &spyController{}
	s := NewScene("main", camera.NewCamera(), nopRenderer{}, WithAspectController(spy))

	replacement := camera.NewCamera()
	s.SetCamera(replacement)

	spy.mu.Lock()
	defer spy.mu.Unlock()
	if len(spy.cameras) != 1 || spy.cameras[0] != replacement {
		t.Errorf("controller did not receive the replacement camera: %v", spy.cameras)
	}
}

func TestSceneHookIDsAreUnique(t *testing.T) {
	s := NewScene("main", camera.NewCamera(), nopRenderer{})

	seen := make(map[uint64]bool)
	for i := 0; i < 100; i++ {
		id := s.AddUpdateHook(func(deltaTime float32) {})
		if seen[id] {
			t.Fatalf("duplicate hook ID %d", id)
		}
		seen[id] = true
	}
}
