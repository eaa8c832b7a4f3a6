package engine

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/framebox/common"
	"github.com/Carmen-Shannon/framebox/engine/camera"
	"github.com/Carmen-Shannon/framebox/engine/profiler"
	"github.com/Carmen-Shannon/framebox/engine/renderer"
	"github.com/Carmen-Shannon/framebox/engine/scene"
	"github.com/Carmen-Shannon/framebox/engine/window"
)

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	paused  atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window window.Window

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	scenes map[int]scene.Scene

	frameBegin *frameBeginRegistry

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management, and
// implements camera.RenderHost so aspect controllers can poll the surface
// size, stage bar clears, and hook into frame-begin dispatch.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for game logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	// Use this for game logic, physics, input processing, and animation updates.
	// Scene updates (including aspect controller change detection) run before
	// the callback each tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key and attaches the
	// scene's aspect controller (if any) to its camera and this engine.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key, detaching its
	// aspect controller if one is set.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Pause suspends simulation: the tick loop stops advancing scenes while
	// the render loop keeps presenting frames. Aspect controllers detect the
	// paused state through ActivelySimulating and re-clear their bars every
	// frame so the paused image stays visually correct.
	Pause()

	// Resume restarts simulation after Pause.
	Resume()

	// ActivelySimulating reports whether the engine is running and not paused.
	//
	// Returns:
	//   - bool: true while the tick loop is advancing simulation time
	ActivelySimulating() bool

	// ScreenSize returns the current render surface size in pixels, polled
	// from the window. Returns zeros when no window is attached.
	//
	// Returns:
	//   - width, height: surface dimensions in pixels
	ScreenSize() (width, height int)

	// ClearBuffer stages a full-surface color and depth clear on the active
	// scene's renderer, performed before the next frame's content is drawn.
	//
	// Parameters:
	//   - color: the color to clear to
	//   - depth: the depth value to clear to (typically 1.0)
	ClearBuffer(color common.Color, depth float32)

	// SubscribeFrameBegin registers a callback invoked once per rendered
	// frame, before the frame's render pass begins.
	//
	// Parameters:
	//   - fn: the callback to invoke at frame begin
	//
	// Returns:
	//   - camera.Subscription: a cancelable handle for deregistration
	SubscribeFrameBegin(fn func()) camera.Subscription

	// Run starts the main engine loop (blocks until window closes).
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ camera.RenderHost = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// Initializes the frame-begin registry and profiler with sensible defaults.
// Options are applied directly to the engine struct via the option-builder pattern.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		scenes:           make(map[int]scene.Scene),
		wg:               sync.WaitGroup{},
		profiler:         profiler.NewProfiler(),
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
		frameBegin:       newFrameBeginRegistry(),
	}

	for _, opt := range options {
		opt(e)
	}

	// Scenes registered through WithScene need the same attach wiring as AddScene.
	for _, s := range e.scenes {
		e.attachAspectController(s)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			for _, s := range e.scenes {
				if r := s.Renderer(); r != nil {
					r.Resize(width, height)
				}
				if c := s.Camera(); c != nil {
					c.SetAspect(float32(width) / float32(height))
				}
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	e.window.ProcessMessages()
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

func (e *engine) Pause() {
	e.paused.Store(true)
}

func (e *engine) Resume() {
	e.paused.Store(false)
}

func (e *engine) ActivelySimulating() bool {
	return e.running.Load() && !e.paused.Load()
}

func (e *engine) ScreenSize() (width, height int) {
	if e.window == nil {
		return 0, 0
	}
	return e.window.Width(), e.window.Height()
}

func (e *engine) ClearBuffer(color common.Color, depth float32) {
	if r := e.frameRenderer(); r != nil {
		r.ClearBuffer(color, depth)
	}
}

func (e *engine) SubscribeFrameBegin(fn func()) camera.Subscription {
	return e.frameBegin.subscribe(fn)
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Each tick updates all active scenes (hooks, camera, aspect controller
// change detection) and fires the tick callback, then listens for dynamic
// rate changes via tickRateChannel. While paused, ticks are skipped entirely
// so simulation time does not advance. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.paused.Load() {
				continue
			}

			for _, s := range e.activeScenes() {
				s.Update(dt)
			}

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// handleRender runs the uncapped (or frame-limited) render loop in its own goroutine.
// Each frame it dispatches the frame-begin subscribers (consuming any armed
// bar clears), pushes the active camera's viewport to the renderer, then runs
// the BeginFrame/EndFrame/Present lifecycle.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	// Recover from panics inside the render goroutine to avoid crashing the whole process.
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			active := e.activeScenes()
			if len(active) > 0 {
				// Use the first active scene's renderer to manage the frame.
				// The engine owns the frame lifecycle: frame-begin dispatch,
				// viewport push, BeginFrame, EndFrame + Present once per frame.
				frameRenderer := active[0].Renderer()
				if frameRenderer != nil {
					// Frame-begin subscribers run before BeginFrame so that a
					// clear armed by an aspect controller lands on this frame.
					e.frameBegin.dispatch()

					if c := active[0].Camera(); c != nil {
						frameRenderer.SetViewport(c.Viewport())
					}

					if err := frameRenderer.BeginFrame(); err == nil {
						frameRenderer.EndFrame()
						frameRenderer.Present()
					}
				}
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// activeScenes returns the active scenes in ascending z-index order.
func (e *engine) activeScenes() []scene.Scene {
	keys := make([]int, 0, len(e.scenes))
	for k := range e.scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	var active []scene.Scene
	for _, k := range keys {
		if s := e.scenes[k]; s.Active() {
			active = append(active, s)
		}
	}
	return active
}

// frameRenderer returns the renderer managing the current frame: the first
// active scene's renderer in ascending z-index order, or nil when no scene
// is active.
func (e *engine) frameRenderer() renderer.Renderer {
	active := e.activeScenes()
	if len(active) == 0 {
		return nil
	}
	return active[0].Renderer()
}

// attachAspectController wires a scene's aspect controller (if any) to the
// scene's camera and this engine's render loop. A missing camera is reported
// by the controller itself and leaves it inert until one is supplied.
func (e *engine) attachAspectController(s scene.Scene) {
	if ac := s.AspectController(); ac != nil {
		// ErrMissingCamera is non-fatal and already reported by the controller.
		_ = ac.Attach(s.Camera(), e)
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running.Load() {
		// Send to channel for immediate update in running engine loop
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			// Channel has a pending update, drain and send new value
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		// Engine not running, just update the field
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.scenes[key] = s
	e.attachAspectController(s)
}

func (e *engine) RemoveScene(key int) {
	if s, ok := e.scenes[key]; ok {
		if ac := s.AspectController(); ac != nil {
			ac.Detach()
		}
	}
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
