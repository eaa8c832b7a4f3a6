package engine

import (
	"time"

	"github.com/Carmen-Shannon/framebox/engine/scene"
	"github.com/Carmen-Shannon/framebox/engine/window"
)

// EngineBuilderOption defines a function that modifies the engine during construction.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling at construction.
//
// Parameters:
//   - enabled: whether profiling output should be active
//
// Returns:
//   - EngineBuilderOption: option to apply to the engine
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the engine tick rate in frames per second.
// Values <= 0 are ignored and the default of 60 is kept.
//
// Parameters:
//   - fps: target ticks per second
//
// Returns:
//   - EngineBuilderOption: option to apply to the engine
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			return
		}
		e.engineTickRate = time.Second / time.Duration(fps)
	}
}

// WithWindow attaches the window the engine drives and polls for surface size.
//
// Parameters:
//   - w: the window instance
//
// Returns:
//   - EngineBuilderOption: option to apply to the engine
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithScene registers a scene at the given z-index key during construction.
// The scene's aspect controller (if any) is attached once the engine is built.
//
// Parameters:
//   - key: the z-index determining render order (lower renders first)
//   - s: the Scene to register
//
// Returns:
//   - EngineBuilderOption: option to apply to the engine
func WithScene(key int, s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scenes[key] = s
	}
}

// WithRenderFrameLimit caps the render loop at the given frames per second.
// Values <= 0 leave the render loop uncapped.
//
// Parameters:
//   - fps: maximum render frames per second
//
// Returns:
//   - EngineBuilderOption: option to apply to the engine
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			return
		}
		e.renderFrameLimit = time.Second / time.Duration(fps)
	}
}
