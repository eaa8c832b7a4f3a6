package scene

import (
	"github.com/Carmen-Shannon/framebox/engine/camera"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithActive sets whether the scene is active for rendering.
//
// Parameters:
//   - active: whether the scene is active
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithActive(active bool) SceneBuilderOption {
	return func(s *scene) {
		s.active = active
	}
}

// WithAspectController sets the scene's aspect controller during construction.
// The engine attaches it to the scene's camera and render loop when the scene
// is registered.
//
// Parameters:
//   - ac: the aspect controller to set
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithAspectController(ac camera.AspectController) SceneBuilderOption {
	return func(s *scene) {
		s.aspect = ac
	}
}

// WithUpdateWorkers overrides the number of worker goroutines used for the
// parallel hook phase of Update. Defaults to NumCPU-1 (minimum 1).
//
// Parameters:
//   - workers: the worker count (values < 1 are ignored)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateWorkers(workers int) SceneBuilderOption {
	return func(s *scene) {
		if workers < 1 {
			return
		}
		s.updateWorkers = workers
	}
}

// WithUpdateHook registers an update hook during construction.
//
// Parameters:
//   - fn: the hook receiving the delta time in seconds
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithUpdateHook(fn func(deltaTime float32)) SceneBuilderOption {
	return func(s *scene) {
		s.hooks[s.nextHookID] = fn
		s.nextHookID++
	}
}
