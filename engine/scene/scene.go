package scene

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/framebox/engine/camera"
	"github.com/Carmen-Shannon/framebox/engine/renderer"
)

// Scene groups a Camera, a Renderer, an optional AspectController, and a set
// of per-tick update hooks into one renderable view. Scenes can be hot-swapped
// via the Active flag to switch between different views.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// SetName sets the scene's identifier.
	SetName(name string)

	// Active returns whether this scene is currently active for rendering.
	Active() bool

	// SetActive sets whether this scene is active for rendering.
	SetActive(active bool)

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera and hands it to the scene's
	// aspect controller if one is set.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Renderer returns the scene's renderer.
	Renderer() renderer.Renderer

	// SetRenderer replaces the scene's renderer.
	//
	// Parameters:
	//   - r: the new renderer
	SetRenderer(r renderer.Renderer)

	// AspectController returns the scene's aspect controller, or nil if none is set.
	//
	// Returns:
	//   - camera.AspectController: the controller or nil
	AspectController() camera.AspectController

	// SetAspectController sets the scene's aspect controller. The engine
	// attaches it to the scene's camera and render loop when the scene is
	// registered, and detaches it on removal.
	//
	// Parameters:
	//   - ac: the controller to set (may be nil to remove)
	SetAspectController(ac camera.AspectController)

	// AddUpdateHook registers a function called once per engine tick while
	// the scene is active. Hooks run concurrently with each other on the
	// scene's worker pool; Update does not return until all hooks finish.
	//
	// Parameters:
	//   - fn: the hook receiving the delta time in seconds
	//
	// Returns:
	//   - uint64: the assigned hook ID for later removal
	AddUpdateHook(fn func(deltaTime float32)) uint64

	// RemoveUpdateHook removes a previously registered update hook by ID.
	//
	// Parameters:
	//   - id: the hook's unique ID
	RemoveUpdateHook(id uint64)

	// Update runs one logical tick: fans all update hooks out to the worker
	// pool, waits for them, refreshes the camera matrices, and runs the
	// aspect controller's change-detection pass. Called by the engine's tick
	// loop, which runs strictly before the render loop consumes the armed
	// clear at frame begin.
	//
	// Parameters:
	//   - deltaTime: elapsed time since the last tick in seconds
	Update(deltaTime float32)
}

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.RWMutex

	name   string
	active bool

	cam    camera.Camera
	r      renderer.Renderer
	aspect camera.AspectController

	hooks      map[uint64]func(deltaTime float32)
	nextHookID uint64

	// updatePool manages a bounded set of reusable goroutines for the
	// parallel hook phase of Update. Workers persist across ticks, avoiding
	// per-tick goroutine spawn/teardown overhead.
	updatePool    worker.DynamicWorkerPool
	updateWorkers int // stored so we can log/inspect the configured count
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new Scene with the given camera and renderer. Both are
// required and NewScene panics if either is nil.
//
// Parameters:
//   - name: the name of the scene
//   - cam: the camera to attach (must not be nil)
//   - r: the renderer to attach (must not be nil)
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(name string, cam camera.Camera, r renderer.Renderer, options ...SceneBuilderOption) Scene {
	if cam == nil {
		panic("scene: NewScene requires a non-nil Camera")
	}
	if r == nil {
		panic("scene: NewScene requires a non-nil Renderer")
	}

	s := &scene{
		mu:            &sync.RWMutex{},
		name:          name,
		active:        false,
		cam:           cam,
		r:             r,
		hooks:         make(map[uint64]func(deltaTime float32)),
		nextHookID:    1,
		updateWorkers: max(runtime.NumCPU()-1, 1),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the update pool after options so WithUpdateWorkers can override the default.
	// Queue size of 64 accommodates typical hook counts with headroom.
	s.updatePool = worker.NewDynamicWorkerPool(s.updateWorkers, 64, 1*time.Second)

	return s
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Camera() camera.Camera {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cam
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cam = cam
	if s.aspect != nil {
		s.aspect.SetCamera(cam)
	}
}

func (s *scene) Renderer() renderer.Renderer {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.r
}

func (s *scene) SetRenderer(r renderer.Renderer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.r = r
}

func (s *scene) AspectController() camera.AspectController {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.aspect
}

func (s *scene) SetAspectController(ac camera.AspectController) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aspect = ac
}

func (s *scene) AddUpdateHook(fn func(deltaTime float32)) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextHookID
	s.nextHookID++
	s.hooks[id] = fn
	return id
}

func (s *scene) RemoveUpdateHook(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.hooks, id)
}

func (s *scene) Update(deltaTime float32) {
	s.mu.RLock()
	hooks := make([]func(deltaTime float32), 0, len(s.hooks))
	for _, fn := range s.hooks {
		hooks = append(hooks, fn)
	}
	cam := s.cam
	aspect := s.aspect
	s.mu.RUnlock()

	// Phase 1: parallel hook execution, one pool task per hook.
	// Workers are reused across ticks (no goroutine spawn overhead). A
	// WaitGroup provides a per-tick barrier since pool.Wait() blocks until
	// workers idle-exit, which is unsuitable for frame-rate workloads.
	var wg sync.WaitGroup
	for i, fn := range hooks {
		wg.Add(1)
		fnCap := fn // capture for closure
		s.updatePool.SubmitTask(worker.Task{
			ID: i,
			Do: func() (any, error) {
				defer wg.Done()
				fnCap(deltaTime)
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Phase 2: refresh the camera and run the framing change-detection pass.
	// The controller's Tick must run in the logical-frame phase so an armed
	// clear is visible to the render loop's next frame-begin dispatch.
	if cam != nil {
		cam.Update()
	}
	if aspect != nil {
		aspect.Tick()
	}
}
