package journal

import (
	"sync"

	"example.com/fitscribe/internal/auth"
)

// Registry keeps one controller per live session.
type Registry struct {
	deps Deps

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewRegistry constructs a Registry.
func NewRegistry(deps Deps) *Registry {
	return &Registry{deps: deps, controllers: make(map[string]*Controller)}
}

// Acquire returns the controller for the session, creating it on first use.
func (r *Registry) Acquire(sessionID string, identity auth.Identity) *Controller {
	r.mu.Lock()
	defer r.mu.Unlock()

	if controller, ok := r.controllers[sessionID]; ok {
		return controller
	}
	controller := NewController(identity, r.deps)
	r.controllers[sessionID] = controller
	return controller
}

// Drop signs the session's controller out and forgets it, clearing every
// in-memory draft field.
func (r *Registry) Drop(sessionID string) {
	r.mu.Lock()
	controller, ok := r.controllers[sessionID]
	delete(r.controllers, sessionID)
	r.mu.Unlock()

	if ok {
		controller.SignOut()
	}
}
