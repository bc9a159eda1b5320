package chartbuilder

import (
	"fmt"
	"sync"
	"time"
)

// Handle is one live chart instance occupying a grid position. The registry
// owns exactly one handle per position; replacing a position destroys the
// previous instance before the new one is stored.
type Handle struct {
	Position   int
	ChartID    string
	HTML       string
	RenderedAt time.Time

	destroy func()
}

// Destroy releases the instance's resources. Safe to call more than once.
func (h *Handle) Destroy() {
	if h == nil || h.destroy == nil {
		return
	}
	h.destroy()
	h.destroy = nil
}

// HandleRegistry tracks rendered chart instances by grid position, plus at
// most one pinned (expanded) instance at a time.
type HandleRegistry struct {
	mu      sync.RWMutex
	handles map[int]*Handle
	pinned  *Handle
}

// NewHandleRegistry builds an empty registry.
func NewHandleRegistry() *HandleRegistry {
	return &HandleRegistry{handles: make(map[int]*Handle)}
}

// Register installs a handle at a grid position. Any handle already at that
// position is destroyed first, so stale instances never leak.
func (r *HandleRegistry) Register(position int, chartID, html string, destroy func()) *Handle {
	handle := &Handle{
		Position:   position,
		ChartID:    chartID,
		HTML:       html,
		RenderedAt: time.Now(),
		destroy:    destroy,
	}

	r.mu.Lock()
	previous := r.handles[position]
	r.handles[position] = handle
	r.mu.Unlock()

	previous.Destroy()
	return handle
}

// Handle returns the instance at a grid position, if any.
func (r *HandleRegistry) Handle(position int) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	handle, ok := r.handles[position]
	return handle, ok
}

// Remove destroys and forgets the instance at a position. Removing a pinned
// position also clears the pin.
func (r *HandleRegistry) Remove(position int) {
	r.mu.Lock()
	handle := r.handles[position]
	delete(r.handles, position)
	if r.pinned != nil && r.pinned.Position == position {
		r.pinned = nil
	}
	r.mu.Unlock()

	handle.Destroy()
}

// Pin marks the instance at a position as the expanded overlay. At most one
// instance is pinned; pinning a new position silently replaces the previous
// pin.
func (r *HandleRegistry) Pin(position int) (*Handle, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	handle, ok := r.handles[position]
	if !ok {
		return nil, fmt.Errorf("chartbuilder: no chart at position %d", position)
	}
	r.pinned = handle
	return handle, nil
}

// Unpin clears the expanded overlay, if any.
func (r *HandleRegistry) Unpin() {
	r.mu.Lock()
	r.pinned = nil
	r.mu.Unlock()
}

// Pinned returns the currently expanded instance, if any.
func (r *HandleRegistry) Pinned() (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.pinned == nil {
		return nil, false
	}
	return r.pinned, true
}

// Positions returns the occupied grid positions in unspecified order.
func (r *HandleRegistry) Positions() []int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]int, 0, len(r.handles))
	for position := range r.handles {
		out = append(out, position)
	}
	return out
}

// Clear destroys every instance and resets the registry.
func (r *HandleRegistry) Clear() {
	r.mu.Lock()
	handles := r.handles
	r.handles = make(map[int]*Handle)
	r.pinned = nil
	r.mu.Unlock()

	for _, handle := range handles {
		handle.Destroy()
	}
}
