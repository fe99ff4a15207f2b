package dashboard

import "sync"

// OverlayHandle identifies one presented busy overlay. It records the
// target's geometry as measured when the overlay appeared and stays
// valid until dismissed. A handle never outlives the operation it was
// shown for; the engine pairs every Show with a Dismiss.
type OverlayHandle struct {
	rect      Rect
	element   OverlayElement
	dismissed bool
}

// Rect returns the target geometry captured when the overlay was shown.
func (h *OverlayHandle) Rect() Rect {
	if h == nil {
		return Rect{}
	}
	return h.rect
}

// OverlayManager owns the lifecycle of busy overlays. Show measures the
// target region exactly once and attaches one visual; Dismiss detaches
// it and invalidates the handle.
type OverlayManager struct {
	view View
	mu   sync.Mutex
}

// NewOverlayManager builds a manager rendering through view.
func NewOverlayManager(view View) *OverlayManager {
	return &OverlayManager{view: view}
}

// Show presents a busy overlay over the region. Geometry comes from a
// single ViewportRect call; the returned handle carries it for the
// overlay's whole lifetime.
func (m *OverlayManager) Show(region Region) (*OverlayHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	at, err := m.view.ViewportRect(region)
	if err != nil {
		return nil, err
	}
	el, err := m.view.AttachOverlay(at)
	if err != nil {
		return nil, err
	}
	return &OverlayHandle{rect: at, element: el}, nil
}

// Dismiss detaches the overlay and invalidates the handle. Dismissing
// a nil or already dismissed handle does nothing.
func (m *OverlayManager) Dismiss(h *OverlayHandle) {
	if h == nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if h.dismissed {
		return
	}
	h.dismissed = true
	m.view.DetachOverlay(h.element)
	h.element = nil
}
