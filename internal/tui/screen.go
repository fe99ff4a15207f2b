package tui

import (
	"errors"
	"sync"

	"github.com/finboard/finboard/internal/dashboard"
	"github.com/finboard/finboard/internal/generator"
)

// ErrNotLaidOut reports a geometry query before the first window size
// arrived.
var ErrNotLaidOut = errors.New("tui: screen not laid out yet")

// Screen is the terminal rendering surface behind the sync engine. The
// engine mutates it from its own goroutines while the program renders
// on the Bubble Tea loop, so every access goes through the mutex.
type Screen struct {
	mu      sync.Mutex
	layout  map[dashboard.Region]dashboard.Rect
	bodies  map[generator.RowCategory]*tableBody
	visible map[*overlayBox]struct{}
}

// NewScreen returns an empty screen with no layout.
func NewScreen() *Screen {
	return &Screen{
		layout:  make(map[dashboard.Region]dashboard.Rect),
		bodies:  make(map[generator.RowCategory]*tableBody),
		visible: make(map[*overlayBox]struct{}),
	}
}

// overlayBox is the screen's overlay element: a busy box pinned to the
// rect measured when it was attached.
type overlayBox struct {
	at dashboard.Rect
}

// tableBody buffers rendered rows for one collection. Batches arrive
// pre-formatted off the live screen and land in a single append, so
// attaching a page costs one mutation however long the page is.
type tableBody struct {
	mu      sync.Mutex
	format  func([]dashboard.Record) []string
	lines   []string
	rows    int
	batches int
}

// AppendBatch renders the page into lines and attaches them in one
// operation.
func (b *tableBody) AppendBatch(batch []dashboard.Record) {
	rendered := b.format(batch)
	b.mu.Lock()
	b.lines = append(b.lines, rendered...)
	b.rows += len(batch)
	b.batches++
	b.mu.Unlock()
}

// Len reports how many rows the body holds.
func (b *tableBody) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.rows
}

// window copies out at most max lines starting at offset.
func (b *tableBody) window(offset, max int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 {
		offset = 0
	}
	if offset >= len(b.lines) || max <= 0 {
		return nil
	}
	end := offset + max
	if end > len(b.lines) {
		end = len(b.lines)
	}
	out := make([]string, end-offset)
	copy(out, b.lines[offset:end])
	return out
}

// NewContainer allocates a detached body wired to the category's row
// formatter.
func (s *Screen) NewContainer(cat generator.RowCategory) dashboard.Container {
	return &tableBody{format: rowFormatter(cat)}
}

// MountContainer installs c as the category's visible body, displacing
// whatever was mounted before in the same assignment.
func (s *Screen) MountContainer(cat generator.RowCategory, c dashboard.Container) {
	body, ok := c.(*tableBody)
	if !ok {
		return
	}
	s.mu.Lock()
	s.bodies[cat] = body
	s.mu.Unlock()
}

// SetLayout replaces the region geometry in one step. The model calls
// this whenever the window resizes.
func (s *Screen) SetLayout(layout map[dashboard.Region]dashboard.Rect) {
	s.mu.Lock()
	s.layout = layout
	s.mu.Unlock()
}

// ViewportRect answers a region's current geometry from the last
// computed layout, one lookup per call.
func (s *Screen) ViewportRect(region dashboard.Region) (dashboard.Rect, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	at, ok := s.layout[region]
	if !ok {
		return dashboard.Rect{}, ErrNotLaidOut
	}
	return at, nil
}

// AttachOverlay pins a busy box to the given rect.
func (s *Screen) AttachOverlay(at dashboard.Rect) (dashboard.OverlayElement, error) {
	el := &overlayBox{at: at}
	s.mu.Lock()
	s.visible[el] = struct{}{}
	s.mu.Unlock()
	return el, nil
}

// DetachOverlay removes a previously attached box. Unknown elements
// are ignored.
func (s *Screen) DetachOverlay(el dashboard.OverlayElement) {
	box, ok := el.(*overlayBox)
	if !ok {
		return
	}
	s.mu.Lock()
	delete(s.visible, box)
	s.mu.Unlock()
}

// OverlayCovering reports whether a visible overlay intersects the
// rect.
func (s *Screen) OverlayCovering(r dashboard.Rect) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for box := range s.visible {
		if intersects(box.at, r) {
			return true
		}
	}
	return false
}

// OverlayCount reports how many overlays are attached.
func (s *Screen) OverlayCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.visible)
}

// RowWindow copies out up to max rendered rows of a collection
// starting at offset. A category without a mounted body yields nothing.
func (s *Screen) RowWindow(cat generator.RowCategory, offset, max int) []string {
	s.mu.Lock()
	body := s.bodies[cat]
	s.mu.Unlock()
	if body == nil {
		return nil
	}
	return body.window(offset, max)
}

// RowCount reports how many rows the mounted body holds.
func (s *Screen) RowCount(cat generator.RowCategory) int {
	s.mu.Lock()
	body := s.bodies[cat]
	s.mu.Unlock()
	if body == nil {
		return 0
	}
	return body.Len()
}

func intersects(a, b dashboard.Rect) bool {
	if a.Width <= 0 || a.Height <= 0 || b.Width <= 0 || b.Height <= 0 {
		return false
	}
	return a.Left < b.Left+b.Width && b.Left < a.Left+a.Width &&
		a.Top < b.Top+b.Height && b.Top < a.Top+a.Height
}
