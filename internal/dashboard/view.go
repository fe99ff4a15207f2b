package dashboard

import (
	"fmt"

	"github.com/finboard/finboard/internal/generator"
)

// Region names a rectangular area of the dashboard an overlay can
// cover.
type Region string

// RegionMetrics covers the three metric cards as one block.
const RegionMetrics Region = "metrics"

// TableRegion returns the region covering one collection's table.
func TableRegion(cat generator.RowCategory) Region {
	return Region(fmt.Sprintf("table:%s", cat))
}

// Rect is a viewport-relative rectangle: the position of a region on
// screen at the moment it was measured.
type Rect struct {
	Top    int
	Left   int
	Width  int
	Height int
}

// OverlayElement is the view's token for one attached overlay visual.
// The engine never inspects it; it only hands it back to DetachOverlay.
type OverlayElement interface{}

// View is the rendering surface the sync engine drives. Containers are
// swapped wholesale: MountContainer displaces whatever was mounted for
// the category in a single step, so stale rows never need removing one
// by one.
type View interface {
	// NewContainer allocates an empty container detached from the
	// visible surface.
	NewContainer(cat generator.RowCategory) Container
	// MountContainer makes c the category's visible container,
	// replacing the previous one in the same operation.
	MountContainer(cat generator.RowCategory, c Container)
	// ViewportRect measures a region in one direct query, already
	// adjusted for scrolling. Implementations must not walk ancestor
	// chains to accumulate offsets.
	ViewportRect(region Region) (Rect, error)
	// AttachOverlay shows a busy indicator covering the given area and
	// returns the token needed to remove it again.
	AttachOverlay(at Rect) (OverlayElement, error)
	// DetachOverlay removes a previously attached indicator.
	DetachOverlay(el OverlayElement)
}
