package dashboard

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/finboard/finboard/internal/generator"
)

// ErrLoadInFlight reports a load or refresh attempted while the same
// collection is already loading.
var ErrLoadInFlight = errors.New("dashboard: load already in flight")

// Phase names a table's position in its loading lifecycle.
type Phase int

const (
	PhaseEmpty Phase = iota
	PhaseLoading
	PhaseLoaded
	PhaseExhausted
)

func (p Phase) String() string {
	switch p {
	case PhaseEmpty:
		return "empty"
	case PhaseLoading:
		return "loading"
	case PhaseLoaded:
		return "loaded"
	case PhaseExhausted:
		return "exhausted"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// TableStatus is a point-in-time copy of one table's state.
type TableStatus struct {
	Phase    Phase
	Rendered int
}

// tableState guards one collection. The mutex covers transitions only;
// it is never held across a fetch, which is what lets collections load
// in parallel while re-entry on the same one is rejected.
type tableState struct {
	mu        sync.Mutex
	phase     Phase
	rendered  int
	container Container
}

// LoadMore fetches and attaches the next page for one collection. A
// call while the same collection loads returns ErrLoadInFlight; a call
// on an exhausted collection is a no-op that touches nothing. Rows the
// server already returned are requested again but only the new suffix
// is attached, so rendered content only ever grows.
func (e *Engine) LoadMore(ctx context.Context, cat generator.RowCategory) error {
	st, ok := e.tables[cat]
	if !ok {
		return fmt.Errorf("dashboard: unknown collection %q", cat)
	}

	st.mu.Lock()
	if st.phase == PhaseLoading {
		st.mu.Unlock()
		return ErrLoadInFlight
	}
	if st.phase == PhaseExhausted {
		st.mu.Unlock()
		return nil
	}
	prev := st.phase
	st.phase = PhaseLoading
	if st.container == nil {
		st.container = e.view.NewContainer(cat)
		e.view.MountContainer(cat, st.container)
	}
	have := st.rendered
	st.mu.Unlock()

	target := have + e.pageSize
	if target > e.maxRows {
		target = e.maxRows
	}

	overlay := e.showOverlay(TableRegion(cat))
	fetchCtx, cancel := e.fetchContext(ctx)
	records, err := e.source.Rows(fetchCtx, cat, target)
	cancel()
	e.overlay.Dismiss(overlay)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		e.logWarn("load more failed", cat.String(), err)
		st.phase = prev
		return err
	}
	if len(records) > have {
		st.container.AppendBatch(records[have:])
		st.rendered = len(records)
	}
	if len(records) < target || st.rendered >= e.maxRows {
		st.phase = PhaseExhausted
	} else {
		st.phase = PhaseLoaded
	}
	return nil
}

// Refresh discards a collection and loads its first page into a brand
// new container. The old container is displaced by a single mount,
// never emptied row by row, and the engine drops its only reference to
// it. A refresh that fails leaves the previous rows on screen.
func (e *Engine) Refresh(ctx context.Context, cat generator.RowCategory) error {
	st, ok := e.tables[cat]
	if !ok {
		return fmt.Errorf("dashboard: unknown collection %q", cat)
	}

	st.mu.Lock()
	if st.phase == PhaseLoading {
		st.mu.Unlock()
		return ErrLoadInFlight
	}
	prev := st.phase
	st.phase = PhaseLoading
	st.mu.Unlock()

	target := e.pageSize
	if target > e.maxRows {
		target = e.maxRows
	}

	overlay := e.showOverlay(TableRegion(cat))
	fetchCtx, cancel := e.fetchContext(ctx)
	records, err := e.source.Rows(fetchCtx, cat, target)
	cancel()
	e.overlay.Dismiss(overlay)

	st.mu.Lock()
	defer st.mu.Unlock()
	if err != nil {
		e.logWarn("refresh failed", cat.String(), err)
		st.phase = prev
		return err
	}
	fresh := e.view.NewContainer(cat)
	fresh.AppendBatch(records)
	e.view.MountContainer(cat, fresh)
	st.container = fresh
	st.rendered = len(records)
	if len(records) < target || st.rendered >= e.maxRows {
		st.phase = PhaseExhausted
	} else {
		st.phase = PhaseLoaded
	}
	return nil
}

// TableStatus reports the current phase and row count of a collection.
func (e *Engine) TableStatus(cat generator.RowCategory) TableStatus {
	st, ok := e.tables[cat]
	if !ok {
		return TableStatus{}
	}
	st.mu.Lock()
	defer st.mu.Unlock()
	return TableStatus{Phase: st.phase, Rendered: st.rendered}
}
