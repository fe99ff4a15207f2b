package dashboard

// Record is one dataset row as decoded from the wire. The engine treats
// rows as opaque; the rendering layer decides which fields to show.
type Record map[string]any

// Container accumulates rendered rows for one collection. Pages arrive
// as whole batches and rows are never removed individually, so an
// implementation pays one attach per page regardless of page size.
type Container interface {
	// AppendBatch adds a page of rows in one operation.
	AppendBatch(batch []Record)
	// Len reports how many rows the container holds.
	Len() int
}
