// Package generator synthesizes the dashboard datasets: scalar finance
// metrics produced by a bounded computation, and deterministic row
// collections served in capped slices.
package generator

// MetricCategory identifies one of the scalar dashboard metrics.
type MetricCategory string

const (
	MetricDeposits  MetricCategory = "deposits"
	MetricDividends MetricCategory = "dividends"
	MetricGains     MetricCategory = "gains"
)

// MetricCategories lists every metric category in display order.
func MetricCategories() []MetricCategory {
	return []MetricCategory{MetricDeposits, MetricDividends, MetricGains}
}

// ParseMetricCategory maps a path segment onto a metric category.
func ParseMetricCategory(s string) (MetricCategory, bool) {
	switch MetricCategory(s) {
	case MetricDeposits, MetricDividends, MetricGains:
		return MetricCategory(s), true
	}
	return "", false
}

func (c MetricCategory) String() string { return string(c) }

// RowCategory identifies one of the paginated record collections.
type RowCategory string

const (
	RowsOperations RowCategory = "operations"
	RowsUsers      RowCategory = "users"
)

// RowCategories lists every row category in display order.
func RowCategories() []RowCategory {
	return []RowCategory{RowsOperations, RowsUsers}
}

// ParseRowCategory maps a path segment onto a row category.
func ParseRowCategory(s string) (RowCategory, bool) {
	switch RowCategory(s) {
	case RowsOperations, RowsUsers:
		return RowCategory(s), true
	}
	return "", false
}

func (c RowCategory) String() string { return string(c) }
