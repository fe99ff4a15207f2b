package generator

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/finboard/finboard/internal/observability"
)

const (
	defaultMetricCost = 8_000_000
	defaultMaxRows    = 500
	defaultRowCount   = 50
)

// ErrInvalidRows reports a negative row count. Parsing and range errors
// on the wire are the transport layer's problem; by the time the count
// reaches the service it must be zero or more.
var ErrInvalidRows = errors.New("generator: row count must be zero or more")

// Settings bound the dataset generator.
type Settings struct {
	// MetricCost is the number of work units burned per metric.
	MetricCost int
	// MaxRows caps the slice served for any row request.
	MaxRows int
	// DefaultRows is served when a request names no count.
	DefaultRows int
}

// Service produces the dashboard datasets. Metric computations are
// delegated to the pool so serving goroutines never run them inline,
// and optionally short-circuited by the cache.
type Service struct {
	pool     *ComputePool
	cache    *Cache
	metrics  *observability.GeneratorMetrics
	validate *validator.Validate

	metricCost  int
	maxRows     int
	defaultRows int

	// computeFn stands in for the metric kernel in tests.
	computeFn func(context.Context, MetricCategory, int) (float64, error)
}

// NewService wires the generator. Zero or negative settings fall back
// to the built-in defaults, and the default row count never exceeds the
// ceiling.
func NewService(pool *ComputePool, cache *Cache, metrics *observability.GeneratorMetrics, s Settings) *Service {
	if s.MetricCost <= 0 {
		s.MetricCost = defaultMetricCost
	}
	if s.MaxRows <= 0 {
		s.MaxRows = defaultMaxRows
	}
	if s.DefaultRows <= 0 {
		s.DefaultRows = defaultRowCount
	}
	if s.DefaultRows > s.MaxRows {
		s.DefaultRows = s.MaxRows
	}
	return &Service{
		pool:        pool,
		cache:       cache,
		metrics:     metrics,
		validate:    validator.New(),
		metricCost:  s.MetricCost,
		maxRows:     s.MaxRows,
		defaultRows: s.DefaultRows,
		computeFn:   computeMetric,
	}
}

// MaxRows returns the configured row ceiling.
func (s *Service) MaxRows() int { return s.maxRows }

// DefaultRows returns the count served when a request names none.
func (s *Service) DefaultRows() int { return s.defaultRows }

// MetricValue returns the scalar for one metric category, consulting
// the cache first when one is wired. Cache lookup trouble degrades to a
// local computation instead of failing the request.
func (s *Service) MetricValue(ctx context.Context, cat MetricCategory) (float64, error) {
	loader := func(ctx context.Context) (float64, error) {
		return s.compute(ctx, cat)
	}
	key, err := s.cache.BuildKey(ctx, keyMetric(cat)...)
	if err != nil {
		return loader(ctx)
	}
	return s.cache.FetchValue(ctx, key, loader)
}

func (s *Service) compute(ctx context.Context, cat MetricCategory) (float64, error) {
	track := s.metrics.TrackCompute(cat.String())
	value, err := s.pool.Submit(ctx, func(ctx context.Context) (float64, error) {
		return s.computeFn(ctx, cat, s.metricCost)
	})
	return value, track.End(err)
}

// Operations returns the first rows ledger entries, clamped to the
// ceiling. Every record is checked against its schema before it leaves
// the service; a failure means the synthesis itself is broken.
func (s *Service) Operations(ctx context.Context, rows int) ([]Operation, error) {
	n, err := s.rowCount(rows)
	if err != nil {
		return nil, err
	}
	out := make([]Operation, 0, n)
	for i := 0; i < n; i++ {
		op := OperationAt(i)
		if err := s.validate.StructCtx(ctx, op); err != nil {
			return nil, fmt.Errorf("generator: operation %d malformed: %w", i, err)
		}
		out = append(out, op)
	}
	s.metrics.AddRows(RowsOperations.String(), len(out))
	return out, nil
}

// Users returns the first rows account holders, clamped to the ceiling.
func (s *Service) Users(ctx context.Context, rows int) ([]User, error) {
	n, err := s.rowCount(rows)
	if err != nil {
		return nil, err
	}
	out := make([]User, 0, n)
	for i := 0; i < n; i++ {
		u := UserAt(i)
		if err := s.validate.StructCtx(ctx, u); err != nil {
			return nil, fmt.Errorf("generator: user %d malformed: %w", i, err)
		}
		out = append(out, u)
	}
	s.metrics.AddRows(RowsUsers.String(), len(out))
	return out, nil
}

func (s *Service) rowCount(rows int) (int, error) {
	if rows < 0 {
		return 0, ErrInvalidRows
	}
	if rows > s.maxRows {
		return s.maxRows, nil
	}
	return rows, nil
}
