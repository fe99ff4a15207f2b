package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GeneratorMetrics mengumpulkan metrik Prometheus untuk komputasi dataset.
type GeneratorMetrics struct {
	computeDuration *prometheus.HistogramVec
	computeFailures *prometheus.CounterVec
	computeInFlight prometheus.Gauge
	rowsServed      *prometheus.CounterVec
}

// NewGeneratorMetrics mendaftarkan metrik generator pada registerer yang
// diberikan. Registerer nil memakai registerer bawaan Prometheus.
func NewGeneratorMetrics(registerer prometheus.Registerer) *GeneratorMetrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "finboard_generator_compute_duration_seconds",
		Help:    "Durasi komputasi metrik per kategori.",
		Buckets: prometheus.DefBuckets,
	}, []string{"category"})
	failures := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_generator_compute_failures_total",
		Help: "Jumlah kegagalan komputasi metrik per kategori.",
	}, []string{"category"})
	inFlight := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "finboard_generator_compute_in_flight",
		Help: "Jumlah komputasi metrik yang sedang berjalan.",
	})
	rows := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "finboard_generator_rows_total",
		Help: "Jumlah baris dataset yang disajikan per kategori.",
	}, []string{"category"})
	registerer.MustRegister(duration, failures, inFlight, rows)
	return &GeneratorMetrics{
		computeDuration: duration,
		computeFailures: failures,
		computeInFlight: inFlight,
		rowsServed:      rows,
	}
}

// ComputeTracker mencatat siklus hidup satu komputasi metrik.
type ComputeTracker struct {
	metrics  *GeneratorMetrics
	category string
	start    time.Time
}

// TrackCompute menandai awal komputasi dan menaikkan gauge in-flight.
func (g *GeneratorMetrics) TrackCompute(category string) *ComputeTracker {
	if g == nil {
		return &ComputeTracker{category: category, start: time.Now()}
	}
	g.computeInFlight.Inc()
	return &ComputeTracker{metrics: g, category: category, start: time.Now()}
}

// End menutup tracker, mencatat durasi dan kegagalan, lalu mengembalikan
// err apa adanya.
func (t *ComputeTracker) End(err error) error {
	if t == nil || t.metrics == nil {
		return err
	}
	t.metrics.computeInFlight.Dec()
	t.metrics.computeDuration.WithLabelValues(t.category).Observe(time.Since(t.start).Seconds())
	if err != nil {
		t.metrics.computeFailures.WithLabelValues(t.category).Inc()
	}
	return err
}

// AddRows menambah hitungan baris yang disajikan per kategori.
func (g *GeneratorMetrics) AddRows(category string, n int) {
	if g == nil || n <= 0 {
		return
	}
	g.rowsServed.WithLabelValues(category).Add(float64(n))
}
