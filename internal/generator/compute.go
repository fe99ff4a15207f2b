package generator

import (
	"context"

	"github.com/shopspring/decimal"
)

// yieldEvery bounds how many work units run between cancellation checks.
const yieldEvery = 4096

// metricSeed gives every category a distinct pseudo-random stream so the
// computed values differ while staying reproducible across runs.
func metricSeed(cat MetricCategory) uint64 {
	var seed uint64 = 0x9e3779b97f4a7c15
	for _, b := range []byte(cat) {
		seed ^= uint64(b)
		seed *= 0xbf58476d1ce4e5b9
	}
	if seed == 0 {
		seed = 1
	}
	return seed
}

func scaleFor(cat MetricCategory) decimal.Decimal {
	switch cat {
	case MetricDeposits:
		return decimal.NewFromInt(40)
	case MetricDividends:
		return decimal.NewFromInt(3)
	default:
		return decimal.NewFromInt(12)
	}
}

// computeMetric burns through cost units of arithmetic and folds the
// stream into a currency amount. The loop is pure CPU work: the same
// category and cost always produce the same value. Cancellation is
// observed between chunks, so callers wait at most yieldEvery units
// past ctx expiry.
func computeMetric(ctx context.Context, cat MetricCategory, cost int) (float64, error) {
	state := metricSeed(cat)
	sum := decimal.Zero
	var chunk uint64

	for unit := 0; unit < cost; unit++ {
		state ^= state << 13
		state ^= state >> 7
		state ^= state << 17
		chunk += state % 100_000

		if (unit+1)%yieldEvery == 0 {
			if err := ctx.Err(); err != nil {
				return 0, err
			}
			sum = sum.Add(decimal.New(int64(chunk), -2))
			chunk = 0
		}
	}
	sum = sum.Add(decimal.New(int64(chunk), -2))

	if cost <= 0 {
		return 0, ctx.Err()
	}
	avg := sum.Div(decimal.NewFromInt(int64(cost)))
	value, _ := avg.Mul(scaleFor(cat)).Round(2).Float64()
	return value, nil
}
