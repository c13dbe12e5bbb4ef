package reorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEOQ(t *testing.T) {
	// sqrt(2 * 1000 * 50 / 4) = 158.11
	assert.InDelta(t, 158.1139, EOQ(1000, 50, 4), 0.0001)
	assert.Zero(t, EOQ(0, 50, 4))
	assert.Zero(t, EOQ(1000, 50, 0))
}

func TestSafetyStockAndReorderPoint(t *testing.T) {
	ss := SafetyStock(1.6449, 2, 4)
	assert.InDelta(t, 6.5796, ss, 0.0001)
	assert.InDelta(t, 46.5796, ReorderPoint(10, 4, ss), 0.0001)
	assert.Zero(t, SafetyStock(1.6449, 0, 4))
}

func TestSummarize(t *testing.T) {
	s := Summarize([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	assert.Equal(t, 8, s.Days)
	assert.InDelta(t, 5.0, s.Mean, 1e-9)
	assert.InDelta(t, 2.138, s.StdDev, 0.001)
	assert.Equal(t, DemandStats{}, Summarize(nil))
}

func TestCompute_UnknownServiceLevelFallsBackTo95(t *testing.T) {
	daily := []float64{10, 12, 8, 10}
	a := Compute(daily, Params{LeadTimeDays: 3, ServiceLevel: 0.95, OrderCost: 10, HoldingCost: 1})
	b := Compute(daily, Params{LeadTimeDays: 3, ServiceLevel: 0.5, OrderCost: 10, HoldingCost: 1})
	assert.Equal(t, a, b)
	assert.Greater(t, a.ReorderPoint, 30.0)
}
