// Package reorder holds the closed-form stock planning formulas used to
// derive an item's reorder point from its sales history.
package reorder

import "math"

// ServiceLevelZ maps common cycle service levels to their standard normal z-score
var ServiceLevelZ = map[float64]float64{
	0.90: 1.2816,
	0.95: 1.6449,
	0.975: 1.9600,
	0.99: 2.3263,
}

// EOQ is the economic order quantity sqrt(2DS/H).
// Returns 0 when any input is non-positive.
func EOQ(annualDemand, orderCost, holdingCost float64) float64 {
	if annualDemand <= 0 || orderCost <= 0 || holdingCost <= 0 {
		return 0
	}
	return math.Sqrt(2 * annualDemand * orderCost / holdingCost)
}

// SafetyStock is z * sigma_d * sqrt(L) for daily demand deviation sigma_d and lead time L in days
func SafetyStock(z, dailyDemandStdDev, leadTimeDays float64) float64 {
	if z <= 0 || dailyDemandStdDev <= 0 || leadTimeDays <= 0 {
		return 0
	}
	return z * dailyDemandStdDev * math.Sqrt(leadTimeDays)
}

// ReorderPoint is d * L + safety stock
func ReorderPoint(avgDailyDemand, leadTimeDays, safetyStock float64) float64 {
	if avgDailyDemand < 0 || leadTimeDays < 0 {
		return math.Max(safetyStock, 0)
	}
	return avgDailyDemand*leadTimeDays + math.Max(safetyStock, 0)
}

// DemandStats summarizes a series of daily demand samples
type DemandStats struct {
	Days   int
	Mean   float64
	StdDev float64
	Total  float64
}

// Summarize computes the mean and sample standard deviation of daily demand
func Summarize(daily []float64) DemandStats {
	n := len(daily)
	if n == 0 {
		return DemandStats{}
	}
	var total float64
	for _, d := range daily {
		total += d
	}
	mean := total / float64(n)

	var sq float64
	for _, d := range daily {
		sq += (d - mean) * (d - mean)
	}
	std := 0.0
	if n > 1 {
		std = math.Sqrt(sq / float64(n-1))
	}
	return DemandStats{Days: n, Mean: mean, StdDev: std, Total: total}
}

// Plan is the full recommendation for one item
type Plan struct {
	EOQ          float64 `json:"eoq"`
	SafetyStock  float64 `json:"safety_stock"`
	ReorderPoint float64 `json:"reorder_point"`
}

// Params are the inputs that do not come from sales history
type Params struct {
	LeadTimeDays float64
	ServiceLevel float64
	OrderCost    float64
	HoldingCost  float64
}

// Compute derives a Plan from daily demand samples
func Compute(daily []float64, p Params) Plan {
	stats := Summarize(daily)
	z, ok := ServiceLevelZ[p.ServiceLevel]
	if !ok {
		z = ServiceLevelZ[0.95]
	}
	ss := SafetyStock(z, stats.StdDev, p.LeadTimeDays)
	return Plan{
		EOQ:          EOQ(stats.Mean*365, p.OrderCost, p.HoldingCost),
		SafetyStock:  ss,
		ReorderPoint: ReorderPoint(stats.Mean, p.LeadTimeDays, ss),
	}
}
