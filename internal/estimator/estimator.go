// Package estimator applies the minimum-billable-time floor and
// price-rounding rules that turn a parsed print duration into a price.
package estimator

import "math"

// billableFloorHours is the minimum billable duration regardless of how
// short the actual print is.
const billableFloorHours = 0.25

// priceGranularityHUF is the currency unit the final price is snapped up to.
const priceGranularityHUF = 10

// BillableHours applies the 15-minute floor to a raw print duration.
func BillableHours(printTimeSeconds int) float64 {
	return math.Max(float64(printTimeSeconds)/3600, billableFloorHours)
}

// EstimatePriceHUF computes ceil_to_10(billable_hours * hourly_rate).
func EstimatePriceHUF(printTimeSeconds int, hourlyRateHUF int) int {
	raw := BillableHours(printTimeSeconds) * float64(hourlyRateHUF)
	return CeilToGranularity(raw, priceGranularityHUF)
}

// CeilToGranularity rounds value up to the next multiple of granularity.
func CeilToGranularity(value float64, granularity int) int {
	return int(math.Ceil(value/float64(granularity))) * granularity
}
