package estimator

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBillableHoursFloor(t *testing.T) {
	require.Equal(t, 0.25, BillableHours(0))
	require.Equal(t, 0.25, BillableHours(60))
	require.InDelta(t, 1.5, BillableHours(5400), 1e-9)
}

func TestEstimatePriceHUFFDMScenario(t *testing.T) {
	require.Equal(t, 1350, EstimatePriceHUF(5400, 900))
}

func TestEstimatePriceHUFSLAScenario(t *testing.T) {
	require.Equal(t, 1000, EstimatePriceHUF(1990, 1800))
}

func TestCeilToGranularityDivisibleAndAtLeastRaw(t *testing.T) {
	for _, raw := range []float64{0, 1, 9, 10, 10.1, 995.4, 1350} {
		got := CeilToGranularity(raw, 10)
		require.Zero(t, got%10)
		require.GreaterOrEqual(t, float64(got), raw)
	}
}
