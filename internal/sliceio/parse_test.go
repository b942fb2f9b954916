package sliceio

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseDurationExpressionVariants(t *testing.T) {
	cases := map[string]int{
		"1h 30m":       5400,
		"90":           90,
		"1d 2h 3m 4s":  93784,
		"":             0,
	}
	for expr, want := range cases {
		got, err := ParseDurationExpression(expr)
		require.NoError(t, err, expr)
		require.Equal(t, want, got, expr)
	}
}

func TestParseFDMGCodePrefersM73(t *testing.T) {
	gcode := "M73 P0 R90\n; estimated printing time = 1h 0m\n; filament used [mm] = 12450\n"
	seconds, filament, err := ParseFDMGCode(gcode)
	require.NoError(t, err)
	require.Equal(t, 90*60, seconds)
	require.InDelta(t, 12.45, filament, 1e-9)
}

func TestParseFDMGCodeFallsBackToEstimatedTime(t *testing.T) {
	gcode := "; estimated printing time = 1h 30m\n; filament used [mm] = 12450\n"
	seconds, filament, err := ParseFDMGCode(gcode)
	require.NoError(t, err)
	require.Equal(t, 5400, seconds)
	require.InDelta(t, 12.45, filament, 1e-9)
}

func TestEstimateSLASeconds(t *testing.T) {
	got := EstimateSLASeconds(8.5, 0.05)
	require.Equal(t, 1990, got)
}

func TestReadableFormat(t *testing.T) {
	require.Equal(t, "1h 30m ", Readable(5400, ""))
	require.Equal(t, "0h 33m (Est.)", Readable(1990, "(Est.)"))
}
