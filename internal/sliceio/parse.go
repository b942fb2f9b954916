// Package sliceio parses slicer gcode output into normalized print
// statistics, estimates SLA print time from layer count, and formats seconds
// into the readable "{h}h {m}m " form.
package sliceio

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	errors "github.com/Laisky/errors/v2"
)

var (
	m73Pattern           = regexp.MustCompile(`M73\s+P0\s+R(\d+)`)
	estimatedTimePattern = regexp.MustCompile(`;\s*estimated printing time\s*=\s*(.+)`)
	filamentUsedPattern  = regexp.MustCompile(`;\s*filament used \[mm\]\s*=\s*([\d.]+)`)
	durationTokenPattern = regexp.MustCompile(`(\d+)\s*([dhms])`)
)

// ParseFDMGCode extracts print time (seconds) and filament length (meters)
// from gcode text. Either value may be zero if the corresponding marker is
// absent.
func ParseFDMGCode(gcode string) (printTimeSeconds int, filamentUsedM float64, err error) {
	if m := m73Pattern.FindStringSubmatch(gcode); m != nil {
		minutes, convErr := strconv.Atoi(m[1])
		if convErr != nil {
			return 0, 0, errors.Wrap(convErr, "parse M73 minutes")
		}
		printTimeSeconds = minutes * 60
	} else if m := estimatedTimePattern.FindStringSubmatch(gcode); m != nil {
		seconds, parseErr := ParseDurationExpression(strings.TrimSpace(m[1]))
		if parseErr != nil {
			return 0, 0, parseErr
		}
		printTimeSeconds = seconds
	}

	if m := filamentUsedPattern.FindStringSubmatch(gcode); m != nil {
		mm, convErr := strconv.ParseFloat(m[1], 64)
		if convErr != nil {
			return 0, 0, errors.Wrap(convErr, "parse filament used mm")
		}
		filamentUsedM = mm / 1000
	}

	return printTimeSeconds, filamentUsedM, nil
}

// ParseDurationExpression parses the grammar "<int>d? <int>h? <int>m? <int>s?"
// (whitespace-tolerant). A bare integer with no unit suffix is interpreted
// as seconds, per the frozen contract in spec §9.
func ParseDurationExpression(expr string) (int, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return 0, nil
	}

	if n, err := strconv.Atoi(expr); err == nil {
		return n, nil
	}

	matches := durationTokenPattern.FindAllStringSubmatch(expr, -1)
	if len(matches) == 0 {
		return 0, errors.Errorf("unparseable duration expression: %q", expr)
	}

	total := 0
	for _, m := range matches {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return 0, errors.Wrapf(err, "parse duration token %q", m[0])
		}
		switch m[2] {
		case "d":
			total += n * 86400
		case "h":
			total += n * 3600
		case "m":
			total += n * 60
		case "s":
			total += n
		}
	}

	return total, nil
}

// EstimateSLASeconds computes the layer-based estimate used when the SLA
// slicer emits no usable print time.
func EstimateSLASeconds(objectHeightMM, layerHeightMM float64) int {
	effectiveLayerHeight := math.Max(layerHeightMM, 0.025)
	layers := math.Ceil(objectHeightMM / effectiveLayerHeight)
	return 120 + int(layers)*11
}

// Readable formats seconds as "{h}h {m}m " (with a trailing space) using
// integer floor division, then appends suffix verbatim (e.g. "(Est.)" for
// estimates, giving "0h 33m (Est.)").
func Readable(seconds int, suffix string) string {
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m " + suffix
}
