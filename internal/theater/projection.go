package theater

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// MaxOffsetHours is the far end of the COP time slider.
const MaxOffsetHours = 48

// Trend samples are read as eight-hour intervals.
const trendStepHours = 8.0

// noiseAmplitude bounds the jitter added to a projection, in percentage points.
const noiseAmplitude = 4.0

// Projector extrapolates logistics gauges along the COP time slider.
// Projections are deterministic for a given seed.
type Projector struct {
	noise opensimplex.Noise
}

// NewProjector creates a projector seeded for repeatable output.
func NewProjector(seed int64) *Projector {
	return &Projector{noise: opensimplex.New(seed)}
}

// Project returns the gauges as expected hours from now. Hours are clamped to
// [0, MaxOffsetHours]; at 0 the input is returned unchanged. The projected
// value is appended to each trend.
func (p *Projector) Project(items []LogisticsStatus, hours int) []LogisticsStatus {
	hours = max(0, min(hours, MaxOffsetHours))
	out := make([]LogisticsStatus, len(items))
	for i, item := range items {
		item.Trend = append([]int(nil), item.Trend...)
		if hours == 0 {
			out[i] = item
			continue
		}

		steps := float64(hours) / trendStepHours
		projected := float64(item.Value) + slope(item.Trend)*steps
		// Noise grows with distance from now; near-term projections stay close to the slope.
		n := p.noise.Eval2(float64(i)*7.3, float64(hours)/12.0)
		projected += n * noiseAmplitude * math.Min(1, steps)

		item.Value = clampPercent(projected)
		item.Trend = append(item.Trend, item.Value)
		out[i] = item
	}
	return out
}

// slope is the mean change per sample across the trend.
func slope(trend []int) float64 {
	if len(trend) < 2 {
		return 0
	}
	return float64(trend[len(trend)-1]-trend[0]) / float64(len(trend)-1)
}

func clampPercent(v float64) int {
	return int(math.Round(math.Max(0, math.Min(100, v))))
}
