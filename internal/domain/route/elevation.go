package route

import (
	"math"

	"github.com/yanqian/accessroute/internal/domain/geo"
)

// ElevationConfig parameterizes the synthetic display profile.
type ElevationConfig struct {
	Base      float64
	Amplitude float64
	Frequency float64
}

// Profile derives base + amplitude*sin(i*frequency) for every path index, paired with
// the cumulative distance to that point. It is display data only.
func (c ElevationConfig) Profile(path []geo.Point) []ElevationSample {
	if len(path) == 0 {
		return nil
	}
	samples := make([]ElevationSample, len(path))
	var travelled float64
	for i, p := range path {
		if i > 0 {
			travelled += geo.Distance(path[i-1], p)
		}
		samples[i] = ElevationSample{
			Distance:  travelled,
			Elevation: c.Base + c.Amplitude*math.Sin(float64(i)*c.Frequency),
		}
	}
	return samples
}
