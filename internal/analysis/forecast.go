package analysis

import "time"

// Forecast fits a least-squares line to the trailing defined smoothed
// samples and projects it horizon steps forward with horizon-dependent
// damping. The returned slice leads with an anchor point duplicating
// the last smoothed value at its own timestamp, so a rendered forecast
// line connects to the history without a gap; the anchor is not counted
// in horizon.
//
// Fewer than five defined smoothed values yields an empty slice: there
// is not enough history to fit a trend. horizon must be >= 1.
//
// Projected timestamps advance at the interval observed between the
// last two fit-window samples. Irregularly spaced input is projected at
// that fixed interval regardless; a known approximation.
func Forecast(smoothed []SmoothedSample, horizon int, cfg Config) []ForecastPoint {
	defined := definedOnly(smoothed)
	if len(defined) < minDefined {
		return nil
	}

	fit := defined
	if len(fit) > fitWindow {
		fit = fit[len(fit)-fitWindow:]
	}
	n := len(fit)

	slope, intercept := fitLine(fit)

	last := fit[n-1]
	interval := last.Timestamp.Sub(fit[n-2].Timestamp)

	out := make([]ForecastPoint, 0, horizon+1)
	out = append(out, ForecastPoint{Timestamp: last.Timestamp, Value: *last.Smoothed})

	for k := 1; k <= horizon; k++ {
		damping := 1 - float64(k)*cfg.DampingStep
		if damping < cfg.DampingFloor {
			damping = cfg.DampingFloor
		}
		v := slope*damping*float64(n-1+k) + intercept
		if v < 0 {
			v = 0
		}
		out = append(out, ForecastPoint{
			Timestamp: last.Timestamp.Add(interval * time.Duration(k)),
			Value:     v,
		})
	}
	return out
}

// fitLine computes ordinary least squares over the fit window, with x
// as the 0-based position within the window rather than wall-clock time.
func fitLine(fit []SmoothedSample) (slope, intercept float64) {
	n := float64(len(fit))
	var sumX, sumY, sumXY, sumXX float64
	for i, s := range fit {
		x := float64(i)
		y := *s.Smoothed
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}
	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		return 0, sumY / n
	}
	slope = (n*sumXY - sumX*sumY) / denom
	intercept = (sumY - slope*sumX) / n
	return slope, intercept
}
