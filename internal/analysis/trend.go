package analysis

import "time"

// TrendPoint is one entry of the combined chartable sequence. History
// entries carry Original and (once the window fills) Smoothed; forecast
// entries carry Forecast only. The last history entry also carries
// Forecast equal to its own smoothed value so the rendered forecast
// line connects to the history without a gap.
type TrendPoint struct {
	Timestamp time.Time `json:"timestamp"`
	Original  *float64  `json:"original,omitempty"`
	Smoothed  *float64  `json:"smoothed,omitempty"`
	Forecast  *float64  `json:"forecast,omitempty"`
}

// TrendResult is the display-ready output of one analysis run.
type TrendResult struct {
	Points        []TrendPoint `json:"points"`
	Inflection    *time.Time   `json:"inflection,omitempty"`
	ForecastStart *time.Time   `json:"forecast_start,omitempty"`
}

// BuildTrendSeries runs the full pipeline over a raw series: smoothing,
// inflection detection and forecasting, merged into one ordered
// sequence for charting. Detection and forecasting operate on the
// smoothed series independently.
func BuildTrendSeries(series []RawSample, cfg Config) TrendResult {
	smoothed := Smooth(series, cfg.WindowSize)

	result := TrendResult{
		Points:     make([]TrendPoint, 0, len(smoothed)+cfg.ForecastHorizon),
		Inflection: DetectInflection(smoothed, cfg),
	}

	for _, s := range smoothed {
		orig := s.Original
		result.Points = append(result.Points, TrendPoint{
			Timestamp: s.Timestamp,
			Original:  &orig,
			Smoothed:  s.Smoothed,
		})
	}

	forecast := Forecast(smoothed, cfg.ForecastHorizon, cfg)
	if len(forecast) == 0 {
		return result
	}

	// The anchor point shares the last history timestamp; stamp that
	// entry instead of appending a duplicate.
	anchor := forecast[0]
	boundary := &result.Points[len(result.Points)-1]
	v := anchor.Value
	boundary.Forecast = &v

	for _, fp := range forecast[1:] {
		fv := fp.Value
		result.Points = append(result.Points, TrendPoint{
			Timestamp: fp.Timestamp,
			Forecast:  &fv,
		})
	}

	if len(forecast) > 1 {
		ts := forecast[1].Timestamp
		result.ForecastStart = &ts
	}
	return result
}
