// Package analysis implements the trend-analysis pipeline for
// partial-discharge signal series: trailing moving-average smoothing,
// inflection detection against an adaptively tracked baseline, and a
// damped linear-regression forecast.
//
// All functions are pure: same input yields the same output, and
// degenerate inputs (empty series, insufficient history) yield
// degenerate outputs rather than errors.
package analysis

import "time"

// RawSample is one measurement extracted from a richer sample point for
// a single channel/metric selection. Series are ordered by timestamp,
// ascending.
type RawSample struct {
	Timestamp time.Time
	Value     float64
}

// SmoothedSample pairs a raw value with its trailing moving average.
// Smoothed is nil for the first windowSize-1 samples, where there is
// not enough preceding history to fill a window.
type SmoothedSample struct {
	Timestamp time.Time
	Original  float64
	Smoothed  *float64
}

// ForecastPoint is one projected value beyond the end of the observed
// series.
type ForecastPoint struct {
	Timestamp time.Time
	Value     float64
}

// Config carries the tunable constants of the pipeline. The zero value
// is not usable; start from DefaultConfig.
type Config struct {
	// WindowSize is the moving-average window in samples. Must be >= 1;
	// callers are responsible for enforcing this.
	WindowSize int

	// StabilityBand is the half-width, in signal units, inside which a
	// sample is considered part of the current regime and folded into
	// the baseline.
	StabilityBand float64

	// JumpThreshold is how far above the baseline a smoothed value must
	// rise to register an inflection.
	JumpThreshold float64

	// BaselineDecay is the weight kept from the previous baseline when
	// folding in a stable sample: baseline = baseline*decay + value*(1-decay).
	BaselineDecay float64

	// ForecastHorizon is the number of projected points. Must be >= 1.
	ForecastHorizon int

	// DampingFloor and DampingStep shape the horizon-dependent slope
	// shrinkage: damping at step k is max(DampingFloor, 1-k*DampingStep).
	DampingFloor float64
	DampingStep  float64
}

// minDefined is the minimum number of defined smoothed values required
// before the detector or forecaster will produce a result. Short series
// are too noisy to act on.
const minDefined = 5

// fitWindow is the number of trailing defined samples used for the
// regression fit. Fixed regardless of series length: the forecast
// tracks the most recent trend only.
const fitWindow = 5

func DefaultConfig() Config {
	return Config{
		WindowSize:      5,
		StabilityBand:   2.0,
		JumpThreshold:   6.0,
		BaselineDecay:   0.8,
		ForecastHorizon: 6,
		DampingFloor:    0.5,
		DampingStep:     0.1,
	}
}
