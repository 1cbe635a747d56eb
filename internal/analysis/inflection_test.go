package analysis

import (
	"testing"
	"time"
)

// smoothedSeries builds a fully defined smoothed series for feeding the
// detector and forecaster directly.
func smoothedSeries(start time.Time, step time.Duration, values ...float64) []SmoothedSample {
	out := make([]SmoothedSample, len(values))
	for i, v := range values {
		sv := v
		out[i] = SmoothedSample{
			Timestamp: start.Add(step * time.Duration(i)),
			Original:  v,
			Smoothed:  &sv,
		}
	}
	return out
}

func TestDetectInflection_Jump(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := smoothedSeries(start, time.Hour,
		15, 15, 15, 15, 15, 26, 26, 26)

	got := DetectInflection(series, DefaultConfig())
	if got == nil {
		t.Fatal("DetectInflection = nil, want timestamp of first jump sample")
	}
	want := series[5].Timestamp
	if !got.Equal(want) {
		t.Errorf("DetectInflection = %v, want %v", got, want)
	}
}

func TestDetectInflection_FlatSeries(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for _, n := range []int{5, 20, 100} {
		values := make([]float64, n)
		for i := range values {
			values[i] = 15.0
		}
		series := smoothedSeries(start, time.Hour, values...)
		if got := DetectInflection(series, DefaultConfig()); got != nil {
			t.Errorf("flat series of %d samples: DetectInflection = %v, want nil", n, got)
		}
	}
}

// A slow drift that stays within the baseline's tracking capacity must
// never fire, however long it runs. With the 0.8/0.2 fold the baseline
// lags a sustained drift of d units per step by 5d at steady state, so
// d=0.3 settles at a 1.5-unit lag, inside the 2.0 stability band.
func TestDetectInflection_SlowDriftNeverTriggers(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	values := make([]float64, 100)
	for i := range values {
		values[i] = 15.0 + 0.3*float64(i)
	}
	series := smoothedSeries(start, time.Hour, values...)

	if got := DetectInflection(series, DefaultConfig()); got != nil {
		t.Errorf("drifting series: DetectInflection = %v, want nil", got)
	}
}

func TestDetectInflection_TooFewDefined(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := smoothedSeries(start, time.Hour, 15, 15, 26, 26)
	if got := DetectInflection(series, DefaultConfig()); got != nil {
		t.Errorf("4 defined samples: DetectInflection = %v, want nil", got)
	}

	// Undefined entries don't count toward the minimum.
	series = smoothedSeries(start, time.Hour, 15, 15, 26, 26)
	series = append([]SmoothedSample{
		{Timestamp: start.Add(-2 * time.Hour), Original: 15},
		{Timestamp: start.Add(-time.Hour), Original: 15},
	}, series...)
	if got := DetectInflection(series, DefaultConfig()); got != nil {
		t.Errorf("4 defined + 2 undefined: DetectInflection = %v, want nil", got)
	}
}

func TestDetectInflection_FirstEventOnly(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := smoothedSeries(start, time.Hour,
		15, 15, 15, 15, 15, 26, 15, 15, 15, 40)

	got := DetectInflection(series, DefaultConfig())
	if got == nil {
		t.Fatal("DetectInflection = nil, want first jump timestamp")
	}
	if want := series[5].Timestamp; !got.Equal(want) {
		t.Errorf("DetectInflection = %v, want first event at %v", got, want)
	}
}

func TestDetectInflection_DropIgnored(t *testing.T) {
	// The jump threshold is one-sided: a sudden drop is not an event.
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := smoothedSeries(start, time.Hour,
		26, 26, 26, 26, 26, 12, 12, 12)

	if got := DetectInflection(series, DefaultConfig()); got != nil {
		t.Errorf("sudden drop: DetectInflection = %v, want nil", got)
	}
}
