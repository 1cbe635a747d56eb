package analysis

import (
	"testing"
	"time"
)

func rawSeries(start time.Time, step time.Duration, values ...float64) []RawSample {
	out := make([]RawSample, len(values))
	for i, v := range values {
		out[i] = RawSample{Timestamp: start.Add(step * time.Duration(i)), Value: v}
	}
	return out
}

func TestSmooth_TrailingMean(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := rawSeries(start, time.Hour, 1, 2, 3, 4, 5, 6)

	out := Smooth(series, 3)
	if len(out) != len(series) {
		t.Fatalf("len(out) = %d, want %d", len(out), len(series))
	}

	for i := 0; i < 2; i++ {
		if out[i].Smoothed != nil {
			t.Errorf("out[%d].Smoothed = %v, want nil (window not filled)", i, *out[i].Smoothed)
		}
	}

	want := []float64{2, 3, 4, 5}
	for i, w := range want {
		got := out[i+2].Smoothed
		if got == nil {
			t.Fatalf("out[%d].Smoothed = nil, want %v", i+2, w)
		}
		if *got != w {
			t.Errorf("out[%d].Smoothed = %v, want %v", i+2, *got, w)
		}
	}
}

func TestSmooth_Passthrough(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := rawSeries(start, time.Hour, 15.2, 14.8, 16.1, 15.5, 15.9)

	out := Smooth(series, 5)
	for i := range series {
		if out[i].Original != series[i].Value {
			t.Errorf("out[%d].Original = %v, want %v", i, out[i].Original, series[i].Value)
		}
		if !out[i].Timestamp.Equal(series[i].Timestamp) {
			t.Errorf("out[%d].Timestamp = %v, want %v", i, out[i].Timestamp, series[i].Timestamp)
		}
	}
}

func TestSmooth_Empty(t *testing.T) {
	out := Smooth(nil, 5)
	if len(out) != 0 {
		t.Errorf("len(out) = %d, want 0", len(out))
	}
}

func TestSmooth_WindowOne(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := rawSeries(start, time.Hour, 3, 9, 27)

	out := Smooth(series, 1)
	for i := range series {
		if out[i].Smoothed == nil || *out[i].Smoothed != series[i].Value {
			t.Errorf("out[%d].Smoothed = %v, want %v", i, out[i].Smoothed, series[i].Value)
		}
	}
}

func TestSmooth_WindowLongerThanSeries(t *testing.T) {
	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	series := rawSeries(start, time.Hour, 1, 2, 3)

	out := Smooth(series, 5)
	for i := range out {
		if out[i].Smoothed != nil {
			t.Errorf("out[%d].Smoothed = %v, want nil", i, *out[i].Smoothed)
		}
	}
}
