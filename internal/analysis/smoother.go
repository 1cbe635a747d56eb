package analysis

// Smooth computes a trailing simple moving average over series. The
// output has the same length and timestamps as the input; the first
// window-1 entries have a nil Smoothed value. Original always carries
// the raw value through for charting the raw/smoothed overlay.
//
// window must be >= 1.
func Smooth(series []RawSample, window int) []SmoothedSample {
	out := make([]SmoothedSample, len(series))
	var sum float64
	for i, s := range series {
		out[i] = SmoothedSample{Timestamp: s.Timestamp, Original: s.Value}

		sum += s.Value
		if i >= window {
			sum -= series[i-window].Value
		}
		if i >= window-1 {
			avg := sum / float64(window)
			out[i].Smoothed = &avg
		}
	}
	return out
}
