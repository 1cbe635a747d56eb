package analysis

import (
	"math"
	"time"
)

// DetectInflection scans a smoothed series for the first sudden jump
// relative to an adaptively tracked baseline and returns its timestamp,
// or nil if no jump is found.
//
// The baseline starts at the first defined smoothed value. Samples
// within the stability band fold into the baseline exponentially, so it
// tracks slow drift without following a step change. A sample rising
// more than the jump threshold above the baseline is the inflection;
// only the first qualifying sample is reported.
//
// Fewer than five defined smoothed values yields nil: short series are
// all noise.
func DetectInflection(smoothed []SmoothedSample, cfg Config) *time.Time {
	defined := definedOnly(smoothed)
	if len(defined) < minDefined {
		return nil
	}

	baseline := *defined[0].Smoothed
	for _, s := range defined[1:] {
		v := *s.Smoothed
		if v-baseline > cfg.JumpThreshold {
			ts := s.Timestamp
			return &ts
		}
		if math.Abs(v-baseline) < cfg.StabilityBand {
			baseline = baseline*cfg.BaselineDecay + v*(1-cfg.BaselineDecay)
		}
	}
	return nil
}

func definedOnly(smoothed []SmoothedSample) []SmoothedSample {
	defined := make([]SmoothedSample, 0, len(smoothed))
	for _, s := range smoothed {
		if s.Smoothed != nil {
			defined = append(defined, s)
		}
	}
	return defined
}
