// Package simulate generates the mock measurement data the service runs
// on: per-device sample histories with configurable trend patterns, and
// phase-resolved discharge patterns for the diagnosis view. Everything
// is seeded and deterministic so that repeated runs (and tests) see the
// same fleet.
package simulate

import (
	"database/sql"
	"hash/fnv"
	"math"
	"math/rand"
	"time"

	"github.com/substationlabs/pdwatch/internal/analysis"
	"github.com/substationlabs/pdwatch/internal/models"
)

const (
	historyDays    = 90
	sampleInterval = time.Hour
	historyPoints  = historyDays * 24

	// Fraction of the history at which the "inflection" pattern steps
	// up. At 70% of a 90-day window the step lands on day 63.
	inflectionAt = 0.7
	jumpDB       = 11.0
	noiseDB      = 2.0
)

// Range maps a named query range onto a point count and sampling step.
// Ranges are served by decimating the stored hourly history.
type Range struct {
	Points int
	Step   time.Duration
}

var ranges = map[string]Range{
	"24h": {Points: 24, Step: time.Hour},
	"30d": {Points: 30, Step: 24 * time.Hour},
	"90d": {Points: 90, Step: 24 * time.Hour},
}

func LookupRange(name string) (Range, bool) {
	r, ok := ranges[name]
	return r, ok
}

// Channels lists the detection channels every device samples.
func Channels() []string { return []string{"uhf", "tev", "ae"} }

// Metrics lists the per-channel measurements.
func Metrics() []string { return []string{"amplitude", "frequency"} }

func ValidChannel(c string) bool {
	for _, ch := range Channels() {
		if c == ch {
			return true
		}
	}
	return false
}

func ValidMetric(m string) bool {
	for _, mm := range Metrics() {
		if m == mm {
			return true
		}
	}
	return false
}

// channelBase holds the resting level each channel hovers around.
// Amplitudes in dB, frequencies in MHz (UHF), kHz otherwise.
var channelBase = map[string]struct{ amp, freq float64 }{
	"uhf": {amp: 15, freq: 600},
	"tev": {amp: 12, freq: 30},
	"ae":  {amp: 8, freq: 150},
}

// Generator produces deterministic sample histories. The same seed and
// device always yield the same series.
type Generator struct {
	seed int64
}

func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed}
}

// deviceSeed mixes the generator seed with the device ID so that
// devices in the same fleet do not share a noise sequence.
func (g *Generator) deviceSeed(deviceID string) int64 {
	h := fnv.New64a()
	h.Write([]byte(deviceID))
	return g.seed ^ int64(h.Sum64())
}

// History generates the full 90-day hourly sample history for a device,
// ending at now truncated to the hour. The device's Pattern field picks
// the amplitude trend shape.
func (g *Generator) History(device models.Device, now time.Time) []models.Sample {
	rng := rand.New(rand.NewSource(g.deviceSeed(device.DeviceID)))
	end := now.UTC().Truncate(sampleInterval)
	start := end.Add(-time.Duration(historyPoints-1) * sampleInterval)

	samples := make([]models.Sample, 0, historyPoints)
	for i := 0; i < historyPoints; i++ {
		ts := start.Add(time.Duration(i) * sampleInterval)
		progress := float64(i) / float64(historyPoints-1)
		lift := patternLift(device.Pattern, progress)

		sm := models.Sample{
			DeviceID:  device.DeviceID,
			SampledAt: ts,
		}
		sm.UHFAmplitude = value(channelBase["uhf"].amp+lift, noiseDB, rng)
		sm.UHFFrequency = value(channelBase["uhf"].freq, 20, rng)
		sm.TEVAmplitude = value(channelBase["tev"].amp+lift, noiseDB, rng)
		sm.TEVFrequency = value(channelBase["tev"].freq, 2, rng)
		sm.AEAmplitude = value(channelBase["ae"].amp+lift, noiseDB, rng)
		sm.AEFrequency = value(channelBase["ae"].freq, 8, rng)

		hour := float64(ts.Hour())
		sm.Temperature = value(22+6*math.Sin(2*math.Pi*(hour-9)/24), 1, rng)
		sm.Humidity = value(55-10*math.Sin(2*math.Pi*(hour-9)/24), 4, rng)
		samples = append(samples, sm)
	}
	return samples
}

// patternLift is the amplitude offset, in dB, the trend pattern adds at
// a given position in the history.
func patternLift(pattern string, progress float64) float64 {
	switch pattern {
	case "rising":
		// Slow ramp that stays inside the detector's stability band.
		return 4 * progress
	case "inflection":
		if progress >= inflectionAt {
			return jumpDB
		}
		return 0
	default: // "stable"
		return 0
	}
}

func value(center, noise float64, rng *rand.Rand) sql.NullFloat64 {
	v := center + (rng.Float64()*2-1)*noise
	if v < 0 {
		v = 0
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

// Decimate reduces an hourly history to a named range: the trailing
// Points samples spaced Step apart. Shorter histories yield fewer
// points rather than an error.
func Decimate(samples []models.Sample, r Range) []models.Sample {
	stride := int(r.Step / sampleInterval)
	if stride < 1 {
		stride = 1
	}
	out := make([]models.Sample, 0, r.Points)
	for k := r.Points - 1; k >= 0; k-- {
		idx := len(samples) - 1 - k*stride
		if idx < 0 {
			continue
		}
		out = append(out, samples[idx])
	}
	return out
}

// ExtractSeries pulls one channel/metric column out of sample rows as a
// raw analysis series. Rows where the column is NULL are skipped.
func ExtractSeries(samples []models.Sample, channel, metric string) []analysis.RawSample {
	out := make([]analysis.RawSample, 0, len(samples))
	for _, sm := range samples {
		var v sql.NullFloat64
		switch channel + "/" + metric {
		case "uhf/amplitude":
			v = sm.UHFAmplitude
		case "uhf/frequency":
			v = sm.UHFFrequency
		case "tev/amplitude":
			v = sm.TEVAmplitude
		case "tev/frequency":
			v = sm.TEVFrequency
		case "ae/amplitude":
			v = sm.AEAmplitude
		case "ae/frequency":
			v = sm.AEFrequency
		}
		if !v.Valid {
			continue
		}
		out = append(out, analysis.RawSample{Timestamp: sm.SampledAt, Value: v.Float64})
	}
	return out
}
