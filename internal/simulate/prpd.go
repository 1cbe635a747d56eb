package simulate

import (
	"hash/fnv"
	"math"
	"math/rand"
	"sort"

	"github.com/substationlabs/pdwatch/internal/models"
)

// DischargeTypes lists the diagnosis patterns the PRPD view can render.
func DischargeTypes() []string {
	return []string{"internal", "surface", "corona", "floating"}
}

func ValidDischargeType(t string) bool {
	for _, dt := range DischargeTypes() {
		if t == dt {
			return true
		}
	}
	return false
}

// cluster is one pulse cloud on the phase axis: pulses scatter normally
// around (phase, amp) with the given spreads.
type cluster struct {
	phase, phaseSpread float64
	amp, ampSpread     float64
	pulses             int
	maxCount           int
}

// Signatures follow the textbook shapes: internal discharge shows
// symmetric clouds on both rising slopes, surface discharge broad
// asymmetric clouds, corona a tight cloud at the negative voltage peak,
// floating-potential discharge narrow bands at fixed phase windows.
var dischargeClusters = map[string][]cluster{
	"internal": {
		{phase: 45, phaseSpread: 20, amp: 32, ampSpread: 6, pulses: 220, maxCount: 8},
		{phase: 225, phaseSpread: 20, amp: 30, ampSpread: 6, pulses: 220, maxCount: 8},
	},
	"surface": {
		{phase: 60, phaseSpread: 35, amp: 28, ampSpread: 10, pulses: 260, maxCount: 6},
		{phase: 240, phaseSpread: 35, amp: 18, ampSpread: 8, pulses: 160, maxCount: 6},
	},
	"corona": {
		{phase: 270, phaseSpread: 12, amp: 12, ampSpread: 2, pulses: 320, maxCount: 14},
	},
	"floating": {
		{phase: 90, phaseSpread: 5, amp: 40, ampSpread: 1.5, pulses: 140, maxCount: 10},
		{phase: 270, phaseSpread: 5, amp: 38, ampSpread: 1.5, pulses: 140, maxCount: 10},
	},
}

// PRPD generates a phase-resolved pulse cloud for a device and
// discharge type. Deterministic for a given generator seed, device and
// type; unknown types yield nil. Pulses come back sorted by phase.
func (g *Generator) PRPD(deviceID, dischargeType string) []models.PRPDPulse {
	clusters, ok := dischargeClusters[dischargeType]
	if !ok {
		return nil
	}

	h := fnv.New64a()
	h.Write([]byte(dischargeType))
	rng := rand.New(rand.NewSource(g.deviceSeed(deviceID) ^ int64(h.Sum64())))

	var pulses []models.PRPDPulse
	for _, c := range clusters {
		for i := 0; i < c.pulses; i++ {
			phase := math.Mod(c.phase+rng.NormFloat64()*c.phaseSpread, 360)
			if phase < 0 {
				phase += 360
			}
			amp := c.amp + rng.NormFloat64()*c.ampSpread
			if amp < 0 {
				amp = 0
			}
			pulses = append(pulses, models.PRPDPulse{
				PhaseDeg:    phase,
				AmplitudeDB: amp,
				Count:       1 + rng.Intn(c.maxCount),
			})
		}
	}

	sort.Slice(pulses, func(i, j int) bool { return pulses[i].PhaseDeg < pulses[j].PhaseDeg })
	return pulses
}
