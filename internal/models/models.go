package models

import (
	"database/sql"
	"time"
)

type Project struct {
	ProjectID string
	Name      string
	Region    string
	CreatedAt time.Time
}

type Device struct {
	DeviceID  string
	ProjectID string
	Name      string
	Kind      string // "switchgear", "transformer", "cable_joint"
	Location  string
	Status    string // "normal", "attention", "warning"
	Pattern   string // simulated trend shape: "stable", "rising", "inflection"
	Active    bool
}

// Sample is one measurement point for a device: amplitude and frequency
// per detection channel, plus ambient temperature and humidity.
type Sample struct {
	ID           int64
	DeviceID     string
	SampledAt    time.Time
	UHFAmplitude sql.NullFloat64
	UHFFrequency sql.NullFloat64
	TEVAmplitude sql.NullFloat64
	TEVFrequency sql.NullFloat64
	AEAmplitude  sql.NullFloat64
	AEFrequency  sql.NullFloat64
	Temperature  sql.NullFloat64
	Humidity     sql.NullFloat64
	CreatedAt    time.Time
}

type Alert struct {
	ID         int64
	DeviceID   string
	Channel    string
	Metric     string
	DetectedAt time.Time
	Level      string // "warning", "critical"
	Message    string
	CreatedAt  time.Time
}

// PRPDPulse is one bin of a phase-resolved partial-discharge pattern:
// discharge activity at a given phase angle and amplitude.
type PRPDPulse struct {
	PhaseDeg    float64 `json:"phase_deg"`
	AmplitudeDB float64 `json:"amplitude_db"`
	Count       int     `json:"count"`
}
