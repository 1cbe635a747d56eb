package api

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/substationlabs/pdwatch/internal/analysis"
	"github.com/substationlabs/pdwatch/internal/models"
	"github.com/substationlabs/pdwatch/internal/simulate"
)

type projectSummary struct {
	ProjectID   string    `json:"project_id"`
	Name        string    `json:"name"`
	Region      string    `json:"region"`
	DeviceCount int       `json:"device_count"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	projects, err := s.store.GetProjects()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	counts, err := s.store.CountDevicesByProject()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]projectSummary, 0, len(projects))
	for _, p := range projects {
		out = append(out, projectSummary{
			ProjectID:   p.ProjectID,
			Name:        p.Name,
			Region:      p.Region,
			DeviceCount: counts[p.ProjectID],
			CreatedAt:   p.CreatedAt,
		})
	}
	writeJSON(w, out)
}

type deviceSummary struct {
	DeviceID   string     `json:"device_id"`
	ProjectID  string     `json:"project_id"`
	Name       string     `json:"name"`
	Kind       string     `json:"kind"`
	Location   string     `json:"location"`
	Status     string     `json:"status"`
	LastSample *time.Time `json:"last_sample,omitempty"`
	AlertCount int        `json:"alert_count"`
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	var devices []models.Device
	var err error
	if project := r.URL.Query().Get("project"); project != "" {
		devices, err = s.store.GetDevicesByProject(project)
	} else {
		devices, err = s.store.GetActiveDevices()
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	alertCounts, err := s.store.CountAlertsByDevice()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]deviceSummary, 0, len(devices))
	for _, d := range devices {
		ds := deviceSummary{
			DeviceID:   d.DeviceID,
			ProjectID:  d.ProjectID,
			Name:       d.Name,
			Kind:       d.Kind,
			Location:   d.Location,
			Status:     d.Status,
			AlertCount: alertCounts[d.DeviceID],
		}
		latest, err := s.store.GetLatestSample(d.DeviceID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if latest != nil {
			ts := latest.SampledAt
			ds.LastSample = &ts
		}
		out = append(out, ds)
	}
	writeJSON(w, out)
}

// handleDeviceDetail routes /api/devices/{id}/trend and
// /api/devices/{id}/prpd.
func (s *Server) handleDeviceDetail(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/devices/")
	parts := strings.Split(rest, "/")
	if len(parts) != 2 || parts[0] == "" {
		http.NotFound(w, r)
		return
	}
	deviceID, view := parts[0], parts[1]

	device, err := s.store.GetDevice(deviceID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if device == nil {
		http.Error(w, "unknown device", http.StatusNotFound)
		return
	}

	switch view {
	case "trend":
		s.handleTrend(w, r, deviceID)
	case "prpd":
		s.handlePRPD(w, r, deviceID)
	default:
		http.NotFound(w, r)
	}
}

func queryParam(r *http.Request, name, fallback string) string {
	if v := r.URL.Query().Get(name); v != "" {
		return v
	}
	return fallback
}

type trendResponse struct {
	DeviceID      string                `json:"device_id"`
	Channel       string                `json:"channel"`
	Metric        string                `json:"metric"`
	Range         string                `json:"range"`
	Points        []analysis.TrendPoint `json:"points"`
	Inflection    *time.Time            `json:"inflection,omitempty"`
	ForecastStart *time.Time            `json:"forecast_start,omitempty"`
}

func (s *Server) handleTrend(w http.ResponseWriter, r *http.Request, deviceID string) {
	channel := queryParam(r, "channel", "uhf")
	metric := queryParam(r, "metric", "amplitude")
	rangeName := queryParam(r, "range", "30d")

	if !simulate.ValidChannel(channel) {
		http.Error(w, fmt.Sprintf("unknown channel %q", channel), http.StatusBadRequest)
		return
	}
	if !simulate.ValidMetric(metric) {
		http.Error(w, fmt.Sprintf("unknown metric %q", metric), http.StatusBadRequest)
		return
	}
	rng, ok := simulate.LookupRange(rangeName)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown range %q", rangeName), http.StatusBadRequest)
		return
	}

	samples, err := s.store.GetRecentSamples(deviceID, rng.Points*int(rng.Step/time.Hour))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	series := simulate.ExtractSeries(simulate.Decimate(samples, rng), channel, metric)
	result := analysis.BuildTrendSeries(series, s.analysisCfg)

	writeJSON(w, trendResponse{
		DeviceID:      deviceID,
		Channel:       channel,
		Metric:        metric,
		Range:         rangeName,
		Points:        result.Points,
		Inflection:    result.Inflection,
		ForecastStart: result.ForecastStart,
	})
}

type prpdResponse struct {
	DeviceID string             `json:"device_id"`
	Type     string             `json:"type"`
	Pulses   []models.PRPDPulse `json:"pulses"`
}

func (s *Server) handlePRPD(w http.ResponseWriter, r *http.Request, deviceID string) {
	dischargeType := queryParam(r, "type", "internal")
	if !simulate.ValidDischargeType(dischargeType) {
		http.Error(w, fmt.Sprintf("unknown discharge type %q", dischargeType), http.StatusBadRequest)
		return
	}

	// Pulse clouds are deterministic, so serve the cached snapshot when
	// one exists.
	key := "prpd:" + deviceID + ":" + dischargeType
	var pulses []models.PRPDPulse
	found, err := s.store.GetKV(key, &pulses)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if !found {
		pulses = s.gen.PRPD(deviceID, dischargeType)
		if err := s.store.SetKV(key, pulses); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
	}

	writeJSON(w, prpdResponse{DeviceID: deviceID, Type: dischargeType, Pulses: pulses})
}

type alertView struct {
	ID         int64     `json:"id"`
	DeviceID   string    `json:"device_id"`
	Channel    string    `json:"channel"`
	Metric     string    `json:"metric"`
	DetectedAt time.Time `json:"detected_at"`
	Level      string    `json:"level"`
	Message    string    `json:"message"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := s.store.GetRecentAlerts(50)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	out := make([]alertView, 0, len(alerts))
	for _, a := range alerts {
		out = append(out, alertView{
			ID:         a.ID,
			DeviceID:   a.DeviceID,
			Channel:    a.Channel,
			Metric:     a.Metric,
			DetectedAt: a.DetectedAt,
			Level:      a.Level,
			Message:    a.Message,
			CreatedAt:  a.CreatedAt,
		})
	}
	writeJSON(w, out)
}
