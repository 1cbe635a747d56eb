// Package api exposes the monitoring data as a JSON HTTP API: project
// and device overviews, per-device trend analysis, diagnosis patterns,
// alerts and health.
package api

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/substationlabs/pdwatch/internal/analysis"
	"github.com/substationlabs/pdwatch/internal/metrics"
	"github.com/substationlabs/pdwatch/internal/simulate"
	"github.com/substationlabs/pdwatch/internal/store"
)

// staleThreshold marks a device unhealthy when its newest sample is
// older than this. Histories are hourly, so two missed cycles.
const staleThreshold = 2 * time.Hour

type Server struct {
	store       *store.Store
	gen         *simulate.Generator
	port        string
	analysisCfg analysis.Config
}

func NewServer(st *store.Store, gen *simulate.Generator, port string, cfg analysis.Config) *Server {
	return &Server{
		store:       st,
		gen:         gen,
		port:        port,
		analysisCfg: cfg,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/projects", s.instrument("projects", s.handleProjects))
	mux.HandleFunc("/api/devices", s.instrument("devices", s.handleDevices))
	mux.HandleFunc("/api/devices/", s.instrument("device_detail", s.handleDeviceDetail))
	mux.HandleFunc("/api/alerts", s.instrument("alerts", s.handleAlerts))
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}

func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:    ":" + s.port,
		Handler: s.Handler(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("api: listening on :%s", s.port)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) instrument(endpoint string, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		h(w, r)
		metrics.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("api: write response: %v", err)
	}
}

type deviceHealth struct {
	DeviceID   string     `json:"device_id"`
	LastSeen   *time.Time `json:"last_seen,omitempty"`
	AgeMinutes int        `json:"age_minutes"`
	Stale      bool       `json:"stale"`
}

type healthStatus struct {
	Status  string         `json:"status"`
	Devices []deviceHealth `json:"devices"`
	Errors  []string       `json:"errors,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	devices, err := s.store.GetActiveDevices()
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]string{"status": "error", "error": err.Error()})
		return
	}

	health := healthStatus{
		Status:  "ok",
		Devices: make([]deviceHealth, 0, len(devices)),
	}
	now := time.Now()

	for _, d := range devices {
		latest, err := s.store.GetLatestSample(d.DeviceID)
		if err != nil {
			health.Errors = append(health.Errors, d.DeviceID+": "+err.Error())
			continue
		}

		dh := deviceHealth{DeviceID: d.DeviceID}
		if latest != nil {
			ts := latest.SampledAt
			dh.LastSeen = &ts
			dh.AgeMinutes = int(now.Sub(ts).Minutes())
			dh.Stale = now.Sub(ts) > staleThreshold
		} else {
			dh.Stale = true
			dh.AgeMinutes = -1
		}

		if dh.Stale {
			health.Status = "degraded"
		}
		health.Devices = append(health.Devices, dh)
	}

	if len(health.Errors) > 0 {
		health.Status = "error"
	}

	w.Header().Set("Content-Type", "application/json")
	if health.Status != "ok" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(health); err != nil {
		log.Printf("api: write health: %v", err)
	}
}
