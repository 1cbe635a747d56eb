package simulate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/substationlabs/pdwatch/internal/alert"
	"github.com/substationlabs/pdwatch/internal/analysis"
	"github.com/substationlabs/pdwatch/internal/metrics"
	"github.com/substationlabs/pdwatch/internal/models"
	"github.com/substationlabs/pdwatch/internal/store"
)

// Scheduler regenerates the fleet's sample histories on a ticker and
// runs the trend-analysis pipeline over them, recording an alert the
// first time an inflection shows up on a device channel.
type Scheduler struct {
	store       *store.Store
	gen         *Generator
	notifier    *alert.Notifier
	analysisCfg analysis.Config
	interval    time.Duration
	now         func() time.Time
}

func NewScheduler(st *store.Store, gen *Generator, notifier *alert.Notifier, cfg analysis.Config, interval time.Duration) *Scheduler {
	return &Scheduler{
		store:       st,
		gen:         gen,
		notifier:    notifier,
		analysisCfg: cfg,
		interval:    interval,
		now:         time.Now,
	}
}

func (s *Scheduler) Run(ctx context.Context) {
	s.RefreshOnce()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("scheduler: shutting down")
			return
		case <-ticker.C:
			s.RefreshOnce()
		}
	}
}

// RefreshOnce regenerates every active device's history and analyzes
// it. Per-device failures are logged and skipped so one bad device does
// not stall the fleet.
func (s *Scheduler) RefreshOnce() {
	devices, err := s.store.GetActiveDevices()
	if err != nil {
		log.Printf("scheduler: list devices: %v", err)
		return
	}

	now := s.now()
	for _, device := range devices {
		if err := s.refreshDevice(device.DeviceID, now); err != nil {
			log.Printf("scheduler: refresh %s: %v", device.DeviceID, err)
		}
	}
}

func (s *Scheduler) refreshDevice(deviceID string, now time.Time) error {
	device, err := s.store.GetDevice(deviceID)
	if err != nil {
		return err
	}
	if device == nil {
		return fmt.Errorf("device %s vanished", deviceID)
	}

	// The generator is deterministic per device, so a full rewrite
	// replaces the history with the same shape shifted to now.
	if err := s.store.DeleteSamples(device.DeviceID); err != nil {
		return fmt.Errorf("clear samples: %w", err)
	}

	history := s.gen.History(*device, now)
	for _, sm := range history {
		if err := s.store.InsertSample(sm); err != nil {
			return fmt.Errorf("insert sample: %w", err)
		}
	}
	metrics.SamplesGenerated.WithLabelValues(device.DeviceID).Add(float64(len(history)))

	inflected := false
	daily, _ := LookupRange("90d")
	window := Decimate(history, daily)
	for _, channel := range Channels() {
		for _, metric := range Metrics() {
			series := ExtractSeries(window, channel, metric)
			result := analysis.BuildTrendSeries(series, s.analysisCfg)
			metrics.AnalysisRuns.WithLabelValues(channel, metric).Inc()

			if result.Inflection == nil {
				continue
			}
			inflected = true
			if err := s.recordInflection(device.DeviceID, channel, metric, *result.Inflection); err != nil {
				log.Printf("scheduler: record inflection %s/%s/%s: %v", device.DeviceID, channel, metric, err)
			}
		}
	}

	status := "normal"
	if inflected {
		status = "warning"
	}
	if device.Status != status {
		if err := s.store.UpdateDeviceStatus(device.DeviceID, status); err != nil {
			return fmt.Errorf("update status: %w", err)
		}
	}
	return nil
}

func (s *Scheduler) recordInflection(deviceID, channel, metric string, detectedAt time.Time) error {
	a := models.Alert{
		DeviceID:   deviceID,
		Channel:    channel,
		Metric:     metric,
		DetectedAt: detectedAt,
		Level:      "warning",
		Message:    fmt.Sprintf("sudden %s rise on %s channel", metric, channel),
	}

	inserted, err := s.store.InsertAlert(a)
	if err != nil {
		return err
	}
	if !inserted {
		// Already known from a previous run.
		return nil
	}

	metrics.InflectionsDetected.WithLabelValues(deviceID, channel).Inc()
	log.Printf("scheduler: inflection on %s %s/%s at %s", deviceID, channel, metric, detectedAt.Format(time.RFC3339))

	if err := s.notifier.Notify(a); err != nil {
		metrics.WebhookDeliveries.WithLabelValues("error").Inc()
		log.Printf("scheduler: notify %s: %v", deviceID, err)
	} else if s.notifier != nil {
		metrics.WebhookDeliveries.WithLabelValues("ok").Inc()
	}
	return nil
}
