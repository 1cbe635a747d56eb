package store

import (
	"database/sql"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/substationlabs/pdwatch/internal/models"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	store := New(db)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return store
}

func TestUpsertAndGetProject(t *testing.T) {
	store := setupTestStore(t)

	p := models.Project{ProjectID: "p1", Name: "North Substation", Region: "North"}
	if err := store.UpsertProject(p); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}

	p.Name = "North Substation (renamed)"
	if err := store.UpsertProject(p); err != nil {
		t.Fatalf("UpsertProject update: %v", err)
	}

	projects, err := store.GetProjects()
	if err != nil {
		t.Fatalf("GetProjects: %v", err)
	}
	if len(projects) != 1 {
		t.Fatalf("len(projects) = %d, want 1", len(projects))
	}
	if projects[0].Name != "North Substation (renamed)" {
		t.Errorf("Name = %q, want renamed value", projects[0].Name)
	}
}

func TestDeviceLifecycle(t *testing.T) {
	store := setupTestStore(t)

	if err := store.UpsertProject(models.Project{ProjectID: "p1", Name: "P1"}); err != nil {
		t.Fatalf("UpsertProject: %v", err)
	}

	devices := []models.Device{
		{DeviceID: "d2", ProjectID: "p1", Name: "Cable Joint", Kind: "cable_joint", Status: "normal", Pattern: "stable", Active: true},
		{DeviceID: "d1", ProjectID: "p1", Name: "Switchgear", Kind: "switchgear", Status: "normal", Pattern: "inflection", Active: true},
		{DeviceID: "d3", ProjectID: "p1", Name: "Retired", Kind: "transformer", Status: "normal", Pattern: "stable", Active: false},
	}
	for _, d := range devices {
		if err := store.UpsertDevice(d); err != nil {
			t.Fatalf("UpsertDevice %s: %v", d.DeviceID, err)
		}
	}

	active, err := store.GetActiveDevices()
	if err != nil {
		t.Fatalf("GetActiveDevices: %v", err)
	}
	if len(active) != 2 {
		t.Fatalf("len(active) = %d, want 2", len(active))
	}
	if active[0].DeviceID != "d1" || active[1].DeviceID != "d2" {
		t.Errorf("active order = [%s %s], want [d1 d2]", active[0].DeviceID, active[1].DeviceID)
	}

	d, err := store.GetDevice("d1")
	if err != nil {
		t.Fatalf("GetDevice: %v", err)
	}
	if d == nil || d.Pattern != "inflection" {
		t.Errorf("GetDevice(d1) = %+v, want inflection pattern", d)
	}

	missing, err := store.GetDevice("ghost")
	if err != nil {
		t.Fatalf("GetDevice missing: %v", err)
	}
	if missing != nil {
		t.Errorf("GetDevice(ghost) = %+v, want nil", missing)
	}

	if err := store.UpdateDeviceStatus("d1", "warning"); err != nil {
		t.Fatalf("UpdateDeviceStatus: %v", err)
	}
	d, _ = store.GetDevice("d1")
	if d.Status != "warning" {
		t.Errorf("Status = %q, want warning", d.Status)
	}

	counts, err := store.CountDevicesByProject()
	if err != nil {
		t.Fatalf("CountDevicesByProject: %v", err)
	}
	if counts["p1"] != 2 {
		t.Errorf("counts[p1] = %d, want 2", counts["p1"])
	}
}

func TestSamples(t *testing.T) {
	store := setupTestStore(t)

	start := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 10; i++ {
		sm := models.Sample{
			DeviceID:     "d1",
			SampledAt:    start.Add(time.Duration(i) * time.Hour),
			UHFAmplitude: sql.NullFloat64{Float64: 15 + float64(i), Valid: true},
			Temperature:  sql.NullFloat64{Float64: 24.5, Valid: true},
		}
		if err := store.InsertSample(sm); err != nil {
			t.Fatalf("InsertSample %d: %v", i, err)
		}
	}

	// Duplicate timestamps are ignored.
	dup := models.Sample{DeviceID: "d1", SampledAt: start, UHFAmplitude: sql.NullFloat64{Float64: 99, Valid: true}}
	if err := store.InsertSample(dup); err != nil {
		t.Fatalf("InsertSample duplicate: %v", err)
	}

	samples, err := store.GetSamples("d1", start, start.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("GetSamples: %v", err)
	}
	if len(samples) != 10 {
		t.Fatalf("len(samples) = %d, want 10", len(samples))
	}
	if samples[0].UHFAmplitude.Float64 != 15 {
		t.Errorf("first sample amplitude = %v, want original 15 (duplicate ignored)", samples[0].UHFAmplitude.Float64)
	}
	for i := 1; i < len(samples); i++ {
		if !samples[i].SampledAt.After(samples[i-1].SampledAt) {
			t.Errorf("samples not ascending at %d", i)
		}
	}
	if samples[0].TEVAmplitude.Valid {
		t.Error("TEVAmplitude.Valid = true, want NULL (never written)")
	}

	recent, err := store.GetRecentSamples("d1", 3)
	if err != nil {
		t.Fatalf("GetRecentSamples: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("len(recent) = %d, want 3", len(recent))
	}
	if recent[0].UHFAmplitude.Float64 != 22 || recent[2].UHFAmplitude.Float64 != 24 {
		t.Errorf("recent window = [%v..%v], want [22..24] ascending", recent[0].UHFAmplitude.Float64, recent[2].UHFAmplitude.Float64)
	}

	latest, err := store.GetLatestSample("d1")
	if err != nil {
		t.Fatalf("GetLatestSample: %v", err)
	}
	if latest == nil || latest.UHFAmplitude.Float64 != 24 {
		t.Errorf("latest = %+v, want amplitude 24", latest)
	}

	if err := store.DeleteSamples("d1"); err != nil {
		t.Fatalf("DeleteSamples: %v", err)
	}
	latest, err = store.GetLatestSample("d1")
	if err != nil {
		t.Fatalf("GetLatestSample after delete: %v", err)
	}
	if latest != nil {
		t.Errorf("latest after delete = %+v, want nil", latest)
	}
}

func TestAlerts(t *testing.T) {
	store := setupTestStore(t)

	a := models.Alert{
		DeviceID:   "d1",
		Channel:    "uhf",
		Metric:     "amplitude",
		DetectedAt: time.Date(2026, 3, 4, 12, 0, 0, 0, time.UTC),
		Level:      "warning",
		Message:    "sudden amplitude rise on UHF",
	}

	inserted, err := store.InsertAlert(a)
	if err != nil {
		t.Fatalf("InsertAlert: %v", err)
	}
	if !inserted {
		t.Error("InsertAlert = false, want true on first insert")
	}

	inserted, err = store.InsertAlert(a)
	if err != nil {
		t.Fatalf("InsertAlert repeat: %v", err)
	}
	if inserted {
		t.Error("InsertAlert = true on duplicate, want false")
	}

	alerts, err := store.GetRecentAlerts(10)
	if err != nil {
		t.Fatalf("GetRecentAlerts: %v", err)
	}
	if len(alerts) != 1 {
		t.Fatalf("len(alerts) = %d, want 1", len(alerts))
	}
	if alerts[0].Channel != "uhf" || alerts[0].Level != "warning" {
		t.Errorf("alert = %+v", alerts[0])
	}

	counts, err := store.CountAlertsByDevice()
	if err != nil {
		t.Fatalf("CountAlertsByDevice: %v", err)
	}
	if counts["d1"] != 1 {
		t.Errorf("counts[d1] = %d, want 1", counts["d1"])
	}
}

func TestKVLastWriteWins(t *testing.T) {
	store := setupTestStore(t)

	type viewState struct {
		Screen   string `json:"screen"`
		DeviceID string `json:"device_id"`
	}

	if err := store.SetKV("view", viewState{Screen: "overview"}); err != nil {
		t.Fatalf("SetKV: %v", err)
	}
	if err := store.SetKV("view", viewState{Screen: "trend", DeviceID: "d1"}); err != nil {
		t.Fatalf("SetKV overwrite: %v", err)
	}

	var got viewState
	found, err := store.GetKV("view", &got)
	if err != nil {
		t.Fatalf("GetKV: %v", err)
	}
	if !found {
		t.Fatal("GetKV found = false, want true")
	}
	if got.Screen != "trend" || got.DeviceID != "d1" {
		t.Errorf("GetKV = %+v, want last write", got)
	}

	found, err = store.GetKV("absent", &got)
	if err != nil {
		t.Fatalf("GetKV absent: %v", err)
	}
	if found {
		t.Error("GetKV(absent) found = true, want false")
	}

	if err := store.DeleteKV("view"); err != nil {
		t.Fatalf("DeleteKV: %v", err)
	}
	if found, _ := store.GetKV("view", &got); found {
		t.Error("GetKV after delete = true, want false")
	}
	// Deleting a missing key is a no-op.
	if err := store.DeleteKV("view"); err != nil {
		t.Fatalf("DeleteKV repeat: %v", err)
	}
}
