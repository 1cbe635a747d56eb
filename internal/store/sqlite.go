package store

import (
	"database/sql"
	"time"

	"github.com/substationlabs/pdwatch/internal/models"
)

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) UpsertProject(p models.Project) error {
	_, err := s.db.Exec(`
		INSERT INTO projects (project_id, name, region)
		VALUES (?, ?, ?)
		ON CONFLICT(project_id) DO UPDATE SET
			name = excluded.name,
			region = excluded.region
	`, p.ProjectID, p.Name, p.Region)
	return err
}

func (s *Store) GetProjects() ([]models.Project, error) {
	rows, err := s.db.Query(`SELECT project_id, name, region, created_at FROM projects ORDER BY project_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		if err := rows.Scan(&p.ProjectID, &p.Name, &p.Region, &p.CreatedAt); err != nil {
			return nil, err
		}
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

func (s *Store) UpsertDevice(d models.Device) error {
	_, err := s.db.Exec(`
		INSERT INTO devices (device_id, project_id, name, kind, location, status, pattern, active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id) DO UPDATE SET
			project_id = excluded.project_id,
			name = excluded.name,
			kind = excluded.kind,
			location = excluded.location,
			status = excluded.status,
			pattern = excluded.pattern,
			active = excluded.active
	`, d.DeviceID, d.ProjectID, d.Name, d.Kind, d.Location, d.Status, d.Pattern, d.Active)
	return err
}

func (s *Store) UpdateDeviceStatus(deviceID, status string) error {
	_, err := s.db.Exec(`UPDATE devices SET status = ? WHERE device_id = ?`, status, deviceID)
	return err
}

const deviceColumns = `device_id, project_id, name, kind, location, status, pattern, active`

func scanDevice(row interface{ Scan(...any) error }) (models.Device, error) {
	var d models.Device
	err := row.Scan(&d.DeviceID, &d.ProjectID, &d.Name, &d.Kind, &d.Location, &d.Status, &d.Pattern, &d.Active)
	return d, err
}

func (s *Store) GetActiveDevices() ([]models.Device, error) {
	rows, err := s.db.Query(`SELECT ` + deviceColumns + ` FROM devices WHERE active = TRUE ORDER BY device_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *Store) GetDevicesByProject(projectID string) ([]models.Device, error) {
	rows, err := s.db.Query(`SELECT `+deviceColumns+` FROM devices WHERE project_id = ? AND active = TRUE ORDER BY device_id`, projectID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var devices []models.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, err
		}
		devices = append(devices, d)
	}
	return devices, rows.Err()
}

func (s *Store) GetDevice(deviceID string) (*models.Device, error) {
	row := s.db.QueryRow(`SELECT `+deviceColumns+` FROM devices WHERE device_id = ?`, deviceID)
	d, err := scanDevice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) CountDevicesByProject() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT project_id, COUNT(*) FROM devices WHERE active = TRUE GROUP BY project_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var id string
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return nil, err
		}
		counts[id] = n
	}
	return counts, rows.Err()
}

func (s *Store) InsertSample(sm models.Sample) error {
	_, err := s.db.Exec(`
		INSERT INTO samples (device_id, sampled_at, uhf_amplitude, uhf_frequency, tev_amplitude, tev_frequency, ae_amplitude, ae_frequency, temperature, humidity)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id, sampled_at) DO NOTHING
	`, sm.DeviceID, sm.SampledAt, sm.UHFAmplitude, sm.UHFFrequency, sm.TEVAmplitude, sm.TEVFrequency, sm.AEAmplitude, sm.AEFrequency, sm.Temperature, sm.Humidity)
	return err
}

const sampleColumns = `id, device_id, sampled_at, uhf_amplitude, uhf_frequency, tev_amplitude, tev_frequency, ae_amplitude, ae_frequency, temperature, humidity, created_at`

func scanSample(row interface{ Scan(...any) error }) (models.Sample, error) {
	var sm models.Sample
	err := row.Scan(&sm.ID, &sm.DeviceID, &sm.SampledAt, &sm.UHFAmplitude, &sm.UHFFrequency, &sm.TEVAmplitude, &sm.TEVFrequency, &sm.AEAmplitude, &sm.AEFrequency, &sm.Temperature, &sm.Humidity, &sm.CreatedAt)
	return sm, err
}

func (s *Store) GetSamples(deviceID string, start, end time.Time) ([]models.Sample, error) {
	rows, err := s.db.Query(`
		SELECT `+sampleColumns+`
		FROM samples
		WHERE device_id = ? AND sampled_at >= ? AND sampled_at <= ?
		ORDER BY sampled_at ASC
	`, deviceID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		sm, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

func (s *Store) GetRecentSamples(deviceID string, limit int) ([]models.Sample, error) {
	rows, err := s.db.Query(`
		SELECT `+sampleColumns+`
		FROM (
			SELECT `+sampleColumns+`
			FROM samples
			WHERE device_id = ?
			ORDER BY sampled_at DESC
			LIMIT ?
		)
		ORDER BY sampled_at ASC
	`, deviceID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.Sample
	for rows.Next() {
		sm, err := scanSample(rows)
		if err != nil {
			return nil, err
		}
		samples = append(samples, sm)
	}
	return samples, rows.Err()
}

func (s *Store) GetLatestSample(deviceID string) (*models.Sample, error) {
	row := s.db.QueryRow(`
		SELECT `+sampleColumns+`
		FROM samples
		WHERE device_id = ?
		ORDER BY sampled_at DESC
		LIMIT 1
	`, deviceID)
	sm, err := scanSample(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &sm, nil
}

// DeleteSamples drops a device's history ahead of a simulator refresh,
// which fully replaces the series.
func (s *Store) DeleteSamples(deviceID string) error {
	_, err := s.db.Exec(`DELETE FROM samples WHERE device_id = ?`, deviceID)
	return err
}
