package store

import (
	"github.com/substationlabs/pdwatch/internal/models"
)

// InsertAlert records a detected inflection. The unique index on
// (device, channel, metric, detected_at) makes re-detection of the same
// event on a later analysis run a no-op.
func (s *Store) InsertAlert(a models.Alert) (bool, error) {
	res, err := s.db.Exec(`
		INSERT INTO alerts (device_id, channel, metric, detected_at, level, message)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(device_id, channel, metric, detected_at) DO NOTHING
	`, a.DeviceID, a.Channel, a.Metric, a.DetectedAt, a.Level, a.Message)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *Store) GetRecentAlerts(limit int) ([]models.Alert, error) {
	rows, err := s.db.Query(`
		SELECT id, device_id, channel, metric, detected_at, level, message, created_at
		FROM alerts
		ORDER BY detected_at DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var alerts []models.Alert
	for rows.Next() {
		var a models.Alert
		if err := rows.Scan(&a.ID, &a.DeviceID, &a.Channel, &a.Metric, &a.DetectedAt, &a.Level, &a.Message, &a.CreatedAt); err != nil {
			return nil, err
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

func (s *Store) CountAlertsByDevice() (map[string]int, error) {
	rows, err := s.db.Query(`SELECT device_id, COUNT(*) FROM alerts GROUP BY device_id`)
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
