package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// The kv table holds JSON blobs keyed by string: view-state snapshots,
// cached diagnosis patterns and the like. Writes are last-write-wins;
// there is no versioning or conflict detection.

func (s *Store) SetKV(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal kv %q: %w", key, err)
	}
	_, err = s.db.Exec(`
		INSERT INTO kv (key, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at
	`, key, string(data), time.Now().UTC())
	return err
}

// GetKV unmarshals the blob stored under key into out. The second
// return is false when the key is absent.
func (s *Store) GetKV(key string, out any) (bool, error) {
	var data string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, key).Scan(&data)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("unmarshal kv %q: %w", key, err)
	}
	return true, nil
}

func (s *Store) DeleteKV(key string) error {
	_, err := s.db.Exec(`DELETE FROM kv WHERE key = ?`, key)
	return err
}
