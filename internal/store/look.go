package store

import (
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
)

// LookRecord is one settled generation result kept for the history surface.
type LookRecord struct {
	ID        string    `json:"id"`
	Epoch     uint64    `json:"epoch"`
	ItemID    string    `json:"itemId"`
	SceneID   string    `json:"sceneId"`
	HasImage  bool      `json:"hasImage"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// LookRepository provides access to the generated-look history.
type LookRepository struct {
	db *sql.DB
}

// Looks returns the look repository for this store.
func (s *Store) Looks() *LookRepository {
	return &LookRepository{db: s.db}
}

// RecordLook persists one settled look. It satisfies the fitting room's
// recorder interface.
func (r *LookRepository) RecordLook(itemID, sceneID string, epoch uint64, image []byte, genErr string) error {
	_, err := r.db.Exec(
		`INSERT INTO looks (id, epoch, item_id, scene_id, image, error)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), int64(epoch), itemID, sceneID, image, genErr,
	)
	return err
}

// ListRecent returns the newest look records, most recent first, without
// image payloads.
func (r *LookRepository) ListRecent(limit int) ([]LookRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.db.Query(
		`SELECT id, epoch, item_id, scene_id, image IS NOT NULL AND length(image) > 0, error, created_at
		 FROM looks ORDER BY created_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []LookRecord
	for rows.Next() {
		var rec LookRecord
		var epoch int64
		if err := rows.Scan(&rec.ID, &epoch, &rec.ItemID, &rec.SceneID, &rec.HasImage, &rec.Error, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Epoch = uint64(epoch)
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetImage returns the stored image for a look record.
func (r *LookRepository) GetImage(id string) ([]byte, error) {
	var image []byte
	err := r.db.QueryRow(`SELECT image FROM looks WHERE id = ?`, id).Scan(&image)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if len(image) == 0 {
		return nil, ErrNotFound
	}
	return image, nil
}
