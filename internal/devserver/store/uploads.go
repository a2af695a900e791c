package store

import (
	"context"
	"fmt"
	"time"
)

// Upload is a presigned upload slot.
type Upload struct {
	Key         string
	UserID      int64
	ContentType string
	ExpiresAt   time.Time
	Uploaded    bool
}

// CreateUpload records a slot issued by presign.
func (s *Store) CreateUpload(ctx context.Context, u Upload) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO uploads (image_key, user_id, content_type, expires_at) VALUES (?, ?, ?, ?)`,
		u.Key, u.UserID, u.ContentType, u.ExpiresAt.Unix())
	if err != nil {
		return fmt.Errorf("insert upload: %w", mapErr(err))
	}
	return nil
}

// GetUpload returns the slot for key.
func (s *Store) GetUpload(ctx context.Context, key string) (Upload, error) {
	u := Upload{Key: key}
	var expires int64
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, content_type, expires_at, uploaded FROM uploads WHERE image_key = ?`, key).
		Scan(&u.UserID, &u.ContentType, &expires, &u.Uploaded)
	if err != nil {
		return Upload{}, fmt.Errorf("upload %s: %w", key, mapErr(err))
	}
	u.ExpiresAt = time.Unix(expires, 0)
	return u, nil
}

// CompleteUpload marks the slot as filled with size bytes.
func (s *Store) CompleteUpload(ctx context.Context, key string, size int64) error {
	res, err := s.db.ExecContext(ctx, `UPDATE uploads SET uploaded = 1, size = ? WHERE image_key = ?`, size, key)
	if err != nil {
		return fmt.Errorf("complete upload: %w", err)
	}
	return requireOne(res)
}
