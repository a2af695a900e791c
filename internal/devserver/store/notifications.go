package store

import (
	"context"
	"database/sql"
	"fmt"

	"socialnet/internal/entities"
)

// NotificationSetting returns userID's preferences; everything is enabled
// until the user saves a setting.
func (s *Store) NotificationSetting(ctx context.Context, userID int64) (entities.NotificationSetting, error) {
	var ns entities.NotificationSetting
	err := s.db.QueryRowContext(ctx, `
		SELECT follow_enabled, comment_enabled, like_enabled, chat_enabled
		FROM notification_settings WHERE user_id = ?`, userID).
		Scan(&ns.FollowEnabled, &ns.CommentEnabled, &ns.LikeEnabled, &ns.ChatEnabled)
	if err == sql.ErrNoRows {
		return entities.NotificationSetting{FollowEnabled: true, CommentEnabled: true, LikeEnabled: true, ChatEnabled: true}, nil
	}
	if err != nil {
		return entities.NotificationSetting{}, fmt.Errorf("notification setting: %w", err)
	}
	return ns, nil
}

// SaveNotificationSetting stores userID's preferences.
func (s *Store) SaveNotificationSetting(ctx context.Context, userID int64, ns entities.NotificationSetting) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO notification_settings (user_id, follow_enabled, comment_enabled, like_enabled, chat_enabled)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			follow_enabled = excluded.follow_enabled,
			comment_enabled = excluded.comment_enabled,
			like_enabled = excluded.like_enabled,
			chat_enabled = excluded.chat_enabled`,
		userID, ns.FollowEnabled, ns.CommentEnabled, ns.LikeEnabled, ns.ChatEnabled)
	if err != nil {
		return fmt.Errorf("save notification setting: %w", mapErr(err))
	}
	return nil
}

// CreateNotification stores a notification unless the recipient disabled
// its type. It reports whether one was stored.
func (s *Store) CreateNotification(ctx context.Context, userID int64, kind, message string, related *int64) (bool, error) {
	ns, err := s.NotificationSetting(ctx, userID)
	if err != nil {
		return false, err
	}
	if !ns.Allows(kind) {
		return false, nil
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO notifications (user_id, type, message, related_user_id) VALUES (?, ?, ?, ?)`,
		userID, kind, message, related)
	if err != nil {
		return false, fmt.Errorf("insert notification: %w", mapErr(err))
	}
	return true, nil
}

// ListNotifications returns userID's notifications newest first.
func (s *Store) ListNotifications(ctx context.Context, userID int64, size int, cursor int64) (entities.Page[entities.Notification], error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, type, message, related_user_id, read_status, created_at
		FROM notifications WHERE user_id = ? AND id < ?
		ORDER BY id DESC LIMIT ?`, userID, beforeID(cursor), size+1)
	if err != nil {
		return entities.Page[entities.Notification]{}, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	var list []entities.Notification
	for rows.Next() {
		var n entities.Notification
		var related sql.NullInt64
		if err := rows.Scan(&n.ID, &n.Type, &n.Message, &related, &n.Read, &n.CreatedAt); err != nil {
			return entities.Page[entities.Notification]{}, fmt.Errorf("scan notification: %w", err)
		}
		if related.Valid {
			v := related.Int64
			n.RelatedUserID = &v
		}
		list = append(list, n)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[entities.Notification]{}, err
	}
	return pageOf(list, size, func(n entities.Notification) int64 { return n.ID }), nil
}

// MarkNotificationRead flags one of userID's notifications as read.
func (s *Store) MarkNotificationRead(ctx context.Context, userID, notificationID int64) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE notifications SET read_status = 1 WHERE id = ? AND user_id = ?`, notificationID, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return requireOne(res)
}
