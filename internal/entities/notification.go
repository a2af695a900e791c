package entities

import "time"

// Notification types.
const (
	NotificationFollow  = "follow"
	NotificationComment = "comment"
	NotificationLike    = "like"
	NotificationChat    = "chat"
)

// Notification is an event addressed to the current user.
type Notification struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Message       string    `json:"message"`
	RelatedUserID *int64    `json:"relatedUserId,omitempty"`
	Read          bool      `json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
}

// NotificationSetting lists which notification types the user receives.
type NotificationSetting struct {
	FollowEnabled  bool `json:"followEnabled"`
	CommentEnabled bool `json:"commentEnabled"`
	LikeEnabled    bool `json:"likeEnabled"`
	ChatEnabled    bool `json:"chatEnabled"`
}

// Allows reports whether the setting lets notifications of type kind through.
func (s NotificationSetting) Allows(kind string) bool {
	switch kind {
	case NotificationFollow:
		return s.FollowEnabled
	case NotificationComment:
		return s.CommentEnabled
	case NotificationLike:
		return s.LikeEnabled
	case NotificationChat:
		return s.ChatEnabled
	}
	return true
}
