package usecase

import (
	"context"

	"socialnet/internal/entities"
)

// Watch streams pushed messages of a room to fn until ctx ends. Every
// message marks the room's message list and the room list stale.
func (s *Service) Watch(ctx context.Context, roomID int64, fn func(entities.ChatMessage)) error {
	return s.api.WatchRoom(ctx, roomID, func(msg entities.ChatMessage) {
		s.cache.Invalidate(MessagesKey(roomID), ChatRoomsKey)
		s.log.Debugw("chat message pushed", "room_id", roomID, "message_id", msg.ID)
		if fn != nil {
			fn(msg)
		}
	})
}
