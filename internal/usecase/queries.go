package usecase

import (
	"context"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

func firstPage(cursor string) entities.PageRequest {
	return entities.PageRequest{Size: PageSize, Cursor: cursor}
}

func (s *Service) feedPages(board string) query.PageFunc[entities.Post] {
	return func(ctx context.Context, cursor string) (entities.Page[entities.Post], error) {
		return s.api.ListPosts(ctx, board, firstPage(cursor))
	}
}

// Feed returns the loaded pages of a board ("" for every board).
func (s *Service) Feed(ctx context.Context, board string) (query.Pages[entities.Post], error) {
	return query.FetchInfinite(ctx, s.cache, FeedKey(board), s.feedPages(board))
}

// FeedNextPage loads one more page of a board.
func (s *Service) FeedNextPage(ctx context.Context, board string) (query.Pages[entities.Post], error) {
	return query.FetchNextPage(ctx, s.cache, FeedKey(board), s.feedPages(board))
}

func (s *Service) Post(ctx context.Context, postID int64) (entities.Post, error) {
	return query.Fetch(ctx, s.cache, PostKey(postID), func(ctx context.Context) (entities.Post, error) {
		return s.api.GetPost(ctx, postID)
	})
}

func (s *Service) commentPages(postID int64) query.PageFunc[entities.Comment] {
	return func(ctx context.Context, cursor string) (entities.Page[entities.Comment], error) {
		return s.api.ListComments(ctx, postID, firstPage(cursor))
	}
}

func (s *Service) Comments(ctx context.Context, postID int64) (query.Pages[entities.Comment], error) {
	return query.FetchInfinite(ctx, s.cache, CommentsKey(postID), s.commentPages(postID))
}

func (s *Service) CommentsNextPage(ctx context.Context, postID int64) (query.Pages[entities.Comment], error) {
	return query.FetchNextPage(ctx, s.cache, CommentsKey(postID), s.commentPages(postID))
}

func (s *Service) MyProfile(ctx context.Context) (entities.Profile, error) {
	return query.Fetch(ctx, s.cache, MyProfileKey, s.api.GetMyProfile)
}

func (s *Service) Profile(ctx context.Context, userID int64) (entities.Profile, error) {
	return query.Fetch(ctx, s.cache, ProfileKey(userID), func(ctx context.Context) (entities.Profile, error) {
		return s.api.GetProfile(ctx, userID)
	})
}

// Followers returns the first page of users following userID.
func (s *Service) Followers(ctx context.Context, userID int64) (entities.Page[entities.FollowUser], error) {
	return query.Fetch(ctx, s.cache, FollowersKey(userID), func(ctx context.Context) (entities.Page[entities.FollowUser], error) {
		return s.api.ListFollowers(ctx, userID, entities.PageRequest{Size: entities.MaxPageSize})
	})
}

// Following returns the first page of users followed by userID.
func (s *Service) Following(ctx context.Context, userID int64) (entities.Page[entities.FollowUser], error) {
	return query.Fetch(ctx, s.cache, FollowingKey(userID), func(ctx context.Context) (entities.Page[entities.FollowUser], error) {
		return s.api.ListFollowing(ctx, userID, entities.PageRequest{Size: entities.MaxPageSize})
	})
}

func (s *Service) Recommendations(ctx context.Context) ([]entities.FollowUser, error) {
	return query.Fetch(ctx, s.cache, RecommendationsKey, func(ctx context.Context) ([]entities.FollowUser, error) {
		return s.api.Recommendations(ctx, 10)
	})
}

func (s *Service) ChatRooms(ctx context.Context) ([]entities.ChatRoom, error) {
	return query.Fetch(ctx, s.cache, ChatRoomsKey, s.api.ListChatRooms)
}

func (s *Service) messagePages(roomID int64) query.PageFunc[entities.ChatMessage] {
	return func(ctx context.Context, cursor string) (entities.Page[entities.ChatMessage], error) {
		return s.api.ListMessages(ctx, roomID, firstPage(cursor))
	}
}

// Messages returns the loaded pages of a room, newest message first.
func (s *Service) Messages(ctx context.Context, roomID int64) (query.Pages[entities.ChatMessage], error) {
	return query.FetchInfinite(ctx, s.cache, MessagesKey(roomID), s.messagePages(roomID))
}

func (s *Service) MessagesNextPage(ctx context.Context, roomID int64) (query.Pages[entities.ChatMessage], error) {
	return query.FetchNextPage(ctx, s.cache, MessagesKey(roomID), s.messagePages(roomID))
}

func (s *Service) notificationPages() query.PageFunc[entities.Notification] {
	return func(ctx context.Context, cursor string) (entities.Page[entities.Notification], error) {
		return s.api.ListNotifications(ctx, firstPage(cursor))
	}
}

func (s *Service) Notifications(ctx context.Context) (query.Pages[entities.Notification], error) {
	return query.FetchInfinite(ctx, s.cache, NotificationsKey, s.notificationPages())
}

func (s *Service) NotificationsNextPage(ctx context.Context) (query.Pages[entities.Notification], error) {
	return query.FetchNextPage(ctx, s.cache, NotificationsKey, s.notificationPages())
}

func (s *Service) NotificationSetting(ctx context.Context) (entities.NotificationSetting, error) {
	return query.Fetch(ctx, s.cache, NotificationSettingKey, s.api.GetNotificationSetting)
}
