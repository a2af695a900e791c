package usecase

import (
	"context"
	"io"
	"time"

	"socialnet/internal/entities"
	"socialnet/internal/query"
)

func countDelta(on bool) int {
	if on {
		return 1
	}
	return -1
}

// ToggleLike flips the like of postID in the post and every feed holding
// it, then confirms with the server.
func (s *Service) ToggleLike(ctx context.Context, postID int64) (entities.LikeResult, error) {
	cur, err := s.Post(ctx, postID)
	if err != nil {
		return entities.LikeResult{}, err
	}
	want := !cur.Liked

	setLike := func(p entities.Post) entities.Post {
		if p.ID != postID || p.Liked == want {
			return p
		}
		p.Liked = want
		p.LikeCount = max(0, p.LikeCount+countDelta(want))
		return p
	}

	return query.Mutate(ctx, s.cache, query.Mutation[entities.LikeResult]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, PostKey(postID), setLike)
			query.UpdateAll(tx, PostsKey, func(p query.Pages[entities.Post]) query.Pages[entities.Post] {
				return p.Map(setLike)
			})
		},
		Do: func(ctx context.Context) (entities.LikeResult, error) {
			if want {
				return s.api.LikePost(ctx, postID)
			}
			return s.api.UnlikePost(ctx, postID)
		},
		OnSuccess: func(c *query.Client, res entities.LikeResult) {
			if p, ok := query.GetData[entities.Post](c, PostKey(postID)); ok {
				p.Liked, p.LikeCount = res.Liked, res.LikeCount
				query.SetData(c, PostKey(postID), p)
			}
		},
		Invalidate: []query.Key{PostKey(postID), PostsKey},
	})
}

func (s *Service) adjustComments(tx *query.Tx, postID int64, delta int) {
	adjust := func(p entities.Post) entities.Post {
		if p.ID == postID {
			p.CommentCount = max(0, p.CommentCount+delta)
		}
		return p
	}
	query.Update(tx, PostKey(postID), adjust)
	query.UpdateAll(tx, PostsKey, func(p query.Pages[entities.Post]) query.Pages[entities.Post] {
		return p.Map(adjust)
	})
}

// CreateComment shows a placeholder comment at the top of the list until
// the server answers.
func (s *Service) CreateComment(ctx context.Context, postID int64, content string) (entities.Comment, error) {
	placeholder := entities.Comment{
		ID:        query.TempID(),
		PostID:    postID,
		AuthorID:  s.me(),
		Content:   content,
		CreatedAt: time.Now(),
	}
	if p, ok := query.GetData[entities.Profile](s.cache, MyProfileKey); ok {
		placeholder.AuthorNickname = p.Nickname
	}

	return query.Mutate(ctx, s.cache, query.Mutation[entities.Comment]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, CommentsKey(postID), func(p query.Pages[entities.Comment]) query.Pages[entities.Comment] {
				return p.Prepend(placeholder)
			})
			s.adjustComments(tx, postID, 1)
		},
		Do: func(ctx context.Context) (entities.Comment, error) {
			return s.api.CreateComment(ctx, postID, content)
		},
		OnSuccess: func(c *query.Client, created entities.Comment) {
			if p, ok := query.GetData[query.Pages[entities.Comment]](c, CommentsKey(postID)); ok {
				query.SetData(c, CommentsKey(postID), p.Map(func(cm entities.Comment) entities.Comment {
					if cm.ID == placeholder.ID {
						return created
					}
					return cm
				}))
			}
		},
		Invalidate: []query.Key{CommentsKey(postID), PostKey(postID), PostsKey},
	})
}

// DeleteComment hides the comment right away.
func (s *Service) DeleteComment(ctx context.Context, postID, commentID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, CommentsKey(postID), func(p query.Pages[entities.Comment]) query.Pages[entities.Comment] {
				return p.Filter(func(c entities.Comment) bool { return c.ID != commentID })
			})
			s.adjustComments(tx, postID, -1)
		},
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeleteComment(ctx, commentID)
		},
		Invalidate: []query.Key{CommentsKey(postID), PostKey(postID), PostsKey},
	})
	return err
}

// ToggleFollow follows or unfollows userID depending on the cached
// relationship, updating every list that shows the user.
func (s *Service) ToggleFollow(ctx context.Context, userID int64) (bool, error) {
	prof, err := s.Profile(ctx, userID)
	if err != nil {
		return false, err
	}
	want := !prof.Following
	delta := countDelta(want)

	setUser := func(u entities.FollowUser) entities.FollowUser {
		if u.ID == userID {
			u.Following = want
		}
		return u
	}
	setPage := func(p entities.Page[entities.FollowUser]) entities.Page[entities.FollowUser] {
		items := make([]entities.FollowUser, len(p.Items))
		for i, u := range p.Items {
			items[i] = setUser(u)
		}
		p.Items = items
		return p
	}

	_, err = query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, ProfileKey(userID), func(p entities.Profile) entities.Profile {
				if p.Following != want {
					p.Following = want
					p.FollowerCount = max(0, p.FollowerCount+delta)
				}
				return p
			})
			query.Update(tx, MyProfileKey, func(p entities.Profile) entities.Profile {
				p.FollowingCount = max(0, p.FollowingCount+delta)
				return p
			})
			query.Update(tx, RecommendationsKey, func(us []entities.FollowUser) []entities.FollowUser {
				out := make([]entities.FollowUser, len(us))
				for i, u := range us {
					out[i] = setUser(u)
				}
				return out
			})
			query.UpdateAll(tx, FollowersRootKey, setPage)
			query.UpdateAll(tx, FollowingRootKey, setPage)
		},
		Do: func(ctx context.Context) (struct{}, error) {
			if want {
				return struct{}{}, s.api.Follow(ctx, userID)
			}
			return struct{}{}, s.api.Unfollow(ctx, userID)
		},
		Invalidate: []query.Key{
			ProfileKey(userID), MyProfileKey, RecommendationsKey, FollowersRootKey, FollowingRootKey,
		},
	})
	if err != nil {
		return prof.Following, err
	}
	return want, nil
}

// UpdateProfile merges req into the own profile before sending it.
func (s *Service) UpdateProfile(ctx context.Context, req entities.UpdateProfileRequest) (entities.Profile, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[entities.Profile]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, MyProfileKey, req.Apply)
		},
		Do: func(ctx context.Context) (entities.Profile, error) {
			return s.api.UpdateProfile(ctx, req)
		},
		OnSuccess: func(c *query.Client, p entities.Profile) {
			query.SetData(c, MyProfileKey, p)
		},
		Invalidate: []query.Key{MyProfileKey, ProfileKey(s.me())},
	})
}

func (s *Service) UpdateNotificationSetting(ctx context.Context, ns entities.NotificationSetting) (entities.NotificationSetting, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[entities.NotificationSetting]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, NotificationSettingKey, func(entities.NotificationSetting) entities.NotificationSetting {
				return ns
			})
		},
		Do: func(ctx context.Context) (entities.NotificationSetting, error) {
			return s.api.UpdateNotificationSetting(ctx, ns)
		},
		Invalidate: []query.Key{NotificationSettingKey},
	})
}

func (s *Service) MarkNotificationRead(ctx context.Context, notificationID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, NotificationsKey, func(p query.Pages[entities.Notification]) query.Pages[entities.Notification] {
				return p.Map(func(n entities.Notification) entities.Notification {
					if n.ID == notificationID {
						n.Read = true
					}
					return n
				})
			})
		},
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.MarkNotificationRead(ctx, notificationID)
		},
		Invalidate: []query.Key{NotificationsKey},
	})
	return err
}

// MarkRoomRead clears the unread badge of a room.
func (s *Service) MarkRoomRead(ctx context.Context, roomID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, ChatRoomsKey, func(rooms []entities.ChatRoom) []entities.ChatRoom {
				out := make([]entities.ChatRoom, len(rooms))
				for i, r := range rooms {
					if r.ID == roomID {
						r.UnreadCount = 0
					}
					out[i] = r
				}
				return out
			})
		},
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.MarkRoomRead(ctx, roomID)
		},
		Invalidate: []query.Key{ChatRoomsKey},
	})
	return err
}

// SendMessage shows the message as a placeholder on top of the room until
// the server stores it.
func (s *Service) SendMessage(ctx context.Context, roomID int64, content string) (entities.ChatMessage, error) {
	placeholder := entities.ChatMessage{
		ID:       query.TempID(),
		RoomID:   roomID,
		SenderID: s.me(),
		Content:  content,
		SentAt:   time.Now(),
	}
	return query.Mutate(ctx, s.cache, query.Mutation[entities.ChatMessage]{
		Optimistic: func(tx *query.Tx) {
			query.Update(tx, MessagesKey(roomID), func(p query.Pages[entities.ChatMessage]) query.Pages[entities.ChatMessage] {
				return p.Prepend(placeholder)
			})
			query.Update(tx, ChatRoomsKey, func(rooms []entities.ChatRoom) []entities.ChatRoom {
				out := make([]entities.ChatRoom, len(rooms))
				for i, r := range rooms {
					if r.ID == roomID {
						msg := placeholder
						r.LastMessage = &msg
					}
					out[i] = r
				}
				return out
			})
		},
		Do: func(ctx context.Context) (entities.ChatMessage, error) {
			return s.api.SendMessage(ctx, roomID, content)
		},
		Invalidate: []query.Key{MessagesKey(roomID), ChatRoomsKey},
	})
}

func (s *Service) CreateChatRoom(ctx context.Context, name string, members []int64) (entities.ChatRoom, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[entities.ChatRoom]{
		Do: func(ctx context.Context) (entities.ChatRoom, error) {
			return s.api.CreateChatRoom(ctx, entities.CreateChatRoomRequest{Name: name, MemberIDs: members})
		},
		Invalidate: []query.Key{ChatRoomsKey},
	})
}

func (s *Service) CreatePost(ctx context.Context, req entities.CreatePostRequest) (entities.Post, error) {
	return query.Mutate(ctx, s.cache, query.Mutation[entities.Post]{
		Do: func(ctx context.Context) (entities.Post, error) {
			return s.api.CreatePost(ctx, req)
		},
		OnSuccess: func(c *query.Client, p entities.Post) {
			query.SetData(c, PostKey(p.ID), p)
		},
		Invalidate: []query.Key{PostsKey, MyProfileKey},
	})
}

// DeletePost drops the post from every feed immediately.
func (s *Service) DeletePost(ctx context.Context, postID int64) error {
	_, err := query.Mutate(ctx, s.cache, query.Mutation[struct{}]{
		Optimistic: func(tx *query.Tx) {
			query.UpdateAll(tx, PostsKey, func(p query.Pages[entities.Post]) query.Pages[entities.Post] {
				return p.Filter(func(p entities.Post) bool { return p.ID != postID })
			})
		},
		Do: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.DeletePost(ctx, postID)
		},
		OnSuccess: func(c *query.Client, _ struct{}) {
			c.Remove(PostKey(postID))
			c.Remove(CommentsKey(postID))
		},
		Invalidate: []query.Key{PostsKey, MyProfileKey},
	})
	return err
}

// UploadImage stores an image through a presigned URL and returns its key.
func (s *Service) UploadImage(ctx context.Context, fileName, contentType string, r io.Reader) (entities.UploadedImage, error) {
	return s.api.UploadImage(ctx, fileName, contentType, r)
}
