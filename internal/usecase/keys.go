package usecase

import "socialnet/internal/query"

// Cache keys. Prefix matching lets PostsKey address every board feed.
var (
	PostsKey               = query.K("posts")
	FollowersRootKey       = query.K("followers")
	FollowingRootKey       = query.K("following")
	MyProfileKey           = query.K("profile", "me")
	RecommendationsKey     = query.K("recommendations")
	ChatRoomsKey           = query.K("chatRooms")
	NotificationsKey       = query.K("notifications")
	NotificationSettingKey = query.K("notificationSetting")
)

func FeedKey(board string) query.Key { return query.K("posts", board) }

func PostKey(id int64) query.Key { return query.K("post", id) }

func CommentsKey(postID int64) query.Key { return query.K("comments", postID) }

func ProfileKey(userID int64) query.Key { return query.K("profile", userID) }

func FollowersKey(userID int64) query.Key { return query.K("followers", userID) }

func FollowingKey(userID int64) query.Key { return query.K("following", userID) }

func MessagesKey(roomID int64) query.Key { return query.K("messages", roomID) }
