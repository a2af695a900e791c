package entities

import "time"

// Post is a message published on a community board.
type Post struct {
	ID             int64     `json:"id"`
	AuthorID       int64     `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Board          string    `json:"board"`
	Content        string    `json:"content"`
	ImageKeys      []string  `json:"imageKeys,omitempty"`
	LikeCount      int       `json:"likeCount"`
	CommentCount   int       `json:"commentCount"`
	Liked          bool      `json:"liked"`
	CreatedAt      time.Time `json:"createdAt"`
}

// CreatePostRequest is the body of a new post.
type CreatePostRequest struct {
	Board     string   `json:"board"`
	Content   string   `json:"content"`
	ImageKeys []string `json:"imageKeys,omitempty"`
}

// LikeResult is the server state of a like after a toggle.
type LikeResult struct {
	PostID    int64 `json:"postId"`
	Liked     bool  `json:"liked"`
	LikeCount int   `json:"likeCount"`
}
