package entities

import "time"

// Comment is a reply to a post. Comments with a negative ID are local
// placeholders that the server has not confirmed yet.
type Comment struct {
	ID             int64     `json:"id"`
	PostID         int64     `json:"postId"`
	AuthorID       int64     `json:"authorId"`
	AuthorNickname string    `json:"authorNickname"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Pending reports whether c is a placeholder.
func (c Comment) Pending() bool { return c.ID < 0 }

// CreateCommentRequest is the body of a new comment.
type CreateCommentRequest struct {
	Content string `json:"content"`
}
