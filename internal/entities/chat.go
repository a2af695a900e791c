package entities

import "time"

// ChatRoom is a conversation between two or more users.
type ChatRoom struct {
	ID          int64        `json:"id"`
	Name        string       `json:"name"`
	MemberIDs   []int64      `json:"memberIds"`
	LastMessage *ChatMessage `json:"lastMessage,omitempty"`
	UnreadCount int          `json:"unreadCount"`
	UpdatedAt   time.Time    `json:"updatedAt"`
}

// ChatMessage is a single message of a room. Negative IDs mark placeholders.
type ChatMessage struct {
	ID       int64     `json:"id"`
	RoomID   int64     `json:"roomId"`
	SenderID int64     `json:"senderId"`
	Content  string    `json:"content"`
	SentAt   time.Time `json:"sentAt"`
}

// CreateChatRoomRequest opens a room with the given members.
type CreateChatRoomRequest struct {
	Name      string  `json:"name"`
	MemberIDs []int64 `json:"memberIds"`
}

// SendMessageRequest is the body of a new chat message.
type SendMessageRequest struct {
	Content string `json:"content"`
}
