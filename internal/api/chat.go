package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"socialnet/internal/entities"
)

// ListChatRooms returns the rooms of the current user, most recent first.
func (a *API) ListChatRooms(ctx context.Context) ([]entities.ChatRoom, error) {
	var out []entities.ChatRoom
	err := a.http.Do(ctx, http.MethodGet, "chat/rooms", nil, nil, &out)
	return out, err
}

// CreateChatRoom opens a room with the given members.
func (a *API) CreateChatRoom(ctx context.Context, req entities.CreateChatRoomRequest) (entities.ChatRoom, error) {
	var out entities.ChatRoom
	err := a.http.Do(ctx, http.MethodPost, "chat/rooms", nil, req, &out)
	return out, err
}

// ListMessages returns one page of messages of a room, newest first.
func (a *API) ListMessages(ctx context.Context, roomID int64, p entities.PageRequest) (entities.Page[entities.ChatMessage], error) {
	var out entities.Page[entities.ChatMessage]
	err := a.http.Do(ctx, http.MethodGet, "chat/rooms/"+id(roomID)+"/messages", pageQuery(p), nil, &out)
	return out, err
}

// SendMessage posts a message to a room.
func (a *API) SendMessage(ctx context.Context, roomID int64, content string) (entities.ChatMessage, error) {
	var out entities.ChatMessage
	err := a.http.Do(ctx, http.MethodPost, "chat/rooms/"+id(roomID)+"/messages", nil,
		entities.SendMessageRequest{Content: content}, &out)
	return out, err
}

// MarkRoomRead marks every message of a room as read.
func (a *API) MarkRoomRead(ctx context.Context, roomID int64) error {
	return a.http.Do(ctx, http.MethodPut, "chat/rooms/"+id(roomID)+"/read", nil, nil, nil)
}

// WatchRoom streams messages pushed to a room until ctx ends or the
// connection drops. It returns nil when ctx is cancelled.
func (a *API) WatchRoom(ctx context.Context, roomID int64, fn func(entities.ChatMessage)) error {
	header := http.Header{}
	if tok := a.http.Token(); tok != "" {
		header.Set("Authorization", "Bearer "+tok)
	}

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, a.http.WebsocketURL("chat/rooms/"+id(roomID)+"/ws", nil), header)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("watch room %d: %d: %w", roomID, resp.StatusCode, err)
		}
		return fmt.Errorf("watch room %d: %w", roomID, err)
	}
	defer conn.Close()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-stop:
		}
	}()

	for {
		var msg entities.ChatMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return fmt.Errorf("watch room %d: %w", roomID, err)
		}
		fn(msg)
	}
}
