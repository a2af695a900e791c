package store

import (
	"context"
	"database/sql"
	"fmt"

	"socialnet/internal/entities"
)

// CreateRoom opens a room holding creator and members.
func (s *Store) CreateRoom(ctx context.Context, creator int64, name string, members []int64) (entities.ChatRoom, error) {
	var roomID int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO chat_rooms (name) VALUES (?)`, name)
		if err != nil {
			return fmt.Errorf("insert room: %w", mapErr(err))
		}
		if roomID, err = res.LastInsertId(); err != nil {
			return err
		}
		for _, uid := range append([]int64{creator}, members...) {
			if _, err := tx.ExecContext(ctx,
				`INSERT OR IGNORE INTO chat_members (room_id, user_id) VALUES (?, ?)`, roomID, uid); err != nil {
				return fmt.Errorf("insert member %d: %w", uid, mapErr(err))
			}
		}
		return nil
	})
	if err != nil {
		return entities.ChatRoom{}, err
	}
	return s.Room(ctx, creator, roomID)
}

// IsMember reports whether userID belongs to roomID.
func (s *Store) IsMember(ctx context.Context, roomID, userID int64) (bool, error) {
	var ok bool
	err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM chat_members WHERE room_id = ? AND user_id = ?)`, roomID, userID).Scan(&ok)
	return ok, err
}

// RoomMembers returns the user ids of a room.
func (s *Store) RoomMembers(ctx context.Context, roomID int64) ([]int64, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM chat_members WHERE room_id = ? ORDER BY user_id`, roomID)
	if err != nil {
		return nil, fmt.Errorf("room members: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Room returns one room as seen by userID.
func (s *Store) Room(ctx context.Context, userID, roomID int64) (entities.ChatRoom, error) {
	rooms, err := s.rooms(ctx, userID, roomID)
	if err != nil {
		return entities.ChatRoom{}, err
	}
	if len(rooms) == 0 {
		return entities.ChatRoom{}, fmt.Errorf("room %d: %w", roomID, entities.ErrNotFound)
	}
	return rooms[0], nil
}

// ListRooms returns the rooms of userID, most recently active first.
func (s *Store) ListRooms(ctx context.Context, userID int64) ([]entities.ChatRoom, error) {
	return s.rooms(ctx, userID, 0)
}

func (s *Store) rooms(ctx context.Context, userID, onlyRoom int64) ([]entities.ChatRoom, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.id, r.name, r.updated_at,
			(SELECT COUNT(*) FROM chat_messages m
				WHERE m.room_id = r.id AND m.id > cm.last_read_message_id AND m.sender_id != cm.user_id)
		FROM chat_rooms r JOIN chat_members cm ON cm.room_id = r.id AND cm.user_id = ?
		WHERE ? = 0 OR r.id = ?
		ORDER BY r.updated_at DESC, r.id DESC`, userID, onlyRoom, onlyRoom)
	if err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	var rooms []entities.ChatRoom
	for rows.Next() {
		var r entities.ChatRoom
		if err := rows.Scan(&r.ID, &r.Name, &r.UpdatedAt, &r.UnreadCount); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan room: %w", err)
		}
		rooms = append(rooms, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range rooms {
		if rooms[i].MemberIDs, err = s.RoomMembers(ctx, rooms[i].ID); err != nil {
			return nil, err
		}
		last, err := s.lastMessage(ctx, rooms[i].ID)
		if err != nil {
			return nil, err
		}
		rooms[i].LastMessage = last
	}
	if rooms == nil {
		rooms = []entities.ChatRoom{}
	}
	return rooms, nil
}

func (s *Store) lastMessage(ctx context.Context, roomID int64) (*entities.ChatMessage, error) {
	var m entities.ChatMessage
	err := s.db.QueryRowContext(ctx, `
		SELECT id, room_id, sender_id, content, sent_at FROM chat_messages
		WHERE room_id = ? ORDER BY id DESC LIMIT 1`, roomID).
		Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.SentAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("last message: %w", err)
	}
	return &m, nil
}

// ListMessages returns messages of a room newest first.
func (s *Store) ListMessages(ctx context.Context, roomID int64, size int, cursor int64) (entities.Page[entities.ChatMessage], error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, room_id, sender_id, content, sent_at FROM chat_messages
		WHERE room_id = ? AND id < ?
		ORDER BY id DESC LIMIT ?`, roomID, beforeID(cursor), size+1)
	if err != nil {
		return entities.Page[entities.ChatMessage]{}, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var msgs []entities.ChatMessage
	for rows.Next() {
		var m entities.ChatMessage
		if err := rows.Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.SentAt); err != nil {
			return entities.Page[entities.ChatMessage]{}, fmt.Errorf("scan message: %w", err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return entities.Page[entities.ChatMessage]{}, err
	}
	return pageOf(msgs, size, func(m entities.ChatMessage) int64 { return m.ID }), nil
}

// CreateMessage stores a message and bumps the room activity time.
func (s *Store) CreateMessage(ctx context.Context, roomID, senderID int64, content string) (entities.ChatMessage, error) {
	var msgID int64
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `INSERT INTO chat_messages (room_id, sender_id, content) VALUES (?, ?, ?)`,
			roomID, senderID, content)
		if err != nil {
			return fmt.Errorf("insert message: %w", mapErr(err))
		}
		if msgID, err = res.LastInsertId(); err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `UPDATE chat_rooms SET updated_at = CURRENT_TIMESTAMP WHERE id = ?`, roomID); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`UPDATE chat_members SET last_read_message_id = ? WHERE room_id = ? AND user_id = ?`, msgID, roomID, senderID)
		return err
	})
	if err != nil {
		return entities.ChatMessage{}, err
	}

	var m entities.ChatMessage
	err = s.db.QueryRowContext(ctx, `SELECT id, room_id, sender_id, content, sent_at FROM chat_messages WHERE id = ?`, msgID).
		Scan(&m.ID, &m.RoomID, &m.SenderID, &m.Content, &m.SentAt)
	if err != nil {
		return entities.ChatMessage{}, mapErr(err)
	}
	return m, nil
}

// MarkRoomRead moves userID's read marker to the newest message.
func (s *Store) MarkRoomRead(ctx context.Context, roomID, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE chat_members
		SET last_read_message_id = COALESCE((SELECT MAX(id) FROM chat_messages WHERE room_id = ?), 0)
		WHERE room_id = ? AND user_id = ?`, roomID, roomID, userID)
	if err != nil {
		return fmt.Errorf("mark read: %w", err)
	}
	return requireOne(res)
}
