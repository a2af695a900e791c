package devserver

import (
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"socialnet/internal/entities"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (s *Server) listRoomsHandler(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.store.ListRooms(r.Context(), principalFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	if rooms == nil {
		rooms = []entities.ChatRoom{}
	}
	writeJSON(w, http.StatusOK, rooms)
}

func (s *Server) createRoomHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.CreateChatRoomRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if len(req.MemberIDs) == 0 {
		writeError(w, invalid("at least one member is required"))
		return
	}
	me := principalFrom(r.Context())
	for _, id := range req.MemberIDs {
		ok, err := s.store.UserExists(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}
		if !ok {
			writeError(w, entities.ErrNotFound)
			return
		}
	}
	room, err := s.store.CreateRoom(r.Context(), me.UserID, strings.TrimSpace(req.Name), req.MemberIDs)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Infow("chat room created", "room_id", room.ID, "user_id", me.UserID)
	writeJSON(w, http.StatusCreated, room)
}

// memberRoom resolves the {id} room and checks the caller belongs to it.
func (s *Server) memberRoom(r *http.Request) (int64, error) {
	roomID, err := pathID(r, "id")
	if err != nil {
		return 0, err
	}
	ok, err := s.store.IsMember(r.Context(), roomID, principalFrom(r.Context()).UserID)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, entities.ErrForbidden
	}
	return roomID, nil
}

func (s *Server) listMessagesHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := s.memberRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	size, cursor, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pg, err := s.store.ListMessages(r.Context(), roomID, size, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) sendMessageHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := s.memberRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	var req entities.SendMessageRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if strings.TrimSpace(req.Content) == "" {
		writeError(w, invalid("content is required"))
		return
	}

	me := principalFrom(r.Context())
	msg, err := s.store.CreateMessage(r.Context(), roomID, me.UserID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	s.hub.broadcast(roomID, msg)

	members, err := s.store.RoomMembers(r.Context(), roomID)
	if err != nil {
		s.log.Warnw("room members", "room_id", roomID, "error", err)
	}
	for _, uid := range members {
		if uid != me.UserID {
			s.notify(r.Context(), uid, entities.NotificationChat, "sent you a message", me.UserID)
		}
	}
	writeJSON(w, http.StatusCreated, msg)
}

func (s *Server) markRoomReadHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := s.memberRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.MarkRoomRead(r.Context(), roomID, principalFrom(r.Context()).UserID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// roomSocketHandler streams new messages of a room. Clients only read;
// sending goes through the REST endpoint.
func (s *Server) roomSocketHandler(w http.ResponseWriter, r *http.Request) {
	roomID, err := s.memberRoom(r)
	if err != nil {
		writeError(w, err)
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warnw("websocket upgrade", "error", err)
		return
	}
	c := &wsClient{conn: conn, userID: principalFrom(r.Context()).UserID}
	s.hub.register(roomID, c)
	s.log.Debugw("websocket connected", "room_id", roomID, "user_id", c.userID)

	defer func() {
		s.hub.unregister(roomID, c)
		_ = conn.Close()
		s.log.Debugw("websocket disconnected", "room_id", roomID, "user_id", c.userID)
	}()
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
