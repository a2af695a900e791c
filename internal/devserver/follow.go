package devserver

import (
	"net/http"
	"strconv"

	"socialnet/internal/entities"
)

func (s *Server) followHandler(w http.ResponseWriter, r *http.Request) {
	target, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	me := principalFrom(r.Context())
	if err := s.store.Follow(r.Context(), me.UserID, target); err != nil {
		writeError(w, err)
		return
	}
	s.notify(r.Context(), target, entities.NotificationFollow, "started following you", me.UserID)
	s.log.Infow("follow", "follower_id", me.UserID, "following_id", target)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) unfollowHandler(w http.ResponseWriter, r *http.Request) {
	target, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.Unfollow(r.Context(), principalFrom(r.Context()).UserID, target); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) followersHandler(w http.ResponseWriter, r *http.Request) {
	s.followListHandler(w, r, true)
}

func (s *Server) followingHandler(w http.ResponseWriter, r *http.Request) {
	s.followListHandler(w, r, false)
}

func (s *Server) followListHandler(w http.ResponseWriter, r *http.Request, followers bool) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	size, cursor, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	me := principalFrom(r.Context())

	list := s.store.ListFollowing
	if followers {
		list = s.store.ListFollowers
	}
	pg, err := list(r.Context(), me.UserID, userID, size, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) recommendationsHandler(w http.ResponseWriter, r *http.Request) {
	size := 10
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, invalid("invalid size"))
			return
		}
		size = min(n, entities.MaxPageSize)
	}
	users, err := s.store.Recommendations(r.Context(), principalFrom(r.Context()).UserID, size)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}
