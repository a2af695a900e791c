package devserver

import (
	"net/http"
	"strings"

	"socialnet/internal/entities"
)

func (s *Server) myProfileHandler(w http.ResponseWriter, r *http.Request) {
	me := principalFrom(r.Context())
	p, err := s.store.Profile(r.Context(), me.UserID, me.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) profileHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.Profile(r.Context(), principalFrom(r.Context()).UserID, userID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) updateProfileHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.UpdateProfileRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if req.Nickname != nil {
		nick := strings.TrimSpace(*req.Nickname)
		if nick == "" {
			writeError(w, invalid("nickname must not be empty"))
			return
		}
		req.Nickname = &nick
	}

	me := principalFrom(r.Context())
	if req.ProfileImageKey != nil && *req.ProfileImageKey != "" {
		up, err := s.store.GetUpload(r.Context(), *req.ProfileImageKey)
		if err != nil || !up.Uploaded || up.UserID != me.UserID {
			writeError(w, invalid("unknown image key"))
			return
		}
	}
	if err := s.store.UpdateProfile(r.Context(), me.UserID, req); err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.Profile(r.Context(), me.UserID, me.UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
