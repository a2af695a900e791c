package devserver

import (
	"net/http"
	"strings"

	"socialnet/internal/entities"
)

const maxCommentLength = 2000

func (s *Server) listCommentsHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	size, cursor, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pg, err := s.store.ListComments(r.Context(), postID, size, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) createCommentHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	var req entities.CreateCommentRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, invalid("content is required"))
		return
	}
	if len(req.Content) > maxCommentLength {
		writeError(w, invalid("comment is too long"))
		return
	}

	me := principalFrom(r.Context())
	c, err := s.store.CreateComment(r.Context(), me.UserID, postID, req.Content)
	if err != nil {
		writeError(w, err)
		return
	}
	if owner, err := s.store.PostOwner(r.Context(), postID); err == nil && owner != me.UserID {
		s.notify(r.Context(), owner, entities.NotificationComment, "commented on your post", me.UserID)
	}
	s.log.Infow("comment created", "user_id", me.UserID, "post_id", postID, "comment_id", c.ID)
	writeJSON(w, http.StatusCreated, c)
}

func (s *Server) deleteCommentHandler(w http.ResponseWriter, r *http.Request) {
	commentID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if _, err := s.store.DeleteComment(r.Context(), principalFrom(r.Context()).UserID, commentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
