package devserver

import (
	"context"
	"net/http"
	"strings"

	"socialnet/internal/entities"
)

const maxPostImages = 10

func (s *Server) listPostsHandler(w http.ResponseWriter, r *http.Request) {
	size, cursor, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	me := principalFrom(r.Context())
	pg, err := s.store.ListPosts(r.Context(), me.UserID, r.URL.Query().Get("board"), size, cursor)
	if err != nil {
		s.log.Errorw("list posts", "error", err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) getPostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	p, err := s.store.GetPost(r.Context(), principalFrom(r.Context()).UserID, postID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) createPostHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.CreatePostRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	req.Content = strings.TrimSpace(req.Content)
	if req.Content == "" {
		writeError(w, invalid("content is required"))
		return
	}
	if req.Board == "" {
		req.Board = "free"
	}
	if len(req.ImageKeys) > maxPostImages {
		writeError(w, invalid("too many images"))
		return
	}

	me := principalFrom(r.Context())
	for _, key := range req.ImageKeys {
		up, err := s.store.GetUpload(r.Context(), key)
		if err != nil || !up.Uploaded || up.UserID != me.UserID {
			writeError(w, invalid("unknown image key "+key))
			return
		}
	}

	p, err := s.store.CreatePost(r.Context(), me.UserID, req)
	if err != nil {
		s.log.Errorw("create post", "user_id", me.UserID, "error", err)
		writeError(w, err)
		return
	}
	s.log.Infow("post created", "user_id", me.UserID, "post_id", p.ID)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) deletePostHandler(w http.ResponseWriter, r *http.Request) {
	postID, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.DeletePost(r.Context(), principalFrom(r.Context()).UserID, postID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) likeHandler(liked bool) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		postID, err := pathID(r, "id")
		if err != nil {
			writeError(w, err)
			return
		}
		me := principalFrom(r.Context())
		res, err := s.store.SetLike(r.Context(), me.UserID, postID, liked)
		if err != nil {
			writeError(w, err)
			return
		}
		if liked {
			if owner, err := s.store.PostOwner(r.Context(), postID); err == nil && owner != me.UserID {
				s.notify(r.Context(), owner, entities.NotificationLike, "liked your post", me.UserID)
			}
		}
		writeJSON(w, http.StatusOK, res)
	}
}

// notify stores a notification from actor to userID. Failures are logged
// and never fail the triggering request.
func (s *Server) notify(ctx context.Context, userID int64, kind, action string, actor int64) {
	nick, err := s.store.Nickname(ctx, actor)
	if err != nil {
		nick = "Someone"
	}
	if _, err := s.store.CreateNotification(ctx, userID, kind, nick+" "+action, &actor); err != nil {
		s.log.Warnw("create notification", "user_id", userID, "type", kind, "error", err)
	}
}
