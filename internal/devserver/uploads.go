package devserver

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"socialnet/internal/devserver/store"
	"socialnet/internal/entities"
)

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

func (s *Server) publicURL(r *http.Request) string {
	if s.opts.PublicURL != "" {
		return strings.TrimRight(s.opts.PublicURL, "/")
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}

func (s *Server) presignHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.PresignRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	ext, ok := imageTypes[req.ContentType]
	if !ok {
		writeError(w, invalid("unsupported content type "+req.ContentType))
		return
	}
	if strings.EqualFold(path.Ext(req.FileName), ".jpeg") && ext == ".jpg" {
		ext = ".jpeg"
	}

	me := principalFrom(r.Context())
	key := "images/" + uuid.NewString() + ext
	expires := s.opts.Now().Add(s.opts.PresignTTL).Truncate(time.Second)
	err := s.store.CreateUpload(r.Context(), store.Upload{
		Key:         key,
		UserID:      me.UserID,
		ContentType: req.ContentType,
		ExpiresAt:   expires,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	uploadURL := fmt.Sprintf("%s/uploads/%s?expires=%d&sig=%s",
		s.publicURL(r), key, expires.Unix(), s.signUpload(key, expires))
	writeJSON(w, http.StatusOK, entities.PresignedUpload{UploadURL: uploadURL, Key: key, ExpiresAt: expires})
}

// uploadHandler accepts the direct PUT of a presigned slot. The signature
// replaces the bearer token.
func (s *Server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	unix, err := strconv.ParseInt(r.URL.Query().Get("expires"), 10, 64)
	if err != nil {
		writeError(w, entities.ErrForbidden)
		return
	}
	expires := time.Unix(unix, 0)
	if !s.verifyUpload(key, expires, r.URL.Query().Get("sig")) || s.opts.Now().After(expires) {
		writeError(w, entities.ErrForbidden)
		return
	}

	up, err := s.store.GetUpload(r.Context(), key)
	if err != nil {
		writeError(w, err)
		return
	}
	if up.Uploaded {
		writeError(w, entities.ErrConflict)
		return
	}
	if ct := r.Header.Get("Content-Type"); ct != "" && ct != up.ContentType {
		writeError(w, invalid("content type does not match the presigned one"))
		return
	}

	dst := filepath.Join(s.opts.UploadDir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		s.log.Errorw("create upload dir", "error", err)
		writeError(w, err)
		return
	}
	f, err := os.Create(dst)
	if err != nil {
		s.log.Errorw("create upload file", "key", key, "error", err)
		writeError(w, err)
		return
	}
	n, err := io.Copy(f, http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(dst)
		s.log.Warnw("upload failed", "key", key, "error", err)
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, entities.ErrorResponse{
				Code:    "PAYLOAD_TOO_LARGE",
				Message: fmt.Sprintf("image exceeds %d bytes", tooLarge.Limit),
			})
			return
		}
		writeError(w, invalid("upload failed"))
		return
	}
	if err := s.store.CompleteUpload(r.Context(), key, n); err != nil {
		writeError(w, err)
		return
	}

	s.log.Infow("image uploaded", "key", key, "bytes", n)
	writeJSON(w, http.StatusOK, entities.UploadedImage{Key: key, URL: s.publicURL(r) + "/uploads/" + key})
}
