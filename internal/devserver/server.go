// Package devserver is a development backend implementing the REST contract
// consumed by the socialnet client, persisted in SQLite.
package devserver

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/devserver/store"
)

const apiPrefix = "/api/v1"

// Options configure a Server.
type Options struct {
	JWTSecret []byte
	TokenTTL  time.Duration
	// PublicURL prefixes presigned upload links. Empty means "derive from
	// the request host".
	PublicURL      string
	UploadDir      string
	PresignTTL     time.Duration
	MaxUploadBytes int64
	// BcryptCost hashes new passwords. Zero means bcrypt.DefaultCost.
	BcryptCost int
	Now        func() time.Time
}

// Server serves the API.
type Server struct {
	store *store.Store
	log   *zap.SugaredLogger
	opts  Options
	hub   *hub
	mux   *http.ServeMux
}

// New wires the routes.
func New(st *store.Store, log *zap.SugaredLogger, opts Options) (*Server, error) {
	if len(opts.JWTSecret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if opts.UploadDir == "" {
		return nil, errors.New("upload dir is required")
	}
	if opts.TokenTTL <= 0 {
		opts.TokenTTL = 24 * time.Hour
	}
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = 5 * time.Minute
	}
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.BcryptCost == 0 {
		opts.BcryptCost = bcrypt.DefaultCost
	}
	if opts.BcryptCost < bcrypt.MinCost || opts.BcryptCost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost %d out of range", opts.BcryptCost)
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	s := &Server{store: st, log: log, opts: opts, hub: newHub(log), mux: http.NewServeMux()}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	handle := func(pattern string, h http.HandlerFunc) {
		method, path, _ := strings.Cut(pattern, " ")
		s.mux.HandleFunc(method+" "+apiPrefix+path, h)
	}
	auth := s.requireAuth

	s.mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.Ping(r.Context()); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusOK)
	})

	handle("POST /auth/register", s.registerHandler)
	handle("POST /auth/login", s.loginHandler)

	handle("GET /posts", auth(s.listPostsHandler))
	handle("POST /posts", auth(s.createPostHandler))
	handle("GET /posts/{id}", auth(s.getPostHandler))
	handle("DELETE /posts/{id}", auth(s.deletePostHandler))
	handle("POST /posts/{id}/like", auth(s.likeHandler(true)))
	handle("DELETE /posts/{id}/like", auth(s.likeHandler(false)))

	handle("GET /posts/{id}/comments", auth(s.listCommentsHandler))
	handle("POST /posts/{id}/comments", auth(s.createCommentHandler))
	handle("DELETE /comments/{id}", auth(s.deleteCommentHandler))

	handle("POST /follow/{id}", auth(s.followHandler))
	handle("DELETE /follow/{id}", auth(s.unfollowHandler))
	handle("GET /follow/recommendations", auth(s.recommendationsHandler))
	handle("GET /users/{id}/followers", auth(s.followersHandler))
	handle("GET /users/{id}/following", auth(s.followingHandler))

	handle("GET /profile/me", auth(s.myProfileHandler))
	handle("PATCH /profile/me", auth(s.updateProfileHandler))
	handle("GET /users/{id}/profile", auth(s.profileHandler))

	handle("GET /chat/rooms", auth(s.listRoomsHandler))
	handle("POST /chat/rooms", auth(s.createRoomHandler))
	handle("GET /chat/rooms/{id}/messages", auth(s.listMessagesHandler))
	handle("POST /chat/rooms/{id}/messages", auth(s.sendMessageHandler))
	handle("PUT /chat/rooms/{id}/read", auth(s.markRoomReadHandler))
	handle("GET /chat/rooms/{id}/ws", auth(s.roomSocketHandler))

	handle("GET /notifications", auth(s.listNotificationsHandler))
	handle("PATCH /notifications/{id}/read", auth(s.markNotificationReadHandler))
	handle("GET /notifications/settings", auth(s.getNotificationSettingHandler))
	handle("PUT /notifications/settings", auth(s.putNotificationSettingHandler))

	handle("POST /images/presign", auth(s.presignHandler))
	s.mux.HandleFunc("PUT /uploads/{key...}", s.uploadHandler)
	s.mux.Handle("GET /uploads/", http.StripPrefix("/uploads/", http.FileServer(http.Dir(s.opts.UploadDir))))
}

// Handler returns the root handler with logging, recovery and CORS.
func (s *Server) Handler() http.Handler {
	return requestLogger(s.log, recoverer(s.log, cors(s.mux)))
}

// Close drops every websocket connection.
func (s *Server) Close() {
	s.hub.closeAll()
}
