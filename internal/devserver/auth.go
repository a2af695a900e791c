package devserver

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"socialnet/internal/entities"
)

type ctxKey struct{}

type principal struct {
	UserID int64
	Email  string
}

func withPrincipal(ctx context.Context, p principal) context.Context {
	return context.WithValue(ctx, ctxKey{}, p)
}

func principalFrom(ctx context.Context) principal {
	p, _ := ctx.Value(ctxKey{}).(principal)
	return p
}

type claims struct {
	UserID int64  `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

func (s *Server) generateJWT(userID int64, email string) (string, error) {
	now := s.opts.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.opts.TokenTTL)),
		},
	})
	return token.SignedString(s.opts.JWTSecret)
}

func (s *Server) parseJWT(raw string) (principal, error) {
	var c claims
	_, err := jwt.ParseWithClaims(raw, &c, func(t *jwt.Token) (any, error) {
		return s.opts.JWTSecret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.opts.Now))
	if err != nil {
		return principal{}, fmt.Errorf("%w: %v", entities.ErrUnauthorized, err)
	}
	if c.UserID <= 0 {
		return principal{}, fmt.Errorf("%w: missing user id", entities.ErrUnauthorized)
	}
	return principal{UserID: c.UserID, Email: c.Email}, nil
}

// requireAuth rejects requests without a valid bearer token.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, entities.ErrUnauthorized)
			return
		}
		p, err := s.parseJWT(raw)
		if err != nil {
			s.log.Debugw("invalid token", "error", err)
			writeError(w, err)
			return
		}
		next(w, r.WithContext(withPrincipal(r.Context(), p)))
	}
}

func (s *Server) registerHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.RegisterRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		writeError(w, invalid("invalid email"))
		return
	}
	if len(req.Password) < 8 {
		writeError(w, invalid("password must be at least 8 characters"))
		return
	}
	if strings.TrimSpace(req.Nickname) == "" {
		writeError(w, invalid("nickname is required"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.opts.BcryptCost)
	if err != nil {
		s.log.Errorw("hash password", "error", err)
		writeError(w, err)
		return
	}

	id, err := s.store.CreateUser(r.Context(), req.Email, string(hashed), strings.TrimSpace(req.Nickname))
	if err != nil {
		writeError(w, err)
		return
	}
	prof, err := s.store.Profile(r.Context(), id, id)
	if err != nil {
		writeError(w, err)
		return
	}
	s.log.Infow("user registered", "user_id", id)
	writeJSON(w, http.StatusCreated, prof)
}

func (s *Server) loginHandler(w http.ResponseWriter, r *http.Request) {
	var req entities.LoginRequest
	if err := decode(r, &req); err != nil {
		writeError(w, err)
		return
	}

	id, hash, err := s.store.Credentials(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			err = entities.ErrUnauthorized
		}
		writeError(w, err)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)); err != nil {
		writeError(w, entities.ErrUnauthorized)
		return
	}

	token, err := s.generateJWT(id, strings.ToLower(req.Email))
	if err != nil {
		s.log.Errorw("sign token", "error", err)
		writeError(w, err)
		return
	}
	s.log.Infow("user logged in", "user_id", id)
	writeJSON(w, http.StatusOK, entities.Session{Token: token, UserID: id, Email: strings.ToLower(req.Email)})
}

// signUpload authenticates a presigned upload URL for key until expires.
func (s *Server) signUpload(key string, expires time.Time) string {
	h := hmac.New(sha256.New, s.opts.JWTSecret)
	fmt.Fprintf(h, "PUT\n%s\n%d", key, expires.Unix())
	return hex.EncodeToString(h.Sum(nil))
}

func (s *Server) verifyUpload(key string, expires time.Time, sig string) bool {
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	got, _ := hex.DecodeString(s.signUpload(key, expires))
	return hmac.Equal(want, got)
}
