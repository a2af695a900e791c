package devserver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"socialnet/internal/devserver/store"
	"socialnet/internal/entities"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	code := "INTERNAL"
	msg := "internal error"

	switch {
	case errors.Is(err, entities.ErrInvalidArgument):
		status, code, msg = http.StatusBadRequest, "INVALID_ARGUMENT", err.Error()
	case errors.Is(err, entities.ErrUnauthorized):
		status, code, msg = http.StatusUnauthorized, "UNAUTHORIZED", "authentication required"
	case errors.Is(err, entities.ErrForbidden):
		status, code, msg = http.StatusForbidden, "FORBIDDEN", "you do not have permission to do this"
	case errors.Is(err, entities.ErrNotFound):
		status, code, msg = http.StatusNotFound, "NOT_FOUND", "resource not found"
	case errors.Is(err, entities.ErrConflict):
		status, code, msg = http.StatusConflict, "CONFLICT", "already exists"
	}
	writeJSON(w, status, entities.ErrorResponse{Code: code, Message: msg})
}

func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return invalid("invalid request payload")
	}
	return nil
}

type invalidError string

func (e invalidError) Error() string { return string(e) }
func (e invalidError) Unwrap() error { return entities.ErrInvalidArgument }

func invalid(msg string) error { return invalidError(msg) }

func pathID(r *http.Request, name string) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, invalid("invalid " + name)
	}
	return id, nil
}

func pageParams(r *http.Request) (int, int64, error) {
	size := 0
	if raw := r.URL.Query().Get("size"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return 0, 0, invalid("invalid size")
		}
		size = n
	}
	cursor, err := store.ParseCursor(r.URL.Query().Get("cursor"))
	if err != nil {
		return 0, 0, invalid("invalid cursor")
	}
	return store.NormalizeSize(size), cursor, nil
}
