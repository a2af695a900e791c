package devserver

import (
	"net/http"

	"socialnet/internal/entities"
)

func (s *Server) listNotificationsHandler(w http.ResponseWriter, r *http.Request) {
	size, cursor, err := pageParams(r)
	if err != nil {
		writeError(w, err)
		return
	}
	pg, err := s.store.ListNotifications(r.Context(), principalFrom(r.Context()).UserID, size, cursor)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pg)
}

func (s *Server) markNotificationReadHandler(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}
	if err := s.store.MarkNotificationRead(r.Context(), principalFrom(r.Context()).UserID, id); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getNotificationSettingHandler(w http.ResponseWriter, r *http.Request) {
	ns, err := s.store.NotificationSetting(r.Context(), principalFrom(r.Context()).UserID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}

func (s *Server) putNotificationSettingHandler(w http.ResponseWriter, r *http.Request) {
	var ns entities.NotificationSetting
	if err := decode(r, &ns); err != nil {
		writeError(w, err)
		return
	}
	me := principalFrom(r.Context())
	if err := s.store.SaveNotificationSetting(r.Context(), me.UserID, ns); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ns)
}
