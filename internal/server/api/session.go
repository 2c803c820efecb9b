package api

import (
	"net/http"
	"strings"

	"github.com/ayusman/poselens/internal/app"
)

// SessionController is the part of the app the session endpoints drive.
type SessionController interface {
	State() app.SessionState
	Start() error
	Stop()
	SwitchCamera() error
}

// SessionHandler handles HTTP requests that control the detection session.
type SessionHandler struct {
	ctrl SessionController
}

// NewSessionHandler creates a new SessionHandler for ctrl.
func NewSessionHandler(ctrl SessionController) *SessionHandler {
	return &SessionHandler{ctrl: ctrl}
}

// ServeHTTP routes /api/session and its start, stop and switch actions.
func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	action := strings.TrimPrefix(r.URL.Path, "/api/session")
	action = strings.Trim(action, "/")

	if action == "" {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		writeJSON(w, http.StatusOK, h.ctrl.State())
		return
	}

	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	switch action {
	case "start":
		if err := h.ctrl.Start(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	case "stop":
		h.ctrl.Stop()
	case "switch":
		if err := h.ctrl.SwitchCamera(); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	default:
		writeError(w, http.StatusNotFound, "Unknown session action")
		return
	}

	writeJSON(w, http.StatusOK, h.ctrl.State())
}
