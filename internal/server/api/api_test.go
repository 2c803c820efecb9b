package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/ayusman/poselens/internal/app"
	"github.com/ayusman/poselens/internal/capture"
	"github.com/ayusman/poselens/internal/expression"
	"github.com/ayusman/poselens/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// fakeController records session calls without touching a camera.
type fakeController struct {
	state    app.SessionState
	startErr error
	stops    int
}

func (c *fakeController) State() app.SessionState { return c.state }

func (c *fakeController) Start() error {
	if c.startErr != nil {
		c.state.Error = c.startErr.Error()
		return c.startErr
	}
	c.state.Detecting = true
	return nil
}

func (c *fakeController) Stop() {
	c.stops++
	c.state.Detecting = false
}

func (c *fakeController) SwitchCamera() error {
	if c.state.Detecting {
		c.state.Facing = c.state.Facing.Toggle()
	}
	return nil
}

func decodeState(t *testing.T, rec *httptest.ResponseRecorder) app.SessionState {
	t.Helper()
	var st app.SessionState
	if err := json.NewDecoder(rec.Body).Decode(&st); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return st
}

func TestSessionHandler_Lifecycle(t *testing.T) {
	ctrl := &fakeController{state: app.SessionState{Facing: capture.FacingUser}}
	handler := NewSessionHandler(ctrl)

	// Switch while stopped is a no-op
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/switch", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rec.Code)
	}
	if st := decodeState(t, rec); st.Facing != capture.FacingUser || st.Detecting {
		t.Errorf("switch while stopped changed state: %+v", st)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/start", nil))
	if st := decodeState(t, rec); !st.Detecting {
		t.Errorf("expected detecting after start, got %+v", st)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/switch", nil))
	if st := decodeState(t, rec); st.Facing != capture.FacingEnvironment {
		t.Errorf("expected environment facing after switch, got %+v", st)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/session", nil))
	if rec.Header().Get("Content-Type") != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", rec.Header().Get("Content-Type"))
	}
	if st := decodeState(t, rec); !st.Detecting {
		t.Errorf("GET returned %+v", st)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/stop", nil))
	if st := decodeState(t, rec); st.Detecting || ctrl.stops != 1 {
		t.Errorf("expected stopped state, got %+v (stops=%d)", st, ctrl.stops)
	}
}

func TestSessionHandler_StartError(t *testing.T) {
	ctrl := &fakeController{startErr: errors.New("start detection: camera busy")}
	handler := NewSessionHandler(ctrl)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/session/start", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("expected status %d, got %d", http.StatusInternalServerError, rec.Code)
	}

	var response errorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response.Error != "start detection: camera busy" {
		t.Errorf("unexpected error message %q", response.Error)
	}
}

func TestSessionHandler_BadRequests(t *testing.T) {
	handler := NewSessionHandler(&fakeController{})

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/api/session/start", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/session", http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/session/rewind", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.path, nil))
			if rec.Code != tt.want {
				t.Errorf("expected status %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestSessionsHandler(t *testing.T) {
	s := newTestStore(t)
	handler := NewSessionsHandler(s)

	sess := &store.Session{Facing: "user"}
	if err := s.Sessions().Create(sess); err != nil {
		t.Fatalf("failed to create session: %v", err)
	}
	for _, e := range []string{"happy", "happy", "sad"} {
		if err := s.Readings().Add(&store.Reading{SessionID: sess.ID, Emotion: e, Confidence: 0.5}); err != nil {
			t.Fatalf("failed to add reading: %v", err)
		}
	}

	t.Run("list", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

		var response listSessionsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Sessions) != 1 || response.Sessions[0].ID != sess.ID {
			t.Errorf("unexpected sessions %+v", response.Sessions)
		}
	})

	t.Run("get with counts", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID, nil))

		var response struct {
			ID     string         `json:"id"`
			Counts map[string]int `json:"counts"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if response.ID != sess.ID || response.Counts["happy"] != 2 || response.Counts["sad"] != 1 {
			t.Errorf("unexpected session response %+v", response)
		}
	})

	t.Run("readings", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions/"+sess.ID+"/readings", nil))

		var response listReadingsResponse
		if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if len(response.Readings) != 3 {
			t.Errorf("expected 3 readings, got %d", len(response.Readings))
		}
	})

	t.Run("unknown session", func(t *testing.T) {
		for _, path := range []string{"/api/sessions/missing", "/api/sessions/missing/readings"} {
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusNotFound {
				t.Errorf("GET %s: expected status %d, got %d", path, http.StatusNotFound, rec.Code)
			}
		}
	})

	t.Run("delete", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNoContent {
			t.Fatalf("expected status %d, got %d", http.StatusNoContent, rec.Code)
		}

		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/sessions/"+sess.ID, nil))
		if rec.Code != http.StatusNotFound {
			t.Errorf("expected status %d, got %d", http.StatusNotFound, rec.Code)
		}
	})

	t.Run("method not allowed", func(t *testing.T) {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/sessions", nil))
		if rec.Code != http.StatusMethodNotAllowed {
			t.Errorf("expected status %d, got %d", http.StatusMethodNotAllowed, rec.Code)
		}
	})
}

func TestSessionsHandler_EmptyList(t *testing.T) {
	handler := NewSessionsHandler(newTestStore(t))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/sessions", nil))

	if body := rec.Body.String(); body != "{\"sessions\":[]}\n" {
		t.Errorf("expected empty array, got %q", body)
	}
}

func TestHandleStyles(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleStyles(rec, httptest.NewRequest(http.MethodGet, "/api/emotions/styles", nil))

	var response listStylesResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if len(response.Styles) != 4 {
		t.Fatalf("expected 4 styles, got %d", len(response.Styles))
	}
	if response.Styles[0].Emotion != expression.Happy || response.Styles[0].Color != "#8de67c" {
		t.Errorf("unexpected first style %+v", response.Styles[0])
	}
	if response.Styles[3].Label != "Neutral" || response.Styles[3].Emoji != "😐" {
		t.Errorf("unexpected last style %+v", response.Styles[3])
	}
}
