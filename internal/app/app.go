// Package app runs detection sessions: it owns the camera lifecycle, feeds
// frames to the landmark detector and keeps the expression classifier state
// for the running session.
package app

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ayusman/poselens/internal/capture"
	"github.com/ayusman/poselens/internal/detector"
	"github.com/ayusman/poselens/internal/expression"
	"github.com/ayusman/poselens/internal/metrics"
	"github.com/ayusman/poselens/internal/overlay"
	"github.com/ayusman/poselens/internal/store"
)

// Pipeline timing defaults.
const (
	// DefaultPoseInterval paces the detection loop at roughly 30 FPS.
	DefaultPoseInterval = 33 * time.Millisecond
	// DefaultFaceInterval paces expression classification at roughly 15 FPS.
	DefaultFaceInterval = 66 * time.Millisecond
	// DefaultFaceDelay is how long after start the first expression is read.
	DefaultFaceDelay = time.Second
	// DefaultRecordInterval is the minimum gap between stored readings of
	// the same emotion.
	DefaultRecordInterval = time.Second
	// DefaultJPEGQuality is used for annotated stream frames.
	DefaultJPEGQuality = 80
)

// Config holds configuration options for the application.
type Config struct {
	Store           *store.Store
	Camera          capture.Config
	Detector        detector.Config
	UseMockDetector bool

	PoseInterval   time.Duration
	FaceInterval   time.Duration
	FaceDelay      time.Duration // Zero classifies from the first frame
	RecordInterval time.Duration
	Smoothing      float64
	JPEGQuality    int

	Logger zerolog.Logger
}

func (c *Config) applyDefaults() {
	if c.PoseInterval <= 0 {
		c.PoseInterval = DefaultPoseInterval
	}
	if c.FaceInterval <= 0 {
		c.FaceInterval = DefaultFaceInterval
	}
	if c.FaceDelay < 0 {
		c.FaceDelay = 0
	}
	if c.RecordInterval <= 0 {
		c.RecordInterval = DefaultRecordInterval
	}
	if c.Smoothing <= 0 || c.Smoothing >= 1 {
		c.Smoothing = expression.DefaultSmoothing
	}
	if c.JPEGQuality <= 0 || c.JPEGQuality > 100 {
		c.JPEGQuality = DefaultJPEGQuality
	}
	if !c.Camera.Facing.Valid() {
		c.Camera.Facing = capture.FacingUser
	}
}

// SessionState is the externally visible detection state.
type SessionState struct {
	Detecting         bool               `json:"detecting"`
	Facing            capture.Facing     `json:"facing"`
	DeviceID          int                `json:"device_id"`
	SessionID         string             `json:"session_id,omitempty"`
	Error             string             `json:"error,omitempty"`
	LandmarksDetected bool               `json:"landmarks_detected"`
	Emotion           *expression.Result `json:"emotion,omitempty"`
}

// App is the main application that orchestrates camera capture, landmark
// detection and expression classification.
type App struct {
	config    Config
	log       zerolog.Logger
	detector  detector.Detector
	selector  *capture.Selector
	newCamera func(capture.Config) capture.Camera
	style     overlay.Style

	mu      sync.RWMutex
	state   SessionState
	current *session
	counter uint64
	frame   []byte
	seq     uint64

	subMu sync.Mutex
	subs  map[chan Snapshot]struct{}
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	config.applyDefaults()

	a := &App{
		config:    config,
		log:       config.Logger.With().Str("component", "app").Logger(),
		newCamera: capture.NewCamera,
		style:     overlay.DefaultStyle(),
		state:     SessionState{Facing: config.Camera.Facing, DeviceID: config.Camera.DeviceID},
		subs:      make(map[chan Snapshot]struct{}),
	}

	var cache capture.CameraCache
	if config.Store != nil {
		cache = config.Store.Settings()
	}
	a.selector = capture.NewSelector(cache)

	if config.UseMockDetector {
		a.detector = detector.NewMockDetector()
		a.log.Info().Msg("using mock landmark detector")
		return a
	}

	// Try MediaPipe first, fall back to mock detector
	if mp, err := detector.NewMediaPipeDetector(config.Detector, config.Logger); err == nil {
		a.detector = mp
		a.log.Info().Msg("using MediaPipe pose and face detection")
	} else {
		a.log.Warn().Err(err).Msg("MediaPipe not available, using mock detector")
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetDetector sets the landmark detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the landmark detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetSelector replaces the camera selector. A nil selector opens the
// configured device ID for either facing mode.
func (a *App) SetSelector(s *capture.Selector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.selector = s
}

// SetCameraFactory replaces how cameras are constructed.
func (a *App) SetCameraFactory(fn func(capture.Config) capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.newCamera = fn
}

// State returns a copy of the current session state.
func (a *App) State() SessionState {
	a.mu.RLock()
	defer a.mu.RUnlock()

	st := a.state
	if st.Emotion != nil {
		e := *st.Emotion
		st.Emotion = &e
	}
	return st
}

// IsDetecting reports whether a detection session is running.
func (a *App) IsDetecting() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current != nil
}

// Start begins a detection session with the current facing mode. Starting
// while already detecting is a no-op.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		return nil
	}
	return a.startLocked(a.state.Facing)
}

// Stop ends the running detection session and releases the camera. The
// session's classifier state is discarded.
func (a *App) Stop() {
	a.mu.Lock()
	s := a.stopLocked()
	a.mu.Unlock()

	a.finish(s)
}

// SwitchCamera toggles between the user and environment cameras and starts
// a fresh session on the new camera. It does nothing unless detecting.
func (a *App) SwitchCamera() error {
	a.mu.Lock()
	if a.current == nil {
		a.mu.Unlock()
		return nil
	}
	facing := a.state.Facing.Toggle()
	s := a.stopLocked()
	a.mu.Unlock()

	a.finish(s)

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.current != nil {
		return nil
	}
	a.log.Info().Str("facing", string(facing)).Msg("switching camera")
	return a.startLocked(facing)
}

// Close stops detection and releases the detector.
func (a *App) Close() error {
	a.Stop()

	a.subMu.Lock()
	for ch := range a.subs {
		delete(a.subs, ch)
		close(ch)
	}
	a.subMu.Unlock()

	if d := a.Detector(); d != nil {
		return d.Close()
	}
	return nil
}

// startLocked opens the camera for facing and launches the pipeline.
// a.mu must be held.
func (a *App) startLocked(facing capture.Facing) error {
	deviceID := a.config.Camera.DeviceID
	if a.selector != nil {
		id, err := a.selector.Select(facing)
		if err != nil {
			a.log.Warn().Err(err).Str("facing", string(facing)).Msg("camera selection failed, using configured device")
		} else {
			deviceID = id
		}
	}

	camCfg := a.config.Camera
	camCfg.DeviceID = deviceID
	camCfg.Facing = facing

	cam := a.newCamera(camCfg)
	if err := cam.Open(); err != nil {
		a.state = SessionState{Facing: facing, DeviceID: deviceID, Error: err.Error()}
		a.log.Error().Err(err).Int("device", deviceID).Msg("failed to start detection")
		return fmt.Errorf("start detection: %w", err)
	}

	a.counter++
	s := newSession(a.counter, cam, expression.NewTracker(a.config.Smoothing))

	if a.config.Store != nil {
		rec := &store.Session{Facing: string(facing), DeviceID: deviceID, StartedAt: s.started}
		if err := a.config.Store.Sessions().Create(rec); err != nil {
			metrics.FrameErrors.WithLabelValues(metrics.StageStore).Inc()
			a.log.Warn().Err(err).Msg("failed to record session")
		} else {
			s.storeID = rec.ID
		}
	}

	a.current = s
	a.state = SessionState{
		Detecting: true,
		Facing:    facing,
		DeviceID:  deviceID,
		SessionID: s.storeID,
	}
	metrics.Detecting.Set(1)

	go a.runPipeline(s)

	a.log.Info().
		Uint64("session", s.id).
		Str("facing", string(facing)).
		Int("device", deviceID).
		Msg("detection started")
	return nil
}

// stopLocked detaches the running session and resets the visible state.
// The caller must pass the result to finish after releasing a.mu.
func (a *App) stopLocked() *session {
	s := a.current
	if s == nil {
		return nil
	}

	close(s.stopCh)
	a.current = nil
	a.frame = nil
	a.state = SessionState{Facing: a.state.Facing, DeviceID: a.state.DeviceID}
	metrics.Detecting.Set(0)
	return s
}

// finish waits for a detached session's pipeline to exit, then closes its
// camera and records the end time.
func (a *App) finish(s *session) {
	if s == nil {
		return
	}
	<-s.done

	if err := s.camera.Close(); err != nil {
		a.log.Warn().Err(err).Msg("error closing camera")
	}

	if a.config.Store != nil && s.storeID != "" {
		if err := a.config.Store.Sessions().End(s.storeID, time.Now()); err != nil {
			a.log.Warn().Err(err).Str("session_id", s.storeID).Msg("failed to record session end")
		}
	}

	a.log.Info().Uint64("session", s.id).Msg("detection stopped")
}

// isCurrent reports whether s is still the running session. Results from a
// stale session are dropped.
func (a *App) isCurrent(s *session) bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.current == s
}

// LatestFrame returns the most recent annotated JPEG frame and its sequence
// number. The sequence increases with every published frame.
func (a *App) LatestFrame() ([]byte, uint64) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.frame, a.seq
}
