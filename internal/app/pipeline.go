package app

import (
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/poselens/internal/capture"
	"github.com/ayusman/poselens/internal/detector"
	"github.com/ayusman/poselens/internal/expression"
	"github.com/ayusman/poselens/internal/metrics"
	"github.com/ayusman/poselens/internal/overlay"
	"github.com/ayusman/poselens/internal/store"
)

// subscriberBuffer is how many snapshots a slow subscriber may lag behind
// before frames are dropped for it.
const subscriberBuffer = 8

// Snapshot is what the pipeline publishes for every processed frame.
type Snapshot struct {
	Pose          []detector.Landmark `json:"pose"`
	FaceLandmarks []detector.Landmark `json:"face_landmarks"`
	Emotion       *expression.Result  `json:"emotion"`
	Timestamp     int64               `json:"timestamp"` // Unix milliseconds
}

// session is the per-run state of the detection loop. Everything below
// stopCh is owned by the pipeline goroutine.
type session struct {
	id      uint64
	storeID string
	camera  capture.Camera
	started time.Time
	stopCh  chan struct{}
	done    chan struct{}

	tracker      *expression.Tracker
	lastFace     time.Time
	face         *detector.Face
	lastRecord   time.Time
	lastRecorded expression.Emotion
}

func newSession(id uint64, cam capture.Camera, tracker *expression.Tracker) *session {
	return &session{
		id:      id,
		camera:  cam,
		started: time.Now(),
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
		tracker: tracker,
	}
}

// runPipeline is the detection loop of one session. It exits when the
// session's stop channel closes.
//
// Every tick:
// 1. Read a frame and run pose and face detection
// 2. Once the start delay has passed, classify the expression at most once
//    per face interval
// 3. Draw the overlay, encode it and publish a snapshot
func (a *App) runPipeline(s *session) {
	defer close(s.done)

	ticker := time.NewTicker(a.config.PoseInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
		}

		frame, err := s.camera.ReadFrame()
		if err != nil {
			metrics.FrameErrors.WithLabelValues(metrics.StageRead).Inc()
			a.log.Debug().Err(err).Msg("error reading frame")
			continue
		}

		a.processFrame(s, frame, time.Now())
		frame.Close()
	}
}

// processFrame runs detection and classification on a single frame and
// publishes the result. Results of a session that is no longer current
// are discarded.
func (a *App) processFrame(s *session, frame *gocv.Mat, now time.Time) {
	det := a.Detector()
	if det == nil {
		return
	}

	start := time.Now()
	result, err := det.Detect(frame)
	metrics.DetectionLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.FrameErrors.WithLabelValues(metrics.StageDetect).Inc()
		a.log.Warn().Err(err).Msg("error detecting landmarks")
		return
	}
	metrics.FramesProcessed.Inc()

	if result.HasPose() {
		metrics.Detections.WithLabelValues(metrics.KindPose).Inc()
	}

	if now.Sub(s.started) >= a.config.FaceDelay && now.Sub(s.lastFace) >= a.config.FaceInterval {
		s.lastFace = now
		a.classify(s, result, now)
	}

	emotion := s.tracker.Last()

	if !a.isCurrent(s) {
		return
	}

	overlay.Draw(frame, &detector.Result{Pose: result.Pose, Face: s.face}, emotion, a.style)
	jpeg := a.encode(frame)

	snap := Snapshot{
		Pose:      result.Pose,
		Emotion:   emotion,
		Timestamp: now.UnixMilli(),
	}
	if s.face != nil {
		snap.FaceLandmarks = s.face.Landmarks
	}

	a.mu.Lock()
	if a.current == s {
		a.state.LandmarksDetected = result.HasPose()
		a.state.Emotion = emotion
		if jpeg != nil {
			a.frame = jpeg
			a.seq++
		}
	}
	a.mu.Unlock()

	a.publish(snap)
}

// classify updates the session's face and expression state. A frame with
// no face keeps the previous emotion and smoothing state.
func (a *App) classify(s *session, result *detector.Result, now time.Time) {
	if !result.HasFace() {
		s.face = nil
		return
	}
	s.face = result.Face
	metrics.Detections.WithLabelValues(metrics.KindFace).Inc()

	r, ok := s.tracker.Update(expression.Blendshapes(result.Face.Blendshapes))
	if !ok {
		return
	}
	metrics.EmotionsClassified.WithLabelValues(string(r.Type)).Inc()

	if r.Type != s.lastRecorded || now.Sub(s.lastRecord) >= a.config.RecordInterval {
		a.record(s, r, now)
	}
}

// record persists a reading for the session.
func (a *App) record(s *session, r expression.Result, now time.Time) {
	s.lastRecord = now
	s.lastRecorded = r.Type

	if a.config.Store == nil || s.storeID == "" {
		return
	}

	err := a.config.Store.Readings().Add(&store.Reading{
		SessionID:  s.storeID,
		Emotion:    string(r.Type),
		Confidence: r.Confidence,
		Happy:      r.Scores.Happy,
		Sad:        r.Scores.Sad,
		Angry:      r.Scores.Angry,
		Neutral:    r.Scores.Neutral,
		RecordedAt: now,
	})
	if err != nil {
		metrics.FrameErrors.WithLabelValues(metrics.StageStore).Inc()
		a.log.Warn().Err(err).Msg("failed to record emotion reading")
	}
}

// encode returns frame as JPEG bytes, or nil on failure.
func (a *App) encode(frame *gocv.Mat) []byte {
	buf, err := gocv.IMEncodeWithParams(gocv.JPEGFileExt, *frame, []int{gocv.IMWriteJpegQuality, a.config.JPEGQuality})
	if err != nil {
		a.log.Debug().Err(err).Msg("error encoding frame")
		return nil
	}
	defer buf.Close()

	data := buf.GetBytes()
	out := make([]byte, len(data))
	copy(out, data)
	return out
}

// Subscribe returns a channel receiving every published snapshot and a
// function that cancels the subscription. Snapshots are dropped for
// subscribers that fall behind.
func (a *App) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, subscriberBuffer)

	a.subMu.Lock()
	a.subs[ch] = struct{}{}
	a.subMu.Unlock()

	cancel := func() {
		a.subMu.Lock()
		defer a.subMu.Unlock()
		if _, ok := a.subs[ch]; ok {
			delete(a.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

func (a *App) publish(snap Snapshot) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	for ch := range a.subs {
		select {
		case ch <- snap:
		default:
		}
	}
}
