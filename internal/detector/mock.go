package detector

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu     sync.Mutex
	result *Result
	err    error
	calls  int
	closed bool
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetResult sets the result that will be returned by Detect.
func (m *MockDetector) SetResult(r *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = r
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Detect returns the pre-configured result or error.
func (m *MockDetector) Detect(frame *gocv.Mat) (*Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result == nil {
		return &Result{}, nil
	}
	return m.result, nil
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Close marks the detector closed.
func (m *MockDetector) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close has been called.
func (m *MockDetector) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// SmilingFace returns a preset face with a broad Duchenne smile.
func SmilingFace() *Face {
	return &Face{
		Landmarks: faceOutline(),
		Blendshapes: map[string]float64{
			"mouthSmileLeft":   0.8,
			"mouthSmileRight":  0.75,
			"cheekSquintLeft":  0.4,
			"cheekSquintRight": 0.45,
			"eyeSquintLeft":    0.3,
			"eyeSquintRight":   0.3,
			"mouthDimpleLeft":  0.1,
			"mouthDimpleRight": 0.1,
			"jawOpen":          0.05,
		},
	}
}

// FrowningFace returns a preset face with raised inner brows and a frown.
func FrowningFace() *Face {
	return &Face{
		Landmarks: faceOutline(),
		Blendshapes: map[string]float64{
			"browInnerUp":         0.5,
			"mouthFrownLeft":      0.35,
			"mouthFrownRight":     0.3,
			"browOuterUpLeft":     0.1,
			"browOuterUpRight":    0.1,
			"eyeLookDownLeft":     0.2,
			"eyeLookDownRight":    0.2,
			"mouthLowerDownLeft":  0.05,
			"mouthLowerDownRight": 0.05,
		},
	}
}

// ScowlingFace returns a preset face with lowered brows and a nose sneer.
func ScowlingFace() *Face {
	return &Face{
		Landmarks: faceOutline(),
		Blendshapes: map[string]float64{
			"browDownLeft":    0.6,
			"browDownRight":   0.55,
			"noseSneerLeft":   0.3,
			"noseSneerRight":  0.25,
			"mouthPressLeft":  0.2,
			"mouthPressRight": 0.2,
			"eyeSquintLeft":   0.2,
			"eyeSquintRight":  0.2,
		},
	}
}

// RestingFace returns a preset face with almost no muscle activity.
func RestingFace() *Face {
	return &Face{
		Landmarks: faceOutline(),
		Blendshapes: map[string]float64{
			"eyeBlinkLeft":  0.02,
			"eyeBlinkRight": 0.02,
			"jawOpen":       0.01,
		},
	}
}

// faceOutline returns a coarse ring of points around the frame center.
func faceOutline() []Landmark {
	points := []Landmark{
		{X: 0.50, Y: 0.20}, {X: 0.58, Y: 0.22}, {X: 0.63, Y: 0.28},
		{X: 0.65, Y: 0.36}, {X: 0.63, Y: 0.44}, {X: 0.58, Y: 0.50},
		{X: 0.50, Y: 0.52}, {X: 0.42, Y: 0.50}, {X: 0.37, Y: 0.44},
		{X: 0.35, Y: 0.36}, {X: 0.37, Y: 0.28}, {X: 0.42, Y: 0.22},
	}
	return points
}

// StandingPose returns a preset full-body pose facing the camera
// with every landmark visible.
func StandingPose() []Landmark {
	pose := make([]Landmark, NumPoseLandmarks)
	set := func(i int, x, y float64) {
		pose[i] = Landmark{X: x, Y: y, Visibility: 0.95}
	}

	// Head
	set(Nose, 0.50, 0.15)
	set(LeftEyeInner, 0.51, 0.13)
	set(LeftEye, 0.52, 0.13)
	set(LeftEyeOuter, 0.53, 0.13)
	set(RightEyeInner, 0.49, 0.13)
	set(RightEye, 0.48, 0.13)
	set(RightEyeOuter, 0.47, 0.13)
	set(LeftEar, 0.55, 0.14)
	set(RightEar, 0.45, 0.14)
	set(MouthLeft, 0.52, 0.18)
	set(MouthRight, 0.48, 0.18)

	// Torso and arms
	set(LeftShoulder, 0.60, 0.28)
	set(RightShoulder, 0.40, 0.28)
	set(LeftElbow, 0.66, 0.42)
	set(RightElbow, 0.34, 0.42)
	set(LeftWrist, 0.68, 0.55)
	set(RightWrist, 0.32, 0.55)
	set(LeftPinky, 0.69, 0.58)
	set(RightPinky, 0.31, 0.58)
	set(LeftIndex, 0.68, 0.59)
	set(RightIndex, 0.32, 0.59)
	set(LeftThumb, 0.67, 0.57)
	set(RightThumb, 0.33, 0.57)

	// Legs
	set(LeftHip, 0.56, 0.58)
	set(RightHip, 0.44, 0.58)
	set(LeftKnee, 0.57, 0.75)
	set(RightKnee, 0.43, 0.75)
	set(LeftAnkle, 0.57, 0.92)
	set(RightAnkle, 0.43, 0.92)
	set(LeftHeel, 0.56, 0.94)
	set(RightHeel, 0.44, 0.94)
	set(LeftFootIndex, 0.59, 0.95)
	set(RightFootIndex, 0.41, 0.95)

	return pose
}
