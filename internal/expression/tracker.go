package expression

// Tracker threads smoothed scores from one classified frame to the next.
// A Tracker belongs to a single detection session and is not safe for
// concurrent use.
type Tracker struct {
	alpha  float64
	scores Scores
	last   *Result
}

// NewTracker creates a Tracker with the given smoothing factor.
// Values outside [0,1) fall back to DefaultSmoothing.
func NewTracker(alpha float64) *Tracker {
	if alpha < 0 || alpha >= 1 {
		alpha = DefaultSmoothing
	}
	return &Tracker{alpha: alpha}
}

// Update classifies a frame and, when the frame carries data, advances the
// carried scores. Frames without blend-shapes leave the state untouched.
func (t *Tracker) Update(b Blendshapes) (Result, bool) {
	result, ok := ClassifyWith(b, t.scores, t.alpha)
	if !ok {
		return Result{}, false
	}
	t.scores = result.Scores
	t.last = &result
	return result, true
}

// Scores returns the carried smoothed scores.
func (t *Tracker) Scores() Scores {
	return t.scores
}

// Last returns the most recent result, or nil if nothing was classified
// since the last reset.
func (t *Tracker) Last() *Result {
	if t.last == nil {
		return nil
	}
	r := *t.last
	return &r
}

// Reset zeroes the carried scores. Call it whenever a detection session
// ends or restarts.
func (t *Tracker) Reset() {
	t.scores = Scores{}
	t.last = nil
}

// Alpha returns the smoothing factor in use.
func (t *Tracker) Alpha() float64 {
	return t.alpha
}
