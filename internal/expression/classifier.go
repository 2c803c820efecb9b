package expression

// Emotion is one of the four coarse expression categories.
type Emotion string

const (
	Happy   Emotion = "happy"
	Sad     Emotion = "sad"
	Angry   Emotion = "angry"
	Neutral Emotion = "neutral"
)

// Emotions lists the categories in tie-break order. When two smoothed
// scores are equal the earlier entry wins.
var Emotions = [4]Emotion{Happy, Sad, Angry, Neutral}

// Valid reports whether e is one of the four known categories.
func (e Emotion) Valid() bool {
	switch e {
	case Happy, Sad, Angry, Neutral:
		return true
	}
	return false
}

// DefaultSmoothing is the weight given to the previous frame's scores.
// Lower values respond faster, higher values are more stable.
const DefaultSmoothing = 0.3

// Activation thresholds.
const (
	happySmileMin       = 0.2
	happyCheekSquintMin = 0.15

	sadBrowInnerUpMin    = 0.15
	sadFrownMin          = 0.12
	sadBrowOuterUpMin    = 0.1
	sadFrownWithBrowsMin = 0.08

	angryBrowDownMin          = 0.15
	angryNoseSneerMin         = 0.12
	angryBrowDownWithPressMin = 0.1
	angryMouthPressMin        = 0.15

	neutralMaxScore      = 0.15
	neutralMaxActivity   = 0.3
	neutralWeakMaxScore  = 0.25
	neutralWeakBaseScore = 0.4
)

// Scores carries relative evidence for each category. The values are not
// normalized and may be negative.
type Scores struct {
	Happy   float64 `json:"happy"`
	Sad     float64 `json:"sad"`
	Angry   float64 `json:"angry"`
	Neutral float64 `json:"neutral"`
}

// Get returns the score for the given category.
func (s Scores) Get(e Emotion) float64 {
	switch e {
	case Happy:
		return s.Happy
	case Sad:
		return s.Sad
	case Angry:
		return s.Angry
	case Neutral:
		return s.Neutral
	}
	return 0
}

// Dominant returns the highest scoring category and its score.
// Ties resolve to the category listed first in Emotions.
func (s Scores) Dominant() (Emotion, float64) {
	best, bestScore := Emotions[0], s.Get(Emotions[0])
	for _, e := range Emotions[1:] {
		if v := s.Get(e); v > bestScore {
			best, bestScore = e, v
		}
	}
	return best, bestScore
}

// Result is the outcome of classifying one frame.
type Result struct {
	Type       Emotion `json:"type"`
	Confidence float64 `json:"confidence"`
	Scores     Scores  `json:"scores"`
}

// RawScores computes the unsmoothed category scores for a frame.
func RawScores(b Blendshapes) Scores {
	f := ExtractFeatures(b)
	var raw Scores

	// Duchenne smile: mouth corners plus cheek raise.
	if f.Smile > happySmileMin || f.CheekSquint > happyCheekSquintMin {
		raw.Happy = f.Smile*2.0 + f.CheekSquint*1.5 + f.MouthDimple*0.8 + f.EyeSquint*0.5 + f.MouthStretch*0.3
	}

	if f.BrowInnerUp > sadBrowInnerUpMin || f.Frown > sadFrownMin ||
		(f.BrowOuterUp > sadBrowOuterUpMin && f.Frown > sadFrownWithBrowsMin) {
		raw.Sad = f.BrowInnerUp*2.0 + f.Frown*1.8 + f.BrowOuterUp*1.0 + f.EyeLookDown*0.6 + f.MouthLowerDown*0.5 + f.MouthPress*0.3
	}

	// Not clamped: a wide open jaw can push this below zero.
	if f.BrowDown > angryBrowDownMin || f.NoseSneer > angryNoseSneerMin ||
		(f.BrowDown > angryBrowDownWithPressMin && f.MouthPress > angryMouthPressMin) {
		raw.Angry = f.BrowDown*2.5 + f.NoseSneer*2.0 + f.EyeSquint*0.8 + f.MouthPress*0.8 + f.MouthUpperUp*0.6 + f.MouthRollLower*0.4 - f.JawOpen*0.3
	}

	maxScore := max(raw.Happy, raw.Sad, raw.Angry)
	activity := f.activity()

	switch {
	case maxScore < neutralMaxScore && activity < neutralMaxActivity:
		raw.Neutral = 1.0 - activity
	case maxScore < neutralWeakMaxScore:
		raw.Neutral = max(0, neutralWeakBaseScore-maxScore)
	}

	return raw
}

// Smooth blends raw into previous with an exponential moving average.
// alpha is the weight of previous. No bounds are enforced.
func Smooth(previous, raw Scores, alpha float64) Scores {
	blend := func(p, r float64) float64 {
		return p*alpha + r*(1-alpha)
	}
	return Scores{
		Happy:   blend(previous.Happy, raw.Happy),
		Sad:     blend(previous.Sad, raw.Sad),
		Angry:   blend(previous.Angry, raw.Angry),
		Neutral: blend(previous.Neutral, raw.Neutral),
	}
}

// Classify scores a frame against the previous frame's smoothed scores
// using DefaultSmoothing. It returns false when the frame carries no
// blend-shapes; callers must then keep previous unchanged.
func Classify(b Blendshapes, previous Scores) (Result, bool) {
	return ClassifyWith(b, previous, DefaultSmoothing)
}

// ClassifyWith is Classify with an explicit smoothing factor.
func ClassifyWith(b Blendshapes, previous Scores, alpha float64) (Result, bool) {
	if len(b) == 0 {
		return Result{}, false
	}

	smoothed := Smooth(previous, RawScores(b), alpha)
	dominant, confidence := smoothed.Dominant()

	return Result{
		Type:       dominant,
		Confidence: confidence,
		Scores:     smoothed,
	}, true
}
