// Package expression classifies facial blend-shape scores into coarse emotion categories.
package expression

// Blendshapes maps a blend-shape name (for example "mouthSmileLeft") to its score.
// Scores are conventionally in [0,1] but are not bounded.
type Blendshapes map[string]float64

// Get returns the score for name, or 0 when the blend-shape is missing.
func (b Blendshapes) Get(name string) float64 {
	return b[name]
}

// Symmetric returns the mean of the <base>Left and <base>Right scores.
func (b Blendshapes) Symmetric(base string) float64 {
	return (b[base+"Left"] + b[base+"Right"]) / 2
}

// Features holds the derived facial signals the classifier scores against.
// Paired blend-shapes are reduced to their symmetric average.
type Features struct {
	Smile          float64
	Frown          float64
	BrowDown       float64
	BrowOuterUp    float64
	EyeSquint      float64
	CheekSquint    float64
	NoseSneer      float64
	MouthPress     float64
	MouthDimple    float64
	MouthStretch   float64
	MouthUpperUp   float64
	MouthLowerDown float64
	EyeLookDown    float64

	// Unpaired blend-shapes, read directly.
	BrowInnerUp    float64
	MouthRollLower float64
	JawOpen        float64
}

// ExtractFeatures derives the classifier features from a frame.
// Unknown blend-shape names in the frame are ignored.
func ExtractFeatures(b Blendshapes) Features {
	return Features{
		Smile:          b.Symmetric("mouthSmile"),
		Frown:          b.Symmetric("mouthFrown"),
		BrowDown:       b.Symmetric("browDown"),
		BrowOuterUp:    b.Symmetric("browOuterUp"),
		EyeSquint:      b.Symmetric("eyeSquint"),
		CheekSquint:    b.Symmetric("cheekSquint"),
		NoseSneer:      b.Symmetric("noseSneer"),
		MouthPress:     b.Symmetric("mouthPress"),
		MouthDimple:    b.Symmetric("mouthDimple"),
		MouthStretch:   b.Symmetric("mouthStretch"),
		MouthUpperUp:   b.Symmetric("mouthUpperUp"),
		MouthLowerDown: b.Symmetric("mouthLowerDown"),
		EyeLookDown:    b.Symmetric("eyeLookDown"),
		BrowInnerUp:    b.Get("browInnerUp"),
		MouthRollLower: b.Get("mouthRollLower"),
		JawOpen:        b.Get("jawOpen"),
	}
}

// activity sums the features that indicate any expression at all.
func (f Features) activity() float64 {
	return f.Smile + f.Frown + f.BrowDown + f.BrowInnerUp + f.NoseSneer + f.CheekSquint
}
