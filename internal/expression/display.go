package expression

// Style describes how an emotion is presented in the UI.
type Style struct {
	Emoji string `json:"emoji"`
	Label string `json:"label"`
	Color string `json:"color"` // hex, e.g. "#8de67c"
}

var styles = map[Emotion]Style{
	Happy:   {Emoji: "😊", Label: "Happy", Color: "#8de67c"},
	Sad:     {Emoji: "😢", Label: "Sad", Color: "#4db3ff"},
	Angry:   {Emoji: "😠", Label: "Angry", Color: "#ff6b47"},
	Neutral: {Emoji: "😐", Label: "Neutral", Color: "#5dd4c0"},
}

// Display returns the presentation style for e. Unknown emotions get the
// neutral style.
func Display(e Emotion) Style {
	if s, ok := styles[e]; ok {
		return s
	}
	return styles[Neutral]
}

// Styles returns a copy of the full display table.
func Styles() map[Emotion]Style {
	out := make(map[Emotion]Style, len(styles))
	for k, v := range styles {
		out[k] = v
	}
	return out
}
