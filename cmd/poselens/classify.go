package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/ayusman/poselens/internal/expression"
)

// runClassify reads a JSON array of blend-shape frames from r and writes one
// line per frame with the smoothed expression.
func runClassify(r io.Reader, w io.Writer, alpha float64) error {
	var frames []expression.Blendshapes
	if err := json.NewDecoder(r).Decode(&frames); err != nil {
		return fmt.Errorf("decode frames: %w", err)
	}

	if alpha <= 0 || alpha >= 1 {
		alpha = expression.DefaultSmoothing
	}
	tracker := expression.NewTracker(alpha)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "FRAME\tEMOTION\tCONFIDENCE\tHAPPY\tSAD\tANGRY\tNEUTRAL")
	for i, frame := range frames {
		res, ok := tracker.Update(frame)
		if !ok {
			fmt.Fprintf(tw, "%d\tabsent\t-\t-\t-\t-\t-\n", i)
			continue
		}
		st := expression.Display(res.Type)
		fmt.Fprintf(tw, "%d\t%s %s\t%.3f\t%.3f\t%.3f\t%.3f\t%.3f\n",
			i, st.Emoji, res.Type, res.Confidence,
			res.Scores.Happy, res.Scores.Sad, res.Scores.Angry, res.Scores.Neutral)
	}
	return tw.Flush()
}
