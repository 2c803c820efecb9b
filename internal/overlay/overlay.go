// Package overlay draws detected landmarks and the current emotion onto
// camera frames.
package overlay

import (
	"fmt"
	"image"
	"image/color"
	"strconv"
	"strings"

	"gocv.io/x/gocv"

	"github.com/ayusman/poselens/internal/detector"
	"github.com/ayusman/poselens/internal/expression"
)

// Style controls colors and sizes of the drawn overlay.
type Style struct {
	LandmarkColor       color.RGBA
	ConnectionColor     color.RGBA
	FaceColor           color.RGBA
	LandmarkRadius      int
	ConnectionWidth     int
	FacePointRadius     int
	VisibilityThreshold float64
}

// DefaultStyle returns the skeleton look of the web UI.
func DefaultStyle() Style {
	return Style{
		LandmarkColor:       mustHex("#5dd4c0"),
		ConnectionColor:     mustHex("#8de67c"),
		FaceColor:           color.RGBA{R: 255, G: 255, B: 255, A: 255},
		LandmarkRadius:      5,
		ConnectionWidth:     3,
		FacePointRadius:     1,
		VisibilityThreshold: 0.5,
	}
}

// ParseHex parses a "#rrggbb" color.
func ParseHex(s string) (color.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}

func mustHex(s string) color.RGBA {
	c, err := ParseHex(s)
	if err != nil {
		panic(err)
	}
	return c
}

// toPoint converts a normalized landmark to pixel coordinates.
func toPoint(lm detector.Landmark, width, height int) image.Point {
	return image.Pt(int(lm.X*float64(width)), int(lm.Y*float64(height)))
}

// Pose draws the skeleton connections and joints. Landmarks at or below
// the visibility threshold are skipped, as are connections touching them.
func Pose(img *gocv.Mat, pose []detector.Landmark, st Style) {
	if len(pose) < detector.NumPoseLandmarks {
		return
	}
	w, h := img.Cols(), img.Rows()

	for _, c := range detector.PoseConnections {
		from, to := pose[c.From], pose[c.To]
		if !from.Visible(st.VisibilityThreshold) || !to.Visible(st.VisibilityThreshold) {
			continue
		}
		gocv.Line(img, toPoint(from, w, h), toPoint(to, w, h), st.ConnectionColor, st.ConnectionWidth)
	}

	for _, lm := range pose {
		if !lm.Visible(st.VisibilityThreshold) {
			continue
		}
		gocv.Circle(img, toPoint(lm, w, h), st.LandmarkRadius, st.LandmarkColor, -1)
	}
}

// FacePoints draws the face mesh as small dots.
func FacePoints(img *gocv.Mat, points []detector.Landmark, st Style) {
	w, h := img.Cols(), img.Rows()
	for _, lm := range points {
		gocv.Circle(img, toPoint(lm, w, h), st.FacePointRadius, st.FaceColor, -1)
	}
}

// Badge draws the emotion label and confidence in the top-left corner on a
// box filled with the emotion's display color.
func Badge(img *gocv.Mat, r expression.Result) {
	display := expression.Display(r.Type)
	fill, err := ParseHex(display.Color)
	if err != nil {
		return
	}

	text := fmt.Sprintf("%s %d%%", display.Label, int(r.Confidence*100+0.5))
	size := gocv.GetTextSize(text, gocv.FontHersheySimplex, 0.7, 2)

	box := image.Rect(10, 10, 10+size.X+20, 10+size.Y+20)
	gocv.Rectangle(img, box, fill, -1)
	gocv.PutText(img, text, image.Pt(20, 20+size.Y), gocv.FontHersheySimplex, 0.7,
		color.RGBA{R: 20, G: 20, B: 20, A: 255}, 2)
}

// Draw renders everything known about a frame. Either argument may be nil.
func Draw(img *gocv.Mat, det *detector.Result, emotion *expression.Result, st Style) {
	if img == nil || img.Empty() {
		return
	}
	if det.HasPose() {
		Pose(img, det.Pose, st)
	}
	if det != nil && det.Face != nil {
		FacePoints(img, det.Face.Landmarks, st)
	}
	if emotion != nil {
		Badge(img, *emotion)
	}
}
