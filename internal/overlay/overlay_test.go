package overlay

import (
	"image/color"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/poselens/internal/detector"
	"github.com/ayusman/poselens/internal/expression"
)

// pixel returns the RGB color at (x, y) of a BGR Mat.
func pixel(img *gocv.Mat, x, y int) color.RGBA {
	v := img.GetVecbAt(y, x)
	return color.RGBA{R: v[2], G: v[1], B: v[0], A: 255}
}

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    color.RGBA
		wantErr bool
	}{
		{"#5dd4c0", color.RGBA{R: 0x5d, G: 0xd4, B: 0xc0, A: 255}, false},
		{"ff6b47", color.RGBA{R: 0xff, G: 0x6b, B: 0x47, A: 255}, false},
		{"#fff", color.RGBA{}, true},
		{"#zzzzzz", color.RGBA{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseHex(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseHex(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseHex(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestPose_DrawsVisibleJoints(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	st := DefaultStyle()
	pose := detector.StandingPose()
	Pose(&img, pose, st)

	nose := toPoint(pose[detector.Nose], img.Cols(), img.Rows())
	if got := pixel(&img, nose.X, nose.Y); got != st.LandmarkColor {
		t.Errorf("nose pixel = %v, want landmark color %v", got, st.LandmarkColor)
	}
}

func TestPose_SkipsHiddenLandmarks(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	pose := detector.StandingPose()
	for i := range pose {
		pose[i].Visibility = 0.5
	}
	Pose(&img, pose, DefaultStyle())

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("expected blank frame, %d pixels drawn", n)
	}
}

func TestPose_IgnoresPartialPose(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 100, 100, gocv.MatTypeCV8UC3)
	defer img.Close()

	Pose(&img, detector.StandingPose()[:10], DefaultStyle())

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(img, &gray, gocv.ColorBGRToGray)
	if n := gocv.CountNonZero(gray); n != 0 {
		t.Errorf("expected blank frame, %d pixels drawn", n)
	}
}

func TestBadge(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 480, 640, gocv.MatTypeCV8UC3)
	defer img.Close()

	Badge(&img, expression.Result{Type: expression.Angry, Confidence: 0.8})

	// Corner of the badge box carries the emotion color.
	want, _ := ParseHex(expression.Display(expression.Angry).Color)
	if got := pixel(&img, 11, 11); got != want {
		t.Errorf("badge pixel = %v, want %v", got, want)
	}
}

func TestDraw_NilInputs(t *testing.T) {
	img := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 120, 160, gocv.MatTypeCV8UC3)
	defer img.Close()

	// Must not panic
	Draw(&img, nil, nil, DefaultStyle())
	Draw(nil, &detector.Result{}, nil, DefaultStyle())

	Draw(&img, &detector.Result{Face: detector.SmilingFace()}, nil, DefaultStyle())
}
