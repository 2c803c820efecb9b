package capture

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"gocv.io/x/gocv"
)

// ErrNoDevices is returned when no video input device is present.
var ErrNoDevices = errors.New("no video devices found")

// Facing identifies which way a camera points.
type Facing string

const (
	// FacingUser is a front camera pointing at the viewer.
	FacingUser Facing = "user"
	// FacingEnvironment is a rear camera pointing away from the viewer.
	FacingEnvironment Facing = "environment"
)

// Valid reports whether f is a known facing mode.
func (f Facing) Valid() bool {
	return f == FacingUser || f == FacingEnvironment
}

// Toggle returns the opposite facing mode.
func (f Facing) Toggle() Facing {
	if f == FacingEnvironment {
		return FacingUser
	}
	return FacingEnvironment
}

// Device describes a video input device.
type Device struct {
	ID        int    `json:"id"`
	Label     string `json:"label"`
	Facing    Facing `json:"facing"`
	MaxWidth  int    `json:"max_width,omitempty"`
	MaxHeight int    `json:"max_height,omitempty"`
}

// sysfsRoot is where Linux exposes V4L2 devices.
var sysfsRoot = "/sys/class/video4linux"

// ListDevices enumerates video devices from sysfs, ordered by device ID.
// On systems without sysfs it falls back to a single device 0.
func ListDevices() ([]Device, error) {
	entries, err := os.ReadDir(sysfsRoot)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []Device{{ID: 0, Label: "camera 0", Facing: FacingUser}}, nil
		}
		return nil, fmt.Errorf("list video devices: %w", err)
	}

	var devices []Device
	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "video") {
			continue
		}
		id, err := strconv.Atoi(strings.TrimPrefix(name, "video"))
		if err != nil {
			continue
		}

		label := name
		if data, err := os.ReadFile(filepath.Join(sysfsRoot, name, "name")); err == nil {
			label = strings.TrimSpace(string(data))
		}

		devices = append(devices, Device{ID: id, Label: label, Facing: facingFromLabel(label)})
	}

	if len(devices) == 0 {
		return nil, ErrNoDevices
	}

	sort.Slice(devices, func(i, j int) bool {
		return devices[i].ID < devices[j].ID
	})
	return devices, nil
}

// facingFromLabel guesses the facing mode from a device label.
// Unlabelled devices are assumed to be user facing, like most webcams.
func facingFromLabel(label string) Facing {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "back"), strings.Contains(l, "rear"), strings.Contains(l, "environment"), strings.Contains(l, "world"):
		return FacingEnvironment
	default:
		return FacingUser
	}
}

// ProbeResolution opens a device, asks for an oversized frame and reports
// the resolution the driver actually settled on.
func ProbeResolution(id int) (width, height int, err error) {
	vc, err := gocv.OpenVideoCapture(id)
	if err != nil {
		return 0, 0, fmt.Errorf("open device %d: %w", id, err)
	}
	defer vc.Close()

	vc.Set(gocv.VideoCaptureFrameWidth, 10000)
	vc.Set(gocv.VideoCaptureFrameHeight, 10000)

	return int(vc.Get(gocv.VideoCaptureFrameWidth)), int(vc.Get(gocv.VideoCaptureFrameHeight)), nil
}

// ScoreDevice rates a rear camera for detection. The main wide camera is
// preferred by label, then higher resolution breaks ties.
func ScoreDevice(d Device) float64 {
	var score float64
	label := strings.ToLower(d.Label)

	switch {
	case strings.Contains(label, "back camera") && !strings.Contains(label, "ultra") && !strings.Contains(label, "telephoto"):
		score += 100
	case strings.Contains(label, "wide") && !strings.Contains(label, "ultra"):
		score += 90
	case strings.Contains(label, "camera 0") || strings.Contains(label, "main"):
		score += 80
	}

	if d.MaxWidth > 0 && d.MaxHeight > 0 {
		megapixels := float64(d.MaxWidth*d.MaxHeight) / 1e6
		score += math.Min(megapixels, 20)
	}

	return score
}

// BestRearCamera picks the highest scoring environment-facing device.
// A lone device is returned as is. Ties keep the earlier device.
func BestRearCamera(devices []Device) (Device, bool) {
	if len(devices) == 0 {
		return Device{}, false
	}
	if len(devices) == 1 {
		return devices[0], true
	}

	var best Device
	bestScore := -1.0
	for _, d := range devices {
		if d.Facing == FacingUser {
			continue
		}
		if s := ScoreDevice(d); s > bestScore {
			best, bestScore = d, s
		}
	}

	return best, bestScore >= 0
}

// CameraCache remembers the chosen rear camera between runs.
type CameraCache interface {
	CameraID() (int, bool, error)
	SetCameraID(id int) error
}

// Selector resolves a facing mode to a concrete device ID.
type Selector struct {
	List  func() ([]Device, error)
	Probe func(id int) (int, int, error)
	Cache CameraCache
}

// NewSelector creates a Selector backed by sysfs enumeration and GoCV probing.
func NewSelector(cache CameraCache) *Selector {
	return &Selector{
		List:  ListDevices,
		Probe: ProbeResolution,
		Cache: cache,
	}
}

// Select returns the device ID to open for the given facing mode.
// For rear cameras the cached choice wins; otherwise every rear device is
// probed and the best one is cached.
func (s *Selector) Select(facing Facing) (int, error) {
	devices, err := s.List()
	if err != nil {
		return 0, err
	}
	if len(devices) == 0 {
		return 0, ErrNoDevices
	}

	if facing != FacingEnvironment {
		for _, d := range devices {
			if d.Facing == FacingUser {
				return d.ID, nil
			}
		}
		return devices[0].ID, nil
	}

	if s.Cache != nil {
		if id, ok, err := s.Cache.CameraID(); err == nil && ok && containsDevice(devices, id) {
			return id, nil
		}
	}

	if s.Probe != nil {
		for i := range devices {
			if devices[i].Facing == FacingUser {
				continue
			}
			w, h, err := s.Probe(devices[i].ID)
			if err != nil {
				continue
			}
			devices[i].MaxWidth, devices[i].MaxHeight = w, h
		}
	}

	best, ok := BestRearCamera(devices)
	if !ok {
		return devices[0].ID, nil
	}

	if s.Cache != nil {
		// A failed write means the next rear selection probes again.
		_ = s.Cache.SetCameraID(best.ID)
	}
	return best.ID, nil
}

func containsDevice(devices []Device, id int) bool {
	for _, d := range devices {
		if d.ID == id {
			return true
		}
	}
	return false
}
