package capture

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// fakeSysfs builds a video4linux tree with the given device names.
func fakeSysfs(t *testing.T, devices map[string]string) {
	t.Helper()

	root := t.TempDir()
	for dir, label := range devices {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
		if err := os.WriteFile(filepath.Join(root, dir, "name"), []byte(label+"\n"), 0644); err != nil {
			t.Fatalf("failed to write label: %v", err)
		}
	}

	prev := sysfsRoot
	sysfsRoot = root
	t.Cleanup(func() { sysfsRoot = prev })
}

type memoryCache struct {
	id    int
	ok    bool
	saves int
}

func (c *memoryCache) CameraID() (int, bool, error) { return c.id, c.ok, nil }
func (c *memoryCache) SetCameraID(id int) error {
	c.id, c.ok = id, true
	c.saves++
	return nil
}

func TestListDevices(t *testing.T) {
	fakeSysfs(t, map[string]string{
		"video2":  "Back Camera",
		"video0":  "Integrated Webcam",
		"vbi0":    "not a camera",
		"videoXY": "bad id",
	})

	devices, err := ListDevices()
	if err != nil {
		t.Fatalf("ListDevices() error = %v", err)
	}

	if len(devices) != 2 {
		t.Fatalf("len(devices) = %d, want 2", len(devices))
	}
	if devices[0].ID != 0 || devices[1].ID != 2 {
		t.Errorf("devices not sorted by ID: %+v", devices)
	}
	if devices[0].Facing != FacingUser {
		t.Errorf("webcam facing = %s, want user", devices[0].Facing)
	}
	if devices[1].Facing != FacingEnvironment || devices[1].Label != "Back Camera" {
		t.Errorf("unexpected rear device: %+v", devices[1])
	}
}

func TestListDevices_Empty(t *testing.T) {
	fakeSysfs(t, map[string]string{})

	if _, err := ListDevices(); !errors.Is(err, ErrNoDevices) {
		t.Errorf("ListDevices() error = %v, want ErrNoDevices", err)
	}
}

func TestScoreDevice(t *testing.T) {
	tests := []struct {
		name   string
		device Device
		want   float64
	}{
		{"back camera", Device{Label: "Back Camera"}, 100},
		{"ultra wide back camera", Device{Label: "Back Ultra Wide Camera"}, 0},
		{"telephoto", Device{Label: "Back Telephoto Camera"}, 0},
		{"wide", Device{Label: "Wide Angle"}, 90},
		{"main", Device{Label: "Main sensor"}, 80},
		{"camera 0 with resolution", Device{Label: "camera 0, facing back", MaxWidth: 4000, MaxHeight: 3000}, 92},
		{"resolution capped at 20", Device{Label: "usb", MaxWidth: 10000, MaxHeight: 10000}, 20},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ScoreDevice(tt.device); got != tt.want {
				t.Errorf("ScoreDevice() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBestRearCamera(t *testing.T) {
	t.Run("skips front cameras", func(t *testing.T) {
		devices := []Device{
			{ID: 0, Label: "Front Camera", Facing: FacingUser},
			{ID: 1, Label: "Back Ultra Wide Camera", Facing: FacingEnvironment},
			{ID: 2, Label: "Back Camera", Facing: FacingEnvironment},
		}

		best, ok := BestRearCamera(devices)
		if !ok || best.ID != 2 {
			t.Errorf("BestRearCamera() = %+v, %v; want device 2", best, ok)
		}
	})

	t.Run("single device is returned", func(t *testing.T) {
		best, ok := BestRearCamera([]Device{{ID: 5, Facing: FacingUser}})
		if !ok || best.ID != 5 {
			t.Errorf("BestRearCamera() = %+v, %v; want device 5", best, ok)
		}
	})

	t.Run("only front cameras", func(t *testing.T) {
		_, ok := BestRearCamera([]Device{{ID: 0, Facing: FacingUser}, {ID: 1, Facing: FacingUser}})
		if ok {
			t.Error("expected no rear camera")
		}
	})
}

func TestSelector_Select(t *testing.T) {
	devices := []Device{
		{ID: 0, Label: "Front Camera", Facing: FacingUser},
		{ID: 1, Label: "Back Camera", Facing: FacingEnvironment},
		{ID: 3, Label: "Rear usb", Facing: FacingEnvironment},
	}
	list := func() ([]Device, error) {
		out := make([]Device, len(devices))
		copy(out, devices)
		return out, nil
	}

	t.Run("user facing picks front camera", func(t *testing.T) {
		s := &Selector{List: list}
		id, err := s.Select(FacingUser)
		if err != nil || id != 0 {
			t.Errorf("Select(user) = %d, %v; want 0", id, err)
		}
	})

	t.Run("environment probes and caches", func(t *testing.T) {
		cache := &memoryCache{}
		probed := 0
		s := &Selector{
			List: list,
			Probe: func(id int) (int, int, error) {
				probed++
				if id == 3 {
					return 4000, 3000, nil
				}
				return 1920, 1080, nil
			},
			Cache: cache,
		}

		id, err := s.Select(FacingEnvironment)
		if err != nil || id != 1 {
			t.Errorf("Select(environment) = %d, %v; want 1", id, err)
		}
		if probed != 2 {
			t.Errorf("probed %d devices, want 2", probed)
		}
		if !cache.ok || cache.id != 1 {
			t.Errorf("cache = %+v, want id 1", cache)
		}

		// Second selection uses the cache without probing
		probed = 0
		id, _ = s.Select(FacingEnvironment)
		if id != 1 || probed != 0 {
			t.Errorf("cached Select() = %d with %d probes", id, probed)
		}
	})

	t.Run("stale cache entry is ignored", func(t *testing.T) {
		cache := &memoryCache{id: 9, ok: true}
		s := &Selector{List: list, Cache: cache}

		id, err := s.Select(FacingEnvironment)
		if err != nil || id != 1 {
			t.Errorf("Select(environment) = %d, %v; want 1", id, err)
		}
		if cache.id != 1 {
			t.Errorf("cache not refreshed: %+v", cache)
		}
	})

	t.Run("list error", func(t *testing.T) {
		s := &Selector{List: func() ([]Device, error) { return nil, ErrNoDevices }}
		if _, err := s.Select(FacingUser); !errors.Is(err, ErrNoDevices) {
			t.Errorf("Select() error = %v, want ErrNoDevices", err)
		}
	})
}
