// Package config loads poselens configuration from defaults, an optional
// YAML file and POSELENS_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/ayusman/poselens/internal/app"
	"github.com/ayusman/poselens/internal/capture"
	"github.com/ayusman/poselens/internal/detector"
	"github.com/ayusman/poselens/internal/expression"
	"github.com/ayusman/poselens/internal/logging"
)

// EnvPrefix is the prefix for environment overrides, e.g. POSELENS_SERVER_ADDR.
const EnvPrefix = "POSELENS"

// Config holds all application configuration
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Camera     capture.Config   `mapstructure:"camera"`
	Detection  DetectionConfig  `mapstructure:"detection"`
	Expression ExpressionConfig `mapstructure:"expression"`
	Store      StoreConfig      `mapstructure:"store"`
	Log        logging.Config   `mapstructure:"log"`
}

// ServerConfig configures the HTTP server
type ServerConfig struct {
	Addr        string `mapstructure:"addr"`
	StaticDir   string `mapstructure:"static_dir"`
	JPEGQuality int    `mapstructure:"jpeg_quality"`
}

// DetectionConfig configures the landmark detector and polling cadence
type DetectionConfig struct {
	detector.Config `mapstructure:",squash"`

	PoseInterval time.Duration `mapstructure:"pose_interval"`
	FaceInterval time.Duration `mapstructure:"face_interval"`
	FaceDelay    time.Duration `mapstructure:"face_delay"`
	Mock         bool          `mapstructure:"mock"` // Use the mock detector instead of MediaPipe
}

// ExpressionConfig configures the expression classifier
type ExpressionConfig struct {
	Smoothing      float64       `mapstructure:"smoothing"`
	RecordInterval time.Duration `mapstructure:"record_interval"`
}

// StoreConfig configures persistence
type StoreConfig struct {
	Path string `mapstructure:"path"` // Defaults to ~/.poselens/poselens.db
}

// Dir returns the poselens data directory, ~/.poselens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".poselens"), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:        ":8080",
			JPEGQuality: app.DefaultJPEGQuality,
		},
		Camera: capture.DefaultConfig(),
		Detection: DetectionConfig{
			Config:       detector.DefaultConfig(),
			PoseInterval: app.DefaultPoseInterval,
			FaceInterval: app.DefaultFaceInterval,
			FaceDelay:    app.DefaultFaceDelay,
		},
		Expression: ExpressionConfig{
			Smoothing:      expression.DefaultSmoothing,
			RecordInterval: app.DefaultRecordInterval,
		},
		Log: logging.DefaultConfig(),
	}
}

// setDefaults registers every key so environment overrides are picked up
// by Unmarshal even when no config file mentions them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("server.addr", cfg.Server.Addr)
	v.SetDefault("server.static_dir", cfg.Server.StaticDir)
	v.SetDefault("server.jpeg_quality", cfg.Server.JPEGQuality)

	v.SetDefault("camera.device_id", cfg.Camera.DeviceID)
	v.SetDefault("camera.width", cfg.Camera.Width)
	v.SetDefault("camera.height", cfg.Camera.Height)
	v.SetDefault("camera.fps", cfg.Camera.FPS)
	v.SetDefault("camera.facing", string(cfg.Camera.Facing))

	v.SetDefault("detection.num_faces", cfg.Detection.NumFaces)
	v.SetDefault("detection.num_poses", cfg.Detection.NumPoses)
	v.SetDefault("detection.min_detection_confidence", cfg.Detection.MinDetectionConf)
	v.SetDefault("detection.min_presence_confidence", cfg.Detection.MinPresenceConf)
	v.SetDefault("detection.min_tracking_confidence", cfg.Detection.MinTrackingConf)
	v.SetDefault("detection.script_path", cfg.Detection.ScriptPath)
	v.SetDefault("detection.python_path", cfg.Detection.PythonPath)
	v.SetDefault("detection.pose_interval", cfg.Detection.PoseInterval)
	v.SetDefault("detection.face_interval", cfg.Detection.FaceInterval)
	v.SetDefault("detection.face_delay", cfg.Detection.FaceDelay)
	v.SetDefault("detection.mock", cfg.Detection.Mock)

	v.SetDefault("expression.smoothing", cfg.Expression.Smoothing)
	v.SetDefault("expression.record_interval", cfg.Expression.RecordInterval)

	v.SetDefault("store.path", cfg.Store.Path)

	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("log.dir", cfg.Log.Dir)
}

// Load reads configuration. When path is empty, config.yaml is looked up in
// ~/.poselens and the working directory; a missing file is not an error.
func Load(path string) (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, fmt.Errorf("resolve config directory: %w", err)
	}

	v := viper.New()
	setDefaults(v, Default())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(dir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Store.Path == "" {
		cfg.Store.Path = filepath.Join(dir, "poselens.db")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail deep inside the app.
func (c *Config) Validate() error {
	if c.Expression.Smoothing <= 0 || c.Expression.Smoothing >= 1 {
		return fmt.Errorf("expression.smoothing must be in (0, 1), got %v", c.Expression.Smoothing)
	}
	if !c.Camera.Facing.Valid() {
		return fmt.Errorf("camera.facing must be %q or %q, got %q", capture.FacingUser, capture.FacingEnvironment, c.Camera.Facing)
	}
	if c.Detection.PoseInterval <= 0 || c.Detection.FaceInterval <= 0 {
		return errors.New("detection intervals must be positive")
	}
	if c.Server.JPEGQuality < 1 || c.Server.JPEGQuality > 100 {
		return fmt.Errorf("server.jpeg_quality must be in [1, 100], got %d", c.Server.JPEGQuality)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return err
	}
	return nil
}
