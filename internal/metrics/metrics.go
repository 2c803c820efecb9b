// Package metrics defines the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesProcessed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "poselens_frames_processed_total",
			Help: "Total number of camera frames run through detection",
		},
	)

	FrameErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poselens_frame_errors_total",
			Help: "Total number of frames dropped, by pipeline stage",
		},
		[]string{"stage"},
	)

	Detections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poselens_detections_total",
			Help: "Total number of frames with a detected pose or face",
		},
		[]string{"kind"},
	)

	DetectionLatency = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "poselens_detection_latency_seconds",
			Help:    "Landmark detection latency in seconds",
			Buckets: []float64{0.005, 0.01, 0.02, 0.033, 0.05, 0.066, 0.1, 0.2, 0.5},
		},
	)

	EmotionsClassified = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poselens_emotions_classified_total",
			Help: "Total number of classified frames, by dominant emotion",
		},
		[]string{"emotion"},
	)

	Detecting = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "poselens_detecting",
			Help: "1 while a detection session is running",
		},
	)

	RequestCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poselens_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"code", "method"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "poselens_http_request_duration_seconds",
			Help: "HTTP request duration in seconds",
		},
		[]string{"method"},
	)
)

// Pipeline stages used as FrameErrors labels.
const (
	StageRead   = "read"
	StageDetect = "detect"
	StageStore  = "store"
)

// Detection kinds used as Detections labels.
const (
	KindPose = "pose"
	KindFace = "face"
)
