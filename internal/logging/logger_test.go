package logging

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    zerolog.Level
		wantErr bool
	}{
		{"", zerolog.InfoLevel, false},
		{"debug", zerolog.DebugLevel, false},
		{"WARN", zerolog.WarnLevel, false},
		{"error", zerolog.ErrorLevel, false},
		{"loud", zerolog.NoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLogger_JSONComponent(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(Config{Level: "debug", Format: "json"}, &buf)
	require.NoError(t, err)

	log := l.Component("app")
	log.Info().Str("facing", "user").Msg("detection started")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "poselens", entry["app"])
	assert.Equal(t, "app", entry["component"])
	assert.Equal(t, "user", entry["facing"])
	assert.Equal(t, "detection started", entry["message"])
}

func TestLogger_LevelFilters(t *testing.T) {
	var buf bytes.Buffer
	l, err := newLogger(Config{Level: "warn", Format: "json"}, &buf)
	require.NoError(t, err)

	log := l.Zerolog()
	log.Info().Msg("hidden")
	assert.Zero(t, buf.Len())

	log.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_File(t *testing.T) {
	dir := t.TempDir()
	var buf bytes.Buffer

	l, err := newLogger(Config{Level: "info", Format: "json", Dir: dir}, &buf)
	require.NoError(t, err)

	log := l.Zerolog()
	log.Info().Msg("to file")
	require.NoError(t, l.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), "poselens_")
}

func TestNew_InvalidLevel(t *testing.T) {
	_, err := New(Config{Level: "chatty"})
	assert.Error(t, err)
}
