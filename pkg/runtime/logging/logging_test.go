package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/de-tools/soc-atlas/pkg/services/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Levels(t *testing.T) {
	tests := []struct {
		name  string
		level string
		debug bool
		want  zerolog.Level
	}{
		{name: "configured", level: "warn", want: zerolog.WarnLevel},
		{name: "invalid falls back to info", level: "loud", want: zerolog.InfoLevel},
		{name: "empty falls back to info", level: "", want: zerolog.InfoLevel},
		{name: "debug flag wins", level: "error", debug: true, want: zerolog.DebugLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := New(config.LogConfig{Level: tt.level}, &bytes.Buffer{}, tt.debug)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestNew_WritesStructuredLines(t *testing.T) {
	var buf bytes.Buffer
	logger := New(config.LogConfig{Level: "info"}, &buf, false)

	logger.Info().Str("source", "data/soc_reports.json").Msg("reports loaded")
	logger.Debug().Msg("hidden")

	assert.Contains(t, buf.String(), `"source":"data/soc_reports.json"`)
	assert.Contains(t, buf.String(), `"time":`)
	assert.NotContains(t, buf.String(), "hidden")
}

func TestOpenFile_Appends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "soc-atlas.log")

	for i := 0; i < 2; i++ {
		f, err := OpenFile(path)
		require.NoError(t, err)
		_, err = f.WriteString("line\n")
		require.NoError(t, err)
		require.NoError(t, f.Close())
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "line\nline\n", string(data))
}
