package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaults(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "signtutor")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, FileName))
	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, "127.0.0.1:8080", cfg.Server.Address)
	assert.Equal(t, 30, cfg.Camera.FPS)
	assert.True(t, cfg.Camera.Mirror)
	assert.Equal(t, 800*time.Millisecond, cfg.Practice.LessonHold)
	assert.Equal(t, 500*time.Millisecond, cfg.Practice.SpellingHold)
	assert.Equal(t, "MANO", cfg.Practice.FallbackWord)
	assert.Equal(t, 30*time.Second, cfg.Detector.IdleTimeout)
	assert.Equal(t, filepath.Join(dir, "signtutor.db"), cfg.Database.Path)
	assert.Equal(t, filepath.Join(dir, "fingerspelling.onnx"), cfg.Model.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoadReadsFile(t *testing.T) {
	dir := t.TempDir()
	yaml := `
server:
  address: 0.0.0.0:9000
practice:
  lesson_hold: 1s
  fallback_word: hola
database:
  path: /var/lib/signtutor.db
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(yaml), 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.Address)
	assert.Equal(t, time.Second, cfg.Practice.LessonHold)
	assert.Equal(t, 500*time.Millisecond, cfg.Practice.SpellingHold, "unset keys keep defaults")
	assert.Equal(t, "hola", cfg.Practice.FallbackWord)
	assert.Equal(t, "/var/lib/signtutor.db", cfg.Database.Path)
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("SIGNTUTOR_PRACTICE_SPELLING_HOLD", "250ms")
	t.Setenv("SIGNTUTOR_CAMERA_DEVICE", "2")
	t.Setenv("SIGNTUTOR_LOG_LEVEL", "debug")

	cfg, err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Practice.SpellingHold)
	assert.Equal(t, 2, cfg.Camera.Device)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoadRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("camera:\n  fps: 0\n"), 0o600))

	_, err := Load(dir)
	assert.ErrorContains(t, err, "camera.fps")
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("server: [unclosed\n"), 0o600))

	_, err := Load(dir)
	assert.Error(t, err)
}
