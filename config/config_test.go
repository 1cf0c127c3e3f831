package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")

	cfg, err := Load()
	require.NoError(t, err)
	require.Equal(t, "key", cfg.GeminiAPIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.GeminiModel)
	require.Equal(t, time.Duration(0), cfg.GeminiTimeout)
	require.Equal(t, ":8080", cfg.HTTPAddr)
	require.Equal(t, int64(10<<20), cfg.MaxUploadBytes)
	require.Equal(t, 1024, cfg.MaxImageSide)
	require.Equal(t, 40_000_000, cfg.MaxImagePixels)
	require.Equal(t, time.Hour, cfg.ResultTTL)
	require.Equal(t, "text", cfg.LogFormat)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("GEMINI_STUB", "true")
	t.Setenv("GEMINI_TIMEOUT", "45s")
	t.Setenv("HTTP_ADDR", "127.0.0.1:9000")
	t.Setenv("RESULT_TTL", "10m")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)
	require.True(t, cfg.GeminiStub)
	require.Equal(t, 45*time.Second, cfg.GeminiTimeout)
	require.Equal(t, "127.0.0.1:9000", cfg.HTTPAddr)
	require.Equal(t, 10*time.Minute, cfg.ResultTTL)
	require.Equal(t, "json", cfg.LogFormat)
}

func TestLoad_RequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GEMINI_STUB", "")

	_, err := Load()
	require.ErrorContains(t, err, "GEMINI_API_KEY")
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("MAX_IMAGE_SIDE", "big")
	t.Setenv("RESULT_TTL", "forever")

	_, err := Load()
	require.ErrorContains(t, err, "MAX_IMAGE_SIDE")
	require.ErrorContains(t, err, "RESULT_TTL")
}

func TestLoad_RejectsNonPositivePixelLimit(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "key")
	t.Setenv("MAX_IMAGE_PIXELS", "0")

	_, err := Load()
	require.ErrorContains(t, err, "MAX_IMAGE_PIXELS")
}
