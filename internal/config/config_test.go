package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, "title: Test Book\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Test Book", cfg.Title)
	require.Equal(t, "build", cfg.OutputDir)
	require.Equal(t, []string{"html"}, cfg.Formats)
	require.Equal(t, 500*time.Millisecond, cfg.Watch.DebounceDuration())
	require.Equal(t, "bookbuilder.builds", cfg.Events.Subject)
}

func TestLoad_FullConfig(t *testing.T) {
	path := writeConfig(t, `
title: Test Book
output_dir: dist
formats: [html, pdf]
locales: [de, fr]
renderers:
  pdf: ["pandoc", "{input}", "-o", "{output}"]
watch:
  debounce: 2s
  rebuild_every: 1h
metrics:
  enabled: true
  addr: ":9999"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "dist", cfg.OutputDir)
	require.Equal(t, []string{"html", "pdf"}, cfg.Formats)
	require.Equal(t, []string{"de", "fr"}, cfg.Locales)
	require.Equal(t, []string{"pandoc", "{input}", "-o", "{output}"}, cfg.Renderers["pdf"])
	require.Equal(t, 2*time.Second, cfg.Watch.DebounceDuration())
	interval, ok := cfg.Watch.RebuildInterval()
	require.True(t, ok)
	require.Equal(t, time.Hour, interval)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, ":9999", cfg.Metrics.Addr)
}

func TestLoad_ExpandsEnvironment(t *testing.T) {
	t.Setenv("BOOK_TITLE", "Env Book")
	path := writeConfig(t, "title: ${BOOK_TITLE}\n")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "Env Book", cfg.Title)
}

func TestLoad_MissingTitle(t *testing.T) {
	path := writeConfig(t, "output_dir: dist\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "title is required")
}

func TestLoad_UnknownFormat(t *testing.T) {
	path := writeConfig(t, "title: X\nformats: [docx]\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "unknown format")
}

func TestLoad_EmptyRendererCommand(t *testing.T) {
	path := writeConfig(t, "title: X\nrenderers:\n  pdf: []\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "empty command")
}

func TestLoad_BadDebounce(t *testing.T) {
	path := writeConfig(t, "title: X\nwatch:\n  debounce: soon\n")

	_, err := Load(path)
	require.ErrorContains(t, err, "watch.debounce")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestWriteStarter(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, WriteStarter(path))

	// The starter file must load cleanly as-is.
	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "My Book", cfg.Title)

	require.Error(t, WriteStarter(path))
}
