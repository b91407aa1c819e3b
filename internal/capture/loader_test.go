// internal/capture/loader_test.go
package capture

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xkilldash9x/layerlift/api/schemas"
)

func sampleCapture() *schemas.Capture {
	return &schemas.Capture{
		URL:        "https://example.com",
		CapturedAt: time.Date(2026, 5, 12, 9, 30, 0, 0, time.UTC),
		Viewport:   schemas.Viewport{Width: 800, Height: 600},
		HTML:       `<html><head></head><body><div id="a"></div></body></html>`,
		Boxes: []schemas.ElementBox{
			{Tag: "html", Rect: schemas.NewRect(0, 0, 800, 600), Visible: true},
		},
	}
}

func TestLoadCompressionFormats(t *testing.T) {
	tests := []struct {
		name string
		file string
	}{
		{"plain json", "capture.json"},
		{"gzip", "capture.json.gz"},
		{"brotli", "capture.json.br"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), tt.file)
			require.NoError(t, Save(path, sampleCapture()))

			loaded, err := Load(path)
			require.NoError(t, err)
			assert.Equal(t, sampleCapture(), loaded)
		})
	}
}

func TestLoadPlainJSONBytes(t *testing.T) {
	raw := `{
		"url": "https://example.com/page",
		"capturedAt": "2026-05-12T09:30:00Z",
		"viewport": {"width": 1280, "height": 800},
		"html": "<html><head></head><body></body></html>",
		"boxes": [{"tag": "html", "rect": {"top":0,"left":0,"right":1280,"bottom":800,"width":1280,"height":800}, "visible": true}]
	}`
	path := filepath.Join(t.TempDir(), "page.json")
	require.NoError(t, os.WriteFile(path, []byte(raw), 0o644))

	capture, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/page", capture.URL)
	assert.Equal(t, schemas.Viewport{Width: 1280, Height: 800}, capture.Viewport)
	require.Len(t, capture.Boxes, 1)
	assert.Equal(t, 1280.0, capture.Boxes[0].Rect.Width)
}

func TestLoadExpandsHomePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.Reset()
	t.Cleanup(homedir.Reset)

	require.NoError(t, Save(filepath.Join(home, "page.json"), sampleCapture()))

	capture, err := Load("~/page.json")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com", capture.URL)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
	assert.ErrorContains(t, err, "opening capture file")
}

func TestDecodeRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		ext     string
		wantErr string
	}{
		{"garbage json", "{not json", "", "decoding capture json"},
		{"fails validation", `{"viewport":{"width":800,"height":600}}`, ".json", "no document markup"},
		{"truncated gzip", "\x1f\x8b", ".gz", "reading gzip header"},
		{"json claims brotli", `{"html":"<html></html>"}`, ".br", "decoding capture json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input), tt.ext)
			require.Error(t, err)
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestSaveRejectsUnwritablePath(t *testing.T) {
	err := Save(filepath.Join(t.TempDir(), "missing-dir", "capture.json"), sampleCapture())
	require.Error(t, err)
	assert.ErrorContains(t, err, "creating capture file")
}
