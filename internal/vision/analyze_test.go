package vision

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"dlassist/internal/metadata"
)

func TestAnalyzerHandles(t *testing.T) {
	analyzer := NewAnalyzer(NewClient(Config{APIKey: "test"}), nil, nil)
	for _, ext := range []string{"jpg", "jpeg", "png", "gif", "bmp", "webp", "mp4", "mkv", "webm"} {
		if !analyzer.Handles(ext) {
			t.Fatalf("expected analyzer to handle %q", ext)
		}
	}
	for _, ext := range []string{"pdf", "mp3", "txt", ""} {
		if analyzer.Handles(ext) {
			t.Fatalf("expected analyzer to skip %q", ext)
		}
	}
}

func TestAnalyzerExtractImageMergesObservation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"description":"Album cover art","artist":"The Band","title":"Big Hit","content_type":"Album Art","is_explicit":false}`
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	dir := t.TempDir()
	imagePath := filepath.Join(dir, "cover.png")
	if err := os.WriteFile(imagePath, []byte("fake image bytes"), 0o644); err != nil {
		t.Fatalf("write image: %v", err)
	}

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	analyzer := NewAnalyzer(client, nil, nil)

	attrs := metadata.Attributes{}
	if err := analyzer.Extract(context.Background(), imagePath, attrs); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}

	want := map[string]string{
		"artist":         "The Band",
		"title":          "Big Hit",
		"content_type":   "Album Art",
		"video_type":     "Album Art",
		"content_rating": "Clean",
		"description":    "Album cover art",
	}
	for key, value := range want {
		if attrs[key] != value {
			t.Fatalf("expected %s=%q, got %q", key, value, attrs[key])
		}
	}
}

func TestAnalyzerExtractVideoThroughFrameGrabber(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content := `{"description":"Karaoke lyrics on screen","title":"Sing Along","content_type":"karaoke","is_explicit":false}`
		_ = json.NewEncoder(w).Encode(completionResponse(content))
	}))
	defer server.Close()

	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	ffmpeg := writeFrameStub(t, dir, argsFile, "FRAMEBYTES")
	grabber := NewFrameGrabber(WithFFmpeg(ffmpeg), WithFFprobe("definitely-missing-ffprobe"))

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	analyzer := NewAnalyzer(client, grabber, nil)

	attrs := metadata.Attributes{}
	if err := analyzer.Extract(context.Background(), filepath.Join(dir, "clip.mp4"), attrs); err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if attrs["video_type"] != "Karaoke" {
		t.Fatalf("expected canonical karaoke type, got %q", attrs["video_type"])
	}
	if attrs["title"] != "Sing Along" {
		t.Fatalf("expected title from observation, got %q", attrs["title"])
	}
}

func TestAnalyzerExtractVideoSkippedWithoutFFmpeg(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(completionResponse(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	grabber := NewFrameGrabber(WithFFmpeg("definitely-missing-ffmpeg"))
	analyzer := NewAnalyzer(client, grabber, nil)

	attrs := metadata.Attributes{}
	if err := analyzer.Extract(context.Background(), "/nowhere/clip.mp4", attrs); err != nil {
		t.Fatalf("expected silent skip, got %v", err)
	}
	if called {
		t.Fatal("expected no API call without ffmpeg")
	}
	if len(attrs) != 0 {
		t.Fatalf("expected untouched attributes, got %v", attrs)
	}
}

func TestAnalyzerExtractIgnoresOtherExtensions(t *testing.T) {
	var called bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		_ = json.NewEncoder(w).Encode(completionResponse(`{}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test", BaseURL: server.URL, Model: "demo-model"})
	analyzer := NewAnalyzer(client, nil, nil)

	attrs := metadata.Attributes{}
	if err := analyzer.Extract(context.Background(), "/nowhere/notes.txt", attrs); err != nil {
		t.Fatalf("expected no-op for unsupported extension, got %v", err)
	}
	if called {
		t.Fatal("expected no API call for unsupported extension")
	}
}

func TestAnalyzerExtractMissingImageIsError(t *testing.T) {
	client := NewClient(Config{APIKey: "test", BaseURL: "http://127.0.0.1:0", Model: "demo-model"})
	analyzer := NewAnalyzer(client, nil, nil)

	attrs := metadata.Attributes{}
	if err := analyzer.Extract(context.Background(), "/nowhere/missing.jpg", attrs); err == nil {
		t.Fatal("expected error for unreadable image")
	}
}
