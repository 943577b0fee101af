package vision

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write %s stub: %v", name, err)
	}
	return path
}

func writeFrameStub(t *testing.T, dir, argsFile, payload string) string {
	t.Helper()
	body := fmt.Sprintf("#!/bin/sh\nprintf '%%s\\n' \"$@\" > %s\nfor a; do out=$a; done\nprintf '%s' > \"$out\"\n", argsFile, payload)
	return writeScript(t, dir, "ffmpeg", body)
}

func readRecordedArgs(t *testing.T, argsFile string) []string {
	t.Helper()
	data, err := os.ReadFile(argsFile)
	if err != nil {
		t.Fatalf("read recorded args: %v", err)
	}
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}

func seekArgument(t *testing.T, args []string) string {
	t.Helper()
	for i, arg := range args {
		if arg == "-ss" && i+1 < len(args) {
			return args[i+1]
		}
	}
	t.Fatalf("no -ss argument in %v", args)
	return ""
}

func TestFrameGrabberSeeksToTenPercent(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	ffmpeg := writeFrameStub(t, dir, argsFile, "FRAMEBYTES")
	ffprobe := writeScript(t, dir, "ffprobe", "#!/bin/sh\necho 20.0\n")

	grabber := NewFrameGrabber(WithFFmpeg(ffmpeg), WithFFprobe(ffprobe))
	frame, err := grabber.Grab(context.Background(), filepath.Join(dir, "video.mp4"))
	if err != nil {
		t.Fatalf("Grab returned error: %v", err)
	}
	if string(frame) != "FRAMEBYTES" {
		t.Fatalf("unexpected frame payload %q", frame)
	}

	if seek := seekArgument(t, readRecordedArgs(t, argsFile)); seek != "2.000" {
		t.Fatalf("expected seek at 2.000s for a 20s video, got %q", seek)
	}
}

func TestFrameGrabberFallbackSeekWithoutFFprobe(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	ffmpeg := writeFrameStub(t, dir, argsFile, "FRAMEBYTES")

	grabber := NewFrameGrabber(WithFFmpeg(ffmpeg), WithFFprobe("definitely-missing-ffprobe"))
	if _, err := grabber.Grab(context.Background(), filepath.Join(dir, "video.mp4")); err != nil {
		t.Fatalf("Grab returned error: %v", err)
	}

	if seek := seekArgument(t, readRecordedArgs(t, argsFile)); seek != "3.000" {
		t.Fatalf("expected fallback seek of 3.000s, got %q", seek)
	}
}

func TestFrameGrabberEmptyFrameIsError(t *testing.T) {
	dir := t.TempDir()
	argsFile := filepath.Join(dir, "args")
	ffmpeg := writeFrameStub(t, dir, argsFile, "")

	grabber := NewFrameGrabber(WithFFmpeg(ffmpeg), WithFFprobe("definitely-missing-ffprobe"))
	_, err := grabber.Grab(context.Background(), filepath.Join(dir, "video.mp4"))
	if err == nil || !strings.Contains(err.Error(), "empty frame") {
		t.Fatalf("expected empty frame error, got %v", err)
	}
}

func TestFrameGrabberAvailable(t *testing.T) {
	if NewFrameGrabber(WithFFmpeg("definitely-missing-ffmpeg")).Available() {
		t.Fatal("expected missing ffmpeg to be unavailable")
	}

	dir := t.TempDir()
	ffmpeg := writeScript(t, dir, "ffmpeg", "#!/bin/sh\nexit 0\n")
	if !NewFrameGrabber(WithFFmpeg(ffmpeg)).Available() {
		t.Fatal("expected stub ffmpeg to be available")
	}
}
