package video

import (
	"context"
	"errors"
	"math"
	"testing"

	"go.uber.org/zap"
)

func TestParseProbeOutput(t *testing.T) {
	out := "width=1920\nheight=1080\nr_frame_rate=30000/1001\nnb_frames=2863\nduration=95.512000\n"
	info, err := parseProbeOutput(out)
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.Width != 1920 || info.Height != 1080 {
		t.Errorf("dimensions: got %dx%d", info.Width, info.Height)
	}
	if math.Abs(info.FPS-29.97) > 0.01 {
		t.Errorf("fps: got %f", info.FPS)
	}
	if info.FrameCount != 2863 {
		t.Errorf("frame count: got %d", info.FrameCount)
	}
	if info.Duration != 95.512 {
		t.Errorf("duration: got %f", info.Duration)
	}
}

func TestParseProbeOutputFrameCountFallback(t *testing.T) {
	out := "width=1280\nheight=720\nr_frame_rate=25/1\nnb_frames=N/A\nduration=10.000000\n"
	info, err := parseProbeOutput(out)
	if err != nil {
		t.Fatalf("parseProbeOutput failed: %v", err)
	}
	if info.FrameCount != 250 {
		t.Errorf("expected fallback frame count 250, got %d", info.FrameCount)
	}
}

func TestParseProbeOutputRejectsZeroDimensions(t *testing.T) {
	out := "width=0\nheight=1080\nr_frame_rate=25/1\nduration=10.0\n"
	if _, err := parseProbeOutput(out); err == nil {
		t.Error("expected error for zero width")
	}

	out = "width=1920\nheight=1080\nduration=10.0\n"
	if _, err := parseProbeOutput(out); err == nil {
		t.Error("expected error for missing frame rate")
	}
}

func TestParseRational(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"30000/1001", 30000.0 / 1001.0, true},
		{"25/1", 25, true},
		{"25", 25, true},
		{"30/0", 0, false},
		{"abc/1", 0, false},
	}
	for _, tc := range cases {
		got, err := parseRational(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("parseRational(%q): unexpected error state %v", tc.in, err)
			continue
		}
		if tc.ok && math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("parseRational(%q) = %f, want %f", tc.in, got, tc.want)
		}
	}
}

func TestExtractFrameOutOfRange(t *testing.T) {
	// The duration and index guards fire before any ffmpeg process is
	// spawned, so a hand-built source is enough.
	src := &FFmpegSource{
		path: "capture.mp4",
		info: Info{Width: 1920, Height: 1080, FPS: 30, FrameCount: 1800, Duration: 60},
		log:  zap.NewNop(),
	}

	for _, timeSec := range []float64{60.001, 61, 1e6, -0.5} {
		frame, err := src.ExtractFrame(context.Background(), timeSec)
		if !errors.Is(err, ErrFrameNotFound) {
			t.Errorf("ExtractFrame(%g): expected ErrFrameNotFound, got %v", timeSec, err)
		}
		if frame != nil {
			t.Errorf("ExtractFrame(%g): expected no frame, got %v", timeSec, frame.Bounds())
		}
	}
}

func TestExtractFrameAfterClose(t *testing.T) {
	src := &FFmpegSource{
		path: "capture.mp4",
		info: Info{Width: 640, Height: 480, FPS: 25, FrameCount: 250, Duration: 10},
		log:  zap.NewNop(),
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := src.ExtractFrame(context.Background(), 1); err == nil {
		t.Error("expected error extracting from a closed source")
	}
}

func TestNearestBelowIndex(t *testing.T) {
	cases := []struct {
		time, fps float64
		want      int64
	}{
		{0, 30, 0},
		{0.5, 30, 15},
		{1.0 / 3.0, 30, 9}, // 9.999... floors down
		{2.5, 30, 75},
		{-0.1, 30, -1},
		{1, 0, -1},
	}
	for _, tc := range cases {
		if got := nearestBelowIndex(tc.time, tc.fps); got != tc.want {
			t.Errorf("nearestBelowIndex(%f, %f) = %d, want %d", tc.time, tc.fps, got, tc.want)
		}
	}
}
