// Package video decodes single frames out of consumer video containers
// using ffprobe and ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// ErrFrameNotFound reports a timestamp past the container's duration or a
// failed seek. This is a normal, expected outcome; callers check for it
// explicitly instead of treating it as a failure.
var ErrFrameNotFound = errors.New("frame not found")

// OpenError reports a container that cannot be opened or that has no
// usable video stream.
type OpenError struct {
	Path string
	Err  error
}

func (e *OpenError) Error() string {
	return fmt.Sprintf("open video %s: %v", e.Path, e.Err)
}

func (e *OpenError) Unwrap() error { return e.Err }

// Info is the read-only snapshot of an opened video source, cached at open
// time.
type Info struct {
	Width      int
	Height     int
	FPS        float64
	FrameCount int64
	Duration   float64
}

// FrameSource extracts decoded frames from a video at arbitrary
// timestamps.
type FrameSource interface {
	Info() Info
	ExtractFrame(ctx context.Context, timeSec float64) (*image.RGBA, error)
	Close() error
}

// FFmpegSource reads frames through an ffmpeg child process. Every
// ExtractFrame call spawns its own process over the path, so concurrent
// extraction needs no handle duplication or locking.
type FFmpegSource struct {
	path   string
	info   Info
	log    *zap.Logger
	closed bool
}

// Open probes the container and caches its properties. Fails when the
// file is missing, ffprobe rejects it, or the stream reports zero
// dimensions.
func Open(ctx context.Context, path string, logger *zap.Logger) (*FFmpegSource, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := os.Stat(path); err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	cmd := exec.CommandContext(ctx, "ffprobe",
		"-v", "error",
		"-select_streams", "v:0",
		"-show_entries", "stream=width,height,r_frame_rate,nb_frames",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		var ee *exec.ExitError
		if errors.As(err, &ee) && len(ee.Stderr) > 0 {
			return nil, &OpenError{Path: path, Err: fmt.Errorf("ffprobe: %s", strings.TrimSpace(string(ee.Stderr)))}
		}
		return nil, &OpenError{Path: path, Err: fmt.Errorf("ffprobe: %w", err)}
	}

	info, err := parseProbeOutput(string(out))
	if err != nil {
		return nil, &OpenError{Path: path, Err: err}
	}

	logger.Debug("video opened",
		zap.String("path", path),
		zap.Int("width", info.Width),
		zap.Int("height", info.Height),
		zap.Float64("fps", info.FPS),
		zap.Int64("frames", info.FrameCount),
		zap.Float64("duration", info.Duration),
	)

	return &FFmpegSource{path: path, info: info, log: logger}, nil
}

// Info returns the cached container properties.
func (s *FFmpegSource) Info() Info { return s.info }

// ExtractFrame decodes the frame nearest below timeSec: the last frame
// whose presentation time is <= timeSec. Returns ErrFrameNotFound when the
// timestamp lies past the container's duration or the seek produces no
// data.
func (s *FFmpegSource) ExtractFrame(ctx context.Context, timeSec float64) (*image.RGBA, error) {
	if s.closed {
		return nil, fmt.Errorf("extract frame: source %s is closed", s.path)
	}
	idx := nearestBelowIndex(timeSec, s.info.FPS)
	if idx < 0 || timeSec > s.info.Duration || (s.info.FrameCount > 0 && idx >= s.info.FrameCount) {
		return nil, ErrFrameNotFound
	}
	seek := float64(idx) / s.info.FPS

	cmd := exec.CommandContext(ctx, "ffmpeg",
		"-v", "error",
		"-ss", strconv.FormatFloat(seek, 'f', 6, 64),
		"-i", s.path,
		"-frames:v", "1",
		"-f", "rawvideo",
		"-pix_fmt", "rgba",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ffmpeg extract at %.3fs: %w: %s", timeSec, err, strings.TrimSpace(stderr.String()))
	}

	raw := stdout.Bytes()
	if len(raw) == 0 {
		// Seek landed past the last decodable frame.
		s.log.Debug("seek produced no frame", zap.Float64("time", timeSec))
		return nil, ErrFrameNotFound
	}
	want := s.info.Width * s.info.Height * 4
	if len(raw) != want {
		return nil, fmt.Errorf("ffmpeg extract at %.3fs: got %d bytes, want %d", timeSec, len(raw), want)
	}

	return &image.RGBA{
		Pix:    raw,
		Stride: s.info.Width * 4,
		Rect:   image.Rect(0, 0, s.info.Width, s.info.Height),
	}, nil
}

// Close releases the source. The handle only carries cached metadata, but
// extraction after Close is refused so lifecycle bugs surface early.
func (s *FFmpegSource) Close() error {
	s.closed = true
	return nil
}

// nearestBelowIndex maps a timestamp to the index of the last frame whose
// presentation time is <= timeSec.
func nearestBelowIndex(timeSec, fps float64) int64 {
	if timeSec < 0 || fps <= 0 {
		return -1
	}
	return int64(math.Floor(timeSec * fps))
}

// parseProbeOutput reads the key=value lines ffprobe emits for the first
// video stream. nb_frames is absent from some containers; it falls back to
// duration*fps.
func parseProbeOutput(out string) (Info, error) {
	var info Info
	for _, line := range strings.Split(out, "\n") {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok || value == "N/A" {
			continue
		}
		switch key {
		case "width":
			info.Width, _ = strconv.Atoi(value)
		case "height":
			info.Height, _ = strconv.Atoi(value)
		case "r_frame_rate":
			fps, err := parseRational(value)
			if err != nil {
				return Info{}, fmt.Errorf("parse frame rate %q: %w", value, err)
			}
			info.FPS = fps
		case "nb_frames":
			info.FrameCount, _ = strconv.ParseInt(value, 10, 64)
		case "duration":
			info.Duration, _ = strconv.ParseFloat(value, 64)
		}
	}

	if info.Width <= 0 || info.Height <= 0 {
		return Info{}, fmt.Errorf("container reports zero dimensions (%dx%d)", info.Width, info.Height)
	}
	if info.FPS <= 0 {
		return Info{}, fmt.Errorf("container reports no frame rate")
	}
	if info.FrameCount == 0 && info.Duration > 0 {
		info.FrameCount = int64(math.Round(info.Duration * info.FPS))
	}
	return info, nil
}

// parseRational parses ffprobe rate strings like "30000/1001" or "25".
func parseRational(s string) (float64, error) {
	num, den, ok := strings.Cut(s, "/")
	if !ok {
		return strconv.ParseFloat(s, 64)
	}
	n, err := strconv.ParseFloat(num, 64)
	if err != nil {
		return 0, err
	}
	d, err := strconv.ParseFloat(den, 64)
	if err != nil {
		return 0, err
	}
	if d == 0 {
		return 0, fmt.Errorf("zero denominator")
	}
	return n / d, nil
}
