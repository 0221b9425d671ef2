// Package system holds host-level helpers: external tool discovery, input
// file lookup, scratch directories and worker sizing.
package system

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v3/mem"
)

// videoExtensions lists the container suffixes FindLatestVideo accepts.
var videoExtensions = []string{".mp4", ".avi", ".mov", ".mkv"}

// CheckTools verifies that ffmpeg and ffprobe are reachable on PATH.
func CheckTools() error {
	for _, tool := range []string{"ffmpeg", "ffprobe"} {
		if _, err := exec.LookPath(tool); err != nil {
			return fmt.Errorf("%s not found on PATH: %w", tool, err)
		}
	}
	return nil
}

// FindLatestVideo returns the most recently modified video file in dir.
func FindLatestVideo(dir string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasVideoExtension(f.Name()) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no video files found in %s", dir)
	}
	return latestFile, nil
}

func hasVideoExtension(name string) bool {
	lower := strings.ToLower(name)
	for _, ext := range videoExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// Workspace is a scratch directory for intermediate artifacts. Close
// removes it with everything inside.
type Workspace struct {
	dir string
}

// NewWorkspace creates a fresh temporary directory.
func NewWorkspace() (*Workspace, error) {
	dir, err := os.MkdirTemp("", "video2manual-*")
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	return &Workspace{dir: dir}, nil
}

// Dir returns the workspace path.
func (w *Workspace) Dir() string { return w.dir }

// SaveImage writes img as PNG under the workspace and returns its path.
func (w *Workspace) SaveImage(name string, img image.Image) (string, error) {
	path := filepath.Join(w.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("encode %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return path, nil
}

// Close removes the workspace directory and its contents.
func (w *Workspace) Close() error {
	return os.RemoveAll(w.dir)
}

// AutoWorkers picks a worker count for parallel frame extraction.
// Each in-flight step holds one decoded RGBA frame, so the count is
// bounded by available memory as well as by CPU count.
func AutoWorkers(frameBytes int64) int {
	workers := runtime.NumCPU()

	if frameBytes > 0 {
		if vm, err := mem.VirtualMemory(); err == nil {
			// Leave half of the available memory to ffmpeg children and
			// the document assembly.
			byMemory := int(int64(vm.Available) / 2 / frameBytes)
			if byMemory < workers {
				workers = byMemory
			}
		}
	}

	if workers < 1 {
		workers = 1
	}
	return workers
}
