package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.DefaultColor != "red" || cfg.DefaultThickness != 3 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if cfg.Color() != [3]uint8{255, 0, 0} {
		t.Errorf("default color must resolve to red, got %v", cfg.Color())
	}
}

func TestLoadFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := "project_name: Setup guide\ndefault_color: blue\nworkers: 4\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("V2M_DEFAULT_COLOR", "#ffa500")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.ProjectName != "Setup guide" || cfg.Workers != 4 {
		t.Errorf("file values not applied: %+v", cfg)
	}
	if cfg.Color() != [3]uint8{255, 165, 0} {
		t.Errorf("environment must override the file, got %v", cfg.Color())
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("default_thickness: 0\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected validation error for zero thickness")
	}
}

func TestParseColor(t *testing.T) {
	cases := []struct {
		in   string
		want [3]uint8
		ok   bool
	}{
		{"red", [3]uint8{255, 0, 0}, true},
		{"Purple", [3]uint8{128, 0, 128}, true},
		{"#00ff00", [3]uint8{0, 255, 0}, true},
		{"#1A2B3C", [3]uint8{0x1a, 0x2b, 0x3c}, true},
		{"#12345", [3]uint8{}, false},
		{"magenta", [3]uint8{}, false},
	}
	for _, tc := range cases {
		got, err := ParseColor(tc.in)
		if tc.ok != (err == nil) {
			t.Errorf("ParseColor(%q): unexpected error state %v", tc.in, err)
			continue
		}
		if tc.ok && got != tc.want {
			t.Errorf("ParseColor(%q) = %v, want %v", tc.in, got, tc.want)
		}
	}
}
