package manual

import (
	"errors"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func sampleProject() *Project {
	p := NewProject("Install guide")
	p.VideoPath = "capture.mp4"
	p.VideoInfo = &VideoSnapshot{Width: 1920, Height: 1080, FPS: 30, Duration: 95.5}
	p.Steps = []Step{
		{
			ID: 1, Timestamp: 2.5, Title: "Open the menu",
			Description: "Click the gear icon in the top right corner.",
			Annotations: []Annotation{
				{Kind: KindRect, Coords: [4]float64{0.1, 0.2, 0.4, 0.5}, Color: [3]uint8{255, 0, 0}, Thickness: 3},
				{Kind: KindArrow, Coords: [4]float64{0.7, 0.8, 0.45, 0.35}, Color: [3]uint8{0, 0, 255}, Thickness: 4},
			},
		},
		{
			ID: 2, Timestamp: 14.0, Title: "Select installed apps",
			Description: "Choose the entry from the list.",
			Annotations: []Annotation{
				{Kind: KindLine, Coords: [4]float64{0.2, 0.2, 0.8, 0.2}, Color: [3]uint8{0, 255, 0}, Thickness: 2},
			},
		},
	}
	return p
}

func TestSaveLoadRoundTrip(t *testing.T) {
	p := sampleProject()
	path := filepath.Join(t.TempDir(), "project.json")

	if err := Save(p, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got.ProjectName != p.ProjectName || got.VideoPath != p.VideoPath {
		t.Errorf("project fields drifted: %+v", got)
	}
	if !reflect.DeepEqual(got.VideoInfo, p.VideoInfo) {
		t.Errorf("video info drifted: %+v != %+v", got.VideoInfo, p.VideoInfo)
	}
	if got.Metadata != p.Metadata {
		t.Errorf("metadata drifted: %+v != %+v", got.Metadata, p.Metadata)
	}
	if !reflect.DeepEqual(got.Steps, p.Steps) {
		t.Errorf("steps drifted:\n got %+v\nwant %+v", got.Steps, p.Steps)
	}
}

func TestValidateNamesOffendingField(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Project)
		field  string
	}{
		{"negative timestamp", func(p *Project) { p.Steps[0].Timestamp = -1 }, "timestamp"},
		{"empty title", func(p *Project) { p.Steps[1].Title = "" }, "title"},
		{"duplicate id", func(p *Project) { p.Steps[1].ID = 1 }, "id"},
		{"zero id", func(p *Project) { p.Steps[0].ID = 0 }, "id"},
		{"unknown kind", func(p *Project) { p.Steps[0].Annotations[0].Kind = "polygon" }, "annotations[0].kind"},
		{"coord out of range", func(p *Project) { p.Steps[0].Annotations[1].Coords[2] = 1.2 }, "annotations[1].coords[2]"},
		{"zero thickness", func(p *Project) { p.Steps[1].Annotations[0].Thickness = 0 }, "annotations[0].thickness"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p := sampleProject()
			tc.mutate(p)
			err := p.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			var rec *InvalidStepRecordError
			if !errors.As(err, &rec) {
				t.Fatalf("expected InvalidStepRecordError, got %T: %v", err, err)
			}
			if rec.Field != tc.field {
				t.Errorf("expected field %q, got %q", tc.field, rec.Field)
			}
			if !strings.Contains(err.Error(), tc.field) {
				t.Errorf("error message must name the field: %q", err.Error())
			}
		})
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte(`{"steps": [{"id": 1, "timestamp": -3, "title": "x"}]}`))
	var rec *InvalidStepRecordError
	if !errors.As(err, &rec) {
		t.Fatalf("expected InvalidStepRecordError, got %v", err)
	}

	if _, err := Parse([]byte(`{not json`)); err == nil {
		t.Error("expected syntax error")
	}
}

func TestEditOperations(t *testing.T) {
	p := sampleProject()

	added := p.Append(Step{Timestamp: 30, Title: "Confirm"})
	if added.ID != 3 {
		t.Errorf("expected fresh id 3, got %d", added.ID)
	}

	dup := p.Duplicate(1)
	if dup == nil {
		t.Fatal("Duplicate returned nil")
	}
	if dup.ID != 4 || p.Steps[1].ID != 4 {
		t.Errorf("duplicate must sit directly after the original with a fresh id, got order %v", stepIDs(p))
	}
	dup.Annotations[0].Thickness = 9
	if p.Steps[0].Annotations[0].Thickness == 9 {
		t.Error("duplicate shares the original's annotation slice")
	}

	if !p.Move(3, 0) {
		t.Fatal("Move failed")
	}
	if p.Steps[0].Title != "Confirm" {
		t.Errorf("expected moved step first, got order %v", stepIDs(p))
	}

	if !p.Delete(4) {
		t.Fatal("Delete failed")
	}
	if p.StepByID(4) != nil {
		t.Error("deleted step still present")
	}
	if p.Delete(99) {
		t.Error("Delete of unknown id must report false")
	}
}

func TestInsertAtClamps(t *testing.T) {
	p := sampleProject()
	p.InsertAt(-5, Step{Title: "first"})
	if p.Steps[0].Title != "first" {
		t.Errorf("negative index must clamp to head, got order %v", stepIDs(p))
	}
	p.InsertAt(100, Step{Title: "last"})
	if p.Steps[len(p.Steps)-1].Title != "last" {
		t.Errorf("oversized index must clamp to tail, got order %v", stepIDs(p))
	}
}

func TestExceededTimestamps(t *testing.T) {
	p := sampleProject()
	ids := p.ExceededTimestamps(10.0)
	if len(ids) != 1 || ids[0] != 2 {
		t.Errorf("expected [2], got %v", ids)
	}
	if ids := p.ExceededTimestamps(100.0); ids != nil {
		t.Errorf("expected none, got %v", ids)
	}
}

func stepIDs(p *Project) []int {
	ids := make([]int, len(p.Steps))
	for i, s := range p.Steps {
		ids[i] = s.ID
	}
	return ids
}
