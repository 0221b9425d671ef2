// Package manual holds the step-list domain: the unit of manual content is
// one timestamped video moment plus its annotations and text.
package manual

import (
	"time"

	"github.com/ivlev/video2manual/internal/geometry"
)

const AppVersion = "1.0.0"

// Annotation kinds. The set is closed: anything else is rejected at
// validation and at draw time.
const (
	KindRect  = "rect"
	KindLine  = "line"
	KindArrow = "arrow"
)

// ValidKinds enumerates the supported annotation kinds.
var ValidKinds = map[string]bool{
	KindRect:  true,
	KindLine:  true,
	KindArrow: true,
}

// Annotation is one drawable marker owned by a step. Geometry is stored in
// relative coordinates against the video's native resolution, so it
// survives any canvas or display scaling. Color is stored as R,G,B.
type Annotation struct {
	Kind      string     `json:"kind"`
	Coords    [4]float64 `json:"coords"`
	Color     [3]uint8   `json:"color"`
	Thickness int        `json:"thickness"`
}

// Rect returns the annotation geometry as a relative rectangle.
func (a Annotation) Rect() geometry.RelRect {
	return geometry.RelRect{X1: a.Coords[0], Y1: a.Coords[1], X2: a.Coords[2], Y2: a.Coords[3]}
}

// Line returns the annotation geometry as a directed relative line.
func (a Annotation) Line() geometry.RelLine {
	return geometry.RelLine{X1: a.Coords[0], Y1: a.Coords[1], X2: a.Coords[2], Y2: a.Coords[3]}
}

// Step is one manual step: a moment in the source video plus its text and
// annotations. Steps are mutated in place by the editing operations on
// Project and are otherwise treated as immutable.
type Step struct {
	ID          int          `json:"id"`
	Timestamp   float64      `json:"timestamp"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Annotations []Annotation `json:"annotations"`
}

// VideoSnapshot is the persisted read-only snapshot of an opened video
// source, kept so a saved project can be sanity-checked without the file.
type VideoSnapshot struct {
	Width    int     `json:"width"`
	Height   int     `json:"height"`
	FPS      float64 `json:"fps"`
	Duration float64 `json:"duration"`
}

// Metadata records when a project was created and last modified.
type Metadata struct {
	CreatedAt  string `json:"created_at"`
	ModifiedAt string `json:"modified_at"`
	AppVersion string `json:"app_version"`
}

// Project is the top-level step list plus its identifying fields. Step
// order in the slice is the section order of the generated manual.
type Project struct {
	ProjectName string         `json:"project_name"`
	VideoPath   string         `json:"video_path"`
	VideoInfo   *VideoSnapshot `json:"video_info"`
	Metadata    Metadata       `json:"metadata"`
	Steps       []Step         `json:"steps"`
}

// NewProject creates an empty project with fresh metadata.
func NewProject(name string) *Project {
	now := time.Now().UTC().Format(time.RFC3339)
	return &Project{
		ProjectName: name,
		Metadata: Metadata{
			CreatedAt:  now,
			ModifiedAt: now,
			AppVersion: AppVersion,
		},
	}
}

// Touch updates the modification timestamp.
func (p *Project) Touch() {
	p.Metadata.ModifiedAt = time.Now().UTC().Format(time.RFC3339)
}

// NextID returns the next unused step id.
func (p *Project) NextID() int {
	max := 0
	for _, s := range p.Steps {
		if s.ID > max {
			max = s.ID
		}
	}
	return max + 1
}

// StepByID returns the step with the given id, or nil.
func (p *Project) StepByID(id int) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			return &p.Steps[i]
		}
	}
	return nil
}

// Append adds a step at the end of the list, assigning it a fresh id.
func (p *Project) Append(s Step) *Step {
	s.ID = p.NextID()
	p.Steps = append(p.Steps, s)
	p.Touch()
	return &p.Steps[len(p.Steps)-1]
}

// InsertAt inserts a step at position i (clamped to the list bounds),
// assigning it a fresh id.
func (p *Project) InsertAt(i int, s Step) *Step {
	if i < 0 {
		i = 0
	}
	if i > len(p.Steps) {
		i = len(p.Steps)
	}
	s.ID = p.NextID()
	p.Steps = append(p.Steps, Step{})
	copy(p.Steps[i+1:], p.Steps[i:])
	p.Steps[i] = s
	p.Touch()
	return &p.Steps[i]
}

// Duplicate inserts a deep copy of the step with the given id directly
// after the original. Returns nil when the id does not exist.
func (p *Project) Duplicate(id int) *Step {
	for i := range p.Steps {
		if p.Steps[i].ID != id {
			continue
		}
		dup := p.Steps[i]
		dup.ID = p.NextID()
		dup.Annotations = append([]Annotation(nil), p.Steps[i].Annotations...)
		p.Steps = append(p.Steps, Step{})
		copy(p.Steps[i+2:], p.Steps[i+1:])
		p.Steps[i+1] = dup
		p.Touch()
		return &p.Steps[i+1]
	}
	return nil
}

// Delete removes the step with the given id. Reports whether a step was
// removed.
func (p *Project) Delete(id int) bool {
	for i := range p.Steps {
		if p.Steps[i].ID == id {
			p.Steps = append(p.Steps[:i], p.Steps[i+1:]...)
			p.Touch()
			return true
		}
	}
	return false
}

// Move relocates the step at position from to position to. Section
// numbering follows list position, so this is the reorder operation.
func (p *Project) Move(from, to int) bool {
	if from < 0 || from >= len(p.Steps) || to < 0 || to >= len(p.Steps) {
		return false
	}
	if from == to {
		return true
	}
	s := p.Steps[from]
	p.Steps = append(p.Steps[:from], p.Steps[from+1:]...)
	p.Steps = append(p.Steps, Step{})
	copy(p.Steps[to+1:], p.Steps[to:])
	p.Steps[to] = s
	p.Touch()
	return true
}

// ExceededTimestamps returns the ids of steps whose timestamp lies past
// the given video duration. Such steps still render, they just come back
// without a frame.
func (p *Project) ExceededTimestamps(duration float64) []int {
	var ids []int
	for _, s := range p.Steps {
		if s.Timestamp > duration {
			ids = append(ids, s.ID)
		}
	}
	return ids
}
