package manual

import "fmt"

// InvalidStepRecordError reports a schema or range violation in step
// input, naming the offending field. Violations are never silently
// corrected.
type InvalidStepRecordError struct {
	Index  int    // position in the step list
	StepID int    // 0 when the id itself is the problem
	Field  string
	Reason string
}

func (e *InvalidStepRecordError) Error() string {
	if e.StepID > 0 {
		return fmt.Sprintf("invalid step record: steps[%d] (id=%d) field %q: %s", e.Index, e.StepID, e.Field, e.Reason)
	}
	return fmt.Sprintf("invalid step record: steps[%d] field %q: %s", e.Index, e.Field, e.Reason)
}

// Validate checks every step and annotation against the data contract:
// ids positive and unique, timestamps non-negative, titles non-empty,
// annotation kinds known, coordinates within [0,1], thickness positive.
// The first violation found is returned.
func (p *Project) Validate() error {
	seen := make(map[int]bool, len(p.Steps))
	for i, s := range p.Steps {
		if s.ID < 1 {
			return &InvalidStepRecordError{Index: i, Field: "id", Reason: fmt.Sprintf("must be a positive integer, got %d", s.ID)}
		}
		if seen[s.ID] {
			return &InvalidStepRecordError{Index: i, Field: "id", Reason: fmt.Sprintf("duplicate id %d", s.ID)}
		}
		seen[s.ID] = true

		if s.Timestamp < 0 {
			return &InvalidStepRecordError{Index: i, StepID: s.ID, Field: "timestamp", Reason: fmt.Sprintf("must be non-negative, got %g", s.Timestamp)}
		}
		if s.Title == "" {
			return &InvalidStepRecordError{Index: i, StepID: s.ID, Field: "title", Reason: "must not be empty"}
		}

		for j, a := range s.Annotations {
			if err := validateAnnotation(i, s.ID, j, a); err != nil {
				return err
			}
		}
	}
	return nil
}

func validateAnnotation(stepIndex, stepID, annIndex int, a Annotation) error {
	field := func(name string) string {
		return fmt.Sprintf("annotations[%d].%s", annIndex, name)
	}

	if !ValidKinds[a.Kind] {
		return &InvalidStepRecordError{
			Index: stepIndex, StepID: stepID,
			Field:  field("kind"),
			Reason: fmt.Sprintf("unknown kind %q", a.Kind),
		}
	}
	for k, v := range a.Coords {
		if v < 0 || v > 1 {
			return &InvalidStepRecordError{
				Index: stepIndex, StepID: stepID,
				Field:  field(fmt.Sprintf("coords[%d]", k)),
				Reason: fmt.Sprintf("must be within [0,1], got %g", v),
			}
		}
	}
	if a.Thickness < 1 {
		return &InvalidStepRecordError{
			Index: stepIndex, StepID: stepID,
			Field:  field("thickness"),
			Reason: fmt.Sprintf("must be a positive integer, got %d", a.Thickness),
		}
	}
	return nil
}
