package manual

import (
	"encoding/json"
	"fmt"
	"os"
)

// Save writes the project to a JSON file. Every field round-trips
// losslessly through Save/Load.
func Save(p *Project, path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode project: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

// Load reads and validates a project from a JSON file.
func Load(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes and validates a project from JSON bytes. Steps with
// defaulted annotation lists stay nil-safe; any schema or range violation
// comes back as an InvalidStepRecordError naming the field.
func Parse(data []byte) (*Project, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parse project JSON: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}
