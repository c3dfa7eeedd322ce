// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package render

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/compound-engine/pkg/types"
)

// ProfileFile is the on-disk representation of one assembled profile. A
// fetched profile can be saved to a file and reloaded later without
// re-querying APIs.
// Implements: prd004-presentation R4.1, R4.4.
type ProfileFile struct {
	Query   ProfileQuery          `yaml:"query"`
	Profile types.CompoundProfile `yaml:"profile"`
	Summary FileSummary           `yaml:"summary"`
}

// ProfileQuery stores the originating query in a serializable form.
type ProfileQuery struct {
	Text      string `yaml:"text"`
	InputType string `yaml:"input_type"`
}

// FileSummary stores result statistics, the optional prose summary, and a
// timestamp.
type FileSummary struct {
	Activities int       `yaml:"activities"`
	Targets    int       `yaml:"targets"`
	Proteins   int       `yaml:"proteins"`
	Text       string    `yaml:"text,omitempty"`
	Timestamp  time.Time `yaml:"timestamp"`
}

// WriteProfileFile saves a profile and its prose summary to a YAML file.
func WriteProfileFile(path string, p *types.CompoundProfile, summaryText string) error {
	pf := ProfileFile{
		Query: ProfileQuery{
			Text:      p.Query,
			InputType: string(p.InputType),
		},
		Profile: *p,
		Summary: FileSummary{
			Activities: len(p.Activities),
			Targets:    len(p.Targets),
			Proteins:   len(p.Proteins),
			Text:       summaryText,
			Timestamp:  time.Now(),
		},
	}

	data, err := yaml.Marshal(&pf)
	if err != nil {
		return fmt.Errorf("marshaling profile file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadProfileFile loads a previously saved profile file from disk.
func ReadProfileFile(path string) (*ProfileFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile file: %w", err)
	}
	var pf ProfileFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("parsing profile file: %w", err)
	}
	return &pf, nil
}
