// Package project reads and writes job files: a named parts list together
// with the settings to nest it under, and saved nesting results.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/piwi3910/AutoNestCut/internal/model"
)

// JobVersion is written into every job and result file.
const JobVersion = "1.0.0"

// Job is a saved nesting job.
type Job struct {
	Version   string               `json:"version"`
	Name      string               `json:"name"`
	CreatedAt string               `json:"created_at,omitempty"`
	Settings  model.Settings       `json:"settings"`
	Parts     []model.PartQuantity `json:"parts"`
}

// NewJob creates a job with the current timestamp.
func NewJob(name string, settings model.Settings, parts []model.PartQuantity) Job {
	return Job{
		Version:   JobVersion,
		Name:      name,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Settings:  settings,
		Parts:     parts,
	}
}

// PartsByMaterial groups the job's parts for the nester.
func (j Job) PartsByMaterial() model.PartsByMaterial {
	pm := make(model.PartsByMaterial)
	for _, pq := range j.Parts {
		pm[pq.Template.Material] = append(pm[pq.Template.Material], pq)
	}
	return pm
}

// SaveJob writes the job as indented JSON, creating parent directories.
func SaveJob(path string, job Job) error {
	if job.Version == "" {
		job.Version = JobVersion
	}
	return writeJSON(path, job)
}

// ParseJob decodes a job. Settings missing from the document keep their
// defaults, and stock materials in the document extend the built-in catalog.
func ParseJob(data []byte) (Job, error) {
	return DecodeJob(data, model.DefaultSettings())
}

// DecodeJob is ParseJob with caller-supplied base settings. base is not
// modified.
func DecodeJob(data []byte, base model.Settings) (Job, error) {
	job := Job{Settings: base.WithMaterials(nil)}
	if err := json.Unmarshal(data, &job); err != nil {
		return Job{}, fmt.Errorf("failed to parse job file: %w", err)
	}
	if job.Version == "" {
		return Job{}, fmt.Errorf("invalid job file: missing version field")
	}
	if job.Settings.StockMaterials == nil {
		job.Settings.StockMaterials = map[string]model.StockMaterial{}
	}
	for name, m := range job.Settings.StockMaterials {
		if m.Name == "" {
			m.Name = name
			job.Settings.StockMaterials[name] = m
		}
	}
	return job, nil
}

// LoadJob reads a job file.
func LoadJob(path string) (Job, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Job{}, fmt.Errorf("failed to read job file: %w", err)
	}
	return ParseJob(data)
}

// ResultFile is a saved nesting result.
type ResultFile struct {
	Version   string           `json:"version"`
	Job       string           `json:"job"`
	CreatedAt string           `json:"created_at"`
	Result    model.NestResult `json:"result"`
}

// SaveResult writes a nesting result for the named job.
func SaveResult(path, jobName string, result model.NestResult) error {
	return writeJSON(path, ResultFile{
		Version:   JobVersion,
		Job:       jobName,
		CreatedAt: time.Now().UTC().Format(time.RFC3339),
		Result:    result,
	})
}

// LoadResult reads a result written by SaveResult.
func LoadResult(path string) (ResultFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ResultFile{}, fmt.Errorf("failed to read result file: %w", err)
	}
	var rf ResultFile
	if err := json.Unmarshal(data, &rf); err != nil {
		return ResultFile{}, fmt.Errorf("failed to parse result file: %w", err)
	}
	return rf, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
