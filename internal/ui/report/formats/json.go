package formats

import (
	"encoding/json"
	"time"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/shared/version"
)

const jsonSchemaVersion = 1

type jsonReport struct {
	SchemaVersion    int                 `json:"schema_version"`
	Tool             string              `json:"tool"`
	Version          string              `json:"version"`
	GeneratedAt      time.Time           `json:"generated_at"`
	Roots            []string            `json:"roots"`
	Files            int                 `json:"files"`
	Edges            int                 `json:"edges"`
	Classes          []string            `json:"classes"`
	Unused           []jsonClass         `json:"unused"`
	Hidden           int                 `json:"hidden"`
	FrameworkEntered []string            `json:"framework_entered"`
	Skipped          []ports.SkippedFile `json:"skipped"`
	Duplicates       []jsonDuplicate     `json:"duplicates"`
}

type jsonClass struct {
	Name   string `json:"name"`
	Source string `json:"source,omitempty"`
}

type jsonDuplicate struct {
	Name     string `json:"name"`
	Previous string `json:"previous"`
	Current  string `json:"current"`
}

// GenerateJSON renders a check result as an indented JSON document. Every
// list is present, empty rather than null, so consumers can index freely.
func GenerateJSON(result ports.CheckResult, generatedAt time.Time) ([]byte, error) {
	if generatedAt.IsZero() {
		generatedAt = time.Now().UTC()
	}
	doc := jsonReport{
		SchemaVersion:    jsonSchemaVersion,
		Tool:             "unusedclass",
		Version:          version.Version,
		GeneratedAt:      generatedAt.UTC(),
		Roots:            nonNil(result.Roots),
		Files:            result.Files,
		Edges:            result.Stats.Edges,
		Classes:          []string{},
		Unused:           make([]jsonClass, 0, len(result.Unused)),
		Hidden:           result.Hidden,
		FrameworkEntered: []string{},
		Skipped:          make([]ports.SkippedFile, 0, len(result.Skipped)),
		Duplicates:       make([]jsonDuplicate, 0, len(result.Duplicates)),
	}
	if result.Engine != nil {
		doc.Classes = result.Engine.Classes()
		doc.FrameworkEntered = nonNil(result.Engine.FrameworkEntered())
	}
	for _, name := range result.Unused {
		doc.Unused = append(doc.Unused, jsonClass{Name: name, Source: sourceOf(result, name)})
	}
	doc.Skipped = append(doc.Skipped, result.Skipped...)
	for _, dup := range result.Duplicates {
		doc.Duplicates = append(doc.Duplicates, jsonDuplicate{Name: dup.Name, Previous: dup.Previous, Current: dup.Current})
	}
	return json.MarshalIndent(doc, "", "  ")
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
