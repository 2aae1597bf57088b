package formats

import (
	"encoding/json"
	"fmt"

	"unusedclass/internal/core/ports"
	"unusedclass/internal/shared/version"
)

// SARIF v2.1.0 schema – see https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json

const (
	sarifSchema  = "https://schemastore.azurewebsites.net/schemas/json/sarif-2.1.0-rtm.5.json"
	sarifVersion = "2.1.0"

	ruleIDUnusedClass = "UCLS001"
)

// sarifReport is the top-level SARIF document.
type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string                 `json:"id"`
	Name             string                 `json:"name"`
	ShortDescription sarifMessage           `json:"shortDescription"`
	DefaultConfig    sarifRuleDefaultConfig `json:"defaultConfiguration"`
}

type sarifRuleDefaultConfig struct {
	Level string `json:"level"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
}

type sarifArtifactLocation struct {
	URI       string `json:"uri"`
	URIBaseID string `json:"uriBaseId"`
}

// GenerateSARIF builds a SARIF v2.1.0 document with one result per unused
// class. Locations are relative to the class root containing the file;
// absolute paths are never included so that reports are safe to share.
func GenerateSARIF(result ports.CheckResult) ([]byte, error) {
	results := make([]sarifResult, 0, len(result.Unused))
	for _, name := range result.Unused {
		r := sarifResult{
			RuleID:  ruleIDUnusedClass,
			Level:   "warning",
			Message: sarifMessage{Text: fmt.Sprintf("Class %s is not referenced by any other scanned class.", name)},
		}
		if uri := sourceOf(result, name); uri != "" {
			r.Locations = []sarifLocation{{
				PhysicalLocation: sarifPhysicalLocation{
					ArtifactLocation: sarifArtifactLocation{
						URI:       uri,
						URIBaseID: "%SRCROOT%",
					},
				},
			}}
		}
		results = append(results, r)
	}

	rules := []sarifRule{}
	if len(results) > 0 {
		rules = append(rules, sarifRule{
			ID:               ruleIDUnusedClass,
			Name:             "unused-class",
			ShortDescription: sarifMessage{Text: "A compiled class is never referenced by another class in the scanned set."},
			DefaultConfig:    sarifRuleDefaultConfig{Level: "warning"},
		})
	}

	report := sarifReport{
		Schema:  sarifSchema,
		Version: sarifVersion,
		Runs: []sarifRun{
			{
				Tool: sarifTool{
					Driver: sarifDriver{
						Name:    "unusedclass",
						Version: version.Version,
						Rules:   rules,
					},
				},
				Results: results,
			},
		},
	}

	return json.MarshalIndent(report, "", "  ")
}
