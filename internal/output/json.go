// # internal/output/json.go
package output

import (
	"encoding/json"
	"time"

	"skein/internal/registry"
	"skein/internal/resolver"
)

type JSONGenerator struct {
	project  *registry.Project
	resolved *resolver.ResolvedSymbols
}

func NewJSONGenerator(project *registry.Project, resolved *resolver.ResolvedSymbols) *JSONGenerator {
	return &JSONGenerator{project: project, resolved: resolved}
}

type jsonReport struct {
	GeneratedAt time.Time            `json:"generated_at"`
	Files       int                  `json:"files"`
	Resolved    int                  `json:"resolved"`
	Unresolved  int                  `json:"unresolved"`
	Phases      map[string]jsonPhase `json:"phases"`
	References  map[string]string    `json:"references"`
	Diagnostics []jsonDiagnostic     `json:"diagnostics"`
}

type jsonPhase struct {
	Resolved   int    `json:"resolved"`
	Unresolved int    `json:"unresolved"`
	Duration   string `json:"duration"`
}

type jsonDiagnostic struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
	Name     string `json:"name"`
	Kind     string `json:"kind"`
	Reason   string `json:"reason"`
	SameFile bool   `json:"same_file"`
}

func (g *JSONGenerator) Generate() (string, error) {
	report := jsonReport{
		GeneratedAt: time.Now().UTC(),
		Files:       g.project.FileCount(),
		Resolved:    g.resolved.TotalResolved(),
		Unresolved:  g.resolved.TotalUnresolved(),
		Phases:      make(map[string]jsonPhase),
		References:  make(map[string]string),
	}

	for phase, stats := range g.resolved.Phases {
		report.Phases[string(phase)] = jsonPhase{
			Resolved:   stats.Resolved,
			Unresolved: stats.Unresolved,
			Duration:   stats.Duration.String(),
		}
	}
	for key, sym := range g.resolved.References {
		report.References[key] = string(sym)
	}
	for _, d := range g.resolved.Diagnostics {
		report.Diagnostics = append(report.Diagnostics, jsonDiagnostic{
			File:     d.Location.File,
			Line:     d.Location.StartLine,
			Column:   d.Location.StartCol,
			Name:     d.Name,
			Kind:     string(d.Kind),
			Reason:   d.Reason,
			SameFile: d.SameFile,
		})
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
