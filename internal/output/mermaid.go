// # internal/output/mermaid.go
package output

import (
	"fmt"
	"strings"

	"skein/internal/registry"
	"skein/internal/resolver"
)

type MermaidGenerator struct {
	project  *registry.Project
	resolved *resolver.ResolvedSymbols
}

func NewMermaidGenerator(project *registry.Project, resolved *resolver.ResolvedSymbols) *MermaidGenerator {
	return &MermaidGenerator{project: project, resolved: resolved}
}

// Generate renders the call graph as a mermaid flowchart, suitable for
// embedding in markdown.
func (m *MermaidGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("graph LR\n")

	ids := make(map[string]string)
	nodeID := func(path string) string {
		if id, ok := ids[path]; ok {
			return id
		}
		id := fmt.Sprintf("f%d", len(ids))
		ids[path] = id
		buf.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", id, path))
		return id
	}

	for _, path := range m.project.Files() {
		nodeID(path)
	}

	for _, edge := range fileEdges(m.project, m.resolved) {
		buf.WriteString(fmt.Sprintf("    %s -->|%d| %s\n",
			nodeID(edge.From), edge.Calls, nodeID(edge.To)))
	}

	unresolvedIn := make(map[string]bool)
	for _, diag := range m.resolved.Diagnostics {
		unresolvedIn[diag.Location.File] = true
	}
	for _, path := range m.project.Files() {
		if unresolvedIn[path] {
			buf.WriteString(fmt.Sprintf("    style %s fill:#ffe4e1,stroke:#f00\n", nodeID(path)))
		}
	}

	return buf.String(), nil
}
