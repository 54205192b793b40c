// # internal/output/dot.go
package output

import (
	"fmt"
	"strings"

	"skein/internal/registry"
	"skein/internal/resolver"
)

type DOTGenerator struct {
	project  *registry.Project
	resolved *resolver.ResolvedSymbols
}

func NewDOTGenerator(project *registry.Project, resolved *resolver.ResolvedSymbols) *DOTGenerator {
	return &DOTGenerator{project: project, resolved: resolved}
}

// Generate renders the cross-file call graph. Files with unresolved
// references get highlighted so indexing gaps are visible at a glance.
func (d *DOTGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("digraph calls {\n")
	buf.WriteString("  rankdir=LR;\n")
	buf.WriteString("  node [shape=box, style=rounded, fontname=\"Helvetica\", fontsize=10];\n")
	buf.WriteString("  edge [fontname=\"Helvetica\", fontsize=8, penwidth=1.2];\n")
	buf.WriteString("  ranksep=1.5;\n")
	buf.WriteString("  nodesep=0.6;\n")
	buf.WriteString("  splines=polyline;\n")
	buf.WriteString("  overlap=false;\n\n")

	unresolvedIn := make(map[string]int)
	for _, diag := range d.resolved.Diagnostics {
		unresolvedIn[diag.Location.File]++
	}

	buf.WriteString("  subgraph cluster_indexed {\n")
	buf.WriteString("    label=\"Indexed Files\";\n")
	buf.WriteString("    style=filled;\n")
	buf.WriteString("    color=\"whitesmoke\";\n")
	buf.WriteString("    node [fillcolor=\"white\", style=\"rounded,filled\"];\n")

	for _, path := range d.project.Files() {
		defCount := len(d.project.Defs.FileDefinitions(path))
		label := fmt.Sprintf("%s\\n(%d symbols)", path, defCount)

		if n := unresolvedIn[path]; n > 0 {
			label = fmt.Sprintf("%s\\n(%d symbols, %d unresolved)", path, defCount, n)
			buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", fillcolor=\"mistyrose\", color=\"red\", penwidth=2.0];\n", path, label))
		} else {
			buf.WriteString(fmt.Sprintf("    \"%s\" [label=\"%s\", color=\"darkslategrey\"];\n", path, label))
		}
	}
	buf.WriteString("  }\n\n")

	for _, edge := range fileEdges(d.project, d.resolved) {
		buf.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [color=\"forestgreen\", penwidth=1.8, label=\"%d\"];\n",
			edge.From, edge.To, edge.Calls))
	}

	buf.WriteString("}\n")

	return buf.String(), nil
}
