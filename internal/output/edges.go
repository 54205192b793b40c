// # internal/output/edges.go
package output

import (
	"sort"

	"skein/internal/registry"
	"skein/internal/resolver"
)

// fileEdge is one aggregated call-graph edge between two files.
type fileEdge struct {
	From  string
	To    string
	Calls int
}

// fileEdges collapses the reverse call index into file-to-file edges,
// sorted for stable output.
func fileEdges(project *registry.Project, resolved *resolver.ResolvedSymbols) []fileEdge {
	counts := make(map[[2]string]int)
	for sym, callers := range resolved.CallsTo {
		def, ok := project.Defs.Definition(sym)
		if !ok {
			continue
		}
		for _, loc := range callers {
			if loc.File == def.Location.File {
				continue
			}
			counts[[2]string{loc.File, def.Location.File}]++
		}
	}

	edges := make([]fileEdge, 0, len(counts))
	for key, n := range counts {
		edges = append(edges, fileEdge{From: key[0], To: key[1], Calls: n})
	}
	sort.Slice(edges, func(i, j int) bool {
		if edges[i].From != edges[j].From {
			return edges[i].From < edges[j].From
		}
		return edges[i].To < edges[j].To
	})
	return edges
}
