// # internal/output/tsv.go
package output

import (
	"fmt"
	"sort"
	"strings"

	"skein/internal/registry"
	"skein/internal/resolver"
)

type TSVGenerator struct {
	project  *registry.Project
	resolved *resolver.ResolvedSymbols
}

func NewTSVGenerator(project *registry.Project, resolved *resolver.ResolvedSymbols) *TSVGenerator {
	return &TSVGenerator{project: project, resolved: resolved}
}

// Generate emits one row per resolved reference: where the reference
// sits and which definition it landed on.
func (t *TSVGenerator) Generate() (string, error) {
	var buf strings.Builder

	buf.WriteString("Reference\tSymbol\tName\tKind\tDefinedIn\n")

	keys := make([]string, 0, len(t.resolved.References))
	for key := range t.resolved.References {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		sym := t.resolved.References[key]
		def, ok := t.project.Defs.Definition(sym)
		if !ok {
			continue
		}
		buf.WriteString(fmt.Sprintf("%s\t%s\t%s\t%s\t%s\n",
			key, sym, def.Name, def.Kind, def.Location.File))
	}

	return buf.String(), nil
}

// GenerateDiagnostics emits one row per unresolved reference.
func (t *TSVGenerator) GenerateDiagnostics() (string, error) {
	var buf strings.Builder

	buf.WriteString("File\tLine\tColumn\tName\tKind\tReason\tSameFile\n")
	for _, d := range t.resolved.Diagnostics {
		buf.WriteString(fmt.Sprintf("%s\t%d\t%d\t%s\t%s\t%s\t%v\n",
			d.Location.File,
			d.Location.StartLine,
			d.Location.StartCol,
			d.Name,
			d.Kind,
			d.Reason,
			d.SameFile,
		))
	}

	return buf.String(), nil
}
