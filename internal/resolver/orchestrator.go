// # internal/resolver/orchestrator.go
package resolver

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"skein/internal/observability"
	"skein/internal/registry"
	"skein/internal/semantic"
)

// Orchestrator runs the four-phase resolution pipeline over the whole
// project: imports, then calls, then types, then methods/constructors.
// Later phases depend on earlier results, so the order is fixed; within a
// phase, files are independent. Resolvers, cache, and type context are
// recreated per run, which is what makes a re-run naturally re-attempt
// previously missing files.
type Orchestrator struct {
	project *registry.Project
}

func NewOrchestrator(project *registry.Project) *Orchestrator {
	return &Orchestrator{project: project}
}

// run bundles the per-run state: fresh scope index, cache, and type context.
type run struct {
	project *registry.Project
	index   *ScopeIndex
	types   *TypeContext
	members *MemberResolver
	out     *ResolvedSymbols
}

// Run executes all four phases and returns a fresh ResolvedSymbols.
// Failures never abort the run; every unresolved reference is an absence
// plus a diagnostic. Cancellation is coarse: the context is checked between
// phases only, and an abandoned run leaves no observable state behind.
func (o *Orchestrator) Run(ctx context.Context) (*ResolvedSymbols, error) {
	ctx, span := observability.Tracer.Start(ctx, "resolve.Run",
		trace.WithAttributes(attribute.Int("files", o.project.FileCount())))
	defer span.End()

	modpath := NewModulePaths()
	index := NewScopeIndex(o.project, modpath)
	r := &run{
		project: o.project,
		index:   index,
		types:   NewTypeContext(o.project, index),
		members: NewMemberResolver(o.project, index),
		out:     NewResolvedSymbols(),
	}

	files := o.project.Files()
	phases := []struct {
		name Phase
		fn   func([]string) PhaseStats
	}{
		{PhaseImports, r.phaseImports},
		{PhaseCalls, r.phaseCalls},
		{PhaseTypes, r.phaseTypes},
		{PhaseMethods, r.phaseMethods},
	}

	for _, phase := range phases {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		_, phaseSpan := observability.Tracer.Start(ctx, "resolve."+string(phase.name))
		start := time.Now()
		stats := phase.fn(files)
		stats.Duration = time.Since(start)
		r.out.Phases[phase.name] = stats
		phaseSpan.SetAttributes(
			attribute.Int("resolved", stats.Resolved),
			attribute.Int("unresolved", stats.Unresolved),
		)
		phaseSpan.End()

		observability.PhaseDuration.WithLabelValues(string(phase.name)).Observe(stats.Duration.Seconds())
		observability.ResolvedReferences.WithLabelValues(string(phase.name)).Set(float64(stats.Resolved))
		observability.UnresolvedReferences.WithLabelValues(string(phase.name)).Set(float64(stats.Unresolved))
		slog.Debug("resolution phase complete",
			"phase", phase.name,
			"resolved", stats.Resolved,
			"unresolved", stats.Unresolved,
			"duration", stats.Duration)
	}

	hits, misses := index.CacheStats()
	observability.ResolutionCacheHits.Add(float64(hits))
	observability.ResolutionCacheMisses.Add(float64(misses))
	observability.ImportResolverInvocations.Add(float64(index.TotalInvocations()))
	observability.RunsTotal.Inc()

	return r.out, nil
}

// phaseImports registers every file's lazy import resolvers and resolves
// their module paths. Export chains are not followed here: that happens on
// first invocation, so an unreferenced import stays a closure allocation.
// Namespace imports become opaque containers with member access deferred.
func (r *run) phaseImports(files []string) PhaseStats {
	var stats PhaseStats
	for _, path := range files {
		idx, ok := r.project.File(path)
		if !ok {
			continue
		}
		r.index.RegisterImports(idx)

		for _, imp := range idx.Imports {
			b, ok := r.index.binding(imp.ScopeID, imp.LocalName)
			if !ok {
				continue
			}
			switch {
			case b.external:
				// Third-party package: recorded unresolved, no diagnostic.
				stats.Unresolved++
			case r.project.HasFile(b.sourceFile):
				stats.Resolved++
			default:
				stats.Unresolved++
				r.out.Diagnostics = append(r.out.Diagnostics, Diagnostic{
					Location: imp.Location,
					Name:     imp.LocalName,
					Reason:   "imported module not indexed: " + b.sourceFile,
				})
			}
		}
	}
	return stats
}

// phaseCalls resolves function calls, variable references, and assignment
// targets through the scope resolver index. This is the phase that first
// invokes import resolvers, and only for names that survive the entire
// local/ancestor chain unresolved.
func (r *run) phaseCalls(files []string) PhaseStats {
	var stats PhaseStats
	for _, path := range files {
		idx, ok := r.project.File(path)
		if !ok {
			continue
		}
		for i := range idx.References {
			ref := &idx.References[i]
			switch ref.Kind {
			case semantic.RefFunctionCall, semantic.RefVariable, semantic.RefAssignment:
			default:
				continue
			}
			if r.out.alreadyResolved(ref.Location) {
				continue
			}

			res := r.index.Lookup(ref.ScopeID, ref.Name)
			if !res.OK {
				stats.Unresolved++
				r.diagnose(ref, res)
				continue
			}
			stats.Resolved++
			if ref.Kind == semantic.RefFunctionCall {
				r.out.recordCall(ref.Location, res.Symbol)
			} else {
				r.out.record(ref.Location, res.Symbol)
			}
		}
	}
	return stats
}

// phaseTypes builds the type context: scope ownership for self/this
// receivers, declared types from annotations, inferred types from
// constructor assignments, and resolution of explicit type references.
func (r *run) phaseTypes(files []string) PhaseStats {
	var stats PhaseStats

	for _, path := range files {
		idx, ok := r.project.File(path)
		if !ok {
			continue
		}
		for i := range idx.Definitions {
			d := &idx.Definitions[i]
			if d.Owner != "" {
				r.types.RecordScopeOwner(d.ScopeID, d.Owner)
			}
			if d.TypeExpr == "" || d.Kind.IsType() {
				continue
			}
			if typ, ok := r.types.ResolveTypeName(d.ScopeID, typeExprBase(d.TypeExpr)); ok {
				r.types.RecordValueType(d.SymbolID, typ)
			}
		}
	}

	for _, path := range files {
		idx, ok := r.project.File(path)
		if !ok {
			continue
		}
		for i := range idx.References {
			ref := &idx.References[i]
			switch ref.Kind {
			case semantic.RefTypeReference:
				if r.out.alreadyResolved(ref.Location) {
					continue
				}
				typ, ok := r.types.ResolveTypeName(ref.ScopeID, ref.Name)
				if !ok {
					stats.Unresolved++
					r.diagnose(ref, r.index.Lookup(ref.ScopeID, ref.Name))
					continue
				}
				stats.Resolved++
				r.out.record(ref.Location, typ)

			case semantic.RefConstructorCall:
				// Inference only; the call itself resolves in the
				// method/constructor phase.
				if ref.ConstructTarget.IsZero() {
					continue
				}
				typ, ok := r.types.ResolveTypeName(ref.ScopeID, ref.Name)
				if !ok {
					continue
				}
				if target, ok := r.project.Defs.DefinitionAt(ref.ConstructTarget); ok {
					r.types.RecordValueType(target, typ)
				}

			case semantic.RefAssignment:
				if ref.TypeName == "" {
					continue
				}
				typ, ok := r.types.ResolveTypeName(ref.ScopeID, ref.TypeName)
				if !ok {
					continue
				}
				if target, ok := r.project.Defs.DefinitionAt(ref.Location); ok {
					r.types.RecordValueType(target, typ)
				}
			}
		}
	}
	return stats
}

// phaseMethods resolves method calls, property accesses, and constructor
// calls using receiver types from the type phase. Member lookup hits the
// flattened index first, then walks inheritance nearest-ancestor-first.
func (r *run) phaseMethods(files []string) PhaseStats {
	var stats PhaseStats
	for _, path := range files {
		idx, ok := r.project.File(path)
		if !ok {
			continue
		}
		for i := range idx.References {
			ref := &idx.References[i]
			switch ref.Kind {
			case semantic.RefMethodCall, semantic.RefPropertyAccess:
				if r.out.alreadyResolved(ref.Location) {
					continue
				}
				recv, ok := r.types.ReceiverType(ref)
				if !ok {
					stats.Unresolved++
					r.out.Diagnostics = append(r.out.Diagnostics, Diagnostic{
						Location: ref.Location,
						Name:     ref.Name,
						Kind:     ref.Kind,
						Reason:   "receiver type unknown",
					})
					continue
				}
				member, ok := r.members.ResolveMember(recv, ref.Name)
				if !ok {
					stats.Unresolved++
					r.out.Diagnostics = append(r.out.Diagnostics, Diagnostic{
						Location: ref.Location,
						Name:     ref.Name,
						Kind:     ref.Kind,
						Reason:   "no such member on receiver type",
					})
					continue
				}
				stats.Resolved++
				if ref.Kind == semantic.RefMethodCall {
					r.out.recordCall(ref.Location, member)
				} else {
					r.out.record(ref.Location, member)
				}

			case semantic.RefConstructorCall:
				if r.out.alreadyResolved(ref.Location) {
					continue
				}
				res := r.index.Lookup(ref.ScopeID, ref.Name)
				if !res.OK {
					stats.Unresolved++
					r.diagnose(ref, res)
					continue
				}
				// The construct edge points at the registered constructor
				// when the type (or an ancestor) declares one, else at the
				// type itself.
				target := res.Symbol
				if ctor, ok := r.members.ResolveConstructor(res.Symbol); ok {
					target = ctor
				}
				stats.Resolved++
				r.out.recordCall(ref.Location, target)
			}
		}
	}
	return stats
}

func (r *run) diagnose(ref *semantic.Reference, res LookupResult) {
	reason := "no declaration or import in scope"
	if res.External {
		reason = "resolves to an external or missing module"
	}
	r.out.Diagnostics = append(r.out.Diagnostics, Diagnostic{
		Location: ref.Location,
		Name:     ref.Name,
		Kind:     ref.Kind,
		Reason:   reason,
		SameFile: !res.External,
	})
}

// typeExprBase strips wrapper syntax off a declared type expression and
// keeps the leading named type: generics, unions, optional markers, and
// reference sigils all reduce to the base name.
func typeExprBase(expr string) string {
	s := strings.TrimSpace(expr)
	s = strings.TrimLeft(s, "&*")
	s = strings.TrimPrefix(s, "mut ")
	for _, sep := range []string{"<", "[", "|", "?"} {
		if i := strings.Index(s, sep); i >= 0 {
			s = s[:i]
		}
	}
	return strings.TrimSpace(s)
}
