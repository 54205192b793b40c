// # internal/resolver/resolved.go
package resolver

import (
	"fmt"
	"time"

	"skein/internal/semantic"
)

type Phase string

const (
	PhaseImports Phase = "imports"
	PhaseCalls   Phase = "calls"
	PhaseTypes   Phase = "types"
	PhaseMethods Phase = "methods"
)

// Phases in execution order.
var Phases = []Phase{PhaseImports, PhaseCalls, PhaseTypes, PhaseMethods}

type PhaseStats struct {
	Resolved   int
	Unresolved int
	Duration   time.Duration
}

// Diagnostic describes one unresolved reference. SameFile marks failures
// where no import binding was even in play: the name should have resolved
// inside its own file, which usually means an indexing bug.
type Diagnostic struct {
	Location semantic.Location
	Name     string
	Kind     semantic.ReferenceKind
	Reason   string
	SameFile bool
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("could not resolve %s at %s: %s", d.Name, d.Location, d.Reason)
}

// ResolvedSymbols is the output of one resolution run: reference spans
// mapped to the symbols they refer to, the reverse call index, per-phase
// statistics, and the diagnostics for everything left unresolved. A run
// writes into a fresh value, so no partial state is ever observable.
type ResolvedSymbols struct {
	References  map[string]semantic.SymbolID
	CallsTo     map[semantic.SymbolID][]semantic.Location
	Phases      map[Phase]PhaseStats
	Diagnostics []Diagnostic
}

func NewResolvedSymbols() *ResolvedSymbols {
	return &ResolvedSymbols{
		References: make(map[string]semantic.SymbolID),
		CallsTo:    make(map[semantic.SymbolID][]semantic.Location),
		Phases:     make(map[Phase]PhaseStats),
	}
}

// ResolveAt returns the symbol a reference span resolved to.
func (r *ResolvedSymbols) ResolveAt(loc semantic.Location) (semantic.SymbolID, bool) {
	sym, ok := r.References[loc.Key()]
	return sym, ok
}

// Callers returns every call site resolved to a symbol.
func (r *ResolvedSymbols) Callers(sym semantic.SymbolID) []semantic.Location {
	return r.CallsTo[sym]
}

// SameFileDiagnostics filters diagnostics to within-file failures, the ones
// strict mode escalates.
func (r *ResolvedSymbols) SameFileDiagnostics() []Diagnostic {
	var out []Diagnostic
	for _, d := range r.Diagnostics {
		if d.SameFile {
			out = append(out, d)
		}
	}
	return out
}

// TotalResolved sums resolved counts across phases.
func (r *ResolvedSymbols) TotalResolved() int {
	total := 0
	for _, s := range r.Phases {
		total += s.Resolved
	}
	return total
}

// TotalUnresolved sums unresolved counts across phases.
func (r *ResolvedSymbols) TotalUnresolved() int {
	total := 0
	for _, s := range r.Phases {
		total += s.Unresolved
	}
	return total
}

func (r *ResolvedSymbols) record(loc semantic.Location, sym semantic.SymbolID) {
	r.References[loc.Key()] = sym
}

func (r *ResolvedSymbols) recordCall(loc semantic.Location, sym semantic.SymbolID) {
	r.record(loc, sym)
	r.CallsTo[sym] = append(r.CallsTo[sym], loc)
}

func (r *ResolvedSymbols) alreadyResolved(loc semantic.Location) bool {
	_, ok := r.References[loc.Key()]
	return ok
}
