package history

import "time"

const SchemaVersion = 1

// Run is one persisted resolution run.
type Run struct {
	ID               string    `json:"id"`
	SchemaVersion    int       `json:"schema_version"`
	Timestamp        time.Time `json:"timestamp"`
	CommitHash       string    `json:"commit_hash,omitempty"`
	CommitTimestamp  time.Time `json:"commit_timestamp,omitempty"`
	FileCount        int       `json:"file_count"`
	DefinitionCount  int       `json:"definition_count"`
	ImportsResolved  int       `json:"imports_resolved"`
	CallsResolved    int       `json:"calls_resolved"`
	TypesResolved    int       `json:"types_resolved"`
	MethodsResolved  int       `json:"methods_resolved"`
	UnresolvedCount  int       `json:"unresolved_count"`
	SameFileFailures int       `json:"same_file_failures"`
	CacheHits        int       `json:"cache_hits"`
	CacheMisses      int       `json:"cache_misses"`
	DurationMS       int64     `json:"duration_ms"`
}

// Resolved sums the per-phase resolved counts.
func (r Run) Resolved() int {
	return r.ImportsResolved + r.CallsResolved + r.TypesResolved + r.MethodsResolved
}

// TrendPoint is one run annotated with deltas against the previous run.
type TrendPoint struct {
	Timestamp        time.Time `json:"timestamp"`
	CommitHash       string    `json:"commit_hash,omitempty"`
	FileCount        int       `json:"file_count"`
	Resolved         int       `json:"resolved"`
	Unresolved       int       `json:"unresolved"`
	SameFileFailures int       `json:"same_file_failures"`
	DeltaFiles       int       `json:"delta_files"`
	DeltaResolved    int       `json:"delta_resolved"`
	DeltaUnresolved  int       `json:"delta_unresolved"`
	AvgUnresolved    float64   `json:"avg_unresolved"`
	WindowHours      float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	RunCount      int          `json:"run_count"`
	Points        []TrendPoint `json:"points"`
}
