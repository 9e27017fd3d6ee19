package leaderboard

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// Fixed sort fields. Any other field name is read as a benchmark name.
const (
	FieldModelName     = "modelName"
	FieldAgentName     = "agentName"
	FieldBaseModelName = "baseModelName"
	FieldEndedAt       = "endedAt"
)

// IsFixedField reports whether field is one of the non-benchmark sort fields.
func IsFixedField(field string) bool {
	switch field {
	case FieldModelName, FieldAgentName, FieldBaseModelName, FieldEndedAt:
		return true
	}
	return false
}

// SortDirection is ascending, descending, or none.
type SortDirection string

const (
	Ascending   SortDirection = "asc"
	Descending  SortDirection = "desc"
	NoDirection SortDirection = ""
)

// ParseSortDirection accepts "asc", "desc" and "" (none).
func ParseSortDirection(s string) (SortDirection, error) {
	switch d := SortDirection(strings.ToLower(strings.TrimSpace(s))); d {
	case Ascending, Descending, NoDirection:
		return d, nil
	}
	return NoDirection, fmt.Errorf("invalid sort direction %q: must be asc or desc", s)
}

// SortMetric selects which cell value a benchmark column sorts by.
type SortMetric string

const (
	MetricAccuracy    SortMetric = "accuracy"
	MetricImprovement SortMetric = "improvement"
)

// ParseSortMetric accepts "accuracy" and "improvement".
func ParseSortMetric(s string) (SortMetric, error) {
	switch m := SortMetric(strings.ToLower(strings.TrimSpace(s))); m {
	case MetricAccuracy, MetricImprovement:
		return m, nil
	}
	return MetricAccuracy, fmt.Errorf("invalid sort metric %q: must be accuracy or improvement", s)
}

// FilterState holds the per-field search queries and inclusion sets. An empty
// query or an empty set places no restriction on its field.
type FilterState struct {
	ModelSearch     string `json:"modelSearch,omitempty"`
	AgentSearch     string `json:"agentSearch,omitempty"`
	BaseModelSearch string `json:"baseModelSearch,omitempty"`
	BenchmarkSearch string `json:"benchmarkSearch,omitempty"`

	Models     []string `json:"models,omitempty"`
	Agents     []string `json:"agents,omitempty"`
	BaseModels []string `json:"baseModels,omitempty"`
	Benchmarks []string `json:"benchmarks,omitempty"`
}

// SortState is the active sort field and direction plus the per-benchmark
// metric choices, which survive changes of the active field.
type SortState struct {
	Field     string                `json:"field"`
	Direction SortDirection         `json:"direction"`
	Metrics   map[string]SortMetric `json:"metrics,omitempty"`
}

// DefaultSortState sorts by model name ascending.
func DefaultSortState() SortState {
	return SortState{Field: FieldModelName, Direction: Ascending}
}

// Effective resolves the field and direction actually applied. A "none"
// direction falls back to model name ascending.
func (s SortState) Effective() (string, SortDirection) {
	if s.Field == "" || s.Direction == NoDirection {
		return FieldModelName, Ascending
	}
	return s.Field, s.Direction
}

// Activate returns the state after the user activates field. Repeated
// activation cycles asc -> desc -> none; reaching none resets the field to
// model name. A different field always starts ascending.
func (s SortState) Activate(field string) SortState {
	next := s
	if s.Field != field {
		next.Field = field
		next.Direction = Ascending
		return next
	}
	switch s.Direction {
	case Ascending:
		next.Direction = Descending
	case Descending:
		next.Field = FieldModelName
		next.Direction = NoDirection
	default:
		next.Direction = Ascending
	}
	return next
}

// Metric returns the metric chosen for benchmark, accuracy by default.
func (s SortState) Metric(benchmark string) SortMetric {
	if m, ok := s.Metrics[benchmark]; ok {
		return m
	}
	return MetricAccuracy
}

// WithMetric returns a copy of s with benchmark's metric set to m.
func (s SortState) WithMetric(benchmark string, m SortMetric) SortState {
	next := s
	next.Metrics = make(map[string]SortMetric, len(s.Metrics)+1)
	maps.Copy(next.Metrics, s.Metrics)
	next.Metrics[benchmark] = m
	return next
}

// ToggleMetric flips benchmark between accuracy and improvement.
func (s SortState) ToggleMetric(benchmark string) SortState {
	if s.Metric(benchmark) == MetricImprovement {
		return s.WithMetric(benchmark, MetricAccuracy)
	}
	return s.WithMetric(benchmark, MetricImprovement)
}

// Tab selects between the curated view and every pivoted row.
type Tab string

const (
	TabCurated Tab = "curated"
	TabAll     Tab = "all"
)

// ParseTab accepts "curated" and "all".
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case TabCurated, TabAll:
		return t, nil
	}
	return TabCurated, fmt.Errorf("invalid tab %q: must be curated or all", s)
}

// Limit is a Top-N / Recent-N threshold. Unbounded keeps every row.
type Limit int

// Unbounded is the "all" limit.
const Unbounded Limit = -1

// ParseLimit accepts a non-negative integer or "all".
func ParseLimit(s string) (Limit, error) {
	s = strings.TrimSpace(s)
	if strings.EqualFold(s, "all") {
		return Unbounded, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid limit %q: must be a non-negative integer or \"all\"", s)
	}
	return Limit(n), nil
}

func (l Limit) String() string {
	if l < 0 {
		return "all"
	}
	return strconv.Itoa(int(l))
}

// MarshalText encodes unbounded limits as "all".
func (l Limit) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText is the inverse of MarshalText.
func (l *Limit) UnmarshalText(text []byte) error {
	v, err := ParseLimit(string(text))
	if err != nil {
		return err
	}
	*l = v
	return nil
}

// take clamps the limit to n available items.
func (l Limit) take(n int) int {
	if l < 0 || int(l) > n {
		return n
	}
	return int(l)
}

// ViewMode is the active tab plus the curated-view thresholds.
type ViewMode struct {
	Tab     Tab   `json:"tab"`
	TopN    Limit `json:"topN"`
	RecentN Limit `json:"recentN"`
}
