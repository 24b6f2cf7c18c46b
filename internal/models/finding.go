package models

// Severity is the severity tier string reported by the findings service
type Severity string

const (
	SeverityInfo     Severity = "Info"
	SeverityLow      Severity = "Low"
	SeverityMedium   Severity = "Medium"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

// Severities lists every tier in increasing order, matching Tally indexes
var Severities = []Severity{
	SeverityInfo,
	SeverityLow,
	SeverityMedium,
	SeverityHigh,
	SeverityCritical,
}

// Index returns the Tally slot for s. Matching is exact and case-sensitive.
func (s Severity) Index() (int, bool) {
	switch s {
	case SeverityInfo:
		return 0, true
	case SeverityLow:
		return 1, true
	case SeverityMedium:
		return 2, true
	case SeverityHigh:
		return 3, true
	case SeverityCritical:
		return 4, true
	}
	return -1, false
}

// Finding is a read-only issue record returned by the findings service
type Finding struct {
	ID          int      `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
	Duplicate   bool     `json:"duplicate"`
	Active      bool     `json:"active"`
	Verified    bool     `json:"verified"`
}

// FindingFilter selects findings. Nil flags are left out of the query.
type FindingFilter struct {
	EngagementID  int
	SubmissionIDs []int
	Duplicate     *bool
	Active        *bool
	Verified      *bool
	Limit         int
}

// FindingPage is one page of a findings query
type FindingPage struct {
	Objects []Finding `json:"objects"`
	Meta    PageMeta  `json:"meta"`
}

// PageMeta carries the service-reported totals for a query
type PageMeta struct {
	TotalCount int `json:"total_count"`
	Limit      int `json:"limit"`
	Offset     int `json:"offset"`
}

// Bool returns a pointer to b, for building filters
func Bool(b bool) *bool {
	return &b
}
