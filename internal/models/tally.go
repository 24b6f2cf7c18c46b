package models

// Tally counts findings per severity tier, indexed Info=0 through Critical=4
type Tally [5]int

// Get returns the count for a tier, or 0 for an unknown tier
func (t Tally) Get(s Severity) int {
	if i, ok := s.Index(); ok {
		return t[i]
	}
	return 0
}

// Add increments the tier matching s exactly. Anything else is dropped.
func (t *Tally) Add(s Severity) bool {
	i, ok := s.Index()
	if !ok {
		return false
	}
	t[i]++
	return true
}

// Sum returns the number of findings that landed in a tier
func (t Tally) Sum() int {
	total := 0
	for _, n := range t {
		total += n
	}
	return total
}

// TallyFindings counts findings by severity. Findings whose severity is not
// one of the five tiers contribute to no slot.
func TallyFindings(findings []Finding) Tally {
	var t Tally
	for _, f := range findings {
		t.Add(f.Severity)
	}
	return t
}

// Count is a tallied findings query
type Count struct {
	Tally    Tally
	Total    int       // service-reported total, may exceed len(Findings)
	Findings []Finding // the page that was tallied
}

// NewCount tallies a page
func NewCount(page *FindingPage) Count {
	return Count{
		Tally:    TallyFindings(page.Objects),
		Total:    page.Meta.TotalCount,
		Findings: page.Objects,
	}
}

// Thresholds holds the optional maxima for gated tiers. Nil means no limit.
type Thresholds struct {
	Critical *int `toml:"critical" json:"critical,omitempty"`
	High     *int `toml:"high" json:"high,omitempty"`
	Medium   *int `toml:"medium" json:"medium,omitempty"`
}

// Int returns a pointer to n, for building thresholds
func Int(n int) *int {
	return &n
}
