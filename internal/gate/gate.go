// Package gate decides whether a build passes, given the tally of newly
// introduced findings and the configured per-tier maxima.
package gate

import (
	"strings"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// Reason labels, in check order
const (
	ReasonMaxCritical = "Max Critical"
	ReasonMaxHigh     = "Max High"
	ReasonMaxMedium   = "Max Medium"
)

// Verdict is the result of a gate evaluation. It passes iff Reasons is empty.
type Verdict struct {
	Reasons []string
}

// Passed reports whether no threshold was exceeded
func (v Verdict) Passed() bool {
	return len(v.Reasons) == 0
}

// String formats the verdict the way it is printed in the build log
func (v Verdict) String() string {
	if v.Passed() {
		return "Build Passed!"
	}
	return "Build Failed: " + strings.Join(v.Reasons, " ")
}

type check struct {
	severity models.Severity
	max      *int
	reason   string
}

// Evaluate compares the new findings tally against the thresholds. Every set
// threshold is checked independently, Critical then High then Medium, and each
// one exceeded adds its reason. Low and Info are never gated.
func Evaluate(newTally models.Tally, th models.Thresholds) Verdict {
	checks := []check{
		{models.SeverityCritical, th.Critical, ReasonMaxCritical},
		{models.SeverityHigh, th.High, ReasonMaxHigh},
		{models.SeverityMedium, th.Medium, ReasonMaxMedium},
	}

	var v Verdict
	for _, c := range checks {
		if c.max != nil && newTally.Get(c.severity) > *c.max {
			v.Reasons = append(v.Reasons, c.reason)
		}
	}
	return v
}
