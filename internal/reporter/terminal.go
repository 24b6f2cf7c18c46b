package reporter

import (
	"fmt"
	"strings"

	"github.com/ethanolivertroy/dojo-gate/internal/gate"
	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"github.com/fatih/color"
)

var (
	passColor = color.New(color.FgGreen, color.Bold)
	failColor = color.New(color.FgRed, color.Bold)
)

const banner = "=============================================="

// TerminalReporter outputs the run summary in the build log layout
type TerminalReporter struct{}

// Report generates terminal output for the given summary
func (r *TerminalReporter) Report(s *models.Summary) ([]byte, error) {
	var sb strings.Builder

	writeSection(&sb, "Total Number of Vulnerabilities", s.All)
	writeSection(&sb, "Total Number of Duplicate Findings", s.Duplicates)
	writeSection(&sb, "Total Number of New Findings", s.New)

	verdict := gate.Verdict{Reasons: s.Reasons}
	sb.WriteString(banner + "\n")
	if verdict.Passed() {
		sb.WriteString(passColor.Sprint(verdict.String()))
	} else {
		sb.WriteString(failColor.Sprint(verdict.String()))
	}
	sb.WriteString("\n" + banner + "\n")

	return []byte(sb.String()), nil
}

func writeSection(sb *strings.Builder, title string, c models.Count) {
	sb.WriteString(banner + "\n")
	sb.WriteString(fmt.Sprintf("%s: %d\n", title, c.Total))
	sb.WriteString(banner + "\n")
	writeTally(sb, c.Tally)
	sb.WriteString("\n")
}

// writeTally prints the tiers from most to least severe
func writeTally(sb *strings.Builder, t models.Tally) {
	for i := len(models.Severities) - 1; i >= 0; i-- {
		sev := models.Severities[i]
		sb.WriteString(fmt.Sprintf("%s: %d\n", sev, t.Get(sev)))
	}
}
