package reporter

import "github.com/ethanolivertroy/dojo-gate/internal/models"

// Reporter is the interface for output formatters
type Reporter interface {
	// Report generates output for the given run summary
	Report(summary *models.Summary) ([]byte, error)
}

// Get returns a reporter for the specified format
func Get(format string) Reporter {
	switch format {
	case "json":
		return &JSONReporter{}
	case "junit":
		return &JUnitReporter{}
	case "sarif":
		return &SARIFReporter{}
	default:
		return &TerminalReporter{}
	}
}

// Formats lists the supported output formats
var Formats = []string{"terminal", "json", "junit", "sarif"}
