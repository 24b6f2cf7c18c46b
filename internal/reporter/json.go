package reporter

import (
	"encoding/json"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// JSONReporter outputs the run summary in JSON format
type JSONReporter struct{}

// jsonOutput represents the JSON output structure
type jsonOutput struct {
	RunID         string            `json:"run_id,omitempty"`
	ProductID     string            `json:"product_id"`
	EngagementID  int               `json:"engagement_id"`
	SubmissionIDs []int             `json:"submission_ids"`
	Total         jsonCount         `json:"total"`
	Duplicates    jsonCount         `json:"duplicates"`
	New           jsonCount         `json:"new"`
	Thresholds    models.Thresholds `json:"thresholds"`
	Passed        bool              `json:"passed"`
	Reasons       []string          `json:"reasons"`
	NewFindings   []jsonFinding     `json:"new_findings"`
}

type jsonCount struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
	Info     int `json:"info"`
}

type jsonFinding struct {
	ID       int    `json:"id"`
	Title    string `json:"title"`
	Severity string `json:"severity"`
}

// Report generates JSON output for the given summary
func (r *JSONReporter) Report(s *models.Summary) ([]byte, error) {
	output := jsonOutput{
		RunID:         s.RunID,
		ProductID:     s.ProductID,
		EngagementID:  s.EngagementID,
		SubmissionIDs: s.SubmissionIDs,
		Total:         toJSONCount(s.All),
		Duplicates:    toJSONCount(s.Duplicates),
		New:           toJSONCount(s.New),
		Thresholds:    s.Thresholds,
		Passed:        s.Passed,
		Reasons:       s.Reasons,
		NewFindings:   make([]jsonFinding, 0, len(s.New.Findings)),
	}
	if output.SubmissionIDs == nil {
		output.SubmissionIDs = []int{}
	}
	if output.Reasons == nil {
		output.Reasons = []string{}
	}

	for _, f := range s.New.Findings {
		output.NewFindings = append(output.NewFindings, jsonFinding{
			ID:       f.ID,
			Title:    f.Title,
			Severity: string(f.Severity),
		})
	}

	return json.MarshalIndent(output, "", "  ")
}

func toJSONCount(c models.Count) jsonCount {
	return jsonCount{
		Total:    c.Total,
		Critical: c.Tally.Get(models.SeverityCritical),
		High:     c.Tally.Get(models.SeverityHigh),
		Medium:   c.Tally.Get(models.SeverityMedium),
		Low:      c.Tally.Get(models.SeverityLow),
		Info:     c.Tally.Get(models.SeverityInfo),
	}
}
