package models

import "time"

// EngagementStatus is the lifecycle state of an engagement
type EngagementStatus string

const (
	StatusInProgress EngagementStatus = "In Progress"
	StatusClosed     EngagementStatus = "Completed"
)

// DateLayout is the date format the findings service expects
const DateLayout = "2006-01-02"

// User is a findings service account
type User struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
}

// Engagement is a time-boxed scan session tied to a product
type Engagement struct {
	ID        int
	Name      string
	ProductID string
	LeadID    int
	Status    EngagementStatus
	StartDate string
	EndDate   string
}

// NewEngagement builds an in-progress engagement spanning one day from now
func NewEngagement(name, productID string, leadID int, now time.Time) Engagement {
	return Engagement{
		Name:      name,
		ProductID: productID,
		LeadID:    leadID,
		Status:    StatusInProgress,
		StartDate: now.Format(DateLayout),
		EndDate:   now.AddDate(0, 0, 1).Format(DateLayout),
	}
}

// UploadRequest describes one scan file import
type UploadRequest struct {
	EngagementID       int
	ScannerName        string
	FilePath           string
	SuppressDuplicates bool
	ScanDate           string
	BuildID            string
}

// Summary is the outcome of a complete gate run
type Summary struct {
	RunID         string     `json:"run_id"`
	ProductID     string     `json:"product_id"`
	EngagementID  int        `json:"engagement_id"`
	SubmissionIDs []int      `json:"submission_ids"`
	All           Count      `json:"-"`
	Duplicates    Count      `json:"-"`
	New           Count      `json:"-"`
	Thresholds    Thresholds `json:"thresholds"`
	Passed        bool       `json:"passed"`
	Reasons       []string   `json:"reasons,omitempty"`
}
