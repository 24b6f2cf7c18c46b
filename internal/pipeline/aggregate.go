package pipeline

import (
	"context"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// NewFindingsLimit caps the new-findings query. Later pages are not fetched,
// so Count.Total can exceed the number of findings tallied.
const NewFindingsLimit = 500

// CountAll tallies the verified, non-duplicate, inactive findings of the
// engagement
func (p *Pipeline) CountAll(ctx context.Context, engagementID int) (models.Count, error) {
	return p.count(ctx, models.FindingFilter{
		EngagementID: engagementID,
		Duplicate:    models.Bool(false),
		Active:       models.Bool(false),
		Verified:     models.Bool(true),
	})
}

// CountDuplicates tallies the findings of the submissions that the service
// flagged as duplicates
func (p *Pipeline) CountDuplicates(ctx context.Context, submissionIDs []int) (models.Count, error) {
	if len(submissionIDs) == 0 {
		return models.Count{}, nil
	}
	return p.count(ctx, models.FindingFilter{
		SubmissionIDs: submissionIDs,
		Duplicate:     models.Bool(true),
	})
}

// CountNew tallies the non-duplicate findings of the submissions, up to
// NewFindingsLimit of them
func (p *Pipeline) CountNew(ctx context.Context, submissionIDs []int) (models.Count, error) {
	if len(submissionIDs) == 0 {
		return models.Count{}, nil
	}
	c, err := p.count(ctx, models.FindingFilter{
		SubmissionIDs: submissionIDs,
		Duplicate:     models.Bool(false),
		Limit:         NewFindingsLimit,
	})
	if err != nil {
		return c, err
	}
	if c.Total > len(c.Findings) {
		p.logger.Warnw("New findings exceed the query limit, tally is partial",
			"total", c.Total, "tallied", len(c.Findings))
	}
	return c, nil
}

func (p *Pipeline) count(ctx context.Context, filter models.FindingFilter) (models.Count, error) {
	page, err := p.svc.ListFindings(ctx, filter)
	if err != nil {
		return models.Count{}, err
	}

	c := models.NewCount(page)
	if dropped := len(page.Objects) - c.Tally.Sum(); dropped > 0 {
		p.logger.Debugw("Findings with unrecognized severity left out of the tally", "count", dropped)
	}
	return c, nil
}
