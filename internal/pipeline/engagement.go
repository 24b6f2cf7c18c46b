package pipeline

import (
	"context"
	"time"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// EngagementName builds the human-readable engagement name, embedding the
// local time and the optional build reference
func EngagementName(productID, buildID string, now time.Time) string {
	name := "CI/CD Scan for " + productID + " (" + now.Format("15:04:05") + ")"
	if buildID != "" {
		name += " - Build #" + buildID
	}
	return name
}

// CreateEngagement resolves the lead user and opens a one-day engagement
// for the product
func (p *Pipeline) CreateEngagement(ctx context.Context, productID, userName, buildID string) (int, error) {
	users, err := p.svc.ListUsers(ctx, userName)
	if err != nil {
		return 0, err
	}
	if len(users) == 0 {
		return 0, &models.UserNotFoundError{Username: userName}
	}

	now := p.now()
	e := models.NewEngagement(EngagementName(productID, buildID, now), productID, users[0].ID, now)
	id, err := p.svc.CreateEngagement(ctx, e)
	if err != nil {
		return 0, err
	}

	p.logger.Infow("Engagement created", "engagement", id, "name", e.Name, "lead", users[0].ID)
	return id, nil
}

// CloseEngagement closes the engagement once all submissions are in
func (p *Pipeline) CloseEngagement(ctx context.Context, engagementID int) error {
	if err := p.svc.CloseEngagement(ctx, engagementID); err != nil {
		return err
	}
	p.logger.Infow("Engagement closed", "engagement", engagementID)
	return nil
}
