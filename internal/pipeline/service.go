package pipeline

import (
	"context"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// Service is the findings service contract the pipeline runs against.
// clients.DojoClient implements it over REST.
type Service interface {
	ListUsers(ctx context.Context, name string) ([]models.User, error)
	CreateEngagement(ctx context.Context, e models.Engagement) (int, error)
	CloseEngagement(ctx context.Context, id int) error
	UploadScan(ctx context.Context, req models.UploadRequest) (int, error)
	ListFindings(ctx context.Context, filter models.FindingFilter) (*models.FindingPage, error)
}
