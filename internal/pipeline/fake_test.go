package pipeline

import (
	"context"
	"errors"
	"sync"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// fakeService is an in-memory findings service that records every call
type fakeService struct {
	mu sync.Mutex

	users        []models.User
	listUsersErr error
	createErr    error
	closeErr     error

	// uploadErrs fails the upload of the matching file path
	uploadErrs map[string]error
	nextTestID int

	// pages answers ListFindings; the first filter match wins
	pages       func(models.FindingFilter) *models.FindingPage
	findingsErr error

	calls       []string
	engagements []models.Engagement
	uploads     []models.UploadRequest
	filters     []models.FindingFilter
	closed      []int
}

func newFakeService() *fakeService {
	return &fakeService{
		users:      []models.User{{ID: 5, Username: "ci-bot"}},
		uploadErrs: map[string]error{},
		nextTestID: 100,
		pages: func(models.FindingFilter) *models.FindingPage {
			return &models.FindingPage{}
		},
	}
}

func (f *fakeService) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeService) ListUsers(_ context.Context, name string) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListUsers")
	if f.listUsersErr != nil {
		return nil, f.listUsersErr
	}
	var out []models.User
	for _, u := range f.users {
		if u.Username == name {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeService) CreateEngagement(_ context.Context, e models.Engagement) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CreateEngagement")
	if f.createErr != nil {
		return 0, f.createErr
	}
	f.engagements = append(f.engagements, e)
	return 42, nil
}

func (f *fakeService) CloseEngagement(_ context.Context, id int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("CloseEngagement")
	f.closed = append(f.closed, id)
	return f.closeErr
}

func (f *fakeService) UploadScan(_ context.Context, req models.UploadRequest) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("UploadScan")
	f.uploads = append(f.uploads, req)
	if err, ok := f.uploadErrs[req.FilePath]; ok {
		return 0, err
	}
	f.nextTestID++
	return f.nextTestID, nil
}

func (f *fakeService) ListFindings(_ context.Context, filter models.FindingFilter) (*models.FindingPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("ListFindings")
	f.filters = append(f.filters, filter)
	if f.findingsErr != nil {
		return nil, f.findingsErr
	}
	return f.pages(filter), nil
}

func (f *fakeService) count(call string) int {
	n := 0
	for _, c := range f.calls {
		if c == call {
			n++
		}
	}
	return n
}

var errRejected = errors.New("rejected")
