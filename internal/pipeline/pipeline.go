package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/ethanolivertroy/dojo-gate/internal/gate"
	"github.com/ethanolivertroy/dojo-gate/internal/models"
	"go.uber.org/zap"
)

// Pipeline orchestrates one gate run against the findings service
type Pipeline struct {
	config  *models.Config
	svc     Service
	logger  *zap.SugaredLogger
	settler *Settler
	now     func() time.Time
	runID   string
}

// Option customizes a Pipeline
type Option func(*Pipeline)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.SugaredLogger) Option {
	return func(p *Pipeline) { p.logger = l }
}

// WithSettler replaces the settler built from Config.SettleWait
func WithSettler(s *Settler) Option {
	return func(p *Pipeline) { p.settler = s }
}

// WithClock sets the time source used for engagement names and dates
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// WithRunID tags the summary with a run identifier
func WithRunID(id string) Option {
	return func(p *Pipeline) { p.runID = id }
}

// New creates a new Pipeline with the given configuration
func New(config *models.Config, svc Service, opts ...Option) *Pipeline {
	p := &Pipeline{
		config: config,
		svc:    svc,
		logger: zap.NewNop().Sugar(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.settler == nil {
		p.settler = NewSettler(config.SettleWait)
	}
	if p.settler.Tick == nil {
		p.settler.Tick = func(elapsed time.Duration) {
			p.logger.Debugw("Settling", "elapsed", elapsed, "wait", p.settler.Wait)
		}
	}
	return p
}

// Run performs the full gate sequence: create the engagement, submit scans,
// close the engagement, wait for deduplication, count findings and evaluate
// the thresholds. Any error aborts the run and no summary is produced.
func (p *Pipeline) Run(ctx context.Context) (*models.Summary, error) {
	cfg := p.config

	// Single-file mode needs an explicit scanner; fail before touching the service
	if cfg.File != "" && cfg.Scanner == "" {
		return nil, &models.MissingScannerTypeError{File: cfg.File}
	}

	// Step 1: Open the engagement
	engagementID, err := p.CreateEngagement(ctx, cfg.ProductID, cfg.User, cfg.BuildID)
	if err != nil {
		return nil, fmt.Errorf("failed to create engagement: %w", err)
	}

	// Step 2: Upload scan results
	ids, err := p.submit(ctx, engagementID)
	if err != nil {
		// Don't leave the engagement in progress; the upload error is what gets reported
		if cerr := p.CloseEngagement(context.WithoutCancel(ctx), engagementID); cerr != nil {
			p.logger.Warnw("Failed to close engagement after upload failure", "engagement", engagementID, "error", cerr)
		}
		return nil, fmt.Errorf("failed to submit scans (%d uploaded): %w", len(ids), err)
	}

	// Step 3: Close the engagement
	if err := p.CloseEngagement(ctx, engagementID); err != nil {
		return nil, fmt.Errorf("failed to close engagement: %w", err)
	}

	// Step 4: Let deduplication settle
	p.logger.Infow("Waiting for deduplication to settle", "wait", p.settler.Wait)
	if err := p.settler.Settle(ctx); err != nil {
		return nil, fmt.Errorf("interrupted while waiting for deduplication: %w", err)
	}

	// Step 5: Count findings
	all, err := p.CountAll(ctx, engagementID)
	if err != nil {
		return nil, fmt.Errorf("failed to count findings: %w", err)
	}
	dups, err := p.CountDuplicates(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count duplicate findings: %w", err)
	}
	fresh, err := p.CountNew(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to count new findings: %w", err)
	}

	// Step 6: Evaluate the gate
	verdict := gate.Evaluate(fresh.Tally, cfg.Thresholds)
	p.logger.Infow("Gate evaluated", "passed", verdict.Passed(), "reasons", verdict.Reasons)

	return &models.Summary{
		RunID:         p.runID,
		ProductID:     cfg.ProductID,
		EngagementID:  engagementID,
		SubmissionIDs: ids,
		All:           all,
		Duplicates:    dups,
		New:           fresh,
		Thresholds:    cfg.Thresholds,
		Passed:        verdict.Passed(),
		Reasons:       verdict.Reasons,
	}, nil
}

func (p *Pipeline) submit(ctx context.Context, engagementID int) ([]int, error) {
	if p.config.File != "" {
		id, err := p.SubmitFile(ctx, engagementID, p.config.Scanner, p.config.File, p.config.BuildID)
		if err != nil {
			return nil, err
		}
		return []int{id}, nil
	}
	return p.SubmitDirectory(ctx, engagementID, p.config.Dir, p.config.BuildID)
}
