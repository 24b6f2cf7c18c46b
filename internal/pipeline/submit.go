package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/ethanolivertroy/dojo-gate/internal/models"
)

// SubmitFile uploads one scan file into the engagement. The scanner name is
// mandatory; duplicates are never suppressed at upload time.
func (p *Pipeline) SubmitFile(ctx context.Context, engagementID int, scanner, path, buildID string) (int, error) {
	if strings.TrimSpace(scanner) == "" {
		return 0, &models.MissingScannerTypeError{File: path}
	}

	p.logger.Infow("Uploading scan", "scanner", scanner, "file", path)
	id, err := p.svc.UploadScan(ctx, models.UploadRequest{
		EngagementID:       engagementID,
		ScannerName:        scanner,
		FilePath:           path,
		SuppressDuplicates: false,
		ScanDate:           p.now().Format(models.DateLayout),
		BuildID:            buildID,
	})
	if err != nil {
		return 0, err
	}

	p.logger.Debugw("Scan uploaded", "file", path, "test", id)
	return id, nil
}

// SubmitDirectory walks root and uploads every file, naming the scanner
// after the enclosing folder (<root>/<scanner>/<file>). It stops at the first
// failure unless CollectErrors is set. The ids submitted so far are returned
// alongside any error.
func (p *Pipeline) SubmitDirectory(ctx context.Context, engagementID int, root, buildID string) ([]int, error) {
	var ids []int
	var failures []error

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			// Skip VCS and other hidden directories
			if path != root && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		id, err := p.SubmitFile(ctx, engagementID, ScannerForPath(path), path, buildID)
		if err != nil {
			if !p.config.CollectErrors {
				return err
			}
			p.logger.Warnw("Upload failed, continuing", "file", path, "error", err)
			failures = append(failures, err)
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		return ids, err
	}
	return ids, errors.Join(failures...)
}

// ScannerForPath infers the scanner name from the folder holding the file
func ScannerForPath(path string) string {
	return filepath.Base(filepath.Dir(path))
}
