package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/justishika/clausecheck/internal/model"
)

// Reviewer reviews one contract file against a checklist file.
type Reviewer interface {
	Review(ctx context.Context, docPath, checklistPath string) (*model.Report, error)
}

// ReviewJob reviews a single contract
type ReviewJob struct {
	Path          string
	ChecklistPath string
	Reviewer      Reviewer
}

// Execute executes the review job
func (j *ReviewJob) Execute(ctx context.Context) Result {
	report, err := j.Reviewer.Review(ctx, j.Path, j.ChecklistPath)
	return &ReviewResult{
		Path:   j.Path,
		Report: report,
		Error:  err,
	}
}

// ReviewResult represents the result of a review job
type ReviewResult struct {
	Path   string
	Report *model.Report
	Error  error
}

// GetError returns the error from the review result
func (r *ReviewResult) GetError() error {
	return r.Error
}

// BatchProcessor reviews multiple contracts concurrently against one
// checklist. Reviews share no mutable state, so they need no
// coordination beyond the pool.
type BatchProcessor struct {
	reviewer    Reviewer
	concurrency int
}

// NewBatchProcessor creates a new batch processor
func NewBatchProcessor(reviewer Reviewer, concurrency int) *BatchProcessor {
	return &BatchProcessor{
		reviewer:    reviewer,
		concurrency: concurrency,
	}
}

// ProcessPaths reviews the given contract files concurrently
func (b *BatchProcessor) ProcessPaths(ctx context.Context, paths []string, checklistPath string) []*ReviewResult {
	if len(paths) == 0 {
		return []*ReviewResult{}
	}

	pool := NewPool(b.concurrency)
	pool.Start()

	for _, path := range paths {
		pool.Submit(&ReviewJob{
			Path:          path,
			ChecklistPath: checklistPath,
			Reviewer:      b.reviewer,
		})
	}

	results := pool.Wait()

	reviewResults := make([]*ReviewResult, len(results))
	for i, result := range results {
		reviewResults[i] = result.(*ReviewResult)
	}

	return reviewResults
}

// ProcessFile reads contract paths from a manifest file (one per line)
// and reviews them concurrently
func (b *BatchProcessor) ProcessFile(ctx context.Context, manifestPath, checklistPath string) ([]*ReviewResult, error) {
	paths, err := ReadPathsFromFile(manifestPath)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	return b.ProcessPaths(ctx, paths, checklistPath), nil
}

// ReadPathsFromFile reads file paths from a manifest (one per line).
// Empty lines and #-comments are skipped; duplicates are dropped.
func ReadPathsFromFile(filePath string) ([]string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return paths, nil
}
