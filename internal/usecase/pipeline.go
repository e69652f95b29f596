package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"listradar/internal/domain"
)

// Stage functions. Each stage consumes the whole output of the previous
// one; per-item failures are handled inside the stage. An error returned
// here is stage-fatal and aborts the run.
type (
	CollectFunc  func(ctx context.Context) ([]domain.Candidate, error)
	FilterFunc   func(ctx context.Context, candidates []domain.Candidate) ([]domain.Candidate, error)
	ClassifyFunc func(ctx context.Context, candidates []domain.Candidate) ([]domain.ClassifiedCandidate, error)
	OutputFunc   func(ctx context.Context, classified []domain.ClassifiedCandidate, dryRun bool) (int, error)
)

// PipelineDeps wires the four stages into the orchestrator.
type PipelineDeps struct {
	Collect  CollectFunc
	Filter   FilterFunc
	Classify ClassifyFunc
	Output   OutputFunc
	Logger   *slog.Logger
}

// Pipeline sequences collection, filtering, classification, and output.
// Stages run strictly one after another; no stage observes partial output
// of a previous one. There is no retry and no rollback.
type Pipeline struct {
	collect  CollectFunc
	filter   FilterFunc
	classify ClassifyFunc
	output   OutputFunc
	logger   *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	return &Pipeline{
		collect:  deps.Collect,
		filter:   deps.Filter,
		classify: deps.Classify,
		output:   deps.Output,
		logger:   deps.Logger,
	}
}

// Run executes one full pass and returns the aggregated counters.
func (p *Pipeline) Run(ctx context.Context, dryRun bool) (domain.Result, error) {
	p.info("stage 1/4: collecting candidates")
	collected, err := p.collect(ctx)
	if err != nil {
		return domain.Result{}, fmt.Errorf("collect: %w", err)
	}
	p.info("collection done", "count", len(collected))

	p.info("stage 2/4: filtering candidates")
	filtered, err := p.filter(ctx, collected)
	if err != nil {
		return domain.Result{}, fmt.Errorf("filter: %w", err)
	}
	p.info("filtering done", "count", len(filtered))

	p.info("stage 3/4: classifying candidates")
	classified, err := p.classify(ctx, filtered)
	if err != nil {
		return domain.Result{}, fmt.Errorf("classify: %w", err)
	}
	p.info("classification done", "count", len(classified))

	p.info("stage 4/4: creating tickets")
	issuesCreated, err := p.output(ctx, classified, dryRun)
	if err != nil {
		return domain.Result{}, fmt.Errorf("output: %w", err)
	}
	p.info("output done", "created", issuesCreated)

	return domain.Result{
		CandidatesFound:    len(collected),
		CandidatesFiltered: len(filtered),
		IssuesCreated:      issuesCreated,
	}, nil
}

func (p *Pipeline) info(msg string, args ...any) {
	if p.logger != nil {
		p.logger.Info(msg, args...)
	}
}
