package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listradar/internal/domain"
)

func TestPipelineEndToEnd(t *testing.T) {
	t.Parallel()

	// Three collected; one fails the keyword filter, one is a list
	// duplicate, one classifies above threshold.
	collected := []domain.Candidate{
		{URL: "https://example.com/relevant", Title: "relevant gpu lib"},
		{URL: "https://example.com/off-topic", Title: "knitting patterns"},
		{URL: "https://example.com/known", Title: "already listed gpu lib"},
	}

	p := NewPipeline(PipelineDeps{
		Collect: func(context.Context) ([]domain.Candidate, error) {
			return collected, nil
		},
		Filter: func(_ context.Context, candidates []domain.Candidate) ([]domain.Candidate, error) {
			var kept []domain.Candidate
			for _, c := range candidates {
				if strings.Contains(c.Title, "gpu") && c.URL != "https://example.com/known" {
					kept = append(kept, c)
				}
			}
			return kept, nil
		},
		Classify: func(_ context.Context, candidates []domain.Candidate) ([]domain.ClassifiedCandidate, error) {
			out := make([]domain.ClassifiedCandidate, 0, len(candidates))
			for _, c := range candidates {
				out = append(out, domain.ClassifiedCandidate{Candidate: c, RelevanceScore: 85})
			}
			return out, nil
		},
		Output: func(_ context.Context, classified []domain.ClassifiedCandidate, _ bool) (int, error) {
			return len(classified), nil
		},
	})

	result, err := p.Run(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, domain.Result{
		CandidatesFound:    3,
		CandidatesFiltered: 1,
		IssuesCreated:      1,
	}, result)
}

func TestPipelineStagesRunInOrder(t *testing.T) {
	t.Parallel()

	var order []string

	p := NewPipeline(PipelineDeps{
		Collect: func(context.Context) ([]domain.Candidate, error) {
			order = append(order, "collect")
			return []domain.Candidate{{URL: "https://example.com/a"}}, nil
		},
		Filter: func(_ context.Context, c []domain.Candidate) ([]domain.Candidate, error) {
			order = append(order, "filter")
			return c, nil
		},
		Classify: func(_ context.Context, c []domain.Candidate) ([]domain.ClassifiedCandidate, error) {
			order = append(order, "classify")
			return nil, nil
		},
		Output: func(context.Context, []domain.ClassifiedCandidate, bool) (int, error) {
			order = append(order, "output")
			return 0, nil
		},
	})

	_, err := p.Run(context.Background(), false)

	require.NoError(t, err)
	assert.Equal(t, []string{"collect", "filter", "classify", "output"}, order)
}

func TestPipelineStageFatalAbortsRun(t *testing.T) {
	t.Parallel()

	outputCalled := false

	p := NewPipeline(PipelineDeps{
		Collect: func(context.Context) ([]domain.Candidate, error) {
			return []domain.Candidate{{URL: "https://example.com/a"}}, nil
		},
		Filter: func(_ context.Context, c []domain.Candidate) ([]domain.Candidate, error) {
			return c, nil
		},
		Classify: func(context.Context, []domain.Candidate) ([]domain.ClassifiedCandidate, error) {
			return nil, errors.New("config unreadable")
		},
		Output: func(context.Context, []domain.ClassifiedCandidate, bool) (int, error) {
			outputCalled = true
			return 0, nil
		},
	})

	_, err := p.Run(context.Background(), false)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "classify")
	assert.False(t, outputCalled)
}

func TestPipelinePassesDryRunToOutput(t *testing.T) {
	t.Parallel()

	var sawDryRun bool

	p := NewPipeline(PipelineDeps{
		Collect: func(context.Context) ([]domain.Candidate, error) { return nil, nil },
		Filter: func(_ context.Context, c []domain.Candidate) ([]domain.Candidate, error) {
			return c, nil
		},
		Classify: func(context.Context, []domain.Candidate) ([]domain.ClassifiedCandidate, error) {
			return nil, nil
		},
		Output: func(_ context.Context, _ []domain.ClassifiedCandidate, dryRun bool) (int, error) {
			sawDryRun = dryRun
			return 0, nil
		},
	})

	_, err := p.Run(context.Background(), true)

	require.NoError(t, err)
	assert.True(t, sawDryRun)
}
