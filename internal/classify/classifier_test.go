package classify

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"listradar/internal/config"
	"listradar/internal/domain"
)

// fakeChat returns canned responses (or errors) per call, in order.
type fakeChat struct {
	responses []string
	errs      []error
	calls     int
	prompts   []string
}

func (f *fakeChat) Complete(_ context.Context, _, _, user string) (string, error) {
	i := f.calls
	f.calls++
	f.prompts = append(f.prompts, user)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

func testConfig(threshold, maxPerRun int) config.Config {
	return config.Config{
		Description: "GPU-accelerated zero-knowledge proving",
		Classification: config.ClassificationConfig{
			Model:           "claude-sonnet-4-6",
			Threshold:       threshold,
			MaxIssuesPerRun: maxPerRun,
		},
	}
}

func scored(score any) string {
	return fmt.Sprintf(`{"relevanceScore": %v, "suggestedCategory": "Libraries", "suggestedTags": ["gpu"], "reasoning": "fits"}`, score)
}

func candidates(n int) []domain.Candidate {
	out := make([]domain.Candidate, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, domain.Candidate{
			URL:    fmt.Sprintf("https://example.com/%d", i),
			Title:  fmt.Sprintf("candidate-%d", i),
			Source: domain.SourceGitHub,
		})
	}
	return out
}

func TestClassifyEmptyInputMakesNoCalls(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{}
	c := New(chat, nil)

	got := c.Classify(context.Background(), nil, testConfig(70, 5))

	assert.Empty(t, got)
	assert.Zero(t, chat.calls)
}

func TestClassifyCapBoundsModelCalls(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{scored(90), scored(90), scored(90)}}
	c := New(chat, nil)

	got := c.Classify(context.Background(), candidates(10), testConfig(70, 3))

	assert.Equal(t, 3, chat.calls)
	assert.Len(t, got, 3)
}

func TestClassifyThresholdBoundary(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{scored(70), scored(69)}}
	c := New(chat, nil)

	got := c.Classify(context.Background(), candidates(2), testConfig(70, 5))

	require.Len(t, got, 1)
	assert.Equal(t, 70, got[0].RelevanceScore)
	assert.Equal(t, "https://example.com/0", got[0].URL)
}

func TestClassifyPerItemIsolation(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{
		responses: []string{scored(80), "", scored(85)},
		errs:      []error{nil, errors.New("network down"), nil},
	}
	c := New(chat, nil)

	got := c.Classify(context.Background(), candidates(3), testConfig(70, 5))

	require.Len(t, got, 2)
	assert.Equal(t, "https://example.com/0", got[0].URL)
	assert.Equal(t, "https://example.com/2", got[1].URL)
}

func TestClassifyRoundsScore(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{scored(85.7)}}
	c := New(chat, nil)

	got := c.Classify(context.Background(), candidates(1), testConfig(70, 5))

	require.Len(t, got, 1)
	assert.Equal(t, 86, got[0].RelevanceScore)
}

func TestClassifyKeepsCandidateFields(t *testing.T) {
	t.Parallel()

	stars := 42
	in := domain.Candidate{
		URL:         "https://github.com/test/repo",
		Title:       "test/repo",
		Description: "A great GPU library",
		Source:      domain.SourceGitHub,
		Metadata:    domain.Metadata{Stars: &stars, Language: "Rust"},
	}
	chat := &fakeChat{responses: []string{scored(85)}}
	c := New(chat, nil)

	got := c.Classify(context.Background(), []domain.Candidate{in}, testConfig(70, 5))

	require.Len(t, got, 1)
	assert.Equal(t, in, got[0].Candidate)
	assert.Equal(t, "Libraries", got[0].SuggestedCategory)
	assert.Equal(t, []string{"gpu"}, got[0].SuggestedTags)
	assert.Equal(t, "fits", got[0].Reasoning)
}

func TestClassifyDropsOutOfRangeScore(t *testing.T) {
	t.Parallel()

	chat := &fakeChat{responses: []string{scored(150), scored(-3), scored(80)}}
	c := New(chat, nil)

	got := c.Classify(context.Background(), candidates(3), testConfig(70, 5))

	require.Len(t, got, 1)
	assert.Equal(t, "https://example.com/2", got[0].URL)
}

func TestClassifyPromptContainsSanitizedFields(t *testing.T) {
	t.Parallel()

	in := domain.Candidate{
		URL:         "https://example.com/x",
		Title:       "evil\x00title",
		Description: "desc",
		Source:      domain.SourceBlog,
		Metadata:    domain.Metadata{Topics: []string{"zk", "gpu"}},
	}
	chat := &fakeChat{responses: []string{scored(90)}}
	c := New(chat, nil)

	c.Classify(context.Background(), []domain.Candidate{in}, testConfig(70, 5))

	require.Len(t, chat.prompts, 1)
	prompt := chat.prompts[0]
	assert.Contains(t, prompt, "<candidate_title>eviltitle</candidate_title>")
	assert.Contains(t, prompt, "<candidate_topics>zk, gpu</candidate_topics>")
	assert.Contains(t, prompt, "GPU-accelerated zero-knowledge proving")
	assert.NotContains(t, prompt, "\x00")
}

func TestSanitizeCapsLength(t *testing.T) {
	t.Parallel()

	long := make([]byte, 500)
	for i := range long {
		long[i] = 'a'
	}

	assert.Len(t, sanitize(string(long), 200), 200)
}

func TestExtractFirstObject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "bare object", in: `{"a": 1}`, want: `{"a": 1}`},
		{name: "wrapped in prose", in: `Here is my view: {"a": {"b": 2}} Thanks!`, want: `{"a": {"b": 2}}`},
		{name: "no object", in: "nothing here", wantErr: true},
		{name: "unbalanced", in: `{"a": {"b": 2}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractFirstObject(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseResponseProseWrappedEqualsBare(t *testing.T) {
	t.Parallel()

	bare, err := parseResponse(scored(85))
	require.NoError(t, err)

	wrapped, err := parseResponse("Here is my view: " + scored(85) + " Thanks!")
	require.NoError(t, err)

	assert.Equal(t, bare, wrapped)
}

func TestParseResponseDefaults(t *testing.T) {
	t.Parallel()

	got, err := parseResponse(`{"relevanceScore": 75, "suggestedTags": "not-an-array"}`)
	require.NoError(t, err)

	assert.Equal(t, 75, got.RelevanceScore)
	assert.Equal(t, "Uncategorized", got.SuggestedCategory)
	assert.Equal(t, []string{}, got.SuggestedTags)
	assert.Equal(t, "", got.Reasoning)
}

func TestParseResponseRejectsMissingScore(t *testing.T) {
	t.Parallel()

	_, err := parseResponse(`{"suggestedCategory": "Libraries"}`)

	assert.Error(t, err)
}

func TestParseResponseRejectsStringScore(t *testing.T) {
	t.Parallel()

	_, err := parseResponse(`{"relevanceScore": "85"}`)

	assert.Error(t, err)
}
