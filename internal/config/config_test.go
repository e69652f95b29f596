package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
description: GPU-accelerated zero-knowledge proving resources
sources:
  github:
    topics: [zero-knowledge, gpu]
repo:
  owner: test
  name: awesome-zk
`

func TestParseAppliesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "README.md", cfg.ListFile)
	assert.Equal(t, "claude-sonnet-4-6", cfg.Classification.Model)
	assert.Equal(t, 70, cfg.Classification.Threshold)
	assert.Equal(t, 5, cfg.Classification.MaxIssuesPerRun)
	assert.Equal(t, []string{"radar", "needs-review"}, cfg.IssueTemplate.Labels)
	require.NotNil(t, cfg.Sources.GitHub)
	assert.Equal(t, "30d", cfg.Sources.GitHub.CreatedAfter)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
description: test list
list_file: AWESOME.md
sources:
  arxiv:
    categories: [cs.CR]
    keywords: [zksnark]
classification:
  threshold: 90
  max_issues_per_run: 2
repo:
  owner: test
  name: list
`))
	require.NoError(t, err)

	assert.Equal(t, "AWESOME.md", cfg.ListFile)
	assert.Equal(t, 90, cfg.Classification.Threshold)
	assert.Equal(t, 2, cfg.Classification.MaxIssuesPerRun)
	assert.Nil(t, cfg.Sources.GitHub)
	require.NotNil(t, cfg.Sources.Arxiv)
}

func TestParseRequiresDescription(t *testing.T) {
	_, err := Parse([]byte(`
sources:
  github:
    topics: [x]
repo:
  owner: a
  name: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "description")
}

func TestParseRequiresAtLeastOneSource(t *testing.T) {
	_, err := Parse([]byte(`
description: test
repo:
  owner: a
  name: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at least one source")
}

func TestParseRejectsOutOfRangeThreshold(t *testing.T) {
	for _, threshold := range []string{"-1", "101"} {
		_, err := Parse([]byte(`
description: test
sources:
  github:
    topics: [x]
classification:
  threshold: ` + threshold + `
repo:
  owner: a
  name: b
`))
		require.Error(t, err, "threshold %s", threshold)
		assert.Contains(t, err.Error(), "threshold")
	}
}

func TestParseRejectsNonPositiveCap(t *testing.T) {
	_, err := Parse([]byte(`
description: test
sources:
  github:
    topics: [x]
classification:
  max_issues_per_run: 0
repo:
  owner: a
  name: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_issues_per_run")
}

func TestParseRejectsMalformedCreatedAfter(t *testing.T) {
	_, err := Parse([]byte(`
description: test
sources:
  github:
    topics: [x]
    created_after: "last month"
repo:
  owner: a
  name: b
`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "created_after")
}

func TestParseRejectsEmptySourceSections(t *testing.T) {
	cases := map[string]string{
		"github topics": `
description: test
sources:
  github:
    topics: []
repo: {owner: a, name: b}
`,
		"arxiv categories": `
description: test
sources:
  arxiv:
    categories: []
    keywords: [x]
repo: {owner: a, name: b}
`,
		"blog feeds": `
description: test
sources:
  blogs:
    feeds: []
repo: {owner: a, name: b}
`,
		"web page urls": `
description: test
sources:
  web_pages:
    urls: []
repo: {owner: a, name: b}
`,
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(raw))
			assert.Error(t, err)
		})
	}
}

func TestParseAppliesEnvOverrides(t *testing.T) {
	t.Setenv("GITHUB_TOKEN", "gh-token")
	t.Setenv("ANTHROPIC_API_KEY", "api-key")
	t.Setenv("TELEGRAM_BOT_TOKEN", "bot-token")
	t.Setenv("TELEGRAM_CHAT_ID", "chat-42")

	cfg, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, "gh-token", cfg.Auth.GitHubToken)
	assert.Equal(t, "api-key", cfg.Auth.AnthropicAPIKey)
	assert.Equal(t, "bot-token", cfg.Notifications.Telegram.BotToken)
	assert.Equal(t, "chat-42", cfg.Notifications.Telegram.ChatID)
}

func TestSchedulerLocationFallsBackToUTC(t *testing.T) {
	cfg, err := Parse([]byte(minimalYAML + `
scheduler:
  timezone: Not/AZone
`))
	require.NoError(t, err)

	assert.Equal(t, "UTC", cfg.Scheduler.Location().String())
}
