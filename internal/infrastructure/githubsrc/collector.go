package githubsrc

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"

	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/ports"
)

const maxDescriptionLen = 1000

// Collector searches GitHub for recently created repositories matching the
// configured topics.
type Collector struct {
	client *github.Client
	cfg    config.GitHubSourceConfig
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.Collector = (*Collector)(nil)

// NewCollector builds a collector. An empty token yields an unauthenticated
// client with the lower search rate limit.
func NewCollector(token string, cfg config.GitHubSourceConfig, logger *slog.Logger) *Collector {
	client := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}
	return newCollector(client, cfg, logger)
}

func newCollector(client *github.Client, cfg config.GitHubSourceConfig, logger *slog.Logger) *Collector {
	return &Collector{client: client, cfg: cfg, logger: logger, now: time.Now}
}

// Collect runs one repository search. Fetches a single page of 100 results
// sorted by stars; for a radar scan the top 100 is sufficient. Failures
// are logged and yield an empty result.
func (c *Collector) Collect(ctx context.Context) []domain.Candidate {
	query := buildSearchQuery(c.cfg, c.now())
	if c.logger != nil {
		c.logger.Debug("github search", "query", query)
	}

	result, _, err := c.client.Search.Repositories(ctx, query, &github.SearchOptions{
		Sort:  "stars",
		Order: "desc",
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	})
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("github search failed", "error", err)
		}
		return nil
	}

	candidates := make([]domain.Candidate, 0, len(result.Repositories))
	for _, repo := range result.Repositories {
		description := repo.GetDescription()
		if len(description) > maxDescriptionLen {
			description = description[:maxDescriptionLen]
		}

		meta := domain.Metadata{
			Topics: repo.Topics,
		}
		if repo.StargazersCount != nil {
			meta.Stars = repo.StargazersCount
		}
		if lang := repo.GetLanguage(); lang != "" {
			meta.Language = lang
		}

		candidates = append(candidates, domain.Candidate{
			URL:         repo.GetHTMLURL(),
			Title:       repo.GetFullName(),
			Description: description,
			Source:      domain.SourceGitHub,
			Metadata:    meta,
		})
	}
	return candidates
}

// buildSearchQuery composes the GitHub search expression. Topics and
// languages are OR-ed within their clause: a repo matches with any listed
// topic and any listed language.
func buildSearchQuery(cfg config.GitHubSourceConfig, now time.Time) string {
	var parts []string

	topicClauses := make([]string, 0, len(cfg.Topics))
	for _, t := range cfg.Topics {
		topicClauses = append(topicClauses, "topic:"+t)
	}
	parts = append(parts, strings.Join(topicClauses, " "))

	if len(cfg.Languages) > 0 {
		langClauses := make([]string, 0, len(cfg.Languages))
		for _, l := range cfg.Languages {
			langClauses = append(langClauses, "language:"+l)
		}
		parts = append(parts, strings.Join(langClauses, " "))
	}

	if cfg.MinStars > 0 {
		parts = append(parts, fmt.Sprintf("stars:>=%d", cfg.MinStars))
	}

	parts = append(parts, "created:>="+createdAfterDate(cfg.CreatedAfter, now))

	return strings.Join(parts, " ")
}

// createdAfterDate resolves a "Nd" spec to the cutoff date. The spec is
// validated at config load, so a parse failure here means zero days.
func createdAfterDate(spec string, now time.Time) string {
	days, _ := strconv.Atoi(strings.TrimSuffix(spec, "d"))
	return now.AddDate(0, 0, -days).UTC().Format("2006-01-02")
}
