package arxiv

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/ports"
)

const (
	apiURL            = "https://export.arxiv.org/api/query"
	maxResults        = 50
	maxDescriptionLen = 1000
)

var whitespaceExpr = regexp.MustCompile(`\s+`)

// Collector queries the arXiv Atom API for recent papers matching the
// configured categories and keywords.
type Collector struct {
	parser *gofeed.Parser
	cfg    config.ArxivSourceConfig
	logger *slog.Logger
}

var _ ports.Collector = (*Collector)(nil)

// NewCollector wires an HTTP client into a feed parser; a nil client gets
// a 20s timeout default.
func NewCollector(client *http.Client, cfg config.ArxivSourceConfig, logger *slog.Logger) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	parser := gofeed.NewParser()
	parser.Client = client
	return &Collector{parser: parser, cfg: cfg, logger: logger}
}

// Collect fetches one page of recent submissions. Failures are logged and
// yield an empty result.
func (c *Collector) Collect(ctx context.Context) []domain.Candidate {
	query := buildQuery(c.cfg)
	feedURL := buildURL(query)
	if c.logger != nil {
		c.logger.Debug("arxiv query", "url", feedURL)
	}

	feed, err := c.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("arxiv collection failed", "error", err)
		}
		return nil
	}

	return c.mapFeed(feed)
}

func (c *Collector) mapFeed(feed *gofeed.Feed) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		link := item.Link
		if link == "" {
			link = item.GUID
		}
		if link == "" {
			continue
		}

		description := collapseWhitespace(item.Description)
		if len(description) > maxDescriptionLen {
			description = description[:maxDescriptionLen]
		}

		var authors []string
		for _, person := range item.Authors {
			if person != nil && person.Name != "" {
				authors = append(authors, person.Name)
			}
		}

		candidates = append(candidates, domain.Candidate{
			URL:         link,
			Title:       collapseWhitespace(item.Title),
			Description: description,
			Source:      domain.SourceArxiv,
			Metadata: domain.Metadata{
				Authors:     authors,
				PublishedAt: item.Published,
			},
		})
	}
	return candidates
}

// buildQuery composes the arXiv search expression: any configured category
// AND any configured keyword.
func buildQuery(cfg config.ArxivSourceConfig) string {
	catParts := make([]string, 0, len(cfg.Categories))
	for _, cat := range cfg.Categories {
		catParts = append(catParts, "cat:"+cat)
	}
	catQuery := catParts[0]
	if len(catParts) > 1 {
		catQuery = "(" + strings.Join(catParts, " OR ") + ")"
	}

	kwParts := make([]string, 0, len(cfg.Keywords))
	for _, kw := range cfg.Keywords {
		kwParts = append(kwParts, fmt.Sprintf("all:%q", kw))
	}
	kwQuery := kwParts[0]
	if len(kwParts) > 1 {
		kwQuery = "(" + strings.Join(kwParts, " OR ") + ")"
	}

	return catQuery + " AND " + kwQuery
}

func buildURL(query string) string {
	params := url.Values{}
	params.Set("search_query", query)
	params.Set("start", "0")
	params.Set("max_results", fmt.Sprint(maxResults))
	params.Set("sortBy", "submittedDate")
	params.Set("sortOrder", "descending")
	return apiURL + "?" + params.Encode()
}

func collapseWhitespace(s string) string {
	return strings.TrimSpace(whitespaceExpr.ReplaceAllString(s, " "))
}
