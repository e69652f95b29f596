package feeds

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"
	"golang.org/x/sync/errgroup"

	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/filter"
	"listradar/internal/ports"
)

const maxDescriptionLen = 1000

// Collector fetches the configured RSS/Atom feeds and turns their items
// into blog candidates.
type Collector struct {
	client *http.Client
	cfg    config.BlogsSourceConfig
	logger *slog.Logger
}

var _ ports.Collector = (*Collector)(nil)

// NewCollector wires an HTTP client; a nil client gets a 20s timeout
// default.
func NewCollector(client *http.Client, cfg config.BlogsSourceConfig, logger *slog.Logger) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Collector{client: client, cfg: cfg, logger: logger}
}

// Collect fetches all feeds concurrently and waits for every fetch to
// settle. Each fetch swallows its own failure, so one dead feed never
// aborts its siblings; results keep the configured feed order.
func (c *Collector) Collect(ctx context.Context) []domain.Candidate {
	perFeed := make([][]domain.Candidate, len(c.cfg.Feeds))

	var g errgroup.Group
	for i, feedURL := range c.cfg.Feeds {
		i, feedURL := i, feedURL
		g.Go(func() error {
			parser := gofeed.NewParser()
			parser.Client = c.client

			feed, err := parser.ParseURLWithContext(feedURL, ctx)
			if err != nil {
				if c.logger != nil {
					c.logger.Warn("feed fetch failed", "feed", feedURL, "error", err)
				}
				return nil
			}
			perFeed[i] = c.itemsToCandidates(feed)
			return nil
		})
	}
	_ = g.Wait()

	var candidates []domain.Candidate
	for _, batch := range perFeed {
		candidates = append(candidates, batch...)
	}
	return candidates
}

func (c *Collector) itemsToCandidates(feed *gofeed.Feed) []domain.Candidate {
	candidates := make([]domain.Candidate, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		summary := item.Description
		if summary == "" {
			summary = item.Content
		}

		if len(c.cfg.Keywords) > 0 && !filter.MatchesAny(item.Title+" "+summary, c.cfg.Keywords) {
			continue
		}

		if len(summary) > maxDescriptionLen {
			summary = summary[:maxDescriptionLen]
		}

		meta := domain.Metadata{
			PublishedAt: item.Published,
			FeedName:    feed.Title,
		}
		for _, person := range item.Authors {
			if person != nil && person.Name != "" {
				meta.Authors = append(meta.Authors, person.Name)
			}
		}

		candidates = append(candidates, domain.Candidate{
			URL:         item.Link,
			Title:       item.Title,
			Description: summary,
			Source:      domain.SourceBlog,
			Metadata:    meta,
		})
	}
	return candidates
}
