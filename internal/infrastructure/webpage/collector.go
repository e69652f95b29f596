package webpage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/filter"
	"listradar/internal/ports"
)

const (
	extractionModel   = "claude-haiku-4-5-20251001"
	maxPageTextLen    = 15000
	maxDescriptionLen = 1000
)

const systemPrompt = `You are an article link extractor. Given the cleaned text of a web page, extract all article or blog post links you can find.

Respond with ONLY a valid JSON array of objects, each with "title" and "url" fields:
[{"title": "Article Title", "url": "https://example.com/article"}]

If no article links are found, respond with an empty array: []`

var whitespaceExpr = regexp.MustCompile(`\s+`)

// link is one extracted article reference, pre-validation.
type link struct {
	Title string
	URL   string
}

// Collector fetches configured web pages and asks an LLM to pick the
// article links out of the cleaned page text.
type Collector struct {
	client *http.Client
	chat   ports.ChatClient
	cfg    config.WebPagesSourceConfig
	logger *slog.Logger
}

var _ ports.Collector = (*Collector)(nil)

// NewCollector wires the HTTP client and the chat client used for link
// extraction.
func NewCollector(client *http.Client, chat ports.ChatClient, cfg config.WebPagesSourceConfig, logger *slog.Logger) *Collector {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Collector{client: client, chat: chat, cfg: cfg, logger: logger}
}

// Collect processes all pages concurrently and waits for every one to
// settle; a failed page contributes nothing and never aborts siblings.
func (c *Collector) Collect(ctx context.Context) []domain.Candidate {
	perPage := make([][]domain.Candidate, len(c.cfg.URLs))

	var g errgroup.Group
	for i, pageURL := range c.cfg.URLs {
		i, pageURL := i, pageURL
		g.Go(func() error {
			candidates, err := c.collectPage(ctx, pageURL)
			if err != nil {
				if c.logger != nil {
					c.logger.Warn("web page processing failed", "page", pageURL, "error", err)
				}
				return nil
			}
			perPage[i] = candidates
			return nil
		})
	}
	_ = g.Wait()

	var candidates []domain.Candidate
	for _, batch := range perPage {
		candidates = append(candidates, batch...)
	}
	return candidates
}

func (c *Collector) collectPage(ctx context.Context, pageURL string) ([]domain.Candidate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	cleaned, err := CleanHTML(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("clean page: %w", err)
	}

	text, err := c.chat.Complete(ctx, extractionModel, systemPrompt,
		"Extract all article/blog post links from this web page content:\n\n"+cleaned)
	if err != nil {
		return nil, fmt.Errorf("extract links: %w", err)
	}

	pageName := pageURL
	if parsed, err := url.Parse(pageURL); err == nil && parsed.Host != "" {
		pageName = parsed.Hostname()
	}

	var candidates []domain.Candidate
	for _, l := range extractLinks(text) {
		resolved := resolveURL(pageURL, l.URL)
		if resolved == "" || l.Title == "" {
			continue
		}

		if len(c.cfg.Keywords) > 0 && !filter.MatchesAny(l.Title+" "+resolved, c.cfg.Keywords) {
			continue
		}

		description := l.Title
		if len(description) > maxDescriptionLen {
			description = description[:maxDescriptionLen]
		}

		candidates = append(candidates, domain.Candidate{
			URL:         resolved,
			Title:       l.Title,
			Description: description,
			Source:      domain.SourceWebPage,
			Metadata: domain.Metadata{
				PageName: pageName,
			},
		})
	}
	return candidates, nil
}

// CleanHTML reduces a page to plain text with anchors rewritten as
// markdown links, boilerplate containers removed, and length capped so the
// extraction prompt stays bounded.
func CleanHTML(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", err
	}

	doc.Find("script, style, nav, footer, header").Remove()

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := strings.TrimSpace(s.Text())
		if text == "" {
			s.Remove()
			return
		}
		s.ReplaceWithHtml(fmt.Sprintf("[%s](%s)", text, href))
	})

	text := strings.TrimSpace(whitespaceExpr.ReplaceAllString(doc.Text(), " "))
	if len(text) > maxPageTextLen {
		text = text[:maxPageTextLen]
	}
	return text, nil
}

// extractLinks finds the first balanced top-level JSON array in the model
// response and keeps entries with string title and url fields. Surrounding
// prose is tolerated; malformed JSON yields no links.
func extractLinks(text string) []link {
	start := strings.IndexByte(text, '[')
	if start == -1 {
		return nil
	}

	depth := 0
	end := -1
	for i := start; i < len(text); i++ {
		switch text[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				end = i
			}
		}
		if end != -1 {
			break
		}
	}
	if end == -1 {
		return nil
	}

	var entries []map[string]any
	if err := json.Unmarshal([]byte(text[start:end+1]), &entries); err != nil {
		return nil
	}

	var links []link
	for _, entry := range entries {
		title, tok := entry["title"].(string)
		u, uok := entry["url"].(string)
		if !tok || !uok {
			continue
		}
		links = append(links, link{Title: title, URL: u})
	}
	return links
}

// resolveURL resolves href against the page URL; a href that cannot be
// parsed is returned as-is.
func resolveURL(base, href string) string {
	baseURL, err := url.Parse(base)
	if err != nil {
		return href
	}
	resolved, err := baseURL.Parse(href)
	if err != nil {
		return href
	}
	return resolved.String()
}
