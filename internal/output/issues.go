package output

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/ports"
)

// Writer files classified candidates as review tickets.
type Writer struct {
	tickets ports.TicketClient
	logger  *slog.Logger
}

// NewWriter wires the ticket client.
func NewWriter(tickets ports.TicketClient, logger *slog.Logger) *Writer {
	return &Writer{tickets: tickets, logger: logger}
}

// Create files one ticket per classified candidate and returns how many
// were created (or, in dry-run mode, would have been).
//
// Idempotency: a candidate whose URL already appears in any existing open
// ticket's body (case-insensitive substring) is skipped. Listing existing
// tickets is best-effort: on failure the run proceeds as if none exist,
// preferring a possible duplicate over silently creating nothing.
func (w *Writer) Create(ctx context.Context, classified []domain.ClassifiedCandidate, cfg config.Config, dryRun bool) int {
	if len(classified) == 0 {
		return 0
	}

	labels := cfg.IssueTemplate.Labels
	existing, err := w.tickets.ListTickets(ctx, labels)
	if err != nil {
		if w.logger != nil {
			w.logger.Warn("cannot list existing tickets, proceeding without idempotency", "error", err)
		}
		existing = nil
	}

	created := 0
	for _, candidate := range classified {
		if tracked(existing, candidate.URL) {
			if w.logger != nil {
				w.logger.Info("candidate already tracked, skipping", "url", candidate.URL)
			}
			continue
		}

		title := BuildTitle(candidate)
		body := BuildBody(candidate)

		if dryRun {
			if w.logger != nil {
				w.logger.Info("dry-run: would create ticket", "title", title, "url", candidate.URL)
			}
			created++
			continue
		}

		ticket, err := w.tickets.CreateTicket(ctx, title, body, labels)
		if err != nil {
			if w.logger != nil {
				w.logger.Warn("ticket creation failed", "title", title, "error", err)
			}
			continue
		}

		if w.logger != nil {
			w.logger.Info("ticket created", "id", ticket.ID, "url", ticket.URL)
		}
		created++
	}

	return created
}

func tracked(existing []ports.Ticket, url string) bool {
	needle := strings.ToLower(url)
	for _, t := range existing {
		if strings.Contains(strings.ToLower(t.Body), needle) {
			return true
		}
	}
	return false
}

// escapeTableCell keeps arbitrary values from corrupting the markdown
// table: literal pipes are escaped and newlines collapsed to spaces.
func escapeTableCell(value string) string {
	value = strings.ReplaceAll(value, "|", `\|`)
	value = strings.ReplaceAll(value, "\r\n", " ")
	value = strings.ReplaceAll(value, "\n", " ")
	return value
}

// BuildTitle computes the canonical ticket title for a candidate.
func BuildTitle(c domain.ClassifiedCandidate) string {
	return "[Radar] " + escapeTableCell(c.Title)
}

// BuildBody renders the structured ticket body. The URL row's second cell
// is exactly the candidate URL: the idempotency check of future runs
// depends on it surviving in created tickets verbatim.
func BuildBody(c domain.ClassifiedCandidate) string {
	var b strings.Builder

	b.WriteString("| Field | Value |\n")
	b.WriteString("| --- | --- |\n")
	fmt.Fprintf(&b, "| **URL** | %s |\n", c.URL)
	fmt.Fprintf(&b, "| **Source** | %s |\n", c.Source)
	fmt.Fprintf(&b, "| **Relevance Score** | %d/100 |\n", c.RelevanceScore)
	fmt.Fprintf(&b, "| **Suggested Category** | %s |\n", escapeTableCell(c.SuggestedCategory))
	if c.Metadata.Stars != nil {
		fmt.Fprintf(&b, "| **Stars** | %d |\n", *c.Metadata.Stars)
	}
	if c.Metadata.Language != "" {
		fmt.Fprintf(&b, "| **Language** | %s |\n", escapeTableCell(c.Metadata.Language))
	}
	if len(c.SuggestedTags) > 0 {
		tags := make([]string, 0, len(c.SuggestedTags))
		for _, tag := range c.SuggestedTags {
			tags = append(tags, "`"+escapeTableCell(tag)+"`")
		}
		fmt.Fprintf(&b, "| **Suggested Tags** | %s |\n", strings.Join(tags, ", "))
	}

	b.WriteString("\n### Description\n\n")
	fmt.Fprintf(&b, "```\n%s\n```\n", c.Description)

	b.WriteString("\n### Reasoning\n\n")
	fmt.Fprintf(&b, "```\n%s\n```\n", c.Reasoning)

	b.WriteString("\n### Suggested Entry\n\n")
	fmt.Fprintf(&b, "- [%s](%s)\n", escapeTableCell(c.Title), c.URL)

	return b.String()
}
