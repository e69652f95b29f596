package filter

import (
	"log/slog"
	"strings"

	"listradar/internal/config"
	"listradar/internal/domain"
)

// AllKeywords collects every keyword configured across all source sections
// (GitHub topics count as keywords), lowercased and deduplicated,
// preserving first-seen order.
func AllKeywords(sources config.SourcesConfig) []string {
	var raw []string
	if sources.GitHub != nil {
		raw = append(raw, sources.GitHub.Topics...)
	}
	if sources.Arxiv != nil {
		raw = append(raw, sources.Arxiv.Keywords...)
	}
	if sources.Blogs != nil {
		raw = append(raw, sources.Blogs.Keywords...)
	}
	if sources.WebPages != nil {
		raw = append(raw, sources.WebPages.Keywords...)
	}

	seen := make(map[string]struct{}, len(raw))
	keywords := make([]string, 0, len(raw))
	for _, kw := range raw {
		kw = strings.ToLower(kw)
		if _, ok := seen[kw]; ok {
			continue
		}
		seen[kw] = struct{}{}
		keywords = append(keywords, kw)
	}
	return keywords
}

// MatchesAny reports whether text contains at least one keyword as a
// case-insensitive substring. Deliberately permissive: "go" matches
// "gopher". Recall over precision, a human reviews every ticket.
func MatchesAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ByKeywords keeps candidates whose title, description, or topic tags match
// at least one configured keyword, preserving order. With no keywords
// configured it is the identity: absence of keywords is not "match nothing".
func ByKeywords(candidates []domain.Candidate, sources config.SourcesConfig, logger *slog.Logger) []domain.Candidate {
	keywords := AllKeywords(sources)

	if len(keywords) == 0 {
		if logger != nil {
			logger.Info("no keywords configured, passing all candidates through")
		}
		return candidates
	}

	filtered := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		searchText := c.Title + " " + c.Description + " " + strings.Join(c.Metadata.Topics, " ")
		if MatchesAny(searchText, keywords) {
			filtered = append(filtered, c)
		}
	}

	if logger != nil {
		logger.Info("keyword filter done", "in", len(candidates), "out", len(filtered))
	}
	return filtered
}
