package filter

import (
	"log/slog"
	"regexp"
	"strings"

	"listradar/internal/domain"
	"listradar/internal/ports"
)

// Matches http/https URLs up to whitespace or a markdown link terminator.
var urlExpr = regexp.MustCompile(`https?://[^\s)>\]]+`)

// ExtractURLs pulls every URL-shaped substring out of markdown, stripping
// trailing punctuation and lowercasing for comparison.
func ExtractURLs(markdown string) map[string]struct{} {
	urls := make(map[string]struct{})
	for _, match := range urlExpr.FindAllString(markdown, -1) {
		cleaned := strings.ToLower(strings.TrimRight(match, ".,;:!?"))
		urls[cleaned] = struct{}{}
	}
	return urls
}

// Dedup removes candidates whose URL already appears in the curated list.
// Comparison is case-insensitive exact match of the cleaned URL; no
// normalization of trailing slashes, query parameters, or scheme.
//
// Fail-open: if the list cannot be read, or yields no URLs, all candidates
// pass through. A read failure must never look like "everything is a
// duplicate": a re-proposed item is recoverable by a reviewer, a silently
// dropped one is not.
func Dedup(candidates []domain.Candidate, listFile string, reader ports.ListReader, logger *slog.Logger) []domain.Candidate {
	markdown, err := reader.ReadList(listFile)
	if err != nil {
		if logger != nil {
			logger.Warn("cannot read list file, skipping dedup", "path", listFile, "error", err)
		}
		return candidates
	}

	existing := ExtractURLs(markdown)
	if len(existing) == 0 {
		return candidates
	}

	filtered := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if _, dup := existing[strings.ToLower(c.URL)]; dup {
			continue
		}
		filtered = append(filtered, c)
	}

	if logger != nil {
		logger.Info("dedup done", "in", len(candidates), "out", len(filtered), "existing_urls", len(existing))
	}
	return filtered
}
