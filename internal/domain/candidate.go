package domain

// Source tags the origin kind of a candidate.
type Source string

const (
	SourceGitHub  Source = "github"
	SourceArxiv   Source = "arxiv"
	SourceBlog    Source = "blog"
	SourceWebPage Source = "web_page"
)

// Candidate is a discovered resource awaiting filtering and classification.
// URL is the sole identity key: two candidates with equal case-insensitive
// URLs are the same item.
type Candidate struct {
	URL         string
	Title       string
	Description string
	Source      Source
	Metadata    Metadata
}

// Metadata carries source-specific signals. Every field is optional;
// absence means "unknown", not zero. Stars is a pointer so that a repo
// with zero stars still renders in the issue body.
type Metadata struct {
	Stars       *int
	Language    string
	Topics      []string
	Authors     []string
	PublishedAt string
	FeedName    string
	PageName    string
}

// ClassifiedCandidate is a Candidate that cleared the relevance threshold,
// enriched with the model's assessment.
type ClassifiedCandidate struct {
	Candidate
	RelevanceScore    int
	SuggestedCategory string
	SuggestedTags     []string
	Reasoning         string
}

// Result summarizes a single pipeline run.
type Result struct {
	CandidatesFound    int
	CandidatesFiltered int
	IssuesCreated      int
}
