package tickets

import (
	"context"
	"fmt"

	"github.com/google/go-github/v53/github"
	"golang.org/x/oauth2"

	"listradar/internal/ports"
)

// GitHubClient implements ports.TicketClient on a repository's issue
// tracker.
type GitHubClient struct {
	client *github.Client
	owner  string
	repo   string
}

var _ ports.TicketClient = (*GitHubClient)(nil)

// NewGitHubClient wires an authenticated issues client for owner/repo.
func NewGitHubClient(token, owner, repo string) *GitHubClient {
	client := github.NewClient(nil)
	if token != "" {
		ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
		client = github.NewClient(oauth2.NewClient(context.Background(), ts))
	}
	return &GitHubClient{client: client, owner: owner, repo: repo}
}

// ListTickets returns open issues carrying all the given labels.
func (g *GitHubClient) ListTickets(ctx context.Context, labels []string) ([]ports.Ticket, error) {
	issues, _, err := g.client.Issues.ListByRepo(ctx, g.owner, g.repo, &github.IssueListByRepoOptions{
		State:  "open",
		Labels: labels,
		ListOptions: github.ListOptions{
			PerPage: 100,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("list issues %s/%s: %w", g.owner, g.repo, err)
	}

	result := make([]ports.Ticket, 0, len(issues))
	for _, issue := range issues {
		result = append(result, ports.Ticket{
			Title: issue.GetTitle(),
			Body:  issue.GetBody(),
		})
	}
	return result, nil
}

// CreateTicket files one issue and returns its number and URL.
func (g *GitHubClient) CreateTicket(ctx context.Context, title, body string, labels []string) (ports.CreatedTicket, error) {
	issue, _, err := g.client.Issues.Create(ctx, g.owner, g.repo, &github.IssueRequest{
		Title:  github.String(title),
		Body:   github.String(body),
		Labels: &labels,
	})
	if err != nil {
		return ports.CreatedTicket{}, fmt.Errorf("create issue %s/%s: %w", g.owner, g.repo, err)
	}

	return ports.CreatedTicket{
		ID:  issue.GetNumber(),
		URL: issue.GetHTMLURL(),
	}, nil
}
