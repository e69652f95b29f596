package ports

import (
	"context"
	"time"

	"listradar/internal/domain"
)

// Collector pulls candidates from one upstream source. Implementations
// swallow upstream failures internally (logging them) and return whatever
// they managed to gather, so a dead source never aborts a run.
type Collector interface {
	Collect(ctx context.Context) []domain.Candidate
}

// ListReader reads the curated list's raw text.
type ListReader interface {
	ReadList(path string) (string, error)
}

// ChatClient sends a single system+user prompt to an LLM and returns the
// first text content block of the response (empty string if none).
type ChatClient interface {
	Complete(ctx context.Context, model, system, user string) (string, error)
}

// Ticket is an existing tracker item, as much of it as idempotency needs.
type Ticket struct {
	Title string
	Body  string
}

// CreatedTicket identifies a ticket that was just filed.
type CreatedTicket struct {
	ID  int
	URL string
}

// TicketClient lists and creates review tickets. ListTickets is
// best-effort for callers; CreateTicket files exactly one ticket per call.
type TicketClient interface {
	ListTickets(ctx context.Context, labels []string) ([]Ticket, error)
	CreateTicket(ctx context.Context, title, body string, labels []string) (CreatedTicket, error)
}

// Notifier publishes a post-run digest to an outbound channel.
type Notifier interface {
	PublishDigest(ctx context.Context, digest string) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
