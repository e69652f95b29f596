package app

import (
	"context"
	"fmt"
	"log/slog"

	"listradar/internal/classify"
	"listradar/internal/config"
	"listradar/internal/domain"
	"listradar/internal/filter"
	"listradar/internal/infrastructure/arxiv"
	"listradar/internal/infrastructure/feeds"
	"listradar/internal/infrastructure/githubsrc"
	"listradar/internal/infrastructure/listfile"
	"listradar/internal/infrastructure/llm"
	"listradar/internal/infrastructure/scheduler"
	"listradar/internal/infrastructure/telegram"
	"listradar/internal/infrastructure/tickets"
	"listradar/internal/infrastructure/webpage"
	"listradar/internal/output"
	"listradar/internal/ports"
	"listradar/internal/usecase"
)

const (
	classifyMaxTokens = 512
	extractMaxTokens  = 4096
)

// Application wires config into collectors, stages, and the pipeline.
type Application struct {
	cfg      config.Config
	dryRun   bool
	pipeline *usecase.Pipeline
	notifier ports.Notifier
	logger   *slog.Logger
}

// New builds a runnable application instance.
func New(cfg config.Config, dryRun bool, logger *slog.Logger) *Application {
	collectors := buildCollectors(cfg, logger)

	classifier := classify.New(
		llm.NewAnthropicClient(cfg.Auth.AnthropicAPIKey, classifyMaxTokens),
		logger.With("component", "classifier"),
	)
	writer := output.NewWriter(
		tickets.NewGitHubClient(cfg.Auth.GitHubToken, cfg.Repo.Owner, cfg.Repo.Name),
		logger.With("component", "output"),
	)

	var notifier ports.Notifier
	if tg := cfg.Notifications.Telegram; tg.BotToken != "" && tg.ChatID != "" {
		notifier = telegram.NewNotifier(tg)
	}

	filterLogger := logger.With("component", "filter")
	listReader := listfile.Reader{}

	pipeline := usecase.NewPipeline(usecase.PipelineDeps{
		Collect: func(ctx context.Context) ([]domain.Candidate, error) {
			var all []domain.Candidate
			for _, collector := range collectors {
				all = append(all, collector.Collect(ctx)...)
			}
			return all, nil
		},
		Filter: func(ctx context.Context, candidates []domain.Candidate) ([]domain.Candidate, error) {
			kept := filter.ByKeywords(candidates, cfg.Sources, filterLogger)
			return filter.Dedup(kept, cfg.ListFile, listReader, filterLogger), nil
		},
		Classify: func(ctx context.Context, candidates []domain.Candidate) ([]domain.ClassifiedCandidate, error) {
			return classifier.Classify(ctx, candidates, cfg), nil
		},
		Output: func(ctx context.Context, classified []domain.ClassifiedCandidate, dryRun bool) (int, error) {
			return writer.Create(ctx, classified, cfg, dryRun), nil
		},
		Logger: logger.With("component", "pipeline"),
	})

	return &Application{
		cfg:      cfg,
		dryRun:   dryRun,
		pipeline: pipeline,
		notifier: notifier,
		logger:   logger,
	}
}

func buildCollectors(cfg config.Config, logger *slog.Logger) []ports.Collector {
	var collectors []ports.Collector

	if src := cfg.Sources.GitHub; src != nil {
		collectors = append(collectors, githubsrc.NewCollector(
			cfg.Auth.GitHubToken, *src, logger.With("component", "source.github")))
	}
	if src := cfg.Sources.Arxiv; src != nil {
		collectors = append(collectors, arxiv.NewCollector(
			nil, *src, logger.With("component", "source.arxiv")))
	}
	if src := cfg.Sources.Blogs; src != nil {
		collectors = append(collectors, feeds.NewCollector(
			nil, *src, logger.With("component", "source.blogs")))
	}
	if src := cfg.Sources.WebPages; src != nil {
		chat := llm.NewAnthropicClient(cfg.Auth.AnthropicAPIKey, extractMaxTokens)
		collectors = append(collectors, webpage.NewCollector(
			nil, chat, *src, logger.With("component", "source.web_pages")))
	}

	return collectors
}

// RunOnce executes a single pipeline pass and publishes the digest.
func (a *Application) RunOnce(ctx context.Context) (domain.Result, error) {
	result, err := a.pipeline.Run(ctx, a.dryRun)
	if err != nil {
		return domain.Result{}, err
	}

	if a.notifier != nil {
		if nErr := a.notifier.PublishDigest(ctx, buildDigest(result, a.dryRun)); nErr != nil {
			a.logger.Warn("digest notification failed", "error", nErr)
		}
	}

	return result, nil
}

// Watch runs the pipeline on the configured cron schedule until ctx is
// cancelled.
func (a *Application) Watch(ctx context.Context) error {
	driver := scheduler.NewCronScheduler(a.cfg.Scheduler.CronExpression, a.cfg.Scheduler.Location())
	runner := usecase.NewScheduler(driver, a.pipeline, a.dryRun, a.logger.With("component", "scheduler"))

	if err := runner.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}

	<-ctx.Done()
	return runner.Stop(context.Background())
}

func buildDigest(result domain.Result, dryRun bool) string {
	mode := ""
	if dryRun {
		mode = " (dry run)"
	}
	return fmt.Sprintf("*Radar run finished%s*\nCandidates found: %d\nAfter filtering: %d\nIssues created: %d",
		mode, result.CandidatesFound, result.CandidatesFiltered, result.IssuesCreated)
}
