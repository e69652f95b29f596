package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimezone = "UTC"

	githubTokenEnv     = "GITHUB_TOKEN"
	anthropicAPIKeyEnv = "ANTHROPIC_API_KEY"
	telegramTokenEnv   = "TELEGRAM_BOT_TOKEN"
	telegramChatIDEnv  = "TELEGRAM_CHAT_ID"
)

var createdAfterExpr = regexp.MustCompile(`^\d+d$`)

// Config holds the full radar run configuration.
type Config struct {
	Description    string               `yaml:"description"`
	ListFile       string               `yaml:"list_file"`
	Sources        SourcesConfig        `yaml:"sources"`
	Classification ClassificationConfig `yaml:"classification"`
	IssueTemplate  IssueTemplateConfig  `yaml:"issue_template"`
	Repo           RepoConfig           `yaml:"repo"`
	Scheduler      SchedulerConfig      `yaml:"scheduler"`
	Notifications  NotificationConfig   `yaml:"notifications"`
	Logging        LoggingConfig        `yaml:"logging"`
	Auth           AuthConfig           `yaml:"-"`
}

// SourcesConfig groups the optional source sections. A nil section means
// the source is not configured and its collector is never built.
type SourcesConfig struct {
	GitHub   *GitHubSourceConfig   `yaml:"github"`
	Arxiv    *ArxivSourceConfig    `yaml:"arxiv"`
	Blogs    *BlogsSourceConfig    `yaml:"blogs"`
	WebPages *WebPagesSourceConfig `yaml:"web_pages"`
}

// GitHubSourceConfig drives the repository search collector.
type GitHubSourceConfig struct {
	Topics       []string `yaml:"topics"`
	Languages    []string `yaml:"languages"`
	MinStars     int      `yaml:"min_stars"`
	CreatedAfter string   `yaml:"created_after"`
}

// ArxivSourceConfig drives the paper-abstract collector.
type ArxivSourceConfig struct {
	Categories []string `yaml:"categories"`
	Keywords   []string `yaml:"keywords"`
}

// BlogsSourceConfig drives the RSS/Atom feed collector.
type BlogsSourceConfig struct {
	Feeds    []string `yaml:"feeds"`
	Keywords []string `yaml:"keywords"`
}

// WebPagesSourceConfig drives the web-page link-extraction collector.
type WebPagesSourceConfig struct {
	URLs     []string `yaml:"urls"`
	Keywords []string `yaml:"keywords"`
}

// ClassificationConfig bounds the LLM stage.
type ClassificationConfig struct {
	Model           string `yaml:"model"`
	Threshold       int    `yaml:"threshold"`
	MaxIssuesPerRun int    `yaml:"max_issues_per_run"`
}

// IssueTemplateConfig shapes created tickets.
type IssueTemplateConfig struct {
	Labels []string `yaml:"labels"`
}

// RepoConfig names the repository whose issue tracker receives tickets.
type RepoConfig struct {
	Owner string `yaml:"owner"`
	Name  string `yaml:"name"`
}

// SchedulerConfig defines when watch mode runs the pipeline.
type SchedulerConfig struct {
	CronExpression string         `yaml:"cron"`
	Timezone       string         `yaml:"timezone"`
	location       *time.Location `yaml:"-"`
}

// Location resolves the scheduler timezone string to a time.Location.
func (s SchedulerConfig) Location() *time.Location {
	if s.location != nil {
		return s.location
	}
	loc, _ := time.LoadLocation(defaultTimezone)
	return loc
}

// NotificationConfig encapsulates outbound channels.
type NotificationConfig struct {
	Telegram TelegramConfig `yaml:"telegram"`
}

// TelegramConfig wires the optional post-run digest chat.
type TelegramConfig struct {
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}

// LoggingConfig selects the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// AuthConfig carries credentials. Populated from the environment only,
// never from the config file.
type AuthConfig struct {
	GitHubToken     string
	AnthropicAPIKey string
}

// Load reads and validates YAML configuration from path. Any validation
// failure is fatal: the pipeline must not start on a bad config.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	return Parse(raw)
}

// Parse decodes YAML on top of the defaults and validates the result.
func Parse(raw []byte) (Config, error) {
	cfg := defaultConfig()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.applySourceDefaults()
	cfg.applyEnvOverrides()
	cfg.bindTimezone()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first fatal configuration error, if any.
func (c *Config) Validate() error {
	if c.Description == "" {
		return fmt.Errorf("config: description is required")
	}

	s := c.Sources
	if s.GitHub == nil && s.Arxiv == nil && s.Blogs == nil && s.WebPages == nil {
		return fmt.Errorf("config: at least one source must be configured")
	}
	if s.GitHub != nil {
		if len(s.GitHub.Topics) == 0 {
			return fmt.Errorf("config: sources.github.topics must not be empty")
		}
		if s.GitHub.MinStars < 0 {
			return fmt.Errorf("config: sources.github.min_stars must be non-negative")
		}
		if !createdAfterExpr.MatchString(s.GitHub.CreatedAfter) {
			return fmt.Errorf("config: sources.github.created_after %q must match \"Nd\" (e.g. \"30d\")", s.GitHub.CreatedAfter)
		}
	}
	if s.Arxiv != nil {
		if len(s.Arxiv.Categories) == 0 {
			return fmt.Errorf("config: sources.arxiv.categories must not be empty")
		}
		if len(s.Arxiv.Keywords) == 0 {
			return fmt.Errorf("config: sources.arxiv.keywords must not be empty")
		}
	}
	if s.Blogs != nil && len(s.Blogs.Feeds) == 0 {
		return fmt.Errorf("config: sources.blogs.feeds must not be empty")
	}
	if s.WebPages != nil && len(s.WebPages.URLs) == 0 {
		return fmt.Errorf("config: sources.web_pages.urls must not be empty")
	}

	if c.Classification.Threshold < 0 || c.Classification.Threshold > 100 {
		return fmt.Errorf("config: classification.threshold %d must be within [0,100]", c.Classification.Threshold)
	}
	if c.Classification.MaxIssuesPerRun <= 0 {
		return fmt.Errorf("config: classification.max_issues_per_run must be positive")
	}

	if c.Repo.Owner == "" || c.Repo.Name == "" {
		return fmt.Errorf("config: repo.owner and repo.name are required")
	}

	return nil
}

func (c *Config) applySourceDefaults() {
	if c.Sources.GitHub != nil && c.Sources.GitHub.CreatedAfter == "" {
		c.Sources.GitHub.CreatedAfter = "30d"
	}
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(githubTokenEnv); v != "" {
		c.Auth.GitHubToken = v
	}
	if v := os.Getenv(anthropicAPIKeyEnv); v != "" {
		c.Auth.AnthropicAPIKey = v
	}
	if v := os.Getenv(telegramTokenEnv); v != "" {
		c.Notifications.Telegram.BotToken = v
	}
	if v := os.Getenv(telegramChatIDEnv); v != "" {
		c.Notifications.Telegram.ChatID = v
	}
}

func (c *Config) bindTimezone() {
	tz := c.Scheduler.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		loc, _ = time.LoadLocation(defaultTimezone)
	}
	c.Scheduler.location = loc
}

func defaultConfig() Config {
	tz, _ := time.LoadLocation(defaultTimezone)
	return Config{
		ListFile: "README.md",
		Classification: ClassificationConfig{
			Model:           "claude-sonnet-4-6",
			Threshold:       70,
			MaxIssuesPerRun: 5,
		},
		IssueTemplate: IssueTemplateConfig{
			Labels: []string{"radar", "needs-review"},
		},
		Scheduler: SchedulerConfig{
			CronExpression: "0 6 * * *",
			Timezone:       defaultTimezone,
			location:       tz,
		},
		Logging: LoggingConfig{Level: "info"},
	}
}
