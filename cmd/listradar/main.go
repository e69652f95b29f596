package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"listradar/internal/app"
	"listradar/internal/config"
	"listradar/internal/logging"
)

var (
	configPath string
	dryRun     bool
	watch      bool
)

var rootCmd = &cobra.Command{
	Use:   "listradar",
	Short: "Scheduled content radar for awesome-list curation",
	Long: `listradar collects candidate resources (repositories, papers, blog posts,
web-page links), filters them against the curated list, scores relevance with
an LLM, and files review issues for the survivors.`,
	SilenceUsage: true,
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Execute the radar pipeline",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		logger := logging.New(cfg.Logging.Level)
		application := app.New(cfg, dryRun, logger)

		ctx := cmd.Context()
		if watch {
			return application.Watch(ctx)
		}

		result, err := application.RunOnce(ctx)
		if err != nil {
			return err
		}

		fmt.Printf("candidates_found=%d\n", result.CandidatesFound)
		fmt.Printf("candidates_filtered=%d\n", result.CandidatesFiltered)
		fmt.Printf("issues_created=%d\n", result.IssuesCreated)
		return nil
	},
}

func init() {
	runCmd.Flags().StringVarP(&configPath, "config", "c", "radar.yml", "path to the radar config file")
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "compute tickets without creating them")
	runCmd.Flags().BoolVar(&watch, "watch", false, "keep running on the configured cron schedule")
	rootCmd.AddCommand(runCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
