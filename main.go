package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"giscus-autogen/bot"
	"giscus-autogen/command"
	"giscus-autogen/config"
	"giscus-autogen/handlers"
	"giscus-autogen/reconciler"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	exitOK        = 0
	exitFailure   = 1
	exitDuplicate = 2
)

var dryRun bool

func main() {
	rootCmd := newRootCmd(os.Stdout)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func newRootCmd(stdout io.Writer) *cobra.Command {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Create a discussion for the newest post once and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOnce(cmd.Context(), stdout, dryRun)
		},
	}
	runCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Resolve everything but do not create the discussion")

	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Run the sync on a cron schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return watch(cmd.Context())
		},
	}
	watchCmd.Flags().String("schedule", "", "Cron spec or descriptor, e.g. @hourly (default from SCHEDULE)")

	botCmd := &cobra.Command{
		Use:   "bot",
		Short: "Run as a Discord bot with /sync and a sync schedule",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot()
		},
	}
	botCmd.Flags().String("schedule", "", "Cron spec or descriptor, e.g. @hourly (default from SCHEDULE)")

	rootCmd := &cobra.Command{
		Use:           "giscus-autogen",
		Short:         "Create a GitHub Discussion for the newest blog post",
		Long:          "Reads the site feed, scrapes the newest post, and creates the GitHub Discussion Giscus would otherwise create on the first comment.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadConfig(); err != nil {
				return err
			}
			if f := cmd.Flags().Lookup("schedule"); f != nil && f.Changed {
				return viper.BindPFlag("schedule", f)
			}
			return nil
		},
		RunE: runCmd.RunE,
	}
	rootCmd.Flags().AddFlagSet(runCmd.Flags())
	rootCmd.AddCommand(runCmd, watchCmd, botCmd)
	return rootCmd
}

// exitCode maps an error to the process exit status. A post that already
// has a discussion exits with its own status so callers can tell it apart
// from a failure.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}
	var dup *reconciler.DuplicateDiscussionError
	if errors.As(err, &dup) {
		return exitDuplicate
	}
	return exitFailure
}

func runOnce(ctx context.Context, stdout io.Writer, dryRun bool) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	stopLogger := startAdminLogger(cfg)
	defer stopLogger()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := newService(cfg).Sync(ctx, reconciler.SyncOptions{DryRun: dryRun})
	if err != nil {
		return err
	}
	if out.DryRun {
		fmt.Fprintf(stdout, "Dry run: would create discussion %q in category %s of %s\n", out.Request.Title, out.Request.CategoryID, cfg.GitHub.Repo())
		fmt.Fprintf(stdout, "Body:\n%s\n", out.Request.Body)
		return nil
	}
	fmt.Fprintf(stdout, "Successfully created new discussion at %s (%s)\n", out.Discussion.URL, out.Discussion.Title)
	return nil
}

func watch(ctx context.Context) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	stopLogger := startAdminLogger(cfg)
	defer stopLogger()

	scheduler, err := bot.NewScheduler(cfg.Schedule, newService(cfg))
	if err != nil {
		return err
	}
	scheduler.Start()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	scheduler.Stop()
	return nil
}

func runBot() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	b, err := bot.NewBot(cfg, newService(cfg))
	if err != nil {
		return err
	}
	return b.Run(handlers.Register, command.AllCommands)
}
