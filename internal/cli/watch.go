package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ariel-frischer/versiontracker/internal/output"
	"github.com/ariel-frischer/versiontracker/internal/watcher"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Record feat:/fix: commits as they are made",
	Long: `Watch the repository's HEAD reflog and record every new commit whose
subject starts with "feat:" or "fix:". Runs until interrupted.

Filesystem notifications trigger a pass immediately; the reflog is also
polled every watch.poll_interval in case notifications are missed.`,
	Example: `  vtrack watch
  vtrack watch --log-level debug`,
	Args: noArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.GroupID = GroupAutomation
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	repo, err := a.requireRepo()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine := a.engine()
	if _, err := engine.EnsureInitialized(ctx); err != nil {
		return err
	}

	passErrs := make(chan error, 16)
	w, err := a.watcher(repo, engine, a.journal(), watcher.WithErrorHandler(func(err error) {
		select {
		case passErrs <- err:
		default:
		}
	}))
	if err != nil {
		return err
	}

	if err := w.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s for commits (Ctrl+C to stop)\n", repo.Root())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		<-gctx.Done()
		return w.Close()
	})
	g.Go(func() error {
		return reportPassErrors(gctx, cmd, passErrs)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Stopped watching.")
	return nil
}

// reportPassErrors prints background pass failures until ctx ends. The
// watcher keeps running after a failed pass.
func reportPassErrors(ctx context.Context, cmd *cobra.Command, errs <-chan error) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case err := <-errs:
			output.PrintWarning(cmd.ErrOrStderr(), "%v", err)
		}
	}
}
