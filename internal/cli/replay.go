package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solaria-labs/herald/internal/harness"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Journal string
	AppID   string
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Re-run journaled deliveries and verify outcomes",
		Long: `Re-run every journaled delivery through a fresh extension and compare
the new outcomes against the stored ones.

Each journal entry carries the snapshots the original delivery was judged
by, so replay reproduces the exact decision inputs. Any divergence in
disposition, drop reason, or outbound payload hash means the pipeline is
not deterministic — or the journal was written by a different build.

Example:
  herald replay --journal ./herald.db
  herald replay --journal ./herald.db --app-id com.example.app`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal database")
	cmd.Flags().StringVar(&opts.AppID, "app-id", "", "application identifier the original run used")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	j, path, err := openExistingJournal(opts.Journal, opts.RootOptions)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := j.Close(); closeErr != nil {
			slog.Error("error closing journal", "error", closeErr)
		}
	}()

	appID := resolveAppID(opts.AppID, opts.RootOptions)
	formatter.VerboseLog("Replaying %s with app id %s", path, appID)

	report, err := harness.Replay(cmd.Context(), j, appID)
	if err != nil {
		return WrapExitError(ExitCommandError, "replay failed", err)
	}

	if formatter.Format == "json" {
		if err := formatter.Success(report); err != nil {
			return err
		}
	} else {
		printReplayText(formatter, report)
	}

	if !report.Clean() {
		return NewExitError(ExitFailure, fmt.Sprintf("replay diverged on %d deliveries", len(report.Divergences)))
	}
	return nil
}

func printReplayText(formatter *OutputFormatter, report *harness.ReplayReport) {
	w := formatter.Writer

	fmt.Fprintf(w, "%d journaled, %d compared, %d without stored outcome\n",
		report.Entries, report.Compared, report.Skipped)

	if report.Clean() {
		fmt.Fprintln(w, "✓ replay reproduced every stored outcome")
		return
	}

	fmt.Fprintf(w, "✗ %d divergence(s)\n", len(report.Divergences))
	for _, d := range report.Divergences {
		fmt.Fprintf(w, "  %s %s: stored %q, replayed %q\n", d.EventID, d.Field, d.Stored, d.Replayed)
	}
}
