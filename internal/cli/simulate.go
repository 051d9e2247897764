package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/solaria-labs/herald/internal/harness"
	"github.com/solaria-labs/herald/internal/journal"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Journal string
	AppID   string
}

// SimulateResult is the JSON payload for simulate output.
type SimulateResult struct {
	Scenario   string               `json:"scenario"`
	Pass       bool                 `json:"pass"`
	Dispatched int                  `json:"dispatched"`
	Paused     bool                 `json:"paused"`
	Held       int                  `json:"held"`
	Errors     []string             `json:"errors,omitempty"`
	Trace      []harness.TraceEvent `json:"trace"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml>",
		Short: "Run a scenario through the hub and extension",
		Long: `Run a scenario file against a fresh event hub and extension.

Each step publishes shared state or enqueues an event, then the hub drains.
The full delivery trace prints afterwards, and the scenario's expect block
(when present) decides pass or fail.

Example:
  herald simulate scenarios/push-roundtrip.yaml
  herald simulate scenarios/privacy-pause.yaml --journal ./herald.db`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "journal deliveries to this SQLite database")
	cmd.Flags().StringVar(&opts.AppID, "app-id", "", "application identifier for push payloads")

	return cmd
}

func runSimulate(opts *SimulateOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	scenario, err := harness.LoadScenario(path)
	if err != nil {
		_ = formatter.Error("E100", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	formatter.VerboseLog("Loaded scenario %q with %d step(s)", scenario.Name, len(scenario.Steps))

	runOpts := harness.RunOptions{AppID: resolveAppID(opts.AppID, opts.RootOptions)}

	// Journal path: flag wins, then HERALD_JOURNAL, then no journal.
	journalPath := opts.Journal
	if journalPath == "" && opts.Config != nil {
		journalPath = opts.Config.JournalPath
	}
	if journalPath != "" {
		j, err := journal.Open(journalPath)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open journal", err)
		}
		defer func() {
			if closeErr := j.Close(); closeErr != nil {
				slog.Error("error closing journal", "error", closeErr)
			}
		}()
		runOpts.Observer = j.Observer()
		formatter.VerboseLog("Journaling deliveries to %s", journalPath)
	}

	result := harness.RunWith(scenario, runOpts)
	return outputSimulateResult(formatter, result)
}

// resolveAppID picks the push payload app identifier: flag, then
// HERALD_APP_ID, then the harness default.
func resolveAppID(flag string, rootOpts *RootOptions) string {
	if flag != "" {
		return flag
	}
	if rootOpts.Config != nil && rootOpts.Config.AppID != "" {
		return rootOpts.Config.AppID
	}
	return harness.DefaultAppID
}

func outputSimulateResult(formatter *OutputFormatter, result *harness.Result) error {
	sr := SimulateResult{
		Scenario:   result.ScenarioName,
		Pass:       result.Pass,
		Dispatched: result.Dispatched,
		Paused:     result.Paused,
		Held:       result.Held,
		Errors:     result.Errors,
		Trace:      result.Trace,
	}

	if formatter.Format == "json" {
		if err := formatter.Success(sr); err != nil {
			return err
		}
	} else {
		printSimulateText(formatter, sr)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, fmt.Sprintf("scenario %q failed with %d error(s)", sr.Scenario, len(sr.Errors)))
	}
	return nil
}

func printSimulateText(formatter *OutputFormatter, sr SimulateResult) {
	w := formatter.Writer

	for _, te := range sr.Trace {
		switch te.Kind {
		case "publish":
			fmt.Fprintf(w, "publish  %-13s v%d %s\n", te.Owner, te.Version, te.Status)
		case "delivery":
			line := fmt.Sprintf("deliver  #%-3d %s %s/%s -> %s",
				te.Seq, te.EventID, te.EventType, te.EventSource, te.Disposition)
			if te.Reason != "" {
				line += fmt.Sprintf(" (%s)", te.Reason)
			}
			if te.OutboundID != "" {
				line += fmt.Sprintf(" outbound=%s", te.OutboundID)
			}
			fmt.Fprintln(w, line)
		}
	}

	fmt.Fprintf(w, "\n%d dispatched, %d held, paused=%v\n", sr.Dispatched, sr.Held, sr.Paused)
	if sr.Pass {
		fmt.Fprintf(w, "✓ %s passed\n", sr.Scenario)
		return
	}
	fmt.Fprintf(w, "✗ %s failed\n", sr.Scenario)
	for _, msg := range sr.Errors {
		fmt.Fprintf(w, "  %s\n", msg)
	}
}
