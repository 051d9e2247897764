package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/solaria-labs/herald/internal/journal"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Journal string
}

// JournalDelivery is one delivery row in journal output.
type JournalDelivery struct {
	Seq         int64  `json:"seq"`
	EventID     string `json:"eventId"`
	Type        string `json:"type"`
	Source      string `json:"source"`
	Disposition string `json:"disposition,omitempty"`
	Reason      string `json:"reason,omitempty"`
	OutboundID  string `json:"outboundId,omitempty"`
	PayloadHash string `json:"payloadHash,omitempty"`
}

// JournalReport is the JSON payload for journal output.
type JournalReport struct {
	Path       string            `json:"path"`
	Deliveries []JournalDelivery `json:"deliveries"`
	Stats      map[string]int    `json:"stats"`
}

// NewJournalCommand creates the journal command.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List journaled deliveries and outcomes",
		Long: `List every journaled delivery in order with its outcome.

Deliveries print oldest first, the order the hub handed them to the
extension. The summary groups outcomes by disposition.

Example:
  herald journal --journal ./herald.db
  herald journal --journal ./herald.db --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Journal, "journal", "", "path to the journal database")

	return cmd
}

// openExistingJournal resolves the journal path (flag, then HERALD_JOURNAL)
// and opens it. Refuses to create a fresh database: an empty journal on a
// mistyped path reads as "no deliveries", which hides the mistake.
func openExistingJournal(flagPath string, rootOpts *RootOptions) (*journal.Journal, string, error) {
	path := flagPath
	if path == "" && rootOpts.Config != nil {
		path = rootOpts.Config.JournalPath
	}
	if path == "" {
		return nil, "", NewExitError(ExitCommandError, "no journal: pass --journal or set HERALD_JOURNAL")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, "", WrapExitError(ExitCommandError, fmt.Sprintf("journal %s not found", path), err)
	}

	j, err := journal.Open(path)
	if err != nil {
		return nil, "", WrapExitError(ExitCommandError, "failed to open journal", err)
	}
	return j, path, nil
}

func runJournal(opts *JournalOptions, cmd *cobra.Command) error {
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

	ctx := cmd.Context()
	deliveries, err := j.ReadDeliveries(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal", err)
	}
	stats, err := j.Stats(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read journal stats", err)
	}

	report := JournalReport{
		Path:       path,
		Deliveries: make([]JournalDelivery, 0, len(deliveries)),
		Stats:      stats,
	}
	for _, d := range deliveries {
		jd := JournalDelivery{
			Seq:     d.Entry.Seq,
			EventID: d.Entry.Event.ID,
			Type:    string(d.Entry.Event.Type),
			Source:  string(d.Entry.Event.Source),
		}
		if d.Outcome != nil {
			jd.Disposition = d.Outcome.Disposition
			jd.Reason = d.Outcome.Reason
			jd.PayloadHash = d.Outcome.PayloadHash
			if d.Outcome.Outbound != nil {
				jd.OutboundID = d.Outcome.Outbound.ID
			}
		}
		report.Deliveries = append(report.Deliveries, jd)
	}

	if formatter.Format == "json" {
		return formatter.Success(report)
	}

	for _, jd := range report.Deliveries {
		disposition := jd.Disposition
		if disposition == "" {
			disposition = "(no outcome)"
		}
		line := fmt.Sprintf("#%-4d %s %s/%s -> %s", jd.Seq, jd.EventID, jd.Type, jd.Source, disposition)
		if jd.Reason != "" {
			line += fmt.Sprintf(" (%s)", jd.Reason)
		}
		if jd.OutboundID != "" {
			line += fmt.Sprintf(" outbound=%s", jd.OutboundID)
		}
		fmt.Fprintln(formatter.Writer, line)
	}

	fmt.Fprintf(formatter.Writer, "\n%d deliveries", len(report.Deliveries))
	for _, disposition := range []string{"dispatched", "dropped", "handled", "ignored"} {
		if n, ok := report.Stats[disposition]; ok {
			fmt.Fprintf(formatter.Writer, ", %d %s", n, disposition)
		}
	}
	fmt.Fprintln(formatter.Writer)
	return nil
}
