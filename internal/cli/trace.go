package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bainos/nighteye/internal/journal"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
	Kind     string // optional - filter to one event kind
}

// TraceRow is a single journal entry in the timeline.
type TraceRow struct {
	Seq         int64          `json:"seq"`
	Kind        string         `json:"kind"`
	Payload     map[string]any `json:"payload,omitempty"`
	IsActive    bool           `json:"is_active"`
	LastEvent   string         `json:"last_event"`
	Pending     string         `json:"pending"`
	RenderArmed bool           `json:"render_armed"`
	RenderValue bool           `json:"render_value"`
}

// TraceResult holds the timeline for one session.
type TraceResult struct {
	Session  string     `json:"session"`
	Timeline []TraceRow `json:"timeline"`
	Total    int        `json:"total"`
}

// SessionList is the output when no session is selected.
type SessionList struct {
	Sessions []string `json:"sessions"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show the journaled timeline of a session",
		Long: `Show the event timeline for a journaled session: every processed
input in order with the state snapshot it produced.

Without --session, lists the sessions present in the journal.

Examples:
  nighteye trace --db ./nighteye.db
  nighteye trace --db ./nighteye.db --session golden-toggle-on
  nighteye trace --db ./nighteye.db --session golden-toggle-on --kind frame
  nighteye trace --db ./nighteye.db --session golden-toggle-on --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to trace")
	cmd.Flags().StringVar(&opts.Kind, "kind", "", "filter to one event kind")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	store, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal database", err)
	}
	defer store.Close()

	if opts.Session == "" {
		return listSessions(ctx, store, opts, cmd)
	}

	entries, err := store.ReadSession(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "read session", err)
	}

	result := TraceResult{Session: opts.Session}
	for _, e := range entries {
		if opts.Kind != "" && string(e.Kind) != opts.Kind {
			continue
		}
		result.Timeline = append(result.Timeline, TraceRow{
			Seq:         e.Seq,
			Kind:        string(e.Kind),
			Payload:     e.Payload,
			IsActive:    e.Result.IsActive,
			LastEvent:   e.Result.LastEvent.String(),
			Pending:     e.Result.Pending.String(),
			RenderArmed: e.Result.RenderArmed,
			RenderValue: e.Result.RenderValue,
		})
	}
	result.Total = len(result.Timeline)

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
	}

	w := cmd.OutOrStdout()
	if result.Total == 0 {
		fmt.Fprintf(w, "No events for session %s.\n", opts.Session)
		return nil
	}
	fmt.Fprintf(w, "Session %s (%d events)\n", result.Session, result.Total)
	for _, row := range result.Timeline {
		fmt.Fprintf(w, "%4d  %-12s  active=%-5v last=%-16s pending=%-9s", row.Seq, row.Kind, row.IsActive, row.LastEvent, row.Pending)
		if row.RenderArmed {
			fmt.Fprintf(w, " render->%v", row.RenderValue)
		}
		fmt.Fprintln(w)
	}
	return nil
}

func listSessions(ctx context.Context, store *journal.Store, opts *TraceOptions, cmd *cobra.Command) error {
	sessions, err := store.Sessions(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "list sessions", err)
	}

	if opts.Format == "json" {
		return json.NewEncoder(cmd.OutOrStdout()).Encode(SessionList{Sessions: sessions})
	}

	w := cmd.OutOrStdout()
	if len(sessions) == 0 {
		fmt.Fprintln(w, "No sessions found in journal.")
		return nil
	}
	for _, s := range sessions {
		fmt.Fprintln(w, s)
	}
	return nil
}
