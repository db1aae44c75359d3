package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bainos/nighteye/internal/engine"
	"github.com/bainos/nighteye/internal/harness"
	"github.com/bainos/nighteye/internal/journal"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Scenario string // fixture source (config + world)
	Session  string // optional - specific session only
}

// Divergence is one replayed event whose state snapshot differs from
// the journaled one.
type Divergence struct {
	Seq      int64  `json:"seq"`
	Kind     string `json:"kind"`
	Field    string `json:"field"`
	Recorded string `json:"recorded"`
	Replayed string `json:"replayed"`
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string       `json:"session"`
	Events        int          `json:"events"`
	Deterministic bool         `json:"deterministic"`
	Divergences   []Divergence `json:"divergences,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay the event journal and verify determinism",
		Long: `Replay journaled sessions through a fresh engine and compare every
transition against the recorded snapshots.

The scenario file supplies the detection config and world fixture the
session was recorded with. Frame and desync events carry their world
observations in the journal, so only spell forms need to match.

Only the tracked state (active, last event, pending window) is compared:
render delivery is at-least-once and depends on the host renderer, which
is not part of the journal.

Exit codes:
  0 - All sessions replayed deterministically
  1 - Divergence detected
  2 - Command error (database not found, etc.)

Examples:
  nighteye replay --db ./nighteye.db --scenario ./scenarios/toggle-on.yaml
  nighteye replay --db ./nighteye.db --scenario s.yaml --session golden-toggle-on
  nighteye replay --db ./nighteye.db --scenario s.yaml --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to journal database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Scenario, "scenario", "", "scenario file supplying config and world fixture (required)")
	_ = cmd.MarkFlagRequired("scenario")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay a specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := context.Background()

	scenario, err := harness.LoadScenario(opts.Scenario)
	if err != nil {
		return WrapExitError(ExitCommandError, "load scenario", err)
	}

	store, err := journal.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "open journal database", err)
	}
	defer store.Close()

	var sessions []string
	if opts.Session != "" {
		sessions = []string{opts.Session}
	} else {
		sessions, err = store.Sessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "list sessions", err)
		}
	}

	if len(sessions) == 0 {
		if opts.Format == "json" {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(ReplayResult{
				Sessions:         []ReplaySessionResult{},
				AllDeterministic: true,
			})
		}
		fmt.Fprintln(cmd.OutOrStdout(), "No sessions found in journal.")
		return nil
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(sessions)),
		TotalSessions:    len(sessions),
		AllDeterministic: true,
	}

	for _, session := range sessions {
		sr, err := replaySession(ctx, store, scenario, session)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("replay session %s", session), err)
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
			return err
		}
	} else {
		outputReplayText(cmd, result, opts.Verbose)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "replay diverged from journal")
	}
	return nil
}

// replaySession feeds the journaled events of one session through a
// fresh engine and compares the tracked state after every step.
func replaySession(ctx context.Context, store *journal.Store, scenario *harness.Scenario, session string) (ReplaySessionResult, error) {
	entries, err := store.ReadSession(ctx, session)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	cfg, err := harness.BuildConfig(scenario.Config)
	if err != nil {
		return ReplaySessionResult{}, err
	}
	world, err := harness.BuildWorld(scenario.World)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	eng := engine.New(cfg, world, ackRenderer{}, engine.WithSession(session))

	sr := ReplaySessionResult{
		Session:       session,
		Events:        len(entries),
		Deterministic: true,
	}

	for _, entry := range entries {
		ev, err := engine.DecodeEvent(entry.Kind, entry.Payload)
		if err != nil {
			return ReplaySessionResult{}, fmt.Errorf("decode seq %d: %w", entry.Seq, err)
		}
		if err := eng.Step(ctx, ev); err != nil {
			return ReplaySessionResult{}, fmt.Errorf("step seq %d: %w", entry.Seq, err)
		}

		st := eng.State()
		diverge := func(field, recorded, replayed string) {
			sr.Deterministic = false
			sr.Divergences = append(sr.Divergences, Divergence{
				Seq:      entry.Seq,
				Kind:     string(entry.Kind),
				Field:    field,
				Recorded: recorded,
				Replayed: replayed,
			})
		}
		if st.IsActive != entry.Result.IsActive {
			diverge("is_active", fmt.Sprint(entry.Result.IsActive), fmt.Sprint(st.IsActive))
		}
		if st.LastEvent != entry.Result.LastEvent {
			diverge("last_event", entry.Result.LastEvent.String(), st.LastEvent.String())
		}
		if eng.Pending() != entry.Result.Pending {
			diverge("pending", entry.Result.Pending.String(), eng.Pending().String())
		}
	}
	return sr, nil
}

// ackRenderer acknowledges every push. Replay verifies state
// transitions, not render delivery.
type ackRenderer struct{}

func (ackRenderer) SetParameter(file, name string, value bool) bool { return true }

func outputReplayText(cmd *cobra.Command, result ReplayResult, verbose bool) {
	w := cmd.OutOrStdout()
	for _, sr := range result.Sessions {
		status := "deterministic"
		if !sr.Deterministic {
			status = "DIVERGED"
		}
		fmt.Fprintf(w, "%s  %d events  %s\n", sr.Session, sr.Events, status)
		for _, d := range sr.Divergences {
			fmt.Fprintf(w, "    seq %d (%s): %s recorded=%s replayed=%s\n",
				d.Seq, d.Kind, d.Field, d.Recorded, d.Replayed)
		}
	}
	if result.AllDeterministic {
		fmt.Fprintf(w, "\n%d session(s) replayed deterministically\n", result.TotalSessions)
	}
}
