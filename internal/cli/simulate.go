package cli

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"

	"github.com/bainos/nighteye/internal/engine"
	"github.com/bainos/nighteye/internal/harness"
	"github.com/bainos/nighteye/internal/journal"
)

// SimulateOptions holds flags for the simulate command.
type SimulateOptions struct {
	*RootOptions
	Database string // optional journal output
	Filter   string // scenario name glob
}

// ScenarioResult holds the outcome of one scenario.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Steps  int      `json:"steps"`
	Pushes []bool   `json:"pushes"`
	Errors []string `json:"errors,omitempty"`
}

// SimulateResult holds the overall simulate outcome.
type SimulateResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewSimulateCommand creates the simulate command.
func NewSimulateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SimulateOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "simulate <scenario.yaml|dir>...",
		Short: "Run scenarios against a fresh engine",
		Long: `Run YAML scenarios against a fresh engine wired to fake host ports.

Each scenario's assertions are evaluated; with --db, every processed
event is journaled so it can later be replayed and traced.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (unreadable scenario, broken fixture, etc.)

Examples:
  nighteye simulate ./scenarios
  nighteye simulate ./scenarios/toggle-on.yaml --db ./nighteye.db
  nighteye simulate ./scenarios --filter "toggle-*" --format json`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSimulate(opts, args, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "journal database to record events into")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by name glob")

	return cmd
}

func runSimulate(opts *SimulateOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	paths, err := collectScenarioFiles(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "collect scenarios", err)
	}
	if len(paths) == 0 {
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	var recorder engine.Recorder
	if opts.Database != "" {
		store, err := journal.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "open journal database", err)
		}
		defer store.Close()
		recorder = store
	}

	result := SimulateResult{}
	for _, path := range paths {
		scenario, err := harness.LoadScenario(path)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("load %s", path), err)
		}
		if opts.Filter != "" {
			if ok, _ := filepath.Match(opts.Filter, scenario.Name); !ok {
				continue
			}
		}

		formatter.VerboseLog("Running scenario %s (%s)", scenario.Name, path)
		run, err := harness.RunRecorded(scenario, recorder)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("run %s", scenario.Name), err)
		}

		result.Scenarios = append(result.Scenarios, ScenarioResult{
			Name:   scenario.Name,
			Pass:   run.Pass,
			Steps:  len(run.Trace),
			Pushes: run.Pushes,
			Errors: run.Errors,
		})
		result.Total++
		if run.Pass {
			result.Passed++
		} else {
			result.Failed++
		}
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
			return err
		}
	} else {
		outputSimulateText(formatter, result)
	}

	if result.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d scenarios failed", result.Failed, result.Total))
	}
	return nil
}

func outputSimulateText(formatter *OutputFormatter, result SimulateResult) {
	for _, sc := range result.Scenarios {
		status := "PASS"
		if !sc.Pass {
			status = "FAIL"
		}
		fmt.Fprintf(formatter.Writer, "%s  %s (%d steps, %d pushes)\n", status, sc.Name, sc.Steps, len(sc.Pushes))
		for _, e := range sc.Errors {
			fmt.Fprintf(formatter.Writer, "      %s\n", e)
		}
	}
	fmt.Fprintf(formatter.Writer, "\n%d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
}

// collectScenarioFiles expands files and directories into a sorted,
// de-duplicated list of scenario YAML paths.
func collectScenarioFiles(args []string) ([]string, error) {
	seen := map[string]bool{}
	var paths []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}

	for _, arg := range args {
		matches, err := filepath.Glob(filepath.Join(arg, "*.yaml"))
		if err != nil {
			return nil, err
		}
		if len(matches) > 0 {
			for _, m := range matches {
				add(m)
			}
			continue
		}
		add(arg)
	}
	sort.Strings(paths)
	return paths, nil
}
