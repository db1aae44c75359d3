package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/bainos/nighteye/internal/config"
	"github.com/bainos/nighteye/internal/harness"
)

// ValidateOptions holds flags for the validate command.
type ValidateOptions struct {
	ConfigPath string
}

// scenarioSchema is the CUE schema every scenario file must satisfy.
// The schema rejects unknown fields and constrains step and assertion
// shapes beyond what YAML decoding alone can catch.
const scenarioSchema = `
#Form: string & =~"^(0[xX][0-9A-Fa-f]{1,8}|[0-9A-Fa-f]{1,8})$"

#Step: {do: "frame" | "desync-check" | "save" | "load" | "revert" | "renderer-down" | "renderer-up"} |
	{do: "equip" | "unequip", object: #Form, actor?: #Form} |
	{do: "cast", spell: #Form, actor?: #Form} |
	{do: "apply" | "remove", effect: #Form, actor?: #Form}

#Assertion: {type: "final_state", active?: bool, last_event?: string, pending?: "none" | "toggle-on" | "removal"} |
	{type: "render_pushes", values?: [...bool]} |
	{type: "trace_count", kind: string, count: int & >=0} |
	{type: "notifications", messages?: [...string]}

#Scenario: {
	name:        string & !=""
	description: string & !=""
	session?:    string
	config?: {
		spells?:         [...#Form]
		apply_effects?:  [...#Form]
		dispel_effects?: [...#Form]
	}
	world?: {
		spells?: [...{id: #Form, effects: [...#Form]}]
		player_effects?: [...#Form]
	}
	steps:      [#Step, ...#Step]
	assertions: [#Assertion, ...#Assertion]
}
`

// FileValidation holds validation results for one scenario file.
type FileValidation struct {
	Path   string   `json:"path"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds the overall validation outcome.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ValidateOptions{}
	cmd := &cobra.Command{
		Use:   "validate [scenario.yaml|dir]...",
		Short: "Validate scenario and config files without running them",
		Long: `Validate scenario YAML files against the scenario schema.

Checks structure against a CUE schema (field names, step shapes, form
ID syntax) and then runs the loader's semantic validation. Faster than
simulate for authoring feedback. With --config, also strictly checks a
night eye INI file for malformed form IDs and an empty spell section.

Exit codes:
  0 - All files valid
  1 - Validation errors found
  2 - Command error (unreadable file, etc.)

Examples:
  nighteye validate ./scenarios
  nighteye validate ./scenarios/toggle-on.yaml --format json
  nighteye validate --config NightEye.ini`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, opts, args, cmd)
		},
	}
	cmd.Flags().StringVar(&opts.ConfigPath, "config", "", "night eye INI file to check")
	return cmd
}

func runValidate(opts *RootOptions, vopts *ValidateOptions, args []string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if len(args) == 0 && vopts.ConfigPath == "" {
		return NewExitError(ExitCommandError, "nothing to validate: pass scenario files or --config")
	}

	paths, err := collectScenarioFiles(args)
	if err != nil {
		return WrapExitError(ExitCommandError, "collect scenarios", err)
	}
	if len(args) > 0 && len(paths) == 0 {
		return NewExitError(ExitCommandError, "no scenario files found")
	}

	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema)
	if err := schema.Err(); err != nil {
		return WrapExitError(ExitCommandError, "compile scenario schema", err)
	}
	scenarioDef := schema.LookupPath(cue.ParsePath("#Scenario"))

	result := ValidationResult{Valid: true}
	for _, path := range paths {
		formatter.VerboseLog("Validating %s", path)
		fv := validateScenarioFile(ctx, scenarioDef, path)
		if !fv.Valid {
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if vopts.ConfigPath != "" {
		formatter.VerboseLog("Validating %s", vopts.ConfigPath)
		fv := FileValidation{Path: vopts.ConfigPath, Valid: true}
		if problems := config.Check(vopts.ConfigPath); len(problems) > 0 {
			fv.Valid = false
			fv.Errors = problems
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if opts.Format == "json" {
		if err := json.NewEncoder(cmd.OutOrStdout()).Encode(result); err != nil {
			return err
		}
	} else {
		outputValidateText(formatter, result)
	}

	if !result.Valid {
		return NewExitError(ExitFailure, "scenario validation failed")
	}
	return nil
}

func validateScenarioFile(ctx *cue.Context, scenarioDef cue.Value, path string) FileValidation {
	fv := FileValidation{Path: path, Valid: true}
	fail := func(msg string) {
		fv.Valid = false
		fv.Errors = append(fv.Errors, msg)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fail(fmt.Sprintf("read file: %v", err))
		return fv
	}

	var decoded any
	if err := yaml.Unmarshal(data, &decoded); err != nil {
		fail(fmt.Sprintf("parse YAML: %v", err))
		return fv
	}

	// Schema validation: unify the decoded document with #Scenario.
	unified := scenarioDef.Unify(ctx.Encode(decoded))
	if err := unified.Validate(cue.Final(), cue.Concrete(true)); err != nil {
		for _, e := range cueerrors.Errors(err) {
			fail(e.Error())
		}
		return fv
	}

	// Loader-level validation catches what the schema cannot express,
	// like required per-kind step fields after strict decoding.
	if _, err := harness.ParseScenario(data); err != nil {
		fail(err.Error())
	}
	return fv
}

func outputValidateText(formatter *OutputFormatter, result ValidationResult) {
	for _, fv := range result.Files {
		if fv.Valid {
			fmt.Fprintf(formatter.Writer, "ok    %s\n", fv.Path)
			continue
		}
		fmt.Fprintf(formatter.Writer, "FAIL  %s\n", fv.Path)
		for _, e := range fv.Errors {
			fmt.Fprintf(formatter.Writer, "      %s\n", e)
		}
	}
}
