package cli

import (
	"github.com/spf13/cobra"

	gocalc "github.com/njchilds90/gocalc"
)

// NewEvalCommand creates the eval command.
func NewEvalCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eval <expr>...",
		Short: "Run the pipeline on each expression",
		Long: `Parse, simplify, differentiate and integrate each argument and print
one report per expression.

Exits with status 1 if any expression fails to parse or integrate.`,
		Example: `  gocalc eval "x*e^x"
  gocalc eval --var t "t^2" "sin(t)"
  gocalc eval --format json "ln(x)"`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(rootOpts, args, cmd)
		},
	}
	return cmd
}

func runEval(opts *RootOptions, inputs []string, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	reports := make([]*gocalc.Report, 0, len(inputs))
	for _, in := range inputs {
		reports = append(reports, gocalc.Process(in, opts.conf.Variable, opts.integrator))
	}
	if err := opts.formatter(cmd).Reports(reports); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return resultError(reports)
}
