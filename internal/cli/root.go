// Package cli implements the gocalc command line.
package cli

import (
	"log/slog"

	"github.com/spf13/cobra"

	gocalc "github.com/njchilds90/gocalc"
	"github.com/njchilds90/gocalc/internal/config"
	"github.com/njchilds90/gocalc/internal/logging"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	Format     string // "text" | "json" | "yaml"; empty keeps the configured one
	Variable   string
	MaxDepth   int
	Verbose    bool

	conf       *config.Config
	logger     *slog.Logger
	integrator *gocalc.Integrator
}

// NewRootCommand creates the root command for the gocalc CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "gocalc",
		Short: "gocalc - symbolic calculus",
		Long: `Parse, simplify, differentiate and integrate single-variable expressions.

Every command runs the same pipeline: parse, simplify, differentiate,
simplify, integrate and simplify.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.prepare(cmd)
		},
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "path to a YAML config file")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.Variable, "var", "", "integration variable (default from config, x)")
	cmd.PersistentFlags().IntVar(&opts.MaxDepth, "max-depth", 0, "integration recursion bound (default from config, 5)")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log integration strategies to stderr")

	// Add subcommands
	cmd.AddCommand(NewEvalCommand(opts))
	cmd.AddCommand(NewBatchCommand(opts))
	cmd.AddCommand(NewReplCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// prepare loads configuration, applies flag overrides and builds the logger
// and integrator. It runs once per command tree.
func (o *RootOptions) prepare(cmd *cobra.Command) error {
	if o.integrator != nil {
		return nil
	}
	conf, err := config.Load(o.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load config", err)
	}
	if o.Format != "" {
		conf.Format = o.Format
	}
	if o.Variable != "" {
		conf.Variable = o.Variable
	}
	if o.MaxDepth > 0 {
		conf.MaxDepth = o.MaxDepth
	}
	if o.Verbose {
		conf.Log.Level = "debug"
	}
	if err := conf.Validate(); err != nil {
		return NewExitError(ExitCommandError, err.Error())
	}

	o.conf = conf
	o.logger = logging.New(conf.Log, cmd.ErrOrStderr())
	o.integrator = gocalc.NewIntegrator(
		gocalc.WithMaxDepth(conf.MaxDepth),
		gocalc.WithLogger(o.logger),
	)
	return nil
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.conf.Format, Writer: cmd.OutOrStdout()}
}
