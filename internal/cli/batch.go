package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	gocalc "github.com/njchilds90/gocalc"
)

// BatchFile is the YAML layout read by the batch command.
//
//	variable: x
//	jobs:
//	  - input: x^2 + 1
//	  - input: t*e^t
//	    variable: t
type BatchFile struct {
	Variable string     `yaml:"variable"`
	Jobs     []BatchJob `yaml:"jobs"`
}

type BatchJob struct {
	Input    string `yaml:"input"`
	Variable string `yaml:"variable"`
}

// NewBatchCommand creates the batch command.
func NewBatchCommand(rootOpts *RootOptions) *cobra.Command {
	var jobs int

	cmd := &cobra.Command{
		Use:   "batch <file.yaml>",
		Short: "Run the pipeline on every job in a YAML file",
		Long: `Run independent pipelines concurrently and print the reports in file order.

A job without a variable uses the file's variable, then --var, then the
configured default.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(rootOpts, args[0], jobs, cmd)
		},
	}

	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "maximum pipelines run at once")
	return cmd
}

// LoadBatchFile reads and checks a batch file.
func LoadBatchFile(path string) (*BatchFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var bf BatchFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&bf); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(bf.Jobs) == 0 {
		return nil, fmt.Errorf("%s: no jobs", path)
	}
	for i, j := range bf.Jobs {
		if j.Input == "" {
			return nil, fmt.Errorf("%s: job %d: missing input", path, i+1)
		}
	}
	return &bf, nil
}

func runBatch(opts *RootOptions, path string, limit int, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	bf, err := LoadBatchFile(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load batch file", err)
	}

	defaultVar := opts.conf.Variable
	if bf.Variable != "" && opts.Variable == "" {
		defaultVar = bf.Variable
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	reports, err := ProcessAll(ctx, bf.Jobs, defaultVar, opts.integrator, limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "batch interrupted", err)
	}
	if err := opts.formatter(cmd).Reports(reports); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	return resultError(reports)
}

// ProcessAll runs one pipeline per job with at most limit running at once.
// Reports are returned in job order.
func ProcessAll(ctx context.Context, jobs []BatchJob, defaultVar string, in *gocalc.Integrator, limit int) ([]*gocalc.Report, error) {
	reports := make([]*gocalc.Report, len(jobs))
	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, job := range jobs {
		i, job := i, job
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			v := job.Variable
			if v == "" {
				v = defaultVar
			}
			reports[i] = gocalc.Process(job.Input, v, in)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return reports, nil
}
