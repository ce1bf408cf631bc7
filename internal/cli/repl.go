package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"zappem.net/pub/io/lined"

	gocalc "github.com/njchilds90/gocalc"
)

// lineReader is satisfied by *lined.Reader.
type lineReader interface {
	ReadString() (string, error)
}

// scanReader reads lines from a non-terminal input.
type scanReader struct{ s *bufio.Scanner }

func (r scanReader) ReadString() (string, error) {
	if r.s.Scan() {
		return r.s.Text(), nil
	}
	if err := r.s.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive session",
		Long: `Read expressions line by line and print a report for each.

  :var <name>  change the integration variable
  :depth <n>   change the recursion bound
  # ...        comment
  exit, quit   leave the session`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRepl(rootOpts, cmd)
		},
	}
	return cmd
}

func newLineReader(in io.Reader) (lineReader, bool) {
	if f, ok := in.(*os.File); ok && f == os.Stdin {
		if fi, err := f.Stat(); err == nil && fi.Mode()&os.ModeCharDevice != 0 {
			return lined.NewReader(), true
		}
	}
	return scanReader{bufio.NewScanner(in)}, false
}

func runRepl(opts *RootOptions, cmd *cobra.Command) error {
	if err := opts.prepare(cmd); err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	r, interactive := newLineReader(cmd.InOrStdin())
	if interactive {
		fmt.Fprintf(out, "gocalc: enter an expression, or exit\n\n")
	}

	variable := opts.conf.Variable
	integrator := opts.integrator
	f := opts.formatter(cmd)

	for {
		if interactive {
			fmt.Fprint(out, "> ")
		}
		line, err := r.ReadString()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return WrapExitError(ExitCommandError, "read input", err)
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "" || strings.HasPrefix(line, "#"):
			continue
		case line == "exit" || line == "quit":
			return nil
		case strings.HasPrefix(line, ":var"):
			name := strings.TrimSpace(strings.TrimPrefix(line, ":var"))
			if !gocalc.IsIdentifier(name) {
				fmt.Fprintf(out, "invalid variable %q\n", name)
				continue
			}
			variable = name
			fmt.Fprintf(out, "variable is %s\n", variable)
			continue
		case strings.HasPrefix(line, ":depth"):
			var n int
			if _, err := fmt.Sscanf(strings.TrimPrefix(line, ":depth"), "%d", &n); err != nil || n < 1 || n > gocalc.MaxAllowedDepth {
				fmt.Fprintf(out, "depth must be between 1 and %d\n", gocalc.MaxAllowedDepth)
				continue
			}
			integrator = gocalc.NewIntegrator(gocalc.WithMaxDepth(n), gocalc.WithLogger(opts.logger))
			fmt.Fprintf(out, "max depth is %d\n", n)
			continue
		}

		if err := f.Reports([]*gocalc.Report{gocalc.Process(line, variable, integrator)}); err != nil {
			return WrapExitError(ExitCommandError, "failed to write output", err)
		}
	}
}
