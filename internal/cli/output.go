package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	gocalc "github.com/njchilds90/gocalc"
)

// Process exit statuses.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // some expression did not parse or integrate
	ExitCommandError = 2 // the command itself could not run
)

// ExitError carries the status gocalc exits with.
type ExitError struct {
	Code    int
	Message string
	Err     error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *ExitError) Unwrap() error { return e.Err }

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode maps err to a status. Errors without an ExitError in their
// chain count as ExitFailure.
func GetExitCode(err error) int {
	var exitErr *ExitError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &exitErr):
		return exitErr.Code
	}
	return ExitFailure
}

// OutputFormatter renders pipeline reports as text, JSON or YAML.
type OutputFormatter struct {
	Format string
	Writer io.Writer
}

// CLIResponse is the JSON envelope for report output.
type CLIResponse struct {
	Status string           `json:"status"` // "ok" or "error"
	Data   []*gocalc.Report `json:"data"`
}

// Reports writes every report in the configured format.
func (f *OutputFormatter) Reports(reports []*gocalc.Report) error {
	switch f.Format {
	case "json":
		status := "ok"
		if failed(reports) > 0 {
			status = "error"
		}
		enc := json.NewEncoder(f.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(CLIResponse{Status: status, Data: reports})

	case "yaml":
		enc := yaml.NewEncoder(f.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(reports); err != nil {
			return err
		}
		return enc.Close()
	}

	for i, r := range reports {
		if i > 0 {
			if _, err := fmt.Fprintln(f.Writer); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(f.Writer, r.Text()); err != nil {
			return err
		}
	}
	return nil
}

func failed(reports []*gocalc.Report) int {
	n := 0
	for _, r := range reports {
		if !r.OK() {
			n++
		}
	}
	return n
}

// resultError maps failed reports to an ExitFailure error.
func resultError(reports []*gocalc.Report) error {
	if n := failed(reports); n > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d expression(s) failed", n, len(reports)))
	}
	return nil
}
