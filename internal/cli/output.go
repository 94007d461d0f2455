package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/model"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0
	ExitFailure      = 1 // rejected by a household rule, validation or permission check
	ExitCommandError = 2 // storage failure or bad invocation
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int
	Message string
	Err     error

	reported bool
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// classify maps a fault to the exit code and machine code it is reported with.
func classify(err error) (int, string) {
	var exitErr *ExitError
	switch {
	case errors.As(err, &exitErr):
		return exitErr.Code, "COMMAND_ERROR"
	case fault.IsDomain(err):
		code := fault.CodeOf(err)
		if code == "" {
			code = strings.ToUpper(string(fault.KindOf(err)))
		}
		return ExitFailure, code
	case fault.IsStore(err):
		return ExitCommandError, "STORE_" + strings.ToUpper(string(fault.KindOf(err)))
	default:
		return ExitFailure, "ERROR"
	}
}

// OutputFormatter handles JSON vs text output for CLI commands.
type OutputFormatter struct {
	Format    string
	Writer    io.Writer
	ErrWriter io.Writer
}

// CLIResponse is the standard JSON response format for CLI output.
type CLIResponse struct {
	Status string    `json:"status"`
	Data   any       `json:"data,omitempty"`
	Error  *CLIError `json:"error,omitempty"`
}

type CLIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Success writes data as a JSON response, or calls text to render it for
// people.
func (f *OutputFormatter) Success(data any, text func(w io.Writer)) error {
	if f.Format == "json" {
		return json.NewEncoder(f.Writer).Encode(CLIResponse{Status: "ok", Data: data})
	}
	text(f.Writer)
	return nil
}

// Fail reports err and returns the ExitError the command should return.
func (f *OutputFormatter) Fail(err error) error {
	code, errCode := classify(err)
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.reported {
		return exitErr
	}
	if f.Format == "json" {
		_ = json.NewEncoder(f.Writer).Encode(CLIResponse{
			Status: "error",
			Error:  &CLIError{Code: errCode, Message: err.Error()},
		})
	} else {
		w := f.ErrWriter
		if w == nil {
			w = f.Writer
		}
		fmt.Fprintf(w, "%s %s\n", styles.err.Render("Error ["+errCode+"]:"), err.Error())
	}
	return &ExitError{Code: code, Message: errCode, Err: err, reported: true}
}

var styles = struct {
	title, muted, ok, err, done lipgloss.Style
	urgency                     map[model.Urgency]lipgloss.Style
}{
	title: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
	muted: lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
	ok:    lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	err:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
	done:  lipgloss.NewStyle().Foreground(lipgloss.Color("241")).Strikethrough(true),
	urgency: map[model.Urgency]lipgloss.Style{
		model.UrgencyCritical: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196")),
		model.UrgencyHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		model.UrgencyMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("226")),
		model.UrgencyLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		model.UrgencyWish:     lipgloss.NewStyle().Foreground(lipgloss.Color("141")),
	},
}

func urgencyLabel(u model.Urgency) string {
	label := fmt.Sprintf("%-8s", u)
	if s, ok := styles.urgency[u]; ok {
		return s.Render(label)
	}
	return label
}

func heading(w io.Writer, text string) {
	fmt.Fprintln(w, styles.title.Render(text))
}

func okLine(w io.Writer, format string, args ...any) {
	fmt.Fprintln(w, styles.ok.Render(fmt.Sprintf(format, args...)))
}

func emptyLine(w io.Writer, text string) {
	fmt.Fprintln(w, styles.muted.Render(text))
}
