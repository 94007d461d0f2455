// Package cli is the homedash command line. Every command opens the data
// directory, optionally logs in with the global credentials and runs one
// service call.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/app"
	"github.com/dukerupert/homedash/internal/config"
	"github.com/dukerupert/homedash/internal/fault"
	"github.com/dukerupert/homedash/internal/logging"
	"github.com/dukerupert/homedash/internal/session"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	LogLevel   string
	Format     string // "json" | "text"
	Username   string
	Password   string

	getenv func(string) string
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the homedash CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(os.Getenv)
}

func newRootCommand(getenv func(string) string) *cobra.Command {
	opts := &RootOptions{getenv: getenv}

	cmd := &cobra.Command{
		Use:           "homedash",
		Short:         "Household chores and shopping from the terminal",
		Long:          "homedash keeps a household's members, chores and shopping list in a directory of JSON files.",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" if present)")
	pf.StringVar(&opts.DataDir, "data-dir", "", "directory holding the collection files")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug|info|warn|error)")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVarP(&opts.Username, "user", "u", getenv("HOMEDASH_USER"), "username to act as")
	pf.StringVarP(&opts.Password, "password", "p", getenv("HOMEDASH_PASSWORD"), "password for --user")

	cmd.AddCommand(NewRegisterCommand(opts))
	cmd.AddCommand(NewLoginCommand(opts))
	cmd.AddCommand(NewPasswdCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewHouseholdCommand(opts))
	cmd.AddCommand(NewChoreCommand(opts))
	cmd.AddCommand(NewShopCommand(opts))
	cmd.AddCommand(NewUserCommand(opts))
	cmd.AddCommand(NewBackupCommand(opts))

	return cmd
}

// Execute runs the command line and returns the process exit code.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	return execute(ctx, NewRootCommand(), args, stdout, stderr)
}

func execute(ctx context.Context, cmd *cobra.Command, args []string, stdout, stderr io.Writer) int {
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if !exitErr.reported {
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
		return exitErr.Code
	}
	// cobra flag and argument errors
	fmt.Fprintf(stderr, "Error: %v\n", err)
	return ExitCommandError
}

// commandEnv is what a command body gets to work with.
type commandEnv struct {
	ctx  context.Context
	app  *app.App
	out  *OutputFormatter
	opts *RootOptions
}

func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{Format: o.Format, Writer: cmd.OutOrStdout(), ErrWriter: cmd.ErrOrStderr()}
}

// run opens the application, runs fn and reports any error it returns.
func (o *RootOptions) run(cmd *cobra.Command, fn func(env *commandEnv) error) error {
	out := o.formatter(cmd)

	cfg, err := config.Load(o.ConfigPath, o.getenv)
	if err == nil {
		if o.DataDir != "" {
			cfg.DataDir = o.DataDir
			if o.getenv("HOMEDASH_BACKUP_DIR") == "" {
				cfg.BackupDir = filepath.Join(cfg.DataDir, "backups")
			}
		}
		if o.LogLevel != "" {
			cfg.LogLevel = o.LogLevel
		}
		err = cfg.Validate()
	}
	if err != nil {
		return out.Fail(&ExitError{Code: ExitCommandError, Message: "configuration", Err: err})
	}

	logger, closeLog, err := logging.Setup(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return out.Fail(&ExitError{Code: ExitCommandError, Message: "logging", Err: err})
	}
	defer closeLog()

	a := app.Open(cfg, logger, nil)
	defer func() {
		if err := a.Close(); err != nil {
			logger.Warn("close app", "error", err)
		}
	}()

	if err := fn(&commandEnv{ctx: cmd.Context(), app: a, out: out, opts: o}); err != nil {
		return out.Fail(err)
	}
	return nil
}

// login returns the session carried by the command context, or verifies
// the global credentials and starts one. A started session is put on the
// context for the rest of the command.
func (e *commandEnv) login() (*session.Session, error) {
	if sess, ok := session.FromContext(e.ctx); ok {
		return sess, nil
	}
	if e.opts.Username == "" {
		return nil, fault.Domain(fault.Unauthorized, "NOT_LOGGED_IN", "pass --user and --password (or set HOMEDASH_USER and HOMEDASH_PASSWORD)")
	}
	sess, err := e.app.Auth.Login(e.opts.Username, e.opts.Password)
	if err != nil {
		return nil, err
	}
	e.ctx = session.WithSession(e.ctx, sess)
	return sess, nil
}

// resolveUser accepts a numeric id or a username.
func (e *commandEnv) resolveUser(ref string) (int64, error) {
	if id, err := strconv.ParseInt(ref, 10, 64); err == nil {
		return id, nil
	}
	u, err := e.app.Deps.Users.GetByUsername(ref)
	if err != nil {
		return 0, err
	}
	if u == nil {
		return 0, fault.Missing("USER_NOT_FOUND", fmt.Sprintf("no user named %q", ref))
	}
	return u.ID, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q", arg))
	}
	return id, nil
}
