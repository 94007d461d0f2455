package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewBackupCommand groups the encrypted backup subcommands. Backups need
// no login: whoever can read the data directory can copy it anyway.
func NewBackupCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Encrypted snapshots of the data directory",
	}
	cmd.AddCommand(newBackupCreateCommand(opts))
	cmd.AddCommand(newBackupListCommand(opts))
	cmd.AddCommand(newBackupRestoreCommand(opts))
	cmd.AddCommand(newBackupCleanupCommand(opts))
	return cmd
}

func passphraseFlag(cmd *cobra.Command, opts *RootOptions, dst *string) {
	cmd.Flags().StringVar(dst, "passphrase", opts.getenv("HOMEDASH_BACKUP_PASSPHRASE"), "encryption passphrase (env HOMEDASH_BACKUP_PASSPHRASE)")
}

func newBackupCreateCommand(opts *RootOptions) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Write an encrypted snapshot of every collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				b, err := env.app.Backups.Create(env.ctx, passphrase)
				if err != nil {
					return err
				}
				return env.out.Success(b, func(w io.Writer) {
					okLine(w, "Backup %d written to %s (%d bytes, %d collections).", b.ID, b.Filename, b.SizeBytes, len(b.Collections))
				})
			})
		},
	}
	passphraseFlag(cmd, opts, &passphrase)
	return cmd
}

func newBackupListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List backups, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				backups, err := env.app.Backups.List()
				if err != nil {
					return err
				}
				return env.out.Success(backups, func(w io.Writer) {
					heading(w, "Backups")
					if len(backups) == 0 {
						emptyLine(w, "No backups yet.")
						return
					}
					for _, b := range backups {
						status := string(b.Status)
						if b.ErrorMessage != "" {
							status = styles.err.Render(status + ": " + b.ErrorMessage)
						}
						fmt.Fprintf(w, "%4d  %s  %-36s %8d  %s\n", b.ID, b.CreatedDate.Local().Format("2006-01-02 15:04"), b.Filename, b.SizeBytes, status)
					}
				})
			})
		},
	}
}

func newBackupRestoreCommand(opts *RootOptions) *cobra.Command {
	var passphrase string
	cmd := &cobra.Command{
		Use:   "restore <id>",
		Short: "Overwrite the collections with a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(env *commandEnv) error {
				names, err := env.app.Backups.Restore(env.ctx, id, passphrase)
				if err != nil {
					return err
				}
				return env.out.Success(map[string]any{"backup_id": id, "collections": names}, func(w io.Writer) {
					okLine(w, "Restored %d collections from backup %d.", len(names), id)
				})
			})
		},
	}
	passphraseFlag(cmd, opts, &passphrase)
	return cmd
}

func newBackupCleanupCommand(opts *RootOptions) *cobra.Command {
	var days int
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete backups older than the retention period",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				n, err := env.app.Backups.Cleanup(env.ctx, days)
				if err != nil {
					return err
				}
				return env.out.Success(map[string]int{"removed": n}, func(w io.Writer) {
					okLine(w, "Removed %d old backups.", n)
				})
			})
		},
	}
	cmd.Flags().IntVar(&days, "retention-days", 30, "keep backups newer than this many days")
	return cmd
}
