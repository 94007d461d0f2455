package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// NewUserCommand groups the member subcommands.
func NewUserCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Member profiles, statistics and administration",
	}
	cmd.AddCommand(newUserShowCommand(opts))
	cmd.AddCommand(newUserStatsCommand(opts))
	cmd.AddCommand(newUserLeaderboardCommand(opts))
	cmd.AddCommand(newUserDeleteCommand(opts))
	cmd.AddCommand(newUserRemoveCommand(opts))
	return cmd
}

// targetUser resolves the optional user argument, defaulting to the session user.
func (e *commandEnv) targetUser(args []string, self int64) (int64, error) {
	if len(args) == 0 {
		return self, nil
	}
	return e.resolveUser(args[0])
}

func newUserShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show [user]",
		Short: "Show a member profile",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				id, err := env.targetUser(args, sess.UserID)
				if err != nil {
					return err
				}
				u, err := env.app.Users.Get(sess, id)
				if err != nil {
					return err
				}
				return env.out.Success(viewUser(u), func(w io.Writer) {
					heading(w, u.Name)
					fmt.Fprintf(w, "username  %s\nemail     %s\npoints    %d\n", u.Username, u.Email, u.Points)
					if u.IsAdmin {
						fmt.Fprintln(w, styles.ok.Render("household admin"))
					}
				})
			})
		},
	}
}

func newUserStatsCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "stats [user]",
		Short: "Chore and shopping statistics for a member",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				id, err := env.targetUser(args, sess.UserID)
				if err != nil {
					return err
				}
				st, err := env.app.Users.Stats(sess, id)
				if err != nil {
					return err
				}
				return env.out.Success(st, func(w io.Writer) {
					heading(w, "Statistics")
					fmt.Fprintf(w, "points            %d\n", st.Points)
					fmt.Fprintf(w, "chores completed  %d\n", st.ChoresCompleted)
					fmt.Fprintf(w, "chores created    %d\n", st.ChoresCreated)
					fmt.Fprintf(w, "items added       %d\n", st.ItemsAdded)
					if st.ChoresCompleted > 0 {
						fmt.Fprintf(w, "avg days to done  %.1f\n", st.AverageCompletionDays)
					}
				})
			})
		},
	}
}

func newUserLeaderboardCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Household members ranked by points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				board, err := env.app.Users.Leaderboard(sess)
				if err != nil {
					return err
				}
				return env.out.Success(viewUsers(board), func(w io.Writer) {
					heading(w, "Leaderboard")
					for i, u := range board {
						line := fmt.Sprintf("%2d. %-24s %5d pts", i+1, u.Name, u.Points)
						if u.ID == sess.UserID {
							line = styles.ok.Render(line)
						}
						fmt.Fprintln(w, line)
					}
				})
			})
		},
	}
}

func newUserDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <user>",
		Short: "Delete a member account (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				id, err := env.resolveUser(args[0])
				if err != nil {
					return err
				}
				if err := env.app.Users.Delete(sess, id); err != nil {
					return err
				}
				return env.out.Success(map[string]int64{"deleted": id}, func(w io.Writer) {
					okLine(w, "User %s deleted.", args[0])
				})
			})
		},
	}
}

func newUserRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <user>",
		Short: "Remove a member from the household (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				id, err := env.resolveUser(args[0])
				if err != nil {
					return err
				}
				if err := env.app.Users.RemoveFromHousehold(sess, id); err != nil {
					return err
				}
				return env.out.Success(map[string]int64{"removed": id}, func(w io.Writer) {
					okLine(w, "%s is no longer a member.", args[0])
				})
			})
		},
	}
}
