package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/chore"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/service"
)

const dateLayout = "2006-01-02"

// parseDue accepts RFC 3339 or a bare date, which means the end of that day
// in local time.
func parseDue(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, NewExitError(ExitCommandError, fmt.Sprintf("invalid due date %q: use YYYY-MM-DD or RFC 3339", s))
	}
	return d.Add(24*time.Hour - time.Second), nil
}

func printChores(w io.Writer, chores []chore.ChoreWithStatus) {
	if len(chores) == 0 {
		emptyLine(w, "No chores.")
		return
	}
	for _, c := range chores {
		line := fmt.Sprintf("%4d  %-32s due %s  %3d pts  %-12s", c.ID, c.Title, c.DueDate.Local().Format(dateLayout), c.PointsValue, c.AssigneeName)
		switch c.Status {
		case chore.StatusCompleted:
			fmt.Fprintf(w, "%s %s\n", urgencyLabel(c.Urgency), styles.done.Render(line))
		case chore.StatusOverdue:
			fmt.Fprintf(w, "%s %s %s\n", urgencyLabel(c.Urgency), line, styles.err.Render("OVERDUE"))
		default:
			fmt.Fprintf(w, "%s %s\n", urgencyLabel(c.Urgency), line)
		}
	}
}

// withStatus decorates chores that a service returned without names.
func (e *commandEnv) withStatus(chores []model.Chore) []chore.ChoreWithStatus {
	now := e.app.Deps.Now()
	out := make([]chore.ChoreWithStatus, len(chores))
	for i, c := range chores {
		out[i] = chore.ChoreWithStatus{Chore: c, Status: chore.ComputeStatus(c, now)}
		if u, err := e.app.Deps.Users.GetByID(c.AssignedToUserID); err == nil && u != nil {
			out[i].AssigneeName = u.Name
		}
	}
	return out
}

// NewChoreCommand groups the chore subcommands.
func NewChoreCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chore",
		Short: "Assign, list and complete chores",
	}
	cmd.AddCommand(newChoreAddCommand(opts))
	cmd.AddCommand(newChoreListCommand(opts))
	cmd.AddCommand(newChoreMineCommand(opts))
	cmd.AddCommand(newChoreOverdueCommand(opts))
	cmd.AddCommand(newChoreCompleteCommand(opts))
	cmd.AddCommand(newChoreDeleteCommand(opts))
	cmd.AddCommand(newChoreReassignCommand(opts))
	return cmd
}

func newChoreAddCommand(opts *RootOptions) *cobra.Command {
	var title, description, due, assignee, urgency string
	var points int
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a chore for a household member",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				dueDate, err := parseDue(due)
				if err != nil {
					return err
				}
				u, err := model.ParseUrgency(urgency)
				if err != nil {
					return NewExitError(ExitCommandError, err.Error())
				}
				assignTo := sess.UserID
				if assignee != "" {
					if assignTo, err = env.resolveUser(assignee); err != nil {
						return err
					}
				}
				c, err := env.app.Chores.Create(sess, service.CreateChoreInput{
					Title:            title,
					Description:      description,
					DueDate:          dueDate,
					AssignedToUserID: assignTo,
					PointsValue:      points,
					Urgency:          u,
				})
				if err != nil {
					return err
				}
				return env.out.Success(c, func(w io.Writer) {
					okLine(w, "Chore %d %q created, worth %d points.", c.ID, c.Title, c.PointsValue)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&title, "title", "", "what needs doing")
	f.StringVar(&description, "description", "", "details")
	f.StringVar(&due, "due", "", "due date (YYYY-MM-DD or RFC 3339)")
	f.StringVar(&assignee, "assign", "", "assignee username or id (default yourself)")
	f.StringVar(&urgency, "urgency", "", "Critical|High|Medium|Low|Wish (default Medium)")
	f.IntVar(&points, "points", 0, fmt.Sprintf("points awarded on completion (default %d)", model.DefaultChorePoints))
	_ = cmd.MarkFlagRequired("title")
	_ = cmd.MarkFlagRequired("due")
	return cmd
}

func newChoreListCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List household chores with their status",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				chores, err := env.app.Chores.Statuses(sess)
				if err != nil {
					return err
				}
				return env.out.Success(chores, func(w io.Writer) {
					heading(w, "Household chores")
					printChores(w, chores)
				})
			})
		},
	}
}

func newChoreMineCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "List chores assigned to you",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				chores, err := env.app.Chores.UserChores(sess)
				if err != nil {
					return err
				}
				decorated := env.withStatus(chores)
				return env.out.Success(decorated, func(w io.Writer) {
					heading(w, "My chores")
					printChores(w, decorated)
				})
			})
		},
	}
}

func newChoreOverdueCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "overdue",
		Short: "List overdue chores",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				chores, err := env.app.Chores.Overdue(sess)
				if err != nil {
					return err
				}
				decorated := env.withStatus(chores)
				return env.out.Success(decorated, func(w io.Writer) {
					heading(w, "Overdue chores")
					printChores(w, decorated)
				})
			})
		},
	}
}

func newChoreCompleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "complete <id>",
		Short: "Complete one of your chores and collect its points",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				done, err := env.app.Chores.Complete(sess, id)
				if err != nil {
					return err
				}
				return env.out.Success(done, func(w io.Writer) {
					okLine(w, "Completed %q: +%d points (total %d).", done.Chore.Title, done.PointsAwarded, done.TotalPoints)
					if done.PointsAwarded > done.Chore.PointsValue {
						emptyLine(w, "Early completion bonus included.")
					}
				})
			})
		},
	}
}

func newChoreDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a chore (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				if err := env.app.Chores.Delete(sess, id); err != nil {
					return err
				}
				return env.out.Success(map[string]int64{"deleted": id}, func(w io.Writer) {
					okLine(w, "Chore %d deleted.", id)
				})
			})
		},
	}
}

func newChoreReassignCommand(opts *RootOptions) *cobra.Command {
	var to string
	cmd := &cobra.Command{
		Use:   "reassign <id>",
		Short: "Give a chore to another member (admin only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				userID, err := env.resolveUser(to)
				if err != nil {
					return err
				}
				c, err := env.app.Chores.Reassign(sess, id, userID)
				if err != nil {
					return err
				}
				return env.out.Success(c, func(w io.Writer) {
					okLine(w, "Chore %d reassigned to %s.", c.ID, to)
				})
			})
		},
	}
	cmd.Flags().StringVar(&to, "to", "", "new assignee username or id")
	_ = cmd.MarkFlagRequired("to")
	return cmd
}
