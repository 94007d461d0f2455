package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/seed"
	"github.com/dukerupert/homedash/internal/service"
)

// userView is a user without credentials, for output.
type userView struct {
	ID          int64  `json:"id"`
	Username    string `json:"username"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	HouseholdID int64  `json:"household_id"`
	IsAdmin     bool   `json:"is_admin"`
	Points      int    `json:"points"`
}

func viewUser(u *model.User) userView {
	return userView{
		ID:          u.ID,
		Username:    u.Username,
		Name:        u.Name,
		Email:       u.Email,
		HouseholdID: u.HouseholdID,
		IsAdmin:     u.IsAdmin,
		Points:      u.Points,
	}
}

func viewUsers(users []model.User) []userView {
	out := make([]userView, len(users))
	for i := range users {
		out[i] = viewUser(&users[i])
	}
	return out
}

// NewRegisterCommand creates an account for --user/--password.
func NewRegisterCommand(opts *RootOptions) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create an account for --user with --password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				u, err := env.app.Auth.Register(service.RegisterInput{
					Username: opts.Username,
					Password: opts.Password,
					Name:     name,
					Email:    email,
				})
				if err != nil {
					return err
				}
				return env.out.Success(viewUser(u), func(w io.Writer) {
					okLine(w, "Registered %s (id %d). Create or join a household next.", u.Username, u.ID)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

// NewLoginCommand checks the global credentials.
func NewLoginCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "login",
		Short: "Verify --user and --password",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				u, err := env.app.Auth.Current(sess)
				if err != nil {
					return err
				}
				defer env.app.Auth.Logout(sess)
				return env.out.Success(viewUser(u), func(w io.Writer) {
					okLine(w, "Welcome back, %s!", u.Name)
					if u.HouseholdID == 0 {
						emptyLine(w, "You are not in a household yet.")
						return
					}
					role := "member"
					if u.IsAdmin {
						role = "admin"
					}
					fmt.Fprintf(w, "Household %d, %s, %d points\n", u.HouseholdID, role, u.Points)
				})
			})
		},
	}
}

// NewPasswdCommand changes the password of --user.
func NewPasswdCommand(opts *RootOptions) *cobra.Command {
	var next string
	cmd := &cobra.Command{
		Use:   "passwd",
		Short: "Change the password of --user",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				if err := env.app.Auth.ChangePassword(sess, opts.Password, next); err != nil {
					return err
				}
				return env.out.Success(map[string]string{"username": sess.Username}, func(w io.Writer) {
					okLine(w, "Password changed.")
				})
			})
		},
	}
	cmd.Flags().StringVar(&next, "new", "", "new password")
	_ = cmd.MarkFlagRequired("new")
	return cmd
}

// NewSeedCommand fills empty collections with demo data.
func NewSeedCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Populate empty collections with demo households, users, chores and items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				r, err := seed.Run(env.ctx, env.app.Deps)
				if err != nil {
					return err
				}
				return env.out.Success(r, func(w io.Writer) {
					heading(w, "Seed data")
					fmt.Fprintf(w, "households %d, users %d, chores %d, items %d\n", r.Households, r.Users, r.Chores, r.Items)
					if r == (seed.Report{}) {
						emptyLine(w, "Every collection already had data.")
						return
					}
					emptyLine(w, "Demo logins: admin/admin123, demo/demo123, johnsmith/password123")
				})
			})
		},
	}
}
