package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/service"
)

type householdView struct {
	ID         int64  `json:"id"`
	Name       string `json:"name"`
	Address    string `json:"address"`
	MaxMembers int    `json:"max_members"`
	IsActive   bool   `json:"is_active"`
}

func viewHousehold(h *model.Household) householdView {
	return householdView{ID: h.ID, Name: h.Name, Address: h.Address, MaxMembers: h.MaxMembers, IsActive: h.IsActive}
}

func printHousehold(w io.Writer, h *model.Household) {
	heading(w, h.Name)
	if h.Address != "" {
		fmt.Fprintln(w, h.Address)
	}
	state := "active"
	if !h.IsActive {
		state = "inactive"
	}
	fmt.Fprintf(w, "id %d, up to %d members, %s\n", h.ID, h.MaxMembers, state)
}

// NewHouseholdCommand groups the household subcommands.
func NewHouseholdCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "household",
		Aliases: []string{"hh"},
		Short:   "Create, join and manage your household",
	}
	cmd.AddCommand(newHouseholdCreateCommand(opts))
	cmd.AddCommand(newHouseholdJoinCommand(opts))
	cmd.AddCommand(newHouseholdShowCommand(opts))
	cmd.AddCommand(newHouseholdMembersCommand(opts))
	cmd.AddCommand(newHouseholdUpdateCommand(opts))
	cmd.AddCommand(newHouseholdActiveCommand(opts, "activate", true))
	cmd.AddCommand(newHouseholdActiveCommand(opts, "deactivate", false))
	return cmd
}

func newHouseholdCreateCommand(opts *RootOptions) *cobra.Command {
	var in service.CreateHouseholdInput
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a household and become its admin",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				h, err := env.app.Households.Create(sess, in)
				if err != nil {
					return err
				}
				return env.out.Success(viewHousehold(h), func(w io.Writer) {
					okLine(w, "Created household %q. You are its admin.", h.Name)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "household name")
	f.StringVar(&in.Password, "household-password", "", "password other members use to join")
	f.StringVar(&in.Address, "address", "", "street address")
	f.IntVar(&in.MaxMembers, "max-members", 0, fmt.Sprintf("member limit (default %d)", model.DefaultMaxMembers))
	return cmd
}

func newHouseholdJoinCommand(opts *RootOptions) *cobra.Command {
	var name, password string
	cmd := &cobra.Command{
		Use:   "join",
		Short: "Join an existing household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				h, err := env.app.Households.Join(sess, name, password)
				if err != nil {
					return err
				}
				return env.out.Success(viewHousehold(h), func(w io.Writer) {
					okLine(w, "Welcome to %s!", h.Name)
				})
			})
		},
	}
	cmd.Flags().StringVar(&name, "name", "", "household name")
	cmd.Flags().StringVar(&password, "household-password", "", "household password")
	return cmd
}

func newHouseholdShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your household",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				h, err := env.app.Households.Get(sess)
				if err != nil {
					return err
				}
				return env.out.Success(viewHousehold(h), func(w io.Writer) { printHousehold(w, h) })
			})
		},
	}
}

func newHouseholdMembersCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "members",
		Short: "List household members, admins first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				members, err := env.app.Households.Members(sess)
				if err != nil {
					return err
				}
				return env.out.Success(viewUsers(members), func(w io.Writer) {
					heading(w, "Members")
					for _, m := range members {
						role := ""
						if m.IsAdmin {
							role = styles.ok.Render(" admin")
						}
						fmt.Fprintf(w, "%4d  %-20s %-24s %5d pts%s\n", m.ID, m.Username, m.Name, m.Points, role)
					}
				})
			})
		},
	}
}

func newHouseholdUpdateCommand(opts *RootOptions) *cobra.Command {
	var in service.UpdateHouseholdInput
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Change name, address or member limit (admin only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				current, err := env.app.Households.Get(sess)
				if err != nil {
					return err
				}
				f := cmd.Flags()
				if !f.Changed("name") {
					in.Name = current.Name
				}
				if !f.Changed("address") {
					in.Address = current.Address
				}
				if !f.Changed("max-members") {
					in.MaxMembers = current.MaxMembers
				}
				h, err := env.app.Households.Update(sess, in)
				if err != nil {
					return err
				}
				return env.out.Success(viewHousehold(h), func(w io.Writer) {
					okLine(w, "Household updated.")
					printHousehold(w, h)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&in.Name, "name", "", "new name")
	f.StringVar(&in.Address, "address", "", "new address")
	f.IntVar(&in.MaxMembers, "max-members", 0, "new member limit")
	return cmd
}

func newHouseholdActiveCommand(opts *RootOptions, use string, active bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("Mark your household as %sd (admin only)", use),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				h, err := env.app.Households.SetActive(sess, active)
				if err != nil {
					return err
				}
				return env.out.Success(viewHousehold(h), func(w io.Writer) {
					okLine(w, "Household %sd.", use)
				})
			})
		},
	}
}
