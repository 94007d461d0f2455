package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/dukerupert/homedash/internal/grocery"
	"github.com/dukerupert/homedash/internal/model"
	"github.com/dukerupert/homedash/internal/service"
)

func printItems(w io.Writer, items []model.ShoppingItem) {
	if len(items) == 0 {
		emptyLine(w, "Nothing on the list.")
		return
	}
	for _, it := range items {
		line := fmt.Sprintf("%4d  %s %-28s %-14s %8.2f", it.ID, grocery.Icon(it.Category), it.Name, it.Category, it.Price)
		if it.IsPurchased {
			fmt.Fprintf(w, "%s %s\n", urgencyLabel(it.Urgency), styles.done.Render(line))
			continue
		}
		fmt.Fprintf(w, "%s %s\n", urgencyLabel(it.Urgency), line)
	}
}

// NewShopCommand groups the shopping list subcommands.
func NewShopCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "shop",
		Aliases: []string{"shopping"},
		Short:   "Manage the household shopping list",
	}
	cmd.AddCommand(newShopAddCommand(opts))
	cmd.AddCommand(newShopListCommand(opts))
	cmd.AddCommand(newShopPurchaseCommand(opts, "buy", true))
	cmd.AddCommand(newShopPurchaseCommand(opts, "unbuy", false))
	cmd.AddCommand(newShopDeleteCommand(opts))
	cmd.AddCommand(newShopSearchCommand(opts))
	cmd.AddCommand(newShopSummaryCommand(opts))
	return cmd
}

func newShopAddCommand(opts *RootOptions) *cobra.Command {
	var name, category, urgency string
	var price float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an item to the shopping list",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				u, err := model.ParseUrgency(urgency)
				if err != nil {
					return NewExitError(ExitCommandError, err.Error())
				}
				item, err := env.app.Shopping.Add(sess, service.AddItemInput{
					Name:     name,
					Category: category,
					Price:    price,
					Urgency:  u,
				})
				if err != nil {
					return err
				}
				return env.out.Success(item, func(w io.Writer) {
					okLine(w, "Added %s %s (%s) to the list.", grocery.Icon(item.Category), item.Name, item.Category)
				})
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&name, "name", "", "item name")
	f.StringVar(&category, "category", "", "category (suggested from the name when empty)")
	f.Float64Var(&price, "price", 0, "expected price")
	f.StringVar(&urgency, "urgency", "", "Critical|High|Medium|Low|Wish (default Medium)")
	_ = cmd.MarkFlagRequired("name")
	return cmd
}

func newShopListCommand(opts *RootOptions) *cobra.Command {
	var toBuy bool
	var urgency, category string
	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "Show the shopping list",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				var items []model.ShoppingItem
				switch {
				case urgency != "":
					u, perr := model.ParseUrgency(urgency)
					if perr != nil {
						return NewExitError(ExitCommandError, perr.Error())
					}
					items, err = env.app.Shopping.ByUrgency(sess, u)
				case category != "":
					items, err = env.app.Shopping.ByCategory(sess, category)
				case toBuy:
					items, err = env.app.Shopping.ToBuy(sess)
				default:
					items, err = env.app.Shopping.HouseholdItems(sess)
				}
				if err != nil {
					return err
				}
				return env.out.Success(items, func(w io.Writer) {
					heading(w, "Shopping list")
					printItems(w, items)
				})
			})
		},
	}
	f := cmd.Flags()
	f.BoolVar(&toBuy, "to-buy", false, "only items not yet purchased")
	f.StringVar(&urgency, "urgency", "", "only items of this urgency")
	f.StringVar(&category, "category", "", "only items in this category")
	cmd.MarkFlagsMutuallyExclusive("to-buy", "urgency", "category")
	return cmd
}

func newShopPurchaseCommand(opts *RootOptions, use string, purchased bool) *cobra.Command {
	short := "Mark an item as purchased"
	if !purchased {
		short = "Put a purchased item back on the list"
	}
	return &cobra.Command{
		Use:   use + " <id>",
		Short: short,
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
				var item *model.ShoppingItem
				if purchased {
					item, err = env.app.Shopping.MarkPurchased(sess, id)
				} else {
					item, err = env.app.Shopping.MarkUnpurchased(sess, id)
				}
				if err != nil {
					return err
				}
				return env.out.Success(item, func(w io.Writer) {
					if purchased {
						okLine(w, "Bought %s.", item.Name)
						return
					}
					okLine(w, "%s is back on the list.", item.Name)
				})
			})
		},
	}
}

func newShopDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Remove an item you added (admins may remove any)",
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
				if err := env.app.Shopping.Delete(sess, id); err != nil {
					return err
				}
				return env.out.Success(map[string]int64{"deleted": id}, func(w io.Writer) {
					okLine(w, "Item %d removed.", id)
				})
			})
		},
	}
}

func newShopSearchCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "search <term>",
		Short: "Find items by name or category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				items, err := env.app.Shopping.Search(sess, args[0])
				if err != nil {
					return err
				}
				return env.out.Success(items, func(w io.Writer) {
					heading(w, fmt.Sprintf("Items matching %q", args[0]))
					printItems(w, items)
				})
			})
		},
	}
}

type shopSummary struct {
	service.SpendingSummary
	Categories []service.CategoryTotal `json:"categories"`
}

func newShopSummaryCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Spending summary and per-category totals",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.run(cmd, func(env *commandEnv) error {
				sess, err := env.login()
				if err != nil {
					return err
				}
				sum, err := env.app.Shopping.Summary(sess)
				if err != nil {
					return err
				}
				cats, err := env.app.Shopping.CategoryBreakdown(sess)
				if err != nil {
					return err
				}
				return env.out.Success(shopSummary{SpendingSummary: sum, Categories: cats}, func(w io.Writer) {
					heading(w, "Spending")
					fmt.Fprintf(w, "to buy     %3d items  %9.2f\n", sum.ToBuyCount, sum.ToBuyCost)
					fmt.Fprintf(w, "purchased  %3d items  %9.2f\n", sum.PurchasedCount, sum.Spent)
					if len(cats) == 0 {
						return
					}
					heading(w, "By category")
					for _, c := range cats {
						fmt.Fprintf(w, "%s %-14s %3d  %9.2f\n", grocery.Icon(c.Category), c.Category, c.Count, c.Total)
					}
				})
			})
		},
	}
}
