package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
)

func newPlansCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Inspect the plan catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List plans stored in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			plans, skipped, err := a.plans.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, e := range skipped {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %v\n", e)
			}

			return opts.print(cmd.OutOrStdout(), plans, func() *Table {
				t := NewTable("ID", "TIER", "NAME", "PRICE", "DAYS", "CREDITS", "MEMBERS", "ACTIVE")
				for _, p := range plans {
					t.AddRow(p.ID, string(p.Tier), p.Name, formatMinor(p.PriceMinor, p.Currency),
						strconv.Itoa(p.PeriodDays), strconv.FormatInt(p.Limits.CreditsPerPeriod, 10),
						strconv.Itoa(p.Limits.MaxFamilyMembers), strconv.FormatBool(p.Active))
				}
				return t
			})
		},
	})

	var (
		tier     string
		name     string
		price    int64
		currency string
		days     int
		credits  int64
		members  int
		inactive bool
	)
	set := &cobra.Command{
		Use:   "set <id>",
		Short: "Create or replace a plan row",
		Long: `Create or replace a plan row. Running API servers pick the change up
on their next catalog refresh.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			p := &plan.Plan{
				ID:         args[0],
				Tier:       plan.Tier(tier),
				Name:       name,
				PriceMinor: price,
				Currency:   currency,
				PeriodDays: days,
				Limits: plan.Limits{
					Version:          plan.LimitsVersion,
					CreditsPerPeriod: credits,
					MaxFamilyMembers: members,
				},
				Active: !inactive,
			}
			if err := a.plans.Upsert(cmd.Context(), p); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Plan %s saved\n", p.ID)
			return nil
		},
	}
	set.Flags().StringVar(&tier, "tier", string(plan.TierPaid), "plan tier: free or paid")
	set.Flags().StringVar(&name, "name", "", "display name")
	set.Flags().Int64Var(&price, "price", 0, "price in minor units")
	set.Flags().StringVar(&currency, "currency", "INR", "ISO currency code")
	set.Flags().IntVar(&days, "days", 30, "billing period in days")
	set.Flags().Int64Var(&credits, "credits", 0, "credits per period")
	set.Flags().IntVar(&members, "members", 1, "maximum family members")
	set.Flags().BoolVar(&inactive, "inactive", false, "hide the plan from the catalog")
	_ = set.MarkFlagRequired("name")
	cmd.AddCommand(set)

	return cmd
}
