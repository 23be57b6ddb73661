package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/domain/quota"
	"github.com/pratik-mahalle/mealplanner/internal/services"
)

func newQuotaCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quota",
		Short: "Inspect or charge a user's credits",
	}

	var userID string

	info := &cobra.Command{
		Use:   "info",
		Short: "Show usage for the user's current period (read only)",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.now()
			if err != nil {
				return err
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			svc := services.NewQuotaService(a.catalog, a.subs, a.ledgers, a.log)
			qi, err := svc.GetQuotaInfo(cmd.Context(), userID, now)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), qi, func() *Table {
				t := NewTable("USER", "PLAN", "PERIOD START", "PERIOD END", "CREDITS", "WEEKLY", "MONTHLY")
				t.AddRow(qi.UserID, qi.PlanID, formatTime(qi.Period.Start), formatTime(qi.Period.End),
					usageCell(qi.Credits), usageCell(qi.WeeklyPlans), usageCell(qi.MonthlyPlans))
				return t
			})
		},
	}
	info.Flags().StringVar(&userID, "user", "", "user id")
	_ = info.MarkFlagRequired("user")

	var action string
	reserve := &cobra.Command{
		Use:   "reserve",
		Short: "Charge credits for an action, as the API would",
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := quota.ParseAction(action)
			if err != nil {
				return err
			}
			now, err := opts.now()
			if err != nil {
				return err
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			svc := services.NewQuotaService(a.catalog, a.subs, a.ledgers, a.log)
			d, err := svc.CheckAndReserve(cmd.Context(), userID, act, now)
			if err != nil {
				return err
			}

			if err := opts.print(cmd.OutOrStdout(), d, func() *Table {
				t := NewTable("PLAN", "DECISION", "CHARGED", "REMAINING")
				outcome := "allowed"
				if !d.Allowed {
					outcome = "denied"
				}
				t.AddRow(d.PlanID, formatStatus(outcome), strconv.FormatInt(d.CreditsCharged, 10), strconv.FormatInt(d.Remaining, 10))
				return t
			}); err != nil {
				return err
			}
			if !d.Allowed {
				return d.Err()
			}
			return nil
		},
	}
	reserve.Flags().StringVar(&userID, "user", "", "user id")
	reserve.Flags().StringVar(&action, "action", "", "action: daily, weekly or monthly")
	_ = reserve.MarkFlagRequired("user")
	_ = reserve.MarkFlagRequired("action")

	cmd.AddCommand(info, reserve)
	return cmd
}

func usageCell(d quota.Dimension) string {
	if d.Limit == 0 {
		return fmt.Sprintf("%d", d.Used)
	}
	return fmt.Sprintf("%d/%d", d.Used, d.Limit)
}
