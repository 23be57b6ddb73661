package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/providers"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/services"
)

func newSubscriptionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subscription",
		Short: "Subscription lifecycle maintenance",
	}

	var userID string
	show := &cobra.Command{
		Use:   "show",
		Short: "Show a user's subscription",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			sub, err := a.subs.GetByUserID(cmd.Context(), userID)
			if err != nil {
				return err
			}
			return opts.print(cmd.OutOrStdout(), sub, func() *Table {
				t := NewTable("ID", "PLAN", "STATUS", "START", "END", "CANCEL AT END", "PAYMENT")
				t.AddRow(fmt.Sprintf("%d", sub.ID), sub.PlanID, formatStatus(string(sub.Status)),
					formatTime(sub.BillingIntervalStart), formatTime(sub.BillingIntervalEnd),
					fmt.Sprintf("%v", sub.CancelAtPeriodEnd), sub.PaymentRef)
				return t
			})
		},
	}
	show.Flags().StringVar(&userID, "user", "", "user id")
	_ = show.MarkFlagRequired("user")

	expire := &cobra.Command{
		Use:   "expire-lapsed",
		Short: "Mark active subscriptions whose billing interval has ended as expired",
		RunE: func(cmd *cobra.Command, args []string) error {
			now, err := opts.now()
			if err != nil {
				return err
			}
			gateway, err := providers.NewGateway(opts.paymentConfig())
			if err != nil {
				return err
			}
			a, err := opts.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			svc := services.NewReconciliationService(a.catalog, gateway, postgres.NewTxStore(a.db), a.subs, a.log)
			n, err := svc.ExpireLapsed(cmd.Context(), now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Expired %d subscription(s)\n", n)
			return nil
		},
	}

	cmd.AddCommand(show, expire)
	return cmd
}
