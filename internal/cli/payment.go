package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/domain/payment"
	"github.com/pratik-mahalle/mealplanner/internal/providers"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/services"
)

func newPaymentCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "payment",
		Short: "Reconcile gateway payments",
	}

	var (
		userID    string
		orderID   string
		paymentID string
		signature string
		planID    string
	)

	reconcile := &cobra.Command{
		Use:   "reconcile",
		Short: "Verify a payment with the gateway and activate the subscription",
		Long: `Runs the same reconciliation as POST /api/v1/payments/verify. Safe to
repeat: a payment that is already reconciled converges without refilling
credits. Use --sign when only the order and payment ids are known.`,
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

			sign, _ := cmd.Flags().GetBool("sign")
			if sign {
				signature = gateway.ComputeSignature(orderID, paymentID)
			}

			svc := services.NewReconciliationService(a.catalog, gateway, postgres.NewTxStore(a.db), a.subs, a.log)
			res, err := svc.ReconcilePayment(cmd.Context(), userID, payment.Assertion{
				OrderID:       orderID,
				PaymentID:     paymentID,
				Signature:     signature,
				ClaimedPlanID: planID,
			}, now)
			if err != nil {
				return err
			}

			return opts.print(cmd.OutOrStdout(), res, func() *Table {
				t := NewTable("STATE", "GATEWAY", "SUBSCRIPTION", "PLAN", "PERIOD END", "CREDITS")
				t.AddRow(formatStatus(string(res.State)), res.GatewayStatus,
					fmt.Sprintf("%d", res.Subscription.ID), res.Subscription.PlanID,
					formatTime(res.Subscription.BillingIntervalEnd),
					fmt.Sprintf("%d/%d", res.Ledger.CreditsUsed, res.Ledger.CreditsLimit))
				return t
			})
		},
	}
	reconcile.Flags().StringVar(&userID, "user", "", "user id")
	reconcile.Flags().StringVar(&orderID, "order", "", "gateway order id")
	reconcile.Flags().StringVar(&paymentID, "payment", "", "gateway payment id")
	reconcile.Flags().StringVar(&signature, "signature", "", "checkout signature")
	reconcile.Flags().StringVar(&planID, "plan", "", "plan the user paid for")
	reconcile.Flags().Bool("sign", false, "compute the signature with the configured secret")
	for _, f := range []string{"user", "order", "payment", "plan"} {
		_ = reconcile.MarkFlagRequired(f)
	}

	signCmd := &cobra.Command{
		Use:   "sign",
		Short: "Print the signature the gateway would issue for an order/payment pair",
		RunE: func(cmd *cobra.Command, args []string) error {
			gateway, err := providers.NewGateway(opts.paymentConfig())
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), gateway.ComputeSignature(orderID, paymentID))
			return nil
		},
	}
	signCmd.Flags().StringVar(&orderID, "order", "", "gateway order id")
	signCmd.Flags().StringVar(&paymentID, "payment", "", "gateway payment id")
	_ = signCmd.MarkFlagRequired("order")
	_ = signCmd.MarkFlagRequired("payment")

	cmd.AddCommand(reconcile, signCmd)
	return cmd
}
