package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/retention"
)

type classifyOutput struct {
	CreatedAt time.Time        `json:"created_at"`
	Tier      plan.Tier        `json:"tier"`
	At        time.Time        `json:"at"`
	Status    retention.Status `json:"status"`
}

func newRetentionCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retention",
		Short: "Free-tier artifact retention",
	}

	var (
		createdAt string
		tier      string
	)
	classify := &cobra.Command{
		Use:   "classify",
		Short: "Show whether an artifact created at --created-at is still visible",
		RunE: func(cmd *cobra.Command, args []string) error {
			created, err := time.Parse(time.RFC3339, createdAt)
			if err != nil {
				return fmt.Errorf("invalid --created-at %q: %w", createdAt, err)
			}
			t := plan.Tier(tier)
			if !t.Valid() {
				return fmt.Errorf("invalid --tier %q: want free or paid", tier)
			}
			now, err := opts.now()
			if err != nil {
				return err
			}

			out := classifyOutput{CreatedAt: created.UTC(), Tier: t, At: now, Status: retention.Classify(created, t, now)}
			return opts.print(cmd.OutOrStdout(), out, func() *Table {
				state := "visible"
				switch {
				case out.Status.IsExpired:
					state = "expired"
				case out.Status.IsExpiringSoon:
					state = "expiring"
				}
				expires := "never"
				if out.Status.ExpiresAt != nil {
					expires = formatTime(*out.Status.ExpiresAt)
				}
				tbl := NewTable("TIER", "STATE", "EXPIRES AT", "REMAINING")
				tbl.AddRow(string(t), formatStatus(state), expires, out.Status.Remaining.String())
				return tbl
			})
		},
	}
	classify.Flags().StringVar(&createdAt, "created-at", "", "artifact creation time (RFC3339)")
	classify.Flags().StringVar(&tier, "tier", string(plan.TierFree), "owner tier: free or paid")
	_ = classify.MarkFlagRequired("created-at")

	cmd.AddCommand(classify)
	return cmd
}
