package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// options holds state shared by every subcommand
type options struct {
	cfgFile string
	output  string
	at      string
	v       *viper.Viper
}

// Execute runs the admin CLI
func Execute() error {
	return NewRootCmd().Execute()
}

// NewRootCmd builds the command tree. Each call returns an independent tree
// with its own viper instance.
func NewRootCmd() *cobra.Command {
	opts := &options{v: viper.New()}

	rootCmd := &cobra.Command{
		Use:   "mealplanner-admin",
		Short: "Mealplanner admin CLI - plans, quotas, payments and retention",
		Long: `mealplanner-admin operates directly on the mealplanner database for
support and operations work: inspect the plan catalog, check or charge a
user's quota, reconcile a payment by hand, classify artifact retention and
expire lapsed subscriptions.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.initConfig()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.cfgFile, "config", "", "config file (yaml)")
	rootCmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format: table, json, yaml")
	rootCmd.PersistentFlags().StringVar(&opts.at, "at", "", "evaluate at this RFC3339 time instead of now")
	_ = opts.v.BindPFlag("output", rootCmd.PersistentFlags().Lookup("output"))

	rootCmd.AddCommand(newPlansCmd(opts))
	rootCmd.AddCommand(newQuotaCmd(opts))
	rootCmd.AddCommand(newPaymentCmd(opts))
	rootCmd.AddCommand(newRetentionCmd(opts))
	rootCmd.AddCommand(newSubscriptionCmd(opts))
	rootCmd.AddCommand(newTokenCmd(opts))

	return rootCmd
}

func (o *options) initConfig() error {
	if o.cfgFile != "" {
		o.v.SetConfigFile(o.cfgFile)
		if err := o.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config %s: %w", o.cfgFile, err)
		}
	}

	o.v.SetEnvPrefix("MEALPLANNER")
	o.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	o.v.AutomaticEnv()

	o.v.SetDefault("output", "table")
	o.v.SetDefault("log.level", "warn")
	o.v.SetDefault("db.driver", "sqlite")
	o.v.SetDefault("db.path", "./mealplanner.db")
	o.v.SetDefault("db.host", "localhost")
	o.v.SetDefault("db.port", 5432)
	o.v.SetDefault("db.name", "mealplanner")
	o.v.SetDefault("db.sslmode", "disable")
	o.v.SetDefault("payment.gateway", "razorpay")
	o.v.SetDefault("payment.base_url", "https://api.razorpay.com")
	o.v.SetDefault("payment.fetch_timeout", 10*time.Second)
	return nil
}

// now returns --at when given, else the current time, in UTC
func (o *options) now() (time.Time, error) {
	if o.at == "" {
		return time.Now().UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, o.at)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid --at %q: %w", o.at, err)
	}
	return ts.UTC(), nil
}

func (o *options) format() string {
	if o.output != "" && o.output != "table" {
		return o.output
	}
	return o.v.GetString("output")
}

func (o *options) print(w io.Writer, data interface{}, table func() *Table) error {
	if o.format() == "table" && table != nil {
		t := table()
		t.writer = w
		t.Render()
		return nil
	}
	return printOutput(w, o.format(), data)
}
