package cli

import (
	"context"
	"os"

	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/domain/plan"
	"github.com/pratik-mahalle/mealplanner/internal/domain/subscription"
	"github.com/pratik-mahalle/mealplanner/internal/domain/usage"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/services"
)

// app is the storage-backed wiring shared by database commands
type app struct {
	db      *postgres.Database
	log     *logger.Logger
	plans   plan.Repository
	catalog *services.PlanCatalog
	subs    subscription.Repository
	ledgers usage.Repository
}

func (o *options) databaseConfig() config.DatabaseConfig {
	return config.DatabaseConfig{
		Driver:          o.v.GetString("db.driver"),
		Path:            o.v.GetString("db.path"),
		Host:            o.v.GetString("db.host"),
		Port:            o.v.GetInt("db.port"),
		Name:            o.v.GetString("db.name"),
		User:            o.v.GetString("db.user"),
		Password:        o.v.GetString("db.password"),
		SSLMode:         o.v.GetString("db.sslmode"),
		MaxOpenConns:    2,
		MaxIdleConns:    1,
		ConnMaxLifetime: 0,
	}
}

func (o *options) paymentConfig() config.PaymentConfig {
	cfg := config.PaymentConfig{
		Gateway:         o.v.GetString("payment.gateway"),
		KeyID:           o.v.GetString("payment.key_id"),
		KeySecret:       o.v.GetString("payment.key_secret"),
		BaseURL:         o.v.GetString("payment.base_url"),
		StripeSecretKey: o.v.GetString("payment.stripe_secret_key"),
		SignatureSecret: o.v.GetString("payment.signature_secret"),
		FetchTimeout:    o.v.GetDuration("payment.fetch_timeout"),
	}
	if cfg.SignatureSecret == "" {
		cfg.SignatureSecret = cfg.KeySecret
	}
	return cfg
}

// openApp connects to the database and loads the plan catalog from it
func (o *options) openApp(ctx context.Context) (*app, error) {
	db, err := postgres.New(o.databaseConfig())
	if err != nil {
		return nil, err
	}

	log := logger.New(logger.Config{Level: o.v.GetString("log.level"), Format: "console", Output: os.Stderr})
	plans := postgres.NewPlanRepository(db)
	catalog := services.NewPlanCatalog(plans, log)
	if err := catalog.Refresh(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return &app{
		db:      db,
		log:     log,
		plans:   plans,
		catalog: catalog,
		subs:    postgres.NewSubscriptionRepository(db),
		ledgers: postgres.NewUsageRepository(db),
	}, nil
}

func (a *app) Close() error {
	return a.db.Close()
}
