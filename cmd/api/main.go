package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pratik-mahalle/mealplanner/internal/api/handlers"
	"github.com/pratik-mahalle/mealplanner/internal/api/router"
	"github.com/pratik-mahalle/mealplanner/internal/auth"
	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/logger"
	"github.com/pratik-mahalle/mealplanner/internal/pkg/validator"
	"github.com/pratik-mahalle/mealplanner/internal/providers"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/services"
	"github.com/pratik-mahalle/mealplanner/internal/worker"
	"github.com/pratik-mahalle/mealplanner/migrations"
)

// @title Meal Planner API
// @version 1.0
// @description Credit-metered meal plan generation with paid subscriptions.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.Init(logger.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	if err := run(cfg, log); err != nil {
		log.ErrorWithErr(err, "Server exited with error")
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := postgres.New(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	fsys, err := migrations.GetFS(db.Driver)
	if err != nil {
		return err
	}
	applied, err := postgres.RunMigrations(ctx, db, fsys)
	if err != nil {
		return err
	}
	for _, v := range applied {
		log.Infof("Applied migration %s", v)
	}

	verifier, err := auth.NewVerifier(ctx, cfg.Auth)
	if err != nil {
		return err
	}
	gateway, err := providers.NewGateway(cfg.Payment)
	if err != nil {
		return err
	}
	generator, err := providers.NewGenerator(cfg.AI)
	if err != nil {
		return err
	}

	catalog := services.NewPlanCatalog(postgres.NewPlanRepository(db), log)
	if err := catalog.Refresh(ctx); err != nil {
		// The built-in defaults keep serving until a refresh succeeds
		log.WarnWithErr(err, "Initial plan catalog refresh failed")
	}
	if err := catalog.StartRefresh(cfg.Catalog.RefreshSchedule); err != nil {
		return err
	}
	defer catalog.Stop()

	subs := postgres.NewSubscriptionRepository(db)
	ledgers := postgres.NewUsageRepository(db)
	quotaSvc := services.NewQuotaService(catalog, subs, ledgers, log)
	paymentSvc := services.NewReconciliationService(catalog, gateway, postgres.NewTxStore(db), subs, log)
	mealSvc := services.NewMealPlanService(quotaSvc, generator, postgres.NewMealPlanRepository(db), catalog, subs, cfg.AI.MaxTokens, log)

	if cfg.Payment.ExpirySweepInterval > 0 {
		go worker.NewExpirySweeper(paymentSvc, cfg.Payment.ExpirySweepInterval, log).Start(ctx)
	}

	val := validator.New()
	limiters := router.NewLimiters(cfg.RateLimit)
	limiters.IP.StartCleanup(ctx, 5*time.Minute)
	limiters.User.StartCleanup(ctx, 5*time.Minute)

	handler := router.New(cfg, log, verifier, limiters, &router.Handlers{
		Health:   handlers.NewHealthHandler(db, log),
		Plan:     handlers.NewPlanHandler(catalog),
		Quota:    handlers.NewQuotaHandler(quotaSvc, log, val),
		MealPlan: handlers.NewMealPlanHandler(mealSvc, log, val),
		Payment:  handlers.NewPaymentHandler(paymentSvc, log, val, cfg.Server.FrontendURL+"/billing"),
	})

	srv := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.WithFields(map[string]interface{}{
			"addr":    srv.Addr,
			"db":      db.Driver,
			"auth":    cfg.Auth.Mode,
			"gateway": gateway.Name(),
			"ai":      generator.Provider(),
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down API server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
