package postgres_test

import (
	"context"
	"testing"

	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/internal/testutil"
	"github.com/pratik-mahalle/mealplanner/migrations"
)

func TestRunMigrations_Idempotent(t *testing.T) {
	db := testutil.NewTestDB(t)

	fsys, err := migrations.GetFS("sqlite")
	if err != nil {
		t.Fatalf("GetFS() error = %v", err)
	}
	applied, err := postgres.RunMigrations(context.Background(), db, fsys)
	if err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	if len(applied) != 0 {
		t.Errorf("RunMigrations() re-applied %v", applied)
	}
}

func TestGetFS_UnknownDriver(t *testing.T) {
	if _, err := migrations.GetFS("mysql"); err == nil {
		t.Error("GetFS() error = nil for unknown driver")
	}
}
