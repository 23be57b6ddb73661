package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"

	"github.com/pratik-mahalle/mealplanner/internal/config"
	"github.com/pratik-mahalle/mealplanner/internal/repository/postgres"
	"github.com/pratik-mahalle/mealplanner/migrations"
)

// The migrator reads only the database settings and skips the auth and
// payment validation config.Load performs
func main() {
	_ = godotenv.Load()

	cfg := config.DatabaseConfig{
		Driver:   getEnv("DB_DRIVER", "sqlite"),
		Path:     getEnv("DB_PATH", "./mealplanner.db"),
		Host:     getEnv("DB_HOST", "localhost"),
		Name:     getEnv("DB_NAME", "mealplanner"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
		Port:     getEnvAsInt("DB_PORT", 5432),

		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}

	db, err := postgres.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	fmt.Printf("Connected to %s database\n", db.Driver)

	fsys, err := migrations.GetFS(db.Driver)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load migrations: %v\n", err)
		os.Exit(1)
	}

	applied, err := postgres.RunMigrations(context.Background(), db, fsys)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Migration failed: %v\n", err)
		os.Exit(1)
	}

	if len(applied) == 0 {
		fmt.Println("Database is up to date")
		return
	}
	for _, v := range applied {
		fmt.Printf("Applied %s\n", v)
	}
	fmt.Printf("\n%d migration(s) completed successfully\n", len(applied))
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return value
}
