package main

// Run database migrations:
//   go run ./cmd/migrate            # apply pending
//   go run ./cmd/migrate -cmd down  # revert the latest
//   go run ./cmd/migrate -cmd status

import (
	"context"
	"flag"
	"os"

	"skincare-backend/internal/shared/config"
	"skincare-backend/internal/shared/storage/db"
	"skincare-backend/internal/shared/telemetry"
)

func main() {
	command := flag.String("cmd", "up", "migration command: up, down or status")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(cfg.Env, cfg.LogLevel)
	defer telemetry.Sync()
	ctx := context.Background()

	opts := db.Merge(db.DefaultMigrateOptions(), db.Options{PingTimeout: cfg.DB.PingTimeout})
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		telemetry.Error("migrate.connect_failed", map[string]any{"error": err.Error()})
		os.Exit(1)
	}
	defer sqlDB.Close()

	switch *command {
	case "up":
		err = db.RunMigrations(ctx, sqlDB)
	case "down":
		err = db.RollbackMigration(ctx, sqlDB)
	case "status":
		err = db.MigrationStatus(ctx, sqlDB)
	default:
		telemetry.Error("migrate.unknown_command", map[string]any{"cmd": *command})
		os.Exit(2)
	}
	if err != nil {
		telemetry.Error("migrate.failed", map[string]any{"cmd": *command, "error": err.Error()})
		os.Exit(1)
	}
	telemetry.Info("migrate.done", map[string]any{"cmd": *command})
}
