package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"climate-platform/internal/config"
	"climate-platform/migrations"
	"climate-platform/pkg/database"
	"climate-platform/pkg/logging"
	"climate-platform/pkg/metrics"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	script, err := migrations.Script(migrations.Direction(*direction))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	logger := cfg.NewLogger("climate-migrate", "1.0.0")
	ctx := context.Background()

	db, err := database.Open(cfg.DatabaseConnection(), logger, metrics.NewCollector("climate_migrate", nil))
	if err != nil {
		logger.Fatal(ctx, "[MIGRATE_ERROR] Failed to connect to database", logging.Fields{}, err)
	}
	defer db.Close()

	logger.Info(ctx, "[MIGRATE_START] Running migration", logging.Fields{
		"direction": *direction,
		"driver":    db.Driver(),
	})

	if err := db.ExecScript(ctx, script); err != nil {
		logger.Fatal(ctx, "[MIGRATE_ERROR] Failed to execute migration", logging.Fields{
			"direction": *direction,
		}, err)
	}

	logger.Info(ctx, "[MIGRATE_COMPLETE] Migration completed successfully", logging.Fields{})
}
