// Command migrate applies the database migrations.
//
//	DATABASE_URL=postgres://... go run ./cmd/migrate -direction up
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/shandysiswandi/authflow/internal/pkg/migration"
)

type config struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	Direction   string `env:"MIGRATE_DIRECTION" envDefault:"up"`
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))

	var cfg config
	if err := env.Parse(&cfg); err != nil {
		logger.Error("failed to parse environment", "error", err)
		os.Exit(1)
	}

	direction := flag.String("direction", cfg.Direction, "migration direction: up or down")
	flag.Parse()

	if err := migration.Run(cfg.DatabaseURL, migration.Direction(*direction)); err != nil {
		logger.Error("migration failed", "direction", *direction, "error", err)
		os.Exit(1)
	}

	logger.Info("migration finished", "direction", *direction)
}
