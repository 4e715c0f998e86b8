package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/pkg/config"
	"github.com/stitts-dev/hr-parlay/pkg/database"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
)

func main() {
	if len(os.Args) < 2 {
		log.Fatal("Usage: migrate [up|down|seed]")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logrus.Fatalf("Failed to load config: %v", err)
	}
	appLogger := logger.InitLogger(cfg.LogLevel, cfg.IsDevelopment())

	db, err := database.NewConnection(cfg.DatabaseURL, cfg.IsDevelopment())
	if err != nil {
		appLogger.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := services.NewParlayStore(db.DB)

	switch command := os.Args[1]; command {
	case "up":
		if err := store.AutoMigrate(); err != nil {
			appLogger.Fatalf("Failed to run migrations: %v", err)
		}
		appLogger.Info("Migrations completed successfully")

	case "down":
		if err := db.Migrator().DropTable(&models.SavedParlay{}); err != nil {
			appLogger.Fatalf("Failed to drop tables: %v", err)
		}
		appLogger.Info("Tables dropped successfully")

	case "seed":
		if err := store.AutoMigrate(); err != nil {
			appLogger.Fatalf("Failed to run migrations: %v", err)
		}
		if err := seedData(store, appLogger); err != nil {
			appLogger.Fatalf("Failed to seed data: %v", err)
		}
		appLogger.Info("Data seeded successfully")

	default:
		log.Fatalf("Unknown command: %s", command)
	}
}

// seedData saves one parlay built from the demo slate: the top-ranked
// batter of each of the first two games.
func seedData(store *services.ParlayStore, log *logrus.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	reconciler := services.NewReconciler(services.ReconcilerOptions{}, log)
	slate := services.NewSlateService(reconciler, store, services.SlateOptions{SkipLiveData: true}, log)

	current, err := slate.FindNextSlate(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("failed to build demo slate: %w", err)
	}

	for i, board := range current.Boards {
		if i == 2 {
			break
		}
		if len(board.Players) == 0 {
			continue
		}
		if _, _, err := slate.TogglePlayer(board.Game.ID, board.Players[0].ID); err != nil {
			return fmt.Errorf("failed to pick from game %d: %w", board.Game.ID, err)
		}
	}

	saved, err := slate.SaveParlay(ctx)
	if err != nil {
		return err
	}
	log.WithFields(logrus.Fields{
		"parlay_id": saved.ID,
		"picks":     saved.PickCount,
	}).Info("Seeded demo parlay")
	return nil
}
