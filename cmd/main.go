package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"

	"chatsphere/internal"
	"chatsphere/lifecycle"
	"chatsphere/repositories"
	"chatsphere/runtime/workers"
	"chatsphere/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages the engine lifecycle, and
// centralizes error reporting, so every defer (database cleanup included)
// executes before the process exits.
func run() error {
	// 1. Configuration & Logger
	var config Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Database (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.INFO))
	if err != nil {
		return fmt.Errorf("database opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing BadgerDB...")
		_ = db.Close()
	}()

	// 3. Repositories & lifecycle
	roomRepo := repositories.NewRoomRepository(db, log)
	ledgerRepo := repositories.NewLedgerRepository(db, log)
	presence := repositories.NewStorePresenceOracle(roomRepo, log)
	identity := services.NewNicknameRegistry()

	manager := lifecycle.NewManager(roomRepo, presence, identity, lifecycle.Config{
		CreationWindow: config.RoomCreationWindow,
		CreationLimit:  config.RoomCreationLimit,
		ExpiryAfter:    config.RoomExpiryAfter,
		RetentionAfter: config.MessageRetention,
	}, log)
	if err := manager.SeedOfficialRooms(); err != nil {
		return fmt.Errorf("official room seeding failed: %w", err)
	}

	// 4. Context & Signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 5. Store inspector with live ledger stats
	internal.StartDebugServer(db, config.InspectPort, "/inspect", internal.DefaultMapper,
		func() map[string]any {
			stats, err := ledgerRepo.Stats(time.Now())
			if err != nil {
				return map[string]any{"error": err.Error()}
			}
			return map[string]any{
				"violations_total": stats.Total,
				"violations_today": stats.Today,
				"violations_week":  stats.ThisWeek,
			}
		})

	// 6. Background sweeps under supervision
	sup := workers.NewSupervisor(log)
	sup.Add(
		workers.NewExpiryWorker(manager, config.ExpirySweepInterval, log),
		workers.NewRetentionWorker(roomRepo, config.MessageRetention, config.RetentionSweepInterval, log),
		workers.NewSelfStatsWorker(config.SelfStatsInterval, log),
	)

	log.Info("Room engine started",
		"expiry_sweep", config.ExpirySweepInterval,
		"retention_sweep", config.RetentionSweepInterval,
		"inspect_port", config.InspectPort)
	sup.Run(ctx)

	log.Info("Program stopped cleanly")
	return nil
}
