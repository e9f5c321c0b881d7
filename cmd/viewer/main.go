package main

import (
	"log"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"

	"chatsphere/internal"
)

// The viewer opens the store read-only next to a running engine and serves
// the HTML inspector. Useful to eyeball rooms, ledgers and supplemental
// messages without stopping anything.
func main() {
	// 1. Load config
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		log.Fatalf("Config error: %v", err)
	}

	// 2. Open Badger in read-only mode
	// BypassLockGuard allows opening while the engine holds the lock
	opts := badger.DefaultOptions(config.BadgerFilepath).
		WithReadOnly(true).
		WithBypassLockGuard(true).
		WithLoggingLevel(badger.WARNING)

	db, err := badger.Open(opts)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	// 3. Serve the inspector and block until /resume
	internal.Inspect(db, config.InspectPort, "/inspect", internal.DefaultMapper, nil, "room:", nil)
}
