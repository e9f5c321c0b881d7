package main

import "time"

type Config struct {
	BadgerFilepath         string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel               string        `env:"LOG_LEVEL,required=true"`
	InspectPort            int           `env:"INSPECT_PORT,default=8090"`
	RoomCreationLimit      int           `env:"ROOM_CREATION_LIMIT,default=2"`
	RoomCreationWindow     time.Duration `env:"ROOM_CREATION_WINDOW,default=1h"`
	RoomExpiryAfter        time.Duration `env:"ROOM_EXPIRY_AFTER,default=6h"`
	MessageRetention       time.Duration `env:"MESSAGE_RETENTION,default=168h"`
	ExpirySweepInterval    time.Duration `env:"EXPIRY_SWEEP_INTERVAL,default=5m"`
	RetentionSweepInterval time.Duration `env:"RETENTION_SWEEP_INTERVAL,default=1h"`
	SelfStatsInterval      time.Duration `env:"SELF_STATS_INTERVAL,default=30s"`
}
