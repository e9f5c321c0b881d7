package repositories

import (
	"log/slog"

	"chatsphere/contract"
)

// StorePresenceOracle answers presence questions from room membership: a
// user is considered active while they participate in at least one room.
type StorePresenceOracle struct {
	store IRoomRepository
	log   *slog.Logger
}

var _ contract.PresenceOracle = (*StorePresenceOracle)(nil)

func NewStorePresenceOracle(store IRoomRepository, log *slog.Logger) *StorePresenceOracle {
	return &StorePresenceOracle{store: store, log: log}
}

func (o *StorePresenceOracle) IsUserActiveAnywhere(userID string) bool {
	rooms, err := o.store.ListRoomsByParticipant(userID)
	if err != nil {
		// When the store cannot answer, report inactive rather than keep
		// a possibly abandoned room alive forever.
		o.log.Warn("Presence lookup failed", "user_id", userID, "error", err)
		return false
	}
	return len(rooms) > 0
}
